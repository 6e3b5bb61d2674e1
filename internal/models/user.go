// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is a user's authorization role.
type Role string

// Known roles.
const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// UserStatus is a user account's moderation status.
type UserStatus string

// Known account statuses.
const (
	StatusActive UserStatus = "Active"
	StatusLocked UserStatus = "Locked"
	StatusBanned UserStatus = "Banned"
)

// Valid reports whether the status is one of the known statuses.
func (s UserStatus) Valid() bool {
	return s == StatusActive || s == StatusLocked || s == StatusBanned
}

// User represents a registered account.
// Password holds the bcrypt hash and is never serialized.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"unique;not null" json:"username"`
	Email     string     `gorm:"unique;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Bio       string     `json:"bio"`
	Role      Role       `gorm:"type:varchar(16);not null;default:User" json:"role"`
	Status    UserStatus `gorm:"type:varchar(16);not null;default:Active" json:"status"`
	BanReason *string    `json:"ban_reason,omitempty"`

	// Aggregates computed at query time; not persisted.
	PoemsCount    int `gorm:"->" json:"poems_count"`
	CommentsCount int `gorm:"->" json:"comments_count"`
	LikesCount    int `gorm:"->" json:"likes_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Poems []Poem `gorm:"foreignKey:AuthorID" json:"poems,omitempty"`
}
