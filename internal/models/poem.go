// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// PoemStatus is a poem's moderation state.
type PoemStatus string

// Moderation states. Every new or content-edited poem starts at Pending;
// only an admin review moves it to Approved or Rejected.
const (
	PoemPending  PoemStatus = "Pending"
	PoemApproved PoemStatus = "Approved"
	PoemRejected PoemStatus = "Rejected"
)

// Valid reports whether the status is one of the known states.
func (s PoemStatus) Valid() bool {
	return s == PoemPending || s == PoemApproved || s == PoemRejected
}

// Poem represents a submitted poem.
// Public listings only ever show poems with IsDraft=false and Status=Approved.
type Poem struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"not null" json:"title"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	AuthorID        uint       `gorm:"not null;index" json:"author_id"`
	Author          User       `gorm:"foreignKey:AuthorID" json:"author"`
	IsDraft         bool       `gorm:"not null;default:false" json:"is_draft"`
	Status          PoemStatus `gorm:"type:varchar(16);not null;default:Pending" json:"status"`
	RejectionReason *string    `json:"rejection_reason"`

	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this poem (computed)
	Liked bool `gorm:"->" json:"liked"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
