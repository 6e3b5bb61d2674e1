// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a poem. ParentID links threaded replies
// to another comment on the same poem.
type Comment struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Content  string  `gorm:"not null" json:"content"`
	PoemID   uint    `gorm:"not null;index" json:"poem_id"`
	UserID   uint    `gorm:"not null" json:"user_id"`
	ParentID *uint   `gorm:"index" json:"parent_id"`
	User     User    `gorm:"foreignKey:UserID" json:"user"`
	Poem     Poem    `gorm:"foreignKey:PoemID" json:"poem,omitempty"`

	// ReplyCount is not persisted; computed at query time
	ReplyCount int `gorm:"->" json:"reply_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
