package models

import "time"

// Like represents a user's like on a poem.
// The combination of PoemID and UserID must be unique; the index backstops
// the application-level duplicate check under concurrent requests.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PoemID    uint      `gorm:"not null;uniqueIndex:idx_poem_user" json:"poem_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_poem_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Poem Poem `gorm:"foreignKey:PoemID" json:"poem,omitempty"`
}
