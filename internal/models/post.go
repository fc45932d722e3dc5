// Package models contains data structures for the application's domain models.
package models

import "time"

// Post is an uploaded root image that seeds a remix tree of comments.
// Apart from LikesCount a post is never mutated after creation.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	Title    string `gorm:"not null" json:"title"`
	ImageURL string `gorm:"not null" json:"image_url"`
	// LikesCount is a denormalized counter maintained by the like ledger.
	LikesCount int `gorm:"not null;default:0" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool      `gorm:"-" json:"liked"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
