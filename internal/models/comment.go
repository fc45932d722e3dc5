package models

import "time"

// GenerationStatus is the lifecycle state of a comment's image generation.
type GenerationStatus string

const (
	StatusPending    GenerationStatus = "pending"
	StatusGenerating GenerationStatus = "generating"
	StatusCompleted  GenerationStatus = "completed"
	StatusFailed     GenerationStatus = "failed"
)

// IsTerminal reports whether no further transition may leave s.
func (s GenerationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// InFlight reports whether a generation is still expected to resolve.
func (s GenerationStatus) InFlight() bool {
	return s == StatusPending || s == StatusGenerating
}

// Comment is an edit prompt on a post. Its payload is the generated image,
// which in turn is the source image for child comments.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	ParentID *uint  `gorm:"index" json:"parent_id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	Prompt   string `gorm:"type:text;not null" json:"prompt"`
	// ImageURL stays empty until the generation completes.
	ImageURL string           `gorm:"not null;default:''" json:"image_url"`
	Status   GenerationStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Error    *string          `gorm:"type:text" json:"error,omitempty"`
	// FalRequestID correlates the provider job with this comment.
	FalRequestID *string   `gorm:"uniqueIndex" json:"fal_request_id,omitempty"`
	LikesCount   int       `gorm:"not null;default:0" json:"likes_count"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsRoot reports whether the comment edits the post's original image.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}
