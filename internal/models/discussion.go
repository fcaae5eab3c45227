package models

import "time"

// Discussion is a forum thread.
type Discussion struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Body         string    `gorm:"type:text;not null" json:"body"`
	Subject      string    `gorm:"size:64;index" json:"subject"`
	AuthorID     uint      `gorm:"index;not null" json:"author_id"`
	CommentCount int       `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Comments     []Comment `gorm:"foreignKey:DiscussionID;constraint:OnDelete:CASCADE" json:"-"`
}

// Comment belongs to a discussion and optionally replies to another comment.
type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DiscussionID uint      `gorm:"index;not null" json:"discussion_id"`
	ParentID     *uint     `gorm:"index" json:"parent_id"`
	AuthorID     uint      `gorm:"index;not null" json:"author_id"`
	Body         string    `gorm:"type:text;not null" json:"body"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
