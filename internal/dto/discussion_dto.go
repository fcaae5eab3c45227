package dto

import (
	"time"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// DiscussionQuery filters the forum listing.
type DiscussionQuery struct {
	Subject  string `query:"subject"`
	Search   string `query:"search"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

// DiscussionCreateRequest opens a thread.
type DiscussionCreateRequest struct {
	Title   string `json:"title" validate:"required,min=3,max=255"`
	Body    string `json:"body" validate:"required,max=10000"`
	Subject string `json:"subject" validate:"omitempty,max=64"`
}

// CommentCreateRequest posts a comment, optionally replying to another comment.
type CommentCreateRequest struct {
	Body     string `json:"body" validate:"required,max=5000"`
	ParentID *uint  `json:"parent_id" validate:"omitempty,gt=0"`
}

// CommentNode is a comment with its nested replies.
type CommentNode struct {
	ID        uint           `json:"id"`
	ParentID  *uint          `json:"parent_id"`
	AuthorID  uint           `json:"author_id"`
	Body      string         `json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	Replies   []*CommentNode `json:"replies"`
}

// DiscussionResponse is a thread, with its comment tree when requested individually.
type DiscussionResponse struct {
	models.Discussion
	Comments []*CommentNode `json:"comments,omitempty"`
}

// NewCommentNode converts a comment with an empty reply list.
func NewCommentNode(comment models.Comment) *CommentNode {
	return &CommentNode{
		ID:        comment.ID,
		ParentID:  comment.ParentID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
		Replies:   []*CommentNode{},
	}
}
