package dto

import (
	"time"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// CatalogQuery carries the list filters shared by content, books and videos.
type CatalogQuery struct {
	Subject  string `query:"subject"`
	Grade    string `query:"grade"`
	Type     string `query:"type" validate:"omitempty,oneof=note pdf worksheet link"`
	Language string `query:"language" validate:"omitempty,oneof=sinhala tamil english"`
	Search   string `query:"search"`
	Mine     bool   `query:"mine"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

// ContentCreateRequest is submitted as multipart form fields next to an optional file.
type ContentCreateRequest struct {
	Title       string `form:"title" json:"title" validate:"required,min=3,max=255"`
	Description string `form:"description" json:"description" validate:"omitempty,max=5000"`
	Subject     string `form:"subject" json:"subject" validate:"required,max=64"`
	Grade       string `form:"grade" json:"grade" validate:"omitempty,max=32"`
	Type        string `form:"type" json:"type" validate:"required,oneof=note pdf worksheet link"`
	ExternalURL string `form:"external_url" json:"external_url" validate:"omitempty,url"`
	Published   bool   `form:"published" json:"published"`
}

// ContentUpdateRequest patches a study material.
type ContentUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Subject     *string `json:"subject" validate:"omitempty,max=64"`
	Grade       *string `json:"grade" validate:"omitempty,max=32"`
	ExternalURL *string `json:"external_url" validate:"omitempty,url"`
	Published   *bool   `json:"published"`
}

// BookCreateRequest holds the form fields of a book upload.
type BookCreateRequest struct {
	Title       string `form:"title" validate:"required,min=2,max=255"`
	Author      string `form:"author" validate:"omitempty,max=255"`
	Subject     string `form:"subject" validate:"required,max=64"`
	Grade       string `form:"grade" validate:"omitempty,max=32"`
	Language    string `form:"language" validate:"required,oneof=sinhala tamil english"`
	Description string `form:"description" validate:"omitempty,max=5000"`
}

// VideoCreateRequest holds the form fields of a video upload.
type VideoCreateRequest struct {
	Title           string  `form:"title" validate:"required,min=3,max=255"`
	Description     string  `form:"description" validate:"omitempty,max=5000"`
	Subject         string  `form:"subject" validate:"required,max=64"`
	Grade           string  `form:"grade" validate:"omitempty,max=32"`
	DurationSeconds float64 `form:"duration_seconds" validate:"gte=0"`
}

// VideoResponse adds playback URLs derived from the public ID.
type VideoResponse struct {
	models.Video
	StreamURL    string `json:"stream_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// DownloadResponse is returned when a book download is recorded.
type DownloadResponse struct {
	URL       string `json:"url"`
	Downloads int    `json:"downloads"`
}

// NewsQuery filters news listings.
type NewsQuery struct {
	Category string `query:"category"`
	Search   string `query:"search"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

// NewsRequest creates a news post.
type NewsRequest struct {
	Title     string `json:"title" validate:"required,min=3,max=255"`
	Body      string `json:"body" validate:"required"`
	Category  string `json:"category" validate:"omitempty,max=64"`
	Published bool   `json:"published"`
}

// NewsUpdateRequest patches a news post.
type NewsUpdateRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=3,max=255"`
	Body      *string `json:"body" validate:"omitempty,min=1"`
	Category  *string `json:"category" validate:"omitempty,max=64"`
	Published *bool   `json:"published"`
}

// NewsResponse is the API view of a news post.
type NewsResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Category    string     `json:"category"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at"`
	AuthorID    uint       `json:"author_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewNewsResponse converts a news model.
func NewNewsResponse(news models.News) NewsResponse {
	return NewsResponse{
		ID:          news.ID,
		Title:       news.Title,
		Body:        news.Body,
		Category:    news.Category,
		Published:   news.Published,
		PublishedAt: news.PublishedAt,
		AuthorID:    news.AuthorID,
		CreatedAt:   news.CreatedAt,
		UpdatedAt:   news.UpdatedAt,
	}
}
