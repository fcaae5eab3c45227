package models

import "time"

const (
	ContentTypeNote      = "note"
	ContentTypePDF       = "pdf"
	ContentTypeWorksheet = "worksheet"
	ContentTypeLink      = "link"
)

// Content is a study material published by a teacher.
type Content struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Subject     string    `gorm:"size:64;index" json:"subject"`
	Grade       string    `gorm:"size:32;index" json:"grade"`
	Type        string    `gorm:"size:32;not null" json:"type"`
	FileURL     string    `gorm:"size:512" json:"file_url"`
	ExternalURL string    `gorm:"size:512" json:"external_url"`
	Published   bool      `gorm:"index;not null;default:false" json:"published"`
	CreatedBy   uint      `gorm:"index;not null" json:"created_by"`
	Views       int       `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Book is an entry of the digital library.
type Book struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Author      string    `gorm:"size:255" json:"author"`
	Subject     string    `gorm:"size:64;index" json:"subject"`
	Grade       string    `gorm:"size:32;index" json:"grade"`
	Language    string    `gorm:"size:16;index" json:"language"`
	Description string    `gorm:"type:text" json:"description"`
	FileURL     string    `gorm:"size:512;not null" json:"file_url"`
	CoverURL    string    `gorm:"size:512" json:"cover_url"`
	Downloads   int       `gorm:"not null;default:0" json:"downloads"`
	UploadedBy  uint      `gorm:"index;not null" json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Video is a lesson hosted on Cloudinary. Playback URLs are derived from PublicID.
type Video struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	Subject         string    `gorm:"size:64;index" json:"subject"`
	Grade           string    `gorm:"size:32;index" json:"grade"`
	PublicID        string    `gorm:"size:255;uniqueIndex;not null" json:"public_id"`
	DurationSeconds float64   `json:"duration_seconds"`
	Format          string    `gorm:"size:16" json:"format"`
	Bytes           int64     `json:"bytes"`
	UploadedBy      uint      `gorm:"index;not null" json:"uploaded_by"`
	Views           int       `gorm:"not null;default:0" json:"views"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// News is a platform announcement.
type News struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	Category    string     `gorm:"size:64;index" json:"category"`
	Published   bool       `gorm:"index;not null;default:false" json:"published"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
	AuthorID    uint       `gorm:"index;not null" json:"author_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
