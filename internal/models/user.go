package models

import (
	"strings"
	"time"
)

const (
	// RoleStudent is assigned to learners.
	RoleStudent = "student"
	// RoleTeacher is assigned to authoring staff.
	RoleTeacher = "teacher"
)

// User is a registered platform account. Role is the authoritative source for authorization.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:16;index;not null" json:"role"`
	Grade        string    `gorm:"size:32" json:"grade"`
	School       string    `gorm:"size:255" json:"school"`
	District     string    `gorm:"size:64" json:"district"`
	AvatarURL    string    `gorm:"size:512" json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsTeacher reports whether the user may author content.
func (u User) IsTeacher() bool {
	return strings.EqualFold(u.Role, RoleTeacher)
}
