package dto

import (
	"time"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=student teacher"`
	Grade    string `json:"grade" validate:"omitempty,max=32"`
	School   string `json:"school" validate:"omitempty,max=255"`
	District string `json:"district" validate:"omitempty,max=64"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest patches the caller's profile. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=255"`
	Grade     *string `json:"grade" validate:"omitempty,max=32"`
	School    *string `json:"school" validate:"omitempty,max=255"`
	District  *string `json:"district" validate:"omitempty,max=64"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

// UserListQuery filters the teacher-facing user directory.
type UserListQuery struct {
	Role     string `query:"role" validate:"omitempty,oneof=student teacher"`
	Search   string `query:"search"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Grade     string    `json:"grade,omitempty"`
	School    string    `json:"school,omitempty"`
	District  string    `json:"district,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned after registration or login.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// NewUserResponse converts a user model into its public view.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Grade:     user.Grade,
		School:    user.School,
		District:  user.District,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}
}

// NewUserResponses converts a slice of users.
func NewUserResponses(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}
	return responses
}
