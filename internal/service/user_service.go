package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/listing"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
)

// UserService manages profiles and the teacher-facing directory.
type UserService interface {
	Get(ctx context.Context, actor Actor, id uint) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, actor Actor, payload dto.UpdateProfileRequest) (dto.UserResponse, error)
	List(ctx context.Context, actor Actor, query dto.UserListQuery) ([]dto.UserResponse, listing.Meta, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(repo repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Get(ctx context.Context, actor Actor, id uint) (dto.UserResponse, error) {
	if !actor.Owns(id) && !actor.IsTeacher() {
		return dto.UserResponse{}, ErrForbidden
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor Actor, payload dto.UpdateProfileRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.load(ctx, actor.ID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	if payload.Name != nil {
		user.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Grade != nil {
		user.Grade = strings.TrimSpace(*payload.Grade)
	}
	if payload.School != nil {
		user.School = strings.TrimSpace(*payload.School)
	}
	if payload.District != nil {
		user.District = strings.TrimSpace(*payload.District)
	}
	if payload.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*payload.AvatarURL)
	}

	if err := s.repo.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("profile updated")
	return dto.NewUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, actor Actor, query dto.UserListQuery) ([]dto.UserResponse, listing.Meta, error) {
	if !actor.IsTeacher() {
		return nil, listing.Meta{}, ErrForbidden
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, listing.Meta{}, err
	}

	users, err := s.repo.List(ctx, repository.UserFilter{Role: query.Role})
	if err != nil {
		return nil, listing.Meta{}, err
	}

	users = listing.Filter(users, func(user models.User) bool {
		return listing.MatchesSearch(query.Search, user.Name, user.Email)
	})
	page, meta := listing.Paginate(users, query.Page, query.PageSize)
	return dto.NewUserResponses(page), meta, nil
}

func (s *userService) load(ctx context.Context, id uint) (models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
