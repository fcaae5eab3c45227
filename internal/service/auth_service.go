package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/auth"
	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
)

// AuthService registers accounts and exchanges credentials for bearer tokens.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
}

type authService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	validator  *validator.Validate
	logger     zerolog.Logger
	bcryptCost int
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:      users,
		tokens:     tokens,
		validator:  validate,
		logger:     logger.With().Str("component", "auth_service").Logger(),
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	payload.Name = strings.TrimSpace(payload.Name)
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	if _, err := s.users.GetByEmail(ctx, payload.Email); err == nil {
		return dto.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), s.bcryptCost)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:         payload.Name,
		Email:        payload.Email,
		PasswordHash: string(hash),
		Role:         payload.Role,
		Grade:        strings.TrimSpace(payload.Grade),
		School:       strings.TrimSpace(payload.School),
		District:     strings.TrimSpace(payload.District),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.AuthResponse{}, ErrEmailTaken
		}
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		s.logger.Warn().Uint("user_id", user.ID).Msg("login rejected")
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) issue(user models.User) (dto.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}

	return dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Truncate(time.Second),
		User:      dto.NewUserResponse(user),
	}, nil
}
