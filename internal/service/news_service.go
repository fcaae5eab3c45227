package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/listing"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
)

// NewsService manages platform announcements.
type NewsService interface {
	List(ctx context.Context, actor Actor, query dto.NewsQuery) ([]dto.NewsResponse, listing.Meta, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.NewsResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.NewsRequest) (dto.NewsResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.NewsUpdateRequest) (dto.NewsResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type newsService struct {
	repo      repository.NewsRepository
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// NewNewsService constructs the news service.
func NewNewsService(repo repository.NewsRepository, validate *validator.Validate, logger zerolog.Logger) NewsService {
	return &newsService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "news_service").Logger(),
		sanitizer: bluemonday.UGCPolicy(),
		now:       time.Now,
	}
}

func (s *newsService) List(ctx context.Context, actor Actor, query dto.NewsQuery) ([]dto.NewsResponse, listing.Meta, error) {
	items, err := s.repo.List(ctx, repository.NewsFilter{
		Category:      strings.TrimSpace(query.Category),
		PublishedOnly: !actor.IsTeacher(),
	})
	if err != nil {
		return nil, listing.Meta{}, err
	}

	items = listing.Filter(items, func(news models.News) bool {
		return listing.MatchesSearch(query.Search, news.Title, news.Body)
	})
	page, meta := listing.Paginate(items, query.Page, query.PageSize)

	responses := make([]dto.NewsResponse, 0, len(page))
	for _, news := range page {
		responses = append(responses, dto.NewNewsResponse(news))
	}
	return responses, meta, nil
}

func (s *newsService) Get(ctx context.Context, actor Actor, id uint) (dto.NewsResponse, error) {
	news, err := s.load(ctx, id)
	if err != nil {
		return dto.NewsResponse{}, err
	}
	if !news.Published && !actor.IsTeacher() {
		return dto.NewsResponse{}, ErrNewsNotFound
	}
	return dto.NewNewsResponse(news), nil
}

func (s *newsService) Create(ctx context.Context, actor Actor, payload dto.NewsRequest) (dto.NewsResponse, error) {
	if !actor.IsTeacher() {
		return dto.NewsResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.NewsResponse{}, err
	}

	body := strings.TrimSpace(s.sanitizer.Sanitize(payload.Body))
	if body == "" {
		return dto.NewsResponse{}, fmt.Errorf("%w: body is empty after sanitization", ErrInvalidInput)
	}

	news := models.News{
		Title:    strings.TrimSpace(payload.Title),
		Body:     body,
		Category: strings.TrimSpace(payload.Category),
		AuthorID: actor.ID,
	}
	s.setPublished(&news, payload.Published)

	if err := s.repo.Create(ctx, &news); err != nil {
		return dto.NewsResponse{}, err
	}

	s.logger.Info().Uint("news_id", news.ID).Bool("published", news.Published).Msg("news created")
	return dto.NewNewsResponse(news), nil
}

func (s *newsService) Update(ctx context.Context, actor Actor, id uint, payload dto.NewsUpdateRequest) (dto.NewsResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NewsResponse{}, err
	}

	news, err := s.owned(ctx, actor, id)
	if err != nil {
		return dto.NewsResponse{}, err
	}

	if payload.Title != nil {
		news.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Body != nil {
		body := strings.TrimSpace(s.sanitizer.Sanitize(*payload.Body))
		if body == "" {
			return dto.NewsResponse{}, fmt.Errorf("%w: body is empty after sanitization", ErrInvalidInput)
		}
		news.Body = body
	}
	if payload.Category != nil {
		news.Category = strings.TrimSpace(*payload.Category)
	}
	if payload.Published != nil {
		s.setPublished(&news, *payload.Published)
	}

	if err := s.repo.Update(ctx, &news); err != nil {
		return dto.NewsResponse{}, err
	}
	return dto.NewNewsResponse(news), nil
}

func (s *newsService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNewsNotFound
		}
		return err
	}

	s.logger.Info().Uint("news_id", id).Msg("news deleted")
	return nil
}

// setPublished stamps PublishedAt the first time a post goes live.
func (s *newsService) setPublished(news *models.News, published bool) {
	news.Published = published
	if published && news.PublishedAt == nil {
		now := s.now().UTC()
		news.PublishedAt = &now
	}
}

func (s *newsService) load(ctx context.Context, id uint) (models.News, error) {
	news, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.News{}, ErrNewsNotFound
		}
		return models.News{}, err
	}
	return news, nil
}

func (s *newsService) owned(ctx context.Context, actor Actor, id uint) (models.News, error) {
	if !actor.IsTeacher() {
		return models.News{}, ErrForbidden
	}
	news, err := s.load(ctx, id)
	if err != nil {
		return models.News{}, err
	}
	if !actor.Owns(news.AuthorID) {
		return models.News{}, ErrForbidden
	}
	return news, nil
}
