package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/listing"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/observability"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
)

// ContentService manages study materials.
type ContentService interface {
	List(ctx context.Context, actor Actor, query dto.CatalogQuery) ([]models.Content, listing.Meta, error)
	Get(ctx context.Context, actor Actor, id uint) (models.Content, error)
	Create(ctx context.Context, actor Actor, payload dto.ContentCreateRequest, file *multipart.FileHeader) (models.Content, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.ContentUpdateRequest) (models.Content, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type contentService struct {
	repo      repository.ContentRepository
	storage   FileStorage
	maxBytes  int64
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewContentService constructs the content service. storage may be nil when uploads are disabled.
func NewContentService(repo repository.ContentRepository, storage FileStorage, maxFileMB int, validate *validator.Validate, logger zerolog.Logger) ContentService {
	return &contentService{
		repo:      repo,
		storage:   storage,
		maxBytes:  megabytes(maxFileMB),
		validator: validate,
		logger:    logger.With().Str("component", "content_service").Logger(),
		tracer:    otel.Tracer("github.com/sseth345/srilanka-learning-platform/internal/service/content"),
	}
}

func (s *contentService) List(ctx context.Context, actor Actor, query dto.CatalogQuery) ([]models.Content, listing.Meta, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, listing.Meta{}, err
	}

	filter := repository.CatalogFilter{Subject: query.Subject, Grade: query.Grade, Type: query.Type}
	switch {
	case !actor.IsTeacher():
		filter.PublishedOnly = true
	case query.Mine:
		owner := actor.ID
		filter.OwnerID = &owner
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, listing.Meta{}, err
	}

	items = listing.Filter(items, func(item models.Content) bool {
		return listing.MatchesSearch(query.Search, item.Title, item.Description)
	})
	page, meta := listing.Paginate(items, query.Page, query.PageSize)
	return page, meta, nil
}

func (s *contentService) Get(ctx context.Context, actor Actor, id uint) (models.Content, error) {
	content, err := s.load(ctx, id)
	if err != nil {
		return models.Content{}, err
	}
	if !content.Published && !actor.IsTeacher() {
		return models.Content{}, ErrContentNotFound
	}

	if err := s.repo.IncrementViews(ctx, id); err != nil {
		s.logger.Warn().Err(err).Uint("content_id", id).Msg("failed to record view")
	} else {
		content.Views++
	}
	return content, nil
}

func (s *contentService) Create(ctx context.Context, actor Actor, payload dto.ContentCreateRequest, file *multipart.FileHeader) (models.Content, error) {
	if !actor.IsTeacher() {
		return models.Content{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return models.Content{}, err
	}
	if payload.Type == models.ContentTypeLink && strings.TrimSpace(payload.ExternalURL) == "" {
		return models.Content{}, fmt.Errorf("%w: external_url is required for links", ErrInvalidInput)
	}
	if payload.Type == models.ContentTypePDF && file == nil {
		return models.Content{}, fmt.Errorf("%w: a file is required for pdf content", ErrInvalidInput)
	}

	content := models.Content{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		Subject:     strings.TrimSpace(payload.Subject),
		Grade:       strings.TrimSpace(payload.Grade),
		Type:        payload.Type,
		ExternalURL: strings.TrimSpace(payload.ExternalURL),
		Published:   payload.Published,
		CreatedBy:   actor.ID,
	}

	if file != nil {
		url, err := s.uploadFile(ctx, file)
		if err != nil {
			return models.Content{}, err
		}
		content.FileURL = url
	}

	if err := s.repo.Create(ctx, &content); err != nil {
		return models.Content{}, err
	}

	s.logger.Info().Uint("content_id", content.ID).Str("type", content.Type).Msg("content created")
	return content, nil
}

func (s *contentService) Update(ctx context.Context, actor Actor, id uint, payload dto.ContentUpdateRequest) (models.Content, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Content{}, err
	}

	content, err := s.owned(ctx, actor, id)
	if err != nil {
		return models.Content{}, err
	}

	if payload.Title != nil {
		content.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		content.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.Subject != nil {
		content.Subject = strings.TrimSpace(*payload.Subject)
	}
	if payload.Grade != nil {
		content.Grade = strings.TrimSpace(*payload.Grade)
	}
	if payload.ExternalURL != nil {
		content.ExternalURL = strings.TrimSpace(*payload.ExternalURL)
	}
	if payload.Published != nil {
		content.Published = *payload.Published
	}

	if err := s.repo.Update(ctx, &content); err != nil {
		return models.Content{}, err
	}
	return content, nil
}

func (s *contentService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContentNotFound
		}
		return err
	}

	s.logger.Info().Uint("content_id", id).Msg("content deleted")
	return nil
}

func (s *contentService) uploadFile(ctx context.Context, file *multipart.FileHeader) (string, error) {
	ctx, span := s.tracer.Start(ctx, "content.upload", trace.WithAttributes(
		attribute.String("upload.original_name", file.Filename),
		attribute.Int64("upload.request_size", file.Size),
	))
	defer span.End()

	if s.storage == nil {
		return "", ErrMediaUnavailable
	}

	handle, err := openUpload(file, s.maxBytes, isDocumentMime)
	if err != nil {
		observability.MediaUploads().WithLabelValues("content", "rejected").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload_rejected")
		return "", err
	}
	defer handle.Close()

	url, err := s.storage.Upload(ctx, handle.name, handle.reader)
	if err != nil {
		observability.MediaUploads().WithLabelValues("content", "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload_failed")
		return "", err
	}

	observability.MediaUploads().WithLabelValues("content", "stored").Inc()
	return url, nil
}

func (s *contentService) load(ctx context.Context, id uint) (models.Content, error) {
	content, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Content{}, ErrContentNotFound
		}
		return models.Content{}, err
	}
	return content, nil
}

func (s *contentService) owned(ctx context.Context, actor Actor, id uint) (models.Content, error) {
	if !actor.IsTeacher() {
		return models.Content{}, ErrForbidden
	}
	content, err := s.load(ctx, id)
	if err != nil {
		return models.Content{}, err
	}
	if !actor.Owns(content.CreatedBy) {
		return models.Content{}, ErrForbidden
	}
	return content, nil
}
