package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/events"
	"github.com/sseth345/srilanka-learning-platform/internal/listing"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/observability"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
)

const defaultVideoUploadTimeout = 90 * time.Second

// VideoService manages video lessons hosted on the media platform.
type VideoService interface {
	List(ctx context.Context, query dto.CatalogQuery) ([]dto.VideoResponse, listing.Meta, error)
	Get(ctx context.Context, id uint) (dto.VideoResponse, error)
	Upload(ctx context.Context, actor Actor, payload dto.VideoCreateRequest, file *multipart.FileHeader) (dto.VideoResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

// VideoConfig bounds video uploads.
type VideoConfig struct {
	MaxSizeMB     int
	UploadTimeout time.Duration
}

type videoService struct {
	repo          repository.VideoRepository
	storage       VideoStorage
	publisher     events.Publisher
	maxBytes      int64
	uploadTimeout time.Duration
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewVideoService constructs the video service. storage may be nil, which disables uploads.
func NewVideoService(repo repository.VideoRepository, storage VideoStorage, publisher events.Publisher, cfg VideoConfig, validate *validator.Validate, logger zerolog.Logger) VideoService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	timeout := cfg.UploadTimeout
	if timeout <= 0 {
		timeout = defaultVideoUploadTimeout
	}
	return &videoService{
		repo:          repo,
		storage:       storage,
		publisher:     publisher,
		maxBytes:      megabytes(cfg.MaxSizeMB),
		uploadTimeout: timeout,
		validator:     validate,
		logger:        logger.With().Str("component", "video_service").Logger(),
		tracer:        otel.Tracer("github.com/sseth345/srilanka-learning-platform/internal/service/video"),
	}
}

func (s *videoService) List(ctx context.Context, query dto.CatalogQuery) ([]dto.VideoResponse, listing.Meta, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, listing.Meta{}, err
	}

	videos, err := s.repo.List(ctx, repository.CatalogFilter{Subject: query.Subject, Grade: query.Grade})
	if err != nil {
		return nil, listing.Meta{}, err
	}

	videos = listing.Filter(videos, func(video models.Video) bool {
		return listing.MatchesSearch(query.Search, video.Title, video.Description)
	})
	page, meta := listing.Paginate(videos, query.Page, query.PageSize)

	responses := make([]dto.VideoResponse, 0, len(page))
	for _, video := range page {
		responses = append(responses, s.toResponse(video))
	}
	return responses, meta, nil
}

func (s *videoService) Get(ctx context.Context, id uint) (dto.VideoResponse, error) {
	video, err := s.load(ctx, id)
	if err != nil {
		return dto.VideoResponse{}, err
	}

	if err := s.repo.IncrementViews(ctx, id); err != nil {
		s.logger.Warn().Err(err).Uint("video_id", id).Msg("failed to record view")
	} else {
		video.Views++
	}
	return s.toResponse(video), nil
}

func (s *videoService) Upload(ctx context.Context, actor Actor, payload dto.VideoCreateRequest, file *multipart.FileHeader) (dto.VideoResponse, error) {
	ctx, span := s.tracer.Start(ctx, "video.upload")
	defer span.End()

	if !actor.IsTeacher() {
		return dto.VideoResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.VideoResponse{}, err
	}
	if s.storage == nil {
		return dto.VideoResponse{}, ErrMediaUnavailable
	}

	handle, err := openUpload(file, s.maxBytes, isVideoMime)
	if err != nil {
		observability.MediaUploads().WithLabelValues("video", "rejected").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload_rejected")
		return dto.VideoResponse{}, err
	}
	defer handle.Close()

	span.SetAttributes(
		attribute.String("upload.detected_mime", handle.mime),
		attribute.Int64("upload.request_size", handle.size),
	)

	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	started := time.Now()
	asset, err := s.storage.UploadVideo(uploadCtx, handle.name, handle.reader)
	if err != nil {
		observability.MediaUploads().WithLabelValues("video", "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload_failed")
		s.logger.Error().Err(err).Dur("elapsed", time.Since(started)).Msg("video upload failed")
		return dto.VideoResponse{}, err
	}

	bytes := asset.Bytes
	if bytes == 0 {
		bytes = handle.size
	}
	video := models.Video{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		Subject:     strings.TrimSpace(payload.Subject),
		Grade:       strings.TrimSpace(payload.Grade),
		PublicID:    asset.PublicID,
		Format:      asset.Format,
		Bytes:       bytes,
		UploadedBy:  actor.ID,

		DurationSeconds: payload.DurationSeconds,
	}

	if err := s.repo.Create(ctx, &video); err != nil {
		if destroyErr := s.storage.DestroyVideo(context.WithoutCancel(ctx), asset.PublicID); destroyErr != nil {
			s.logger.Error().Err(destroyErr).Str("public_id", asset.PublicID).Msg("failed to remove orphaned video")
		}
		return dto.VideoResponse{}, err
	}

	observability.MediaUploads().WithLabelValues("video", "stored").Inc()
	s.logger.Info().
		Uint("video_id", video.ID).
		Str("public_id", video.PublicID).
		Int64("bytes", video.Bytes).
		Dur("elapsed", time.Since(started)).
		Msg("video uploaded")

	if err := s.publisher.Publish(ctx, events.SubjectVideoUploaded, map[string]interface{}{
		"video_id":  video.ID,
		"public_id": video.PublicID,
		"subject":   video.Subject,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("video_id", video.ID).Msg("failed to publish video event")
	}

	return s.toResponse(video), nil
}

func (s *videoService) Delete(ctx context.Context, actor Actor, id uint) error {
	video, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsTeacher() || !actor.Owns(video.UploadedBy) {
		return ErrForbidden
	}

	if s.storage != nil {
		if err := s.storage.DestroyVideo(ctx, video.PublicID); err != nil {
			s.logger.Error().Err(err).Str("public_id", video.PublicID).Msg("failed to destroy hosted video")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVideoNotFound
		}
		return err
	}

	s.logger.Info().Uint("video_id", id).Msg("video deleted")
	return nil
}

func (s *videoService) load(ctx context.Context, id uint) (models.Video, error) {
	video, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Video{}, ErrVideoNotFound
		}
		return models.Video{}, err
	}
	return video, nil
}

func (s *videoService) toResponse(video models.Video) dto.VideoResponse {
	response := dto.VideoResponse{Video: video}
	if s.storage != nil && video.PublicID != "" {
		response.StreamURL = s.storage.StreamURL(video.PublicID)
		response.ThumbnailURL = s.storage.ThumbnailURL(video.PublicID)
	}
	return response
}
