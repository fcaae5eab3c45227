package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

const (
	resourceAuto  = "auto"
	resourceVideo = "video"
	deliveryHost  = "https://res.cloudinary.com"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Asset describes an uploaded resource.
type Asset struct {
	PublicID  string
	SecureURL string
	Format    string
	Bytes     int64
}

// Service uploads study materials and video lessons to Cloudinary.
type Service struct {
	client    *cloudinary.Cloudinary
	cloudName string
	folder    string
	logger    zerolog.Logger
	now       func() time.Time
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client:    cld,
		cloudName: cfg.CloudName,
		folder:    strings.Trim(cfg.Folder, "/"),
		logger:    logger.With().Str("component", "cloudinary").Logger(),
		now:       time.Now,
	}, nil
}

// Upload stores a document or image and returns its secure URL.
func (s *Service) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	asset, err := s.upload(ctx, name, reader, resourceAuto, "files")
	if err != nil {
		return "", err
	}
	return asset.SecureURL, nil
}

// UploadVideo stores a video lesson.
func (s *Service) UploadVideo(ctx context.Context, name string, reader io.Reader) (Asset, error) {
	return s.upload(ctx, name, reader, resourceVideo, "videos")
}

// DestroyVideo removes a video asset.
func (s *Service) DestroyVideo(ctx context.Context, publicID string) error {
	result, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceVideo,
	})
	if err != nil {
		return fmt.Errorf("failed to destroy asset: %w", err)
	}
	if result != nil && result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("failed to destroy asset: %s", result.Result)
	}

	s.logger.Info().Str("public_id", publicID).Msg("video removed from cloudinary")
	return nil
}

// StreamURL returns the delivery URL of a video.
func (s *Service) StreamURL(publicID string) string {
	return VideoURL(s.cloudName, publicID)
}

// ThumbnailURL returns a poster frame for a video.
func (s *Service) ThumbnailURL(publicID string) string {
	return ThumbnailURL(s.cloudName, publicID)
}

// VideoURL builds the MP4 delivery URL for a video public ID.
func VideoURL(cloudName, publicID string) string {
	return fmt.Sprintf("%s/%s/video/upload/%s.mp4", deliveryHost, cloudName, publicID)
}

// ThumbnailURL builds a JPEG poster URL taken from the first second of a video.
func ThumbnailURL(cloudName, publicID string) string {
	return fmt.Sprintf("%s/%s/video/upload/so_1,w_640,c_limit/%s.jpg", deliveryHost, cloudName, publicID)
}

func (s *Service) upload(ctx context.Context, name string, reader io.Reader, resourceType, subfolder string) (Asset, error) {
	folder := subfolder
	if s.folder != "" {
		folder = s.folder + "/" + subfolder
	}

	params := uploader.UploadParams{
		Folder:       folder,
		PublicID:     buildPublicID(name, s.now()),
		ResourceType: resourceType,
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return Asset{}, fmt.Errorf("failed to upload asset: %w", err)
	}
	if result == nil {
		return Asset{}, errors.New("failed to upload asset: empty response")
	}
	if result.Error.Message != "" {
		return Asset{}, fmt.Errorf("failed to upload asset: %s", result.Error.Message)
	}

	s.logger.Info().
		Str("public_id", result.PublicID).
		Str("resource_type", resourceType).
		Int("bytes", result.Bytes).
		Msg("asset uploaded to cloudinary")

	return Asset{
		PublicID:  result.PublicID,
		SecureURL: result.SecureURL,
		Format:    result.Format,
		Bytes:     int64(result.Bytes),
	}, nil
}

func buildPublicID(name string, now time.Time) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "upload"
	}

	return fmt.Sprintf("%s-%d", strings.ToLower(base), now.UnixNano())
}
