package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// VideoRepository persists video lesson metadata.
type VideoRepository interface {
	List(ctx context.Context, filter CatalogFilter) ([]models.Video, error)
	GetByID(ctx context.Context, id uint) (models.Video, error)
	Create(ctx context.Context, video *models.Video) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
}

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository constructs a GORM-backed video repository.
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) List(ctx context.Context, filter CatalogFilter) ([]models.Video, error) {
	query := r.db.WithContext(ctx).Model(&models.Video{})
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Grade != "" {
		query = query.Where("grade = ?", filter.Grade)
	}
	if filter.OwnerID != nil {
		query = query.Where("uploaded_by = ?", *filter.OwnerID)
	}

	var videos []models.Video
	if err := query.Order("created_at DESC").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepository) GetByID(ctx context.Context, id uint) (models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).First(&video, id).Error; err != nil {
		return models.Video{}, err
	}
	return video, nil
}

func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *videoRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Video{}, id)
}

func (r *videoRepository) IncrementViews(ctx context.Context, id uint) error {
	return incrementColumn(ctx, r.db, &models.Video{}, id, "views")
}
