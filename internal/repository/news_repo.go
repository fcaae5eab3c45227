package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// NewsFilter narrows news listings.
type NewsFilter struct {
	Category      string
	PublishedOnly bool
}

// NewsRepository persists news posts.
type NewsRepository interface {
	List(ctx context.Context, filter NewsFilter) ([]models.News, error)
	GetByID(ctx context.Context, id uint) (models.News, error)
	Create(ctx context.Context, news *models.News) error
	Update(ctx context.Context, news *models.News) error
	Delete(ctx context.Context, id uint) error
}

type newsRepository struct {
	db *gorm.DB
}

// NewNewsRepository constructs a GORM-backed news repository.
func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) List(ctx context.Context, filter NewsFilter) ([]models.News, error) {
	query := r.db.WithContext(ctx).Model(&models.News{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.PublishedOnly {
		query = query.Where("published = ?", true)
	}

	var items []models.News
	if err := query.Order("published_at DESC").Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *newsRepository) GetByID(ctx context.Context, id uint) (models.News, error) {
	var news models.News
	if err := r.db.WithContext(ctx).First(&news, id).Error; err != nil {
		return models.News{}, err
	}
	return news, nil
}

func (r *newsRepository) Create(ctx context.Context, news *models.News) error {
	return r.db.WithContext(ctx).Create(news).Error
}

func (r *newsRepository) Update(ctx context.Context, news *models.News) error {
	return r.db.WithContext(ctx).Omit("author_id", "created_at").Save(news).Error
}

func (r *newsRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.News{}, id)
}
