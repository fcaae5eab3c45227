package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// CatalogFilter holds equality filters shared by the study material catalogs.
type CatalogFilter struct {
	Subject       string
	Grade         string
	Type          string
	Language      string
	OwnerID       *uint
	PublishedOnly bool
}

// ContentRepository persists study materials.
type ContentRepository interface {
	List(ctx context.Context, filter CatalogFilter) ([]models.Content, error)
	GetByID(ctx context.Context, id uint) (models.Content, error)
	Create(ctx context.Context, content *models.Content) error
	Update(ctx context.Context, content *models.Content) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository constructs a GORM-backed content repository.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) List(ctx context.Context, filter CatalogFilter) ([]models.Content, error) {
	query := r.db.WithContext(ctx).Model(&models.Content{})
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Grade != "" {
		query = query.Where("grade = ?", filter.Grade)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.OwnerID != nil {
		query = query.Where("created_by = ?", *filter.OwnerID)
	}
	if filter.PublishedOnly {
		query = query.Where("published = ?", true)
	}

	var items []models.Content
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *contentRepository) GetByID(ctx context.Context, id uint) (models.Content, error) {
	var content models.Content
	if err := r.db.WithContext(ctx).First(&content, id).Error; err != nil {
		return models.Content{}, err
	}
	return content, nil
}

func (r *contentRepository) Create(ctx context.Context, content *models.Content) error {
	return r.db.WithContext(ctx).Create(content).Error
}

func (r *contentRepository) Update(ctx context.Context, content *models.Content) error {
	return r.db.WithContext(ctx).Omit("views", "created_by", "created_at").Save(content).Error
}

func (r *contentRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Content{}, id)
}

func (r *contentRepository) IncrementViews(ctx context.Context, id uint) error {
	return incrementColumn(ctx, r.db, &models.Content{}, id, "views")
}

func deleteByID(ctx context.Context, db *gorm.DB, model interface{}, id uint) error {
	result := db.WithContext(ctx).Delete(model, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func incrementColumn(ctx context.Context, db *gorm.DB, model interface{}, id uint, column string) error {
	result := db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
