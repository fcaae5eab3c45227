package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// BookRepository persists library books.
type BookRepository interface {
	List(ctx context.Context, filter CatalogFilter) ([]models.Book, error)
	GetByID(ctx context.Context, id uint) (models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error
	IncrementDownloads(ctx context.Context, id uint) error
}

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository constructs a GORM-backed book repository.
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) List(ctx context.Context, filter CatalogFilter) ([]models.Book, error) {
	query := r.db.WithContext(ctx).Model(&models.Book{})
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Grade != "" {
		query = query.Where("grade = ?", filter.Grade)
	}
	if filter.Language != "" {
		query = query.Where("language = ?", filter.Language)
	}
	if filter.OwnerID != nil {
		query = query.Where("uploaded_by = ?", *filter.OwnerID)
	}

	var books []models.Book
	if err := query.Order("created_at DESC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id uint) (models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return models.Book{}, err
	}
	return book, nil
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Book{}, id)
}

func (r *bookRepository) IncrementDownloads(ctx context.Context, id uint) error {
	return incrementColumn(ctx, r.db, &models.Book{}, id, "downloads")
}
