package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// ExerciseFilter holds the equality filters pushed down to storage.
type ExerciseFilter struct {
	Category      string
	Difficulty    string
	CreatedBy     *uint
	PublishedOnly bool
}

// ExerciseRepository persists exercises.
type ExerciseRepository interface {
	List(ctx context.Context, filter ExerciseFilter) ([]models.Exercise, error)
	GetByID(ctx context.Context, id uint) (models.Exercise, error)
	Create(ctx context.Context, exercise *models.Exercise) error
	Update(ctx context.Context, exercise *models.Exercise) error
	Delete(ctx context.Context, id uint) error
}

type exerciseRepository struct {
	db *gorm.DB
}

// NewExerciseRepository instantiates a GORM-backed repository.
func NewExerciseRepository(db *gorm.DB) ExerciseRepository {
	return &exerciseRepository{db: db}
}

func (r *exerciseRepository) List(ctx context.Context, filter ExerciseFilter) ([]models.Exercise, error) {
	query := r.db.WithContext(ctx).Model(&models.Exercise{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.PublishedOnly {
		query = query.Where("published = ?", true)
	}

	var exercises []models.Exercise
	if err := query.Order("created_at DESC").Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *exerciseRepository) GetByID(ctx context.Context, id uint) (models.Exercise, error) {
	var exercise models.Exercise
	if err := r.db.WithContext(ctx).First(&exercise, id).Error; err != nil {
		return models.Exercise{}, err
	}
	return exercise, nil
}

func (r *exerciseRepository) Create(ctx context.Context, exercise *models.Exercise) error {
	return r.db.WithContext(ctx).Create(exercise).Error
}

// Update writes the authored fields only; attempt statistics are owned by submissions.
func (r *exerciseRepository) Update(ctx context.Context, exercise *models.Exercise) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations, "total_attempts", "average_score", "created_by", "created_at").
		Save(exercise).Error
}

// Delete removes the exercise together with every submission made against it.
func (r *exerciseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exercise_id = ?", id).Delete(&models.ExerciseSubmission{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Exercise{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
