package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// CategoryCount pairs an exercise category with its count.
type CategoryCount struct {
	Category string
	Count    int64
}

// PlatformTotals holds the platform-wide counters shown to teachers.
type PlatformTotals struct {
	Students           int64
	Teachers           int64
	Exercises          int64
	PublishedExercises int64
	Submissions        int64
	PendingGrading     int64
	AveragePercentage  float64
}

// AnalyticsRepository answers aggregate queries for dashboards.
type AnalyticsRepository interface {
	Totals(ctx context.Context) (PlatformTotals, error)
	ExercisesByCategory(ctx context.Context) ([]CategoryCount, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository constructs the analytics repository.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Totals(ctx context.Context) (PlatformTotals, error) {
	db := r.db.WithContext(ctx)
	var totals PlatformTotals

	if err := db.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&totals.Students).Error; err != nil {
		return PlatformTotals{}, err
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleTeacher).Count(&totals.Teachers).Error; err != nil {
		return PlatformTotals{}, err
	}
	if err := db.Model(&models.Exercise{}).Count(&totals.Exercises).Error; err != nil {
		return PlatformTotals{}, err
	}
	if err := db.Model(&models.Exercise{}).Where("published = ?", true).Count(&totals.PublishedExercises).Error; err != nil {
		return PlatformTotals{}, err
	}
	if err := db.Model(&models.ExerciseSubmission{}).Count(&totals.Submissions).Error; err != nil {
		return PlatformTotals{}, err
	}
	if err := db.Model(&models.ExerciseSubmission{}).Where("needs_grading = ?", true).Count(&totals.PendingGrading).Error; err != nil {
		return PlatformTotals{}, err
	}

	var average struct {
		Value *float64
	}
	if err := db.Model(&models.ExerciseSubmission{}).Select("AVG(percentage) AS value").Scan(&average).Error; err != nil {
		return PlatformTotals{}, err
	}
	if average.Value != nil {
		totals.AveragePercentage = *average.Value
	}

	return totals, nil
}

func (r *analyticsRepository) ExercisesByCategory(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.WithContext(ctx).
		Model(&models.Exercise{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("category ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
