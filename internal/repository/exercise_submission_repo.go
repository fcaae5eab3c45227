package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// ErrDuplicateSubmission indicates the student already submitted the exercise.
var ErrDuplicateSubmission = errors.New("exercise already submitted")

// ExerciseSubmissionRepository persists graded submissions and the exercise statistics they drive.
type ExerciseSubmissionRepository interface {
	ExistsForStudent(ctx context.Context, exerciseID, studentID uint) (bool, error)
	CreateWithAttempt(ctx context.Context, submission *models.ExerciseSubmission) error
	GetByID(ctx context.Context, id uint) (models.ExerciseSubmission, error)
	ListByExercise(ctx context.Context, exerciseID uint) ([]models.ExerciseSubmission, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.ExerciseSubmission, error)
	SaveManualGrade(ctx context.Context, submission *models.ExerciseSubmission, previousPercentage float64) error
}

type exerciseSubmissionRepository struct {
	db *gorm.DB
}

// NewExerciseSubmissionRepository constructs the repository.
func NewExerciseSubmissionRepository(db *gorm.DB) ExerciseSubmissionRepository {
	return &exerciseSubmissionRepository{db: db}
}

func (r *exerciseSubmissionRepository) ExistsForStudent(ctx context.Context, exerciseID, studentID uint) (bool, error) {
	return submissionExists(r.db.WithContext(ctx), exerciseID, studentID)
}

// CreateWithAttempt inserts the submission and folds its percentage into the exercise's
// running mean in one transaction. The statistics change is a single UPDATE evaluated against
// the row's current values, so concurrent submissions cannot lose an attempt.
func (r *exerciseSubmissionRepository) CreateWithAttempt(ctx context.Context, submission *models.ExerciseSubmission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := submissionExists(tx, submission.ExerciseID, submission.StudentID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateSubmission
		}

		if err := tx.Omit(clause.Associations).Create(submission).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateSubmission
			}
			return err
		}

		result := tx.Model(&models.Exercise{}).
			Where("id = ?", submission.ExerciseID).
			UpdateColumns(map[string]interface{}{
				"average_score":  gorm.Expr("(average_score * total_attempts + ?) / (total_attempts + 1)", submission.Percentage),
				"total_attempts": gorm.Expr("total_attempts + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *exerciseSubmissionRepository) GetByID(ctx context.Context, id uint) (models.ExerciseSubmission, error) {
	var submission models.ExerciseSubmission
	if err := r.db.WithContext(ctx).Preload("Exercise").First(&submission, id).Error; err != nil {
		return models.ExerciseSubmission{}, err
	}
	return submission, nil
}

func (r *exerciseSubmissionRepository) ListByExercise(ctx context.Context, exerciseID uint) ([]models.ExerciseSubmission, error) {
	var submissions []models.ExerciseSubmission
	err := r.db.WithContext(ctx).
		Where("exercise_id = ?", exerciseID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *exerciseSubmissionRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.ExerciseSubmission, error) {
	var submissions []models.ExerciseSubmission
	err := r.db.WithContext(ctx).
		Preload("Exercise").
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

// SaveManualGrade persists a teacher's grading and shifts the exercise mean by the change in
// this submission's percentage.
func (r *exerciseSubmissionRepository) SaveManualGrade(ctx context.Context, submission *models.ExerciseSubmission, previousPercentage float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(submission).Error; err != nil {
			return err
		}

		delta := submission.Percentage - previousPercentage
		if delta == 0 {
			return nil
		}

		return tx.Model(&models.Exercise{}).
			Where("id = ? AND total_attempts > 0", submission.ExerciseID).
			UpdateColumn("average_score", gorm.Expr("average_score + CAST(? AS DOUBLE PRECISION) / total_attempts", delta)).Error
	})
}

func submissionExists(db *gorm.DB, exerciseID, studentID uint) (bool, error) {
	var count int64
	err := db.Model(&models.ExerciseSubmission{}).
		Where("exercise_id = ? AND student_id = ?", exerciseID, studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
