package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// QuestionType discriminates the question variants of an exercise.
type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "single-choice"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionMultipleSelect QuestionType = "multiple-select"
	QuestionShortAnswer    QuestionType = "short-answer"
)

// Question is one entry of an exercise. Which answer-key field is meaningful depends on Type:
// CorrectAnswer for single-choice and true-false, CorrectAnswers for multiple-select, none for
// short-answer.
type Question struct {
	Type           QuestionType `json:"type"`
	Text           string       `json:"question"`
	Options        []string     `json:"options,omitempty"`
	CorrectAnswer  *int         `json:"correct_answer,omitempty"`
	CorrectAnswers []int        `json:"correct_answers,omitempty"`
	Points         int          `json:"points"`
	Explanation    string       `json:"explanation,omitempty"`
}

// Exercise is an auto-graded quiz authored by a teacher.
type Exercise struct {
	ID               uint                          `gorm:"primaryKey" json:"id"`
	Title            string                        `gorm:"size:255;not null" json:"title"`
	Description      string                        `gorm:"type:text" json:"description"`
	Category         string                        `gorm:"size:64;index" json:"category"`
	Difficulty       string                        `gorm:"size:32;index" json:"difficulty"`
	TimeLimitMinutes *int                          `json:"time_limit_minutes"`
	DueDate          *time.Time                    `json:"due_date"`
	Questions        datatypes.JSONSlice[Question] `json:"questions"`
	TotalPoints      int                           `gorm:"not null;default:0" json:"total_points"`
	CreatedBy        uint                          `gorm:"index;not null" json:"created_by"`
	Published        bool                          `gorm:"index;not null;default:false" json:"published"`
	TotalAttempts    int                           `gorm:"not null;default:0" json:"total_attempts"`
	AverageScore     float64                       `gorm:"not null;default:0" json:"average_score"`
	CreatedAt        time.Time                     `json:"created_at"`
	UpdatedAt        time.Time                     `json:"updated_at"`
}

// IsPastDue reports whether the exercise has a due date before reference.
func (e Exercise) IsPastDue(reference time.Time) bool {
	return e.DueDate != nil && reference.After(*e.DueDate)
}

// GradedAnswer records how a single answer was scored. QuestionID is the index into the
// exercise's question list at submission time and MaxPoints is that question's value then.
type GradedAnswer struct {
	QuestionID         int             `json:"question_id"`
	StudentAnswer      json.RawMessage `json:"student_answer"`
	IsCorrect          bool            `json:"is_correct"`
	EarnedPoints       int             `json:"earned_points"`
	MaxPoints          int             `json:"max_points"`
	NeedsManualGrading bool            `json:"needs_manual_grading"`
}

// ExerciseSubmission is a student's single graded attempt at an exercise. TotalPoints is a
// snapshot taken at submission time.
type ExerciseSubmission struct {
	ID               uint                              `gorm:"primaryKey" json:"id"`
	ExerciseID       uint                              `gorm:"not null;uniqueIndex:idx_submission_exercise_student" json:"exercise_id"`
	StudentID        uint                              `gorm:"not null;uniqueIndex:idx_submission_exercise_student;index" json:"student_id"`
	Answers          datatypes.JSONSlice[GradedAnswer] `json:"answers"`
	Score            int                               `gorm:"not null" json:"score"`
	TotalPoints      int                               `gorm:"not null" json:"total_points"`
	Percentage       float64                           `gorm:"not null" json:"percentage"`
	TimeSpentSeconds int                               `json:"time_spent_seconds"`
	SubmittedAt      time.Time                         `gorm:"index" json:"submitted_at"`
	NeedsGrading     bool                              `gorm:"index" json:"needs_grading"`
	GradedBy         *uint                             `json:"graded_by"`
	GradedAt         *time.Time                        `json:"graded_at"`
	Feedback         string                            `gorm:"type:text" json:"feedback"`
	CreatedAt        time.Time                         `json:"created_at"`
	UpdatedAt        time.Time                         `json:"updated_at"`
	Exercise         Exercise                          `gorm:"foreignKey:ExerciseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
