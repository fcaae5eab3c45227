package dto

import (
	"encoding/json"
	"time"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// QuestionRequest is one question in an exercise payload. Per-type rules are checked after
// struct validation.
type QuestionRequest struct {
	Type           string   `json:"type" validate:"required"`
	Question       string   `json:"question" validate:"required,max=2000"`
	Options        []string `json:"options" validate:"omitempty,dive,required,max=500"`
	CorrectAnswer  *int     `json:"correct_answer" validate:"omitempty,gte=0"`
	CorrectAnswers []int    `json:"correct_answers" validate:"omitempty,dive,gte=0"`
	Points         int      `json:"points" validate:"required,gte=1,lte=1000"`
	Explanation    string   `json:"explanation" validate:"omitempty,max=2000"`
}

// ExerciseCreateRequest creates a draft exercise.
type ExerciseCreateRequest struct {
	Title            string            `json:"title" validate:"required,min=3,max=255"`
	Description      string            `json:"description" validate:"omitempty,max=5000"`
	Category         string            `json:"category" validate:"required,max=64"`
	Difficulty       string            `json:"difficulty" validate:"required,oneof=easy medium hard"`
	TimeLimitMinutes *int              `json:"time_limit_minutes" validate:"omitempty,gte=1,lte=600"`
	DueDate          *time.Time        `json:"due_date"`
	Questions        []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

// ExerciseUpdateRequest patches an exercise. Nil fields are left unchanged.
type ExerciseUpdateRequest struct {
	Title            *string           `json:"title" validate:"omitempty,min=3,max=255"`
	Description      *string           `json:"description" validate:"omitempty,max=5000"`
	Category         *string           `json:"category" validate:"omitempty,max=64"`
	Difficulty       *string           `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	TimeLimitMinutes *int              `json:"time_limit_minutes" validate:"omitempty,gte=1,lte=600"`
	DueDate          *time.Time        `json:"due_date"`
	Questions        []QuestionRequest `json:"questions" validate:"omitempty,min=1,dive"`
}

// PublishRequest toggles exercise visibility.
type PublishRequest struct {
	Published *bool `json:"published" validate:"required"`
}

// ExerciseQuery carries list filters from the query string.
type ExerciseQuery struct {
	Category   string `query:"category"`
	Difficulty string `query:"difficulty"`
	Search     string `query:"search"`
	Sort       string `query:"sort" validate:"omitempty,oneof=newest oldest title due_date"`
	Mine       bool   `query:"mine"`
	Page       int    `query:"page"`
	PageSize   int    `query:"page_size"`
}

// SubmitRequest carries a student's answers, index-aligned with the questions.
type SubmitRequest struct {
	Answers          []json.RawMessage `json:"answers" validate:"required"`
	TimeSpentSeconds int               `json:"time_spent_seconds" validate:"gte=0"`
}

// GradeAward assigns points to one manually graded answer.
type GradeAward struct {
	QuestionID int `json:"question_id" validate:"gte=0"`
	Points     int `json:"points" validate:"gte=0"`
}

// ManualGradeRequest grades the short answers of a submission.
type ManualGradeRequest struct {
	Awards   []GradeAward `json:"awards" validate:"required,min=1,dive"`
	Feedback string       `json:"feedback" validate:"omitempty,max=5000"`
}

// ExerciseResponse is the API view of an exercise. Answer keys are omitted for students.
type ExerciseResponse struct {
	ID               uint              `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Category         string            `json:"category"`
	Difficulty       string            `json:"difficulty"`
	TimeLimitMinutes *int              `json:"time_limit_minutes"`
	DueDate          *time.Time        `json:"due_date"`
	Questions        []models.Question `json:"questions"`
	QuestionCount    int               `json:"question_count"`
	TotalPoints      int               `json:"total_points"`
	CreatedBy        uint              `json:"created_by"`
	Published        bool              `json:"published"`
	TotalAttempts    int               `json:"total_attempts"`
	AverageScore     float64           `json:"average_score"`
	HasSubmitted     *bool             `json:"has_submitted,omitempty"`
	PastDue          bool              `json:"past_due"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// SubmissionResponse is the API view of a graded submission.
type SubmissionResponse struct {
	ID               uint                  `json:"id"`
	ExerciseID       uint                  `json:"exercise_id"`
	ExerciseTitle    string                `json:"exercise_title,omitempty"`
	StudentID        uint                  `json:"student_id"`
	Answers          []models.GradedAnswer `json:"answers"`
	Score            int                   `json:"score"`
	TotalPoints      int                   `json:"total_points"`
	Percentage       float64               `json:"percentage"`
	TimeSpentSeconds int                   `json:"time_spent_seconds"`
	SubmittedAt      time.Time             `json:"submitted_at"`
	NeedsGrading     bool                  `json:"needs_grading"`
	GradedBy         *uint                 `json:"graded_by"`
	GradedAt         *time.Time            `json:"graded_at"`
	Feedback         string                `json:"feedback"`
}

// NewExerciseResponse converts an exercise. When hideKeys is set the correct answers and
// explanations are removed.
func NewExerciseResponse(exercise models.Exercise, hideKeys bool) ExerciseResponse {
	questions := make([]models.Question, 0, len(exercise.Questions))
	for _, question := range exercise.Questions {
		if hideKeys {
			question.CorrectAnswer = nil
			question.CorrectAnswers = nil
			question.Explanation = ""
		}
		questions = append(questions, question)
	}

	return ExerciseResponse{
		ID:               exercise.ID,
		Title:            exercise.Title,
		Description:      exercise.Description,
		Category:         exercise.Category,
		Difficulty:       exercise.Difficulty,
		TimeLimitMinutes: exercise.TimeLimitMinutes,
		DueDate:          exercise.DueDate,
		Questions:        questions,
		QuestionCount:    len(questions),
		TotalPoints:      exercise.TotalPoints,
		CreatedBy:        exercise.CreatedBy,
		Published:        exercise.Published,
		TotalAttempts:    exercise.TotalAttempts,
		AverageScore:     exercise.AverageScore,
		CreatedAt:        exercise.CreatedAt,
		UpdatedAt:        exercise.UpdatedAt,
	}
}

// NewSubmissionResponse converts a submission model.
func NewSubmissionResponse(submission models.ExerciseSubmission) SubmissionResponse {
	answers := []models.GradedAnswer(submission.Answers)
	if answers == nil {
		answers = []models.GradedAnswer{}
	}

	return SubmissionResponse{
		ID:               submission.ID,
		ExerciseID:       submission.ExerciseID,
		ExerciseTitle:    submission.Exercise.Title,
		StudentID:        submission.StudentID,
		Answers:          answers,
		Score:            submission.Score,
		TotalPoints:      submission.TotalPoints,
		Percentage:       submission.Percentage,
		TimeSpentSeconds: submission.TimeSpentSeconds,
		SubmittedAt:      submission.SubmittedAt,
		NeedsGrading:     submission.NeedsGrading,
		GradedBy:         submission.GradedBy,
		GradedAt:         submission.GradedAt,
		Feedback:         submission.Feedback,
	}
}

// NewSubmissionResponses converts a slice of submissions.
func NewSubmissionResponses(submissions []models.ExerciseSubmission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}

// ToQuestion converts the request into the stored question shape.
func (q QuestionRequest) ToQuestion() models.Question {
	return models.Question{
		Type:           models.QuestionType(q.Type),
		Text:           q.Question,
		Options:        q.Options,
		CorrectAnswer:  q.CorrectAnswer,
		CorrectAnswers: q.CorrectAnswers,
		Points:         q.Points,
		Explanation:    q.Explanation,
	}
}

// ToQuestions converts a slice of question requests.
func ToQuestions(requests []QuestionRequest) []models.Question {
	questions := make([]models.Question, 0, len(requests))
	for _, request := range requests {
		questions = append(questions, request.ToQuestion())
	}
	return questions
}
