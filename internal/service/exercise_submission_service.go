package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/events"
	"github.com/sseth345/srilanka-learning-platform/internal/grading"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/observability"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
)

// ExerciseSubmissionService grades student attempts and exposes them to their owners.
type ExerciseSubmissionService interface {
	Submit(ctx context.Context, actor Actor, exerciseID uint, payload dto.SubmitRequest) (dto.SubmissionResponse, error)
	ListForExercise(ctx context.Context, actor Actor, exerciseID uint) ([]dto.SubmissionResponse, error)
	ListMine(ctx context.Context, actor Actor) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, actor Actor, id uint, payload dto.ManualGradeRequest) (dto.SubmissionResponse, error)
}

// SubmissionEvent is published after a submission is stored or graded.
type SubmissionEvent struct {
	SubmissionID uint    `json:"submission_id"`
	ExerciseID   uint    `json:"exercise_id"`
	StudentID    uint    `json:"student_id"`
	Score        int     `json:"score"`
	TotalPoints  int     `json:"total_points"`
	Percentage   float64 `json:"percentage"`
	NeedsGrading bool    `json:"needs_grading"`
}

type exerciseSubmissionService struct {
	exercises   repository.ExerciseRepository
	submissions repository.ExerciseSubmissionRepository
	publisher   events.Publisher
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewExerciseSubmissionService constructs the submission service. A nil publisher disables events.
func NewExerciseSubmissionService(exercises repository.ExerciseRepository, submissions repository.ExerciseSubmissionRepository, publisher events.Publisher, validate *validator.Validate, logger zerolog.Logger) ExerciseSubmissionService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &exerciseSubmissionService{
		exercises:   exercises,
		submissions: submissions,
		publisher:   publisher,
		validator:   validate,
		logger:      logger.With().Str("component", "exercise_submission_service").Logger(),
		tracer:      otel.Tracer("github.com/sseth345/srilanka-learning-platform/internal/service/exercise_submission"),
		now:         time.Now,
	}
}

func (s *exerciseSubmissionService) Submit(ctx context.Context, actor Actor, exerciseID uint, payload dto.SubmitRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "exercise.submit", trace.WithAttributes(
		attribute.Int64("exercise.id", int64(exerciseID)),
		attribute.Int64("student.id", int64(actor.ID)),
	))
	defer span.End()

	response, err := s.submit(ctx, actor, exerciseID, payload, span)
	switch {
	case err == nil:
		observability.ExerciseSubmissions().WithLabelValues("accepted").Inc()
	case errors.Is(err, ErrDuplicateSubmission):
		observability.ExerciseSubmissions().WithLabelValues("duplicate").Inc()
		span.SetAttributes(attribute.Bool("submission.duplicate", true))
	default:
		observability.ExerciseSubmissions().WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_failed")
	}
	return response, err
}

func (s *exerciseSubmissionService) submit(ctx context.Context, actor Actor, exerciseID uint, payload dto.SubmitRequest, span trace.Span) (dto.SubmissionResponse, error) {
	if !actor.IsStudent() {
		return dto.SubmissionResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	exercise, err := loadExercise(ctx, s.exercises, exerciseID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !exercise.Published {
		return dto.SubmissionResponse{}, ErrExerciseNotFound
	}

	// Duplicates are rejected before grading. CreateWithAttempt re-checks inside its transaction.
	exists, err := s.submissions.ExistsForStudent(ctx, exercise.ID, actor.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if exists {
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	}

	_, gradeSpan := s.tracer.Start(ctx, "exercise.grade")
	outcome := grading.Aggregate(exercise.Questions, payload.Answers, exercise.TotalPoints)
	gradeSpan.SetAttributes(
		attribute.Int("grading.score", outcome.Score),
		attribute.Int("grading.total_points", outcome.TotalPoints),
		attribute.Bool("grading.needs_manual", outcome.NeedsGrading),
	)
	gradeSpan.End()

	submission := models.ExerciseSubmission{
		ExerciseID:       exercise.ID,
		StudentID:        actor.ID,
		Answers:          datatypes.NewJSONSlice(outcome.Answers),
		Score:            outcome.Score,
		TotalPoints:      outcome.TotalPoints,
		Percentage:       outcome.Percentage,
		TimeSpentSeconds: payload.TimeSpentSeconds,
		SubmittedAt:      s.now().UTC(),
		NeedsGrading:     outcome.NeedsGrading,
	}

	if err := s.submissions.CreateWithAttempt(ctx, &submission); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrExerciseNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	submission.Exercise = exercise

	observability.ExerciseScores().Observe(submission.Percentage)
	span.SetAttributes(attribute.Float64("submission.percentage", submission.Percentage))

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("exercise_id", exercise.ID).
		Uint("student_id", actor.ID).
		Int("score", submission.Score).
		Float64("percentage", submission.Percentage).
		Bool("needs_grading", submission.NeedsGrading).
		Msg("exercise submitted")

	s.publish(ctx, events.SubjectExerciseSubmitted, submission)

	return dto.NewSubmissionResponse(submission), nil
}

func (s *exerciseSubmissionService) ListForExercise(ctx context.Context, actor Actor, exerciseID uint) ([]dto.SubmissionResponse, error) {
	if !actor.IsTeacher() {
		return nil, ErrForbidden
	}
	exercise, err := loadExercise(ctx, s.exercises, exerciseID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(exercise.CreatedBy) {
		return nil, ErrForbidden
	}

	submissions, err := s.submissions.ListByExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	for idx := range submissions {
		submissions[idx].Exercise = exercise
	}
	return dto.NewSubmissionResponses(submissions), nil
}

func (s *exerciseSubmissionService) ListMine(ctx context.Context, actor Actor) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponses(submissions), nil
}

func (s *exerciseSubmissionService) Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !actor.Owns(submission.StudentID) && !(actor.IsTeacher() && actor.Owns(submission.Exercise.CreatedBy)) {
		return dto.SubmissionResponse{}, ErrForbidden
	}
	return dto.NewSubmissionResponse(submission), nil
}

func (s *exerciseSubmissionService) Grade(ctx context.Context, actor Actor, id uint, payload dto.ManualGradeRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "exercise.manual_grade", trace.WithAttributes(
		attribute.Int64("submission.id", int64(id)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !actor.IsTeacher() || !actor.Owns(submission.Exercise.CreatedBy) {
		return dto.SubmissionResponse{}, ErrForbidden
	}

	awards := make(map[int]int, len(payload.Awards))
	for _, award := range payload.Awards {
		awards[award.QuestionID] = award.Points
	}

	outcome, err := grading.Regrade(submission.Answers, awards, submission.TotalPoints)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "regrade_failed")
		return dto.SubmissionResponse{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	previous := submission.Percentage
	gradedAt := s.now().UTC()
	grader := actor.ID
	submission.Answers = datatypes.NewJSONSlice(outcome.Answers)
	submission.Score = outcome.Score
	submission.Percentage = outcome.Percentage
	submission.NeedsGrading = false
	submission.GradedBy = &grader
	submission.GradedAt = &gradedAt
	submission.Feedback = payload.Feedback

	if err := s.submissions.SaveManualGrade(ctx, &submission, previous); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save_failed")
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("graded_by", grader).
		Float64("previous_percentage", previous).
		Float64("percentage", submission.Percentage).
		Msg("submission graded manually")

	s.publish(ctx, events.SubjectExerciseGraded, submission)

	return dto.NewSubmissionResponse(submission), nil
}

func (s *exerciseSubmissionService) load(ctx context.Context, id uint) (models.ExerciseSubmission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ExerciseSubmission{}, ErrSubmissionNotFound
		}
		return models.ExerciseSubmission{}, err
	}
	return submission, nil
}

// publish never fails the caller; the submission is already durable.
func (s *exerciseSubmissionService) publish(ctx context.Context, subject string, submission models.ExerciseSubmission) {
	event := SubmissionEvent{
		SubmissionID: submission.ID,
		ExerciseID:   submission.ExerciseID,
		StudentID:    submission.StudentID,
		Score:        submission.Score,
		TotalPoints:  submission.TotalPoints,
		Percentage:   submission.Percentage,
		NeedsGrading: submission.NeedsGrading,
	}
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Uint("submission_id", submission.ID).Msg("failed to publish submission event")
	}
}
