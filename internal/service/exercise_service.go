package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/grading"
	"github.com/sseth345/srilanka-learning-platform/internal/listing"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
)

// ExerciseService manages exercise authoring and visibility.
type ExerciseService interface {
	List(ctx context.Context, actor Actor, query dto.ExerciseQuery) ([]dto.ExerciseResponse, listing.Meta, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.ExerciseResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.ExerciseCreateRequest) (dto.ExerciseResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.ExerciseUpdateRequest) (dto.ExerciseResponse, error)
	SetPublished(ctx context.Context, actor Actor, id uint, published bool) (dto.ExerciseResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type exerciseService struct {
	exercises   repository.ExerciseRepository
	submissions repository.ExerciseSubmissionRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewExerciseService constructs the exercise service.
func NewExerciseService(exercises repository.ExerciseRepository, submissions repository.ExerciseSubmissionRepository, validate *validator.Validate, logger zerolog.Logger) ExerciseService {
	return &exerciseService{
		exercises:   exercises,
		submissions: submissions,
		validator:   validate,
		logger:      logger.With().Str("component", "exercise_service").Logger(),
		now:         time.Now,
	}
}

func (s *exerciseService) List(ctx context.Context, actor Actor, query dto.ExerciseQuery) ([]dto.ExerciseResponse, listing.Meta, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, listing.Meta{}, err
	}

	filter := repository.ExerciseFilter{
		Category:   strings.TrimSpace(query.Category),
		Difficulty: strings.TrimSpace(query.Difficulty),
	}
	switch {
	case !actor.IsTeacher():
		filter.PublishedOnly = true
	case query.Mine:
		owner := actor.ID
		filter.CreatedBy = &owner
	}

	exercises, err := s.exercises.List(ctx, filter)
	if err != nil {
		return nil, listing.Meta{}, err
	}

	exercises = listing.Filter(exercises, func(exercise models.Exercise) bool {
		return listing.MatchesSearch(query.Search, exercise.Title, exercise.Description)
	})
	sortExercises(exercises, query.Sort)

	page, meta := listing.Paginate(exercises, query.Page, query.PageSize)
	responses := make([]dto.ExerciseResponse, 0, len(page))
	for _, exercise := range page {
		responses = append(responses, s.toResponse(exercise, actor))
	}
	return responses, meta, nil
}

func (s *exerciseService) Get(ctx context.Context, actor Actor, id uint) (dto.ExerciseResponse, error) {
	exercise, err := s.visible(ctx, actor, id)
	if err != nil {
		return dto.ExerciseResponse{}, err
	}

	response := s.toResponse(exercise, actor)
	if !actor.IsTeacher() {
		submitted, err := s.submissions.ExistsForStudent(ctx, exercise.ID, actor.ID)
		if err != nil {
			return dto.ExerciseResponse{}, err
		}
		response.HasSubmitted = &submitted
	}
	return response, nil
}

func (s *exerciseService) Create(ctx context.Context, actor Actor, payload dto.ExerciseCreateRequest) (dto.ExerciseResponse, error) {
	if !actor.IsTeacher() {
		return dto.ExerciseResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExerciseResponse{}, err
	}

	questions, err := grading.NormalizeQuestions(dto.ToQuestions(payload.Questions))
	if err != nil {
		return dto.ExerciseResponse{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	exercise := models.Exercise{
		Title:            strings.TrimSpace(payload.Title),
		Description:      strings.TrimSpace(payload.Description),
		Category:         strings.TrimSpace(payload.Category),
		Difficulty:       payload.Difficulty,
		TimeLimitMinutes: payload.TimeLimitMinutes,
		DueDate:          payload.DueDate,
		Questions:        datatypes.NewJSONSlice(questions),
		TotalPoints:      grading.TotalPoints(questions),
		CreatedBy:        actor.ID,
	}

	if err := s.exercises.Create(ctx, &exercise); err != nil {
		return dto.ExerciseResponse{}, err
	}

	s.logger.Info().
		Uint("exercise_id", exercise.ID).
		Uint("created_by", actor.ID).
		Int("questions", len(questions)).
		Int("total_points", exercise.TotalPoints).
		Msg("exercise created")

	return s.toResponse(exercise, actor), nil
}

func (s *exerciseService) Update(ctx context.Context, actor Actor, id uint, payload dto.ExerciseUpdateRequest) (dto.ExerciseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExerciseResponse{}, err
	}

	exercise, err := s.owned(ctx, actor, id)
	if err != nil {
		return dto.ExerciseResponse{}, err
	}

	if payload.Title != nil {
		exercise.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		exercise.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.Category != nil {
		exercise.Category = strings.TrimSpace(*payload.Category)
	}
	if payload.Difficulty != nil {
		exercise.Difficulty = *payload.Difficulty
	}
	if payload.TimeLimitMinutes != nil {
		exercise.TimeLimitMinutes = payload.TimeLimitMinutes
	}
	if payload.DueDate != nil {
		exercise.DueDate = payload.DueDate
	}
	if payload.Questions != nil {
		questions, err := grading.NormalizeQuestions(dto.ToQuestions(payload.Questions))
		if err != nil {
			return dto.ExerciseResponse{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		exercise.Questions = datatypes.NewJSONSlice(questions)
		exercise.TotalPoints = grading.TotalPoints(questions)
	}

	if err := s.exercises.Update(ctx, &exercise); err != nil {
		return dto.ExerciseResponse{}, err
	}

	s.logger.Info().Uint("exercise_id", exercise.ID).Msg("exercise updated")
	return s.toResponse(exercise, actor), nil
}

func (s *exerciseService) SetPublished(ctx context.Context, actor Actor, id uint, published bool) (dto.ExerciseResponse, error) {
	exercise, err := s.owned(ctx, actor, id)
	if err != nil {
		return dto.ExerciseResponse{}, err
	}

	exercise.Published = published
	if err := s.exercises.Update(ctx, &exercise); err != nil {
		return dto.ExerciseResponse{}, err
	}

	s.logger.Info().Uint("exercise_id", exercise.ID).Bool("published", published).Msg("exercise visibility changed")
	return s.toResponse(exercise, actor), nil
}

func (s *exerciseService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}

	if err := s.exercises.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	s.logger.Info().Uint("exercise_id", id).Msg("exercise deleted with its submissions")
	return nil
}

// visible loads an exercise the actor may read. Unpublished exercises do not exist for students.
func (s *exerciseService) visible(ctx context.Context, actor Actor, id uint) (models.Exercise, error) {
	exercise, err := loadExercise(ctx, s.exercises, id)
	if err != nil {
		return models.Exercise{}, err
	}
	if !exercise.Published && !actor.IsTeacher() {
		return models.Exercise{}, ErrExerciseNotFound
	}
	return exercise, nil
}

func (s *exerciseService) owned(ctx context.Context, actor Actor, id uint) (models.Exercise, error) {
	if !actor.IsTeacher() {
		return models.Exercise{}, ErrForbidden
	}
	exercise, err := loadExercise(ctx, s.exercises, id)
	if err != nil {
		return models.Exercise{}, err
	}
	if !actor.Owns(exercise.CreatedBy) {
		return models.Exercise{}, ErrForbidden
	}
	return exercise, nil
}

func (s *exerciseService) toResponse(exercise models.Exercise, actor Actor) dto.ExerciseResponse {
	response := dto.NewExerciseResponse(exercise, !actor.IsTeacher())
	response.PastDue = exercise.IsPastDue(s.now())
	return response
}

func loadExercise(ctx context.Context, repo repository.ExerciseRepository, id uint) (models.Exercise, error) {
	exercise, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Exercise{}, ErrExerciseNotFound
		}
		return models.Exercise{}, err
	}
	return exercise, nil
}

func sortExercises(exercises []models.Exercise, order string) {
	switch order {
	case "oldest":
		listing.SortBy(exercises, func(a, b models.Exercise) bool { return a.CreatedAt.Before(b.CreatedAt) })
	case "title":
		listing.SortBy(exercises, func(a, b models.Exercise) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		})
	case "due_date":
		// Exercises without a due date go last.
		listing.SortBy(exercises, func(a, b models.Exercise) bool {
			switch {
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			default:
				return a.DueDate.Before(*b.DueDate)
			}
		})
	default:
		listing.SortBy(exercises, func(a, b models.Exercise) bool { return a.CreatedAt.After(b.CreatedAt) })
	}
}
