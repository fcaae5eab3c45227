package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/observability"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
)

const (
	overviewCacheKey    = "analytics:overview"
	recentSubmissionCap = 5
)

// AnalyticsService aggregates dashboard figures.
type AnalyticsService interface {
	Overview(ctx context.Context, actor Actor) (dto.AnalyticsOverviewResponse, error)
	StudentProgress(ctx context.Context, actor Actor) (dto.StudentProgressResponse, error)
}

type analyticsService struct {
	repo        repository.AnalyticsRepository
	submissions repository.ExerciseSubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAnalyticsService constructs the analytics service. A nil cache disables caching.
func NewAnalyticsService(repo repository.AnalyticsRepository, submissions repository.ExerciseSubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AnalyticsService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &analyticsService{
		repo:        repo,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "analytics_service").Logger(),
		now:         time.Now,
	}
}

func (s *analyticsService) Overview(ctx context.Context, actor Actor) (dto.AnalyticsOverviewResponse, error) {
	if !actor.IsTeacher() {
		return dto.AnalyticsOverviewResponse{}, ErrForbidden
	}

	tracer := otel.Tracer("github.com/sseth345/srilanka-learning-platform/internal/service/analytics")
	ctx, span := tracer.Start(ctx, "analytics.overview")
	span.SetAttributes(attribute.String("analytics.cache_key", overviewCacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, overviewCacheKey).Result()
		switch {
		case err == nil:
			var response dto.AnalyticsOverviewResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				observability.AnalyticsCacheLookups().WithLabelValues("hit").Inc()
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				return response, nil
			}
		case errors.Is(err, redis.Nil):
		default:
			s.logger.Warn().Err(err).Msg("failed to read analytics cache")
			span.RecordError(err)
		}
		observability.AnalyticsCacheLookups().WithLabelValues("miss").Inc()
	}

	totals, err := s.repo.Totals(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "totals_failed")
		return dto.AnalyticsOverviewResponse{}, err
	}

	categories, err := s.repo.ExercisesByCategory(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "categories_failed")
		return dto.AnalyticsOverviewResponse{}, err
	}

	response := dto.AnalyticsOverviewResponse{
		Students:            totals.Students,
		Teachers:            totals.Teachers,
		Exercises:           totals.Exercises,
		PublishedExercises:  totals.PublishedExercises,
		Submissions:         totals.Submissions,
		PendingGrading:      totals.PendingGrading,
		AveragePercentage:   roundTo(totals.AveragePercentage, 2),
		ExercisesByCategory: make([]dto.CategoryCountResponse, 0, len(categories)),
		GeneratedAt:         s.now().UTC().Format(time.RFC3339),
	}
	for _, category := range categories {
		response.ExercisesByCategory = append(response.ExercisesByCategory, dto.CategoryCountResponse{
			Category: category.Category,
			Count:    category.Count,
		})
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, overviewCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store analytics cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}

func (s *analyticsService) StudentProgress(ctx context.Context, actor Actor) (dto.StudentProgressResponse, error) {
	submissions, err := s.submissions.ListByStudent(ctx, actor.ID)
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}

	return summarizeProgress(submissions), nil
}

func summarizeProgress(submissions []models.ExerciseSubmission) dto.StudentProgressResponse {
	progress := dto.StudentProgressResponse{
		Submissions: len(submissions),
		Recent:      []dto.SubmissionResponse{},
	}
	if len(submissions) == 0 {
		return progress
	}

	sum := 0.0
	for idx, submission := range submissions {
		sum += submission.Percentage
		if idx == 0 || submission.Percentage > progress.BestPercentage {
			progress.BestPercentage = submission.Percentage
		}
		if submission.NeedsGrading {
			progress.PendingGrading++
		}
	}
	progress.AveragePercentage = roundTo(sum/float64(len(submissions)), 2)

	recent := make([]models.ExerciseSubmission, len(submissions))
	copy(recent, submissions)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].SubmittedAt.After(recent[j].SubmittedAt)
	})
	if len(recent) > recentSubmissionCap {
		recent = recent[:recentSubmissionCap]
	}
	progress.Recent = dto.NewSubmissionResponses(recent)
	return progress
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
