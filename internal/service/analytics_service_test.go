package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
)

func TestAnalyticsOverviewUsesCache(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	for _, user := range []models.User{
		{Name: "Teacher", Email: "teacher@example.lk", PasswordHash: "x", Role: models.RoleTeacher},
		{Name: "Student A", Email: "a@example.lk", PasswordHash: "x", Role: models.RoleStudent},
		{Name: "Student B", Email: "b@example.lk", PasswordHash: "x", Role: models.RoleStudent},
	} {
		require.NoError(t, f.db.Create(&user).Error)
	}

	exercise := f.publishedExercise(t, 1, choice(5, 0), choice(5, 0))
	_, err := f.submissions.Submit(ctx, student(2), exercise.ID, dto.SubmitRequest{Answers: answers(t, 0, 0)})
	require.NoError(t, err)
	_, err = f.submissions.Submit(ctx, student(3), exercise.ID, dto.SubmitRequest{Answers: answers(t, 0, 1)})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewAnalyticsService(
		repository.NewAnalyticsRepository(f.db),
		repository.NewExerciseSubmissionRepository(f.db),
		client,
		time.Minute,
		zerolog.Nop(),
	)

	_, err = svc.Overview(ctx, student(2))
	require.ErrorIs(t, err, ErrForbidden)

	first, err := svc.Overview(ctx, teacher(1))
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Equal(t, int64(2), first.Students)
	require.Equal(t, int64(1), first.Teachers)
	require.Equal(t, int64(1), first.PublishedExercises)
	require.Equal(t, int64(2), first.Submissions)
	require.InDelta(t, 75.0, first.AveragePercentage, 0.0001)
	require.Equal(t, []dto.CategoryCountResponse{{Category: "mathematics", Count: 1}}, first.ExercisesByCategory)
	require.True(t, mr.Exists(overviewCacheKey))

	second, err := svc.Overview(ctx, teacher(1))
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.GeneratedAt, second.GeneratedAt)
	require.Equal(t, first.Submissions, second.Submissions)

	mr.FastForward(2 * time.Minute)
	third, err := svc.Overview(ctx, teacher(1))
	require.NoError(t, err)
	require.False(t, third.CacheHit)
}

func TestAnalyticsOverviewWithoutCache(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAnalyticsService(repository.NewAnalyticsRepository(db), repository.NewExerciseSubmissionRepository(db), nil, 0, zerolog.Nop())

	overview, err := svc.Overview(context.Background(), teacher(1))
	require.NoError(t, err)
	require.False(t, overview.CacheHit)
	require.Zero(t, overview.AveragePercentage)
	require.Empty(t, overview.ExercisesByCategory)
}

func TestStudentProgress(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	svc := NewAnalyticsService(repository.NewAnalyticsRepository(f.db), repository.NewExerciseSubmissionRepository(f.db), nil, 0, zerolog.Nop())

	full := f.publishedExercise(t, 1, choice(4, 1))
	half := f.publishedExercise(t, 1, choice(4, 1), dto.QuestionRequest{Type: "short-answer", Question: "Why?", Points: 4})

	_, err := f.submissions.Submit(ctx, student(10), full.ID, dto.SubmitRequest{Answers: answers(t, 1)})
	require.NoError(t, err)
	_, err = f.submissions.Submit(ctx, student(10), half.ID, dto.SubmitRequest{Answers: answers(t, 1, "because")})
	require.NoError(t, err)

	progress, err := svc.StudentProgress(ctx, student(10))
	require.NoError(t, err)
	require.Equal(t, 2, progress.Submissions)
	require.InDelta(t, 100.0, progress.BestPercentage, 0.0001)
	require.InDelta(t, 75.0, progress.AveragePercentage, 0.0001)
	require.Equal(t, 1, progress.PendingGrading)
	require.Len(t, progress.Recent, 2)

	empty, err := svc.StudentProgress(ctx, student(11))
	require.NoError(t, err)
	require.Zero(t, empty.Submissions)
	require.NotNil(t, empty.Recent)
}

func TestSummarizeProgressKeepsMostRecent(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	submissions := make([]models.ExerciseSubmission, 0, 7)
	for i := 0; i < 7; i++ {
		submissions = append(submissions, models.ExerciseSubmission{
			ID:          uint(i + 1),
			Percentage:  float64(10 * (i + 1)),
			SubmittedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	progress := summarizeProgress(submissions)
	require.Equal(t, 7, progress.Submissions)
	require.InDelta(t, 70.0, progress.BestPercentage, 0.0001)
	require.InDelta(t, 40.0, progress.AveragePercentage, 0.0001)
	require.Len(t, progress.Recent, recentSubmissionCap)
	require.Equal(t, uint(7), progress.Recent[0].ID)
	require.Equal(t, uint(3), progress.Recent[4].ID)
}
