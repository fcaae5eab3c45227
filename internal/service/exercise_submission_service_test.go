package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/events"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
)

type submissionFixture struct {
	db          *gorm.DB
	exercises   ExerciseService
	submissions ExerciseSubmissionService
	publisher   *recordingPublisher
}

func newSubmissionFixture(t *testing.T) submissionFixture {
	t.Helper()
	db := setupServiceDB(t)
	exerciseRepo := repository.NewExerciseRepository(db)
	submissionRepo := repository.NewExerciseSubmissionRepository(db)
	publisher := &recordingPublisher{}
	validate := newTestValidator()

	return submissionFixture{
		db:          db,
		exercises:   NewExerciseService(exerciseRepo, submissionRepo, validate, zerolog.Nop()),
		submissions: NewExerciseSubmissionService(exerciseRepo, submissionRepo, publisher, validate, zerolog.Nop()),
		publisher:   publisher,
	}
}

func (f submissionFixture) publishedExercise(t *testing.T, owner uint, questions ...dto.QuestionRequest) dto.ExerciseResponse {
	t.Helper()
	created, err := f.exercises.Create(context.Background(), teacher(owner), dto.ExerciseCreateRequest{
		Title:      "Grade 10 Mathematics",
		Category:   "mathematics",
		Difficulty: "medium",
		Questions:  questions,
	})
	require.NoError(t, err)
	published, err := f.exercises.SetPublished(context.Background(), teacher(owner), created.ID, true)
	require.NoError(t, err)
	return published
}

func (f submissionFixture) stats(t *testing.T, id uint) models.Exercise {
	t.Helper()
	var exercise models.Exercise
	require.NoError(t, f.db.First(&exercise, id).Error)
	return exercise
}

func answers(t *testing.T, values ...interface{}) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, 0, len(values))
	for _, value := range values {
		data, err := json.Marshal(value)
		require.NoError(t, err)
		out = append(out, data)
	}
	return out
}

func choice(points, correct int) dto.QuestionRequest {
	return dto.QuestionRequest{
		Type:          "single-choice",
		Question:      "Pick one",
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: intPtr(correct),
		Points:        points,
	}
}

func TestSubmitScoresAndUpdatesRunningMean(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	// Five questions worth 2 points each so percentages land on 80 and 60.
	exercise := f.publishedExercise(t, 1, choice(2, 0), choice(2, 1), choice(2, 2), choice(2, 3), choice(2, 0))

	first, err := f.submissions.Submit(ctx, student(10), exercise.ID, dto.SubmitRequest{Answers: answers(t, 0, 1, 2, 3, 1), TimeSpentSeconds: 120})
	require.NoError(t, err)
	require.Equal(t, 8, first.Score)
	require.Equal(t, 10, first.TotalPoints)
	require.InDelta(t, 80.0, first.Percentage, 0.0001)

	stats := f.stats(t, exercise.ID)
	require.Equal(t, 1, stats.TotalAttempts)
	require.InDelta(t, 80.0, stats.AverageScore, 0.0001)

	second, err := f.submissions.Submit(ctx, student(11), exercise.ID, dto.SubmitRequest{Answers: answers(t, 0, 1, 2, 0, 1)})
	require.NoError(t, err)
	require.InDelta(t, 60.0, second.Percentage, 0.0001)

	stats = f.stats(t, exercise.ID)
	require.Equal(t, 2, stats.TotalAttempts)
	require.InDelta(t, 70.0, stats.AverageScore, 0.0001)

	require.Equal(t, []string{events.SubjectExerciseSubmitted, events.SubjectExerciseSubmitted}, f.publisher.subjects())
}

func TestSubmitRejectsDuplicateWithoutStateChange(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	exercise := f.publishedExercise(t, 1, choice(10, 1))

	_, err := f.submissions.Submit(ctx, student(10), exercise.ID, dto.SubmitRequest{Answers: answers(t, 1)})
	require.NoError(t, err)
	before := f.stats(t, exercise.ID)

	_, err = f.submissions.Submit(ctx, student(10), exercise.ID, dto.SubmitRequest{Answers: answers(t, 0)})
	require.ErrorIs(t, err, ErrDuplicateSubmission)

	after := f.stats(t, exercise.ID)
	require.Equal(t, before.TotalAttempts, after.TotalAttempts)
	require.Equal(t, before.AverageScore, after.AverageScore)

	mine, err := f.submissions.ListMine(ctx, student(10))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, 10, mine[0].Score)
	require.Len(t, f.publisher.subjects(), 1)
}

func TestSubmitHidesUnpublishedExercises(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	draft, err := f.exercises.Create(ctx, teacher(1), dto.ExerciseCreateRequest{
		Title: "Draft quiz", Category: "science", Difficulty: "easy", Questions: []dto.QuestionRequest{choice(5, 0)},
	})
	require.NoError(t, err)

	_, err = f.submissions.Submit(ctx, student(10), draft.ID, dto.SubmitRequest{Answers: answers(t, 0)})
	require.ErrorIs(t, err, ErrExerciseNotFound)

	_, err = f.submissions.Submit(ctx, student(10), 999, dto.SubmitRequest{Answers: answers(t, 0)})
	require.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestSubmitRequiresStudentRole(t *testing.T) {
	f := newSubmissionFixture(t)
	exercise := f.publishedExercise(t, 1, choice(5, 0))

	_, err := f.submissions.Submit(context.Background(), teacher(1), exercise.ID, dto.SubmitRequest{Answers: answers(t, 0)})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSubmitToleratesMissingAndMalformedAnswers(t *testing.T) {
	f := newSubmissionFixture(t)
	exercise := f.publishedExercise(t, 1, choice(5, 0), choice(5, 1))

	response, err := f.submissions.Submit(context.Background(), student(10), exercise.ID, dto.SubmitRequest{Answers: answers(t, "zero")})
	require.NoError(t, err)
	require.Zero(t, response.Score)
	require.Len(t, response.Answers, 2)
	require.JSONEq(t, "null", string(response.Answers[1].StudentAnswer))
}

func TestSubmitPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newSubmissionFixture(t)
	f.publisher.err = errors.New("broker down")
	exercise := f.publishedExercise(t, 1, choice(5, 0))

	response, err := f.submissions.Submit(context.Background(), student(10), exercise.ID, dto.SubmitRequest{Answers: answers(t, 0)})
	require.NoError(t, err)
	require.Equal(t, 5, response.Score)
}

func TestManualGradingCompletesShortAnswers(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	exercise := f.publishedExercise(t, 1,
		dto.QuestionRequest{Type: "short-answer", Question: "Explain photosynthesis", Points: 5},
		choice(5, 2),
	)

	submitted, err := f.submissions.Submit(ctx, student(10), exercise.ID, dto.SubmitRequest{Answers: answers(t, "Plants make food", 2)})
	require.NoError(t, err)
	require.Equal(t, 5, submitted.Score)
	require.True(t, submitted.NeedsGrading)
	require.InDelta(t, 50.0, f.stats(t, exercise.ID).AverageScore, 0.0001)

	_, err = f.submissions.Grade(ctx, teacher(2), submitted.ID, dto.ManualGradeRequest{Awards: []dto.GradeAward{{QuestionID: 0, Points: 4}}})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.submissions.Grade(ctx, teacher(1), submitted.ID, dto.ManualGradeRequest{Awards: []dto.GradeAward{{QuestionID: 1, Points: 5}}})
	require.ErrorIs(t, err, ErrInvalidInput)

	graded, err := f.submissions.Grade(ctx, teacher(1), submitted.ID, dto.ManualGradeRequest{
		Awards:   []dto.GradeAward{{QuestionID: 0, Points: 4}},
		Feedback: "Good, mention chlorophyll",
	})
	require.NoError(t, err)
	require.Equal(t, 9, graded.Score)
	require.InDelta(t, 90.0, graded.Percentage, 0.0001)
	require.False(t, graded.NeedsGrading)
	require.NotNil(t, graded.GradedBy)
	require.Equal(t, uint(1), *graded.GradedBy)
	require.Equal(t, "Good, mention chlorophyll", graded.Feedback)

	stats := f.stats(t, exercise.ID)
	require.Equal(t, 1, stats.TotalAttempts)
	require.InDelta(t, 90.0, stats.AverageScore, 0.0001)
	require.Contains(t, f.publisher.subjects(), events.SubjectExerciseGraded)
}

func TestManualGradingIgnoresLaterQuestionEdits(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	essay := dto.QuestionRequest{Type: "short-answer", Question: "Describe the Kandyan kingdom", Points: 5}
	exercise := f.publishedExercise(t, 1, essay, choice(5, 0))

	submitted, err := f.submissions.Submit(ctx, student(10), exercise.ID, dto.SubmitRequest{Answers: answers(t, "Hill country kingdom", 0)})
	require.NoError(t, err)
	require.Equal(t, 10, submitted.TotalPoints)

	essay.Points = 50
	_, err = f.exercises.Update(ctx, teacher(1), exercise.ID, dto.ExerciseUpdateRequest{Questions: []dto.QuestionRequest{essay}})
	require.NoError(t, err)

	_, err = f.submissions.Grade(ctx, teacher(1), submitted.ID, dto.ManualGradeRequest{Awards: []dto.GradeAward{{QuestionID: 0, Points: 50}}})
	require.ErrorIs(t, err, ErrInvalidInput)

	graded, err := f.submissions.Grade(ctx, teacher(1), submitted.ID, dto.ManualGradeRequest{Awards: []dto.GradeAward{{QuestionID: 0, Points: 5}}})
	require.NoError(t, err)
	require.Equal(t, 10, graded.Score)
	require.Equal(t, 10, graded.TotalPoints)
	require.InDelta(t, 100.0, graded.Percentage, 0.0001)
	require.InDelta(t, 100.0, f.stats(t, exercise.ID).AverageScore, 0.0001)
}

func TestSubmissionVisibility(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	exercise := f.publishedExercise(t, 1, choice(5, 0))

	submitted, err := f.submissions.Submit(ctx, student(10), exercise.ID, dto.SubmitRequest{Answers: answers(t, 0)})
	require.NoError(t, err)

	_, err = f.submissions.Get(ctx, student(10), submitted.ID)
	require.NoError(t, err)
	_, err = f.submissions.Get(ctx, teacher(1), submitted.ID)
	require.NoError(t, err)
	_, err = f.submissions.Get(ctx, student(11), submitted.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.submissions.Get(ctx, teacher(2), submitted.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.submissions.Get(ctx, teacher(1), 404)
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	list, err := f.submissions.ListForExercise(ctx, teacher(1), exercise.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Grade 10 Mathematics", list[0].ExerciseTitle)

	_, err = f.submissions.ListForExercise(ctx, teacher(2), exercise.ID)
	require.ErrorIs(t, err, ErrForbidden)
}
