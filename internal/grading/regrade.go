package grading

import (
	"errors"
	"fmt"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

var (
	// ErrAwardNotManual indicates points were awarded to an automatically graded answer.
	ErrAwardNotManual = errors.New("answer is graded automatically")
	// ErrAwardOutOfRange indicates awarded points outside 0..question points.
	ErrAwardOutOfRange = errors.New("awarded points out of range")
)

// Regrade applies teacher-awarded points to manually graded answers and recomputes the
// totals against the submission's snapshot of total points. Awards are bounded by the points
// recorded on each answer when it was graded, so later edits to the exercise do not apply.
// Manual answers without an award keep their current points. The input answers are not modified.
func Regrade(answers []models.GradedAnswer, awards map[int]int, totalPoints int) (Outcome, error) {
	graded := make([]models.GradedAnswer, len(answers))
	copy(graded, answers)

	byQuestion := make(map[int]int, len(graded))
	for idx, answer := range graded {
		byQuestion[answer.QuestionID] = idx
	}

	for questionID, points := range awards {
		idx, ok := byQuestion[questionID]
		if !ok {
			return Outcome{}, fmt.Errorf("%w: unknown question %d", ErrAwardOutOfRange, questionID)
		}
		if !graded[idx].NeedsManualGrading {
			return Outcome{}, fmt.Errorf("%w: question %d", ErrAwardNotManual, questionID)
		}
		maxPoints := graded[idx].MaxPoints
		if points < 0 || points > maxPoints {
			return Outcome{}, fmt.Errorf("%w: question %d allows 0..%d", ErrAwardOutOfRange, questionID, maxPoints)
		}
		graded[idx].EarnedPoints = points
		graded[idx].IsCorrect = points == maxPoints
	}

	outcome := Outcome{Answers: graded, TotalPoints: totalPoints}
	for _, answer := range graded {
		outcome.Score += answer.EarnedPoints
	}
	outcome.Percentage = Percentage(outcome.Score, totalPoints)
	return outcome, nil
}
