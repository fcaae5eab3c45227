// Package grading scores exercise submissions against their answer keys.
package grading

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// Result is the outcome of grading one answer.
type Result struct {
	IsCorrect          bool
	EarnedPoints       int
	NeedsManualGrading bool
}

// Outcome is the aggregate of grading every question of an exercise.
type Outcome struct {
	Answers      []models.GradedAnswer
	Score        int
	TotalPoints  int
	Percentage   float64
	NeedsGrading bool
}

// Grade scores a single answer. A missing, null or ill-typed answer never errors; it simply
// does not match the key.
func Grade(question models.Question, answer json.RawMessage) Result {
	switch question.Type {
	case models.QuestionSingleChoice, models.QuestionTrueFalse:
		index, ok := answerIndex(answer)
		correct := ok && question.CorrectAnswer != nil && index == *question.CorrectAnswer
		return scored(question, correct)
	case models.QuestionMultipleSelect:
		return scored(question, sameSelection(question.CorrectAnswers, answer))
	case models.QuestionShortAnswer:
		return Result{NeedsManualGrading: true}
	default:
		return Result{}
	}
}

// Aggregate grades answers index-aligned with questions and folds the results. Answers beyond
// the question list are ignored; missing ones are graded as absent.
func Aggregate(questions []models.Question, answers []json.RawMessage, totalPoints int) Outcome {
	outcome := Outcome{
		Answers:     make([]models.GradedAnswer, 0, len(questions)),
		TotalPoints: totalPoints,
	}

	for idx, question := range questions {
		var answer json.RawMessage
		if idx < len(answers) {
			answer = answers[idx]
		}
		if len(answer) == 0 {
			answer = json.RawMessage("null")
		}

		result := Grade(question, answer)
		outcome.Answers = append(outcome.Answers, models.GradedAnswer{
			QuestionID:         idx,
			StudentAnswer:      answer,
			IsCorrect:          result.IsCorrect,
			EarnedPoints:       result.EarnedPoints,
			MaxPoints:          question.Points,
			NeedsManualGrading: result.NeedsManualGrading,
		})
		outcome.Score += result.EarnedPoints
		if result.NeedsManualGrading {
			outcome.NeedsGrading = true
		}
	}

	outcome.Percentage = Percentage(outcome.Score, totalPoints)
	return outcome
}

// Percentage returns score as a percentage of totalPoints, or 0 when there is nothing to score.
func Percentage(score, totalPoints int) float64 {
	if totalPoints <= 0 {
		return 0
	}
	return float64(score) / float64(totalPoints) * 100
}

// RollingAverage folds a new percentage into a running mean over attempts previous values.
func RollingAverage(average float64, attempts int, percentage float64) float64 {
	if attempts <= 0 {
		return percentage
	}
	return (average*float64(attempts) + percentage) / float64(attempts+1)
}

// TotalPoints sums the point values of questions.
func TotalPoints(questions []models.Question) int {
	total := 0
	for _, question := range questions {
		total += question.Points
	}
	return total
}

func scored(question models.Question, correct bool) Result {
	if !correct {
		return Result{}
	}
	return Result{IsCorrect: true, EarnedPoints: question.Points}
}

// answerIndex accepts only JSON numbers with an integral value, mirroring strict equality on
// the option index.
func answerIndex(answer json.RawMessage) (int, bool) {
	var value interface{}
	decoder := json.NewDecoder(bytes.NewReader(answer))
	decoder.UseNumber()
	if err := decoder.Decode(&value); err != nil {
		return 0, false
	}
	number, ok := value.(json.Number)
	if !ok {
		return 0, false
	}
	return integral(number)
}

func integral(number json.Number) (int, bool) {
	if parsed, err := number.Int64(); err == nil {
		return int(parsed), true
	}
	parsed, err := number.Float64()
	if err != nil || math.Trunc(parsed) != parsed || math.IsInf(parsed, 0) {
		return 0, false
	}
	return int(parsed), true
}

// sameSelection reports exact set equality between the key and the submitted selection.
// Non-numeric entries still count toward the submitted set's size but never match.
func sameSelection(correct []int, answer json.RawMessage) bool {
	correctSet := make(map[string]struct{}, len(correct))
	for _, idx := range correct {
		correctSet[strconv.Itoa(idx)] = struct{}{}
	}

	submitted := make(map[string]struct{})
	var items []json.RawMessage
	if err := json.Unmarshal(answer, &items); err == nil {
		for _, item := range items {
			submitted[selectionKey(item)] = struct{}{}
		}
	}

	if len(correctSet) != len(submitted) {
		return false
	}
	for key := range correctSet {
		if _, ok := submitted[key]; !ok {
			return false
		}
	}
	return true
}

func selectionKey(item json.RawMessage) string {
	if idx, ok := answerIndex(item); ok {
		return strconv.Itoa(idx)
	}
	return "raw:" + string(bytes.TrimSpace(item))
}
