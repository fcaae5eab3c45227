package grading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// ErrInvalidQuestion indicates a question whose answer key does not fit its type.
var ErrInvalidQuestion = errors.New("invalid question")

var defaultTrueFalseOptions = []string{"True", "False"}

// NormalizeQuestions fills variant defaults and validates every question. The returned slice
// is a copy; the input is left untouched.
func NormalizeQuestions(questions []models.Question) ([]models.Question, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: at least one question is required", ErrInvalidQuestion)
	}

	normalized := make([]models.Question, 0, len(questions))
	for idx, question := range questions {
		question.Type = models.QuestionType(strings.ToLower(strings.TrimSpace(string(question.Type))))
		question.Text = strings.TrimSpace(question.Text)

		if question.Type == models.QuestionTrueFalse && len(question.Options) == 0 {
			question.Options = append([]string(nil), defaultTrueFalseOptions...)
		}

		if err := ValidateQuestion(question); err != nil {
			return nil, fmt.Errorf("question %d: %w", idx, err)
		}

		switch question.Type {
		case models.QuestionShortAnswer:
			question.CorrectAnswer = nil
			question.CorrectAnswers = nil
		case models.QuestionMultipleSelect:
			question.CorrectAnswer = nil
		default:
			question.CorrectAnswers = nil
		}

		normalized = append(normalized, question)
	}

	return normalized, nil
}

// ValidateQuestion checks the shape required by the question's variant.
func ValidateQuestion(question models.Question) error {
	if question.Text == "" {
		return fmt.Errorf("%w: question text is required", ErrInvalidQuestion)
	}
	if question.Points < 1 {
		return fmt.Errorf("%w: points must be at least 1", ErrInvalidQuestion)
	}

	switch question.Type {
	case models.QuestionSingleChoice:
		if len(question.Options) < 2 {
			return fmt.Errorf("%w: single-choice needs at least 2 options", ErrInvalidQuestion)
		}
		return checkIndex(question.CorrectAnswer, len(question.Options))
	case models.QuestionTrueFalse:
		if len(question.Options) != 2 {
			return fmt.Errorf("%w: true-false needs exactly 2 options", ErrInvalidQuestion)
		}
		return checkIndex(question.CorrectAnswer, 2)
	case models.QuestionMultipleSelect:
		if len(question.Options) < 2 {
			return fmt.Errorf("%w: multiple-select needs at least 2 options", ErrInvalidQuestion)
		}
		if len(question.CorrectAnswers) == 0 {
			return fmt.Errorf("%w: multiple-select needs correct answers", ErrInvalidQuestion)
		}
		seen := make(map[int]struct{}, len(question.CorrectAnswers))
		for _, idx := range question.CorrectAnswers {
			if err := checkIndex(&idx, len(question.Options)); err != nil {
				return err
			}
			if _, dup := seen[idx]; dup {
				return fmt.Errorf("%w: duplicate correct answer %d", ErrInvalidQuestion, idx)
			}
			seen[idx] = struct{}{}
		}
		return nil
	case models.QuestionShortAnswer:
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, question.Type)
	}
}

func checkIndex(index *int, optionCount int) error {
	if index == nil {
		return fmt.Errorf("%w: correct answer is required", ErrInvalidQuestion)
	}
	if *index < 0 || *index >= optionCount {
		return fmt.Errorf("%w: correct answer %d out of range", ErrInvalidQuestion, *index)
	}
	return nil
}
