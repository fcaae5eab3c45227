package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

func TestNormalizeQuestionsDefaultsTrueFalseOptions(t *testing.T) {
	questions, err := NormalizeQuestions([]models.Question{{
		Type:          "True-False",
		Text:          " Sigiriya is in the Central Province ",
		CorrectAnswer: intPtr(0),
		Points:        1,
	}})
	require.NoError(t, err)
	require.Len(t, questions, 1)
	require.Equal(t, models.QuestionTrueFalse, questions[0].Type)
	require.Equal(t, []string{"True", "False"}, questions[0].Options)
	require.Equal(t, "Sigiriya is in the Central Province", questions[0].Text)
}

func TestNormalizeQuestionsStripsIrrelevantKeys(t *testing.T) {
	question := shortAnswer(3)
	question.CorrectAnswer = intPtr(1)

	questions, err := NormalizeQuestions([]models.Question{question})
	require.NoError(t, err)
	require.Nil(t, questions[0].CorrectAnswer)
}

func TestValidateQuestionRejectsBadShapes(t *testing.T) {
	cases := map[string]models.Question{
		"no points":           {Type: models.QuestionShortAnswer, Text: "Why?", Points: 0},
		"unknown type":        {Type: "essay", Text: "Why?", Points: 1},
		"missing key":         {Type: models.QuestionSingleChoice, Text: "Pick", Options: []string{"a", "b"}, Points: 1},
		"key out of range":    {Type: models.QuestionSingleChoice, Text: "Pick", Options: []string{"a", "b"}, CorrectAnswer: intPtr(2), Points: 1},
		"true-false range":    {Type: models.QuestionTrueFalse, Text: "T/F", Options: []string{"T", "F"}, CorrectAnswer: intPtr(3), Points: 1},
		"multi without key":   {Type: models.QuestionMultipleSelect, Text: "Pick", Options: []string{"a", "b"}, Points: 1},
		"multi duplicate key": {Type: models.QuestionMultipleSelect, Text: "Pick", Options: []string{"a", "b"}, CorrectAnswers: []int{1, 1}, Points: 1},
		"missing text":        {Type: models.QuestionShortAnswer, Points: 1},
	}

	for name, question := range cases {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, ValidateQuestion(question), ErrInvalidQuestion)
		})
	}
}

func TestNormalizeQuestionsRequiresAtLeastOne(t *testing.T) {
	_, err := NormalizeQuestions(nil)
	require.ErrorIs(t, err, ErrInvalidQuestion)
}

func TestRegradeAwardsManualAnswers(t *testing.T) {
	questions := []models.Question{shortAnswer(5), singleChoice(5, 0)}
	original := Aggregate(questions, nil, TotalPoints(questions))
	require.True(t, original.NeedsGrading)

	outcome, err := Regrade(original.Answers, map[int]int{0: 5}, 10)
	require.NoError(t, err)
	require.Equal(t, 5, outcome.Score)
	require.InDelta(t, 50.0, outcome.Percentage, 1e-9)
	require.True(t, outcome.Answers[0].IsCorrect)
	require.Zero(t, original.Answers[0].EarnedPoints)

	_, err = Regrade(original.Answers, map[int]int{1: 5}, 10)
	require.ErrorIs(t, err, ErrAwardNotManual)

	_, err = Regrade(original.Answers, map[int]int{0: 6}, 10)
	require.ErrorIs(t, err, ErrAwardOutOfRange)

	_, err = Regrade(original.Answers, map[int]int{7: 1}, 10)
	require.ErrorIs(t, err, ErrAwardOutOfRange)
}

func TestRegradeUsesPointsRecordedAtSubmission(t *testing.T) {
	questions := []models.Question{shortAnswer(5), singleChoice(5, 0)}
	original := Aggregate(questions, nil, TotalPoints(questions))
	require.Equal(t, 5, original.Answers[0].MaxPoints)

	_, err := Regrade(original.Answers, map[int]int{0: 50}, 10)
	require.ErrorIs(t, err, ErrAwardOutOfRange)

	outcome, err := Regrade(original.Answers, map[int]int{0: 5}, 10)
	require.NoError(t, err)
	require.Equal(t, 5, outcome.Score)
	require.InDelta(t, 50.0, outcome.Percentage, 1e-9)
}
