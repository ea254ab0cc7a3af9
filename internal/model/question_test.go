package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestionType(t *testing.T) {
	cases := []struct {
		raw  string
		want QuestionType
	}{
		{"coding", QuestionTypeCoding},
		{"code", QuestionTypeCoding},
		{"mcq", QuestionTypeMCQ},
		{"multiple_choice", QuestionTypeMCQ},
	}
	for _, c := range cases {
		got, err := ParseQuestionType(c.raw)
		require.NoError(t, err, c.raw)
		assert.Equal(t, c.want, got)
	}

	for _, raw := range []string{"", "essay", "MCQ", "Code"} {
		_, err := ParseQuestionType(raw)
		assert.Error(t, err, raw)
	}
}

func TestQuestionValidate(t *testing.T) {
	valid := Question{Title: "q", Type: QuestionTypeMCQ, Points: 5, Options: []string{"a", "b"}, CorrectAnswer: "a"}
	assert.NoError(t, valid.Validate())

	zeroPoints := valid
	zeroPoints.Points = 0
	assert.Error(t, zeroPoints.Validate())

	noOptions := valid
	noOptions.Options = nil
	assert.Error(t, noOptions.Validate())

	badAnswer := valid
	badAnswer.CorrectAnswer = "c"
	assert.Error(t, badAnswer.Validate())

	coding := Question{Title: "q", Type: QuestionTypeCoding, Points: 5}
	assert.NoError(t, coding.Validate(), "test cases are optional for coding")
}

func TestComputeStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.Equal(t, TestStatusActive, ComputeStatus(nil, nil, now))
	assert.Equal(t, TestStatusScheduled, ComputeStatus(&future, nil, now))
	assert.Equal(t, TestStatusCompleted, ComputeStatus(nil, &past, now))
	assert.Equal(t, TestStatusActive, ComputeStatus(&past, &future, now))
}

func TestTotalPoints(t *testing.T) {
	test := Test{Questions: []Question{{Points: 10}, {Points: 20}, {Points: 5}}}
	assert.Equal(t, 35, test.TotalPoints())
	assert.Equal(t, 0, (&Test{}).TotalPoints())
}
