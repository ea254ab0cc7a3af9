package scoring

import (
	"testing"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func mcqQuestion(points int, correct string, options ...string) model.Question {
	return model.Question{
		ID:            uuid.New(),
		Title:         "mcq",
		Type:          model.QuestionTypeMCQ,
		Points:        points,
		Options:       options,
		CorrectAnswer: correct,
	}
}

func codingQuestion(points int) model.Question {
	return model.Question{
		ID:     uuid.New(),
		Title:  "coding",
		Type:   model.QuestionTypeCoding,
		Points: points,
	}
}

func TestGradeMCQExactMatch(t *testing.T) {
	q := mcqQuestion(10, "O(log n)", "O(n)", "O(log n)", "O(1)")
	g := HeuristicGrader{}

	assert.Equal(t, 10, g.Grade(&q, "O(log n)"))
	// Case-sensitive: no normalization of any kind.
	assert.Equal(t, 0, g.Grade(&q, "o(log n)"))
	assert.Equal(t, 0, g.Grade(&q, "O(log n) "))
	assert.Equal(t, 0, g.Grade(&q, "O(n)"))
	assert.Equal(t, 0, g.Grade(&q, ""))
}

func TestGradeMCQWithoutCorrectAnswerNeverAwards(t *testing.T) {
	q := mcqQuestion(10, "", "a", "b")
	g := HeuristicGrader{}

	assert.Equal(t, 0, g.Grade(&q, "a"))
	assert.Equal(t, 0, g.Grade(&q, ""))
}

func TestGradeCodingLengthThreshold(t *testing.T) {
	q := codingQuestion(25)
	g := HeuristicGrader{}

	// Strictly greater than 8 trimmed characters.
	assert.Equal(t, 0, g.Grade(&q, "12345678"))   // exactly 8
	assert.Equal(t, 25, g.Grade(&q, "123456789")) // 9
	assert.Equal(t, 0, g.Grade(&q, "  12345678  "))
	assert.Equal(t, 0, g.Grade(&q, "         "))
	assert.Equal(t, 25, g.Grade(&q, "print('hello')"))
}

func TestGradeUnknownTypeAwardsZero(t *testing.T) {
	q := model.Question{ID: uuid.New(), Type: "essay", Points: 10}
	assert.Equal(t, 0, HeuristicGrader{}.Grade(&q, "a long thoughtful answer"))
}

func TestScoreTotalIsScheduleInvariant(t *testing.T) {
	questions := []model.Question{
		mcqQuestion(10, "b", "a", "b"),
		codingQuestion(20),
		mcqQuestion(5, "x", "x", "y"),
	}

	// No answers at all: zero score, full total.
	score, total := Score(questions, nil)
	assert.Equal(t, 0, score)
	assert.Equal(t, 35, total)

	// Partial answers: total unchanged.
	answers := map[uuid.UUID]string{
		questions[0].ID: "b",
	}
	score, total = Score(questions, answers)
	assert.Equal(t, 10, score)
	assert.Equal(t, 35, total)
}

func TestScoreIsDeterministic(t *testing.T) {
	questions := []model.Question{
		mcqQuestion(10, "b", "a", "b"),
		codingQuestion(20),
	}
	answers := map[uuid.UUID]string{
		questions[0].ID: "b",
		questions[1].ID: "func main() {}",
	}

	s1, t1 := Score(questions, answers)
	s2, t2 := Score(questions, answers)
	assert.Equal(t, s1, s2)
	assert.Equal(t, t1, t2)
	assert.Equal(t, 30, s1)
	assert.Equal(t, 30, t1)
}

func TestEvaluateTestCases(t *testing.T) {
	cases := []model.TestCase{
		{Input: "5 3", ExpectedOutput: "8"},
		{Input: "", ExpectedOutput: "fizzbuzz", Hidden: true},
		{Input: "", ExpectedOutput: ""},
	}

	results := EvaluateTestCases("print(5 + 3) # prints 8", cases)
	assert.Len(t, results, 3)
	assert.True(t, results[0].Passed)
	assert.False(t, results[1].Passed)
	assert.True(t, results[1].Hidden)
	// Both literals empty: nothing to match, never passes.
	assert.False(t, results[2].Passed)
}

func TestEvaluateTestCasesMatchesInputWhenOutputAbsent(t *testing.T) {
	cases := []model.TestCase{{Input: "needle", ExpectedOutput: ""}}

	assert.True(t, EvaluateTestCases("find the needle here", cases)[0].Passed)
	assert.False(t, EvaluateTestCases("nothing relevant", cases)[0].Passed)
}
