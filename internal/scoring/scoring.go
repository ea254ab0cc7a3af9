// Package scoring turns a test's questions and a raw answer map into a
// (score, total) pair. Grading is deterministic and heuristic: answers are
// never executed. The Grader seam exists so a real execution-based grader can
// be plugged in later without touching the session engine.
package scoring

import (
	"strings"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/google/uuid"
)

// freeResponseMinLength is the strict threshold for the coding heuristic:
// a trimmed answer must be longer than this to earn the question's points.
const freeResponseMinLength = 8

// Grader awards points for one question given its raw answer.
// Implementations must be pure: same inputs, same award.
type Grader interface {
	Grade(q *model.Question, answer string) int
}

// HeuristicGrader is the default Grader.
//   - mcq: full points iff the answer is exactly string-equal to the correct
//     answer. Case-sensitive, no normalization.
//   - coding: full points iff the trimmed answer length exceeds 8 characters.
//     A length proxy, not a correctness check.
//
// A malformed question (mcq without a correct answer, unknown type) is never
// awardable rather than an error.
type HeuristicGrader struct{}

func (HeuristicGrader) Grade(q *model.Question, answer string) int {
	switch q.Type {
	case model.QuestionTypeMCQ:
		if q.CorrectAnswer == "" || answer == "" {
			return 0
		}
		if answer == q.CorrectAnswer {
			return q.Points
		}
		return 0
	case model.QuestionTypeCoding:
		if len(strings.TrimSpace(answer)) > freeResponseMinLength {
			return q.Points
		}
		return 0
	default:
		return 0
	}
}

// Score grades every question with the default heuristic grader.
// Total is the sum of all question points regardless of which were answered.
func Score(questions []model.Question, answers map[uuid.UUID]string) (score, total int) {
	return ScoreWith(HeuristicGrader{}, questions, answers)
}

// ScoreWith grades every question with the given grader. Absent answers read
// as empty strings; a malformed question degrades to zero award, never an
// aborted pass.
func ScoreWith(g Grader, questions []model.Question, answers map[uuid.UUID]string) (score, total int) {
	for i := range questions {
		q := &questions[i]
		total += q.Points
		score += g.Grade(q, answers[q.ID])
	}
	return score, total
}

// CaseResult is the outcome of one practice test case.
type CaseResult struct {
	Passed bool `json:"passed"`
	Hidden bool `json:"hidden"`
}

// EvaluateTestCases runs the practice-flow heuristic: a case passes iff the
// submitted source text contains the expected output or the input as a raw
// substring. Purely textual — kept for behavioral parity with the graded
// playground, not a stand-in for execution.
func EvaluateTestCases(source string, cases []model.TestCase) []CaseResult {
	results := make([]CaseResult, len(cases))
	for i, c := range cases {
		passed := false
		if c.ExpectedOutput != "" && strings.Contains(source, c.ExpectedOutput) {
			passed = true
		} else if c.Input != "" && strings.Contains(source, c.Input) {
			passed = true
		}
		results[i] = CaseResult{Passed: passed, Hidden: c.Hidden}
	}
	return results
}
