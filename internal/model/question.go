package model

import (
	"fmt"

	"github.com/google/uuid"
)

// QuestionType is the closed set of question kinds. Incoming payloads may use
// legacy aliases ("code", "multiple_choice"); ParseQuestionType normalizes
// them once at the ingestion boundary so downstream code never re-checks.
type QuestionType string

const (
	QuestionTypeCoding QuestionType = "coding"
	QuestionTypeMCQ    QuestionType = "mcq"
)

// ParseQuestionType normalizes a raw question-type tag into the closed set.
// Unrecognized tags are rejected here rather than tolerated downstream.
func ParseQuestionType(raw string) (QuestionType, error) {
	switch raw {
	case "coding", "code":
		return QuestionTypeCoding, nil
	case "mcq", "multiple_choice":
		return QuestionTypeMCQ, nil
	default:
		return "", fmt.Errorf("unrecognized question type %q", raw)
	}
}

// Difficulty enumerates question difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// TestCase is a single input/output pair attached to a coding question.
// Hidden cases are never sent to students.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	Hidden         bool   `json:"hidden"`
}

// Question is a single question inside a test.
type Question struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Difficulty  Difficulty   `json:"difficulty"`
	Points      int          `json:"points"`
	Type        QuestionType `json:"type"`
	// MCQ only.
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	// Coding only.
	TestCases []TestCase `json:"test_cases,omitempty"`
}

// Validate checks structural rules for a normalized question.
// Points must be positive; MCQ needs unique non-empty options containing the
// correct answer.
func (q *Question) Validate() error {
	if q.Points <= 0 {
		return fmt.Errorf("question %q: points must be positive", q.Title)
	}

	switch q.Type {
	case QuestionTypeMCQ:
		if len(q.Options) == 0 {
			return fmt.Errorf("question %q: mcq requires options", q.Title)
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			if _, dup := seen[opt]; dup {
				return fmt.Errorf("question %q: duplicate option %q", q.Title, opt)
			}
			seen[opt] = struct{}{}
		}
		if _, ok := seen[q.CorrectAnswer]; !ok {
			return fmt.Errorf("question %q: correct answer is not one of the options", q.Title)
		}
	case QuestionTypeCoding:
		// Test cases are optional; the default grader does not execute them.
	default:
		return fmt.Errorf("question %q: unknown type %q", q.Title, q.Type)
	}

	return nil
}

// AddQuestionRequest is the payload for a question inside a create-test request.
// Type accepts legacy aliases which are normalized during ingestion.
type AddQuestionRequest struct {
	Title         string     `json:"title" binding:"required,min=1,max=255"`
	Description   string     `json:"description" binding:"max=10000"`
	Difficulty    string     `json:"difficulty" binding:"required,oneof=easy medium hard"`
	Points        int        `json:"points" binding:"required,min=1"`
	Type          string     `json:"type" binding:"required"`
	Options       []string   `json:"options" binding:"omitempty,dive,min=1"`
	CorrectAnswer string     `json:"correct_answer" binding:"omitempty"`
	TestCases     []TestCase `json:"test_cases" binding:"omitempty"`
}
