package model

import (
	"time"

	"github.com/google/uuid"
)

// TestResult is one scored submission. Rows are append-only: a retake appends
// a new row and the "current" result is the one with the latest SubmittedAt.
type TestResult struct {
	ID          uuid.UUID `json:"id"`
	TestID      uuid.UUID `json:"test_id"`
	UserID      string    `json:"user_id"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	SubmittedAt time.Time `json:"submitted_at"`
}
