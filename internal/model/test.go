package model

import (
	"time"

	"github.com/google/uuid"
)

// TestStatus enumerates the possible states of a test.
// The status is computed once when the test is created, from the schedule
// relative to that moment. It is never re-evaluated afterwards.
type TestStatus string

const (
	TestStatusDraft     TestStatus = "draft"
	TestStatusScheduled TestStatus = "scheduled"
	TestStatusActive    TestStatus = "active"
	TestStatusCompleted TestStatus = "completed"
)

// Test represents a timed assessment with an ordered question sequence.
type Test struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	BatchID         string     `json:"batch_id"`
	DurationMinutes int        `json:"duration_minutes"`
	Questions       []Question `json:"questions"`
	Status          TestStatus `json:"status"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ComputeStatus derives the creation-time status from the schedule.
// No schedule → active immediately. A future start → scheduled; a past
// end → completed; otherwise active.
func ComputeStatus(start, end *time.Time, now time.Time) TestStatus {
	if start != nil && start.After(now) {
		return TestStatusScheduled
	}
	if end != nil && end.Before(now) {
		return TestStatusCompleted
	}
	return TestStatusActive
}

// TotalPoints returns the sum of points over all questions.
func (t *Test) TotalPoints() int {
	total := 0
	for i := range t.Questions {
		total += t.Questions[i].Points
	}
	return total
}

// CreateTestRequest is the payload for creating a new test.
type CreateTestRequest struct {
	Title           string               `json:"title" binding:"required,min=3,max=255"`
	BatchID         string               `json:"batch_id" binding:"required"`
	DurationMinutes int                  `json:"duration_minutes" binding:"required,min=1,max=480"`
	StartDate       *time.Time           `json:"start_date" binding:"omitempty"`
	EndDate         *time.Time           `json:"end_date" binding:"omitempty,gtfield=StartDate"`
	Draft           bool                 `json:"draft"`
	Questions       []AddQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}
