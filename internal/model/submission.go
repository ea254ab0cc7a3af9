package model

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionType enumerates the activity kinds recorded in the ledger.
type SubmissionType string

const (
	SubmissionTypeProblem         SubmissionType = "problem"
	SubmissionTypeCourseChallenge SubmissionType = "course_challenge"
	SubmissionTypeTest            SubmissionType = "test"
)

// SubmissionEvent is one append-only ledger entry, used for activity
// analytics (submissions per day). Events are never mutated or deleted and
// are never read back for scoring.
type SubmissionEvent struct {
	ID        uuid.UUID         `json:"id"`
	UserID    string            `json:"user_id"`
	Type      SubmissionType    `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ProctorFlag is a client-reported suspicious event for a live session.
// This is a flag surface only: no detection logic lives server-side.
type ProctorFlag struct {
	ID        uuid.UUID `json:"id"`
	TestID    uuid.UUID `json:"test_id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail,omitempty"`
	FlaggedAt time.Time `json:"flagged_at"`
}
