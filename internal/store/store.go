// Package store defines the durable collections behind the session engine
// and their adapters. The engine only sees the interfaces; production wires
// the Postgres adapters, tests and local tooling use the in-memory ones.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/google/uuid"
)

var (
	// ErrTestNotFound is returned when a catalog lookup misses.
	ErrTestNotFound = errors.New("test not found")
	// ErrNoResult is the sentinel for "this user never submitted this test".
	ErrNoResult = errors.New("no result for test")
	// ErrUserNotFound is returned when a user lookup misses.
	ErrUserNotFound = errors.New("user not found")
)

// CatalogStore holds Test definitions.
type CatalogStore interface {
	List(ctx context.Context) ([]model.Test, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error)
	Create(ctx context.Context, t *model.Test) error
}

// ResultStore is the append-only log of scored submissions.
// Rows are never edited after being appended.
type ResultStore interface {
	Append(ctx context.Context, r *model.TestResult) error
	// LatestForTest returns the row with the maximum SubmittedAt among rows
	// matching (testID, userID), or ErrNoResult when none match.
	LatestForTest(ctx context.Context, testID uuid.UUID, userID string) (*model.TestResult, error)
	ListByUser(ctx context.Context, userID string) ([]model.TestResult, error)
}

// DayCount is one calendar day's submission count for a user.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// LedgerStore is the append-only submission event log, read only for
// activity analytics.
type LedgerStore interface {
	Append(ctx context.Context, e *model.SubmissionEvent) error
	// CountsByDay returns exactly `days` entries, one per calendar day ending
	// today, oldest first. Days with zero events are present with count 0.
	CountsByDay(ctx context.Context, userID string, days int) ([]DayCount, error)
}

// UserStore holds platform accounts.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}
