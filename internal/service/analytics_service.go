package service

import (
	"context"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/edustack/assess-backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Bounds for the activity window, in days.
const (
	defaultActivityDays = 7
	maxActivityDays     = 365
)

// AnalyticsService reads the result log and submission ledger for dashboards.
type AnalyticsService struct {
	results store.ResultStore
	ledger  store.LedgerStore
	log     zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(results store.ResultStore, ledger store.LedgerStore, log zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		results: results,
		ledger:  ledger,
		log:     log.With().Str("component", "analytics_service").Logger(),
	}
}

// LatestResult returns the user's current result for a test: the row with
// the maximum submission time. store.ErrNoResult when the user never
// submitted it.
func (s *AnalyticsService) LatestResult(ctx context.Context, testID uuid.UUID, userID string) (*model.TestResult, error) {
	return s.results.LatestForTest(ctx, testID, userID)
}

// ResultsForUser lists all of a user's results, newest first.
func (s *AnalyticsService) ResultsForUser(ctx context.Context, userID string) ([]model.TestResult, error) {
	return s.results.ListByUser(ctx, userID)
}

// ActivityByDay returns the user's submissions-per-day series. Out-of-range
// windows are clamped to the defaults rather than rejected.
func (s *AnalyticsService) ActivityByDay(ctx context.Context, userID string, days int) ([]store.DayCount, error) {
	if days <= 0 {
		days = defaultActivityDays
	}
	if days > maxActivityDays {
		days = maxActivityDays
	}
	return s.ledger.CountsByDay(ctx, userID, days)
}

// RecordPracticeSubmission appends a ledger event for the ungraded practice
// flow. Practice never writes a result row.
func (s *AnalyticsService) RecordPracticeSubmission(ctx context.Context, userID string, submissionType model.SubmissionType, metadata map[string]string) error {
	event := &model.SubmissionEvent{
		ID:       uuid.New(),
		UserID:   userID,
		Type:     submissionType,
		Metadata: metadata,
	}
	return s.ledger.Append(ctx, event)
}
