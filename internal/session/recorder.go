package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/edustack/assess-backend/internal/scoring"
	"github.com/edustack/assess-backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Result is the synchronous outcome of a submission, returned to the caller
// for immediate display.
type Result struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// Recorder scores a finished session and persists the outcome: one result
// row plus one ledger event. The two writes are independent and best-effort —
// a failure in one does not roll back the other. The score pair is returned
// regardless so the caller can still display it.
type Recorder struct {
	grader  scoring.Grader
	results store.ResultStore
	ledger  store.LedgerStore
	log     zerolog.Logger
}

// NewRecorder creates a Recorder. A nil grader selects the default
// heuristic grader.
func NewRecorder(results store.ResultStore, ledger store.LedgerStore, grader scoring.Grader, log zerolog.Logger) *Recorder {
	if grader == nil {
		grader = scoring.HeuristicGrader{}
	}
	return &Recorder{
		grader:  grader,
		results: results,
		ledger:  ledger,
		log:     log.With().Str("component", "recorder").Logger(),
	}
}

// Record scores the answers and appends the result row and ledger event.
// The returned error aggregates write failures; the Result is always valid.
func (r *Recorder) Record(ctx context.Context, test *model.Test, userID string, answers map[uuid.UUID]string) (Result, error) {
	score, total := scoring.ScoreWith(r.grader, test.Questions, answers)
	res := Result{Score: score, Total: total}

	var errs []error

	row := &model.TestResult{
		ID:     uuid.New(),
		TestID: test.ID,
		UserID: userID,
		Score:  score,
		Total:  total,
	}
	if err := r.results.Append(ctx, row); err != nil {
		r.log.Error().Err(err).
			Str("test_id", test.ID.String()).
			Str("user_id", userID).
			Msg("Result append failed")
		errs = append(errs, fmt.Errorf("append result: %w", err))
	}

	event := &model.SubmissionEvent{
		ID:       uuid.New(),
		UserID:   userID,
		Type:     model.SubmissionTypeTest,
		Metadata: map[string]string{"testId": test.ID.String()},
	}
	if err := r.ledger.Append(ctx, event); err != nil {
		r.log.Error().Err(err).
			Str("test_id", test.ID.String()).
			Str("user_id", userID).
			Msg("Ledger append failed")
		errs = append(errs, fmt.Errorf("append ledger event: %w", err))
	}

	return res, errors.Join(errs...)
}
