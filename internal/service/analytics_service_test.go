package service

import (
	"context"
	"testing"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/edustack/assess-backend/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityByDayClampsWindow(t *testing.T) {
	ledger := store.NewMemoryLedgerStore()
	svc := NewAnalyticsService(store.NewMemoryResultStore(), ledger, zerolog.Nop())
	ctx := context.Background()

	counts, err := svc.ActivityByDay(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, counts, 7, "non-positive window falls back to the default")

	counts, err = svc.ActivityByDay(ctx, "user-1", 100000)
	require.NoError(t, err)
	assert.Len(t, counts, 365, "oversized window is clamped")

	counts, err = svc.ActivityByDay(ctx, "user-1", 30)
	require.NoError(t, err)
	assert.Len(t, counts, 30)
}

func TestRecordPracticeSubmissionIsLedgerOnly(t *testing.T) {
	results := store.NewMemoryResultStore()
	ledger := store.NewMemoryLedgerStore()
	svc := NewAnalyticsService(results, ledger, zerolog.Nop())

	err := svc.RecordPracticeSubmission(context.Background(), "user-1", model.SubmissionTypeProblem, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, ledger.Len())
	assert.Equal(t, 0, results.Len(), "practice never writes a result row")
}
