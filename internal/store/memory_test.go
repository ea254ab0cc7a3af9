package store

import (
	"context"
	"testing"
	"time"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultStoreLatestForTest(t *testing.T) {
	s := NewMemoryResultStore()
	ctx := context.Background()
	testID := uuid.New()

	_, err := s.LatestForTest(ctx, testID, "user-1")
	assert.ErrorIs(t, err, ErrNoResult)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, score := range []int{40, 85, 60} {
		require.NoError(t, s.Append(ctx, &model.TestResult{
			ID:          uuid.New(),
			TestID:      testID,
			UserID:      "user-1",
			Score:       score,
			Total:       100,
			SubmittedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	// Most recent submission wins, not the best score.
	latest, err := s.LatestForTest(ctx, testID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 60, latest.Score)

	// Scoped per (test, user).
	_, err = s.LatestForTest(ctx, testID, "user-2")
	assert.ErrorIs(t, err, ErrNoResult)
	_, err = s.LatestForTest(ctx, uuid.New(), "user-1")
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestResultStoreIsAppendOnly(t *testing.T) {
	s := NewMemoryResultStore()
	ctx := context.Background()
	testID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Append(ctx, &model.TestResult{
			ID: uuid.New(), TestID: testID, UserID: "user-1", Score: i, Total: 10,
		}))
	}

	rows, err := s.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, rows, 3, "every retake appends its own row")
}

func TestLedgerCountsByDay(t *testing.T) {
	s := NewMemoryLedgerStore()
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	s.Now = func() time.Time { return now }

	appendAt := func(ts time.Time) {
		require.NoError(t, s.Append(ctx, &model.SubmissionEvent{
			ID:        uuid.New(),
			UserID:    "user-1",
			Type:      model.SubmissionTypeTest,
			Timestamp: ts,
		}))
	}

	// Two today, one two days ago, one outside a 7-day window.
	appendAt(now)
	appendAt(now.Add(-2 * time.Hour))
	appendAt(now.AddDate(0, 0, -2))
	appendAt(now.AddDate(0, 0, -8))
	require.NoError(t, s.Append(ctx, &model.SubmissionEvent{
		ID: uuid.New(), UserID: "someone-else", Type: model.SubmissionTypeTest, Timestamp: now,
	}))

	counts, err := s.CountsByDay(ctx, "user-1", 7)
	require.NoError(t, err)

	// Exactly 7 contiguous entries, oldest first, today last, gaps zero-filled.
	require.Len(t, counts, 7)
	for i := 0; i < 7; i++ {
		expected := time.Date(2026, 3, 4+i, 0, 0, 0, 0, time.UTC)
		assert.True(t, counts[i].Date.Equal(expected), "entry %d has date %v", i, counts[i].Date)
	}
	assert.Equal(t, 2, counts[6].Count)
	assert.Equal(t, 1, counts[4].Count)
	assert.Equal(t, 0, counts[5].Count)
	assert.Equal(t, 0, counts[0].Count)
}

func TestLedgerCountsByDayBucketsInWindowTimezone(t *testing.T) {
	s := NewMemoryLedgerStore()
	ctx := context.Background()

	// The window's clock runs at UTC-5; events arrive stamped in UTC.
	est := time.FixedZone("EST", -5*60*60)
	now := time.Date(2026, 1, 2, 20, 0, 0, 0, est)
	s.Now = func() time.Time { return now }

	appendAt := func(ts time.Time) {
		require.NoError(t, s.Append(ctx, &model.SubmissionEvent{
			ID:        uuid.New(),
			UserID:    "user-1",
			Type:      model.SubmissionTypeTest,
			Timestamp: ts,
		}))
	}

	// 01:00 UTC Jan 3 is still 20:00 Jan 2 at UTC-5.
	appendAt(time.Date(2026, 1, 3, 1, 0, 0, 0, time.UTC))
	// 23:00 UTC Jan 1 is 18:00 Jan 1 at UTC-5.
	appendAt(time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC))

	counts, err := s.CountsByDay(ctx, "user-1", 2)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, 1, counts[0].Count, "Jan 1 local")
	assert.Equal(t, 1, counts[1].Count, "Jan 2 local")
}

func TestLedgerCountsByDayEmptyWindow(t *testing.T) {
	s := NewMemoryLedgerStore()

	counts, err := s.CountsByDay(context.Background(), "user-1", 0)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestCatalogStoreGetByID(t *testing.T) {
	s := NewMemoryCatalogStore()
	ctx := context.Background()

	_, err := s.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrTestNotFound)

	test := &model.Test{ID: uuid.New(), Title: "Quiz", BatchID: "batch-1", Status: model.TestStatusActive}
	require.NoError(t, s.Create(ctx, test))

	got, err := s.GetByID(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quiz", got.Title)
	assert.False(t, got.CreatedAt.IsZero(), "creation time is stamped")
}
