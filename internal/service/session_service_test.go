package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/edustack/assess-backend/internal/session"
	"github.com/edustack/assess-backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock is a settable session.Clock whose timers never fire on their
// own.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{now: now}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) session.Timer {
	return idleTimer{}
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

// Registry and device-gate paths only; flows that touch Redis are covered by
// the e2e suite.

func newSessionFixture(t *testing.T) (*SessionService, *model.Test) {
	t.Helper()

	catalog := store.NewMemoryCatalogStore()
	test := &model.Test{
		ID:              uuid.New(),
		Title:           "Data Structures Final",
		BatchID:         "batch-1",
		DurationMinutes: 45,
		Status:          model.TestStatusActive,
		Questions: []model.Question{
			{ID: uuid.New(), Type: model.QuestionTypeMCQ, Points: 10, Options: []string{"a", "b"}, CorrectAnswer: "a"},
		},
	}
	require.NoError(t, catalog.Create(context.Background(), test))

	recorder := session.NewRecorder(store.NewMemoryResultStore(), store.NewMemoryLedgerStore(), nil, zerolog.Nop())
	svc := NewSessionService(catalog, recorder, nil, nil, zerolog.Nop())
	return svc, test
}

func newClockedSessionFixture(t *testing.T) (*SessionService, *model.Test, *manualClock) {
	t.Helper()

	catalog := store.NewMemoryCatalogStore()
	test := &model.Test{
		ID:              uuid.New(),
		Title:           "Data Structures Final",
		BatchID:         "batch-1",
		DurationMinutes: 45,
		Status:          model.TestStatusActive,
		Questions: []model.Question{
			{ID: uuid.New(), Type: model.QuestionTypeMCQ, Points: 10, Options: []string{"a", "b"}, CorrectAnswer: "a"},
		},
	}
	require.NoError(t, catalog.Create(context.Background(), test))

	clock := newManualClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	recorder := session.NewRecorder(store.NewMemoryResultStore(), store.NewMemoryLedgerStore(), nil, zerolog.Nop())
	svc := NewSessionService(catalog, recorder, nil, clock, zerolog.Nop())
	return svc, test, clock
}

// grantAndStart walks a session to the active phase.
func grantAndStart(t *testing.T, svc *SessionService, sessionID uuid.UUID, userID string) {
	t.Helper()
	_, err := svc.ReportDevice(context.Background(), sessionID, userID, DeviceReport{Granted: true})
	require.NoError(t, err)
	_, err = svc.Start(context.Background(), sessionID, userID)
	require.NoError(t, err)
}

func TestCreateSessionRequiresJoinableTest(t *testing.T) {
	svc, test := newSessionFixture(t)
	ctx := context.Background()

	_, err := svc.CreateSession(ctx, uuid.New(), "user-1", "batch-1")
	assert.ErrorIs(t, err, store.ErrTestNotFound)

	_, err = svc.CreateSession(ctx, test.ID, "user-1", "batch-2")
	assert.ErrorIs(t, err, ErrWrongBatch)

	completed := &model.Test{ID: uuid.New(), BatchID: "batch-1", Status: model.TestStatusCompleted}
	require.NoError(t, svc.catalog.Create(ctx, completed))
	_, err = svc.CreateSession(ctx, completed.ID, "user-1", "batch-1")
	assert.ErrorIs(t, err, ErrTestNotJoinable)

	sess, err := svc.CreateSession(ctx, test.ID, "user-1", "batch-1")
	require.NoError(t, err)
	assert.Equal(t, session.StateNotStarted, sess.State())
}

func TestCreateSessionAllowsRetakes(t *testing.T) {
	svc, test := newSessionFixture(t)
	ctx := context.Background()

	s1, err := svc.CreateSession(ctx, test.ID, "user-1", "batch-1")
	require.NoError(t, err)
	s2, err := svc.CreateSession(ctx, test.ID, "user-1", "batch-1")
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID(), s2.ID())

	infos := svc.LiveForTest(test.ID)
	assert.Len(t, infos, 2)
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc, test := newSessionFixture(t)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, test.ID, "user-1", "batch-1")
	require.NoError(t, err)

	_, err = svc.Get(sess.ID(), "user-2")
	assert.ErrorIs(t, err, ErrNotSessionOwner)

	_, err = svc.Get(uuid.New(), "user-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	got, err := svc.Get(sess.ID(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID(), got.ID())
}

func TestReportDeviceRoutesClientOutcome(t *testing.T) {
	svc, test := newSessionFixture(t)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, test.ID, "user-1", "batch-1")
	require.NoError(t, err)

	// A refusal surfaces as a denied gate, not an error: the client may retry.
	state, err := svc.ReportDevice(ctx, sess.ID(), "user-1", DeviceReport{Granted: false})
	require.NoError(t, err)
	assert.Equal(t, session.GateDenied, state)
	assert.Equal(t, session.StateNotStarted, sess.State())

	state, err = svc.ReportDevice(ctx, sess.ID(), "user-1", DeviceReport{Granted: true, Tracks: []string{"audio", "video"}})
	require.NoError(t, err)
	assert.Equal(t, session.GateGranted, state)
	assert.Equal(t, session.StatePretestReady, sess.State())
}

func TestReapEvictsAbandonedSessions(t *testing.T) {
	svc, test, clock := newClockedSessionFixture(t)
	ctx := context.Background()

	abandoned, err := svc.CreateSession(ctx, test.ID, "user-1", "batch-1")
	require.NoError(t, err)
	fresh, err := svc.CreateSession(ctx, test.ID, "user-2", "batch-1")
	require.NoError(t, err)

	// Grant the abandoned session's device so eviction has a gate to release.
	_, err = svc.ReportDevice(ctx, abandoned.ID(), "user-1", DeviceReport{Granted: true})
	require.NoError(t, err)

	// Just under the duration+grace limit both sessions survive; user-2 keeps
	// interacting, which refreshes their idle clock. Checking the abandoned
	// session through Get would refresh it too, so count the registry instead.
	clock.advance(54 * time.Minute)
	_, err = svc.Get(fresh.ID(), "user-2")
	require.NoError(t, err)
	svc.reapAbandoned(ctx)
	assert.Len(t, svc.LiveForTest(test.ID), 2)

	// Past the limit the idle session is cancelled and dropped.
	clock.advance(2 * time.Minute)
	svc.reapAbandoned(ctx)

	_, err = svc.Get(abandoned.ID(), "user-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, session.StateCancelled, abandoned.State())
	assert.Equal(t, session.GateIdle, abandoned.GateState(), "device released on eviction")

	_, err = svc.Get(fresh.ID(), "user-2")
	assert.NoError(t, err, "recently touched session survives")
}

func TestReapSkipsActiveSessions(t *testing.T) {
	svc, test, clock := newClockedSessionFixture(t)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, test.ID, "user-1", "batch-1")
	require.NoError(t, err)
	grantAndStart(t, svc, sess.ID(), "user-1")

	// An active session outlives the idle limit: its own countdown bounds it.
	clock.advance(2 * time.Hour)
	svc.reapAbandoned(ctx)

	_, err = svc.Get(sess.ID(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, session.StateActive, sess.State())
}

func TestViewRemainingTimeUsesInjectedClock(t *testing.T) {
	svc, test, clock := newClockedSessionFixture(t)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, test.ID, "user-1", "batch-1")
	require.NoError(t, err)
	grantAndStart(t, svc, sess.ID(), "user-1")

	clock.advance(10 * time.Minute)
	view, err := svc.View(sess.ID(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, (35 * time.Minute).Seconds(), view.RemainingSeconds)

	// Past the deadline the remaining time clamps at zero.
	clock.advance(40 * time.Minute)
	view, err = svc.View(sess.ID(), "user-1")
	require.NoError(t, err)
	assert.Zero(t, view.RemainingSeconds)
}

func TestClientCaptureProviderDefaultsTracks(t *testing.T) {
	p := newClientCaptureProvider()

	// No report stored reads as a denial.
	_, err := p.Acquire(context.Background())
	assert.ErrorIs(t, err, session.ErrCaptureDenied)

	p.SetReport(DeviceReport{Granted: true})
	handle, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.Len(t, handle.Tracks, 2)
	assert.Equal(t, "audio", handle.Tracks[0].Kind())
	assert.Equal(t, "video", handle.Tracks[1].Kind())

	// The report is consumed: a second acquire needs a fresh one.
	_, err = p.Acquire(context.Background())
	assert.ErrorIs(t, err, session.ErrCaptureDenied)
}
