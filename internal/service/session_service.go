package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/edustack/assess-backend/internal/config"
	"github.com/edustack/assess-backend/internal/model"
	"github.com/edustack/assess-backend/internal/session"
	"github.com/edustack/assess-backend/internal/store"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Session service errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTestNotJoinable = errors.New("test is not available for taking")
	ErrWrongBatch      = errors.New("test is not assigned to your batch")
	ErrNotSessionOwner = errors.New("session belongs to another user")
)

// MonitorEvent is one entry on a test's proctor monitor channel.
type MonitorEvent struct {
	Type      string    `json:"type"` // started | submitted | cancelled | flagged
	TestID    string    `json:"test_id"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

// liveSession pairs an engine session with its capture provider so device
// reports can be routed to it. touched tracks the last API interaction and
// drives abandoned-session eviction.
type liveSession struct {
	sess     *session.Session
	provider *clientCaptureProvider
	touched  time.Time
}

const (
	// reapInterval is how often the registry is swept for abandoned sessions.
	reapInterval = time.Minute
	// abandonGrace is the idle allowance past the test duration before a
	// never-started session is evicted.
	abandonGrace = 10 * time.Minute
)

// SessionService owns the registry of live (in-memory) test sessions and
// mediates between the HTTP layer, the session engine, and Redis. Answer
// writes are mirrored to a Redis hash for crash recovery and queued for the
// autosave worker; lifecycle events are published to the test's monitor
// channel.
//
// Nothing prevents two live sessions for the same (user, test): retakes are
// allowed, and each submission appends its own result row.
type SessionService struct {
	catalog  store.CatalogStore
	recorder *session.Recorder
	rdb      *redis.Client
	clock    session.Clock
	log      zerolog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*liveSession
}

// NewSessionService creates a new SessionService. A nil clock selects the
// system clock.
func NewSessionService(catalog store.CatalogStore, recorder *session.Recorder, rdb *redis.Client, clock session.Clock, log zerolog.Logger) *SessionService {
	if clock == nil {
		clock = session.SystemClock
	}
	return &SessionService{
		catalog:  catalog,
		recorder: recorder,
		rdb:      rdb,
		clock:    clock,
		log:      log.With().Str("component", "session_service").Logger(),
		sessions: make(map[uuid.UUID]*liveSession),
	}
}

// CreateSession builds a new session instance for (user, test). The test
// must be active and assigned to the user's batch.
func (s *SessionService) CreateSession(ctx context.Context, testID uuid.UUID, userID, batchID string) (*session.Session, error) {
	test, err := s.catalog.GetByID(ctx, testID)
	if err != nil {
		return nil, err
	}

	if test.Status != model.TestStatusActive {
		return nil, ErrTestNotJoinable
	}
	if test.BatchID != batchID {
		return nil, ErrWrongBatch
	}

	provider := newClientCaptureProvider()
	sess := session.New(test, userID, provider, s.recorder, s.clock)
	sess.OnForceSubmit = func(res session.Result) {
		s.log.Info().
			Str("session_id", sess.ID().String()).
			Int("score", res.Score).
			Msg("Countdown elapsed, session force-submitted")
		s.finish(context.Background(), sess, "submitted")
	}

	s.mu.Lock()
	s.sessions[sess.ID()] = &liveSession{sess: sess, provider: provider, touched: s.clock.Now()}
	s.mu.Unlock()

	return sess, nil
}

// Get returns a live session owned by userID.
func (s *SessionService) Get(sessionID uuid.UUID, userID string) (*session.Session, error) {
	live, err := s.live(sessionID)
	if err != nil {
		return nil, err
	}
	if live.sess.UserID() != userID {
		return nil, ErrNotSessionOwner
	}
	return live.sess, nil
}

// ReportDevice routes the client's capture outcome into the session's device
// gate. A denial keeps the session blocked but retryable.
func (s *SessionService) ReportDevice(ctx context.Context, sessionID uuid.UUID, userID string, report DeviceReport) (session.GateState, error) {
	live, err := s.live(sessionID)
	if err != nil {
		return "", err
	}
	if live.sess.UserID() != userID {
		return "", ErrNotSessionOwner
	}

	live.provider.SetReport(report)
	err = live.sess.RequestDevice(ctx)
	state := live.sess.GateState()
	if errors.Is(err, session.ErrCaptureDenied) {
		// Non-fatal: the session stays blocked, retry is always available.
		return state, nil
	}
	return state, err
}

// Start begins the active phase, rehydrating any autosaved answers from the
// previous attempt's crash window first.
func (s *SessionService) Start(ctx context.Context, sessionID uuid.UUID, userID string) (*session.Session, error) {
	live, err := s.live(sessionID)
	if err != nil {
		return nil, err
	}
	sess := live.sess
	if sess.UserID() != userID {
		return nil, ErrNotSessionOwner
	}

	if saved := s.loadAutosaved(ctx, sess); len(saved) > 0 {
		if err := sess.RestoreAnswers(saved); err == nil {
			s.log.Info().
				Str("session_id", sessionID.String()).
				Int("answers", len(saved)).
				Msg("Rehydrated autosaved answers")
		}
	}

	if err := sess.Start(); err != nil {
		return nil, err
	}

	s.publish(ctx, sess, "started", "")
	return sess, nil
}

// SaveAnswer upserts an answer on the live session, mirrors it to the Redis
// hash, and queues it for durable autosave.
func (s *SessionService) SaveAnswer(ctx context.Context, sessionID uuid.UUID, userID string, questionID uuid.UUID, value string) error {
	sess, err := s.Get(sessionID, userID)
	if err != nil {
		return err
	}

	if err := sess.SetAnswer(questionID, value); err != nil {
		return err
	}

	if s.rdb != nil {
		key := config.CacheKey.UserAnswersKey(sess.Test().ID.String(), userID)
		if err := s.rdb.HSet(ctx, key, questionID.String(), value).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Answer cache write failed")
		}

		payload, _ := json.Marshal(answerQueueItem{
			TestID:     sess.Test().ID.String(),
			UserID:     userID,
			QuestionID: questionID.String(),
			Answer:     value,
		})
		if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, payload).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Answer queue push failed")
		}
	}

	return nil
}

// answerQueueItem is the autosave queue payload consumed by the worker.
type answerQueueItem struct {
	TestID     string `json:"test_id"`
	UserID     string `json:"user_id"`
	QuestionID string `json:"q_id"`
	Answer     string `json:"answer"`
}

// Submit ends the session, scoring and persisting the outcome. The score
// pair is returned synchronously for display. Store write failures are
// logged, not surfaced — the submission itself succeeded.
func (s *SessionService) Submit(ctx context.Context, sessionID uuid.UUID, userID string) (session.Result, error) {
	sess, err := s.Get(sessionID, userID)
	if err != nil {
		return session.Result{}, err
	}

	res, err := sess.Submit(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNotActive) {
			return session.Result{}, err
		}
		s.log.Error().Err(err).
			Str("session_id", sessionID.String()).
			Msg("Submission persisted partially")
	}

	s.finish(ctx, sess, "submitted")
	return res, nil
}

// Cancel discards the session: no scoring, no result row, no ledger event.
func (s *SessionService) Cancel(ctx context.Context, sessionID uuid.UUID, userID string) error {
	sess, err := s.Get(sessionID, userID)
	if err != nil {
		return err
	}

	if err := sess.Cancel(); err != nil {
		return err
	}

	s.finish(ctx, sess, "cancelled")
	return nil
}

// Flag records a client-reported proctor flag: queued for durable persistence
// and surfaced on the monitor channel. No detection logic runs server-side.
func (s *SessionService) Flag(ctx context.Context, sessionID uuid.UUID, userID, kind, detail string) error {
	sess, err := s.Get(sessionID, userID)
	if err != nil {
		return err
	}

	if s.rdb != nil {
		payload, _ := json.Marshal(flagQueueItem{
			TestID:    sess.Test().ID.String(),
			UserID:    userID,
			Kind:      kind,
			Detail:    detail,
			Timestamp: time.Now().Unix(),
		})
		if err := s.rdb.RPush(ctx, config.WorkerKey.PersistFlagsQueue, payload).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Flag queue push failed")
		}
	}

	s.publish(ctx, sess, "flagged", kind)
	return nil
}

// flagQueueItem is the flag queue payload consumed by the worker.
type flagQueueItem struct {
	TestID    string `json:"test_id"`
	UserID    string `json:"user_id"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// LiveSessionInfo is one live session as seen by the proctor monitor.
type LiveSessionInfo struct {
	SessionID uuid.UUID     `json:"session_id"`
	UserID    string        `json:"user_id"`
	State     session.State `json:"state"`
	Progress  int           `json:"progress"`
}

// LiveForTest snapshots every live session currently attached to a test.
func (s *SessionService) LiveForTest(testID uuid.UUID) []LiveSessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]LiveSessionInfo, 0, len(s.sessions))
	for id, live := range s.sessions {
		if live.sess.Test().ID != testID {
			continue
		}
		infos = append(infos, LiveSessionInfo{
			SessionID: id,
			UserID:    live.sess.UserID(),
			State:     live.sess.State(),
			Progress:  live.sess.Progress(),
		})
	}
	return infos
}

func (s *SessionService) live(sessionID uuid.UUID) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	live.touched = s.clock.Now()
	return live, nil
}

// StartReaper sweeps the registry until ctx is cancelled. Call in a
// goroutine.
func (s *SessionService) StartReaper(ctx context.Context) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reapAbandoned(ctx)
		}
	}
}

// reapAbandoned cancels sessions that never reached the active phase and sat
// idle past the test duration plus grace, releasing their device gates.
// Active sessions are excluded: their own countdown bounds them.
func (s *SessionService) reapAbandoned(ctx context.Context) {
	now := s.clock.Now()

	s.mu.Lock()
	var stale []*session.Session
	for _, live := range s.sessions {
		if live.sess.State() == session.StateActive {
			continue
		}
		limit := time.Duration(live.sess.Test().DurationMinutes)*time.Minute + abandonGrace
		if now.Sub(live.touched) > limit {
			stale = append(stale, live.sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		if err := sess.Cancel(); err != nil {
			continue
		}
		s.log.Info().
			Str("session_id", sess.ID().String()).
			Str("user_id", sess.UserID()).
			Msg("Evicted abandoned session")
		s.finish(ctx, sess, "cancelled")
	}
}

// finish publishes the terminal event, clears the autosave hash, and drops
// the session from the registry.
func (s *SessionService) finish(ctx context.Context, sess *session.Session, event string) {
	s.publish(ctx, sess, event, "")

	if s.rdb != nil {
		key := config.CacheKey.UserAnswersKey(sess.Test().ID.String(), sess.UserID())
		if err := s.rdb.Del(ctx, key).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Answer cache clear failed")
		}
	}

	s.mu.Lock()
	delete(s.sessions, sess.ID())
	s.mu.Unlock()
}

// loadAutosaved reads the Redis answer hash for (test, user). A missing or
// unreadable hash reads as empty — never an error to the caller.
func (s *SessionService) loadAutosaved(ctx context.Context, sess *session.Session) map[uuid.UUID]string {
	if s.rdb == nil {
		return nil
	}
	key := config.CacheKey.UserAnswersKey(sess.Test().ID.String(), sess.UserID())
	raw, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		s.log.Warn().Err(err).Msg("Answer cache read failed, starting empty")
		return nil
	}

	answers := make(map[uuid.UUID]string, len(raw))
	for k, v := range raw {
		qid, err := uuid.Parse(k)
		if err != nil {
			s.log.Warn().Str("key", k).Msg("Skipping unparseable answer key")
			continue
		}
		answers[qid] = v
	}
	return answers
}

func (s *SessionService) publish(ctx context.Context, sess *session.Session, eventType, detail string) {
	if s.rdb == nil {
		return
	}
	event := MonitorEvent{
		Type:      eventType,
		TestID:    sess.Test().ID.String(),
		UserID:    sess.UserID(),
		SessionID: sess.ID().String(),
		Detail:    detail,
		At:        time.Now(),
	}
	payload, _ := json.Marshal(event)

	channel := config.CacheKey.TestMonitorChannel(sess.Test().ID.String())
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("Monitor publish failed")
	}
}

// SessionView is the state snapshot returned to the taking UI.
type SessionView struct {
	ID               uuid.UUID         `json:"id"`
	TestID           uuid.UUID         `json:"test_id"`
	State            session.State     `json:"state"`
	GateState        session.GateState `json:"gate_state"`
	CurrentIndex     int               `json:"current_index"`
	Progress         int               `json:"progress"`
	QuestionCount    int               `json:"question_count"`
	RemainingSeconds float64           `json:"remaining_seconds"`
}

// View builds a state snapshot for the owning user.
func (s *SessionService) View(sessionID uuid.UUID, userID string) (*SessionView, error) {
	sess, err := s.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}

	var remaining float64
	if deadline := sess.Deadline(); !deadline.IsZero() {
		if r := deadline.Sub(s.clock.Now()); r > 0 {
			remaining = r.Seconds()
		}
	}

	return &SessionView{
		ID:               sess.ID(),
		TestID:           sess.Test().ID,
		State:            sess.State(),
		GateState:        sess.GateState(),
		CurrentIndex:     sess.Index(),
		Progress:         sess.Progress(),
		QuestionCount:    len(sess.Test().Questions),
		RemainingSeconds: remaining,
	}, nil
}
