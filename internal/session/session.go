// Package session implements the test session engine: the state machine
// driving one student's attempt at one test, from device acquisition through
// submission, plus the collaborators it composes (device gate, navigator,
// answer sheet, recorder).
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/google/uuid"
)

// State enumerates session states. Submitted and Cancelled are terminal;
// a retake requires a new session instance.
type State string

const (
	StateNotStarted   State = "not_started"
	StatePretestReady State = "pretest_ready"
	StateActive       State = "active"
	StateSubmitted    State = "submitted"
	StateCancelled    State = "cancelled"
)

var (
	// ErrGateNotGranted is returned when a transition requires device access
	// that has not been granted.
	ErrGateNotGranted = errors.New("device access not granted")
	// ErrNotActive is returned for navigation/answer/submit calls outside the
	// active phase.
	ErrNotActive = errors.New("session is not active")
	// ErrNotReady is returned when Start is called before the pretest phase.
	ErrNotReady = errors.New("session is not ready to start")
	// ErrTerminal is returned for any action on a submitted or cancelled
	// session.
	ErrTerminal = errors.New("session already ended")
)

// Session is one instance of a student taking one test. Not persisted: a
// terminal session is discarded and a retake builds a fresh instance.
type Session struct {
	mu sync.Mutex

	id       uuid.UUID
	test     *model.Test
	userID   string
	gate     *DeviceGate
	nav      *Navigator
	sheet    *AnswerSheet
	recorder *Recorder
	clock    Clock

	state    State
	deadline time.Time
	timer    Timer
	result   *Result

	// OnForceSubmit, if set before Start, is invoked after the countdown
	// forces a submission. Runs on the timer goroutine.
	OnForceSubmit func(Result)
}

// New creates a session in NotStarted. A nil clock selects the system clock.
func New(test *model.Test, userID string, provider CaptureProvider, recorder *Recorder, clock Clock) *Session {
	if clock == nil {
		clock = SystemClock
	}
	return &Session{
		id:       uuid.New(),
		test:     test,
		userID:   userID,
		gate:     NewDeviceGate(provider),
		nav:      NewNavigator(len(test.Questions)),
		sheet:    NewAnswerSheet(),
		recorder: recorder,
		clock:    clock,
		state:    StateNotStarted,
	}
}

// ID returns the session instance ID.
func (s *Session) ID() uuid.UUID { return s.id }

// Test returns the test being taken.
func (s *Session) Test() *model.Test { return s.test }

// UserID returns the owning student.
func (s *Session) UserID() string { return s.userID }

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GateState exposes the device gate state.
func (s *Session) GateState() GateState { return s.gate.State() }

// RequestDevice attempts device acquisition. Allowed before the active
// phase; a grant from NotStarted moves the session to PretestReady. A denial
// is non-fatal — the session stays where it was and retry is always
// available.
func (s *Session) RequestDevice(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateNotStarted && s.state != StatePretestReady {
		s.mu.Unlock()
		return ErrTerminal
	}
	s.mu.Unlock()

	// Acquisition may suspend on the user; the session lock is not held.
	if err := s.gate.RequestAccess(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateNotStarted {
		s.state = StatePretestReady
	}
	return nil
}

// Start begins the active phase. Requires PretestReady and re-checks that
// the gate is still granted. The navigator resets to question 0 and the
// wall-clock countdown starts; on elapse the session is force-submitted.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StatePretestReady:
	case StateSubmitted, StateCancelled:
		return ErrTerminal
	default:
		return ErrNotReady
	}

	if s.gate.State() != GateGranted {
		return ErrGateNotGranted
	}

	s.nav.Reset()
	s.state = StateActive

	duration := time.Duration(s.test.DurationMinutes) * time.Minute
	s.deadline = s.clock.Now().Add(duration)
	s.timer = s.clock.AfterFunc(duration, s.forceSubmit)
	return nil
}

// Deadline returns the forced-submit deadline; zero before Start.
func (s *Session) Deadline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline
}

// Index returns the current question index.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Index()
}

// Next advances the navigator; a no-op at the last question.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return ErrNotActive
	}
	s.nav.Next()
	return nil
}

// Previous moves the navigator back; a no-op at question 0.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return ErrNotActive
	}
	s.nav.Previous()
	return nil
}

// JumpTo moves to a question index. Out-of-range requests are rejected
// silently: the index is unchanged and no error reaches the caller.
func (s *Session) JumpTo(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return ErrNotActive
	}
	s.nav.JumpTo(i)
	return nil
}

// SetAnswer upserts the raw response for a question.
func (s *Session) SetAnswer(questionID uuid.UUID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return ErrNotActive
	}
	s.sheet.Set(questionID, value)
	return nil
}

// Answer returns the recorded answer for a question, "" when absent.
func (s *Session) Answer(questionID uuid.UUID) string {
	return s.sheet.Get(questionID)
}

// Answers snapshots the current answer map.
func (s *Session) Answers() map[uuid.UUID]string {
	return s.sheet.Snapshot()
}

// RestoreAnswers rehydrates autosaved answers (e.g. after a reconnect).
// Allowed until the session ends.
func (s *Session) RestoreAnswers(answers map[uuid.UUID]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitted || s.state == StateCancelled {
		return ErrTerminal
	}
	for qid, v := range answers {
		s.sheet.Set(qid, v)
	}
	return nil
}

// Progress counts questions with a non-empty recorded answer.
func (s *Session) Progress() int {
	return s.sheet.Answered()
}

// Submit ends the active phase: the countdown is cancelled, the answers are
// scored and recorded, the device is released, and the session becomes
// terminal. Partial submission is always permitted. The score pair is
// returned synchronously; a non-nil error reports best-effort write failures,
// not a failed submission.
func (s *Session) Submit(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return Result{}, ErrNotActive
	}
	return s.submitLocked(ctx)
}

// Cancel discards the session without scoring or persisting anything. The
// countdown is cancelled and the device released, so no late forced-submit
// can fire after teardown.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateSubmitted, StateCancelled:
		return ErrTerminal
	}

	s.stopTimerLocked()
	s.gate.Release()
	s.state = StateCancelled
	return nil
}

// Result returns the recorded score pair; nil before submission.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// forceSubmit is the countdown callback. The timer is cancelled on every
// exit from Active, so state is re-checked here only as a guard against the
// callback racing an exit.
func (s *Session) forceSubmit() {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	res, _ := s.submitLocked(context.Background())
	cb := s.OnForceSubmit
	s.mu.Unlock()

	if cb != nil {
		cb(res)
	}
}

func (s *Session) submitLocked(ctx context.Context) (Result, error) {
	s.stopTimerLocked()

	res, err := s.recorder.Record(ctx, s.test, s.userID, s.sheet.Snapshot())
	s.result = &res
	s.state = StateSubmitted
	s.gate.Release()
	return res, err
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
