package store

import (
	"context"
	"sync"
	"time"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/google/uuid"
)

// In-memory adapters. Used by unit tests and local tooling; they mirror the
// Postgres adapters' semantics, including append-only behavior. Concurrent
// writers are serialized per collection with a mutex, which is more than the
// durable layer promises — callers must not rely on it.

// MemoryCatalogStore is an in-memory CatalogStore.
type MemoryCatalogStore struct {
	mu    sync.RWMutex
	tests []model.Test
}

// NewMemoryCatalogStore creates an empty in-memory catalog.
func NewMemoryCatalogStore() *MemoryCatalogStore {
	return &MemoryCatalogStore{}
}

func (s *MemoryCatalogStore) List(ctx context.Context) ([]model.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Test, len(s.tests))
	copy(out, s.tests)
	return out, nil
}

func (s *MemoryCatalogStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.tests {
		if s.tests[i].ID == id {
			t := s.tests[i]
			return &t, nil
		}
	}
	return nil, ErrTestNotFound
}

func (s *MemoryCatalogStore) Create(ctx context.Context, t *model.Test) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	s.tests = append(s.tests, *t)
	return nil
}

// MemoryResultStore is an in-memory append-only ResultStore.
type MemoryResultStore struct {
	mu      sync.RWMutex
	results []model.TestResult
}

// NewMemoryResultStore creates an empty in-memory result log.
func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{}
}

func (s *MemoryResultStore) Append(ctx context.Context, r *model.TestResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = time.Now()
	}
	s.results = append(s.results, *r)
	return nil
}

func (s *MemoryResultStore) LatestForTest(ctx context.Context, testID uuid.UUID, userID string) (*model.TestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *model.TestResult
	for i := range s.results {
		r := &s.results[i]
		if r.TestID != testID || r.UserID != userID {
			continue
		}
		if latest == nil || r.SubmittedAt.After(latest.SubmittedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, ErrNoResult
	}
	out := *latest
	return &out, nil
}

func (s *MemoryResultStore) ListByUser(ctx context.Context, userID string) ([]model.TestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.TestResult
	for i := range s.results {
		if s.results[i].UserID == userID {
			out = append(out, s.results[i])
		}
	}
	return out, nil
}

// Len reports the number of appended rows. Test helper.
func (s *MemoryResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// MemoryLedgerStore is an in-memory append-only LedgerStore.
type MemoryLedgerStore struct {
	mu     sync.RWMutex
	events []model.SubmissionEvent

	// Now is the clock for the CountsByDay window. Overridable in tests.
	Now func() time.Time
}

// NewMemoryLedgerStore creates an empty in-memory ledger.
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{Now: time.Now}
}

func (s *MemoryLedgerStore) Append(ctx context.Context, e *model.SubmissionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Timestamp.IsZero() {
		e.Timestamp = s.Now()
	}
	s.events = append(s.events, *e)
	return nil
}

func (s *MemoryLedgerStore) CountsByDay(ctx context.Context, userID string, days int) ([]DayCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.Now()
	counts := make(map[time.Time]int)
	for i := range s.events {
		if s.events[i].UserID != userID {
			continue
		}
		counts[dayKey(s.events[i].Timestamp.In(now.Location()))]++
	}
	return fillDayCounts(counts, days, now), nil
}

// Len reports the number of appended events. Test helper.
func (s *MemoryLedgerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// MemoryUserStore is an in-memory UserStore.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]model.User)}
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := u
	return &out, nil
}

func (s *MemoryUserStore) Create(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.ID] = *u
	return nil
}
