package session

import (
	"sync"

	"github.com/google/uuid"
)

// AnswerSheet is the per-question raw response map. One representation for
// every question type; no validation happens at write time — that is
// deferred entirely to scoring.
type AnswerSheet struct {
	mu      sync.RWMutex
	answers map[uuid.UUID]string
}

// NewAnswerSheet creates an empty sheet.
func NewAnswerSheet() *AnswerSheet {
	return &AnswerSheet{answers: make(map[uuid.UUID]string)}
}

// Set is an unconditional upsert: last write wins.
func (a *AnswerSheet) Set(questionID uuid.UUID, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.answers[questionID] = value
}

// Get returns the recorded answer, or "" when absent.
func (a *AnswerSheet) Get(questionID uuid.UUID) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.answers[questionID]
}

// Snapshot copies the current answer map.
func (a *AnswerSheet) Snapshot() map[uuid.UUID]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[uuid.UUID]string, len(a.answers))
	for k, v := range a.answers {
		out[k] = v
	}
	return out
}

// Answered counts non-empty recorded answers.
func (a *AnswerSheet) Answered() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := 0
	for _, v := range a.answers {
		if v != "" {
			n++
		}
	}
	return n
}
