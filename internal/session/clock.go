package session

import "time"

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall-clock time and timer scheduling so the state machine
// is testable without real time.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is the production clock.
var SystemClock Clock = realClock{}
