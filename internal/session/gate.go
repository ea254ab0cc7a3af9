package session

import (
	"context"
	"errors"
	"sync"
)

// GateState enumerates device gate states.
type GateState string

const (
	GateIdle       GateState = "idle"
	GateRequesting GateState = "requesting"
	GateGranted    GateState = "granted"
	GateDenied     GateState = "denied"
)

var (
	// ErrCaptureDenied is returned by providers when the user refuses or the
	// device lacks capture capability. Non-fatal; retry is always allowed.
	ErrCaptureDenied = errors.New("capture denied")
	// ErrRequestPending is returned when an acquisition is already in flight.
	ErrRequestPending = errors.New("capture request already pending")
)

// Track is one live capture track (audio or video).
type Track interface {
	Kind() string
	Stop()
}

// CaptureHandle bundles the live tracks acquired for one session. The handle
// is owned exclusively by that session and must be stopped on every exit
// path.
type CaptureHandle struct {
	Tracks []Track
}

// Stop stops every track. Idempotent for well-behaved tracks.
func (h *CaptureHandle) Stop() {
	for _, t := range h.Tracks {
		t.Stop()
	}
}

// CaptureProvider attempts combined audio+video acquisition. Acquisition may
// suspend the caller; providers should honor ctx cancellation.
type CaptureProvider interface {
	Acquire(ctx context.Context) (*CaptureHandle, error)
}

// DeviceGate tracks device permission state for one session instance.
// Nothing here is persisted; a new session starts from idle.
type DeviceGate struct {
	mu       sync.Mutex
	provider CaptureProvider
	state    GateState
	handle   *CaptureHandle
}

// NewDeviceGate creates a gate in the idle state.
func NewDeviceGate(provider CaptureProvider) *DeviceGate {
	return &DeviceGate{provider: provider, state: GateIdle}
}

// State returns the current gate state.
func (g *DeviceGate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Handle returns the live capture handle, or nil when not granted.
func (g *DeviceGate) Handle() *CaptureHandle {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handle
}

// RequestAccess attempts acquisition. Re-entrant from granted or denied: a
// new attempt replaces the prior outcome, and on success any stale handle's
// tracks are stopped before the replacement is installed. Only one request
// may be in flight at a time.
func (g *DeviceGate) RequestAccess(ctx context.Context) error {
	g.mu.Lock()
	if g.state == GateRequesting {
		g.mu.Unlock()
		return ErrRequestPending
	}
	g.state = GateRequesting
	g.mu.Unlock()

	// Acquisition may block on the user; the lock is not held across it so
	// State() stays observable (the UI disables Start while requesting).
	handle, err := g.provider.Acquire(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()

	if err != nil {
		g.state = GateDenied
		return err
	}

	if g.handle != nil {
		g.handle.Stop()
	}
	g.handle = handle
	g.state = GateGranted
	return nil
}

// Release stops all acquired tracks and returns the gate to idle. Called on
// every session exit path; safe to call when nothing was acquired.
func (g *DeviceGate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.handle != nil {
		g.handle.Stop()
		g.handle = nil
	}
	g.state = GateIdle
}
