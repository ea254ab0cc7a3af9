package service

import (
	"context"
	"sync"

	"github.com/edustack/assess-backend/internal/session"
)

// DeviceReport is the client's reported outcome of a getUserMedia attempt.
// The browser owns the real hardware; the server tracks permission state and
// the logical track handles.
type DeviceReport struct {
	Granted bool     `json:"granted"`
	Tracks  []string `json:"tracks,omitempty"` // track kinds, e.g. "audio", "video"
}

// clientCaptureProvider adapts client device reports to the engine's
// CaptureProvider. The handler stores the report, then the session's
// RequestDevice consumes it.
type clientCaptureProvider struct {
	mu     sync.Mutex
	report *DeviceReport
}

func newClientCaptureProvider() *clientCaptureProvider {
	return &clientCaptureProvider{}
}

// SetReport stores the outcome of the client's acquisition attempt.
func (p *clientCaptureProvider) SetReport(r DeviceReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.report = &r
}

// Acquire consumes the stored report. No report or a refusal both surface as
// a denial; the gate stays retryable.
func (p *clientCaptureProvider) Acquire(ctx context.Context) (*session.CaptureHandle, error) {
	p.mu.Lock()
	report := p.report
	p.report = nil
	p.mu.Unlock()

	if report == nil || !report.Granted {
		return nil, session.ErrCaptureDenied
	}

	kinds := report.Tracks
	if len(kinds) == 0 {
		kinds = []string{"audio", "video"}
	}
	tracks := make([]session.Track, len(kinds))
	for i, kind := range kinds {
		tracks[i] = &remoteTrack{kind: kind}
	}
	return &session.CaptureHandle{Tracks: tracks}, nil
}

// remoteTrack is the server-side handle for a client-owned capture track.
// Stop marks it released; the client is told to stop hardware on teardown.
type remoteTrack struct {
	mu      sync.Mutex
	kind    string
	stopped bool
}

func (t *remoteTrack) Kind() string {
	return t.kind
}

func (t *remoteTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}
