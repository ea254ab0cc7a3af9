package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTrack records whether Stop was called.
type fakeTrack struct {
	kind    string
	stopped bool
}

func (t *fakeTrack) Kind() string { return t.kind }
func (t *fakeTrack) Stop()        { t.stopped = true }

// fakeProvider returns a scripted sequence of outcomes, newest handle last.
type fakeProvider struct {
	outcomes []error
	calls    int
	handles  []*CaptureHandle
}

func (p *fakeProvider) Acquire(ctx context.Context) (*CaptureHandle, error) {
	var err error
	if p.calls < len(p.outcomes) {
		err = p.outcomes[p.calls]
	}
	p.calls++
	if err != nil {
		return nil, err
	}
	h := &CaptureHandle{Tracks: []Track{
		&fakeTrack{kind: "audio"},
		&fakeTrack{kind: "video"},
	}}
	p.handles = append(p.handles, h)
	return h, nil
}

func grantingProvider() *fakeProvider {
	return &fakeProvider{}
}

func TestGateGrant(t *testing.T) {
	gate := NewDeviceGate(grantingProvider())
	assert.Equal(t, GateIdle, gate.State())

	require.NoError(t, gate.RequestAccess(context.Background()))
	assert.Equal(t, GateGranted, gate.State())
	require.NotNil(t, gate.Handle())
	assert.Len(t, gate.Handle().Tracks, 2)
}

func TestGateDenialIsRetryable(t *testing.T) {
	provider := &fakeProvider{outcomes: []error{ErrCaptureDenied, nil}}
	gate := NewDeviceGate(provider)

	err := gate.RequestAccess(context.Background())
	assert.ErrorIs(t, err, ErrCaptureDenied)
	assert.Equal(t, GateDenied, gate.State())
	assert.Nil(t, gate.Handle())

	// Denied is not terminal: the next attempt can succeed.
	require.NoError(t, gate.RequestAccess(context.Background()))
	assert.Equal(t, GateGranted, gate.State())
}

func TestGateReentrantGrantStopsStaleHandle(t *testing.T) {
	provider := grantingProvider()
	gate := NewDeviceGate(provider)

	require.NoError(t, gate.RequestAccess(context.Background()))
	require.NoError(t, gate.RequestAccess(context.Background()))

	require.Len(t, provider.handles, 2)
	for _, tr := range provider.handles[0].Tracks {
		assert.True(t, tr.(*fakeTrack).stopped, "stale track must be stopped")
	}
	for _, tr := range provider.handles[1].Tracks {
		assert.False(t, tr.(*fakeTrack).stopped)
	}
	assert.Same(t, provider.handles[1], gate.Handle())
}

func TestGateReleaseStopsTracks(t *testing.T) {
	provider := grantingProvider()
	gate := NewDeviceGate(provider)
	require.NoError(t, gate.RequestAccess(context.Background()))

	gate.Release()
	assert.Equal(t, GateIdle, gate.State())
	assert.Nil(t, gate.Handle())
	for _, tr := range provider.handles[0].Tracks {
		assert.True(t, tr.(*fakeTrack).stopped)
	}

	// Safe when nothing is held.
	gate.Release()
	assert.Equal(t, GateIdle, gate.State())
}

func TestGateProviderErrorMapsToDenied(t *testing.T) {
	provider := &fakeProvider{outcomes: []error{errors.New("no camera attached")}}
	gate := NewDeviceGate(provider)

	err := gate.RequestAccess(context.Background())
	assert.Error(t, err)
	assert.Equal(t, GateDenied, gate.State())
}
