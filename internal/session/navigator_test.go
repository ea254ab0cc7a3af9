package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNavigatorClampsAtBounds(t *testing.T) {
	nav := NewNavigator(3)
	assert.Equal(t, 0, nav.Index())

	nav.Previous()
	assert.Equal(t, 0, nav.Index(), "Previous at 0 is a no-op")

	nav.Next()
	nav.Next()
	assert.Equal(t, 2, nav.Index())

	nav.Next()
	assert.Equal(t, 2, nav.Index(), "Next at the last index is a no-op")
}

func TestNavigatorJumpTo(t *testing.T) {
	nav := NewNavigator(5)

	assert.True(t, nav.JumpTo(3))
	assert.Equal(t, 3, nav.Index())

	// Out-of-range jumps are rejected and leave the index unchanged.
	assert.False(t, nav.JumpTo(5))
	assert.Equal(t, 3, nav.Index())
	assert.False(t, nav.JumpTo(-1))
	assert.Equal(t, 3, nav.Index())

	nav.Reset()
	assert.Equal(t, 0, nav.Index())
}

func TestNavigatorEmpty(t *testing.T) {
	nav := NewNavigator(0)
	nav.Next()
	assert.Equal(t, 0, nav.Index())
	assert.False(t, nav.JumpTo(0))
}
