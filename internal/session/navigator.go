package session

// Navigator maintains a bounds-checked current-question index.
// Boundary moves clamp silently; an invalid jump is rejected without
// changing state. Navigation never errors.
type Navigator struct {
	count int
	index int
}

// NewNavigator creates a navigator over `count` questions, starting at 0.
func NewNavigator(count int) *Navigator {
	return &Navigator{count: count}
}

// Index returns the current question index.
func (n *Navigator) Index() int {
	return n.index
}

// Count returns the number of questions.
func (n *Navigator) Count() int {
	return n.count
}

// Next advances by one, clamped at the last index.
func (n *Navigator) Next() {
	if n.index < n.count-1 {
		n.index++
	}
}

// Previous moves back by one, clamped at 0.
func (n *Navigator) Previous() {
	if n.index > 0 {
		n.index--
	}
}

// JumpTo moves to index i. Out-of-range requests are rejected and the
// current index is left unchanged; reports whether the jump happened.
func (n *Navigator) JumpTo(i int) bool {
	if i < 0 || i >= n.count {
		return false
	}
	n.index = i
	return true
}

// Reset moves back to index 0.
func (n *Navigator) Reset() {
	n.index = 0
}
