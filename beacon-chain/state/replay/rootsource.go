package replay

import (
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
)

// RootSlot pairs a known state root with the slot it belongs to.
type RootSlot struct {
	Root [32]byte
	Slot types.Slot
}

// RootSource supplies pre-computed state roots during replay, sorted by
// slot in non-decreasing order. It is consumed lazily and strictly
// forward: the replayer never rewinds, so implementations may stream
// from disk or a remote store without buffering.
//
// Next follows the iterator convention of database cursors: it returns
// false when the source is exhausted or failed, and Err distinguishes
// the two.
type RootSource interface {
	Next() bool
	Value() RootSlot
	Err() error
}

// SliceRootSource adapts an in-memory slice of (root, slot) pairs into a
// RootSource. The pairs must already be sorted by slot.
type SliceRootSource struct {
	pairs []RootSlot
	pos   int
}

// NewSliceRootSource wraps pairs without copying them.
func NewSliceRootSource(pairs []RootSlot) *SliceRootSource {
	return &SliceRootSource{pairs: pairs, pos: -1}
}

// Next advances to the next pair.
func (s *SliceRootSource) Next() bool {
	if s.pos+1 >= len(s.pairs) {
		return false
	}
	s.pos++
	return true
}

// Value returns the pair Next advanced to.
func (s *SliceRootSource) Value() RootSlot {
	return s.pairs[s.pos]
}

// Err always returns nil; a slice cannot fail mid-iteration.
func (s *SliceRootSource) Err() error {
	return nil
}

// rootCursor adds single-element lookahead on top of a RootSource so the
// replayer can inspect the upcoming slot without consuming the pair.
type rootCursor struct {
	src  RootSource
	head *RootSlot
	done bool
}

func newRootCursor(src RootSource) *rootCursor {
	return &rootCursor{src: src}
}

// peek returns the next pair without consuming it, or nil when the
// source is exhausted. Source errors propagate unwrapped.
func (c *rootCursor) peek() (*RootSlot, error) {
	if c.head != nil {
		return c.head, nil
	}
	if c.done {
		return nil, nil
	}
	if !c.src.Next() {
		c.done = true
		return nil, c.src.Err()
	}
	v := c.src.Value()
	c.head = &v
	return c.head, nil
}

// advance consumes the pair peek exposed.
func (c *rootCursor) advance() {
	c.head = nil
}

// skipBelow discards pairs whose slot is lower than the given slot. A
// replayed state only moves forward, so such pairs can never match.
func (c *rootCursor) skipBelow(slot types.Slot) error {
	for {
		head, err := c.peek()
		if err != nil {
			return err
		}
		if head == nil || head.Slot >= slot {
			return nil
		}
		c.advance()
	}
}
