// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"cogentcore.org/text/fragment"
	"cogentcore.org/text/rope"
	"cogentcore.org/text/textpos"
)

// ropeBuilder rebuilds the visible and tombstone ropes alongside a new
// fragment tree during edit application. It tracks its own read
// position into each of the two *old* ropes so that a run of fragments
// can be copied across — possibly changing which new rope it lands in,
// when a fragment's visibility flips — without re-deriving offsets
// from the fragment tree at every step.
type ropeBuilder struct {
	oldVisible, oldTombstones     rope.Rope
	visiblePos, tombstonesPos     int
	newVisible, newTombstones     rope.Rope
}

func newRopeBuilder(oldVisible, oldTombstones rope.Rope) *ropeBuilder {
	return &ropeBuilder{oldVisible: oldVisible, oldTombstones: oldTombstones}
}

// pushLen copies n bytes from whichever old rope wasVisible selects
// into whichever new rope isVisible selects, advancing this builder's
// read cursor into the source rope by n.
func (rb *ropeBuilder) pushLen(n int, wasVisible, isVisible bool) {
	if n == 0 {
		return
	}
	var text string
	if wasVisible {
		text = rb.oldVisible.TextForRange(textpos.Range[int]{Start: rb.visiblePos, End: rb.visiblePos + n})
		rb.visiblePos += n
	} else {
		text = rb.oldTombstones.TextForRange(textpos.Range[int]{Start: rb.tombstonesPos, End: rb.tombstonesPos + n})
		rb.tombstonesPos += n
	}
	if isVisible {
		rb.newVisible = rb.newVisible.Push(text)
	} else {
		rb.newTombstones = rb.newTombstones.Push(text)
	}
}

// pushFragment copies a single fragment's bytes, reading from whichever
// old rope its visibility at read time (wasVisible) selects and
// writing to whichever new rope its current Visible flag selects — the
// two differ exactly when this fragment has just been struck by the
// edit being applied.
func (rb *ropeBuilder) pushFragment(f fragment.Fragment, wasVisible bool) {
	rb.pushLen(f.Len, wasVisible, f.Visible)
}

// pushTree copies every fragment of an unchanged subtree: its visible
// bytes stay visible, its tombstoned bytes stay tombstoned.
func (rb *ropeBuilder) pushTree(t *fragment.Tree) {
	s := t.Summary()
	rb.pushLen(s.VisibleLen, true, true)
	rb.pushLen(s.DeletedLen, false, false)
}

// pushStr appends freshly inserted text directly to the new visible
// rope; it has no counterpart in the old ropes to read from.
func (rb *ropeBuilder) pushStr(s string) {
	rb.newVisible = rb.newVisible.Push(s)
}

// finish appends whatever of the old ropes remains unread and returns
// the finished (visible, tombstones) pair.
func (rb *ropeBuilder) finish() (rope.Rope, rope.Rope) {
	rb.newVisible = rb.newVisible.Push(rb.oldVisible.TextForRange(textpos.Range[int]{Start: rb.visiblePos, End: rb.oldVisible.Len()}))
	rb.newTombstones = rb.newTombstones.Push(rb.oldTombstones.TextForRange(textpos.Range[int]{Start: rb.tombstonesPos, End: rb.oldTombstones.Len()}))
	return rb.newVisible, rb.newTombstones
}
