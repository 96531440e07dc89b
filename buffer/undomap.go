// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import "cogentcore.org/text/clock"

// UndoMap records, per edit id, every undo/redo count assigned to it.
// An edit is currently undone iff the highest count recorded for it is
// odd; this makes repeated undo/redo of overlapping transactions
// commute regardless of replica arrival order, since visibility is a
// pure function of the map's current contents rather than of the order
// undo operations were applied in.
type UndoMap struct {
	// counts maps an edit id to the list of (undo id, count) pairs
	// applied to it, in the order they were recorded locally. Remote
	// replicas may record them in a different order; only the maximum
	// count matters for visibility, so order never affects convergence.
	counts map[clock.Local][]undoCount
}

type undoCount struct {
	undo  clock.Local
	count int
}

// NewUndoMap returns an empty undo map.
func NewUndoMap() *UndoMap {
	return &UndoMap{counts: make(map[clock.Local][]undoCount)}
}

// CurrentCount returns the highest count recorded for edit, or 0 if none
// has been recorded.
func (m *UndoMap) CurrentCount(edit clock.Local) int {
	max := 0
	for _, uc := range m.counts[edit] {
		if uc.count > max {
			max = uc.count
		}
	}
	return max
}

// IsUndone reports whether edit is currently undone: its highest
// recorded count is odd.
func (m *UndoMap) IsUndone(edit clock.Local) bool {
	return m.CurrentCount(edit)%2 == 1
}

// WasUndone reports whether edit was undone as of version: the highest
// count recorded by an undo id that version has observed is odd. Undo
// ids not yet observed by version don't count, so a historical query
// never sees the effect of an undo that, from version's vantage, hasn't
// happened yet.
func (m *UndoMap) WasUndone(edit clock.Local, version clock.VersionVector) bool {
	max := 0
	for _, uc := range m.counts[edit] {
		if version.Observed(uc.undo) && uc.count > max {
			max = uc.count
		}
	}
	return max%2 == 1
}

// Record sets edit's count under undo id u, replacing it if there's
// already an entry for this combination.
func (m *UndoMap) Record(edit clock.Local, u clock.Local, count int) {
	for i, uc := range m.counts[edit] {
		if uc.undo == u {
			m.counts[edit][i].count = count
			return
		}
	}
	m.counts[edit] = append(m.counts[edit], undoCount{undo: u, count: count})
}

// Clone returns an independent deep copy of m.
func (m *UndoMap) Clone() *UndoMap {
	out := &UndoMap{counts: make(map[clock.Local][]undoCount, len(m.counts))}
	for edit, list := range m.counts {
		out.counts[edit] = append([]undoCount(nil), list...)
	}
	return out
}
