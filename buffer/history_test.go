// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cogentcore.org/text/clock"
)

// pushSimpleEdit pushes a single-range, pure-insertion edit of length
// insertedLen onto h as its own transaction, the way [Buffer.Edit] would
// but without going through a real fragment tree: StartTransaction sees
// the version as it stood before id, PushEdit sees it after.
func pushSimpleEdit(h *History, id clock.Local, start int, insertedLen int, before, after clock.VersionVector, at time.Time) {
	h.StartTransaction(before, nil)
	h.PushEdit(id, []FullRange{{Start: start, End: start}}, []int{insertedLen}, after, at)
	h.EndTransaction(nil)
}

// TestHistoryGroupsTransactionsWithinInterval is spec §8 scenario S6's
// "group" half: two edits separated by less than GroupInterval, with no
// intervening version change, merge into a single undo step.
func TestHistoryGroupsTransactionsWithinInterval(t *testing.T) {
	h := NewHistory("", 300*time.Millisecond)
	v := clock.NewVersionVector()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id1 := clock.Local{Replica: 1, Seq: 1}
	before1 := v.Clone()
	v = v.Observe(id1)
	pushSimpleEdit(h, id1, 0, 1, before1, v, base)

	id2 := clock.Local{Replica: 1, Seq: 2}
	before2 := v.Clone()
	v = v.Observe(id2)
	pushSimpleEdit(h, id2, 1, 1, before2, v, base.Add(100*time.Millisecond))

	assert.True(t, h.CanUndo())
	last := h.PopUndo()
	assert.Equal(t, []clock.Local{id1, id2}, last.EditIDs)
	assert.False(t, h.CanUndo(), "the two edits must have merged into a single undo step")
}

// TestHistoryDoesNotGroupTransactionsBeyondInterval is S6's negative
// case: two edits separated by more than GroupInterval stay separate
// undo steps.
func TestHistoryDoesNotGroupTransactionsBeyondInterval(t *testing.T) {
	h := NewHistory("", 300*time.Millisecond)
	v := clock.NewVersionVector()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id1 := clock.Local{Replica: 1, Seq: 1}
	before1 := v.Clone()
	v = v.Observe(id1)
	pushSimpleEdit(h, id1, 0, 1, before1, v, base)

	id2 := clock.Local{Replica: 1, Seq: 2}
	before2 := v.Clone()
	v = v.Observe(id2)
	pushSimpleEdit(h, id2, 1, 1, before2, v, base.Add(400*time.Millisecond))

	first := h.PopUndo()
	assert.Equal(t, []clock.Local{id2}, first.EditIDs)
	assert.True(t, h.CanUndo())
	second := h.PopUndo()
	assert.Equal(t, []clock.Local{id1}, second.EditIDs)
}

// TestHistoryRemoteEditBetweenLocalEditsPreventsGrouping covers S6's
// third case: even within the grouping window, a remote operation that
// changed the version in between means the second transaction's Start
// no longer equals the first's End, so they don't merge.
func TestHistoryRemoteEditBetweenLocalEditsPreventsGrouping(t *testing.T) {
	h := NewHistory("", 300*time.Millisecond)
	v := clock.NewVersionVector()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id1 := clock.Local{Replica: 1, Seq: 1}
	before1 := v.Clone()
	v = v.Observe(id1)
	pushSimpleEdit(h, id1, 0, 1, before1, v, base)

	// A remote edit lands, advancing the version without going through
	// this replica's transaction machinery.
	remote := clock.Local{Replica: 2, Seq: 1}
	v = v.Observe(remote)

	id2 := clock.Local{Replica: 1, Seq: 2}
	before2 := v.Clone()
	v = v.Observe(id2)
	pushSimpleEdit(h, id2, 1, 1, before2, v, base.Add(100*time.Millisecond))

	first := h.PopUndo()
	assert.Equal(t, []clock.Local{id2}, first.EditIDs)
	assert.True(t, h.CanUndo())
	second := h.PopUndo()
	assert.Equal(t, []clock.Local{id1}, second.EditIDs)
}

func TestHistoryPrune(t *testing.T) {
	h := NewHistory("", 0)
	h.MaxUndoSteps = 2
	v := clock.NewVersionVector()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		id := clock.Local{Replica: 1, Seq: clock.Seq(i + 1)}
		before := v.Clone()
		v = v.Observe(id)
		pushSimpleEdit(h, id, i, 1, before, v, base.Add(time.Duration(i)*time.Second))
	}
	assert.Equal(t, 5, len(h.undoStack))
	h.Prune()
	assert.Equal(t, 2, len(h.undoStack))
}
