// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cogentcore.org/text/textpos"
)

// TestConcurrentInsertSameOffsetConverges exercises two replicas
// inserting at the same position, starting from the same version, with
// no causal relationship between the two edits: both must converge on
// an identical result once they've exchanged operations, with the
// Lamport tie-break (ties broken by replica id) deciding which
// insertion ends up ahead of the other, regardless of arrival order.
func TestConcurrentInsertSameOffsetConverges(t *testing.T) {
	a := newTestBuffer(1, "abcde")
	b := newTestBuffer(2, "abcde")

	opA, err := a.Edit([]textpos.Range[int]{{Start: 2, End: 2}}, "X")
	assert.NoError(t, err)
	opB, err := b.Edit([]textpos.Range[int]{{Start: 2, End: 2}}, "Y")
	assert.NoError(t, err)

	assert.NoError(t, a.ApplyOps([]Operation{opB}))
	assert.NoError(t, b.ApplyOps([]Operation{opA}))

	assert.Equal(t, a.Text(), b.Text())
	// Replica 2's Lamport timestamp outranks replica 1's at the same
	// sequence number, so its insertion is kept ahead of replica 1's.
	assert.Equal(t, "abYXcde", a.Text())
}

// TestConcurrentInsertVsDeleteConverges: one replica inserts inside a
// range the other concurrently deletes. The insertion must survive
// (it was never observed by the deleting replica), while every byte the
// deleting replica actually saw is removed on both sides.
func TestConcurrentInsertVsDeleteConverges(t *testing.T) {
	a := newTestBuffer(1, "abcde")
	b := newTestBuffer(2, "abcde")

	opA, err := a.Edit([]textpos.Range[int]{{Start: 2, End: 2}}, "X")
	assert.NoError(t, err)
	opB, err := b.Edit([]textpos.Range[int]{{Start: 1, End: 4}}, "")
	assert.NoError(t, err)

	assert.NoError(t, a.ApplyOps([]Operation{opB}))
	assert.NoError(t, b.ApplyOps([]Operation{opA}))

	assert.Equal(t, a.Text(), b.Text())
	assert.Equal(t, "aXe", a.Text())
}

// TestConcurrentEditsAtDisjointOffsetsConverge is the uncontested case:
// edits far apart from each other never interact, so ordering of
// application doesn't matter.
func TestConcurrentEditsAtDisjointOffsetsConverge(t *testing.T) {
	a := newTestBuffer(1, "abcdefgh")
	b := newTestBuffer(2, "abcdefgh")

	opA, err := a.Edit([]textpos.Range[int]{{Start: 0, End: 1}}, "Z")
	assert.NoError(t, err)
	opB, err := b.Edit([]textpos.Range[int]{{Start: 7, End: 8}}, "Q")
	assert.NoError(t, err)

	assert.NoError(t, a.ApplyOps([]Operation{opB}))
	assert.NoError(t, b.ApplyOps([]Operation{opA}))

	assert.Equal(t, a.Text(), b.Text())
	assert.Equal(t, "ZbcdefgQ", a.Text())
}

// TestDeferredOperationAppliesOnceCausalDependencyArrives is the
// fixed-point convergence scenario: an edit whose Version requires an
// earlier edit the receiving replica hasn't seen yet must wait, and
// apply automatically once that dependency lands, without the caller
// re-submitting it.
func TestDeferredOperationAppliesOnceCausalDependencyArrives(t *testing.T) {
	a := newTestBuffer(1, "abcde")
	receiver := newTestBuffer(2, "abcde")

	edit1, err := a.Edit([]textpos.Range[int]{{Start: 0, End: 0}}, "X")
	assert.NoError(t, err)
	edit2, err := a.Edit([]textpos.Range[int]{{Start: 1, End: 1}}, "Y")
	assert.NoError(t, err)
	assert.Equal(t, "XYabcde", a.Text())

	// edit2's Version requires edit1, which the receiver hasn't seen.
	assert.NoError(t, receiver.ApplyOps([]Operation{edit2}))
	assert.Equal(t, "abcde", receiver.Text(), "edit2 must be deferred, not applied out of order")

	assert.NoError(t, receiver.ApplyOps([]Operation{edit1}))
	assert.Equal(t, a.Text(), receiver.Text())
}

// TestDeferredOperationBlocksLaterOpsFromSameReplica verifies that once
// an operation from a replica is deferred, later operations from that
// same replica wait too, preserving per-replica delivery order.
func TestDeferredOperationBlocksLaterOpsFromSameReplica(t *testing.T) {
	a := newTestBuffer(1, "abcde")
	receiver := newTestBuffer(2, "abcde")

	edit1, err := a.Edit([]textpos.Range[int]{{Start: 0, End: 0}}, "X")
	assert.NoError(t, err)
	edit2, err := a.Edit([]textpos.Range[int]{{Start: 1, End: 1}}, "Y")
	assert.NoError(t, err)
	edit3, err := a.Edit([]textpos.Range[int]{{Start: 2, End: 2}}, "Z")
	assert.NoError(t, err)

	// Deliver edit2 and edit3 (both depend on edit1) before edit1.
	assert.NoError(t, receiver.ApplyOps([]Operation{edit2, edit3}))
	assert.Equal(t, "abcde", receiver.Text())

	assert.NoError(t, receiver.ApplyOps([]Operation{edit1}))
	assert.Equal(t, a.Text(), receiver.Text())
}
