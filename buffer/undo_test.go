// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cogentcore.org/text/textpos"
)

func TestUndoRedoRoundTrip(t *testing.T) {
	b := newTestBuffer(1, "abcde")
	_, err := b.Edit([]textpos.Range[int]{{Start: 2, End: 2}}, "XY")
	assert.NoError(t, err)
	assert.Equal(t, "abXYcde", b.Text())

	ops := b.Undo()
	assert.NotNil(t, ops)
	assert.Equal(t, "abcde", b.Text())

	ops = b.Redo()
	assert.NotNil(t, ops)
	assert.Equal(t, "abXYcde", b.Text())
}

func TestUndoWithNothingToUndoReturnsNil(t *testing.T) {
	b := newTestBuffer(1, "abc")
	assert.Nil(t, b.Undo())
}

func TestRedoWithNothingToRedoReturnsNil(t *testing.T) {
	b := newTestBuffer(1, "abc")
	assert.Nil(t, b.Redo())
}

func TestRedoStackClearedByNewEdit(t *testing.T) {
	b := newTestBuffer(1, "abcde")
	_, err := b.Edit([]textpos.Range[int]{{Start: 0, End: 0}}, "X")
	assert.NoError(t, err)
	b.Undo()
	assert.True(t, b.History().CanRedo())

	_, err = b.Edit([]textpos.Range[int]{{Start: 0, End: 0}}, "Y")
	assert.NoError(t, err)
	assert.False(t, b.History().CanRedo())
}

// TestCrossReplicaUndoConverges: a replica undoes its own transaction
// locally and broadcasts the resulting UndoOperation; a remote replica
// that never held that transaction on its own undo stack must still
// apply the visibility flip correctly.
func TestCrossReplicaUndoConverges(t *testing.T) {
	a := newTestBuffer(1, "abc")
	remote := newTestBuffer(2, "abc")

	editOp, err := a.Edit([]textpos.Range[int]{{Start: 1, End: 1}}, "X")
	assert.NoError(t, err)
	assert.Equal(t, "aXbc", a.Text())
	assert.NoError(t, remote.ApplyOps([]Operation{editOp}))
	assert.Equal(t, "aXbc", remote.Text())

	undoOps := a.Undo()
	assert.NotNil(t, undoOps)
	assert.Equal(t, "abc", a.Text())

	assert.NoError(t, remote.ApplyOps(undoOps))
	assert.Equal(t, "abc", remote.Text())
}

// TestCrossReplicaRedoConverges continues the above: redoing on the
// originating replica and broadcasting again restores the edit on the
// remote replica too.
func TestCrossReplicaRedoConverges(t *testing.T) {
	a := newTestBuffer(1, "abc")
	remote := newTestBuffer(2, "abc")

	editOp, err := a.Edit([]textpos.Range[int]{{Start: 1, End: 1}}, "X")
	assert.NoError(t, err)
	assert.NoError(t, remote.ApplyOps([]Operation{editOp}))

	undoOps := a.Undo()
	assert.NoError(t, remote.ApplyOps(undoOps))

	redoOps := a.Redo()
	assert.NotNil(t, redoOps)
	assert.Equal(t, "aXbc", a.Text())

	assert.NoError(t, remote.ApplyOps(redoOps))
	assert.Equal(t, a.Text(), remote.Text())
}

func TestUndoRestoresSelections(t *testing.T) {
	b := newTestBuffer(1, "abcde")
	setOp := b.AddSelectionSet(nil)
	setID := setOp.Set.ID

	before := AnchorRange{Start: b.AnchorBefore(0), End: b.AnchorBefore(1)}
	_, err := b.UpdateSelectionSet(setID, []AnchorRange{before})
	assert.NoError(t, err)

	b.StartTransaction(setID)
	_, err = b.Edit([]textpos.Range[int]{{Start: 2, End: 2}}, "XY")
	assert.NoError(t, err)
	after := AnchorRange{Start: b.AnchorBefore(0), End: b.AnchorBefore(3)}
	_, err = b.UpdateSelectionSet(setID, []AnchorRange{after})
	assert.NoError(t, err)
	b.EndTransaction(setID)

	ops := b.Undo()
	assert.NotNil(t, ops)
	set, ok := b.SelectionSet(setID)
	assert.True(t, ok)
	assert.Equal(t, []AnchorRange{before}, set.Selection)
}
