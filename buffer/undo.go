// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import "cogentcore.org/text/clock"

// Undo reverses the most recent transaction on the history's undo
// stack, restoring the selections recorded when it opened, and returns
// the operations to broadcast (an [UndoOperation] plus an
// [UpdateSelectionsOperation] per selection set restored). It returns
// nil if there is nothing to undo.
func (b *Buffer) Undo() []Operation {
	t := b.history.PopUndo()
	if t == nil {
		return nil
	}
	ops := []Operation{b.undoOrRedo(t)}
	return append(ops, b.restoreSelections(t.SelectionsBefore)...)
}

// Redo reverses the most recent undo, restoring the selections recorded
// when the transaction closed, and returns the operations to broadcast.
// It returns nil if there is nothing to redo.
func (b *Buffer) Redo() []Operation {
	t := b.history.PopRedo()
	if t == nil {
		return nil
	}
	ops := []Operation{b.undoOrRedo(t)}
	return append(ops, b.restoreSelections(t.SelectionsAfter)...)
}

// undoOrRedo flips every edit in t one count further (odd becomes even,
// or vice versa — the same mechanism serves both directions) and
// applies the resulting [UndoOperation] locally.
func (b *Buffer) undoOrRedo(t *Transaction) Operation {
	counts := make(map[clock.Local]int, len(t.EditIDs))
	for _, id := range t.EditIDs {
		counts[id] = b.undoMap.CurrentCount(id) + 1
	}
	undoID := b.localClock.Tick()
	op := UndoOperation{
		ID:      undoID,
		Counts:  counts,
		Ranges:  t.Ranges,
		Version: t.Start.Clone(),
	}
	b.applyUndo(op)
	b.version = b.version.Observe(undoID)
	op.Lamport = b.lamportClock.Tick()
	return op
}

// restoreSelections installs snapshot as the current ranges of every
// selection set it names and returns the operations announcing the
// change.
func (b *Buffer) restoreSelections(snapshot map[clock.Local][]AnchorRange) []Operation {
	if len(snapshot) == 0 {
		return nil
	}
	ops := make([]Operation, 0, len(snapshot))
	for id, sel := range snapshot {
		set := SelectionSet{ID: id, Selection: sel}
		b.selections.Set(id, set)
		ops = append(ops, UpdateSelectionsOperation{Lamport: b.lamportClock.Tick(), Replica: b.replica, Set: set})
	}
	return ops
}
