// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"time"

	"cogentcore.org/text/clock"
	"cogentcore.org/text/internal/slicesx"
)

// Transaction is an undoable grouping of local edits, with their
// affected full-offset ranges merged into a sorted, non-overlapping
// set, and the selection sets in effect when the transaction opened and
// closed.
type Transaction struct {
	// EditIDs are the edits folded into this transaction, in the order
	// they were applied.
	EditIDs []clock.Local
	// Start is the buffer's version immediately before the
	// transaction's first edit.
	Start clock.VersionVector
	// End is the buffer's version immediately after the transaction's
	// last edit so far.
	End clock.VersionVector
	// Ranges are the transaction's merged, sorted, non-overlapping
	// full-offset ranges.
	Ranges []FullRange
	// SelectionsBefore and SelectionsAfter are snapshots of every
	// selection set's ranges at transaction open and most recent close,
	// restored by undo and redo respectively.
	SelectionsBefore map[clock.Local][]AnchorRange
	SelectionsAfter  map[clock.Local][]AnchorRange
	// FirstEditAt and LastEditAt bound the transaction for grouping.
	FirstEditAt, LastEditAt time.Time
}

// History is a replica's undo/redo stacks plus the base text every
// fragment tree the buffer has ever built descends from.
type History struct {
	// BaseText is the buffer's initial content, shared read-only by
	// every snapshot and fragment tree derived from it.
	BaseText string
	// GroupInterval bounds how close in time two transactions must be
	// to merge into one undo step.
	GroupInterval time.Duration
	// MaxUndoSteps is a soft cap consulted only by [History.Prune], which
	// a caller invokes explicitly; the undo stack is never trimmed by
	// deletion on its own (spec: "never by deletion without user
	// action"). Zero means no cap.
	MaxUndoSteps int

	undoStack []*Transaction
	redoStack []*Transaction
	depth     int
	current   *Transaction
}

// NewHistory returns a history over baseText, grouping transactions
// within groupInterval of each other.
func NewHistory(baseText string, groupInterval time.Duration) *History {
	return &History{BaseText: baseText, GroupInterval: groupInterval}
}

// StartTransaction increments the nesting depth, opening a new frame
// only at depth 0; nested calls are open-coded into the outermost
// transaction.
func (h *History) StartTransaction(version clock.VersionVector, selections map[clock.Local][]AnchorRange) {
	h.depth++
	if h.depth > 1 {
		return
	}
	h.current = &Transaction{
		Start:            version.Clone(),
		End:              version.Clone(),
		SelectionsBefore: cloneSelections(selections),
	}
}

// EndTransaction pops the nesting depth. At depth 0 it discards an empty
// frame, otherwise records the closing selections, pushes the frame
// onto the undo stack, clears the redo stack (a fresh edit invalidates
// any pending redo), and attempts to group it with the previous frame.
// It returns the finished transaction, or nil if the frame was empty or
// nesting is still open.
func (h *History) EndTransaction(selections map[clock.Local][]AnchorRange) *Transaction {
	invariant(h.depth > 0, "end_transaction called without a matching start_transaction")
	h.depth--
	if h.depth > 0 {
		return nil
	}
	t := h.current
	h.current = nil
	if t == nil || len(t.EditIDs) == 0 {
		return nil
	}
	t.SelectionsAfter = cloneSelections(selections)
	h.undoStack = append(h.undoStack, t)
	h.redoStack = nil
	h.group()
	return t
}

// PushEdit folds an edit into the currently open transaction (or a new
// top-level frame if none is open), merging its ranges via [mergeRanges]
// and advancing the transaction's End version and LastEditAt.
func (h *History) PushEdit(id clock.Local, ranges []FullRange, insertedLens []int, after clock.VersionVector, at time.Time) {
	t := h.current
	if t == nil {
		t = &Transaction{Start: after.Clone()}
		h.current = t
		h.depth = 1
	}
	if t.FirstEditAt.IsZero() {
		t.FirstEditAt = at
	}
	t.LastEditAt = at
	t.EditIDs = append(t.EditIDs, id)
	t.End = after.Clone()
	t.Ranges = mergeRanges(t.Ranges, ranges, insertedLens)
}

// group walks the undo stack from the top, merging the most recent
// transaction into its predecessor when they fall within GroupInterval
// of each other and no intervening operation (remote or otherwise)
// changed the version between them.
func (h *History) group() {
	for len(h.undoStack) >= 2 {
		last := h.undoStack[len(h.undoStack)-1]
		prev := h.undoStack[len(h.undoStack)-2]
		if last.FirstEditAt.Sub(prev.LastEditAt) > h.GroupInterval {
			return
		}
		if !prev.End.Equal(last.Start) {
			return
		}
		prev.EditIDs = append(prev.EditIDs, last.EditIDs...)
		prev.End = last.End
		prev.LastEditAt = last.LastEditAt
		prev.SelectionsAfter = last.SelectionsAfter
		prev.Ranges = mergeTransactionRanges(prev.Ranges, last.Ranges)
		h.undoStack = h.undoStack[:len(h.undoStack)-1]
	}
}

// PopUndo removes and returns the most recent transaction from the undo
// stack, or nil if it is empty.
func (h *History) PopUndo() *Transaction {
	if len(h.undoStack) == 0 {
		return nil
	}
	t := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, t)
	return t
}

// PopRedo removes and returns the most recently undone transaction from
// the redo stack, or nil if it is empty.
func (h *History) PopRedo() *Transaction {
	if len(h.redoStack) == 0 {
		return nil
	}
	t := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, t)
	return t
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Prune discards the oldest undo transactions until the stack holds at
// most h.MaxUndoSteps, if MaxUndoSteps is positive. This is the only
// way the undo stack ever shrinks by deletion; callers must invoke it
// explicitly (e.g. in response to a user command), never as a side
// effect of an edit.
func (h *History) Prune() {
	if h.MaxUndoSteps <= 0 || len(h.undoStack) <= h.MaxUndoSteps {
		return
	}
	h.undoStack = slicesx.DropFirst(h.undoStack, len(h.undoStack)-h.MaxUndoSteps)
}

func cloneSelections(m map[clock.Local][]AnchorRange) map[clock.Local][]AnchorRange {
	if m == nil {
		return nil
	}
	out := make(map[clock.Local][]AnchorRange, len(m))
	for k, v := range m {
		out[k] = append([]AnchorRange(nil), v...)
	}
	return out
}

// mergeRanges incorporates a single edit's sorted, non-overlapping
// ranges (each paired with its inserted length, already expressed in
// final post-edit full-offset coordinates) into an existing sorted,
// non-overlapping range set, per the three-way merge in spec §4.7:
// ranges wholly before the next existing range are pushed as-is;
// overlapping ranges are merged taking the min start and max end
// (extended by the inserted length); ranges after an existing one are
// preceded by emitting that existing range untouched.
func mergeRanges(existing []FullRange, incoming []FullRange, insertedLens []int) []FullRange {
	if len(existing) == 0 {
		out := make([]FullRange, len(incoming))
		for i, rng := range incoming {
			out[i] = FullRange{Start: rng.Start, End: rng.Start + insertedLens[i]}
		}
		return out
	}
	var out []FullRange
	ei := 0
	for ii, rng := range incoming {
		for ei < len(existing) && existing[ei].End < rng.Start {
			out = append(out, existing[ei])
			ei++
		}
		merged := FullRange{Start: rng.Start, End: rng.Start + insertedLens[ii]}
		for ei < len(existing) && existing[ei].Start <= merged.End {
			if existing[ei].Start < merged.Start {
				merged.Start = existing[ei].Start
			}
			if existing[ei].End > merged.End {
				merged.End = existing[ei].End
			}
			ei++
		}
		out = append(out, merged)
	}
	for ; ei < len(existing); ei++ {
		out = append(out, existing[ei])
	}
	return out
}

// mergeTransactionRanges unions two already-merged range sets (used when
// grouping adjacent transactions, where neither side needs further
// offset shifting since both are already expressed in the same
// full-offset space). It goes through the same three-way merge
// [mergeRanges] uses for a single edit's ranges, treating each of b's
// already-complete ranges as "incoming" with its own width standing in
// for the inserted length, so overlapping or adjacent ranges from a and
// b combine exactly the way two edits within one transaction would.
func mergeTransactionRanges(a, b []FullRange) []FullRange {
	lens := make([]int, len(b))
	for i, rng := range b {
		lens[i] = rng.End - rng.Start
	}
	return mergeRanges(a, b, lens)
}
