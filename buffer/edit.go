// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"time"

	"cogentcore.org/text/clock"
	"cogentcore.org/text/fragment"
	"cogentcore.org/text/textpos"
)

// StartTransaction opens (or, if already nested, extends) an undo
// transaction, capturing the current ranges of every named selection
// set as the "before" state a subsequent undo restores.
func (b *Buffer) StartTransaction(setIDs ...clock.Local) {
	b.history.StartTransaction(b.version, b.selectionsSnapshot(setIDs))
}

// EndTransaction closes the innermost transaction frame, recording the
// current ranges of every named selection set as the "after" state a
// subsequent redo restores. It returns the finished transaction, or nil
// if the frame was empty or a nested call is still open.
func (b *Buffer) EndTransaction(setIDs ...clock.Local) *Transaction {
	return b.history.EndTransaction(b.selectionsSnapshot(setIDs))
}

func (b *Buffer) selectionsSnapshot(setIDs []clock.Local) map[clock.Local][]AnchorRange {
	if len(setIDs) == 0 {
		return nil
	}
	out := make(map[clock.Local][]AnchorRange, len(setIDs))
	for _, id := range setIDs {
		set, ok := b.selections.Get(id)
		if !ok {
			continue
		}
		out[id] = append([]AnchorRange(nil), set.Selection...)
	}
	return out
}

// validateRanges checks that ranges are sorted, non-overlapping, and
// lie within [0, maxLen]. Overlapping or unsorted ranges are a caller
// contract violation (spec §8: "undefined behavior"), not a recoverable
// error, so they raise an [AssertionFailure] rather than being returned.
func validateRanges(ranges []textpos.Range[int], maxLen int) error {
	prevEnd := 0
	for i, r := range ranges {
		if r.Start < 0 || r.End > maxLen || r.Start > r.End {
			return ErrOffsetOutOfRange
		}
		invariant(i == 0 || r.Start >= prevEnd, "edit: ranges must be sorted and non-overlapping")
		prevEnd = r.End
	}
	return nil
}

// Edit replaces every range in ranges (given in visible-offset
// coordinates, sorted and non-overlapping) with newText, as a single
// transaction, and returns the [EditOperation] to broadcast to other
// replicas. setIDs names the selection sets this edit's transaction
// should snapshot for undo/redo.
func (b *Buffer) Edit(ranges []textpos.Range[int], newText string, setIDs ...clock.Local) (EditOperation, error) {
	if err := validateRanges(ranges, b.visible.Len()); err != nil {
		return EditOperation{}, err
	}

	b.StartTransaction(setIDs...)

	localID := b.localClock.Tick()
	lamportTS := b.lamportClock.Tick()
	edit := b.applyLocalEdit(ranges, newText, localID, lamportTS)

	b.version = b.version.Observe(edit.ID)
	insertedLens := make([]int, len(edit.Ranges))
	for i := range insertedLens {
		insertedLens[i] = len(newText)
	}
	b.history.PushEdit(edit.ID, edit.Ranges, insertedLens, b.version.Clone(), time.Now())

	b.EndTransaction(setIDs...)
	return edit, nil
}

// applyLocalEdit is the design-level procedure of spec §4.4: walk the
// fragment tree once, keyed by visible offset, splitting and
// re-emitting fragments around each range, and return the operation
// that reproduces the edit on a remote replica.
func (b *Buffer) applyLocalEdit(ranges []textpos.Range[int], newText string, id clock.Local, lamportTS clock.Lamport) EditOperation {
	edit := EditOperation{ID: id, Lamport: lamportTS, Version: b.version.Clone(), NewText: newText}
	if len(ranges) == 0 {
		return edit
	}
	edit.Ranges = make([]FullRange, 0, len(ranges))

	newFrag := fragment.NewBuilder()
	rb := newRopeBuilder(b.visible, b.tombstones)

	oldCur := fragment.Seek[fragment.VisibleAndFull](b.fragments, fragment.VisibleOffsetTarget(0), textpos.Left)
	prefix := oldCur.SliceTo(fragment.VisibleOffsetTarget(ranges[0].Start), textpos.Right)
	rb.pushTree(prefix)
	newFrag.PushTree(prefix)

	fragmentStart := int(oldCur.Start().Visible)

	for _, rng := range ranges {
		fragmentEnd := int(oldCur.End().Visible)

		// Jump ahead to the first fragment extending past this range's
		// start, reusing every fragment in between.
		if fragmentEnd < rng.Start {
			if fragmentStart > int(oldCur.Start().Visible) {
				if fragmentEnd > fragmentStart {
					item, _ := oldCur.Item()
					suffix := item.Clone()
					suffix.Len = fragmentEnd - fragmentStart
					rb.pushFragment(suffix, item.Visible)
					newFrag.Push(suffix)
				}
				oldCur.Next()
			}
			slice := oldCur.SliceTo(fragment.VisibleOffsetTarget(rng.Start), textpos.Right)
			rb.pushTree(slice)
			newFrag.PushTree(slice)
			fragmentStart = int(oldCur.Start().Visible)
		}

		deletedSoFar := int(oldCur.Start().Full) - int(oldCur.Start().Visible)
		fullRangeStart := rng.Start + deletedSoFar

		// Preserve any portion of the current fragment preceding this
		// range.
		if fragmentStart < rng.Start {
			item, _ := oldCur.Item()
			prefixFrag := item.Clone()
			prefixFrag.Len = rng.Start - fragmentStart
			rb.pushFragment(prefixFrag, item.Visible)
			newFrag.Push(prefixFrag)
			fragmentStart = rng.Start
		}

		// Insert the replacement text before any existing fragment
		// within this range.
		if newText != "" {
			rb.pushStr(newText)
			newFrag.Push(fragment.Fragment{Insertion: id, Lamport: lamportTS, Len: len(newText), Visible: true})
		}

		// Mark every fragment intersecting this range invisible.
		// Tombstones encountered here were already deleted and pass
		// through unchanged: their Len contributes nothing to the
		// visible-offset dimension, so fragmentStart never advances
		// past them until Next() skips them entirely.
		for fragmentStart < rng.End {
			item, ok := oldCur.Item()
			if !ok {
				break
			}
			fragmentEnd = int(oldCur.End().Visible)
			intersection := item.Clone()
			intersectionEnd := min(rng.End, fragmentEnd)
			if item.Visible {
				intersection.Len = intersectionEnd - fragmentStart
				if intersection.Deletions == nil {
					intersection.Deletions = make(map[clock.Local]struct{}, 1)
				}
				intersection.Deletions[id] = struct{}{}
				intersection.Visible = false
			}
			if intersection.Len > 0 {
				rb.pushFragment(intersection, item.Visible)
				newFrag.Push(intersection)
				fragmentStart = intersectionEnd
			}
			if fragmentEnd <= rng.End {
				oldCur.Next()
			}
		}

		deletedSoFar = int(oldCur.Start().Full) - int(oldCur.Start().Visible)
		fullRangeEnd := rng.End + deletedSoFar
		edit.Ranges = append(edit.Ranges, FullRange{Start: fullRangeStart, End: fullRangeEnd})
	}

	if fragmentStart > int(oldCur.Start().Visible) {
		fragmentEnd := int(oldCur.End().Visible)
		if fragmentEnd > fragmentStart {
			item, _ := oldCur.Item()
			suffix := item.Clone()
			suffix.Len = fragmentEnd - fragmentStart
			rb.pushFragment(suffix, item.Visible)
			newFrag.Push(suffix)
		}
		oldCur.Next()
	}
	suffix := oldCur.Suffix()
	rb.pushTree(suffix)
	newFrag.PushTree(suffix)

	visible, tombstones := rb.finish()
	b.fragments = newFrag.Build()
	b.visible = visible
	b.tombstones = tombstones
	return edit
}
