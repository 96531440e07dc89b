// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"sort"

	"cogentcore.org/text/clock"
	"cogentcore.org/text/fragment"
	"cogentcore.org/text/textpos"
)

// ApplyOps applies a batch of remote operations, deferring any whose
// causal preconditions aren't yet met and retrying the deferred set
// (plus any left over from an earlier call) to a fixed point before
// returning, per spec §4.9.
func (b *Buffer) ApplyOps(ops []Operation) error {
	for _, op := range ops {
		if b.canApplyOp(op) {
			if err := b.applyOp(op); err != nil {
				return err
			}
		} else {
			b.deferred.push(op)
		}
	}
	return b.flushDeferred()
}

// flushDeferred repeatedly rescans the deferred queue, applying
// whatever now satisfies [Buffer.canApplyOp] and re-blocking the rest,
// until a full pass makes no progress.
func (b *Buffer) flushDeferred() error {
	for {
		pending := b.deferred.ops
		b.deferred.ops = nil
		b.deferred.blockedReplicas = make(map[clock.Replica]struct{})
		// Scan in causal (Lamport) order so an operation is tried before
		// any later operation from its replica re-blocks that replica.
		sort.SliceStable(pending, func(i, j int) bool {
			return pending[i].LamportTimestamp().Less(pending[j].LamportTimestamp())
		})

		progressed := false
		for _, op := range pending {
			if b.canApplyOp(op) {
				if err := b.applyOp(op); err != nil {
					return err
				}
				progressed = true
			} else {
				b.deferred.push(op)
			}
		}
		if !progressed || len(b.deferred.ops) == 0 {
			return nil
		}
	}
}

// canApplyOp reports whether op's causal preconditions are met: no
// other deferred operation from the same replica is still waiting, and
// the operation's own version requirement is dominated by the buffer's
// current version.
func (b *Buffer) canApplyOp(op Operation) bool {
	if b.deferred.blocked(op.ReplicaID()) {
		return false
	}
	switch o := op.(type) {
	case EditOperation:
		return b.version.Dominates(o.Version)
	case UndoOperation:
		return b.version.Dominates(o.Version)
	case UpdateSelectionsOperation:
		return b.version.Dominates(o.Set.requiredVersion())
	case RemoveSelectionsOperation:
		return true
	case SetActiveSelectionsOperation:
		if o.SetID == nil {
			return true
		}
		return b.selections.Has(*o.SetID)
	default:
		return true
	}
}

// applyOp applies a single operation already known to satisfy
// [Buffer.canApplyOp], dispatching on its concrete type.
func (b *Buffer) applyOp(op Operation) error {
	switch o := op.(type) {
	case EditOperation:
		if !b.version.Observed(o.ID) {
			b.applyRemoteEdit(o)
			b.version = b.version.Observe(o.ID)
			b.lamportClock.Observe(o.Lamport)
			b.localClock.Observe(o.ID)
		}
	case UndoOperation:
		if !b.version.Observed(o.ID) {
			b.applyUndo(o)
			b.version = b.version.Observe(o.ID)
			b.lamportClock.Observe(o.Lamport)
			b.localClock.Observe(o.ID)
		}
	case UpdateSelectionsOperation:
		b.selections.Set(o.Set.ID, o.Set)
		b.lamportClock.Observe(o.Lamport)
	case RemoveSelectionsOperation:
		b.selections.Delete(o.SetID)
		if active, ok := b.activeSelections[o.Replica]; ok && active != nil && *active == o.SetID {
			delete(b.activeSelections, o.Replica)
		}
		b.lamportClock.Observe(o.Lamport)
	case SetActiveSelectionsOperation:
		b.activeSelections[o.Replica] = o.SetID
		b.lamportClock.Observe(o.Lamport)
	default:
		invariant(false, "buffer: unknown operation variant")
	}
	return nil
}

// RemovePeer discards every selection set published by replica and
// clears its active-selection record, per spec §4.9: once a
// participant disconnects, its cursors should no longer be drawn by
// anyone still editing.
func (b *Buffer) RemovePeer(replica clock.Replica) {
	b.selections.DeleteFunc(func(id clock.Local, _ SelectionSet) bool {
		return id.Replica != replica
	})
	delete(b.activeSelections, replica)
}

// applyRemoteEdit is the remote counterpart of applyLocalEdit (spec
// §4.5): it walks the fragment tree keyed by full offset as of the
// edit's own Version, so concurrent insertions at the same position
// are ordered by descending Lamport timestamp regardless of arrival
// order, and applies op's deletions and insertion exactly as the
// author intended even though the tree has since grown fragments the
// author never saw.
func (b *Buffer) applyRemoteEdit(op EditOperation) {
	if len(op.Ranges) == 0 {
		return
	}
	cx := op.Version

	newFrag := fragment.NewBuilder()
	rb := newRopeBuilder(b.visible, b.tombstones)

	oldCur := fragment.SeekFrom[fragment.VersionedFullOffset](b.fragments, fragment.FullOffsetTarget(0), textpos.Left, fragment.NewVersionedFullOffset(cx))
	prefix := oldCur.SliceTo(fragment.FullOffsetTarget(op.Ranges[0].Start), textpos.Left)
	rb.pushTree(prefix)
	newFrag.PushTree(prefix)

	fragmentStart := int(oldCur.Start().Offset)

	for _, rng := range op.Ranges {
		fragmentEnd := int(oldCur.End().Offset)

		if fragmentEnd < rng.Start {
			if fragmentStart > int(oldCur.Start().Offset) {
				if fragmentEnd > fragmentStart {
					item, _ := oldCur.Item()
					suffix := item.Clone()
					suffix.Len = fragmentEnd - fragmentStart
					rb.pushFragment(suffix, item.Visible)
					newFrag.Push(suffix)
				}
				oldCur.Next()
			}
			slice := oldCur.SliceTo(fragment.FullOffsetTarget(rng.Start), textpos.Left)
			rb.pushTree(slice)
			newFrag.PushTree(slice)
			fragmentStart = int(oldCur.Start().Offset)
		}

		if fragmentStart < rng.Start {
			item, _ := oldCur.Item()
			prefixFrag := item.Clone()
			prefixFrag.Len = rng.Start - fragmentStart
			rb.pushFragment(prefixFrag, item.Visible)
			newFrag.Push(prefixFrag)
			fragmentStart = rng.Start
			// The boundary fragment may have been consumed in full (its
			// natural end lands exactly on rng.Start); advance onto
			// whatever sits after it so the tie-break below sees it.
			if fragmentStart == int(oldCur.End().Offset) {
				oldCur.Next()
			}
		}

		// Concurrent insertions landing exactly at this range's start
		// are ordered by descending Lamport timestamp: a fragment with
		// a higher timestamp than this edit was inserted "after" it in
		// the total order and is kept ahead of the new text.
		for {
			item, ok := oldCur.Item()
			if !ok || fragmentStart != rng.Start || !op.Lamport.Less(item.Lamport) {
				break
			}
			rb.pushFragment(item, item.Visible)
			newFrag.Push(item)
			oldCur.Next()
			fragmentStart = int(oldCur.Start().Offset)
		}

		if op.NewText != "" {
			rb.pushStr(op.NewText)
			newFrag.Push(fragment.Fragment{Insertion: op.ID, Lamport: op.Lamport, Len: len(op.NewText), Visible: true})
		}

		for fragmentStart < rng.End {
			item, ok := oldCur.Item()
			if !ok {
				break
			}
			fragmentEnd = int(oldCur.End().Offset)
			intersection := item.Clone()
			intersectionEnd := min(rng.End, fragmentEnd)
			if item.WasVisible(op.Version, b.wasUndone) {
				intersection.Len = intersectionEnd - fragmentStart
				if intersection.Deletions == nil {
					intersection.Deletions = make(map[clock.Local]struct{}, 1)
				}
				intersection.Deletions[op.ID] = struct{}{}
				intersection.Visible = intersection.IsVisible(b.isUndone)
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
	}

	if fragmentStart > int(oldCur.Start().Offset) {
		fragmentEnd := int(oldCur.End().Offset)
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
}

// applyUndo flips the visibility of every fragment touched by op,
// shared by local undo/redo and remote undo operations alike (spec
// §4.6). A fragment is in scope if it was visible as of op.Version (the
// transaction's start) or its own insertion is one of the edits being
// undone/redone; its new visibility is recomputed from the live undo
// map, which op.Counts has already been folded into.
func (b *Buffer) applyUndo(op UndoOperation) {
	for edit, count := range op.Counts {
		b.undoMap.Record(edit, op.ID, count)
	}
	if len(op.Ranges) == 0 {
		return
	}

	cx := op.Version.Clone()
	for edit := range op.Counts {
		cx = cx.Observe(edit)
	}

	newFrag := fragment.NewBuilder()
	rb := newRopeBuilder(b.visible, b.tombstones)

	oldCur := fragment.SeekFrom[fragment.VersionedFullOffset](b.fragments, fragment.FullOffsetTarget(0), textpos.Right, fragment.NewVersionedFullOffset(cx))
	prefix := oldCur.SliceTo(fragment.FullOffsetTarget(op.Ranges[0].Start), textpos.Right)
	rb.pushTree(prefix)
	newFrag.PushTree(prefix)

	for _, rng := range op.Ranges {
		endOffset := int(oldCur.End().Offset)
		if endOffset < rng.Start {
			preceding := oldCur.SliceTo(fragment.FullOffsetTarget(rng.Start), textpos.Right)
			rb.pushTree(preceding)
			newFrag.PushTree(preceding)
		}

		for {
			endOffset = int(oldCur.End().Offset)
			if endOffset > rng.End {
				break
			}
			item, ok := oldCur.Item()
			if !ok {
				break
			}
			f := item.Clone()
			wasVisible := f.Visible
			_, inCounts := op.Counts[f.Insertion]
			if f.WasVisible(op.Version, b.wasUndone) || inCounts {
				f.MaxUndos = f.MaxUndos.Observe(op.ID)
				f.Visible = f.IsVisible(b.isUndone)
			}
			rb.pushFragment(f, wasVisible)
			newFrag.Push(f)
			oldCur.Next()
			if endOffset == int(oldCur.End().Offset) {
				unseen := oldCur.SliceTo(fragment.FullOffsetTarget(endOffset), textpos.Right)
				rb.pushTree(unseen)
				newFrag.PushTree(unseen)
			}
		}
	}

	suffix := oldCur.Suffix()
	rb.pushTree(suffix)
	newFrag.PushTree(suffix)

	visible, tombstones := rb.finish()
	b.fragments = newFrag.Build()
	b.visible = visible
	b.tombstones = tombstones
}
