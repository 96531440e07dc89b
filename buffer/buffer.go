// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package buffer ties the fragment tree and its two ropes together into
// the collaborative text buffer: it applies local and remote edits,
// resolves anchors, and drives undo/redo history. A [Buffer] is built
// for exactly one replica and must only ever be driven by one goroutine
// at a time (or a caller-supplied lock) — see spec §5; the core does no
// internal synchronization.
package buffer

import (
	"iter"

	"cogentcore.org/text/clock"
	"cogentcore.org/text/fragment"
	"cogentcore.org/text/internal/ordmap"
	"cogentcore.org/text/rope"
	"cogentcore.org/text/textpos"
)

// ID identifies a buffer across replicas, distinct from the per-replica
// [clock.Replica] that stamps the operations a given participant
// originates: two replicas editing the "same" document share an ID but
// have different Replica ids.
type ID uint64

// Buffer is a single replica's view of a collaboratively edited text.
// The zero value is not usable; construct one with [New].
type Buffer struct {
	id      ID
	replica clock.Replica

	localClock   *clock.LocalClock
	lamportClock *clock.LamportClock
	version      clock.VersionVector

	fragments  *fragment.Tree
	visible    rope.Rope
	tombstones rope.Rope
	undoMap    *UndoMap

	history *History

	selections       *ordmap.Map[clock.Local, SelectionSet]
	activeSelections map[clock.Replica]*clock.Local
	deferred         *deferredQueue
}

// New returns a buffer for replica, identified across the network as
// id, seeded from history's base text. The genesis fragment (the
// initial text, if any) is stamped with the zero [clock.Local], which
// is never undone (its text can still be deleted by later edits) — it is
// the one insertion every replica's buffer starts from.
func New(replica clock.Replica, id ID, history *History) *Buffer {
	b := &Buffer{
		id:               id,
		replica:          replica,
		localClock:       clock.NewLocalClock(replica),
		lamportClock:     clock.NewLamportClock(replica),
		version:          clock.NewVersionVector(),
		tombstones:       rope.New(""),
		undoMap:          NewUndoMap(),
		history:          history,
		selections:       ordmap.New[clock.Local, SelectionSet](),
		activeSelections: make(map[clock.Replica]*clock.Local),
		deferred:         newDeferredQueue(),
	}
	b.visible = rope.New(history.BaseText)
	builder := fragment.NewBuilder()
	if b.visible.Len() > 0 {
		builder.Push(fragment.Fragment{
			Insertion: clock.Local{},
			Lamport:   clock.Lamport{},
			Len:       b.visible.Len(),
			Visible:   true,
		})
	}
	b.fragments = builder.Build()
	return b
}

// ID returns the buffer's network identity.
func (b *Buffer) ID() ID { return b.id }

// Replica returns the replica this buffer edits as.
func (b *Buffer) Replica() clock.Replica { return b.replica }

// Version returns a copy of the buffer's current version vector.
func (b *Buffer) Version() clock.VersionVector { return b.version.Clone() }

// History returns the buffer's undo/redo history.
func (b *Buffer) History() *History { return b.history }

// Len returns the byte length of the visible text.
func (b *Buffer) Len() int { return b.visible.Len() }

// MaxPoint returns the row/column position just past the visible
// text's last byte.
func (b *Buffer) MaxPoint() textpos.Point { return b.visible.MaxPoint() }

// Text returns the entire visible text.
func (b *Buffer) Text() string { return b.visible.String() }

// TextForRange returns the visible text in the half-open byte range
// rng, or an error if either end lies past [Buffer.Len].
func (b *Buffer) TextForRange(rng textpos.Range[int]) (string, error) {
	if rng.Start < 0 || rng.End > b.visible.Len() || rng.Start > rng.End {
		return "", ErrOffsetOutOfRange
	}
	return b.visible.TextForRange(rng), nil
}

// LineLen returns the byte length of row, or an error if row is past
// the last row of the visible text.
func (b *Buffer) LineLen(row int) (int, error) {
	max := b.visible.MaxPoint()
	if row < 0 || uint32(row) > max.Row {
		return 0, ErrOffsetOutOfRange
	}
	lineStart := b.visible.PointToOffset(textpos.Point{Row: uint32(row)}, textpos.Left)
	var lineEnd int
	if uint32(row) == max.Row {
		lineEnd = b.visible.Len()
	} else {
		lineEnd = b.visible.PointToOffset(textpos.Point{Row: uint32(row) + 1}, textpos.Left)
		if lineEnd > lineStart && lineEnd <= b.visible.Len() {
			// Exclude the newline itself from the line's length.
			lineEnd--
		}
	}
	return lineEnd - lineStart, nil
}

// CharsAt returns an iterator over the runes of the visible text
// starting at byte offset pos, reading from a point-in-time snapshot
// of the rope rather than the live buffer: mutating the buffer while
// iterating never invalidates or corrupts an in-progress CharsAt call.
func (b *Buffer) CharsAt(pos int) iter.Seq[rune] {
	text := b.visible.TextForRange(textpos.Range[int]{Start: pos, End: b.visible.Len()})
	return func(yield func(rune) bool) {
		for _, r := range text {
			if !yield(r) {
				return
			}
		}
	}
}

// BytesAt returns an iterator over the bytes of the visible text
// starting at byte offset pos, bound to a snapshot the same way
// [Buffer.CharsAt] is.
func (b *Buffer) BytesAt(pos int) iter.Seq[byte] {
	text := b.visible.TextForRange(textpos.Range[int]{Start: pos, End: b.visible.Len()})
	return func(yield func(byte) bool) {
		for i := 0; i < len(text); i++ {
			if !yield(text[i]) {
				return
			}
		}
	}
}

// ContainsStrAt reports whether needle occurs at byte offset pos in
// the visible text.
func (b *Buffer) ContainsStrAt(pos int, needle string) bool {
	if pos < 0 || pos+len(needle) > b.visible.Len() {
		return false
	}
	return b.visible.TextForRange(textpos.Range[int]{Start: pos, End: pos + len(needle)}) == needle
}

// Snapshot is an immutable, point-in-time view of a buffer's content:
// the visible and tombstoned text, the fragment tree, the undo map,
// and the version vector. The ropes and the fragment tree are shared
// persistent values; the undo map and the version vector are cloned, so
// taking a Snapshot is not O(1): its cost grows with the size of those
// two. Holding one never blocks the buffer's writer (spec §5).
type Snapshot struct {
	Visible    rope.Rope
	Tombstones rope.Rope
	Fragments  *fragment.Tree
	UndoMap    *UndoMap
	Version    clock.VersionVector
}

// Snapshot captures the buffer's current state.
func (b *Buffer) Snapshot() Snapshot {
	return Snapshot{
		Visible:    b.visible,
		Tombstones: b.tombstones,
		Fragments:  b.fragments,
		UndoMap:    b.undoMap.Clone(),
		Version:    b.version.Clone(),
	}
}

// isUndone reports whether edit is undone right now, per the live
// [UndoMap]. It satisfies the signature [fragment.Fragment.IsVisible]
// expects.
func (b *Buffer) isUndone(edit clock.Local) bool {
	return b.undoMap.IsUndone(edit)
}

// wasUndone reports whether edit was undone as of version, per the live
// [UndoMap]. It satisfies the signature [fragment.Fragment.WasVisible]
// expects.
func (b *Buffer) wasUndone(edit clock.Local, version clock.VersionVector) bool {
	return b.undoMap.WasUndone(edit, version)
}

// visibleToFullOffset converts a position in the buffer's current
// visible-offset coordinates to the full-offset coordinates operation
// ranges and anchors use, honoring bias the same way [fragment.Seek]
// does: when a fragment ends exactly at pos, Left stops on that fragment
// and Right moves past it to the next one.
func (b *Buffer) visibleToFullOffset(pos int, bias textpos.Bias) int {
	cur := fragment.Seek[fragment.VisibleAndFull](b.fragments, fragment.VisibleOffsetTarget(pos), bias)
	start := cur.Start()
	overshoot := pos - int(start.Visible)
	return int(start.Full) + overshoot
}

