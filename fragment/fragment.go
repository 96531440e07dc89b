// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fragment implements the CRDT backbone of the buffer: an
// ordered, balanced [sumtree.Tree] of [Fragment] values, each a run of
// text with a single insertion identity and a mutable visibility flag.
// Its in-order traversal is the total order every replica's fragments
// agree on, whether or not they agree on which fragments are visible.
package fragment

import (
	"cogentcore.org/text/clock"
	"cogentcore.org/text/sumtree"
	"cogentcore.org/text/textpos"
)

// Fragment is an immutable identity (the insertion that introduced it)
// plus the mutable visibility state that insertion/deletion/undo flip.
// Fragments are never merged or re-split across insertions: splitting a
// fragment produces two fragments that share Insertion but each carry
// their own Len.
type Fragment struct {
	// Insertion identifies the single insert operation that introduced
	// this run of text.
	Insertion clock.Local
	// Lamport is the Lamport timestamp of Insertion, cached here because
	// the concurrent-insertion tie-break in a remote edit (spec §4.5)
	// needs it on every fragment it walks past.
	Lamport clock.Lamport
	// Len is the byte length of this run within its insertion.
	Len int
	// Visible reports whether this fragment currently contributes to the
	// visible text. It is kept in sync with IsVisible after every undo
	// map update; storing it avoids recomputing visibility on every read.
	Visible bool
	// Deletions is the set of deletion operations that have struck this
	// fragment. A struck fragment is only actually invisible if none of
	// its deletions have since been undone.
	Deletions map[clock.Local]struct{}
	// MaxUndos records which undo operations have touched this fragment.
	// It is folded into the fragment's Summary.MaxVersion; IsVisible and
	// WasVisible do not read it.
	MaxUndos clock.VersionVector
}

// Clone returns a deep-enough copy of f for splitting: Deletions and
// MaxUndos are copied so mutating the copy (its Len, Visible, Deletions,
// or MaxUndos) never affects f or any other fragment sharing its
// Insertion id. Callers must use Clone, never a plain struct copy,
// before mutating a fragment read out of a tree: the tree is meant to
// be immutable, and a plain copy still shares the Deletions/MaxUndos
// map and vector backing.
func (f Fragment) Clone() Fragment {
	out := f
	if f.Deletions != nil {
		out.Deletions = make(map[clock.Local]struct{}, len(f.Deletions))
		for d := range f.Deletions {
			out.Deletions[d] = struct{}{}
		}
	}
	out.MaxUndos = f.MaxUndos.Clone()
	return out
}

// IsVisible reports whether f is visible right now, given the buffer's
// current undo state: its insertion must not be undone, and every
// deletion recorded against it must itself be undone.
func (f Fragment) IsVisible(isUndone func(clock.Local) bool) bool {
	if isUndone(f.Insertion) {
		return false
	}
	for d := range f.Deletions {
		if !isUndone(d) {
			return false
		}
	}
	return true
}

// WasVisible reports whether f was visible as of a historical version:
// its insertion must have been observed by version and not undone as of
// version, and every recorded deletion must either be unobserved by
// version, or undone as of version.
func (f Fragment) WasVisible(version clock.VersionVector, wasUndone func(clock.Local, clock.VersionVector) bool) bool {
	if !version.Observed(f.Insertion) || wasUndone(f.Insertion, version) {
		return false
	}
	for d := range f.Deletions {
		if version.Observed(d) && !wasUndone(d, version) {
			return false
		}
	}
	return true
}

// Summary satisfies [sumtree.Item]. A fragment's own summary always
// counts its full length on exactly one side (visible or tombstoned) and
// treats its insertion as both the min and max insertion version of a
// single-fragment subtree.
func (f Fragment) Summary() Summary {
	maxVersion := clock.NewVersionVector().Observe(f.Insertion)
	for d := range f.Deletions {
		maxVersion = maxVersion.Observe(d)
	}
	maxVersion = maxVersion.Join(f.MaxUndos)

	insertionVersion := clock.NewVersionVector().Observe(f.Insertion)

	s := Summary{
		MaxVersion:          maxVersion,
		MinInsertionVersion: insertionVersion,
		MaxInsertionVersion: insertionVersion.Clone(),
	}
	if f.Visible {
		s.VisibleLen = f.Len
	} else {
		s.DeletedLen = f.Len
	}
	return s
}

// Summary is the augmentation cached at every node of a fragment tree.
type Summary struct {
	VisibleLen, DeletedLen int
	MaxVersion             clock.VersionVector
	MinInsertionVersion    clock.VersionVector
	MaxInsertionVersion    clock.VersionVector
}

// Add implements [sumtree.Summary].
func (s Summary) Add(other Summary) Summary {
	return Summary{
		VisibleLen:          s.VisibleLen + other.VisibleLen,
		DeletedLen:           s.DeletedLen + other.DeletedLen,
		MaxVersion:           s.MaxVersion.Join(other.MaxVersion),
		MinInsertionVersion:  s.MinInsertionVersion.Meet(other.MinInsertionVersion),
		MaxInsertionVersion:  s.MaxInsertionVersion.Join(other.MaxInsertionVersion),
	}
}

// FullLen is the total length (visible + tombstoned) of the summary.
func (s Summary) FullLen() int { return s.VisibleLen + s.DeletedLen }

// Tree is the fragment tree: a balanced, persistent sequence of
// Fragments ordered by the CRDT total order.
type Tree = sumtree.Tree[Fragment, Summary]

// Builder bulk-constructs a [Tree].
type Builder = sumtree.Builder[Fragment, Summary]

// NewBuilder returns an empty fragment-tree builder.
func NewBuilder() *Builder { return sumtree.NewBuilder[Fragment, Summary]() }

// Cursor is a cursor over a fragment [Tree], tracking dimension D.
type Cursor[D sumtree.Dimension[Summary, D]] = sumtree.Cursor[Fragment, Summary, D]

// Seek returns a cursor over t positioned at target, per bias.
func Seek[D sumtree.Dimension[Summary, D]](t *Tree, target sumtree.SeekTarget[Summary, D], bias textpos.Bias) *Cursor[D] {
	return sumtree.Seek[Fragment, Summary, D](t, target, bias)
}

// SeekFrom is [Seek] with an explicit starting dimension value, for
// dimensions carrying seek-scoped context such as [VersionedFullOffset]
// and [VersionedFullAndVisible].
func SeekFrom[D sumtree.Dimension[Summary, D]](t *Tree, target sumtree.SeekTarget[Summary, D], bias textpos.Bias, start D) *Cursor[D] {
	return sumtree.SeekFrom[Fragment, Summary, D](t, target, bias, start)
}

// VisibleOffset is the dimension that counts only visible bytes: the
// coordinate system callers address text with.
type VisibleOffset int

// Add implements [sumtree.Dimension].
func (v VisibleOffset) Add(s Summary) VisibleOffset { return v + VisibleOffset(s.VisibleLen) }

// CompareTo implements [sumtree.SeekTarget].
func (v VisibleOffset) CompareTo(other VisibleOffset) int {
	switch {
	case v < other:
		return -1
	case v > other:
		return 1
	default:
		return 0
	}
}

// FullOffset is the dimension that counts visible and tombstoned bytes
// together: the coordinate system operation ranges and anchors use.
type FullOffset int

// Add implements [sumtree.Dimension].
func (o FullOffset) Add(s Summary) FullOffset { return o + FullOffset(s.FullLen()) }

// CompareTo implements [sumtree.SeekTarget].
func (o FullOffset) CompareTo(other FullOffset) int {
	switch {
	case o < other:
		return -1
	case o > other:
		return 1
	default:
		return 0
	}
}

// VisibleAndFull is a composite dimension: seeking by VisibleOffset
// while also tracking the FullOffset the cursor has reached, which is
// exactly what local-edit application needs (spec §4.4 walks the tree
// keyed on visible offset but must recover full offsets for the emitted
// operation's ranges).
type VisibleAndFull struct {
	Visible VisibleOffset
	Full    FullOffset
}

// Add implements [sumtree.Dimension].
func (d VisibleAndFull) Add(s Summary) VisibleAndFull {
	return VisibleAndFull{Visible: d.Visible.Add(s), Full: d.Full.Add(s)}
}

// CompareTo implements [sumtree.SeekTarget], comparing by the visible
// component only; VisibleAndFull is meant to be the dimension type of a
// cursor seeking by [VisibleOffset] while it rides along.
func (d VisibleAndFull) CompareTo(other VisibleAndFull) int {
	return d.Visible.CompareTo(other.Visible)
}

// VisibleOffsetTarget seeks a [VisibleAndFull] cursor to a plain
// [VisibleOffset].
type VisibleOffsetTarget VisibleOffset

// CompareTo implements [sumtree.SeekTarget].
func (t VisibleOffsetTarget) CompareTo(d VisibleAndFull) int {
	return VisibleOffset(t).CompareTo(d.Visible)
}

// VersionedFullOffset is the version-scoped full-offset dimension: the
// crucial CRDT primitive (spec §4.3). While folding in a subtree's
// summary, it becomes Invalid the moment the subtree contains both
// observed and unobserved insertions with respect to Version, forcing
// the cursor to descend further instead of trusting the cached summary.
type VersionedFullOffset struct {
	Offset  FullOffset
	Version clock.VersionVector
	Invalid bool
}

// NewVersionedFullOffset returns the zero versioned offset scoped to
// version.
func NewVersionedFullOffset(version clock.VersionVector) VersionedFullOffset {
	return VersionedFullOffset{Version: version}
}

// Add implements [sumtree.Dimension].
func (d VersionedFullOffset) Add(s Summary) VersionedFullOffset {
	if d.Invalid {
		return d
	}
	if d.Version.Dominates(s.MaxInsertionVersion) {
		d.Offset += FullOffset(s.FullLen())
		return d
	}
	allUnobserved := true
	for _, id := range s.MinInsertionVersion.Seqs() {
		if d.Version.Observed(id) {
			allUnobserved = false
			break
		}
	}
	if allUnobserved {
		return d
	}
	d.Invalid = true
	return d
}

// CompareTo implements [sumtree.SeekTarget]. An Invalid dimension always
// compares equal, which tells [sumtree.Seek] to descend into it rather
// than skip or stop at this subtree.
func (d VersionedFullOffset) CompareTo(other VersionedFullOffset) int {
	if other.Invalid {
		return 0
	}
	return d.Offset.CompareTo(other.Offset)
}

// FullOffsetTarget lets callers seek a VersionedFullOffset cursor to a
// plain [FullOffset], e.g. "locate op.Ranges[i].Start as of op.Version."
type FullOffsetTarget FullOffset

// CompareTo implements [sumtree.SeekTarget].
func (t FullOffsetTarget) CompareTo(d VersionedFullOffset) int {
	if d.Invalid {
		return 0
	}
	return FullOffset(t).CompareTo(d.Offset)
}

// VersionedFullAndVisible rides a [VersionedFullOffset] seek while also
// accumulating the plain [VisibleOffset] reached so far, which is what
// anchor resolution needs: locate a full offset as of a historical
// version, then read off how much of that prefix is visible right now.
type VersionedFullAndVisible struct {
	Full    VersionedFullOffset
	Visible VisibleOffset
}

// NewVersionedFullAndVisible returns the zero dimension scoped to
// version.
func NewVersionedFullAndVisible(version clock.VersionVector) VersionedFullAndVisible {
	return VersionedFullAndVisible{Full: NewVersionedFullOffset(version)}
}

// Add implements [sumtree.Dimension].
func (d VersionedFullAndVisible) Add(s Summary) VersionedFullAndVisible {
	return VersionedFullAndVisible{Full: d.Full.Add(s), Visible: d.Visible.Add(s)}
}

// CompareTo implements [sumtree.SeekTarget], comparing by the versioned
// full-offset component only.
func (d VersionedFullAndVisible) CompareTo(other VersionedFullAndVisible) int {
	return d.Full.CompareTo(other.Full)
}

// FullOffsetAndVisibleTarget seeks a [VersionedFullAndVisible] cursor to
// a plain [FullOffset] as of its version context.
type FullOffsetAndVisibleTarget FullOffset

// CompareTo implements [sumtree.SeekTarget].
func (t FullOffsetAndVisibleTarget) CompareTo(d VersionedFullAndVisible) int {
	return FullOffsetTarget(t).CompareTo(d.Full)
}

var (
	_ sumtree.Item[Summary]                                   = Fragment{}
	_ sumtree.Summary[Summary]                                 = Summary{}
	_ sumtree.Dimension[Summary, VisibleOffset]                = VisibleOffset(0)
	_ sumtree.Dimension[Summary, FullOffset]                   = FullOffset(0)
	_ sumtree.Dimension[Summary, VisibleAndFull]                = VisibleAndFull{}
	_ sumtree.Dimension[Summary, VersionedFullOffset]           = VersionedFullOffset{}
	_ sumtree.SeekTarget[Summary, VersionedFullOffset]          = FullOffsetTarget(0)
	_ sumtree.Dimension[Summary, VersionedFullAndVisible]       = VersionedFullAndVisible{}
	_ sumtree.SeekTarget[Summary, VersionedFullAndVisible]      = FullOffsetAndVisibleTarget(0)
	_ sumtree.SeekTarget[Summary, VisibleAndFull]                = VisibleOffsetTarget(0)
)
