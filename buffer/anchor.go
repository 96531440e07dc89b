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

// FullRange is a half-open range in full-offset coordinates: the space
// that counts visible and tombstoned bytes together, and so stays
// meaningful across time the way a visible-offset range does not.
type FullRange = textpos.Range[int]

// Anchor is a stable logical position: a full offset, the bias that
// disambiguates it from insertions landing exactly there, and the
// version the offset was computed in. Resolving an anchor against a
// later buffer state re-seeks the fragment tree using Version as
// context, so an anchor tracks the text around it rather than a fixed
// byte index.
type Anchor struct {
	FullOffset int
	Bias       textpos.Bias
	Version    clock.VersionVector
}

// AnchorRange is a pair of anchors delimiting a span, e.g. one
// replica's selection.
type AnchorRange struct {
	Start, End Anchor
}

// ToOffset resolves a to the visible offset it currently names. The
// fragment containing a's full offset contributes its visible overshoot
// if it is currently visible, or clamps to the fragment's start visible
// offset if it has since been deleted.
func (b *Buffer) ToOffset(a Anchor) int {
	target := fragment.FullOffsetAndVisibleTarget(a.FullOffset)
	start := fragment.NewVersionedFullAndVisible(a.Version)
	cur := fragment.SeekFrom(b.fragments, target, a.Bias, start)
	pos := cur.Start()
	item, ok := cur.Item()
	if !ok {
		return int(pos.Visible)
	}
	overshoot := a.FullOffset - int(pos.Full.Offset)
	if item.IsVisible(b.isUndone) {
		return int(pos.Visible) + overshoot
	}
	return int(pos.Visible)
}

// ToPoint resolves a to a row/column position via [Buffer.ToOffset] and
// the buffer's visible rope.
func (b *Buffer) ToPoint(a Anchor) textpos.Point {
	return b.visible.OffsetToPoint(b.ToOffset(a), a.Bias)
}

// AnchorBefore returns an anchor at pos with [textpos.Left] bias: it
// sticks to text inserted immediately before it.
func (b *Buffer) AnchorBefore(pos int) Anchor {
	return b.anchorAt(pos, textpos.Left)
}

// AnchorAfter returns an anchor at pos with [textpos.Right] bias: it
// sticks to text inserted immediately after it.
func (b *Buffer) AnchorAfter(pos int) Anchor {
	return b.anchorAt(pos, textpos.Right)
}

func (b *Buffer) anchorAt(visibleOffset int, bias textpos.Bias) Anchor {
	full := b.visibleToFullOffset(visibleOffset, bias)
	return Anchor{FullOffset: full, Bias: bias, Version: b.version.Clone()}
}

// AnchorRangeMap stores many [AnchorRange] values keyed by an arbitrary
// comparable id, sharing nothing but Go map semantics. It is the
// straightforward building block [AnchorRangeMultimap] specializes for
// interval queries.
type AnchorRangeMap[K comparable, V any] struct {
	entries map[K]anchorEntry[V]
}

type anchorEntry[V any] struct {
	rng   AnchorRange
	value V
}

// NewAnchorRangeMap returns an empty map.
func NewAnchorRangeMap[K comparable, V any]() *AnchorRangeMap[K, V] {
	return &AnchorRangeMap[K, V]{entries: make(map[K]anchorEntry[V])}
}

// Set records rng and value under key, replacing any previous entry.
func (m *AnchorRangeMap[K, V]) Set(key K, rng AnchorRange, value V) {
	m.entries[key] = anchorEntry[V]{rng: rng, value: value}
}

// Delete removes key's entry, if any.
func (m *AnchorRangeMap[K, V]) Delete(key K) {
	delete(m.entries, key)
}

// Get returns key's range and value, and whether it was present.
func (m *AnchorRangeMap[K, V]) Get(key K) (rng AnchorRange, value V, ok bool) {
	e, ok := m.entries[key]
	return e.rng, e.value, ok
}

// Len returns the number of entries.
func (m *AnchorRangeMap[K, V]) Len() int { return len(m.entries) }

// multimapEntry is one (key, range, value) triple in an
// [AnchorRangeMultimap], ordered by (start, -end).
// [AnchorRangeMultimap.Intersecting] still scans every entry.
type multimapEntry[K comparable, V any] struct {
	key        K
	rng        AnchorRange
	value      V
	startFull  int
	endFull    int
}

// AnchorRangeMultimap stores many possibly-overlapping anchor ranges and
// answers "every entry intersecting [lo, hi)" queries. Entries are kept
// sorted by the anchors' stored (start, reverse end) full offsets on
// every insertion, not by offsets resolved against the current text; this is a straightforward slice rather than the balanced
// tree a high-churn implementation would want, since multimaps here
// exist for comparatively small, UI-driven sets (selections, diagnostic
// ranges) rather than per-keystroke fragment volumes.
type AnchorRangeMultimap[K comparable, V any] struct {
	buf     *Buffer
	entries []multimapEntry[K, V]
}

// NewAnchorRangeMultimap returns an empty multimap resolved against buf.
func NewAnchorRangeMultimap[K comparable, V any](buf *Buffer) *AnchorRangeMultimap[K, V] {
	return &AnchorRangeMultimap[K, V]{buf: buf}
}

// Insert adds an entry and re-sorts.
func (m *AnchorRangeMultimap[K, V]) Insert(key K, rng AnchorRange, value V) {
	m.entries = append(m.entries, multimapEntry[K, V]{
		key:       key,
		rng:       rng,
		value:     value,
		startFull: rng.Start.FullOffset,
		endFull:   rng.End.FullOffset,
	})
	sort.Slice(m.entries, func(i, j int) bool {
		if m.entries[i].startFull != m.entries[j].startFull {
			return m.entries[i].startFull < m.entries[j].startFull
		}
		return m.entries[i].endFull > m.entries[j].endFull
	})
}

// Intersecting returns the key of every entry whose resolved visible
// range intersects [lo, hi); values are not returned.
func (m *AnchorRangeMultimap[K, V]) Intersecting(lo, hi int) []K {
	var out []K
	for _, e := range m.entries {
		start := m.buf.ToOffset(e.rng.Start)
		end := m.buf.ToOffset(e.rng.End)
		if start < hi && end > lo {
			out = append(out, e.key)
		}
	}
	return out
}

// Len returns the number of entries.
func (m *AnchorRangeMultimap[K, V]) Len() int { return len(m.entries) }
