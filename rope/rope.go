// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rope implements a balanced tree of UTF-8 text chunks: the
// storage underneath both of a buffer's visible and tombstoned text. A
// [Rope] supports byte-offset and row/column addressing, UTF-8-safe
// clipping of either. Seeks go through [sumtree] in O(log n); Append,
// Push and Slice rebuild the resulting rope from its full text, in
// linear time.
package rope

import (
	"strings"
	"unicode/utf8"

	"cogentcore.org/text/sumtree"
	"cogentcore.org/text/textpos"
)

// minChunk and maxChunk are the chunk size bounds. [New] splits text
// into chunks of at most maxChunk bytes; minChunk is not enforced, and
// a rope's last chunk may be shorter than it.
const (
	minChunk = 64
	maxChunk = 1024
)

// chunk is a single leaf's worth of text: never split across a UTF-8
// character, and never larger than maxChunk.
type chunk struct {
	text string
}

// Summary implements [sumtree.Item]. It counts bytes, runes, and
// newlines, and records the byte length of the chunk's trailing partial
// line, which is what lets [Summary.Add] compute max-point rows/columns
// without rescanning every chunk's text.
func (c chunk) Summary() Summary {
	s := Summary{
		Bytes: len(c.text),
		Chars: utf8.RuneCountInString(c.text),
	}
	rest := c.text
	for {
		i := strings.IndexByte(rest, '\n')
		if i < 0 {
			break
		}
		s.Lines++
		s.LastLineBytes = 0
		s.LastLineChars = 0
		rest = rest[i+1:]
	}
	s.LastLineBytes = len(rest)
	s.LastLineChars = utf8.RuneCountInString(rest)
	return s
}

// Summary is the running aggregate cached at every node of a rope: total
// byte length, rune count, newline count, and the byte/rune length of
// the text since the last newline (the open last line).
type Summary struct {
	Bytes, Chars, Lines          int
	LastLineBytes, LastLineChars int
}

// Add implements [sumtree.Summary]. If other starts a fresh line count
// is impossible to tell from summaries alone, so Add always assumes the
// "last line" of the left summary runs directly into the first line of
// the right one: that's exactly true because chunks are never split
// except at byte boundaries within the concatenated text.
func (s Summary) Add(other Summary) Summary {
	out := Summary{
		Bytes: s.Bytes + other.Bytes,
		Chars: s.Chars + other.Chars,
		Lines: s.Lines + other.Lines,
	}
	if other.Lines > 0 {
		out.LastLineBytes = other.LastLineBytes
		out.LastLineChars = other.LastLineChars
	} else {
		out.LastLineBytes = s.LastLineBytes + other.LastLineBytes
		out.LastLineChars = s.LastLineChars + other.LastLineChars
	}
	return out
}

// point returns the row/column position reached after this summary's
// text, given the row/column position before it.
func (s Summary) point(before textpos.Point) textpos.Point {
	if s.Lines == 0 {
		return textpos.Point{Row: before.Row, Column: before.Column + uint32(s.LastLineBytes)}
	}
	return textpos.Point{Row: before.Row + uint32(s.Lines), Column: uint32(s.LastLineBytes)}
}

// tree/builder aliases over the generic engine.
type tree = sumtree.Tree[chunk, Summary]
type builder = sumtree.Builder[chunk, Summary]

// Rope is a balanced, persistent sequence of UTF-8 chunks. The zero
// value is the empty rope.
type Rope struct {
	chunks *tree
}

// New returns a Rope containing s, split into chunks of at most
// maxChunk bytes at rune boundaries.
func New(s string) Rope {
	b := sumtree.NewBuilder[chunk, Summary]()
	for len(s) > 0 {
		n := maxChunk
		if n > len(s) {
			n = len(s)
		} else {
			for n > 0 && !utf8.RuneStart(s[n]) {
				n--
			}
		}
		b.Push(chunk{text: s[:n]})
		s = s[n:]
	}
	return Rope{chunks: b.Build()}
}

// Len returns the byte length of the rope's text.
func (r Rope) Len() int { return r.chunks.Summary().Bytes }

// IsEmpty reports whether the rope holds no text.
func (r Rope) IsEmpty() bool { return r.Len() == 0 }

// Summary returns the rope's cumulative byte/char/line summary.
func (r Rope) Summary() Summary { return r.chunks.Summary() }

// MaxPoint returns the row/column position just past the rope's last
// byte.
func (r Rope) MaxPoint() textpos.Point {
	return r.Summary().point(textpos.Point{})
}

// String renders the rope's full text. Intended for tests and debugging;
// callers processing large ropes should prefer [Rope.ChunksInRange].
func (r Rope) String() string {
	var sb strings.Builder
	sb.Grow(r.Len())
	if r.chunks != nil {
		for _, c := range r.chunks.Items() {
			sb.WriteString(c.text)
		}
	}
	return sb.String()
}

// byteOffset is the plain byte-offset dimension used to seek chunks.
type byteOffset int

func (o byteOffset) Add(s Summary) byteOffset { return o + byteOffset(s.Bytes) }

func (o byteOffset) CompareTo(other byteOffset) int {
	switch {
	case o < other:
		return -1
	case o > other:
		return 1
	default:
		return 0
	}
}

// ChunksInRange returns every chunk of text (as strings, possibly
// trimmed at the range's ends) covering the half-open byte range
// rng. Both ends must already lie on UTF-8 boundaries; use
// [Rope.ClipOffset] to guarantee that.
func (r Rope) ChunksInRange(rng textpos.Range[int]) []string {
	if rng.Start >= rng.End {
		return nil
	}
	var out []string
	cur := sumtree.Seek[chunk, Summary, byteOffset](r.chunks, byteOffset(rng.Start), textpos.Right)
	pos := int(cur.Start())
	for {
		item, ok := cur.Item()
		if !ok {
			break
		}
		end := pos + len(item.text)
		lo, hi := 0, len(item.text)
		if pos < rng.Start {
			lo = rng.Start - pos
		}
		if end > rng.End {
			hi = rng.End - pos
		}
		if lo < hi {
			out = append(out, item.text[lo:hi])
		}
		if end >= rng.End {
			break
		}
		pos = end
		cur.Next()
	}
	return out
}

// TextForRange concatenates [Rope.ChunksInRange] into a single string.
func (r Rope) TextForRange(rng textpos.Range[int]) string {
	return strings.Join(r.ChunksInRange(rng), "")
}

// pointDimension accumulates a row/column position alongside the byte
// offset it corresponds to, so a single seek can answer both
// PointToOffset and OffsetToPoint style queries.
type pointDimension struct {
	offset int
	point  textpos.Point
}

func (d pointDimension) Add(s Summary) pointDimension {
	return pointDimension{offset: d.offset + s.Bytes, point: s.point(d.point)}
}

// pointTarget seeks a pointDimension cursor to a target [textpos.Point].
type pointTarget textpos.Point

func (t pointTarget) CompareTo(d pointDimension) int {
	return textpos.Point(t).Compare(d.point)
}

// offsetTarget seeks a pointDimension cursor to a target byte offset.
type offsetTarget int

func (t offsetTarget) CompareTo(d pointDimension) int {
	switch {
	case int(t) < d.offset:
		return -1
	case int(t) > d.offset:
		return 1
	default:
		return 0
	}
}

// PointToOffset returns the byte offset of p, clipping p to the nearest
// valid position (per bias) if it names a row/column past the end of
// its line or the rope.
func (r Rope) PointToOffset(p textpos.Point, bias textpos.Bias) int {
	cur := sumtree.Seek[chunk, Summary, pointDimension](r.chunks, pointTarget(p), bias)
	start := cur.Start()
	item, ok := cur.Item()
	if !ok {
		return start.offset
	}
	// Walk within the chunk from start.point down to p's row, then along
	// that row to p's column, clipping to the row's end and to a rune
	// boundary.
	text, off, lineCol := item.text, 0, start.point.Column
	for row := start.point.Row; row < p.Row; row++ {
		i := strings.IndexByte(text[off:], '\n')
		if i < 0 {
			return start.offset + len(text)
		}
		off, lineCol = off+i+1, 0
	}
	line := text[off:]
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	col := int(p.Column) - int(lineCol)
	return start.offset + off + clipByteIndex(line, col, bias)
}

// OffsetToPoint returns the row/column position of offset, clipping to
// the nearest rune boundary per bias.
func (r Rope) OffsetToPoint(offset int, bias textpos.Bias) textpos.Point {
	offset = r.ClipOffset(offset, bias)
	cur := sumtree.Seek[chunk, Summary, pointDimension](r.chunks, offsetTarget(offset), bias)
	start := cur.Start()
	item, ok := cur.Item()
	if !ok {
		return start.point
	}
	rel := offset - start.offset
	sub := chunk{text: item.text[:clampInt(rel, len(item.text))]}
	return sub.Summary().point(start.point)
}

// ClipOffset snaps offset into [0, Len()] and onto a UTF-8 rune boundary,
// per bias: Left rounds down to the start of the straddled rune, Right
// rounds up to its end.
func (r Rope) ClipOffset(offset int, bias textpos.Bias) int {
	if offset <= 0 {
		return 0
	}
	n := r.Len()
	if offset >= n {
		return n
	}
	cur := sumtree.Seek[chunk, Summary, byteOffset](r.chunks, byteOffset(offset), textpos.Left)
	start := int(cur.Start())
	item, ok := cur.Item()
	if !ok {
		return offset
	}
	rel := offset - start
	return start + clipByteIndex(item.text, rel, bias)
}

// ClipPoint snaps p onto a valid row/column position: its row is clamped
// to [0, MaxPoint().Row], and its column is clamped to the line's byte
// length and onto a rune boundary per bias.
func (r Rope) ClipPoint(p textpos.Point, bias textpos.Bias) textpos.Point {
	offset := r.PointToOffset(p, bias)
	return r.OffsetToPoint(offset, bias)
}

// clipByteIndex returns the nearest rune boundary in s to index i,
// rounding down for [textpos.Left] and up for [textpos.Right].
func clipByteIndex(s string, i int, bias textpos.Bias) int {
	i = clampInt(i, len(s))
	if i == 0 || i == len(s) || utf8.RuneStart(s[i]) {
		return i
	}
	if bias == textpos.Left {
		for i > 0 && !utf8.RuneStart(s[i]) {
			i--
		}
		return i
	}
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}

func clampInt(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

// Cursor is an incremental scanner over a rope's chunks, advancing
// amortized O(1) when successive calls move monotonically forward.
type Cursor struct {
	rope *Rope
	cur  *sumtree.Cursor[chunk, Summary, byteOffset]
	pos  int
}

// NewCursor returns a cursor positioned at offset.
func (r Rope) NewCursor(offset int) *Cursor {
	cur := sumtree.Seek[chunk, Summary, byteOffset](r.chunks, byteOffset(offset), textpos.Right)
	return &Cursor{rope: &r, cur: cur, pos: clampInt(offset, r.Len())}
}

// Seek repositions the cursor at offset.
func (c *Cursor) Seek(offset int) {
	c.cur = sumtree.Seek[chunk, Summary, byteOffset](c.rope.chunks, byteOffset(offset), textpos.Right)
	c.pos = clampInt(offset, c.rope.Len())
}

// Offset returns the cursor's current byte offset.
func (c *Cursor) Offset() int { return c.pos }

// Summary returns the cumulative [Summary] of the text between the
// cursor's current offset and end, advancing the cursor to end as it
// goes. If end is not past the current offset, it returns the zero
// Summary and the cursor does not move.
func (c *Cursor) Summary(end int) Summary {
	var acc Summary
	for c.pos < end {
		item, ok := c.cur.Item()
		if !ok {
			break
		}
		chunkStart := int(c.cur.Start())
		chunkEnd := chunkStart + len(item.text)
		if chunkEnd <= end {
			acc = acc.Add(chunk{text: item.text[c.pos-chunkStart:]}.Summary())
			c.pos = chunkEnd
			c.cur.Next()
			continue
		}
		sub := chunk{text: item.text[c.pos-chunkStart : end-chunkStart]}
		acc = acc.Add(sub.Summary())
		c.pos = end
	}
	return acc
}

// Append returns a new rope with other's text appended. It rebuilds the
// whole rope from the concatenated text with [New], so its cost is
// linear in the combined length.
func (r Rope) Append(other Rope) Rope {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return New(r.String() + other.String())
}

// Push appends s to the rope's text.
func (r Rope) Push(s string) Rope {
	return r.Append(New(s))
}

// Slice returns the subrope covering the half-open byte range rng. Both
// ends must already lie on UTF-8 boundaries.
func (r Rope) Slice(rng textpos.Range[int]) Rope {
	return New(r.TextForRange(rng))
}

var (
	_ sumtree.Item[Summary]                       = chunk{}
	_ sumtree.Summary[Summary]                    = Summary{}
	_ sumtree.Dimension[Summary, byteOffset]      = byteOffset(0)
	_ sumtree.SeekTarget[Summary, byteOffset]     = byteOffset(0)
	_ sumtree.Dimension[Summary, pointDimension]  = pointDimension{}
	_ sumtree.SeekTarget[Summary, pointDimension] = pointTarget{}
	_ sumtree.SeekTarget[Summary, pointDimension] = offsetTarget(0)
)
