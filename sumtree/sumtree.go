// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sumtree implements a persistent, balanced tree of items that is
// augmented with a running summary at every node. It is the generic
// engine behind both the rope (chunks summarized by byte/line counts)
// and the fragment tree (fragments summarized by visibility and version
// information): any ordered sequence that needs O(log n) seeking by some
// derived "dimension" of its running summary can be built on it.
//
// Trees are immutable once built: [Builder] accumulates items and
// [Builder.Build] produces a [Tree]; slicing a tree produces another tree
// that shares no mutable state with its source, so a [Tree] handed out as
// part of a snapshot can never be invalidated by later edits.
package sumtree

import "cogentcore.org/text/textpos"

// arity bounds the number of children per node (and items per leaf). It
// is small enough to keep node summaries cheap to recompute and large
// enough that realistic buffers stay only a few levels deep. It is a
// package-wide default rather than a per-tree parameter: every [Tree]
// built after a call to [SetArity] uses the new value, matching the
// config package's single process-wide FragmentTreeConfig.NodeArity.
var arity = 16

// SetArity overrides the package's node arity for trees built from this
// point on; trees already built keep whatever arity they were built
// with. n must be at least 2. Intended to be called once at startup
// from a loaded [cogentcore.org/text/config.FragmentTreeConfig].
func SetArity(n int) {
	if n >= 2 {
		arity = n
	}
}

// Summary is the per-node aggregate a tree of items is augmented with.
// Add must be associative: combining a run of items' summaries in any
// left-to-right grouping must give the same result, and the zero value
// of S must act as an identity element (Add(zero, x) == x), since empty
// subtrees contribute a zero Summary.
type Summary[S any] interface {
	Add(other S) S
}

// Item is a tree element that knows how to summarize itself.
type Item[S any] interface {
	Summary() S
}

// Dimension is a derived coordinate that can be accumulated incrementally
// by folding node summaries into it left to right, e.g. a byte offset, a
// [textpos.Point], or a version-scoped offset that tracks whether it has
// become ambiguous partway through a subtree. D is a value type; Add
// returns the updated value rather than mutating in place.
type Dimension[S any, D any] interface {
	Add(summary S) D
}

// SeekTarget is a value that can be compared against a [Dimension] while
// descending the tree, to decide whether the target lies before the
// accumulated position (negative), exactly at it (zero), or beyond
// it (positive).
type SeekTarget[S any, D any] interface {
	CompareTo(d D) int
}

type node[T Item[S], S Summary[S]] struct {
	isLeaf   bool
	items    []T
	children []*node[T, S]
	summary  S
	count    int
}

// Tree is a persistent, balanced, summary-augmented sequence of items.
// The zero value is a valid empty tree.
type Tree[T Item[S], S Summary[S]] struct {
	root *node[T, S]
}

// Summary returns the aggregate summary of every item in the tree.
func (t *Tree[T, S]) Summary() S {
	if t == nil || t.root == nil {
		var zero S
		return zero
	}
	return t.root.summary
}

// Len returns the number of items in the tree.
func (t *Tree[T, S]) Len() int {
	if t == nil || t.root == nil {
		return 0
	}
	return t.root.count
}

// Items returns every item in the tree, in order. It allocates a fresh
// slice; callers that only need to scan forward should use a [Cursor].
func (t *Tree[T, S]) Items() []T {
	if t == nil || t.root == nil {
		return nil
	}
	out := make([]T, 0, t.root.count)
	collect(t.root, &out)
	return out
}

func collect[T Item[S], S Summary[S]](n *node[T, S], out *[]T) {
	if n.isLeaf {
		*out = append(*out, n.items...)
		return
	}
	for _, c := range n.children {
		collect(c, out)
	}
}

// Push returns a new tree with item appended. Building a tree
// incrementally via repeated Push is for convenience (e.g. tests); bulk
// construction should go through a [Builder].
func (t *Tree[T, S]) Push(item T) *Tree[T, S] {
	b := NewBuilder[T, S]()
	b.PushTree(t)
	b.Push(item)
	return b.Build()
}

// Builder accumulates items (or whole subtrees, which are flattened) and
// bulk-builds a balanced [Tree] from them. This mirrors the way the
// buffer constructs a brand new fragment tree on every edit: walk the old
// tree pushing preserved runs and newly created fragments into a
// builder, then swap the finished tree in atomically.
type Builder[T Item[S], S Summary[S]] struct {
	items []T
}

// NewBuilder returns an empty builder.
func NewBuilder[T Item[S], S Summary[S]]() *Builder[T, S] {
	return &Builder[T, S]{}
}

// Push appends a single item.
func (b *Builder[T, S]) Push(item T) {
	b.items = append(b.items, item)
}

// PushTree appends every item of t, in order.
func (b *Builder[T, S]) PushTree(t *Tree[T, S]) {
	if t == nil || t.root == nil {
		return
	}
	collect(t.root, &b.items)
}

// Build constructs the balanced tree and resets the builder.
func (b *Builder[T, S]) Build() *Tree[T, S] {
	items := b.items
	b.items = nil
	return &Tree[T, S]{root: buildNodes[T, S](items)}
}

func buildNodes[T Item[S], S Summary[S]](items []T) *node[T, S] {
	if len(items) == 0 {
		return nil
	}
	level := make([]*node[T, S], 0, (len(items)+arity-1)/arity)
	for i := 0; i < len(items); i += arity {
		end := i + arity
		if end > len(items) {
			end = len(items)
		}
		leafItems := append([]T(nil), items[i:end]...)
		level = append(level, &node[T, S]{
			isLeaf:  true,
			items:   leafItems,
			summary: summarizeItems[T, S](leafItems),
			count:   len(leafItems),
		})
	}
	for len(level) > 1 {
		next := make([]*node[T, S], 0, (len(level)+arity-1)/arity)
		for i := 0; i < len(level); i += arity {
			end := i + arity
			if end > len(level) {
				end = len(level)
			}
			children := append([]*node[T, S](nil), level[i:end]...)
			next = append(next, &node[T, S]{
				children: children,
				summary:  summarizeChildren[T, S](children),
				count:    sumCounts(children),
			})
		}
		level = next
	}
	return level[0]
}

func summarizeItems[T Item[S], S Summary[S]](items []T) S {
	var acc S
	for _, it := range items {
		acc = acc.Add(it.Summary())
	}
	return acc
}

func summarizeChildren[T Item[S], S Summary[S]](children []*node[T, S]) S {
	var acc S
	for _, c := range children {
		acc = acc.Add(c.summary)
	}
	return acc
}

func sumCounts[T Item[S], S Summary[S]](children []*node[T, S]) int {
	n := 0
	for _, c := range children {
		n += c.count
	}
	return n
}

type pathEntry[T Item[S], S Summary[S]] struct {
	node  *node[T, S]
	index int
}

// Cursor walks a [Tree] in order, tracking an accumulated [Dimension] D
// as it goes. A Cursor is obtained by [Seek] and is only valid until the
// tree it was created from is discarded; trees themselves never mutate,
// so a cursor never needs to be invalidated by a concurrent edit.
type Cursor[T Item[S], S Summary[S], D Dimension[S, D]] struct {
	leaf  *node[T, S]
	index int
	pos   D
	path  []pathEntry[T, S]
}

// Seek returns a cursor positioned at the first item whose span contains
// target, per bias: when an item ends exactly at target, [textpos.Left]
// stops on that item and [textpos.Right] moves past it to the next
// one. The accumulated
// dimension starts from D's zero value; dimensions that need seed state
// beyond their zero value (e.g. a version-vector context) should use
// [SeekFrom] instead.
func Seek[T Item[S], S Summary[S], D Dimension[S, D]](t *Tree[T, S], target SeekTarget[S, D], bias textpos.Bias) *Cursor[T, S, D] {
	var zero D
	return SeekFrom[T, S, D](t, target, bias, zero)
}

// SeekFrom is [Seek] with an explicit starting dimension value, for
// dimensions that carry seek-scoped context (e.g. a version vector) in
// fields Add doesn't otherwise have access to.
func SeekFrom[T Item[S], S Summary[S], D Dimension[S, D]](t *Tree[T, S], target SeekTarget[S, D], bias textpos.Bias, start D) *Cursor[T, S, D] {
	c := &Cursor[T, S, D]{}
	if t == nil || t.root == nil {
		c.pos = start
		return c
	}
	pos := start
	n := t.root
	for {
		if n.isLeaf {
			for i, item := range n.items {
				end := pos.Add(item.Summary())
				cmp := target.CompareTo(end)
				if cmp < 0 || (cmp == 0 && bias == textpos.Left) {
					c.leaf, c.index, c.pos = n, i, pos
					return c
				}
				pos = end
			}
			c.leaf, c.index, c.pos = n, len(n.items), pos
			return c
		}
		descended := false
		for i, child := range n.children {
			end := pos.Add(child.summary)
			cmp := target.CompareTo(end)
			if cmp < 0 || (cmp == 0 && bias == textpos.Left) || i == len(n.children)-1 {
				c.path = append(c.path, pathEntry[T, S]{node: n, index: i})
				n = child
				descended = true
				break
			}
			pos = end
		}
		if !descended {
			// Unreachable: the last child always satisfies the loop's
			// fallback condition above.
			c.leaf, c.index, c.pos = nil, 0, pos
			return c
		}
	}
}

// Item returns the item at the cursor's current position, or the zero
// value and false if the cursor has run off the end of the tree.
func (c *Cursor[T, S, D]) Item() (item T, ok bool) {
	if c.leaf == nil || c.index >= len(c.leaf.items) {
		return item, false
	}
	return c.leaf.items[c.index], true
}

// Start returns the accumulated dimension immediately before the current
// item (i.e. the position the cursor is sitting at).
func (c *Cursor[T, S, D]) Start() D {
	return c.pos
}

// End returns the accumulated dimension immediately after the current
// item, equivalently the Start of the next item.
func (c *Cursor[T, S, D]) End() D {
	item, ok := c.Item()
	if !ok {
		return c.pos
	}
	return c.pos.Add(item.Summary())
}

// Next advances the cursor past the current item.
func (c *Cursor[T, S, D]) Next() {
	item, ok := c.Item()
	if !ok {
		return
	}
	c.pos = c.pos.Add(item.Summary())
	c.index++
	if c.index < len(c.leaf.items) {
		return
	}
	for len(c.path) > 0 {
		top := &c.path[len(c.path)-1]
		top.index++
		if top.index < len(top.node.children) {
			n := top.node.children[top.index]
			for !n.isLeaf {
				c.path = append(c.path, pathEntry[T, S]{node: n, index: 0})
				n = n.children[0]
			}
			c.leaf, c.index = n, 0
			return
		}
		c.path = c.path[:len(c.path)-1]
	}
	// End of tree: leave index at len(items) so Item keeps reporting !ok.
}

// SliceTo drains items from the cursor's current position up to (but not
// including, modulo bias as in [Seek]) target into a new tree, advancing
// the cursor to match.
func (c *Cursor[T, S, D]) SliceTo(target SeekTarget[S, D], bias textpos.Bias) *Tree[T, S] {
	b := NewBuilder[T, S]()
	for {
		item, ok := c.Item()
		if !ok {
			break
		}
		end := c.pos.Add(item.Summary())
		cmp := target.CompareTo(end)
		if cmp < 0 || (cmp == 0 && bias == textpos.Left) {
			break
		}
		b.Push(item)
		c.Next()
	}
	return b.Build()
}

// Suffix drains every remaining item from the cursor into a new tree.
func (c *Cursor[T, S, D]) Suffix() *Tree[T, S] {
	b := NewBuilder[T, S]()
	for {
		item, ok := c.Item()
		if !ok {
			break
		}
		b.Push(item)
		c.Next()
	}
	return b.Build()
}
