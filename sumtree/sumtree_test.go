// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sumtree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cogentcore.org/text/textpos"
)

// intItem is the smallest possible item a tree test can exercise: a
// single integer value whose summary is its own length-1 count.

type intItem int

type countSummary struct {
	Count int
	Sum   int
}

func (s countSummary) Add(other countSummary) countSummary {
	return countSummary{Count: s.Count + other.Count, Sum: s.Sum + other.Sum}
}

func (i intItem) Summary() countSummary {
	return countSummary{Count: 1, Sum: int(i)}
}

type countDim int

func (d countDim) Add(s countSummary) countDim { return d + countDim(s.Count) }

func (d countDim) CompareTo(other countDim) int {
	switch {
	case d < other:
		return -1
	case d > other:
		return 1
	default:
		return 0
	}
}

func build(items ...intItem) *Tree[intItem, countSummary] {
	b := NewBuilder[intItem, countSummary]()
	for _, i := range items {
		b.Push(i)
	}
	return b.Build()
}

func TestBuilderAndLen(t *testing.T) {
	tr := build(1, 2, 3, 4, 5)
	assert.Equal(t, 5, tr.Len())
	assert.Equal(t, 15, tr.Summary().Sum)
}

func TestItemsPreservesOrder(t *testing.T) {
	tr := build(10, 20, 30)
	assert.Equal(t, []intItem{10, 20, 30}, tr.Items())
}

func TestEmptyTree(t *testing.T) {
	var tr Tree[intItem, countSummary]
	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, countSummary{}, tr.Summary())
	assert.Nil(t, tr.Items())
}

func TestSeekLeftRightBias(t *testing.T) {
	// Items occupy dimension slots [0,1) [1,2) [2,3) [3,4) [4,5) in
	// order, so target 2 sits exactly on the boundary between the
	// second and third item.
	tr := build(1, 2, 3, 4, 5)
	curLeft := Seek[intItem, countSummary, countDim](tr, countDim(2), textpos.Left)
	itemLeft, ok := curLeft.Item()
	assert.True(t, ok)
	assert.Equal(t, intItem(2), itemLeft)
	assert.Equal(t, countDim(1), curLeft.Start())

	curRight := Seek[intItem, countSummary, countDim](tr, countDim(2), textpos.Right)
	itemRight, ok := curRight.Item()
	assert.True(t, ok)
	assert.Equal(t, intItem(3), itemRight)
	assert.Equal(t, countDim(2), curRight.Start())
}

func TestCursorNextWalksEveryItem(t *testing.T) {
	tr := build(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20)
	cur := Seek[intItem, countSummary, countDim](tr, countDim(0), textpos.Left)
	var got []intItem
	for {
		item, ok := cur.Item()
		if !ok {
			break
		}
		got = append(got, item)
		cur.Next()
	}
	assert.Len(t, got, 20)
	assert.Equal(t, intItem(1), got[0])
	assert.Equal(t, intItem(20), got[19])
}

func TestSliceToAndSuffix(t *testing.T) {
	tr := build(1, 2, 3, 4, 5)
	cur := Seek[intItem, countSummary, countDim](tr, countDim(0), textpos.Left)
	prefix := cur.SliceTo(countDim(2), textpos.Left)
	assert.Equal(t, []intItem{1}, prefix.Items())

	rest := cur.Suffix()
	assert.Equal(t, []intItem{2, 3, 4, 5}, rest.Items())
}

func TestPushTreeFlattens(t *testing.T) {
	a := build(1, 2)
	b := NewBuilder[intItem, countSummary]()
	b.PushTree(a)
	b.Push(3)
	tr := b.Build()
	assert.Equal(t, []intItem{1, 2, 3}, tr.Items())
}

func TestTreePushConvenience(t *testing.T) {
	var tr *Tree[intItem, countSummary]
	tr = tr.Push(1)
	tr = tr.Push(2)
	assert.Equal(t, []intItem{1, 2}, tr.Items())
}

func TestSetArityAffectsFutureBuilds(t *testing.T) {
	old := arity
	defer SetArity(old)
	SetArity(2)
	tr := build(1, 2, 3, 4, 5)
	assert.Equal(t, 5, tr.Len())
	assert.Equal(t, []intItem{1, 2, 3, 4, 5}, tr.Items())
}
