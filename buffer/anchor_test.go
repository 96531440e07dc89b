// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cogentcore.org/text/textpos"
)

func TestAnchorShiftsForwardPastPrecedingInsertion(t *testing.T) {
	b := newTestBuffer(1, "abcdef")
	a := b.AnchorBefore(3) // sits right before 'd'
	assert.Equal(t, 3, b.ToOffset(a))

	_, err := b.Edit([]textpos.Range[int]{{Start: 0, End: 0}}, "XYZ")
	assert.NoError(t, err)
	assert.Equal(t, "XYZabcdef", b.Text())
	assert.Equal(t, 6, b.ToOffset(a), "anchor must track 'd' past the inserted prefix")
}

func TestAnchorUnaffectedByFollowingInsertion(t *testing.T) {
	b := newTestBuffer(1, "abcdef")
	a := b.AnchorBefore(3)

	_, err := b.Edit([]textpos.Range[int]{{Start: 6, End: 6}}, "END")
	assert.NoError(t, err)
	assert.Equal(t, "abcdefEND", b.Text())
	assert.Equal(t, 3, b.ToOffset(a))
}

func TestAnchorShiftsBackPastPrecedingDeletion(t *testing.T) {
	b := newTestBuffer(1, "abcdef")
	a := b.AnchorBefore(4) // sits right before 'e'

	_, err := b.Edit([]textpos.Range[int]{{Start: 0, End: 2}}, "")
	assert.NoError(t, err)
	assert.Equal(t, "cdef", b.Text())
	assert.Equal(t, 2, b.ToOffset(a))
}

func TestAnchorClampsWhenItsOwnTextIsDeleted(t *testing.T) {
	b := newTestBuffer(1, "abcdef")
	a := b.AnchorBefore(3) // sits right before 'd'

	_, err := b.Edit([]textpos.Range[int]{{Start: 3, End: 4}}, "")
	assert.NoError(t, err)
	assert.Equal(t, "abcef", b.Text())
	// 'd' is gone; the anchor clamps to where it used to start.
	assert.Equal(t, 3, b.ToOffset(a))
}

func TestAnchorToPointMatchesRopeConversion(t *testing.T) {
	b := newTestBuffer(1, "ab\ncdef")
	a := b.AnchorBefore(5) // 'e', row 1 col 2
	p := b.ToPoint(a)
	assert.Equal(t, uint32(1), p.Row)
	assert.Equal(t, uint32(2), p.Column)
}
