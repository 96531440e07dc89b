// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cogentcore.org/text/clock"
	"cogentcore.org/text/textpos"
)

func TestEditInsert(t *testing.T) {
	b := newTestBuffer(1, "abcde")
	op, err := b.Edit([]textpos.Range[int]{{Start: 2, End: 2}}, "XY")
	assert.NoError(t, err)
	assert.Equal(t, "abXYcde", b.Text())
	assert.Equal(t, "XY", op.NewText)
	assert.Equal(t, []FullRange{{Start: 2, End: 2}}, op.Ranges)
	assert.True(t, b.Version().Observed(op.ID))
}

func TestEditDelete(t *testing.T) {
	b := newTestBuffer(1, "abcde")
	op, err := b.Edit([]textpos.Range[int]{{Start: 1, End: 4}}, "")
	assert.NoError(t, err)
	assert.Equal(t, "ae", b.Text())
	assert.Equal(t, "", op.NewText)
}

func TestEditReplace(t *testing.T) {
	b := newTestBuffer(1, "abcde")
	_, err := b.Edit([]textpos.Range[int]{{Start: 1, End: 4}}, "Z")
	assert.NoError(t, err)
	assert.Equal(t, "aZe", b.Text())
}

func TestEditMultipleRangesInOneCall(t *testing.T) {
	b := newTestBuffer(1, "abcdefgh")
	_, err := b.Edit([]textpos.Range[int]{
		{Start: 1, End: 2},
		{Start: 5, End: 6},
	}, "_")
	assert.NoError(t, err)
	assert.Equal(t, "a_cde_gh", b.Text())
}

func TestEditOutOfRangeReturnsError(t *testing.T) {
	b := newTestBuffer(1, "abc")
	_, err := b.Edit([]textpos.Range[int]{{Start: 0, End: 10}}, "x")
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
	// The buffer is untouched.
	assert.Equal(t, "abc", b.Text())
}

func TestEditUnsortedRangesPanics(t *testing.T) {
	b := newTestBuffer(1, "abcdef")
	defer func() {
		r := recover()
		assert.NotNil(t, r)
		_, ok := r.(AssertionFailure)
		assert.True(t, ok)
	}()
	b.Edit([]textpos.Range[int]{{Start: 4, End: 5}, {Start: 1, End: 2}}, "x")
}

func TestEditIsWrappedInOneTransaction(t *testing.T) {
	b := newTestBuffer(1, "abcdef")
	_, err := b.Edit([]textpos.Range[int]{{Start: 0, End: 1}, {Start: 5, End: 6}}, "_")
	assert.NoError(t, err)
	assert.True(t, b.History().CanUndo())
	ops := b.Undo()
	assert.NotNil(t, ops)
	assert.Equal(t, "abcdef", b.Text())
}

func TestEditTicksLocalAndLamportClocks(t *testing.T) {
	b := newTestBuffer(5, "abc")
	op1, err := b.Edit([]textpos.Range[int]{{Start: 0, End: 0}}, "X")
	assert.NoError(t, err)
	op2, err := b.Edit([]textpos.Range[int]{{Start: 0, End: 0}}, "Y")
	assert.NoError(t, err)

	assert.Equal(t, clock.Local{Replica: 5, Seq: 1}, op1.ID)
	assert.Equal(t, clock.Local{Replica: 5, Seq: 2}, op2.ID)
	assert.Equal(t, clock.Lamport{Replica: 5, Seq: 1}, op1.Lamport)
	assert.Equal(t, clock.Lamport{Replica: 5, Seq: 2}, op2.Lamport)
}
