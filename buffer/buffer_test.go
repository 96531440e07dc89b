// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cogentcore.org/text/clock"
	"cogentcore.org/text/textpos"
)

const testGroupInterval = 300 * time.Millisecond

func newTestBuffer(replica clock.Replica, base string) *Buffer {
	h := NewHistory(base, testGroupInterval)
	return New(replica, ID(1), h)
}

func TestNewSeedsGenesisFragment(t *testing.T) {
	b := newTestBuffer(1, "hello")
	assert.Equal(t, "hello", b.Text())
	assert.Equal(t, 5, b.Len())
	assert.Equal(t, ID(1), b.ID())
	assert.Equal(t, clock.Replica(1), b.Replica())
	assert.True(t, b.Version().Equal(clock.NewVersionVector()))
}

func TestNewEmptyBase(t *testing.T) {
	b := newTestBuffer(1, "")
	assert.Equal(t, "", b.Text())
	assert.Equal(t, 0, b.Len())
}

func TestTextForRange(t *testing.T) {
	b := newTestBuffer(1, "hello world")
	s, err := b.TextForRange(textpos.Range[int]{Start: 6, End: 11})
	assert.NoError(t, err)
	assert.Equal(t, "world", s)

	_, err = b.TextForRange(textpos.Range[int]{Start: 0, End: 100})
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
}

func TestLineLen(t *testing.T) {
	b := newTestBuffer(1, "ab\ncde\nf")
	l0, err := b.LineLen(0)
	assert.NoError(t, err)
	assert.Equal(t, 2, l0)

	l1, err := b.LineLen(1)
	assert.NoError(t, err)
	assert.Equal(t, 3, l1)

	l2, err := b.LineLen(2)
	assert.NoError(t, err)
	assert.Equal(t, 1, l2)

	_, err = b.LineLen(5)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
}

func TestContainsStrAt(t *testing.T) {
	b := newTestBuffer(1, "hello world")
	assert.True(t, b.ContainsStrAt(6, "world"))
	assert.False(t, b.ContainsStrAt(6, "word"))
	assert.False(t, b.ContainsStrAt(100, "x"))
}

func TestCharsAtAndBytesAt(t *testing.T) {
	b := newTestBuffer(1, "hello")
	var runes []rune
	for r := range b.CharsAt(1) {
		runes = append(runes, r)
	}
	assert.Equal(t, []rune("ello"), runes)

	var bs []byte
	for by := range b.BytesAt(3) {
		bs = append(bs, by)
	}
	assert.Equal(t, []byte("lo"), bs)
}

func TestSnapshotIsIndependentOfLaterEdits(t *testing.T) {
	b := newTestBuffer(1, "hello")
	snap := b.Snapshot()
	_, err := b.Edit([]textpos.Range[int]{{Start: 0, End: 0}}, "X")
	assert.NoError(t, err)
	assert.Equal(t, "Xhello", b.Text())
	assert.Equal(t, "hello", snap.Visible.String())
}
