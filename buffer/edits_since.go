// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"cogentcore.org/text/clock"
	"cogentcore.org/text/textpos"
)

// Edit is one contiguous change between two versions of a buffer's
// visible text: Old names the range as it stood at the earlier version,
// New names the replacement range in the buffer's current text. Applying
// a sequence of Edits, in order, to the earlier text reproduces the
// buffer's current text.
type Edit struct {
	Old, New textpos.Range[int]
}

// EditsSince returns the minimal, non-overlapping sequence of edits that
// turns the visible text as of since into the buffer's current visible
// text (spec §6), by walking every fragment once and comparing its
// visibility as of since against its visibility now. This is a simpler
// O(fragment count) sweep than pruning to only the subtrees whose max
// version changed since since; the buffer never sees enough fragments
// per edit for that difference to matter.
func (b *Buffer) EditsSince(since clock.VersionVector) []Edit {
	if since.Equal(b.version) {
		return nil
	}

	var edits []Edit
	var pending *Edit
	oldPos, newPos := 0, 0

	flush := func() {
		if pending != nil {
			edits = append(edits, *pending)
			pending = nil
		}
	}

	for _, f := range b.fragments.Items() {
		wasVisible := f.WasVisible(since, b.wasUndone)
		isVisible := f.Visible

		oldLen, newLen := 0, 0
		if wasVisible {
			oldLen = f.Len
		}
		if isVisible {
			newLen = f.Len
		}

		if wasVisible == isVisible {
			flush()
		} else {
			if pending == nil {
				pending = &Edit{
					Old: textpos.Range[int]{Start: oldPos, End: oldPos},
					New: textpos.Range[int]{Start: newPos, End: newPos},
				}
			}
			pending.Old.End += oldLen
			pending.New.End += newLen
		}
		oldPos += oldLen
		newPos += newLen
	}
	flush()
	return edits
}
