// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"errors"

	"cogentcore.org/text/internal/errs"
)

// ErrInvalidSelectionSet is returned when a caller names a selection-set
// id the buffer does not know about.
var ErrInvalidSelectionSet = errors.New("buffer: unknown selection set")

// ErrOffsetOutOfRange is returned when a position argument names a byte
// offset or point past the end of the buffer's text.
var ErrOffsetOutOfRange = errors.New("buffer: offset out of range")

// AssertionFailure is a programming-error invariant violation: a
// transaction-depth mismatch, a corrupt fragment tree, or anything else
// that means the buffer's internal state has already diverged from what
// this package guarantees. Callers must not attempt to recover from it;
// it is raised via panic, never returned as an error, so that it cannot
// be silently swallowed into a corrupted buffer continuing to run.
type AssertionFailure struct {
	Message string
}

func (a AssertionFailure) Error() string { return "buffer: assertion failed: " + a.Message }

// invariant panics with an [AssertionFailure] if cond is false, via
// [errs.Must]; nothing is logged.
func invariant(cond bool, message string) {
	if !cond {
		errs.Must(AssertionFailure{Message: message})
	}
}
