// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import "cogentcore.org/text/clock"

// AddSelectionSet publishes a new selection set and returns the
// operation to broadcast.
func (b *Buffer) AddSelectionSet(selections []AnchorRange) UpdateSelectionsOperation {
	id := b.localClock.Tick()
	set := SelectionSet{ID: id, Selection: selections}
	b.selections.Set(id, set)
	return UpdateSelectionsOperation{Lamport: b.lamportClock.Tick(), Replica: b.replica, Set: set}
}

// UpdateSelectionSet replaces an existing selection set's ranges.
func (b *Buffer) UpdateSelectionSet(id clock.Local, selections []AnchorRange) (UpdateSelectionsOperation, error) {
	if !b.selections.Has(id) {
		return UpdateSelectionsOperation{}, ErrInvalidSelectionSet
	}
	set := SelectionSet{ID: id, Selection: selections}
	b.selections.Set(id, set)
	return UpdateSelectionsOperation{Lamport: b.lamportClock.Tick(), Replica: b.replica, Set: set}, nil
}

// RemoveSelectionSet deletes a previously published selection set.
func (b *Buffer) RemoveSelectionSet(id clock.Local) (RemoveSelectionsOperation, error) {
	if !b.selections.Delete(id) {
		return RemoveSelectionsOperation{}, ErrInvalidSelectionSet
	}
	if active, ok := b.activeSelections[id.Replica]; ok && active != nil && *active == id {
		delete(b.activeSelections, id.Replica)
	}
	return RemoveSelectionsOperation{Lamport: b.lamportClock.Tick(), Replica: b.replica, SetID: id}, nil
}

// SetActiveSelectionSet marks id (or no set, if id is nil) as this
// replica's primary selection set.
func (b *Buffer) SetActiveSelectionSet(id *clock.Local) (SetActiveSelectionsOperation, error) {
	if id != nil && !b.selections.Has(*id) {
		return SetActiveSelectionsOperation{}, ErrInvalidSelectionSet
	}
	b.activeSelections[b.replica] = id
	return SetActiveSelectionsOperation{Lamport: b.lamportClock.Tick(), Replica: b.replica, SetID: id}, nil
}

// SelectionSet returns the named selection set, and whether it exists.
func (b *Buffer) SelectionSet(id clock.Local) (SelectionSet, bool) {
	return b.selections.Get(id)
}

// IsActiveSelectionSet reports whether id is the active selection set
// of the replica that published it.
func (b *Buffer) IsActiveSelectionSet(id clock.Local) bool {
	active, ok := b.activeSelections[id.Replica]
	return ok && active != nil && *active == id
}
