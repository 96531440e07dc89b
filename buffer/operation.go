// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import "cogentcore.org/text/clock"

// Operation is the closed sum type broadcast between replicas. Every
// variant carries enough information for a remote buffer to apply it
// without consulting anything beyond its own state and the operation
// itself.
type Operation interface {
	// LamportTimestamp returns the operation's position in the total
	// causal order.
	LamportTimestamp() clock.Lamport
	// ReplicaID returns the replica that originated the operation.
	ReplicaID() clock.Replica

	isOperation()
}

// EditOperation is an insertion, a deletion, or both (a range replaced
// by new text), expressed in full-offset coordinates as of Version.
type EditOperation struct {
	// ID identifies this edit; deletions and undos reference it.
	ID clock.Local
	// Lamport is the edit's position in the total causal order.
	Lamport clock.Lamport
	// Version is the buffer's version immediately before this edit was
	// generated: the context a remote replica must seek the fragment
	// tree under to reproduce the author's view of the text.
	Version clock.VersionVector
	// Ranges are the full-offset ranges replaced, sorted and
	// non-overlapping.
	Ranges []FullRange
	// NewText is inserted at the start of every range in Ranges; empty
	// means this edit is a pure deletion.
	NewText string
}

func (e EditOperation) LamportTimestamp() clock.Lamport { return e.Lamport }
func (e EditOperation) ReplicaID() clock.Replica        { return e.ID.Replica }
func (e EditOperation) isOperation()                    {}

// UndoOperation flips the visibility of one or more earlier edits (or
// reverses a previous undo — the same mechanism serves redo).
type UndoOperation struct {
	ID      clock.Local
	Lamport clock.Lamport
	// Counts maps each undone edit's id to its new undo count; an odd
	// count means the edit is now undone.
	Counts map[clock.Local]int
	// Ranges are the full-offset ranges the named edits touched, so the
	// apply path can restrict its fragment-tree walk.
	Ranges []FullRange
	// Version is the buffer version the transaction being undone/redone
	// started at.
	Version clock.VersionVector
}

func (u UndoOperation) LamportTimestamp() clock.Lamport { return u.Lamport }
func (u UndoOperation) ReplicaID() clock.Replica        { return u.ID.Replica }
func (u UndoOperation) isOperation()                    {}

// SelectionSet is one replica's set of cursor/selection ranges, each
// anchored so it survives concurrent edits.
type SelectionSet struct {
	ID        clock.Local
	Selection []AnchorRange
}

// requiredVersion is the join of every anchor's Version in s: the
// version a replica must have observed before s.ToOffset-style
// resolution of every one of its ranges is meaningful.
func (s SelectionSet) requiredVersion() clock.VersionVector {
	v := clock.NewVersionVector()
	for _, r := range s.Selection {
		v = v.Join(r.Start.Version).Join(r.End.Version)
	}
	return v
}

// UpdateSelectionsOperation replaces the named selection set's ranges
// (creating the set if Set.ID is new to the receiver).
type UpdateSelectionsOperation struct {
	Lamport clock.Lamport
	Replica clock.Replica
	Set     SelectionSet
}

func (o UpdateSelectionsOperation) LamportTimestamp() clock.Lamport { return o.Lamport }
func (o UpdateSelectionsOperation) ReplicaID() clock.Replica        { return o.Replica }
func (o UpdateSelectionsOperation) isOperation()                    {}

// RemoveSelectionsOperation deletes a previously published selection
// set.
type RemoveSelectionsOperation struct {
	Lamport clock.Lamport
	Replica clock.Replica
	SetID   clock.Local
}

func (o RemoveSelectionsOperation) LamportTimestamp() clock.Lamport { return o.Lamport }
func (o RemoveSelectionsOperation) ReplicaID() clock.Replica        { return o.Replica }
func (o RemoveSelectionsOperation) isOperation()                    {}

// SetActiveSelectionsOperation marks which selection set (if any) a
// replica considers its own primary cursor/selection, for UIs that draw
// one replica's selections differently from the rest.
type SetActiveSelectionsOperation struct {
	Lamport clock.Lamport
	Replica clock.Replica
	// SetID is nil when the replica has no active selection set.
	SetID *clock.Local
}

func (o SetActiveSelectionsOperation) LamportTimestamp() clock.Lamport { return o.Lamport }
func (o SetActiveSelectionsOperation) ReplicaID() clock.Replica        { return o.Replica }
func (o SetActiveSelectionsOperation) isOperation()                    {}

var (
	_ Operation = EditOperation{}
	_ Operation = UndoOperation{}
	_ Operation = UpdateSelectionsOperation{}
	_ Operation = RemoveSelectionsOperation{}
	_ Operation = SetActiveSelectionsOperation{}
)
