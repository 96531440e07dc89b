// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clock provides the logical-time primitives that let replicas of
// a collaborative text buffer order and reconcile edits without a central
// coordinator: per-replica sequence numbers, a Lamport clock for a total
// causal order, and version vectors for dominance comparisons.
package clock

import "fmt"

// Replica identifies a single participant that may originate edits.
type Replica uint16

// Seq is a per-replica monotonic counter value.
type Seq uint64

// Local identifies a single operation by the replica that produced it and
// that replica's local sequence number at the time.
type Local struct {
	Replica Replica
	Seq     Seq
}

// String implements [fmt.Stringer].
func (l Local) String() string {
	return fmt.Sprintf("(%d, %d)", l.Replica, l.Seq)
}

// Lamport is a timestamp in the total causal order across all replicas.
// Ties are broken by Replica.
type Lamport struct {
	Replica Replica
	Seq     Seq
}

// String implements [fmt.Stringer].
func (l Lamport) String() string {
	return fmt.Sprintf("(%d, %d)", l.Replica, l.Seq)
}

// Less reports whether l sorts before other in the total Lamport order:
// by Seq first, then by Replica to break ties.
func (l Lamport) Less(other Lamport) bool {
	if l.Seq != other.Seq {
		return l.Seq < other.Seq
	}
	return l.Replica < other.Replica
}

// LocalClock is a per-replica counter that hands out strictly increasing
// [Local] timestamps for operations the replica originates.
type LocalClock struct {
	replica Replica
	seq     Seq
}

// NewLocalClock returns a clock for the given replica, with its first Tick
// producing sequence number 1.
func NewLocalClock(replica Replica) *LocalClock {
	return &LocalClock{replica: replica}
}

// Replica returns the replica this clock counts for.
func (c *LocalClock) Replica() Replica { return c.replica }

// Tick advances the clock and returns the new timestamp.
func (c *LocalClock) Tick() Local {
	c.seq++
	return Local{Replica: c.replica, Seq: c.seq}
}

// Observe advances the clock past an already-seen timestamp from the same
// replica, so a later Tick never reuses a sequence number.
func (c *LocalClock) Observe(t Local) {
	if t.Replica == c.replica && t.Seq > c.seq {
		c.seq = t.Seq
	}
}

// LamportClock hands out [Lamport] timestamps and advances past remote
// timestamps observed from other replicas, the way a Lamport clock must.
type LamportClock struct {
	replica Replica
	seq     Seq
}

// NewLamportClock returns a clock for the given replica.
func NewLamportClock(replica Replica) *LamportClock {
	return &LamportClock{replica: replica}
}

// Tick advances the clock and returns the new timestamp.
func (c *LamportClock) Tick() Lamport {
	c.seq++
	return Lamport{Replica: c.replica, Seq: c.seq}
}

// Observe advances the clock past a timestamp seen from any replica,
// local or remote.
func (c *LamportClock) Observe(t Lamport) {
	if t.Seq > c.seq {
		c.seq = t.Seq
	}
}

// VersionVector maps each replica to the highest Seq observed from it.
// The zero value is the vector that has observed nothing, and acts as the
// identity element for both [VersionVector.Join] and [VersionVector.Meet].
type VersionVector map[Replica]Seq

// NewVersionVector returns an empty version vector.
func NewVersionVector() VersionVector {
	return make(VersionVector)
}

// Clone returns an independent copy of v.
func (v VersionVector) Clone() VersionVector {
	if v == nil {
		return nil
	}
	out := make(VersionVector, len(v))
	for r, s := range v {
		out[r] = s
	}
	return out
}

// Observe records that the operation identified by t has been applied.
func (v VersionVector) Observe(t Local) VersionVector {
	if v == nil {
		v = make(VersionVector)
	}
	if t.Seq > v[t.Replica] {
		v[t.Replica] = t.Seq
	}
	return v
}

// Observed reports whether the operation identified by t has already been
// applied according to v.
func (v VersionVector) Observed(t Local) bool {
	return v[t.Replica] >= t.Seq
}

// Dominates reports whether v has observed everything other has observed
// (v >= other, pointwise). Two vectors where neither dominates the other
// are concurrent.
func (v VersionVector) Dominates(other VersionVector) bool {
	for r, s := range other {
		if v[r] < s {
			return false
		}
	}
	return true
}

// Equal reports whether v and other have observed exactly the same set of
// operations.
func (v VersionVector) Equal(other VersionVector) bool {
	for r, s := range v {
		if other[r] != s && !(other[r] == 0 && s == 0) {
			return false
		}
	}
	for r, s := range other {
		if v[r] != s && !(v[r] == 0 && s == 0) {
			return false
		}
	}
	return true
}

// ChangedSince reports whether v has observed anything other has not,
// i.e. whether other fails to dominate v.
func (v VersionVector) ChangedSince(other VersionVector) bool {
	return !other.Dominates(v)
}

// Join returns the pointwise maximum of v and other: the vector that has
// observed everything either side has observed.
func (v VersionVector) Join(other VersionVector) VersionVector {
	out := v.Clone()
	if out == nil {
		out = make(VersionVector, len(other))
	}
	for r, s := range other {
		if s > out[r] {
			out[r] = s
		}
	}
	return out
}

// Meet returns the pointwise minimum of v and other: the vector that has
// observed only what both sides have observed. A replica present in only
// one side is treated as unconstrained ("infinity") on the absent side,
// so Meet(v, nil) == v — an unvisited subtree never drags a historical
// minimum down to zero.
func (v VersionVector) Meet(other VersionVector) VersionVector {
	out := make(VersionVector, len(v)+len(other))
	for r, s := range v {
		if os, ok := other[r]; ok {
			out[r] = min(s, os)
		} else {
			out[r] = s
		}
	}
	for r, s := range other {
		if _, ok := v[r]; !ok {
			out[r] = s
		}
	}
	return out
}

// Seqs returns the Local timestamps present in v, for iterating over
// "every id this vector has observed" (used by version-scoped seeks that
// need to test membership of a subtree's insertion range).
func (v VersionVector) Seqs() []Local {
	out := make([]Local, 0, len(v))
	for r, s := range v {
		out = append(out, Local{Replica: r, Seq: s})
	}
	return out
}
