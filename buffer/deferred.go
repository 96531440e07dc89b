// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import "cogentcore.org/text/clock"

// deferredQueue holds operations [Buffer.ApplyOps] could not yet apply
// because their causal preconditions aren't met, per spec §4.9: an
// operation referencing a replica's edit the local buffer hasn't
// observed yet must wait, not error.
type deferredQueue struct {
	blockedReplicas map[clock.Replica]struct{}
	ops             []Operation
}

func newDeferredQueue() *deferredQueue {
	return &deferredQueue{blockedReplicas: make(map[clock.Replica]struct{})}
}

// blocked reports whether any currently deferred operation originated
// from replica, in which case a later operation from the same replica
// must also wait: applying it out of the replica's own origination
// order would violate per-replica causal delivery.
func (q *deferredQueue) blocked(replica clock.Replica) bool {
	_, ok := q.blockedReplicas[replica]
	return ok
}

// push records op as deferred, blocking every later operation from the
// same replica until the next flush.
func (q *deferredQueue) push(op Operation) {
	q.blockedReplicas[op.ReplicaID()] = struct{}{}
	q.ops = append(q.ops, op)
}
