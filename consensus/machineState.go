// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

// a state type for one verification request
type state int

// progress of a request through resolution
const (
	// created, local vote not yet counted
	cStateIdle state = iota

	// announce the request to connected peers
	cStateRequestBroadcast state = iota

	// wait for peer verdicts to arrive
	cStateCollectingVotes state = iota

	// tally settled, result available
	cStateResolved state = iota
)

func (state state) String() string {
	switch state {
	case cStateIdle:
		return "Idle"
	case cStateRequestBroadcast:
		return "RequestBroadcast"
	case cStateCollectingVotes:
		return "CollectingVotes"
	case cStateResolved:
		return "Resolved"
	default:
		return "*Unknown*"
	}
}
