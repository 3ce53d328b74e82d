// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vote

import (
	"sync"

	"github.com/lambda-foundation/lambdad/fault"
)

// Tally - confidence weighted accumulation of votes keyed by kind
type Tally struct {
	sync.RWMutex
	sums  map[Kind]float64
	votes []*Vote
	seen  map[string]struct{}
}

// NewTally - create an empty tally
func NewTally() *Tally {
	return &Tally{
		sums: make(map[Kind]float64),
		seen: make(map[string]struct{}),
	}
}

// Add - record one vote
//
// a node votes at most once per request, a second vote from the same
// node is dropped
func (tally *Tally) Add(vote *Vote) error {
	if vote.Kind < Pure || vote.Kind >= maximum {
		return fault.InvalidVoteKind
	}
	if vote.Confidence < 0.0 || vote.Confidence > 1.0 {
		return fault.InvalidConfidence
	}

	tally.Lock()
	defer tally.Unlock()

	if _, ok := tally.seen[vote.NodeID]; ok {
		return nil
	}
	tally.seen[vote.NodeID] = struct{}{}
	tally.sums[vote.Kind] += vote.Confidence
	tally.votes = append(tally.votes, vote)
	return nil
}

// Size - number of votes counted so far
func (tally *Tally) Size() int {
	tally.RLock()
	defer tally.RUnlock()
	return len(tally.votes)
}

// Votes - copy of the counted votes
func (tally *Tally) Votes() []*Vote {
	tally.RLock()
	defer tally.RUnlock()
	votes := make([]*Vote, len(tally.votes))
	copy(votes, tally.votes)
	return votes
}

// Majority - the winning kind and its summed confidence
//
// ties resolve to the first of: Pure, Equivalent, Impure
func (tally *Tally) Majority() (Kind, float64) {
	tally.RLock()
	defer tally.RUnlock()
	return tally.majority()
}

// internal majority, caller holds the lock
func (tally *Tally) majority() (Kind, float64) {
	winner := Pure
	highest := tally.sums[Pure]
	for _, kind := range precedence[1:] {
		if tally.sums[kind] > highest {
			winner = kind
			highest = tally.sums[kind]
		}
	}
	return winner, highest
}

// Agreement - fraction of total confidence behind the majority
func (tally *Tally) Agreement() (float64, error) {
	tally.RLock()
	defer tally.RUnlock()

	total := 0.0
	for _, sum := range tally.sums {
		total += sum
	}
	if 0 == len(tally.votes) || total <= 0.0 {
		return 0.0, fault.VotesWithZeroConfidence
	}
	_, highest := tally.majority()
	return highest / total, nil
}

// Outliers - votes that disagree with the majority
func (tally *Tally) Outliers() []*Vote {
	tally.RLock()
	defer tally.RUnlock()

	winner, _ := tally.majority()
	outliers := []*Vote{}
	for _, vote := range tally.votes {
		if vote.Kind != winner {
			outliers = append(outliers, vote)
		}
	}
	return outliers
}
