// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package vote - one node's verdict on a verification request and the
// confidence weighted tally of many
package vote

import (
	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/proofcase"
)

// Kind - the stance a vote takes
type Kind int

// all possible stances
const (
	Pure Kind = iota
	Impure
	Equivalent
	maximum
)

// tie break precedence, first wins
var precedence = []Kind{Pure, Equivalent, Impure}

// Vote - one verdict
type Vote struct {
	NodeID       string           `json:"nodeId"`
	RequestID    string           `json:"requestId"`
	Kind         Kind             `json:"kind"`
	Confidence   float64          `json:"confidence"`
	EquivalentTo *morphism.Digest `json:"equivalentTo,omitempty"`
	Reasoning    string           `json:"reasoning,omitempty"`
	Proof        *proofcase.Proof `json:"proof,omitempty"`
}

// New - build a validated vote
func New(nodeID string, requestID string, kind Kind, confidence float64) (*Vote, error) {
	if kind < Pure || kind >= maximum {
		return nil, fault.InvalidVoteKind
	}
	if confidence < 0.0 || confidence > 1.0 {
		return nil, fault.InvalidConfidence
	}
	v := &Vote{
		NodeID:     nodeID,
		RequestID:  requestID,
		Kind:       kind,
		Confidence: confidence,
	}
	return v, nil
}

// String - vote kind as display text
func (kind Kind) String() string {
	switch kind {
	case Pure:
		return "Pure"
	case Impure:
		return "Impure"
	case Equivalent:
		return "Equivalent"
	default:
		return "*Unknown*"
	}
}

// MarshalText - wire form of a vote kind
func (kind Kind) MarshalText() ([]byte, error) {
	switch kind {
	case Pure:
		return []byte("pure"), nil
	case Impure:
		return []byte("impure"), nil
	case Equivalent:
		return []byte("equivalent"), nil
	default:
		return nil, fault.InvalidVoteKind
	}
}

// UnmarshalText - decode the wire form of a vote kind
func (kind *Kind) UnmarshalText(s []byte) error {
	switch string(s) {
	case "pure":
		*kind = Pure
	case "impure":
		*kind = Impure
	case "equivalent":
		*kind = Equivalent
	default:
		return fault.InvalidVoteKind
	}
	return nil
}
