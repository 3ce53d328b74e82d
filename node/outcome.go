// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"time"

	"github.com/lambda-foundation/lambdad/hypothesis"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/proofcase"
	"github.com/lambda-foundation/lambdad/purity"
	"github.com/lambda-foundation/lambdad/vote"
)

// Status - how a verification request settled
type Status int

// the four terminal states of a request, values follow the HTTP
// conventions callers already know
const (
	StatusCreated      Status = 201 // new canonical record registered
	StatusHypothetical Status = 202 // near miss, equivalence unproven
	StatusFound        Status = 302 // equivalent to an existing record
	StatusRejected     Status = 422 // impure, unparseable or no agreement
)

// String - status as display text
func (status Status) String() string {
	switch status {
	case StatusCreated:
		return "Created"
	case StatusHypothetical:
		return "Hypothetical"
	case StatusFound:
		return "Found"
	case StatusRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Outcome - the settled answer to one verification request
//
// Digest is set for Found and Created, Hypothesis only for
// Hypothetical, Violations and Reasons only for Rejected
type Outcome struct {
	Status       Status                 `json:"status"`
	RequestID    string                 `json:"requestId"`
	Digest       *morphism.Digest       `json:"digest,omitempty"`
	Morphism     *morphism.Morphism     `json:"morphism,omitempty"`
	Proof        *proofcase.Proof       `json:"proof,omitempty"`
	Hypothesis   *hypothesis.Hypothesis `json:"hypothesis,omitempty"`
	Violations   []purity.Violation     `json:"violations,omitempty"`
	Reasons      []string               `json:"reasons,omitempty"`
	Agreement    float64                `json:"agreement"`
	Participants []string               `json:"participants"`
	Outliers     []*vote.Vote           `json:"outliers,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}
