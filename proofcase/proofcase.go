// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package proofcase - recorded evidence that one expression denotes
// the same function as another
package proofcase

import (
	"fmt"
)

// rewrite rule names used in steps
const (
	RuleAlpha  = "alpha"
	RuleBeta   = "beta"
	RuleExpand = "expand"
	RuleDigest = "digest"
)

// proof methods
const (
	MethodDigest     = "digest-identity"
	MethodStructural = "structural/alpha-equivalence"
	MethodReduction  = "beta-reduction"
)

// Step - one rewrite in a derivation
type Step struct {
	Rule string `json:"rule"`
	From string `json:"from"`
	To   string `json:"to"`
	Note string `json:"note,omitempty"`
}

// Proof - an ordered derivation ending in a normal form
//
// the canonical digest is the hex digest of the morphism the
// derivation arrives at, kept as text to keep this package free of
// record dependencies
type Proof struct {
	Method          string `json:"method"`
	Steps           []Step `json:"steps,omitempty"`
	NormalForm      string `json:"normalForm"`
	CanonicalDigest string `json:"canonicalDigest,omitempty"`
	Summary         string `json:"summary"`
}

// New - start a proof for a method
func New(method string) *Proof {
	return &Proof{
		Method: method,
		Steps:  make([]Step, 0, 8),
	}
}

// AddStep - append one rewrite to the derivation
func (proof *Proof) AddStep(rule string, from string, to string, note string) {
	proof.Steps = append(proof.Steps, Step{
		Rule: rule,
		From: from,
		To:   to,
		Note: note,
	})
}

// Finalise - record the arrival point and produce the summary line
func (proof *Proof) Finalise(normalForm string, canonicalDigest string) {
	proof.NormalForm = normalForm
	proof.CanonicalDigest = canonicalDigest
	proof.Summary = fmt.Sprintf("%s in %d steps to %s", proof.Method, len(proof.Steps), normalForm)
}
