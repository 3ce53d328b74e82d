// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hypothesis_test

import (
	"testing"

	"github.com/lambda-foundation/lambdad/hypothesis"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/parser"
	"github.com/lambda-foundation/lambdad/semantic"
)

func candidates(definitions ...string) []semantic.Candidate {
	list := make([]semantic.Candidate, len(definitions))
	for i, definition := range definitions {
		list[i] = semantic.Candidate{
			Digest:     morphism.NewDigest(definition),
			Definition: definition,
		}
	}
	return list
}

func TestProposeExact(t *testing.T) {

	e := hypothesis.NewEngine(0)
	if hypothesis.DefaultThreshold != e.Threshold() {
		t.Fatalf("threshold: %f  expected: %f", e.Threshold(), hypothesis.DefaultThreshold)
	}

	expr, err := parser.Parse("λq.λr.q (q r)")
	if nil != err {
		t.Fatalf("parse failed: %s", err)
	}

	list := candidates("λf.λx.f (f x)")
	h := e.Propose(expr, list)
	if nil == h {
		t.Fatalf("no hypothesis for an alpha variant")
	}
	if 1.0 != h.Confidence {
		t.Errorf("confidence: %f  expected: 1.0", h.Confidence)
	}
	if list[0].Digest != h.Candidate {
		t.Errorf("wrong candidate proposed")
	}
}

func TestProposeClose(t *testing.T) {

	e := hypothesis.NewEngine(0)

	expr, err := parser.Parse("λx.PLUS x (PLUS ONE ONE)")
	if nil != err {
		t.Fatalf("parse failed: %s", err)
	}

	list := candidates("λx.PLUS x (PLUS ONE TWO)")
	h := e.Propose(expr, list)
	if nil == h {
		t.Fatalf("no hypothesis for a close variant")
	}

	if h.Confidence <= 0.7 || h.Confidence >= 1.0 {
		t.Errorf("confidence out of expected band: %f", h.Confidence)
	}
	if list[0].Digest != h.Candidate {
		t.Errorf("wrong candidate proposed")
	}
	if "" == h.Reasoning || "" == h.Gap {
		t.Errorf("hypothesis lacks reasoning or gap")
	}
	if 0 == len(h.Obligations) {
		t.Errorf("hypothesis lacks obligations")
	}
	if 3 != len(h.Steps) {
		t.Errorf("steps: %d  expected: 3", len(h.Steps))
	}
	for i, step := range h.Steps {
		if "" == step.Action || "" == step.Effort {
			t.Errorf("step %d incomplete", i)
		}
	}
	if h.Value >= h.Confidence {
		t.Errorf("value %f not scaled below confidence %f", h.Value, h.Confidence)
	}
}

func TestProposeNone(t *testing.T) {

	e := hypothesis.NewEngine(0)

	expr, err := parser.Parse("λx.λy.λz.x z (y z)")
	if nil != err {
		t.Fatalf("parse failed: %s", err)
	}

	// nothing close enough
	list := candidates("PAIR ONE TWO")
	if h := e.Propose(expr, list); nil != h {
		t.Errorf("unexpected hypothesis with confidence %f", h.Confidence)
	}

	// nothing at all
	if h := e.Propose(expr, nil); nil != h {
		t.Errorf("hypothesis from empty candidate list")
	}
}

// growing similarity must never lower the score
func TestMonotonic(t *testing.T) {

	e := hypothesis.NewEngine(0.01)

	list := candidates("λx.PLUS x ONE")

	confidences := make([]float64, 0, 3)
	for _, text := range []string{
		"λq.PLUS q ONE",  // alpha variant of the candidate
		"λq.PLUS q TWO",  // one identifier apart
		"λq.MULT q TWO",  // two identifiers apart
	} {
		expr, err := parser.Parse(text)
		if nil != err {
			t.Fatalf("parse(%q) failed: %s", text, err)
		}
		h := e.Propose(expr, list)
		if nil == h {
			t.Fatalf("no hypothesis for %q at low threshold", text)
		}
		confidences = append(confidences, h.Confidence)
	}

	if 1.0 != confidences[0] {
		t.Errorf("alpha variant confidence: %f  expected: 1.0", confidences[0])
	}
	if !(confidences[0] > confidences[1] && confidences[1] > confidences[2]) {
		t.Errorf("similarity ordering broken: %v", confidences)
	}
}

func TestBestCandidateWins(t *testing.T) {

	e := hypothesis.NewEngine(0.01)

	expr, err := parser.Parse("λf.λx.f (f x)")
	if nil != err {
		t.Fatalf("parse failed: %s", err)
	}

	list := candidates("PAIR ONE TWO", "λg.λy.g (g y)")
	h := e.Propose(expr, list)
	if nil == h {
		t.Fatalf("no hypothesis")
	}
	if list[1].Digest != h.Candidate {
		t.Errorf("closest candidate not selected")
	}
}
