// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package hypothesis - plausible but unproven equivalences
//
// when no candidate is provably equal a submission may still be close
// to a registered definition, closeness is scored from the shape of
// the canonical forms and the overlap of the referenced identifiers,
// both parts grow with growing similarity
package hypothesis

import (
	"fmt"

	"github.com/lambda-foundation/lambdad/expression"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/parser"
	"github.com/lambda-foundation/lambdad/semantic"
)

// scoring
const (
	DefaultThreshold = 0.7

	shapeWeight      = 0.6
	identifierWeight = 0.4
	valueScale       = 0.9
)

// ExplorationStep - one way to close the gap towards a proof
type ExplorationStep struct {
	Action   string   `json:"action"`
	Effort   string   `json:"effort"` // low, medium, high
	Blockers []string `json:"blockers,omitempty"`
}

// Hypothesis - a candidate equivalence worth exploring
type Hypothesis struct {
	Candidate   morphism.Digest   `json:"candidate"`
	Confidence  float64           `json:"confidence"`
	Reasoning   string            `json:"reasoning"`
	Obligations []string          `json:"obligations"`
	Gap         string            `json:"gap"`
	Steps       []ExplorationStep `json:"steps"`
	Value       float64           `json:"value"`
}

// Engine - similarity scoring with a fixed acceptance threshold
type Engine struct {
	threshold float64
}

// NewEngine - create a hypothesis engine
//
// zero or negative selects the default threshold, values over one
// make acceptance impossible and are pinned to one
func NewEngine(threshold float64) *Engine {
	if threshold <= 0.0 {
		threshold = DefaultThreshold
	}
	if threshold > 1.0 {
		threshold = 1.0
	}
	return &Engine{
		threshold: threshold,
	}
}

// Threshold - the acceptance threshold in use
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Propose - the best candidate at or above the threshold, nil when
// the submission is simply novel
func (e *Engine) Propose(expr expression.Expression, candidates []semantic.Candidate) *Hypothesis {

	submission := shapeTokens(expression.Canonical(expr))
	identifiers := expression.FreeIdentifiers(expr)

	best := -1.0
	var bestIndex int
	var bestShape, bestOverlap float64

	for i, candidate := range candidates {
		candidateExpr, err := parser.Parse(candidate.Definition)
		if nil != err {
			continue
		}

		shape := positionalRatio(submission, shapeTokens(expression.Canonical(candidateExpr)))
		overlap := jaccard(identifiers, expression.FreeIdentifiers(candidateExpr))
		score := shapeWeight*shape + identifierWeight*overlap

		if score > best {
			best = score
			bestIndex = i
			bestShape = shape
			bestOverlap = overlap
		}
	}

	if best < e.threshold {
		return nil
	}

	digest := candidates[bestIndex].Digest
	return &Hypothesis{
		Candidate:  digest,
		Confidence: best,
		Reasoning: fmt.Sprintf("shape similarity %.2f and identifier overlap %.2f with %s",
			bestShape, bestOverlap, digest.Base58()),
		Obligations: []string{
			"prove beta equivalence to the candidate",
			"verify referenced identifiers denote the same definitions",
			"show both sides share a normal form",
		},
		Gap: fmt.Sprintf("similarity %.2f leaves %.2f unproven", best, 1.0-best),
		Steps: []ExplorationStep{
			{
				Action: "expand all registered identifiers on both sides",
				Effort: "low",
			},
			{
				Action:   "reduce both sides to normal form",
				Effort:   "medium",
				Blockers: []string{"may exceed the reduction budget"},
			},
			{
				Action:   "compare the normal forms structurally",
				Effort:   "high",
				Blockers: []string{"needs a successful reduction of both sides"},
			},
		},
		Value: best * valueScale,
	}
}

// break a canonical rendering into comparable tokens
func shapeTokens(canonical string) []string {

	runes := []rune(canonical)
	tokens := make([]string, 0, len(runes)/2+1)

	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case 'λ' == r:
			// canonical binders are always the pair λ.
			tokens = append(tokens, "λ.")
			i += 2
		case '(' == r || ')' == r:
			tokens = append(tokens, string(r))
			i += 1
		case ' ' == r:
			i += 1
		default:
			j := i
			for j < len(runes) && 'λ' != runes[j] && '(' != runes[j] && ')' != runes[j] && ' ' != runes[j] {
				j += 1
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		}
	}
	return tokens
}

// matching positions over the longer length, more agreement can only
// raise it
func positionalRatio(a []string, b []string) float64 {

	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if 0 == longest {
		return 1.0
	}

	shortest := len(a)
	if len(b) < shortest {
		shortest = len(b)
	}

	matches := 0
	for i := 0; i < shortest; i += 1 {
		if a[i] == b[i] {
			matches += 1
		}
	}
	return float64(matches) / float64(longest)
}

func jaccard(a []string, b []string) float64 {

	if 0 == len(a) && 0 == len(b) {
		return 1.0
	}
	if 0 == len(a) || 0 == len(b) {
		return 0.0
	}

	inB := make(map[string]struct{}, len(b))
	for _, name := range b {
		inB[name] = struct{}{}
	}

	intersection := 0
	for _, name := range a {
		if _, ok := inB[name]; ok {
			intersection += 1
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
