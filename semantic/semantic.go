// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package semantic - decide whether a submission is provably the same
// function as an already registered definition
//
// per candidate pipeline: digest identity, structural comparison for
// terms flagged recursive, otherwise expansion and reduction of both
// sides and a structural comparison of the normal forms
package semantic

import (
	"context"
	"time"

	"github.com/bitmark-inc/logger"
	cache "github.com/patrickmn/go-cache"

	"github.com/lambda-foundation/lambdad/expansion"
	"github.com/lambda-foundation/lambdad/expression"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/parser"
	"github.com/lambda-foundation/lambdad/proofcase"
	"github.com/lambda-foundation/lambdad/recursion"
	"github.com/lambda-foundation/lambdad/reduction"
	"github.com/lambda-foundation/lambdad/structural"
)

// normal forms of registered definitions change only when the
// registry grows so a short lived memo is safe
const (
	defaultTimeout    = 10 * time.Minute
	defaultExpiration = 20 * time.Minute
)

// Candidate - a registered definition to compare against
type Candidate struct {
	Digest     morphism.Digest
	Definition string // normalised text
}

// Match - a successful equivalence with its evidence
type Match struct {
	Digest morphism.Digest
	Proof  *proofcase.Proof
}

// Engine - the equivalence pipeline
type Engine struct {
	log      *logger.L
	expander *expansion.Expander
	reducer  *reduction.Reducer
	detector *recursion.Detector
	memo     *cache.Cache
}

// NewEngine - create an equivalence engine
//
// definitions feed identifier expansion, the detector routes terms
// that must not be reduced, budget zero selects the reduction default
func NewEngine(definitions expansion.Definitions, detector *recursion.Detector, budget int) *Engine {
	return &Engine{
		log:      logger.New("semantic"),
		expander: expansion.NewExpander(definitions),
		reducer:  reduction.NewReducer(budget),
		detector: detector,
		memo:     cache.New(defaultTimeout, defaultExpiration),
	}
}

// FindEquivalent - first candidate provably equal to the submission
//
// candidates are tried in the order given, a candidate that cannot be
// normalised within budget is skipped, only context cancellation
// aborts the whole search
func (e *Engine) FindEquivalent(ctx context.Context, expr expression.Expression, source string, candidates []Candidate) (*Match, error) {

	digest := morphism.NewDigest(source)

	// digest identity needs no proof steps at all
	for _, candidate := range candidates {
		if digest == candidate.Digest {
			proof := proofcase.New(proofcase.MethodDigest)
			proof.AddStep(proofcase.RuleDigest, expression.Normalise(source), candidate.Definition, "identical normalised text")
			proof.Finalise(candidate.Definition, candidate.Digest.String())
			return &Match{Digest: candidate.Digest, Proof: proof}, nil
		}
	}

	recursive := e.detector.IsRecursive(expr, source)

	// reduce the submission once, terms flagged recursive and terms
	// that run over budget are compared structurally instead
	var normal expression.Expression
	var normalProof *proofcase.Proof
	if !recursive {
		var err error
		normal, normalProof, err = e.normalise(ctx, expr)
		switch err {
		case nil:
		case context.Canceled, context.DeadlineExceeded:
			return nil, err
		default:
			e.log.Debugf("submission does not normalise: %s", err)
			normal = nil
		}
	}

	for _, candidate := range candidates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		candidateExpr, err := parser.Parse(candidate.Definition)
		if nil != err {
			e.log.Errorf("unparseable candidate: %s", candidate.Digest.Base58())
			continue
		}

		if nil == normal || e.detector.IsRecursive(candidateExpr, candidate.Definition) {
			if proof, ok := structural.Prove(expr, candidateExpr); ok {
				proof.Finalise(candidate.Definition, candidate.Digest.String())
				return &Match{Digest: candidate.Digest, Proof: proof}, nil
			}
			continue
		}

		candidateNormal, err := e.candidateNormal(ctx, candidateExpr, candidate.Digest)
		switch err {
		case nil:
		case context.Canceled, context.DeadlineExceeded:
			return nil, err
		default:
			e.log.Debugf("candidate %s skipped: %s", candidate.Digest.Base58(), err)
			continue
		}

		if structural.Equivalent(normal, candidateNormal) {
			proof := proofcase.New(proofcase.MethodReduction)
			proof.Steps = append(proof.Steps, normalProof.Steps...)
			if normal.String() != candidateNormal.String() {
				proof.AddStep(proofcase.RuleAlpha, normal.String(), candidateNormal.String(), "binder renaming")
			}
			proof.Finalise(candidateNormal.String(), candidate.Digest.String())
			return &Match{Digest: candidate.Digest, Proof: proof}, nil
		}
	}

	return nil, nil
}

// expand and reduce, recording the derivation
func (e *Engine) normalise(ctx context.Context, expr expression.Expression) (expression.Expression, *proofcase.Proof, error) {

	proof := proofcase.New(proofcase.MethodReduction)

	expanded, err := e.expander.Expand(expr, proof)
	if nil != err {
		return nil, nil, err
	}
	normal, err := e.reducer.Reduce(ctx, expanded, proof)
	if nil != err {
		return nil, nil, err
	}
	return normal, proof, nil
}

// normal forms of candidates are memoised by digest
func (e *Engine) candidateNormal(ctx context.Context, expr expression.Expression, digest morphism.Digest) (expression.Expression, error) {

	key := digest.String()
	if entry, found := e.memo.Get(key); found {
		return entry.(expression.Expression), nil
	}

	expanded, err := e.expander.Expand(expr, nil)
	if nil != err {
		return nil, err
	}
	normal, err := e.reducer.Reduce(ctx, expanded, nil)
	if nil != err {
		return nil, err
	}

	e.memo.Set(key, normal, cache.DefaultExpiration)
	return normal, nil
}
