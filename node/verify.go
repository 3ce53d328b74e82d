// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"context"
	"fmt"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/lambda-foundation/lambdad/consensus"
	"github.com/lambda-foundation/lambdad/expression"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/parser"
	"github.com/lambda-foundation/lambdad/proofcase"
	"github.com/lambda-foundation/lambdad/purity"
	"github.com/lambda-foundation/lambdad/semantic"
	"github.com/lambda-foundation/lambdad/transport"
	"github.com/lambda-foundation/lambdad/vote"
)

// votes arrive from transport goroutines, the buffer covers a burst
// from every peer answering at once
const collectionSize = 64

// confidence of an equivalence vote depends on how it was proved
const (
	digestConfidence     = 1.0
	structuralConfidence = 0.95
	reductionConfidence  = 0.9
)

// Verify - settle one submitted expression
//
// the submission is parsed, voted on locally, put to the connected
// peers and tallied, the outcome is one of Created, Found,
// Hypothetical or Rejected and is never an error: failures reject
//
// cancelling ctx or shutting the node down abandons the request
func (n *Node) Verify(ctx context.Context, text string, metadata morphism.Metadata) *Outcome {

	n.verifications.Increment()
	requestID := n.nextRequestID()
	log := n.log

	// node shutdown abandons the caller's context too
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	watchdone := make(chan struct{})
	defer close(watchdone)
	go func() {
		select {
		case <-n.ctx.Done():
			cancel()
		case <-watchdone:
		}
	}()

	log.Infof("request: %s  verifying: %q", requestID, text)

	expr, err := parser.Parse(text)
	if nil != err {
		log.Warnf("request: %s  parse failed: %s", requestID, err)
		return n.rejected(requestID, []string{"parse: " + err.Error()}, nil)
	}
	normalised := expression.Normalise(text)

	localVote, match, report, err := n.localVote(ctx, requestID, expr, normalised)
	if nil != err {
		log.Warnf("request: %s  abandoned: %s", requestID, err)
		return n.rejected(requestID, []string{"abandoned: " + err.Error()}, nil)
	}

	// the collection must be open before any peer can answer
	incoming := n.openCollection(requestID)
	defer n.closeCollection(requestID)

	machine := consensus.NewMachine(requestID, normalised, localVote, &voteRequester{
		node:     n,
		metadata: metadata,
	}, incoming)
	machine.SetTimeout(n.collectTimeout)

	result, err := machine.Resolve(ctx)
	if nil != err {
		log.Warnf("request: %s  abandoned: %s", requestID, err)
		return n.rejected(requestID, []string{"abandoned: " + err.Error()}, nil)
	}

	return n.settle(ctx, requestID, expr, normalised, metadata, result, match, report)
}

// the local verdict: equivalence outranks impurity outranks novelty
func (n *Node) localVote(ctx context.Context, requestID string, expr expression.Expression, normalised string) (*vote.Vote, *semantic.Match, *purity.Report, error) {

	match, err := n.semantic.FindEquivalent(ctx, expr, normalised, n.registry.Candidates())
	if nil != err {
		return nil, nil, nil, err
	}
	if nil != match {
		v, err := vote.New(n.id, requestID, vote.Equivalent, equivalenceConfidence(match.Proof))
		if nil != err {
			return nil, nil, nil, err
		}
		v.EquivalentTo = &match.Digest
		v.Proof = match.Proof
		v.Reasoning = match.Proof.Summary
		return v, match, nil, nil
	}

	report := purity.Check(normalised)
	if !report.Pure {
		v, err := vote.New(n.id, requestID, vote.Impure, 1.0)
		if nil != err {
			return nil, nil, nil, err
		}
		v.Reasoning = violationSummary(report.Violations)
		return v, nil, &report, nil
	}

	v, err := vote.New(n.id, requestID, vote.Pure, report.Score)
	if nil != err {
		return nil, nil, nil, err
	}
	v.Reasoning = "novel pure expression"
	return v, nil, &report, nil
}

// turn a settled tally into the caller visible outcome
func (n *Node) settle(ctx context.Context, requestID string, expr expression.Expression, normalised string, metadata morphism.Metadata, result *consensus.Result, match *semantic.Match, report *purity.Report) *Outcome {

	log := n.log

	participants := make([]string, 0, len(result.Votes))
	for _, v := range result.Votes {
		participants = append(participants, v.NodeID)
	}

	outcome := &Outcome{
		RequestID:    requestID,
		Agreement:    result.Agreement,
		Participants: participants,
		Outliers:     result.Outliers,
		Timestamp:    result.Timestamp,
	}

	if !result.Reached(n.threshold) {
		log.Warnf("request: %s  agreement %.3f below %.3f", requestID, result.Agreement, n.threshold)
		outcome.Status = StatusRejected
		outcome.Reasons = []string{
			fmt.Sprintf("agreement %.3f below threshold %.3f", result.Agreement, n.threshold),
		}
		return outcome
	}

	switch result.Majority {

	case vote.Equivalent:
		digest, proof := equivalentReference(result.Votes, match)
		if nil == digest {
			// peers agreed on equivalence but nobody said to what
			outcome.Status = StatusRejected
			outcome.Reasons = []string{"equivalent majority without a reference"}
			return outcome
		}
		m := n.registry.Get(*digest)
		if nil == m {
			m = n.adoptReference(ctx, result.Votes, *digest)
		}
		if nil != m {
			if err := n.registry.Touch(*digest); nil != err {
				log.Warnf("request: %s  touch: %s", requestID, err)
			}
			m = n.registry.Get(*digest) // re-read the touched record
		}
		log.Infof("request: %s  found: %s", requestID, digest)
		outcome.Status = StatusFound
		outcome.Digest = digest
		outcome.Morphism = m
		outcome.Proof = proof
		return outcome

	case vote.Impure:
		outcome.Status = StatusRejected
		outcome.Reasons = impureReasons(result.Votes)
		if nil != report {
			outcome.Violations = report.Violations
		}
		log.Infof("request: %s  rejected as impure", requestID)
		return outcome

	case vote.Pure:
		// a near miss is surfaced as a hypothesis instead of minting
		// a duplicate in all but name
		if h := n.explorer.Propose(expr, n.registry.Candidates()); nil != h {
			log.Infof("request: %s  hypothetical towards: %s", requestID, h.Candidate)
			outcome.Status = StatusHypothetical
			outcome.Hypothesis = h
			return outcome
		}
		return n.register(outcome, expr, normalised, metadata, report)

	default:
		outcome.Status = StatusRejected
		outcome.Reasons = []string{"unresolvable majority"}
		return outcome
	}
}

// mint and register the new canonical record
func (n *Node) register(outcome *Outcome, expr expression.Expression, normalised string, metadata morphism.Metadata, report *purity.Report) *Outcome {

	log := n.log

	score := 1.0
	if nil != report {
		score = report.Score
	}
	source := metadata.SourceNode
	if "" == source {
		source = n.id
	}

	name := deriveName(metadata.Intent, normalised)
	m, err := morphism.New(name, inferSignature(expr), normalised, score, source)
	if nil != err {
		outcome.Status = StatusRejected
		outcome.Reasons = []string{"register: " + err.Error()}
		return outcome
	}
	for _, contributor := range metadata.Contributors {
		if contributor != source {
			m.Contributors = append(m.Contributors, contributor)
		}
	}
	m.Dependencies = expression.FreeIdentifiers(expr)

	stored, created := n.registry.Add(m)
	if created {
		log.Infof("request: %s  created: %s as %s", outcome.RequestID, stored.Name, stored.Digest)
		outcome.Status = StatusCreated
	} else {
		// lost the insertion race, the first writer is canonical
		log.Infof("request: %s  found after race: %s", outcome.RequestID, stored.Digest)
		outcome.Status = StatusFound
	}
	outcome.Digest = &stored.Digest
	outcome.Morphism = stored
	return outcome
}

// a rejection settled by this node alone
func (n *Node) rejected(requestID string, reasons []string, violations []purity.Violation) *Outcome {
	return &Outcome{
		Status:       StatusRejected,
		RequestID:    requestID,
		Violations:   violations,
		Reasons:      reasons,
		Agreement:    1.0,
		Participants: []string{n.id},
		Timestamp:    time.Now().UTC(),
	}
}

// fetch a record referenced by an equivalence vote from the voter
func (n *Node) adoptReference(ctx context.Context, votes []*vote.Vote, digest morphism.Digest) *morphism.Morphism {

	for _, v := range votes {
		if vote.Equivalent != v.Kind || v.NodeID == n.id {
			continue
		}
		if nil == v.EquivalentTo || *v.EquivalentTo != digest {
			continue
		}
		if nil != ctx.Err() {
			return nil
		}
		m := n.syncByDigest(v.NodeID, digest)
		if nil != m {
			stored, _ := n.registry.Add(m)
			return stored
		}
	}
	return nil
}

// voteRequester - puts one request to all connected peers
type voteRequester struct {
	node     *Node
	metadata morphism.Metadata
}

// RequestVotes - broadcast the request and report how many peers heard it
func (r *voteRequester) RequestVotes(requestID string, expressionText string) (int, error) {
	peers := r.node.transport.PeerCount()
	if 0 == peers {
		return 0, nil
	}
	packet, err := transport.NewVerifyRequest(r.node.id, requestID, expressionText, r.metadata)
	if nil != err {
		return 0, err
	}
	if err := r.node.transport.Broadcast(packet); nil != err {
		return 0, err
	}
	return peers, nil
}

// open a vote collection for a request this node originated
func (n *Node) openCollection(requestID string) <-chan *vote.Vote {
	c := make(chan *vote.Vote, collectionSize)
	n.collections.Set(requestID, c, cache.DefaultExpiration)
	return c
}

func (n *Node) closeCollection(requestID string) {
	n.collections.Delete(requestID)
}

// route one peer vote to its open collection, late and stray votes
// are dropped
func (n *Node) deliverVote(v *vote.Vote) bool {
	item, ok := n.collections.Get(v.RequestID)
	if !ok {
		return false
	}
	c, ok := item.(chan *vote.Vote)
	if !ok {
		return false
	}
	select {
	case c <- v:
		return true
	default:
		return false
	}
}

func equivalenceConfidence(proof *proofcase.Proof) float64 {
	if nil == proof {
		return reductionConfidence
	}
	switch proof.Method {
	case proofcase.MethodDigest:
		return digestConfidence
	case proofcase.MethodStructural:
		return structuralConfidence
	default:
		return reductionConfidence
	}
}

// the digest the equivalent majority refers to, the local proof wins
// over peer proofs, after that first vote order
func equivalentReference(votes []*vote.Vote, match *semantic.Match) (*morphism.Digest, *proofcase.Proof) {
	if nil != match {
		return &match.Digest, match.Proof
	}
	for _, v := range votes {
		if vote.Equivalent == v.Kind && nil != v.EquivalentTo {
			return v.EquivalentTo, v.Proof
		}
	}
	return nil, nil
}

func impureReasons(votes []*vote.Vote) []string {
	reasons := make([]string, 0, len(votes))
	seen := make(map[string]struct{})
	for _, v := range votes {
		if vote.Impure != v.Kind || "" == v.Reasoning {
			continue
		}
		if _, dup := seen[v.Reasoning]; dup {
			continue
		}
		seen[v.Reasoning] = struct{}{}
		reasons = append(reasons, v.Reasoning)
	}
	if 0 == len(reasons) {
		reasons = append(reasons, "impure majority")
	}
	return reasons
}

func violationSummary(violations []purity.Violation) string {
	parts := make([]string, len(violations))
	for i, violation := range violations {
		parts[i] = violation.Rule
	}
	return "impure: " + strings.Join(parts, ", ")
}

// name a new record from the declared intent, fall back to a digest
// derived placeholder
func deriveName(intent string, normalised string) string {
	name := strings.ToLower(strings.TrimSpace(intent))
	buffer := make([]rune, 0, len(name))
	lastDash := true // no leading dash
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			buffer = append(buffer, r)
			lastDash = false
		default:
			if !lastDash {
				buffer = append(buffer, '-')
				lastDash = true
			}
		}
	}
	name = strings.Trim(string(buffer), "-")
	if "" != name {
		return name
	}
	digest := morphism.NewDigest(normalised)
	return "anonymous-" + digest.Base58()[:8]
}

// informational arrow shape from the leading binders, the result side
// is never inferred
func inferSignature(expr expression.Expression) string {
	arity := 0
	for {
		abstraction, ok := expr.(*expression.Abstraction)
		if !ok {
			break
		}
		arity += 1
		expr = abstraction.Body
	}
	if 0 == arity {
		return "*"
	}
	parts := make([]string, 0, arity+1)
	for i := 0; i < arity; i += 1 {
		parts = append(parts, string(rune('a'+(i%26))))
	}
	parts = append(parts, "*")
	return strings.Join(parts, " → ")
}
