// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package verify - RPC service accepting expression submissions
//
// a submission runs the full verification flow: parse, local vote,
// network consensus, settlement, so a call can block for the
// configured vote collection window before answering
package verify

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/hypothesis"
	"github.com/lambda-foundation/lambdad/mode"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/node"
	"github.com/lambda-foundation/lambdad/rpc/ratelimit"
)

const (
	rateLimitVerify = 50
	rateBurstVerify = 25
)

// Verifier - the node surface needed to settle a submission
type Verifier interface {
	Verify(ctx context.Context, text string, metadata morphism.Metadata) *node.Outcome
}

// Verify - type for the RPC
type Verify struct {
	Log          *logger.L
	Limiter      *rate.Limiter
	IsNormalMode func(mode.Mode) bool
	Node         Verifier
}

// New - create the verification service
func New(log *logger.L, isNormalMode func(mode.Mode) bool, n Verifier) *Verify {
	return &Verify{
		Log:          log,
		Limiter:      rate.NewLimiter(rateLimitVerify, rateBurstVerify),
		IsNormalMode: isNormalMode,
		Node:         n,
	}
}

// ---

// SubmitArguments - one expression with optional attribution
type SubmitArguments struct {
	Expression   string   `json:"expression"`
	Intent       string   `json:"intent,omitempty"`
	Contributors []string `json:"contributors,omitempty"`
}

// SubmitReply - the settled verification outcome
type SubmitReply struct {
	Status       string                 `json:"status"`
	Code         int                    `json:"code"`
	RequestID    string                 `json:"requestId"`
	Digest       *morphism.Digest       `json:"digest,omitempty"`
	Morphism     *morphism.Morphism     `json:"morphism,omitempty"`
	Hypothesis   *hypothesis.Hypothesis `json:"hypothesis,omitempty"`
	Reasons      []string               `json:"reasons,omitempty"`
	Agreement    float64                `json:"agreement"`
	Participants []string               `json:"participants"`
}

// Submit - verify one expression against the network
func (v *Verify) Submit(arguments *SubmitArguments, reply *SubmitReply) error {
	if err := ratelimit.Limit(v.Limiter); nil != err {
		return err
	}

	if !v.IsNormalMode(mode.Normal) {
		return fault.NotAvailableDuringResynchronise
	}

	if "" == arguments.Expression {
		return fault.EmptyExpression
	}

	v.Log.Infof("submit: %q intent: %q", arguments.Expression, arguments.Intent)

	metadata := morphism.Metadata{
		Intent:       arguments.Intent,
		Contributors: arguments.Contributors,
		Timestamp:    time.Now().UTC(),
	}

	outcome := v.Node.Verify(context.Background(), arguments.Expression, metadata)

	reply.Status = outcome.Status.String()
	reply.Code = int(outcome.Status)
	reply.RequestID = outcome.RequestID
	reply.Digest = outcome.Digest
	reply.Morphism = outcome.Morphism
	reply.Hypothesis = outcome.Hypothesis
	reply.Reasons = outcome.Reasons
	reply.Agreement = outcome.Agreement
	reply.Participants = outcome.Participants

	return nil
}
