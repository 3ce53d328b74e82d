// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package morphisms - RPC service for querying the lexicon
package morphisms

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/registry"
	"github.com/lambda-foundation/lambdad/rpc/ratelimit"
)

const (
	maximumMorphismList = 100
	rateLimitMorphism   = 200
	rateBurstMorphism   = 100
)

// Morphism - type for the RPC
type Morphism struct {
	Log      *logger.L
	Limiter  *rate.Limiter
	Registry *registry.Registry
}

// New - create the lexicon query service
func New(log *logger.L, reg *registry.Registry) *Morphism {
	return &Morphism{
		Log:      log,
		Limiter:  rate.NewLimiter(rateLimitMorphism, rateBurstMorphism),
		Registry: reg,
	}
}

// ---

// GetArguments - select one morphism by digest or by name
type GetArguments struct {
	Digest string `json:"digest,omitempty"`
	Name   string `json:"name,omitempty"`
}

// GetReply - the selected record
type GetReply struct {
	Morphism *morphism.Morphism `json:"morphism"`
}

// Get - fetch one registered morphism
func (m *Morphism) Get(arguments *GetArguments, reply *GetReply) error {
	if err := ratelimit.Limit(m.Limiter); nil != err {
		return err
	}

	switch {
	case "" != arguments.Digest:
		var digest morphism.Digest
		if err := digest.UnmarshalText([]byte(arguments.Digest)); nil != err {
			return err
		}
		reply.Morphism = m.Registry.Get(digest)

	case "" != arguments.Name:
		reply.Morphism = m.Registry.Lookup(arguments.Name)

	default:
		return fault.MissingParameters
	}

	if nil == reply.Morphism {
		return fault.MorphismNotFound
	}

	return nil
}

// ---

// ListArguments - a window into the lexicon, insertion ordered
type ListArguments struct {
	Start uint64 `json:"start,string"`
	Count int    `json:"count"`
}

// ListReply - one page of records
type ListReply struct {
	Morphisms []*morphism.Morphism `json:"morphisms"`
	NextStart uint64               `json:"nextStart,string"`
}

// List - page through all registered morphisms
func (m *Morphism) List(arguments *ListArguments, reply *ListReply) error {
	if err := ratelimit.LimitN(m.Limiter, arguments.Count, maximumMorphismList); nil != err {
		return err
	}

	all := m.Registry.List()

	start := arguments.Start
	if start >= uint64(len(all)) {
		reply.Morphisms = []*morphism.Morphism{}
		reply.NextStart = start
		return nil
	}

	end := start + uint64(arguments.Count)
	if end > uint64(len(all)) {
		end = uint64(len(all))
	}

	reply.Morphisms = all[start:end]
	reply.NextStart = end

	return nil
}
