// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package genesis - the embedded seed knowledge base
//
// every node starts from the same canonical definitions so digests
// agree across the network from the very first request
package genesis

import (
	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/network"
)

// SourceNode - contributor recorded on every seed morphism
const SourceNode = "genesis"

// Seed - one embedded definition
type Seed struct {
	Name       string
	Signature  string
	Definition string
}

// the canonical seed base
//
// definitions are textually distinct, two seeds with the same
// normalised text would collide on digest and the second would never
// register
var fullSeeds = []Seed{
	{"identity", "a → a", "λx.x"},
	{"compose", "(b → c) → (a → b) → a → c", "λf.λg.λx.f (g x)"},
	{"const", "a → b → a", "λx.λy.x"},
	{"flip", "(a → b → c) → b → a → c", "λf.λx.λy.f y x"},
	{"apply", "(a → b) → a → b", "λf.λx.f x"},
	{"TRUE", "Bool", "λt.λf.t"},
	{"FALSE", "Bool", "λt.λf.f"},
	{"AND", "Bool → Bool → Bool", "λp.λq.p q p"},
	{"OR", "Bool → Bool → Bool", "λp.λq.p p q"},
	{"NOT", "Bool → Bool", "λp.λt.λf.p f t"},
	{"PAIR", "a → b → Pair a b", "λx.λy.λs.s x y"},
	{"FIRST", "Pair a b → a", "λp.p (λx.λy.x)"},
	{"SECOND", "Pair a b → b", "λp.p (λx.λy.y)"},
	{"ZERO", "Nat", "λf.λx.x"},
	{"ONE", "Nat", "λs.λz.s z"},
	{"TWO", "Nat", "λs.λz.s (s z)"},
	{"THREE", "Nat", "λs.λz.s (s (s z))"},
	{"SUCC", "Nat → Nat", "λn.λf.λx.f (n f x)"},
	{"PLUS", "Nat → Nat → Nat", "λm.λn.λf.λx.m f (n f x)"},
	{"MULT", "Nat → Nat → Nat", "λm.λn.λf.m (n f)"},
	{"ISZERO", "Nat → Bool", "λn.n (λx.λt.λf.f) (λt.λf.t)"},
	{"Y", "(a → a) → a", "λf.(λx.f (x x)) (λx.f (x x))"},
	{"FIX", "(a → a) → a", "λf.(λx.f (λv.x x v)) (λx.f (λv.x x v))"},
}

// a cut down base for throwaway local networks
var localSeeds = []Seed{
	{"identity", "a → a", "λx.x"},
	{"compose", "(b → c) → (a → b) → a → c", "λf.λg.λx.f (g x)"},
	{"const", "a → b → a", "λx.λy.x"},
	{"apply", "(a → b) → a → b", "λf.λx.f x"},
	{"TRUE", "Bool", "λt.λf.t"},
	{"FALSE", "Bool", "λt.λf.f"},
	{"Y", "(a → a) → a", "λf.(λx.f (x x)) (λx.f (x x))"},
}

// Seeds - the embedded definitions for a network
func Seeds(networkName string) ([]Seed, error) {
	switch networkName {
	case network.Lambda, network.Testing:
		return fullSeeds, nil
	case network.Local:
		return localSeeds, nil
	default:
		return nil, fault.WrongNetworkForGenesis
	}
}

// Target - where seeds are registered
type Target interface {
	Add(m *morphism.Morphism) (*morphism.Morphism, bool)
}

// Load - register the seed base for a network
//
// returns the number of newly created records, reloading over an
// already seeded registry is harmless
func Load(target Target, networkName string) (int, error) {

	seeds, err := Seeds(networkName)
	if nil != err {
		return 0, err
	}

	count := 0
	for _, seed := range seeds {
		m, err := morphism.New(seed.Name, seed.Signature, seed.Definition, 1.0, SourceNode)
		if nil != err {
			return count, err
		}
		if _, created := target.Add(m); created {
			count += 1
		}
	}
	return count, nil
}
