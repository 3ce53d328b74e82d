// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package expansion - replace registered identifiers by their
// definitions before reduction
package expansion

import (
	"github.com/lambda-foundation/lambdad/expression"
	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/parser"
	"github.com/lambda-foundation/lambdad/proofcase"
)

// limits
const (
	MaximumDepth = 16
)

// Definitions - the read only registry view the expander needs
type Definitions interface {
	Definition(name string) (string, bool)
}

// Expander - identifier expansion over a definition source
type Expander struct {
	definitions Definitions
}

// NewExpander - create an expander over a definition source
func NewExpander(definitions Definitions) *Expander {
	return &Expander{
		definitions: definitions,
	}
}

// Expand - produce a copy of the term with every known free
// identifier replaced by a freshly parsed copy of its definition
//
// nested definitions expand to MaximumDepth, going deeper aborts with
// fault.ExpansionDepthExceeded; cyclic definitions and definitions
// whose free variables would be captured stay unexpanded; the input
// term is never modified; proof may be nil
func (ex *Expander) Expand(expr expression.Expression, proof *proofcase.Proof) (expression.Expression, error) {
	return ex.expand(expr, 0, make(map[string]struct{}), nil, proof)
}

func (ex *Expander) expand(expr expression.Expression, depth int, inProgress map[string]struct{}, binders []string, proof *proofcase.Proof) (expression.Expression, error) {

	switch e := expr.(type) {

	case *expression.Variable:
		return e.Clone(), nil

	case *expression.Identifier:
		if _, cyclic := inProgress[e.Name]; cyclic {
			return e.Clone(), nil
		}
		definition, ok := ex.definitions.Definition(e.Name)
		if !ok {
			return e.Clone(), nil
		}
		if depth >= MaximumDepth {
			return nil, fault.ExpansionDepthExceeded
		}
		parsed, err := parser.Parse(definition)
		if nil != err {
			// the registry never stores unparseable text
			return e.Clone(), nil
		}
		if captures(parsed, binders) {
			return e.Clone(), nil
		}
		if nil != proof {
			proof.AddStep(proofcase.RuleExpand, e.Name, parsed.String(), "")
		}

		inProgress[e.Name] = struct{}{}
		expanded, err := ex.expand(parsed, depth+1, inProgress, binders, proof)
		delete(inProgress, e.Name)
		if nil != err {
			return nil, err
		}
		return expanded, nil

	case *expression.Abstraction:
		body, err := ex.expand(e.Body, depth, inProgress, append(binders, e.Parameter), proof)
		if nil != err {
			return nil, err
		}
		ab := &expression.Abstraction{
			Parameter: e.Parameter,
			Body:      body,
		}
		return ab, nil

	case *expression.Application:
		fn, err := ex.expand(e.Function, depth, inProgress, binders, proof)
		if nil != err {
			return nil, err
		}
		arg, err := ex.expand(e.Argument, depth, inProgress, binders, proof)
		if nil != err {
			return nil, err
		}
		app := &expression.Application{
			Function: fn,
			Argument: arg,
		}
		return app, nil
	}
	return expr.Clone(), nil
}

// a definition with a free variable equal to an enclosing binder
// cannot be spliced in without changing its meaning
func captures(definition expression.Expression, binders []string) bool {
	if 0 == len(binders) {
		return false
	}
	for _, free := range expression.FreeVariables(definition) {
		for _, binder := range binders {
			if free == binder {
				return true
			}
		}
	}
	return false
}
