// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package reduction - normal order beta reduction
//
// the leftmost outermost redex is contracted first so that every
// normalising term reaches its normal form, a step budget keeps
// non-normalising terms from running away and the context allows a
// shutting down node to abandon work
package reduction

import (
	"context"

	"github.com/lambda-foundation/lambdad/expression"
	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/proofcase"
)

// limits
const (
	DefaultBudget = 1000
)

// Reducer - a reduction engine with a fixed step budget
type Reducer struct {
	budget int
}

// NewReducer - create a reducer, zero or negative selects the default
// budget
func NewReducer(budget int) *Reducer {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Reducer{
		budget: budget,
	}
}

// Reduce - reduce a term to normal form
//
// every contraction is recorded on the proof when one is supplied,
// exceeding the budget returns fault.ReductionLimitExceeded and a
// cancelled context returns its error, neither touches the input term
func (r *Reducer) Reduce(ctx context.Context, expr expression.Expression, proof *proofcase.Proof) (expression.Expression, error) {

	current := expr.Clone()

	for contractions := 0; ; contractions += 1 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		next, contracted := reduceOnce(current)
		if !contracted {
			return current, nil
		}
		if contractions >= r.budget {
			return nil, fault.ReductionLimitExceeded
		}
		if nil != proof {
			proof.AddStep(proofcase.RuleBeta, current.String(), next.String(), "")
		}
		current = next
	}
}

// one leftmost outermost contraction
//
// returned trees share unchanged branches with the input, nothing is
// ever modified in place so sharing is safe
func reduceOnce(expr expression.Expression) (expression.Expression, bool) {

	switch e := expr.(type) {

	case *expression.Application:
		if ab, ok := e.Function.(*expression.Abstraction); ok {
			return substitute(ab.Body, ab.Parameter, e.Argument), true
		}
		if fn, ok := reduceOnce(e.Function); ok {
			return &expression.Application{Function: fn, Argument: e.Argument}, true
		}
		if arg, ok := reduceOnce(e.Argument); ok {
			return &expression.Application{Function: e.Function, Argument: arg}, true
		}
		return expr, false

	case *expression.Abstraction:
		if body, ok := reduceOnce(e.Body); ok {
			return &expression.Abstraction{Parameter: e.Parameter, Body: body}, true
		}
		return expr, false

	default:
		return expr, false
	}
}

// substitute - body with name replaced by value
//
// binders equal to the substituted name shadow it, binders capturing
// a free variable of the value are renamed first
func substitute(body expression.Expression, name string, value expression.Expression) expression.Expression {

	switch e := body.(type) {

	case *expression.Variable:
		if e.Name == name {
			return value
		}
		return e

	case *expression.Identifier:
		return e

	case *expression.Application:
		app := &expression.Application{
			Function: substitute(e.Function, name, value),
			Argument: substitute(e.Argument, name, value),
		}
		return app

	case *expression.Abstraction:
		if e.Parameter == name {
			return e
		}
		parameter := e.Parameter
		inner := e.Body
		if freeIn(parameter, value) {
			parameter = freshName(e.Parameter, value, e.Body)
			inner = rename(inner, e.Parameter, parameter)
		}
		ab := &expression.Abstraction{
			Parameter: parameter,
			Body:      substitute(inner, name, value),
		}
		return ab
	}
	return body
}

// rename free occurrences of a variable
func rename(expr expression.Expression, from string, to string) expression.Expression {

	switch e := expr.(type) {

	case *expression.Variable:
		if e.Name == from {
			return &expression.Variable{Name: to}
		}
		return e

	case *expression.Abstraction:
		if e.Parameter == from {
			return e // bound from here down
		}
		ab := &expression.Abstraction{
			Parameter: e.Parameter,
			Body:      rename(e.Body, from, to),
		}
		return ab

	case *expression.Application:
		app := &expression.Application{
			Function: rename(e.Function, from, to),
			Argument: rename(e.Argument, from, to),
		}
		return app

	default:
		return expr
	}
}

func freeIn(name string, expr expression.Expression) bool {
	for _, free := range expression.FreeVariables(expr) {
		if free == name {
			return true
		}
	}
	return false
}

// prime the name until it clashes with nothing in sight
func freshName(base string, avoid ...expression.Expression) string {
	name := base + "'"
loop:
	for {
		for _, expr := range avoid {
			if freeIn(name, expr) {
				name += "'"
				continue loop
			}
		}
		return name
	}
}
