// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package structural - equality of terms up to binder renaming
package structural

import (
	"github.com/lambda-foundation/lambdad/expression"
	"github.com/lambda-foundation/lambdad/proofcase"
)

// Equivalent - alpha equivalence
//
// both terms are walked together with paired binder environments,
// bound variables match on binder position, free variables and
// identifiers match on name
func Equivalent(a expression.Expression, b expression.Expression) bool {
	return equivalent(a, b, nil, nil)
}

// Prove - alpha equivalence with recorded evidence
func Prove(a expression.Expression, b expression.Expression) (*proofcase.Proof, bool) {
	if !Equivalent(a, b) {
		return nil, false
	}

	proof := proofcase.New(proofcase.MethodStructural)
	if a.String() != b.String() {
		proof.AddStep(proofcase.RuleAlpha, a.String(), b.String(), "binder renaming")
	}
	proof.Finalise(b.String(), "")
	return proof, true
}

func equivalent(a expression.Expression, b expression.Expression, aBinders []string, bBinders []string) bool {

	switch ea := a.(type) {

	case *expression.Variable:
		eb, ok := b.(*expression.Variable)
		if !ok {
			return false
		}
		ai, aBound := binderIndex(aBinders, ea.Name)
		bi, bBound := binderIndex(bBinders, eb.Name)
		if aBound != bBound {
			return false
		}
		if aBound {
			return ai == bi
		}
		return ea.Name == eb.Name

	case *expression.Abstraction:
		eb, ok := b.(*expression.Abstraction)
		if !ok {
			return false
		}
		return equivalent(ea.Body, eb.Body,
			append(aBinders, ea.Parameter),
			append(bBinders, eb.Parameter))

	case *expression.Application:
		eb, ok := b.(*expression.Application)
		if !ok {
			return false
		}
		return equivalent(ea.Function, eb.Function, aBinders, bBinders) &&
			equivalent(ea.Argument, eb.Argument, aBinders, bBinders)

	case *expression.Identifier:
		eb, ok := b.(*expression.Identifier)
		return ok && ea.Name == eb.Name
	}
	return false
}

// innermost matching binder position, counted from the inside
func binderIndex(binders []string, name string) (int, bool) {
	for i := len(binders) - 1; i >= 0; i -= 1 {
		if binders[i] == name {
			return len(binders) - 1 - i, true
		}
	}
	return 0, false
}
