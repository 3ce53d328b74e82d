// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package expression - the abstract syntax of lambda calculus terms
//
// four node kinds:
//   Variable    - a name introduced by an enclosing binder, or a free
//                 single letter standing for an arbitrary term
//   Abstraction - λparameter.body
//   Application - function applied to argument, left associative
//   Identifier  - a free name referring to a registered morphism or an
//                 opaque constant
//
// terms are immutable once built, rewriting always produces new nodes
package expression

// Expression - a node in a lambda calculus term
type Expression interface {
	// String - canonical notation with minimal parentheses
	String() string

	// CanonicalForm - alpha invariant rendering, binder names erased
	// and bound variables replaced by binder distance
	CanonicalForm() string

	// Clone - deep copy of the term
	Clone() Expression
}

// Variable - a bound or free variable occurrence
type Variable struct {
	Name string
}

// Abstraction - a function of one parameter
type Abstraction struct {
	Parameter string
	Body      Expression
}

// Application - function applied to argument
type Application struct {
	Function Expression
	Argument Expression
}

// Identifier - a reference to a named definition
type Identifier struct {
	Name string
}

// String - just the name
func (v *Variable) String() string {
	return v.Name
}

// String - λ binder form, nested bodies unparenthesised
func (a *Abstraction) String() string {
	return "λ" + a.Parameter + "." + a.Body.String()
}

// String - juxtaposition, parenthesising the function when it is an
// abstraction and the argument when it is not atomic
func (a *Application) String() string {
	fn := a.Function.String()
	if _, ok := a.Function.(*Abstraction); ok {
		fn = "(" + fn + ")"
	}
	arg := a.Argument.String()
	switch a.Argument.(type) {
	case *Application, *Abstraction:
		arg = "(" + arg + ")"
	}
	return fn + " " + arg
}

// String - just the name
func (i *Identifier) String() string {
	return i.Name
}

// Clone - copy a variable
func (v *Variable) Clone() Expression {
	return &Variable{Name: v.Name}
}

// Clone - copy an abstraction and its body
func (a *Abstraction) Clone() Expression {
	return &Abstraction{
		Parameter: a.Parameter,
		Body:      a.Body.Clone(),
	}
}

// Clone - copy an application and both branches
func (a *Application) Clone() Expression {
	return &Application{
		Function: a.Function.Clone(),
		Argument: a.Argument.Clone(),
	}
}

// Clone - copy an identifier
func (i *Identifier) Clone() Expression {
	return &Identifier{Name: i.Name}
}
