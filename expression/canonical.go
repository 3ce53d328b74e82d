// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package expression

import (
	"sort"
	"strconv"
	"strings"
)

// CanonicalForm - alpha invariant rendering
func (v *Variable) CanonicalForm() string {
	return Canonical(v)
}

// CanonicalForm - alpha invariant rendering
func (a *Abstraction) CanonicalForm() string {
	return Canonical(a)
}

// CanonicalForm - alpha invariant rendering
func (a *Application) CanonicalForm() string {
	return Canonical(a)
}

// CanonicalForm - alpha invariant rendering
func (i *Identifier) CanonicalForm() string {
	return Canonical(i)
}

// Canonical - render a term with binder names erased
//
// bound variables become their binder distance so that terms equal up
// to renaming produce identical text, free names are kept as they
// carry meaning of their own
func Canonical(expr Expression) string {
	s := &strings.Builder{}
	canonical(s, expr, nil)
	return s.String()
}

func canonical(s *strings.Builder, expr Expression, binders []string) {
	switch e := expr.(type) {

	case *Variable:
		for i := len(binders) - 1; i >= 0; i -= 1 {
			if binders[i] == e.Name {
				s.WriteString(strconv.Itoa(len(binders) - 1 - i))
				return
			}
		}
		s.WriteString(e.Name)

	case *Abstraction:
		s.WriteString("λ.")
		canonical(s, e.Body, append(binders, e.Parameter))

	case *Application:
		s.WriteByte('(')
		canonical(s, e.Function, binders)
		s.WriteByte(' ')
		canonical(s, e.Argument, binders)
		s.WriteByte(')')

	case *Identifier:
		s.WriteString(e.Name)
	}
}

// FreeIdentifiers - sorted unique names of all identifier nodes
//
// identifiers are free by construction, binders only capture variables
func FreeIdentifiers(expr Expression) []string {
	set := make(map[string]struct{})
	collectIdentifiers(expr, set)

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectIdentifiers(expr Expression, set map[string]struct{}) {
	switch e := expr.(type) {
	case *Abstraction:
		collectIdentifiers(e.Body, set)
	case *Application:
		collectIdentifiers(e.Function, set)
		collectIdentifiers(e.Argument, set)
	case *Identifier:
		set[e.Name] = struct{}{}
	}
}

// FreeVariables - sorted unique names of variables not captured by
// any enclosing binder
func FreeVariables(expr Expression) []string {
	set := make(map[string]struct{})
	collectFreeVariables(expr, make(map[string]int), set)

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectFreeVariables(expr Expression, bound map[string]int, set map[string]struct{}) {
	switch e := expr.(type) {
	case *Variable:
		if 0 == bound[e.Name] {
			set[e.Name] = struct{}{}
		}
	case *Abstraction:
		bound[e.Parameter] += 1
		collectFreeVariables(e.Body, bound, set)
		bound[e.Parameter] -= 1
	case *Application:
		collectFreeVariables(e.Function, bound, set)
		collectFreeVariables(e.Argument, bound, set)
	}
}
