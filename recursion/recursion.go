// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package recursion - recognise terms that may loop under reduction
//
// a positive result only changes the routing of a verification, such
// terms are compared structurally instead of being reduced, it is
// never a rejection by itself
package recursion

import (
	"regexp"
	"strings"
	"sync"

	"github.com/lambda-foundation/lambdad/expression"
)

// combinator names every node recognises from the start
var seededNames = []string{
	"Y", "FIX", "REC", "OMEGA", "THETA", "Z",
}

// pairs of adjacent tokens inside parentheses, compared for equality
// as the textual fallback has no syntax tree to inspect
var pairedTokens = regexp.MustCompile(`\(\s*([^\s().\\]+)\s+([^\s().\\]+)\s*\)`)

// Detector - recursive term recognition with a learnt name set
type Detector struct {
	sync.RWMutex
	known map[string]struct{}
}

// NewDetector - detector primed with the standard combinator names
func NewDetector() *Detector {
	d := &Detector{
		known: make(map[string]struct{}),
	}
	for _, name := range seededNames {
		d.known[name] = struct{}{}
	}
	return d
}

// Learn - mark a name as recursive
//
// the registry feeds this as definitions are flagged
func (d *Detector) Learn(name string) {
	if "" == name {
		return
	}
	d.Lock()
	d.known[name] = struct{}{}
	d.Unlock()
}

// Knows - check whether a name was seeded or learnt
func (d *Detector) Knows(name string) bool {
	d.RLock()
	_, ok := d.known[name]
	d.RUnlock()
	return ok
}

// IsRecursive - decide whether a term may loop under reduction
//
// with a syntax tree: self application of a binder parameter or a
// free identifier with a known recursive name, without one: a known
// name or a repeated token pair in the raw text
func (d *Detector) IsRecursive(expr expression.Expression, text string) bool {
	if nil != expr {
		if selfApplies(expr) {
			return true
		}
		for _, name := range expression.FreeIdentifiers(expr) {
			if d.Knows(name) {
				return true
			}
		}
		return false
	}
	return d.textRecursive(text)
}

// scan every abstraction for an application of its own parameter to
// itself, respecting shadowing by inner binders
func selfApplies(expr expression.Expression) bool {
	switch e := expr.(type) {
	case *expression.Abstraction:
		if parameterSelfApplied(e.Body, e.Parameter) {
			return true
		}
		return selfApplies(e.Body)
	case *expression.Application:
		return selfApplies(e.Function) || selfApplies(e.Argument)
	default:
		return false
	}
}

func parameterSelfApplied(expr expression.Expression, name string) bool {
	switch e := expr.(type) {
	case *expression.Abstraction:
		if e.Parameter == name {
			return false // shadowed from here down
		}
		return parameterSelfApplied(e.Body, name)
	case *expression.Application:
		if fn, ok := e.Function.(*expression.Variable); ok && fn.Name == name {
			if arg, ok := e.Argument.(*expression.Variable); ok && arg.Name == name {
				return true
			}
		}
		return parameterSelfApplied(e.Function, name) || parameterSelfApplied(e.Argument, name)
	default:
		return false
	}
}

func (d *Detector) textRecursive(text string) bool {
	for _, token := range strings.FieldsFunc(text, func(r rune) bool {
		return ' ' == r || '(' == r || ')' == r || '.' == r || 'λ' == r || '\\' == r || '\t' == r || '\n' == r
	}) {
		if d.Knows(token) {
			return true
		}
	}

	for _, match := range pairedTokens.FindAllStringSubmatch(text, -1) {
		if match[1] == match[2] {
			return true
		}
	}
	return false
}
