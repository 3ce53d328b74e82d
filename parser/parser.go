// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package parser - turn lambda calculus source text into an
// expression tree
//
// grammar:
//   term        = abstraction | application
//   abstraction = binder name “.” term
//   application = atom { atom } [ abstraction ]
//   atom        = name | “(” term “)”
//
// the binder is “λ” or “\”, application is left associative and a
// trailing abstraction extends to the end of the term
package parser

import (
	"unicode"
	"unicode/utf8"

	"github.com/lambda-foundation/lambdad/expression"
	"github.com/lambda-foundation/lambdad/fault"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenBinder
	tokenDot
	tokenLeftParen
	tokenRightParen
	tokenName
)

type token struct {
	kind tokenKind
	text string
}

type parser struct {
	tokens  []token
	index   int
	binders []string
}

// Parse - parse source text into an expression tree
//
// names bound by an enclosing binder become variables, free single
// letter names are variables standing for arbitrary terms and every
// other free name is an identifier referring to a definition
func Parse(text string) (expression.Expression, error) {

	tokens, err := tokenise(text)
	if nil != err {
		return nil, err
	}
	if tokenEOF == tokens[0].kind {
		return nil, fault.EmptyExpression
	}

	p := &parser{
		tokens: tokens,
	}
	expr, err := p.parseTerm()
	if nil != err {
		return nil, err
	}

	switch p.peek().kind {
	case tokenEOF:
		return expr, nil
	case tokenRightParen:
		return nil, fault.UnbalancedParentheses
	default:
		return nil, fault.UnexpectedToken
	}
}

func tokenise(text string) ([]token, error) {

	runes := []rune(text)
	tokens := make([]token, 0, len(runes)/2+1)

	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i += 1
		case 'λ' == r || '\\' == r:
			tokens = append(tokens, token{kind: tokenBinder})
			i += 1
		case '.' == r:
			tokens = append(tokens, token{kind: tokenDot})
			i += 1
		case '(' == r:
			tokens = append(tokens, token{kind: tokenLeftParen})
			i += 1
		case ')' == r:
			tokens = append(tokens, token{kind: tokenRightParen})
			i += 1
		case isNameStart(r):
			j := i + 1
			for j < len(runes) && isNameRune(runes[j]) {
				j += 1
			}
			tokens = append(tokens, token{kind: tokenName, text: string(runes[i:j])})
			i = j
		default:
			return nil, fault.UnexpectedToken
		}
	}
	return append(tokens, token{kind: tokenEOF}), nil
}

// “λ” is a letter to unicode so it must stay excluded from names
func isNameStart(r rune) bool {
	return 'λ' != r && (unicode.IsLetter(r) || '_' == r)
}

func isNameRune(r rune) bool {
	return 'λ' != r && (unicode.IsLetter(r) || unicode.IsDigit(r) || '_' == r || '\'' == r)
}

func (p *parser) peek() token {
	return p.tokens[p.index]
}

func (p *parser) next() token {
	t := p.tokens[p.index]
	if tokenEOF != t.kind {
		p.index += 1
	}
	return t
}

func (p *parser) parseTerm() (expression.Expression, error) {
	if tokenBinder == p.peek().kind {
		return p.parseAbstraction()
	}
	return p.parseApplication()
}

func (p *parser) parseAbstraction() (expression.Expression, error) {

	p.next() // the binder

	t := p.next()
	if tokenName != t.kind {
		return nil, fault.MissingBinderParameter
	}
	parameter := t.text

	if tokenDot != p.next().kind {
		return nil, fault.MissingAbstractionBody
	}
	if tokenEOF == p.peek().kind {
		return nil, fault.MissingAbstractionBody
	}

	p.binders = append(p.binders, parameter)
	body, err := p.parseTerm()
	p.binders = p.binders[:len(p.binders)-1]
	if nil != err {
		return nil, err
	}

	ab := &expression.Abstraction{
		Parameter: parameter,
		Body:      body,
	}
	return ab, nil
}

func (p *parser) parseApplication() (expression.Expression, error) {

	expr, err := p.parseAtom()
	if nil != err {
		return nil, err
	}

loop:
	for {
		switch p.peek().kind {

		case tokenName, tokenLeftParen:
			argument, err := p.parseAtom()
			if nil != err {
				return nil, err
			}
			expr = &expression.Application{
				Function: expr,
				Argument: argument,
			}

		case tokenBinder:
			// a trailing abstraction swallows the rest of the term
			argument, err := p.parseAbstraction()
			if nil != err {
				return nil, err
			}
			expr = &expression.Application{
				Function: expr,
				Argument: argument,
			}
			break loop

		default:
			break loop
		}
	}
	return expr, nil
}

func (p *parser) parseAtom() (expression.Expression, error) {

	t := p.next()
	switch t.kind {

	case tokenName:
		return p.classify(t.text), nil

	case tokenLeftParen:
		if tokenRightParen == p.peek().kind {
			return nil, fault.EmptyExpression
		}
		expr, err := p.parseTerm()
		if nil != err {
			return nil, err
		}
		if tokenRightParen != p.next().kind {
			return nil, fault.UnbalancedParentheses
		}
		return expr, nil

	case tokenDot:
		return nil, fault.DanglingBodySeparator

	case tokenRightParen:
		return nil, fault.UnbalancedParentheses

	case tokenEOF:
		return nil, fault.UnexpectedEndOfExpression

	default:
		return nil, fault.UnexpectedToken
	}
}

func (p *parser) classify(name string) expression.Expression {
	for i := len(p.binders) - 1; i >= 0; i -= 1 {
		if p.binders[i] == name {
			return &expression.Variable{Name: name}
		}
	}
	if isFreeVariableName(name) {
		return &expression.Variable{Name: name}
	}
	return &expression.Identifier{Name: name}
}

// a free single lowercase letter stands for an arbitrary term
func isFreeVariableName(name string) bool {
	r, size := utf8.DecodeRuneInString(name)
	return len(name) == size && unicode.IsLower(r)
}
