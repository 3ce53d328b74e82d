// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package purity - reject submissions that smuggle effects
//
// source text is scanned against a fixed rule table, each distinct
// violated rule costs one fifth of the score, the text is never
// executed
package purity

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// scoring
const (
	penalty = 0.2

	// shorter submissions without a binder are taken as fragments
	minimalLength = 8
)

// Violation - one impurity class found in a submission
type Violation struct {
	Rule       string `json:"rule"`
	Detail     string `json:"detail"`
	Suggestion string `json:"suggestion"`
}

// Report - the purity verdict on a submission
type Report struct {
	Pure       bool        `json:"pure"`
	Score      float64     `json:"score"`
	Violations []Violation `json:"violations,omitempty"`
}

type rule struct {
	name       string
	detect     func(string) bool
	detail     string
	suggestion string
}

var (
	mutableBinding = regexp.MustCompile(`\b(let|var)\b`)
	loopKeyword    = regexp.MustCompile(`\b(for|while|do)\b`)
	effectCall     = regexp.MustCompile(`(?i)\b(print|console|log|io|read|write|random)\b`)
	exceptionWord  = regexp.MustCompile(`\b(throw|try|catch|raise|except)\b`)
	suspensionWord = regexp.MustCompile(`\b(await|async|yield|go|chan|thread)\b`)
)

var rules = []rule{
	{
		name: "mutable-binding",
		detect: func(text string) bool {
			return mutableBinding.MatchString(text) || strings.Contains(text, ":=")
		},
		detail:     "introduces a rebindable name",
		suggestion: "bind values by application instead of let or var",
	},
	{
		name:       "assignment",
		detect:     hasAssignment,
		detail:     "overwrites an existing binding",
		suggestion: "pass the new value through a parameter instead",
	},
	{
		name: "loop",
		detect: func(text string) bool {
			return loopKeyword.MatchString(text)
		},
		detail:     "iterates by statement",
		suggestion: "express repetition with a fixed point combinator",
	},
	{
		name: "side-effect",
		detect: func(text string) bool {
			return effectCall.MatchString(text)
		},
		detail:     "calls into the outside world",
		suggestion: "return the value instead of performing input or output",
	},
	{
		name: "exception-control",
		detect: func(text string) bool {
			return exceptionWord.MatchString(text)
		},
		detail:     "transfers control on failure",
		suggestion: "encode failure as an ordinary value such as a pair",
	},
	{
		name: "suspension",
		detect: func(text string) bool {
			return suspensionWord.MatchString(text)
		},
		detail:     "suspends or forks evaluation",
		suggestion: "submit the underlying function without scheduling",
	},
	{
		name: "mutation-operator",
		detect: func(text string) bool {
			for _, op := range []string{"++", "--", "+=", "-=", "*=", "/="} {
				if strings.Contains(text, op) {
					return true
				}
			}
			return false
		},
		detail:     "updates a value in place",
		suggestion: "derive a new value instead of updating in place",
	},
	{
		name: "missing-abstraction",
		detect: func(text string) bool {
			if utf8.RuneCountInString(strings.TrimSpace(text)) < minimalLength {
				return false
			}
			return !strings.ContainsRune(text, 'λ') && !strings.ContainsRune(text, '\\')
		},
		detail:     "no binder in a non trivial submission",
		suggestion: "wrap the computation in a λ binder",
	},
}

// Check - scan a submission against the rule table
func Check(text string) Report {

	violations := make([]Violation, 0, 4)
	for _, r := range rules {
		if r.detect(text) {
			violations = append(violations, Violation{
				Rule:       r.name,
				Detail:     r.detail,
				Suggestion: r.suggestion,
			})
		}
	}

	score := 1.0 - penalty*float64(len(violations))
	if score < 0.0 {
		score = 0.0
	}

	return Report{
		Pure:       0 == len(violations),
		Score:      score,
		Violations: violations,
	}
}

// a bare “=” that is not part of a comparison, an arrow or an
// operator already counted elsewhere
func hasAssignment(text string) bool {
	runes := []rune(text)
	for i, r := range runes {
		if '=' != r {
			continue
		}
		if i > 0 {
			switch runes[i-1] {
			case '=', '!', '<', '>', ':', '+', '-', '*', '/':
				continue
			}
		}
		if i+1 < len(runes) {
			switch runes[i+1] {
			case '=', '>':
				continue
			}
		}
		return true
	}
	return false
}
