// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package purity_test

import (
	"math"
	"testing"

	"github.com/lambda-foundation/lambdad/purity"
)

func TestCheck(t *testing.T) {

	testData := []struct {
		text     string
		rules    []string
		score    float64
	}{
		{
			text:  "λx.x",
			rules: nil,
			score: 1.0,
		},
		{
			text:  "λf.λx.f (f x)",
			rules: nil,
			score: 1.0,
		},
		{
			text:  "λx.print x",
			rules: []string{"side-effect"},
			score: 0.8,
		},
		{
			text:  "x++",
			rules: []string{"mutation-operator"},
			score: 0.8,
		},
		{
			text:  "λs.while s do s",
			rules: []string{"loop"},
			score: 0.8,
		},
		{
			text:  "λe.try e catch e",
			rules: []string{"exception-control"},
			score: 0.8,
		},
		{
			text:  "λk.await k",
			rules: []string{"suspension"},
			score: 0.8,
		},
		{
			text:  "let y = 5 in y",
			rules: []string{"mutable-binding", "assignment", "missing-abstraction"},
			score: 0.4,
		},
		{
			text:  "λx.x := f x",
			rules: []string{"mutable-binding"},
			score: 0.8,
		},
		{
			text:  "compose f g x",
			rules: []string{"missing-abstraction"},
			score: 0.8,
		},
		{
			// repeats of one marker still count once
			text:  "λx.print (print (print x))",
			rules: []string{"side-effect"},
			score: 0.8,
		},
		{
			// comparison and arrow are not assignment
			text:  "λx.EQ x x => x == x",
			rules: nil,
			score: 1.0,
		},
		{
			text:  "var sum = 0; for x do sum += print(await read(try x))",
			rules: []string{"mutable-binding", "assignment", "loop", "side-effect", "exception-control", "suspension", "mutation-operator", "missing-abstraction"},
			score: 0.0,
		},
	}

	for i, item := range testData {
		report := purity.Check(item.text)

		names := make([]string, 0, len(report.Violations))
		for _, v := range report.Violations {
			names = append(names, v.Rule)
		}
		if !sameRules(names, item.rules) {
			t.Errorf("%d: check(%q) rules: %v  expected: %v", i, item.text, names, item.rules)
		}

		if math.Abs(report.Score-item.score) > 0.0001 {
			t.Errorf("%d: check(%q) score: %f  expected: %f", i, item.text, report.Score, item.score)
		}

		if report.Pure != (0 == len(item.rules)) {
			t.Errorf("%d: check(%q) pure: %v", i, item.text, report.Pure)
		}

		for _, v := range report.Violations {
			if "" == v.Suggestion {
				t.Errorf("%d: violation %q has no suggestion", i, v.Rule)
			}
		}
	}
}

func sameRules(actual []string, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, name := range expected {
		if actual[i] != name {
			return false
		}
	}
	return true
}
