// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/lambda-foundation/lambdad/fault"
)

// test that the classification predicates pick out exactly their own class
func TestClassification(t *testing.T) {

	type predicates struct {
		exists   bool
		invalid  bool
		length   bool
		notFound bool
		process  bool
		record   bool
	}

	testData := []struct {
		err      error
		expected predicates
	}{
		{fault.MorphismAlreadyRegistered, predicates{exists: true}},
		{fault.CertificateFileExists, predicates{exists: true}},
		{fault.EmptyExpression, predicates{invalid: true}},
		{fault.UnbalancedParentheses, predicates{invalid: true}},
		{fault.InvalidConfidence, predicates{invalid: true}},
		{fault.DigestLengthIsInvalid, predicates{length: true}},
		{fault.MorphismNotFound, predicates{notFound: true}},
		{fault.UnknownPeer, predicates{notFound: true}},
		{fault.NotInitialised, predicates{process: true}},
		{fault.ReductionLimitExceeded, predicates{process: true}},
		{fault.RateLimiting, predicates{process: true}},
		{fault.NotADigest, predicates{record: true}},
		{fault.CannotDecodeMorphism, predicates{record: true}},
	}

	for i, item := range testData {
		actual := predicates{
			exists:   fault.IsErrExists(item.err),
			invalid:  fault.IsErrInvalid(item.err),
			length:   fault.IsErrLength(item.err),
			notFound: fault.IsErrNotFound(item.err),
			process:  fault.IsErrProcess(item.err),
			record:   fault.IsErrRecord(item.err),
		}
		if actual != item.expected {
			t.Errorf("%d: error: %q  classified as: %+v  expected: %+v", i, item.err, actual, item.expected)
		}
	}
}

// check that the error text survives the class wrapper
func TestErrorText(t *testing.T) {
	if fault.MorphismNotFound.Error() != "morphism not found" {
		t.Errorf("unexpected error text: %q", fault.MorphismNotFound.Error())
	}
	if fault.AlreadyInitialised.Error() != "already initialised" {
		t.Errorf("unexpected error text: %q", fault.AlreadyInitialised.Error())
	}
}
