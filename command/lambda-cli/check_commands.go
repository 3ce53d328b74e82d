// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"strings"

	"github.com/lambda-foundation/lambdad/fault"
)

var (
	ErrRequiredExpression = fault.InvalidError("expression is required")
)

// expression is required
func checkExpression(expression string) (string, error) {
	expression = strings.TrimSpace(expression)
	if "" == expression {
		return "", ErrRequiredExpression
	}

	return expression, nil
}
