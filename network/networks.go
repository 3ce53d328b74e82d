// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package network - names of the networks a node can join
package network

// names of all networks
const (
	Lambda  = "lambda"
	Testing = "testing"
	Local   = "local"
)

// Valid - validate a network name
func Valid(name string) bool {
	switch name {
	case Lambda, Testing, Local:
		return true
	default:
		return false
	}
}
