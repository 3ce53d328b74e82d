// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version - the lambdad release number
package version

// ensure that git has a tag: "vX.Y" corresponding to major and minor
const (
	Major   = "1"
	Minor   = "2"
	Version = Major + "." + Minor
)
