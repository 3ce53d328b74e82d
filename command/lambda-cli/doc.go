// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// JSON RPC client for a lambdad node
//
// submit expressions for verification and query the lexicon
// e.g. to verify the identity function on a local node:
//
//	lambda-cli --connect=127.0.0.1:2130 submit -e 'λx.x'
package main
