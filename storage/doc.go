// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - the persistent record store
//
// maintains a single LevelDB database split into pools by a one byte
// key prefix:
//
//	M → packed morphism records keyed by content id
//	N → name index, morphism name → content id
//	Z → test data
//
// content ids are CIDv1 strings using the raw multicodec and a
// sha2-256 multihash, so a record's id can be recomputed from its
// bytes by any other store
package storage
