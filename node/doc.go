// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package node - one verifying member of the network
//
// a node composes the transport, the store and the analysis engines
// into the single verification entry point: parse, vote locally,
// collect peer votes, settle, then register or reject
//
// the node also answers the peer side of the protocol: it votes on
// requests broadcast by others and serves record synchronisation
package node
