// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net/rpc"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/counter"
	"github.com/lambda-foundation/lambdad/mode"
	"github.com/lambda-foundation/lambdad/node"
	"github.com/lambda-foundation/lambdad/rpc/info"
	"github.com/lambda-foundation/lambdad/rpc/morphisms"
	"github.com/lambda-foundation/lambdad/rpc/verify"
)

// Create - register all services served over the RPC port
//
// client visible names: Verify.Submit, Morphism.Get, Morphism.List,
// Node.Info
func Create(log *logger.L, version string, rpcCount *counter.Counter, n *node.Node) *rpc.Server {

	start := time.Now().UTC()

	server := rpc.NewServer()

	_ = server.Register(verify.New(log, mode.Is, n))
	_ = server.Register(morphisms.New(log, n.Registry()))
	_ = server.Register(info.New(log, start, version, rpcCount, n.Status))

	return server
}
