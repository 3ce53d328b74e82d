// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package info - RPC service reporting the state of the running node
package info

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/counter"
	"github.com/lambda-foundation/lambdad/mode"
	"github.com/lambda-foundation/lambdad/node"
	"github.com/lambda-foundation/lambdad/rpc/ratelimit"
)

const (
	rateLimitInfo = 200
	rateBurstInfo = 100
)

// StatusFunc - supplies the current node information
type StatusFunc func() node.Info

// Node - type for RPC calls
type Node struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Start   time.Time
	Version string
	Counter *counter.Counter
	Status  StatusFunc
}

// New - create the node information service
func New(log *logger.L, start time.Time, version string, rpcCounter *counter.Counter, status StatusFunc) *Node {
	return &Node{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitInfo, rateBurstInfo),
		Start:   start,
		Version: version,
		Counter: rpcCounter,
		Status:  status,
	}
}

// ---

// InfoArguments - empty arguments for info request
type InfoArguments struct{}

// InfoReply - results from info request
type InfoReply struct {
	Node          string `json:"node"`
	Network       string `json:"network"`
	Mode          string `json:"mode"`
	Morphisms     int    `json:"morphisms"`
	Verifications uint64 `json:"verifications"`
	RPCs          uint64 `json:"rpcs"`
	Peers         int    `json:"peers"`
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
}

// Info - return some information about this node
// only enough for clients to determine node state
// for more detail use the HTTPS GET pages
func (n *Node) Info(_ *InfoArguments, reply *InfoReply) error {

	if err := ratelimit.Limit(n.Limiter); nil != err {
		return err
	}

	info := n.Status()

	reply.Node = info.Name
	reply.Network = info.Network
	reply.Mode = mode.String()
	reply.Morphisms = info.Morphisms
	reply.Verifications = info.Verifications
	reply.RPCs = n.Counter.Uint64()
	reply.Peers = info.Peers
	reply.Version = n.Version
	reply.Uptime = time.Since(n.Start).String()

	return nil
}
