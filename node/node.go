// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	cache "github.com/patrickmn/go-cache"

	"github.com/lambda-foundation/lambdad/background"
	"github.com/lambda-foundation/lambdad/consensus"
	"github.com/lambda-foundation/lambdad/counter"
	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/genesis"
	"github.com/lambda-foundation/lambdad/hypothesis"
	"github.com/lambda-foundation/lambdad/network"
	"github.com/lambda-foundation/lambdad/recursion"
	"github.com/lambda-foundation/lambdad/registry"
	"github.com/lambda-foundation/lambdad/semantic"
	"github.com/lambda-foundation/lambdad/storage"
	"github.com/lambda-foundation/lambdad/transport"
)

const loggerCategory = "node"

// open vote collections are dropped once no request can still be
// waiting on them
const (
	collectionExpiry  = time.Minute
	collectionCleanup = 2 * time.Minute
)

// Configuration - tunables for one node
//
// zero values select the documented defaults
type Configuration struct {
	Name                string
	Network             string
	Threshold           float64
	CollectTimeout      time.Duration
	ReductionBudget     int
	HypothesisThreshold float64
	Version             string
}

// Node - one verifying member of the network
type Node struct {
	sync.RWMutex

	log            *logger.L
	id             string
	networkName    string
	version        string
	threshold      float64
	collectTimeout time.Duration

	transport transport.Transport
	store     storage.Store
	registry  *registry.Registry
	detector  *recursion.Detector
	semantic  *semantic.Engine
	explorer  *hypothesis.Engine

	collections   *cache.Cache // request id → open vote channel
	sequence      counter.Counter
	verifications counter.Counter
	start         time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	processes *background.T
}

// Info - a point in time view of a running node
type Info struct {
	Name          string `json:"name"`
	Network       string `json:"network"`
	Version       string `json:"version"`
	Morphisms     int    `json:"morphisms"`
	Verifications uint64 `json:"verifications"`
	Peers         int    `json:"peers"`
	Uptime        string `json:"uptime"`
}

// New - assemble and start a node
//
// the store may be nil for a memory only node, the transport must not
// be, stored records are reloaded and the genesis base is seeded
// before the node starts answering peers
func New(configuration Configuration, tport transport.Transport, store storage.Store) (*Node, error) {

	if "" == configuration.Name {
		return nil, fault.InvalidNodeName
	}
	if !network.Valid(configuration.Network) {
		return nil, fault.InvalidNetwork
	}
	if nil == tport {
		return nil, fault.TransportIsNotSet
	}

	threshold := configuration.Threshold
	if threshold <= 0.0 {
		threshold = consensus.DefaultThreshold
	}
	collectTimeout := configuration.CollectTimeout
	if collectTimeout <= 0 {
		collectTimeout = consensus.DefaultCollectTimeout
	}

	detector := recursion.NewDetector()

	var reg *registry.Registry
	if nil == store {
		reg = registry.New(nil, detector)
	} else {
		reg = registry.New(store, detector)
	}

	log := logger.New(loggerCategory)

	// previously stored records come back before any announcements
	// can fire
	if nil != store {
		stored, err := store.ListLocal()
		if nil != err {
			log.Criticalf("stored records unreadable: %s", err)
			return nil, err
		}
		for _, m := range stored {
			reg.Add(m)
		}
		log.Infof("reloaded %d stored records", len(stored))
	}

	seeded, err := genesis.Load(reg, configuration.Network)
	if nil != err {
		return nil, err
	}
	log.Infof("genesis seeded %d records", seeded)

	reg.EnableAnnouncements()

	ctx, cancel := context.WithCancel(context.Background())

	n := &Node{
		log:            log,
		id:             configuration.Name,
		networkName:    configuration.Network,
		version:        configuration.Version,
		threshold:      threshold,
		collectTimeout: collectTimeout,
		transport:      tport,
		store:          store,
		registry:       reg,
		detector:       detector,
		semantic:       semantic.NewEngine(reg, detector, configuration.ReductionBudget),
		explorer:       hypothesis.NewEngine(configuration.HypothesisThreshold),
		collections:    cache.New(collectionExpiry, collectionCleanup),
		start:          time.Now().UTC(),
		ctx:            ctx,
		cancel:         cancel,
	}

	tport.OnMessage(n.receive)

	log.Info("starting…")
	n.processes = background.Start(background.Processes{
		&announcer{node: n},
	}, nil)

	// best effort introduction, peers that are down catch up later
	if packet, err := transport.NewIdentity(n.id, n.id, n.version); nil == err {
		if err := n.transport.Broadcast(packet); nil != err {
			log.Warnf("identity broadcast failed: %s", err)
		}
	}

	return n, nil
}

// Finalise - stop the node
//
// in-flight reductions are abandoned, open collections settle with
// whatever votes they already hold
func (n *Node) Finalise() {
	n.log.Info("shutting down…")
	n.cancel()
	n.processes.Stop()
	n.log.Flush()
}

// ID - the node name used on the wire
func (n *Node) ID() string {
	return n.id
}

// Registry - the canonical store this node maintains
func (n *Node) Registry() *registry.Registry {
	return n.registry
}

// Status - snapshot for operators
func (n *Node) Status() Info {
	return Info{
		Name:          n.id,
		Network:       n.networkName,
		Version:       n.version,
		Morphisms:     n.registry.Size(),
		Verifications: n.verifications.Uint64(),
		Peers:         n.transport.PeerCount(),
		Uptime:        time.Since(n.start).Round(time.Second).String(),
	}
}

// next request id, unique for the lifetime of this node
func (n *Node) nextRequestID() string {
	return fmt.Sprintf("%s:%d", n.id, n.sequence.Increment())
}
