// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"github.com/lambda-foundation/lambdad/messagebus"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/storage"
	"github.com/lambda-foundation/lambdad/transport"
)

// announcer - relays registry announcements from the bus to the peers
type announcer struct {
	node *Node
}

// Run - drain the broadcast queue until shutdown
func (a *announcer) Run(args interface{}, shutdown <-chan struct{}) {

	log := a.node.log
	log.Info("announcer: starting…")

	queue := messagebus.Bus.Broadcast.Chan(0)

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case item := <-queue:
			a.process(item)
		}
	}
	log.Info("announcer: shutting down…")
}

func (a *announcer) process(item messagebus.Message) {

	log := a.node.log

	switch item.Command {

	case "morphism":
		if 2 != len(item.Parameters) {
			log.Errorf("announcer: morphism with %d parameters", len(item.Parameters))
			return
		}
		packed := item.Parameters[1]
		m, err := morphism.Unpack(packed)
		if nil != err {
			log.Errorf("announcer: unpack: %s", err)
			return
		}
		// only announce records this node actually holds
		if !a.node.registry.Has(m.Digest) {
			return
		}
		packet, err := transport.NewMorphismAnnounce(a.node.id, m.Digest, m.Name, storage.ContentID(packed))
		if nil != err {
			log.Errorf("announcer: pack: %s", err)
			return
		}
		if err := a.node.transport.Broadcast(packet); nil != err {
			log.Warnf("announcer: broadcast: %s", err)
		} else {
			log.Debugf("announcer: announced: %s", m.Name)
		}

	default:
		log.Debugf("announcer: ignored: %q", item.Command)
	}
}
