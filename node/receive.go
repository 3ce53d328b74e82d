// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"github.com/lambda-foundation/lambdad/expression"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/parser"
	"github.com/lambda-foundation/lambdad/transport"
)

// receive - the transport handler, one call per delivered packet
//
// directed sends expect the returned packet as their reply, broadcast
// deliveries ignore it
func (n *Node) receive(packet transport.Packet) *transport.Packet {

	log := n.log

	switch packet.Tag {

	case transport.TagVerifyRequest:
		var request transport.VerifyRequest
		if err := packet.Decode(&request); nil != err {
			log.Warnf("undecodable verify request: %s", err)
			return nil
		}
		if request.Sender == n.id {
			return nil // own broadcast echoed back
		}
		n.answerRequest(&request)
		return nil

	case transport.TagVerifyVote:
		var incoming transport.VerifyVote
		if err := packet.Decode(&incoming); nil != err {
			log.Warnf("undecodable vote: %s", err)
			return nil
		}
		if nil == incoming.Vote {
			return nil
		}
		if !n.deliverVote(incoming.Vote) {
			log.Debugf("request: %s  late vote from: %s", incoming.RequestID, incoming.Vote.NodeID)
		}
		return nil

	case transport.TagIdentity:
		var identity transport.Identity
		if err := packet.Decode(&identity); nil != err {
			return nil
		}
		log.Infof("peer: %s  version: %s", identity.NodeID, identity.Version)
		return nil

	case transport.TagPing:
		var ping transport.Ping
		if err := packet.Decode(&ping); nil != err {
			return nil
		}
		reply, err := transport.NewPong(n.id, ping.Nonce)
		if nil != err {
			return nil
		}
		return &reply

	case transport.TagPong:
		return nil

	case transport.TagMorphismAnnounce:
		var announce transport.MorphismAnnounce
		if err := packet.Decode(&announce); nil != err {
			log.Warnf("undecodable announcement: %s", err)
			return nil
		}
		n.handleAnnounce(&announce)
		return nil

	case transport.TagMorphismSyncRequest:
		var request transport.MorphismSyncRequest
		if err := packet.Decode(&request); nil != err {
			return nil
		}
		return n.serveSync(&request)

	default:
		log.Debugf("ignored packet: %q", packet.Tag)
		return nil
	}
}

// vote on a request another node originated and send the verdict back
//
// the reply goes directly to the requester, with a broadcast fallback
// when no direct route exists
func (n *Node) answerRequest(request *transport.VerifyRequest) {

	log := n.log
	log.Infof("request: %s  voting for: %s", request.RequestID, request.Sender)

	expr, err := parser.Parse(request.Expression)
	if nil != err {
		// unparseable requests never reach consensus at the origin
		log.Debugf("request: %s  unparseable: %s", request.RequestID, err)
		return
	}
	normalised := expression.Normalise(request.Expression)

	v, _, _, err := n.localVote(n.ctx, request.RequestID, expr, normalised)
	if nil != err {
		log.Warnf("request: %s  vote abandoned: %s", request.RequestID, err)
		return
	}

	packet, err := transport.NewVerifyVote(n.id, request.RequestID, v)
	if nil != err {
		log.Errorf("request: %s  vote packing failed: %s", request.RequestID, err)
		return
	}

	if _, err := n.transport.SendToPeer(request.Sender, packet); nil != err {
		log.Debugf("request: %s  direct reply failed: %s", request.RequestID, err)
		if err := n.transport.Broadcast(packet); nil != err {
			log.Warnf("request: %s  vote undeliverable: %s", request.RequestID, err)
		}
	}
}

// pull an announced record this node does not hold yet
func (n *Node) handleAnnounce(announce *transport.MorphismAnnounce) {

	log := n.log

	if announce.Sender == n.id || n.registry.Has(announce.Digest) {
		return
	}
	log.Infof("announced: %s (%s) by: %s", announce.Name, announce.Digest, announce.Sender)

	m := n.syncByStorageID(announce.Sender, announce.StorageID)
	if nil == m {
		return
	}
	if m.Digest != announce.Digest {
		log.Warnf("announce digest mismatch from: %s", announce.Sender)
		return
	}
	n.registry.Add(m)
}

// answer a sync request from whichever index the peer used
func (n *Node) serveSync(request *transport.MorphismSyncRequest) *transport.Packet {

	var m *morphism.Morphism

	switch {
	case nil != request.Digest:
		m = n.registry.Get(*request.Digest)
	case "" != request.StorageID && nil != n.store:
		found, err := n.store.Retrieve(request.StorageID)
		if nil == err {
			m = found
		}
	}

	reply, err := transport.NewMorphismSyncResponse(n.id, m)
	if nil != err {
		return nil
	}
	return &reply
}

func (n *Node) syncByDigest(peer string, digest morphism.Digest) *morphism.Morphism {
	packet, err := transport.NewMorphismSyncByDigest(n.id, digest)
	if nil != err {
		return nil
	}
	return n.requestSync(peer, packet)
}

func (n *Node) syncByStorageID(peer string, storageID string) *morphism.Morphism {
	packet, err := transport.NewMorphismSyncRequest(n.id, storageID)
	if nil != err {
		return nil
	}
	return n.requestSync(peer, packet)
}

func (n *Node) requestSync(peer string, packet transport.Packet) *morphism.Morphism {

	log := n.log

	reply, err := n.transport.SendToPeer(peer, packet)
	if nil != err {
		log.Warnf("sync from: %s failed: %s", peer, err)
		return nil
	}
	if nil == reply || transport.TagMorphismSyncResponse != reply.Tag {
		return nil
	}

	var response transport.MorphismSyncResponse
	if err := reply.Decode(&response); nil != err {
		log.Warnf("sync from: %s undecodable: %s", peer, err)
		return nil
	}
	return response.Morphism
}
