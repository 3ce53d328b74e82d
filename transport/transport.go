// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transport - message passing between verification nodes
//
// two implementations: ZeroMQ sockets for real networks and an in
// process hub for solo nodes and tests, both carry the same tagged
// packets
package transport

// Handler - receives every message delivered to this node
//
// a non nil return becomes the reply to a directed send, returns are
// ignored for broadcast deliveries
type Handler func(packet Packet) *Packet

// Transport - how a node reaches its peers
type Transport interface {
	SendToPeer(id string, packet Packet) (*Packet, error)
	Broadcast(packet Packet) error
	OnMessage(handler Handler)
	PeerCount() int
}
