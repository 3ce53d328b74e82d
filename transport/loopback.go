// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"sync"

	"github.com/lambda-foundation/lambdad/fault"
)

// Hub - an in-process message fabric
type Hub struct {
	sync.RWMutex
	members map[string]*Loopback
}

// NewHub - create an empty fabric
func NewHub() *Hub {
	return &Hub{
		members: make(map[string]*Loopback),
	}
}

// Join - attach a member and return its transport
func (hub *Hub) Join(id string) *Loopback {
	l := &Loopback{
		hub: hub,
		id:  id,
	}
	hub.Lock()
	hub.members[id] = l
	hub.Unlock()
	return l
}

// Loopback - transport over an in-process hub, no sockets involved
type Loopback struct {
	sync.RWMutex
	hub     *Hub
	id      string
	handler Handler
}

// OnMessage - install the receive handler
func (l *Loopback) OnMessage(handler Handler) {
	l.Lock()
	l.handler = handler
	l.Unlock()
}

// ID - the member id on the hub
func (l *Loopback) ID() string {
	return l.id
}

// Leave - detach from the hub
func (l *Loopback) Leave() {
	l.hub.Lock()
	delete(l.hub.members, l.id)
	l.hub.Unlock()
}

// SendToPeer - directed message, the peer handler runs in this
// goroutine and its reply is returned
func (l *Loopback) SendToPeer(id string, packet Packet) (*Packet, error) {
	l.hub.RLock()
	peer, ok := l.hub.members[id]
	l.hub.RUnlock()
	if !ok {
		return nil, fault.UnknownPeer
	}

	reply := peer.deliver(packet)
	if nil == reply {
		reply = &Packet{Tag: TagAck}
	}
	return reply, nil
}

// Broadcast - deliver to every other member, each in its own goroutine
func (l *Loopback) Broadcast(packet Packet) error {
	l.hub.RLock()
	peers := make([]*Loopback, 0, len(l.hub.members))
	for id, member := range l.hub.members {
		if id != l.id {
			peers = append(peers, member)
		}
	}
	l.hub.RUnlock()

	for _, peer := range peers {
		go peer.deliver(packet)
	}
	return nil
}

// PeerCount - other members currently on the hub
func (l *Loopback) PeerCount() int {
	l.hub.RLock()
	defer l.hub.RUnlock()

	count := len(l.hub.members)
	if _, ok := l.hub.members[l.id]; ok {
		count -= 1
	}
	return count
}

func (l *Loopback) deliver(packet Packet) *Packet {
	l.RLock()
	handler := l.handler
	l.RUnlock()

	if nil == handler {
		return nil
	}
	return handler(packet)
}
