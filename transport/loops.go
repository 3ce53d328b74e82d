// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/hex"
	"time"

	zmq "github.com/pebbe/zmq4"
)

// netListener - answers directed requests on the REP sockets
type netListener struct {
	network *Network
}

func (lstn *netListener) Run(args interface{}, shutdown <-chan struct{}) {

	n := lstn.network
	log := n.log
	log.Info("listener: starting…")

	go func() {
		<-shutdown
		n.listenerPush.SendMessage("stop")
		n.listenerPush.Close()
	}()

	poller := zmq.NewPoller()
	if nil != n.rep4 {
		poller.Add(n.rep4, zmq.POLLIN)
	}
	if nil != n.rep6 {
		poller.Add(n.rep6, zmq.POLLIN)
	}
	poller.Add(n.listenerPull, zmq.POLLIN)

loop:
	for {
		polled, _ := poller.Poll(-1)
		for _, p := range polled {
			switch s := p.Socket; s {
			case n.listenerPull:
				s.RecvMessageBytes(0)
				break loop
			default:
				lstn.process(s)
			}
		}
	}

	log.Info("listener: shutting down…")
	n.listenerPull.Close()
	if nil != n.rep4 {
		n.rep4.Close()
	}
	if nil != n.rep6 {
		n.rep6.Close()
	}
}

// a REP socket must answer every request
func (lstn *netListener) process(socket *zmq.Socket) {

	n := lstn.network
	log := n.log

	frames, err := socket.RecvMessageBytes(0)
	if nil != err {
		log.Errorf("listener: receive error: %s", err)
		return
	}
	if 0 == len(frames) {
		socket.SendMessage(TagError, "empty request")
		return
	}

	packet := Packet{Tag: string(frames[0])}
	if len(frames) > 1 {
		packet.Data = frames[1]
	}
	log.Debugf("listener: received: %q", packet.Tag)

	reply := n.deliver(packet)
	if nil == reply {
		reply = &Packet{Tag: TagAck}
	}
	if _, err := socket.SendMessage(reply.Tag, reply.Data); nil != err {
		log.Errorf("listener: reply error: %s", err)
	}
}

// netSubscriber - receives peer broadcasts on the SUB sockets
type netSubscriber struct {
	network *Network
}

func (sbsc *netSubscriber) Run(args interface{}, shutdown <-chan struct{}) {

	n := sbsc.network
	log := n.log
	log.Info("subscriber: starting…")

	go func() {
		<-shutdown
		n.subscriberPush.SendMessage("stop")
		n.subscriberPush.Close()
	}()

	poller := zmq.NewPoller()
	index := make(map[*zmq.Socket]int, len(n.subs))
	for i, socket := range n.subs {
		poller.Add(socket, zmq.POLLIN)
		index[socket] = i
	}
	poller.Add(n.subscriberPull, zmq.POLLIN)

loop:
	for {
		polled, _ := poller.Poll(-1)
		for _, p := range polled {
			switch s := p.Socket; s {
			case n.subscriberPull:
				s.RecvMessageBytes(0)
				break loop
			default:
				sbsc.process(s, index[s])
			}
		}
	}

	log.Info("subscriber: shutting down…")
	n.subscriberPull.Close()
	n.closeSubs()
}

func (sbsc *netSubscriber) process(socket *zmq.Socket, index int) {

	n := sbsc.network
	log := n.log

	frames, err := socket.RecvMessageBytes(0)
	if nil != err {
		log.Errorf("subscriber: receive error: %s", err)
		return
	}
	if 0 == len(frames) {
		return
	}

	packet := Packet{Tag: string(frames[0])}
	if len(frames) > 1 {
		packet.Data = frames[1]
	}
	log.Debugf("subscriber: received: %q", packet.Tag)

	n.learnSender(index, packet.Data)

	// replies make no sense for broadcast deliveries
	n.deliver(packet)
}

// netBroadcaster - owns the PUB sockets, publishes queued packets
type netBroadcaster struct {
	network *Network
}

func (brdc *netBroadcaster) Run(args interface{}, shutdown <-chan struct{}) {

	n := brdc.network
	log := n.log
	log.Info("broadcaster: starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case packet := <-n.outgoing:
			log.Debugf("broadcaster: sending: %q", packet.Tag)
			if nil != n.pub4 {
				if _, err := n.pub4.SendMessage(packet.Tag, packet.Data); nil != err {
					log.Errorf("broadcaster: IPv4 send error: %s", err)
				}
			}
			if nil != n.pub6 {
				if _, err := n.pub6.SendMessage(packet.Tag, packet.Data); nil != err {
					log.Errorf("broadcaster: IPv6 send error: %s", err)
				}
			}
		}
	}

	log.Info("broadcaster: shutting down…")
	if nil != n.pub4 {
		n.pub4.Close()
	}
	if nil != n.pub6 {
		n.pub6.Close()
	}
}

// netPinger - probes the configured peers to maintain liveness
type netPinger struct {
	network *Network
}

func (ping *netPinger) Run(args interface{}, shutdown <-chan struct{}) {

	n := ping.network
	log := n.log
	log.Info("pinger: starting…")

	nonce := uint64(0)
	delay := initialPingDelay

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(delay):
			delay = pingInterval
		}

		for i, r := range n.remotes {
			nonce += 1
			packet, err := NewPing(hex.EncodeToString(n.publicKey), nonce)
			if nil != err {
				continue
			}
			reply, err := n.SendToPeer(hex.EncodeToString(r.serverKey), packet)
			if nil != err {
				log.Debugf("pinger: peer[%d] unreachable: %s", i, err)
				continue
			}
			if TagPong != reply.Tag {
				log.Debugf("pinger: peer[%d] odd answer: %q", i, reply.Tag)
			}
		}
	}
	log.Info("pinger: shutting down…")
}
