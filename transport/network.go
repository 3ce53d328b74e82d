// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"

	"github.com/lambda-foundation/lambdad/background"
	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/util"
)

const (
	listenerZapDomain    = "lambdad-listener"
	broadcasterZapDomain = "lambdad-broadcaster"

	requestTimeout   = 10 * time.Second
	initialPingDelay = 2 * time.Second
	pingInterval     = 30 * time.Second
	outgoingBacklog  = 100
)

// each Network gets private inproc signal names so several instances
// can share one process
var instanceCounter uint64

// Peer - one statically configured peer
//
// the public key is the tagged text from the peer's key file, a bare
// hex string is also accepted
type Peer struct {
	Name      string `gluamapper:"name" json:"name"`
	PublicKey string `gluamapper:"public_key" json:"public_key"`
	Address   string `gluamapper:"address" json:"address"`
	Broadcast string `gluamapper:"broadcast" json:"broadcast"`
}

// Configuration - wire settings for a ZeroMQ network
//
// empty key files select plain sockets, throwaway local networks run
// without curve encryption
type Configuration struct {
	PublicKey  string   `gluamapper:"public_key" json:"public_key"`
	PrivateKey string   `gluamapper:"private_key" json:"private_key"`
	Listen     []string `gluamapper:"listen" json:"listen"`
	Broadcast  []string `gluamapper:"broadcast" json:"broadcast"`
	Connect    []Peer   `gluamapper:"connect" json:"connect"`
}

// remote - the client side state for one configured peer
type remote struct {
	sync.Mutex

	name      string // node name, learned from traffic
	serverKey []byte
	address   *util.Connection
	broadcast *util.Connection
	client    *zmq.Socket // lazy REQ connection
	v6        bool
	alive     bool
}

// Network - Transport over ZeroMQ sockets
//
// requests ride REQ/REP pairs, announcements ride PUB/SUB, all frames
// are [tag, json]
type Network struct {
	sync.RWMutex

	log        *logger.L
	publicKey  []byte
	privateKey []byte
	handler    Handler
	remotes    []*remote
	names      map[string]*remote
	outgoing   chan Packet

	rep4, rep6 *zmq.Socket
	pub4, pub6 *zmq.Socket
	subs       []*zmq.Socket

	listenerSignal   string
	subscriberSignal string
	listenerPush     *zmq.Socket
	listenerPull     *zmq.Socket
	subscriberPush   *zmq.Socket
	subscriberPull   *zmq.Socket

	processes *background.T
}

// NewNetwork - bind the local sockets, connect the configured peers
// and start the socket loops
//
// the handler should be installed with OnMessage before peers start
// sending, packets delivered earlier are dropped
func NewNetwork(configuration Configuration) (*Network, error) {

	log := logger.New("transport")

	if 0 == len(configuration.Listen) || 0 == len(configuration.Broadcast) {
		return nil, fault.MissingParameters
	}

	publicKey := []byte{}
	privateKey := []byte{}
	if "" != configuration.PublicKey || "" != configuration.PrivateKey {
		var err error
		publicKey, err = ReadPublicKeyFile(configuration.PublicKey)
		if nil != err {
			log.Errorf("read public key: %q  error: %s", configuration.PublicKey, err)
			return nil, err
		}
		privateKey, err = ReadPrivateKeyFile(configuration.PrivateKey)
		if nil != err {
			log.Errorf("read private key: %q  error: %s", configuration.PrivateKey, err)
			return nil, err
		}
		if err := startAuthentication(); nil != err {
			log.Errorf("zmq authentication: %s", err)
			return nil, err
		}
	}

	listen, err := parseAddresses(configuration.Listen)
	if nil != err {
		return nil, err
	}
	broadcast, err := parseAddresses(configuration.Broadcast)
	if nil != err {
		return nil, err
	}

	remotes := make([]*remote, 0, len(configuration.Connect))
	for i, peer := range configuration.Connect {
		serverKey, err := parsePeerKey(peer.PublicKey)
		if nil != err {
			log.Errorf("peer[%d] public key: %s", i, err)
			return nil, err
		}
		address, err := util.NewConnection(peer.Address)
		if nil != err {
			log.Errorf("peer[%d] address: %q  error: %s", i, peer.Address, err)
			return nil, fault.InvalidPeerAddress
		}
		subscribe, err := util.NewConnection(peer.Broadcast)
		if nil != err {
			log.Errorf("peer[%d] broadcast: %q  error: %s", i, peer.Broadcast, err)
			return nil, fault.InvalidPeerAddress
		}
		_, v6 := address.CanonicalIPandPort("")
		remotes = append(remotes, &remote{
			name:      peer.Name,
			serverKey: serverKey,
			address:   address,
			broadcast: subscribe,
			v6:        v6,
		})
	}

	sequence := atomic.AddUint64(&instanceCounter, 1)

	n := &Network{
		log:              log,
		publicKey:        publicKey,
		privateKey:       privateKey,
		remotes:          remotes,
		names:            make(map[string]*remote),
		outgoing:         make(chan Packet, outgoingBacklog),
		listenerSignal:   fmt.Sprintf("inproc://lambdad-listener-signal-%d", sequence),
		subscriberSignal: fmt.Sprintf("inproc://lambdad-subscriber-signal-%d", sequence),
	}
	for _, r := range remotes {
		if "" != r.name {
			n.names[r.name] = r
		}
	}

	n.rep4, n.rep6, err = newBind(log, zmq.REP, listenerZapDomain, privateKey, publicKey, listen)
	if nil != err {
		return nil, err
	}
	n.pub4, n.pub6, err = newBind(log, zmq.PUB, broadcasterZapDomain, privateKey, publicKey, broadcast)
	if nil != err {
		n.closeBound()
		return nil, err
	}

	// one SUB socket per peer broadcast endpoint
	n.subs = make([]*zmq.Socket, len(remotes))
	for i, r := range remotes {
		socket, err := newClientSocket(zmq.SUB, privateKey, publicKey, r.serverKey, r.v6, 0)
		if nil != err {
			n.closeBound()
			n.closeSubs()
			return nil, err
		}
		endpoint, _ := r.broadcast.CanonicalIPandPort("tcp://")
		if err := socket.Connect(endpoint); nil != err {
			socket.Close()
			n.closeBound()
			n.closeSubs()
			log.Errorf("subscribe[%d]: %q  error: %s", i, endpoint, err)
			return nil, err
		}
		n.subs[i] = socket
		log.Infof("subscribe[%d]: %q", i, endpoint)
	}

	n.listenerPush, n.listenerPull, err = newSignalPair(n.listenerSignal)
	if nil != err {
		n.closeBound()
		n.closeSubs()
		return nil, err
	}
	n.subscriberPush, n.subscriberPull, err = newSignalPair(n.subscriberSignal)
	if nil != err {
		n.closeBound()
		n.closeSubs()
		return nil, err
	}

	log.Info("starting…")
	n.processes = background.Start(background.Processes{
		&netListener{network: n},
		&netSubscriber{network: n},
		&netBroadcaster{network: n},
		&netPinger{network: n},
	}, nil)

	return n, nil
}

// Finalise - stop the socket loops and drop all connections
func (n *Network) Finalise() {
	n.log.Info("shutting down…")
	n.processes.Stop()

	for _, r := range n.remotes {
		r.Lock()
		if nil != r.client {
			r.client.Close()
			r.client = nil
		}
		r.alive = false
		r.Unlock()
	}
	n.log.Flush()
}

// OnMessage - install the receive handler
func (n *Network) OnMessage(handler Handler) {
	n.Lock()
	n.handler = handler
	n.Unlock()
}

// Broadcast - queue a packet for the publisher loop
//
// sockets are single threaded so the packet crosses to the loop that
// owns the PUB sockets, a full queue drops with an error
func (n *Network) Broadcast(packet Packet) error {
	select {
	case n.outgoing <- packet:
		return nil
	default:
		return fault.BroadcastQueueFull
	}
}

// SendToPeer - directed request, blocks for the peer's reply
//
// the peer may be named by its node name as learned from traffic or
// by its public key in hex
func (n *Network) SendToPeer(id string, packet Packet) (*Packet, error) {

	r := n.findRemote(id)
	if nil == r {
		return nil, fault.UnknownPeer
	}

	r.Lock()
	defer r.Unlock()

	if nil == r.client {
		client, err := newClientSocket(zmq.REQ, n.privateKey, n.publicKey, r.serverKey, r.v6, requestTimeout)
		if nil != err {
			return nil, err
		}
		endpoint, _ := r.address.CanonicalIPandPort("tcp://")
		if err := client.Connect(endpoint); nil != err {
			client.Close()
			return nil, err
		}
		r.client = client
	}

	if _, err := r.client.SendMessage(packet.Tag, packet.Data); nil != err {
		n.dropClient(r, err)
		return nil, err
	}
	frames, err := r.client.RecvMessageBytes(0)
	if nil != err {
		n.dropClient(r, err)
		return nil, err
	}

	r.alive = true
	reply := &Packet{Tag: string(frames[0])}
	if len(frames) > 1 {
		reply.Data = frames[1]
	}
	return reply, nil
}

// PeerCount - peers that answered recently
func (n *Network) PeerCount() int {
	count := 0
	for _, r := range n.remotes {
		r.Lock()
		if r.alive {
			count += 1
		}
		r.Unlock()
	}
	return count
}

// a REQ socket that errored cannot be reused
//
// callers must hold the remote lock
func (n *Network) dropClient(r *remote, err error) {
	n.log.Warnf("peer: %x  dropped: %s", r.serverKey, err)
	if nil != r.client {
		r.client.Close()
		r.client = nil
	}
	r.alive = false
}

func (n *Network) findRemote(id string) *remote {
	n.RLock()
	r, ok := n.names[id]
	n.RUnlock()
	if ok {
		return r
	}
	for _, r := range n.remotes {
		if hex.EncodeToString(r.serverKey) == id {
			return r
		}
	}
	return nil
}

// hand a packet to the installed handler
func (n *Network) deliver(packet Packet) *Packet {
	n.RLock()
	handler := n.handler
	n.RUnlock()

	if nil == handler {
		n.log.Debugf("no handler, dropped: %q", packet.Tag)
		return nil
	}
	return handler(packet)
}

// remember which remote a node name belongs to, directed replies need
// the route
func (n *Network) learnSender(index int, data []byte) {
	var header Header
	if err := json.Unmarshal(data, &header); nil != err || "" == header.Sender {
		return
	}
	r := n.remotes[index]

	r.Lock()
	if r.name != header.Sender {
		r.name = header.Sender
	}
	r.Unlock()

	n.Lock()
	if n.names[header.Sender] != r {
		n.names[header.Sender] = r
		n.log.Infof("peer: %q at: %x", header.Sender, r.serverKey)
	}
	n.Unlock()
}

func (n *Network) closeBound() {
	for _, socket := range []*zmq.Socket{n.rep4, n.rep6, n.pub4, n.pub6} {
		if nil != socket {
			socket.Close()
		}
	}
}

func (n *Network) closeSubs() {
	for _, socket := range n.subs {
		if nil != socket {
			socket.Close()
		}
	}
}

func parseAddresses(addresses []string) ([]*util.Connection, error) {
	connections := make([]*util.Connection, 0, len(addresses))
	for _, address := range addresses {
		connection, err := util.NewConnection(address)
		if nil != err {
			return nil, fault.InvalidListenAddress
		}
		connections = append(connections, connection)
	}
	return connections, nil
}

// accept a tagged public key or bare hex
func parsePeerKey(key string) ([]byte, error) {
	if strings.HasPrefix(key, taggedPublic) {
		return ReadPublicKey(key)
	}
	h, err := hex.DecodeString(strings.TrimSpace(key))
	if nil != err {
		return nil, fault.InvalidPeerPublicKey
	}
	if publicLength != len(h) {
		return nil, fault.InvalidPeerPublicKey
	}
	return h, nil
}

// the zap handler is process wide, starting twice is not an error
func startAuthentication() error {
	err := zmq.AuthStart()
	if nil != err && !strings.Contains(err.Error(), "Auth is already running") {
		return err
	}
	return nil
}
