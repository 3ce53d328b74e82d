// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"time"

	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"

	"github.com/lambda-foundation/lambdad/util"
)

const (
	heartbeatInterval = 15 * time.Second
	heartbeatTimeout  = 60 * time.Second
	heartbeatTTL      = 120 * time.Second
)

// return a pair of connected push/pull sockets
// for shutdown signalling
func newSignalPair(signal string) (*zmq.Socket, *zmq.Socket, error) {

	// send half of signalling channel
	push, err := zmq.NewSocket(zmq.PUSH)
	if nil != err {
		return nil, nil, err
	}
	push.SetLinger(0)
	err = push.Bind(signal)
	if nil != err {
		push.Close()
		return nil, nil, err
	}

	// receive half of signalling channel
	pull, err := zmq.NewSocket(zmq.PULL)
	if nil != err {
		push.Close()
		return nil, nil, err
	}
	pull.SetLinger(0)
	err = pull.Connect(signal)
	if nil != err {
		push.Close()
		pull.Close()
		return nil, nil, err
	}

	return push, pull, nil
}

// bind a list of addresses
// creates up to 2 sockets for separate IPv4 and IPv6 traffic
func newBind(log *logger.L, socketType zmq.Type, zapDomain string, privateKey []byte, publicKey []byte, listen []*util.Connection) (*zmq.Socket, *zmq.Socket, error) {

	socket4 := (*zmq.Socket)(nil) // IPv4 traffic
	socket6 := (*zmq.Socket)(nil) // IPv6 traffic

	err := error(nil)

	// allocate IPv4 and IPv6 sockets
	for i, address := range listen {
		bindTo, v6 := address.CanonicalIPandPort("tcp://")
		if v6 {
			if nil == socket6 {
				socket6, err = newServerSocket(socketType, zapDomain, privateKey, publicKey, v6)
			}
		} else {
			if nil == socket4 {
				socket4, err = newServerSocket(socketType, zapDomain, privateKey, publicKey, v6)
			}
		}
		if nil != err {
			goto fail
		}

		if v6 {
			err = socket6.Bind(bindTo)
		} else {
			err = socket4.Bind(bindTo)
		}
		if nil != err {
			log.Errorf("cannot bind[%d]: %q  error: %s", i, bindTo, err)
			goto fail
		}
		log.Infof("bind[%d]: %q  IPv6: %v", i, bindTo, v6)
	}
	return socket4, socket6, nil

	// on error close any open sockets
fail:
	if nil != socket4 {
		socket4.Close()
	}
	if nil != socket6 {
		socket6.Close()
	}
	return nil, nil, err
}

// create a socket suitable for a server side connection
//
// an empty private key produces a plain socket, throwaway local
// networks run without curve encryption
func newServerSocket(socketType zmq.Type, zapDomain string, privateKey []byte, publicKey []byte, v6 bool) (*zmq.Socket, error) {

	socket, err := zmq.NewSocket(socketType)
	if nil != err {
		return nil, err
	}

	if 0 != len(privateKey) {
		// allow any client holding the server public key to connect
		zmq.AuthCurveAdd(zapDomain, zmq.CURVE_ALLOW_ANY)

		socket.SetCurveServer(1)
		socket.SetCurveSecretkey(string(privateKey))
		socket.SetZapDomain(zapDomain)
	}

	if 0 != len(publicKey) {
		socket.SetIdentity(string(publicKey)) // just use public key for identity
	}

	socket.SetIpv6(v6) // conditionally set IPv6 state

	// heartbeat
	socket.SetHeartbeatIvl(heartbeatInterval)
	socket.SetHeartbeatTimeout(heartbeatTimeout)
	socket.SetHeartbeatTtl(heartbeatTTL)

	return socket, nil
}

// create a socket suitable for a client side connection
//
// an empty server key produces a plain socket
func newClientSocket(socketType zmq.Type, privateKey []byte, publicKey []byte, serverKey []byte, v6 bool, timeout time.Duration) (*zmq.Socket, error) {

	socket, err := zmq.NewSocket(socketType)
	if nil != err {
		return nil, err
	}

	if 0 != len(serverKey) {
		socket.SetCurveServer(0)
		socket.SetCurvePublickey(string(publicKey))
		socket.SetCurveSecretkey(string(privateKey))
		socket.SetCurveServerkey(string(serverKey))
	}

	if timeout > 0 {
		socket.SetSndtimeo(timeout)
		socket.SetRcvtimeo(timeout)
	}
	socket.SetLinger(0)
	socket.SetIpv6(v6)

	// subscribe to everything
	if zmq.SUB == socketType {
		socket.SetSubscribe("")
	}

	return socket, nil
}
