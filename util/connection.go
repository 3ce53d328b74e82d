// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package util - miscellaneous helpers for addresses and paths
package util

import (
	"net"
	"strconv"
	"strings"

	"github.com/lambda-foundation/lambdad/fault"
)

// Connection - an IP and port number pair
type Connection struct {
	ip   net.IP
	port uint16
}

// NewConnection - convert a host:port string to a connection
func NewConnection(hostPort string) (*Connection, error) {
	host, port, err := net.SplitHostPort(hostPort)
	if nil != err {
		return nil, fault.InvalidIPAddress
	}

	IP := net.ParseIP(strings.Trim(host, " "))
	if nil == IP {
		return nil, fault.InvalidIPAddress
	}

	numericPort, err := strconv.Atoi(strings.Trim(port, " "))
	if nil != err {
		return nil, fault.InvalidPortNumber
	}
	if numericPort < 1 || numericPort > 65535 {
		return nil, fault.InvalidPortNumber
	}

	conn := &Connection{
		ip:   IP,
		port: uint16(numericPort),
	}
	return conn, nil
}

// NewConnections - convert a list of host:port values to connections
func NewConnections(hostPorts []string) ([]*Connection, error) {
	if 0 == len(hostPorts) {
		return nil, fault.MissingParameters
	}
	conns := make([]*Connection, len(hostPorts))
	for i, hostPort := range hostPorts {
		conn, err := NewConnection(hostPort)
		if nil != err {
			return nil, err
		}
		conns[i] = conn
	}
	return conns, nil
}

// CanonicalIPandPort - make the IP:Port canonical
//
// returns the string and true if IPv4 or false if IPv6
func (conn *Connection) CanonicalIPandPort(prefix string) (string, bool) {

	port := int(conn.port)
	if nil != conn.ip.To4() {
		return prefix + conn.ip.String() + ":" + strconv.Itoa(port), true
	}
	return prefix + "[" + conn.ip.String() + "]:" + strconv.Itoa(port), false
}

// String - representation for logging
func (conn Connection) String() string {
	s, _ := conn.CanonicalIPandPort("")
	return s
}

// MarshalText - for JSON encoding of peer lists
func (conn Connection) MarshalText() ([]byte, error) {
	s, _ := conn.CanonicalIPandPort("")
	return []byte(s), nil
}
