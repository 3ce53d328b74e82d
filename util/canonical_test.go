// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"testing"

	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/util"
)

// Test IP address detection
func TestCanonical(t *testing.T) {

	testData := []string{
		"127.0.0.1:1234",
		"127.0.0.1:1",
		" 127.0.0.1:1 ",
		"127.0.0.1:65535",
		"0.0.0.0:1234",
		"[::1]:1234",
		"[::]:1234",
		"[0:0::0:0]:1234",
		"[0:0:0:0::1]:1234",
	}

	for i, d := range testData {
		c, err := util.CanonicalIPandPort("", d)
		if nil != err {
			t.Errorf("failed on:[%d] %q  err = %v", i, d, err)
			continue
		}
		t.Logf("converted:[%d]: %q  to: %q", i, d, c)
	}
}

// Test malformed addresses
func TestCanonicalIP(t *testing.T) {

	testData := []string{
		"127.1:1234",
		"256.0.0.0:1234",
		"0.256.0.0:1234",
		"0.0.256.0:1234",
		"0.0.0.256:1234",
		"0:0:1234",
		"[]:1234",
		"[as34::]:1234",
		"[1ffff::]:1234",
		"*:1234",
	}

	for i, d := range testData {
		c, err := util.CanonicalIPandPort("", d)
		if fault.InvalidIPAddress != err {
			t.Errorf("failed on:[%d] %q  err = %v", i, d, err)
			continue
		}
		t.Logf("converted:[%d]: %q  to: %q", i, d, c)
	}
}

// Test port range
func TestCanonicalPort(t *testing.T) {

	testData := []string{
		"127.0.0.1:0",
		"127.0.0.1:65536",
		"127.0.0.1:-1",
	}

	for i, d := range testData {
		c, err := util.CanonicalIPandPort("", d)
		if fault.InvalidPortNumber != err {
			t.Errorf("failed on:[%d] %q  err = %v", i, d, err)
			continue
		}
		t.Logf("converted:[%d]: %q  to: %q", i, d, c)
	}
}

// prefixed form used for zmq endpoints
func TestConnection(t *testing.T) {

	conn, err := util.NewConnection("127.0.0.1:2136")
	if nil != err {
		t.Fatalf("new connection failed: %s", err)
	}
	s, v4 := conn.CanonicalIPandPort("tcp://")
	if "tcp://127.0.0.1:2136" != s {
		t.Errorf("canonical: %q  expected: %q", s, "tcp://127.0.0.1:2136")
	}
	if !v4 {
		t.Errorf("IPv4 address not detected")
	}

	conn, err = util.NewConnection("[::1]:2136")
	if nil != err {
		t.Fatalf("new connection failed: %s", err)
	}
	s, v4 = conn.CanonicalIPandPort("tcp://")
	if "tcp://[::1]:2136" != s {
		t.Errorf("canonical: %q  expected: %q", s, "tcp://[::1]:2136")
	}
	if v4 {
		t.Errorf("IPv6 address not detected")
	}
}
