// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"net"
	"strconv"
	"strings"

	"github.com/lambda-foundation/lambdad/fault"
)

// CanonicalIPandPort - make the IP:Port canonical
//
// examples:
//   IPv4:  127.0.0.1:1234
//   IPv6:  [::1]:1234
//
// the prefix is optional and can be empty (“”)
func CanonicalIPandPort(prefix string, hostPort string) (string, error) {

	host, port, err := net.SplitHostPort(hostPort)
	if nil != err {
		return "", fault.InvalidIPAddress
	}

	IP := net.ParseIP(strings.Trim(host, " "))
	if nil == IP {
		return "", fault.InvalidIPAddress
	}

	numericPort, err := strconv.Atoi(strings.Trim(port, " "))
	if nil != err {
		return "", fault.InvalidPortNumber
	}
	if numericPort < 1 || numericPort > 65535 {
		return "", fault.InvalidPortNumber
	}

	if nil != IP.To4() {
		return prefix + IP.String() + ":" + strconv.Itoa(numericPort), nil
	}
	return prefix + "[" + IP.String() + "]:" + strconv.Itoa(numericPort), nil
}
