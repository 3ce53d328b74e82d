// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package listeners - accept loops for the TLS JSON RPC port and the
// HTTPS status pages
package listeners

// Listener - a started listener serving until the process exits
type Listener interface {
	Serve() error
}
