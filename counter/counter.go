// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package counter - lock free counters for node statistics
package counter

import (
	"sync/atomic"
)

// Counter - a 64 bit unsigned counter safe for concurrent use
type Counter uint64

// Increment - add 1 to a counter, returns new value
func (c *Counter) Increment() uint64 {
	return atomic.AddUint64((*uint64)(c), 1)
}

// Decrement - subtract 1 from a counter, returns new value
func (c *Counter) Decrement() uint64 {
	return atomic.AddUint64((*uint64)(c), ^uint64(0))
}

// Add - add a delta to a counter, returns new value
func (c *Counter) Add(n uint64) uint64 {
	return atomic.AddUint64((*uint64)(c), n)
}

// Uint64 - returns current value
func (c *Counter) Uint64() uint64 {
	return atomic.LoadUint64((*uint64)(c))
}

// IsZero - check if zero
func (c *Counter) IsZero() bool {
	return 0 == atomic.LoadUint64((*uint64)(c))
}
