// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - start a set of background processes and stop
// them as a group
package background

import (
	"sync"
)

// Process - interface for a background process
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - list of processes to start
type Processes []Process

// T - handle for the stop
type T struct {
	sync.WaitGroup
	s []chan struct{}
}

// Start - start up a set of background processes
// all with the same args value
func Start(processes Processes, args interface{}) *T {

	register := new(T)
	register.s = make([]chan struct{}, len(processes))

	for i, p := range processes {
		shutdown := make(chan struct{})
		register.s[i] = shutdown
		register.Add(1)
		go func(p Process, shutdown <-chan struct{}) {
			p.Run(args, shutdown)
			register.Done()
		}(p, shutdown)
	}
	return register
}

// Stop - stop the set of background processes and wait for them all
// to finish
func (t *T) Stop() {

	if nil == t {
		return
	}

	for _, shutdown := range t.s {
		close(shutdown)
	}

	t.Wait()
}
