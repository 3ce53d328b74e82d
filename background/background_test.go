// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/lambda-foundation/lambdad/background"
)

type ticker struct {
	ticks   uint64
	stopped uint64
}

func (state *ticker) Run(args interface{}, shutdown <-chan struct{}) {

	delay := args.(time.Duration)

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(delay):
			atomic.AddUint64(&state.ticks, 1)
		}
	}
	atomic.StoreUint64(&state.stopped, 1)
}

func TestStartStop(t *testing.T) {

	proc1 := &ticker{}
	proc2 := &ticker{}

	processes := background.Processes{
		proc1,
		proc2,
	}

	p := background.Start(processes, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	if 0 == atomic.LoadUint64(&proc1.ticks) {
		t.Errorf("first process never ran")
	}
	if 0 == atomic.LoadUint64(&proc2.ticks) {
		t.Errorf("second process never ran")
	}
	if 1 != atomic.LoadUint64(&proc1.stopped) {
		t.Errorf("first process did not stop")
	}
	if 1 != atomic.LoadUint64(&proc2.stopped) {
		t.Errorf("second process did not stop")
	}
}

// Stop on a nil handle must be a safe no-op
func TestStopNil(t *testing.T) {
	var p *background.T
	p.Stop()
}
