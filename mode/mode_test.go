// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mode_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/mode"
	"github.com/lambda-foundation/lambdad/network"
)

func TestMain(m *testing.M) {
	curPath := os.Getenv("PWD")
	var logConfig = logger.Configuration{
		Directory: curPath,
		File:      "mode.log",
		Size:      1048576,
		Count:     20,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	if err := logger.Initialise(logConfig); nil != err {
		panic(fmt.Sprintf("logger initialisation failed: %s", err))
	}
	rc := m.Run()
	logger.Finalise()
	os.RemoveAll(curPath + "/mode.log")
	os.Exit(rc)
}

func TestInvalidNetwork(t *testing.T) {
	err := mode.Initialise("no-such-network")
	if fault.InvalidNetwork != err {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransitions(t *testing.T) {
	if err := mode.Initialise(network.Local); nil != err {
		t.Fatalf("initialise failed: %s", err)
	}
	defer mode.Finalise()

	if !mode.IsTesting() {
		t.Errorf("local network did not select testing")
	}
	if network.Local != mode.NetworkName() {
		t.Errorf("network name: %q  expected: %q", mode.NetworkName(), network.Local)
	}

	// must start in resynchronise
	if !mode.Is(mode.Resynchronise) {
		t.Errorf("initial mode: %s  expected: Resynchronise", mode.String())
	}

	mode.Set(mode.Normal)
	if mode.IsNot(mode.Normal) {
		t.Errorf("mode after set: %s  expected: Normal", mode.String())
	}

	// out of range values are ignored
	mode.Set(mode.Mode(1000))
	if !mode.Is(mode.Normal) {
		t.Errorf("invalid set changed mode to: %s", mode.String())
	}
}

func TestString(t *testing.T) {
	testData := []struct {
		mode     mode.Mode
		expected string
	}{
		{mode.Stopped, "Stopped"},
		{mode.Resynchronise, "Resynchronise"},
		{mode.Normal, "Normal"},
		{mode.Mode(100), "*Unknown*"},
	}
	for i, item := range testData {
		if item.mode.String() != item.expected {
			t.Errorf("%d: actual: %q  expected: %q", i, item.mode.String(), item.expected)
		}
	}
}
