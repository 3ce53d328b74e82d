// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package info_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/counter"
	"github.com/lambda-foundation/lambdad/node"
	"github.com/lambda-foundation/lambdad/rpc/fixtures"
	"github.com/lambda-foundation/lambdad/rpc/info"
)

func TestInfo(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	count := counter.Counter(0)
	count.Add(3)

	status := func() node.Info {
		return node.Info{
			Name:          "tester",
			Network:       "testing",
			Version:       "1.0",
			Morphisms:     21,
			Verifications: 9,
			Peers:         2,
			Uptime:        time.Second.String(),
		}
	}

	service := info.New(
		logger.New(fixtures.LogCategory),
		time.Now(),
		"1.0",
		&count,
		status,
	)

	var reply info.InfoReply
	err := service.Info(&info.InfoArguments{}, &reply)
	assert.Nil(t, err, "wrong Info")
	assert.Equal(t, "tester", reply.Node, "wrong node name")
	assert.Equal(t, "testing", reply.Network, "wrong network")
	assert.Equal(t, 21, reply.Morphisms, "wrong morphism count")
	assert.Equal(t, uint64(9), reply.Verifications, "wrong verification count")
	assert.Equal(t, uint64(3), reply.RPCs, "wrong rpc count")
	assert.Equal(t, 2, reply.Peers, "wrong peer count")
	assert.Equal(t, "1.0", reply.Version, "wrong version")
	assert.NotEmpty(t, reply.Uptime, "wrong uptime")
}
