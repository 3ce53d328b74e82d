// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package morphisms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/registry"
	"github.com/lambda-foundation/lambdad/rpc/fixtures"
	"github.com/lambda-foundation/lambdad/rpc/morphisms"
)

func newTestService(t *testing.T) (*morphisms.Morphism, *registry.Registry) {
	reg := registry.New(nil, nil)

	definitions := []struct {
		name       string
		definition string
	}{
		{"identity", "λx.x"},
		{"compose", "λf.λg.λx.f (g x)"},
		{"const", "λx.λy.x"},
	}

	for _, d := range definitions {
		m, err := morphism.New(d.name, "*", d.definition, 1.0, "tester")
		require.NoError(t, err, "cannot build morphism")
		_, added := reg.Add(m)
		require.True(t, added, "duplicate seed")
	}

	return morphisms.New(logger.New(fixtures.LogCategory), reg), reg
}

func TestGetByName(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	service, _ := newTestService(t)

	arg := morphisms.GetArguments{Name: "compose"}
	var reply morphisms.GetReply
	err := service.Get(&arg, &reply)
	assert.Nil(t, err, "wrong Get")
	require.NotNil(t, reply.Morphism, "missing morphism")
	assert.Equal(t, "compose", reply.Morphism.Name, "wrong name")
}

func TestGetByDigest(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	service, reg := newTestService(t)

	want := reg.Lookup("identity")
	require.NotNil(t, want, "missing seed")

	arg := morphisms.GetArguments{Digest: want.Digest.String()}
	var reply morphisms.GetReply
	err := service.Get(&arg, &reply)
	assert.Nil(t, err, "wrong Get")
	require.NotNil(t, reply.Morphism, "missing morphism")
	assert.Equal(t, "identity", reply.Morphism.Name, "wrong name")
	assert.Equal(t, want.Digest, reply.Morphism.Digest, "wrong digest")
}

func TestGetWhenUnknownName(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	service, _ := newTestService(t)

	arg := morphisms.GetArguments{Name: "no-such-morphism"}
	var reply morphisms.GetReply
	err := service.Get(&arg, &reply)
	assert.Equal(t, fault.MorphismNotFound, err, "wrong error")
}

func TestGetWhenBrokenDigest(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	service, _ := newTestService(t)

	arg := morphisms.GetArguments{Digest: "zz"}
	var reply morphisms.GetReply
	err := service.Get(&arg, &reply)
	assert.NotNil(t, err, "wrong error")
}

func TestGetWhenNoSelector(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	service, _ := newTestService(t)

	arg := morphisms.GetArguments{}
	var reply morphisms.GetReply
	err := service.Get(&arg, &reply)
	assert.Equal(t, fault.MissingParameters, err, "wrong error")
}

func TestList(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	service, _ := newTestService(t)

	arg := morphisms.ListArguments{Start: 0, Count: 2}
	var reply morphisms.ListReply
	err := service.List(&arg, &reply)
	assert.Nil(t, err, "wrong List")
	assert.Equal(t, 2, len(reply.Morphisms), "wrong page size")
	assert.Equal(t, "identity", reply.Morphisms[0].Name, "wrong order")
	assert.Equal(t, uint64(2), reply.NextStart, "wrong next start")

	arg = morphisms.ListArguments{Start: reply.NextStart, Count: 2}
	reply = morphisms.ListReply{}
	err = service.List(&arg, &reply)
	assert.Nil(t, err, "wrong List")
	assert.Equal(t, 1, len(reply.Morphisms), "wrong page size")
	assert.Equal(t, "const", reply.Morphisms[0].Name, "wrong order")
	assert.Equal(t, uint64(3), reply.NextStart, "wrong next start")
}

func TestListWhenPastEnd(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	service, _ := newTestService(t)

	arg := morphisms.ListArguments{Start: 100, Count: 2}
	var reply morphisms.ListReply
	err := service.List(&arg, &reply)
	assert.Nil(t, err, "wrong List")
	assert.Equal(t, 0, len(reply.Morphisms), "wrong page size")
	assert.Equal(t, uint64(100), reply.NextStart, "wrong next start")
}

func TestListWhenInvalidCount(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	service, _ := newTestService(t)

	arg := morphisms.ListArguments{Start: 0, Count: 0}
	var reply morphisms.ListReply
	err := service.List(&arg, &reply)
	assert.Equal(t, fault.InvalidCount, err, "wrong error")
}
