// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/rpc"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/node"
	"github.com/lambda-foundation/lambdad/rpc/fixtures"
	"github.com/lambda-foundation/lambdad/rpc/handler"
)

const (
	notAllowed      = "method not allowed"
	tooManyRequests = "Too Many Requests"
)

type eResp struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

type jResp struct {
	ID     int   `json:"id"`
	Result int   `json:"result"`
	Error  error `json:"error"`
}

type jReq struct {
	ID     int      `json:"id"`
	Method string   `json:"method"`
	Params []AddArg `json:"params"`
}

type Add struct{}
type AddArg struct {
	A int `json:"A"`
	B int `json:"B"`
}

func (a Add) Add(arg *AddArg, reply *int) error {
	*reply = arg.A + arg.B
	return nil
}

func testStatus() node.Info {
	return node.Info{
		Name:          "tester",
		Network:       "testing",
		Version:       "1.0",
		Morphisms:     3,
		Verifications: 7,
		Peers:         2,
		Uptime:        time.Second.String(),
	}
}

func newTestHandler(maximumConnections uint64, server *rpc.Server) handler.Handler {
	return handler.New(
		logger.New(fixtures.LogCategory),
		server,
		time.Now(),
		"1.0",
		maximumConnections,
		testStatus,
	)
}

func TestRoot(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := newTestHandler(5, rpc.NewServer())

	req := httptest.NewRequest("GET", "http://not.found", nil)
	w := httptest.NewRecorder()
	h.Root(w, req)

	resp := w.Result()
	var j eResp
	_ = json.NewDecoder(resp.Body).Decode(&j)

	assert.Equal(t, "not found", j.Error, "wrong response")
	assert.Equal(t, http.StatusNotFound, j.Code, "wrong http code")
}

func TestRPC(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	s := rpc.NewServer()
	a := Add{}
	_ = s.Register(a)

	h := newTestHandler(5, s)

	add := AddArg{
		A: 1,
		B: 2,
	}

	arg := jReq{
		ID:     5,
		Method: "Add.Add",
		Params: []AddArg{add},
	}
	data, _ := json.Marshal(arg)

	req := httptest.NewRequest("POST", "http://not.exist", bytes.NewReader(data))
	w := httptest.NewRecorder()
	h.RPC(w, req)

	resp := w.Result()
	var j jResp
	_ = json.NewDecoder(resp.Body).Decode(&j)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "wrong status code")
	assert.Equal(t, add.A+add.B, j.Result, "wrong result")
	assert.Nil(t, j.Error, "wrong error")
}

func TestRPCWhenWrongHTTPMethod(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	s := rpc.NewServer()
	a := Add{}
	_ = s.Register(a)

	h := newTestHandler(5, s)

	req := httptest.NewRequest("GET", "http://not.exist", nil)
	w := httptest.NewRecorder()
	h.RPC(w, req)

	resp := w.Result()
	var j eResp
	_ = json.NewDecoder(resp.Body).Decode(&j)
	assert.Equal(t, notAllowed, j.Error, "wrong method")
}

func TestRPCWhenTooManyConnections(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	s := rpc.NewServer()
	a := Add{}
	_ = s.Register(a)

	h := newTestHandler(0, s)

	req := httptest.NewRequest("POST", "http://not.exist", nil)
	w := httptest.NewRecorder()
	h.RPC(w, req)

	resp := w.Result()
	var j eResp
	_ = json.NewDecoder(resp.Body).Decode(&j)
	assert.Equal(t, tooManyRequests, j.Error, "wrong method")
}

func TestRPCWhenServeError(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := newTestHandler(5, rpc.NewServer())

	arg := jReq{}
	data, _ := json.Marshal(arg)

	req := httptest.NewRequest("POST", "http://not.exist", bytes.NewReader(data))
	w := httptest.NewRecorder()
	h.RPC(w, req)

	resp := w.Result()
	b, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(b), "internal server error", "wrong response")
}

func TestDetails(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := newTestHandler(5, rpc.NewServer())

	// httptest requests arrive from 192.0.2.1
	allow := make(map[string][]*net.IPNet)
	_, ipNet, _ := net.ParseCIDR("192.0.2.1/32")
	allow["details"] = []*net.IPNet{ipNet}
	h.SetAllow(allow)

	req := httptest.NewRequest("GET", "http://test.com/lambdad/details", nil)
	w := httptest.NewRecorder()
	h.Details(w, req)

	resp := w.Result()
	var j map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&j)

	assert.Equal(t, http.StatusOK, resp.StatusCode, "wrong status code")
	assert.Equal(t, "tester", j["name"], "wrong name")
	assert.Equal(t, "testing", j["network"], "wrong network")
	assert.Equal(t, float64(3), j["morphisms"], "wrong morphism count")
	assert.Equal(t, float64(7), j["verifications"], "wrong verification count")
	assert.Equal(t, float64(2), j["peers"], "wrong peer count")
	assert.Equal(t, "1.0", j["version"], "wrong version")
}

func TestDetailsWhenNotAllowed(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := newTestHandler(5, rpc.NewServer())

	allow := make(map[string][]*net.IPNet)
	_, ipNet, _ := net.ParseCIDR("10.0.0.0/8")
	allow["details"] = []*net.IPNet{ipNet}
	h.SetAllow(allow)

	req := httptest.NewRequest("GET", "http://test.com/lambdad/details", nil)
	w := httptest.NewRecorder()
	h.Details(w, req)

	resp := w.Result()
	var j eResp
	_ = json.NewDecoder(resp.Body).Decode(&j)
	assert.Equal(t, "forbidden", j.Error, "wrong response")
	assert.Equal(t, http.StatusForbidden, j.Code, "wrong http code")
}

func TestDetailsWhenWrongHTTPMethod(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := newTestHandler(5, rpc.NewServer())

	req := httptest.NewRequest("POST", "http://test.com/lambdad/details", nil)
	w := httptest.NewRecorder()
	h.Details(w, req)

	resp := w.Result()
	var j eResp
	_ = json.NewDecoder(resp.Body).Decode(&j)
	assert.Equal(t, notAllowed, j.Error, "wrong method")
}

func TestConnections(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := newTestHandler(5, rpc.NewServer())

	allow := make(map[string][]*net.IPNet)
	_, ipNet, _ := net.ParseCIDR("192.0.2.0/24")
	allow["connections"] = []*net.IPNet{ipNet}
	h.SetAllow(allow)

	req := httptest.NewRequest("GET", "http://test.com/lambdad/connections", nil)
	w := httptest.NewRecorder()
	h.Connections(w, req)

	resp := w.Result()
	var j map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&j)

	assert.Equal(t, http.StatusOK, resp.StatusCode, "wrong status code")
	assert.Equal(t, float64(2), j["peers"], "wrong peer count")
}
