// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handler

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/counter"
	"github.com/lambda-foundation/lambdad/mode"
	"github.com/lambda-foundation/lambdad/node"
)

// Handler - the HTTP face of the RPC server
type Handler interface {
	Root(w http.ResponseWriter, r *http.Request)
	RPC(w http.ResponseWriter, r *http.Request)
	Details(w http.ResponseWriter, r *http.Request)
	Connections(w http.ResponseWriter, r *http.Request)
	SetAllow(allow map[string][]*net.IPNet)
}

// StatusFunc - supplies the current node information for the detail page
type StatusFunc func() node.Info

// InternalConnection - type to allow rpc system to interface to http request
type InternalConnection struct {
	in  io.Reader
	out io.Writer
}

func (c *InternalConnection) Read(p []byte) (n int, err error) {
	return c.in.Read(p)
}
func (c *InternalConnection) Write(d []byte) (n int, err error) {
	return c.out.Write(d)
}
func (c *InternalConnection) Close() error {
	return nil
}

// the argument passed to the handlers
type httpHandler struct {
	log                *logger.L
	server             *rpc.Server
	start              time.Time
	version            string
	maximumConnections uint64
	count              counter.Counter
	allow              map[string][]*net.IPNet
	status             StatusFunc
}

// New - create the handler with its connection limit and status source
func New(
	log *logger.L,
	server *rpc.Server,
	start time.Time,
	version string,
	maximumConnections uint64,
	status StatusFunc,
) Handler {
	return &httpHandler{
		log:                log,
		server:             server,
		start:              start,
		version:            version,
		maximumConnections: maximumConnections,
		status:             status,
	}
}

// SetAllow - set the CIDR ranges allowed to read the detail pages
func (s *httpHandler) SetAllow(allow map[string][]*net.IPNet) {
	s.allow = allow
}

// Root - matches anything not matched and returns error
func (s *httpHandler) Root(w http.ResponseWriter, _ *http.Request) {
	sendNotFound(w)
}

// RPC - performs a call to any normal RPC
func (s *httpHandler) RPC(w http.ResponseWriter, r *http.Request) {
	if http.MethodPost != r.Method {
		sendMethodNotAllowed(w)
		return
	}

	if s.count.Increment() > s.maximumConnections {
		s.count.Decrement()
		sendTooManyRequests(w)
		return
	}
	defer s.count.Decrement()

	serverCodec := jsonrpc.NewServerCodec(&InternalConnection{in: r.Body, out: w})
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	err := s.server.ServeRequest(serverCodec)
	if nil != err {
		sendInternalServerError(w)
		return
	}
}

// detailReply - the data shown by the details page
type detailReply struct {
	Name          string `json:"name"`
	Network       string `json:"network"`
	Mode          string `json:"mode"`
	Morphisms     int    `json:"morphisms"`
	Verifications uint64 `json:"verifications"`
	Peers         int    `json:"peers"`
	RPCs          uint64 `json:"rpcs"`
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
}

// Details - to allow a GET for the same response as the Node.Info RPC
func (s *httpHandler) Details(w http.ResponseWriter, r *http.Request) {
	if http.MethodGet != r.Method {
		sendMethodNotAllowed(w)
		return
	}

	if !s.isAllowed("details", r) {
		s.log.Warnf("deny access: %q", r.RemoteAddr)
		sendForbidden(w)
		return
	}

	s.count.Increment()
	defer s.count.Decrement()

	info := s.status()

	sendReply(w, detailReply{
		Name:          info.Name,
		Network:       info.Network,
		Mode:          mode.String(),
		Morphisms:     info.Morphisms,
		Verifications: info.Verifications,
		Peers:         info.Peers,
		RPCs:          s.count.Uint64(),
		Version:       s.version,
		Uptime:        time.Since(s.start).String(),
	})
}

// connectionsReply - the data shown by the connections page
type connectionsReply struct {
	Clients uint64 `json:"clients"`
	Peers   int    `json:"peers"`
}

// Connections - current RPC client and verification peer counts
// (restricted to the local allow list)
func (s *httpHandler) Connections(w http.ResponseWriter, r *http.Request) {
	if http.MethodGet != r.Method {
		sendMethodNotAllowed(w)
		return
	}

	if !s.isAllowed("connections", r) {
		s.log.Warnf("deny access: %q", r.RemoteAddr)
		sendForbidden(w)
		return
	}

	s.count.Increment()
	defer s.count.Decrement()

	sendReply(w, connectionsReply{
		Clients: s.count.Uint64(),
		Peers:   s.status().Peers,
	})
}

// check a remote address against the allow list for one page
func (s *httpHandler) isAllowed(page string, r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if nil != err {
		return false
	}

	addr := net.ParseIP(host)
	if nil == addr {
		return false
	}

	set, ok := s.allow[page]
	if !ok {
		return false
	}

	for _, cidr := range set {
		if cidr.Contains(addr) {
			return true
		}
	}

	return false
}

// send an JSON encoded reply
func sendReply(w http.ResponseWriter, data interface{}) {
	text, err := json.Marshal(data)
	if nil != err {
		sendInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(text)
}

// selected errors as required above
func sendNotFound(w http.ResponseWriter) {
	sendError(w, "not found", http.StatusNotFound)
}
func sendMethodNotAllowed(w http.ResponseWriter) {
	sendError(w, "method not allowed", http.StatusMethodNotAllowed)
}
func sendForbidden(w http.ResponseWriter) {
	sendError(w, "forbidden", http.StatusForbidden)
}
func sendTooManyRequests(w http.ResponseWriter) {
	sendError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
}
func sendInternalServerError(w http.ResponseWriter) {
	sendError(w, "internal server error", http.StatusInternalServerError)
}

// to compose JSON error messages
type eType struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// output an error with a JSON body
func sendError(w http.ResponseWriter, message string, code int) {
	text, err := json.Marshal(eType{
		Code:  code,
		Error: message,
	})
	if nil != err {
		// manually composed error just incase JSON fails
		http.Error(w, `{"code":500,"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = w.Write(text)
}
