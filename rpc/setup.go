// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/counter"
	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/node"
	"github.com/lambda-foundation/lambdad/rpc/certificate"
	"github.com/lambda-foundation/lambdad/rpc/handler"
	"github.com/lambda-foundation/lambdad/rpc/listeners"
	"github.com/lambda-foundation/lambdad/rpc/server"
)

const (
	tlsName   = "client_rpc"
	httpsName = "http_rpc"
)

// connection count for all RPC clients
var connectionCountRPC counter.Counter

// globals
type rpcData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	// set once during initialise
	initialised bool
}

// global data
var globalData rpcData

// Initialise - start serving RPC and HTTPS clients
func Initialise(rpcConfiguration *listeners.RPCConfiguration, httpsConfiguration *listeners.HTTPSConfiguration, n *node.Node, version string) error {

	globalData.Lock()
	defer globalData.Unlock()

	// no need to Start if already started
	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	log := logger.New("rpc")
	globalData.log = log
	log.Info("starting…")

	tlsConfig, certificateFingerprint, err := certificate.Get(log, tlsName, rpcConfiguration.Certificate, rpcConfiguration.PrivateKey)
	if nil != err {
		return err
	}

	rpcListener, err := listeners.NewRPC(
		rpcConfiguration,
		log,
		&connectionCountRPC,
		server.Create(log, version, &connectionCountRPC, n),
		tlsConfig,
		certificateFingerprint,
	)
	if nil != err {
		return err
	}
	err = rpcListener.Serve()
	if nil != err {
		return err
	}

	err = initialiseHTTPS(httpsConfiguration, n, version)
	if nil != err {
		return err
	}

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - stop all background tasks
func Finalise() error {

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}

// start the HTTPS status pages if they are configured
func initialiseHTTPS(configuration *listeners.HTTPSConfiguration, n *node.Node, version string) error {

	log := globalData.log

	if 0 == len(configuration.Listen) {
		log.Infof("disable: %s", httpsName)
		return nil
	}

	tlsConfiguration, fingerprint, err := certificate.Get(log, httpsName, configuration.Certificate, configuration.PrivateKey)
	if nil != err {
		return err
	}

	log.Infof("%s: SHA3-256 fingerprint: %x", httpsName, fingerprint)

	hdlr := handler.New(
		log,
		server.Create(log, version, &connectionCountRPC, n),
		time.Now(),
		version,
		configuration.MaximumConnections,
		n.Status,
	)

	httpsListener, err := listeners.NewHTTPS(configuration, log, tlsConfiguration, hdlr)
	if nil != err {
		return err
	}
	if nil == httpsListener {
		return nil
	}

	return httpsListener.Serve()
}
