// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/configuration"
	"github.com/lambda-foundation/lambdad/network"
	"github.com/lambda-foundation/lambdad/rpc/listeners"
	"github.com/lambda-foundation/lambdad/transport"
	"github.com/lambda-foundation/lambdad/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultPeerPublicKeyFile  = "peer.public"
	defaultPeerPrivateKeyFile = "peer.private"

	defaultLevelDBDirectory = "data"
	defaultLambdaDatabase   = network.Lambda
	defaultTestingDatabase  = network.Testing
	defaultLocalDatabase    = network.Local

	defaultLogDirectory = "log"
	defaultLogFile      = "lambdad.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultRPCClients   = 10
	defaultRPCBandwidth = 25000000
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - where the morphism database lives
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// NodeType - verification engine settings
//
// zero values select the engine defaults, the timeout is in seconds
type NodeType struct {
	Name                string  `gluamapper:"name" json:"name"`
	Threshold           float64 `gluamapper:"threshold" json:"threshold"`
	CollectTimeout      int     `gluamapper:"collect_timeout" json:"collect_timeout"`
	ReductionBudget     int     `gluamapper:"reduction_budget" json:"reduction_budget"`
	HypothesisThreshold float64 `gluamapper:"hypothesis_threshold" json:"hypothesis_threshold"`
}

// Configuration - the daemon configuration
type Configuration struct {
	DataDirectory string       `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string       `gluamapper:"pidfile" json:"pidfile"`
	Network       string       `gluamapper:"network" json:"network"`
	ProfileHTTP   string       `gluamapper:"profile_http" json:"profile_http"`
	Database      DatabaseType `gluamapper:"database" json:"database"`

	Node      NodeType                     `gluamapper:"node" json:"node"`
	ClientRPC listeners.RPCConfiguration   `gluamapper:"client_rpc" json:"client_rpc"`
	HttpsRPC  listeners.HTTPSConfiguration `gluamapper:"https_rpc" json:"https_rpc"`
	Peering   transport.Configuration      `gluamapper:"peering" json:"peering"`
	Logging   logger.Configuration         `gluamapper:"logging" json:"logging"`
}

// getConfiguration - read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		Network:       network.Lambda,

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultLambdaDatabase,
		},

		// the certificate and key fields hold PEM content, the
		// configuration file loads them with its read_file helper
		ClientRPC: listeners.RPCConfiguration{
			MaximumConnections: defaultRPCClients,
			Bandwidth:          defaultRPCBandwidth,
		},

		HttpsRPC: listeners.HTTPSConfiguration{
			MaximumConnections: defaultRPCClients,
		},

		Peering: transport.Configuration{
			PublicKey:  defaultPeerPublicKeyFile,
			PrivateKey: defaultPeerPrivateKeyFile,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	// abort if the network name is not recognised, and if the
	// database was not specified switch to the network's default
	options.Network = strings.ToLower(options.Network)
	if !network.Valid(options.Network) {
		return nil, fmt.Errorf("network: %q is not supported", options.Network)
	}

	// if database was not changed from default
	if options.Database.Name == defaultLambdaDatabase {
		switch options.Network {
		case network.Lambda:
			// already correct default
		case network.Testing:
			options.Database.Name = defaultTestingDatabase
		case network.Local:
			options.Database.Name = defaultLocalDatabase
		default:
			return nil, fmt.Errorf("network: %s no default database setting", options.Network)
		}
	}

	// the node name defaults to the hostname
	if "" == options.Node.Name {
		host, err := os.Hostname()
		if nil != err {
			return nil, err
		}
		options.Node.Name = host
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	// empty peering key files select plain sockets
	optionalAbsolute := []*string{
		&options.PidFile,
		&options.Peering.PublicKey,
		&options.Peering.PrivateKey,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path separator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = util.EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fmt.Errorf("files: %q is not plain name", *f[0])
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		*d = util.EnsureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}
