// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared test helpers for the rpc packages
//
// provides a throwaway rotating-file logger and a self signed
// certificate pair, generated once and cached under the fixtures
// directory so every rpc test uses the same fingerprint
package fixtures

import (
	"os"
	"path"
	"sync"
	"time"

	"github.com/bitmark-inc/certgen"
	"github.com/bitmark-inc/logger"
)

// LogCategory - logger tag used by all rpc tests
const LogCategory = "testing"

const (
	logDirectory        = "testing"
	certificateFileName = "test.crt"
	keyFileName         = "test.key"
)

var (
	certificateLock sync.Mutex
	certificatePEM  string
	keyPEM          string
)

// SetupTestLogger - create a logger in a temporary directory
func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(logDirectory, 0o700)

	logging := logger.Configuration{
		Directory: logDirectory,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

// TeardownTestLogger - remove all files created by the logger
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	_ = os.RemoveAll(logDirectory)
}

// Certificate - PEM encoded test certificate
func Certificate(dir string) string {
	certificateLock.Lock()
	defer certificateLock.Unlock()
	if "" == certificatePEM {
		generateKeyPair(dir)
	}
	return certificatePEM
}

// Key - PEM encoded private key matching Certificate
func Key(dir string) string {
	certificateLock.Lock()
	defer certificateLock.Unlock()
	if "" == keyPEM {
		generateKeyPair(dir)
	}
	return keyPEM
}

// reuse an already generated pair if present, otherwise make a fresh
// self signed one valid long enough for any test run
func generateKeyPair(dir string) {
	certificateFile := path.Join(dir, certificateFileName)
	keyFile := path.Join(dir, keyFileName)

	cert, err1 := os.ReadFile(certificateFile)
	key, err2 := os.ReadFile(keyFile)
	if nil == err1 && nil == err2 {
		certificatePEM = string(cert)
		keyPEM = string(key)
		return
	}

	validUntil := time.Now().Add(2 * time.Hour)
	cert, key, err := certgen.NewTLSCertPair("lambdad testing", validUntil, false, nil)
	if nil != err {
		panic("fixtures: certificate generation failed: " + err.Error())
	}

	certificatePEM = string(cert)
	keyPEM = string(key)

	// best effort cache, tests still work from memory if this fails
	_ = os.WriteFile(certificateFile, cert, 0o666)
	_ = os.WriteFile(keyFile, key, 0o600)
}
