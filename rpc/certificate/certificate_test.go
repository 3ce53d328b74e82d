// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate_test

import (
	"crypto/tls"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/rpc/certificate"
	"github.com/lambda-foundation/lambdad/rpc/fixtures"
)

func TestGet(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	wd, _ := os.Getwd()
	fixtureDir := path.Join(filepath.Dir(wd), "fixtures")
	cer := fixtures.Certificate(fixtureDir)
	key := fixtures.Key(fixtureDir)

	tlsConfig, fingerprint, err := certificate.Get(
		logger.New(fixtures.LogCategory),
		"test",
		cer,
		key,
	)
	assert.Nil(t, err, "wrong Get")

	pair, _ := tls.X509KeyPair([]byte(cer), []byte(key))

	assert.Equal(t, sha3.Sum256(pair.Certificate[0]), fingerprint, "wrong fingerprint")
	assert.Equal(t, pair, tlsConfig.Certificates[0], "wrong config")
}

func TestGetWhenBrokenPair(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	_, _, err := certificate.Get(
		logger.New(fixtures.LogCategory),
		"test",
		"not a certificate",
		"not a key",
	)
	assert.NotNil(t, err, "wrong Get")
}
