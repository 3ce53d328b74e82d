// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/hex"
	"os"
	"strings"

	zmq "github.com/pebbe/zmq4"

	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/util"
)

const (
	taggedPublic  = "PUBLIC:"
	taggedPrivate = "PRIVATE:"
	publicLength  = 32
	privateLength = 32
)

// MakeKeyPair - create a new curve keypair and write the halves to
// separate files
func MakeKeyPair(publicKeyFileName string, privateKeyFileName string) error {
	if util.EnsureFileExists(publicKeyFileName) {
		return fault.KeyFileExists
	}

	if util.EnsureFileExists(privateKeyFileName) {
		return fault.KeyFileExists
	}

	// keys are encoded in Z85 (ZeroMQ Base-85 Encoding) see: http://rfc.zeromq.org/spec:32
	publicKey, privateKey, err := zmq.NewCurveKeypair()
	if nil != err {
		return err
	}

	publicKey = taggedPublic + hex.EncodeToString([]byte(zmq.Z85decode(publicKey))) + "\n"
	privateKey = taggedPrivate + hex.EncodeToString([]byte(zmq.Z85decode(privateKey))) + "\n"

	if err = os.WriteFile(publicKeyFileName, []byte(publicKey), 0666); nil != err {
		return err
	}

	if err = os.WriteFile(privateKeyFileName, []byte(privateKey), 0600); nil != err {
		os.Remove(publicKeyFileName)
		return err
	}

	return nil
}

// ReadPublicKeyFile - read a tagged public key file as 32 key bytes
func ReadPublicKeyFile(fileName string) ([]byte, error) {
	data, err := os.ReadFile(fileName)
	if nil != err {
		return []byte{}, err
	}
	return ReadPublicKey(string(data))
}

// ReadPrivateKeyFile - read a tagged private key file as 32 key bytes
func ReadPrivateKeyFile(fileName string) ([]byte, error) {
	data, err := os.ReadFile(fileName)
	if nil != err {
		return []byte{}, err
	}
	return ReadPrivateKey(string(data))
}

// ReadPublicKey - read a public key from a string returning it as a 32 byte string
func ReadPublicKey(key string) ([]byte, error) {
	data, private, err := ParseKey(key)
	if nil != err {
		return []byte{}, err
	}
	if private {
		return []byte{}, fault.InvalidNodeKey
	}
	return data, nil
}

// ReadPrivateKey - read a private key from a string returning it as a 32 byte string
func ReadPrivateKey(key string) ([]byte, error) {
	data, private, err := ParseKey(key)
	if nil != err {
		return []byte{}, err
	}
	if !private {
		return []byte{}, fault.InvalidNodeKey
	}
	return data, nil
}

// ParseKey - decode a tagged hex key
func ParseKey(data string) ([]byte, bool, error) {
	s := strings.TrimSpace(data)
	if strings.HasPrefix(s, taggedPrivate) {
		h, err := hex.DecodeString(s[len(taggedPrivate):])
		if nil != err {
			return []byte{}, false, err
		}
		if privateLength != len(h) {
			return []byte{}, false, fault.InvalidNodeKey
		}
		return h, true, nil
	} else if strings.HasPrefix(s, taggedPublic) {
		h, err := hex.DecodeString(s[len(taggedPublic):])
		if nil != err {
			return []byte{}, false, err
		}
		if publicLength != len(h) {
			return []byte{}, false, fault.InvalidNodeKey
		}
		return h, false, nil
	}

	return []byte{}, false, fault.InvalidNodeKey
}
