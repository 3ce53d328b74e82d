// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package morphism

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"

	"github.com/lambda-foundation/lambdad/expression"
	"github.com/lambda-foundation/lambdad/fault"
)

// limits
const (
	DigestLength = 64
)

// Digest - the identity of a morphism
// stored as a byte array
// represented as hex text for JSON encoding
// to get the bytes value just use digest[:]
type Digest [DigestLength]byte

// NewDigest - derive the digest of a definition
//
// SHA3-512 over the normalised source text so that formatting
// variants of the same definition share one identity
func NewDigest(definition string) Digest {
	return Digest(sha3.Sum512([]byte(expression.Normalise(definition))))
}

// String - convert a binary digest to a hex string for use by the fmt package (for %s)
func (digest Digest) String() string {
	return hex.EncodeToString(digest[:])
}

// GoString - convert a binary digest to a hex string for use by the fmt package (for %#v)
func (digest Digest) GoString() string {
	return "<morphism:" + hex.EncodeToString(digest[:]) + ">"
}

// Base58 - compact representation for announcements and log lines
func (digest Digest) Base58() string {
	return base58.Encode(digest[:])
}

// DigestFromBase58 - decode an announcement form digest
func DigestFromBase58(s string) (Digest, error) {
	var digest Digest
	buffer, err := base58.Decode(s)
	if nil != err {
		return digest, fault.NotADigest
	}
	if DigestLength != len(buffer) {
		return digest, fault.DigestLengthIsInvalid
	}
	copy(digest[:], buffer)
	return digest, nil
}

// DigestFromBytes - convert and validate a binary byte slice to a digest
func DigestFromBytes(digest *Digest, buffer []byte) error {
	if DigestLength != len(buffer) {
		return fault.DigestLengthIsInvalid
	}
	copy(digest[:], buffer)
	return nil
}

// Scan - convert a hex text representation to a digest for use by the format package scan routines
func (digest *Digest) Scan(state fmt.ScanState, verb rune) error {
	token, err := state.Token(true, func(c rune) bool {
		if c >= '0' && c <= '9' {
			return true
		}
		if c >= 'A' && c <= 'F' {
			return true
		}
		if c >= 'a' && c <= 'f' {
			return true
		}
		return false
	})
	if nil != err {
		return err
	}
	if len(token) != hex.EncodedLen(DigestLength) {
		return fault.NotADigest
	}

	byteCount, err := hex.Decode(digest[:], token)
	if nil != err {
		return err
	}
	if DigestLength != byteCount {
		return fault.NotADigest
	}
	return nil
}

// MarshalText - convert a digest to hex text
func (digest Digest) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(digest))
	buffer := make([]byte, size)
	hex.Encode(buffer, digest[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a digest
func (digest *Digest) UnmarshalText(s []byte) error {
	if len(digest) != hex.DecodedLen(len(s)) {
		return fault.NotADigest
	}
	byteCount, err := hex.Decode(digest[:], s)
	if nil != err {
		return err
	}
	if DigestLength != byteCount {
		return fault.NotADigest
	}
	return nil
}
