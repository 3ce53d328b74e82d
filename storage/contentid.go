// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/fault"
)

// ContentID - derive the id of a record from its bytes
//
// CIDv1 with the raw multicodec and a sha2-256 multihash
func ContentID(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)

	// unreachable for sha2-256 with default length
	logger.PanicIfError("storage.ContentID", err)

	return cid.NewCidV1(cid.Raw, sum).String()
}

// ValidateID - check a content id decodes
func ValidateID(id string) error {
	if _, err := cid.Decode(id); nil != err {
		return fault.NotADigest
	}
	return nil
}
