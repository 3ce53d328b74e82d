// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/lambda-foundation/lambdad/rpc/morphisms"
)

// GetMorphism - fetch one morphism by digest or by name
func (client *Client) GetMorphism(digest string, name string) (*morphisms.GetReply, error) {

	args := morphisms.GetArguments{
		Digest: digest,
		Name:   name,
	}

	client.printJson("Get Request", args)

	var reply morphisms.GetReply
	if err := client.client.Call("Morphism.Get", &args, &reply); nil != err {
		return nil, err
	}

	client.printJson("Get Reply", reply)

	return &reply, nil
}

// ListMorphisms - fetch one page of the lexicon
func (client *Client) ListMorphisms(start uint64, count int) (*morphisms.ListReply, error) {

	args := morphisms.ListArguments{
		Start: start,
		Count: count,
	}

	client.printJson("List Request", args)

	var reply morphisms.ListReply
	if err := client.client.Call("Morphism.List", &args, &reply); nil != err {
		return nil, err
	}

	client.printJson("List Reply", reply)

	return &reply, nil
}
