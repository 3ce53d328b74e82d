// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/lambda-foundation/lambdad/rpc/info"
)

// GetInfo - request status from lambdad (must be matching version)
func (client *Client) GetInfo() (*info.InfoReply, error) {
	var reply info.InfoReply
	if err := client.client.Call("Node.Info", info.InfoArguments{}, &reply); nil != err {
		return nil, err
	}

	return &reply, nil
}

// GetInfoCompat - request status from lambdad (any version)
func (client *Client) GetInfoCompat() (map[string]interface{}, error) {
	var reply map[string]interface{}
	if err := client.client.Call("Node.Info", info.InfoArguments{}, &reply); nil != err {
		return nil, err
	}

	return reply, nil
}
