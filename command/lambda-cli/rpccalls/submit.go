// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/lambda-foundation/lambdad/rpc/verify"
)

// SubmitData - data for a verification request
type SubmitData struct {
	Expression   string
	Intent       string
	Contributors []string
}

// Submit - send an expression through the full verification flow
//
// the call blocks until the network settles the outcome
func (client *Client) Submit(submitConfig *SubmitData) (*verify.SubmitReply, error) {

	args := verify.SubmitArguments{
		Expression:   submitConfig.Expression,
		Intent:       submitConfig.Intent,
		Contributors: submitConfig.Contributors,
	}

	client.printJson("Submit Request", args)

	var reply verify.SubmitReply
	if err := client.client.Call("Verify.Submit", &args, &reply); nil != err {
		return nil, err
	}

	client.printJson("Submit Reply", reply)

	return &reply, nil
}
