// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/lambda-foundation/lambdad/command/lambda-cli/rpccalls"
)

func runSubmit(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	expression, err := checkExpression(c.String("expression"))
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "expression: %s\n", expression)
	}

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Submit(&rpccalls.SubmitData{
		Expression:   expression,
		Intent:       c.String("intent"),
		Contributors: c.StringSlice("contributor"),
	})
	if nil != err {
		return err
	}

	printJson(m.w, response)

	return nil
}
