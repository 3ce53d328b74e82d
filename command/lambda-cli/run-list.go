// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/lambda-foundation/lambdad/command/lambda-cli/rpccalls"
)

func runList(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.ListMorphisms(c.Uint64("start"), c.Int("count"))
	if nil != err {
		return err
	}

	printJson(m.w, response)

	return nil
}
