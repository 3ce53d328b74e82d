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

func runGet(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	digest := c.String("digest")
	name := c.String("name")
	if "" == digest && "" == name {
		return fmt.Errorf("one of digest or name is required")
	}

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.GetMorphism(digest, name)
	if nil != err {
		return err
	}

	printJson(m.w, response)

	return nil
}
