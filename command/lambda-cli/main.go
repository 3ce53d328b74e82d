// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

// connection details passed to every command action
type metadata struct {
	connect string
	verbose bool
	e       io.Writer
	w       io.Writer
}

const (
	defaultConnect = "127.0.0.1:2130"
)

func main() {

	app := cli.NewApp()
	app.Name = "lambda-cli"
	app.Usage = "verify and query lambda expressions on a lambdad node"
	app.Version = Version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "connect, c",
			Value: defaultConnect,
			Usage: " lambdad host/IP and port, `HOST:PORT`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "submit",
			Usage:     "submit an expression for verification",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "expression, e",
					Value: "",
					Usage: "*lambda expression `TEXT`",
				},
				cli.StringFlag{
					Name:  "intent, i",
					Value: "",
					Usage: " describe what the expression is for `STRING`",
				},
				cli.StringSliceFlag{
					Name:  "contributor, o",
					Usage: " contributor node id `NAME`, repeat for more",
				},
			},
			Action: runSubmit,
		},
		{
			Name:      "get",
			Usage:     "fetch one morphism from the lexicon",
			ArgsUsage: "\n   (+ = select one)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "digest, d",
					Value: "",
					Usage: "+morphism digest `HEX`",
				},
				cli.StringFlag{
					Name:  "name, n",
					Value: "",
					Usage: "+morphism name `NAME`",
				},
			},
			Action: runGet,
		},
		{
			Name:      "list",
			Usage:     "list morphisms in the lexicon",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "start, s",
					Value: 0,
					Usage: " start point `COUNT`",
				},
				cli.IntFlag{
					Name:  "count, c",
					Value: 20,
					Usage: " maximum records to output `COUNT`",
				},
			},
			Action: runList,
		},
		{
			Name:   "info",
			Usage:  "display lambdad status",
			Action: runInfo,
		},
		{
			Name:  "version",
			Usage: "display lambda-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", Version)
				return nil
			},
		},
	}

	// assemble the connection details
	app.Before = func(c *cli.Context) error {

		connect := c.GlobalString("connect")
		if "" == connect {
			return fmt.Errorf("connect cannot be blank")
		}

		c.App.Metadata["config"] = &metadata{
			connect: connect,
			verbose: c.GlobalBool("verbose"),
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}

		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
