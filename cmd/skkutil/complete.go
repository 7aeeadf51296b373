// Copyright 2026 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

var completeCommand = &cli.Command{
	Name:      "complete",
	Usage:     "print the okuri-nasi keys starting with a prefix",
	ArgsUsage: "PREFIX",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "feed",
			Usage:   "romaji typed after the prefix",
			Aliases: []string{"f"},
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("%w: expected one prefix", ErrFlagParse)
		}

		lib, done, err := openLibrary(c)
		if err != nil {
			return err
		}
		defer done()

		tbl := newTable(c, "Key", "Candidates")
		for _, comp := range lib.Candidates(c.Context, c.Args().First(), c.String("feed")) {
			tbl.AddRow(comp.Key, strings.Join(comp.Candidates, "/"))
		}
		tbl.Print()
		return nil
	},
}
