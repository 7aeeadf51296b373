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
	"github.com/urfave/cli/v2"
)

var ranksCommand = &cli.Command{
	Name:      "ranks",
	Usage:     "print the usage ranks of user dictionary candidates",
	ArgsUsage: "[PREFIX]",
	Action: func(c *cli.Context) error {
		lib, done, err := openLibrary(c)
		if err != nil {
			return err
		}
		defer done()

		tbl := newTable(c, "Candidate", "Rank")
		for _, r := range lib.Ranks(c.Args().First()) {
			tbl.AddRow(r.Candidate, r.Rank)
		}
		tbl.Print()
		return nil
	},
}
