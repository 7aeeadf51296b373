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

	"github.com/k3a/html2text"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-skk"
)

// annotation returns the candidate's annotation as plain text. Some
// dictionaries embed HTML entities in annotations.
func annotation(candidate string) string {
	return html2text.HTML2Text(skk.Annotation(candidate))
}

var queryCommand = &cli.Command{
	Name:      "query",
	Usage:     "print the candidates for a key",
	ArgsUsage: "KEY...",
	Flags:     []cli.Flag{okuriAriFlag},
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return fmt.Errorf("%w: no key given", ErrFlagParse)
		}

		lib, done, err := openLibrary(c)
		if err != nil {
			return err
		}
		defer done()

		typ := henkanType(c)
		tbl := newTable(c, "Key", "Candidate", "Annotation")
		for _, key := range c.Args().Slice() {
			for _, cand := range lib.Candidate(c.Context, typ, key) {
				tbl.AddRow(key, skk.Surface(cand), annotation(cand))
			}
		}
		tbl.Print()
		return nil
	},
}
