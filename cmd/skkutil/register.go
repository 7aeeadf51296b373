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

	"github.com/urfave/cli/v2"
)

var registerCommand = &cli.Command{
	Name:      "register",
	Usage:     "add a candidate to the user dictionary",
	ArgsUsage: "KEY CANDIDATE",
	Flags:     []cli.Flag{okuriAriFlag},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return fmt.Errorf("%w: expected a key and a candidate", ErrFlagParse)
		}

		lib, done, err := openLibrary(c)
		if err != nil {
			return err
		}
		defer done()

		lib.RegisterCandidate(henkanType(c), c.Args().Get(0), c.Args().Get(1))
		if err := lib.Save(); err != nil {
			return fmt.Errorf("%w: %w", ErrSkkutil, err)
		}
		return nil
	},
}
