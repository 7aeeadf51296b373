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
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-skk"
	"github.com/ianlewis/go-skk/charset"
	"github.com/ianlewis/go-skk/codec"
)

var convertCommand = &cli.Command{
	Name:      "convert",
	Usage:     "re-encode a jisyo file in sorted order",
	ArgsUsage: "FILE",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "from",
			Usage: "charset of the input file",
			Value: "auto",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "charset of the output",
			Value: "utf-8",
		},
		&cli.StringFlag{
			Name:    "output",
			Usage:   "write to `FILE` instead of standard output",
			Aliases: []string{"o"},
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("%w: expected one file", ErrFlagParse)
		}

		from, err := charset.Parse(c.String("from"))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFlagParse, err)
		}
		to, err := charset.Parse(c.String("to"))
		if err != nil || to == charset.Auto {
			return fmt.Errorf("%w: invalid output charset %q", ErrFlagParse, c.String("to"))
		}

		j, err := skk.ReadJisyo(c.Args().First(), from)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSkkutil, err)
		}

		b, err := charset.Encode(codec.EncodeString(j), to)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSkkutil, err)
		}

		if out := c.String("output"); out != "" {
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return fmt.Errorf("%w: %w", ErrSkkutil, err)
			}
			return nil
		}
		if _, err := c.App.Writer.Write(b); err != nil {
			return fmt.Errorf("%w: %w", ErrSkkutil, err)
		}
		return nil
	},
}
