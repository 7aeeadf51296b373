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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/width"

	"github.com/ianlewis/go-skk"
	"github.com/ianlewis/go-skk/config"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError
)

// ErrSkkutil is a parent error for all command errors.
var ErrSkkutil = errors.New("skkutil")

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = fmt.Errorf("%w: parsing flags", ErrSkkutil)

var copyrightNames = []string{
	"2026 Ian Lewis",
}

// check checks the error and panics if not nil.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

// configLocation returns the default configuration file path.
func configLocation() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "skk", "config.yaml")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: initializing logger: %w", ErrSkkutil, err)
	}
	return logger, nil
}

// openLibrary loads the configuration and opens the dictionaries. The
// returned function closes the library.
func openLibrary(c *cli.Context) (*skk.Library, func(), error) {
	cfg, err := config.Load(c.String("config"), c.IsSet("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrSkkutil, err)
	}

	logger, err := newLogger(c.Bool("verbose") || cfg.Verbose)
	if err != nil {
		return nil, nil, err
	}

	if len(cfg.Dictionaries) == 0 {
		for _, path := range dictLocations() {
			if _, err := os.Stat(path); err == nil {
				cfg.Dictionaries = append(cfg.Dictionaries, config.DictionaryConfig{
					Path: path,
				})
			}
		}
	}

	opts, err := cfg.OpenOptions(logger)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrSkkutil, err)
	}

	// Load failures are logged by Open.
	lib, _ := skk.Open(c.Context, opts)
	return lib, func() {
		if err := lib.Close(); err != nil {
			logger.Warn("closing dictionaries", zap.Error(err))
		}
		_ = logger.Sync()
	}, nil
}

// cellWidth returns the display width of s in a terminal.
func cellWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func newTable(c *cli.Context, headers ...interface{}) table.Table {
	return table.New(headers...).
		WithWriter(c.App.Writer).
		WithWidthFunc(cellWidth)
}

func henkanType(c *cli.Context) skk.HenkanType {
	if c.Bool("okuri-ari") {
		return skk.OkuriAri
	}
	return skk.OkuriNasi
}

var okuriAriFlag = &cli.BoolFlag{
	Name:               "okuri-ari",
	Usage:              "use okuri-ari entries",
	Aliases:            []string{"a"},
	DisableDefaultText: true,
}

func newSkkutilApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Search and edit SKK dictionaries.",
		Description: strings.Join([]string{
			"SKK dictionary utility written in Go.",
			"http://github.com/ianlewis/go-skk",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "read configuration from `FILE`",
				Aliases: []string{"c"},
				Value:   configLocation(),
			},
			&cli.BoolFlag{
				Name:               "verbose",
				Usage:              "log dictionary loading to stderr",
				Aliases:            []string{"v"},
				DisableDefaultText: true,
			},

			// Special flags are shown at the end.
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"V"},
				DisableDefaultText: true,
			},
		},
		Copyright:       strings.Join(copyrightNames, "\n"),
		HideHelp:        true,
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			if c.Bool("version") {
				return printVersion(c)
			}

			check(cli.ShowAppHelp(c))
			return nil
		},
		Commands: []*cli.Command{
			queryCommand,
			completeCommand,
			registerCommand,
			purgeCommand,
			ranksCommand,
			convertCommand,
		},
	}
}
