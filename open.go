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

package skk

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ianlewis/go-skk/charset"
	"github.com/ianlewis/go-skk/kana"
)

// DictionaryOptions describes a static dictionary file.
type DictionaryOptions struct {
	// Path is the path of the jisyo file.
	Path string

	// Charset is the file encoding. charset.Auto detects it.
	Charset charset.Charset
}

// OpenOptions configure Open.
type OpenOptions struct {
	// Dictionaries are the static dictionaries in the order they are
	// queried.
	Dictionaries []DictionaryOptions

	// User configures the user dictionary. Its KanaTable is replaced by
	// KanaTable when that is set.
	User UserOptions

	// Server configures the dictionary server. No server is used if nil.
	Server *RemoteOptions

	// ImmediateWrite saves the user dictionary after every mutation.
	ImmediateWrite bool

	// KanaTable is used by completion searches with a feed.
	KanaTable kana.Table

	// Logger receives load failures and errors that are not returned by the
	// Library. The default logger discards everything.
	Logger *zap.Logger
}

// Open loads the configured dictionaries and returns a Library using them.
// Dictionaries that fail to load are skipped. The Library is always
// returned, along with every error that occurred while loading.
//
// Static dictionaries are loaded concurrently. The query order is the
// configuration order: the user dictionary, then the static dictionaries,
// then the server. Static dictionaries and the server are wrapped with
// number conversion.
func Open(ctx context.Context, opts *OpenOptions) (*Library, []error) {
	if opts == nil {
		opts = &OpenOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	table := opts.KanaTable
	if table == nil {
		table = kana.DefaultTable
	}

	var errs []error

	userOpts := opts.User
	userOpts.KanaTable = table
	user := NewUserDictionary(&userOpts)
	if err := user.Load(); err != nil {
		logger.Warn("loading user dictionary",
			zap.String("path", userOpts.Path),
			zap.Error(err),
		)
		errs = append(errs, err)
	}

	statics, staticErrs := loadStatic(ctx, opts.Dictionaries, table, logger)
	errs = append(errs, staticErrs...)

	sources := make([]Dictionary, 0, len(statics)+1)
	for _, d := range statics {
		sources = append(sources, WithNumberConversion(d))
	}

	if opts.Server != nil {
		remote := NewRemoteDictionary(opts.Server)
		if err := remote.Connect(ctx); err != nil {
			logger.Warn("connecting to dictionary server",
				zap.String("addr", remote.Addr()),
				zap.Error(err),
			)
			errs = append(errs, err)
		} else {
			logger.Debug("connected to dictionary server",
				zap.String("addr", remote.Addr()),
			)
			sources = append(sources, WithNumberConversion(remote))
		}
	}

	lib := NewLibrary(user, sources, &LibraryOptions{
		ImmediateWrite: opts.ImmediateWrite,
		Logger:         logger,
	})
	return lib, errs
}

// loadStatic loads the static dictionaries concurrently. The returned
// dictionaries are in configuration order and omit those that failed.
func loadStatic(ctx context.Context, dicts []DictionaryOptions, table kana.Table, logger *zap.Logger) ([]*StaticDictionary, []error) {
	loaded := make([]*StaticDictionary, len(dicts))
	loadErrs := make([]error, len(dicts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, o := range dicts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				loadErrs[i] = fmt.Errorf("loading %q: %w", o.Path, err)
				return nil
			}

			d := NewStaticDictionary(&StaticOptions{
				KanaTable: table,
			})
			if err := d.Load(o.Path, o.Charset); err != nil {
				loadErrs[i] = err
				return nil
			}
			loaded[i] = d
			return nil
		})
	}
	// Failures are recorded per dictionary; the group never returns one.
	_ = g.Wait()

	var result []*StaticDictionary
	var errs []error
	for i, d := range loaded {
		if err := loadErrs[i]; err != nil {
			logger.Warn("loading dictionary",
				zap.String("path", dicts[i].Path),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		logger.Debug("loaded dictionary",
			zap.String("path", dicts[i].Path),
			zap.Int("keys", d.Len()),
		)
		result = append(result, d)
	}
	return result, errs
}
