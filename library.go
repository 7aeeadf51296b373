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
	"errors"
	"io"
	"slices"
	"unicode/utf8"

	"go.uber.org/zap"
)

// minCompletionPrefix is the minimum number of characters in a completion
// prefix. Shorter prefixes would match most of the dictionary.
const minCompletionPrefix = 2

// LibraryOptions are options for a Library.
type LibraryOptions struct {
	// ImmediateWrite saves the user dictionary after every mutation.
	ImmediateWrite bool

	// Logger receives errors that are not returned to the caller. The
	// default logger discards everything.
	Logger *zap.Logger
}

// DefaultLibraryOptions are the default options for a Library.
var DefaultLibraryOptions = &LibraryOptions{}

// Library merges the results of a user dictionary and a list of other
// dictionaries. The user dictionary is always queried first so recently
// registered candidates come before the candidates of other dictionaries.
//
// Mutations only affect the user dictionary.
type Library struct {
	user    *UserDictionary
	sources []Dictionary

	immediateWrite bool
	logger         *zap.Logger
}

// NewLibrary returns a new Library querying user followed by sources in
// order. The user dictionary is wrapped with number conversion; sources are
// used as given.
func NewLibrary(user *UserDictionary, sources []Dictionary, opts *LibraryOptions) *Library {
	if opts == nil {
		opts = DefaultLibraryOptions
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	all := make([]Dictionary, 0, len(sources)+1)
	all = append(all, WithNumberConversion(user))
	all = append(all, sources...)

	return &Library{
		user:           user,
		sources:        all,
		immediateWrite: opts.ImmediateWrite,
		logger:         logger,
	}
}

// User returns the user dictionary.
func (l *Library) User() *UserDictionary {
	return l.user
}

// Sources returns the dictionaries queried by the library in order. The
// first is the wrapped user dictionary.
func (l *Library) Sources() []Dictionary {
	return slices.Clone(l.sources)
}

// Candidate returns the candidates of key from every dictionary in order
// with duplicates removed. Dictionaries that fail are logged and skipped.
func (l *Library) Candidate(ctx context.Context, typ HenkanType, key string) []string {
	var result []string
	for _, d := range l.sources {
		candidates, err := d.Candidate(ctx, typ, key)
		if err != nil {
			l.logger.Warn("candidate lookup failed",
				zap.Stringer("kind", d.Kind()),
				zap.Stringer("type", typ),
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		for _, c := range candidates {
			if !slices.Contains(result, c) {
				result = append(result, c)
			}
		}
	}
	return result
}

// Candidates returns the okuri-nasi keys starting with prefix, or with prefix
// followed by a kana that feed may become, and their candidates merged
// across dictionaries. Keys are sorted in ascending order. The result is
// empty if prefix is shorter than two characters.
func (l *Library) Candidates(ctx context.Context, prefix, feed string) []Completion {
	if utf8.RuneCountInString(prefix) < minCompletionPrefix {
		return nil
	}

	set := newCompletionSet()
	for _, d := range l.sources {
		completions, err := d.Candidates(ctx, prefix, feed)
		if err != nil {
			l.logger.Warn("completion search failed",
				zap.Stringer("kind", d.Kind()),
				zap.String("prefix", prefix),
				zap.String("feed", feed),
				zap.Error(err),
			)
			continue
		}
		for _, c := range completions {
			// Dictionaries without completion support return an empty key.
			if c.Key == "" {
				continue
			}
			set.add(c.Key, c.Candidates)
		}
	}
	return set.completions()
}

// Ranks returns the ranks of the user dictionary's candidates of keys
// starting with prefix.
func (l *Library) Ranks(prefix string) []Rank {
	var ranks []Rank
	for c, r := range l.user.Ranks(prefix) {
		ranks = append(ranks, Rank{
			Candidate: c,
			Rank:      r,
		})
	}
	return ranks
}

// RegisterCandidate registers candidate for key in the user dictionary.
func (l *Library) RegisterCandidate(typ HenkanType, key, candidate string) {
	l.user.RegisterCandidate(typ, key, candidate)
	l.autoSave()
}

// PurgeCandidate removes candidate for key from the user dictionary.
func (l *Library) PurgeCandidate(typ HenkanType, key, candidate string) {
	l.user.PurgeCandidate(typ, key, candidate)
	l.autoSave()
}

func (l *Library) autoSave() {
	if !l.immediateWrite {
		return
	}
	if err := l.user.Save(); err != nil {
		l.logger.Error("saving user dictionary",
			zap.String("path", l.user.Path()),
			zap.Error(err),
		)
	}
}

// Load loads the user dictionary.
func (l *Library) Load() error {
	return l.user.Load()
}

// Save saves the user dictionary.
func (l *Library) Save() error {
	return l.user.Save()
}

// Close closes every dictionary that holds resources, such as the
// connection of a RemoteDictionary. The user dictionary is not saved.
func (l *Library) Close() error {
	var errs []error
	for _, d := range l.sources {
		if c, ok := closer(d); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// closer finds an io.Closer through number conversion wrappers.
func closer(d Dictionary) (io.Closer, bool) {
	for {
		if c, ok := d.(io.Closer); ok {
			return c, true
		}
		w, ok := d.(interface{ Unwrap() Dictionary })
		if !ok {
			return nil, false
		}
		d = w.Unwrap()
	}
}
