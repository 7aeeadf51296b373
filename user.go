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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/transform"

	"github.com/ianlewis/go-skk/codec"
	"github.com/ianlewis/go-skk/internal/folding"
	"github.com/ianlewis/go-skk/kana"
)

// ErrRankFormat indicates that the rank file is not a JSON array of strings.
var ErrRankFormat = errors.New("invalid rank file")

// ErrNotLoaded is returned by Save when the last Load failed. Saving then
// would replace the file with incomplete contents.
var ErrNotLoaded = errors.New("user dictionary not loaded")

// UserOptions are options for a UserDictionary.
type UserOptions struct {
	// Path is the path of the user jisyo file. The dictionary is not
	// persisted if Path is empty.
	Path string

	// RankPath is the path of the rank file. Ranks are not persisted if
	// RankPath is empty.
	RankPath string

	// KanaTable is used by completion searches with a feed.
	KanaTable kana.Table
}

// DefaultUserOptions are the default options for a UserDictionary. The
// default dictionary is not persisted.
var DefaultUserOptions = &UserOptions{
	KanaTable: kana.DefaultTable,
}

// completionCache holds the result of the last completion search.
type completionCache struct {
	valid  bool
	prefix string
	feed   string
	result []Completion
}

// UserDictionary is the user's mutable dictionary. Registered candidates
// move to the front of their entry and are ranked by how recently they were
// registered.
//
// The in-memory contents and the file are only reconciled by Load and Save.
// All methods are safe for concurrent use; mutations and persistence are
// serialized.
type UserDictionary struct {
	mu    sync.Mutex
	jisyo *codec.Jisyo
	rank  map[string]int
	clock int
	cache completionCache

	path     string
	rankPath string
	kana     kana.Table

	// modTime is the modification time of the file at the last load or
	// save.
	modTime time.Time

	// parses counts how many times the file was parsed.
	parses int

	// loadErr is the error of the last Load.
	loadErr error
}

// NewUserDictionary returns a new empty UserDictionary. Call Load to read
// the existing file.
func NewUserDictionary(opts *UserOptions) *UserDictionary {
	if opts == nil {
		opts = DefaultUserOptions
	}
	table := opts.KanaTable
	if table == nil {
		table = kana.DefaultTable
	}
	return &UserDictionary{
		jisyo:    codec.New(),
		rank:     map[string]int{},
		path:     opts.Path,
		rankPath: opts.RankPath,
		kana:     table,
	}
}

// Kind implements [Dictionary.Kind].
func (*UserDictionary) Kind() Kind {
	return KindUser
}

// Path returns the path of the user jisyo file.
func (d *UserDictionary) Path() string {
	return d.path
}

// RankPath returns the path of the rank file.
func (d *UserDictionary) RankPath() string {
	return d.rankPath
}

func (d *UserDictionary) table(typ HenkanType) map[string][]string {
	if typ == OkuriAri {
		return d.jisyo.OkuriAri
	}
	return d.jisyo.OkuriNasi
}

// Candidate implements [Dictionary.Candidate].
func (d *UserDictionary) Candidate(_ context.Context, typ HenkanType, key string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.table(typ)[key]), nil
}

// Candidates implements [Dictionary.Candidates]. The result of the last
// search is cached until the dictionary changes.
func (d *UserDictionary) Candidates(_ context.Context, prefix, feed string) ([]Completion, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneCompletions(d.complete(prefix, feed)), nil
}

// complete runs a completion search using the cache. The returned slice is
// shared with the cache and must not be modified. d.mu must be held.
func (d *UserDictionary) complete(prefix, feed string) []Completion {
	if d.cache.valid && d.cache.prefix == prefix && d.cache.feed == feed {
		return d.cache.result
	}

	set := newCompletionSet()
	for _, p := range completionPrefixes(prefix, feed, d.kana) {
		for k, v := range d.jisyo.OkuriNasi {
			if strings.HasPrefix(k, p) {
				set.add(k, v)
			}
		}
	}

	result := set.completions()
	d.cache = completionCache{
		valid:  true,
		prefix: prefix,
		feed:   feed,
		result: result,
	}
	return result
}

// validKey reports whether key can be written as a jisyo key.
func validKey(key string) bool {
	return key != "" && !strings.HasPrefix(key, ";") && !strings.ContainsAny(key, " \r\n")
}

// validCandidate reports whether candidate can be written as a jisyo
// candidate.
func validCandidate(candidate string) bool {
	return candidate != "" && !strings.ContainsAny(candidate, "/\r\n")
}

// RegisterCandidate moves candidate to the front of key's entry, adding it
// if necessary, and marks it as the most recently used candidate. Keys and
// candidates that cannot be written to the jisyo file are ignored: empty
// strings, keys with spaces or line breaks or starting with ';', and
// candidates with '/' or line breaks.
func (d *UserDictionary) RegisterCandidate(typ HenkanType, key, candidate string) {
	if !validKey(key) || !validCandidate(candidate) {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.table(typ)
	old := t[key]
	updated := make([]string, 0, len(old)+1)
	updated = append(updated, candidate)
	for _, c := range old {
		if c != candidate {
			updated = append(updated, c)
		}
	}
	t[key] = updated

	d.rank[candidate] = d.clock
	d.clock++
	d.cache = completionCache{}
}

// PurgeCandidate removes candidate from key's entry. The key is removed when
// it has no candidates left.
func (d *UserDictionary) PurgeCandidate(typ HenkanType, key, candidate string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.table(typ)
	old, ok := t[key]
	if !ok {
		return
	}

	updated := slices.DeleteFunc(slices.Clone(old), func(c string) bool {
		return c == candidate
	})
	if len(updated) == 0 {
		delete(t, key)
	} else {
		t[key] = updated
	}
	d.cache = completionCache{}
}

// Ranks returns the ranks of the candidates of okuri-nasi keys starting with
// prefix. Candidates that were never registered have no rank and are
// skipped. The sequence is computed as it is iterated and may be iterated
// more than once.
func (d *UserDictionary) Ranks(prefix string) iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		d.mu.Lock()
		completions := d.complete(prefix, "")
		d.mu.Unlock()

		seen := map[string]bool{}
		for _, c := range completions {
			for _, candidate := range c.Candidates {
				if seen[candidate] {
					continue
				}
				seen[candidate] = true

				d.mu.Lock()
				r, ok := d.rank[candidate]
				d.mu.Unlock()
				if !ok {
					continue
				}
				if !yield(candidate, r) {
					return
				}
			}
		}
	}
}

// Load reads the user jisyo file and, if configured, the rank file. It does
// nothing if the file does not exist or has not been modified since it was
// last loaded or saved.
//
// The modification time check is not atomic with the read that follows it.
func (d *UserDictionary) Load() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.loadErr = d.load()
	return d.loadErr
}

// load reads the files. d.mu must be held.
func (d *UserDictionary) load() error {
	if d.path == "" {
		return nil
	}

	info, err := os.Stat(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading user dictionary: %w", err)
	}
	if info.ModTime().Equal(d.modTime) {
		return nil
	}

	b, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("loading user dictionary: %w", err)
	}
	text, _, err := transform.String(folding.NewlineFolder{}, string(b))
	if err != nil {
		return fmt.Errorf("loading user dictionary: %w", err)
	}
	j := codec.Decode(text)

	if d.rankPath != "" {
		rank, err := readRanks(d.rankPath)
		if err != nil {
			return fmt.Errorf("loading user dictionary: %w", err)
		}
		d.rank = rank
		d.clock = 0
		for _, r := range rank {
			d.clock = max(d.clock, r+1)
		}
	}

	d.jisyo = j
	d.modTime = info.ModTime()
	d.parses++
	d.cache = completionCache{}
	return nil
}

// Save writes the user jisyo file and, if configured, the rank file. It
// does nothing if no path is configured and fails with ErrNotLoaded until a
// failed Load is followed by a successful one.
func (d *UserDictionary) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.path == "" {
		return nil
	}
	if d.loadErr != nil {
		return fmt.Errorf("saving user dictionary: %w: %w", ErrNotLoaded, d.loadErr)
	}

	if err := os.MkdirAll(filepath.Dir(d.path), 0o700); err != nil {
		return fmt.Errorf("saving user dictionary: %w", err)
	}
	var b bytes.Buffer
	if err := codec.Encode(&b, d.jisyo); err != nil {
		return fmt.Errorf("saving user dictionary: %w", err)
	}
	if err := os.WriteFile(d.path, b.Bytes(), 0o600); err != nil {
		return fmt.Errorf("saving user dictionary: %w", err)
	}

	if d.rankPath != "" {
		if err := writeRanks(d.rankPath, d.rank); err != nil {
			return fmt.Errorf("saving user dictionary: %w", err)
		}
	}

	info, err := os.Stat(d.path)
	if err != nil {
		return fmt.Errorf("saving user dictionary: %w", err)
	}
	d.modTime = info.ModTime()
	return nil
}

// readRanks reads a rank file. A missing file has no ranks. The rank of a
// candidate is its index in the array.
func readRanks(path string) (map[string]int, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rank file %q: %w", path, err)
	}

	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		return nil, fmt.Errorf("%w: %q: not an array", ErrRankFormat, path)
	}
	var values []any
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrRankFormat, path, err)
	}

	rank := make(map[string]int, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %q: element %d is not a string", ErrRankFormat, path, i)
		}
		rank[s] = i
	}
	return rank, nil
}

// writeRanks writes the candidates of rank ordered by ascending rank.
func writeRanks(path string, rank map[string]int) error {
	candidates := make([]string, 0, len(rank))
	for c := range rank {
		candidates = append(candidates, c)
	}
	slices.SortFunc(candidates, func(a, b string) int {
		return rank[a] - rank[b]
	})

	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(candidates); err != nil {
		return fmt.Errorf("encoding rank file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("writing rank file: %w", err)
	}
	if err := os.WriteFile(path, b.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing rank file: %w", err)
	}
	return nil
}
