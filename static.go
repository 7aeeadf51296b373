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
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/transform"

	"github.com/ianlewis/go-skk/charset"
	"github.com/ianlewis/go-skk/codec"
	"github.com/ianlewis/go-skk/internal/folding"
	"github.com/ianlewis/go-skk/internal/index"
	"github.com/ianlewis/go-skk/kana"
)

var errNoPath = errors.New("no dictionary path")

// entry is an index entry of a static dictionary.
type entry struct {
	key        string
	candidates []string
}

func (e *entry) String() string {
	return e.key
}

func newEntryIndex(table map[string][]string) *index.Index[*entry] {
	entries := make([]*entry, 0, len(table))
	for k, v := range table {
		entries = append(entries, &entry{
			key:        k,
			candidates: v,
		})
	}
	return index.NewIndex(entries)
}

// StaticOptions are options for a StaticDictionary.
type StaticOptions struct {
	// KanaTable is used by completion searches with a feed.
	KanaTable kana.Table
}

// DefaultStaticOptions are the default options for a StaticDictionary.
var DefaultStaticOptions = &StaticOptions{
	KanaTable: kana.DefaultTable,
}

// StaticDictionary is a read-only dictionary loaded from a jisyo file. Its
// contents only change when Load or Reload is called.
type StaticDictionary struct {
	mu        sync.RWMutex
	okuriAri  *index.Index[*entry]
	okuriNasi *index.Index[*entry]

	path    string
	charset charset.Charset
	kana    kana.Table
}

// NewStaticDictionary returns a new empty StaticDictionary.
func NewStaticDictionary(opts *StaticOptions) *StaticDictionary {
	if opts == nil {
		opts = DefaultStaticOptions
	}
	table := opts.KanaTable
	if table == nil {
		table = kana.DefaultTable
	}
	d := &StaticDictionary{
		kana: table,
	}
	d.set(codec.New())
	return d
}

// NewStaticDictionaryFromJisyo returns a StaticDictionary holding the
// contents of j.
func NewStaticDictionaryFromJisyo(j *codec.Jisyo, opts *StaticOptions) *StaticDictionary {
	d := NewStaticDictionary(opts)
	d.set(j)
	return d
}

func (d *StaticDictionary) set(j *codec.Jisyo) {
	ari := newEntryIndex(j.OkuriAri)
	nasi := newEntryIndex(j.OkuriNasi)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.okuriAri = ari
	d.okuriNasi = nasi
}

// Kind implements [Dictionary.Kind].
func (*StaticDictionary) Kind() Kind {
	return KindStatic
}

// Path returns the path of the last loaded file.
func (d *StaticDictionary) Path() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path
}

// Len returns the total number of keys in the dictionary.
func (d *StaticDictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.okuriAri.Len() + d.okuriNasi.Len()
}

// Load reads the jisyo file at path encoded with c. Files ending in .gz are
// gzip compressed and files ending in .dz are dictzip compressed. If c is
// charset.Auto the charset is detected from the file contents. The previous
// contents are replaced; on error the dictionary is left empty.
func (d *StaticDictionary) Load(path string, c charset.Charset) error {
	d.mu.Lock()
	d.path = path
	d.charset = c
	d.mu.Unlock()

	j, err := readJisyo(path, c)
	if err != nil {
		d.set(codec.New())
		return err
	}
	d.set(j)
	return nil
}

// Reload reads the last loaded file again.
func (d *StaticDictionary) Reload() error {
	d.mu.RLock()
	path, c := d.path, d.charset
	d.mu.RUnlock()

	if path == "" {
		return errNoPath
	}
	return d.Load(path, c)
}

// Candidate implements [Dictionary.Candidate].
func (d *StaticDictionary) Candidate(_ context.Context, typ HenkanType, key string) ([]string, error) {
	d.mu.RLock()
	idx := d.okuriNasi
	if typ == OkuriAri {
		idx = d.okuriAri
	}
	d.mu.RUnlock()

	entries := idx.Search(key)
	if len(entries) == 0 {
		return nil, nil
	}
	return slices.Clone(entries[0].candidates), nil
}

// Candidates implements [Dictionary.Candidates].
func (d *StaticDictionary) Candidates(_ context.Context, prefix, feed string) ([]Completion, error) {
	d.mu.RLock()
	idx := d.okuriNasi
	d.mu.RUnlock()

	set := newCompletionSet()
	for _, p := range completionPrefixes(prefix, feed, d.kana) {
		for _, e := range idx.PrefixSearch(p) {
			set.add(e.key, e.candidates)
		}
	}
	return set.completions(), nil
}

// ReadJisyo reads and decodes the jisyo file at path the same way Load does.
func ReadJisyo(path string, c charset.Charset) (*codec.Jisyo, error) {
	return readJisyo(path, c)
}

func readJisyo(path string, c charset.Charset) (*codec.Jisyo, error) {
	b, err := readFile(path)
	if err != nil {
		return nil, err
	}

	text, err := charset.Decode(b, c)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}

	text, _, err = transform.String(folding.NewlineFolder{}, text)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}

	return codec.Decode(text), nil
}

// readFile reads the full contents of path, decompressing it based on the
// file extension.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	// dictzip files are valid gzip streams.
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".dz":
		z, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening %q: %w", path, err)
		}
		defer z.Close()
		r = z
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return b, nil
}
