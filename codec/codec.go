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

// Package codec implements reading and writing the SKK dictionary (jisyo)
// text format.
//
// A jisyo file has two sections introduced by marker lines:
//
//	;; okuri-ari entries.
//	おくr /送/贈/
//	;; okuri-nasi entries.
//	かんじ /漢字/感じ/
//
// Each entry line is the key, a single space and a slash delimited list of
// candidates which starts and ends with a slash. Lines before the first
// marker (usually a header comment) are ignored.
package codec

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
)

const (
	// OkuriAriMarker introduces the okuri-ari section.
	OkuriAriMarker = ";; okuri-ari entries."

	// OkuriNasiMarker introduces the okuri-nasi section.
	OkuriNasiMarker = ";; okuri-nasi entries."
)

// Jisyo is the decoded contents of a jisyo file. Each table maps a key to
// its candidates, most preferred first.
type Jisyo struct {
	OkuriAri  map[string][]string
	OkuriNasi map[string][]string
}

// New returns an empty Jisyo.
func New() *Jisyo {
	return &Jisyo{
		OkuriAri:  map[string][]string{},
		OkuriNasi: map[string][]string{},
	}
}

// Decode parses jisyo text. Decoding is lenient: lines without a space,
// comment lines and empty candidate fields are skipped.
func Decode(text string) *Jisyo {
	j := New()

	var table map[string][]string
	for line := range strings.Lines(text) {
		line = strings.TrimRight(line, "\r\n")
		switch line {
		case OkuriAriMarker:
			table = j.OkuriAri
			continue
		case OkuriNasiMarker:
			table = j.OkuriNasi
			continue
		}
		if table == nil || strings.HasPrefix(line, ";") {
			continue
		}

		key, candidates, ok := parseLine(line)
		if !ok {
			continue
		}
		for _, c := range candidates {
			if !slices.Contains(table[key], c) {
				table[key] = append(table[key], c)
			}
		}
	}

	return j
}

// parseLine parses a single entry line.
func parseLine(line string) (string, []string, bool) {
	key, rest, found := strings.Cut(line, " ")
	if !found || key == "" {
		return "", nil, false
	}

	// Candidates start at the first slash after the key.
	i := strings.IndexByte(rest, '/')
	if i < 0 {
		return "", nil, false
	}
	rest = strings.TrimSuffix(rest[i+1:], "/")

	var candidates []string
	for _, c := range strings.Split(rest, "/") {
		if c != "" {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return "", nil, false
	}
	return key, candidates, true
}

// Encode writes j as jisyo text. Okuri-ari entries are written in
// descending key order and okuri-nasi entries in ascending key order, the
// layout used by the SKK dictionaries and by other SKK implementations'
// user dictionaries. Entries without candidates are omitted.
func Encode(w io.Writer, j *Jisyo) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(bw, OkuriAriMarker); err != nil {
		return fmt.Errorf("writing jisyo: %w", err)
	}
	ariKeys := sortedKeys(j.OkuriAri)
	slices.Reverse(ariKeys)
	if err := writeEntries(bw, j.OkuriAri, ariKeys); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(bw, OkuriNasiMarker); err != nil {
		return fmt.Errorf("writing jisyo: %w", err)
	}
	if err := writeEntries(bw, j.OkuriNasi, sortedKeys(j.OkuriNasi)); err != nil {
		return err
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing jisyo: %w", err)
	}
	return nil
}

// EncodeString returns j as jisyo text.
func EncodeString(j *Jisyo) string {
	var b strings.Builder
	// strings.Builder never returns write errors.
	_ = Encode(&b, j)
	return b.String()
}

func sortedKeys(table map[string][]string) []string {
	keys := make([]string, 0, len(table))
	for k, v := range table {
		if len(v) > 0 {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

func writeEntries(w io.Writer, table map[string][]string, keys []string) error {
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s /%s/\n", k, strings.Join(table[k], "/")); err != nil {
			return fmt.Errorf("writing jisyo: %w", err)
		}
	}
	return nil
}
