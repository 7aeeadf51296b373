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
	"slices"
	"strings"

	"github.com/ianlewis/go-skk/kana"
)

// completionPrefixes returns the key prefixes to search for a completion
// query. Without a feed only prefix itself is searched. With a feed the
// search is for prefix followed by each kana the feed may become.
func completionPrefixes(prefix, feed string, table kana.Table) []string {
	if feed == "" {
		return []string{prefix}
	}

	var prefixes []string
	for _, k := range table.Candidates(feed) {
		prefixes = append(prefixes, prefix+k)
	}
	return prefixes
}

// completionSet accumulates completion results keeping the first-seen order
// of candidates within a key.
type completionSet struct {
	keys map[string][]string
}

func newCompletionSet() *completionSet {
	return &completionSet{
		keys: map[string][]string{},
	}
}

func (s *completionSet) add(key string, candidates []string) {
	existing := s.keys[key]
	for _, c := range candidates {
		if !slices.Contains(existing, c) {
			existing = append(existing, c)
		}
	}
	s.keys[key] = existing
}

// completions returns the results sorted by key.
func (s *completionSet) completions() []Completion {
	if len(s.keys) == 0 {
		return nil
	}
	result := make([]Completion, 0, len(s.keys))
	for k, c := range s.keys {
		result = append(result, Completion{
			Key:        k,
			Candidates: c,
		})
	}
	slices.SortFunc(result, func(a, b Completion) int {
		return strings.Compare(a.Key, b.Key)
	})
	return result
}

func cloneCompletions(c []Completion) []Completion {
	if c == nil {
		return nil
	}
	result := make([]Completion, len(c))
	for i := range c {
		result[i] = Completion{
			Key:        c[i].Key,
			Candidates: slices.Clone(c[i].Candidates),
		}
	}
	return result
}
