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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ianlewis/go-skk/internal/testutil"
)

type mutation struct {
	purge     bool
	typ       HenkanType
	key       string
	candidate string
}

func (m mutation) apply(d *UserDictionary) {
	if m.purge {
		d.PurgeCandidate(m.typ, m.key, m.candidate)
		return
	}
	d.RegisterCandidate(m.typ, m.key, m.candidate)
}

func TestUserDictionary_Mutations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutations []mutation
		typ       HenkanType
		key       string
		expected  []string
	}{
		{
			name: "register",
			mutations: []mutation{
				{key: "test", candidate: "a"},
			},
			key:      "test",
			expected: []string{"a"},
		},
		{
			name: "register moves to front",
			mutations: []mutation{
				{key: "test", candidate: "a"},
				{key: "test", candidate: "b"},
			},
			key:      "test",
			expected: []string{"b", "a"},
		},
		{
			name: "register existing moves to front",
			mutations: []mutation{
				{key: "test", candidate: "a"},
				{key: "test", candidate: "b"},
				{key: "test", candidate: "a"},
			},
			key:      "test",
			expected: []string{"a", "b"},
		},
		{
			name: "register empty candidate",
			mutations: []mutation{
				{key: "test", candidate: "a"},
				{key: "test", candidate: ""},
			},
			key:      "test",
			expected: []string{"a"},
		},
		{
			name: "register empty key",
			mutations: []mutation{
				{key: "", candidate: "a"},
			},
			key: "",
		},
		{
			name: "register candidate with slash",
			mutations: []mutation{
				{key: "test", candidate: "a"},
				{key: "test", candidate: "A/B"},
			},
			key:      "test",
			expected: []string{"a"},
		},
		{
			name: "register candidate with line break",
			mutations: []mutation{
				{key: "test", candidate: "X\nえ /Y"},
				{key: "test", candidate: "X\r"},
			},
			key: "test",
		},
		{
			name: "register key with space",
			mutations: []mutation{
				{key: "え /Y", candidate: "a"},
			},
			key: "え /Y",
		},
		{
			name: "register key with line break",
			mutations: []mutation{
				{key: "え\nお", candidate: "a"},
			},
			key: "え\nお",
		},
		{
			name: "register comment key",
			mutations: []mutation{
				{key: ";え", candidate: "a"},
			},
			key: ";え",
		},
		{
			name: "register key with slash",
			mutations: []mutation{
				{key: "a/b", candidate: "c"},
			},
			key:      "a/b",
			expected: []string{"c"},
		},
		{
			name: "okuri-ari",
			mutations: []mutation{
				{typ: OkuriAri, key: "かk", candidate: "書"},
				{typ: OkuriNasi, key: "かk", candidate: "蚊"},
			},
			typ:      OkuriAri,
			key:      "かk",
			expected: []string{"書"},
		},
		{
			name: "purge only candidate removes key",
			mutations: []mutation{
				{key: "test", candidate: "a"},
				{purge: true, key: "test", candidate: "a"},
			},
			key: "test",
		},
		{
			name: "purge one candidate",
			mutations: []mutation{
				{key: "test", candidate: "a"},
				{key: "test", candidate: "b"},
				{key: "test", candidate: "c"},
				{purge: true, key: "test", candidate: "b"},
			},
			key:      "test",
			expected: []string{"c", "a"},
		},
		{
			name: "purge missing candidate",
			mutations: []mutation{
				{key: "test", candidate: "a"},
				{purge: true, key: "test", candidate: "z"},
			},
			key:      "test",
			expected: []string{"a"},
		},
		{
			name: "purge missing key",
			mutations: []mutation{
				{purge: true, key: "test", candidate: "a"},
			},
			key: "test",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d := NewUserDictionary(nil)
			for _, m := range tc.mutations {
				m.apply(d)
			}

			got, err := d.Candidate(context.Background(), tc.typ, tc.key)
			if err != nil {
				t.Fatalf("Candidate: %v", err)
			}
			if diff := cmp.Diff(tc.expected, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Candidate (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestUserDictionary_PurgeRemovesKey(t *testing.T) {
	t.Parallel()

	d := NewUserDictionary(nil)
	d.RegisterCandidate(OkuriNasi, "test", "a")
	d.PurgeCandidate(OkuriNasi, "test", "a")

	if _, ok := d.jisyo.OkuriNasi["test"]; ok {
		t.Errorf("key %q still present", "test")
	}
}

func TestUserDictionary_Candidates(t *testing.T) {
	t.Parallel()

	d := NewUserDictionary(nil)
	d.RegisterCandidate(OkuriNasi, "かき", "柿")
	d.RegisterCandidate(OkuriNasi, "かっこ", "括弧")
	d.RegisterCandidate(OkuriNasi, "てすと", "test")
	d.RegisterCandidate(OkuriAri, "かk", "書")

	got, err := d.Candidates(context.Background(), "か", "")
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	want := []Completion{
		{Key: "かき", Candidates: []string{"柿"}},
		{Key: "かっこ", Candidates: []string{"括弧"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Candidates (-want, +got):\n%s", diff)
	}

	// The cached result is invalidated by mutations.
	d.RegisterCandidate(OkuriNasi, "かき", "牡蠣")
	d.PurgeCandidate(OkuriNasi, "かっこ", "括弧")

	got, err = d.Candidates(context.Background(), "か", "")
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	want = []Completion{
		{Key: "かき", Candidates: []string{"牡蠣", "柿"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Candidates (-want, +got):\n%s", diff)
	}

	got, err = d.Candidates(context.Background(), "か", "k")
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Candidates with feed (-want, +got):\n%s", diff)
	}
}

func TestUserDictionary_CandidatesCacheIsCopy(t *testing.T) {
	t.Parallel()

	d := NewUserDictionary(nil)
	d.RegisterCandidate(OkuriNasi, "かき", "柿")

	got, err := d.Candidates(context.Background(), "か", "")
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	got[0].Candidates[0] = "changed"

	got, err = d.Candidates(context.Background(), "か", "")
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	want := []Completion{
		{Key: "かき", Candidates: []string{"柿"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Candidates (-want, +got):\n%s", diff)
	}
}

func collectRanks(d *UserDictionary, prefix string) []Rank {
	var ranks []Rank
	for c, r := range d.Ranks(prefix) {
		ranks = append(ranks, Rank{Candidate: c, Rank: r})
	}
	return ranks
}

func TestUserDictionary_Ranks(t *testing.T) {
	t.Parallel()

	d := NewUserDictionary(nil)
	d.RegisterCandidate(OkuriNasi, "てすと", "test")
	d.RegisterCandidate(OkuriNasi, "てすと", "テスト")
	d.RegisterCandidate(OkuriNasi, "てがみ", "手紙")
	d.RegisterCandidate(OkuriNasi, "かき", "柿")

	want := []Rank{
		{Candidate: "手紙", Rank: 2},
		{Candidate: "テスト", Rank: 1},
		{Candidate: "test", Rank: 0},
	}

	// The sequence can be iterated more than once.
	for i := range 2 {
		if diff := cmp.Diff(want, collectRanks(d, "て")); diff != "" {
			t.Errorf("Ranks %d (-want, +got):\n%s", i, diff)
		}
	}

	// Stopping early.
	var first []string
	for c := range d.Ranks("て") {
		first = append(first, c)
		break
	}
	if diff := cmp.Diff([]string{"手紙"}, first); diff != "" {
		t.Errorf("Ranks break (-want, +got):\n%s", diff)
	}

	// Re-registering bumps the rank.
	d.RegisterCandidate(OkuriNasi, "てすと", "test")
	want = []Rank{
		{Candidate: "手紙", Rank: 2},
		{Candidate: "test", Rank: 4},
		{Candidate: "テスト", Rank: 1},
	}
	if diff := cmp.Diff(want, collectRanks(d, "て")); diff != "" {
		t.Errorf("Ranks (-want, +got):\n%s", diff)
	}

	if got := collectRanks(d, "ほげ"); got != nil {
		t.Errorf("Ranks: want nil, got %v", got)
	}
}

func TestUserDictionary_SaveLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	opts := &UserOptions{
		Path:     filepath.Join(dir, "skk", "jisyo"),
		RankPath: filepath.Join(dir, "skk", "rank.json"),
	}

	d := NewUserDictionary(opts)
	if err := d.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	d.RegisterCandidate(OkuriNasi, "てすと", "テスト")
	d.RegisterCandidate(OkuriNasi, "てすと", "test")
	d.RegisterCandidate(OkuriNasi, "てすと", "")
	d.RegisterCandidate(OkuriAri, "かk", "書")
	if err := d.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	b, err := os.ReadFile(opts.Path)
	if err != nil {
		t.Fatal(err)
	}
	wantText := `;; okuri-ari entries.
かk /書/
;; okuri-nasi entries.
てすと /test/テスト/
`
	if diff := cmp.Diff(wantText, string(b)); diff != "" {
		t.Errorf("jisyo file (-want, +got):\n%s", diff)
	}

	b, err = os.ReadFile(opts.RankPath)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("[\"テスト\",\"test\",\"書\"]\n", string(b)); diff != "" {
		t.Errorf("rank file (-want, +got):\n%s", diff)
	}

	d2 := NewUserDictionary(opts)
	if err := d2.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := d2.Candidate(context.Background(), OkuriNasi, "てすと")
	if err != nil {
		t.Fatalf("Candidate: %v", err)
	}
	if diff := cmp.Diff([]string{"test", "テスト"}, got); diff != "" {
		t.Errorf("Candidate (-want, +got):\n%s", diff)
	}

	// The clock continues after the loaded ranks.
	d2.RegisterCandidate(OkuriNasi, "てすと", "テスト")
	wantRanks := []Rank{
		{Candidate: "テスト", Rank: 3},
		{Candidate: "test", Rank: 1},
	}
	if diff := cmp.Diff(wantRanks, collectRanks(d2, "てす")); diff != "" {
		t.Errorf("Ranks (-want, +got):\n%s", diff)
	}
}

func TestUserDictionary_SaveNoPath(t *testing.T) {
	t.Parallel()

	d := NewUserDictionary(nil)
	d.RegisterCandidate(OkuriNasi, "てすと", "test")
	if err := d.Save(); err != nil {
		t.Errorf("Save: %v", err)
	}
	if err := d.Load(); err != nil {
		t.Errorf("Load: %v", err)
	}
}

func TestUserDictionary_LoadOnce(t *testing.T) {
	t.Parallel()

	path := testutil.MakeTempJisyo(t, testJisyo, nil)
	mtime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testutil.Touch(t, path, mtime)

	d := NewUserDictionary(&UserOptions{
		Path: path,
	})
	for range 2 {
		if err := d.Load(); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	if got, want := d.parses, 1; got != want {
		t.Errorf("parses: want %d, got %d", want, got)
	}

	// A change with the same modification time is not picked up.
	testutil.WriteJisyo(t, path, `;; okuri-ari entries.
;; okuri-nasi entries.
てすと /試験/
`, nil)
	testutil.Touch(t, path, mtime)
	if err := d.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := d.Candidate(context.Background(), OkuriNasi, "てすと")
	if err != nil {
		t.Fatalf("Candidate: %v", err)
	}
	if diff := cmp.Diff([]string{"テスト", "test"}, got); diff != "" {
		t.Errorf("Candidate (-want, +got):\n%s", diff)
	}

	testutil.Touch(t, path, mtime.Add(time.Hour))
	if err := d.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := d.parses, 2; got != want {
		t.Errorf("parses: want %d, got %d", want, got)
	}
	got, err = d.Candidate(context.Background(), OkuriNasi, "てすと")
	if err != nil {
		t.Fatalf("Candidate: %v", err)
	}
	if diff := cmp.Diff([]string{"試験"}, got); diff != "" {
		t.Errorf("Candidate (-want, +got):\n%s", diff)
	}
}

func TestUserDictionary_LoadAfterSave(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "jisyo")
	d := NewUserDictionary(&UserOptions{
		Path: path,
	})
	d.RegisterCandidate(OkuriNasi, "てすと", "test")
	if err := d.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// The file written by Save is not parsed again.
	if err := d.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := d.parses; got != 0 {
		t.Errorf("parses: want 0, got %d", got)
	}
}

func TestUserDictionary_LoadMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := NewUserDictionary(&UserOptions{
		Path:     filepath.Join(dir, "jisyo"),
		RankPath: filepath.Join(dir, "rank.json"),
	})
	if err := d.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := d.parses; got != 0 {
		t.Errorf("parses: want 0, got %d", got)
	}
}

func TestUserDictionary_SaveUnwritable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "jisyo")
	d := NewUserDictionary(&UserOptions{
		Path: path,
	})
	d.RegisterCandidate(OkuriNasi, "あ", "A/B")
	d.RegisterCandidate(OkuriNasi, "い", "X\nえ /Y")
	d.RegisterCandidate(OkuriNasi, "う", "宇")
	if err := d.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewUserDictionary(&UserOptions{
		Path: path,
	})
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := map[string][]string{
		"う": {"宇"},
	}
	if diff := cmp.Diff(want, loaded.jisyo.OkuriNasi); diff != "" {
		t.Errorf("OkuriNasi (-want, +got):\n%s", diff)
	}
}

func TestUserDictionary_SaveAfterFailedLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "jisyo")
	rankPath := filepath.Join(dir, "rank.json")
	testutil.WriteJisyo(t, path, testJisyo, nil)
	if err := os.WriteFile(rankPath, []byte(`{"not":"array"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	d := NewUserDictionary(&UserOptions{
		Path:     path,
		RankPath: rankPath,
	})
	if err := d.Load(); !errors.Is(err, ErrRankFormat) {
		t.Fatalf("Load: want %v, got %v", ErrRankFormat, err)
	}

	d.RegisterCandidate(OkuriNasi, "てすと", "試験")
	err := d.Save()
	if diff := cmp.Diff(ErrNotLoaded, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("Save (-want, +got):\n%s", diff)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if diff := cmp.Diff(testJisyo, string(b)); diff != "" {
		t.Errorf("file (-want, +got):\n%s", diff)
	}

	// A successful load allows saving again.
	if err := os.WriteFile(rankPath, []byte(`[]`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := d.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	d.RegisterCandidate(OkuriNasi, "てすと", "試験")
	if err := d.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewUserDictionary(&UserOptions{
		Path: path,
	})
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := loaded.Candidate(context.Background(), OkuriNasi, "てすと")
	if err != nil {
		t.Fatalf("Candidate: %v", err)
	}
	if diff := cmp.Diff([]string{"試験", "テスト", "test"}, got); diff != "" {
		t.Errorf("Candidate (-want, +got):\n%s", diff)
	}
	got, err = loaded.Candidate(context.Background(), OkuriNasi, "かき")
	if err != nil {
		t.Fatalf("Candidate: %v", err)
	}
	if diff := cmp.Diff([]string{"柿", "牡蠣"}, got); diff != "" {
		t.Errorf("Candidate (-want, +got):\n%s", diff)
	}
}

func TestUserDictionary_LoadRanks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rank     string
		noRank   bool
		expected []Rank
		err      error
	}{
		{
			name: "ranks",
			rank: `["柿", "テスト", "test"]`,
			expected: []Rank{
				{Candidate: "テスト", Rank: 1},
				{Candidate: "test", Rank: 2},
			},
		},
		{
			name:   "missing rank file",
			noRank: true,
		},
		{
			name: "empty array",
			rank: `[]`,
		},
		{
			name: "object",
			rank: `{"test": 1}`,
			err:  ErrRankFormat,
		},
		{
			name: "number element",
			rank: `["test", 1]`,
			err:  ErrRankFormat,
		},
		{
			name: "invalid json",
			rank: `["test"`,
			err:  ErrRankFormat,
		},
		{
			name: "empty file",
			rank: ``,
			err:  ErrRankFormat,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, "jisyo")
			rankPath := filepath.Join(dir, "rank.json")
			testutil.WriteJisyo(t, path, testJisyo, nil)
			if !tc.noRank {
				if err := os.WriteFile(rankPath, []byte(tc.rank), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			d := NewUserDictionary(&UserOptions{
				Path:     path,
				RankPath: rankPath,
			})
			err := d.Load()
			if diff := cmp.Diff(tc.err, err, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("Load (-want, +got):\n%s", diff)
			}
			if err != nil {
				return
			}

			if diff := cmp.Diff(tc.expected, collectRanks(d, "てす")); diff != "" {
				t.Errorf("Ranks (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestUserDictionary_Concurrent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "jisyo")
	d := NewUserDictionary(&UserOptions{
		Path: path,
	})

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 10 {
				d.RegisterCandidate(OkuriNasi, "てすと", fmt.Sprintf("c%d-%d", i, j))
				if _, err := d.Candidates(context.Background(), "てす", ""); err != nil {
					t.Errorf("Candidates: %v", err)
				}
				if err := d.Save(); err != nil {
					t.Errorf("Save: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	line := ""
	for _, l := range strings.Split(string(b), "\n") {
		if strings.HasPrefix(l, "てすと ") {
			line = l
		}
	}
	if got, want := strings.Count(line, "/")-1, 80; got != want {
		t.Errorf("saved candidates: want %d, got %d", want, got)
	}
}
