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

// Package kana implements romaji to kana rule tables.
//
// The dictionaries only use the table to complete words while the user is in
// the middle of typing a kana: given the pending romaji (the feed) every rule
// whose input starts with the feed names a kana the user may be about to
// type.
package kana

import (
	"strings"
)

// Rule converts an input sequence to kana. Feed is input carried over to the
// next rule, e.g. "kk" produces "っ" and feeds "k".
type Rule struct {
	Input string
	Kana  string
	Feed  string
}

// Table is an ordered list of rules.
type Table []Rule

// Lookup returns the rule with the given input.
func (t Table) Lookup(input string) (Rule, bool) {
	for _, r := range t {
		if r.Input == input {
			return r, true
		}
	}
	return Rule{}, false
}

// Candidates returns the distinct kana produced by rules whose input starts
// with feed, in table order. Rules that produce no kana are skipped.
func (t Table) Candidates(feed string) []string {
	var kanas []string
	seen := map[string]bool{}
	for _, r := range t {
		if r.Kana == "" || !strings.HasPrefix(r.Input, feed) || seen[r.Kana] {
			continue
		}
		seen[r.Kana] = true
		kanas = append(kanas, r.Kana)
	}
	return kanas
}

// DefaultTable is a standard romaji table for hiragana.
var DefaultTable = newDefaultTable()

func newDefaultTable() Table {
	var t Table

	vowels := []string{"a", "i", "u", "e", "o"}
	rows := []struct {
		consonant string
		kana      [5]string
	}{
		{"", [5]string{"あ", "い", "う", "え", "お"}},
		{"k", [5]string{"か", "き", "く", "け", "こ"}},
		{"g", [5]string{"が", "ぎ", "ぐ", "げ", "ご"}},
		{"s", [5]string{"さ", "し", "す", "せ", "そ"}},
		{"z", [5]string{"ざ", "じ", "ず", "ぜ", "ぞ"}},
		{"t", [5]string{"た", "ち", "つ", "て", "と"}},
		{"d", [5]string{"だ", "ぢ", "づ", "で", "ど"}},
		{"n", [5]string{"な", "に", "ぬ", "ね", "の"}},
		{"h", [5]string{"は", "ひ", "ふ", "へ", "ほ"}},
		{"b", [5]string{"ば", "び", "ぶ", "べ", "ぼ"}},
		{"p", [5]string{"ぱ", "ぴ", "ぷ", "ぺ", "ぽ"}},
		{"m", [5]string{"ま", "み", "む", "め", "も"}},
		{"y", [5]string{"や", "", "ゆ", "", "よ"}},
		{"r", [5]string{"ら", "り", "る", "れ", "ろ"}},
		{"w", [5]string{"わ", "うぃ", "", "うぇ", "を"}},
		{"f", [5]string{"ふぁ", "ふぃ", "ふ", "ふぇ", "ふぉ"}},
		{"j", [5]string{"じゃ", "じ", "じゅ", "じぇ", "じょ"}},
		{"v", [5]string{"ゔぁ", "ゔぃ", "ゔ", "ゔぇ", "ゔぉ"}},
		{"x", [5]string{"ぁ", "ぃ", "ぅ", "ぇ", "ぉ"}},
		{"l", [5]string{"ぁ", "ぃ", "ぅ", "ぇ", "ぉ"}},
	}
	for _, row := range rows {
		for i, v := range vowels {
			if row.kana[i] == "" {
				continue
			}
			t = append(t, Rule{Input: row.consonant + v, Kana: row.kana[i]})
		}
	}

	// Contracted sounds.
	contracted := []struct {
		input string
		kana  string
	}{
		{"ky", "き"}, {"gy", "ぎ"}, {"sy", "し"}, {"zy", "じ"}, {"ty", "ち"},
		{"dy", "ぢ"}, {"ny", "に"}, {"hy", "ひ"}, {"by", "び"}, {"py", "ぴ"},
		{"my", "み"}, {"ry", "り"}, {"ch", "ち"}, {"sh", "し"},
	}
	small := []struct {
		vowel string
		kana  string
	}{
		{"a", "ゃ"}, {"u", "ゅ"}, {"o", "ょ"},
	}
	for _, c := range contracted {
		for _, s := range small {
			t = append(t, Rule{Input: c.input + s.vowel, Kana: c.kana + s.kana})
		}
	}
	t = append(t,
		Rule{Input: "shi", Kana: "し"},
		Rule{Input: "chi", Kana: "ち"},
		Rule{Input: "tsu", Kana: "つ"},
		Rule{Input: "xtu", Kana: "っ"},
		Rule{Input: "ltu", Kana: "っ"},
		Rule{Input: "xya", Kana: "ゃ"},
		Rule{Input: "xyu", Kana: "ゅ"},
		Rule{Input: "xyo", Kana: "ょ"},
		Rule{Input: "nn", Kana: "ん"},
		Rule{Input: "n'", Kana: "ん"},
		Rule{Input: "-", Kana: "ー"},
	)

	// Doubled consonants produce a sokuon and feed the consonant.
	for _, c := range []string{"k", "g", "s", "z", "t", "d", "h", "b", "p", "m", "r", "w", "f", "j", "v", "c"} {
		t = append(t, Rule{Input: c + c, Kana: "っ", Feed: c})
	}

	return t
}
