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

	"github.com/ianlewis/go-skk/internal/numeral"
)

// NumberDictionary wraps a Dictionary to convert numbers. Runs of digits in
// the query are looked up as '#' and the '#0'-'#9' placeholders of the
// resulting candidates are replaced with the digits, formatted as the
// placeholder requests:
//
//	#0, #4-#9  the digits unchanged (1024)
//	#1         full-width digits (１０２４)
//	#2         kanji digits (一〇二四)
//	#3         kanji numerals (千二十四)
//
// Queries without digits are passed through unchanged.
//
// The n-th placeholder of a candidate is paired with the n-th digit run of
// the query. Placeholders without a digit run are left as is and surplus
// digit runs are ignored.
type NumberDictionary struct {
	dict Dictionary
}

// WithNumberConversion wraps d with number conversion.
func WithNumberConversion(d Dictionary) *NumberDictionary {
	return &NumberDictionary{
		dict: d,
	}
}

// Kind implements [Dictionary.Kind].
func (*NumberDictionary) Kind() Kind {
	return KindNumber
}

// Unwrap returns the wrapped dictionary.
func (d *NumberDictionary) Unwrap() Dictionary {
	return d.dict
}

// Candidate implements [Dictionary.Candidate].
func (d *NumberDictionary) Candidate(ctx context.Context, typ HenkanType, key string) ([]string, error) {
	abstracted, nums := numeral.Abstract(key)
	candidates, err := d.dict.Candidate(ctx, typ, abstracted)
	if err != nil || nums == nil {
		return candidates, err
	}
	return expandAll(candidates, nums), nil
}

// Candidates implements [Dictionary.Candidates].
func (d *NumberDictionary) Candidates(ctx context.Context, prefix, feed string) ([]Completion, error) {
	abstracted, nums := numeral.Abstract(prefix)
	completions, err := d.dict.Candidates(ctx, abstracted, feed)
	if err != nil || nums == nil {
		return completions, err
	}

	result := make([]Completion, 0, len(completions))
	for _, c := range completions {
		result = append(result, Completion{
			Key:        numeral.Restore(c.Key, nums),
			Candidates: expandAll(c.Candidates, nums),
		})
	}
	return result, nil
}

func expandAll(candidates, nums []string) []string {
	if candidates == nil {
		return nil
	}
	result := make([]string, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, numeral.Expand(c, nums))
	}
	return result
}
