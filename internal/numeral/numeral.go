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

// Package numeral implements the numeric placeholders of SKK dictionaries.
//
// Dictionary keys store numbers as a single '#' (e.g. "#かい") and
// candidates carry a '#' followed by a format digit (e.g. "#1回"). The
// format digit selects how the number typed by the user is rendered.
package numeral

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// Marker replaces a run of digits in a dictionary key.
const Marker = "#"

var digitsRegex = regexp.MustCompile("[0-9]+")

// Abstract replaces every run of ASCII digits in s with Marker and returns
// the runs in order. nums is nil when s contains no digits.
func Abstract(s string) (abstracted string, nums []string) {
	nums = digitsRegex.FindAllString(s, -1)
	if nums == nil {
		return s, nil
	}
	return digitsRegex.ReplaceAllString(s, Marker), nums
}

// Restore replaces Marker occurrences in s with nums in order. Markers
// beyond the available numbers are left as is.
func Restore(s string, nums []string) string {
	var b strings.Builder
	i := 0
	for {
		j := strings.Index(s, Marker)
		if j < 0 || i >= len(nums) {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:j])
		b.WriteString(nums[i])
		i++
		s = s[j+len(Marker):]
	}
}

// Expand replaces the '#N' placeholders in candidate with nums, pairing the
// n-th placeholder with the n-th number. A '#' not followed by a format
// digit is literal. Placeholders without a matching number are left as is
// and surplus numbers are ignored.
func Expand(candidate string, nums []string) string {
	var b strings.Builder
	i := 0
	for {
		j := strings.Index(candidate, Marker)
		if j < 0 {
			b.WriteString(candidate)
			return b.String()
		}
		b.WriteString(candidate[:j])
		rest := candidate[j+len(Marker):]
		if rest == "" || rest[0] < '0' || rest[0] > '9' || i >= len(nums) {
			b.WriteString(Marker)
			candidate = rest
			continue
		}
		b.WriteString(Format(nums[i], rest[0]))
		i++
		candidate = rest[1:]
	}
}

// Format renders the decimal digit string digits using the SKK numeric
// format selected by suffix ('0'-'9').
//
//	'1': full-width digits (１２３)
//	'2': kanji digits without place values (一二三)
//	'3': kanji numerals with place values (百二十三)
//
// Every other format returns digits unchanged.
func Format(digits string, suffix byte) string {
	switch suffix {
	case '1':
		return width.Widen.String(digits)
	case '2':
		return kanjiDigits(digits)
	case '3':
		return kanjiPlaceValue(digits)
	default:
		return digits
	}
}

var kanjiDigit = [10]string{"〇", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

func kanjiDigits(digits string) string {
	var b strings.Builder
	for _, d := range digits {
		b.WriteString(kanjiDigit[d-'0'])
	}
	return b.String()
}

var (
	// Place values within a group of four digits, ones first.
	smallUnits = [4]string{"", "十", "百", "千"}

	// Group units for each group of four digits, lowest first.
	largeUnits = []string{"", "万", "億", "兆", "京", "垓", "𥝱", "穣", "溝", "澗", "正", "載", "極"}
)

func kanjiPlaceValue(digits string) string {
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return kanjiDigit[0]
	}
	if (len(digits)+3)/4 > len(largeUnits) {
		// Too large to name, fall back to plain digits.
		return kanjiDigits(digits)
	}

	var b strings.Builder
	for len(digits) > 0 {
		// The leading group may be shorter than four digits.
		n := len(digits) % 4
		if n == 0 {
			n = 4
		}
		group := digits[:n]
		digits = digits[n:]

		written := false
		for i, d := range group {
			if d == '0' {
				continue
			}
			place := len(group) - 1 - i
			if d != '1' || place == 0 {
				b.WriteString(kanjiDigit[d-'0'])
			}
			b.WriteString(smallUnits[place])
			written = true
		}
		if written {
			b.WriteString(largeUnits[len(digits)/4])
		}
	}
	return b.String()
}
