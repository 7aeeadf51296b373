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
	"strings"
)

// HenkanType selects one of the two tables of a dictionary.
type HenkanType int

const (
	// OkuriNasi is the table of words without an inflected suffix.
	OkuriNasi HenkanType = iota

	// OkuriAri is the table of inflected words. Keys end with the romaji
	// consonant of the suffix, e.g. "かk" for 書く.
	OkuriAri
)

// String returns the name of the henkan type.
func (t HenkanType) String() string {
	switch t {
	case OkuriAri:
		return "okuri-ari"
	case OkuriNasi:
		return "okuri-nasi"
	default:
		return fmt.Sprintf("HenkanType(%d)", int(t))
	}
}

// ParseHenkanType parses the name of a henkan type.
func ParseHenkanType(s string) (HenkanType, error) {
	switch strings.ToLower(s) {
	case "okuri-ari", "okuriari":
		return OkuriAri, nil
	case "okuri-nasi", "okurinasi":
		return OkuriNasi, nil
	}
	return OkuriNasi, fmt.Errorf("invalid henkan type: %q", s)
}

// Kind identifies the implementation of a Dictionary.
type Kind int

const (
	// KindStatic is a read-only dictionary loaded from a file.
	KindStatic Kind = iota

	// KindUser is the user's mutable dictionary.
	KindUser

	// KindRemote is a dictionary server client.
	KindRemote

	// KindNumber is the numeric conversion wrapper.
	KindNumber
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindUser:
		return "user"
	case KindRemote:
		return "remote"
	case KindNumber:
		return "number"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Completion is a completion search result.
type Completion struct {
	// Key is the dictionary key.
	Key string

	// Candidates are the key's candidates, most preferred first.
	Candidates []string
}

// Rank is the usage rank of a candidate. Higher ranks were used more
// recently.
type Rank struct {
	Candidate string
	Rank      int
}

// Dictionary is a source of conversion candidates. The implementations are
// StaticDictionary, UserDictionary, RemoteDictionary and NumberDictionary.
type Dictionary interface {
	// Kind returns the implementation kind.
	Kind() Kind

	// Candidate returns the candidates for key in the table selected by
	// typ. A missing key returns no candidates and no error.
	Candidate(ctx context.Context, typ HenkanType, key string) ([]string, error)

	// Candidates performs a completion search for okuri-nasi keys starting
	// with prefix. feed is the romaji the user has typed but which has not
	// yet become kana.
	Candidates(ctx context.Context, prefix, feed string) ([]Completion, error)
}

// Surface returns the candidate without its annotation.
func Surface(candidate string) string {
	s, _, _ := strings.Cut(candidate, ";")
	return s
}

// Annotation returns the candidate's annotation or the empty string.
func Annotation(candidate string) string {
	_, a, _ := strings.Cut(candidate, ";")
	return a
}
