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

// Package charset implements the set of character encodings used by SKK
// dictionaries and dictionary servers.
//
// SKK dictionaries are commonly distributed in EUC-JP, while user
// dictionaries and newer bundled dictionaries are UTF-8. Dictionary servers
// (skkserv) usually speak EUC-JP on the wire.
package charset

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset indicates that a charset name is not supported.
var ErrUnknownCharset = errors.New("unknown charset")

// Charset is a supported character encoding.
type Charset int

const (
	// Auto selects the charset by inspecting the data. It is only meaningful
	// when decoding.
	Auto Charset = iota

	// UTF8 is UTF-8.
	UTF8

	// EUCJP is EUC-JP.
	EUCJP

	// ShiftJIS is Shift_JIS.
	ShiftJIS

	// ISO2022JP is ISO-2022-JP.
	ISO2022JP
)

var names = map[Charset]string{
	Auto:      "auto",
	UTF8:      "utf-8",
	EUCJP:     "euc-jp",
	ShiftJIS:  "shift_jis",
	ISO2022JP: "iso-2022-jp",
}

// String returns the canonical name of the charset.
func (c Charset) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return fmt.Sprintf("Charset(%d)", int(c))
}

// Parse returns the Charset for the given name. Names are matched case
// insensitively and common aliases are accepted. The empty string is Auto.
func Parse(name string) (Charset, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	switch n {
	case "", "auto":
		return Auto, nil
	case "utf-8", "utf8":
		return UTF8, nil
	case "euc-jp", "eucjp", "euc":
		return EUCJP, nil
	case "shift-jis", "shiftjis", "sjis", "cp932", "windows-31j":
		return ShiftJIS, nil
	case "iso-2022-jp", "jis":
		return ISO2022JP, nil
	}
	return Auto, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
}

// Encoding returns the x/text encoding for the charset. Auto has no encoding
// and returns nil.
func (c Charset) Encoding() encoding.Encoding {
	switch c {
	case UTF8:
		return unicode.UTF8
	case EUCJP:
		return japanese.EUCJP
	case ShiftJIS:
		return japanese.ShiftJIS
	case ISO2022JP:
		return japanese.ISO2022JP
	default:
		return nil
	}
}

// Detect guesses the charset of b. Valid UTF-8 is always reported as UTF8.
// Otherwise the guess comes from a statistical detector and may be wrong;
// EUCJP is returned when the detector has no usable answer since it is the
// historical encoding of SKK dictionaries.
func Detect(b []byte) Charset {
	if utf8.Valid(b) {
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(b)
	if err != nil || result == nil {
		return EUCJP
	}

	c, err := Parse(result.Charset)
	if err != nil || c == Auto {
		return EUCJP
	}
	return c
}

// NewDecoder returns a transformer decoding c into UTF-8. Auto is not
// accepted since it needs the full input; use Decode instead.
func NewDecoder(c Charset) (transform.Transformer, error) {
	e := c.Encoding()
	if e == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCharset, c)
	}
	return e.NewDecoder(), nil
}

// Decode decodes b from c into a UTF-8 string. Auto runs Detect first.
func Decode(b []byte, c Charset) (string, error) {
	if c == Auto {
		c = Detect(b)
	}
	d, err := NewDecoder(c)
	if err != nil {
		return "", err
	}
	s, _, err := transform.String(d, string(b))
	if err != nil {
		return "", fmt.Errorf("decoding %v: %w", c, err)
	}
	return s, nil
}

// Encode encodes the UTF-8 string s into c. Characters not representable in
// c are an error.
func Encode(s string, c Charset) ([]byte, error) {
	e := c.Encoding()
	if e == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCharset, c)
	}
	b, _, err := transform.Bytes(e.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding %v: %w", c, err)
	}
	return b, nil
}
