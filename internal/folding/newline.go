// Copyright 2025 Ian Lewis
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

package folding

import (
	"golang.org/x/text/transform"
)

// NewlineFolder folds line endings. "\r\n" and lone '\r' are replaced with
// a single '\n'. It operates on bytes and is safe to chain after any decoder
// producing UTF-8.
type NewlineFolder struct {
	transform.NopResetter
}

// Transform implements [transform.Transformer.Transform].
func (NewlineFolder) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	var nSrc, nDst int
	for nSrc < len(src) {
		c := src[nSrc]
		size := 1
		if c == '\r' {
			if nSrc+1 >= len(src) && !atEOF {
				// The next byte decides whether this is "\r\n".
				return nDst, nSrc, transform.ErrShortSrc
			}
			if nSrc+1 < len(src) && src[nSrc+1] == '\n' {
				size = 2
			}
			c = '\n'
		}

		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = c
		nDst++
		nSrc += size
	}

	return nDst, nSrc, nil
}
