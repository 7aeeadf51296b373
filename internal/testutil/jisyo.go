// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package testutil

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ianlewis/go-dictzip"

	"github.com/ianlewis/go-skk/charset"
)

// MakeJisyoOptions are options for writing a test jisyo file.
type MakeJisyoOptions struct {
	// Ext is the file extension. Defaults to '.dz' if DictZip is true, '.gz'
	// if Gzip is true. Otherwise no extension is used.
	Ext string

	// DictZip indicates that the file should be compressed with DictZip.
	DictZip bool

	// Gzip indicates that the file should be compressed with gzip.
	Gzip bool

	// Charset is the encoding of the file. Defaults to UTF-8.
	Charset charset.Charset
}

// GetExt returns the file extension.
func (o *MakeJisyoOptions) GetExt() string {
	if o != nil {
		if o.Ext != "" {
			return o.Ext
		}
		if o.DictZip {
			return ".dz"
		}
		if o.Gzip {
			return ".gz"
		}
	}
	return ""
}

// GetCharset returns the charset of the file.
func (o *MakeJisyoOptions) GetCharset() charset.Charset {
	if o == nil || o.Charset == charset.Auto {
		return charset.UTF8
	}
	return o.Charset
}

// MakeTempJisyo writes text to a new file under t.TempDir and returns its
// path.
func MakeTempJisyo(t *testing.T, text string, opts *MakeJisyoOptions) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "SKK-JISYO"+opts.GetExt())
	WriteJisyo(t, path, text, opts)
	return path
}

// WriteJisyo writes text to path, replacing any existing file.
func WriteJisyo(t *testing.T, path, text string, opts *MakeJisyoOptions) {
	t.Helper()

	b, err := charset.Encode(text, opts.GetCharset())
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var w io.WriteCloser
	switch {
	case opts != nil && opts.DictZip:
		w, err = dictzip.NewWriter(f)
		if err != nil {
			t.Fatal(err)
		}
	case opts != nil && opts.Gzip:
		w = gzip.NewWriter(f)
	}

	if w == nil {
		if _, err := f.Write(b); err != nil {
			t.Fatal(err)
		}
		return
	}

	if _, err := w.Write(b); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

// Touch sets the modification time of path to mtime.
func Touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()

	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}
