// Copyright © 2018 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package reference

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Metadata is the sibling JSON sidecar of a reference FASTA (spec §6
// "Reference metadata file"): per-scaffold repetitiveness in [0,1],
// written by an external "prepare reference" step. Its absence is not
// an error; callers should log a warning and proceed without
// repetitiveness correction.
type Metadata struct {
	Repetitiveness map[string]float64 `json:"repetitiveness"`
}

// MetadataPath returns the conventional sidecar path for a reference
// FASTA: the same path with its extension replaced by ".meta.json".
func MetadataPath(fastaPath string) string {
	ext := filepath.Ext(fastaPath)
	return strings.TrimSuffix(fastaPath, ext) + ".meta.json"
}

// LoadMetadata reads the sidecar at path. A missing file is reported
// via os.IsNotExist on the returned error, which callers should treat
// as "no metadata available" rather than fatal.
func LoadMetadata(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeMetadata(f)
}

func decodeMetadata(r io.Reader) (*Metadata, error) {
	var m Metadata
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	if m.Repetitiveness == nil {
		m.Repetitiveness = map[string]float64{}
	}
	return &m, nil
}
