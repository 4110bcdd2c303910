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

package strainge

import "fmt"

// ErrorKind classifies the errors the core raises, so callers (CLI,
// pipelines) can decide exit codes without string-matching messages.
type ErrorKind int

const (
	// BadInput covers malformed container files, unexpected type tags,
	// and inconsistent parallel arrays.
	BadInput ErrorKind = iota
	// InvalidConfig covers out-of-range k, negative thresholds, and
	// incompatible option combinations.
	InvalidConfig
	// MissingData covers a requested strain or scaffold absent from a
	// database or reference.
	MissingData
	// ExternalFailure covers I/O errors surfaced unchanged from a
	// collaborator (sequence reader, pileup iterator, persistence).
	ExternalFailure
)

func (k ErrorKind) String() string {
	switch k {
	case BadInput:
		return "bad input"
	case InvalidConfig:
		return "invalid config"
	case MissingData:
		return "missing data"
	case ExternalFailure:
		return "external failure"
	default:
		return "unknown error"
	}
}

// Error is the typed error the core raises, per spec §7.
type Error struct {
	Kind ErrorKind
	Path string // source path, set for ExternalFailure
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// NewExternalFailure wraps a collaborator error with its source path.
func NewExternalFailure(path string, err error) *Error {
	return &Error{Kind: ExternalFailure, Path: path, Err: err}
}

// NewBadInput wraps err as a BadInput error, for use by subpackages
// that need the core's typed error taxonomy (spec §7).
func NewBadInput(err error) *Error { return &Error{Kind: BadInput, Err: err} }

// NewInvalidConfig wraps err as an InvalidConfig error.
func NewInvalidConfig(err error) *Error { return &Error{Kind: InvalidConfig, Err: err} }

// NewMissingData wraps err as a MissingData error.
func NewMissingData(err error) *Error { return &Error{Kind: MissingData, Err: err} }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
