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

// Package reference implements the concatenated-reference coordinate
// model of spec §4.E: scaffolds kept in input order, with linear
// conversions between a scaffold-local coordinate and a single
// genome-wide offset.
package reference

import (
	"fmt"

	"github.com/strainge-go/strainge"
)

// Scaffold is one named, ordered sequence of a (possibly concatenated)
// reference FASTA.
type Scaffold struct {
	Name   string
	Length int
	Seq    []byte
}

// Reference holds scaffolds in input order and answers coordinate
// translation queries between a single global offset and a
// (scaffold, local coordinate) pair (spec §4.E).
type Reference struct {
	Path      string
	Scaffolds []Scaffold
	byName    map[string]int
	offsets   []int // prefix sum of scaffold lengths, offsets[i] = sum(len(Scaffolds[:i]))
	Length    int
}

// New builds a Reference from an ordered list of scaffolds.
func New(path string, scaffolds []Scaffold) *Reference {
	r := &Reference{
		Path:      path,
		Scaffolds: scaffolds,
		byName:    make(map[string]int, len(scaffolds)),
		offsets:   make([]int, len(scaffolds)),
	}

	offset := 0
	for i, s := range scaffolds {
		r.byName[s.Name] = i
		r.offsets[i] = offset
		offset += s.Length
	}
	r.Length = offset
	return r
}

// ScaffoldCoord turns a zero-based genome-wide coordinate into a
// (scaffold name, 1-based local coordinate) pair (spec §4.E
// scaffold_coord).
func (r *Reference) ScaffoldCoord(coord int) (name string, local int, err error) {
	for i, s := range r.Scaffolds {
		if coord < r.offsets[i]+s.Length {
			return s.Name, coord + 1 - r.offsets[i], nil
		}
	}
	return "", 0, strainge.NewBadInput(fmt.Errorf("reference: coordinate %d out of range (length %d)", coord, r.Length))
}

// ScaffoldToGenomeCoord turns a 1-based scaffold-local coordinate into
// a zero-based genome-wide coordinate (spec §4.E
// scaffold_to_genome_coord).
func (r *Reference) ScaffoldToGenomeCoord(scaffoldName string, local int) (int, error) {
	i, ok := r.byName[scaffoldName]
	if !ok {
		return 0, strainge.NewMissingData(fmt.Errorf("reference: scaffold %q not found", scaffoldName))
	}
	return r.offsets[i] + local - 1, nil
}

// GetSequence extracts an oriented subsequence of length starting at
// the 1-based local coordinate coord within scaffoldName (spec §4.E
// get_sequence).
func (r *Reference) GetSequence(scaffoldName string, coord, length int) ([]byte, error) {
	i, ok := r.byName[scaffoldName]
	if !ok {
		return nil, strainge.NewMissingData(fmt.Errorf("reference: scaffold %q not found", scaffoldName))
	}
	s := r.Scaffolds[i]
	start := coord - 1
	end := start + length
	if start < 0 || end > len(s.Seq) {
		return nil, strainge.NewBadInput(fmt.Errorf(
			"reference: slice [%d:%d) out of bounds for scaffold %q of length %d",
			start, end, scaffoldName, len(s.Seq)))
	}
	return s.Seq[start:end], nil
}

// Lengths returns each scaffold's length, in reference order.
func (r *Reference) Lengths() []int {
	out := make([]int, len(r.Scaffolds))
	for i, s := range r.Scaffolds {
		out[i] = s.Length
	}
	return out
}
