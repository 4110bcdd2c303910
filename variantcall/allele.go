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

// Package variantcall implements the per-scaffold pileup statistics,
// allele calling, gap detection and the two-pass driver of spec
// §4.F-§4.H.
package variantcall

import "strings"

// Allele is a bitset over the six possible alleles at a genomic
// position, mirroring variant_caller.py's Allele(IntFlag): multiple
// bits may be set to record that several alleles were observed at one
// position.
type Allele uint8

const N Allele = 0

const (
	A Allele = 1 << iota
	C
	G
	T
	INS
	DEL
)

// AllAlleles lists every non-N allele in declaration order, matching
// variant_caller.py's Allele.__iter__ order; used to size and index
// per-allele count arrays (ALLELE_MASKS/ALLELE_INDEX).
var AllAlleles = [6]Allele{A, C, G, T, INS, DEL}

// AlleleFromByte returns the Allele for a single base character, or N
// if base isn't A/C/G/T (spec §4.G "N -> bad_read").
func AlleleFromByte(base byte) Allele {
	switch base {
	case 'A':
		return A
	case 'C':
		return C
	case 'G':
		return G
	case 'T':
		return T
	default:
		return N
	}
}

// ReverseComplement returns the reverse-complement allele; only
// meaningful for a single-bit value (spec §4.G "rc" base adjustment).
func (a Allele) ReverseComplement() Allele {
	switch a {
	case A:
		return T
	case C:
		return G
	case G:
		return C
	case T:
		return A
	default:
		return a
	}
}

// Bits returns the set bits of a as individual Alleles, in declaration
// order.
func (a Allele) Bits() []Allele {
	var out []Allele
	for _, v := range AllAlleles {
		if a&v != 0 {
			out = append(out, v)
		}
	}
	return out
}

func (a Allele) String() string {
	bits := a.Bits()
	if len(bits) == 0 {
		return "N"
	}
	if len(bits) == 1 {
		return alleleName(bits[0])
	}
	names := make([]string, len(bits))
	for i, b := range bits {
		names[i] = alleleName(b)
	}
	return strings.Join(names, ",")
}

func alleleName(a Allele) string {
	switch a {
	case A:
		return "A"
	case C:
		return "C"
	case G:
		return "G"
	case T:
		return "T"
	case INS:
		return "INS"
	case DEL:
		return "DEL"
	default:
		return "N"
	}
}

// alleleIndex maps each non-N allele to its position in a
// per-position [6]uint32 counter array (ALLELE_INDEX).
var alleleIndex = map[Allele]int{A: 0, C: 1, G: 2, T: 3, INS: 4, DEL: 5}
