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

// Package strainge implements the k-mer set engine of the strain-level
// microbial-diversity toolkit: canonical k-mer encoding, sorted-array set
// algebra, frequency spectra, MinHash sketching, and the opaque on-disk
// container used by the pan-genome database.
package strainge

import "errors"

// ErrIllegalBase means a byte outside {A,C,G,T} (case-insensitive) was
// found; unlike degenerate-base toolkits, a k-mer window touching such a
// byte is discarded whole rather than approximated.
var ErrIllegalBase = errors.New("strainge: illegal base, only A/C/G/T allowed")

// ErrKRange means k is outside the supported range (2..31).
var ErrKRange = errors.New("strainge: k must be in [2, 31]")

// MinK and MaxK bound the supported k-mer length: one base must remain
// after reverse-complementing within a uint64, and k=1 offers no
// meaningful canonicalization.
const (
	MinK = 2
	MaxK = 31
)

// ValidK reports whether k is in the supported range.
func ValidK(k int) bool {
	return k >= MinK && k <= MaxK
}

var baseCode = [256]int8{}

func init() {
	for i := range baseCode {
		baseCode[i] = -1
	}
	baseCode['A'], baseCode['a'] = 0, 0
	baseCode['C'], baseCode['c'] = 1, 1
	baseCode['G'], baseCode['g'] = 2, 2
	baseCode['T'], baseCode['t'] = 3, 3
}

// bit2base maps a 2-bit code back to its base letter.
var bit2base = [4]byte{'A', 'C', 'G', 'T'}

// Encode packs a byte slice of length k (2 <= k <= 31) into a uint64,
// two bits per base (A=00, C=01, G=10, T=11), most significant base
// first. Any non-ACGT byte is rejected.
func Encode(kmer []byte) (uint64, error) {
	k := len(kmer)
	if !ValidK(k) {
		return 0, ErrKRange
	}
	var code uint64
	for i := 0; i < k; i++ {
		b := baseCode[kmer[i]]
		if b < 0 {
			return 0, ErrIllegalBase
		}
		code = code<<2 | uint64(b)
	}
	return code, nil
}

// Decode converts a packed k-mer back into its base letters.
func Decode(code uint64, k int) []byte {
	out := make([]byte, k)
	for i := k - 1; i >= 0; i-- {
		out[i] = bit2base[code&3]
		code >>= 2
	}
	return out
}

// mask returns the bitmask covering the low 2*k bits.
func mask(k int) uint64 {
	return (uint64(1) << uint(2*k)) - 1
}

// ReverseComplement returns the reverse-complement of a packed k-mer.
// Complementing 2-bit codes is `x ^ 3` (A<->T, C<->G), so reversing the
// base order and complementing every base amounts to reversing the
// 2-bit groups of the complemented code.
func ReverseComplement(code uint64, k int) uint64 {
	c := (^code) & mask(k)
	var rc uint64
	for i := 0; i < k; i++ {
		rc = rc<<2 | (c & 3)
		c >>= 2
	}
	return rc
}

// Canonical returns the lexicographic minimum of a k-mer and its
// reverse complement (spec §3, K-5): the strand-independent identity
// used everywhere else in the toolkit.
func Canonical(code uint64, k int) uint64 {
	rc := ReverseComplement(code, k)
	if rc < code {
		return rc
	}
	return code
}

// Kmer is a packed canonical (or not-yet-canonicalized) k-mer together
// with its length, mirroring the teacher's KmerCode wrapper.
type Kmer struct {
	Code uint64
	K    int
}

// NewKmer encodes raw bases into a Kmer.
func NewKmer(seq []byte) (Kmer, error) {
	code, err := Encode(seq)
	if err != nil {
		return Kmer{}, err
	}
	return Kmer{Code: code, K: len(seq)}, nil
}

// Canonical returns the canonical form of km.
func (km Kmer) Canonical() Kmer {
	return Kmer{Code: Canonical(km.Code, km.K), K: km.K}
}

// RevComp returns the reverse complement of km.
func (km Kmer) RevComp() Kmer {
	return Kmer{Code: ReverseComplement(km.Code, km.K), K: km.K}
}

// Bytes renders km back to ACGT letters.
func (km Kmer) Bytes() []byte {
	return Decode(km.Code, km.K)
}

// String renders km as a base string, grounded in kmertools.kmer_string.
func (km Kmer) String() string {
	return string(km.Bytes())
}
