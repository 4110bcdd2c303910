// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
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

// Iterator walks a sequence base by base, maintaining a rolling packed
// window and emitting the canonical k-mer once the window is k bases
// wide. A non-ACGT byte invalidates the window in progress; the window
// starts accumulating again from the following base (spec §4.A
// kmerize: "the window is reset once past the offending base").
type Iterator struct {
	seq []byte
	k   int
	m   uint64 // mask for 2*k bits

	i     int // next byte to consume
	code  uint64
	valid int // consecutive valid bases accumulated so far
}

// NewIterator returns a k-mer iterator over seq.
func NewIterator(seq []byte, k int) (*Iterator, error) {
	if !ValidK(k) {
		return nil, ErrKRange
	}
	return &Iterator{seq: seq, k: k, m: mask(k)}, nil
}

// Next returns the canonical code of the next valid window and its
// 0-based start offset, or ok=false once the sequence is exhausted.
func (it *Iterator) Next() (code uint64, start int, ok bool) {
	for it.i < len(it.seq) {
		b := baseCode[it.seq[it.i]]
		it.i++
		if b < 0 {
			it.code, it.valid = 0, 0
			continue
		}
		it.code = (it.code<<2 | uint64(b)) & it.m
		it.valid++
		if it.valid < it.k {
			continue
		}
		return Canonical(it.code, it.k), it.i - it.k, true
	}
	return 0, 0, false
}
