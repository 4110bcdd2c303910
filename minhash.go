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

import "sort"

// hashedKmer pairs a k-mer with its FNV-1a projection, the unit sorted
// by MinHash (mirrors the teacher's idxValue pairing used for sketch
// windows, here keyed by hash rather than position).
type hashedKmer struct {
	kmer uint64
	hash uint64
}

type hashedKmers []hashedKmer

func (h hashedKmers) Len() int           { return len(h) }
func (h hashedKmers) Less(i, j int) bool { return h[i].hash < h[j].hash }
func (h hashedKmers) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

// MinHash computes ks.Fingerprint: the round(fraction*|Kmers|) k-mers
// with the smallest FNV-1a hash, sorted back into ascending k-mer order
// (spec §4.B min_hash). fraction must be in (0, 1]; ks.Kmers must
// already be sorted and deduplicated.
func (ks *KmerSet) MinHash(fraction float64) {
	n := len(ks.Kmers)
	size := int(fraction*float64(n) + 0.5) // round-half-up
	if size > n {
		size = n
	}
	ks.FingerprintFraction = fraction

	if size <= 0 {
		ks.Fingerprint = []uint64{}
		return
	}

	hashed := make(hashedKmers, n)
	for i, km := range ks.Kmers {
		hashed[i] = hashedKmer{kmer: km, hash: FNVHash64(km)}
	}
	sort.Sort(hashed)

	fp := make([]uint64, size)
	for i := 0; i < size; i++ {
		fp[i] = hashed[i].kmer
	}
	sort.Slice(fp, func(i, j int) bool { return fp[i] < fp[j] })
	ks.Fingerprint = fp
}
