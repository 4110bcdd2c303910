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

import (
	"hash/fnv"
	"math"
)

const maxUint32 = ^uint32(0)

// MergeCounts performs a classical sorted-merge of two strictly
// increasing, duplicate-free k-mer/count arrays. Colliding keys have
// their counts summed, saturating at 2^32-1 (spec §4.A merge_counts).
// Output is strictly sorted; inputs are never mutated.
func MergeCounts(aK []uint64, aC []uint32, bK []uint64, bC []uint32) ([]uint64, []uint32) {
	outK := make([]uint64, 0, len(aK)+len(bK))
	outC := make([]uint32, 0, len(aK)+len(bK))

	i, j := 0, 0
	for i < len(aK) && j < len(bK) {
		switch {
		case aK[i] < bK[j]:
			outK = append(outK, aK[i])
			outC = append(outC, aC[i])
			i++
		case aK[i] > bK[j]:
			outK = append(outK, bK[j])
			outC = append(outC, bC[j])
			j++
		default:
			outK = append(outK, aK[i])
			outC = append(outC, saturatingAdd(aC[i], bC[j]))
			i++
			j++
		}
	}
	for ; i < len(aK); i++ {
		outK = append(outK, aK[i])
		outC = append(outC, aC[i])
	}
	for ; j < len(bK); j++ {
		outK = append(outK, bK[j])
		outC = append(outC, bC[j])
	}
	return outK, outC
}

func saturatingAdd(a, b uint32) uint32 {
	sum := uint64(a) + uint64(b)
	if sum > uint64(maxUint32) {
		return maxUint32
	}
	return uint32(sum)
}

// Intersect returns the elements of a present in b, preserving a's
// order (spec §4.A intersect). Both inputs must be sorted ascending.
func Intersect(a, b []uint64) []uint64 {
	out := make([]uint64, 0, minInt(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// IntersectIndex returns, for each element of a also present in b, the
// index into a at which it occurs (spec §4.A intersect_ix); used to
// gather parallel arrays (counts, qualities) onto the intersection.
func IntersectIndex(a, b []uint64) []int {
	out := make([]int, 0, minInt(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, i)
			i++
			j++
		}
	}
	return out
}

// Diff returns a \ b, preserving a's order (spec §4.A diff).
func Diff(a, b []uint64) []uint64 {
	out := make([]uint64, 0, len(a))
	i, j := 0, 0
	for i < len(a) {
		if j >= len(b) || a[i] < b[j] {
			out = append(out, a[i])
			i++
			continue
		}
		if a[i] > b[j] {
			j++
			continue
		}
		// equal: excluded
		i++
		j++
	}
	return out
}

// CountCommon returns the cardinality of the intersection of a and b in
// O(|a|+|b|) without materializing it (spec §4.A count_common).
func CountCommon(a, b []uint64) int {
	n := 0
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			n++
			i++
			j++
		}
	}
	return n
}

// FNVHash64 returns the FNV-1a hash of a k-mer's packed payload,
// projecting k-mers onto a pseudo-uniform space for MinHash selection
// (spec §4.A fnv_hash).
func FNVHash64(code uint64) uint64 {
	var buf [8]byte
	putUint64(buf[:], code)
	h := fnv.New64a()
	h.Write(buf[:])
	return h.Sum64()
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
}

// LanderWaterman estimates the fraction of a genome covered at least
// once given mean sequencing depth, via the classical Lander-Waterman
// formula `1 - exp(-depth)`. Shared by the strain search engine's
// est_covered (spec §4.D) and the variant caller's gap-size scaling
// (spec §4.F).
func LanderWaterman(meanCoverage float64) float64 {
	if meanCoverage <= 0 {
		return 0
	}
	return 1 - math.Exp(-meanCoverage)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
