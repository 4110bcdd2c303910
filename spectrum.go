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
	"math"
	"sort"
)

// Spectrum returns the frequency histogram of ks: for each distinct
// count value observed, how many k-mers have that count. Both slices
// are sorted ascending by frequency (spec §4.B spectrum).
func (ks *KmerSet) Spectrum() (freq []uint32, countsAtFreq []int64) {
	hist := make(map[uint32]int64, 64)
	for _, c := range ks.Counts {
		hist[c]++
	}
	freq = make([]uint32, 0, len(hist))
	for f := range hist {
		freq = append(freq, f)
	}
	sort.Slice(freq, func(i, j int) bool { return freq[i] < freq[j] })

	countsAtFreq = make([]int64, len(freq))
	for i, f := range freq {
		countsAtFreq[i] = hist[f]
	}
	return freq, countsAtFreq
}

// SpectrumMinMax scans the frequency spectrum for the boundary between
// the error-k-mer valley and the haploid-coverage peak (spec §4.B).
// It returns (min, max, upper) and ok=true when both a valley and a
// following peak were found and the peak is at least (1+delta) times
// the valley height; otherwise ok=false (e.g. a unimodal spectrum with
// no error tail).
func (ks *KmerSet) SpectrumMinMax(delta float64, maxCN float64) (min, max, upper uint32, ok bool) {
	freq, cnt := ks.Spectrum()
	if len(freq) == 0 {
		return 0, 0, 0, false
	}

	zeroGapAt := func(i int) bool {
		return i > 0 && freq[i] != freq[i-1]+1
	}

	minIndex, maxIndex, lastIndex := 0, 0, 0
	haveMin, haveMax := false, false

	for i := range freq {
		if !haveMin {
			if cnt[i] > 1000 && float64(cnt[i]) > float64(cnt[minIndex])*(1+delta) {
				haveMin = true
			} else if zeroGapAt(i) || cnt[i] < cnt[minIndex] {
				minIndex, maxIndex = i, i
				lastIndex = i
				continue
			} else {
				lastIndex = i
				continue
			}
		}

		if !haveMax {
			if cnt[i] > cnt[maxIndex] {
				maxIndex = i
			} else if float64(cnt[i]) < float64(cnt[maxIndex])*(1-delta) {
				haveMax = true
			}
		}

		lastIndex = i

		if haveMax && (zeroGapAt(i) || float64(freq[i]) > float64(freq[maxIndex])*maxCN) {
			break
		}
	}

	if !haveMin || !haveMax {
		return 0, 0, 0, false
	}
	if float64(cnt[maxIndex]) < float64(cnt[minIndex])*(1+delta) {
		return 0, 0, 0, false
	}
	return freq[minIndex], freq[maxIndex], freq[lastIndex], true
}

// SpectrumFilter applies SpectrumMinMax's thresholds as a frequency
// filter over ks, keeping only k-mers whose count falls in
// [min, upper] (spec §4.B spectrum_filter). If no valley/peak pair is
// found, ks is left unchanged and ok is false.
func (ks *KmerSet) SpectrumFilter(delta float64, maxCN float64) (ok bool) {
	min, _, upper, found := ks.SpectrumMinMax(delta, maxCN)
	if !found {
		return false
	}

	ix := make([]int, 0, len(ks.Kmers))
	for i, c := range ks.Counts {
		if c >= min && c <= upper {
			ix = append(ix, i)
		}
	}
	ks.gather(ix)
	return true
}

// Entropy returns the Shannon entropy of ks's count distribution,
// halved because each base carries 2 bits of information (spec §4.B
// entropy). A uniform-count set of n distinct k-mers has entropy
// log2(n)/2.
func (ks *KmerSet) Entropy() float64 {
	if len(ks.Counts) == 0 {
		return 0
	}
	var total float64
	for _, c := range ks.Counts {
		total += float64(c)
	}
	if total == 0 {
		return 0
	}

	var h float64
	for _, c := range ks.Counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h / 2
}
