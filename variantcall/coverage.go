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

package variantcall

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/strainge-go/strainge"
)

// alleleCounts holds, for one genomic position, the read count and
// summed base quality observed for each of the six alleles (spec §3
// "alleles[p,0,a]" / "alleles[p,1,a]").
type alleleCounts struct {
	Count [6]uint32
	Qual  [6]uint32
}

// ScaffoldCallData is the bulk per-scaffold pileup accumulator of spec
// §4.F, sized O(length) with small per-position constants.
type ScaffoldCallData struct {
	Name   string
	Length int

	ReadCount int

	Refmask  []Allele
	Alleles  []alleleCounts
	Bad      []uint32
	LowMQ    []uint32 // lowmq_count
	MQSum    []uint32

	Weak   []Allele
	Strong []Allele

	Coverage      []uint32
	HighCoverage  []bool
	MeanCoverage  float64
	MedianCoverage float64
	CoverageCutoff float64

	LowMQRegion []bool // lowmq (boolean derived array, distinct from LowMQ counts)
	Repetitiveness float64

	Gaps []Gap
}

// Gap is a maximal, sufficiently-long run of uncovered positions (spec
// §4.F find_gaps).
type Gap struct {
	Start, End int // [Start, End)
}

func (g Gap) Length() int { return g.End - g.Start }

// NewScaffoldCallData allocates a zeroed accumulator for a scaffold of
// the given length.
func NewScaffoldCallData(name string, length int) *ScaffoldCallData {
	return &ScaffoldCallData{
		Name:    name,
		Length:  length,
		Refmask: make([]Allele, length),
		Alleles: make([]alleleCounts, length),
		Bad:     make([]uint32, length),
		LowMQ:   make([]uint32, length),
		MQSum:   make([]uint32, length),
	}
}

// IncUniquelyMappedReads records one more uniquely-mapped read for
// this scaffold (spec §4.G pass 1).
func (s *ScaffoldCallData) IncUniquelyMappedReads() { s.ReadCount++ }

// BadRead records a rejected pileup observation at pos.
func (s *ScaffoldCallData) BadRead(pos int) {
	if pos < 0 || pos >= s.Length {
		return
	}
	s.Bad[pos]++
}

// LowMappingQuality records a low-mapping-quality observation at pos.
func (s *ScaffoldCallData) LowMappingQuality(pos int) {
	if pos < 0 || pos >= s.Length {
		return
	}
	s.LowMQ[pos]++
}

// UpdateMappingQuality adds mq to the running sum at pos.
func (s *ScaffoldCallData) UpdateMappingQuality(pos int, mq int) {
	if pos < 0 || pos >= s.Length {
		return
	}
	s.MQSum[pos] += uint32(mq)
}

// GoodRead records one accepted base/indel observation at pos (spec
// §4.G "good_read"). rc reverse-complements allele before indexing,
// matching an alternative-location observation on the opposite strand.
func (s *ScaffoldCallData) GoodRead(pos int, allele Allele, baseQuality, mappingQuality int, rc bool) {
	if pos < 0 || pos >= s.Length {
		return
	}
	base := allele
	if rc {
		base = allele.ReverseComplement()
	}
	ix, ok := alleleIndex[base]
	if !ok {
		return
	}
	s.Alleles[pos].Count[ix]++
	s.Alleles[pos].Qual[ix] += uint32(baseQuality)
	s.MQSum[pos] += uint32(mappingQuality)
}

// CalculateCoverage implements spec §4.F calculate_coverage.
func (s *ScaffoldCallData) CalculateCoverage() {
	s.Coverage = make([]uint32, s.Length)
	var sum float64
	for p := 0; p < s.Length; p++ {
		var depth uint32
		for _, c := range s.Alleles[p].Count {
			depth += c
		}
		s.Coverage[p] = depth + s.LowMQ[p]
		sum += float64(s.Coverage[p])
	}
	s.MeanCoverage = sum / float64(s.Length)
	s.MedianCoverage = medianUint32(s.Coverage)

	s.CoverageCutoff = poissonCoverageCutoff(math.Max(0.5, s.MedianCoverage), 0.9999999)

	s.HighCoverage = make([]bool, s.Length)
	for p, c := range s.Coverage {
		s.HighCoverage[p] = float64(c) > s.CoverageCutoff
	}
}

// poissonCoverageCutoff implements spec §4.F's "poisson_cutoff": the
// Poisson quantile function below mean 50, a cheap linear
// approximation above it (variant_caller.py poisson_coverage_cutoff).
func poissonCoverageCutoff(mean, cutoff float64) float64 {
	if mean < 50 {
		dist := distuv.Poisson{Lambda: mean}
		return dist.Quantile(cutoff)
	}
	return math.Ceil(mean*1.5 + 15.0)
}

// CallAlleles implements spec §4.F call_alleles.
func (s *ScaffoldCallData) CallAlleles(minPileupQual uint32, minQualFrac float64) {
	s.Weak = make([]Allele, s.Length)
	s.Strong = make([]Allele, s.Length)

	for p := 0; p < s.Length; p++ {
		a := &s.Alleles[p]
		var qualSum uint32
		for _, q := range a.Qual {
			qualSum += q
		}

		var weak, strong Allele
		for i, allele := range AllAlleles {
			q := a.Qual[i]
			if q > 0 {
				weak |= allele
			}
			if qualSum > 0 {
				frac := float64(q) / float64(qualSum)
				if q > minPileupQual && frac > minQualFrac {
					strong |= allele
				}
			}
		}

		if s.HighCoverage[p] {
			weak = N
			strong = N
		}

		s.Weak[p] = weak
		s.Strong[p] = strong
	}
}

// FindGaps implements spec §4.F find_gaps.
func (s *ScaffoldCallData) FindGaps(minGapSize int) {
	lw := strainge.LanderWaterman(s.MeanCoverage)
	scaled := minGapSize
	if lw > 0 {
		scaled = int(float64(minGapSize) / lw)
	}

	s.LowMQRegion = make([]bool, s.Length)
	covered := make([]bool, s.Length)
	for p := 0; p < s.Length; p++ {
		var depth uint32
		for _, c := range s.Alleles[p].Count {
			depth += c
		}
		s.LowMQRegion[p] = s.LowMQ[p] > 1 && s.LowMQ[p] > depth
		covered[p] = s.Weak[p] != N || s.LowMQRegion[p]
	}

	s.Gaps = findUncoveredRuns(covered, scaled)
}

// findUncoveredRuns returns maximal runs of false values in covered
// that are at least minSize long (spec §4.F "find maximal runs of
// equal covered ... retain only the runs that are entirely
// uncovered").
func findUncoveredRuns(covered []bool, minSize int) []Gap {
	var gaps []Gap
	n := len(covered)
	for i := 0; i < n; {
		j := i
		for j < n && covered[j] == covered[i] {
			j++
		}
		if !covered[i] && j-i >= minSize {
			gaps = append(gaps, Gap{Start: i, End: j})
		}
		i = j
	}
	return gaps
}

func medianUint32(xs []uint32) float64 {
	if len(xs) == 0 {
		return 0
	}
	cp := append([]uint32(nil), xs...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return float64(cp[mid])
	}
	return (float64(cp[mid-1]) + float64(cp[mid])) / 2
}

// Depth returns the count of all good reads at loc.
func (s *ScaffoldCallData) Depth(loc int) uint32 {
	var d uint32
	for _, c := range s.Alleles[loc].Count {
		d += c
	}
	return d
}

// QualTotal returns the sum of all quality evidence at loc.
func (s *ScaffoldCallData) QualTotal(loc int) uint32 {
	var q uint32
	for _, v := range s.Alleles[loc].Qual {
		q += v
	}
	return q
}

// TotalDepth returns Depth plus the low-mapping-quality count at loc.
func (s *ScaffoldCallData) TotalDepth(loc int) uint32 {
	return s.Depth(loc) + s.LowMQ[loc]
}

// RefCount returns the good-read count for the reference allele at loc.
func (s *ScaffoldCallData) RefCount(loc int) uint32 {
	return s.AlleleCount(loc, s.Refmask[loc])
}

// RefQual returns the quality evidence sum for the reference allele at loc.
func (s *ScaffoldCallData) RefQual(loc int) uint32 {
	return s.AlleleQual(loc, s.Refmask[loc])
}

// RefFraction returns the fraction of quality evidence supporting the
// reference allele at loc.
func (s *ScaffoldCallData) RefFraction(loc int) float64 {
	total := s.QualTotal(loc)
	if total == 0 {
		return 0
	}
	return float64(s.RefQual(loc)) / float64(total)
}

// AlleleCount returns the good-read count for allele at loc.
func (s *ScaffoldCallData) AlleleCount(loc int, allele Allele) uint32 {
	ix, ok := alleleIndex[allele]
	if !ok {
		return 0
	}
	return s.Alleles[loc].Count[ix]
}

// AlleleQual returns the quality evidence sum for allele at loc.
func (s *ScaffoldCallData) AlleleQual(loc int, allele Allele) uint32 {
	ix, ok := alleleIndex[allele]
	if !ok {
		return 0
	}
	return s.Alleles[loc].Qual[ix]
}

// MeanMQ returns the mean mapping quality of good reads at loc, or 0
// if there are none.
func (s *ScaffoldCallData) MeanMQ(loc int) float64 {
	d := s.Depth(loc)
	if d == 0 {
		return 0
	}
	return float64(s.MQSum[loc]) / float64(d)
}
