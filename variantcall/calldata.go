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
	"sort"

	"github.com/strainge-go/strainge/reference"
)

// VariantCallData holds one ScaffoldCallData per reference scaffold
// plus genome-wide bookkeeping (spec §4.F/§4.H).
type VariantCallData struct {
	MinGapSize      int
	ReferenceLength int
	ReferenceFasta  string

	Scaffolds map[string]*ScaffoldCallData
	order     []string // insertion order, for deterministic Summarize output

	MeanCoverage         float64
	MedianCoverage       float64
	UniquelyMappedReads  int
}

// NewVariantCallData allocates one ScaffoldCallData per entry in
// scaffolds, preserving the given order for deterministic summaries.
func NewVariantCallData(scaffolds []reference.Scaffold, minGapSize int) *VariantCallData {
	d := &VariantCallData{
		MinGapSize: minGapSize,
		Scaffolds:  make(map[string]*ScaffoldCallData, len(scaffolds)),
		order:      make([]string, 0, len(scaffolds)),
	}
	for _, s := range scaffolds {
		d.Scaffolds[s.Name] = NewScaffoldCallData(s.Name, s.Length)
		d.order = append(d.order, s.Name)
		d.ReferenceLength += s.Length
	}
	return d
}

// LoadReference populates each scaffold's reference-allele mask from
// ref's sequence, and its repetitiveness from ref's metadata sidecar
// if present (spec §4.G "load_reference").
func (d *VariantCallData) LoadReference(ref *reference.Reference, meta *reference.Metadata) {
	for _, s := range ref.Scaffolds {
		sd, ok := d.Scaffolds[s.Name]
		if !ok {
			continue
		}
		for i, b := range s.Seq {
			sd.Refmask[i] = AlleleFromByte(b)
		}
	}
	if meta != nil {
		for name, rep := range meta.Repetitiveness {
			if sd, ok := d.Scaffolds[name]; ok {
				sd.Repetitiveness = rep
			}
		}
	}
	d.ReferenceFasta = ref.Path
}

// IncUniquelyMappedReads records a uniquely-mapped read for scaffold.
func (d *VariantCallData) IncUniquelyMappedReads(scaffold string) {
	d.UniquelyMappedReads++
	if sd, ok := d.Scaffolds[scaffold]; ok {
		sd.IncUniquelyMappedReads()
	}
}

// BadRead forwards to the named scaffold's BadRead, if present.
func (d *VariantCallData) BadRead(scaffold string, pos int) {
	if sd, ok := d.Scaffolds[scaffold]; ok {
		sd.BadRead(pos)
	}
}

// LowMappingQuality forwards to the named scaffold's
// LowMappingQuality, if present.
func (d *VariantCallData) LowMappingQuality(scaffold string, pos int) {
	if sd, ok := d.Scaffolds[scaffold]; ok {
		sd.LowMappingQuality(pos)
	}
}

// UpdateMappingQuality forwards to the named scaffold.
func (d *VariantCallData) UpdateMappingQuality(scaffold string, pos, mq int) {
	if sd, ok := d.Scaffolds[scaffold]; ok {
		sd.UpdateMappingQuality(pos, mq)
	}
}

// GoodRead forwards to the named scaffold's GoodRead, if present.
func (d *VariantCallData) GoodRead(scaffold string, pos int, allele Allele, baseQuality, mappingQuality int, rc bool) {
	if sd, ok := d.Scaffolds[scaffold]; ok {
		sd.GoodRead(pos, allele, baseQuality, mappingQuality, rc)
	}
}

// AnalyzeCoverage runs CalculateCoverage on every scaffold, then
// derives the genome-wide mean/median coverage.
func (d *VariantCallData) AnalyzeCoverage() {
	var all []uint32
	for _, name := range d.order {
		sd := d.Scaffolds[name]
		sd.CalculateCoverage()
		all = append(all, sd.Coverage...)
	}

	var sum float64
	for _, c := range all {
		sum += float64(c)
	}
	if d.ReferenceLength > 0 {
		d.MeanCoverage = sum / float64(d.ReferenceLength)
	}
	d.MedianCoverage = medianUint32(all)
}

// CallAlleles runs CallAlleles on every scaffold.
func (d *VariantCallData) CallAlleles(minPileupQual uint32, minQualFrac float64) {
	for _, name := range d.order {
		d.Scaffolds[name].CallAlleles(minPileupQual, minQualFrac)
	}
}

// FindGaps runs FindGaps on every scaffold, using MinGapSize.
func (d *VariantCallData) FindGaps() {
	for _, name := range d.order {
		d.Scaffolds[name].FindGaps(d.MinGapSize)
	}
}

// ScaffoldSummary is one row of the variant-caller report (spec §4.H).
type ScaffoldSummary struct {
	Name            string
	Length          int
	Repetitiveness  float64
	Coverage        float64
	Median          float64
	UniqueReads     int
	Abundance       float64
	Callable        int
	CallablePct     float64
	Confirmed       int
	ConfirmedPct    float64
	SNPs            int
	SNPPct          float64
	Multi           int
	MultiPct        float64
	LowMQ           int
	LowMQPct        float64
	HighCoverage    int
	HighCoveragePct float64
	GapCount        int
	GapLength       int
	Transitions     int
	TransitionsPct  float64
	Transversions   int
	TransversionsPct float64
}

// Summarize aggregates every scaffold's statistics into one record per
// scaffold plus a final "TOTAL" record (spec §4.H).
func (d *VariantCallData) Summarize() []ScaffoldSummary {
	uniqueLen := make(map[string]float64, len(d.order))
	abundance := make(map[string]float64, len(d.order))
	var summedAbundance float64
	for _, name := range d.order {
		sd := d.Scaffolds[name]
		ul := float64(sd.Length) * (1 - sd.Repetitiveness)
		uniqueLen[name] = ul
		var a float64
		if ul > 0 {
			a = float64(sd.ReadCount) / ul
		}
		abundance[name] = a
		summedAbundance += a
	}
	if summedAbundance > 0 {
		for name := range abundance {
			abundance[name] /= summedAbundance
		}
	}

	out := make([]ScaffoldSummary, 0, len(d.order)+1)

	var totalCallable, totalConfirmed, totalSNPs, totalMulti, totalLowMQ int
	var totalHighCov, totalGaps, totalGapLength int
	var totalTs, totalTv, totalSingles int
	var allCoverages []float64
	var lengths []int

	for _, name := range d.order {
		sd := d.Scaffolds[name]

		numCallable, numConfirmed, numSingles, numSNPs, numMulti := 0, 0, 0, 0, 0
		var transitions, transversions int

		for p := 0; p < sd.Length; p++ {
			strong := sd.Strong[p]
			if strong == N {
				continue
			}
			numCallable++
			if strong&sd.Refmask[p] != 0 {
				numConfirmed++
			}
			if isSingleBit(strong) {
				numSingles++
				if strong&^sd.Refmask[p] != 0 {
					numSNPs++
					if isTransition(sd.Refmask[p], strong) {
						transitions++
					} else {
						transversions++
					}
				}
			} else {
				numMulti++
			}
		}

		numLowMQ := countTrue(sd.LowMQRegion)
		numHighCov := countTrue(sd.HighCoverage)

		gapLength := 0
		for _, g := range sd.Gaps {
			gapLength += g.Length()
		}

		var summedCoverage float64
		for p, c := range sd.Coverage {
			if !sd.HighCoverage[p] {
				summedCoverage += float64(c)
			}
			summedCoverage += float64(sd.LowMQ[p])
		}
		coverage := summedCoverage / float64(sd.Length)
		allCoverages = append(allCoverages, coverage)
		lengths = append(lengths, sd.Length)

		combined := make([]uint32, sd.Length)
		for p := range combined {
			combined[p] = sd.Coverage[p] + sd.LowMQ[p]
		}
		medianCoverage := medianUint32(combined)

		totalCallable += numCallable
		totalConfirmed += numConfirmed
		totalSNPs += numSNPs
		totalMulti += numMulti
		totalLowMQ += numLowMQ
		totalHighCov += numHighCov
		totalGaps += len(sd.Gaps)
		totalGapLength += gapLength
		totalTs += transitions
		totalTv += transversions
		totalSingles += numSingles

		out = append(out, ScaffoldSummary{
			Name:             name,
			Length:           sd.Length,
			Repetitiveness:   sd.Repetitiveness,
			Coverage:         coverage,
			Median:           medianCoverage,
			UniqueReads:      sd.ReadCount,
			Abundance:        abundance[name],
			Callable:         numCallable,
			CallablePct:      pct(numCallable, sd.Length),
			Confirmed:        numConfirmed,
			ConfirmedPct:     pct(numConfirmed, numCallable),
			SNPs:             numSNPs,
			SNPPct:           pct(numSNPs, numCallable),
			Multi:            numMulti,
			MultiPct:         pct(numMulti, numCallable),
			LowMQ:            numLowMQ,
			LowMQPct:         pct(numLowMQ, sd.Length),
			HighCoverage:     numHighCov,
			HighCoveragePct:  pct(numHighCov, sd.Length),
			GapCount:         len(sd.Gaps),
			GapLength:        gapLength,
			Transitions:      transitions,
			TransitionsPct:   pct(transitions, numSingles),
			Transversions:    transversions,
			TransversionsPct: pct(transversions, numSingles),
		})
	}

	var avgRepetitiveness float64
	if len(d.order) > 0 {
		var sum float64
		for _, name := range d.order {
			sum += d.Scaffolds[name].Repetitiveness
		}
		avgRepetitiveness = sum / float64(len(d.order))
	}

	var weightedCoverage float64
	for i, c := range allCoverages {
		weightedCoverage += c * float64(lengths[i])
	}
	if d.ReferenceLength > 0 {
		weightedCoverage /= float64(d.ReferenceLength)
	}

	out = append(out, ScaffoldSummary{
		Name:             "TOTAL",
		Length:           d.ReferenceLength,
		Repetitiveness:   avgRepetitiveness,
		Coverage:         weightedCoverage,
		Median:           d.MedianCoverage,
		UniqueReads:      d.UniquelyMappedReads,
		Abundance:        1.0,
		Callable:         totalCallable,
		CallablePct:      pct(totalCallable, d.ReferenceLength),
		Confirmed:        totalConfirmed,
		ConfirmedPct:     pct(totalConfirmed, totalCallable),
		SNPs:             totalSNPs,
		SNPPct:           pct(totalSNPs, totalCallable),
		Multi:            totalMulti,
		MultiPct:         pct(totalMulti, totalCallable),
		LowMQ:            totalLowMQ,
		LowMQPct:         pct(totalLowMQ, d.ReferenceLength),
		HighCoverage:     totalHighCov,
		HighCoveragePct:  pct(totalHighCov, d.ReferenceLength),
		GapCount:         totalGaps,
		GapLength:        totalGapLength,
		Transitions:      totalTs,
		TransitionsPct:   pct(totalTs, totalSingles),
		Transversions:    totalTv,
		TransversionsPct: pct(totalTv, totalSingles),
	})

	return out
}

// isSingleBit reports whether exactly one bit is set in a, using the
// classic `x & (x-1) == 0` trick (spec §4.H).
func isSingleBit(a Allele) bool {
	return a != 0 && a&(a-1) == 0
}

var transitionPairs = map[[2]Allele]bool{
	{A, G}: true,
	{G, A}: true,
	{C, T}: true,
	{T, C}: true,
}

// isTransition reports whether the ref->alt substitution is a
// transition (purine<->purine or pyrimidine<->pyrimidine) rather than
// a transversion (spec §4.H, variant_caller.py count_ts_tv).
func isTransition(ref, alt Allele) bool {
	return transitionPairs[[2]Allele{ref, alt}]
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

// pct returns 100*n/total, or 0 if total is 0 (variant_caller.py utils.pct).
func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}

// sortedScaffoldNames returns d's scaffold names sorted alphabetically
// (exposed for callers that need it independent of Summarize's output,
// which follows the original reference order).
func (d *VariantCallData) sortedScaffoldNames() []string {
	out := append([]string(nil), d.order...)
	sort.Strings(out)
	return out
}
