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

// Package search implements the iterative greedy strain search of spec
// §4.D ("StrainGST"): repeatedly score every candidate strain in a
// pan-genome against a sample's k-mer spectrum, keep the best match,
// and subtract its k-mers from the sample before the next round.
package search

import (
	"sort"

	"github.com/strainge-go/strainge"
	"github.com/strainge-go/strainge/pangenome"
)

// Config holds the tunable thresholds of the search (spec §4.D).
type Config struct {
	Iterations  int     // max number of iterations (strains) to report; <= 0 reports no strains
	Top         int     // candidates kept per iteration; >1 enables "i.rank" output indexing
	MinScore    float64 // iteration stops once the best score drops below this
	MinEvenness float64 // candidates below this evenness are discarded before ranking
	MinFrac     float64 // a strain scores only if at least this fraction of its k-mers remain
	MinAcct     float64 // a strain scores only if it accounts for at least this fraction of the sample
	Universal   float64 // k-mers with count > Universal * median(sample counts) are excluded up front
}

// DefaultConfig mirrors straingst's CLI defaults (-i 5, -t 1, -F 0.01,
// -s 0.01, -e 0.6). universal and min_acct have no CLI flag in the
// reference tool; 10.0 and 0.1 are this port's own choices, recorded
// as an open-question resolution.
func DefaultConfig() Config {
	return Config{
		Iterations:  5,
		Top:         1,
		MinScore:    0.01,
		MinEvenness: 0.6,
		MinFrac:     0.01,
		MinAcct:     0.1,
		Universal:   10.0,
	}
}

// Sample wraps a query k-mer set. TotalKmers and DistinctKmers are
// captured at construction time, before the search engine progressively
// restricts and excludes from KS (spec §9 "Sample... preserves the
// pre-search totals needed for the summary line").
type Sample struct {
	Name          string
	KS            *strainge.KmerSet
	TotalKmers    int64
	DistinctKmers int
}

// NewSample wraps ks as a search Sample, recording its pre-search totals.
func NewSample(name string, ks *strainge.KmerSet) *Sample {
	return &Sample{
		Name:          name,
		KS:            ks,
		TotalKmers:    sumCounts(ks.Counts),
		DistinctKmers: len(ks.Kmers),
	}
}

// ScoredStrain is one strain's score against the sample's current
// k-mer spectrum, in the terms of spec §4.D's score_strain formula.
type ScoredStrain struct {
	Strain string
	Gkmers int // strain's original distinct k-mer count, unaffected by exclusion
	Ikmers int // strain's k-mers remaining after this iteration's excludes
	Skmers int // sample's distinct k-mers at the start of this iteration

	Cov    float64 // covered: fraction of the strain's (remaining) k-mers seen in the sample
	Kcov   float64 // kmer_coverage: mean sample count per shared k-mer
	Gcov   float64 // genome_coverage: summed sample counts of shared k-mers over the strain's summed (remaining) k-mer counts; est_covered applies Lander-Waterman to it
	Acct   float64 // accounted: fraction of the sample's counts explained by this strain
	Even   float64 // evenness: covered / est_covered
	Wcov   float64 // weighted_coverage: specificity-weighted coverage ratio
	Spec   float64 // specificity: sample's vs strain's mean inverse-pan-genome weight
	Score0 float64 // covered * accounted * min(evenness, 1/evenness)
	Score  float64 // score0 * min(specificity, 1/specificity)

	workingKmers []uint64 // strain's kmers after this iteration's excludes, used to seed the next excludes
}

// Iteration is one reported row: a rank-ordered ScoredStrain plus the
// iteration index it was found at (spec §6 "i" / "i.rank" column).
type Iteration struct {
	Round int // 0-based iteration number
	Rank  int // 0-based rank within the iteration, only meaningful when Config.Top > 1
	ScoredStrain
}

// Result is the full output of a search run: the sample summary line
// plus the ranked strains found across all iterations (spec §6).
type Result struct {
	SampleName    string
	TotalKmers    int64
	DistinctKmers int
	PanKmers      int64
	PanKmerCov    float64
	PanFraction   float64
	MultiRank     bool // true when Config.Top > 1, so output uses "i.rank" indexing
	Iterations    []Iteration
}

// Engine runs StrainGST searches against a fixed pan-genome.
type Engine struct {
	PanGenome *pangenome.PanGenome
	Config    Config

	// Signature, if set, screens candidate strains before scoring:
	// only strains sharing at least one k-mer with the sample's
	// current spectrum are scored each round. Building one is
	// optional and pays off mainly for pan-genomes with many strains.
	Signature *pangenome.SignatureIndex
}

// New returns an Engine bound to pg with the given config.
func New(pg *pangenome.PanGenome, cfg Config) *Engine {
	return &Engine{PanGenome: pg, Config: cfg}
}

// Run performs the iterative greedy search of spec §4.D against sample,
// mutating sample.KS as the search progresses.
func (e *Engine) Run(sample *Sample) (*Result, error) {
	ks := sample.KS
	ks.Intersect(e.PanGenome.Union)

	universalLimit := medianCount(ks.Counts) * e.Config.Universal
	var universalExcludes []uint64
	for i, c := range ks.Counts {
		if float64(c) > universalLimit {
			universalExcludes = append(universalExcludes, ks.Kmers[i])
		}
	}
	if len(universalExcludes) > 0 {
		ks.ExcludeKeys(universalExcludes)
	}

	panKmers := sumCounts(ks.Counts)
	result := &Result{
		SampleName:    sample.Name,
		TotalKmers:    sample.TotalKmers,
		DistinctKmers: sample.DistinctKmers,
		PanKmers:      panKmers,
		PanFraction:   safeDiv(float64(panKmers), float64(sample.TotalKmers)),
		MultiRank:     e.Config.Top > 1,
	}
	if len(ks.Kmers) > 0 {
		result.PanKmerCov = safeDiv(float64(panKmers), float64(len(ks.Kmers)))
	}
	// In fingerprint_override mode the union only retains a
	// FingerprintFraction sample of k-mers, so pan_kmers is scaled down
	// accordingly; scale the derived fractions back up to estimate the
	// original, unsampled proportions (spec §4.D step 3).
	if e.PanGenome.UseFingerprint && e.PanGenome.FingerprintFraction > 0 {
		scale := 1 / e.PanGenome.FingerprintFraction
		result.PanFraction *= scale
		result.PanKmerCov *= scale
	}

	excludes := universalExcludes
	for round := 0; round < e.Config.Iterations; round++ {
		scored := e.scoreAll(sample, excludes)
		if len(scored) == 0 {
			break
		}
		sort.SliceStable(scored, func(i, j int) bool {
			if scored[i].Score != scored[j].Score {
				return scored[i].Score > scored[j].Score
			}
			return scored[i].Strain < scored[j].Strain
		})

		winner := scored[0]
		if winner.Score < e.Config.MinScore {
			break
		}

		top := e.Config.Top
		if top <= 0 {
			top = 1
		}
		if top > len(scored) {
			top = len(scored)
		}
		for rank := 0; rank < top; rank++ {
			result.Iterations = append(result.Iterations, Iteration{
				Round:        round,
				Rank:         rank,
				ScoredStrain: scored[rank].ScoredStrain,
			})
		}

		excludes = winner.workingKmers
		sample.KS.ExcludeKeys(excludes)
	}

	return result, nil
}

type candidate struct {
	ScoredStrain
}

func (e *Engine) scoreAll(sample *Sample, excludes []uint64) []candidate {
	names := e.PanGenome.Names
	if e.Signature != nil {
		ix := strainge.IntersectIndex(e.PanGenome.Union.Kmers, sample.KS.Kmers)
		present := e.Signature.Candidates(ix)
		var filtered []string
		for _, name := range e.PanGenome.Names {
			if present[name] > 0 {
				filtered = append(filtered, name)
			}
		}
		names = filtered
	}

	var out []candidate
	for _, name := range names {
		strain, err := e.PanGenome.LoadStrain(name)
		if err != nil {
			continue
		}
		sc := e.scoreStrain(strain, sample, excludes)
		if sc == nil {
			continue
		}
		if sc.Even < e.Config.MinEvenness {
			continue
		}
		out = append(out, candidate{ScoredStrain: *sc})
	}
	return out
}

// scoreStrain implements search_tool.py's score_strain against a
// scratch copy of strain's cached k-mer set, so the pan-genome's
// memoized cache (pangenome.PanGenome) stays immutable across rounds
// (spec §9 design note).
func (e *Engine) scoreStrain(strain *pangenome.StrainKmerSet, sample *Sample, excludes []uint64) *ScoredStrain {
	working := strain.KS.Clone()
	if len(excludes) > 0 {
		working.ExcludeKeys(excludes)
	}

	if float64(len(working.Kmers)) < e.Config.MinFrac*float64(strain.DistinctKmers) {
		return nil
	}

	ixPan := strainge.IntersectIndex(e.PanGenome.Union.Kmers, working.Kmers)
	if len(ixPan) != len(working.Kmers) {
		// Should not happen: the pan-genome union always contains every
		// strain's k-mers. Guard rather than risk a misaligned gather.
		return nil
	}
	strainPanCounts := gatherAt(e.PanGenome.Union.Counts, ixPan)

	kmers := strainge.Intersect(working.Kmers, sample.KS.Kmers)
	if len(kmers) == 0 {
		return nil
	}

	ixStrain := strainge.IntersectIndex(working.Kmers, kmers)
	counts := gatherAt(working.Counts, ixStrain)
	panCounts := gatherAt(strainPanCounts, ixStrain)

	ixSample := strainge.IntersectIndex(sample.KS.Kmers, kmers)
	sampleCounts := gatherAt(sample.KS.Counts, ixSample)

	sampleCount := sumCounts(sampleCounts)
	sampleTotal := sumCounts(sample.KS.Counts)
	accounted := safeDiv(float64(sampleCount), float64(sampleTotal))
	if accounted < e.Config.MinAcct {
		return nil
	}

	covered := safeDiv(float64(len(kmers)), float64(len(working.Kmers)))
	kmerCoverage := safeDiv(float64(sampleCount), float64(len(kmers)))
	workingTotal := sumCounts(working.Counts)
	genomeCoverage := safeDiv(float64(sampleCount), float64(workingTotal))
	estCovered := strainge.LanderWaterman(genomeCoverage)
	evenness := safeDiv(covered, estCovered)
	score0 := covered * accounted * minRatio(evenness)

	var strainTotalWeight, sampleTotalWeight float64
	for i := range counts {
		w := 1.0 / float64(panCounts[i])
		strainTotalWeight += float64(counts[i]) * w
		sampleTotalWeight += float64(sampleCounts[i]) * w
	}
	weightedCoverage := safeDiv(sampleTotalWeight, strainTotalWeight)
	strainMeanWeight := safeDiv(strainTotalWeight, float64(sumCounts(counts)))
	sampleMeanWeight := safeDiv(sampleTotalWeight, float64(sampleCount))
	specificity := safeDiv(sampleMeanWeight, strainMeanWeight)
	score := score0 * minRatio(specificity)

	return &ScoredStrain{
		Strain: strain.Name,
		Gkmers: strain.DistinctKmers,
		Ikmers: len(working.Kmers),
		Skmers: len(sample.KS.Kmers),

		Cov:    covered,
		Kcov:   kmerCoverage,
		Gcov:   genomeCoverage,
		Acct:   accounted,
		Even:   evenness,
		Wcov:   weightedCoverage,
		Spec:   specificity,
		Score0: score0,
		Score:  score,

		workingKmers: working.Kmers,
	}
}

// minRatio returns min(x, 1/x), the symmetric penalty search_tool.py
// applies to both evenness and specificity so over- and
// under-representation are penalized alike.
func minRatio(x float64) float64 {
	if x <= 0 {
		return 0
	}
	inv := 1 / x
	if inv < x {
		return inv
	}
	return x
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func sumCounts(counts []uint32) int64 {
	var n int64
	for _, c := range counts {
		n += int64(c)
	}
	return n
}

func gatherAt(counts []uint32, ix []int) []uint32 {
	out := make([]uint32, len(ix))
	for i, p := range ix {
		out[i] = counts[p]
	}
	return out
}

// medianCount returns the median of counts, used to derive the
// universal-k-mer exclusion threshold (spec §4.D "k-mers far more
// abundant than the sample's typical count are likely universal").
func medianCount(counts []uint32) float64 {
	if len(counts) == 0 {
		return 0
	}
	cp := append([]uint32(nil), counts...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return float64(cp[mid])
	}
	return (float64(cp[mid-1]) + float64(cp[mid])) / 2
}
