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
	"strconv"
	"strings"

	"github.com/grailbio/hts/sam"

	"github.com/strainge-go/strainge/reference"
)

var (
	tagXA = sam.Tag{'X', 'A'}
	tagNM = sam.Tag{'N', 'M'}
)

// Config holds the thresholds of the two-pass variant-calling driver
// (spec §4.G VariantCaller.__init__).
type Config struct {
	MinQual           int
	MinPileupQual     uint32
	MinQualFrac       float64
	MinMappingQuality int
	MinGapSize        int
	MaxNumMismatches  int
}

// DefaultConfig returns this port's default thresholds (see DESIGN.md,
// "Config defaults").
func DefaultConfig() Config {
	return Config{
		MinQual:           5,
		MinPileupQual:     150,
		MinQualFrac:       0.1,
		MinMappingQuality: 20,
		MinGapSize:        2000,
		MaxNumMismatches:  -1,
	}
}

// Caller is the two-pass pileup-statistics driver of spec §4.G: a first
// pass over alignments to estimate per-scaffold abundance, and a second
// pass walking every read's aligned bases to update allele/coverage
// statistics, mirroring variant_caller.py's VariantCaller.
type Caller struct {
	cfg             Config
	discardedReads  map[string]struct{}
}

// NewCaller returns a Caller configured with cfg.
func NewCaller(cfg Config) *Caller {
	return &Caller{cfg: cfg, discardedReads: make(map[string]struct{})}
}

// Process runs both passes over records (already fully decoded from a
// BAM/SAM stream, e.g. via github.com/grailbio/hts/bam.Reader.Read in a
// loop) against ref, and returns the finalized call data. meta may be
// nil when no ".meta.json" repetitiveness sidecar is available.
func (c *Caller) Process(ref *reference.Reference, meta *reference.Metadata, records []*sam.Record) (*VariantCallData, error) {
	data := NewVariantCallData(ref.Scaffolds, c.cfg.MinGapSize)
	data.LoadReference(ref, meta)

	for _, rec := range records {
		if !c.passesAbundanceGate(rec) {
			continue
		}
		data.IncUniquelyMappedReads(rec.Ref.Name())
	}

	c.discardedReads = make(map[string]struct{})
	for _, rec := range records {
		c.assessRead(data, rec)
	}

	data.AnalyzeCoverage()
	data.CallAlleles(c.cfg.MinPileupQual, c.cfg.MinQualFrac)
	data.FindGaps()

	return data, nil
}

// passesAbundanceGate implements the six gating conditions of
// VariantCaller.process's first pass (spec §4.G "Estimating
// abundance").
func (c *Caller) passesAbundanceGate(rec *sam.Record) bool {
	if rec.MapQ < 3 || hasTag(rec, tagXA) {
		return false
	}
	if isPaired(rec) && !isProperPair(rec) {
		return false
	}
	if alignedLength(rec) != len(rec.Seq.Expand()) {
		return false
	}
	if isPaired(rec) {
		if absInt(rec.TempLen) < len(rec.Seq.Expand()) {
			return false
		}
	}
	if c.cfg.MaxNumMismatches > 0 && numMismatches(rec) > c.cfg.MaxNumMismatches {
		return false
	}
	return true
}

// assessRead implements VariantCaller._assess_read: for every
// reference position the read touches, decide whether the observation
// is usable and, if so, update call_data (spec §4.G).
func (c *Caller) assessRead(data *VariantCallData, rec *sam.Record) {
	scaffold := rec.Ref.Name()
	seq := rec.Seq.Expand()
	qual := rec.Qual

	for _, ab := range alignedBases(rec) {
		refpos := ab.posInRef

		if _, bad := c.discardedReads[rec.Name]; bad {
			data.BadRead(scaffold, refpos)
			continue
		}

		if isPaired(rec) && !isProperPair(rec) {
			c.discardedReads[rec.Name] = struct{}{}
			data.BadRead(scaffold, refpos)
			continue
		}
		if alignedLength(rec) != len(seq) {
			c.discardedReads[rec.Name] = struct{}{}
			data.BadRead(scaffold, refpos)
			continue
		}
		if isPaired(rec) && absInt(rec.TempLen) < len(seq) {
			c.discardedReads[rec.Name] = struct{}{}
			data.BadRead(scaffold, refpos)
			continue
		}
		if c.cfg.MaxNumMismatches > 0 && numMismatches(rec) > c.cfg.MaxNumMismatches {
			c.discardedReads[rec.Name] = struct{}{}
			data.BadRead(scaffold, refpos)
			continue
		}

		var allele Allele
		var posInRead = ab.posInRead
		switch {
		case ab.isDel:
			allele = DEL
		case ab.isIns:
			allele = INS
		default:
			if posInRead < 0 || posInRead >= len(seq) {
				data.BadRead(scaffold, refpos)
				continue
			}
			allele = AlleleFromByte(seq[posInRead])
			if allele == N {
				data.BadRead(scaffold, refpos)
				continue
			}
		}

		baseQual := 0
		if posInRead >= 0 && posInRead < len(qual) {
			baseQual = int(qual[posInRead])
		}
		if baseQual < c.cfg.MinQual {
			data.BadRead(scaffold, refpos)
			continue
		}

		mq := int(rec.MapQ)
		if mq < c.cfg.MinMappingQuality {
			data.LowMappingQuality(scaffold, refpos)
			if mq < c.cfg.MinMappingQuality {
				for _, alt := range alternativeLocations(rec, refpos) {
					data.LowMappingQuality(alt.scaffold, alt.pos)
				}
			}
			continue
		}

		data.GoodRead(scaffold, refpos, allele, baseQual, mq, false)

		if mq <= 3 {
			for _, alt := range alternativeLocations(rec, refpos) {
				data.GoodRead(alt.scaffold, alt.pos, allele, baseQual, mq, alt.rc)
			}
		}
	}
}

type alignedPos struct {
	posInRef          int
	posInRead         int
	isDel, isIns      bool
}

// alignedBases walks rec's CIGAR and yields one entry per reference
// position the alignment covers, matching pysam's per-column pileup
// enumeration closely enough for variant calling: matches/mismatches,
// deletions, and (at their left flank) insertions.
func alignedBases(rec *sam.Record) []alignedPos {
	var out []alignedPos
	refPos := rec.Pos
	readPos := 0
	for _, co := range rec.Cigar {
		n := co.Len()
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			for i := 0; i < n; i++ {
				out = append(out, alignedPos{posInRef: refPos + i, posInRead: readPos + i})
			}
			refPos += n
			readPos += n
		case sam.CigarInsertion:
			if len(out) > 0 {
				out[len(out)-1] = alignedPos{posInRef: out[len(out)-1].posInRef, posInRead: readPos, isIns: true}
			}
			readPos += n
		case sam.CigarDeletion:
			for i := 0; i < n; i++ {
				out = append(out, alignedPos{posInRef: refPos + i, posInRead: readPos, isDel: true})
			}
			refPos += n
		case sam.CigarSkipped:
			refPos += n
		case sam.CigarSoftClipped:
			readPos += n
		case sam.CigarHardClipped, sam.CigarPadded:
			// consumes neither
		}
	}
	return out
}

type altLocation struct {
	scaffold string
	pos      int
	rc       bool
}

// alternativeLocations parses the BWA "XA" aux tag (spec §4.G
// "_alternative_locations"): semicolon-separated
// "scaffold,[+-]pos,cigar,NM" entries, each a location the read maps
// to with at most as many mismatches as its primary alignment.
func alternativeLocations(rec *sam.Record, loc int) []altLocation {
	aux := rec.AuxFields.Get(tagXA)
	if aux == nil {
		return nil
	}
	xa, ok := aux.Value().(string)
	if !ok {
		return nil
	}
	nm := auxInt(rec.AuxFields.Get(tagNM))

	readRC := rec.Flags&sam.Reverse != 0
	var offset int
	if readRC {
		offset = alignmentEnd(rec) - loc - 1
	} else {
		offset = loc - rec.Pos
	}

	var out []altLocation
	for _, entry := range strings.Split(xa, ";") {
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ",")
		if len(parts) != 4 {
			continue
		}
		scaffold, posStr, cigar, nmStr := parts[0], parts[1], parts[2], parts[3]
		if strings.ContainsAny(cigar, "SHDI") {
			continue
		}
		altNM, err := strconv.Atoi(nmStr)
		if err != nil || altNM > nm {
			continue
		}
		rawPos, err := strconv.Atoi(posStr)
		if err != nil {
			continue
		}
		rc := rawPos < 0
		pos := absInt(rawPos) - 1

		var coord int
		if rc {
			coord = pos + len(rec.Seq.Expand()) - offset - 1
		} else {
			coord = pos + offset
		}
		out = append(out, altLocation{scaffold: scaffold, pos: coord, rc: rc != readRC})
	}
	return out
}

func alignmentEnd(rec *sam.Record) int {
	end := rec.Pos
	for _, co := range rec.Cigar {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch, sam.CigarDeletion, sam.CigarSkipped:
			end += co.Len()
		}
	}
	return end
}

// alignedLength is pysam's query_alignment_length: the portion of the
// read actually aligned to the reference (M/=/X/I), excluding soft
// clips. Comparing this against len(seq) (query_length, which DOES
// include soft clips) is how condition (iv) "not clipped" is detected.
func alignedLength(rec *sam.Record) int {
	n := 0
	for _, co := range rec.Cigar {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch, sam.CigarInsertion:
			n += co.Len()
		}
	}
	return n
}

func hasTag(rec *sam.Record, tag sam.Tag) bool {
	return rec.AuxFields.Get(tag) != nil
}

func numMismatches(rec *sam.Record) int {
	return auxInt(rec.AuxFields.Get(tagNM))
}

func auxInt(aux *sam.Aux) int {
	if aux == nil {
		return 0
	}
	switch v := aux.Value().(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	default:
		return 0
	}
}

func isPaired(rec *sam.Record) bool   { return rec.Flags&sam.Paired != 0 }
func isProperPair(rec *sam.Record) bool { return rec.Flags&sam.ProperPair != 0 }

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
