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
	"errors"
	"io"

	"github.com/twotwotwo/sorts/sortutil"
)

// DefaultK is the k-mer length used by the reference StrainGE pipeline
// when none is given (carried over from kmertools.DEFAULT_K).
const DefaultK = 23

// DefaultFingerprintFraction is the default MinHash sampling fraction
// (kmertools.DEFAULT_FINGERPRINT_FRACTION).
const DefaultFingerprintFraction = 0.01

// BatchSize caps how many k-mers accumulate in the in-progress batch
// map before being sorted, deduplicated and merged into the growing
// k-mer set (spec §4.B kmerize_file: "batches of ~10^8 k-mers").
const BatchSize = 100_000_000

// ErrKMismatch means two k-mer sets with different k were combined.
var ErrKMismatch = errors.New("strainge: k mismatch")

// ErrMalformedRecord signals that a SequenceReader's current record
// could not be parsed; KmerizeReader skips it and keeps going (spec §7:
// "k-merization skips individual malformed records").
var ErrMalformedRecord = errors.New("strainge: malformed sequence record")

// SequenceRecord is one read or contig as handed to the k-mer engine.
// Quality is optional (nil for FASTA-sourced records).
type SequenceRecord struct {
	ID      string
	Seq     []byte
	Quality []byte
}

// SequenceReader is the external collaborator the core consumes for
// k-merization (spec §6): FASTA/FASTQ parsing, decompression, and
// format detection live outside the core.
type SequenceReader interface {
	Read() (SequenceRecord, error)
}

// KmerSet is the aggregated, sorted k-mer set of spec §3: parallel
// `kmers`/`counts` arrays tied by index, plus an optional MinHash
// fingerprint and the scalar bookkeeping fields.
type KmerSet struct {
	K int

	Kmers       []uint64
	Counts      []uint32
	Fingerprint []uint64

	NSeqs               int64
	NBases              int64
	NKmers              int64 // total, pre-dedup
	Singletons          int64
	FingerprintFraction float64 // meaningful only once Fingerprint != nil
}

// NewKmerSet returns an empty k-mer set for the given k.
func NewKmerSet(k int) (*KmerSet, error) {
	if !ValidK(k) {
		return nil, newError(InvalidConfig, ErrKRange)
	}
	return &KmerSet{K: k}, nil
}

// AddSequence k-merizes one sequence directly into ks (used for small,
// in-memory inputs such as test genomes or a single read; large file
// ingestion goes through KmerizeReader's batching path).
func (ks *KmerSet) AddSequence(seq []byte) error {
	batch := make(map[uint64]uint32, 128)
	if err := ks.accumulate(seq, batch); err != nil {
		return err
	}
	bk, bc := flattenBatch(batch)
	ks.mergeBatch(bk, bc)
	return nil
}

func (ks *KmerSet) accumulate(seq []byte, batch map[uint64]uint32) error {
	it, err := NewIterator(seq, ks.K)
	if err != nil {
		return newError(InvalidConfig, err)
	}
	ks.NSeqs++
	ks.NBases += int64(len(seq))
	for {
		code, _, ok := it.Next()
		if !ok {
			break
		}
		ks.NKmers++
		if batch[code] < maxUint32 {
			batch[code]++
		}
	}
	return nil
}

func flattenBatch(batch map[uint64]uint32) ([]uint64, []uint32) {
	keys := make([]uint64, 0, len(batch))
	for k := range batch {
		keys = append(keys, k)
	}
	sortutil.Uint64s(keys)

	counts := make([]uint32, len(keys))
	for i, k := range keys {
		counts[i] = batch[k]
	}
	return keys, counts
}

// mergeBatch folds a sorted, deduplicated batch into ks, preserving the
// K-1/K-2/K-3 invariants, then updates the singleton count.
func (ks *KmerSet) mergeBatch(bk []uint64, bc []uint32) {
	ks.Kmers, ks.Counts = MergeCounts(ks.Kmers, ks.Counts, bk, bc)
	ks.recountSingletons()
}

func (ks *KmerSet) recountSingletons() {
	var n int64
	for _, c := range ks.Counts {
		if c == 1 {
			n++
		}
	}
	ks.Singletons = n
}

// KmerizeOptions configures streaming ingestion (spec §4.B
// kmerize_file).
type KmerizeOptions struct {
	// Limit stops ingestion once NKmers reaches this many (0 = no limit).
	Limit int64
	// Prune drops all singleton keys once Singletons exceeds this many
	// (0 = never prune). This is what bounds memory to the user's
	// chosen ceiling for very deep, error-heavy sequencing runs.
	Prune int64
}

// KmerizeReader streams records from r, accumulating canonical k-mers
// into ks in bounded batches. Malformed records are skipped; I/O errors
// from r are fatal and wrapped as ExternalFailure.
func (ks *KmerSet) KmerizeReader(r SequenceReader, opts KmerizeOptions) error {
	batch := make(map[uint64]uint32, 1<<16)
	var batchCount int64

	flush := func() {
		if batchCount == 0 {
			return
		}
		bk, bc := flattenBatch(batch)
		ks.mergeBatch(bk, bc)
		if opts.Prune > 0 && ks.Singletons > opts.Prune {
			ks.pruneSingletons()
		}
		batch = make(map[uint64]uint32, 1<<16)
		batchCount = 0
	}

	for {
		if opts.Limit > 0 && ks.NKmers >= opts.Limit {
			break
		}

		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			if errors.Is(err, ErrMalformedRecord) {
				continue
			}
			flush()
			return NewExternalFailure("", err)
		}

		if err := ks.accumulate(rec.Seq, batch); err != nil {
			// A structural encode error here means the reader handed us
			// a record our iterator can't even attempt; treat as
			// malformed and move on rather than aborting the whole file.
			continue
		}
		batchCount = int64(len(batch))

		if batchCount >= BatchSize {
			flush()
		}
	}
	flush()
	return nil
}

// pruneSingletons drops every key with count 1, reclaiming memory once
// the error tail has grown past the caller's ceiling.
func (ks *KmerSet) pruneSingletons() {
	kept := make([]uint64, 0, len(ks.Kmers)-int(ks.Singletons))
	cnt := make([]uint32, 0, len(ks.Kmers)-int(ks.Singletons))
	for i, c := range ks.Counts {
		if c == 1 {
			continue
		}
		kept = append(kept, ks.Kmers[i])
		cnt = append(cnt, c)
	}
	ks.Kmers, ks.Counts = kept, cnt
	ks.Singletons = 0
}

// Merge returns a new k-mer set combining ks and other, without
// mutating either operand (spec §4.B merge_kmerset).
func (ks *KmerSet) Merge(other *KmerSet) (*KmerSet, error) {
	if ks.K != other.K {
		return nil, newError(BadInput, ErrKMismatch)
	}
	k, c := MergeCounts(ks.Kmers, ks.Counts, other.Kmers, other.Counts)
	out := &KmerSet{
		K:      ks.K,
		Kmers:  k,
		Counts: c,
		NSeqs:  ks.NSeqs + other.NSeqs,
		NBases: ks.NBases + other.NBases,
		NKmers: ks.NKmers + other.NKmers,
	}
	out.recountSingletons()
	return out, nil
}

// ErrNoFingerprint means FingerprintOverride was called on a k-mer set
// that has no fingerprint to switch to.
var ErrNoFingerprint = errors.New("strainge: no fingerprint to override with")

// FingerprintOverride swaps ks's active key array for its fingerprint
// (spec §9 fingerprint_override): Kmers becomes the fingerprint subset
// and Counts becomes presence-only (all 1s), since provenance counts
// for the discarded majority of k-mers are no longer meaningful.
func (ks *KmerSet) FingerprintOverride() error {
	if ks.Fingerprint == nil {
		return newError(MissingData, ErrNoFingerprint)
	}
	ks.Kmers = append([]uint64(nil), ks.Fingerprint...)
	ones := make([]uint32, len(ks.Kmers))
	for i := range ones {
		ones[i] = 1
	}
	ks.Counts = ones
	return nil
}

// Clone returns a deep copy of ks's arrays, leaving ks itself
// untouched. Used by callers (the strain search engine) that need to
// apply destructive operations like ExcludeKeys against a scratch copy
// while keeping a shared, memoized original immutable (spec §9 "keeps
// the cache immutable and threads the excludes set alongside each
// call").
func (ks *KmerSet) Clone() *KmerSet {
	out := &KmerSet{
		K:                   ks.K,
		NSeqs:               ks.NSeqs,
		NBases:              ks.NBases,
		NKmers:              ks.NKmers,
		Singletons:          ks.Singletons,
		FingerprintFraction: ks.FingerprintFraction,
	}
	out.Kmers = append([]uint64(nil), ks.Kmers...)
	out.Counts = append([]uint32(nil), ks.Counts...)
	if ks.Fingerprint != nil {
		out.Fingerprint = append([]uint64(nil), ks.Fingerprint...)
	}
	return out
}

// activeKmers returns the fingerprint in fingerprint-override mode, or
// the full key array otherwise (Design Notes: fingerprint_override).
// FingerprintOverride copies the fingerprint into Kmers, so Kmers is
// the active key array in both cases; a fingerprint merely carried
// alongside the full keys is not used here.
func (ks *KmerSet) activeKmers() []uint64 {
	return ks.Kmers
}

// Intersect restricts ks to the keys also present in other's active
// key set, reindexing Counts consistently (spec §4.B intersect).
func (ks *KmerSet) Intersect(other *KmerSet) {
	ix := IntersectIndex(ks.Kmers, other.activeKmers())
	ks.gather(ix)
}

// MutualIntersect restricts both ks and other to their common-key view,
// mutating both operands (spec §4.B mutual_intersect).
func (ks *KmerSet) MutualIntersect(other *KmerSet) {
	common := Intersect(ks.Kmers, other.Kmers)
	ks.gather(IntersectIndex(ks.Kmers, common))
	other.gather(IntersectIndex(other.Kmers, common))
}

// Exclude restricts ks to keys not present in other's active key set
// (spec §4.B exclude).
func (ks *KmerSet) Exclude(other *KmerSet) {
	ks.ExcludeKeys(other.activeKmers())
}

// ExcludeKeys restricts ks to keys not present in the given sorted key
// array, without requiring a full KmerSet (used by the strain search
// engine's running `excludes` set, spec §4.D).
func (ks *KmerSet) ExcludeKeys(keys []uint64) {
	kept := Diff(ks.Kmers, keys)
	ks.gather(IntersectIndex(ks.Kmers, kept))
}

// gather keeps only the positions listed in ix (already sorted
// ascending, as produced by IntersectIndex), reindexing Kmers/Counts/
// Fingerprint together.
func (ks *KmerSet) gather(ix []int) {
	newK := make([]uint64, len(ix))
	newC := make([]uint32, len(ix))
	for i, pos := range ix {
		newK[i] = ks.Kmers[pos]
		newC[i] = ks.Counts[pos]
	}
	ks.Kmers, ks.Counts = newK, newC
	ks.recountSingletons()

	if ks.Fingerprint != nil {
		ks.Fingerprint = Intersect(ks.Fingerprint, ks.Kmers)
	}
}
