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

// Package pangenome implements the pan-genome database of spec §4.C: a
// union k-mer set plus a lazily-loaded, memoizing cache of per-strain
// k-mer sets.
package pangenome

import (
	"fmt"
	"sort"
	"sync"

	"github.com/strainge-go/strainge"
)

// ErrStrainNotFound means a requested strain isn't a group in the
// backing store (spec §7 MissingData).
var ErrStrainNotFound = fmt.Errorf("pangenome: strain not found")

// Store is the external collaborator backing a PanGenome: a persistent
// container holding a union k-mer set and one named k-mer set per
// reference strain (spec §6 "a database file adds one named group per
// strain").
type Store interface {
	Union() (*strainge.KmerSet, error)
	StrainNames() []string
	LoadStrain(name string) (*strainge.KmerSet, error)
}

// StrainKmerSet pairs a strain's k-mer set with the scalars recorded
// at load time, before any exclusion shrinks it (spec §9: "collapse
// into composition... StrainKmerSet hold-a KS plus a few scalars").
type StrainKmerSet struct {
	Name          string
	KS            *strainge.KmerSet
	DistinctKmers int
	TotalKmers    int64
}

// PanGenome is the read-only union k-mer set plus memoizing per-strain
// cache of spec §4.C.
type PanGenome struct {
	Union               *strainge.KmerSet
	Names               []string
	UseFingerprint      bool
	FingerprintFraction float64

	store Store
	mu    sync.Mutex
	cache map[string]*StrainKmerSet
}

// Open builds a PanGenome backed by store. When useFingerprint is set,
// the union k-mer set's active keys are swapped for its MinHash
// fingerprint (spec §4.C use_fingerprint mode), and FingerprintFraction
// is recorded for downstream percentage scaling.
func Open(store Store, useFingerprint bool) (*PanGenome, error) {
	union, err := store.Union()
	if err != nil {
		return nil, err
	}

	names := append([]string(nil), store.StrainNames()...)
	sort.Strings(names)

	pg := &PanGenome{
		Union:          union,
		Names:          names,
		UseFingerprint: useFingerprint,
		store:          store,
		cache:          make(map[string]*StrainKmerSet, len(names)),
	}

	if useFingerprint {
		if err := union.FingerprintOverride(); err != nil {
			return nil, err
		}
		pg.FingerprintFraction = union.FingerprintFraction
	}

	return pg, nil
}

// LoadStrain returns the (memoized) StrainKmerSet for name, loading it
// from the store on first access.
func (pg *PanGenome) LoadStrain(name string) (*StrainKmerSet, error) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if s, ok := pg.cache[name]; ok {
		return s, nil
	}

	ks, err := pg.store.LoadStrain(name)
	if err != nil {
		return nil, err
	}
	if ks == nil {
		return nil, strainge.NewMissingData(fmt.Errorf("%w: %s", ErrStrainNotFound, name))
	}

	if pg.UseFingerprint {
		if err := ks.FingerprintOverride(); err != nil {
			return nil, err
		}
	}

	s := &StrainKmerSet{
		Name:          name,
		KS:            ks,
		DistinctKmers: len(ks.Kmers),
		TotalKmers:    sumCounts(ks.Counts),
	}
	pg.cache[name] = s
	return s, nil
}

func sumCounts(counts []uint32) int64 {
	var n int64
	for _, c := range counts {
		n += int64(c)
	}
	return n
}
