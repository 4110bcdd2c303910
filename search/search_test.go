package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strainge-go/strainge"
	"github.com/strainge-go/strainge/pangenome"
)

func buildKS(t *testing.T, k int, seqs ...string) *strainge.KmerSet {
	t.Helper()
	ks, err := strainge.NewKmerSet(k)
	require.NoError(t, err)
	for _, s := range seqs {
		require.NoError(t, ks.AddSequence([]byte(s)))
	}
	return ks
}

func openPanGenome(t *testing.T, union *strainge.KmerSet, strains map[string]*strainge.KmerSet) *pangenome.PanGenome {
	t.Helper()
	fs := &memStore{union: union, names: namesOnly(strains), strains: strains}
	pg, err := pangenome.Open(fs, false)
	require.NoError(t, err)
	return pg
}

func namesOnly(m map[string]*strainge.KmerSet) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

type memStore struct {
	union   *strainge.KmerSet
	names   []string
	strains map[string]*strainge.KmerSet
}

func (m *memStore) Union() (*strainge.KmerSet, error) { return m.union, nil }
func (m *memStore) StrainNames() []string             { return m.names }
func (m *memStore) LoadStrain(name string) (*strainge.KmerSet, error) {
	ks, ok := m.strains[name]
	if !ok {
		return nil, nil
	}
	return ks, nil
}

func TestRunFindsExactMatch(t *testing.T) {
	const k = 8
	strainSeq := "ACGTACGTTTTTGGGGCCCCAAAATACGGCTAGGCATCGATCGTAGCTAGCATCGATCG"
	otherSeq := "TTAGGCCATGCATGCATGCATGCGGCGCGCGATATATATCGCGATATCGATCGATTTAA"

	union, err := strainge.NewKmerSet(k)
	require.NoError(t, err)
	strainA := buildKS(t, k, strainSeq)
	strainB := buildKS(t, k, otherSeq)
	merged, err := union.Merge(strainA)
	require.NoError(t, err)
	merged, err = merged.Merge(strainB)
	require.NoError(t, err)

	pg := openPanGenome(t, merged, map[string]*strainge.KmerSet{
		"strainA": strainA,
		"strainB": strainB,
	})

	sampleKS := buildKS(t, k, strainSeq)
	sample := NewSample("sample1", sampleKS)

	cfg := DefaultConfig()
	cfg.MinAcct = 0
	cfg.MinFrac = 0
	cfg.MinScore = 0
	eng := New(pg, cfg)

	result, err := eng.Run(sample)
	require.NoError(t, err)
	require.NotEmpty(t, result.Iterations)
	assert.Equal(t, "strainA", result.Iterations[0].Strain)
	assert.Greater(t, result.Iterations[0].Score, 0.0)
}

func TestRunNoStrainsReturnsEmptyIterations(t *testing.T) {
	const k = 8
	union := buildKS(t, k, "ACGTACGTACGTACGTACGTACGT")
	pg := openPanGenome(t, union, nil)

	sample := NewSample("s", buildKS(t, k, "ACGTACGTACGTACGTACGTACGT"))
	eng := New(pg, DefaultConfig())

	result, err := eng.Run(sample)
	require.NoError(t, err)
	assert.Empty(t, result.Iterations)
}

func TestMinRatioIsSymmetric(t *testing.T) {
	assert.InDelta(t, 0.5, minRatio(2.0), 1e-9)
	assert.InDelta(t, 0.5, minRatio(0.5), 1e-9)
	assert.Equal(t, 1.0, minRatio(1.0))
	assert.Equal(t, 0.0, minRatio(0))
}

func TestRunZeroIterationsProducesOnlySampleStats(t *testing.T) {
	const k = 8
	strainSeq := "ACGTACGTTTTTGGGGCCCCAAAATACGGCTAGGCATCGATCGTAGCTAGCATCGATCG"
	strainA := buildKS(t, k, strainSeq)
	union, err := strainge.NewKmerSet(k)
	require.NoError(t, err)
	merged, err := union.Merge(strainA)
	require.NoError(t, err)

	pg := openPanGenome(t, merged, map[string]*strainge.KmerSet{"strainA": strainA})
	sample := NewSample("s", buildKS(t, k, strainSeq))

	cfg := DefaultConfig()
	cfg.Iterations = 0
	eng := New(pg, cfg)

	result, err := eng.Run(sample)
	require.NoError(t, err)
	assert.Empty(t, result.Iterations)
	assert.Equal(t, "s", result.SampleName)
}

func TestRunWithSignaturePrefilterFindsSameMatch(t *testing.T) {
	const k = 8
	strainSeq := "ACGTACGTTTTTGGGGCCCCAAAATACGGCTAGGCATCGATCGTAGCTAGCATCGATCG"
	otherSeq := "TTAGGCCATGCATGCATGCATGCGGCGCGCGATATATATCGCGATATCGATCGATTTAA"

	strainA := buildKS(t, k, strainSeq)
	strainB := buildKS(t, k, otherSeq)
	union, err := strainge.NewKmerSet(k)
	require.NoError(t, err)
	merged, err := union.Merge(strainA)
	require.NoError(t, err)
	merged, err = merged.Merge(strainB)
	require.NoError(t, err)

	pg := openPanGenome(t, merged, map[string]*strainge.KmerSet{
		"strainA": strainA,
		"strainB": strainB,
	})

	sig, err := pangenome.BuildSignatureIndex(pg)
	require.NoError(t, err)

	sample := NewSample("sample1", buildKS(t, k, strainSeq))
	cfg := DefaultConfig()
	cfg.MinAcct = 0
	cfg.MinFrac = 0
	cfg.MinScore = 0
	eng := New(pg, cfg)
	eng.Signature = sig

	result, err := eng.Run(sample)
	require.NoError(t, err)
	require.NotEmpty(t, result.Iterations)
	assert.Equal(t, "strainA", result.Iterations[0].Strain)
}

func TestMedianCount(t *testing.T) {
	assert.Equal(t, 0.0, medianCount(nil))
	assert.Equal(t, 2.0, medianCount([]uint32{1, 2, 3}))
	assert.Equal(t, 2.5, medianCount([]uint32{1, 2, 3, 4}))
}

// TestRunFingerprintModeScalesPanFraction covers spec §4.D step 3: in
// fingerprint_override mode, pan_pct/pan_kmer_cov must be scaled by
// 1/fingerprint_fraction to estimate the proportions the full
// (unsampled) union would have reported.
func TestRunFingerprintModeScalesPanFraction(t *testing.T) {
	const k = 8
	strainSeq := "ACGTACGTTTTTGGGGCCCCAAAATACGGCTAGGCATCGATCGTAGCTAGCATCGATCGAAGGCCTTACGTGGCCAATTGGCCTTAACC"
	strainA := buildKS(t, k, strainSeq)
	union, err := strainge.NewKmerSet(k)
	require.NoError(t, err)
	merged, err := union.Merge(strainA)
	require.NoError(t, err)

	const fraction = 0.5
	merged.MinHash(fraction)

	fs := &memStore{union: merged, names: []string{"strainA"}, strains: map[string]*strainge.KmerSet{"strainA": strainA}}
	pg, err := pangenome.Open(fs, true)
	require.NoError(t, err)
	assert.True(t, pg.UseFingerprint)
	assert.InDelta(t, fraction, pg.FingerprintFraction, 1e-9)

	sample := NewSample("sample1", buildKS(t, k, strainSeq))
	cfg := DefaultConfig()
	cfg.MinAcct = 0
	cfg.MinFrac = 0
	cfg.MinScore = 0
	eng := New(pg, cfg)

	result, err := eng.Run(sample)
	require.NoError(t, err)

	wantPanFraction := (float64(result.PanKmers) / float64(result.TotalKmers)) * (1 / fraction)
	assert.InDelta(t, wantPanFraction, result.PanFraction, 1e-9)
	if result.PanKmerCov != 0 {
		wantPanKmerCov := (float64(result.PanKmers) / float64(len(sample.KS.Kmers))) * (1 / fraction)
		assert.InDelta(t, wantPanKmerCov, result.PanKmerCov, 1e-9)
	}
}
