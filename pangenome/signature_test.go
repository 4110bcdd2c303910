package pangenome

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strainge-go/strainge"
)

func openForSignatureTest(t *testing.T, union *strainge.KmerSet, strains map[string]*strainge.KmerSet) *PanGenome {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteDatabase(&buf, union, strains, false))
	fs, err := readFileStore(&buf, "")
	require.NoError(t, err)
	pg, err := Open(fs, false)
	require.NoError(t, err)
	return pg
}

func TestBuildSignatureIndexAndCandidates(t *testing.T) {
	strainA := buildKS(t, "ACGTACGTTTTTGGGGCCCCAAAATACGGCTA")
	strainB := buildKS(t, "TTTTGGGGCCCCAAAA")
	union := buildKS(t, "ACGTACGTTTTTGGGGCCCCAAAATACGGCTATTTTGGGGCCCCAAAA")

	pg := openForSignatureTest(t, union, map[string]*strainge.KmerSet{
		"strainA": strainA,
		"strainB": strainB,
	})

	idx, err := BuildSignatureIndex(pg)
	require.NoError(t, err)
	assert.EqualValues(t, len(pg.Union.Kmers), idx.NumSigs)

	sampleIx := strainge.IntersectIndex(pg.Union.Kmers, strainA.Kmers)
	require.NotEmpty(t, sampleIx)
	counts := idx.Candidates(sampleIx)
	assert.Equal(t, len(sampleIx), counts["strainA"])
}

func TestSignatureIndexRoundTrip(t *testing.T) {
	strainA := buildKS(t, "ACGTACGTTTTTGGGGCCCCAAAATACGGCTA")
	union := buildKS(t, "ACGTACGTTTTTGGGGCCCCAAAATACGGCTA")

	pg := openForSignatureTest(t, union, map[string]*strainge.KmerSet{"strainA": strainA})

	idx, err := BuildSignatureIndex(pg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSignatureIndex(&buf, idx))

	roundtripped, err := ReadSignatureIndex(&buf)
	require.NoError(t, err)
	assert.Equal(t, idx.K, roundtripped.K)
	assert.Equal(t, idx.Names, roundtripped.Names)
	assert.Equal(t, idx.NumSigs, roundtripped.NumSigs)

	sampleIx := strainge.IntersectIndex(pg.Union.Kmers, strainA.Kmers)
	assert.Equal(t, idx.Candidates(sampleIx), roundtripped.Candidates(sampleIx))
}
