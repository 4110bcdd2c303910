package strainge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinHashSizeAndDeterminism(t *testing.T) {
	ks, err := NewKmerSet(4)
	require.NoError(t, err)
	require.NoError(t, ks.AddSequence([]byte("ACGTACGTTTTTGGGGCCCCAAAATACGGCTA")))

	n := len(ks.Kmers)
	ks.MinHash(0.5)
	want := int(0.5*float64(n) + 0.5)
	assert.Equal(t, want, len(ks.Fingerprint))

	for i := 1; i < len(ks.Fingerprint); i++ {
		assert.Less(t, ks.Fingerprint[i-1], ks.Fingerprint[i])
	}

	first := append([]uint64(nil), ks.Fingerprint...)
	ks.MinHash(0.5)
	assert.Equal(t, first, ks.Fingerprint)
}

func TestMinHashFullFractionKeepsEverything(t *testing.T) {
	ks, _ := NewKmerSet(4)
	require.NoError(t, ks.AddSequence([]byte("ACGTACGTTT")))
	ks.MinHash(1.0)
	assert.Equal(t, len(ks.Kmers), len(ks.Fingerprint))
}
