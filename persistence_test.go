package strainge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestSet(t *testing.T) *KmerSet {
	t.Helper()
	ks, err := NewKmerSet(4)
	require.NoError(t, err)
	require.NoError(t, ks.AddSequence([]byte("ACGTACGTTTTTGGGGCCCCAAAATACGGCTA")))
	ks.MinHash(0.5)
	return ks
}

func TestWriteReadKmerSetRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		ks := buildTestSet(t)
		var buf bytes.Buffer
		require.NoError(t, WriteKmerSet(&buf, ks, compress))

		got, err := ReadKmerSet(&buf)
		require.NoError(t, err)
		assert.Equal(t, ks.K, got.K)
		assert.Equal(t, ks.Kmers, got.Kmers)
		assert.Equal(t, ks.Counts, got.Counts)
		assert.Equal(t, ks.Fingerprint, got.Fingerprint)
		assert.Equal(t, ks.NSeqs, got.NSeqs)
	}
}

func TestReadKmerSetRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("notacontainer-------")
	_, err := ReadKmerSet(&buf)
	require.Error(t, err)
	assert.True(t, IsKind(err, BadInput))
}

func TestReadKmerSetRejectsCorruptBody(t *testing.T) {
	ks := buildTestSet(t)
	var buf bytes.Buffer
	require.NoError(t, WriteKmerSet(&buf, ks, false))

	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xFF // flip a byte in the body
	_, err := ReadKmerSet(bytes.NewReader(raw))
	require.Error(t, err)
	assert.True(t, IsKind(err, BadInput))
}

func TestWriteReadCollection(t *testing.T) {
	a := buildTestSet(t)
	b := buildTestSet(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCollection(&buf, []string{"strainA", "strainB"}, []*KmerSet{a, b}, true))

	names, sets, err := ReadCollection(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"strainA", "strainB"}, names)
	require.Len(t, sets, 2)
	assert.Equal(t, a.Kmers, sets[0].Kmers)
	assert.Equal(t, b.Kmers, sets[1].Kmers)
}
