package strainge

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSequenceCanonicalizesAndCounts(t *testing.T) {
	ks, err := NewKmerSet(4)
	require.NoError(t, err)

	require.NoError(t, ks.AddSequence([]byte("ACGTACGT")))
	assert.Equal(t, int64(1), ks.NSeqs)
	assert.Equal(t, int64(8), ks.NBases)
	assert.Equal(t, int64(5), ks.NKmers) // 8-4+1 windows
	assert.True(t, len(ks.Kmers) > 0)

	for i := 1; i < len(ks.Kmers); i++ {
		assert.Less(t, ks.Kmers[i-1], ks.Kmers[i])
	}
}

func TestAddSequenceSkipsInvalidBases(t *testing.T) {
	ks, err := NewKmerSet(4)
	require.NoError(t, err)
	require.NoError(t, ks.AddSequence([]byte("ACNGTACGT")))
	// The N breaks the window; only windows fully within "GTACGT" (len 6)
	// are counted: 6-4+1 = 3.
	assert.Equal(t, int64(3), ks.NKmers)
}

func TestMergeRejectsKMismatch(t *testing.T) {
	a, _ := NewKmerSet(4)
	b, _ := NewKmerSet(5)
	_, err := a.Merge(b)
	require.Error(t, err)
	assert.True(t, IsKind(err, BadInput))
}

func TestMergeCombinesTotals(t *testing.T) {
	a, _ := NewKmerSet(4)
	require.NoError(t, a.AddSequence([]byte("ACGTACGT")))
	b, _ := NewKmerSet(4)
	require.NoError(t, b.AddSequence([]byte("TTTTACGT")))

	merged, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, a.NSeqs+b.NSeqs, merged.NSeqs)
	assert.Equal(t, a.NBases+b.NBases, merged.NBases)
}

func TestIntersectKeepsOnlyCommonKeys(t *testing.T) {
	a, _ := NewKmerSet(4)
	require.NoError(t, a.AddSequence([]byte("ACGTACGTTT")))
	b, _ := NewKmerSet(4)
	require.NoError(t, b.AddSequence([]byte("ACGTACGT")))

	common := CountCommon(a.Kmers, b.Kmers)
	a.Intersect(b)
	assert.Equal(t, common, len(a.Kmers))
}

func TestExcludeKeysRemovesGivenCodes(t *testing.T) {
	a, _ := NewKmerSet(4)
	require.NoError(t, a.AddSequence([]byte("ACGTACGTTT")))
	before := len(a.Kmers)
	victim := a.Kmers[0]
	a.ExcludeKeys([]uint64{victim})
	assert.Equal(t, before-1, len(a.Kmers))
	for _, km := range a.Kmers {
		assert.NotEqual(t, victim, km)
	}
}

// fakeReader feeds a fixed list of records, then io.EOF.
type fakeReader struct {
	recs []SequenceRecord
	i    int
}

func (f *fakeReader) Read() (SequenceRecord, error) {
	if f.i >= len(f.recs) {
		return SequenceRecord{}, io.EOF
	}
	r := f.recs[f.i]
	f.i++
	return r, nil
}

func TestKmerizeReaderCountsRecordsTooShortForAWindow(t *testing.T) {
	ks, _ := NewKmerSet(4)
	r := &fakeReader{recs: []SequenceRecord{
		{ID: "ok1", Seq: []byte("ACGTACGT")},
		{ID: "bad", Seq: []byte("AC")}, // too short to ever yield a window, not an error
		{ID: "ok2", Seq: []byte("TTTTACGT")},
	}}
	require.NoError(t, ks.KmerizeReader(r, KmerizeOptions{}))
	assert.Equal(t, int64(3), ks.NSeqs)
}

func TestKmerizeReaderRespectsLimit(t *testing.T) {
	ks, _ := NewKmerSet(4)
	r := &fakeReader{recs: []SequenceRecord{
		{ID: "a", Seq: []byte("ACGTACGTACGTACGT")},
	}}
	require.NoError(t, ks.KmerizeReader(r, KmerizeOptions{Limit: 3}))
	assert.True(t, ks.NKmers >= 3)
}
