package strainge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpectrumHistogram(t *testing.T) {
	ks := &KmerSet{
		Kmers:  []uint64{1, 2, 3, 4, 5},
		Counts: []uint32{1, 1, 1, 2, 2},
	}
	freq, cnt := ks.Spectrum()
	assert.Equal(t, []uint32{1, 2}, freq)
	assert.Equal(t, []int64{3, 2}, cnt)
}

func TestEntropyUniformEqualsLog2N(t *testing.T) {
	ks := &KmerSet{Counts: []uint32{4, 4, 4, 4}}
	// log2(4) / 2 = 1.0
	assert.InDelta(t, 1.0, ks.Entropy(), 1e-9)
}

func TestEntropyEmptyIsZero(t *testing.T) {
	ks := &KmerSet{}
	assert.Equal(t, 0.0, ks.Entropy())
}

func TestSpectrumMinMaxUnimodalFindsNothing(t *testing.T) {
	ks := &KmerSet{
		Kmers:  []uint64{1, 2, 3},
		Counts: []uint32{5, 5, 5},
	}
	_, _, _, ok := ks.SpectrumMinMax(0.5, 20)
	assert.False(t, ok)
}

func TestSpectrumFilterNoOpWhenNoThreshold(t *testing.T) {
	ks := &KmerSet{
		Kmers:  []uint64{1, 2, 3},
		Counts: []uint32{5, 5, 5},
	}
	ok := ks.SpectrumFilter(0.5, 20)
	assert.False(t, ok)
	assert.Equal(t, 3, len(ks.Kmers))
}
