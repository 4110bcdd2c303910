package variantcall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCoverage(t *testing.T) {
	s := NewScaffoldCallData("scaffold1", 4)
	for p := 0; p < 4; p++ {
		s.GoodRead(p, A, 30, 40, false)
		s.GoodRead(p, A, 30, 40, false)
	}
	s.CalculateCoverage()

	require.Len(t, s.Coverage, 4)
	for _, c := range s.Coverage {
		assert.Equal(t, uint32(2), c)
	}
	assert.Equal(t, 2.0, s.MeanCoverage)
	assert.Equal(t, 2.0, s.MedianCoverage)
}

func TestCallAllelesStrongCall(t *testing.T) {
	s := NewScaffoldCallData("scaffold1", 1)
	for i := 0; i < 10; i++ {
		s.GoodRead(0, A, 40, 60, false)
	}
	s.GoodRead(0, C, 40, 60, false)
	s.CalculateCoverage()
	s.CallAlleles(0, 0.1)

	assert.Equal(t, A, s.Strong[0])
	assert.True(t, s.Weak[0]&A != 0)
	assert.True(t, s.Weak[0]&C != 0)
}

func TestCallAllelesSuppressedAtHighCoverage(t *testing.T) {
	// The cutoff derives from the median coverage, so position 0's spike
	// needs low-coverage neighbours: median 1 here, far below 5000.
	s := NewScaffoldCallData("scaffold1", 5)
	for i := 0; i < 5000; i++ {
		s.GoodRead(0, A, 40, 60, false)
	}
	for p := 1; p < 5; p++ {
		s.GoodRead(p, A, 40, 60, false)
	}
	s.CalculateCoverage()
	require.True(t, s.HighCoverage[0])
	s.CallAlleles(0, 0.1)

	assert.Equal(t, N, s.Strong[0])
	assert.Equal(t, N, s.Weak[0])
}

func TestFindGapsDetectsUncoveredRun(t *testing.T) {
	s := NewScaffoldCallData("scaffold1", 20)
	for p := 0; p < 20; p++ {
		if p < 5 || p >= 15 {
			s.GoodRead(p, A, 40, 60, false)
		}
	}
	s.CalculateCoverage()
	s.CallAlleles(0, 0.1)
	// Mean coverage 0.5 gives a Lander-Waterman fraction of 0.393, so a
	// minimum gap size of 3 scales to int(3/0.393) = 7 <= 10.
	s.FindGaps(3)

	require.Len(t, s.Gaps, 1)
	assert.Equal(t, 5, s.Gaps[0].Start)
	assert.Equal(t, 15, s.Gaps[0].End)
	assert.Equal(t, 10, s.Gaps[0].Length())
}

func TestFindGapsIgnoresShortGaps(t *testing.T) {
	s := NewScaffoldCallData("scaffold1", 20)
	for p := 0; p < 20; p++ {
		if p != 10 {
			s.GoodRead(p, A, 40, 60, false)
		}
	}
	s.CalculateCoverage()
	s.CallAlleles(0, 0.1)
	s.FindGaps(5)

	assert.Empty(t, s.Gaps)
}

func TestPoissonCoverageCutoffLowMean(t *testing.T) {
	cutoff := poissonCoverageCutoff(5, 0.9999999)
	assert.Greater(t, cutoff, 5.0)
}

func TestPoissonCoverageCutoffHighMean(t *testing.T) {
	cutoff := poissonCoverageCutoff(100, 0.9999999)
	assert.Equal(t, 165.0, cutoff)
}

func TestAlleleAccessors(t *testing.T) {
	s := NewScaffoldCallData("scaffold1", 1)
	s.Refmask[0] = A
	s.GoodRead(0, A, 30, 40, false)
	s.GoodRead(0, C, 20, 40, false)

	assert.Equal(t, uint32(1), s.AlleleCount(0, A))
	assert.Equal(t, uint32(30), s.AlleleQual(0, A))
	assert.Equal(t, uint32(1), s.RefCount(0))
	assert.InDelta(t, 0.6, s.RefFraction(0), 1e-9)
	assert.Equal(t, uint32(2), s.Depth(0))
	assert.Equal(t, 40.0, s.MeanMQ(0))
}
