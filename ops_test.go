package strainge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeCountsSumsCollisions(t *testing.T) {
	k, c := MergeCounts(
		[]uint64{1, 3, 5}, []uint32{1, 1, 1},
		[]uint64{3, 4}, []uint32{2, 1},
	)
	assert.Equal(t, []uint64{1, 3, 4, 5}, k)
	assert.Equal(t, []uint32{1, 3, 1, 1}, c)
}

func TestMergeCountsSaturates(t *testing.T) {
	_, c := MergeCounts([]uint64{1}, []uint32{maxUint32 - 1}, []uint64{1}, []uint32{10})
	assert.Equal(t, maxUint32, c[0])
}

func TestIntersectAndDiff(t *testing.T) {
	a := []uint64{1, 2, 3, 4}
	b := []uint64{2, 4, 6}

	assert.Equal(t, []uint64{2, 4}, Intersect(a, b))
	assert.Equal(t, []uint64{1, 3}, Diff(a, b))
	assert.Equal(t, 2, CountCommon(a, b))
	assert.Equal(t, []int{1, 3}, IntersectIndex(a, b))
}

func TestFNVHash64Deterministic(t *testing.T) {
	assert.Equal(t, FNVHash64(12345), FNVHash64(12345))
	assert.NotEqual(t, FNVHash64(12345), FNVHash64(12346))
}
