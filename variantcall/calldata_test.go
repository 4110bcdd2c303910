package variantcall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strainge-go/strainge/reference"
)

func buildRef(t *testing.T, name, seq string) *reference.Reference {
	t.Helper()
	return reference.New("test.fasta", []reference.Scaffold{
		{Name: name, Length: len(seq), Seq: []byte(seq)},
	})
}

func TestNewVariantCallDataAllocatesPerScaffold(t *testing.T) {
	ref := buildRef(t, "scaffold1", "ACGTACGTAC")
	d := NewVariantCallData(ref.Scaffolds, 100)

	require.Contains(t, d.Scaffolds, "scaffold1")
	assert.Equal(t, 10, d.ReferenceLength)
	assert.Equal(t, 10, d.Scaffolds["scaffold1"].Length)
}

func TestLoadReferencePopulatesRefmask(t *testing.T) {
	ref := buildRef(t, "scaffold1", "ACGT")
	d := NewVariantCallData(ref.Scaffolds, 100)
	d.LoadReference(ref, &reference.Metadata{Repetitiveness: map[string]float64{"scaffold1": 0.25}})

	sd := d.Scaffolds["scaffold1"]
	assert.Equal(t, A, sd.Refmask[0])
	assert.Equal(t, C, sd.Refmask[1])
	assert.Equal(t, G, sd.Refmask[2])
	assert.Equal(t, T, sd.Refmask[3])
	assert.Equal(t, 0.25, sd.Repetitiveness)
}

func TestSummarizeProducesTotalRow(t *testing.T) {
	ref := buildRef(t, "scaffold1", "AAAA")
	d := NewVariantCallData(ref.Scaffolds, 2)
	d.LoadReference(ref, nil)

	sd := d.Scaffolds["scaffold1"]
	for p := 0; p < 4; p++ {
		for i := 0; i < 10; i++ {
			sd.GoodRead(p, A, 40, 60, false)
		}
	}
	d.IncUniquelyMappedReads("scaffold1")
	d.AnalyzeCoverage()
	d.CallAlleles(0, 0.1)
	d.FindGaps()

	rows := d.Summarize()
	require.Len(t, rows, 2)
	assert.Equal(t, "scaffold1", rows[0].Name)
	assert.Equal(t, "TOTAL", rows[1].Name)
	assert.Equal(t, 4, rows[0].Callable)
	assert.Equal(t, 4, rows[0].Confirmed)
	assert.Equal(t, 0, rows[0].SNPs)
	assert.Equal(t, rows[0].Callable, rows[1].Callable)
}

func TestIsSingleBit(t *testing.T) {
	assert.True(t, isSingleBit(A))
	assert.True(t, isSingleBit(DEL))
	assert.False(t, isSingleBit(A|C))
	assert.False(t, isSingleBit(N))
}

func TestIsTransition(t *testing.T) {
	assert.True(t, isTransition(A, G))
	assert.True(t, isTransition(C, T))
	assert.False(t, isTransition(A, C))
	assert.False(t, isTransition(A, T))
}

func TestPct(t *testing.T) {
	assert.Equal(t, 50.0, pct(1, 2))
	assert.Equal(t, 0.0, pct(1, 0))
}
