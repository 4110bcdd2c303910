package pangenome

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strainge-go/strainge"
)

func buildKS(t *testing.T, seq string) *strainge.KmerSet {
	t.Helper()
	ks, err := strainge.NewKmerSet(4)
	require.NoError(t, err)
	require.NoError(t, ks.AddSequence([]byte(seq)))
	return ks
}

func TestWriteDatabaseAndOpen(t *testing.T) {
	union := buildKS(t, "ACGTACGTTTTTGGGGCCCCAAAATACGGCTA")
	strainA := buildKS(t, "ACGTACGTTT")
	strainB := buildKS(t, "TTTTGGGGCCCC")

	var buf bytes.Buffer
	require.NoError(t, WriteDatabase(&buf, union, map[string]*strainge.KmerSet{
		"strainA": strainA,
		"strainB": strainB,
	}, false))

	fs, err := readFileStore(&buf, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"strainA", "strainB"}, fs.StrainNames())

	pg, err := Open(fs, false)
	require.NoError(t, err)
	assert.Equal(t, union.Kmers, pg.Union.Kmers)
	assert.ElementsMatch(t, []string{"strainA", "strainB"}, pg.Names)

	s, err := pg.LoadStrain("strainA")
	require.NoError(t, err)
	assert.Equal(t, strainA.Kmers, s.KS.Kmers)
	assert.Equal(t, len(strainA.Kmers), s.DistinctKmers)

	// second load must hit the cache and return the same pointer
	s2, err := pg.LoadStrain("strainA")
	require.NoError(t, err)
	assert.Same(t, s, s2)
}

func TestLoadStrainMissingIsMissingData(t *testing.T) {
	union := buildKS(t, "ACGTACGTTT")
	var buf bytes.Buffer
	require.NoError(t, WriteDatabase(&buf, union, nil, false))

	fs, err := readFileStore(&buf, "")
	require.NoError(t, err)
	pg, err := Open(fs, false)
	require.NoError(t, err)

	_, err = pg.LoadStrain("nope")
	require.Error(t, err)
	assert.True(t, strainge.IsKind(err, strainge.MissingData))
}
