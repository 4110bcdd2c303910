package reference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strainge-go/strainge"
)

func testRef() *Reference {
	return New("genome.fasta", []Scaffold{
		{Name: "chr1", Length: 10, Seq: []byte("ACGTACGTAC")},
		{Name: "chr2", Length: 5, Seq: []byte("TTTTT")},
	})
}

func TestScaffoldCoord(t *testing.T) {
	r := testRef()

	name, local, err := r.ScaffoldCoord(0)
	require.NoError(t, err)
	assert.Equal(t, "chr1", name)
	assert.Equal(t, 1, local)

	name, local, err = r.ScaffoldCoord(9)
	require.NoError(t, err)
	assert.Equal(t, "chr1", name)
	assert.Equal(t, 10, local)

	name, local, err = r.ScaffoldCoord(10)
	require.NoError(t, err)
	assert.Equal(t, "chr2", name)
	assert.Equal(t, 1, local)

	_, _, err = r.ScaffoldCoord(15)
	require.Error(t, err)
	assert.True(t, strainge.IsKind(err, strainge.BadInput))
}

func TestScaffoldToGenomeCoord(t *testing.T) {
	r := testRef()

	coord, err := r.ScaffoldToGenomeCoord("chr1", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, coord)

	coord, err = r.ScaffoldToGenomeCoord("chr2", 1)
	require.NoError(t, err)
	assert.Equal(t, 10, coord)

	_, err = r.ScaffoldToGenomeCoord("chr3", 1)
	require.Error(t, err)
	assert.True(t, strainge.IsKind(err, strainge.MissingData))
}

func TestGetSequence(t *testing.T) {
	r := testRef()

	seq, err := r.GetSequence("chr1", 1, 4)
	require.NoError(t, err)
	assert.Equal(t, "ACGT", string(seq))

	_, err = r.GetSequence("chr1", 8, 5)
	require.Error(t, err)
	assert.True(t, strainge.IsKind(err, strainge.BadInput))
}

func TestMetadataPath(t *testing.T) {
	assert.Equal(t, "/a/b/genome.meta.json", MetadataPath("/a/b/genome.fasta"))
	assert.Equal(t, "/a/b/genome.meta.json", MetadataPath("/a/b/genome.fa"))
}

func TestDecodeMetadata(t *testing.T) {
	r := strings.NewReader(`{"repetitiveness":{"chr1":0.1,"chr2":0.5}}`)
	m, err := decodeMetadata(r)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, m.Repetitiveness["chr1"], 1e-9)
	assert.InDelta(t, 0.5, m.Repetitiveness["chr2"], 1e-9)
}

func TestLoadMetadataMissingFile(t *testing.T) {
	_, err := LoadMetadata("/nonexistent/path/genome.meta.json")
	require.Error(t, err)
}
