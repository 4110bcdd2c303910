package variantcall

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strainge-go/strainge/reference"
)

func buildReference(t *testing.T, name, seq string) *reference.Reference {
	t.Helper()
	return reference.New("test.fa", []reference.Scaffold{
		{Name: name, Length: len(seq), Seq: []byte(seq)},
	})
}

func newAlignedRecord(t *testing.T, ref *sam.Reference, pos int, seq string, mapq byte) *sam.Record {
	t.Helper()
	qual := make([]byte, len(seq))
	for i := range qual {
		qual[i] = 40
	}
	r := &sam.Record{
		Name:    "r1",
		Ref:     ref,
		Pos:     pos,
		MapQ:    mapq,
		Flags:   sam.Paired | sam.ProperPair,
		Cigar:   sam.Cigar{sam.NewCigarOp(sam.CigarMatch, len(seq))},
		Seq:     sam.NewSeq([]byte(seq)),
		Qual:    qual,
		TempLen: len(seq),
	}
	return r
}

func TestCallerProcessConfirmsPerfectMatch(t *testing.T) {
	scaffoldSeq := "ACGTACGTACGTACGTACGTACGTACGTACGT"
	ref := buildReference(t, "scaffold1", scaffoldSeq)
	samRef, err := sam.NewReference("scaffold1", "", "", len(scaffoldSeq), nil, nil)
	require.NoError(t, err)

	var records []*sam.Record
	for i := 0; i < 10; i++ {
		records = append(records, newAlignedRecord(t, samRef, 0, scaffoldSeq, 60))
	}

	cfg := DefaultConfig()
	caller := NewCaller(cfg)
	data, err := caller.Process(ref, nil, records)
	require.NoError(t, err)

	rows := data.Summarize()
	require.NotEmpty(t, rows)

	total := rows[len(rows)-1]
	assert.Equal(t, "TOTAL", total.Name)
	assert.Greater(t, total.Coverage, 0.0)
	assert.Equal(t, len(scaffoldSeq), total.Confirmed)
}

func TestCallerProcessSkipsLowMapQReads(t *testing.T) {
	scaffoldSeq := "ACGTACGTACGTACGTACGTACGTACGTACGT"
	ref := buildReference(t, "scaffold1", scaffoldSeq)
	samRef, err := sam.NewReference("scaffold1", "", "", len(scaffoldSeq), nil, nil)
	require.NoError(t, err)

	records := []*sam.Record{newAlignedRecord(t, samRef, 0, scaffoldSeq, 1)}

	caller := NewCaller(DefaultConfig())
	data, err := caller.Process(ref, nil, records)
	require.NoError(t, err)

	assert.Equal(t, 0, data.UniquelyMappedReads)
}

func TestCallerProcessSkipsSoftClippedReads(t *testing.T) {
	scaffoldSeq := "ACGTACGTACGTACGTACGTACGTACGTACGT"
	ref := buildReference(t, "scaffold1", scaffoldSeq)
	samRef, err := sam.NewReference("scaffold1", "", "", len(scaffoldSeq), nil, nil)
	require.NoError(t, err)

	readSeq := scaffoldSeq[:16]
	qual := make([]byte, len(readSeq))
	for i := range qual {
		qual[i] = 40
	}
	rec := &sam.Record{
		Name: "r1",
		Ref:  samRef,
		Pos:  0,
		MapQ: 60,
		Cigar: sam.Cigar{
			sam.NewCigarOp(sam.CigarSoftClipped, 4),
			sam.NewCigarOp(sam.CigarMatch, 12),
		},
		Seq:  sam.NewSeq([]byte(readSeq)),
		Qual: qual,
	}

	caller := NewCaller(DefaultConfig())
	data, err := caller.Process(ref, nil, []*sam.Record{rec})
	require.NoError(t, err)

	assert.Equal(t, 0, data.UniquelyMappedReads)
}
