package ingest

import (
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
)

func newHeader(t *testing.T, refNames ...string) *sam.Header {
	refs := make([]*sam.Reference, len(refNames))
	for i, name := range refNames {
		ref, err := sam.NewReference(name, "", "", 1000, nil, nil)
		assert.NoError(t, err)
		refs[i] = ref
	}
	h, err := sam.NewHeader(nil, refs)
	assert.NoError(t, err)
	return h
}

func newRecord(t *testing.T, h *sam.Header, name, refName string, pos int, flags sam.Flags, seq, qual string) *sam.Record {
	var ref *sam.Reference
	for _, r := range h.Refs() {
		if r.Name() == refName {
			ref = r
		}
	}
	r, err := sam.NewRecord(name, ref, nil, pos, -1, 0, 40,
		sam.Cigar{sam.NewCigarOp(sam.CigarMatch, len(seq))}, []byte(seq), []byte(qual), nil)
	assert.NoError(t, err)
	r.Flags = flags
	return r
}

func TestFakeSourceReferences(t *testing.T) {
	h := newHeader(t, "chr1", "chr2")
	s := NewFakeSource(h, nil)
	assert.Equal(t, []string{"chr1", "chr2"}, s.References())
}

func TestFakeSourceSampleRejectsPaired(t *testing.T) {
	h := newHeader(t, "chr1")
	recs := []*sam.Record{
		newRecord(t, h, "read1_AAAA", "chr1", 0, sam.Paired, "ACGT", "FFFF"),
	}
	s := NewFakeSource(h, recs)
	assert.Error(t, s.Sample(10))
}

func TestFakeSourceSampleAcceptsSingleEnd(t *testing.T) {
	h := newHeader(t, "chr1")
	recs := []*sam.Record{
		newRecord(t, h, "read1_AAAA", "chr1", 0, 0, "ACGT", "FFFF"),
	}
	s := NewFakeSource(h, recs)
	assert.NoError(t, s.Sample(10))
}

func TestFakeSourceSampleIgnoresUnmapped(t *testing.T) {
	h := newHeader(t, "chr1")
	recs := []*sam.Record{
		newRecord(t, h, "read1_AAAA", "chr1", 0, sam.Unmapped|sam.Paired, "ACGT", "FFFF"),
	}
	s := NewFakeSource(h, recs)
	assert.NoError(t, s.Sample(10))
}

func TestFakeSourceReads(t *testing.T) {
	h := newHeader(t, "chr1", "chr2")
	recs := []*sam.Record{
		newRecord(t, h, "read1_AAAA", "chr1", 10, 0, "ACGT", "FFFF"),
		newRecord(t, h, "read2_AAAC", "chr2", 20, 0, "ACGG", "FFFF"),
		newRecord(t, h, "read3_AAAG", "chr1", 30, sam.Unmapped, "ACGT", "FFFF"),
	}
	s := NewFakeSource(h, recs)

	reads, err := s.Reads("chr1")
	assert.NoError(t, err)
	assert.Len(t, reads, 1)
	assert.Equal(t, "read1_AAAA", reads[0].ID)
	assert.Equal(t, "chr1", reads[0].Reference)
	assert.Equal(t, "ACGT", reads[0].Sequence)
	assert.Equal(t, 10, reads[0].Start)
	assert.Equal(t, 14, reads[0].End)

	umi, err := reads[0].UMI()
	assert.NoError(t, err)
	assert.Equal(t, "AAAA", umi)
}

func TestAlignedReadKeyStable(t *testing.T) {
	r := &AlignedRead{ID: "x_AAAA", Reference: "chr1", Start: 1, End: 5}
	assert.Equal(t, Key{"x_AAAA", "chr1", 1, 5}, r.Key())
}
