package umiconsensus

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/grailbio/umiconsensus/ingest"
	"github.com/grailbio/umiconsensus/umierrors"
	"github.com/stretchr/testify/assert"
)

func testHeader(t *testing.T, refNames ...string) *sam.Header {
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

func testRecord(t *testing.T, h *sam.Header, name, refName string, pos int) *sam.Record {
	var ref *sam.Reference
	for _, r := range h.Refs() {
		if r.Name() == refName {
			ref = r
		}
	}
	seq := "ACGTACGTAC"
	qual := "FFFFFFFFFF"
	r, err := sam.NewRecord(name, ref, nil, pos, -1, 0, 40,
		sam.Cigar{sam.NewCigarOp(sam.CigarMatch, len(seq))}, []byte(seq), []byte(qual), nil)
	assert.NoError(t, err)
	return r
}

func TestRunWritesOneRecordPerCluster(t *testing.T) {
	h := testHeader(t, "chr1")
	recs := []*sam.Record{
		testRecord(t, h, "r1_AAAA", "chr1", 0),
		testRecord(t, h, "r2_AAAC", "chr1", 1),
		testRecord(t, h, "r3_TTTT", "chr1", 500),
	}
	src := ingest.NewFakeSource(h, recs)

	var buf bytes.Buffer
	opts := Opts{Threads: 1, Threshold: 1, Window: 5}
	summary, err := run(context.Background(), opts, src, &buf)
	assert.NoError(t, err)
	assert.Equal(t, 3, summary.InputReads)
	assert.Equal(t, 2, summary.Clusters) // AAAA/AAAC merge, TTTT stands alone
	assert.Equal(t, 2, summary.ConsensusWritten)
	assert.Equal(t, 0, summary.EmptyClusters)
}

func TestRunEmptyInputErrors(t *testing.T) {
	h := testHeader(t, "chr1")
	src := ingest.NewFakeSource(h, nil)
	var buf bytes.Buffer
	_, err := run(context.Background(), Opts{Threads: 1, Threshold: 1, Window: 5}, src, &buf)
	assert.Error(t, err)
	assert.True(t, umierrors.Is(err, umierrors.EmptyInput))
}

func TestRunInputMissingErrors(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	var buf bytes.Buffer
	_, err := Run(context.Background(), Opts{
		Path:      filepath.Join(tempDir, "does-not-exist.bam"),
		Threads:   1,
		Threshold: 1,
		Window:    5,
	}, &buf)
	assert.Error(t, err)
	assert.True(t, umierrors.Is(err, umierrors.InputMissing))
}
