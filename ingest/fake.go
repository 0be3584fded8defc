package ingest

import (
	"github.com/biogo/hts/sam"
	"github.com/grailbio/umiconsensus/umierrors"
)

// FakeSource is a test-only AlignedReadSource constructed directly from a
// slice of sam.Record, with no file I/O, mirroring the teacher's
// bamprovider.NewFakeProvider pattern for exercising the core packages
// without real BAM fixtures.
type FakeSource struct {
	header *sam.Header
	recs   []*sam.Record
}

// NewFakeSource returns a FakeSource that yields recs against header.
func NewFakeSource(header *sam.Header, recs []*sam.Record) *FakeSource {
	return &FakeSource{header: header, recs: recs}
}

// Sample implements AlignedReadSource.
func (f *FakeSource) Sample(n int) error {
	count := 0
	for _, rec := range f.recs {
		if count >= n {
			break
		}
		if rec.Flags&sam.Unmapped != 0 {
			continue
		}
		if rec.Flags&sam.Paired != 0 {
			return umierrors.E(umierrors.UnsupportedLayout, "source", "fake", "reason", "paired-end reads are unsupported")
		}
		count++
	}
	return nil
}

// References implements AlignedReadSource.
func (f *FakeSource) References() []string {
	refs := f.header.Refs()
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name()
	}
	return names
}

// Reads implements AlignedReadSource.
func (f *FakeSource) Reads(reference string) ([]*AlignedRead, error) {
	var out []*AlignedRead
	for _, rec := range f.recs {
		if rec.Flags&sam.Unmapped != 0 {
			continue
		}
		if rec.Ref == nil || rec.Ref.Name() != reference {
			continue
		}
		read, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, read)
	}
	return out, nil
}
