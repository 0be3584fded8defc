package ingest

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/log"
	"github.com/grailbio/umiconsensus/umierrors"
)

// sampleSize mirrors the teacher/original's habit of sampling the first
// ~1000 records before committing to a full scan.
const sampleSize = 1000

// AlignedReadSource is the abstract collaborator the pipeline consumes:
// anything that can be sampled for layout, enumerate its references, and
// yield the mapped reads of one reference. The real implementation wraps
// biogo/hts/bam; FakeSource backs unit tests.
type AlignedReadSource interface {
	// Sample inspects up to the first n mapped records and returns an
	// error if any of them is paired-end.
	Sample(n int) error
	// References returns the reference names in header order.
	References() []string
	// Reads returns the mapped, single-end reads of one reference, in
	// file order.
	Reads(reference string) ([]*AlignedRead, error)
}

// Source reads a coordinate-sorted BAM file through biogo/hts/bam.
type Source struct {
	path   string
	f      *os.File
	header *sam.Header
}

// Open opens the BAM file at path read-only and parses its header.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: opening %s: %w", path, err)
	}
	r, err := bam.NewReader(f, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ingest: reading BAM header of %s: %w", path, err)
	}
	return &Source{path: path, f: f, header: r.Header()}, nil
}

// Close releases the underlying file handle.
func (s *Source) Close() error {
	return s.f.Close()
}

// Sample implements AlignedReadSource.
func (s *Source) Sample(n int) error {
	r, closer, err := s.newReader()
	if err != nil {
		return err
	}
	defer closer()

	count := 0
	for count < n {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("ingest: sampling %s: %w", s.path, err)
		}
		if rec.Flags&sam.Unmapped != 0 {
			continue
		}
		if rec.Flags&sam.Paired != 0 {
			return umierrors.E(umierrors.UnsupportedLayout, "path", s.path, "reason", "paired-end reads are unsupported")
		}
		count++
	}
	return nil
}

// References implements AlignedReadSource.
func (s *Source) References() []string {
	refs := s.header.Refs()
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name()
	}
	return names
}

// Reads implements AlignedReadSource.
func (s *Source) Reads(reference string) ([]*AlignedRead, error) {
	r, closer, err := s.newReader()
	if err != nil {
		return nil, err
	}
	defer closer()

	var out []*AlignedRead
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: reading %s: %w", s.path, err)
		}
		if rec.Flags&sam.Unmapped != 0 {
			continue
		}
		if rec.Ref == nil || rec.Ref.Name() != reference {
			continue
		}
		read, err := fromRecord(rec)
		if err != nil {
			log.Error.Printf("ingest: skipping malformed record %s: %v", rec.Name, err)
			continue
		}
		out = append(out, read)
	}
	return out, nil
}

// newReader opens an independent file handle over s.path so that
// concurrent Source.Reads calls from different worker goroutines never
// share mutable reader state, matching the teacher's per-shard
// Provider.NewIterator discipline.
func (s *Source) newReader() (*bam.Reader, func(), error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: reopening %s: %w", s.path, err)
	}
	r, err := bam.NewReader(f, 0)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("ingest: reading BAM header of %s: %w", s.path, err)
	}
	return r, func() { f.Close() }, nil
}
