// Package ingest wraps a BAM alignment file and yields the single-end,
// UMI-tagged reads that the clustering and consensus engines operate on.
package ingest

import (
	"fmt"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/umiconsensus/umi"
)

// AlignedRead is one mapped, single-end record from the input alignment
// file, reduced to the fields the clustering and consensus engines need.
type AlignedRead struct {
	ID        string
	Reference string
	Start     int // 0-based, inclusive
	End       int // 0-based, exclusive
	Sequence  string
	Quality   []int // same length as Sequence, no ASCII offset
	Cigar     sam.Cigar
}

// Key is a read's identity tuple (ID, Reference, Start, End), which tells
// apart the records of a multi-mapped read (Design Note 9(7)). Clusters
// hold *AlignedRead pointers directly, so clustering does not look reads
// up by Key.
type Key struct {
	ID        string
	Reference string
	Start     int
	End       int
}

// Key returns r's stable identity tuple.
func (r *AlignedRead) Key() Key {
	return Key{r.ID, r.Reference, r.Start, r.End}
}

// UMI returns the UMI embedded in r's identifier.
func (r *AlignedRead) UMI() (string, error) {
	return umi.Of(r.ID)
}

func fromRecord(rec *sam.Record) (*AlignedRead, error) {
	if rec.Ref == nil {
		return nil, fmt.Errorf("ingest: record %s has no reference", rec.Name)
	}
	seq := rec.Seq.Expand()
	qual := make([]int, len(rec.Qual))
	for i, q := range rec.Qual {
		qual[i] = int(q)
	}
	return &AlignedRead{
		ID:        rec.Name,
		Reference: rec.Ref.Name(),
		Start:     rec.Start(),
		End:       rec.End(),
		Sequence:  string(seq),
		Quality:   qual,
		Cigar:     rec.Cigar,
	}, nil
}
