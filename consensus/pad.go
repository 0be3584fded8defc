package consensus

import (
	"github.com/biogo/hts/sam"
	"github.com/grailbio/umiconsensus/ingest"
)

// deletedQual is the sentinel quality value carried wherever the sequence
// holds a deletion placeholder ('p'), whether from the original CIGAR's
// deletion operations or a gap the Needleman-Wunsch aligner introduced.
// It is never emitted in a final consensus quality.
const deletedQual = -1

// paddedRead is a cluster member's sequence and quality, first expanded
// according to its CIGAR (seqPad) and then, for every member but the
// cluster's anchor, aligned to the anchor's padded sequence.
type paddedRead struct {
	id   string
	seq  string
	qual []int
}

// seqPad expands r's sequence and quality according to its CIGAR,
// walking each operation's Type()/Len() rather than raw op integers
// (using sam.CigarOpType.Consumes() to decide query-position advancement,
// which also correctly skips the query bases a soft clip consumes):
//   - MATCH/EQUAL/MISMATCH: copied verbatim (upper-case).
//   - INSERTION: copied lower-case.
//   - DELETION: emits literal 'p' placeholders (no quality consumed).
//   - SOFT CLIP: consumes query bases but emits nothing.
//   - SKIPPED/HARD CLIP: emits nothing and consumes no query bases.
//
// The returned quality slice is parallel to seq: a real base's entry is
// its original integer quality, a deletion placeholder's entry is
// deletedQual.
func seqPad(r *ingest.AlignedRead) paddedRead {
	seq := []byte(r.Sequence)
	var outSeq []byte
	var outQual []int
	pos := 0
	for _, op := range r.Cigar {
		n := op.Len()
		t := op.Type()
		switch t {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			outSeq = append(outSeq, seq[pos:pos+n]...)
			outQual = append(outQual, r.Quality[pos:pos+n]...)
		case sam.CigarInsertion:
			for _, b := range seq[pos : pos+n] {
				outSeq = append(outSeq, toLower(b))
			}
			outQual = append(outQual, r.Quality[pos:pos+n]...)
		case sam.CigarDeletion:
			for i := 0; i < n; i++ {
				outSeq = append(outSeq, 'p')
				outQual = append(outQual, deletedQual)
			}
		}
		if t.Consumes().Query != 0 {
			pos += n
		}
	}
	return paddedRead{id: r.ID, seq: string(outSeq), qual: outQual}
}

// qualPad produces the quality slice parallel to aligned, the string
// alignToAnchor returned for this read. It is not called for a cluster's
// anchor, which keeps its seqPad quality. preQual is the pre-alignment quality
// from seqPad and consumed is alignToAnchor's mask of the same length as
// aligned; consumed[i] true means aligned[i] came from preQual and the
// cursor into preQual should advance, false means it is a freshly
// inserted alignment gap and gets deletedQual without advancing the
// cursor.
func qualPad(consumed []bool, preQual []int) []int {
	out := make([]int, len(consumed))
	cursor := 0
	for i, c := range consumed {
		if c {
			out[i] = preQual[cursor]
			cursor++
		} else {
			out[i] = deletedQual
		}
	}
	return out
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
