// Package fastqsink serialises consensus reads to the FASTQ-shaped
// four-line textual form this pipeline writes to standard output.
package fastqsink

import (
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/umiconsensus/consensus"
)

var newline = []byte{'\n'}

// Writer serialises consensus.ConsensusRead values as four-line FASTQ
// records, keeping the teacher's line-buffered, first-error-wins Writer
// shape (one writeln helper over a single io.Writer).
type Writer struct {
	w   io.Writer
	err error

	// RawQualityJoin separates the decimal quality values on the "+"
	// line. The default "" matches the reference wire format (no
	// separator); callers may opt into one for readability.
	RawQualityJoin string
}

// NewWriter constructs a Writer over w, with no separator on the raw
// quality line.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write serialises r as four lines: "@<id>", the sequence, "+<raw
// qualities>", and the ASCII (+33 offset) quality line. Returns the
// first error encountered across the whole call, and short-circuits
// once w.err is set (including from a prior Write call).
func (w *Writer) Write(r *consensus.ConsensusRead) error {
	raws := make([]string, len(r.Quality))
	ascii := make([]byte, len(r.Quality))
	for i, q := range r.Quality {
		raws[i] = strconv.Itoa(q)
		ascii[i] = byte(q + 33)
	}

	w.writeln("@" + r.ID)
	w.writeln(r.Sequence)
	w.writeln("+" + strings.Join(raws, w.RawQualityJoin))
	w.writeln(string(ascii))
	return w.err
}

func (w *Writer) writeln(line string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, line)
	if w.err == nil {
		_, w.err = w.w.Write(newline)
	}
}
