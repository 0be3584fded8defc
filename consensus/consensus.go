// Package consensus reduces a cluster of reads believed to originate
// from the same molecule into a single consensus read: CIGAR padding,
// pairwise Needleman-Wunsch alignment to a designated anchor, and
// per-column base-and-quality voting.
package consensus

import (
	"sort"

	"github.com/grailbio/umiconsensus/cluster"
	"github.com/grailbio/umiconsensus/umierrors"
)

// ConsensusRead is one cluster's reduction to a single record.
type ConsensusRead struct {
	ID       string
	Sequence string
	Quality  []int
}

// Engine computes consensus reads from clusters. The zero value uses
// DefaultVoteWeights.
type Engine struct {
	Weights VoteWeights
}

// NewEngine constructs an Engine with the given voting weights.
func NewEngine(weights VoteWeights) *Engine {
	return &Engine{Weights: weights}
}

// Compute reduces c to one ConsensusRead. A singleton cluster is
// returned unchanged with no alignment performed (P5, §4.6 "Trivial
// case"). Returns a *umierrors.Error of Kind EmptyCluster if c has no
// members with a usable sequence.
func (e *Engine) Compute(c *cluster.Cluster) (*ConsensusRead, error) {
	if len(c.Reads) == 0 {
		return nil, umierrors.E(umierrors.EmptyCluster, "cluster has no reads")
	}

	if len(c.Reads) == 1 {
		r := c.Reads[0]
		if len(r.Sequence) == 0 {
			return nil, umierrors.E(umierrors.EmptyCluster, "sole member has no sequence", r.ID)
		}
		return &ConsensusRead{ID: r.ID, Sequence: r.Sequence, Quality: append([]int{}, r.Quality...)}, nil
	}

	padded := make([]paddedRead, len(c.Reads))
	for i, r := range c.Reads {
		padded[i] = seqPad(r)
	}
	if allEmpty(padded) {
		return nil, umierrors.E(umierrors.EmptyCluster, "every member padded to an empty sequence")
	}

	order := anchorOrder(padded)
	anchor := padded[order[0]]

	aligned := make([]paddedRead, len(padded))
	aligned[order[0]] = anchor
	for _, idx := range order[1:] {
		member := padded[idx]
		seq, consumed := alignToAnchor(member.seq, anchor.seq)
		qual := qualPad(consumed, member.qual)
		aligned[idx] = paddedRead{id: member.id, seq: seq, qual: qual}
	}

	weights := e.Weights
	if weights == (VoteWeights{}) {
		weights = DefaultVoteWeights
	}

	// The anchor's own form is never widened, but a read with an insertion
	// the anchor lacks can still come back from alignToAnchor longer than
	// the anchor; right-pad every shorter member with deletion placeholders
	// so every column index below is valid across the whole cluster.
	width := 0
	for _, m := range aligned {
		if len(m.seq) > width {
			width = len(m.seq)
		}
	}
	for i, m := range aligned {
		if len(m.seq) < width {
			aligned[i] = padTrailing(m, width)
		}
	}

	var seq []byte
	var qual []int
	for col := 0; col < width; col++ {
		bases := make([]byte, len(aligned))
		quals := make([]int, len(aligned))
		for i, m := range aligned {
			bases[i] = m.seq[col]
			quals[i] = m.qual[col]
		}
		b, q, ok := voteColumn(bases, quals, weights)
		if !ok {
			continue
		}
		seq = append(seq, b)
		qual = append(qual, q)
	}

	if len(seq) != len(qual) {
		return nil, umierrors.E(umierrors.ConsensusLengthMismatch,
			"sequence length", len(seq), "quality length", len(qual))
	}

	anchorRead := c.Reads[order[0]]
	return &ConsensusRead{ID: anchorRead.ID, Sequence: string(seq), Quality: qual}, nil
}

func padTrailing(m paddedRead, width int) paddedRead {
	seq := []byte(m.seq)
	qual := append([]int{}, m.qual...)
	for len(seq) < width {
		seq = append(seq, 'p')
		qual = append(qual, deletedQual)
	}
	return paddedRead{id: m.id, seq: string(seq), qual: qual}
}

func allEmpty(padded []paddedRead) bool {
	for _, p := range padded {
		if len(p.seq) > 0 {
			return false
		}
	}
	return true
}

// anchorOrder returns the indices of padded sorted by padded length
// descending, ties broken by first-seen (stable sort, §4.6 "Reference-read
// selection"). Element 0 of the result is the anchor.
func anchorOrder(padded []paddedRead) []int {
	order := make([]int, len(padded))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(padded[order[i]].seq) > len(padded[order[j]].seq)
	})
	return order
}
