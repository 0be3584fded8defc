package consensus

import "github.com/grailbio/umiconsensus/util"

const gapPenalty = -1

// alignToAnchor aligns seq (rows) against anchor (columns) with
// Needleman-Wunsch global alignment and returns seq's aligned form
// together with a parallel consumed mask: consumed[i] is true when
// position i of the returned string was copied from seq (whether a real
// base or one of seq's own pre-existing 'p' deletion placeholders), and
// false when it is a gap the aligner introduced fresh. The mask lets
// qualPad tell the two kinds of 'p' apart without re-deriving them from
// the string alone. The anchor's own form is never touched by callers;
// only the row-side alignment is retained.
//
// Substitution score is +1 for an exact match or when either character is
// 'p' (the deletion placeholder, treated as a wildcard), 0 otherwise; gaps
// cost -1 on both axes. On a tied score the traceback prefers diagonal,
// then up, then left, recomputed directly from the score table during
// traceback (grounded in the pack's flat-table NW idiom) rather than
// stored in a separate traceback matrix.
func alignToAnchor(seq, anchor string) (string, []bool) {
	rows := len(seq) + 1
	cols := len(anchor) + 1
	table := util.NewMatrix(rows, cols)

	for r := 1; r < rows; r++ {
		for c := 1; c < cols; c++ {
			table.Set(r, c, bestScore(table, seq, anchor, r, c))
		}
	}

	aligned := make([]byte, 0, rows+cols)
	consumed := make([]bool, 0, rows+cols)
	r, c := rows-1, cols-1
	for r > 0 && c > 0 {
		diag := table.At(r-1, c-1) + matchScore(seq[r-1], anchor[c-1])
		up := table.At(r-1, c) + gapPenalty
		left := table.At(r, c-1) + gapPenalty
		switch {
		case diag >= up && diag >= left:
			aligned = append(aligned, seq[r-1])
			consumed = append(consumed, true)
			r--
			c--
		case up >= left:
			aligned = append(aligned, seq[r-1])
			consumed = append(consumed, true)
			r--
		default:
			aligned = append(aligned, 'p')
			consumed = append(consumed, false)
			c--
		}
	}
	for ; r > 0; r-- {
		aligned = append(aligned, seq[r-1])
		consumed = append(consumed, true)
	}
	for ; c > 0; c-- {
		aligned = append(aligned, 'p')
		consumed = append(consumed, false)
	}
	reverse(aligned)
	reverseBool(consumed)
	return string(aligned), consumed
}

func bestScore(table util.Matrix, seq, anchor string, r, c int) int {
	diag := table.At(r-1, c-1) + matchScore(seq[r-1], anchor[c-1])
	up := table.At(r-1, c) + gapPenalty
	left := table.At(r, c-1) + gapPenalty
	best := diag
	if up > best {
		best = up
	}
	if left > best {
		best = left
	}
	return best
}

func matchScore(a, b byte) int {
	if a == b || a == 'p' || b == 'p' {
		return 1
	}
	return 0
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

func reverseBool(b []bool) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
