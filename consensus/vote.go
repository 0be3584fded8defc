package consensus

// VoteWeights weighs the two components of the per-column combined score
// (Design Note 9's open question on voting weights). Engine treats the
// zero value as DefaultVoteWeights.
type VoteWeights struct {
	N float64
	Q float64
}

// DefaultVoteWeights is the 0.5/0.5 split spec.md calls for absent a
// stronger signal either way.
var DefaultVoteWeights = VoteWeights{N: 0.5, Q: 0.5}

// symbol indices into the fixed six-way alphabet the voter tallies over,
// in place of a map-of-maps in the innermost loop (Design Note 9).
const (
	symA = iota
	symC
	symG
	symT
	symN
	symP
	numSymbols
)

var symbolByte = [numSymbols]byte{'A', 'C', 'G', 'T', 'N', 'p'}

func symbolIndex(b byte) int {
	switch b {
	case 'A', 'a':
		return symA
	case 'C', 'c':
		return symC
	case 'G', 'g':
		return symG
	case 'T', 't':
		return symT
	case 'N', 'n':
		return symN
	default:
		return symP
	}
}

// voteColumn implements §4.6 steps 1-9 for one alignment column. bases and
// quals hold every cluster member's byte and quality at this column position.
// It returns the winning symbol and its quality, and ok=false when the
// column is all deletions (nothing is emitted).
func voteColumn(bases []byte, quals []int, weights VoteWeights) (byte, int, bool) {
	n := len(bases)
	var count [numSymbols]int
	var qualSum [numSymbols]int
	for i := 0; i < n; i++ {
		s := symbolIndex(bases[i])
		count[s]++
		if s != symP {
			qualSum[s] += quals[i]
		}
	}

	var present []int
	for s := 0; s < numSymbols; s++ {
		if count[s] > 0 {
			present = append(present, s)
		}
	}
	if len(present) == 1 && present[0] == symP {
		return 0, 0, false
	}

	meanQ := make(map[int]float64, len(present))
	var realSum float64
	var realCount int
	for _, s := range present {
		if s == symP {
			continue
		}
		mq := float64(qualSum[s]) / float64(count[s])
		meanQ[s] = mq
		realSum += mq
		realCount++
	}
	if count[symP] > 0 {
		meanQ[symP] = realSum/float64(realCount) - 5
	}

	nScore := make(map[int]float64, len(present))
	qScore := make(map[int]float64, len(present))
	for _, s := range present {
		nScore[s] = 10 * float64(count[s]) / float64(n)
		qScore[s] = bucketQ(meanQ[s])
	}

	bestSym := -1
	var bestScore float64
	for _, s := range present {
		score := weights.N*nScore[s] + weights.Q*qScore[s]
		if bestSym < 0 || score > bestScore || (score == bestScore && betterTie(s, bestSym)) {
			bestSym, bestScore = s, score
		}
	}

	if bestSym == symP {
		return 0, 0, false
	}
	quality := int(meanQ[bestSym])
	return symbolByte[bestSym], quality, true
}

func bucketQ(mq float64) float64 {
	switch {
	case mq >= 30:
		return 8
	case mq >= 20:
		return 6
	case mq >= 15:
		return 4
	default:
		return 2
	}
}

// betterTie reports whether candidate should win over current on an exact
// score tie: real bases beat 'p', and among real bases A<C<G<T<N.
func betterTie(candidate, current int) bool {
	if candidate == symP {
		return false
	}
	if current == symP {
		return true
	}
	return candidate < current
}
