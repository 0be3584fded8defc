// Package cluster partitions ingested reads by reference and groups each
// partition into clusters believed to originate from the same molecule,
// using a hybrid UMI/coordinate distance metric under complete-linkage
// hierarchical agglomerative clustering.
package cluster

import (
	"github.com/grailbio/umiconsensus/ingest"
	"github.com/grailbio/umiconsensus/umi"
	"github.com/grailbio/umiconsensus/util"
)

// Sentinel marks a pair of reads as inadmissible for clustering: either
// their UMIs are farther apart than the UMI threshold, they sit on
// different references, or their coordinates are farther apart than the
// coordinate window. Any value >= T+W+1 would work; 999 is used verbatim
// so output is bit-exact with the reference implementation this package
// was ported from.
const Sentinel = 999

// Params bounds admissibility in the hybrid distance metric.
type Params struct {
	// UMIThreshold (T) is the maximum admissible UMI Hamming distance.
	UMIThreshold int
	// CoordWindow (W) is the maximum admissible coordinate distance.
	CoordWindow int
}

// Threshold is the complete-linkage cut distance, T+W.
func (p Params) Threshold() int {
	return p.UMIThreshold + p.CoordWindow
}

// distanceMatrix holds the condensed (i<j) pairwise distance vector for a
// partition of n reads, grounded on the teacher's flat row-major matrix
// idiom (util.Matrix / the Levenshtein matrix it replaces).
type distanceMatrix struct {
	n    int
	data []int
}

func newDistanceMatrix(n int) *distanceMatrix {
	if n < 2 {
		return &distanceMatrix{n: n}
	}
	return &distanceMatrix{n: n, data: make([]int, n*(n-1)/2)}
}

func (m *distanceMatrix) at(i, j int) int {
	if i == j {
		return 0
	}
	return m.data[util.CondensedIndex(m.n, i, j)]
}

func (m *distanceMatrix) set(i, j, v int) {
	m.data[util.CondensedIndex(m.n, i, j)] = v
}

// computeDistances builds the condensed pairwise distance matrix for
// reads, all of which must share a reference (the partitioner guarantees
// this).
func computeDistances(reads []*ingest.AlignedRead, umis []string, params Params) *distanceMatrix {
	n := len(reads)
	m := newDistanceMatrix(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.set(i, j, pairDistance(reads[i], reads[j], umis[i], umis[j], params))
		}
	}
	return m
}

// pairDistance implements the hybrid UMI/coordinate metric.
func pairDistance(x, y *ingest.AlignedRead, umiX, umiY string, params Params) int {
	umiDist := umi.Hamming(umiX, umiY)
	if umiDist > params.UMIThreshold {
		return Sentinel
	}
	if x.Reference != y.Reference {
		return Sentinel
	}
	coordDist := (abs(x.Start-y.Start) + abs(x.End-y.End)) / 2
	if coordDist > params.CoordWindow {
		return Sentinel
	}
	return umiDist + coordDist
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
