package cluster

import (
	"fmt"
	"sort"

	"github.com/grailbio/umiconsensus/ingest"
)

// Cluster is a non-empty, ordered group of reads believed to originate
// from the same molecule. Members preserve their partition insertion
// order and all share one reference.
type Cluster struct {
	Reads []*ingest.AlignedRead
}

// unionFind is a minimal disjoint-set structure, grounded on the
// union-find-by-label bookkeeping the pack uses for single-linkage
// grouping (Design Note 9(b)).
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(x, y int) {
	rx, ry := u.find(x), u.find(y)
	if rx != ry {
		u.parent[rx] = ry
	}
}

// Build runs complete-linkage hierarchical agglomerative clustering over
// reads, all of which must belong to the same reference partition, cut at
// params.Threshold(). umis[i] is the already-extracted, equal-length UMI
// of reads[i].
//
// Implementation follows Design Note 9(b): admissible (non-SENTINEL,
// within-threshold) edges are unioned for an initial single-linkage
// grouping, then every resulting group is verified against the
// complete-linkage condition and, if it's violated, re-split by a direct
// complete-linkage agglomeration restricted to that group's members.
func Build(reads []*ingest.AlignedRead, umis []string, params Params) ([]*Cluster, error) {
	n := len(reads)
	if len(umis) != n {
		return nil, fmt.Errorf("cluster: %d reads but %d umis", n, len(umis))
	}
	if n == 0 {
		return nil, nil
	}
	if n == 1 {
		return []*Cluster{{Reads: []*ingest.AlignedRead{reads[0]}}}, nil
	}

	dist := computeDistances(reads, umis, params)
	threshold := params.Threshold()

	uf := newUnionFind(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if dist.at(i, j) <= threshold {
				uf.union(i, j)
			}
		}
	}

	groupsByRoot := map[int][]int{}
	for i := 0; i < n; i++ {
		root := uf.find(i)
		groupsByRoot[root] = append(groupsByRoot[root], i)
	}

	var indexGroups [][]int
	for _, g := range groupsByRoot {
		if maxPairwiseDistance(g, dist) <= threshold {
			indexGroups = append(indexGroups, g)
			continue
		}
		indexGroups = append(indexGroups, completeLinkageSplit(g, dist, threshold)...)
	}

	sort.Slice(indexGroups, func(i, j int) bool {
		return minOf(indexGroups[i]) < minOf(indexGroups[j])
	})

	clusters := make([]*Cluster, len(indexGroups))
	for i, g := range indexGroups {
		sort.Ints(g)
		members := make([]*ingest.AlignedRead, len(g))
		for k, idx := range g {
			members[k] = reads[idx]
		}
		clusters[i] = &Cluster{Reads: members}
	}
	return clusters, nil
}

func minOf(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxPairwiseDistance(members []int, dist *distanceMatrix) int {
	max := 0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			if d := dist.at(members[i], members[j]); d > max {
				max = d
			}
		}
	}
	return max
}

// completeLinkageSplit runs classical complete-linkage agglomeration
// restricted to members, merging the pair of sub-groups whose maximum
// pairwise distance is smallest until no remaining pair is within
// threshold. Ties are broken by the smaller lowest-indexed member, then
// the next, by comparing the merged groups' sorted index lists
// lexicographically.
func completeLinkageSplit(members []int, dist *distanceMatrix, threshold int) [][]int {
	groups := make([][]int, len(members))
	for i, m := range members {
		groups[i] = []int{m}
	}

	for len(groups) > 1 {
		bestI, bestJ := -1, -1
		bestDist := Sentinel + 1
		var bestKey []int
		for i := 0; i < len(groups); i++ {
			for j := i + 1; j < len(groups); j++ {
				d := completeDist(groups[i], groups[j], dist)
				if d > threshold {
					continue
				}
				key := mergedSortedKey(groups[i], groups[j])
				if d < bestDist || (d == bestDist && lexLess(key, bestKey)) {
					bestDist, bestI, bestJ, bestKey = d, i, j, key
				}
			}
		}
		if bestI < 0 {
			break
		}
		merged := append(append([]int{}, groups[bestI]...), groups[bestJ]...)
		next := make([][]int, 0, len(groups)-1)
		for k, g := range groups {
			if k != bestI && k != bestJ {
				next = append(next, g)
			}
		}
		next = append(next, merged)
		groups = next
	}
	return groups
}

func completeDist(a, b []int, dist *distanceMatrix) int {
	max := 0
	for _, i := range a {
		for _, j := range b {
			if d := dist.at(i, j); d > max {
				max = d
			}
		}
	}
	return max
}

func mergedSortedKey(a, b []int) []int {
	key := append(append([]int{}, a...), b...)
	sort.Ints(key)
	return key
}

func lexLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
