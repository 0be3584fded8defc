package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoteColumnMajorityWins(t *testing.T) {
	bases := []byte{'A', 'A', 'C'}
	quals := []int{30, 30, 30}
	b, q, ok := voteColumn(bases, quals, DefaultVoteWeights)
	assert.True(t, ok)
	assert.Equal(t, byte('A'), b)
	assert.Equal(t, 30, q)
}

func TestVoteColumnAllDeletionsEmitsNothing(t *testing.T) {
	bases := []byte{'p', 'p', 'p'}
	quals := []int{deletedQual, deletedQual, deletedQual}
	_, _, ok := voteColumn(bases, quals, DefaultVoteWeights)
	assert.False(t, ok)
}

func TestVoteColumnTieBreaksRealBaseOverDeletion(t *testing.T) {
	// two As at quality 30 and three ps: A scores 0.5*4 + 0.5*8 = 6 and p
	// scores 0.5*6 + 0.5*6 = 6, and with that equal combined score the
	// real base must win over the deletion placeholder.
	bases := []byte{'A', 'A', 'p', 'p', 'p'}
	quals := []int{30, 30, deletedQual, deletedQual, deletedQual}
	b, _, ok := voteColumn(bases, quals, DefaultVoteWeights)
	assert.True(t, ok)
	assert.Equal(t, byte('A'), b)
}

func TestVoteColumnTieBreaksByFixedSymbolOrder(t *testing.T) {
	bases := []byte{'A', 'C'}
	quals := []int{20, 20}
	b, _, ok := voteColumn(bases, quals, DefaultVoteWeights)
	assert.True(t, ok)
	assert.Equal(t, byte('A'), b)
}

func TestBucketQThresholds(t *testing.T) {
	assert.Equal(t, 8.0, bucketQ(30))
	assert.Equal(t, 6.0, bucketQ(20))
	assert.Equal(t, 4.0, bucketQ(15))
	assert.Equal(t, 2.0, bucketQ(5))
}
