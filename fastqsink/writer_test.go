package fastqsink

import (
	"bytes"
	"testing"

	"github.com/grailbio/umiconsensus/consensus"
	"github.com/stretchr/testify/assert"
)

func TestWriteDefaultJoinHasNoSeparator(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	assert.NoError(t, w.Write(&consensus.ConsensusRead{ID: "r1", Sequence: "AC", Quality: []int{1, 10}}))
	assert.Equal(t, "@r1\nAC\n+110\n"+string([]byte{1 + 33, 10 + 33})+"\n", buf.String())
}

func TestWriteRawQualityJoinSeparator(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.RawQualityJoin = ","
	assert.NoError(t, w.Write(&consensus.ConsensusRead{ID: "r1", Sequence: "AC", Quality: []int{1, 10}}))
	assert.Equal(t, "@r1\nAC\n+1,10\n"+string([]byte{1 + 33, 10 + 33})+"\n", buf.String())
}

func TestWriteASCIIQualityOffset(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	assert.NoError(t, w.Write(&consensus.ConsensusRead{ID: "r1", Sequence: "A", Quality: []int{40}}))
	assert.Contains(t, buf.String(), string([]byte{40 + 33}))
}

func TestWriteShortCircuitsAfterError(t *testing.T) {
	w := NewWriter(failingWriter{})
	err := w.Write(&consensus.ConsensusRead{ID: "r1", Sequence: "A", Quality: []int{1}})
	assert.Error(t, err)
	err2 := w.Write(&consensus.ConsensusRead{ID: "r2", Sequence: "A", Quality: []int{1}})
	assert.Equal(t, err, err2)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, assert.AnError
}
