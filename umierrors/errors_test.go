package umierrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEFormatsKindArgsAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := E(InputMissing, cause, "path", "/tmp/x.bam")
	assert.Contains(t, err.Error(), "input missing")
	assert.Contains(t, err.Error(), "/tmp/x.bam")
	assert.Contains(t, err.Error(), "boom")
}

func TestIsMatchesKind(t *testing.T) {
	err := E(EmptyCluster, "cluster 3")
	assert.True(t, Is(err, EmptyCluster))
	assert.False(t, Is(err, InputMissing))
}

func TestIsFollowsWrappedErrors(t *testing.T) {
	inner := E(IntegrityMismatch, "x")
	wrapped := fmt.Errorf("context: %w", inner)
	assert.True(t, Is(wrapped, IntegrityMismatch))
}

func TestUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("boom")
	err := E(Other, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}
