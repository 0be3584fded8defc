package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagDefaults(t *testing.T) {
	assert.Equal(t, 1, *threads)
	assert.Equal(t, 1, *threshold)
	assert.Equal(t, 5, *window)
	assert.Equal(t, "", *umiFile)
	assert.Equal(t, 0.5, *weightN)
	assert.Equal(t, 0.5, *weightQ)
	assert.Equal(t, false, *debug)
	assert.Equal(t, "", *profileAt)
}
