// Package umi extracts, measures, and optionally corrects the Unique
// Molecular Identifier carried in a read's identifier.
package umi

import (
	"fmt"
	"strings"
)

// Of returns the UMI embedded in a read identifier: the final
// underscore-delimited token. An identifier with no underscore has no UMI.
func Of(readID string) (string, error) {
	idx := strings.LastIndexByte(readID, '_')
	if idx < 0 || idx == len(readID)-1 {
		return "", fmt.Errorf("umi: no underscore-delimited UMI suffix in read id %q", readID)
	}
	return readID[idx+1:], nil
}

// Hamming returns the number of positions at which a and b differ. It
// panics if a and b have different lengths: callers are responsible for
// rejecting mixed-length UMIs before clustering (the pipeline's UMI lookup
// does so), where a length mismatch is a meaningful, user-visible error
// rather than a programming error.
func Hamming(a, b string) int {
	if len(a) != len(b) {
		panic(fmt.Sprintf("umi: Hamming distance requires equal-length strings, got %q (%d) and %q (%d)", a, len(a), b, len(b)))
	}
	d := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}
