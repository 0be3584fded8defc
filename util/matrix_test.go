package util

import "testing"

func TestMatrixSetAt(t *testing.T) {
	m := NewMatrix(3, 4)
	m.Set(1, 2, 7)
	if got := m.At(1, 2); got != 7 {
		t.Errorf("At(1,2) = %d, want 7", got)
	}
	if got := m.At(0, 0); got != 0 {
		t.Errorf("At(0,0) = %d, want 0", got)
	}
}

func TestCondensedIndex(t *testing.T) {
	// For n=4, the condensed vector lists pairs in the order
	// (0,1) (0,2) (0,3) (1,2) (1,3) (2,3).
	want := map[[2]int]int{
		{0, 1}: 0,
		{0, 2}: 1,
		{0, 3}: 2,
		{1, 2}: 3,
		{1, 3}: 4,
		{2, 3}: 5,
	}
	for pair, idx := range want {
		if got := CondensedIndex(4, pair[0], pair[1]); got != idx {
			t.Errorf("CondensedIndex(4, %d, %d) = %d, want %d", pair[0], pair[1], got, idx)
		}
		// Symmetric in argument order.
		if got := CondensedIndex(4, pair[1], pair[0]); got != idx {
			t.Errorf("CondensedIndex(4, %d, %d) = %d, want %d", pair[1], pair[0], got, idx)
		}
	}
}
