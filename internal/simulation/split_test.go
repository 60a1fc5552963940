package simulation

import (
	"testing"
)

func TestTrainTestSplit(t *testing.T) {
	train, test := trainTestSplit(100, 0.2, 42)

	if len(test) != 20 || len(train) != 80 {
		t.Fatalf("Split sizes = %d/%d, want 80/20", len(train), len(test))
	}

	seen := make(map[int]bool, 100)
	for _, i := range append(append([]int{}, train...), test...) {
		if seen[i] {
			t.Fatalf("Index %d appears twice", i)
		}
		seen[i] = true
	}
	if len(seen) != 100 {
		t.Errorf("Partition covers %d indices, want 100", len(seen))
	}
}

func TestTrainTestSplit_Deterministic(t *testing.T) {
	train1, test1 := trainTestSplit(50, 0.2, 7)
	train2, test2 := trainTestSplit(50, 0.2, 7)
	if !equalInts(train1, train2) || !equalInts(test1, test2) {
		t.Error("Same seed must produce the same split")
	}

	_, test3 := trainTestSplit(50, 0.2, 8)
	if equalInts(test1, test3) {
		t.Error("Different seeds should produce different splits")
	}
}

func TestStratifiedSplit_PreservesClassProportions(t *testing.T) {
	// 80 of class 0, 20 of class 1.
	y := make([]int, 100)
	for i := 80; i < 100; i++ {
		y[i] = 1
	}

	train, test := stratifiedSplit(y, 0.2, 42)

	if len(test) != 20 {
		t.Fatalf("Test size = %d, want 20", len(test))
	}
	testOnes := 0
	for _, i := range test {
		if y[i] == 1 {
			testOnes++
		}
	}
	if testOnes != 4 {
		t.Errorf("Minority class test rows = %d, want 4", testOnes)
	}

	trainOnes := 0
	for _, i := range train {
		if y[i] == 1 {
			trainOnes++
		}
	}
	if len(train) != 80 || trainOnes != 16 {
		t.Errorf("Train partition = %d rows with %d minority, want 80/16", len(train), trainOnes)
	}
}

func TestStratifiedSplit_TinyClassKeepsOneTestRow(t *testing.T) {
	// Two rows of class 1: 20% rounds to zero, but the class still
	// contributes one test row.
	y := []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 1}
	train, test := stratifiedSplit(y, 0.2, 42)

	testOnes := 0
	for _, i := range test {
		if y[i] == 1 {
			testOnes++
		}
	}
	if testOnes != 1 {
		t.Errorf("Tiny class test rows = %d, want 1", testOnes)
	}
	if len(train)+len(test) != len(y) {
		t.Errorf("Partition size = %d, want %d", len(train)+len(test), len(y))
	}
}

func TestSampleRows(t *testing.T) {
	all := sampleRows(10, 100, 42)
	if len(all) != 10 {
		t.Errorf("Under-cap sample = %d rows, want all 10", len(all))
	}

	capped := sampleRows(1000, 100, 42)
	if len(capped) != 100 {
		t.Fatalf("Capped sample = %d rows, want 100", len(capped))
	}
	for i := 1; i < len(capped); i++ {
		if capped[i] <= capped[i-1] {
			t.Fatal("Sampled rows must stay in ascending row order")
		}
	}

	again := sampleRows(1000, 100, 42)
	if !equalInts(capped, again) {
		t.Error("Same seed must produce the same sample")
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
