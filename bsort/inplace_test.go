package bsort

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"
)

type data struct {
	key     uint32
	payload int
}

func dataKey(d data) uint32 { return d.key }

func randomData(rng *rand.Rand, n int) []data {
	x := make([]data, n)
	for i := range x {
		x[i] = data{key: uint32(rng.Intn(10)), payload: i}
	}
	return x
}

// multiset returns the records sorted by payload, for comparing contents regardless of order
func multiset(x []data) []data {
	out := append([]data(nil), x...)
	sort.Slice(out, func(i, j int) bool { return out[i].payload < out[j].payload })
	return out
}

func TestSortInPlace_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for rep := 0; rep < 10; rep++ {
		x := randomData(rng, 50)
		before := multiset(x)

		if err := SortInPlace(x, dataKey); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := 1; i < len(x); i++ {
			if x[i-1].key > x[i].key {
				t.Fatalf("not sorted at index %d: %d > %d", i, x[i-1].key, x[i].key)
			}
		}

		after := multiset(x)
		for i := range before {
			if before[i] != after[i] {
				t.Fatalf("records changed: expected %v, got %v", before[i], after[i])
			}
		}
	}
}

func TestSortInPlace_Sizes(t *testing.T) {
	sizes := []int{1, 2, 3, 10, 100, 1000, 10000}
	for _, size := range sizes {
		t.Run(fmt.Sprintf("size_%d", size), func(t *testing.T) {
			rng := rand.New(rand.NewSource(int64(size)))
			x := make([]data, size)
			for i := range x {
				x[i] = data{key: uint32(rng.Intn(size)), payload: i}
			}
			if err := SortInPlace(x, dataKey); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i := 1; i < len(x); i++ {
				if x[i-1].key > x[i].key {
					t.Fatalf("not sorted at index %d", i)
				}
			}
		})
	}
}

func TestSortInPlace_MatchesStableSort(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	x := randomData(rng, 5000)
	y := append([]data(nil), x...)

	if err := SortInPlace(x, dataKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.SliceStable(y, func(i, j int) bool { return y[i].key < y[j].key })

	for i := range x {
		if x[i].key != y[i].key {
			t.Fatalf("key mismatch at index %d: inplace=%d, std=%d", i, x[i].key, y[i].key)
		}
	}
}

func TestSortInPlace_Empty(t *testing.T) {
	var x []data
	if err := SortInPlace(x, dataKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSortInPlace_AlreadySortedAndReversed(t *testing.T) {
	sorted := []uint16{0, 1, 1, 2, 5, 5, 9}
	if err := SortKeysInPlace(sorted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []uint16{0, 1, 1, 2, 5, 5, 9}
	for i := range expected {
		if sorted[i] != expected[i] {
			t.Errorf("index %d: expected %d, got %d", i, expected[i], sorted[i])
		}
	}

	reversed := []uint16{9, 5, 5, 2, 1, 1, 0}
	if err := SortKeysInPlace(reversed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range expected {
		if reversed[i] != expected[i] {
			t.Errorf("index %d: expected %d, got %d", i, expected[i], reversed[i])
		}
	}
}

// The in-place sorter trades stability for not allocating an index array.
// Only the key order and the record multiset are guaranteed; here the two
// key-0 records come out swapped.
func TestSortInPlace_NotStable(t *testing.T) {
	x := []data{{1, 0}, {0, 1}, {1, 2}, {0, 3}}
	if err := SortInPlace(x, dataKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []data{{0, 3}, {0, 1}, {1, 0}, {1, 2}}
	for i := range expected {
		if x[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, x)
		}
	}
}

func TestSortInPlace_AllocationLimit(t *testing.T) {
	x := []data{{5, 0}, {50, 1}}
	err := SortInPlace(x, dataKey, WithMaxBuckets(10))
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("expected ErrAllocation, got %v", err)
	}
	// Input is untouched on failure
	if x[0].key != 5 || x[1].key != 50 {
		t.Errorf("input modified on failure: %v", x)
	}
}

func TestSortInPlace_SwapBound(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	type counted struct {
		key uint32
	}
	x := make([]counted, 2000)
	for i := range x {
		x[i] = counted{uint32(rng.Intn(50))}
	}
	calls := 0
	err := SortInPlace(x, func(c counted) uint32 {
		calls++
		return c.key
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Two counting scans plus at most one look per placement and one per swap
	if calls > 4*len(x) {
		t.Errorf("expected at most %d key reads, got %d", 4*len(x), calls)
	}
}

func BenchmarkSortInPlace(b *testing.B) {
	sizes := []int{1000, 100000, 1000000}
	for _, size := range sizes {
		rng := rand.New(rand.NewSource(42))
		original := make([]data, size)
		for i := range original {
			original[i] = data{key: uint32(rng.Intn(1 << 12)), payload: i}
		}

		b.Run(fmt.Sprintf("InPlace_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			x := make([]data, size)
			for i := 0; i < b.N; i++ {
				copy(x, original)
				if err := SortInPlace(x, dataKey); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run(fmt.Sprintf("StdSort_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			x := make([]data, size)
			for i := 0; i < b.N; i++ {
				copy(x, original)
				sort.Slice(x, func(a, c int) bool { return x[a].key < x[c].key })
			}
		})
	}
}
