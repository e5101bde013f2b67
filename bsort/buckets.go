// Package bsort orders data keyed by small non-negative integers in linear time.
//
// Three operations share one bucket table builder: ComputeOrder produces a
// stable sorting permutation, ApplyOrder rearranges any parallel slice by that
// permutation, and SortInPlace sorts a slice of records directly with
// cycle swaps. The bucket table is sized by the largest key, so keys should be
// dense; RadixOrder covers wide uint32 keys.
package bsort

import (
	"fmt"

	"github.com/birc-stormtroopers/bucket-sort/pools"
	"golang.org/x/exp/constraints"
)

// Key is any unsigned integer type usable as a bucket index.
type Key interface {
	constraints.Unsigned
}

func maxKey[K Key](n int, keyAt func(int) K) K {
	var kmax K
	for i := 0; i < n; i++ {
		if k := keyAt(i); k > kmax {
			kmax = k
		}
	}
	return kmax
}

// bucketCount is K_max+1, or 0 for empty input.
func bucketCount[K Key](n int, keyAt func(int) K, o options) (int, error) {
	if n == 0 {
		return 0, nil
	}
	kmax := maxKey(n, keyAt)
	// kmax >= maxBuckets also covers max+1 overflowing int
	if uint64(kmax) >= uint64(o.maxBuckets) {
		return 0, fmt.Errorf("%w: key %d exceeds bucket limit %d", ErrAllocation, kmax, o.maxBuckets)
	}
	return int(kmax) + 1, nil
}

// acquireTable takes a zeroed table of length k from the pool.
// release must be called exactly once when err is nil.
func acquireTable(k int) (table []int, release func(), err error) {
	defer guardAlloc(&err)
	table = pools.Pools.GetBucketTable(k)
	return table, func() { pools.Pools.ReturnBucketTable(table) }, nil
}

// fillBuckets counts the keys into table and turns the counts into an
// exclusive prefix sum: table[k] is the first sorted slot for key k.
func fillBuckets[K Key](table []int, n int, keyAt func(int) K) {
	for i := 0; i < n; i++ {
		table[int(keyAt(i))]++
	}
	acc := 0
	for k, count := range table {
		table[k] = acc
		acc += count
	}
}

// buildBuckets sizes, acquires and fills the bucket table for n keys.
func buildBuckets[K Key](n int, keyAt func(int) K, o options) ([]int, func(), error) {
	k, err := bucketCount(n, keyAt, o)
	if err != nil {
		return nil, nil, err
	}
	table, release, err := acquireTable(k)
	if err != nil {
		return nil, nil, err
	}
	fillBuckets(table, n, keyAt)
	return table, release, nil
}
