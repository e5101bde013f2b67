package bsort

// SortInPlace sorts records ascending by key without an index array.
// It allocates two tables of K_max+1 entries: the bucket table, used as
// the next free slot per key, and the end of each bucket.
//
// The sort is not stable: cycle swaps may reorder records with equal keys.
// Use ComputeOrderFunc with ApplyOrder when ties must keep their order.
func SortInPlace[R any, K Key](records []R, key func(R) K, opts ...Option) error {
	n := len(records)
	next, release, err := buildBuckets(n, func(i int) K { return key(records[i]) }, newOptions(opts))
	if err != nil {
		return err
	}
	defer release()
	if n == 0 {
		return nil
	}

	// ends[b] is one past the last slot of bucket b
	ends, releaseEnds, err := acquireTable(len(next))
	if err != nil {
		return err
	}
	defer releaseEnds()
	copy(ends, next[1:])
	ends[len(ends)-1] = n

	// Buckets below b are full, so a stray record always belongs to a later
	// bucket with a free slot. Every swap settles one record.
	for b := range next {
		for next[b] < ends[b] {
			i := next[b]
			k := int(key(records[i]))
			if k == b {
				next[b]++
				continue
			}
			swapToBucket(records, next, i, k)
		}
	}
	return nil
}

// SortKeysInPlace sorts a bare key slice ascending.
func SortKeysInPlace[K Key](keys []K, opts ...Option) error {
	return SortInPlace(keys, func(k K) K { return k }, opts...)
}

// swapToBucket swaps records[i] into the next free slot of bucket k, then
// advances that bucket's cursor.
func swapToBucket[R any](records []R, next []int, i, k int) {
	j := next[k]
	records[i], records[j] = records[j], records[i]
	next[k]++
}
