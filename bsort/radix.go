package bsort

// RadixOrder returns the stable sorting permutation of uint32 keys of any
// magnitude. Unlike ComputeOrder it never needs more than 256 buckets, so it
// is the fallback when ComputeOrder reports ErrAllocation.
//
// Uses 4 counting passes over the permutation, one per key byte.
func RadixOrder(keys []uint32) Order {
	order := Identity(len(keys))
	n := len(keys)
	if n <= 1 {
		return order
	}

	// For very small inputs, insertion is faster than four passes
	if n <= 64 {
		insertionOrder(keys, order.idx)
		return order
	}

	idx := order.idx
	scratch := make([]int, n)
	for shift := uint(0); shift < 32; shift += 8 {
		radixPass(keys, idx, scratch, shift)
		idx, scratch = scratch, idx
	}
	// Even number of passes: the result is back in the original slice
	return Order{idx: idx}
}

// radixPass stably distributes the indices in src into dst by one key byte.
func radixPass(keys []uint32, src, dst []int, shift uint) {
	var counts [256]int
	for _, j := range src {
		counts[(keys[j]>>shift)&0xFF]++
	}

	total := 0
	for i := range counts {
		count := counts[i]
		counts[i] = total
		total += count
	}

	for _, j := range src {
		b := (keys[j] >> shift) & 0xFF
		dst[counts[b]] = j
		counts[b]++
	}
}

// insertionOrder sorts idx by keys; strict comparison keeps it stable.
func insertionOrder(keys []uint32, idx []int) {
	for i := 1; i < len(idx); i++ {
		j := idx[i]
		key := keys[j]
		p := i - 1
		for p >= 0 && keys[idx[p]] > key {
			idx[p+1] = idx[p]
			p--
		}
		idx[p+1] = j
	}
}
