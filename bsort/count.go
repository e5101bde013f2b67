package bsort

// CountKeys returns how often each key occurs: len(counts) is K_max+1
// (0 for no keys) and counts[k] is the number of occurrences of k.
func CountKeys[K Key](keys []K, opts ...Option) (counts []int, err error) {
	n := len(keys)
	k, err := bucketCount(n, func(i int) K { return keys[i] }, newOptions(opts))
	if err != nil {
		return nil, err
	}

	defer guardAlloc(&err)
	// not pooled: the table is returned to the caller
	counts = make([]int, k)
	for _, key := range keys {
		counts[int(key)]++
	}
	return counts, nil
}

// CumulativeSum returns the exclusive prefix sum of counts:
// out[0] = 0 and out[i+1] = out[i] + counts[i].
func CumulativeSum(counts []int) []int {
	out := make([]int, len(counts))
	acc := 0
	for i, c := range counts {
		out[i] = acc
		acc += c
	}
	return out
}

// CountSort returns the keys in ascending order, rebuilt from their counts.
func CountSort[K Key](keys []K, opts ...Option) ([]K, error) {
	counts, err := CountKeys(keys, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]K, 0, len(keys))
	for k, count := range counts {
		for ; count > 0; count-- {
			out = append(out, K(k))
		}
	}
	return out, nil
}

// BucketSort returns records stably sorted by key in a new slice.
func BucketSort[R any, K Key](records []R, key func(R) K, opts ...Option) ([]R, error) {
	n := len(records)
	table, release, err := buildBuckets(n, func(i int) K { return key(records[i]) }, newOptions(opts))
	if err != nil {
		return nil, err
	}
	defer release()

	out := make([]R, n)
	for _, r := range records {
		k := int(key(r))
		out[table[k]] = r
		table[k]++
	}
	return out, nil
}
