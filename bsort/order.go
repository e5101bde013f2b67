package bsort

// Order is a permutation of 0..n-1: position i of the sorted data holds the
// element found at At(i) in the original data.
// An Order can only be built by this package, so it is always a bijection.
type Order struct {
	idx []int
}

// Identity returns the order that leaves n elements where they are
func Identity(n int) Order {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return Order{idx: idx}
}

// Len returns the number of positions in the order
func (o Order) Len() int {
	return len(o.idx)
}

// At returns the original index that belongs at sorted position i
func (o Order) At(i int) int {
	return o.idx[i]
}

// Indices returns a copy of the permutation
func (o Order) Indices() []int {
	out := make([]int, len(o.idx))
	copy(out, o.idx)
	return out
}

// IsIdentity reports whether applying the order would move nothing
func (o Order) IsIdentity() bool {
	for i, j := range o.idx {
		if i != j {
			return false
		}
	}
	return true
}

// Inverse returns the order that undoes o: after applying o then its
// inverse, every element is back at its original position.
func (o Order) Inverse() Order {
	inv := make([]int, len(o.idx))
	for i, j := range o.idx {
		inv[j] = i
	}
	return Order{idx: inv}
}

// ComputeOrder returns the stable permutation that sorts keys ascending:
// keys[order.At(i-1)] <= keys[order.At(i)], and equal keys keep their
// original relative order.
//
// The only failure is ErrAllocation, when the largest key needs more buckets
// than allowed or than can be allocated.
func ComputeOrder[K Key](keys []K, opts ...Option) (Order, error) {
	return computeOrder(len(keys), func(i int) K { return keys[i] }, newOptions(opts))
}

// ComputeOrderFunc is ComputeOrder over the keys extracted from records.
func ComputeOrderFunc[R any, K Key](records []R, key func(R) K, opts ...Option) (Order, error) {
	return computeOrder(len(records), func(i int) K { return key(records[i]) }, newOptions(opts))
}

func computeOrder[K Key](n int, keyAt func(int) K, o options) (Order, error) {
	table, release, err := buildBuckets(n, keyAt, o)
	if err != nil {
		return Order{}, err
	}
	defer release()

	// Left to right, each bucket cursor only advances: stable.
	idx := make([]int, n)
	for i := 0; i < n; i++ {
		k := int(keyAt(i))
		idx[table[k]] = i
		table[k]++
	}
	return Order{idx: idx}, nil
}
