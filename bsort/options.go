package bsort

import (
	"errors"
	"fmt"
	"runtime"
)

// DefaultMaxBuckets bounds the bucket table when no WithMaxBuckets option is given.
const DefaultMaxBuckets = 1 << 26

var (
	// ErrAllocation reports that the bucket table for the input could not be allocated.
	ErrAllocation = errors.New("cannot allocate bucket table")
	// ErrLengthMismatch reports an order applied to a slice of a different length.
	ErrLengthMismatch = errors.New("order length does not match values")
)

// Option configures a single sort call
type Option func(*options)

type options struct {
	maxBuckets int
}

// WithMaxBuckets limits the bucket table to n entries, i.e. keys up to n-1.
// Values <= 0 select DefaultMaxBuckets.
func WithMaxBuckets(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = DefaultMaxBuckets
		}
		o.maxBuckets = n
	}
}

func newOptions(opts []Option) options {
	o := options{maxBuckets: DefaultMaxBuckets}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// guardAlloc turns a runtime allocation panic (e.g. makeslice: len out of range)
// into ErrAllocation. Any other panic is re-raised.
func guardAlloc(err *error) {
	r := recover()
	if r == nil {
		return
	}
	re, ok := r.(runtime.Error)
	if !ok {
		panic(r)
	}
	*err = fmt.Errorf("%w: %v", ErrAllocation, re)
}
