package bsort

import "fmt"

// ApplyOrder rearranges values so that values[i] afterwards is the value that
// was at order.At(i) before. order is not modified.
func ApplyOrder[T any](values []T, order Order) error {
	if len(values) != order.Len() {
		return fmt.Errorf("%w: %d values, order of %d", ErrLengthMismatch, len(values), order.Len())
	}
	if len(values) == 0 {
		return nil
	}

	scratch := make([]T, len(values))
	copy(scratch, values)
	for i, j := range order.idx {
		values[i] = scratch[j]
	}
	return nil
}

// Gather returns values rearranged by order in a new slice, leaving values untouched
func Gather[T any](values []T, order Order) ([]T, error) {
	if len(values) != order.Len() {
		return nil, fmt.Errorf("%w: %d values, order of %d", ErrLengthMismatch, len(values), order.Len())
	}
	out := make([]T, len(values))
	for i, j := range order.idx {
		out[i] = values[j]
	}
	return out, nil
}
