package model

import "fmt"

// Reorder moves the item at from to position to, shifting the items in between.
// The input slice is left untouched.
func Reorder[T any](items []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return nil, fmt.Errorf("reorder %d -> %d of %d: %w", from, to, len(items), ErrIndexOutOfRange)
	}

	out := make([]T, 0, len(items))
	moved := items[from]
	for i, it := range items {
		if i != from {
			out = append(out, it)
		}
	}
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out, nil
}
