package collections

import (
	"cmp"
	"maps"
	"slices"
)

// Apply applies the applicator function to each item in the input slice.
func Apply[T, V any](items []T, applicator func(T) V) []V {
	result := make([]V, len(items))
	for i, item := range items {
		result[i] = applicator(item)
	}

	return result
}

// ApplyVariadic is Apply over its variadic arguments.
func ApplyVariadic[T, V any](applicator func(T) V, items ...T) []V {
	return Apply(items, applicator)
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
