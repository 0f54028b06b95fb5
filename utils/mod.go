package utils

import "golang.org/x/exp/constraints"

func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

func Contains[T comparable](slice []T, item T) bool {
	return FindIndex(slice, item) >= 0
}

func ContainsFunc[T any](slice []T, match func(T) bool) bool {
	for _, v := range slice {
		if match(v) {
			return true
		}
	}
	return false
}

// ArgMax returns the index of the highest scoring element, or -1 for an
// empty slice. Ties keep the earliest element.
func ArgMax[T any, S constraints.Integer | constraints.Float](slice []T, score func(T) S) int {
	best := -1
	var bestScore S
	for i, v := range slice {
		if s := score(v); best < 0 || s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// Abs returns the absolute value of a signed number.
func Abs[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// Sum adds up every element of the slice.
func Sum[T constraints.Integer | constraints.Float](values []T) T {
	var total T
	for _, v := range values {
		total += v
	}
	return total
}
