package utils

import (
	"cmp"
	"slices"

	"golang.org/x/exp/constraints"
)

func Argmax[T cmp.Ordered](arr []T) (argmax int) {
	for i := range arr {
		if cmp.Compare(arr[i], arr[argmax]) == 1 {
			argmax = i
		}
	}
	return
}

func Argmin[T cmp.Ordered](arr []T) (argmin int) {
	for i := range arr {
		if cmp.Compare(arr[i], arr[argmin]) == -1 {
			argmin = i
		}
	}
	return
}

type Number interface {
	constraints.Float | constraints.Integer
}

func SumSlice[T Number](arr []T) (r T) {
	for i := range arr {
		r += arr[i]
	}
	return
}

func IntAbs(a int) int {
	if a < 0 {
		return -a
	} else {
		return a
	}
}

func Intersect(a, b []string) *string {
	for i := range a {
		if slices.Contains(b, a[i]) {
			return &a[i]
		}
	}
	return nil
}

// Chunks splits [0, n) into at most parts contiguous half-open ranges whose
// lengths differ by no more than one. Empty ranges are not produced.
func Chunks(n, parts int) [][2]int {
	if n <= 0 {
		return nil
	}
	parts = max(1, min(parts, n))
	chunks := make([][2]int, 0, parts)
	base, extra := n/parts, n%parts
	start := 0
	for i := range parts {
		size := base
		if i < extra {
			size++
		}
		chunks = append(chunks, [2]int{start, start + size})
		start += size
	}
	return chunks
}
