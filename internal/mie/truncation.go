package mie

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Truncation chooses the highest degree kept in the multipole sums for a
// size parameter x. Implementations must return at least 1.
type Truncation func(x float64) int

// ReferenceTruncation is nmax = ceil(1.25x) + 1.
func ReferenceTruncation(x float64) int {
	return max(1, int(math.Ceil(1.25*x))+1)
}

// WiscombeTruncation is nmax = x + 4x^(1/3) + 2 (Wiscombe 1980), rounded.
func WiscombeTruncation(x float64) int {
	return max(1, int(math.Round(x+4.*math.Cbrt(x)+2.)))
}

var truncations = map[string]Truncation{
	"reference": ReferenceTruncation,
	"wiscombe":  WiscombeTruncation,
}

func TruncationByName(name string) (Truncation, error) {
	if t, ok := truncations[strings.ToLower(name)]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown truncation %q (known: %s)", name, strings.Join(TruncationNames(), ", "))
}

func TruncationNames() []string {
	names := make([]string, 0, len(truncations))
	for name := range truncations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
