// Package angles builds the ordered scattering-angle grids the Mie sums are
// evaluated on.
package angles

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidGrid = errors.New("invalid scattering angle grid")

// DefaultCount partitions [0°, 180°] with a 0.5° step.
const DefaultCount = 361

type Grid struct {
	degrees []float64
	cosines []float64
}

// Uniform returns n equally spaced angles from 0° to 180° inclusive.
func Uniform(n int) (Grid, error) {
	if n < 2 {
		return Grid{}, fmt.Errorf("%w: need at least 2 angles, got %d", ErrInvalidGrid, n)
	}
	degrees := make([]float64, n)
	step := 180. / float64(n-1)
	for i := range degrees {
		degrees[i] = float64(i) * step
	}
	degrees[n-1] = 180.
	return newGrid(degrees), nil
}

// FromDegrees accepts an explicit, strictly increasing list of angles in [0°, 180°].
func FromDegrees(degrees []float64) (Grid, error) {
	if len(degrees) == 0 {
		return Grid{}, fmt.Errorf("%w: empty angle list", ErrInvalidGrid)
	}
	for i, d := range degrees {
		if math.IsNaN(d) || d < 0 || d > 180 {
			return Grid{}, fmt.Errorf("%w: angle %v at position %d is outside [0, 180]", ErrInvalidGrid, d, i)
		}
		if i > 0 && d <= degrees[i-1] {
			return Grid{}, fmt.Errorf("%w: angles must be strictly increasing (%v after %v)", ErrInvalidGrid, d, degrees[i-1])
		}
	}
	return newGrid(append([]float64(nil), degrees...)), nil
}

func newGrid(degrees []float64) Grid {
	g := Grid{
		degrees: degrees,
		cosines: make([]float64, len(degrees)),
	}
	for i, d := range degrees {
		g.cosines[i] = math.Cos(d * math.Pi / 180)
	}
	return g
}

func (g Grid) Len() int {
	return len(g.degrees)
}

func (g Grid) Degrees() []float64 {
	return append([]float64(nil), g.degrees...)
}

func (g Grid) Degree(i int) float64 {
	return g.degrees[i]
}

// Cos returns cos α for the i-th angle, the argument of the angular functions.
func (g Grid) Cos(i int) float64 {
	return g.cosines[i]
}
