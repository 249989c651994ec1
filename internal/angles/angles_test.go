package angles

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniform(t *testing.T) {
	g, err := Uniform(DefaultCount)
	require.NoError(t, err)
	assert.Equal(t, 361, g.Len())
	assert.Equal(t, 0., g.Degree(0))
	assert.Equal(t, 0.5, g.Degree(1))
	assert.Equal(t, 90., g.Degree(180))
	assert.Equal(t, 180., g.Degree(360))
	assert.Equal(t, 1., g.Cos(0))
	assert.InDelta(t, -1., g.Cos(360), 1e-15)

	g, err = Uniform(7)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 30, 60, 90, 120, 150, 180}, g.Degrees(), 1e-12)

	for _, n := range []int{-1, 0, 1} {
		_, err := Uniform(n)
		assert.ErrorIs(t, err, ErrInvalidGrid)
	}
}

func TestFromDegrees(t *testing.T) {
	input := []float64{0, 90, 180}
	g, err := FromDegrees(input)
	require.NoError(t, err)
	input[1] = 45
	assert.Equal(t, []float64{0, 90, 180}, g.Degrees())

	degrees := g.Degrees()
	degrees[0] = 10
	assert.Equal(t, 0., g.Degree(0))

	for name, bad := range map[string][]float64{
		"empty":      nil,
		"negative":   {-1, 10},
		"beyond":     {10, 180.5},
		"nan":        {math.NaN()},
		"repeated":   {10, 10},
		"decreasing": {90, 45},
	} {
		_, err := FromDegrees(bad)
		assert.ErrorIs(t, err, ErrInvalidGrid, name)
	}
}
