package mie

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncation(t *testing.T) {
	assert.Equal(t, 2, ReferenceTruncation(0.1))
	assert.Equal(t, 3, ReferenceTruncation(1))
	assert.Equal(t, 14, ReferenceTruncation(10))
	assert.Equal(t, 21, WiscombeTruncation(10))
	assert.GreaterOrEqual(t, WiscombeTruncation(1e-6), 1)

	tr, err := TruncationByName("Wiscombe")
	require.NoError(t, err)
	assert.Equal(t, 21, tr(10))
	_, err = TruncationByName("bessel")
	assert.Error(t, err)
	assert.Equal(t, []string{"reference", "wiscombe"}, TruncationNames())
}

func TestLogDerivativeByName(t *testing.T) {
	ld, err := LogDerivativeByName("upward", 5)
	require.NoError(t, err)
	assert.Equal(t, Upward{GrowthLimit: 5}, ld)
	ld, err = LogDerivativeByName("DOWNWARD", 5)
	require.NoError(t, err)
	assert.IsType(t, Downward{}, ld)
	_, err = LogDerivativeByName("sideways", 0)
	assert.Error(t, err)
}

func TestRiccatiBesselLowDegrees(t *testing.T) {
	x := 2.7
	psi, eta := RiccatiBessel(x, 4)
	require.Len(t, psi, 7)
	require.Len(t, eta, 7)
	sin, cos := math.Sin(x), math.Cos(x)

	assert.InDelta(t, cos, psi[0], 1e-15)
	assert.InDelta(t, sin, psi[1], 1e-15)
	assert.InDelta(t, sin/x-cos, psi[2], 1e-14)
	assertComplexInDelta(t, complex(sin/x-cos, cos/x+sin), eta[2], 1e-14)
	// ψ_2 = (3/x² - 1) sin x - 3/x cos x
	assert.InDelta(t, (3/(x*x)-1)*sin-3/x*cos, psi[3], 1e-14)
	for i := range psi {
		assert.InDelta(t, psi[i], real(eta[i]), 1e-13, "Re η = ψ at index %d", i)
	}
}

func TestAngularFunctionsAtPoles(t *testing.T) {
	var forward, backward Angular
	forward.Compute(1, 12)
	for n := 1; n <= 12; n++ {
		expected := float64(n*(n+1)) / 2
		assert.InEpsilon(t, expected, forward.Pi[n], 1e-12, "π_%d(1)", n)
		assert.InEpsilon(t, expected, forward.Tau[n], 1e-12, "τ_%d(1)", n)
	}
	backward.Compute(-1, 12)
	for n := 1; n <= 12; n++ {
		expected := float64(n*(n+1)) / 2
		sign := 1.
		if n%2 == 0 {
			sign = -1
		}
		assert.InEpsilon(t, sign*expected, backward.Pi[n], 1e-12, "π_%d(-1)", n)
		assert.InEpsilon(t, -sign*expected, backward.Tau[n], 1e-12, "τ_%d(-1)", n)
	}
}

func TestAngularBufferReuse(t *testing.T) {
	var a Angular
	a.Compute(0.3, 20)
	wantPi := append([]float64(nil), a.Pi[:5]...)
	a.Compute(0.3, 4)
	assert.Len(t, a.Pi, 5)
	assert.Equal(t, wantPi, a.Pi)
	a.Compute(0.3, 0)
	assert.Equal(t, []float64{0}, a.Pi)
}
