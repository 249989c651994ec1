package mie

import (
	"fmt"
	"math"
	"math/cmplx"
	"slices"
	"strings"

	"github.com/wildstyl3r/polmie/internal/constants"
)

// LogDerivative produces rn[0..nmax], rn[i] = ψ_{i-1}(mx)/ψ_i(mx), the ratio
// form of the logarithmic derivative D_i = rn[i] - i/(mx).
type LogDerivative interface {
	Ratios(mx complex128, nmax int) ([]complex128, error)
}

// Upward seeds rn[0] = cot(mx) and recurs rn[i] = 1/((2i-1)/(mx) - rn[i-1]).
// It loses accuracy once i exceeds |mx|; GrowthLimit bounds |rn| to catch it.
type Upward struct {
	GrowthLimit float64
}

func (u Upward) Ratios(mx complex128, nmax int) ([]complex128, error) {
	limit := u.GrowthLimit
	if limit <= 0 {
		limit = constants.DefaultGrowthLimit
	}
	rn := make([]complex128, nmax+1)
	seed, err := cot(mx)
	if err != nil {
		return nil, err
	}
	rn[0] = seed
	for i := 1; i <= nmax; i++ {
		denominator := complex(float64(2*i-1), 0)/mx - rn[i-1]
		if cmplx.Abs(denominator) < constants.TinyDenominator {
			return nil, &InstabilityError{Stage: "log-derivative denominator", Degree: i, X: real(mx), Value: denominator}
		}
		rn[i] = 1 / denominator
		if !finite(rn[i]) || cmplx.Abs(rn[i]) > limit {
			return nil, &InstabilityError{Stage: "log-derivative growth", Degree: i, X: real(mx), Value: rn[i]}
		}
	}
	return rn, nil
}

// cot keeps the real-argument path on math.Tan so real refractive indices
// follow the reference arithmetic exactly.
func cot(z complex128) (complex128, error) {
	if imag(z) == 0 {
		t := math.Tan(real(z))
		if t == 0 {
			return 0, &InstabilityError{Stage: "cot(mx) seed", Degree: 0, X: real(z), Value: z}
		}
		return complex(1/t, 0), nil
	}
	c := cmplx.Cot(z)
	if !finite(c) {
		return 0, &InstabilityError{Stage: "cot(mx) seed", Degree: 0, X: real(z), Value: c}
	}
	return c, nil
}

// Downward runs the stable recurrence D_{n-1} = n/(mx) - 1/(D_n + n/(mx))
// from D = 0 at max(nmax, |mx|) + Extra and converts back to ratios.
type Downward struct {
	Extra int
}

func (d Downward) Ratios(mx complex128, nmax int) ([]complex128, error) {
	extra := d.Extra
	if extra <= 0 {
		extra = 16
	}
	start := max(nmax, int(math.Ceil(cmplx.Abs(mx)))) + extra
	logDerivatives := make([]complex128, start+1)
	var current complex128
	for n := start; n > 0; n-- {
		q := complex(float64(n), 0) / mx
		denominator := current + q
		if cmplx.Abs(denominator) < constants.TinyDenominator {
			return nil, &InstabilityError{Stage: "downward log-derivative denominator", Degree: n, X: real(mx), Value: denominator}
		}
		current = q - 1/denominator
		logDerivatives[n-1] = current
	}
	rn := make([]complex128, nmax+1)
	rn[0] = logDerivatives[0]
	for i := 1; i <= nmax; i++ {
		rn[i] = logDerivatives[i] + complex(float64(i), 0)/mx
		if !finite(rn[i]) {
			return nil, &InstabilityError{Stage: "downward log-derivative", Degree: i, X: real(mx), Value: rn[i]}
		}
	}
	return rn, nil
}

var logDerivatives = map[string]func(growthLimit float64) LogDerivative{
	"upward":   func(growthLimit float64) LogDerivative { return Upward{GrowthLimit: growthLimit} },
	"downward": func(float64) LogDerivative { return Downward{} },
}

func LogDerivativeByName(name string, growthLimit float64) (LogDerivative, error) {
	if build, ok := logDerivatives[strings.ToLower(name)]; ok {
		return build(growthLimit), nil
	}
	return nil, fmt.Errorf("unknown log-derivative recursion %q (known: %s)", name, strings.Join(LogDerivativeNames(), ", "))
}

func LogDerivativeNames() []string {
	names := make([]string, 0, len(logDerivatives))
	for name := range logDerivatives {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func finite(c complex128) bool {
	return !cmplx.IsNaN(c) && !cmplx.IsInf(c)
}
