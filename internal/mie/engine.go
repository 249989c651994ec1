// Package mie evaluates the Mie scattering amplitudes of a homogeneous sphere
// from Riccati–Bessel and angular-function recursions.
//
// The refractive index ratio follows the n + ik convention: a positive
// imaginary part means an absorbing particle.
package mie

import (
	"math"
	"math/cmplx"

	"github.com/wildstyl3r/polmie/internal/constants"
)

// Engine is stateless; the zero value uses the reference truncation and the
// upward log-derivative recursion.
type Engine struct {
	Truncation    Truncation
	LogDerivative LogDerivative
}

func (e Engine) truncation() Truncation {
	if e.Truncation == nil {
		return ReferenceTruncation
	}
	return e.Truncation
}

func (e Engine) logDerivative() LogDerivative {
	if e.LogDerivative == nil {
		return Upward{}
	}
	return e.LogDerivative
}

// Series holds the Mie coefficients an, bn for degrees 1..NMax (index 0 unused).
type Series struct {
	X    float64
	M    complex128
	NMax int
	An   []complex128
	Bn   []complex128
}

// NoContrast reports a refractive index ratio of one: the particle is
// indistinguishable from the medium and does not scatter.
func NoContrast(m complex128) bool {
	return cmplx.Abs(m-1) <= constants.NoContrastTolerance
}

// Coefficients computes an and bn for size parameter x and refractive index ratio m.
func (e Engine) Coefficients(x float64, m complex128) (*Series, error) {
	if !(x > 0) || math.IsInf(x, 0) {
		return nil, &sizeParameterError{x}
	}
	nmax := e.truncation()(x)
	s := &Series{
		X:    x,
		M:    m,
		NMax: nmax,
		An:   make([]complex128, nmax+1),
		Bn:   make([]complex128, nmax+1),
	}
	if NoContrast(m) {
		return s, nil
	}

	// the recursions below use η = ψ + iχ, which pairs with the n - ik sign
	// convention; conjugating keeps absorbing particles absorbing
	mc := cmplx.Conj(m)
	mx := mc * complex(x, 0)
	rn, err := e.logDerivative().Ratios(mx, nmax)
	if err != nil {
		return nil, err
	}
	psi, eta := RiccatiBessel(x, nmax)
	k := 1 - 1/(mc*mc)
	for n := 1; n <= nmax; n++ {
		psiN := complex(psi[n+degreeOffset], 0)
		psiPrev := complex(psi[n-1+degreeOffset], 0)
		etaN, etaPrev := eta[n+degreeOffset], eta[n-1+degreeOffset]

		a := rn[n]/mc + complex(float64(n), 0)*k/complex(x, 0)
		if s.An[n], err = ratio(a*psiN-psiPrev, a*etaN-etaPrev, "an", n, x); err != nil {
			return nil, err
		}
		b := mc * rn[n]
		if s.Bn[n], err = ratio(b*psiN-psiPrev, b*etaN-etaPrev, "bn", n, x); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func ratio(numerator, denominator complex128, stage string, n int, x float64) (complex128, error) {
	if cmplx.Abs(denominator) < constants.TinyDenominator {
		return 0, &InstabilityError{Stage: stage + " denominator", Degree: n, X: x, Value: denominator}
	}
	q := numerator / denominator
	if !finite(q) {
		return 0, &InstabilityError{Stage: stage, Degree: n, X: x, Value: q}
	}
	return q, nil
}

// Amplitudes sums S1 and S2 at mu = cos α. scratch may be nil.
func (s *Series) Amplitudes(mu float64, scratch *Angular) (s1, s2 complex128, err error) {
	if scratch == nil {
		scratch = &Angular{}
	}
	scratch.Compute(mu, s.NMax)
	for n := 1; n <= s.NMax; n++ {
		c := complex(float64(2*n+1)/float64(n)/float64(n+1), 0)
		pi, tau := complex(scratch.Pi[n], 0), complex(scratch.Tau[n], 0)
		s1 += c * (s.An[n]*pi + s.Bn[n]*tau)
		s2 += c * (s.Bn[n]*pi + s.An[n]*tau)
	}
	if !finite(s1) {
		return 0, 0, &InstabilityError{Stage: "S1", Degree: s.NMax, X: s.X, Value: s1}
	}
	if !finite(s2) {
		return 0, 0, &InstabilityError{Stage: "S2", Degree: s.NMax, X: s.X, Value: s2}
	}
	return s1, s2, nil
}

// Efficiencies returns the extinction and scattering efficiencies
// Qext = 2/x² Σ(2n+1)Re(an+bn), Qsca = 2/x² Σ(2n+1)(|an|²+|bn|²).
func (s *Series) Efficiencies() (qext, qsca float64) {
	for n := 1; n <= s.NMax; n++ {
		weight := float64(2*n + 1)
		qext += weight * real(s.An[n]+s.Bn[n])
		qsca += weight * (SquaredNorm(s.An[n]) + SquaredNorm(s.Bn[n]))
	}
	factor := 2. / (s.X * s.X)
	return qext * factor, qsca * factor
}

// Amplitudes evaluates one (size parameter, angle) cell; alpha is in radians.
func (e Engine) Amplitudes(x float64, m complex128, alpha float64) (s1, s2 complex128, err error) {
	s, err := e.Coefficients(x, m)
	if err != nil {
		return 0, 0, err
	}
	return s.Amplitudes(math.Cos(alpha), nil)
}

// SquaredNorm is |c|² without the square root of cmplx.Abs.
func SquaredNorm(c complex128) float64 {
	return real(c)*real(c) + imag(c)*imag(c)
}
