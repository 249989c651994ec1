// Package sizedist discretizes the Gamma particle-size distribution of
// Hansen & Travis (1974) on a finite radius grid.
package sizedist

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInvalidParameters = errors.New("invalid size distribution parameters")
	ErrDegenerateWeights = errors.New("size distribution weights sum to a non-positive total")
)

// Parameters describe the distribution by its mean radius and standard deviation [m].
type Parameters struct {
	MeanRadius float64
	Sigma      float64
}

// Effective converts mean radius and deviation into effective radius and variance:
// aeff = r + 2σ²/r, veff = σ²/(aeff r).
func (p Parameters) Effective() (Effective, error) {
	if !(p.MeanRadius > 0) || math.IsInf(p.MeanRadius, 0) {
		return Effective{}, fmt.Errorf("%w: mean radius %v must be positive", ErrInvalidParameters, p.MeanRadius)
	}
	if p.Sigma < 0 || math.IsNaN(p.Sigma) || math.IsInf(p.Sigma, 0) {
		return Effective{}, fmt.Errorf("%w: sigma %v must be non-negative", ErrInvalidParameters, p.Sigma)
	}
	aeff := p.MeanRadius + 2.*p.Sigma*p.Sigma/p.MeanRadius
	e := Effective{
		Radius:   aeff,
		Variance: p.Sigma * p.Sigma / aeff / p.MeanRadius,
	}
	return e, e.Validate()
}

// Effective holds the effective radius [m] and the dimensionless effective variance.
type Effective struct {
	Radius   float64
	Variance float64
}

// Validate rejects parameters for which the weight is undefined.
func (e Effective) Validate() error {
	switch {
	case !(e.Radius > 0) || math.IsInf(e.Radius, 0):
		return fmt.Errorf("%w: effective radius %v must be positive", ErrInvalidParameters, e.Radius)
	case !(e.Variance > 0) || math.IsInf(e.Variance, 0):
		return fmt.Errorf("%w: effective variance %v must be positive", ErrInvalidParameters, e.Variance)
	}
	return nil
}

// LogWeight is ln n(r) for n(r) = r^((1-3v)/v) exp(-r/(aeff v)), up to a constant.
// For v < 0.5 this is a Gamma density with shape (1-2v)/v and rate 1/(aeff v);
// larger variances give an improper but still usable weight on r > 0.
func (e Effective) LogWeight(r float64) float64 {
	return (1.-3.*e.Variance)/e.Variance*math.Log(r) - r/(e.Radius*e.Variance)
}

// Grid places radii r_k = k/(Steps+1)·HalfWidth·aeff + Center·aeff for k in [-Steps, Steps].
type Grid struct {
	Steps     int
	Center    float64
	HalfWidth float64
}

var DefaultGrid = Grid{Steps: 1000, Center: 2.01, HalfWidth: 2.}

func (g Grid) validate() error {
	if g.Steps < 0 {
		return fmt.Errorf("%w: grid steps %d must be non-negative", ErrInvalidParameters, g.Steps)
	}
	if math.IsNaN(g.Center) || math.IsInf(g.Center, 0) || !(g.HalfWidth >= 0) || math.IsInf(g.HalfWidth, 0) {
		return fmt.Errorf("%w: grid center %v and half width %v must be finite, half width non-negative", ErrInvalidParameters, g.Center, g.HalfWidth)
	}
	return nil
}

type Distribution struct {
	Effective Effective
	Radii     []float64 // [m], ascending, strictly positive
	Weights   []float64 // relative, the largest is 1
	total     float64
	excluded  int
}

// New discretizes the distribution. Grid radii that are not positive are
// dropped: the weight is singular there.
func New(e Effective, g Grid) (*Distribution, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	d := &Distribution{Effective: e}
	logWeights := make([]float64, 0, 2*g.Steps+1)
	for k := -g.Steps; k <= g.Steps; k++ {
		r := float64(k)/float64(g.Steps+1)*e.Radius*g.HalfWidth + g.Center*e.Radius
		if !(r > 0) {
			d.excluded++
			continue
		}
		d.Radii = append(d.Radii, r)
		logWeights = append(logWeights, e.LogWeight(r))
	}
	if len(d.Radii) == 0 {
		return nil, fmt.Errorf("%w: no positive radius on the grid", ErrDegenerateWeights)
	}

	// shifting by the maximum keeps exp() away from underflow; the factor cancels on normalization
	peak := floats.Max(logWeights)
	d.Weights = make([]float64, len(logWeights))
	for i, lw := range logWeights {
		d.Weights[i] = math.Exp(lw - peak)
	}
	d.total = floats.Sum(d.Weights)
	if !(d.total > 0) || math.IsInf(d.total, 0) {
		return nil, fmt.Errorf("%w: total %v", ErrDegenerateWeights, d.total)
	}
	return d, nil
}

func (d *Distribution) Len() int {
	return len(d.Radii)
}

// Excluded reports how many grid radii were dropped for being non-positive.
func (d *Distribution) Excluded() int {
	return d.excluded
}

func (d *Distribution) Total() float64 {
	return d.total
}

// NormalizedWeight returns weight(i)/Σweights.
func (d *Distribution) NormalizedWeight(i int) float64 {
	return d.Weights[i] / d.total
}

func (d *Distribution) Normalized() []float64 {
	normalized := make([]float64, len(d.Weights))
	floats.ScaleTo(normalized, 1./d.total, d.Weights)
	return normalized
}

// Moments recovers the effective radius and variance of the discretized
// grid, i.e. the mean and relative variance of r weighted by the geometric
// cross section πr²n(r).
func (d *Distribution) Moments() (radius, variance float64) {
	areaWeights := make([]float64, len(d.Radii))
	for i, r := range d.Radii {
		areaWeights[i] = math.Pi * r * r * d.Weights[i]
	}
	mean, v := stat.PopMeanVariance(d.Radii, areaWeights)
	return mean, v / (mean * mean)
}
