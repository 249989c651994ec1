package model

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/wildstyl3r/polmie/internal/angles"
	"github.com/wildstyl3r/polmie/internal/config"
	"github.com/wildstyl3r/polmie/internal/mie"
	"github.com/wildstyl3r/polmie/internal/sizedist"
	"github.com/wildstyl3r/polmie/internal/utils"
)

type Model struct {
	Parameters   config.ModelParameters
	Angles       angles.Grid
	Distribution *sizedist.Distribution
	Engine       mie.Engine

	Log logrus.FieldLogger
}

func NewModel(parameters config.ModelParameters, log logrus.FieldLogger) (*Model, error) {
	m := &Model{Parameters: parameters, Log: log}
	if m.Log == nil {
		m.Log = logrus.StandardLogger()
	}

	var err error
	if len(parameters.Angles) > 0 {
		m.Angles, err = angles.FromDegrees(parameters.Angles)
	} else {
		m.Angles, err = angles.Uniform(parameters.NAngles)
	}
	if err != nil {
		return nil, err
	}

	effective, err := sizeDistribution(&parameters)
	if err != nil {
		return nil, err
	}
	m.Distribution, err = sizedist.New(effective, sizedist.Grid{
		Steps:     parameters.SizeSteps,
		Center:    parameters.GridCenter,
		HalfWidth: parameters.GridHalfWidth,
	})
	if err != nil {
		return nil, err
	}

	if m.Engine.Truncation, err = mie.TruncationByName(parameters.Truncation); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfig, err)
	}
	if m.Engine.LogDerivative, err = mie.LogDerivativeByName(parameters.LogDerivative, parameters.GrowthLimit); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfig, err)
	}

	if parameters.Verbose() {
		radius, variance := m.Distribution.Moments()
		m.Log.WithFields(logrus.Fields{
			"aeff":      effective.Radius,
			"veff":      effective.Variance,
			"grid_aeff": radius,
			"grid_veff": variance,
			"sizes":     m.Distribution.Len(),
			"excluded":  m.Distribution.Excluded(),
			"angles":    m.Angles.Len(),
			"x_max":     m.SizeParameter(m.Distribution.Radii[m.Distribution.Len()-1]),
		}).Debug("size distribution discretized")
	}
	return m, nil
}

func sizeDistribution(p *config.ModelParameters) (sizedist.Effective, error) {
	if p.UsesEffective() {
		e := sizedist.Effective{Radius: p.EffectiveRadius, Variance: p.EffectiveVariance}
		return e, e.Validate()
	}
	return sizedist.Parameters{MeanRadius: p.MeanRadius, Sigma: p.Sigma}.Effective()
}

// SizeParameter is x = 2πr/λ.
func (m *Model) SizeParameter(radius float64) float64 {
	return 2. * math.Pi * radius / m.Parameters.Wavelength
}

// CellFailure records a (size, angle) cell left out of the averages.
type CellFailure struct {
	Size     int
	Angle    int
	Radius   float64 // [m]
	AngleDeg float64
	Err      error
}

// Efficiencies are averaged over the distribution with cross-section weights πr²n(r).
type Efficiencies struct {
	Extinction float64
	Scattering float64
	Absorption float64
	Albedo     float64
}

type Result struct {
	Angles       angles.Grid
	F11          []float64
	F21          []float64
	Curve        Curve
	Efficiencies Efficiencies
	Failures     []CellFailure
	FailedSizes  int // sizes whose coefficients could not be computed at all
	Elapsed      time.Duration
}

type partialSums struct {
	f11, f21   []float64
	extinction float64
	scattering float64
	area       float64
	failures   []CellFailure

	failedSizes int
}

// Run accumulates the intensity-weighted phase matrix elements over the size
// grid and builds the polarization curve. Sizes are split into contiguous
// chunks, one per worker; partial sums are merged in chunk order.
//
// A non-nil Result may come with an error joining ZeroIntensityErrors: the
// curve is complete, with NaN at the reported angles.
func (m *Model) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	threads := m.Parameters.Threads()
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	chunks := utils.Chunks(m.Distribution.Len(), threads)
	log := m.Log.WithFields(logrus.Fields{
		"sizes":   m.Distribution.Len(),
		"angles":  m.Angles.Len(),
		"workers": len(chunks),
	})
	log.Debug("averaging over sizes")

	partials := make([]partialSums, len(chunks))
	g, ctx := errgroup.WithContext(ctx)
	for worker, chunk := range chunks {
		g.Go(func() error {
			return m.accumulate(ctx, chunk[0], chunk[1], &partials[worker])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Angles: m.Angles,
		F11:    make([]float64, m.Angles.Len()),
		F21:    make([]float64, m.Angles.Len()),
	}
	extinction := make([]float64, len(partials))
	scattering := make([]float64, len(partials))
	areas := make([]float64, len(partials))
	failedSizes := make([]int, len(partials))
	for i := range partials {
		floats.Add(result.F11, partials[i].f11)
		floats.Add(result.F21, partials[i].f21)
		extinction[i] = partials[i].extinction
		scattering[i] = partials[i].scattering
		areas[i] = partials[i].area
		failedSizes[i] = partials[i].failedSizes
		result.Failures = append(result.Failures, partials[i].failures...)
	}
	result.FailedSizes = utils.SumSlice(failedSizes)
	area := utils.SumSlice(areas)
	if area > 0 {
		result.Efficiencies.Extinction = utils.SumSlice(extinction) / area
		result.Efficiencies.Scattering = utils.SumSlice(scattering) / area
		result.Efficiencies.Absorption = result.Efficiencies.Extinction - result.Efficiencies.Scattering
	}
	if result.Efficiencies.Extinction > 0 {
		result.Efficiencies.Albedo = result.Efficiencies.Scattering / result.Efficiencies.Extinction
	}

	var curveErr error
	result.Curve, curveErr = BuildCurve(m.Angles, result.F11, result.F21)
	result.Elapsed = time.Since(start)

	if len(result.Failures) > 0 {
		log.WithFields(logrus.Fields{
			"cells": len(result.Failures),
			"sizes": result.FailedSizes,
		}).Warn("cells skipped after numerical failures")
	}
	log.WithField("elapsed", result.Elapsed).Debug("averaging done")
	return result, curveErr
}

func (m *Model) accumulate(ctx context.Context, from, to int, p *partialSums) error {
	n := m.Angles.Len()
	p.f11 = make([]float64, n)
	p.f21 = make([]float64, n)
	ratio := m.Parameters.RefractiveIndexRatio()
	var scratch mie.Angular
	for i := from; i < to; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		radius := m.Distribution.Radii[i]
		weight := m.Distribution.NormalizedWeight(i)
		series, err := m.Engine.Coefficients(m.SizeParameter(radius), ratio)
		if err != nil {
			for j := range n {
				p.failures = append(p.failures, CellFailure{Size: i, Angle: j, Radius: radius, AngleDeg: m.Angles.Degree(j), Err: err})
			}
			p.failedSizes++
			continue
		}
		qext, qsca := series.Efficiencies()
		area := math.Pi * radius * radius * weight
		p.extinction += qext * area
		p.scattering += qsca * area
		p.area += area

		for j := range n {
			s1, s2, err := series.Amplitudes(m.Angles.Cos(j), &scratch)
			if err != nil {
				p.failures = append(p.failures, CellFailure{Size: i, Angle: j, Radius: radius, AngleDeg: m.Angles.Degree(j), Err: err})
				continue
			}
			i1, i2 := mie.SquaredNorm(s1), mie.SquaredNorm(s2)
			p.f11[j] += (i1 + i2) * weight
			p.f21[j] += (i1 - i2) * weight
		}
	}
	return nil
}
