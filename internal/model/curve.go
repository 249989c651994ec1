package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/interp"

	"github.com/wildstyl3r/polmie/internal/angles"
	"github.com/wildstyl3r/polmie/internal/constants"
	"github.com/wildstyl3r/polmie/internal/utils"
)

var ErrZeroIntensity = errors.New("zero scattered intensity")

// ZeroIntensityError marks an angle where F11 vanished and the degree of
// polarization is undefined.
type ZeroIntensityError struct {
	AngleDeg float64
}

func (e *ZeroIntensityError) Error() string {
	return fmt.Sprintf("%v at %v°", ErrZeroIntensity, e.AngleDeg)
}

func (e *ZeroIntensityError) Unwrap() error {
	return ErrZeroIntensity
}

// Curve is the degree of linear polarization P = 100·F21/F11 [%] per angle.
type Curve struct {
	Degrees      []float64
	Polarization []float64
}

// BuildCurve divides F21 by F11 angle by angle. Angles with F11 == 0 get NaN
// and a ZeroIntensityError; the errors are joined and returned with the full curve.
func BuildCurve(grid angles.Grid, f11, f21 []float64) (Curve, error) {
	if len(f11) != grid.Len() || len(f21) != grid.Len() {
		return Curve{}, fmt.Errorf("curve needs %d intensities, got F11 %d and F21 %d", grid.Len(), len(f11), len(f21))
	}
	c := Curve{
		Degrees:      grid.Degrees(),
		Polarization: make([]float64, grid.Len()),
	}
	var zeros []error
	for i := range f11 {
		if f11[i] == 0 {
			c.Polarization[i] = math.NaN()
			zeros = append(zeros, &ZeroIntensityError{AngleDeg: c.Degrees[i]})
			continue
		}
		c.Polarization[i] = constants.Percent * f21[i] / f11[i]
	}
	return c, errors.Join(zeros...)
}

func (c Curve) Len() int {
	return len(c.Degrees)
}

// valid drops the NaN samples.
func (c Curve) valid() (degrees, polarization []float64) {
	for i := range c.Polarization {
		if !math.IsNaN(c.Polarization[i]) {
			degrees = append(degrees, c.Degrees[i])
			polarization = append(polarization, c.Polarization[i])
		}
	}
	return
}

type Extremum struct {
	AngleDeg     float64
	Polarization float64
}

type Summary struct {
	Mean   float64
	StdDev float64
	Median float64
	Valid  int
}

type Diagnostics struct {
	Maximum       Extremum
	Minimum       Extremum
	NeutralPoints []float64 // [deg], where P changes sign
	Summary       Summary
}

const refineEps = 1e-6 // [deg]

// Diagnose locates the extrema and neutral points of the curve between
// samples using an Akima spline through the valid points.
func (c Curve) Diagnose() (Diagnostics, error) {
	degrees, polarization := c.valid()
	if len(degrees) == 0 {
		return Diagnostics{}, fmt.Errorf("%w: no valid polarization samples", ErrZeroIntensity)
	}

	predict := func(float64) float64 {
		return polarization[0]
	}
	if len(degrees) >= 3 {
		var spline interp.AkimaSpline
		if err := spline.Fit(degrees, polarization); err != nil {
			return Diagnostics{}, fmt.Errorf("fitting polarization curve: %w", err)
		}
		predict = spline.Predict
	} else if len(degrees) == 2 {
		var line interp.PiecewiseLinear
		if err := line.Fit(degrees, polarization); err != nil {
			return Diagnostics{}, fmt.Errorf("fitting polarization curve: %w", err)
		}
		predict = line.Predict
	}

	var d Diagnostics
	refine := func(i int, search func(func(float64) float64, float64, float64, float64) float64) Extremum {
		left, right := degrees[max(i-1, 0)], degrees[min(i+1, len(degrees)-1)]
		angle := search(predict, left, right, refineEps)
		return Extremum{AngleDeg: angle, Polarization: predict(angle)}
	}
	d.Maximum = refine(utils.Argmax(polarization), utils.TernarySearchMax)
	d.Minimum = refine(utils.Argmin(polarization), utils.TernarySearchMin)
	d.NeutralPoints = neutralPoints(degrees, polarization, predict)

	data := stats.Float64Data(polarization)
	var err error
	d.Summary.Valid = data.Len()
	if d.Summary.Mean, err = data.Mean(); err != nil {
		return d, err
	}
	if d.Summary.StdDev, err = data.StandardDeviation(); err != nil {
		return d, err
	}
	if d.Summary.Median, err = data.Median(); err != nil {
		return d, err
	}
	return d, nil
}

// neutralPoints brackets every sign change between consecutive samples that
// are clearly non-zero and bisects the interpolant inside the bracket.
func neutralPoints(degrees, polarization []float64, predict func(float64) float64) (points []float64) {
	previous := -1
	for i := range polarization {
		if math.Abs(polarization[i]) <= constants.NeutralPointTolerance {
			continue
		}
		if previous >= 0 && math.Signbit(polarization[previous]) != math.Signbit(polarization[i]) {
			negativeAfter := math.Signbit(polarization[i])
			falseDom, trueDom := utils.BinarySearch(func(x float64) bool {
				return math.Signbit(predict(x)) == negativeAfter
			}, degrees[previous], degrees[i], refineEps)
			points = append(points, (falseDom+trueDom)*0.5)
		}
		previous = i
	}
	return
}
