package services

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/interp"
)

// Parameter values of start, control and end on the fitted curve.
var curveKnots = []float64{0, 0.5, 1}

// ControlPoint returns the arc apex for a flow between a and b. The
// vertical term is divided by divisor rather than 2, which lifts the apex
// off the chord.
func ControlPoint(a, b orb.Point, divisor float64) orb.Point {
	return orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / divisor}
}

// CurveBetween fits a natural cubic spline through a, the control point
// and b, and samples it into a line string of n points. The first and last
// points are exactly a and b.
func CurveBetween(a, b orb.Point, divisor float64, n int) (orb.LineString, error) {
	if divisor == 0 {
		return nil, errors.New("curve between: divisor must be non-zero")
	}
	if n < 2 {
		return nil, fmt.Errorf("curve between: need at least 2 samples, got %d", n)
	}
	if a.Equal(b) {
		return nil, errors.New("curve between: coincident endpoints")
	}

	c := ControlPoint(a, b, divisor)

	var fx, fy interp.NaturalCubic
	if err := fx.Fit(curveKnots, []float64{a[0], c[0], b[0]}); err != nil {
		return nil, fmt.Errorf("curve between: fit x: %w", err)
	}
	if err := fy.Fit(curveKnots, []float64{a[1], c[1], b[1]}); err != nil {
		return nil, fmt.Errorf("curve between: fit y: %w", err)
	}

	line := make(orb.LineString, n)
	for i := range line {
		t := float64(i) / float64(n-1)
		line[i] = orb.Point{fx.Predict(t), fy.Predict(t)}
	}
	line[0] = a
	line[n-1] = b

	return line, nil
}
