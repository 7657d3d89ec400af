// Package nurbs evaluates rational B-spline trajectories and publishes
// setpoints along them.
package nurbs

import (
	"errors"
	"math"
)

// MaxDegree bounds the evaluation scratch space.
const MaxDegree = 5

// Point is a position in the plane.
type Point struct {
	X, Y float64
}

// Curve is a NURBS curve of fixed degree.
type Curve struct {
	degree  int
	knots   []float64
	ctrl    []Point
	weights []float64
}

// NewCurve validates a curve definition. The knot vector must be
// non-decreasing with len(ctrl)+degree+1 entries and every weight positive.
func NewCurve(degree int, knots []float64, ctrl []Point, weights []float64) (*Curve, error) {
	switch {
	case degree < 1 || degree > MaxDegree:
		return nil, errors.New("nurbs: degree out of range")
	case len(ctrl) <= degree:
		return nil, errors.New("nurbs: not enough control points")
	case len(weights) != len(ctrl):
		return nil, errors.New("nurbs: weights and control points differ in length")
	case len(knots) != len(ctrl)+degree+1:
		return nil, errors.New("nurbs: knot vector length must be points+degree+1")
	}
	for i := 1; i < len(knots); i++ {
		if knots[i] < knots[i-1] {
			return nil, errors.New("nurbs: knot vector decreases")
		}
	}
	for _, w := range weights {
		if !(w > 0) {
			return nil, errors.New("nurbs: weights must be positive")
		}
	}
	return &Curve{degree: degree, knots: knots, ctrl: ctrl, weights: weights}, nil
}

// Domain returns the valid parameter range.
func (c *Curve) Domain() (lo, hi float64) {
	return c.knots[c.degree], c.knots[len(c.ctrl)]
}

// span returns k with knots[k] <= u < knots[k+1], clamped to the domain.
func (c *Curve) span(u float64) int {
	n := len(c.ctrl) - 1
	if u >= c.knots[n+1] {
		return n
	}
	lo, hi := c.degree, n+1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if u < c.knots[mid] {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo
}

// Eval returns the curve point at u by de Boor's algorithm in homogeneous
// coordinates. u is clamped to the domain. Eval does not allocate.
func (c *Curve) Eval(u float64) Point {
	lo, hi := c.Domain()
	u = math.Max(lo, math.Min(hi, u))
	k := c.span(u)
	p := c.degree

	var d [MaxDegree + 1][3]float64
	for j := 0; j <= p; j++ {
		i := j + k - p
		w := c.weights[i]
		d[j] = [3]float64{c.ctrl[i].X * w, c.ctrl[i].Y * w, w}
	}
	for r := 1; r <= p; r++ {
		for j := p; j >= r; j-- {
			i := j + k - p
			den := c.knots[i+p-r+1] - c.knots[i]
			var a float64
			if den != 0 {
				a = (u - c.knots[i]) / den
			}
			for m := 0; m < 3; m++ {
				d[j][m] = (1-a)*d[j-1][m] + a*d[j][m]
			}
		}
	}
	return Point{X: d[p][0] / d[p][2], Y: d[p][1] / d[p][2]}
}

// Circle returns an exact circle of radius r around the origin as a closed
// quadratic NURBS over [0, 1].
func Circle(r float64) *Curve {
	h := math.Sqrt2 / 2
	ctrl := []Point{
		{r, 0}, {r, r}, {0, r}, {-r, r}, {-r, 0}, {-r, -r}, {0, -r}, {r, -r}, {r, 0},
	}
	weights := []float64{1, h, 1, h, 1, h, 1, h, 1}
	knots := []float64{0, 0, 0, 0.25, 0.25, 0.5, 0.5, 0.75, 0.75, 1, 1, 1}
	c, err := NewCurve(2, knots, ctrl, weights)
	if err != nil {
		panic(err)
	}
	return c
}
