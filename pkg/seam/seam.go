// Package seam relocates the start point of closed contours.
//
// Every operation needs a closed curve and fails with
// kernel.ErrInvalidGeometry otherwise. The returned curve has the same
// shape and length as the input, starts at the new seam and has its
// domain reset to start at 0.
package seam

import (
	"fmt"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func requireClosed(op string, c kernel.Curve) error {
	if c == nil {
		return fmt.Errorf("seam: %s: nil curve: %w", op, kernel.ErrArgument)
	}
	if !c.IsClosed() {
		return fmt.Errorf("seam: %s: curve is open: %w", op, kernel.ErrInvalidGeometry)
	}
	return nil
}

func reseat(op string, c kernel.Curve, t float64) (kernel.Curve, error) {
	r, err := c.ChangeSeam(t)
	if err != nil {
		return nil, fmt.Errorf("seam: %s: %w", op, err)
	}
	return r, nil
}

// AtParam moves the seam to parameter t. With reparametrize the domain
// is first normalized to [0, 1] and t is read in that domain.
func AtParam(c kernel.Curve, t float64, reparametrize bool) (kernel.Curve, error) {
	if err := requireClosed("at param", c); err != nil {
		return nil, err
	}
	if reparametrize {
		c = c.SetDomain(kernel.Interval{T0: 0, T1: 1})
	}
	d := c.Domain()
	if t < d.T0 || t > d.T1 {
		return nil, fmt.Errorf("seam: at param %g outside domain [%g, %g]: %w", t, d.T0, d.T1, kernel.ErrRange)
	}
	return reseat("at param", c, t)
}

// AtLength moves the seam to arc length s from the current start. With
// normalized, s is a fraction of the curve length.
func AtLength(c kernel.Curve, s float64, normalized bool) (kernel.Curve, error) {
	if err := requireClosed("at length", c); err != nil {
		return nil, err
	}
	l := c.Length()
	limit := l
	if normalized {
		limit = 1
	}
	if s < 0 || s > limit {
		return nil, fmt.Errorf("seam: at length %g outside [0, %g]: %w", s, limit, kernel.ErrRange)
	}
	if normalized {
		s *= l
	}
	return reseat("at length", c, c.ParameterAtLength(s))
}

// AtClosestPoint moves the seam to the point of c nearest p.
func AtClosestPoint(c kernel.Curve, p v3.Vec) (kernel.Curve, error) {
	if err := requireClosed("at closest point", c); err != nil {
		return nil, err
	}
	return reseat("at closest point", c, c.ClosestParameter(p))
}

// ClosestToCurve moves the seam to the point of c nearest guide.
func ClosestToCurve(k kernel.Kernel, c, guide kernel.Curve) (kernel.Curve, error) {
	if err := requireClosed("closest to curve", c); err != nil {
		return nil, err
	}
	if guide == nil {
		return nil, fmt.Errorf("seam: closest to curve: nil guide: %w", kernel.ErrArgument)
	}
	t, _, _ := k.ClosestPoints(c, guide)
	return reseat("closest to curve", c, t)
}

// AtClosestPlaneIntersection moves the seam to the intersection of c and
// pl nearest the plane origin. The first intersection wins on exact ties.
func AtClosestPlaneIntersection(c kernel.Curve, pl kernel.Plane) (kernel.Curve, error) {
	if err := requireClosed("at plane intersection", c); err != nil {
		return nil, err
	}
	ts := c.IntersectPlane(pl)
	if len(ts) == 0 {
		return nil, fmt.Errorf("seam: at plane intersection: %w", kernel.ErrNoIntersection)
	}
	best := ts[0]
	bestDist := c.PointAt(best).Sub(pl.Origin).Length()
	for _, t := range ts[1:] {
		if d := c.PointAt(t).Sub(pl.Origin).Length(); d < bestDist {
			best, bestDist = t, d
		}
	}
	return reseat("at plane intersection", c, best)
}
