// Package kernel defines the abstract geometry kernel interface.
// Implementations provide parametric curve evaluation, splitting, joining
// and plane intersection behind this interface. The toolpath code is
// written against this contract only, so backends can be swapped without
// changing the rest of the system.
package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Interval is a closed parameter domain [T0, T1].
type Interval struct {
	T0 float64
	T1 float64
}

// Length returns T1 - T0.
func (d Interval) Length() float64 {
	return d.T1 - d.T0
}

// Includes reports whether t lies in the domain, allowing tol slack at both ends.
func (d Interval) Includes(t, tol float64) bool {
	return t >= d.T0-tol && t <= d.T1+tol
}

// ParameterAt maps a normalized value in [0,1] onto the domain.
func (d Interval) ParameterAt(normalized float64) float64 {
	return d.T0 + normalized*(d.T1-d.T0)
}

// NormalizedParameterAt maps t onto [0,1]. A zero-length domain maps to 0.
func (d Interval) NormalizedParameterAt(t float64) float64 {
	if d.T1 == d.T0 {
		return 0
	}
	return (t - d.T0) / (d.T1 - d.T0)
}

// Plane is an infinite plane through Origin with unit Normal.
type Plane struct {
	Origin v3.Vec
	Normal v3.Vec
}

// WorldXY is the XY plane through the world origin.
var WorldXY = Plane{Normal: v3.Vec{Z: 1}}

// SignedDistance returns the distance of p above (positive) or below the plane.
func (p Plane) SignedDistance(q v3.Vec) float64 {
	n := p.Normal
	l := n.Length()
	if l == 0 {
		return 0
	}
	return q.Sub(p.Origin).Dot(n) / l
}

// Curve is an immutable parametric curve. Every method that produces a
// curve returns a new instance; the receiver is never modified, so
// distinct curves may be used from different goroutines.
type Curve interface {
	Domain() Interval
	IsClosed() bool
	Length() float64

	// Evaluation
	PointAt(t float64) v3.Vec
	PointAtStart() v3.Vec
	PointAtEnd() v3.Vec
	TangentAt(t float64) v3.Vec   // unit tangent
	CurvatureAt(t float64) v3.Vec // curvature vector, magnitude 1/radius

	// Arc-length parametrization
	ClosestParameter(p v3.Vec) float64
	LengthAt(t float64) float64
	ParameterAtLength(s float64) float64 // s is clamped to [0, Length]

	// Editing; all return new curves
	Split(t float64) (Curve, Curve, error)
	Trim(t0, t1 float64) (Curve, error)
	Segments() []Curve // pieces between C1 discontinuities
	SetDomain(d Interval) Curve
	Reverse() Curve // domain is preserved
	Transform(m sdf.M44) Curve
	ChangeSeam(t float64) (Curve, error) // closed curves only; domain restarts at 0

	// Intersections, in curve order
	IntersectPlane(p Plane) []float64

	// Points returns the curve's control polygon.
	Points() []v3.Vec
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Construction
	Line(a, b v3.Vec) Curve
	PolylineCurve(points []v3.Vec) (Curve, error)
	Circle(center v3.Vec, radius float64, segments int) Curve
	// Arc returns a circular arc starting at start, tangent to tangent,
	// ending at end.
	Arc(start, tangent, end v3.Vec) (Curve, error)
	// Interpolate returns a smooth curve through points. A zero tangent
	// leaves that end free.
	Interpolate(points []v3.Vec, startTangent, endTangent v3.Vec) (Curve, error)

	// Join connects curves end to start within the kernel tolerance and
	// returns one curve per contiguous run.
	Join(curves []Curve) []Curve

	// ClosestPoints returns the parameters of the closest point pair between a and b.
	ClosestPoints(a, b Curve) (ta, tb, dist float64)

	// Tolerance is the distance below which two points are treated as equal.
	Tolerance() float64

	// Preview output
	ToPolyline(c Curve) (*Polyline, error)
}
