// Package polycurve implements the kernel.Kernel interface with dense
// polyline curves over github.com/deadsy/sdfx vectors. Curves are
// parametrized proportionally to arc length; smooth constructions such as
// arcs and interpolated curves are sampled finely enough that curvature
// is recovered from vertex circumcircles.
package polycurve

import (
	"fmt"
	"math"
	"slices"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

const (
	// DefaultTolerance is the join and closure tolerance.
	DefaultTolerance = 1e-3
	// DefaultKinkAngle is the turning angle in degrees above which a
	// polyline vertex becomes a segment boundary.
	DefaultKinkAngle = 10.0
	// DefaultArcSegments is the number of segments per full turn.
	DefaultArcSegments = 360
	// DefaultSpanSamples is the number of samples per interpolation span.
	DefaultSpanSamples = 24
)

// Kernel implements kernel.Kernel with polyline curves.
type Kernel struct {
	tolerance   float64
	kinkAngle   float64 // radians
	arcSegments int
	spanSamples int
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithTolerance sets the join and closure tolerance.
func WithTolerance(tol float64) Option {
	return func(k *Kernel) {
		if tol > 0 {
			k.tolerance = tol
		}
	}
}

// WithKinkAngle sets the kink angle in degrees.
func WithKinkAngle(deg float64) Option {
	return func(k *Kernel) {
		if deg > 0 {
			k.kinkAngle = deg * math.Pi / 180
		}
	}
}

// WithArcSegments sets the number of segments used for a full circle.
func WithArcSegments(n int) Option {
	return func(k *Kernel) {
		if n >= 8 {
			k.arcSegments = n
		}
	}
}

// WithSpanSamples sets the number of samples between two interpolation points.
func WithSpanSamples(n int) Option {
	return func(k *Kernel) {
		if n >= 2 {
			k.spanSamples = n
		}
	}
}

// New returns a new Kernel.
func New(opts ...Option) *Kernel {
	k := &Kernel{
		tolerance:   DefaultTolerance,
		kinkAngle:   DefaultKinkAngle * math.Pi / 180,
		arcSegments: DefaultArcSegments,
		spanSamples: DefaultSpanSamples,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Tolerance returns the join and closure tolerance.
func (k *Kernel) Tolerance() float64 {
	return k.tolerance
}

// unwrap extracts the polyline curve behind a kernel.Curve. Curves from
// other kernels are rebuilt from their points.
func (k *Kernel) unwrap(c kernel.Curve) *curve {
	if pc, ok := c.(*curve); ok {
		return pc
	}
	pts := c.Points()
	return newCurve(pts, k.kinks(pts, c.IsClosed()), c.IsClosed()).withDomain(c.Domain())
}

// kinks flags vertices whose turning angle exceeds the kink angle.
func (k *Kernel) kinks(pts []v3.Vec, closed bool) []bool {
	n := len(pts)
	br := make([]bool, n)
	for i := 1; i < n-1; i++ {
		br[i] = angleBetween(pts[i].Sub(pts[i-1]), pts[i+1].Sub(pts[i])) > k.kinkAngle
	}
	if closed && n >= 4 {
		b := angleBetween(pts[n-1].Sub(pts[n-2]), pts[1].Sub(pts[0])) > k.kinkAngle
		br[0], br[n-1] = b, b
	}
	return br
}

// isClosing reports whether pts return to their start within tolerance.
func (k *Kernel) isClosing(pts []v3.Vec) bool {
	return len(pts) >= 4 && dist(pts[0], pts[len(pts)-1]) <= k.tolerance
}

// Line returns the straight segment from a to b.
func (k *Kernel) Line(a, b v3.Vec) kernel.Curve {
	return newCurve([]v3.Vec{a, b}, nil, false)
}

// PolylineCurve returns a polyline through points. It is closed when the
// last point returns to the first within tolerance.
func (k *Kernel) PolylineCurve(points []v3.Vec) (kernel.Curve, error) {
	pts, _ := dedupe(points, nil)
	if len(pts) < 2 {
		return nil, fmt.Errorf("polycurve: polyline needs at least 2 distinct points, got %d: %w", len(pts), kernel.ErrArgument)
	}
	closed := k.isClosing(pts)
	if closed {
		pts[len(pts)-1] = pts[0]
	}
	return newCurve(pts, k.kinks(pts, closed), closed), nil
}

// Circle returns a closed circle in the plane parallel to XY, starting at
// angle 0 and running counterclockwise. segments < 3 selects the kernel default.
func (k *Kernel) Circle(center v3.Vec, radius float64, segments int) kernel.Curve {
	if segments < 3 {
		segments = k.arcSegments
	}
	pts := make([]v3.Vec, segments+1)
	for i := range segments {
		a := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = center.Add(v3.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)})
	}
	pts[segments] = pts[0]
	return newCurve(pts, make([]bool, len(pts)), true)
}

// Arc returns the circular arc leaving start along tangent and ending at
// end. A tangent pointing straight at end degenerates to a line.
func (k *Kernel) Arc(start, tangent, end v3.Vec) (kernel.Curve, error) {
	chord := end.Sub(start)
	if chord.Length() <= k.tolerance {
		return nil, fmt.Errorf("polycurve: arc endpoints coincide: %w", kernel.ErrArgument)
	}
	t := unit(tangent)
	if t.Length() == 0 {
		return nil, fmt.Errorf("polycurve: arc tangent is zero: %w", kernel.ErrArgument)
	}
	n := t.Cross(chord)
	if n.Length() <= 1e-9*chord.Length() {
		if t.Dot(chord) > 0 {
			return k.Line(start, end), nil
		}
		return nil, fmt.Errorf("polycurve: arc tangent points away from end: %w", kernel.ErrInvalidGeometry)
	}
	axis := unit(n)
	u := unit(axis.Cross(t)) // in-plane, towards end
	r := chord.Dot(chord) / (2 * chord.Dot(u))
	center := start.Add(u.MulScalar(r))
	a := start.Sub(center)
	b := end.Sub(center)
	perp := axis.Cross(a)
	sweep := math.Atan2(a.Cross(b).Dot(axis), a.Dot(b))
	if sweep < 0 {
		sweep += 2 * math.Pi
	}
	segs := max(4, int(math.Ceil(sweep/(2*math.Pi)*float64(k.arcSegments))))
	pts := make([]v3.Vec, segs+1)
	pts[0] = start
	for i := 1; i < segs; i++ {
		phi := sweep * float64(i) / float64(segs)
		pts[i] = center.Add(a.MulScalar(math.Cos(phi))).Add(perp.MulScalar(math.Sin(phi)))
	}
	pts[segs] = end
	return newCurve(pts, make([]bool, len(pts)), false), nil
}

// Interpolate returns a cubic Hermite curve through points. Interior
// tangents average the adjacent chord directions. A zero end tangent
// follows the adjacent chord; a curve returning to its start without end
// tangents is interpolated periodically and closed.
func (k *Kernel) Interpolate(points []v3.Vec, startTangent, endTangent v3.Vec) (kernel.Curve, error) {
	pts, _ := dedupe(points, nil)
	n := len(pts)
	if n < 2 {
		return nil, fmt.Errorf("polycurve: interpolation needs at least 2 distinct points, got %d: %w", n, kernel.ErrArgument)
	}
	st, et := unit(startTangent), unit(endTangent)
	closed := k.isClosing(pts) && st.Length() == 0 && et.Length() == 0
	if closed {
		pts[n-1] = pts[0]
	}

	dirs := make([]v3.Vec, n-1)
	lens := make([]float64, n-1)
	for i := range n - 1 {
		d := pts[i+1].Sub(pts[i])
		lens[i] = d.Length()
		dirs[i] = unit(d)
	}
	tans := make([]v3.Vec, n)
	for i := 1; i < n-1; i++ {
		tans[i] = unit(dirs[i-1].Add(dirs[i]))
		if tans[i].Length() == 0 {
			tans[i] = dirs[i]
		}
	}
	switch {
	case closed:
		t := unit(dirs[n-2].Add(dirs[0]))
		if t.Length() == 0 {
			t = dirs[0]
		}
		tans[0], tans[n-1] = t, t
	default:
		tans[0], tans[n-1] = dirs[0], dirs[n-2]
		if st.Length() != 0 {
			tans[0] = st
		}
		if et.Length() != 0 {
			tans[n-1] = et
		}
	}

	out := make([]v3.Vec, 0, (n-1)*k.spanSamples+1)
	out = append(out, pts[0])
	for i := range n - 1 {
		p0, p1 := pts[i], pts[i+1]
		m0 := tans[i].MulScalar(lens[i])
		m1 := tans[i+1].MulScalar(lens[i])
		for j := 1; j <= k.spanSamples; j++ {
			u := float64(j) / float64(k.spanSamples)
			u2, u3 := u*u, u*u*u
			h00 := 2*u3 - 3*u2 + 1
			h10 := u3 - 2*u2 + u
			h01 := -2*u3 + 3*u2
			h11 := u3 - u2
			p := p0.MulScalar(h00).Add(m0.MulScalar(h10)).Add(p1.MulScalar(h01)).Add(m1.MulScalar(h11))
			out = append(out, p)
		}
		out[len(out)-1] = p1
	}
	return newCurve(out, make([]bool, len(out)), closed), nil
}

// Join connects curves in order. A curve whose end, rather than its
// start, meets the running end is reversed. Every junction becomes a
// segment boundary. A run returning to its start is closed.
func (k *Kernel) Join(curves []kernel.Curve) []kernel.Curve {
	var out []kernel.Curve
	var pts []v3.Vec
	var br []bool
	flush := func() {
		if len(pts) == 0 {
			return
		}
		closed := k.isClosing(pts)
		if closed {
			br[0], br[len(br)-1] = true, true
		}
		out = append(out, newCurve(pts, br, closed))
		pts, br = nil, nil
	}
	for _, c := range curves {
		if c == nil {
			continue
		}
		pc := k.unwrap(c)
		if len(pts) > 0 {
			last := pts[len(pts)-1]
			switch {
			case dist(last, pc.PointAtStart()) <= k.tolerance:
			case dist(last, pc.PointAtEnd()) <= k.tolerance:
				pc = pc.Reverse().(*curve)
			default:
				flush()
			}
		}
		if len(pts) == 0 {
			pts = slices.Clone(pc.pts)
			br = slices.Clone(pc.breaks)
			continue
		}
		br[len(br)-1] = true
		pts = append(pts, pc.pts[1:]...)
		br = append(br, pc.breaks[1:]...)
	}
	flush()
	return out
}

// ClosestPoints compares every vertex of each curve against the other
// curve and returns the nearest pair.
func (k *Kernel) ClosestPoints(a, b kernel.Curve) (ta, tb, d float64) {
	d = math.Inf(1)
	for _, p := range a.Points() {
		t := b.ClosestParameter(p)
		if dd := dist(p, b.PointAt(t)); dd < d {
			d = dd
			ta, tb = a.ClosestParameter(p), t
		}
	}
	for _, p := range b.Points() {
		t := a.ClosestParameter(p)
		if dd := dist(p, a.PointAt(t)); dd < d {
			d = dd
			ta, tb = t, b.ClosestParameter(p)
		}
	}
	return ta, tb, d
}

// ToPolyline flattens a curve for display.
func (k *Kernel) ToPolyline(c kernel.Curve) (*kernel.Polyline, error) {
	if c == nil {
		return nil, fmt.Errorf("polycurve: nil curve: %w", kernel.ErrArgument)
	}
	return kernel.NewPolyline(c.Points(), c.IsClosed()), nil
}
