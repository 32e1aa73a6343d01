package polycurve

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Curve = (*curve)(nil)

// curve is a dense polyline whose parameter is proportional to arc length.
// breaks marks vertices where the curve is not C1 continuous; they
// delimit Segments. A closed curve repeats its first vertex at the end.
type curve struct {
	pts    []v3.Vec
	breaks []bool
	cum    []float64 // arc length at each vertex
	dom    kernel.Interval
	closed bool

	tans  []v3.Vec // vertex tangents, valid at smooth vertices
	kappa []v3.Vec // vertex curvature vectors, valid at smooth vertices
}

// newCurve builds a curve over pts with domain [0, length].
func newCurve(pts []v3.Vec, breaks []bool, closed bool) *curve {
	pts, breaks = dedupe(pts, breaks)
	n := len(pts)
	if n < 4 {
		closed = false
	}
	if closed {
		pts[n-1] = pts[0]
		b := breaks[0] || breaks[n-1]
		breaks[0], breaks[n-1] = b, b
	}
	c := &curve{pts: pts, breaks: breaks, closed: closed}
	c.cum = make([]float64, n)
	for i := 1; i < n; i++ {
		c.cum[i] = c.cum[i-1] + dist(pts[i-1], pts[i])
	}
	c.dom = kernel.Interval{T0: 0, T1: c.Length()}
	c.vertexData()
	return c
}

func (c *curve) vertexData() {
	n := len(c.pts)
	c.tans = make([]v3.Vec, n)
	c.kappa = make([]v3.Vec, n)
	if n < 3 {
		return
	}
	for i := range c.pts {
		if !c.smooth(i) {
			continue
		}
		p, q := i-1, i+1
		if i == 0 || i == n-1 {
			p, q = n-2, 1
		}
		in := unit(c.pts[i].Sub(c.pts[p]))
		out := unit(c.pts[q].Sub(c.pts[i]))
		t := unit(in.Add(out))
		if t.Length() == 0 {
			t = out
		}
		c.tans[i] = t
		c.kappa[i] = circumCurvature(c.pts[p], c.pts[i], c.pts[q])
	}
}

// smooth reports whether vertex i has two-sided tangent and curvature data.
func (c *curve) smooth(i int) bool {
	if c.breaks[i] {
		return false
	}
	if i == 0 || i == len(c.pts)-1 {
		return c.closed
	}
	return true
}

func (c *curve) withDomain(d kernel.Interval) *curve {
	r := *c
	r.dom = d
	return &r
}

func (c *curve) Domain() kernel.Interval { return c.dom }
func (c *curve) IsClosed() bool          { return c.closed }
func (c *curve) Length() float64         { return c.cum[len(c.cum)-1] }
func (c *curve) PointAtStart() v3.Vec    { return c.pts[0] }
func (c *curve) PointAtEnd() v3.Vec      { return c.pts[len(c.pts)-1] }

// Points returns a copy of the vertices.
func (c *curve) Points() []v3.Vec {
	return slices.Clone(c.pts)
}

// LengthAt returns the arc length from the domain start to t.
func (c *curve) LengthAt(t float64) float64 {
	span := c.dom.Length()
	if span == 0 {
		return 0
	}
	s := (t - c.dom.T0) / span * c.Length()
	return math.Max(0, math.Min(s, c.Length()))
}

// ParameterAtLength returns the parameter at arc length s.
func (c *curve) ParameterAtLength(s float64) float64 {
	l := c.Length()
	if l == 0 {
		return c.dom.T0
	}
	s = math.Max(0, math.Min(s, l))
	return c.dom.T0 + s/l*c.dom.Length()
}

// locate returns the segment containing arc length s and the local
// fraction within it. A vertex belongs to the segment that starts there.
func (c *curve) locate(s float64) (int, float64) {
	n := len(c.pts)
	if n < 2 {
		return 0, 0
	}
	s = math.Max(0, math.Min(s, c.Length()))
	j := sort.Search(n-1, func(i int) bool { return c.cum[i+1] > s })
	if j >= n-1 {
		return n - 2, 1
	}
	seg := c.cum[j+1] - c.cum[j]
	if seg == 0 {
		return j, 0
	}
	return j, (s - c.cum[j]) / seg
}

func (c *curve) pointAtLength(s float64) v3.Vec {
	if len(c.pts) == 1 {
		return c.pts[0]
	}
	j, u := c.locate(s)
	return lerp(c.pts[j], c.pts[j+1], u)
}

func (c *curve) PointAt(t float64) v3.Vec {
	return c.pointAtLength(c.LengthAt(t))
}

func (c *curve) TangentAt(t float64) v3.Vec {
	if len(c.pts) < 2 {
		return v3.Vec{}
	}
	j, u := c.locate(c.LengthAt(t))
	d := unit(c.pts[j+1].Sub(c.pts[j]))
	ts, te := d, d
	if c.smooth(j) {
		ts = c.tans[j]
	}
	if c.smooth(j + 1) {
		te = c.tans[j+1]
	}
	v := unit(lerp(ts, te, u))
	if v.Length() == 0 {
		return d
	}
	return v
}

// CurvatureAt interpolates vertex curvature along the segment. Ends of a
// segment without two-sided data borrow the value of the other end.
func (c *curve) CurvatureAt(t float64) v3.Vec {
	if len(c.pts) < 3 {
		return v3.Vec{}
	}
	j, u := c.locate(c.LengthAt(t))
	a, b := c.smooth(j), c.smooth(j+1)
	switch {
	case a && b:
		return lerp(c.kappa[j], c.kappa[j+1], u)
	case a:
		return c.kappa[j]
	case b:
		return c.kappa[j+1]
	}
	return v3.Vec{}
}

// ClosestParameter returns the parameter of the point nearest to p. Ties
// resolve to the lowest parameter.
func (c *curve) ClosestParameter(p v3.Vec) float64 {
	if len(c.pts) == 1 {
		return c.dom.T0
	}
	best := math.Inf(1)
	var bs float64
	for j := 0; j < len(c.pts)-1; j++ {
		a, b := c.pts[j], c.pts[j+1]
		d := b.Sub(a)
		u := 0.0
		if l2 := d.Dot(d); l2 > 0 {
			u = math.Max(0, math.Min(1, p.Sub(a).Dot(d)/l2))
		}
		if dd := dist(p, lerp(a, b, u)); dd < best {
			best = dd
			bs = c.cum[j] + u*(c.cum[j+1]-c.cum[j])
		}
	}
	return c.ParameterAtLength(bs)
}

func (c *curve) paramTol() float64 {
	return 1e-12 * math.Max(1, math.Abs(c.dom.Length()))
}

// vertexBreakAt reports the break flag of a vertex lying at arc length s.
func (c *curve) vertexBreakAt(s float64) bool {
	for i, cs := range c.cum {
		if math.Abs(cs-s) <= eps {
			return c.breaks[i]
		}
	}
	return false
}

// sub returns the open piece between arc lengths s0 < s1 with domain [0, s1-s0].
func (c *curve) sub(s0, s1 float64) *curve {
	pts := []v3.Vec{c.pointAtLength(s0)}
	br := []bool{false}
	for i := 1; i < len(c.pts)-1; i++ {
		if c.cum[i] > s0+eps && c.cum[i] < s1-eps {
			pts = append(pts, c.pts[i])
			br = append(br, c.breaks[i])
		}
	}
	pts = append(pts, c.pointAtLength(s1))
	br = append(br, false)
	return newCurve(pts, br, false)
}

func (c *curve) Split(t float64) (kernel.Curve, kernel.Curve, error) {
	d := c.dom
	tol := c.paramTol()
	if !(t > d.T0+tol && t < d.T1-tol) {
		return nil, nil, fmt.Errorf("polycurve: split at %g outside open domain [%g, %g]: %w", t, d.T0, d.T1, kernel.ErrRange)
	}
	s := c.LengthAt(t)
	a := c.sub(0, s).withDomain(kernel.Interval{T0: d.T0, T1: t})
	b := c.sub(s, c.Length()).withDomain(kernel.Interval{T0: t, T1: d.T1})
	return a, b, nil
}

func (c *curve) Trim(t0, t1 float64) (kernel.Curve, error) {
	tol := c.paramTol()
	if t1 <= t0 || !c.dom.Includes(t0, tol) || !c.dom.Includes(t1, tol) {
		return nil, fmt.Errorf("polycurve: trim [%g, %g] outside domain [%g, %g]: %w", t0, t1, c.dom.T0, c.dom.T1, kernel.ErrRange)
	}
	return c.sub(c.LengthAt(t0), c.LengthAt(t1)).withDomain(kernel.Interval{T0: t0, T1: t1}), nil
}

func (c *curve) Segments() []kernel.Curve {
	n := len(c.pts)
	if n < 2 {
		return []kernel.Curve{c}
	}
	var out []kernel.Curve
	start := 0
	for i := 1; i < n; i++ {
		if i != n-1 && !c.breaks[i] {
			continue
		}
		if start == 0 && i == n-1 {
			return []kernel.Curve{c}
		}
		pts := slices.Clone(c.pts[start : i+1])
		br := make([]bool, len(pts))
		piece := newCurve(pts, br, false)
		out = append(out, piece.withDomain(kernel.Interval{
			T0: c.ParameterAtLength(c.cum[start]),
			T1: c.ParameterAtLength(c.cum[i]),
		}))
		start = i
	}
	return out
}

func (c *curve) SetDomain(d kernel.Interval) kernel.Curve {
	if d.T1 <= d.T0 {
		return c.withDomain(c.dom)
	}
	return c.withDomain(d)
}

func (c *curve) Reverse() kernel.Curve {
	pts := slices.Clone(c.pts)
	br := slices.Clone(c.breaks)
	slices.Reverse(pts)
	slices.Reverse(br)
	return newCurve(pts, br, c.closed).withDomain(c.dom)
}

func (c *curve) Transform(m sdf.M44) kernel.Curve {
	pts := make([]v3.Vec, len(c.pts))
	for i, p := range c.pts {
		pts[i] = m.MulPosition(p)
	}
	return newCurve(pts, slices.Clone(c.breaks), c.closed).withDomain(c.dom)
}

// ChangeSeam moves the start of a closed curve to t. The shape is kept and
// the new domain is [0, span] of the old one.
func (c *curve) ChangeSeam(t float64) (kernel.Curve, error) {
	if !c.closed {
		return nil, fmt.Errorf("polycurve: change seam: curve is open: %w", kernel.ErrInvalidGeometry)
	}
	if !c.dom.Includes(t, c.paramTol()) {
		return nil, fmt.Errorf("polycurve: change seam at %g outside domain [%g, %g]: %w", t, c.dom.T0, c.dom.T1, kernel.ErrRange)
	}
	d := kernel.Interval{T0: 0, T1: c.dom.Length()}
	s := c.LengthAt(t)
	l := c.Length()
	if s <= eps || s >= l-eps {
		return c.withDomain(d), nil
	}
	head := c.sub(s, l)
	tail := c.sub(0, s)
	pts := make([]v3.Vec, 0, len(head.pts)+len(tail.pts))
	pts = append(pts, head.pts...)
	pts = append(pts, tail.pts[1:]...)
	br := make([]bool, 0, len(pts))
	br = append(br, head.breaks...)
	br = append(br, tail.breaks[1:]...)
	br[len(head.pts)-1] = c.breaks[0]
	seam := c.vertexBreakAt(s)
	br[0], br[len(br)-1] = seam, seam
	return newCurve(pts, br, true).withDomain(d), nil
}

// IntersectPlane returns the parameters where the curve crosses or touches p.
func (c *curve) IntersectPlane(p kernel.Plane) []float64 {
	n := len(c.pts)
	d := make([]float64, n)
	for i, q := range c.pts {
		d[i] = p.SignedDistance(q)
		if math.Abs(d[i]) < 1e-12 {
			d[i] = 0
		}
	}
	var ts []float64
	for j := 0; j < n-1; j++ {
		a, b := d[j], d[j+1]
		switch {
		case a == 0:
			ts = append(ts, c.ParameterAtLength(c.cum[j]))
		case a*b < 0:
			u := a / (a - b)
			ts = append(ts, c.ParameterAtLength(c.cum[j]+u*(c.cum[j+1]-c.cum[j])))
		}
	}
	if n > 0 && d[n-1] == 0 && (!c.closed || n == 1) {
		ts = append(ts, c.dom.T1)
	}
	return ts
}
