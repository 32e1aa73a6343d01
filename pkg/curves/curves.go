// Package curves holds curve-level helpers shared by the seam, transition
// and slicer packages: domain normalization, blending two curves,
// merging contour lists, length-based splitting and direction alignment.
package curves

import (
	"fmt"
	"math"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/frames"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MinInterpolationSamples is the lower bound on blend samples.
const MinInterpolationSamples = 8

// Normalize returns c with domain [0, 1].
func Normalize(c kernel.Curve) kernel.Curve {
	return c.SetDomain(kernel.Interval{T0: 0, T1: 1})
}

// NormalizeAll returns every curve with domain [0, 1].
func NormalizeAll(cs []kernel.Curve) []kernel.Curve {
	out := make([]kernel.Curve, len(cs))
	for i, c := range cs {
		out[i] = Normalize(c)
	}
	return out
}

// StartFrame returns the frame at the start of c.
func StartFrame(c kernel.Curve) frames.Frame {
	return frames.At(c, c.Domain().T0)
}

// EndFrame returns the frame at the end of c.
func EndFrame(c kernel.Curve) frames.Frame {
	return frames.At(c, c.Domain().T1)
}

// FramesAt returns the frames of c at the given parameters.
func FramesAt(c kernel.Curve, ts []float64) []frames.Frame {
	out := make([]frames.Frame, len(ts))
	for i, t := range ts {
		out[i] = frames.At(c, t)
	}
	return out
}

// Translate returns c moved by v.
func Translate(c kernel.Curve, v v3.Vec) kernel.Curve {
	return c.Transform(sdf.Translate3d(v))
}

// pointAtFraction returns the point at fraction f of the arc length.
func pointAtFraction(c kernel.Curve, f float64) v3.Vec {
	return c.PointAt(c.ParameterAtLength(f * c.Length()))
}

// InterpolateCurves blends c1 into c2. Sample i of N is the blend, by
// i/N, of the points at arc-length fraction i/N on both curves, with
// N = max(8, round(max(len1, len2)/tolerance)).
func InterpolateCurves(k kernel.Kernel, c1, c2 kernel.Curve, tolerance float64) (kernel.Curve, error) {
	if tolerance <= 0 {
		return nil, fmt.Errorf("curves: interpolation tolerance %g must be positive: %w", tolerance, kernel.ErrArgument)
	}
	n := int(math.Round(math.Max(c1.Length(), c2.Length()) / tolerance))
	return InterpolateCurvesCount(k, c1, c2, max(MinInterpolationSamples, n))
}

// InterpolateCurvesCount blends c1 into c2 with n sample intervals. The
// result starts at c1's start and ends at c2's end, tangent to both.
func InterpolateCurvesCount(k kernel.Kernel, c1, c2 kernel.Curve, n int) (kernel.Curve, error) {
	if n < 1 {
		return nil, fmt.Errorf("curves: interpolation sample count %d must be positive: %w", n, kernel.ErrArgument)
	}
	pts := make([]v3.Vec, n+1)
	for i := range pts {
		f := float64(i) / float64(n)
		a := pointAtFraction(c1, f)
		b := pointAtFraction(c2, f)
		pts[i] = a.MulScalar(1 - f).Add(b.MulScalar(f))
	}
	st := c1.TangentAt(c1.Domain().T0)
	et := c2.TangentAt(c2.Domain().T1)
	c, err := k.Interpolate(pts, st, et)
	if err != nil {
		return nil, fmt.Errorf("curves: interpolate curves: %w", err)
	}
	return c, nil
}

// Weave interleaves a and b: a0, b0, a1, b1, ... Leftovers of the longer
// list are appended in order.
func Weave(a, b []kernel.Curve) []kernel.Curve {
	out := make([]kernel.Curve, 0, len(a)+len(b))
	for i := 0; i < max(len(a), len(b)); i++ {
		if i < len(a) {
			out = append(out, a[i])
		}
		if i < len(b) {
			out = append(out, b[i])
		}
	}
	return out
}

// MergeCurves joins contour0, transition0, contour1, ... into one curve.
// It fails with ErrInvalidGeometry when the pieces are not contiguous.
func MergeCurves(k kernel.Kernel, contours, transitions []kernel.Curve) (kernel.Curve, error) {
	if len(contours) == 0 {
		return nil, fmt.Errorf("curves: merge: no contours: %w", kernel.ErrArgument)
	}
	joined := k.Join(Weave(contours, transitions))
	if len(joined) != 1 {
		return nil, fmt.Errorf("curves: merge: result has %d pieces, want 1: %w", len(joined), kernel.ErrInvalidGeometry)
	}
	return joined[0], nil
}

// SplitAtLength splits c at arc length s in [0, length]. At either end
// the corresponding piece is nil.
func SplitAtLength(c kernel.Curve, s float64) (kernel.Curve, kernel.Curve, error) {
	l := c.Length()
	if s < 0 || s > l {
		return nil, nil, fmt.Errorf("curves: split at length %g outside [0, %g]: %w", s, l, kernel.ErrRange)
	}
	switch s {
	case 0:
		return nil, c, nil
	case l:
		return c, nil, nil
	}
	a, b, err := c.Split(c.ParameterAtLength(s))
	if err != nil {
		return nil, nil, fmt.Errorf("curves: split at length %g: %w", s, err)
	}
	return a, b, nil
}

// Normal returns the Newell normal of c's control polygon. Its length is
// twice the enclosed area for a closed planar curve.
func Normal(c kernel.Curve) v3.Vec {
	pts := c.Points()
	var n v3.Vec
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}

// IsPlanar reports whether every point of c lies within tol of one plane.
// Straight curves are planar.
func IsPlanar(c kernel.Curve, tol float64) bool {
	pts := c.Points()
	if len(pts) < 4 {
		return true
	}
	n := Normal(c)
	if n.Length() < 1e-12 {
		n = planeNormalFromPoints(pts)
		if n.Length() == 0 {
			return true
		}
	}
	pl := kernel.Plane{Origin: pts[0], Normal: n}
	for _, p := range pts {
		if math.Abs(pl.SignedDistance(p)) > tol {
			return false
		}
	}
	return true
}

// planeNormalFromPoints returns the normal spanned by the first
// non-collinear point triple, or zero for collinear input.
func planeNormalFromPoints(pts []v3.Vec) v3.Vec {
	for i := 1; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			n := pts[i].Sub(pts[0]).Cross(pts[j].Sub(pts[0]))
			if n.Length() > 1e-9 {
				return n
			}
		}
	}
	return v3.Vec{}
}

// DirectionsMatch reports whether c runs the same way as ref. Closed
// curves compare orientation normals; open curves compare tangents at
// the closest points of three samples.
func DirectionsMatch(c, ref kernel.Curve) bool {
	if c.IsClosed() && ref.IsClosed() {
		a, b := Normal(c), Normal(ref)
		if a.Length() > 1e-12 && b.Length() > 1e-12 {
			return a.Dot(b) >= 0
		}
	}
	var sum float64
	for _, f := range []float64{0.1, 0.5, 0.9} {
		t := c.ParameterAtLength(f * c.Length())
		p := c.PointAt(t)
		sum += c.TangentAt(t).Dot(ref.TangentAt(ref.ClosestParameter(p)))
	}
	return sum >= 0
}

// AlignCurve returns c reversed when it runs against ref. The domain is
// preserved.
func AlignCurve(c, ref kernel.Curve) kernel.Curve {
	if DirectionsMatch(c, ref) {
		return c
	}
	return c.Reverse()
}

// AlignCurves aligns every curve to its aligned predecessor.
func AlignCurves(cs []kernel.Curve) []kernel.Curve {
	out := make([]kernel.Curve, len(cs))
	for i, c := range cs {
		if i == 0 {
			out[i] = c
			continue
		}
		out[i] = AlignCurve(c, out[i-1])
	}
	return out
}
