// Package frames builds oriented printhead frames along curves and thins
// them in straight regions.
package frames

import (
	"math"
	"slices"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// WorldZ is the global up direction used to orient frames.
var WorldZ = v3.Vec{Z: 1}

// Frame is an oriented coordinate system at a path location. Param is
// the curve parameter the frame was sampled at.
type Frame struct {
	Origin   v3.Vec
	Tangent  v3.Vec
	Normal   v3.Vec
	Binormal v3.Vec
	Param    float64
}

// New orients a frame from a tangent. The binormal is tangent × WorldZ,
// or tangent × X when the tangent is vertical; the normal points up.
func New(origin, tangent v3.Vec, param float64) Frame {
	t := normalize(tangent)
	b := t.Cross(WorldZ)
	if b.Length() < 1e-9 {
		b = t.Cross(v3.Vec{X: 1})
	}
	b = normalize(b)
	return Frame{
		Origin:   origin,
		Tangent:  t,
		Normal:   b.Cross(t),
		Binormal: b,
		Param:    param,
	}
}

// At returns the frame of c at parameter t.
func At(c kernel.Curve, t float64) Frame {
	return New(c.PointAt(t), c.TangentAt(t), t)
}

func normalize(v v3.Vec) v3.Vec {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.MulScalar(1 / l)
}

// Interpolate returns the arithmetic mean of two frames. Axes are not
// renormalized, so it only suits closely spaced frames.
func Interpolate(a, b Frame) Frame {
	mid := func(p, q v3.Vec) v3.Vec { return p.Add(q).MulScalar(0.5) }
	return Frame{
		Origin:   mid(a.Origin, b.Origin),
		Tangent:  mid(a.Tangent, b.Tangent),
		Normal:   mid(a.Normal, b.Normal),
		Binormal: mid(a.Binormal, b.Binormal),
		Param:    (a.Param + b.Param) / 2,
	}
}

// SortByParameter returns a copy of frames ordered by Param. Equal
// parameters keep their input order.
func SortByParameter(frames []Frame) []Frame {
	out := slices.Clone(frames)
	slices.SortStableFunc(out, func(a, b Frame) int {
		switch {
		case a.Param < b.Param:
			return -1
		case a.Param > b.Param:
			return 1
		}
		return 0
	})
	return out
}

// Origins returns the frame origins in order.
func Origins(frames []Frame) []v3.Vec {
	return lo.Map(frames, func(f Frame, _ int) v3.Vec { return f.Origin })
}

// Reduction holds the curvature reduction constants.
type Reduction struct {
	// Keep is the protected neighborhood, in frames, at the ends of the
	// sequence and around every frame that is not removable.
	Keep int
	// Threshold is the curvature magnitude below which a frame is removable.
	Threshold float64
}

const (
	// DefaultKeep is the default protected neighborhood.
	DefaultKeep = 5
)

// DefaultThreshold is the square root of the float64 machine epsilon.
var DefaultThreshold = math.Sqrt(math.Nextafter(1, 2) - 1)

// DefaultReduction returns the default reduction constants.
func DefaultReduction() Reduction {
	return Reduction{Keep: DefaultKeep, Threshold: DefaultThreshold}
}

// ReduceByCurvature drops frames in near-straight regions of c.
//
// The first pass marks a frame removable when the curvature magnitude at
// its closest curve parameter is below threshold. The second pass clears
// the mark of every frame within keep frames of an unmarked one. Frames
// within keep of either end are never removed.
func ReduceByCurvature(frames []Frame, c kernel.Curve, keep int, threshold float64) []Frame {
	n := len(frames)
	keep = max(keep, 0)
	removable := make([]bool, n)
	for i, f := range frames {
		t := c.ClosestParameter(f.Origin)
		removable[i] = c.CurvatureAt(t).Length() < threshold
	}

	protected := make([]bool, n)
	for i := range frames {
		if removable[i] {
			continue
		}
		for j := max(0, i-keep); j <= min(n-1, i+keep); j++ {
			protected[j] = true
		}
	}

	out := make([]Frame, 0, n)
	for i, f := range frames {
		if i < keep || i >= n-keep || !removable[i] || protected[i] {
			out = append(out, f)
		}
	}
	return out
}

// ByDistance samples c at ceil(length/spacing) equal arc-length steps,
// reduces the frames by curvature and drops the first or last frame as
// requested. It never fails: a zero-length curve or non-positive spacing
// yields at most a single frame per kept end.
func ByDistance(c kernel.Curve, spacing float64, includeStart, includeEnd bool) []Frame {
	return ByDistanceWith(c, spacing, includeStart, includeEnd, DefaultReduction())
}

// ByDistanceWith is ByDistance with explicit reduction constants.
func ByDistanceWith(c kernel.Curve, spacing float64, includeStart, includeEnd bool, r Reduction) []Frame {
	l := c.Length()
	if l <= 0 {
		if !includeStart && !includeEnd {
			return nil
		}
		return []Frame{At(c, c.Domain().T0)}
	}
	n := 1
	if spacing > 0 {
		n = max(1, int(math.Ceil(l/spacing)))
	}
	fs := make([]Frame, 0, n+1)
	for i := 0; i <= n; i++ {
		fs = append(fs, At(c, c.ParameterAtLength(l*float64(i)/float64(n))))
	}
	fs = ReduceByCurvature(fs, c, r.Keep, r.Threshold)
	return trimEnds(fs, includeStart, includeEnd)
}

func trimEnds(fs []Frame, includeStart, includeEnd bool) []Frame {
	if !includeStart && len(fs) > 0 {
		fs = fs[1:]
	}
	if !includeEnd && len(fs) > 0 {
		fs = fs[:len(fs)-1]
	}
	if len(fs) == 0 {
		return nil
	}
	return fs
}

// ByDistanceAndSegment frames every C1 segment of c independently and
// replaces the last frame of each segment and the first frame of the next
// with their average.
func ByDistanceAndSegment(c kernel.Curve, spacing float64, includeStart, includeEnd bool) []Frame {
	return ByDistanceAndSegmentWith(c, spacing, includeStart, includeEnd, DefaultReduction())
}

// ByDistanceAndSegmentWith is ByDistanceAndSegment with explicit reduction constants.
func ByDistanceAndSegmentWith(c kernel.Curve, spacing float64, includeStart, includeEnd bool, r Reduction) []Frame {
	var groups [][]Frame
	for _, seg := range c.Segments() {
		fs := ByDistanceWith(seg, spacing, true, true, r)
		if len(fs) == 0 {
			continue
		}
		if len(groups) > 0 {
			prev := groups[len(groups)-1]
			avg := Interpolate(prev[len(prev)-1], fs[0])
			groups[len(groups)-1] = prev[:len(prev)-1]
			fs[0] = avg
		}
		groups = append(groups, fs)
	}
	return trimEnds(lo.Flatten(groups), includeStart, includeEnd)
}
