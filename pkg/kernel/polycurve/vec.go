package polycurve

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// eps is the distance below which consecutive vertices are merged.
const eps = 1e-9

func lerp(a, b v3.Vec, u float64) v3.Vec {
	return a.Add(b.Sub(a).MulScalar(u))
}

// unit normalizes v, returning the zero vector for degenerate input.
func unit(v v3.Vec) v3.Vec {
	l := v.Length()
	if l < 1e-15 {
		return v3.Vec{}
	}
	return v.MulScalar(1 / l)
}

func dist(a, b v3.Vec) float64 {
	return b.Sub(a).Length()
}

// angleBetween returns the angle in radians between two directions.
func angleBetween(a, b v3.Vec) float64 {
	a, b = unit(a), unit(b)
	if a.Length() == 0 || b.Length() == 0 {
		return 0
	}
	return math.Atan2(a.Cross(b).Length(), a.Dot(b))
}

// circumCurvature returns the curvature vector at b of the circle through
// a, b and c. Collinear points have zero curvature.
func circumCurvature(a, b, c v3.Vec) v3.Vec {
	u := a.Sub(b)
	w := c.Sub(b)
	n := u.Cross(w)
	n2 := n.Dot(n)
	if n2 < 1e-24 {
		return v3.Vec{}
	}
	// Circumcenter relative to b.
	off := w.MulScalar(u.Dot(u)).Sub(u.MulScalar(w.Dot(w))).Cross(n).MulScalar(1 / (2 * n2))
	r2 := off.Dot(off)
	if r2 == 0 {
		return v3.Vec{}
	}
	return off.MulScalar(1 / r2)
}

// dedupe drops consecutive points closer than eps. Break flags of
// merged points are OR-ed together.
func dedupe(pts []v3.Vec, breaks []bool) ([]v3.Vec, []bool) {
	out := make([]v3.Vec, 0, len(pts))
	outB := make([]bool, 0, len(pts))
	for i, p := range pts {
		b := breaks != nil && breaks[i]
		if len(out) > 0 && dist(out[len(out)-1], p) < eps {
			outB[len(outB)-1] = outB[len(outB)-1] || b
			continue
		}
		out = append(out, p)
		outB = append(outB, b)
	}
	return out, outB
}
