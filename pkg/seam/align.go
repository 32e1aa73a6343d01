package seam

import (
	"fmt"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
)

// AlignByClosestPoint keeps the seam of the first contour and moves the
// seam of every following contour to the point nearest the previous
// contour's seam, so seams do not drift from layer to layer.
func AlignByClosestPoint(contours []kernel.Curve) ([]kernel.Curve, error) {
	out := make([]kernel.Curve, 0, len(contours))
	for i, c := range contours {
		var (
			r   kernel.Curve
			err error
		)
		if i == 0 {
			if err = requireClosed("align by closest point", c); err == nil {
				r, err = reseat("align by closest point", c, c.Domain().T0)
			}
		} else {
			prev := out[i-1]
			r, err = AtClosestPoint(c, prev.PointAt(prev.Domain().T0))
		}
		if err != nil {
			return nil, fmt.Errorf("contour %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// AlignAlongCurve moves every seam to the point nearest guide.
func AlignAlongCurve(k kernel.Kernel, contours []kernel.Curve, guide kernel.Curve) ([]kernel.Curve, error) {
	out := make([]kernel.Curve, len(contours))
	for i, c := range contours {
		r, err := ClosestToCurve(k, c, guide)
		if err != nil {
			return nil, fmt.Errorf("contour %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

// AlignAlongClosestPlaneIntersection moves every seam to its plane
// intersection nearest the plane origin.
func AlignAlongClosestPlaneIntersection(contours []kernel.Curve, pl kernel.Plane) ([]kernel.Curve, error) {
	out := make([]kernel.Curve, len(contours))
	for i, c := range contours {
		r, err := AtClosestPlaneIntersection(c, pl)
		if err != nil {
			return nil, fmt.Errorf("contour %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}
