// Package outline imports planar contours from 2D shapes and DXF drawings.
//
// Shapes come from honnef.co/go/curve: circles, rectangles, rounded
// rectangles, ellipses and Bézier paths are flattened to polylines within
// a tolerance and lifted to a Z height. DXF polylines, lines and circles
// are read with dxf-go.
package outline

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/rpaloschi/dxf-go/document"
	"github.com/rpaloschi/dxf-go/entities"
	"honnef.co/go/curve"
)

// DefaultTolerance is the flattening tolerance used when none is given.
const DefaultTolerance = 0.01

// FromShape flattens s and returns one curve per subpath at height z.
// Subpaths ending in a close command become closed curves.
func FromShape(k kernel.Kernel, s curve.Shape, z, tolerance float64) ([]kernel.Curve, error) {
	if s == nil {
		return nil, fmt.Errorf("outline: nil shape: %w", kernel.ErrArgument)
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return FromPath(k, curve.BezPath(slices.Collect(s.PathElements(tolerance))), z, tolerance)
}

// FromPath flattens p and returns one curve per subpath at height z.
func FromPath(k kernel.Kernel, p curve.BezPath, z, tolerance float64) ([]kernel.Curve, error) {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	var (
		out []kernel.Curve
		pts []v3.Vec
	)
	flush := func(closed bool) error {
		defer func() { pts = nil }()
		if len(pts) < 2 {
			return nil
		}
		if closed && pts[0] != pts[len(pts)-1] {
			pts = append(pts, pts[0])
		}
		c, err := k.PolylineCurve(pts)
		if err != nil {
			return fmt.Errorf("outline: subpath %d: %w", len(out), err)
		}
		out = append(out, c)
		return nil
	}
	lift := func(pt curve.Point) v3.Vec { return v3.Vec{X: pt.X, Y: pt.Y, Z: z} }

	for el := range p.Flatten(tolerance) {
		switch el.Kind {
		case curve.MoveToKind:
			if err := flush(false); err != nil {
				return nil, err
			}
			pts = append(pts, lift(el.P0))
		case curve.LineToKind:
			pts = append(pts, lift(el.P0))
		case curve.ClosePathKind:
			if err := flush(true); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(false); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("outline: path has no drawable subpath: %w", kernel.ErrInvalidGeometry)
	}
	return out, nil
}

// Rect returns the closed rectangle [x0, x1] × [y0, y1] at height z.
func Rect(k kernel.Kernel, x0, y0, x1, y1, z float64) (kernel.Curve, error) {
	return single(FromShape(k, curve.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}, z, DefaultTolerance))
}

// RoundedRect returns a rectangle with rounded corners of the given radius.
func RoundedRect(k kernel.Kernel, x0, y0, x1, y1, radius, z, tolerance float64) (kernel.Curve, error) {
	if radius < 0 || 2*radius > math.Min(math.Abs(x1-x0), math.Abs(y1-y0)) {
		return nil, fmt.Errorf("outline: corner radius %g does not fit: %w", radius, kernel.ErrArgument)
	}
	return single(FromShape(k, curve.NewRoundedRect(x0, y0, x1, y1, radius), z, tolerance))
}

// Ellipse returns a closed ellipse with radii rx, ry rotated by rotation radians.
func Ellipse(k kernel.Kernel, cx, cy, rx, ry, rotation, z, tolerance float64) (kernel.Curve, error) {
	if rx <= 0 || ry <= 0 {
		return nil, fmt.Errorf("outline: ellipse radii %g, %g must be positive: %w", rx, ry, kernel.ErrArgument)
	}
	return single(FromShape(k, curve.NewEllipse(curve.Pt(cx, cy), curve.Vec(rx, ry), rotation), z, tolerance))
}

func single(cs []kernel.Curve, err error) (kernel.Curve, error) {
	if err != nil {
		return nil, err
	}
	if len(cs) != 1 {
		return nil, fmt.Errorf("outline: shape produced %d curves: %w", len(cs), kernel.ErrInvalidGeometry)
	}
	return cs[0], nil
}

// FromDXF reads polylines, lines and circles from a DXF stream. Polylines
// flagged closed are closed even when their last vertex does not repeat
// the first. Bulges on lightweight polylines are read as straight
// segments. Lines that touch end to start are joined. Curves are returned
// sorted by their lowest Z so that stacked contours come out bottom first.
func FromDXF(k kernel.Kernel, r io.Reader) ([]kernel.Curve, error) {
	doc, err := document.DxfDocumentFromStream(r)
	if err != nil {
		return nil, fmt.Errorf("outline: dxf: %w", err)
	}
	var (
		out   []kernel.Curve
		lines []kernel.Curve
	)
	for _, entity := range doc.Entities.Entities {
		switch e := entity.(type) {
		case *entities.Polyline:
			pts := make([]v3.Vec, len(e.Vertices))
			for i, v := range e.Vertices {
				pts[i] = v3.Vec{X: v.Location.X, Y: v.Location.Y, Z: v.Location.Z}
			}
			c, err := dxfPolyline(k, pts, e.Closed)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		case *entities.LWPolyline:
			pts := make([]v3.Vec, len(e.Points))
			for i, p := range e.Points {
				pts[i] = v3.Vec{X: p.Point.X, Y: p.Point.Y, Z: e.Elevation}
			}
			c, err := dxfPolyline(k, pts, e.Closed)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		case *entities.Line:
			a := v3.Vec{X: e.Start.X, Y: e.Start.Y, Z: e.Start.Z}
			b := v3.Vec{X: e.End.X, Y: e.End.Y, Z: e.End.Z}
			if a.Sub(b).Length() > k.Tolerance() {
				lines = append(lines, k.Line(a, b))
			}
		case *entities.Circle:
			if e.Radius <= 0 {
				continue
			}
			out = append(out, k.Circle(v3.Vec{X: e.Center.X, Y: e.Center.Y, Z: e.Center.Z}, e.Radius, 0))
		}
	}
	out = append(out, k.Join(lines)...)
	if len(out) == 0 {
		return nil, fmt.Errorf("outline: dxf has no polylines, lines or circles: %w", kernel.ErrInvalidGeometry)
	}
	SortByHeight(out)
	return out, nil
}

// dxfPolyline builds a polyline through pts, repeating the first vertex at
// the end when the entity is flagged closed.
func dxfPolyline(k kernel.Kernel, pts []v3.Vec, closed bool) (kernel.Curve, error) {
	if closed && len(pts) > 2 && pts[0].Sub(pts[len(pts)-1]).Length() > k.Tolerance() {
		pts = append(pts, pts[0])
	}
	c, err := k.PolylineCurve(pts)
	if err != nil {
		return nil, fmt.Errorf("outline: dxf polyline: %w", err)
	}
	return c, nil
}

// SortByHeight orders curves by their lowest point, keeping ties in place.
func SortByHeight(cs []kernel.Curve) {
	slices.SortStableFunc(cs, func(a, b kernel.Curve) int {
		return cmp.Compare(minZ(a), minZ(b))
	})
}

func minZ(c kernel.Curve) float64 {
	z := math.Inf(1)
	for _, p := range c.Points() {
		z = math.Min(z, p.Z)
	}
	return z
}
