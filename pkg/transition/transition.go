package transition

import (
	"fmt"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/curves"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/frames"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// connector builds one transition between the end frame of a contour and
// the start frame of the next.
type connector func(k kernel.Kernel, from, to frames.Frame) (kernel.Curve, error)

func connect(k kernel.Kernel, contours []kernel.Curve, name string, fn connector) ([]kernel.Curve, error) {
	if len(contours) < 2 {
		return nil, nil
	}
	out := make([]kernel.Curve, 0, len(contours)-1)
	for i := 0; i < len(contours)-1; i++ {
		from := curves.EndFrame(contours[i])
		to := curves.StartFrame(contours[i+1])
		if from.Origin.Sub(to.Origin).Length() <= k.Tolerance() {
			out = append(out, k.Line(from.Origin, to.Origin))
			continue
		}
		c, err := fn(k, from, to)
		if err != nil {
			return nil, fmt.Errorf("transition: %s %d: %w", name, i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Linear returns straight connectors from the end of each contour to the
// start of the next.
func Linear(k kernel.Kernel, contours []kernel.Curve) ([]kernel.Curve, error) {
	return connect(k, contours, "linear", func(k kernel.Kernel, from, to frames.Frame) (kernel.Curve, error) {
		return k.Line(from.Origin, to.Origin), nil
	})
}

// OutsideArc returns arcs leaving each contour along its end tangent and
// arriving at the start of the next.
func OutsideArc(k kernel.Kernel, contours []kernel.Curve) ([]kernel.Curve, error) {
	return connect(k, contours, "arc", func(k kernel.Kernel, from, to frames.Frame) (kernel.Curve, error) {
		return k.Arc(from.Origin, from.Tangent, to.Origin)
	})
}

// Bezier returns cubic connectors tangent to the end of each contour and
// to the start of the next.
func Bezier(k kernel.Kernel, contours []kernel.Curve) ([]kernel.Curve, error) {
	return connect(k, contours, "bezier", func(k kernel.Kernel, from, to frames.Frame) (kernel.Curve, error) {
		return k.Interpolate([]v3.Vec{from.Origin, to.Origin}, from.Tangent, to.Tangent)
	})
}

// TrimFromEnds removes length/2 from both ends of c. For a closed curve
// the removed material is also returned, joined into one cut curve that
// runs from the trimmed end through the old seam to the trimmed start.
func TrimFromEnds(k kernel.Kernel, c kernel.Curve, length float64) (trimmed, cut kernel.Curve, err error) {
	if length <= 0 {
		return nil, nil, fmt.Errorf("transition: trim length %g must be positive: %w", length, kernel.ErrArgument)
	}
	l := c.Length()
	if length >= l {
		return nil, nil, fmt.Errorf("transition: trim length %g exceeds curve length %g: %w", length, l, kernel.ErrRange)
	}
	t0 := c.ParameterAtLength(length / 2)
	t1 := c.ParameterAtLength(l - length/2)
	trimmed, err = c.Trim(t0, t1)
	if err != nil {
		return nil, nil, fmt.Errorf("transition: trim: %w", err)
	}
	if !c.IsClosed() {
		return trimmed, nil, nil
	}
	d := c.Domain()
	tail, err := c.Trim(t1, d.T1)
	if err != nil {
		return nil, nil, fmt.Errorf("transition: trim tail: %w", err)
	}
	head, err := c.Trim(d.T0, t0)
	if err != nil {
		return nil, nil, fmt.Errorf("transition: trim head: %w", err)
	}
	joined := k.Join([]kernel.Curve{tail, head})
	if len(joined) != 1 {
		return nil, nil, fmt.Errorf("transition: cut has %d pieces: %w", len(joined), kernel.ErrInvalidGeometry)
	}
	return trimmed, joined[0], nil
}

// Interpolated trims every closed contour by length and blends each
// contour's cut into the next one's, giving connectors that climb
// linearly while following the contour shape. The blend uses
// max(8, cutLength/precision) samples.
func Interpolated(k kernel.Kernel, contours []kernel.Curve, length, precision float64) (trimmed, transitions []kernel.Curve, err error) {
	if precision <= 0 {
		return nil, nil, fmt.Errorf("transition: precision %g must be positive: %w", precision, kernel.ErrArgument)
	}
	trimmed = make([]kernel.Curve, len(contours))
	cuts := make([]kernel.Curve, len(contours))
	for i, c := range contours {
		if !c.IsClosed() {
			return nil, nil, fmt.Errorf("transition: interpolated: contour %d is open: %w", i, kernel.ErrInvalidGeometry)
		}
		trimmed[i], cuts[i], err = TrimFromEnds(k, c, length)
		if err != nil {
			return nil, nil, fmt.Errorf("contour %d: %w", i, err)
		}
	}
	for i := 0; i < len(cuts)-1; i++ {
		n := max(curves.MinInterpolationSamples, int(cuts[i].Length()/precision))
		tr, err := curves.InterpolateCurvesCount(k, cuts[i], cuts[i+1], n)
		if err != nil {
			return nil, nil, fmt.Errorf("transition: interpolated %d: %w", i, err)
		}
		transitions = append(transitions, tr)
	}
	return trimmed, transitions, nil
}
