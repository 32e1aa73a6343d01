package transition

import (
	"fmt"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/curves"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
)

// Result is a joined path with the pieces it was built from. Contours
// are the trimmed contours in path order; Transitions[i] connects
// Contours[i] to Contours[i+1].
type Result struct {
	Path        kernel.Curve
	Contours    []kernel.Curve
	Transitions []kernel.Curve
}

type builder func(k kernel.Kernel, trimmed []kernel.Curve) ([]kernel.Curve, error)

// join trims every contour by length when there is more than one contour
// and length > 0, builds the connectors and merges everything.
func join(k kernel.Kernel, contours []kernel.Curve, length float64, build builder) (Result, error) {
	if len(contours) == 0 {
		return Result{}, fmt.Errorf("transition: join: no contours: %w", kernel.ErrArgument)
	}
	if length < 0 {
		return Result{}, fmt.Errorf("transition: join: length %g is negative: %w", length, kernel.ErrArgument)
	}
	trimmed := contours
	if len(contours) > 1 && length > 0 {
		trimmed = make([]kernel.Curve, len(contours))
		for i, c := range contours {
			tr, _, err := TrimFromEnds(k, c, length)
			if err != nil {
				return Result{}, fmt.Errorf("contour %d: %w", i, err)
			}
			trimmed[i] = tr
		}
	}
	trs, err := build(k, trimmed)
	if err != nil {
		return Result{}, err
	}
	return merge(k, trimmed, trs)
}

func merge(k kernel.Kernel, trimmed, trs []kernel.Curve) (Result, error) {
	path, err := curves.MergeCurves(k, trimmed, trs)
	if err != nil {
		return Result{}, fmt.Errorf("transition: %w", err)
	}
	return Result{Path: path, Contours: trimmed, Transitions: trs}, nil
}

// JoinLinear joins contours with straight connectors. A positive length
// first trims length/2 from both ends of every contour.
func JoinLinear(k kernel.Kernel, contours []kernel.Curve, length float64) (kernel.Curve, []kernel.Curve, error) {
	r, err := join(k, contours, length, Linear)
	return r.Path, r.Transitions, err
}

// JoinOutsideArc joins contours with arcs tangent to each contour end.
func JoinOutsideArc(k kernel.Kernel, contours []kernel.Curve, length float64) (kernel.Curve, []kernel.Curve, error) {
	r, err := join(k, contours, length, OutsideArc)
	return r.Path, r.Transitions, err
}

// JoinBezier joins contours with cubic connectors tangent at both ends.
func JoinBezier(k kernel.Kernel, contours []kernel.Curve, length float64) (kernel.Curve, []kernel.Curve, error) {
	r, err := join(k, contours, length, Bezier)
	return r.Path, r.Transitions, err
}

// JoinInterpolated joins closed contours with blended connectors built
// from the trimmed-off material.
func JoinInterpolated(k kernel.Kernel, contours []kernel.Curve, length, precision float64) (kernel.Curve, []kernel.Curve, error) {
	r, err := joinInterpolated(k, contours, length, precision)
	return r.Path, r.Transitions, err
}

func joinInterpolated(k kernel.Kernel, contours []kernel.Curve, length, precision float64) (Result, error) {
	if len(contours) == 0 {
		return Result{}, fmt.Errorf("transition: join: no contours: %w", kernel.ErrArgument)
	}
	if len(contours) == 1 {
		return merge(k, contours, nil)
	}
	trimmed, trs, err := Interpolated(k, contours, length, precision)
	if err != nil {
		return Result{}, err
	}
	return merge(k, trimmed, trs)
}

// JoinClosed joins contours with the given closed policy.
func JoinClosed(k kernel.Kernel, contours []kernel.Curve, policy ClosedTransition, length, precision float64) (Result, error) {
	switch policy {
	case ClosedBezier:
		return join(k, contours, length, Bezier)
	case ClosedInterpolated:
		return joinInterpolated(k, contours, length, precision)
	case ClosedLinear:
		return join(k, contours, length, Linear)
	}
	return Result{}, fmt.Errorf("transition: unknown closed transition %d: %w", int(policy), kernel.ErrArgument)
}

// JoinOpen joins untrimmed contours with the given open policy.
func JoinOpen(k kernel.Kernel, contours []kernel.Curve, policy OpenTransition) (Result, error) {
	switch policy {
	case OpenBezier:
		return join(k, contours, 0, Bezier)
	case OpenLinear:
		return join(k, contours, 0, Linear)
	}
	return Result{}, fmt.Errorf("transition: unknown open transition %d: %w", int(policy), kernel.ErrArgument)
}
