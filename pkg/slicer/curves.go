package slicer

import (
	"fmt"
	"math"
	"slices"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/curves"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/seam"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/transition"
)

// Curves prints a list of closed contours, one per layer, in the given
// order. Contours are oriented like the first one, the first seam is
// placed at seamLocation and every following seam is the point nearest
// the previous seam.
type Curves struct {
	base
	input        []kernel.Curve
	seamLocation float64
	seamLength   float64
}

// NewCurves returns an unsliced multi-contour slicer.
func NewCurves(k kernel.Kernel, contours []kernel.Curve, seamLocation, seamLength, frameDistance float64, opts ...Option) *Curves {
	return &Curves{
		base:         base{k: k, opts: buildOptions(opts), frameDistance: frameDistance},
		input:        slices.Clone(contours),
		seamLocation: seamLocation,
		seamLength:   seamLength,
	}
}

// Slice runs the pipeline and caches the result.
func (s *Curves) Slice() error {
	s.reset()
	if len(s.input) == 0 {
		return fmt.Errorf("slicer: no contours: %w", kernel.ErrArgument)
	}
	shortest := math.Inf(1)
	for i, c := range s.input {
		if c == nil {
			return fmt.Errorf("slicer: contour %d is nil: %w", i, kernel.ErrArgument)
		}
		if !c.IsClosed() {
			return fmt.Errorf("slicer: contour %d is open: %w", i, kernel.ErrInvalidGeometry)
		}
		shortest = math.Min(shortest, c.Length())
	}
	if err := checkSeamLength(s.seamLength, shortest, len(s.input)); err != nil {
		return err
	}
	if err := s.checkSpacing(shortest); err != nil {
		return err
	}
	policy := transition.CheckClosed(s.opts.closed, &s.diag)
	if policy == transition.ClosedInterpolated && s.seamLength == 0 && len(s.input) > 1 {
		s.diag.Warnf("slicer", "interpolated transition needs a seam length, using %s", transition.ClosedLinear)
		policy = transition.ClosedLinear
	}

	oriented := curves.AlignCurves(s.input)
	first, err := seam.AtLength(oriented[0], s.seamLocation, true)
	if err != nil {
		return fmt.Errorf("slicer: %w", err)
	}
	oriented[0] = first
	layers, err := seam.AlignByClosestPoint(oriented)
	if err != nil {
		return fmt.Errorf("slicer: %w", err)
	}
	res, err := transition.JoinClosed(s.k, layers, policy, s.seamLength, s.opts.precision)
	if err != nil {
		return fmt.Errorf("slicer: %w", err)
	}
	return s.finish(layers, res)
}
