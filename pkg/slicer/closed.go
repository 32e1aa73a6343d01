package slicer

import (
	"fmt"
	"slices"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/curves"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/seam"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/transition"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ClosedPlanar prints one closed planar contour at a list of heights.
// Every layer starts at the same seam; consecutive layers are joined by
// the configured closed transition over the seam length.
type ClosedPlanar struct {
	base
	contour      kernel.Curve
	seamLocation float64
	seamLength   float64
	heights      []float64
}

// NewClosedPlanar returns an unsliced closed planar slicer. seamLocation
// is a fraction of the contour length; heights are Z offsets of the
// layers relative to the contour. No heights means a single layer.
func NewClosedPlanar(k kernel.Kernel, contour kernel.Curve, seamLocation, seamLength, frameDistance float64, heights []float64, opts ...Option) *ClosedPlanar {
	return &ClosedPlanar{
		base:         base{k: k, opts: buildOptions(opts), frameDistance: frameDistance},
		contour:      contour,
		seamLocation: seamLocation,
		seamLength:   seamLength,
		heights:      slices.Clone(heights),
	}
}

// Slice runs the pipeline and caches the result.
func (s *ClosedPlanar) Slice() error {
	s.reset()
	c := s.contour
	if c == nil {
		return fmt.Errorf("slicer: no contour: %w", kernel.ErrArgument)
	}
	if !c.IsClosed() {
		return fmt.Errorf("slicer: closed planar slicer needs a closed contour: %w", kernel.ErrInvalidGeometry)
	}
	if !curves.IsPlanar(c, s.k.Tolerance()) {
		return fmt.Errorf("slicer: contour is not planar: %w", kernel.ErrInvalidGeometry)
	}
	heights := s.heights
	if len(heights) == 0 {
		heights = []float64{0}
	}
	l := c.Length()
	if err := checkSeamLength(s.seamLength, l, len(heights)); err != nil {
		return err
	}
	if err := s.checkSpacing(l); err != nil {
		return err
	}
	warnHeights(heights, &s.diag)
	policy := transition.CheckClosed(s.opts.closed, &s.diag)
	if policy == transition.ClosedInterpolated && s.seamLength == 0 && len(heights) > 1 {
		s.diag.Warnf("slicer", "interpolated transition needs a seam length, using %s", transition.ClosedLinear)
		policy = transition.ClosedLinear
	}

	seamed, err := seam.AtLength(c, s.seamLocation, true)
	if err != nil {
		return fmt.Errorf("slicer: %w", err)
	}
	layers := make([]kernel.Curve, len(heights))
	for i, h := range heights {
		layers[i] = curves.Translate(seamed, v3.Vec{Z: h})
	}
	res, err := transition.JoinClosed(s.k, layers, policy, s.seamLength, s.opts.precision)
	if err != nil {
		return fmt.Errorf("slicer: %w", err)
	}
	return s.finish(layers, res)
}
