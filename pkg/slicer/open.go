package slicer

import (
	"fmt"
	"slices"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/curves"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/transition"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// OpenPlanar prints one open planar contour at a list of heights,
// reversing every other layer so the path zigzags upwards.
type OpenPlanar struct {
	base
	contour kernel.Curve
	heights []float64
}

// NewOpenPlanar returns an unsliced open planar slicer.
func NewOpenPlanar(k kernel.Kernel, contour kernel.Curve, frameDistance float64, heights []float64, opts ...Option) *OpenPlanar {
	return &OpenPlanar{
		base:    base{k: k, opts: buildOptions(opts), frameDistance: frameDistance},
		contour: contour,
		heights: slices.Clone(heights),
	}
}

// Slice runs the pipeline and caches the result.
func (s *OpenPlanar) Slice() error {
	s.reset()
	c := s.contour
	if c == nil {
		return fmt.Errorf("slicer: no contour: %w", kernel.ErrArgument)
	}
	if c.IsClosed() {
		return fmt.Errorf("slicer: open planar slicer needs an open contour: %w", kernel.ErrInvalidGeometry)
	}
	if !curves.IsPlanar(c, s.k.Tolerance()) {
		return fmt.Errorf("slicer: contour is not planar: %w", kernel.ErrInvalidGeometry)
	}
	if err := s.checkSpacing(c.Length()); err != nil {
		return err
	}
	heights := s.heights
	if len(heights) == 0 {
		heights = []float64{0}
	}
	warnHeights(heights, &s.diag)
	policy := transition.CheckOpen(s.opts.open, &s.diag)

	layers := make([]kernel.Curve, len(heights))
	for i, h := range heights {
		layer := curves.Translate(c, v3.Vec{Z: h})
		if i%2 == 1 {
			layer = layer.Reverse()
		}
		layers[i] = layer
	}
	res, err := transition.JoinOpen(s.k, layers, policy)
	if err != nil {
		return fmt.Errorf("slicer: %w", err)
	}
	return s.finish(layers, res)
}
