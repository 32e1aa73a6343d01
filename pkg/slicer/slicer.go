// Package slicer turns contours and layer settings into one continuous,
// frame-annotated toolpath.
//
// A slicer is built from raw parameters, and Slice runs the seam, join
// and framing pipeline once and caches the result. Every query after that
// is a read of the cached state. Calling Slice again discards the cache
// and recomputes it. Slicers are program objects: ToProgram writes one
// coordinate line per frame, grouped by layer.
package slicer

import (
	"fmt"
	"math"
	"slices"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/diag"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/frames"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/program"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/transition"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultPrecision is the sample spacing of interpolated transitions.
const DefaultPrecision = 0.1

// Slicer is the read side shared by every slicer.
type Slicer interface {
	program.Object
	program.VariableAdder

	Name() string
	Slice() error
	Sliced() bool

	Path() kernel.Curve
	InterpolatedPath() kernel.Curve
	LinearizedPath() kernel.Curve
	Frames() []frames.Frame
	FramesByLayer() [][]frames.Frame
	Contours() []kernel.Curve
	Transitions() []kernel.Curve

	Length() float64
	LayerCount() int
	DistanceAlongPath() []float64
	DistanceToPreviousLayer() [][]float64
	Curvatures() []float64

	Warnings() []diag.Warning
}

// Compile-time interface checks.
var (
	_ Slicer = (*ClosedPlanar)(nil)
	_ Slicer = (*OpenPlanar)(nil)
	_ Slicer = (*Curves)(nil)
)

type options struct {
	name      string
	closed    transition.ClosedTransition
	open      transition.OpenTransition
	precision float64
	reduction frames.Reduction
}

// Option configures a slicer.
type Option func(*options)

// WithName labels the slicer in program comments and previews.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithClosedTransition selects the join policy of closed slicers.
// Unknown values fall back to linear with a warning.
func WithClosedTransition(t transition.ClosedTransition) Option {
	return func(o *options) { o.closed = t }
}

// WithOpenTransition selects the join policy of the open slicer.
// Unknown values fall back to linear with a warning.
func WithOpenTransition(t transition.OpenTransition) Option {
	return func(o *options) { o.open = t }
}

// WithPrecision sets the sample spacing of interpolated transitions.
func WithPrecision(p float64) Option {
	return func(o *options) { o.precision = p }
}

// WithReduction sets the curvature reduction constants.
func WithReduction(r frames.Reduction) Option {
	return func(o *options) { o.reduction = r }
}

func buildOptions(opts []Option) options {
	o := options{precision: DefaultPrecision, reduction: frames.DefaultReduction()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type variable struct {
	prefix string
	values [][]float64
}

// base holds configuration and the cached result shared by all slicers.
type base struct {
	k             kernel.Kernel
	opts          options
	frameDistance float64
	diag          diag.Diagnostics

	sliced       bool
	contours     []kernel.Curve
	trimmed      []kernel.Curve
	transitions  []kernel.Curve
	path         kernel.Curve
	interpolated kernel.Curve
	linearized   kernel.Curve
	frames       []frames.Frame
	byLayer      [][]frames.Frame
	variables    []variable
}

func (b *base) reset() {
	k, opts, fd := b.k, b.opts, b.frameDistance
	*b = base{k: k, opts: opts, frameDistance: fd}
}

// checkSpacing validates the frame distance against the shortest contour length.
func (b *base) checkSpacing(l float64) error {
	if b.frameDistance <= 0 {
		return fmt.Errorf("slicer: frame distance %g must be positive: %w", b.frameDistance, kernel.ErrArgument)
	}
	if b.frameDistance > l {
		return fmt.Errorf("slicer: frame distance %g exceeds contour length %g: %w", b.frameDistance, l, kernel.ErrConfiguration)
	}
	return nil
}

// checkSeamLength validates the seam length against the shortest contour
// length. Trimming needs some material left when there is more than one layer.
func checkSeamLength(seamLength, l float64, layers int) error {
	if seamLength < 0 {
		return fmt.Errorf("slicer: seam length %g is negative: %w", seamLength, kernel.ErrArgument)
	}
	if seamLength > l || (layers > 1 && seamLength == l) {
		return fmt.Errorf("slicer: seam length %g exceeds contour length %g: %w", seamLength, l, kernel.ErrConfiguration)
	}
	return nil
}

// finish frames the joined path and fills the cache.
func (b *base) finish(layers []kernel.Curve, res transition.Result) error {
	fs := frames.ByDistanceAndSegmentWith(res.Path, b.frameDistance, true, true, b.opts.reduction)
	if len(fs) < 2 {
		return fmt.Errorf("slicer: path produced %d frames: %w", len(fs), kernel.ErrConfiguration)
	}
	origins := frames.Origins(fs)
	lin, err := b.k.PolylineCurve(origins)
	if err != nil {
		return fmt.Errorf("slicer: linearized path: %w", err)
	}
	interp, err := b.k.Interpolate(origins, v3.Vec{}, v3.Vec{})
	if err != nil {
		return fmt.Errorf("slicer: interpolated path: %w", err)
	}

	b.contours = layers
	b.trimmed = res.Contours
	b.transitions = res.Transitions
	b.path = res.Path
	b.frames = fs
	b.linearized = lin
	b.interpolated = interp
	b.byLayer = partition(res, fs)
	b.sliced = true
	return nil
}

// partition splits frames by layer. Layer i owns its trimmed contour and
// the transition leaving it, so it starts where trimmed contour i starts.
func partition(res transition.Result, fs []frames.Frame) [][]frames.Frame {
	n := len(res.Contours)
	starts := make([]float64, n)
	var s float64
	for i := range n {
		starts[i] = res.Path.ParameterAtLength(s)
		s += res.Contours[i].Length()
		if i < len(res.Transitions) {
			s += res.Transitions[i].Length()
		}
	}
	tol := 1e-9 * math.Max(1, res.Path.Domain().Length())
	out := make([][]frames.Frame, n)
	layer := 0
	for _, f := range fs {
		for layer+1 < n && f.Param >= starts[layer+1]-tol {
			layer++
		}
		out[layer] = append(out[layer], f)
	}
	return out
}

func (b *base) Sliced() bool                   { return b.sliced }
func (b *base) Path() kernel.Curve             { return b.path }
func (b *base) InterpolatedPath() kernel.Curve { return b.interpolated }
func (b *base) LinearizedPath() kernel.Curve   { return b.linearized }
func (b *base) Frames() []frames.Frame         { return slices.Clone(b.frames) }
func (b *base) Contours() []kernel.Curve       { return slices.Clone(b.contours) }
func (b *base) Transitions() []kernel.Curve    { return slices.Clone(b.transitions) }
func (b *base) LayerCount() int                { return len(b.byLayer) }
func (b *base) Warnings() []diag.Warning       { return b.diag.Warnings() }

// TrimmedContours returns the contours as they appear in the path.
func (b *base) TrimmedContours() []kernel.Curve { return slices.Clone(b.trimmed) }

// FramesByLayer returns a copy of the per-layer frame partition.
func (b *base) FramesByLayer() [][]frames.Frame {
	out := make([][]frames.Frame, len(b.byLayer))
	for i, l := range b.byLayer {
		out[i] = slices.Clone(l)
	}
	return out
}

// Length returns the path length, or 0 before slicing.
func (b *base) Length() float64 {
	if b.path == nil {
		return 0
	}
	return b.path.Length()
}

// DistanceAlongPath returns the path length up to every frame.
func (b *base) DistanceAlongPath() []float64 {
	if b.path == nil {
		return nil
	}
	out := make([]float64, len(b.frames))
	for i, f := range b.frames {
		out[i] = b.path.LengthAt(f.Param)
	}
	return out
}

// DistanceToPreviousLayer returns, per layer and frame, the distance from
// the frame origin to the previous layer's contour. First layer frames
// measure the distance to the world XY plane.
func (b *base) DistanceToPreviousLayer() [][]float64 {
	out := make([][]float64, len(b.byLayer))
	for i, layer := range b.byLayer {
		out[i] = make([]float64, len(layer))
		for j, f := range layer {
			if i == 0 || i-1 >= len(b.contours) {
				out[i][j] = math.Abs(f.Origin.Z)
				continue
			}
			prev := b.contours[i-1]
			out[i][j] = f.Origin.Sub(prev.PointAt(prev.ClosestParameter(f.Origin))).Length()
		}
	}
	return out
}

// Curvatures returns the path curvature magnitude at every frame.
func (b *base) Curvatures() []float64 {
	if b.path == nil {
		return nil
	}
	out := make([]float64, len(b.frames))
	for i, f := range b.frames {
		out[i] = b.path.CurvatureAt(f.Param).Length()
	}
	return out
}

// Name returns the slicer label.
func (b *base) Name() string { return b.opts.name }

// AddVariable appends prefix+value to every coordinate line. values must
// have one entry per frame per layer.
func (b *base) AddVariable(prefix string, values [][]float64) error {
	if prefix == "" {
		return fmt.Errorf("slicer: add variable: empty prefix: %w", kernel.ErrArgument)
	}
	if len(values) != len(b.byLayer) {
		return fmt.Errorf("slicer: add variable %q: %d layers, want %d: %w", prefix, len(values), len(b.byLayer), kernel.ErrArgument)
	}
	for i, layer := range b.byLayer {
		if len(values[i]) != len(layer) {
			return fmt.Errorf("slicer: add variable %q: layer %d has %d values, want %d: %w", prefix, i, len(values[i]), len(layer), kernel.ErrArgument)
		}
	}
	cp := make([][]float64, len(values))
	for i := range values {
		cp[i] = slices.Clone(values[i])
	}
	b.variables = append(b.variables, variable{prefix: prefix, values: cp})
	return nil
}

// ToProgram writes a comment per layer and one G1 line per frame.
func (b *base) ToProgram(g *program.Generator) {
	if !b.sliced {
		return
	}
	if b.opts.name != "" {
		g.AddLine("; " + b.opts.name)
	}
	for i, layer := range b.byLayer {
		g.AddLine(fmt.Sprintf("; LAYER %03d", i))
		for j, f := range layer {
			line := "G1 " + program.AbsoluteCoordinate{Frame: f}.ToSingleString()
			for _, v := range b.variables {
				line += " " + v.prefix + program.FormatNumber(v.values[i][j])
			}
			g.AddLine(line)
		}
	}
}

// warnHeights reports layer heights that do not increase.
func warnHeights(heights []float64, d *diag.Diagnostics) {
	for i := 1; i < len(heights); i++ {
		if heights[i] <= heights[i-1] {
			d.Warnf("slicer", "layer height %d (%g) does not increase over layer %d (%g)", i, heights[i], i-1, heights[i-1])
		}
	}
}
