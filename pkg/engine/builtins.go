package engine

import (
	"fmt"
	"math"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/curves"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/job"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/outline"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/program"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/slicer"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/transition"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// builder is the state the builtins of one evaluation share.
type builder struct {
	k    kernel.Kernel
	opts []slicer.Option
	job  *job.Job
}

type builtin func(b *builder, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the job script builtins into a zygomys
// environment. Hyphenated names are registered in their snake_case form;
// source must go through preprocessSource first.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	fns := map[string]builtin{
		"vec3":          builtinVec3,
		"circle":        builtinCircle,
		"rect":          builtinRect,
		"rounded_rect":  builtinRoundedRect,
		"ellipse":       builtinEllipse,
		"polyline":      builtinPolyline,
		"interpolate":   builtinInterpolate,
		"translate":     builtinTranslate,
		"flip":          builtinFlip,
		"defcontour":    builtinDefcontour,
		"contour":       builtinContour,
		"layers":        builtinLayers,
		"closed_slicer": builtinClosedSlicer,
		"open_slicer":   builtinOpenSlicer,
		"curves_slicer": builtinCurvesSlicer,
		"add_variable":  builtinAddVariable,
		"temperature":   builtinTemperature,
		"feed_rate":     builtinFeedRate,
		"code":          builtinCode,
		"group":         builtinGroup,
		"program":       builtinProgram,
	}
	for name, fn := range fns {
		display := dslName(name)
		env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			res, err := fn(b, args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", display, err)
			}
			return res, nil
		})
	}
}

// dslName returns the name a builtin is written with in job scripts.
func dslName(name string) string {
	out := []byte(name)
	for i, c := range out {
		if c == '_' {
			out[i] = '-'
		}
	}
	return string(out)
}

// (vec3 1 2 3)
func builtinVec3(_ *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("requires exactly 3 arguments, got %d", len(args))
	}
	var xyz [3]float64
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%c: %w", "xyz"[i], err)
		}
		xyz[i] = f
	}
	return &sexpVec3{vec: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
}

// (circle 50 :center (vec3 0 0 0) :segments 360)
func builtinCircle(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 1 {
		return nil, fmt.Errorf("requires a radius")
	}
	r, err := toFloat64(pa.positional[0])
	if err != nil {
		return nil, fmt.Errorf("radius: %w", err)
	}
	if r <= 0 {
		return nil, fmt.Errorf("radius %g must be positive", r)
	}
	center := v3.Vec{}
	if v, ok := pa.kw["center"]; ok {
		if center, err = toVec3(v); err != nil {
			return nil, fmt.Errorf("center: %w", err)
		}
	}
	segments, err := pa.float("segments", 0)
	if err != nil {
		return nil, err
	}
	return &sexpCurve{curve: b.k.Circle(center, r, int(segments))}, nil
}

// (rect 0 0 100 50 :z 0)
func builtinRect(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	c, err := corners(pa, 4)
	if err != nil {
		return nil, err
	}
	z, err := pa.float("z", 0)
	if err != nil {
		return nil, err
	}
	curve, err := outline.Rect(b.k, c[0], c[1], c[2], c[3], z)
	if err != nil {
		return nil, err
	}
	return &sexpCurve{curve: curve}, nil
}

// (rounded-rect 0 0 100 50 10 :z 0 :tolerance 0.01)
func builtinRoundedRect(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	c, err := corners(pa, 5)
	if err != nil {
		return nil, err
	}
	z, err := pa.float("z", 0)
	if err != nil {
		return nil, err
	}
	tol, err := pa.float("tolerance", outline.DefaultTolerance)
	if err != nil {
		return nil, err
	}
	curve, err := outline.RoundedRect(b.k, c[0], c[1], c[2], c[3], c[4], z, tol)
	if err != nil {
		return nil, err
	}
	return &sexpCurve{curve: curve}, nil
}

// (ellipse 60 40 :center (vec3 0 0 0) :rotation 30 :tolerance 0.01)
func builtinEllipse(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	r, err := corners(pa, 2)
	if err != nil {
		return nil, err
	}
	center := v3.Vec{}
	if v, ok := pa.kw["center"]; ok {
		if center, err = toVec3(v); err != nil {
			return nil, fmt.Errorf("center: %w", err)
		}
	}
	rot, err := pa.float("rotation", 0)
	if err != nil {
		return nil, err
	}
	tol, err := pa.float("tolerance", outline.DefaultTolerance)
	if err != nil {
		return nil, err
	}
	curve, err := outline.Ellipse(b.k, center.X, center.Y, r[0], r[1], rot*math.Pi/180, center.Z, tol)
	if err != nil {
		return nil, err
	}
	return &sexpCurve{curve: curve}, nil
}

// corners reads n leading positional numbers.
func corners(pa kwArgs, n int) ([]float64, error) {
	if len(pa.positional) != n {
		return nil, fmt.Errorf("requires %d numbers, got %d arguments", n, len(pa.positional))
	}
	out := make([]float64, n)
	for i, a := range pa.positional {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// (polyline (vec3 0 0 0) (vec3 10 0 0) ...)
func builtinPolyline(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	pts, err := toPoints(args)
	if err != nil {
		return nil, err
	}
	c, err := b.k.PolylineCurve(pts)
	if err != nil {
		return nil, err
	}
	return &sexpCurve{curve: c}, nil
}

// (interpolate (list (vec3 ...) ...) :start-tangent (vec3 ...) :end-tangent (vec3 ...))
func builtinInterpolate(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	pts, err := toPoints(pa.positional)
	if err != nil {
		return nil, err
	}
	var tangents [2]v3.Vec
	for i, key := range []string{"start-tangent", "end-tangent"} {
		if v, ok := pa.kw[key]; ok {
			if tangents[i], err = toVec3(v); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	c, err := b.k.Interpolate(pts, tangents[0], tangents[1])
	if err != nil {
		return nil, err
	}
	return &sexpCurve{curve: c}, nil
}

// (translate curve (vec3 0 0 10))
func builtinTranslate(_ *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("requires a curve and a vec3")
	}
	c, err := toCurve(args[0])
	if err != nil {
		return nil, err
	}
	v, err := toVec3(args[1])
	if err != nil {
		return nil, err
	}
	return &sexpCurve{curve: curves.Translate(c, v)}, nil
}

// (flip curve)
func builtinFlip(_ *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("requires a curve")
	}
	c, err := toCurve(args[0])
	if err != nil {
		return nil, err
	}
	return &sexpCurve{curve: c.Reverse()}, nil
}

// (defcontour "outer" curve)
func builtinDefcontour(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("requires a name and a curve")
	}
	name, err := toString(args[0])
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	c, err := toCurve(args[1])
	if err != nil {
		return nil, err
	}
	if err := b.job.AddContour(name, c); err != nil {
		return nil, err
	}
	return &sexpCurve{curve: c, name: name}, nil
}

// (contour "outer")
func builtinContour(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("requires a name")
	}
	name, err := toString(args[0])
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	c := b.job.Contour(name)
	if c == nil {
		return nil, fmt.Errorf("no contour named %q", name)
	}
	return &sexpCurve{curve: c, name: name}, nil
}

// (layers 20 2.5 :start 0) returns 20 heights 2.5 apart.
func builtinLayers(_ *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	v, err := corners(pa, 2)
	if err != nil {
		return nil, err
	}
	n := int(v[0])
	if n < 1 || float64(n) != v[0] {
		return nil, fmt.Errorf("count %g must be a positive integer", v[0])
	}
	start, err := pa.float("start", 0)
	if err != nil {
		return nil, err
	}
	items := make([]zygo.Sexp, n)
	for i := range items {
		items[i] = &zygo.SexpFloat{Val: start + float64(i)*v[1]}
	}
	return zygo.MakeList(items), nil
}

// slicerOptions reads the keywords shared by every slicer.
func (b *builder) slicerOptions(pa kwArgs) ([]slicer.Option, error) {
	opts := append([]slicer.Option(nil), b.opts...)
	name, err := pa.str("name", "")
	if err != nil {
		return nil, err
	}
	if name != "" {
		opts = append(opts, slicer.WithName(name))
	}
	if _, ok := pa.kw["precision"]; ok {
		p, err := pa.float("precision", slicer.DefaultPrecision)
		if err != nil {
			return nil, err
		}
		opts = append(opts, slicer.WithPrecision(p))
	}
	return opts, nil
}

// slice runs the slicer and wraps it as a program object.
func (b *builder) slice(s slicer.Slicer) (zygo.Sexp, error) {
	if err := s.Slice(); err != nil {
		return nil, err
	}
	return &sexpObject{obj: s}, nil
}

func heightsArg(pa kwArgs) ([]float64, error) {
	v, ok := pa.kw["heights"]
	if !ok {
		return nil, nil
	}
	h, err := toFloats(v)
	if err != nil {
		return nil, fmt.Errorf("heights: %w", err)
	}
	return h, nil
}

func contourArg(pa kwArgs) (kernel.Curve, error) {
	if len(pa.positional) != 1 {
		return nil, fmt.Errorf("requires one contour")
	}
	return toCurve(pa.positional[0])
}

// (closed-slicer contour :distance 5 :heights (layers 10 2) :seam 0.25
//                :seam-length 10 :transition :bezier :precision 0.1 :name "vase")
func builtinClosedSlicer(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	c, err := contourArg(pa)
	if err != nil {
		return nil, err
	}
	dist, err := pa.requireFloat("distance")
	if err != nil {
		return nil, err
	}
	seamLoc, err := pa.float("seam", 0)
	if err != nil {
		return nil, err
	}
	seamLen, err := pa.float("seam-length", 0)
	if err != nil {
		return nil, err
	}
	heights, err := heightsArg(pa)
	if err != nil {
		return nil, err
	}
	policy, err := pa.str("transition", transition.ClosedLinear.String())
	if err != nil {
		return nil, err
	}
	opts, err := b.slicerOptions(pa)
	if err != nil {
		return nil, err
	}
	opts = append(opts, slicer.WithClosedTransition(transition.ParseClosed(policy, &b.job.Diag)))
	return b.slice(slicer.NewClosedPlanar(b.k, c, seamLoc, seamLen, dist, heights, opts...))
}

// (open-slicer contour :distance 5 :heights (layers 10 2) :transition :bezier)
func builtinOpenSlicer(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	c, err := contourArg(pa)
	if err != nil {
		return nil, err
	}
	dist, err := pa.requireFloat("distance")
	if err != nil {
		return nil, err
	}
	heights, err := heightsArg(pa)
	if err != nil {
		return nil, err
	}
	policy, err := pa.str("transition", transition.OpenLinear.String())
	if err != nil {
		return nil, err
	}
	opts, err := b.slicerOptions(pa)
	if err != nil {
		return nil, err
	}
	opts = append(opts, slicer.WithOpenTransition(transition.ParseOpen(policy, &b.job.Diag)))
	return b.slice(slicer.NewOpenPlanar(b.k, c, dist, heights, opts...))
}

// (curves-slicer (list c1 c2 c3) :distance 5 :seam 0 :seam-length 10 :transition :linear)
func builtinCurvesSlicer(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 1 {
		return nil, fmt.Errorf("requires a list of contours")
	}
	cs, err := toCurves(pa.positional[0])
	if err != nil {
		return nil, err
	}
	dist, err := pa.requireFloat("distance")
	if err != nil {
		return nil, err
	}
	seamLoc, err := pa.float("seam", 0)
	if err != nil {
		return nil, err
	}
	seamLen, err := pa.float("seam-length", 0)
	if err != nil {
		return nil, err
	}
	policy, err := pa.str("transition", transition.ClosedLinear.String())
	if err != nil {
		return nil, err
	}
	opts, err := b.slicerOptions(pa)
	if err != nil {
		return nil, err
	}
	opts = append(opts, slicer.WithClosedTransition(transition.ParseClosed(policy, &b.job.Diag)))
	return b.slice(slicer.NewCurves(b.k, cs, seamLoc, seamLen, dist, opts...))
}

// (add-variable s "E" :per-mm 0.05) appends the cumulative value
// per-mm times the distance along the path. (add-variable s "S" :value 1)
// appends a constant.
func builtinAddVariable(_ *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 2 {
		return nil, fmt.Errorf("requires a slicer and a prefix")
	}
	s, err := toSlicer(pa.positional[0])
	if err != nil {
		return nil, err
	}
	prefix, err := toString(pa.positional[1])
	if err != nil {
		return nil, fmt.Errorf("prefix: %w", err)
	}
	_, perMM := pa.kw["per-mm"]
	_, constant := pa.kw["value"]
	if perMM == constant {
		return nil, fmt.Errorf("requires exactly one of :per-mm or :value")
	}
	factor, err := pa.float("per-mm", 0)
	if err != nil {
		return nil, err
	}
	value, err := pa.float("value", 0)
	if err != nil {
		return nil, err
	}

	dist := s.DistanceAlongPath()
	byLayer := s.FramesByLayer()
	values := make([][]float64, len(byLayer))
	n := 0
	for i, layer := range byLayer {
		values[i] = make([]float64, len(layer))
		for j := range layer {
			if perMM {
				values[i][j] = dist[n] * factor
			} else {
				values[i][j] = value
			}
			n++
		}
	}
	if err := s.AddVariable(prefix, values); err != nil {
		return nil, err
	}
	return &sexpObject{obj: s}, nil
}

// (temperature :hot-end 200 :bed 60 :wait true)
func builtinTemperature(_ *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	hot, err := pa.float("hot-end", 0)
	if err != nil {
		return nil, err
	}
	bed, err := pa.float("bed", 0)
	if err != nil {
		return nil, err
	}
	return &sexpObject{obj: program.SetTemperature{HotEnd: hot, Bed: bed, Wait: pa.flag("wait")}}, nil
}

// (feed-rate 1500)
func builtinFeedRate(_ *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("requires a rate")
	}
	f, err := toFloat64(args[0])
	if err != nil {
		return nil, err
	}
	return &sexpObject{obj: program.FeedRate{Rate: f}}, nil
}

// (code "G28")
func builtinCode(_ *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("requires one line")
	}
	s, err := toString(args[0])
	if err != nil {
		return nil, err
	}
	return &sexpObject{obj: program.CodeLine{Code: s}}, nil
}

// (group "walls" obj ...)
func builtinGroup(_ *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("requires a name")
	}
	name, err := toString(args[0])
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	g := program.Group{Name: name}
	for i, a := range args[1:] {
		o, err := toObject(a)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i+1, err)
		}
		g.Objects = append(g.Objects, o)
	}
	return &sexpObject{obj: g}, nil
}

// (program obj ...) appends objects to the job in order.
func builtinProgram(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
	for i, a := range args {
		o, err := toObject(a)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i+1, err)
		}
		b.job.Add(o)
	}
	return zygo.SexpNull, nil
}
