package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/config"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/diag"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/engine"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/job"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/outline"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/preview"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/program"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/slicer"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/transition"
)

// colorPalette is a default palette used to assign distinct colors to previews.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App turns job scripts and drawings into programs.
type App struct {
	cfg    config.Config
	engine *engine.Engine
	kernel kernel.Kernel
	log    *slog.Logger
}

// PreviewData is the JSON-serializable path preview of one slicer.
type PreviewData struct {
	Vertices []float32 `json:"vertices"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of building one job.
type EvalResult struct {
	Program  []string        `json:"program"`
	Previews []PreviewData   `json:"previews"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// OK reports whether the result carries a program.
func (r EvalResult) OK() bool { return len(r.Errors) == 0 }

// NewApp creates an App whose engine and kernel follow cfg.
func NewApp(cfg config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	k := cfg.NewKernel()
	return &App{
		cfg:    cfg,
		engine: engine.NewEngine(engine.WithKernel(k), engine.WithReduction(cfg.Reduction())),
		kernel: k,
		log:    logger,
	}
}

func newResult() EvalResult {
	return EvalResult{
		Program:  []string{},
		Previews: []PreviewData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

// Evaluate runs a job script and returns its program, previews and
// findings. name labels the job in logs and in the program header.
func (a *App) Evaluate(name, source string) EvalResult {
	result := newResult()

	// Step 1: Evaluate the script into a job.
	j, evalErrs, err := a.engine.Evaluate(name, source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate failed", "job", name, "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		a.log.Debug("script errors", "job", name, "count", len(evalErrs))
		return result
	}

	return a.finish(j, result)
}

// DXFParams controls how contours read from a drawing are sliced.
type DXFParams struct {
	Distance   float64
	Seam       float64
	SeamLength float64
	Heights    []float64
	Transition string
	HotEnd     float64
	Bed        float64
	FeedRate   float64
}

// SliceDXF reads contours from a drawing and slices them. A single
// closed contour becomes a planar closed slicer stacked on p.Heights, a
// single open one a planar open slicer, and several contours a curves
// slicer in height order.
func (a *App) SliceDXF(name string, r io.Reader, p DXFParams) EvalResult {
	result := newResult()

	cs, err := outline.FromDXF(a.kernel, r)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	j := job.New(name)
	for i, c := range cs {
		if err := j.AddContour(fmt.Sprintf("dxf-%d", i), c); err != nil {
			result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
			return result
		}
	}
	if p.HotEnd > 0 || p.Bed > 0 {
		j.Add(program.SetTemperature{HotEnd: p.HotEnd, Bed: p.Bed})
	}
	if p.FeedRate > 0 {
		j.Add(program.FeedRate{Rate: p.FeedRate})
	}

	j.Add(a.dxfSlicer(name, cs, p, &j.Diag))

	if err := j.Slice(); err != nil {
		a.log.Error("slice failed", "job", name, "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	return a.finish(j, result)
}

// dxfSlicer picks the slicer for contours read from a drawing.
func (a *App) dxfSlicer(name string, cs []kernel.Curve, p DXFParams, d *diag.Diagnostics) slicer.Slicer {
	opts := []slicer.Option{slicer.WithName(name), slicer.WithReduction(a.cfg.Reduction())}
	switch {
	case len(cs) > 1:
		opts = append(opts, slicer.WithClosedTransition(transition.ParseClosed(p.Transition, d)))
		return slicer.NewCurves(a.kernel, cs, p.Seam, p.SeamLength, p.Distance, opts...)
	case cs[0].IsClosed():
		opts = append(opts, slicer.WithClosedTransition(transition.ParseClosed(p.Transition, d)))
		return slicer.NewClosedPlanar(a.kernel, cs[0], p.Seam, p.SeamLength, p.Distance, p.Heights, opts...)
	default:
		opts = append(opts, slicer.WithOpenTransition(transition.ParseOpen(p.Transition, d)))
		return slicer.NewOpenPlanar(a.kernel, cs[0], p.Distance, p.Heights, opts...)
	}
}

// finish validates a built job, then collects previews and the program.
func (a *App) finish(j *job.Job, result EvalResult) EvalResult {
	// Step 3: Check the job against the machine limits.
	v := job.Validate(j, job.Limits{
		MaxHotEnd:   a.cfg.Machine.MaxHotEnd,
		MaxBed:      a.cfg.Machine.MaxBed,
		MaxFeedRate: a.cfg.Machine.MaxFeedRate,
	})
	for _, f := range v.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: f.Error()})
	}
	for _, f := range v.Errors {
		result.Errors = append(result.Errors, EvalErrorData{Message: f.Error()})
	}
	if !v.OK() {
		a.log.Warn("job rejected", "job", j.Name, "errors", len(v.Errors))
		return result
	}

	// Step 4: Flatten slicer paths for previewing.
	polys, err := preview.Collect(j.Objects, a.kernel)
	if err != nil {
		a.log.Error("preview failed", "job", j.Name, "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "preview failed: " + err.Error()})
		return result
	}
	for i, p := range polys {
		result.Previews = append(result.Previews, PreviewData{
			Vertices: p.Vertices,
			Name:     p.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}

	// Step 5: Write the program.
	result.Program = j.Program(a.cfg.Program.Version)
	a.log.Info("job built",
		"job", j.Name,
		"slicers", len(j.Slicers()),
		"lines", len(result.Program),
		"warnings", len(result.Warnings))
	return result
}
