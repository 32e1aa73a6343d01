// Package job defines the print job produced by a job script: named
// contours plus the ordered program objects that make up the program.
package job

import (
	"fmt"
	"slices"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/diag"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/program"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/slicer"
)

// Job is the result of evaluating one job script. Each evaluation
// produces a new Job; it is never shared between evaluations.
type Job struct {
	Name    string
	Objects []program.Object
	// Diag collects warnings raised while the job was built.
	Diag diag.Diagnostics

	contours map[string]kernel.Curve
	names    []string
}

// New creates an empty job.
func New(name string) *Job {
	return &Job{Name: name, contours: make(map[string]kernel.Curve)}
}

// AddContour registers a named contour. Names are unique within a job.
func (j *Job) AddContour(name string, c kernel.Curve) error {
	if name == "" {
		return fmt.Errorf("job: contour name is empty: %w", kernel.ErrArgument)
	}
	if c == nil {
		return fmt.Errorf("job: contour %q is nil: %w", name, kernel.ErrArgument)
	}
	if _, ok := j.contours[name]; ok {
		return fmt.Errorf("job: contour %q already defined: %w", name, kernel.ErrArgument)
	}
	j.contours[name] = c
	j.names = append(j.names, name)
	return nil
}

// Contour returns the contour with the given name, or nil.
func (j *Job) Contour(name string) kernel.Curve {
	return j.contours[name]
}

// ContourNames returns contour names in definition order.
func (j *Job) ContourNames() []string {
	return slices.Clone(j.names)
}

// Add appends program objects.
func (j *Job) Add(objs ...program.Object) {
	for _, o := range objs {
		if o != nil {
			j.Objects = append(j.Objects, o)
		}
	}
}

// Walk visits every object depth first, descending into groups. path
// holds the names of the enclosing groups. Returning false from fn stops
// the walk.
func (j *Job) Walk(fn func(o program.Object, path []string) bool) {
	var walk func(objs []program.Object, path []string) bool
	walk = func(objs []program.Object, path []string) bool {
		for _, o := range objs {
			if !fn(o, path) {
				return false
			}
			if g, ok := o.(program.Group); ok {
				if !walk(g.Objects, append(slices.Clone(path), g.Name)) {
					return false
				}
			}
		}
		return true
	}
	walk(j.Objects, nil)
}

// Slicers returns every slicer in program order.
func (j *Job) Slicers() []slicer.Slicer {
	var out []slicer.Slicer
	j.Walk(func(o program.Object, _ []string) bool {
		if s, ok := o.(slicer.Slicer); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

// Slice slices every slicer that has not been sliced yet and stops at the
// first failure.
func (j *Job) Slice() error {
	for i, s := range j.Slicers() {
		if s.Sliced() {
			continue
		}
		if err := s.Slice(); err != nil {
			return fmt.Errorf("job: slicer %s: %w", Label(s, i), err)
		}
	}
	return nil
}

// Program returns the complete program for the job.
func (j *Job) Program(version string) []string {
	return program.NewGenerator(version).CreateProgram(j.Objects)
}

// Label names a slicer for messages: its name, or its position.
func Label(s slicer.Slicer, i int) string {
	if s.Name() != "" {
		return fmt.Sprintf("%q", s.Name())
	}
	return fmt.Sprintf("#%d", i)
}
