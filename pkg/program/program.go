// Package program turns toolpath objects into ordered machine program
// lines. Every object contributes its own lines to a Generator; the
// Generator wraps them in a fixed header and footer.
package program

import (
	"fmt"
	"slices"
)

const (
	// Name is the generator name written in the header.
	Name = "Salad Slicer"
	// License is the license written in the header.
	License = "GPL v3"
	// DefaultVersion is used when no version is configured.
	DefaultVersion = "1.0.0"
)

const rule = "; ----------------------------------------------------------------------"

// Object is anything that contributes lines to a program.
type Object interface {
	ToProgram(g *Generator)
}

// SingleStringer is implemented by objects that can be written on one line.
type SingleStringer interface {
	ToSingleString() string
}

// VariableAdder is implemented by objects that accept extra per-frame
// words, one value per frame per layer.
type VariableAdder interface {
	AddVariable(prefix string, values [][]float64) error
}

// Generator accumulates program lines. It is not safe for concurrent use.
type Generator struct {
	version string
	lines   []string
}

// NewGenerator returns a generator that writes version in the header.
func NewGenerator(version string) *Generator {
	if version == "" {
		version = DefaultVersion
	}
	return &Generator{version: version}
}

// Version returns the version written in the header.
func (g *Generator) Version() string {
	return g.version
}

// AddLine appends one line.
func (g *Generator) AddLine(line string) {
	g.lines = append(g.lines, line)
}

// AddLines appends lines in order.
func (g *Generator) AddLines(lines ...string) {
	g.lines = append(g.lines, lines...)
}

// Lines returns a copy of the accumulated lines.
func (g *Generator) Lines() []string {
	return slices.Clone(g.lines)
}

// CreateProgram clears the accumulator, writes the header, lets every
// object write its lines in order, writes the footer and returns the lines.
func (g *Generator) CreateProgram(objects []Object) []string {
	g.lines = nil
	g.AddLines(HeaderLines(g.version)...)
	for _, o := range objects {
		if o != nil {
			o.ToProgram(g)
		}
	}
	g.AddLines(FooterLines()...)
	return g.Lines()
}

// HeaderLines returns the fixed program header.
func HeaderLines(version string) []string {
	return []string{
		rule,
		fmt.Sprintf("; This program was generated by %s v%s (%s).", Name, version, License),
		rule,
		"",
		"G21 ; millimeters",
		"G90 ; absolute coordinates",
		"",
	}
}

// FooterLines returns the fixed program footer. The last line is M30.
func FooterLines() []string {
	return []string{
		"",
		"",
		"; END OF PROGRAM",
		"M30",
	}
}
