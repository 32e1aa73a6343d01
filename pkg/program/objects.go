package program

import (
	"strings"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/frames"
)

// CodeLine is a free text line.
type CodeLine struct {
	Code string
}

func (c CodeLine) ToProgram(g *Generator) { g.AddLine(c.Code) }
func (c CodeLine) ToSingleString() string { return c.Code }

// AbsoluteCoordinate moves to a frame origin.
type AbsoluteCoordinate struct {
	Frame frames.Frame
}

// ToSingleString returns "X.. Y.. Z..".
func (a AbsoluteCoordinate) ToSingleString() string {
	o := a.Frame.Origin
	return "X" + FormatNumber(o.X) + " Y" + FormatNumber(o.Y) + " Z" + FormatNumber(o.Z)
}

func (a AbsoluteCoordinate) ToProgram(g *Generator) {
	g.AddLine("G1 " + a.ToSingleString())
}

// SetTemperature sets hot-end and bed temperatures. With Wait the machine
// blocks until both are reached.
type SetTemperature struct {
	HotEnd float64
	Bed    float64
	Wait   bool
}

func (s SetTemperature) lines() []string {
	hot, bed := "M104 S", "M140 S"
	if s.Wait {
		hot, bed = "M109 S", "M190 S"
	}
	return []string{hot + FormatNumber(s.HotEnd), bed + FormatNumber(s.Bed)}
}

func (s SetTemperature) ToProgram(g *Generator) { g.AddLines(s.lines()...) }
func (s SetTemperature) ToSingleString() string { return strings.Join(s.lines(), " ") }

// FeedRate sets the feed rate in mm/min.
type FeedRate struct {
	Rate float64
}

func (f FeedRate) ToSingleString() string { return "F" + FormatNumber(f.Rate) }
func (f FeedRate) ToProgram(g *Generator) { g.AddLine("G1 " + f.ToSingleString()) }

// Group is an ordered list of objects that writes its members in order.
// An empty group writes nothing.
type Group struct {
	Name    string
	Objects []Object
}

func (gr Group) ToProgram(g *Generator) {
	for _, o := range gr.Objects {
		if o != nil {
			o.ToProgram(g)
		}
	}
}

// ToSingleString joins the single-line forms of the members that have one.
func (gr Group) ToSingleString() string {
	var parts []string
	for _, o := range gr.Objects {
		if s, ok := o.(SingleStringer); ok {
			parts = append(parts, s.ToSingleString())
		}
	}
	return strings.Join(parts, " ")
}
