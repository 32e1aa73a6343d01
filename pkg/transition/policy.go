// Package transition builds the connector curves between successive
// contours and joins contours and connectors into one continuous path.
package transition

import (
	"fmt"
	"strings"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/diag"
)

// ClosedTransition selects how closed contours are joined.
type ClosedTransition int

const (
	ClosedLinear ClosedTransition = iota
	ClosedBezier
	ClosedInterpolated
)

var closedNames = [...]string{"linear", "bezier", "interpolated"}

func (t ClosedTransition) String() string {
	if t.Valid() {
		return closedNames[t]
	}
	return fmt.Sprintf("ClosedTransition(%d)", int(t))
}

// Valid reports whether t is a known policy.
func (t ClosedTransition) Valid() bool {
	return t >= ClosedLinear && t <= ClosedInterpolated
}

// OpenTransition selects how open contours are joined.
type OpenTransition int

const (
	OpenLinear OpenTransition = iota
	OpenBezier
)

var openNames = [...]string{"linear", "bezier"}

func (t OpenTransition) String() string {
	if t.Valid() {
		return openNames[t]
	}
	return fmt.Sprintf("OpenTransition(%d)", int(t))
}

// Valid reports whether t is a known policy.
func (t OpenTransition) Valid() bool {
	return t >= OpenLinear && t <= OpenBezier
}

// CheckClosed returns t, or ClosedLinear with a warning when t is unknown.
func CheckClosed(t ClosedTransition, d *diag.Diagnostics) ClosedTransition {
	if t.Valid() {
		return t
	}
	d.Warnf("transition", "unknown closed transition %d, using %s", int(t), ClosedLinear)
	return ClosedLinear
}

// CheckOpen returns t, or OpenLinear with a warning when t is unknown.
func CheckOpen(t OpenTransition, d *diag.Diagnostics) OpenTransition {
	if t.Valid() {
		return t
	}
	d.Warnf("transition", "unknown open transition %d, using %s", int(t), OpenLinear)
	return OpenLinear
}

// ParseClosed maps a policy name to a ClosedTransition. Unknown names
// produce a warning and ClosedLinear.
func ParseClosed(name string, d *diag.Diagnostics) ClosedTransition {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range closedNames {
		if s == n {
			return ClosedTransition(i)
		}
	}
	d.Warnf("transition", "unknown closed transition %q, using %s", name, ClosedLinear)
	return ClosedLinear
}

// ParseOpen maps a policy name to an OpenTransition. Unknown names
// produce a warning and OpenLinear.
func ParseOpen(name string, d *diag.Diagnostics) OpenTransition {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range openNames {
		if s == n {
			return OpenTransition(i)
		}
	}
	d.Warnf("transition", "unknown open transition %q, using %s", name, OpenLinear)
	return OpenLinear
}
