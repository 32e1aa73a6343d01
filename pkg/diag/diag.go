// Package diag carries non-fatal diagnostics. Orchestration layers record
// recoverable problems here, such as an unknown transition policy that was
// replaced by the default, while hard failures stay in error returns.
package diag

import (
	"fmt"
	"slices"
)

// Warning is a recoverable problem reported by a component.
type Warning struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Source == "" {
		return w.Message
	}
	return w.Source + ": " + w.Message
}

// Diagnostics collects warnings. The zero value is ready to use and a nil
// *Diagnostics discards everything.
type Diagnostics struct {
	warnings []Warning
}

// Warnf records a formatted warning.
func (d *Diagnostics) Warnf(source, format string, args ...any) {
	if d == nil {
		return
	}
	d.warnings = append(d.warnings, Warning{Source: source, Message: fmt.Sprintf(format, args...)})
}

// Add appends warnings collected elsewhere.
func (d *Diagnostics) Add(ws ...Warning) {
	if d == nil {
		return
	}
	d.warnings = append(d.warnings, ws...)
}

// Warnings returns a copy of the recorded warnings.
func (d *Diagnostics) Warnings() []Warning {
	if d == nil {
		return nil
	}
	return slices.Clone(d.warnings)
}

// Len returns the number of recorded warnings.
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	return len(d.warnings)
}

// Reset drops all warnings.
func (d *Diagnostics) Reset() {
	if d != nil {
		d.warnings = nil
	}
}
