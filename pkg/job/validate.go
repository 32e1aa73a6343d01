package job

import (
	"fmt"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/program"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/slicer"
)

// Severity indicates whether a finding blocks program generation or is
// merely informational.
type Severity int

const (
	SeverityError   Severity = iota // blocks program generation
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding describes a single validation result.
type Finding struct {
	Object   string // which object has the problem (empty if job-level)
	Message  string
	Severity Severity
}

func (f Finding) Error() string {
	if f.Object == "" {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Object, f.Message)
}

// Result separates blocking findings from advisory ones.
type Result struct {
	Errors   []Finding
	Warnings []Finding
}

// OK reports whether there are no blocking findings.
func (r Result) OK() bool { return len(r.Errors) == 0 }

func (r *Result) add(f Finding) {
	if f.Severity == SeverityWarning {
		r.Warnings = append(r.Warnings, f)
		return
	}
	r.Errors = append(r.Errors, f)
}

// Limits are the machine limits objects are checked against. A zero
// limit is not checked.
type Limits struct {
	MaxHotEnd   float64
	MaxBed      float64
	MaxFeedRate float64
}

// Validate checks a job against the machine limits. It never mutates
// the job; slicers must already be sliced.
func Validate(j *Job, lim Limits) Result {
	var r Result
	for _, w := range j.Diag.Warnings() {
		r.add(Finding{Object: w.Source, Message: w.Message, Severity: SeverityWarning})
	}
	if len(j.Objects) == 0 {
		r.add(Finding{Message: "job has no program objects", Severity: SeverityError})
		return r
	}

	var (
		seenTemp, seenFeed bool
		slicers            int
		names              = make(map[string]bool)
	)
	j.Walk(func(o program.Object, _ []string) bool {
		switch v := o.(type) {
		case program.SetTemperature:
			seenTemp = true
			checkTemperature(&r, v, lim)
		case program.FeedRate:
			seenFeed = true
			checkFeedRate(&r, v, lim)
		case slicer.Slicer:
			label := "slicer " + Label(v, slicers)
			if slicers == 0 {
				if !seenTemp {
					r.add(Finding{Object: label, Message: "no temperature is set before the first slicer", Severity: SeverityWarning})
				}
				if !seenFeed {
					r.add(Finding{Object: label, Message: "no feed rate is set before the first slicer", Severity: SeverityWarning})
				}
			}
			slicers++
			if n := v.Name(); n != "" {
				if names[n] {
					r.add(Finding{Object: label, Message: "slicer name is used more than once", Severity: SeverityWarning})
				}
				names[n] = true
			}
			checkSlicer(&r, label, v)
		}
		return true
	})
	if slicers == 0 {
		r.add(Finding{Message: "job has no slicer", Severity: SeverityWarning})
	}
	return r
}

func checkTemperature(r *Result, t program.SetTemperature, lim Limits) {
	const obj = "temperature"
	if t.HotEnd < 0 || t.Bed < 0 {
		r.add(Finding{Object: obj, Message: "temperatures must not be negative", Severity: SeverityError})
	}
	if lim.MaxHotEnd > 0 && t.HotEnd > lim.MaxHotEnd {
		r.add(Finding{Object: obj, Message: fmt.Sprintf("hot end %g exceeds machine limit %g", t.HotEnd, lim.MaxHotEnd), Severity: SeverityError})
	}
	if lim.MaxBed > 0 && t.Bed > lim.MaxBed {
		r.add(Finding{Object: obj, Message: fmt.Sprintf("bed %g exceeds machine limit %g", t.Bed, lim.MaxBed), Severity: SeverityError})
	}
}

func checkFeedRate(r *Result, f program.FeedRate, lim Limits) {
	const obj = "feed rate"
	if f.Rate <= 0 {
		r.add(Finding{Object: obj, Message: fmt.Sprintf("feed rate %g must be positive", f.Rate), Severity: SeverityError})
	}
	if lim.MaxFeedRate > 0 && f.Rate > lim.MaxFeedRate {
		r.add(Finding{Object: obj, Message: fmt.Sprintf("feed rate %g exceeds machine limit %g", f.Rate, lim.MaxFeedRate), Severity: SeverityError})
	}
}

func checkSlicer(r *Result, label string, s slicer.Slicer) {
	if !s.Sliced() {
		r.add(Finding{Object: label, Message: "slicer has not been sliced", Severity: SeverityError})
		return
	}
	for _, w := range s.Warnings() {
		r.add(Finding{Object: label, Message: w.String(), Severity: SeverityWarning})
	}
	fs := s.Frames()
	if len(fs) > 0 && fs[0].Origin.Z < 0 {
		r.add(Finding{Object: label, Message: "path starts below the build plate", Severity: SeverityWarning})
	}
}
