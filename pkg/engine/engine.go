// Package engine evaluates job scripts. It wraps zygomys in a sandboxed
// environment and produces a job.Job from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/diag"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/frames"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/job"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel/polycurve"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/slicer"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced while building or
// validating a job.
type EvalWarning struct {
	Source  string
	Message string
}

func (w EvalWarning) String() string {
	return diag.Warning{Source: w.Source, Message: w.Message}.String()
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment and
// concurrent evaluations are independent unless WithSupersede is set.
type Engine struct {
	k         kernel.Kernel
	reduction frames.Reduction
	timeout   time.Duration

	// latest is non-nil for superseding engines.
	latest *generationGuard
}

// Option configures an Engine.
type Option func(*Engine)

// WithKernel sets the geometry kernel used by the builtins.
func WithKernel(k kernel.Kernel) Option {
	return func(e *Engine) { e.k = k }
}

// WithReduction sets the frame reduction constants passed to every slicer.
func WithReduction(r frames.Reduction) Option {
	return func(e *Engine) { e.reduction = r }
}

// WithTimeout sets the hard limit for a single evaluation.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithSupersede makes every evaluation cancel the result of any
// evaluation still in flight: the older call returns ErrSuperseded. This
// suits editors that re-evaluate on every keystroke.
func WithSupersede() Option {
	return func(e *Engine) { e.latest = &generationGuard{} }
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		k:         polycurve.New(),
		reduction: frames.DefaultReduction(),
		timeout:   EvalTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Kernel returns the geometry kernel used by the builtins.
func (e *Engine) Kernel() kernel.Kernel { return e.k }

// Evaluate runs a job script and returns the job it built. name labels
// the job. Each call creates a fresh zygomys sandbox.
//
// Return semantics:
//   - On success: returns job + nil errors + nil error
//   - On parse/eval failure: returns nil job + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(name, source string) (*job.Job, []EvalError, error) {
	var gen uint64
	if e.latest != nil {
		gen = e.latest.next()
	}

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		j, evalErrs, err := e.evaluate(name, source)
		ch <- evalResult{job: j, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, e.timeout, e.latest)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(name, source string) (*job.Job, []EvalError, error) {
	j := job.New(name)

	// Empty source is a valid script that produces an empty job.
	if strings.TrimSpace(source) == "" {
		return j, nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, &builder{
		k:    e.k,
		opts: []slicer.Option{slicer.WithReduction(e.reduction)},
		job:  j,
	})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return j, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?is)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?is)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalErrors, keeping the
// line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
