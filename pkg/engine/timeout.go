package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/job"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 10 * time.Second

// ErrSuperseded is returned by a superseding engine when a newer
// evaluation started before this one finished.
var ErrSuperseded = errors.New("evaluation superseded by newer request")

// evalResult passes evaluation results through channels.
type evalResult struct {
	job    *job.Job
	errors []EvalError
	err    error
}

// generationGuard tracks the newest evaluation of a superseding engine.
type generationGuard struct {
	mu  sync.Mutex
	gen uint64
}

// next starts a new evaluation and returns its generation.
func (l *generationGuard) next() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	return l.gen
}

// current reports whether gen is still the newest evaluation.
func (l *generationGuard) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen == gen
}

// waitWithTimeout waits for a result from ch for at most timeout. The
// evaluating goroutine keeps running after a timeout and its result is
// dropped. With a non-nil l, a result whose generation gen is no longer
// the newest is replaced by ErrSuperseded.
func waitWithTimeout(ch <-chan evalResult, gen uint64, timeout time.Duration, l *generationGuard) (*job.Job, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if l != nil && !l.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.job, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}
