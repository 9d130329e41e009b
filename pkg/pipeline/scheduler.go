package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/flowatlas/flowatlas/pkg/spec"
)

// Outcome is the terminal state of a scheduled pipeline run.
type Outcome struct {
	// RequestID identifies the run.
	RequestID string

	// Result is the pipeline output. Nil when Err is set or the run was
	// superseded.
	Result *Result

	// Err is the pipeline error, if any. A superseded run reports no error.
	Err error

	// Superseded is true when a newer request arrived before this run
	// finished. The run's context was cancelled and any partial result
	// discarded.
	Superseded bool
}

// Scheduler serializes pipeline runs with latest-wins semantics: submitting
// a new request cancels the in-flight one. This is the execution model for
// interactive callers where only the most recent document state matters.
//
// A Scheduler is safe for concurrent use.
type Scheduler struct {
	runner *Runner

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewScheduler wraps a runner with latest-wins scheduling.
func NewScheduler(r *Runner) *Scheduler {
	return &Scheduler{runner: r}
}

// Submit starts a pipeline run for the given documents, cancelling any run
// still in flight. The returned channel delivers exactly one Outcome and is
// then closed.
func (s *Scheduler) Submit(ctx context.Context, docs []spec.Document, opts Options) <-chan Outcome {
	id := uuid.NewString()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		defer cancel()

		result, err := s.runner.Execute(runCtx, docs, opts)

		if !s.isCurrent(gen) {
			// A newer request owns the pipeline now; this run's output,
			// complete or not, must not reach the caller.
			out <- Outcome{RequestID: id, Superseded: true}
			return
		}
		out <- Outcome{RequestID: id, Result: result, Err: err}
	}()
	return out
}

// Cancel aborts the in-flight run, if any, without starting a new one.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Scheduler) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}
