// Package sched maintains the supervisor's recurring timer jobs. Each
// job fires on its own cadence; unrelated jobs are never serialized
// behind one another.
package sched

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Job is one recurring timer registration.
//
// The fire schedule is tick-to-tick: the next deadline advances by the
// interval regardless of how long an invocation takes. A tick that
// arrives while the previous invocation is still in flight is skipped
// rather than queued, so a slow callback causes missed firings, never an
// unbounded backlog.
type Job struct {
	id       string
	interval time.Duration

	// running guards against overlapping invocations (skip policy).
	running atomic.Bool

	// fired counts invocations actually started, for observation.
	fired atomic.Int64
}

// ID returns the job's unique identity.
func (j *Job) ID() string {
	return j.id
}

// Interval returns the registered firing interval.
func (j *Job) Interval() time.Duration {
	return j.interval
}

// Fired returns the number of invocations started so far.
func (j *Job) Fired() int64 {
	return j.fired.Load()
}

// Scheduler runs the set of recurring jobs. Jobs have no cancel
// primitive; they live until the scheduler is stopped at process exit.
type Scheduler struct {
	mu   sync.Mutex
	jobs map[string]*Job

	done     chan struct{}
	stopOnce sync.Once
	errw     io.Writer
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithErrorWriter redirects callback panic reports, which default to
// stderr.
func WithErrorWriter(w io.Writer) Option {
	return func(s *Scheduler) {
		s.errw = w
	}
}

// New creates an empty scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs: make(map[string]*Job),
		done: make(chan struct{}),
		errw: os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Every registers fire to be invoked every interval and returns the job
// handle immediately; registration never blocks the caller. Each
// invocation runs on its own goroutine so a slow fire neither delays
// other jobs nor the registrant.
func (s *Scheduler) Every(interval time.Duration, fire func()) *Job {
	job := &Job{
		id:       uuid.New().String(),
		interval: interval,
	}

	s.mu.Lock()
	s.jobs[job.id] = job
	s.mu.Unlock()

	go s.run(job, fire)
	return job
}

// Count returns the number of registered jobs.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Stop terminates all job tickers. In-flight invocations are left to
// finish on their own.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

func (s *Scheduler) run(job *Job, fire func()) {
	ticker := time.NewTicker(job.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if !job.running.CompareAndSwap(false, true) {
				continue // previous invocation still in flight: skip
			}
			job.fired.Add(1)
			go func() {
				defer job.running.Store(false)
				// A panicking callback is contained and reported; its
				// job keeps firing.
				defer func() {
					if v := recover(); v != nil {
						fmt.Fprintf(s.errw, "job %s: callback panic: %v\n", job.id, v)
					}
				}()
				fire()
			}()
		}
	}
}
