package proc

import (
	"sync"

	"golang.org/x/sys/unix"
)

// Reaper collects exit statuses for all terminated descendants.
//
// It runs for the supervisor's lifetime, waking on child-state-change
// notifications (SIGCHLD, delivered through Wake). One notification may
// stand for several exits, so every wake drains with a non-blocking
// Wait4 loop until no more children report. Tracked pids transition
// their Child handle; unknown pids are reparented orphans whose status
// is discarded after collection, which is all the init contract needs.
type Reaper struct {
	registry *Registry

	// notify has capacity 1: coalescing extra wakes is fine because a
	// single drain pass collects everything reapable.
	notify chan struct{}

	done     chan struct{}
	stopOnce sync.Once
}

// NewReaper creates a reaper over the given registry.
func NewReaper(registry *Registry) *Reaper {
	return &Reaper{
		registry: registry,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Wake notifies the reaper that a child may have changed state.
// Non-blocking and safe from any goroutine, including the signal
// router's.
func (r *Reaper) Wake() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Run processes wake notifications until Stop is called. It should run
// on its own goroutine for the supervisor's lifetime.
func (r *Reaper) Run() {
	for {
		select {
		case <-r.done:
			return
		case <-r.notify:
			r.drainExited()
		}
	}
}

// Stop terminates the run loop. Used only at process teardown.
func (r *Reaper) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
}

// drainExited collects every child that has terminated since the last
// pass. Wait errors are benign races: ECHILD means no children exist,
// EINTR means retry. Neither is ever fatal to the supervisor.
func (r *Reaper) drainExited() {
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)
		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			return
		case pid <= 0:
			return
		}

		// Get waits out an in-flight spawn's registration, which holds
		// the registry lock from start through insertion.
		if c := r.registry.Get(pid); c != nil {
			c.finish(ws)
		}
		// Unknown pid: orphan reparented to us. Collecting the status
		// was the whole point; nothing to record.
	}
}
