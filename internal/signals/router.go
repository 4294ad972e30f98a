package signals

import (
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/dshills/luainit/internal/proc"
)

// Router receives signals delivered to the supervisor process and
// forwards them to the running tracked children (the foreground-process
// convention expected of PID 1). SIGCHLD is consumed internally to wake
// the reaper and is never forwarded.
//
// Forwarding is best-effort and concurrent across children; no ordering
// is guaranteed between recipients, and delivery to a child that exited
// but has not been reaped yet is a silent no-op.
type Router struct {
	registry *proc.Registry
	reaper   *proc.Reaper

	ch       chan os.Signal
	done     chan struct{}
	stopOnce sync.Once
}

// NewRouter creates a router and immediately subscribes it to the
// catchable signal set, so no delivery is lost between construction and
// Run.
func NewRouter(registry *proc.Registry, reaper *proc.Reaper) *Router {
	r := &Router{
		registry: registry,
		reaper:   reaper,
		ch:       make(chan os.Signal, 16),
		done:     make(chan struct{}),
	}
	signal.Notify(r.ch, Catchable()...)
	return r
}

// Run dispatches received signals until Stop is called. It should run
// on its own goroutine for the supervisor's lifetime.
func (r *Router) Run() {
	for {
		select {
		case <-r.done:
			return
		case sig := <-r.ch:
			if sig == unix.SIGCHLD {
				r.reaper.Wake()
				continue
			}
			r.forward(sig)
		}
	}
}

// Stop unsubscribes the router and terminates its run loop.
func (r *Router) Stop() {
	r.stopOnce.Do(func() {
		signal.Stop(r.ch)
		close(r.done)
	})
}

// forward delivers sig to every currently running tracked child.
// Delivery errors are swallowed: a target vanishing between lookup and
// send is a benign race, not a failure.
func (r *Router) forward(sig os.Signal) {
	s, ok := sig.(unix.Signal)
	if !ok {
		return
	}
	for _, c := range r.registry.Running() {
		go func(c *proc.Child) {
			_, _ = c.Kill(s)
		}(c)
	}
}
