package proc

import (
	"os"
	"sync"
)

// Registry is the process-wide table of children spawned by this
// supervisor, keyed by pid.
//
// Every pid returned by a successful Spawn has exactly one entry until
// it is reaped and drained. A pid that reappears after removal (OS pid
// reuse) is a distinct, later entry. Registry is safe for concurrent
// use; mutation happens only on the Spawn path, in the Reaper, and in
// the drain goroutine.
type Registry struct {
	mu       sync.RWMutex
	children map[int]*Child

	// childEnv is appended to the supervisor's environment for every
	// spawned child. Empty means plain inheritance.
	childEnv []string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithChildEnv appends the given KEY=VALUE entries to the environment of
// every spawned child.
func WithChildEnv(env ...string) RegistryOption {
	return func(r *Registry) {
		r.childEnv = append(r.childEnv, env...)
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{children: make(map[int]*Child)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the child tracked under pid, or nil.
func (r *Registry) Get(pid int) *Child {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.children[pid]
}

// Running returns the currently running tracked children. This is the
// implicit signal-routing table: forwarded signals go to exactly this
// set.
func (r *Registry) Running() []*Child {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Child
	for _, c := range r.children {
		if c.IsRunning() {
			result = append(result, c)
		}
	}
	return result
}

// Count returns the number of tracked children.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.children)
}

func (r *Registry) remove(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.children, pid)
}

func (r *Registry) env() []string {
	if len(r.childEnv) == 0 {
		return nil // inherit
	}
	return append(os.Environ(), r.childEnv...)
}
