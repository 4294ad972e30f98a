package proc

import (
	"testing"
	"time"
)

// startReaper builds a registry with a running reaper. Tests have no
// signal router, so a ticker stands in for SIGCHLD wakes.
func startReaper(t *testing.T, opts ...RegistryOption) *Registry {
	t.Helper()

	registry := NewRegistry(opts...)
	reaper := NewReaper(registry)
	go reaper.Run()

	stop := make(chan struct{})
	go func() {
		tick := time.NewTicker(2 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				reaper.Wake()
			}
		}
	}()

	t.Cleanup(func() {
		close(stop)
		reaper.Stop()
	})
	return registry
}

func waitDone(t *testing.T, c *Child, timeout time.Duration) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(timeout):
		t.Fatalf("child %d did not reach a terminal state within %v", c.PID(), timeout)
	}
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string, timeout time.Duration) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("%s not finished within %v", what, timeout)
	}
}
