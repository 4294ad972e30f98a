package proc

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSpawnEchoCapturesStdout(t *testing.T) {
	registry := startReaper(t)

	c, err := registry.Spawn("echo", "hello")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if c.PID() <= 0 {
		t.Errorf("expected positive pid, got %d", c.PID())
	}
	if c.Program() != "echo" {
		t.Errorf("expected program echo, got %q", c.Program())
	}

	waitDone(t, c, 5*time.Second)
	waitClosed(t, c.StdoutDone(), "stdout drain", 2*time.Second)
	waitClosed(t, c.StderrDone(), "stderr drain", 2*time.Second)

	if got := string(c.Stdout()); got != "hello\n" {
		t.Errorf("expected stdout %q, got %q", "hello\n", got)
	}
	if got := c.Stderr(); len(got) != 0 {
		t.Errorf("expected empty stderr, got %q", got)
	}
	if c.ExitCode() != 0 {
		t.Errorf("expected exit code 0, got %d", c.ExitCode())
	}

	// Captured content is final: repeated reads see identical bytes.
	first := c.Stdout()
	second := c.Stdout()
	if !bytes.Equal(first, second) {
		t.Error("repeated stdout reads disagree")
	}
}

func TestSpawnCapturesStderr(t *testing.T) {
	registry := startReaper(t)

	c, err := registry.Spawn("sh", "-c", "echo oops 1>&2")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	waitDone(t, c, 5*time.Second)
	waitClosed(t, c.StderrDone(), "stderr drain", 2*time.Second)

	if got := string(c.Stderr()); got != "oops\n" {
		t.Errorf("expected stderr %q, got %q", "oops\n", got)
	}
	if got := c.Stdout(); len(got) != 0 {
		t.Errorf("expected empty stdout, got %q", got)
	}
}

func TestSpawnFailure(t *testing.T) {
	registry := startReaper(t)

	_, err := registry.Spawn("no-such-binary-luainit-test")
	if err == nil {
		t.Fatal("expected spawn failure for missing executable")
	}
	if !strings.Contains(err.Error(), "spawn") {
		t.Errorf("unexpected error text: %v", err)
	}
	if registry.Count() != 0 {
		t.Errorf("failed spawn must not be registered, count = %d", registry.Count())
	}
}

func TestSpawnChildEnv(t *testing.T) {
	registry := startReaper(t, WithChildEnv("LUAINIT_TEST_VALUE=42"))

	c, err := registry.Spawn("sh", "-c", "printf %s \"$LUAINIT_TEST_VALUE\"")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	waitDone(t, c, 5*time.Second)
	waitClosed(t, c.StdoutDone(), "stdout drain", 2*time.Second)

	if got := string(c.Stdout()); got != "42" {
		t.Errorf("expected child env value %q, got %q", "42", got)
	}
}

func TestConcurrentFastExitsAllResolve(t *testing.T) {
	registry := startReaper(t)

	// Children that exit almost immediately stress the window between
	// process start and registration: a status collected in that window
	// must still reach its handle, never be discarded as an orphan's.
	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				c, err := registry.Spawn("true")
				if err != nil {
					errs <- fmt.Errorf("spawn: %w", err)
					return
				}
				select {
				case <-c.Done():
				case <-time.After(5 * time.Second):
					errs <- fmt.Errorf("pid %d never reached a terminal state", c.PID())
					return
				}
				if c.State() != StateExited || c.ExitCode() != 0 {
					errs <- fmt.Errorf("pid %d: state %v code %d", c.PID(), c.State(), c.ExitCode())
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestRegistryEntryRemovedAfterDrain(t *testing.T) {
	registry := startReaper(t)

	c, err := registry.Spawn("echo", "bye")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	pid := c.PID()
	waitDone(t, c, 5*time.Second)

	deadline := time.Now().Add(5 * time.Second)
	for registry.Get(pid) != nil {
		if time.Now().After(deadline) {
			t.Fatal("registry entry not removed after reap and drain")
		}
		time.Sleep(2 * time.Millisecond)
	}

	// The handle survives registry removal.
	if got := string(c.Stdout()); got != "bye\n" {
		t.Errorf("expected stdout %q after removal, got %q", "bye\n", got)
	}
}
