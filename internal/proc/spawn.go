package proc

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// Spawn starts program with the given arguments and returns its handle.
//
// Stdout and stderr are piped into the handle's capture buffers; stdin
// is not connected (the supervision primitive is one-shot, not a
// general process-control API). Spawn failure is reported synchronously
// and leaves no registry entry.
//
// The child's exit status is collected by the Reaper, not by Cmd.Wait:
// the process handle is released immediately after start so that the
// single Wait4 path owns status collection for tracked children and
// orphans alike.
func (r *Registry) Spawn(program string, args ...string) (*Child, error) {
	cmd := exec.Command(program, args...)
	cmd.Env = r.env()

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("spawn %s: stdout pipe: %w", program, err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, fmt.Errorf("spawn %s: stderr pipe: %w", program, err)
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	// The write lock spans start and registration. A fast-exiting child
	// can raise SIGCHLD before registration completes; the Reaper's pid
	// lookup blocks behind this critical section instead of classifying
	// the child as an untracked orphan and discarding its status.
	r.mu.Lock()
	if err := cmd.Start(); err != nil {
		r.mu.Unlock()
		stdoutR.Close()
		stdoutW.Close()
		stderrR.Close()
		stderrW.Close()
		return nil, fmt.Errorf("spawn %s: %w", program, err)
	}

	pid := cmd.Process.Pid
	// The Reaper collects the status; drop the exec handle so nothing
	// else can wait on this pid.
	_ = cmd.Process.Release()

	c := newChild(pid, program, args)
	r.children[pid] = c
	r.mu.Unlock()

	// Close the parent's copies of the write ends so the captures see
	// end-of-stream when the child side closes.
	stdoutW.Close()
	stderrW.Close()

	go r.drain(c, stdoutR, stderrR)

	return c, nil
}

// drain reads both output streams to end-of-stream, then waits for the
// exit status to be collected and removes the registry entry. The entry
// lives until both conditions hold, which keeps the reaping correlation
// valid even when the script drops its handle early.
func (r *Registry) drain(c *Child, stdout, stderr *os.File) {
	var g errgroup.Group
	g.Go(func() error { return c.stdout.drainFrom(stdout) })
	g.Go(func() error { return c.stderr.drainFrom(stderr) })
	_ = g.Wait() // read errors finalize the captures either way

	<-c.Done()
	r.remove(c.pid)
}
