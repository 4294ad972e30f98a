package proc

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// State represents the lifecycle state of a child process.
type State int32

const (
	// StateRunning indicates the process is currently running.
	StateRunning State = iota
	// StateExited indicates the process exited on its own.
	StateExited
	// StateKilled indicates the process was terminated by a signal.
	StateKilled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Child is the handle for one spawned process.
//
// A Child transitions from StateRunning to exactly one of StateExited or
// StateKilled, once, when the Reaper collects its status. The command
// descriptor and pid are immutable after spawn. Output buffers are
// written only by the child's own drain goroutine and must be read only
// after the corresponding done channel closes.
type Child struct {
	pid     int
	program string
	args    []string

	state      atomic.Int32
	exitCode   atomic.Int32 // valid once state is StateExited
	termSignal atomic.Int32 // valid once state is StateKilled

	// done is closed on the terminal state transition.
	done       chan struct{}
	finishOnce sync.Once

	stdout *capture
	stderr *capture
}

func newChild(pid int, program string, args []string) *Child {
	c := &Child{
		pid:     pid,
		program: program,
		args:    args,
		done:    make(chan struct{}),
		stdout:  newCapture(),
		stderr:  newCapture(),
	}
	c.state.Store(int32(StateRunning))
	c.exitCode.Store(-1)
	return c
}

// PID returns the OS process id. Always available, never blocks.
func (c *Child) PID() int {
	return c.pid
}

// Program returns the program name or path the child was spawned with.
func (c *Child) Program() string {
	return c.program
}

// Args returns the argument list captured at spawn time.
func (c *Child) Args() []string {
	return c.args
}

// State returns the current lifecycle state.
func (c *Child) State() State {
	return State(c.state.Load())
}

// IsRunning reports whether the process has not yet reached a terminal
// state.
func (c *Child) IsRunning() bool {
	return c.State() == StateRunning
}

// Done returns a channel that is closed once the child's exit status has
// been collected.
func (c *Child) Done() <-chan struct{} {
	return c.done
}

// ExitCode returns the exit code after a normal exit, or -1 before the
// terminal transition.
func (c *Child) ExitCode() int {
	return int(c.exitCode.Load())
}

// TermSignal returns the signal that terminated the process, or 0 when
// the process is running or exited normally.
func (c *Child) TermSignal() unix.Signal {
	return unix.Signal(c.termSignal.Load())
}

// Kill sends sig to the process if it is still running and returns the
// pre-delivery state, so callers can distinguish "delivered" from
// "already dead". Signaling a process that exited but has not been
// reaped yet is a silent no-op (the ESRCH race is benign).
func (c *Child) Kill(sig unix.Signal) (State, error) {
	prior := c.State()
	if prior != StateRunning {
		return prior, nil
	}
	if err := unix.Kill(c.pid, sig); err != nil && err != unix.ESRCH {
		return prior, fmt.Errorf("signal pid %d: %w", c.pid, err)
	}
	return prior, nil
}

// StdoutDone returns a channel closed once the child's stdout has been
// read to end-of-stream. A process may close stdout before it exits.
func (c *Child) StdoutDone() <-chan struct{} {
	return c.stdout.doneCh
}

// Stdout returns the captured stdout bytes. Valid only after StdoutDone
// is closed; the content is immutable from then on.
func (c *Child) Stdout() []byte {
	return c.stdout.bytes()
}

// StderrDone returns a channel closed once the child's stderr has been
// read to end-of-stream.
func (c *Child) StderrDone() <-chan struct{} {
	return c.stderr.doneCh
}

// Stderr returns the captured stderr bytes. Valid only after StderrDone
// is closed.
func (c *Child) Stderr() []byte {
	return c.stderr.bytes()
}

// finish records the collected wait status and performs the single
// terminal transition. Called only by the Reaper.
func (c *Child) finish(ws unix.WaitStatus) {
	c.finishOnce.Do(func() {
		if ws.Signaled() {
			c.termSignal.Store(int32(ws.Signal()))
			c.state.Store(int32(StateKilled))
		} else {
			c.exitCode.Store(int32(ws.ExitStatus()))
			c.state.Store(int32(StateExited))
		}
		close(c.done)
	})
}

// capture accumulates one output stream. The buffer is written only by
// drainFrom's goroutine and read only after doneCh closes, so no lock is
// needed on the buffer itself.
type capture struct {
	buf    bytes.Buffer
	doneCh chan struct{}
}

func newCapture() *capture {
	return &capture{doneCh: make(chan struct{})}
}

// drainFrom copies r into the buffer until end-of-stream, closes r, and
// marks the capture finalized. Capacity is unbounded.
func (cp *capture) drainFrom(r io.ReadCloser) error {
	defer close(cp.doneCh)
	_, err := io.Copy(&cp.buf, r)
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	return err
}

func (cp *capture) bytes() []byte {
	return cp.buf.Bytes()
}
