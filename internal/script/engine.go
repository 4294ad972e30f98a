package script

import (
	"fmt"
	"io"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/luainit/internal/proc"
	"github.com/dshills/luainit/internal/sched"
)

// defaultQueueSize bounds the number of callback invocations waiting for
// the script to reach a suspension point. An enqueue finding the queue
// full counts as a skipped firing.
const defaultQueueSize = 64

// call is one queued script-callback invocation.
type call struct {
	fn   *lua.LFunction
	args []lua.LValue

	// done is closed after the invocation has run, so the scheduler's
	// skip-overlap accounting covers the callback's execution time.
	done chan struct{}
}

// Engine owns the Lua state and exposes the supervision primitives to
// it. The zero value is not usable; create engines with New. An Engine
// is wired once at startup and torn down at process exit; there are no
// nested or re-entrant instances.
type Engine struct {
	L *lua.LState

	registry  *proc.Registry
	scheduler *sched.Scheduler

	calls chan *call
	errw  io.Writer
}

// Option configures an Engine.
type Option func(*Engine)

// WithErrorWriter redirects failed-callback reports, which default to
// stderr.
func WithErrorWriter(w io.Writer) Option {
	return func(e *Engine) {
		e.errw = w
	}
}

// New creates an engine bound to the given registry and scheduler. The
// init module is preloaded so scripts can require it.
func New(registry *proc.Registry, scheduler *sched.Scheduler, opts ...Option) *Engine {
	e := &Engine{
		L:         lua.NewState(),
		registry:  registry,
		scheduler: scheduler,
		calls:     make(chan *call, defaultQueueSize),
		errw:      os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}

	registerChildType(e)
	registerJobType(e)
	e.L.PreloadModule("init", e.loader)
	return e
}

// Chunk identifies the user script: a file path, or inline source when
// Path is empty.
type Chunk struct {
	Path string
	Code string
}

// Run executes the chunk on the calling goroutine, which becomes the
// engine's Lua goroutine for the duration. A runtime error raised by the
// script propagates out; it is the only error class that terminates the
// supervisor.
func (e *Engine) Run(chunk Chunk) error {
	if chunk.Path != "" {
		return e.L.DoFile(chunk.Path)
	}
	return e.L.DoString(chunk.Code)
}

// Close releases the Lua state. Call only after Run has returned and
// the scheduler is stopped.
func (e *Engine) Close() {
	e.L.Close()
}

// SetArgs installs the global arg table: the script (or inline chunk)
// at index 0, its arguments at 1.., and any preceding argv entries at
// negative indices.
func (e *Engine) SetArgs(argv []string, scriptIndex int) {
	t := e.L.NewTable()
	for i, a := range argv {
		t.RawSetInt(i-scriptIndex, lua.LString(a))
	}
	e.L.SetGlobal("arg", t)
}

// Global returns the value of a script global converted to a Go
// primitive, or nil when unset.
func (e *Engine) Global(name string) any {
	return toGo(e.L.GetGlobal(name))
}

// SetGlobal installs a Go primitive as a script global.
func (e *Engine) SetGlobal(name string, v any) {
	e.L.SetGlobal(name, toLua(v))
}

// await blocks the calling Lua continuation until ready fires. While
// waiting it services queued callback invocations, which is what lets
// timers and other children progress through their Lua callbacks while
// the script sleeps or waits. await returns promptly when ready is
// already closed.
func (e *Engine) await(ready <-chan struct{}) {
	for {
		select {
		case <-ready:
			return
		case c := <-e.calls:
			e.invoke(c)
		}
	}
}

// invoke runs one queued callback on the Lua goroutine. A failing
// callback is reported and does not cancel its job or disturb the
// suspended continuation.
func (e *Engine) invoke(c *call) {
	defer close(c.done)
	err := e.L.CallByParam(lua.P{
		Fn:      c.fn,
		NRet:    0,
		Protect: true,
	}, c.args...)
	if err != nil {
		fmt.Fprintf(e.errw, "error in 'init.every' job: %v\n", err)
	}
}

// submit queues a callback invocation from outside the Lua goroutine.
// It never blocks; when the queue is full the invocation is dropped and
// ok is false. The returned channel closes once the invocation has run.
func (e *Engine) submit(fn *lua.LFunction, args []lua.LValue) (done <-chan struct{}, ok bool) {
	c := &call{
		fn:   fn,
		args: args,
		done: make(chan struct{}),
	}
	select {
	case e.calls <- c:
		return c.done, true
	default:
		return nil, false
	}
}
