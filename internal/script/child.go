package script

import (
	lua "github.com/yuin/gopher-lua"
	"golang.org/x/sys/unix"

	"github.com/dshills/luainit/internal/proc"
)

// childTypeName is the metatable key for child handle userdata.
const childTypeName = "init.child"

// registerChildType installs the child userdata type. Methods close over
// the engine because status/stdout/stderr are suspension points and need
// the call pump.
func registerChildType(e *Engine) {
	mt := e.L.NewTypeMetatable(childTypeName)
	e.L.SetField(mt, "__index", e.L.SetFuncs(e.L.NewTable(), map[string]lua.LGFunction{
		"pid":    e.childPID,
		"kill":   e.childKill,
		"status": e.childStatus,
		"stdout": e.childStdout,
		"stderr": e.childStderr,
	}))
}

// newChildValue wraps a proc.Child as script-visible userdata. The
// script holds the owning reference; the registry keeps only the
// pid-keyed back-reference used for reaping correlation.
func newChildValue(e *Engine, c *proc.Child) *lua.LUserData {
	ud := e.L.NewUserData()
	ud.Value = c
	e.L.SetMetatable(ud, e.L.GetTypeMetatable(childTypeName))
	return ud
}

func checkChild(L *lua.LState) *proc.Child {
	ud := L.CheckUserData(1)
	if c, ok := ud.Value.(*proc.Child); ok {
		return c
	}
	L.ArgError(1, "child expected")
	return nil
}

// childPID returns the child's pid. Never suspends.
func (e *Engine) childPID(L *lua.LState) int {
	c := checkChild(L)
	L.Push(lua.LNumber(c.PID()))
	return 1
}

// childKill sends the given signal (default SIGKILL) to this child and
// returns the pre-delivery state name, so the script can tell
// "delivered" from "already dead". Signaling an exited child is not an
// error.
func (e *Engine) childKill(L *lua.LState) int {
	c := checkChild(L)
	sig := unix.SIGKILL
	if L.GetTop() >= 2 {
		sig = unix.Signal(L.CheckInt(2))
	}
	prior, err := c.Kill(sig)
	if err != nil {
		L.RaiseError("kill: %v", err)
		return 0
	}
	L.Push(lua.LString(prior.String()))
	return 1
}

// childStatus suspends the calling continuation until the reaper has
// collected the child's exit status, then returns (code, nil) for a
// normal exit or (nil, signo) for signal termination. Idempotent after
// the terminal transition.
func (e *Engine) childStatus(L *lua.LState) int {
	c := checkChild(L)
	e.await(c.Done())

	if c.State() == proc.StateKilled {
		L.Push(lua.LNil)
		L.Push(lua.LNumber(c.TermSignal()))
		return 2
	}
	L.Push(lua.LNumber(c.ExitCode()))
	L.Push(lua.LNil)
	return 2
}

// childStdout suspends until the child's stdout reaches end-of-stream
// (which may precede exit) and returns the captured text, or nil when
// the stream produced nothing. Repeated calls return the same content.
func (e *Engine) childStdout(L *lua.LState) int {
	c := checkChild(L)
	e.await(c.StdoutDone())
	return pushStream(L, c.Stdout())
}

// childStderr is childStdout for the stderr stream.
func (e *Engine) childStderr(L *lua.LState) int {
	c := checkChild(L)
	e.await(c.StderrDone())
	return pushStream(L, c.Stderr())
}

func pushStream(L *lua.LState, out []byte) int {
	if len(out) == 0 {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(out))
	return 1
}
