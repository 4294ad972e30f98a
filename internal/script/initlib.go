package script

import (
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/sys/unix"

	"github.com/dshills/luainit/internal/signals"
)

// loader builds the init module table. Registered under package.preload
// so scripts pull it in with require("init").
func (e *Engine) loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"pid":   e.luaPID,
		"kill":  e.luaKill,
		"sleep": e.luaSleep,
		"every": e.luaEvery,
		"exec":  e.luaExec,
	})

	sig := L.NewTable()
	for name, s := range signals.Table {
		sig.RawSetString(name, lua.LNumber(s))
	}
	mod.RawSetString("signal", sig)

	L.Push(mod)
	return 1
}

// luaPID returns the supervisor's own process id.
func (e *Engine) luaPID(L *lua.LState) int {
	L.Push(lua.LNumber(os.Getpid()))
	return 1
}

// luaKill delivers a signal to an arbitrary pid, tracked or not. Unlike
// the router's forwarding, an OS-level delivery failure here is a
// genuine caller error and is raised into the script.
func (e *Engine) luaKill(L *lua.LState) int {
	pid := L.CheckInt(1)
	sig := L.CheckInt(2)
	if err := unix.Kill(pid, unix.Signal(sig)); err != nil {
		L.RaiseError("kill pid %d: %v", pid, err)
		return 0
	}
	L.Push(lua.LNumber(0))
	return 1
}

// luaSleep suspends only the calling continuation for the given number
// of seconds (fractional allowed). Scheduled jobs and awaited children
// keep progressing during the sleep.
func (e *Engine) luaSleep(L *lua.LState) int {
	secs := float64(L.CheckNumber(1))
	if d := time.Duration(secs * float64(time.Second)); d > 0 {
		ready := make(chan struct{})
		timer := time.AfterFunc(d, func() { close(ready) })
		defer timer.Stop()
		e.await(ready)
	}
	L.Push(lua.LNumber(secs))
	return 1
}

// luaEvery registers a recurring callback and returns its job handle
// without suspending. Extra arguments are captured and forwarded to
// every invocation. The scheduler's skip policy applies: a tick whose
// previous invocation is still running (or whose enqueue finds the call
// queue full) is dropped, not queued.
func (e *Engine) luaEvery(L *lua.LState) int {
	secs := float64(L.CheckNumber(1))
	fn := L.CheckFunction(2)
	if secs <= 0 {
		L.ArgError(1, "interval must be positive")
		return 0
	}

	var args []lua.LValue
	for i := 3; i <= L.GetTop(); i++ {
		args = append(args, L.Get(i))
	}

	interval := time.Duration(secs * float64(time.Second))
	job := e.scheduler.Every(interval, func() {
		done, ok := e.submit(fn, args)
		if !ok {
			return
		}
		<-done
	})

	L.Push(newJobValue(L, job))
	return 1
}

// luaExec spawns a process and returns its child handle. Spawn is
// synchronous: failure (resolution, permission, resources) raises
// immediately and nothing is registered.
func (e *Engine) luaExec(L *lua.LState) int {
	program := L.CheckString(1)
	var args []string
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, L.CheckString(i))
	}

	c, err := e.registry.Spawn(program, args...)
	if err != nil {
		L.RaiseError("exec: %v", err)
		return 0
	}

	L.Push(newChildValue(e, c))
	return 1
}
