package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/luainit/internal/sched"
)

// jobTypeName is the metatable key for scheduled-job userdata.
const jobTypeName = "init.job"

func registerJobType(e *Engine) {
	mt := e.L.NewTypeMetatable(jobTypeName)
	e.L.SetField(mt, "__index", e.L.SetFuncs(e.L.NewTable(), map[string]lua.LGFunction{
		"id":       jobID,
		"interval": jobInterval,
		"fired":    jobFired,
	}))
}

func newJobValue(L *lua.LState, j *sched.Job) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = j
	L.SetMetatable(ud, L.GetTypeMetatable(jobTypeName))
	return ud
}

func checkJob(L *lua.LState) *sched.Job {
	ud := L.CheckUserData(1)
	if j, ok := ud.Value.(*sched.Job); ok {
		return j
	}
	L.ArgError(1, "job expected")
	return nil
}

// jobID returns the job's unique identity.
func jobID(L *lua.LState) int {
	L.Push(lua.LString(checkJob(L).ID()))
	return 1
}

// jobInterval returns the registered interval in seconds.
func jobInterval(L *lua.LState) int {
	L.Push(lua.LNumber(checkJob(L).Interval().Seconds()))
	return 1
}

// jobFired returns the number of invocations started so far.
func jobFired(L *lua.LState) int {
	L.Push(lua.LNumber(checkJob(L).Fired()))
	return 1
}
