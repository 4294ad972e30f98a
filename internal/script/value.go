package script

import (
	lua "github.com/yuin/gopher-lua"
)

// The value boundary between the script and the core is a closed set of
// primitive kinds: boolean, integer, float, string, and absent. The core
// never interprets richer script values; callables cross the boundary as
// opaque *lua.LFunction references invoked on the Lua goroutine.

// toGo converts a Lua value to its Go primitive, or nil for anything
// outside the closed set.
func toGo(lv lua.LValue) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	default:
		return nil
	}
}

// toLua converts a Go primitive to its Lua value. Values outside the
// closed set become nil.
func toLua(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint:
		return lua.LNumber(val)
	case uint32:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case lua.LValue:
		return val
	default:
		return lua.LNil
	}
}
