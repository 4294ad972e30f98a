// Package script bridges the single-threaded Lua script to the
// supervisor's concurrent process machinery.
//
// All Lua execution happens on one goroutine: the one that calls
// Engine.Run. The script issues blocking-looking calls (sleep, await a
// child's status, await an output stream) without stalling the rest of
// the supervisor, because reaping, pipe draining and timers progress on
// their own goroutines. What does need the Lua state - the callbacks
// registered through init.every - is funneled through a call queue that
// the engine services at suspension points: while a primitive waits for
// its condition, it pumps queued callback invocations inline. One
// script-level statement executes at a time; suspension inside a
// callback pumps recursively.
//
// The script-visible surface is the init module (exec, kill, pid,
// sleep, every, signal) plus the child and job handle types. Scripts
// load it with
//
//	local init = require("init")
package script
