package script

import (
	"strings"
	"testing"
	"time"
)

func TestExecEcho(t *testing.T) {
	e := newTestEngine(t)
	mustRun(t, e, `
		local init = require("init")
		local c = init.exec("echo", "hello")
		pid = c:pid()
		out = c:stdout()
		errout = c:stderr()
		code, sig = c:status()
	`)

	if pid, _ := e.Global("pid").(int64); pid <= 0 {
		t.Errorf("expected positive pid, got %v", e.Global("pid"))
	}
	if got := e.Global("out"); got != "hello\n" {
		t.Errorf("stdout = %v, want %q", got, "hello\n")
	}
	if got := e.Global("errout"); got != nil {
		t.Errorf("stderr = %v, want nil for empty stream", got)
	}
	if got := e.Global("code"); got != int64(0) {
		t.Errorf("exit code = %v, want 0", got)
	}
	if got := e.Global("sig"); got != nil {
		t.Errorf("signal = %v, want nil for normal exit", got)
	}
}

func TestExecStderrStream(t *testing.T) {
	e := newTestEngine(t)
	mustRun(t, e, `
		local init = require("init")
		local c = init.exec("sh", "-c", "echo oops 1>&2")
		errout = c:stderr()
		out = c:stdout()
	`)

	if got := e.Global("errout"); got != "oops\n" {
		t.Errorf("stderr = %v, want %q", got, "oops\n")
	}
	if got := e.Global("out"); got != nil {
		t.Errorf("stdout = %v, want nil", got)
	}
}

func TestExecFailureRaises(t *testing.T) {
	e := newTestEngine(t)
	mustRun(t, e, `
		local init = require("init")
		ok, msg = pcall(function()
			init.exec("no-such-binary-luainit-test")
		end)
	`)

	if got := e.Global("ok"); got != false {
		t.Fatalf("expected exec failure to raise, pcall returned %v", got)
	}
	msg, _ := e.Global("msg").(string)
	if !strings.Contains(msg, "exec") {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestKillBeforeNaturalExit(t *testing.T) {
	e := newTestEngine(t)

	start := time.Now()
	mustRun(t, e, `
		local init = require("init")
		local c = init.exec("sleep", "5")
		prior = c:kill(init.signal.SIGKILL)
		code, sig = c:status()
	`)
	elapsed := time.Since(start)

	if got := e.Global("prior"); got != "running" {
		t.Errorf("kill prior state = %v, want running", got)
	}
	if got := e.Global("code"); got != nil {
		t.Errorf("killed child must not report an exit code, got %v", got)
	}
	if got := e.Global("sig"); got != int64(9) {
		t.Errorf("termination signal = %v, want 9", got)
	}
	if elapsed >= 3*time.Second {
		t.Errorf("status after kill took %v, must not wait out the child's sleep", elapsed)
	}
}

func TestKillDefaultsToSIGKILL(t *testing.T) {
	e := newTestEngine(t)
	mustRun(t, e, `
		local init = require("init")
		local c = init.exec("sleep", "5")
		c:kill()
		code, sig = c:status()
	`)

	if got := e.Global("sig"); got != int64(9) {
		t.Errorf("default kill signal = %v, want 9", got)
	}
}

func TestKillAfterStatusReportsDead(t *testing.T) {
	e := newTestEngine(t)
	mustRun(t, e, `
		local init = require("init")
		local c = init.exec("echo", "bye")
		c:status()
		prior = c:kill()
	`)

	if got := e.Global("prior"); got != "exited" {
		t.Errorf("late kill prior state = %v, want exited", got)
	}
}

func TestStatusIdempotentFromScript(t *testing.T) {
	e := newTestEngine(t)
	mustRun(t, e, `
		local init = require("init")
		local c = init.exec("sh", "-c", "exit 3")
		c1, s1 = c:status()
		c2, s2 = c:status()
		out1 = c:stdout()
		out2 = c:stdout()
		same = (c1 == c2) and (s1 == s2) and (out1 == out2)
	`)

	if got := e.Global("c1"); got != int64(3) {
		t.Errorf("exit code = %v, want 3", got)
	}
	if got := e.Global("same"); got != true {
		t.Error("repeated status/stdout calls disagreed")
	}
}

func TestTermSignalDistinguished(t *testing.T) {
	e := newTestEngine(t)
	mustRun(t, e, `
		local init = require("init")
		local c = init.exec("sleep", "5")
		c:kill(init.signal.SIGTERM)
		code, sig = c:status()
	`)

	if got := e.Global("code"); got != nil {
		t.Errorf("expected nil code for SIGTERM death, got %v", got)
	}
	if got := e.Global("sig"); got != int64(15) {
		t.Errorf("expected signal 15, got %v", got)
	}
}
