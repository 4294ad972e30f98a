package signals

import (
	"os"

	"golang.org/x/sys/unix"
)

// Table maps the standard signal names to their numbers. It is exposed
// to scripts as the init.signal constants.
var Table = map[string]unix.Signal{
	"SIGHUP":    unix.SIGHUP,
	"SIGINT":    unix.SIGINT,
	"SIGQUIT":   unix.SIGQUIT,
	"SIGILL":    unix.SIGILL,
	"SIGTRAP":   unix.SIGTRAP,
	"SIGABRT":   unix.SIGABRT,
	"SIGBUS":    unix.SIGBUS,
	"SIGFPE":    unix.SIGFPE,
	"SIGKILL":   unix.SIGKILL,
	"SIGUSR1":   unix.SIGUSR1,
	"SIGSEGV":   unix.SIGSEGV,
	"SIGUSR2":   unix.SIGUSR2,
	"SIGPIPE":   unix.SIGPIPE,
	"SIGALRM":   unix.SIGALRM,
	"SIGTERM":   unix.SIGTERM,
	"SIGCHLD":   unix.SIGCHLD,
	"SIGCONT":   unix.SIGCONT,
	"SIGSTOP":   unix.SIGSTOP,
	"SIGTSTP":   unix.SIGTSTP,
	"SIGTTIN":   unix.SIGTTIN,
	"SIGTTOU":   unix.SIGTTOU,
	"SIGURG":    unix.SIGURG,
	"SIGXCPU":   unix.SIGXCPU,
	"SIGXFSZ":   unix.SIGXFSZ,
	"SIGVTALRM": unix.SIGVTALRM,
	"SIGPROF":   unix.SIGPROF,
	"SIGWINCH":  unix.SIGWINCH,
	"SIGIO":     unix.SIGIO,
	"SIGSYS":    unix.SIGSYS,
}

// uncatchable holds the signals the router never subscribes to: KILL
// and STOP cannot be caught, and ILL/FPE/SEGV are synchronous faults
// that must keep their default disposition. SIGURG is additionally
// excluded because the Go runtime uses it for goroutine preemption;
// subscribing would flood the router with runtime-internal deliveries.
var uncatchable = map[unix.Signal]bool{
	unix.SIGKILL: true,
	unix.SIGSTOP: true,
	unix.SIGILL:  true,
	unix.SIGFPE:  true,
	unix.SIGSEGV: true,
	unix.SIGURG:  true,
}

// Catchable returns the signals the router subscribes to.
func Catchable() []os.Signal {
	result := make([]os.Signal, 0, len(Table))
	for _, sig := range Table {
		if uncatchable[sig] {
			continue
		}
		result = append(result, sig)
	}
	return result
}
