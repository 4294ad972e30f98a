// Package signals exposes the named signal table and the router that
// gives the supervisor its PID-1 signal behavior: SIGCHLD wakes the
// reaper, everything else received by the supervisor is forwarded to the
// currently running tracked children.
package signals
