// Package proc implements the process-management core of the supervisor:
// spawning tracked child processes, capturing their output, and reaping
// exit statuses.
//
// The package is built around three pieces:
//
//   - Child: a handle for one spawned process. It carries the immutable
//     command descriptor, the pid, an atomically updated lifecycle state
//     (running, exited, killed), and the captured stdout/stderr streams.
//
//   - Registry: the process-wide pid -> Child table. Spawn inserts,
//     the Reaper transitions states, and the per-child drain goroutine
//     removes the entry once the exit status has been collected and both
//     output streams are fully drained. No other writers exist.
//
//   - Reaper: the wait loop. Tracked and untracked (reparented orphan)
//     processes alike are collected through a single Wait4 drain, which
//     is the PID-1 contract: tracked pids update their Child handle,
//     unknown pids are discarded after collection so zombies never
//     accumulate.
//
// Exit statuses are never collected through exec.Cmd.Wait. The Reaper
// owns the one wait path so that coalesced SIGCHLD deliveries and
// orphan reaping behave the same whether or not a pid is tracked.
package proc
