// Package app wires the supervisor together: process registry, reaper,
// signal router, scheduler and script engine, with the lifecycle the
// cmd layer drives.
package app

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/dshills/luainit/internal/config"
	"github.com/dshills/luainit/internal/proc"
	"github.com/dshills/luainit/internal/sched"
	"github.com/dshills/luainit/internal/script"
	"github.com/dshills/luainit/internal/signals"
)

// App is the assembled supervisor. Construct with New, run the user
// script with Run, and tear down with Shutdown. One App exists per
// process.
type App struct {
	Registry  *proc.Registry
	Reaper    *proc.Reaper
	Router    *signals.Router
	Scheduler *sched.Scheduler
	Engine    *script.Engine

	opts config.Options
}

// New builds and wires the supervisor components. Nothing runs until
// Run is called.
func New(opts config.Options) *App {
	registry := proc.NewRegistry(proc.WithChildEnv(opts.ChildEnv...))
	reaper := proc.NewReaper(registry)
	router := signals.NewRouter(registry, reaper)
	scheduler := sched.New()
	engine := script.New(registry, scheduler)

	return &App{
		Registry:  registry,
		Reaper:    reaper,
		Router:    router,
		Scheduler: scheduler,
		Engine:    engine,
		opts:      opts,
	}
}

// Run starts the background loops and executes the user script on the
// calling goroutine. It returns when the top-level script completes;
// background jobs are not waited on. The returned error is the script's
// runtime error, if any.
func (a *App) Run(chunk script.Chunk) error {
	go a.Reaper.Run()
	go a.Router.Run()
	return a.Engine.Run(chunk)
}

// Shutdown stops the scheduler, optionally terminates surviving
// children (when ShutdownTimeout is configured), and tears down the
// signal and reaping loops. Safe to call after Run returns on any path.
func (a *App) Shutdown() {
	a.Scheduler.Stop()

	if a.opts.ShutdownTimeout > 0 {
		a.terminateSurvivors(a.opts.ShutdownTimeout)
	}

	a.Router.Stop()
	a.Reaper.Stop()
	a.Engine.Close()
}

// terminateSurvivors sends SIGTERM to every running tracked child,
// waits up to timeout for them to exit, and SIGKILLs the rest. Runs
// while the router and reaper are still alive so the exits are
// collected normally.
func (a *App) terminateSurvivors(timeout time.Duration) {
	survivors := a.Registry.Running()
	if len(survivors) == 0 {
		return
	}

	for _, c := range survivors {
		_, _ = c.Kill(unix.SIGTERM)
	}

	done := make(chan struct{})
	go func() {
		for _, c := range survivors {
			<-c.Done()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		for _, c := range survivors {
			_, _ = c.Kill(unix.SIGKILL)
		}
		<-done
	}
}
