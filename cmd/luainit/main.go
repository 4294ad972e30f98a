// Command luainit is a minimal Lua-scripted process supervisor,
// suitable as PID 1 of a container or as a standalone supervisor. The
// user script drives all start/stop/scheduling policy through the init
// module; luainit itself only supplies the primitives.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/luainit/internal/app"
	"github.com/dshills/luainit/internal/config"
)

// Version information (set via ldflags during build).
var version = "dev"

var (
	flagConfig          string
	flagShutdownTimeout float64
)

var rootCmd = &cobra.Command{
	Use:   "luainit [script.lua | chunk] [args...]",
	Short: "Minimal Lua-scripted process supervisor",
	Long: `luainit launches and supervises child processes under the control of a
Lua script. It reaps terminated processes (including orphans reparented
to PID 1), forwards received signals to supervised children, and exposes
exec/kill/sleep/every primitives to the script in place of a static
configuration file.

The first argument ending in .lua is loaded as the script; otherwise the
first argument is executed as an inline chunk.`,
	Version:       version,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to TOML configuration file")
	rootCmd.Flags().Float64Var(&flagShutdownTimeout, "shutdown-timeout", 0,
		"seconds to wait for children after the script exits before SIGKILL (0 leaves them running)")
	// Everything after the first positional argument belongs to the
	// script's arg table, not to luainit.
	rootCmd.Flags().SetInterspersed(false)
}

func run(cmd *cobra.Command, args []string) error {
	flags := config.Options{
		ShutdownTimeout: time.Duration(flagShutdownTimeout * float64(time.Second)),
	}
	opts, err := config.Resolve(flags, flagConfig)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if opts.Script == "" {
			return cmd.Usage()
		}
		args = []string{opts.Script}
	}
	chunk, scriptIndex := locateChunk(args)

	a := app.New(opts)
	defer a.Shutdown()

	a.Engine.SetArgs(scriptArgv(os.Args[0], args), scriptIndex+1)
	return a.Run(chunk)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
