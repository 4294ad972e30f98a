// Package config holds the supervisor's startup settings and their
// resolution order: command-line flags override environment variables,
// which override the optional TOML file. Zero configuration must work.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment variable names recognized by Resolve.
const (
	EnvScript          = "LUAINIT_SCRIPT"
	EnvShutdownTimeout = "LUAINIT_SHUTDOWN_TIMEOUT"
	EnvChildEnv        = "LUAINIT_CHILD_ENV"
)

// Options are the resolved supervisor settings.
type Options struct {
	// Script is a default script path, used when no script argument is
	// given on the command line.
	Script string

	// ShutdownTimeout, when positive, makes Shutdown terminate
	// surviving children: SIGTERM, a wait up to the timeout, then
	// SIGKILL. Zero keeps the base policy of leaving children alone.
	ShutdownTimeout time.Duration

	// ChildEnv lists extra KEY=VALUE entries appended to every spawned
	// child's environment.
	ChildEnv []string
}

// fileOptions is the TOML shape of a config file.
type fileOptions struct {
	Script          string   `toml:"script"`
	ShutdownTimeout float64  `toml:"shutdown_timeout"` // seconds, fractional allowed
	ChildEnv        []string `toml:"child_env"`
}

// Load parses the TOML file at path.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read config: %w", err)
	}

	var f fileOptions
	if err := toml.Unmarshal(data, &f); err != nil {
		return Options{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	return Options{
		Script:          f.Script,
		ShutdownTimeout: secondsToDuration(f.ShutdownTimeout),
		ChildEnv:        f.ChildEnv,
	}, nil
}

// Resolve builds the effective options. flags carries values set
// explicitly on the command line and wins over everything; environment
// variables win over the file at configPath; an empty configPath skips
// the file layer entirely.
func Resolve(flags Options, configPath string) (Options, error) {
	var opts Options

	if configPath != "" {
		fileOpts, err := Load(configPath)
		if err != nil {
			return Options{}, err
		}
		opts = fileOpts
	}

	applyEnv(&opts)

	if flags.Script != "" {
		opts.Script = flags.Script
	}
	if flags.ShutdownTimeout > 0 {
		opts.ShutdownTimeout = flags.ShutdownTimeout
	}
	if len(flags.ChildEnv) > 0 {
		opts.ChildEnv = flags.ChildEnv
	}

	return opts, nil
}

func applyEnv(opts *Options) {
	if v := os.Getenv(EnvScript); v != "" {
		opts.Script = v
	}
	if v := os.Getenv(EnvShutdownTimeout); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			opts.ShutdownTimeout = secondsToDuration(secs)
		}
	}
	if v := os.Getenv(EnvChildEnv); v != "" {
		opts.ChildEnv = strings.Split(v, ",")
	}
}

func secondsToDuration(secs float64) time.Duration {
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
