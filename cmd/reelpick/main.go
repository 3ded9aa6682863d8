// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Command reelpick is a feedback client for a movie recommendation backend.
//
// Usage:
//
//	reelpick play    [-config path] [-env path]   interactive like/dislike/skip loop
//	reelpick popular [-config path] [-env path]   print the popular-movies listing
//	reelpick serve   [-config path] [-env path]   HTTP + websocket surface
//
// Configuration is read from defaults, then a YAML file (CONFIG_PATH or
// ./config.yaml), then environment variables such as RECOMMENDER_URL.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/metrics"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const usage = `usage: reelpick <command> [flags]

commands:
  play      rate movies one at a time in the terminal
  popular   print the popular-movies listing
  serve     run the HTTP and websocket surface
  version   print the version
`

// errUsage marks a command line the flag set refused.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "play":
		err = withConfig(cmd, rest, stderr, func(cfg *config.Config) error {
			return runPlay(cfg, stdin, stdout)
		})
	case "popular":
		err = withConfig(cmd, rest, stderr, func(cfg *config.Config) error {
			return runPopular(cfg, stdout)
		})
	case "serve":
		err = withConfig(cmd, rest, stderr, runServe)
	case "version", "-v", "--version":
		fmt.Fprintf(stdout, "reelpick %s (%s)\n", version, runtime.Version())
		return 0
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		fmt.Fprintf(stderr, "reelpick %s: %v\n", cmd, err)
		return 1
	}
}

// withConfig parses the shared flags, loads configuration and logging, and
// calls fn.
func withConfig(name string, args []string, stderr io.Writer, fn func(*config.Config) error) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML config file (overrides CONFIG_PATH)")
	envFile := fs.String("env", "", "path to a .env file (default ./.env if present)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	cfg, err := loadConfig(*configPath, *envFile)
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: stderr,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	return fn(cfg)
}

func loadConfig(configPath, envFile string) (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, configPath); err != nil {
			return nil, fmt.Errorf("set %s: %w", config.ConfigPathEnvVar, err)
		}
	}
	return config.LoadWithKoanf()
}
