// Package config resolves run settings for the valus command from VALUS_*
// environment variables, overridden by command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/xyproto/env/v2"

	"github.com/valus-lang/valus/internal/eval"
)

// Environment variables consulted by FromEnv.
const (
	EnvFuel    = "VALUS_FUEL"
	EnvTrace   = "VALUS_TRACE"
	EnvStats   = "VALUS_STATS"
	EnvHistory = "VALUS_HISTORY"
	EnvEntry   = "VALUS_ENTRY"
)

const (
	DefaultEntry       = "main"
	defaultHistoryFile = ".valus_history"
)

var ErrNegativeFuel = errors.New("fuel must not be negative")

// Config holds the settings shared by every subcommand.
type Config struct {
	// Fuel bounds the number of reduction steps; 0 means unbounded.
	Fuel int
	// Trace logs every reduction step to stderr.
	Trace bool
	// Stats prints evaluation counters after each result.
	Stats bool
	// History is the REPL history file; empty disables history.
	History string
	// Entry names the definition `run` evaluates.
	Entry string
}

// FromEnv returns the defaults, overridden by the environment. The
// environment is re-read on every call.
func FromEnv() Config {
	env.Load()
	return Config{
		Fuel:    env.Int(EnvFuel, 0),
		Trace:   env.Bool(EnvTrace),
		Stats:   env.Bool(EnvStats),
		History: env.Str(EnvHistory, defaultHistory()),
		Entry:   env.Str(EnvEntry, DefaultEntry),
	}
}

func defaultHistory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, defaultHistoryFile)
}

// RegisterFlags binds the fields of c to fs. Current values become the
// flag defaults, so call it on the result of FromEnv.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Fuel, "fuel", c.Fuel, "maximum number of reduction steps (0 = unbounded, env "+EnvFuel+")")
	fs.BoolVar(&c.Trace, "trace", c.Trace, "log every reduction step (env "+EnvTrace+")")
	fs.BoolVar(&c.Stats, "stats", c.Stats, "print evaluation statistics (env "+EnvStats+")")
	fs.StringVar(&c.History, "history", c.History, "REPL history file, empty to disable (env "+EnvHistory+")")
	fs.StringVar(&c.Entry, "entry", c.Entry, "definition evaluated by run (env "+EnvEntry+")")
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	if c.Fuel < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeFuel, c.Fuel)
	}
	if c.Entry == "" {
		return errors.New("entry definition name must not be empty")
	}
	return nil
}

// EvalOptions translates c for the evaluator. Trace lines go to traceOut.
func (c Config) EvalOptions(traceOut io.Writer) eval.Options {
	opts := eval.Options{MaxSteps: c.Fuel}
	if c.Trace && traceOut != nil {
		opts.Trace = log.New(traceOut, "trace: ", 0)
	}
	return opts
}
