package config

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"testing"
)

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvFuel, "250")
	t.Setenv(EnvTrace, "1")
	t.Setenv(EnvStats, "")
	t.Setenv(EnvHistory, "/tmp/valus-test-history")
	t.Setenv(EnvEntry, "start")

	cfg := FromEnv()
	if cfg.Fuel != 250 {
		t.Errorf("Fuel = %d, want 250", cfg.Fuel)
	}
	if !cfg.Trace {
		t.Error("Trace should be enabled")
	}
	if cfg.Stats {
		t.Error("Stats should be disabled")
	}
	if cfg.History != "/tmp/valus-test-history" {
		t.Errorf("History = %q", cfg.History)
	}
	if cfg.Entry != "start" {
		t.Errorf("Entry = %q", cfg.Entry)
	}
}

func TestFromEnvRereadsEnvironment(t *testing.T) {
	t.Setenv(EnvFuel, "7")
	t.Setenv(EnvEntry, "first")
	first := FromEnv()

	t.Setenv(EnvFuel, "")
	t.Setenv(EnvEntry, "second")
	second := FromEnv()

	if first.Fuel != 7 || first.Entry != "first" {
		t.Errorf("first read = %+v", first)
	}
	if second.Fuel != 0 || second.Entry != "second" {
		t.Errorf("second read = %+v, want fuel 0 and entry second", second)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv(EnvFuel, "250")
	t.Setenv(EnvEntry, "")
	os.Unsetenv(EnvEntry)

	cfg := FromEnv()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse([]string{"-fuel", "10", "-stats"}); err != nil {
		t.Fatal(err)
	}

	if cfg.Fuel != 10 {
		t.Errorf("Fuel = %d, want 10", cfg.Fuel)
	}
	if !cfg.Stats {
		t.Error("Stats should be enabled by the flag")
	}
	if cfg.Entry != DefaultEntry {
		t.Errorf("Entry = %q, want %q", cfg.Entry, DefaultEntry)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{Fuel: -1, Entry: DefaultEntry}
	if err := cfg.Validate(); !errors.Is(err, ErrNegativeFuel) {
		t.Fatalf("expected ErrNegativeFuel, got %v", err)
	}
	cfg.Fuel = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Entry = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty entry should be rejected")
	}
}

func TestEvalOptions(t *testing.T) {
	var buf bytes.Buffer
	opts := Config{Fuel: 7, Trace: true}.EvalOptions(&buf)
	if opts.MaxSteps != 7 {
		t.Errorf("MaxSteps = %d", opts.MaxSteps)
	}
	if opts.Trace == nil {
		t.Fatal("trace logger should be set")
	}
	opts.Trace.Print("hello")
	if buf.String() != "trace: hello\n" {
		t.Errorf("trace output = %q", buf.String())
	}

	if opts := (Config{}).EvalOptions(&buf); opts.Trace != nil {
		t.Error("trace logger should be nil when tracing is off")
	}
}
