package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/valus-lang/valus/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(fs *flag.FlagSet, w io.Writer) func() {
	return func() {
		fmt.Fprintf(w, "Usage: valus [options] <command> [arguments]\n")
		fmt.Fprintf(w, "\nCommands:\n")
		fmt.Fprintf(w, "  eval <term>     Reduce a term to normal form\n")
		fmt.Fprintf(w, "  whnf <term>     Reduce a term to weak-head normal form\n")
		fmt.Fprintf(w, "  run <file>      Reduce the entry definition of a program\n")
		fmt.Fprintf(w, "  repl            Start an interactive session\n")
		fmt.Fprintf(w, "  test [path...]  Run the test_ definitions of *_test.vl files\n")
		fmt.Fprintf(w, "  ops             List the primitive operators\n")
		fmt.Fprintf(w, "  lsp             Serve the language server protocol on stdio\n")
		fmt.Fprintf(w, "\nOptions:\n")
		fs.SetOutput(w)
		fs.PrintDefaults()
	}
}

// run parses global flags, dispatches to a subcommand and returns the exit
// status.
func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.FromEnv()

	fs := flag.NewFlagSet("valus", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs, stderr)
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "valus: %v\n", err)
		return exitUsage
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return exitUsage
	}

	s := newSession(cfg, stdout, stderr)
	command := fs.Arg(0)
	rest := fs.Args()[1:]

	switch command {
	case "eval":
		return s.cmdTerm(rest, modeNorm)
	case "whnf":
		return s.cmdTerm(rest, modeWhnf)
	case "run":
		return s.cmdRun(rest)
	case "repl":
		return s.cmdRepl(rest)
	case "test":
		return s.cmdTest(rest)
	case "ops":
		return s.cmdOps(rest)
	case "lsp":
		return s.cmdLsp(rest)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		fs.Usage()
		return exitUsage
	}
}
