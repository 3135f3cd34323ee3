package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/valus-lang/valus/internal/ast"
	"github.com/valus-lang/valus/internal/config"
	"github.com/valus-lang/valus/internal/dag"
	"github.com/valus-lang/valus/internal/diag"
	"github.com/valus-lang/valus/internal/eval"
	"github.com/valus-lang/valus/internal/parser"
)

const (
	exitOK       = 0
	exitError    = 1
	exitUsage    = 2
	exitBudget   = 3
	exitInternal = 4
)

type mode int

const (
	modeNorm mode = iota
	modeWhnf
)

// session carries the configuration and output streams of one invocation.
type session struct {
	cfg    config.Config
	out    io.Writer
	errOut io.Writer
	diags  *diag.Formatter
}

func newSession(cfg config.Config, out, errOut io.Writer) *session {
	return &session{
		cfg:    cfg,
		out:    out,
		errOut: errOut,
		diags:  diag.NewFormatter(errOut),
	}
}

func (s *session) reportParseErrors(p *parser.Parser) bool {
	ds := p.Diagnostics()
	for _, d := range ds {
		s.diags.Format(d)
	}
	return len(ds) > 0
}

// cmdTerm reduces a term given on the command line.
func (s *session) cmdTerm(args []string, m mode) int {
	if len(args) < 1 {
		name := "eval"
		if m == modeWhnf {
			name = "whnf"
		}
		fmt.Fprintf(s.errOut, "Usage: valus %s <term>\n", name)
		return exitUsage
	}

	const filename = "<term>"
	src := strings.Join(args, " ")
	s.diags.AddSource(filename, src)

	p := parser.New(src, parser.WithFilename(filename))
	term := p.ParseTerm()
	if s.reportParseErrors(p) || term == nil {
		return exitError
	}
	return s.evaluate(term, m)
}

// cmdRun reduces the entry definition of a program file.
func (s *session) cmdRun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(s.errOut, "Usage: valus run <file>\n")
		return exitUsage
	}

	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(s.errOut, "Failed to read file: %v\n", err)
		return exitError
	}
	s.diags.AddSource(filename, string(content))

	p := parser.New(string(content), parser.WithFilename(filename))
	prog := p.ParseProgram()
	if s.reportParseErrors(p) {
		return exitError
	}

	entry, perr := parser.Entry(prog, s.cfg.Entry)
	if perr != nil {
		s.diags.Format(perr.ToDiagnostic())
		return exitError
	}
	return s.evaluate(entry.Body, modeNorm)
}

// evaluate builds term into a fresh graph, reduces it and prints the
// result. A budget stop still prints the partially reduced term.
func (s *session) evaluate(term ast.Term, m mode) int {
	g := dag.New()
	root := g.NewRoot(dag.NewBuilder(g).Build(term))
	return s.reduceAndPrint(eval.New(g, s.cfg.EvalOptions(s.errOut)), root, m)
}

// reduceAndPrint reduces the term pinned by root and reports the outcome as
// an exit status.
func (s *session) reduceAndPrint(ev *eval.Evaluator, root dag.Cell, m mode) int {
	g := ev.Graph()
	res, err := reduce(ev, root, m)

	var internal eval.InternalError
	if errors.As(err, &internal) {
		fmt.Fprintf(s.errOut, "valus: %v\n", internal)
		return exitInternal
	}

	fmt.Fprintln(s.out, dag.Render(g, res))
	if s.cfg.Stats {
		s.printStats(ev)
	}

	if errors.Is(err, eval.ErrBudgetExhausted) {
		s.diags.Format(diag.Diagnostic{
			Stage:    diag.StageEval,
			Severity: diag.SeverityError,
			Code:     diag.CodeEvalBudgetExhausted,
			Message:  "evaluation stopped: " + err.Error(),
			Notes:    []string{"the printed term is only partially reduced"},
			Help:     "raise -fuel or " + config.EnvFuel + ", or set it to 0 for no limit",
		})
		return exitBudget
	}
	if err != nil {
		fmt.Fprintf(s.errOut, "valus: %v\n", err)
		return exitError
	}
	return exitOK
}

// reduce runs the evaluator, turning an internal-consistency panic into an
// error.
func reduce(ev *eval.Evaluator, root dag.Cell, m mode) (res dag.Ref, err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(eval.InternalError)
			if !ok {
				panic(r)
			}
			err = ie
		}
	}()

	if m == modeWhnf {
		return ev.Whnf(root)
	}
	return ev.Norm(root)
}

func (s *session) printStats(ev *eval.Evaluator) {
	st := ev.Stats()
	gs := ev.Graph().Stats()
	fmt.Fprintf(s.errOut, "steps: %d (beta %d, prim %d)  up-copies: %d  copies: %d  nodes: %d live, %d allocated, %d freed\n",
		st.Steps, st.Contractions, st.PrimOps, st.Upcopies, st.Copies, gs.Live, gs.Allocated, gs.Freed)
}
