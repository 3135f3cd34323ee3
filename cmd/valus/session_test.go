package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/valus-lang/valus/internal/config"
	"github.com/valus-lang/valus/internal/dag"
	"github.com/valus-lang/valus/internal/eval"
	"github.com/valus-lang/valus/internal/prim"
)

// escapedVar builds (λ x => #true) 0u8 with the abstraction shared and x
// also referenced from outside it, which contraction cannot handle.
func escapedVar() (*eval.Evaluator, dag.Cell) {
	g := dag.New()
	x := g.NewVar("x")
	g.NewRoot(x)
	lam := g.NewLam(x, g.NewLit(prim.Bool(true)))
	g.NewRoot(lam)
	root := g.NewRoot(g.NewApp(lam, g.NewLit(prim.U8(0))))
	return eval.New(g, eval.Options{}), root
}

func TestReduceRecoversInternalError(t *testing.T) {
	ev, root := escapedVar()

	_, err := reduce(ev, root, modeNorm)
	var ie eval.InternalError
	if !errors.As(err, &ie) || ie.Op != "contract" {
		t.Fatalf("reduce returned %v, want an eval.InternalError from contract", err)
	}
}

func TestInternalErrorExitCode(t *testing.T) {
	ev, root := escapedVar()

	var stdout, stderr bytes.Buffer
	s := newSession(config.Config{Entry: config.DefaultEntry}, &stdout, &stderr)
	if code := s.reduceAndPrint(ev, root, modeWhnf); code != exitInternal {
		t.Fatalf("exit %d, want %d", code, exitInternal)
	}
	if stdout.Len() != 0 {
		t.Errorf("unexpected stdout %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "valus: internal error in contract") {
		t.Errorf("stderr:\n%s", stderr.String())
	}
}
