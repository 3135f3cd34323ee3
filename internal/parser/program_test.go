package parser_test

import (
	"testing"

	"github.com/valus-lang/valus/internal/ast"
	"github.com/valus-lang/valus/internal/diag"
	"github.com/valus-lang/valus/internal/parser"
)

const churchSrc = `
// Church numerals
def zero  = λ s z => z
def three = λ s z => s (s (s z))
def add   = λ m n s z => m s (n s z)
def main  = add zero three
`

func TestParseProgramDefs(t *testing.T) {
	prog, errs := parseProgram(t, churchSrc)
	assertNoErrors(t, errs)

	if len(prog.Defs) != 4 {
		t.Fatalf("expected 4 definitions, got %d", len(prog.Defs))
	}

	main := prog.Lookup("main")
	if main == nil {
		t.Fatal("main not found")
	}
	if got := ast.String(main.Body); got != "add zero three" {
		t.Fatalf("main = %q", got)
	}

	outer := main.Body.(*ast.App)
	ref, ok := outer.Arg.(*ast.Ref)
	if !ok || ref.Def != prog.Lookup("three") {
		t.Fatalf("three should reference its definition, got %T", outer.Arg)
	}
}

func TestParseProgramNoForwardReferences(t *testing.T) {
	_, errs := parseProgram(t, "def a = b\ndef b = λ x => x\n")
	if len(errs) != 1 || errs[0].Code != diag.CodeParseUnboundVariable {
		t.Fatalf("expected unbound variable, got %v", errs)
	}
}

func TestParseProgramBindersShadowDefs(t *testing.T) {
	prog, errs := parseProgram(t, "def x = λ a => a\ndef k = λ x => x\n")
	assertNoErrors(t, errs)

	lam := prog.Lookup("k").Body.(*ast.Lam)
	if _, ok := lam.Body.(*ast.Var); !ok {
		t.Fatalf("binder should shadow definition, got %T", lam.Body)
	}
}

func TestParseProgramDuplicateDef(t *testing.T) {
	prog, errs := parseProgram(t, "def a = λ x => x\ndef a = λ y => y\n")
	if len(errs) != 1 || errs[0].Code != diag.CodeParseDuplicateDef {
		t.Fatalf("expected duplicate definition error, got %v", errs)
	}
	if len(prog.Defs) != 1 {
		t.Fatalf("duplicate should be dropped, have %d defs", len(prog.Defs))
	}

	d := errs[0].ToDiagnostic()
	if len(d.LabeledSpans) != 2 || d.LabeledSpans[1].Span.Line != 1 {
		t.Fatalf("expected a secondary span at the first definition, got %+v", d.LabeledSpans)
	}
}

func TestParseProgramRecovery(t *testing.T) {
	prog, errs := parseProgram(t, "def a = )\ndef b = λ x => x\n")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if len(prog.Defs) != 1 || prog.Defs[0].Name != "b" {
		t.Fatalf("expected parser to recover at the next def")
	}
}

func TestEntry(t *testing.T) {
	prog, errs := parseProgram(t, churchSrc)
	assertNoErrors(t, errs)

	if def, err := parser.Entry(prog, "main"); err != nil || def.Name != "main" {
		t.Fatalf("Entry(main) = %v, %v", def, err)
	}
	_, err := parser.Entry(prog, "start")
	if err == nil || err.Code != diag.CodeParseMissingEntry {
		t.Fatalf("expected missing entry error, got %v", err)
	}
}

func TestWithDefs(t *testing.T) {
	prog, errs := parseProgram(t, churchSrc)
	assertNoErrors(t, errs)

	term, errs := parseTerm(t, "add three three", parser.WithDefs(prog.Defs...))
	assertNoErrors(t, errs)
	if _, ok := term.(*ast.App).Arg.(*ast.Ref); !ok {
		t.Fatal("expected reference to an earlier definition")
	}
}

func TestWalkVisitsEveryTerm(t *testing.T) {
	prog, errs := parseProgram(t, churchSrc)
	assertNoErrors(t, errs)

	var lams, refs int
	ast.Walk(prog, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.Lam:
			lams++
		case *ast.Ref:
			refs++
		}
		return true
	})
	// zero: 2, three: 2, add: 4
	if lams != 8 || refs != 3 {
		t.Fatalf("lams=%d refs=%d, want 8 and 3", lams, refs)
	}
}
