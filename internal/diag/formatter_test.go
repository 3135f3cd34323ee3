package diag_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valus-lang/valus/internal/diag"
)

func TestFormatWithSnippet(t *testing.T) {
	var out bytes.Buffer
	f := diag.NewFormatter(&out)
	f.AddSource("<term>", "λ x => y")

	f.Format(diag.Diagnostic{
		Severity: diag.SeverityError,
		Code:     diag.CodeParseUnboundVariable,
		Message:  "unbound variable y",
		Span:     diag.Span{Filename: "<term>", Line: 1, Column: 8, Start: 7, End: 8},
		Notes:    []string{"in scope: x"},
		Help:     "bind y with a λ or define it",
	})

	got := out.String()
	for _, want := range []string{
		"error[PARSE_UNBOUND_VARIABLE]: unbound variable y\n",
		"  --> <term>:1:8\n",
		" 1 | λ x => y\n",
		"       ^\n",
		"  = note: in scope: x\n",
		"help: bind y with a λ or define it\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q:\n%s", want, got)
		}
	}
}

func TestFormatSecondarySpans(t *testing.T) {
	var out bytes.Buffer
	f := diag.NewFormatter(&out)
	src := "def id = λ x => x\ndef id = λ y => y"
	f.AddSource("defs.vl", src)

	d := diag.Diagnostic{
		Code:    diag.CodeParseDuplicateDef,
		Message: "duplicate definition id",
	}.
		WithPrimarySpan(diag.Span{Filename: "defs.vl", Line: 2, Column: 5, Start: 22, End: 24}, "redefined").
		WithSecondarySpan(diag.Span{Filename: "defs.vl", Line: 1, Column: 5, Start: 4, End: 6}, "first defined here")
	f.Format(d)

	got := out.String()
	for _, want := range []string{
		"error[PARSE_DUPLICATE_DEF]",
		" 1 | def id = λ x => x\n",
		" 2 | def id = λ y => y\n",
		"    ~~\n",
		"first defined here\n",
		"    ^^ redefined\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q:\n%s", want, got)
		}
	}
}

func TestFormatWithoutSource(t *testing.T) {
	var out bytes.Buffer
	f := diag.NewFormatter(&out)

	f.Format(diag.Diagnostic{
		Stage:    diag.StageEval,
		Severity: diag.SeverityError,
		Code:     diag.CodeEvalBudgetExhausted,
		Message:  "evaluation stopped",
		Help:     "raise -fuel",
	})

	want := "error[EVAL_BUDGET_EXHAUSTED]: evaluation stopped\nhelp: raise -fuel\n"
	if got := out.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoadSourceReadsFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.vl")
	if err := os.WriteFile(path, []byte("def main = #true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := diag.NewFormatter(&bytes.Buffer{})
	src, err := f.LoadSource(path)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if src != "def main = #true\n" {
		t.Errorf("got %q", src)
	}

	if _, err := f.LoadSource(filepath.Join(t.TempDir(), "missing.vl")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
