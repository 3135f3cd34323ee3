package parser_test

import (
	"testing"

	"github.com/valus-lang/valus/internal/ast"
	"github.com/valus-lang/valus/internal/diag"
	"github.com/valus-lang/valus/internal/parser"
)

func parseTerm(t *testing.T, src string, opts ...parser.Option) (ast.Term, []parser.ParseError) {
	t.Helper()

	p := parser.New(src, opts...)
	term := p.ParseTerm()

	return term, p.Errors()
}

func parseProgram(t *testing.T, src string) (*ast.Program, []parser.ParseError) {
	t.Helper()

	p := parser.New(src)
	prog := p.ParseProgram()

	return prog, p.Errors()
}

func assertNoErrors(t *testing.T, errs []parser.ParseError) {
	t.Helper()

	if len(errs) == 0 {
		return
	}

	for _, err := range errs {
		t.Errorf("unexpected parse error: %s", err.Error())
	}
	t.Fatalf("parser reported %d error(s)", len(errs))
}

func TestParseTermRoundTrip(t *testing.T) {
	tests := []string{
		"λ x => x",
		"λ x y => x y",
		"λ y => (λ x => x) y",
		"λ y => (λ z => z z) ((λ x => x) y)",
		"λ s z => s (s (s z))",
		"λ m n s z => m s (n s z)",
		"#U8.add 2u8 3u8",
		"λ b => #Bits.cons #true b",
		"#Bytes.append #x0a #xff",
	}

	for _, src := range tests {
		term, errs := parseTerm(t, src)
		assertNoErrors(t, errs)
		if got := ast.String(term); got != src {
			t.Errorf("String(parse(%q)) = %q", src, got)
		}
	}
}

func TestParseBackslashAndRedundantParens(t *testing.T) {
	term, errs := parseTerm(t, `\x => ((x))`)
	assertNoErrors(t, errs)
	if got := ast.String(term); got != "λ x => x" {
		t.Fatalf("got %q", got)
	}
}

func TestParseMultiBinderNesting(t *testing.T) {
	term, errs := parseTerm(t, "λ x y => x")
	assertNoErrors(t, errs)

	outer, ok := term.(*ast.Lam)
	if !ok || outer.Param != "x" {
		t.Fatalf("expected outer λx, got %T", term)
	}
	inner, ok := outer.Body.(*ast.Lam)
	if !ok || inner.Param != "y" {
		t.Fatalf("expected inner λy, got %T", outer.Body)
	}
	v, ok := inner.Body.(*ast.Var)
	if !ok {
		t.Fatalf("expected variable body, got %T", inner.Body)
	}
	if v.Binder != outer {
		t.Fatalf("x should be bound by the outer abstraction")
	}
}

func TestParseShadowing(t *testing.T) {
	term, errs := parseTerm(t, "λ x => λ x => x")
	assertNoErrors(t, errs)

	outer := term.(*ast.Lam)
	inner := outer.Body.(*ast.Lam)
	if v := inner.Body.(*ast.Var); v.Binder != inner {
		t.Fatalf("x should be bound by the innermost abstraction")
	}
}

func TestParseApplicationIsLeftAssociative(t *testing.T) {
	term, errs := parseTerm(t, "λ f a b => f a b")
	assertNoErrors(t, errs)

	body := term.(*ast.Lam).Body.(*ast.Lam).Body.(*ast.Lam).Body
	outer, ok := body.(*ast.App)
	if !ok {
		t.Fatalf("expected application, got %T", body)
	}
	if _, ok := outer.Fun.(*ast.App); !ok {
		t.Fatalf("expected (f a) b, got fun %T", outer.Fun)
	}
	if v := outer.Arg.(*ast.Var); v.Name != "b" {
		t.Fatalf("outer argument = %s, want b", v.Name)
	}
}

func TestParseOperatorsAndLiterals(t *testing.T) {
	term, errs := parseTerm(t, "#U8.add 2u8 3u8")
	assertNoErrors(t, errs)

	outer := term.(*ast.App)
	inner := outer.Fun.(*ast.App)
	opr, ok := inner.Fun.(*ast.Opr)
	if !ok || opr.Op.String() != "#U8.add" {
		t.Fatalf("expected #U8.add at the head, got %T", inner.Fun)
	}
	if lit := inner.Arg.(*ast.Lit); lit.Value.String() != "2u8" {
		t.Fatalf("first operand = %s", lit.Value)
	}
	if lit := outer.Arg.(*ast.Lit); lit.Value.String() != "3u8" {
		t.Fatalf("second operand = %s", lit.Value)
	}
}

func TestParseUnboundVariable(t *testing.T) {
	_, errs := parseTerm(t, "λ x => y")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	err := errs[0]
	if err.Code != diag.CodeParseUnboundVariable {
		t.Fatalf("code = %s", err.Code)
	}
	if err.Span.Line != 1 || err.Span.Column != 8 {
		t.Fatalf("span = %d:%d, want 1:8", err.Span.Line, err.Span.Column)
	}
	if parser.IsIncomplete(errs) {
		t.Fatalf("unbound variable is not an incomplete-input error")
	}
}

func TestParseErrorPositionsOnLaterLines(t *testing.T) {
	_, errs := parseProgram(t, "def id = λ x => x\n\ndef bad = id zz\n")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs[0].Span.Line != 3 || errs[0].Span.Column != 14 {
		t.Fatalf("span = %d:%d, want 3:14", errs[0].Span.Line, errs[0].Span.Column)
	}
}

func TestParseUnknownOperator(t *testing.T) {
	_, errs := parseTerm(t, "#U8.frobnicate 1u8")
	if len(errs) != 1 || errs[0].Code != diag.CodeParseUnknownOperator {
		t.Fatalf("expected unknown operator error, got %v", errs)
	}
}

func TestParseInvalidLiterals(t *testing.T) {
	for _, src := range []string{"300u8", "#b0120", "#maybe"} {
		_, errs := parseTerm(t, src)
		if len(errs) != 1 || errs[0].Code != diag.CodeParseInvalidLiteral {
			t.Errorf("%q: expected invalid literal error, got %v", src, errs)
		}
	}
}

func TestParseIncompleteInput(t *testing.T) {
	for _, src := range []string{"(λ x => x", "λ x =>", "λ x", "def k ="} {
		p := parser.New(src)
		if src[0] == 'd' {
			p.ParseProgram()
		} else {
			p.ParseTerm()
		}
		errs := p.Errors()
		if len(errs) == 0 {
			t.Errorf("%q: expected an error", src)
			continue
		}
		if !parser.IsIncomplete(errs) {
			t.Errorf("%q: expected incomplete input, got %v", src, errs)
		}
	}
}

func TestParseTrailingInput(t *testing.T) {
	_, errs := parseTerm(t, "λ x => x )")
	if len(errs) != 1 || errs[0].Code != diag.CodeParseUnexpectedToken {
		t.Fatalf("expected unexpected-token error, got %v", errs)
	}
}

func TestParseLexerErrorsSurface(t *testing.T) {
	_, errs := parseTerm(t, "λ x => x $")
	if len(errs) == 0 {
		t.Fatal("expected errors")
	}
	d := errs[0].ToDiagnostic()
	if d.Stage != diag.StageLexer || d.Code != diag.CodeLexerIllegalRune {
		t.Fatalf("first diagnostic = %s/%s", d.Stage, d.Code)
	}
}

func TestParseWithFilename(t *testing.T) {
	_, errs := parseTerm(t, "q", parser.WithFilename("input.vl"))
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Span.Filename != "input.vl" {
		t.Fatalf("filename = %q", errs[0].Span.Filename)
	}
	if got := errs[0].Error(); got != "input.vl:1:1: unbound variable `q`" {
		t.Fatalf("Error() = %q", got)
	}
}
