package parser

import (
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"github.com/valus-lang/valus/internal/ast"
	"github.com/valus-lang/valus/internal/diag"
	"github.com/valus-lang/valus/internal/lexer"
)

// RelatedSpan points at a second location relevant to an error.
type RelatedSpan struct {
	Span  lexer.Span
	Label string
}

// ParseError captures a recoverable parsing error with location context.
type ParseError struct {
	Message  string
	Span     lexer.Span
	Severity diag.Severity
	Code     diag.Code
	Help     string
	Notes    []string
	Related  []RelatedSpan

	// Incomplete is set when the input ended before the construct did.
	Incomplete bool

	stage diag.Stage
}

func (e ParseError) Error() string {
	if e.Span.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Span.Filename, e.Span.Line, e.Span.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Span.Line, e.Span.Column, e.Message)
}

func toDiagSpan(s lexer.Span) diag.Span {
	return diag.Span{
		Filename: s.Filename,
		Line:     s.Line,
		Column:   s.Column,
		Start:    s.Start,
		End:      s.End,
	}
}

// ToDiagnostic converts a parse error into a shared diagnostic structure.
func (e ParseError) ToDiagnostic() diag.Diagnostic {
	stage := e.stage
	if stage == "" {
		stage = diag.StageParser
	}
	code := e.Code
	if code == "" {
		code = diag.CodeParseUnexpectedToken
	}

	d := diag.Diagnostic{
		Stage:    stage,
		Severity: e.Severity,
		Code:     code,
		Message:  e.Message,
		Span:     toDiagSpan(e.Span),
		Notes:    e.Notes,
		Help:     e.Help,
	}
	if len(e.Related) > 0 {
		d = d.WithPrimarySpan(d.Span, "")
		for _, rel := range e.Related {
			d = d.WithSecondarySpan(toDiagSpan(rel.Span), rel.Label)
		}
	}
	return d
}

// Errors returns lexical and syntactic errors in source order.
func (p *Parser) Errors() []ParseError {
	out := lo.Map(p.lx.Errors, func(le lexer.LexerError, _ int) ParseError {
		d := le.ToDiagnostic()
		return ParseError{
			Message:  le.Message,
			Span:     le.Span,
			Severity: d.Severity,
			Code:     d.Code,
			stage:    diag.StageLexer,
		}
	})
	out = append(out, p.errors...)
	slices.SortStableFunc(out, func(a, b ParseError) int {
		return a.Span.Start - b.Span.Start
	})
	return out
}

// Diagnostics returns Errors converted for the diagnostic formatter.
func (p *Parser) Diagnostics() []diag.Diagnostic {
	return lo.Map(p.Errors(), func(e ParseError, _ int) diag.Diagnostic {
		return e.ToDiagnostic()
	})
}

// IsIncomplete reports whether errs stem from input that ended early, so
// that a line-oriented reader can ask for more input instead of failing.
func IsIncomplete(errs []ParseError) bool {
	return lo.ContainsBy(errs, func(e ParseError) bool { return e.Incomplete })
}

func (p *Parser) spanWithFilename(span lexer.Span) lexer.Span {
	if span.Filename == "" && p.filename != "" {
		span.Filename = p.filename
	}
	return span
}

func (p *Parser) reportCode(code diag.Code, msg string, span lexer.Span, help string) {
	p.errors = append(p.errors, ParseError{
		Message:  msg,
		Span:     p.spanWithFilename(span),
		Severity: diag.SeverityError,
		Code:     code,
		Help:     help,
	})
}

// reportUnexpected reports tok as out of place. context describes what was
// expected instead.
func (p *Parser) reportUnexpected(tok lexer.Token, context string) {
	found := tok.Literal
	if tok.Type == lexer.EOF {
		found = "end of input"
	} else {
		found = "`" + found + "`"
	}
	p.errors = append(p.errors, ParseError{
		Message:    fmt.Sprintf("%s, found %s", context, found),
		Span:       p.spanWithFilename(tok.Span),
		Severity:   diag.SeverityError,
		Code:       diag.CodeParseUnexpectedToken,
		Incomplete: tok.Type == lexer.EOF,
	})
}

func (p *Parser) reportUnbound(tok lexer.Token) {
	err := ParseError{
		Message:  fmt.Sprintf("unbound variable `%s`", tok.Literal),
		Span:     p.spanWithFilename(tok.Span),
		Severity: diag.SeverityError,
		Code:     diag.CodeParseUnboundVariable,
		Help:     "bind it with λ or define it with `def` before this point",
	}
	if names := p.visibleNames(); len(names) > 0 {
		err.Notes = append(err.Notes, "in scope: "+joinNames(names))
	}
	p.errors = append(p.errors, err)
}

func (p *Parser) reportDuplicateDef(tok lexer.Token, prev *ast.Def) {
	p.errors = append(p.errors, ParseError{
		Message:  fmt.Sprintf("`%s` is already defined", tok.Literal),
		Span:     p.spanWithFilename(tok.Span),
		Severity: diag.SeverityError,
		Code:     diag.CodeParseDuplicateDef,
		Related: []RelatedSpan{
			{Span: p.spanWithFilename(prev.NameSpan), Label: "first defined here"},
		},
	})
}

// visibleNames lists binder and definition names in scope, innermost binder
// first, without duplicates.
func (p *Parser) visibleNames() []string {
	binders := lo.Map(p.scope, func(l *ast.Lam, _ int) string { return l.Param })
	lo.Reverse(binders)
	defs := lo.Keys(p.defs)
	slices.Sort(defs)
	return lo.Uniq(append(binders, defs...))
}

func joinNames(names []string) string {
	const limit = 8
	out := ""
	for i, n := range names {
		if i == limit {
			return out + ", ..."
		}
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
