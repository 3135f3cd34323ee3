package parser

import (
	"github.com/valus-lang/valus/internal/ast"
	"github.com/valus-lang/valus/internal/diag"
	"github.com/valus-lang/valus/internal/lexer"
)

type Option func(*options)

type options struct {
	filename string
	defs     []*ast.Def
}

// WithFilename configures the parser to attribute all emitted spans to the provided filename.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// WithDefs brings previously parsed definitions into scope, as if they had
// appeared earlier in the same program. The REPL uses this to carry
// definitions across lines.
func WithDefs(defs ...*ast.Def) Option {
	return func(o *options) {
		o.defs = append(o.defs, defs...)
	}
}

// Parser is a recursive descent parser for the term language.
//
// Unlike an expression parser with a Pratt loop, every parse method here
// leaves curTok on the first token it did not consume. Application is plain
// juxtaposition, so "does the next token start an atom" is the only
// lookahead the grammar needs.
type Parser struct {
	lx      *lexer.Lexer
	curTok  lexer.Token
	peekTok lexer.Token

	errors []ParseError

	filename string

	// defs holds every definition visible to the input, by name.
	defs map[string]*ast.Def
	// scope is the stack of enclosing abstractions, innermost last.
	scope []*ast.Lam
}

// New returns a parser initialised with the provided source input.
func New(input string, opts ...Option) *Parser {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Parser{
		lx:       lexer.New(input),
		filename: cfg.filename,
		defs:     make(map[string]*ast.Def, len(cfg.defs)),
	}
	for _, def := range cfg.defs {
		p.defs[def.Name] = def
	}

	if cfg.filename != "" {
		p.lx.SetFilename(cfg.filename)
	}

	// Seed curTok/peekTok.
	p.nextToken()
	p.nextToken()

	return p
}

// nextToken advances the parser's token window.
func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.lx.NextToken()
}

// ParseProgram parses a sequence of definitions. Definitions that fail to
// parse are skipped; the parser resynchronises at the next 'def'.
func (p *Parser) ParseProgram() *ast.Program {
	prog := ast.NewProgram(nil, p.curTok.Span)

	for p.curTok.Type != lexer.EOF {
		prevTok := p.curTok
		errCount := len(p.errors)
		def := p.parseDef()
		if def == nil {
			p.recoverDef(prevTok)
			continue
		}
		if len(p.errors) > errCount {
			// Parsed, but rejected (duplicate name).
			continue
		}
		prog.Defs = append(prog.Defs, def)
		prog.SetSpan(mergeSpan(prog.Span(), def.Span()))
	}

	prog.SetSpan(mergeSpan(prog.Span(), p.curTok.Span))
	return prog
}

// ParseTerm parses the whole input as a single term.
func (p *Parser) ParseTerm() ast.Term {
	if p.curTok.Type == lexer.EOF {
		p.reportUnexpected(p.curTok, "expected a term")
		return nil
	}

	term := p.parseTerm()
	if term == nil {
		return nil
	}
	if p.curTok.Type != lexer.EOF {
		p.reportUnexpected(p.curTok, "expected end of input after term")
		return nil
	}
	return term
}

// Entry looks up the definition a program evaluates, reporting a
// positional error when it is missing.
func Entry(prog *ast.Program, name string) (*ast.Def, *ParseError) {
	if def := prog.Lookup(name); def != nil {
		return def, nil
	}
	span := prog.Span()
	return nil, &ParseError{
		Message:  "program has no definition named `" + name + "`",
		Span:     span,
		Severity: diag.SeverityError,
		Code:     diag.CodeParseMissingEntry,
		Help:     "add `def " + name + " = ...` or choose another entry point",
	}
}

func (p *Parser) parseDef() *ast.Def {
	start := p.curTok.Span

	if p.curTok.Type != lexer.DEF {
		p.reportUnexpected(p.curTok, "expected 'def'")
		return nil
	}
	p.nextToken()

	if p.curTok.Type != lexer.IDENT {
		p.reportUnexpected(p.curTok, "expected definition name after 'def'")
		return nil
	}
	nameTok := p.curTok
	p.nextToken()

	if prev, ok := p.defs[nameTok.Literal]; ok {
		p.reportDuplicateDef(nameTok, prev)
	}

	if p.curTok.Type != lexer.ASSIGN {
		p.reportUnexpected(p.curTok, "expected '=' after definition name")
		return nil
	}
	p.nextToken()

	body := p.parseTerm()
	if body == nil {
		return nil
	}
	if p.curTok.Type != lexer.DEF && p.curTok.Type != lexer.EOF {
		p.reportUnexpected(p.curTok, "expected 'def' or end of input after definition")
		return nil
	}

	def := ast.NewDef(nameTok.Literal, nameTok.Span, body, mergeSpan(start, body.Span()))
	// Registered after the body so a definition cannot refer to itself.
	if _, dup := p.defs[def.Name]; !dup {
		p.defs[def.Name] = def
	}
	return def
}

// recoverDef skips to the next 'def' keyword or end of input, always
// consuming at least one token.
func (p *Parser) recoverDef(prev lexer.Token) {
	if sameTokenPosition(p.curTok, prev) {
		p.nextToken()
	}
	for p.curTok.Type != lexer.DEF && p.curTok.Type != lexer.EOF {
		p.nextToken()
	}
}

func sameTokenPosition(a, b lexer.Token) bool {
	return a.Type == b.Type && a.Span.Start == b.Span.Start && a.Span.End == b.Span.End
}

// mergeSpan returns a span starting at start and covering end.
func mergeSpan(start, end lexer.Span) lexer.Span {
	span := start

	if end.End > span.End {
		span.End = end.End
	}

	return span
}
