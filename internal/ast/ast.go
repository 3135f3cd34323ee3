package ast

import (
	"strings"

	"github.com/valus-lang/valus/internal/lexer"
	"github.com/valus-lang/valus/internal/prim"
)

// Node represents any AST node with an associated source span.
type Node interface {
	Span() lexer.Span
}

// Term represents a lambda-calculus term.
type Term interface {
	Node
	termNode()
}

// Program represents a parsed source file: an ordered list of definitions.
type Program struct {
	Defs []*Def
	span lexer.Span
}

// Span returns the span covering the entire program.
func (p *Program) Span() lexer.Span { return p.span }

// NewProgram constructs a program node with the provided span.
func NewProgram(defs []*Def, span lexer.Span) *Program {
	return &Program{Defs: defs, span: span}
}

// SetSpan updates the program span.
func (p *Program) SetSpan(span lexer.Span) {
	p.span = span
}

// Lookup returns the definition named name, or nil.
func (p *Program) Lookup(name string) *Def {
	for _, d := range p.Defs {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Def binds a name to a closed term.
type Def struct {
	Name     string
	NameSpan lexer.Span
	Body     Term
	span     lexer.Span
}

// Span returns the definition span.
func (d *Def) Span() lexer.Span { return d.span }

// NewDef constructs a definition node.
func NewDef(name string, nameSpan lexer.Span, body Term, span lexer.Span) *Def {
	return &Def{
		Name:     name,
		NameSpan: nameSpan,
		Body:     body,
		span:     span,
	}
}

// Var is an occurrence of a bound variable.
type Var struct {
	Name   string
	Binder *Lam // the abstraction introducing this variable
	span   lexer.Span
}

// Span returns the occurrence span.
func (v *Var) Span() lexer.Span { return v.span }

// NewVar constructs a variable occurrence bound by binder.
func NewVar(name string, binder *Lam, span lexer.Span) *Var {
	return &Var{Name: name, Binder: binder, span: span}
}

func (*Var) termNode() {}

// Lam is a single-parameter abstraction. λ x y => b parses as two nested Lams.
type Lam struct {
	Param     string
	ParamSpan lexer.Span
	Body      Term
	span      lexer.Span
}

// Span returns the abstraction span.
func (l *Lam) Span() lexer.Span { return l.span }

// NewLam constructs an abstraction. The body is usually filled in after the
// parameter has been brought into scope.
func NewLam(param string, paramSpan lexer.Span, body Term, span lexer.Span) *Lam {
	return &Lam{
		Param:     param,
		ParamSpan: paramSpan,
		Body:      body,
		span:      span,
	}
}

// SetSpan updates the abstraction span.
func (l *Lam) SetSpan(span lexer.Span) {
	l.span = span
}

func (*Lam) termNode() {}

// App is the application of Fun to Arg.
type App struct {
	Fun  Term
	Arg  Term
	span lexer.Span
}

// Span returns the application span.
func (a *App) Span() lexer.Span { return a.span }

// NewApp constructs an application node.
func NewApp(fun, arg Term, span lexer.Span) *App {
	return &App{Fun: fun, Arg: arg, span: span}
}

func (*App) termNode() {}

// Opr references a primitive operator.
type Opr struct {
	Op   prim.Op
	span lexer.Span
}

// Span returns the operator span.
func (o *Opr) Span() lexer.Span { return o.span }

// NewOpr constructs an operator reference.
func NewOpr(op prim.Op, span lexer.Span) *Opr {
	return &Opr{Op: op, span: span}
}

func (*Opr) termNode() {}

// Lit is a primitive literal.
type Lit struct {
	Value prim.Literal
	span  lexer.Span
}

// Span returns the literal span.
func (l *Lit) Span() lexer.Span { return l.span }

// NewLit constructs a literal node.
func NewLit(value prim.Literal, span lexer.Span) *Lit {
	return &Lit{Value: value, span: span}
}

func (*Lit) termNode() {}

// Ref is a use of an earlier definition.
type Ref struct {
	Def  *Def
	span lexer.Span
}

// Span returns the reference span.
func (r *Ref) Span() lexer.Span { return r.span }

// NewRef constructs a definition reference.
func NewRef(def *Def, span lexer.Span) *Ref {
	return &Ref{Def: def, span: span}
}

func (*Ref) termNode() {}

// String renders a term in surface syntax. Definition references print as
// their name.
func String(t Term) string {
	var sb strings.Builder
	writeTerm(&sb, t)
	return sb.String()
}

func writeTerm(sb *strings.Builder, t Term) {
	switch n := t.(type) {
	case *Var:
		sb.WriteString(n.Name)
	case *Ref:
		sb.WriteString(n.Def.Name)
	case *Opr:
		sb.WriteString(n.Op.String())
	case *Lit:
		sb.WriteString(n.Value.String())
	case *Lam:
		sb.WriteString("λ")
		var body Term = n
		for {
			lam, ok := body.(*Lam)
			if !ok {
				break
			}
			sb.WriteString(" ")
			sb.WriteString(lam.Param)
			body = lam.Body
		}
		sb.WriteString(" => ")
		writeTerm(sb, body)
	case *App:
		if _, ok := n.Fun.(*Lam); ok {
			sb.WriteString("(")
			writeTerm(sb, n.Fun)
			sb.WriteString(")")
		} else {
			writeTerm(sb, n.Fun)
		}
		sb.WriteString(" ")
		switch n.Arg.(type) {
		case *App, *Lam:
			sb.WriteString("(")
			writeTerm(sb, n.Arg)
			sb.WriteString(")")
		default:
			writeTerm(sb, n.Arg)
		}
	case nil:
		sb.WriteString("<nil>")
	}
}
