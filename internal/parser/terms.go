package parser

import (
	"errors"

	"github.com/samber/lo"

	"github.com/valus-lang/valus/internal/ast"
	"github.com/valus-lang/valus/internal/diag"
	"github.com/valus-lang/valus/internal/lexer"
	"github.com/valus-lang/valus/internal/prim"
)

// startsAtom reports whether tt can begin an application argument.
func startsAtom(tt lexer.TokenType) bool {
	switch tt {
	case lexer.IDENT, lexer.NUMBER, lexer.HASH, lexer.LPAREN:
		return true
	default:
		return false
	}
}

// parseTerm parses `λ params => term` or an application chain.
func (p *Parser) parseTerm() ast.Term {
	if p.curTok.Type == lexer.LAMBDA {
		return p.parseLambda()
	}
	return p.parseApp()
}

// parseLambda desugars λ x y => b into λ x => λ y => b.
func (p *Parser) parseLambda() ast.Term {
	start := p.curTok.Span
	p.nextToken() // consume λ

	var params []lexer.Token
	for p.curTok.Type == lexer.IDENT {
		params = append(params, p.curTok)
		p.nextToken()
	}
	if len(params) == 0 {
		p.reportUnexpected(p.curTok, "expected parameter name after 'λ'")
		return nil
	}
	if p.curTok.Type != lexer.FATARROW {
		p.reportUnexpected(p.curTok, "expected '=>' after parameters")
		return nil
	}
	p.nextToken()

	lams := lo.Map(params, func(tok lexer.Token, _ int) *ast.Lam {
		return ast.NewLam(tok.Literal, tok.Span, nil, tok.Span)
	})
	p.scope = append(p.scope, lams...)
	body := p.parseTerm()
	p.scope = p.scope[:len(p.scope)-len(lams)]
	if body == nil {
		return nil
	}

	for i := len(lams) - 1; i >= 0; i-- {
		lams[i].Body = body
		lams[i].SetSpan(mergeSpan(lams[i].ParamSpan, body.Span()))
		body = lams[i]
	}
	lams[0].SetSpan(mergeSpan(start, lams[0].Span()))
	return lams[0]
}

// parseApp parses left-associative juxtaposition: f a b is (f a) b.
func (p *Parser) parseApp() ast.Term {
	fun := p.parseAtom()
	if fun == nil {
		return nil
	}
	for startsAtom(p.curTok.Type) {
		arg := p.parseAtom()
		if arg == nil {
			return nil
		}
		fun = ast.NewApp(fun, arg, mergeSpan(fun.Span(), arg.Span()))
	}
	return fun
}

func (p *Parser) parseAtom() ast.Term {
	tok := p.curTok

	switch tok.Type {
	case lexer.IDENT:
		p.nextToken()
		return p.resolve(tok)

	case lexer.NUMBER:
		p.nextToken()
		lit, err := prim.ParseNumber(tok.Literal)
		if err != nil {
			p.reportCode(diag.CodeParseInvalidLiteral, err.Error(), tok.Span, "")
			return nil
		}
		return ast.NewLit(lit, tok.Span)

	case lexer.HASH:
		p.nextToken()
		return p.parseHash(tok)

	case lexer.LPAREN:
		p.nextToken()
		inner := p.parseTerm()
		if inner == nil {
			return nil
		}
		if p.curTok.Type != lexer.RPAREN {
			p.reportUnexpected(p.curTok, "expected ')'")
			return nil
		}
		p.nextToken()
		return inner

	case lexer.ILLEGAL:
		// Already reported by the lexer.
		p.nextToken()
		return nil

	default:
		p.reportUnexpected(tok, "expected a term")
		return nil
	}
}

func (p *Parser) parseHash(tok lexer.Token) ast.Term {
	if prim.IsOpSyntax(tok.Literal) {
		op, err := prim.LookupOp(tok.Literal)
		if err != nil {
			p.reportCode(diag.CodeParseUnknownOperator, err.Error(), tok.Span,
				"run `valus ops` to list the available operators")
			return nil
		}
		return ast.NewOpr(op, tok.Span)
	}

	lit, err := prim.ParseHashLiteral(tok.Literal)
	if err != nil {
		help := ""
		if errors.Is(err, prim.ErrInvalidLiteral) {
			help = "literals are #true, #false, #b<binary digits> or #x<hex digits>"
		}
		p.reportCode(diag.CodeParseInvalidLiteral, err.Error(), tok.Span, help)
		return nil
	}
	return ast.NewLit(lit, tok.Span)
}

// resolve binds an identifier to the innermost enclosing binder of that
// name, falling back to a definition.
func (p *Parser) resolve(tok lexer.Token) ast.Term {
	for i := len(p.scope) - 1; i >= 0; i-- {
		if lam := p.scope[i]; lam.Param == tok.Literal {
			return ast.NewVar(tok.Literal, lam, tok.Span)
		}
	}
	if def, ok := p.defs[tok.Literal]; ok {
		return ast.NewRef(def, tok.Span)
	}
	p.reportUnbound(tok)
	return nil
}
