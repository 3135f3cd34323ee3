package lsp

import (
	"github.com/valus-lang/valus/internal/ast"
	"github.com/valus-lang/valus/internal/lexer"
)

// binderSite marks the parameter of an abstraction under the cursor.
type binderSite struct {
	lam *ast.Lam
}

func (b binderSite) Span() lexer.Span { return b.lam.ParamSpan }

// defSite marks the name of a definition under the cursor.
type defSite struct {
	def *ast.Def
}

func (d defSite) Span() lexer.Span { return d.def.NameSpan }

// nodeAt returns the innermost name-like node covering offset: a variable,
// reference, operator, literal, binder or definition name.
func nodeAt(prog *ast.Program, offset int) ast.Node {
	if prog == nil {
		return nil
	}

	var found ast.Node
	ast.Walk(prog, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		switch n := n.(type) {
		case *ast.Program:
			return true
		case *ast.Def:
			if contains(n.NameSpan, offset) {
				found = defSite{n}
				return false
			}
			return covers(n.Span(), offset)
		case *ast.Lam:
			if contains(n.ParamSpan, offset) {
				found = binderSite{n}
				return false
			}
			return covers(n.Span(), offset)
		case *ast.App:
			return covers(n.Span(), offset)
		default:
			if contains(n.Span(), offset) {
				found = n
			}
			return false
		}
	})
	return found
}

// bindersAt lists the parameters in scope at offset, innermost last.
func bindersAt(prog *ast.Program, offset int) []string {
	var names []string
	ast.Walk(prog, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Program:
			return true
		case *ast.Lam:
			if covers(n.Span(), offset) && offset >= n.ParamSpan.End {
				names = append(names, n.Param)
				return true
			}
			return false
		case *ast.Def, *ast.App:
			return covers(n.Span(), offset)
		default:
			return false
		}
	})
	return names
}

// defsBefore returns the definitions visible at offset: those that start
// earlier and do not contain it.
func defsBefore(prog *ast.Program, offset int) []*ast.Def {
	var defs []*ast.Def
	for _, def := range prog.Defs {
		if def.Span().Start >= offset || covers(def.Span(), offset) {
			break
		}
		defs = append(defs, def)
	}
	return defs
}

func contains(span lexer.Span, offset int) bool {
	return offset >= span.Start && offset < span.End
}

// covers also accepts a cursor sitting just past the end of span.
func covers(span lexer.Span, offset int) bool {
	return offset >= span.Start && offset <= span.End
}

// positionToOffset converts an LSP position into a rune offset.
func positionToOffset(content string, pos Position) int {
	line, col, offset := 0, 0, 0
	for _, r := range content {
		if line == pos.Line && col == pos.Character {
			return offset
		}
		if r == '\n' {
			if line == pos.Line {
				// Past the end of the line.
				return offset
			}
			line++
			col = 0
		} else {
			col++
		}
		offset++
	}
	return offset
}

// lexerRange converts a 1-based span into a 0-based LSP range. Spans sit on
// one line.
func lexerRange(span lexer.Span) Range {
	start := Position{Line: max(0, span.Line-1), Character: max(0, span.Column-1)}
	end := start
	end.Character += max(0, span.End-span.Start)
	return Range{Start: start, End: end}
}
