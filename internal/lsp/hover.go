package lsp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/valus-lang/valus/internal/ast"
	"github.com/valus-lang/valus/internal/dag"
	"github.com/valus-lang/valus/internal/eval"
)

// TextDocumentPositionParams represents a position in a text document.
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// Hover represents hover information.
type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func (s *Server) handleHover(msg *jsonrpcMessage) *jsonrpcMessage {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return replyError(msg, codeInvalidParams, "Invalid params: %v", err)
	}

	doc := s.document(params.TextDocument.URI)
	if doc == nil || doc.Program == nil {
		return reply(msg, nil)
	}
	return reply(msg, s.getHover(doc, params.Position))
}

func (s *Server) getHover(doc *Document, pos Position) *Hover {
	node := nodeAt(doc.Program, positionToOffset(doc.Content, pos))
	if node == nil {
		return nil
	}

	var content string
	switch n := node.(type) {
	case defSite:
		content = s.describeDef(n.def)
	case *ast.Ref:
		content = s.describeDef(n.Def)
	case *ast.Var:
		span := n.Binder.ParamSpan
		content = fmt.Sprintf("```valus\n%s\n```\nbound at %d:%d", n.Name, span.Line, span.Column)
	case binderSite:
		content = fmt.Sprintf("```valus\nλ %s\n```\nbinder", n.lam.Param)
	case *ast.Opr:
		content = fmt.Sprintf("```valus\n%s\n```\n%s operator of arity %d", n.Op, n.Op.Family(), n.Op.Arity())
	case *ast.Lit:
		content = fmt.Sprintf("```valus\n%s\n```\n%s literal", n.Value, n.Value.Family())
	default:
		return nil
	}

	r := lexerRange(node.Span())
	return &Hover{
		Contents: MarkupContent{Kind: "markdown", Value: content},
		Range:    &r,
	}
}

func (s *Server) describeDef(def *ast.Def) string {
	content := fmt.Sprintf("```valus\ndef %s = %s\n```", def.Name, ast.String(def.Body))
	if nf, err := normalForm(def.Body, s.hoverFuel); err == nil {
		content += fmt.Sprintf("\nnormal form: `%s`", nf)
	} else if errors.Is(err, eval.ErrBudgetExhausted) {
		content += fmt.Sprintf("\nno normal form within %d steps", s.hoverFuel)
	}
	return content
}

// normalForm reduces a copy of t in a scratch graph.
func normalForm(t ast.Term, fuel int) (nf string, err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(eval.InternalError)
			if !ok {
				panic(r)
			}
			err = ie
		}
	}()

	g := dag.New()
	root := g.NewRoot(dag.NewBuilder(g).Build(t))
	res, err := eval.New(g, eval.Options{MaxSteps: fuel}).Norm(root)
	if err != nil {
		return "", err
	}
	return dag.Render(g, res), nil
}
