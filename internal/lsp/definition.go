package lsp

import (
	"encoding/json"

	"github.com/valus-lang/valus/internal/ast"
)

// Location represents a location in a document.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

func (s *Server) handleDefinition(msg *jsonrpcMessage) *jsonrpcMessage {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return replyError(msg, codeInvalidParams, "Invalid params: %v", err)
	}

	doc := s.document(params.TextDocument.URI)
	if doc == nil || doc.Program == nil {
		return reply(msg, nil)
	}
	return reply(msg, findDefinition(doc, params.Position))
}

// findDefinition resolves a reference to its definition name and a variable
// to its binder. Definitions live in the same document.
func findDefinition(doc *Document, pos Position) *Location {
	switch n := nodeAt(doc.Program, positionToOffset(doc.Content, pos)).(type) {
	case *ast.Ref:
		return &Location{URI: doc.URI, Range: lexerRange(n.Def.NameSpan)}
	case *ast.Var:
		return &Location{URI: doc.URI, Range: lexerRange(n.Binder.ParamSpan)}
	default:
		return nil
	}
}
