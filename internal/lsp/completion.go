package lsp

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/valus-lang/valus/internal/ast"
	"github.com/valus-lang/valus/internal/prim"
)

// CompletionList represents a list of completion items.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

type CompletionItem struct {
	Label  string `json:"label"`
	Kind   int    `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

const (
	completionKindFunction = 3
	completionKindVariable = 6
	completionKindKeyword  = 14
	completionKindConstant = 21
	completionKindOperator = 24
)

func (s *Server) handleCompletion(msg *jsonrpcMessage) *jsonrpcMessage {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return replyError(msg, codeInvalidParams, "Invalid params: %v", err)
	}

	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return reply(msg, CompletionList{Items: []CompletionItem{}})
	}
	return reply(msg, CompletionList{Items: completions(doc, params.Position)})
}

// completions offers operators and hash literals after '#', otherwise the
// binders in scope, earlier definitions and the def keyword.
func completions(doc *Document, pos Position) []CompletionItem {
	offset := positionToOffset(doc.Content, pos)
	prefix := wordBefore(doc.Content, offset)

	var items []CompletionItem
	if strings.HasPrefix(prefix, "#") {
		items = lo.Map(prim.Ops(), func(op prim.Op, _ int) CompletionItem {
			return CompletionItem{
				Label:  op.String(),
				Kind:   completionKindOperator,
				Detail: fmt.Sprintf("%s, arity %d", op.Family(), op.Arity()),
			}
		})
		items = append(items,
			CompletionItem{Label: "#true", Kind: completionKindConstant, Detail: "Bool"},
			CompletionItem{Label: "#false", Kind: completionKindConstant, Detail: "Bool"},
		)
	} else {
		if doc.Program != nil {
			binders := lo.Uniq(lo.Reverse(bindersAt(doc.Program, offset)))
			for _, name := range binders {
				items = append(items, CompletionItem{Label: name, Kind: completionKindVariable, Detail: "binder"})
			}
			for _, def := range defsBefore(doc.Program, offset) {
				if lo.Contains(binders, def.Name) {
					continue
				}
				items = append(items, CompletionItem{
					Label:  def.Name,
					Kind:   completionKindFunction,
					Detail: "def " + def.Name + " = " + ast.String(def.Body),
				})
			}
		}
		items = append(items, CompletionItem{Label: "def", Kind: completionKindKeyword})
	}

	return lo.Filter(items, func(item CompletionItem, _ int) bool {
		return strings.HasPrefix(item.Label, prefix)
	})
}

// wordBefore returns the identifier or hash token ending at offset.
func wordBefore(content string, offset int) string {
	runes := []rune(content)
	offset = min(offset, len(runes))
	start := offset
	for start > 0 {
		r := runes[start-1]
		if r == 'λ' || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\'' || r == '.' || r == '#') {
			break
		}
		start--
	}
	return string(runes[start:offset])
}
