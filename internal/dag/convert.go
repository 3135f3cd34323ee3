package dag

import (
	"fmt"

	"github.com/valus-lang/valus/internal/ast"
)

// Builder converts parsed terms into graph nodes. Within one Builder every
// definition is converted once, and each reference to it shares that
// subgraph. A Builder must not outlive the evaluation of what it built:
// reduction may reclaim a definition's nodes and reuse their slots.
type Builder struct {
	g    *Graph
	defs map[*ast.Def]Ref
	vars map[*ast.Lam]Ref
}

// NewBuilder returns a Builder allocating into g.
func NewBuilder(g *Graph) *Builder {
	return &Builder{
		g:    g,
		defs: make(map[*ast.Def]Ref),
		vars: make(map[*ast.Lam]Ref),
	}
}

// Build converts t and returns its node. The node has no parents yet; pin
// it with NewRoot before reducing.
func (b *Builder) Build(t ast.Term) Ref {
	switch n := t.(type) {
	case *ast.Var:
		v, ok := b.vars[n.Binder]
		if !ok {
			panic(fmt.Sprintf("dag: variable %s used outside its binder", n.Name))
		}
		return v

	case *ast.Lam:
		v := b.g.NewVar(n.Param)
		b.vars[n] = v
		body := b.Build(n.Body)
		delete(b.vars, n)
		return b.g.NewLam(v, body)

	case *ast.App:
		fun := b.Build(n.Fun)
		arg := b.Build(n.Arg)
		return b.g.NewApp(fun, arg)

	case *ast.Opr:
		return b.g.NewOpr(n.Op)

	case *ast.Lit:
		return b.g.NewLit(n.Value)

	case *ast.Ref:
		if r, ok := b.defs[n.Def]; ok {
			return r
		}
		r := b.Build(n.Def.Body)
		b.defs[n.Def] = r
		return r

	default:
		panic(fmt.Sprintf("dag: cannot convert %T", t))
	}
}
