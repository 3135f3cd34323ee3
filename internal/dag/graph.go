// Package dag stores lambda terms as a mutable graph with explicit parent
// links, so that a node can be rewired in every place it is used at once.
//
// Nodes live in an arena and are addressed by Ref. Every edge from a Lam or
// App to a child is mirrored by a Cell sitting in the child's parent list.
// A root Cell pins a node from outside the graph. A node with an empty
// parent list is garbage and is released by FreeDead; a Var is the
// exception and lives exactly as long as its abstraction.
package dag

import (
	"fmt"

	"github.com/valus-lang/valus/internal/prim"
)

// Ref addresses a node in a Graph. The zero Ref is nil.
type Ref int32

// Kind tags node variants.
type Kind uint8

const (
	KindFree Kind = iota // slot on the free list
	KindVar
	KindLam
	KindApp
	KindOpr
	KindLit
)

func (k Kind) String() string {
	switch k {
	case KindFree:
		return "free"
	case KindVar:
		return "var"
	case KindLam:
		return "lam"
	case KindApp:
		return "app"
	case KindOpr:
		return "opr"
	case KindLit:
		return "lit"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type node struct {
	kind Kind

	name   string // Var: display name
	binder Ref    // Var: owning Lam, nil once the Lam is freed

	bound Ref // Lam: its Var
	body  Ref // Lam
	fun   Ref // App
	arg   Ref // App

	op  prim.Op
	lit prim.Literal

	parents Cell // head of the parent list
	own     [2]Cell
	linked  bool // own cells are registered with the children

	nextFree Ref
}

// Stats counts node allocations over the graph's lifetime.
type Stats struct {
	Live      int
	Allocated int
	Freed     int
}

// Graph is a node and cell arena. It is not safe for concurrent use.
type Graph struct {
	nodes []node
	cells []cell

	freeNodes Ref
	freeCells Cell

	stats Stats
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make([]node, 1, 64),
		cells: make([]cell, 1, 128),
	}
}

// Stats returns the allocation counters.
func (g *Graph) Stats() Stats { return g.stats }

func (g *Graph) at(n Ref) *node {
	if n <= 0 || int(n) >= len(g.nodes) || g.nodes[n].kind == KindFree {
		panic(fmt.Sprintf("dag: invalid node reference %d", n))
	}
	return &g.nodes[n]
}

func (g *Graph) alloc(nd node) Ref {
	g.stats.Allocated++
	g.stats.Live++
	if n := g.freeNodes; n != 0 {
		g.freeNodes = g.nodes[n].nextFree
		g.nodes[n] = nd
		return n
	}
	g.nodes = append(g.nodes, nd)
	return Ref(len(g.nodes) - 1)
}

func (g *Graph) release(n Ref) {
	g.nodes[n] = node{kind: KindFree, nextFree: g.freeNodes}
	g.freeNodes = n
	g.stats.Live--
	g.stats.Freed++
}

// Kind reports the variant of n.
func (g *Graph) Kind(n Ref) Kind { return g.at(n).kind }

// IsLive reports whether n addresses an allocated node.
func (g *Graph) IsLive(n Ref) bool {
	return n > 0 && int(n) < len(g.nodes) && g.nodes[n].kind != KindFree
}

// Name returns the display name of a Var.
func (g *Graph) Name(v Ref) string { return g.expect(v, KindVar).name }

// Binder returns the Lam owning Var v.
func (g *Graph) Binder(v Ref) Ref { return g.expect(v, KindVar).binder }

// Bound returns the Var of Lam l.
func (g *Graph) Bound(l Ref) Ref { return g.expect(l, KindLam).bound }

// Body returns the body of Lam l.
func (g *Graph) Body(l Ref) Ref { return g.expect(l, KindLam).body }

// Fun returns the function of App a.
func (g *Graph) Fun(a Ref) Ref { return g.expect(a, KindApp).fun }

// Arg returns the argument of App a.
func (g *Graph) Arg(a Ref) Ref { return g.expect(a, KindApp).arg }

// Op returns the operator of an Opr node.
func (g *Graph) Op(o Ref) prim.Op { return g.expect(o, KindOpr).op }

// Lit returns the value of a Lit node.
func (g *Graph) Lit(l Ref) prim.Literal { return g.expect(l, KindLit).lit }

func (g *Graph) expect(n Ref, k Kind) *node {
	nd := g.at(n)
	if nd.kind != k {
		panic(fmt.Sprintf("dag: node %d is %s, want %s", n, nd.kind, k))
	}
	return nd
}

// NewVar allocates a binder placeholder. It belongs to the next Lam it is
// handed to.
func (g *Graph) NewVar(name string) Ref {
	return g.alloc(node{kind: KindVar, name: name})
}

// NewOpr allocates an operator leaf.
func (g *Graph) NewOpr(op prim.Op) Ref {
	return g.alloc(node{kind: KindOpr, op: op})
}

// NewLit allocates a literal leaf.
func (g *Graph) NewLit(lit prim.Literal) Ref {
	return g.alloc(node{kind: KindLit, lit: lit})
}

// NewLam allocates λv. body and registers the body edge.
func (g *Graph) NewLam(v, body Ref) Ref {
	l := g.NewLamUnlinked(v, body)
	g.Link(l)
	return l
}

// NewApp allocates (fun arg) and registers both edges.
func (g *Graph) NewApp(fun, arg Ref) Ref {
	a := g.NewAppUnlinked(fun, arg)
	g.Link(a)
	return a
}

// NewLamUnlinked allocates a Lam whose body edge is not yet visible in the
// body's parent list. Its body may be changed with SetBody until Link.
func (g *Graph) NewLamUnlinked(v, body Ref) Ref {
	vn := g.expect(v, KindVar)
	if vn.binder != 0 {
		panic(fmt.Sprintf("dag: var %d already bound by %d", v, vn.binder))
	}
	l := g.alloc(node{kind: KindLam, bound: v, body: body})
	g.nodes[v].binder = l
	g.nodes[l].own[0] = g.newCell(CellLamBod, l)
	return l
}

// NewAppUnlinked allocates an App whose edges are not yet visible in the
// children's parent lists. Its slots may be changed with SetFun and SetArg
// until Link.
func (g *Graph) NewAppUnlinked(fun, arg Ref) Ref {
	a := g.alloc(node{kind: KindApp, fun: fun, arg: arg})
	g.nodes[a].own[0] = g.newCell(CellAppFun, a)
	g.nodes[a].own[1] = g.newCell(CellAppArg, a)
	return a
}

func (g *Graph) expectUnlinked(n Ref, k Kind) *node {
	nd := g.expect(n, k)
	if nd.linked {
		panic(fmt.Sprintf("dag: node %d is already linked", n))
	}
	return nd
}

// SetBody replaces the body of an unlinked Lam.
func (g *Graph) SetBody(l, body Ref) { g.expectUnlinked(l, KindLam).body = body }

// SetFun replaces the function of an unlinked App.
func (g *Graph) SetFun(a, fun Ref) { g.expectUnlinked(a, KindApp).fun = fun }

// SetArg replaces the argument of an unlinked App.
func (g *Graph) SetArg(a, arg Ref) { g.expectUnlinked(a, KindApp).arg = arg }

// Link registers the child edges of an unlinked Lam or App.
func (g *Graph) Link(n Ref) {
	nd := g.at(n)
	if nd.linked {
		panic(fmt.Sprintf("dag: node %d is already linked", n))
	}
	nd.linked = true
	switch nd.kind {
	case KindLam:
		g.link(nd.body, nd.own[0])
	case KindApp:
		fun, arg, own := nd.fun, nd.arg, nd.own
		g.link(fun, own[0])
		g.link(arg, own[1])
	}
}

// slot returns the child currently held by an owned cell.
func (g *Graph) slot(c Cell) *Ref {
	cl := g.cellAt(c)
	switch cl.kind {
	case CellRoot:
		return &cl.child
	case CellLamBod:
		return &g.nodes[cl.owner].body
	case CellAppFun:
		return &g.nodes[cl.owner].fun
	case CellAppArg:
		return &g.nodes[cl.owner].arg
	}
	panic(fmt.Sprintf("dag: cell %d has unknown kind %d", c, cl.kind))
}
