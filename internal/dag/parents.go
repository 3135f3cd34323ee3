package dag

import "fmt"

// Cell is a handle to a parent-list entry. The zero Cell is nil.
type Cell int32

// CellKind tells which edge of its owner a cell stands for.
type CellKind uint8

const (
	CellLamBod CellKind = iota + 1
	CellAppFun
	CellAppArg
	CellRoot
)

func (k CellKind) String() string {
	switch k {
	case CellLamBod:
		return "lam-body"
	case CellAppFun:
		return "app-fun"
	case CellAppArg:
		return "app-arg"
	case CellRoot:
		return "root"
	default:
		return fmt.Sprintf("cell(%d)", uint8(k))
	}
}

type cell struct {
	kind  CellKind
	owner Ref // nil for root cells
	child Ref // node whose parent list holds the cell, nil while detached

	prev, next Cell
	nextFree   Cell
}

func (g *Graph) newCell(kind CellKind, owner Ref) Cell {
	c := cell{kind: kind, owner: owner}
	if id := g.freeCells; id != 0 {
		g.freeCells = g.cells[id].nextFree
		g.cells[id] = c
		return id
	}
	g.cells = append(g.cells, c)
	return Cell(len(g.cells) - 1)
}

func (g *Graph) releaseCell(c Cell) {
	g.cells[c] = cell{nextFree: g.freeCells}
	g.freeCells = c
}

func (g *Graph) cellAt(c Cell) *cell {
	if c <= 0 || int(c) >= len(g.cells) || g.cells[c].kind == 0 {
		panic(fmt.Sprintf("dag: invalid cell %d", c))
	}
	return &g.cells[c]
}

// CellKind reports which edge c stands for.
func (g *Graph) CellKind(c Cell) CellKind { return g.cellAt(c).kind }

// Owner returns the node owning c, or nil for a root cell.
func (g *Graph) Owner(c Cell) Ref { return g.cellAt(c).owner }

// Child returns the node c currently points at.
func (g *Graph) Child(c Cell) Ref { return *g.slot(c) }

// link inserts c at the head of child's parent list and points c's slot at
// child.
func (g *Graph) link(child Ref, c Cell) {
	cl := g.cellAt(c)
	if cl.child != 0 {
		panic(fmt.Sprintf("dag: cell %d is already linked to %d", c, cl.child))
	}
	nd := g.at(child)
	cl.child = child
	cl.prev = 0
	cl.next = nd.parents
	if nd.parents != 0 {
		g.cells[nd.parents].prev = c
	}
	nd.parents = c
	*g.slot(c) = child
}

// unlink removes c from the parent list it sits in. The owner's slot is
// left untouched.
func (g *Graph) unlink(c Cell) {
	cl := g.cellAt(c)
	if cl.child == 0 {
		panic(fmt.Sprintf("dag: cell %d is not linked", c))
	}
	if cl.prev != 0 {
		g.cells[cl.prev].next = cl.next
	} else {
		g.nodes[cl.child].parents = cl.next
	}
	if cl.next != 0 {
		g.cells[cl.next].prev = cl.prev
	}
	cl.child, cl.prev, cl.next = 0, 0, 0
}

// HasParents reports whether any cell points at n.
func (g *Graph) HasParents(n Ref) bool { return g.at(n).parents != 0 }

// IsSingleton reports whether exactly one cell points at n.
func (g *Graph) IsSingleton(n Ref) bool {
	head := g.at(n).parents
	return head != 0 && g.cells[head].next == 0
}

// ParentCount returns the length of n's parent list.
func (g *Graph) ParentCount(n Ref) int {
	count := 0
	for c := g.at(n).parents; c != 0; c = g.cells[c].next {
		count++
	}
	return count
}

// Parents returns a snapshot of n's parent list, most recently linked first.
func (g *Graph) Parents(n Ref) []Cell {
	var out []Cell
	for c := g.at(n).parents; c != 0; c = g.cells[c].next {
		out = append(out, c)
	}
	return out
}

// ReplaceChild moves every parent of old over to repl, so that each edge
// that pointed at old now points at repl. old is left without parents; the
// caller decides whether to reclaim it.
func (g *Graph) ReplaceChild(old, repl Ref) {
	if old == repl {
		return
	}
	g.at(repl)
	for {
		c := g.at(old).parents
		if c == 0 {
			return
		}
		g.unlink(c)
		g.link(repl, c)
	}
}

// NewRoot pins n from outside the graph.
func (g *Graph) NewRoot(n Ref) Cell {
	c := g.newCell(CellRoot, 0)
	g.link(n, c)
	return c
}

// RootNode returns the node a root cell currently pins.
func (g *Graph) RootNode(c Cell) Ref {
	cl := g.cellAt(c)
	if cl.kind != CellRoot {
		panic(fmt.Sprintf("dag: cell %d is a %s cell, not a root", c, cl.kind))
	}
	return cl.child
}

// Unroot releases a root cell and reclaims whatever it kept alive.
func (g *Graph) Unroot(c Cell) {
	n := g.RootNode(c)
	g.unlink(c)
	g.releaseCell(c)
	g.FreeDead(n)
}
