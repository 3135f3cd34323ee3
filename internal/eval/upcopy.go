package eval

import "github.com/valus-lang/valus/internal/dag"

type upcopyItem struct {
	child dag.Ref
	cell  dag.Cell
}

// copier holds the state of one contraction: the original-to-copy map and
// the copies waiting to be linked. Copies stay unlinked until the
// contraction finishes, so walking an original's parent list never runs
// into a half-built copy.
type copier struct {
	e       *Evaluator
	memo    map[dag.Ref]dag.Ref
	pending []dag.Ref
	work    []upcopyItem
}

func newCopier(e *Evaluator) *copier {
	return &copier{e: e, memo: make(map[dag.Ref]dag.Ref)}
}

func (c *copier) remember(orig, cp dag.Ref) {
	c.memo[orig] = cp
	c.pending = append(c.pending, cp)
	c.e.stats.Copies++
}

// copyApp creates and memoizes an unlinked copy of App a with the same
// children.
func (c *copier) copyApp(a dag.Ref) dag.Ref {
	g := c.e.g
	cp := g.NewAppUnlinked(g.Fun(a), g.Arg(a))
	c.remember(a, cp)
	return cp
}

func (c *copier) push(child dag.Ref, cells []dag.Cell) {
	for _, cell := range cells {
		c.work = append(c.work, upcopyItem{child: child, cell: cell})
	}
}

// upcopy installs child in place of the original held by each of cells,
// copying every ancestor on the way up at most once.
func (c *copier) upcopy(child dag.Ref, cells []dag.Cell) {
	g := c.e.g
	c.push(child, cells)

	for len(c.work) > 0 {
		it := c.work[len(c.work)-1]
		c.work = c.work[:len(c.work)-1]
		c.e.stats.Upcopies++

		owner := g.Owner(it.cell)
		switch kind := g.CellKind(it.cell); kind {
		case dag.CellRoot:
			continue

		case dag.CellLamBod:
			if cp, ok := c.memo[owner]; ok {
				g.SetBody(cp, it.child)
				continue
			}
			// The copy gets its own binder; occurrences of the old one
			// below the copy are redirected to it.
			old := g.Bound(owner)
			fresh := g.NewVar(g.Name(old))
			cp := g.NewLamUnlinked(fresh, it.child)
			c.remember(owner, cp)
			c.push(fresh, g.Parents(old))
			c.push(cp, g.Parents(owner))

		case dag.CellAppFun, dag.CellAppArg:
			if cp, ok := c.memo[owner]; ok {
				if kind == dag.CellAppFun {
					g.SetFun(cp, it.child)
				} else {
					g.SetArg(cp, it.child)
				}
				continue
			}
			fun, arg := g.Fun(owner), g.Arg(owner)
			if kind == dag.CellAppFun {
				fun = it.child
			} else {
				arg = it.child
			}
			cp := g.NewAppUnlinked(fun, arg)
			c.remember(owner, cp)
			c.push(cp, g.Parents(owner))

		default:
			panic(InternalError{Op: "upcopy", Node: owner, Detail: "unknown cell kind " + kind.String()})
		}
	}
}

// linkAll registers the edges of every copy made so far.
func (c *copier) linkAll() {
	for _, cp := range c.pending {
		c.e.g.Link(cp)
	}
	c.pending = nil
}
