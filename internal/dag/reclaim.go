package dag

import "github.com/hashicorp/go-set/v3"

// FreeDead releases n if nothing points at it, then every child left
// without parents in turn. Nodes with at least one parent are never
// touched. A Var is released only once its Lam is gone.
func (g *Graph) FreeDead(n Ref) {
	if !g.IsLive(n) || g.HasParents(n) {
		return
	}

	stack := []Ref{n}
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Children may be pushed more than once, e.g. both slots of (x x).
		if !g.IsLive(m) || g.nodes[m].parents != 0 {
			continue
		}

		nd := g.nodes[m]
		switch nd.kind {
		case KindVar:
			if nd.binder != 0 {
				continue
			}
		case KindLam:
			// The binder goes below the body so it is examined after the
			// body's occurrences have been released.
			g.nodes[nd.bound].binder = 0
			stack = append(stack, nd.bound)
			if nd.linked {
				g.unlink(nd.own[0])
				stack = append(stack, nd.body)
			}
			g.releaseCell(nd.own[0])
		case KindApp:
			if nd.linked {
				g.unlink(nd.own[0])
				g.unlink(nd.own[1])
				stack = append(stack, nd.arg, nd.fun)
			}
			g.releaseCell(nd.own[0])
			g.releaseCell(nd.own[1])
		}
		g.release(m)
	}
}

// Reachable counts the nodes reachable from n along forward edges,
// binders included.
func (g *Graph) Reachable(n Ref) int {
	seen := set.New[Ref](64)
	stack := []Ref{n}
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if m == 0 || !seen.Insert(m) {
			continue
		}
		nd := g.at(m)
		switch nd.kind {
		case KindLam:
			stack = append(stack, nd.bound, nd.body)
		case KindApp:
			stack = append(stack, nd.fun, nd.arg)
		}
	}
	return seen.Size()
}
