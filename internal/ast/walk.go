package ast

// Walk traverses the AST starting from node, calling fn for each node.
// If fn returns false, Walk stops traversing that branch. References are
// not followed into the definitions they name.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, def := range n.Defs {
			Walk(def, fn)
		}

	case *Def:
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *Lam:
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *App:
		Walk(n.Fun, fn)
		Walk(n.Arg, fn)

	case *Var, *Opr, *Lit, *Ref:
		// leaves
	}
}
