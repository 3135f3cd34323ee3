package eval

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/valus-lang/valus/internal/dag"
	"github.com/valus-lang/valus/internal/prim"
)

// reduceLam contracts the redex app, whose function is lam, and returns
// the node now standing where app stood. app is reclaimed.
func (e *Evaluator) reduceLam(app, lam dag.Ref) dag.Ref {
	g := e.g
	x := g.Bound(lam)
	arg := g.Arg(app)
	name := g.Name(x)

	var ans dag.Ref
	var how string
	switch {
	case g.IsSingleton(lam):
		// Nobody else can see lam, so substitute in place.
		g.ReplaceChild(x, arg)
		ans = g.Body(lam)
		how = "in place"
	case !g.HasParents(x):
		ans = g.Body(lam)
		how = "unused"
	default:
		ans = e.contractShared(lam, x, arg)
		how = "up-copy"
	}

	g.ReplaceChild(app, ans)
	g.FreeDead(app)

	e.stats.Contractions++
	e.tracef("step %d: beta %s (%s)", e.stats.Steps, name, how)
	return ans
}

// contractShared instantiates the body of a shared abstraction with arg,
// leaving lam itself untouched.
//
// The body is entered through any directly nested abstractions; those are
// rebuilt around the instantiated core with fresh binders.
func (e *Evaluator) contractShared(lam, x, arg dag.Ref) dag.Ref {
	g := e.g

	var chain []dag.Ref
	body := g.Body(lam)
	for g.Kind(body) == dag.KindLam {
		chain = append(chain, body)
		body = g.Body(body)
	}

	fresh := make([]dag.Ref, len(chain))
	for i, l := range chain {
		fresh[i] = g.NewVar(g.Name(g.Bound(l)))
	}

	var core dag.Ref
	switch {
	case g.Kind(body) == dag.KindApp:
		c := newCopier(e)
		core = c.copyApp(body)
		c.upcopy(arg, g.Parents(x))
		for i, l := range chain {
			c.upcopy(fresh[i], g.Parents(g.Bound(l)))
		}
		c.linkAll()
	case body == x:
		core = arg
	default:
		panic(InternalError{
			Op:     "contract",
			Node:   body,
			Detail: "bound variable occurs but body ends in " + g.Kind(body).String(),
		})
	}

	for i := len(chain) - 1; i >= 0; i-- {
		core = g.NewLam(fresh[i], core)
	}
	return core
}

// whnf reduces n to weak-head normal form in place and returns the node
// that now stands where n stood.
func (e *Evaluator) whnf(n dag.Ref) (dag.Ref, error) {
	g := e.g
	var trail []dag.Ref

	result := func() dag.Ref {
		if len(trail) > 0 {
			return trail[0]
		}
		return n
	}

	for {
		switch g.Kind(n) {
		case dag.KindApp:
			trail = append(trail, n)
			n = g.Fun(n)

		case dag.KindLam:
			if len(trail) == 0 {
				return n, nil
			}
			if err := e.step(); err != nil {
				return result(), err
			}
			app := trail[len(trail)-1]
			trail = trail[:len(trail)-1]
			n = e.reduceLam(app, n)

		case dag.KindOpr:
			if g.Op(n).Arity() == 0 {
				lit, err := e.applyConst(n)
				if err != nil || lit == 0 {
					return result(), err
				}
				n = lit
				continue
			}
			lit, err := e.applyPrim(n, trail)
			if err != nil || lit == 0 {
				return result(), err
			}
			trail = trail[:len(trail)-2]
			n = lit

		default:
			return result(), nil
		}
	}
}

// applyPrim tries to apply the binary operator opr to the two innermost
// arguments on trail. It returns the literal that replaced the outer
// application, or 0 when the application is stuck.
func (e *Evaluator) applyPrim(opr dag.Ref, trail []dag.Ref) (dag.Ref, error) {
	g := e.g
	op := g.Op(opr)
	if op.Arity() != 2 || len(trail) < 2 {
		return 0, nil
	}
	inner, outer := trail[len(trail)-1], trail[len(trail)-2]

	if _, err := e.whnf(g.Arg(inner)); err != nil {
		return 0, err
	}
	if _, err := e.whnf(g.Arg(outer)); err != nil {
		return 0, err
	}
	a, b := g.Arg(inner), g.Arg(outer)
	if g.Kind(a) != dag.KindLit || g.Kind(b) != dag.KindLit {
		return 0, nil
	}
	val, ok := prim.ApplyBinary(op, g.Lit(a), g.Lit(b))
	if !ok {
		return 0, nil
	}
	if err := e.step(); err != nil {
		return 0, err
	}
	e.tracef("step %d: %s %s %s = %s", e.stats.Steps, op, g.Lit(a), g.Lit(b), val)

	lit := g.NewLit(val)
	g.ReplaceChild(outer, lit)
	g.FreeDead(outer)

	e.stats.PrimOps++
	return lit, nil
}

// applyConst replaces a nullary operator with its value everywhere it
// occurs. It returns 0 when the operator has no value.
func (e *Evaluator) applyConst(opr dag.Ref) (dag.Ref, error) {
	g := e.g
	op := g.Op(opr)
	val, ok := prim.ApplyNullary(op)
	if !ok {
		return 0, nil
	}
	if err := e.step(); err != nil {
		return 0, err
	}
	e.tracef("step %d: %s = %s", e.stats.Steps, op, val)

	lit := g.NewLit(val)
	g.ReplaceChild(opr, lit)
	g.FreeDead(opr)

	e.stats.PrimOps++
	return lit, nil
}

// norm reduces n to full normal form: n is brought to weak-head normal
// form, then every function, argument and body below it in turn. Shared
// subterms are normalized once.
func (e *Evaluator) norm(n dag.Ref) (dag.Ref, error) {
	g := e.g
	top, err := e.whnf(n)
	if err != nil {
		return top, err
	}

	done := set.New[dag.Ref](64)
	work := []dag.Ref{top}
	for len(work) > 0 {
		m := work[len(work)-1]
		work = work[:len(work)-1]
		if !done.Insert(m) {
			continue
		}

		switch g.Kind(m) {
		case dag.KindApp:
			fun, err := e.whnf(g.Fun(m))
			if err != nil {
				return top, err
			}
			arg, err := e.whnf(g.Arg(m))
			if err != nil {
				return top, err
			}
			work = append(work, arg, fun)
		case dag.KindLam:
			body, err := e.whnf(g.Body(m))
			if err != nil {
				return top, err
			}
			work = append(work, body)
		}
	}
	return top, nil
}
