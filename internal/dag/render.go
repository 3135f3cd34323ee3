package dag

import (
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// Render prints the term at n in surface syntax: nested abstractions are
// merged into one λ, application is juxtaposition, a function-position
// abstraction and an argument-position application or abstraction are
// parenthesized.
//
// Binders keep their names unless that would capture a free occurrence of
// an outer variable with the same name, in which case primes are appended.
func Render(g *Graph, n Ref) string {
	r := renderer{
		g:     g,
		names: make(map[Ref]string),
		free:  make(map[Ref]*set.Set[Ref]),
	}
	var sb strings.Builder
	r.term(&sb, n)
	return sb.String()
}

type renderer struct {
	g     *Graph
	names map[Ref]string // display names of binders in scope
	free  map[Ref]*set.Set[Ref]
}

func (r *renderer) display(v Ref) string {
	if name, ok := r.names[v]; ok {
		return name
	}
	return r.g.Name(v)
}

// freeVars returns the Vars occurring free under n.
func (r *renderer) freeVars(n Ref) *set.Set[Ref] {
	if fv, ok := r.free[n]; ok {
		return fv
	}
	var fv *set.Set[Ref]
	switch r.g.Kind(n) {
	case KindVar:
		fv = set.From([]Ref{n})
	case KindLam:
		fv = r.freeVars(r.g.Body(n)).Copy()
		fv.Remove(r.g.Bound(n))
	case KindApp:
		fv = r.freeVars(r.g.Fun(n)).Copy()
		fv.InsertSet(r.freeVars(r.g.Arg(n)))
	default:
		fv = set.New[Ref](0)
	}
	r.free[n] = fv
	return fv
}

// pick chooses a display name for v that captures nothing in body.
func (r *renderer) pick(v, body Ref) string {
	name := r.g.Name(v)
	fv := r.freeVars(body)
	for {
		clash := false
		for u := range fv.Items() {
			if u != v && r.display(u) == name {
				clash = true
				break
			}
		}
		if !clash {
			return name
		}
		name += "'"
	}
}

func (r *renderer) term(sb *strings.Builder, n Ref) {
	g := r.g
	switch g.Kind(n) {
	case KindVar:
		sb.WriteString(r.display(n))

	case KindOpr:
		sb.WriteString(g.Op(n).String())

	case KindLit:
		sb.WriteString(g.Lit(n).String())

	case KindLam:
		sb.WriteString("λ")
		var bound []Ref
		m := n
		for g.Kind(m) == KindLam {
			v := g.Bound(m)
			name := r.pick(v, g.Body(m))
			r.names[v] = name
			bound = append(bound, v)
			sb.WriteString(" ")
			sb.WriteString(name)
			m = g.Body(m)
		}
		sb.WriteString(" => ")
		r.term(sb, m)
		for _, v := range bound {
			delete(r.names, v)
		}

	case KindApp:
		fun, arg := g.Fun(n), g.Arg(n)
		if g.Kind(fun) == KindLam {
			r.parens(sb, fun)
		} else {
			r.term(sb, fun)
		}
		sb.WriteString(" ")
		switch g.Kind(arg) {
		case KindApp, KindLam:
			r.parens(sb, arg)
		default:
			r.term(sb, arg)
		}
	}
}

func (r *renderer) parens(sb *strings.Builder, n Ref) {
	sb.WriteString("(")
	r.term(sb, n)
	sb.WriteString(")")
}
