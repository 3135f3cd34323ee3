package dag

import (
	"testing"

	"github.com/valus-lang/valus/internal/prim"
)

func TestLinkAndParents(t *testing.T) {
	g := New()
	x := g.NewVar("x")
	app := g.NewApp(x, x)
	lam := g.NewLam(x, app)

	if g.ParentCount(x) != 2 {
		t.Fatalf("x has %d parents, want 2", g.ParentCount(x))
	}
	if g.IsSingleton(x) {
		t.Fatal("x is used twice")
	}
	if !g.IsSingleton(app) {
		t.Fatal("app has exactly one parent")
	}
	if g.HasParents(lam) {
		t.Fatal("lam is not pinned yet")
	}
	if g.Binder(x) != lam || g.Bound(lam) != x {
		t.Fatal("binder links wrong")
	}

	kinds := map[CellKind]bool{}
	for _, c := range g.Parents(x) {
		if g.Owner(c) != app || g.Child(c) != x {
			t.Fatalf("cell %d: owner %d child %d", c, g.Owner(c), g.Child(c))
		}
		kinds[g.CellKind(c)] = true
	}
	if !kinds[CellAppFun] || !kinds[CellAppArg] {
		t.Fatalf("expected fun and arg cells, got %v", kinds)
	}
}

func TestReplaceChildMovesEveryParent(t *testing.T) {
	g := New()
	x := g.NewVar("x")
	app := g.NewApp(x, x)
	lam := g.NewLam(x, app)
	root := g.NewRoot(lam)

	lit := g.NewLit(prim.U8(7))
	g.ReplaceChild(x, lit)

	if g.HasParents(x) {
		t.Fatal("x should have no parents left")
	}
	if g.Fun(app) != lit || g.Arg(app) != lit {
		t.Fatal("both slots should point at the literal")
	}
	if g.ParentCount(lit) != 2 {
		t.Fatalf("literal has %d parents, want 2", g.ParentCount(lit))
	}
	if got := Render(g, g.RootNode(root)); got != "λ x => 7u8 7u8" {
		t.Fatalf("Render = %q", got)
	}
}

func TestReplaceChildOnRoot(t *testing.T) {
	g := New()
	a := g.NewLit(prim.Bool(true))
	b := g.NewLit(prim.Bool(false))
	root := g.NewRoot(a)

	g.ReplaceChild(a, b)
	g.FreeDead(a)

	if g.RootNode(root) != b {
		t.Fatal("root should follow the replacement")
	}
	if g.IsLive(a) {
		t.Fatal("orphaned node should be reclaimed")
	}
}

func TestUnlinkedCopiesAreInvisible(t *testing.T) {
	g := New()
	x := g.NewVar("x")
	y := g.NewVar("y")
	app := g.NewApp(x, x)
	g.NewLam(x, app)

	cp := g.NewAppUnlinked(x, x)
	g.SetArg(cp, y)
	if g.ParentCount(x) != 2 {
		t.Fatalf("unlinked copy must not register with x")
	}

	g.Link(cp)
	if g.ParentCount(x) != 3 || g.ParentCount(y) != 1 {
		t.Fatalf("after Link: x=%d y=%d parents", g.ParentCount(x), g.ParentCount(y))
	}

	defer func() {
		if recover() == nil {
			t.Fatal("SetArg on a linked node should panic")
		}
	}()
	g.SetArg(cp, x)
}

func TestFreeDeadCascade(t *testing.T) {
	g := New()
	// (λx. x x) #true
	x := g.NewVar("x")
	lam := g.NewLam(x, g.NewApp(x, x))
	redex := g.NewApp(lam, g.NewLit(prim.Bool(true)))
	root := g.NewRoot(redex)

	if live := g.Stats().Live; live != 5 {
		t.Fatalf("live = %d, want 5", live)
	}
	if r := g.Reachable(redex); r != 5 {
		t.Fatalf("reachable = %d, want 5", r)
	}

	g.Unroot(root)
	st := g.Stats()
	if st.Live != 0 || st.Freed != 5 || st.Allocated != 5 {
		t.Fatalf("stats after unroot = %+v", st)
	}
}

func TestFreeDeadKeepsSharedNodes(t *testing.T) {
	g := New()
	shared := g.NewLit(prim.U8(1))
	a := g.NewApp(shared, shared)
	b := g.NewApp(shared, g.NewLit(prim.U8(2)))
	ra := g.NewRoot(a)
	g.NewRoot(b)

	g.Unroot(ra)
	if !g.IsLive(shared) {
		t.Fatal("shared literal is still used by b")
	}
	if g.IsLive(a) {
		t.Fatal("a should be reclaimed")
	}
}

func TestFreeDeadKeepsBoundVar(t *testing.T) {
	g := New()
	x := g.NewVar("x")
	inner := g.NewApp(x, g.NewLit(prim.U8(0)))
	lam := g.NewLam(x, g.NewApp(inner, x))
	g.NewRoot(lam)

	// Drop the occurrence held by inner; x is still bound by lam.
	g.ReplaceChild(inner, g.NewLit(prim.U8(9)))
	g.FreeDead(inner)
	if !g.IsLive(x) {
		t.Fatal("a Var lives as long as its Lam")
	}
	if got := Render(g, lam); got != "λ x => 9u8 x" {
		t.Fatalf("Render = %q", got)
	}
}

func TestFreeListReuse(t *testing.T) {
	g := New()
	a := g.NewLit(prim.U8(1))
	g.FreeDead(a)
	b := g.NewLit(prim.U8(2))
	if a != b {
		t.Fatalf("expected freed slot %d to be reused, got %d", a, b)
	}
	if st := g.Stats(); st.Allocated != 2 || st.Freed != 1 || st.Live != 1 {
		t.Fatalf("stats = %+v", st)
	}
}
