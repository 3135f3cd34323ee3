// Package eval reduces terms held in a dag.Graph to weak-head or full
// normal form without losing sharing.
//
// Beta contraction follows bottom-up up-copying: when the abstraction of a
// redex is shared, only the nodes on paths from its variable's occurrences
// up to the body are copied, once each, and everything else is shared
// between the original and the instantiated body.
package eval

import (
	"errors"
	"fmt"
	"log"

	"github.com/valus-lang/valus/internal/dag"
)

// ErrBudgetExhausted is returned when evaluation stops because Options.MaxSteps
// contractions and primitive applications have been performed.
var ErrBudgetExhausted = errors.New("step budget exhausted")

// InternalError reports a broken graph invariant. It is raised with panic
// and never returned.
type InternalError struct {
	Op     string
	Node   dag.Ref
	Detail string
}

func (e InternalError) Error() string {
	return fmt.Sprintf("internal error in %s at node %d: %s", e.Op, e.Node, e.Detail)
}

// Options configures an Evaluator.
type Options struct {
	// MaxSteps bounds the number of contractions and primitive applications
	// across the Evaluator's lifetime. Zero means unbounded.
	MaxSteps int
	// Trace, when set, receives one line per step.
	Trace *log.Logger
}

// Stats counts the work an Evaluator has done.
type Stats struct {
	Steps        int
	Contractions int
	PrimOps      int
	Upcopies     int // up-copy work items processed
	Copies       int // Lam and App nodes created by up-copying
}

// Evaluator reduces terms in a single graph. It is not safe for concurrent
// use.
type Evaluator struct {
	g     *dag.Graph
	opts  Options
	stats Stats
}

// New returns an Evaluator over g.
func New(g *dag.Graph, opts Options) *Evaluator {
	return &Evaluator{g: g, opts: opts}
}

// Graph returns the graph the Evaluator reduces in.
func (e *Evaluator) Graph() *dag.Graph { return e.g }

// Stats returns the counters accumulated so far.
func (e *Evaluator) Stats() Stats { return e.stats }

// Whnf reduces the term pinned by root to weak-head normal form and returns
// the node root points at afterwards. On ErrBudgetExhausted the graph is
// left consistent, partially reduced.
func (e *Evaluator) Whnf(root dag.Cell) (dag.Ref, error) {
	_, err := e.whnf(e.g.RootNode(root))
	return e.g.RootNode(root), err
}

// Norm reduces the term pinned by root to full normal form. It does not
// terminate on terms without one unless MaxSteps is set.
func (e *Evaluator) Norm(root dag.Cell) (dag.Ref, error) {
	_, err := e.norm(e.g.RootNode(root))
	return e.g.RootNode(root), err
}

// step charges one unit against the budget.
func (e *Evaluator) step() error {
	if e.opts.MaxSteps > 0 && e.stats.Steps >= e.opts.MaxSteps {
		return fmt.Errorf("%w after %d steps", ErrBudgetExhausted, e.stats.Steps)
	}
	e.stats.Steps++
	return nil
}

func (e *Evaluator) tracef(format string, args ...any) {
	if e.opts.Trace != nil {
		e.opts.Trace.Printf(format, args...)
	}
}
