package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/valus-lang/valus/internal/prim"
)

// cmdOps prints the operator catalog.
func (s *session) cmdOps(_ []string) int {
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATOR\tARITY")
	for _, op := range prim.Ops() {
		fmt.Fprintf(tw, "%s\t%d\n", op, op.Arity())
	}
	if err := tw.Flush(); err != nil {
		return exitError
	}
	return exitOK
}
