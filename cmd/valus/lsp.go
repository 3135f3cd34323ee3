package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/valus-lang/valus/internal/lsp"
)

// cmdLsp serves the language server protocol on stdin and stdout.
func (s *session) cmdLsp(_ []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []lsp.Option
	if s.cfg.Fuel > 0 {
		opts = append(opts, lsp.WithHoverFuel(s.cfg.Fuel))
	}
	if err := lsp.NewServer(opts...).Run(ctx, os.Stdin, s.out); err != nil {
		fmt.Fprintf(s.errOut, "valus lsp: %v\n", err)
		return exitError
	}
	return exitOK
}
