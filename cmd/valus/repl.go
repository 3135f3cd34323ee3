package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/samber/lo"

	"github.com/valus-lang/valus/internal/ast"
	"github.com/valus-lang/valus/internal/lexer"
	"github.com/valus-lang/valus/internal/parser"
)

const (
	banner     = "valus: type a term to reduce it, `def name = term` to define, :help for commands"
	promptMain = "λ> "
	promptCont = ".. "
	replSource = "<repl>"
)

// repl holds the definitions accumulated over an interactive session.
type repl struct {
	s    *session
	defs []*ast.Def
}

func (s *session) cmdRepl(_ []string) int {
	fmt.Fprintln(s.out, banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if s.cfg.History != "" {
		if f, err := os.Open(s.cfg.History); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(s.cfg.History); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	r := &repl{s: s}
	for {
		chunk, ok := r.readByParseProbe(ln)
		if !ok {
			fmt.Fprintln(s.out)
			break
		}
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(chunk, "\n", " "))
		if r.handle(chunk) {
			break
		}
	}
	return exitOK
}

// readByParseProbe keeps prompting while the accumulated input parses as
// incomplete. It reports false at end of input.
func (r *repl) readByParseProbe(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := lo.Ternary(b.Len() == 0, promptMain, promptCont)
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl-C discards the pending input.
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		p := r.parser(src)
		if isDefChunk(src) {
			p.ParseProgram()
		} else {
			p.ParseTerm()
		}
		if parser.IsIncomplete(p.Errors()) {
			continue
		}
		return src, true
	}
}

func (r *repl) parser(src string) *parser.Parser {
	return parser.New(src, parser.WithFilename(replSource), parser.WithDefs(r.defs...))
}

// isDefChunk reports whether src starts with the def keyword.
func isDefChunk(src string) bool {
	return lexer.New(src).NextToken().Type == lexer.DEF
}

// handle runs one complete chunk of input. It reports true when the session
// should end.
func (r *repl) handle(chunk string) bool {
	s := r.s
	if cmd, ok := strings.CutPrefix(strings.TrimSpace(chunk), ":"); ok {
		return r.command(cmd)
	}

	s.diags.AddSource(replSource, chunk)
	p := r.parser(chunk)

	if isDefChunk(chunk) {
		prog := p.ParseProgram()
		if s.reportParseErrors(p) {
			return false
		}
		r.defs = append(r.defs, prog.Defs...)
		for _, def := range prog.Defs {
			fmt.Fprintf(s.out, "defined %s\n", def.Name)
		}
		return false
	}

	term := p.ParseTerm()
	if s.reportParseErrors(p) || term == nil {
		return false
	}
	s.evaluate(term, modeNorm)
	return false
}

func (r *repl) command(line string) bool {
	s := r.s
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch strings.ToLower(name) {
	case "quit", "q":
		return true
	case "help":
		fmt.Fprintln(s.out, ":defs          list definitions")
		fmt.Fprintln(s.out, ":whnf <term>   reduce to weak-head normal form")
		fmt.Fprintln(s.out, ":ops           list primitive operators")
		fmt.Fprintln(s.out, ":quit          leave the session")
	case "defs":
		for _, def := range r.defs {
			fmt.Fprintf(s.out, "def %s = %s\n", def.Name, ast.String(def.Body))
		}
	case "whnf":
		s.diags.AddSource(replSource, arg)
		p := r.parser(arg)
		term := p.ParseTerm()
		if s.reportParseErrors(p) || term == nil {
			return false
		}
		s.evaluate(term, modeWhnf)
	case "ops":
		s.cmdOps(nil)
	default:
		fmt.Fprintln(s.out, "unknown command. Type :help for a list.")
	}
	return false
}
