package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/valus-lang/valus/internal/ast"
	"github.com/valus-lang/valus/internal/dag"
	"github.com/valus-lang/valus/internal/eval"
	"github.com/valus-lang/valus/internal/parser"
	"github.com/valus-lang/valus/internal/prim"
)

const (
	testFileSuffix = "_test.vl"
	testDefPrefix  = "test_"
)

// TestResult represents the result of running a single test definition.
type TestResult struct {
	Name   string
	Passed bool
	Error  error
	Output string
}

// cmdTest runs every test_ definition found in the given files or
// directories. A test passes when it normalizes to #true.
func (s *session) cmdTest(args []string) int {
	if len(args) == 0 {
		args = []string{"."}
	}

	var passed, failed int
	for _, path := range args {
		files, err := findTestFiles(path)
		if err != nil {
			fmt.Fprintf(s.errOut, "Error finding test files: %v\n", err)
			return exitError
		}
		if len(files) == 0 {
			fmt.Fprintf(s.out, "No test files found in %s\n", path)
			continue
		}

		fmt.Fprintf(s.out, "Running tests in %s...\n\n", path)
		for _, file := range files {
			for _, result := range s.runTestFile(file) {
				if result.Passed {
					passed++
					fmt.Fprintf(s.out, "  ✓ %s\n", result.Name)
					continue
				}
				failed++
				fmt.Fprintf(s.out, "  ✗ %s\n", result.Name)
				if result.Error != nil {
					fmt.Fprintf(s.out, "    Error: %v\n", result.Error)
				}
				if result.Output != "" {
					fmt.Fprintf(s.out, "    Output: %s\n", result.Output)
				}
			}
		}
	}

	fmt.Fprintf(s.out, "\nTest Results: %d total, %d passed, %d failed\n", passed+failed, passed, failed)
	if failed > 0 {
		return exitError
	}
	return exitOK
}

// findTestFiles returns path itself when it is a file, otherwise every
// *_test.vl file below it plus any .vl file directly inside a tests/
// directory.
func findTestFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case strings.HasSuffix(p, testFileSuffix):
			files = append(files, p)
		case strings.HasSuffix(p, ".vl") && filepath.Base(filepath.Dir(p)) == "tests":
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func (s *session) runTestFile(filename string) []TestResult {
	content, err := os.ReadFile(filename)
	if err != nil {
		return []TestResult{{Name: filename, Error: err}}
	}
	s.diags.AddSource(filename, string(content))

	p := parser.New(string(content), parser.WithFilename(filename))
	prog := p.ParseProgram()
	if s.reportParseErrors(p) {
		return []TestResult{{Name: filename, Error: errors.New("file does not parse")}}
	}

	return lo.Map(findTestDefs(prog), func(def *ast.Def, _ int) TestResult {
		return s.runSingleTest(filename, def)
	})
}

func findTestDefs(prog *ast.Program) []*ast.Def {
	return lo.Filter(prog.Defs, func(def *ast.Def, _ int) bool {
		return strings.HasPrefix(def.Name, testDefPrefix)
	})
}

func (s *session) runSingleTest(filename string, def *ast.Def) TestResult {
	result := TestResult{Name: filename + ": " + def.Name}

	g := dag.New()
	root := g.NewRoot(dag.NewBuilder(g).Build(def.Body))
	ev := eval.New(g, s.cfg.EvalOptions(s.errOut))

	res, err := reduce(ev, root, modeNorm)
	if err != nil {
		result.Error = err
		return result
	}
	if g.Kind(res) == dag.KindLit && prim.Equal(g.Lit(res), prim.Bool(true)) {
		result.Passed = true
		return result
	}
	result.Output = dag.Render(g, res)
	return result
}
