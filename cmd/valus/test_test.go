package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindTestFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bool_test.vl"), "")
	writeFile(t, filepath.Join(dir, "lib.vl"), "")
	writeFile(t, filepath.Join(dir, "tests", "church.vl"), "")
	writeFile(t, filepath.Join(dir, ".hidden", "skip_test.vl"), "")

	files, err := findTestFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "bool_test.vl"),
		filepath.Join(dir, "tests", "church.vl"),
	}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", files, want)
	}

	single := filepath.Join(dir, "lib.vl")
	files, err = findTestFiles(single)
	if err != nil || len(files) != 1 || files[0] != single {
		t.Errorf("single file: got %v, %v", files, err)
	}
}

func TestTestCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bool_test.vl"), `
def and = λ a b => #Bool.and a b
def test_and = #Bool.eql (and #true #false) #false
def test_add = #U8.eql (#U8.add 250u8 10u8) 4u8
def test_wrong = #U8.add 1u8 1u8
def helper = #false
`)

	code, out, _ := runCLI(t, "test", dir)
	if code != exitError {
		t.Fatalf("exit %d, want %d\n%s", code, exitError, out)
	}
	for _, want := range []string{
		"✓ " + filepath.Join(dir, "bool_test.vl") + ": test_and",
		"✓ " + filepath.Join(dir, "bool_test.vl") + ": test_add",
		"✗ " + filepath.Join(dir, "bool_test.vl") + ": test_wrong",
		"Output: 2u8",
		"Test Results: 3 total, 2 passed, 1 failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestTestCommandBudgetAndParseFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "loop_test.vl"), "def test_loop = (λ x => x x) (λ x => x x)\n")
	writeFile(t, filepath.Join(dir, "broken_test.vl"), "def test_broken = λ x => y\n")

	code, out, errOut := runCLI(t, "-fuel", "50", "test", dir)
	if code != exitError {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(out, "budget exhausted") {
		t.Errorf("budget failure not reported:\n%s", out)
	}
	if !strings.Contains(out, "file does not parse") || !strings.Contains(errOut, "PARSE_UNBOUND_VARIABLE") {
		t.Errorf("parse failure not reported:\nstdout:\n%s\nstderr:\n%s", out, errOut)
	}
}
