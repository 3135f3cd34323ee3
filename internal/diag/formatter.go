package diag

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Formatter formats diagnostics in a Rust-style format with source code snippets.
type Formatter struct {
	out         io.Writer
	sourceCache map[string]string // Cache of source files by filename
}

// NewFormatter creates a new diagnostic formatter writing to out.
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{
		out:         out,
		sourceCache: make(map[string]string),
	}
}

// AddSource registers in-memory source under filename, so snippets can be
// shown for input that never touched the filesystem (REPL lines, -e flags).
func (f *Formatter) AddSource(filename, src string) {
	f.sourceCache[filename] = src
}

// LoadSource loads source code for a file (cached).
func (f *Formatter) LoadSource(filename string) (string, error) {
	if src, ok := f.sourceCache[filename]; ok {
		return src, nil
	}
	if filename == "" {
		return "", nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	src := string(data)
	f.sourceCache[filename] = src
	return src, nil
}

// Format formats and prints a diagnostic.
func (f *Formatter) Format(d Diagnostic) {
	spans := f.collectSpans(d)
	if len(spans) == 0 {
		f.formatSimple(d)
		return
	}

	spansByFile := make(map[string][]LabeledSpan)
	for _, span := range spans {
		spansByFile[span.Span.Filename] = append(spansByFile[span.Span.Filename], span)
	}

	filenames := make([]string, 0, len(spansByFile))
	for name := range spansByFile {
		filenames = append(filenames, name)
	}
	sort.Strings(filenames)

	f.printHeader(d)

	for _, filename := range filenames {
		src, err := f.LoadSource(filename)
		if err != nil || src == "" {
			if d.Span.IsValid() {
				fmt.Fprintf(f.out, "  --> %s\n", d.Span.String())
			}
			continue
		}
		f.printFileSpans(filename, src, spansByFile[filename])
	}

	f.printHelp(d)
}

// collectSpans collects all spans from the diagnostic, prioritizing LabeledSpans.
func (f *Formatter) collectSpans(d Diagnostic) []LabeledSpan {
	if len(d.LabeledSpans) > 0 {
		return d.LabeledSpans
	}
	if d.Span.IsValid() {
		return []LabeledSpan{{Span: d.Span, Style: "primary"}}
	}
	return nil
}

// printHeader prints the error header (error[CODE]: message).
func (f *Formatter) printHeader(d Diagnostic) {
	severity := string(d.Severity)
	if severity == "" {
		severity = "error"
	}

	if d.Code != "" {
		fmt.Fprintf(f.out, "%s[%s]: %s\n", severity, d.Code, d.Message)
	} else {
		fmt.Fprintf(f.out, "%s: %s\n", severity, d.Message)
	}
}

// printFileSpans prints source code with underlines for spans in a file.
func (f *Formatter) printFileSpans(filename string, src string, spans []LabeledSpan) {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Span.Line != spans[j].Span.Line {
			return spans[i].Span.Line < spans[j].Span.Line
		}
		return spans[i].Span.Column < spans[j].Span.Column
	})

	spansByLine := make(map[int][]LabeledSpan)
	lines := strings.Split(src, "\n")
	maxLine := len(lines)

	for _, span := range spans {
		line := span.Span.Line
		if line > 0 && line <= maxLine {
			spansByLine[line] = append(spansByLine[line], span)
		}
	}
	if len(spansByLine) == 0 {
		return
	}

	startLine, endLine := maxLine, 1
	for line := range spansByLine {
		startLine = min(startLine, line)
		endLine = max(endLine, line)
	}

	// One line of context on each side.
	contextStart := max(1, startLine-1)
	contextEnd := min(maxLine, endLine+1)
	lineNumWidth := len(fmt.Sprintf("%d", contextEnd))
	gutter := strings.Repeat(" ", lineNumWidth)

	name := filename
	if name == "" {
		name = "<input>"
	}
	fmt.Fprintf(f.out, "  --> %s:%d:%d\n", name, spans[0].Span.Line, spans[0].Span.Column)
	fmt.Fprintf(f.out, "   %s |\n", gutter)

	for lineNum := contextStart; lineNum <= contextEnd; lineNum++ {
		lineContent := lines[lineNum-1]
		fmt.Fprintf(f.out, " %*d | %s\n", lineNumWidth, lineNum, lineContent)
		if lineSpans := spansByLine[lineNum]; len(lineSpans) > 0 {
			f.printUnderlines(gutter, lineContent, lineSpans)
		}
	}

	fmt.Fprintf(f.out, "   %s |\n", gutter)
}

// printUnderlines prints ^ under primary spans and ~ under secondary ones.
func (f *Formatter) printUnderlines(gutter string, lineContent string, spans []LabeledSpan) {
	width := len([]rune(lineContent)) + 1
	underline := []rune(strings.Repeat(" ", width))

	mark := func(span Span, r rune) {
		start := max(0, span.Column-1)
		end := min(width, start+max(1, span.End-span.Start))
		for i := start; i < end; i++ {
			if underline[i] == ' ' || r == '^' {
				underline[i] = r
			}
		}
	}

	var primaryLabel string
	var secondaryLabels []string
	for _, span := range spans {
		if span.Style == "secondary" {
			mark(span.Span, '~')
			if span.Label != "" {
				secondaryLabels = append(secondaryLabels, span.Label)
			}
			continue
		}
		mark(span.Span, '^')
		if span.Label != "" {
			primaryLabel = span.Label
		}
	}

	text := strings.TrimRight(string(underline), " ")
	if text == "" {
		return
	}
	fmt.Fprintf(f.out, "   %s | %s", gutter, text)
	if primaryLabel != "" {
		fmt.Fprintf(f.out, " %s", primaryLabel)
	}
	fmt.Fprintln(f.out)

	for _, label := range secondaryLabels {
		fmt.Fprintf(f.out, "   %s | %s %s\n", gutter, strings.Repeat(" ", len([]rune(text))), label)
	}
}

// printHelp prints notes and help text.
func (f *Formatter) printHelp(d Diagnostic) {
	for _, note := range d.Notes {
		fmt.Fprintf(f.out, "  = note: %s\n", note)
	}
	if d.Help != "" {
		fmt.Fprintf(f.out, "help: %s\n", d.Help)
	}
}

// formatSimple formats a diagnostic without source code (fallback).
func (f *Formatter) formatSimple(d Diagnostic) {
	f.printHeader(d)
	if d.Span.IsValid() {
		fmt.Fprintf(f.out, "  --> %s\n", d.Span.String())
	}
	f.printHelp(d)
}
