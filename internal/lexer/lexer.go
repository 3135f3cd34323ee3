package lexer

import (
	"strconv"
	"unicode"

	"github.com/valus-lang/valus/internal/diag"
)

type LexerErrorKind int

const (
	ErrIllegalRune LexerErrorKind = iota
	ErrEmptyHash
)

type LexerError struct {
	Kind    LexerErrorKind
	Message string
	Span    Span
}

func (k LexerErrorKind) diagnosticCode() diag.Code {
	switch k {
	case ErrIllegalRune:
		return diag.CodeLexerIllegalRune
	case ErrEmptyHash:
		return diag.CodeLexerEmptyLiteral
	default:
		return diag.Code("LEXER_UNKNOWN_ERROR")
	}
}

// ToDiagnostic converts a lexer error into a shared diagnostic structure.
func (e LexerError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageLexer,
		Severity: diag.SeverityError,
		Code:     e.Kind.diagnosticCode(),
		Message:  e.Message,
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
	}
}

// Lexer represents the lexer state
type Lexer struct {
	input    []rune
	pos      int  // index of the current rune
	ch       rune // current rune (0 = EOF)
	line     int  // current line number (1-based)
	column   int  // current column number (1-based)
	filename string

	Errors []LexerError
}

func (l *Lexer) addError(kind LexerErrorKind, msg string, span Span) {
	l.Errors = append(l.Errors, LexerError{
		Kind:    kind,
		Message: msg,
		Span:    span,
	})
}

// New creates a new lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{
		input:  []rune(input),
		pos:    -1, // start before first rune
		line:   1,
		column: 0, // will be 1 after first read()
	}
	l.read()
	return l
}

// SetFilename attributes all subsequent spans to name.
func (l *Lexer) SetFilename(name string) {
	l.filename = name
}

// read advances the lexer to the next character.
// line/column always reflect the position of the character at pos.
func (l *Lexer) read() {
	l.pos++
	prevPos := l.pos - 1
	inputLen := len(l.input)

	if l.pos >= inputLen {
		// Moved past the last rune; normalize position to virtual EOF.
		if prevPos >= 0 && prevPos < inputLen {
			if l.input[prevPos] == '\n' {
				l.line++
				l.column = 1
			} else {
				l.column++
			}
		} else if prevPos < 0 {
			l.column = 1
		}
		l.pos = inputLen
		l.ch = 0
		return
	}

	l.ch = l.input[l.pos]

	if prevPos >= 0 && l.input[prevPos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

// peek returns the next character without advancing
func (l *Lexer) peek() rune {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

// currentSpanStart captures the position of the character about to be tokenized.
func (l *Lexer) currentSpanStart() (line, column, pos int) {
	return l.line, l.column, l.pos
}

func (l *Lexer) makeToken(tokType TokenType, startLine, startColumn, startPos int, raw string) Token {
	return Token{
		Type:    tokType,
		Literal: raw,
		Span: Span{
			Filename: l.filename,
			Line:     startLine,
			Column:   startColumn,
			Start:    startPos,
			End:      l.pos,
		},
	}
}

// skipTrivia skips whitespace and // line comments.
func (l *Lexer) skipTrivia() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.read()
		case l.ch == '/' && l.peek() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.read()
			}
		default:
			return
		}
	}
}

// readWhile consumes runes satisfying ok and returns them.
func (l *Lexer) readWhile(ok func(rune) bool) string {
	start := l.pos
	for l.ch != 0 && ok(l.ch) {
		l.read()
	}
	return string(l.input[start:l.pos])
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipTrivia()

	startLine, startColumn, startPos := l.currentSpanStart()

	switch l.ch {
	case 0:
		return l.makeToken(EOF, startLine, startColumn, startPos, "")

	case 'λ', '\\':
		raw := string(l.ch)
		l.read()
		return l.makeToken(LAMBDA, startLine, startColumn, startPos, raw)

	case '=':
		if l.peek() == '>' {
			l.read()
			l.read()
			return l.makeToken(FATARROW, startLine, startColumn, startPos, "=>")
		}
		l.read()
		return l.makeToken(ASSIGN, startLine, startColumn, startPos, "=")

	case '(':
		l.read()
		return l.makeToken(LPAREN, startLine, startColumn, startPos, "(")

	case ')':
		l.read()
		return l.makeToken(RPAREN, startLine, startColumn, startPos, ")")

	case '#':
		l.read() // consume '#'
		body := l.readWhile(isHashRune)
		tok := l.makeToken(HASH, startLine, startColumn, startPos, "#"+body)
		if body == "" {
			tok.Type = ILLEGAL
			l.addError(ErrEmptyHash, "expected operator or literal after '#'", tok.Span)
		}
		return tok
	}

	if isLetter(l.ch) {
		literal := l.readWhile(isIdentRune)
		return l.makeToken(LookupIdent(literal), startLine, startColumn, startPos, literal)
	}

	if isDigit(l.ch) {
		// Digits followed by an optional width suffix such as u8.
		literal := l.readWhile(func(r rune) bool { return isDigit(r) || isLetter(r) })
		return l.makeToken(NUMBER, startLine, startColumn, startPos, literal)
	}

	raw := string(l.ch)
	l.read()
	tok := l.makeToken(ILLEGAL, startLine, startColumn, startPos, raw)
	l.addError(ErrIllegalRune, "illegal character "+strconv.Quote(raw), tok.Span)
	return tok
}

func isLetter(ch rune) bool {
	return ch != 'λ' && (unicode.IsLetter(ch) || ch == '_')
}

func isDigit(ch rune) bool {
	// Numeric literals are restricted to ASCII digits.
	return ch >= '0' && ch <= '9'
}

func isIdentRune(ch rune) bool {
	return isLetter(ch) || isDigit(ch) || ch == '\''
}

func isHashRune(ch rune) bool {
	return isLetter(ch) || isDigit(ch) || ch == '.'
}
