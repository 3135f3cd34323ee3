package lexer

// TokenType represents the type of a token
type TokenType string

// Span represents the source location of a token
type Span struct {
	Filename string // optional source filename for diagnostics
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Start    int    // index in []rune of the input
	End      int    // exclusive end index
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string // exact runes from source
	Span    Span   // source location information
}

// Token type constants
const (
	// Special tokens
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers and literals
	IDENT  TokenType = "IDENT"  // x, succ, x'
	NUMBER TokenType = "NUMBER" // 42, 7u8, 300u32
	HASH   TokenType = "HASH"   // #U8.add, #true, #b0101, #x0aff

	// Operators and delimiters
	LAMBDA   TokenType = "λ"
	FATARROW TokenType = "=>"
	ASSIGN   TokenType = "="
	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"

	// Keywords
	DEF TokenType = "DEF"
)

var keywords = map[string]TokenType{
	"def": DEF,
}

// LookupIdent checks if the identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
