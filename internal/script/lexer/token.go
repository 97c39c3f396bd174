package lexer

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF
	NEWLINE

	// Words and literals
	WORD   // bare words: command names, paths, globs, keywords
	FLAG   // -s, --long, --flag=value
	INT    // 42, -7
	FLOAT  // 4.2, -0.5
	STRING // 'single', "double", `backtick`
	DOLLAR // $name, $name.cell.path.
	AT     // @attribute

	// Delimiters
	PIPE      // |
	SEMICOLON // ;
	COMMA     // ,
	COLON     // :
	ASSIGN    // =
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
)

var tokenTypeNames = [...]string{
	ILLEGAL:   "ILLEGAL",
	EOF:       "EOF",
	NEWLINE:   "NEWLINE",
	WORD:      "WORD",
	FLAG:      "FLAG",
	INT:       "INT",
	FLOAT:     "FLOAT",
	STRING:    "STRING",
	DOLLAR:    "DOLLAR",
	AT:        "AT",
	PIPE:      "PIPE",
	SEMICOLON: "SEMICOLON",
	COMMA:     "COMMA",
	COLON:     "COLON",
	ASSIGN:    "ASSIGN",
	LPAREN:    "LPAREN",
	RPAREN:    "RPAREN",
	LBRACE:    "LBRACE",
	RBRACE:    "RBRACE",
	LBRACKET:  "LBRACKET",
	RBRACKET:  "RBRACKET",
}

// String implements fmt.Stringer for TokenType.
func (t TokenType) String() string {
	if int(t) >= 0 && int(t) < len(tokenTypeNames) {
		if name := tokenTypeNames[t]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// Span is a half-open byte range [Start, End) into the source buffer.
type Span struct {
	Start int
	End   int
}

// Contains reports whether pos falls inside the span.
func (s Span) Contains(pos int) bool {
	return pos >= s.Start && pos < s.End
}

// ContainsInclusive reports whether pos falls inside the span or sits
// directly on its end. A cursor at the end of a token still belongs to it.
func (s Span) ContainsInclusive(pos int) bool {
	return pos >= s.Start && pos <= s.End
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string // for STRING tokens, the inner text without delimiters
	Span    Span   // byte range in the source, including string delimiters
	Line    int    // 1-indexed source line, for error reporting
	Quote   byte   // string delimiter (', " or `); 0 for non-strings
	Closed  bool   // false for a STRING whose closing delimiter is missing
}

// Text returns the raw source text covered by the token within input.
func (t Token) Text(input string) string {
	if t.Span.Start < 0 || t.Span.End > len(input) || t.Span.Start > t.Span.End {
		return t.Literal
	}
	return input[t.Span.Start:t.Span.End]
}
