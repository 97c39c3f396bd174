// Package lexer tokenizes nush source into span-carrying tokens.
//
// The lexer is deliberately permissive: it never fails, and every byte of the
// input is covered by some token's span. Completion relies on those spans to
// locate the token under the cursor, so they include string delimiters and
// are exact to the byte.
package lexer

// Lexer tokenizes nush source code
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number (1-indexed)
}

// New creates a new Lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	// Comments run to end of line. '#' only opens a comment at a token
	// boundary; inside a bare word it is an ordinary character.
	for l.ch == '#' {
		l.skipLineComment()
		l.skipWhitespace()
	}

	start := l.position
	line := l.line

	var tok Token
	switch l.ch {
	case 0:
		tok = Token{Type: EOF}
	case '\n':
		l.readChar()
		tok = Token{Type: NEWLINE, Literal: "\n"}
	case '|':
		l.readChar()
		tok = Token{Type: PIPE, Literal: "|"}
	case ';':
		l.readChar()
		tok = Token{Type: SEMICOLON, Literal: ";"}
	case ',':
		l.readChar()
		tok = Token{Type: COMMA, Literal: ","}
	case ':':
		l.readChar()
		tok = Token{Type: COLON, Literal: ":"}
	case '=':
		l.readChar()
		tok = Token{Type: ASSIGN, Literal: "="}
	case '(':
		l.readChar()
		tok = Token{Type: LPAREN, Literal: "("}
	case ')':
		l.readChar()
		tok = Token{Type: RPAREN, Literal: ")"}
	case '{':
		l.readChar()
		tok = Token{Type: LBRACE, Literal: "{"}
	case '}':
		l.readChar()
		tok = Token{Type: RBRACE, Literal: "}"}
	case '[':
		l.readChar()
		tok = Token{Type: LBRACKET, Literal: "["}
	case ']':
		l.readChar()
		tok = Token{Type: RBRACKET, Literal: "]"}
	case '\'', '"', '`':
		tok = l.readString(l.ch)
	case '$':
		tok = l.readDollar()
	case '@':
		tok = l.readAttribute()
	default:
		if isWordChar(l.ch) {
			tok = l.readBareWord()
		} else {
			lit := string(l.ch)
			l.readChar()
			tok = Token{Type: ILLEGAL, Literal: lit}
		}
	}

	tok.Span = Span{Start: start, End: l.position}
	tok.Line = line
	return tok
}

// readChar advances the lexer by one byte
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// peekChar returns the next byte without advancing
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// readString reads a quoted string. Double-quoted strings process escape
// sequences; single-quoted and backtick strings are taken literally. An
// unterminated string runs to the end of input with Closed left false, so a
// half-typed quote under the cursor still produces a usable token.
func (l *Lexer) readString(quote byte) Token {
	l.readChar() // consume opening delimiter

	var out []byte
	closed := false
	for l.ch != 0 {
		if l.ch == quote {
			closed = true
			l.readChar() // consume closing delimiter
			break
		}
		if quote == '"' && l.ch == '\\' {
			next := l.peekChar()
			switch next {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '\\', '"':
				out = append(out, next)
			default:
				out = append(out, '\\', next)
			}
			l.readChar()
			l.readChar()
			continue
		}
		out = append(out, l.ch)
		l.readChar()
	}

	return Token{
		Type:    STRING,
		Literal: string(out),
		Quote:   quote,
		Closed:  closed,
	}
}

// readDollar reads a variable reference, including any dotted cell path that
// follows it. A trailing dot is kept: "$nu.os-info." is one token.
func (l *Lexer) readDollar() Token {
	start := l.position
	l.readChar() // consume '$'
	for isVarChar(l.ch) {
		l.readChar()
	}
	return Token{Type: DOLLAR, Literal: l.input[start:l.position]}
}

// readAttribute reads an @attribute word
func (l *Lexer) readAttribute() Token {
	start := l.position
	l.readChar() // consume '@'
	for isWordChar(l.ch) {
		l.readChar()
	}
	return Token{Type: AT, Literal: l.input[start:l.position]}
}

// readBareWord reads an unquoted word and classifies it as a number, flag or
// plain word
func (l *Lexer) readBareWord() Token {
	start := l.position
	for isWordChar(l.ch) || l.ch == '#' || l.ch == '=' || l.ch == '@' {
		l.readChar()
	}
	lit := l.input[start:l.position]
	return Token{Type: classifyWord(lit), Literal: lit}
}

// classifyWord decides which token type a bare word belongs to
func classifyWord(lit string) TokenType {
	if isIntLiteral(lit) {
		return INT
	}
	if isFloatLiteral(lit) {
		return FLOAT
	}
	if len(lit) > 0 && lit[0] == '-' {
		return FLAG
	}
	return WORD
}

func isIntLiteral(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i++
	}
	if i >= len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isFloatLiteral(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i++
	}
	digits, dot := 0, false
	for ; i < len(s); i++ {
		switch {
		case isDigit(s[i]):
			digits++
		case s[i] == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return dot && digits > 0
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isWordChar reports whether ch can start or continue a bare word. Bare words
// carry most of the language: command names, file paths, globs and flags.
func isWordChar(ch byte) bool {
	if isLetter(ch) || isDigit(ch) {
		return true
	}
	switch ch {
	case '-', '_', '.', '/', '~', '^', '*', '?', '+', '!', '%', '&', '\\':
		return true
	}
	return false
}

// isVarChar reports whether ch can continue a $variable reference, dots
// included so a whole cell path stays in one token.
func isVarChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '-' || ch == '.'
}
