package lexer

import (
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `def tst [--mod -s] {}
alias ll = ls -l
let actor = { name: 'Tom Hardy', age: 44 }
const bar = [[a b]; [1 2]]
$env.config.completions.algorithm = "fuzzy"
ls custom_completion.nu | each { tst - }
^sleep 5; use lib-dir1/
@example
spam --foo=cat -b 4.2 -42
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		// def tst [--mod -s] {}
		{WORD, "def"},
		{WORD, "tst"},
		{LBRACKET, "["},
		{FLAG, "--mod"},
		{FLAG, "-s"},
		{RBRACKET, "]"},
		{LBRACE, "{"},
		{RBRACE, "}"},
		{NEWLINE, "\n"},

		// alias ll = ls -l
		{WORD, "alias"},
		{WORD, "ll"},
		{ASSIGN, "="},
		{WORD, "ls"},
		{FLAG, "-l"},
		{NEWLINE, "\n"},

		// let actor = { name: 'Tom Hardy', age: 44 }
		{WORD, "let"},
		{WORD, "actor"},
		{ASSIGN, "="},
		{LBRACE, "{"},
		{WORD, "name"},
		{COLON, ":"},
		{STRING, "Tom Hardy"},
		{COMMA, ","},
		{WORD, "age"},
		{COLON, ":"},
		{INT, "44"},
		{RBRACE, "}"},
		{NEWLINE, "\n"},

		// const bar = [[a b]; [1 2]]
		{WORD, "const"},
		{WORD, "bar"},
		{ASSIGN, "="},
		{LBRACKET, "["},
		{LBRACKET, "["},
		{WORD, "a"},
		{WORD, "b"},
		{RBRACKET, "]"},
		{SEMICOLON, ";"},
		{LBRACKET, "["},
		{INT, "1"},
		{INT, "2"},
		{RBRACKET, "]"},
		{RBRACKET, "]"},
		{NEWLINE, "\n"},

		// $env.config.completions.algorithm = "fuzzy"
		{DOLLAR, "$env.config.completions.algorithm"},
		{ASSIGN, "="},
		{STRING, "fuzzy"},
		{NEWLINE, "\n"},

		// ls custom_completion.nu | each { tst - }
		{WORD, "ls"},
		{WORD, "custom_completion.nu"},
		{PIPE, "|"},
		{WORD, "each"},
		{LBRACE, "{"},
		{WORD, "tst"},
		{FLAG, "-"},
		{RBRACE, "}"},
		{NEWLINE, "\n"},

		// ^sleep 5; use lib-dir1/
		{WORD, "^sleep"},
		{INT, "5"},
		{SEMICOLON, ";"},
		{WORD, "use"},
		{WORD, "lib-dir1/"},
		{NEWLINE, "\n"},

		// @example
		{AT, "@example"},
		{NEWLINE, "\n"},

		// spam --foo=cat -b 4.2 -42
		{WORD, "spam"},
		{FLAG, "--foo=cat"},
		{FLAG, "-b"},
		{FLOAT, "4.2"},
		{INT, "-42"},
		{NEWLINE, "\n"},

		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestTokenSpans(t *testing.T) {
	input := `tst --mod 'a b'`

	l := New(input)

	expected := []struct {
		literal string
		start   int
		end     int
	}{
		{"tst", 0, 3},
		{"--mod", 4, 9},
		{"a b", 10, 15}, // span includes the quotes
	}

	for i, tt := range expected {
		tok := l.NextToken()
		if tok.Literal != tt.literal {
			t.Fatalf("tokens[%d] - literal wrong. expected=%q, got=%q", i, tt.literal, tok.Literal)
		}
		if tok.Span.Start != tt.start || tok.Span.End != tt.end {
			t.Fatalf("tokens[%d] - span wrong. expected=[%d,%d), got=[%d,%d)",
				i, tt.start, tt.end, tok.Span.Start, tok.Span.End)
		}
	}

	tok := l.NextToken()
	if tok.Type != EOF {
		t.Fatalf("expected EOF, got %q", tok.Type)
	}
	if tok.Span.Start != len(input) || tok.Span.End != len(input) {
		t.Fatalf("EOF span wrong: got [%d,%d)", tok.Span.Start, tok.Span.End)
	}
}

func TestStringLiterals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		quote    byte
		closed   bool
	}{
		{
			name:     "double quotes",
			input:    `"hello world"`,
			expected: "hello world",
			quote:    '"',
			closed:   true,
		},
		{
			name:     "single quotes",
			input:    `'hello world'`,
			expected: "hello world",
			quote:    '\'',
			closed:   true,
		},
		{
			name:     "backticks",
			input:    "`te st.txt`",
			expected: "te st.txt",
			quote:    '`',
			closed:   true,
		},
		{
			name:     "escapes in double quotes",
			input:    `"a\tb\nc\"d"`,
			expected: "a\tb\nc\"d",
			quote:    '"',
			closed:   true,
		},
		{
			name:     "no escapes in single quotes",
			input:    `'a\tb'`,
			expected: `a\tb`,
			quote:    '\'',
			closed:   true,
		},
		{
			name:     "unterminated string runs to end of input",
			input:    "'test dir/",
			expected: "test dir/",
			quote:    '\'',
			closed:   false,
		},
		{
			name:     "unterminated backtick",
			input:    "`./dir_module/",
			expected: "./dir_module/",
			quote:    '`',
			closed:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			tok := l.NextToken()

			if tok.Type != STRING {
				t.Fatalf("expected STRING, got %q (literal=%q)", tok.Type, tok.Literal)
			}
			if tok.Literal != tt.expected {
				t.Fatalf("literal wrong. expected=%q, got=%q", tt.expected, tok.Literal)
			}
			if tok.Quote != tt.quote {
				t.Fatalf("quote wrong. expected=%q, got=%q", tt.quote, tok.Quote)
			}
			if tok.Closed != tt.closed {
				t.Fatalf("closed wrong. expected=%v, got=%v", tt.closed, tok.Closed)
			}
			if tok.Span.Start != 0 || tok.Span.End != len(tt.input) {
				t.Fatalf("span wrong. expected=[0,%d), got=[%d,%d)",
					len(tt.input), tok.Span.Start, tok.Span.End)
			}
		})
	}
}

func TestDollarTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`$spans`, "$spans"},
		{`$nu.os-info.`, "$nu.os-info."},
		{`$foo.a.1.`, "$foo.a.1."},
		{`$`, "$"},
		{`$env.PWD`, "$env.PWD"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != DOLLAR {
			t.Fatalf("input %q: expected DOLLAR, got %q", tt.input, tok.Type)
		}
		if tok.Literal != tt.expected {
			t.Fatalf("input %q: literal wrong. expected=%q, got=%q", tt.input, tt.expected, tok.Literal)
		}
	}
}

func TestCommentsSkipped(t *testing.T) {
	l := New("ls # list files\ncd")

	tok := l.NextToken()
	if tok.Type != WORD || tok.Literal != "ls" {
		t.Fatalf("expected ls, got %q %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != NEWLINE {
		t.Fatalf("expected NEWLINE after comment, got %q %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != WORD || tok.Literal != "cd" {
		t.Fatalf("expected cd, got %q %q", tok.Type, tok.Literal)
	}
}

func TestHashInsideWord(t *testing.T) {
	l := New("open te#st.txt")

	tok := l.NextToken()
	if tok.Literal != "open" {
		t.Fatalf("expected open, got %q", tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != WORD || tok.Literal != "te#st.txt" {
		t.Fatalf("expected te#st.txt word, got %q %q", tok.Type, tok.Literal)
	}
}
