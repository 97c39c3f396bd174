package parser

import (
	"strings"

	"github.com/nush-sh/nush/internal/script/lexer"
)

// Node is implemented by every AST node. Spans are byte ranges into the
// original source; completion depends on them being exact.
type Node interface {
	Span() lexer.Span
	String() string
}

// Statement is a top-level or block-level statement
type Statement interface {
	Node
	statementNode()
}

// Expression is a value-producing node, including the bare words that make up
// command calls
type Expression interface {
	Node
	expressionNode()
}

// Program is a sequence of statements: a whole source buffer or a block body
type Program struct {
	Statements []Statement
}

// Span covers the first through the last statement.
func (p *Program) Span() lexer.Span {
	if len(p.Statements) == 0 {
		return lexer.Span{}
	}
	return lexer.Span{
		Start: p.Statements[0].Span().Start,
		End:   p.Statements[len(p.Statements)-1].Span().End,
	}
}

func (p *Program) String() string {
	parts := make([]string, 0, len(p.Statements))
	for _, s := range p.Statements {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, "; ")
}

// AttributeStmt is a standalone attribute such as `@example`, optionally with
// arguments. An attribute annotates the definition that follows it.
type AttributeStmt struct {
	Token lexer.Token // the AT token
	Name  string      // attribute name without the sigil
	Args  []Expression
	End   int
}

func (s *AttributeStmt) statementNode() {}
func (s *AttributeStmt) Span() lexer.Span {
	return lexer.Span{Start: s.Token.Span.Start, End: s.End}
}
func (s *AttributeStmt) String() string { return s.Token.Literal }

// DefStmt declares a command (`def`) or a known external signature (`extern`)
type DefStmt struct {
	Export   bool
	Keyword  string // "def" or "extern"
	Name     string
	NameSpan lexer.Span
	Sig      *SignatureDecl
	Body     *BlockLit // nil for extern
	Start    int
	End      int
}

func (s *DefStmt) statementNode() {}
func (s *DefStmt) Span() lexer.Span {
	return lexer.Span{Start: s.Start, End: s.End}
}
func (s *DefStmt) String() string {
	var b strings.Builder
	if s.Export {
		b.WriteString("export ")
	}
	b.WriteString(s.Keyword)
	b.WriteString(" ")
	b.WriteString(s.Name)
	return b.String()
}

// SignatureDecl is the bracketed parameter list of a def/extern
type SignatureDecl struct {
	Positionals []*ParamDecl
	Rest        *ParamDecl
	Flags       []*FlagDecl
	SigSpan     lexer.Span
}

func (s *SignatureDecl) Span() lexer.Span { return s.SigSpan }
func (s *SignatureDecl) String() string   { return "[signature]" }

// ParamDecl is a positional or rest parameter declaration
type ParamDecl struct {
	Name      string
	Shape     string // declared shape, "" means any
	Completer string // custom completer command referenced with @
	Optional  bool
	DeclSpan  lexer.Span
}

func (p *ParamDecl) Span() lexer.Span { return p.DeclSpan }
func (p *ParamDecl) String() string   { return p.Name }

// FlagDecl is a flag parameter declaration
type FlagDecl struct {
	Long      string // without dashes, "" for short-only flags
	Short     string // single letter without dash, "" when absent
	Shape     string // "" for switch flags that take no value
	Completer string
	DeclSpan  lexer.Span
}

func (f *FlagDecl) Span() lexer.Span { return f.DeclSpan }
func (f *FlagDecl) String() string {
	if f.Long != "" {
		return "--" + f.Long
	}
	return "-" + f.Short
}

// AliasStmt declares an alias: `alias ll = ls -l`
type AliasStmt struct {
	Name      string
	NameSpan  lexer.Span
	Expansion *Call // the call the alias expands to
	Start     int
	End       int
}

func (s *AliasStmt) statementNode() {}
func (s *AliasStmt) Span() lexer.Span {
	return lexer.Span{Start: s.Start, End: s.End}
}
func (s *AliasStmt) String() string { return "alias " + s.Name }

// LetStmt binds a variable with let, const or mut. The value is a pipeline
// so both `let x = 5` and `let x = ls | length` parse.
type LetStmt struct {
	Keyword string
	Name    string
	Value   *Pipeline
	Start   int
	End     int
}

func (s *LetStmt) statementNode() {}
func (s *LetStmt) Span() lexer.Span {
	return lexer.Span{Start: s.Start, End: s.End}
}
func (s *LetStmt) String() string { return s.Keyword + " " + s.Name }

// AssignStmt assigns to a variable cell path:
// `$env.config.completions.sort = "alphabetical"`
type AssignStmt struct {
	Target *VarPath
	Value  *Pipeline
	End    int
}

func (s *AssignStmt) statementNode() {}
func (s *AssignStmt) Span() lexer.Span {
	return lexer.Span{Start: s.Target.Span().Start, End: s.End}
}

func (s *AssignStmt) String() string {
	if s.Value == nil {
		return s.Target.String() + " ="
	}
	return s.Target.String() + " = " + s.Value.String()
}

// ExprStmt is a pipeline used as a statement, the common case for command
// invocations
type ExprStmt struct {
	Pipeline *Pipeline
}

func (s *ExprStmt) statementNode()   {}
func (s *ExprStmt) Span() lexer.Span { return s.Pipeline.Span() }
func (s *ExprStmt) String() string   { return s.Pipeline.String() }

// Pipeline is one or more calls joined by |
type Pipeline struct {
	Commands []*Call
}

// Span covers the non-empty calls. A half-typed pipeline like `tst | ` has a
// trailing empty call with no tokens of its own, which contributes nothing.
func (p *Pipeline) Span() lexer.Span {
	var span lexer.Span
	first := true
	for _, c := range p.Commands {
		if len(c.Args) == 0 {
			continue
		}
		cs := c.Span()
		if first {
			span = cs
			first = false
			continue
		}
		if cs.End > span.End {
			span.End = cs.End
		}
	}
	return span
}

func (p *Pipeline) String() string {
	parts := make([]string, 0, len(p.Commands))
	for _, c := range p.Commands {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " | ")
}

// Call is a command invocation: head word(s) followed by arguments. The parser
// does not decide how many leading words form the command name; that depends
// on the registry and is resolved later.
type Call struct {
	Args []Expression
}

func (c *Call) expressionNode() {}
func (c *Call) Span() lexer.Span {
	if len(c.Args) == 0 {
		return lexer.Span{}
	}
	return lexer.Span{
		Start: c.Args[0].Span().Start,
		End:   c.Args[len(c.Args)-1].Span().End,
	}
}

func (c *Call) String() string {
	parts := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}

// Word is a bare word: a command name, file path, glob or keyword
type Word struct {
	Token lexer.Token
	Value string
}

func (w *Word) expressionNode()  {}
func (w *Word) Span() lexer.Span { return w.Token.Span }
func (w *Word) String() string   { return w.Value }

// Flag is a word starting with one or two dashes, possibly carrying an inline
// value after =
type Flag struct {
	Token lexer.Token
	Value string // full text including dashes
}

func (f *Flag) expressionNode()  {}
func (f *Flag) Span() lexer.Span { return f.Token.Span }
func (f *Flag) String() string   { return f.Value }

// Name returns the flag text before any inline =value part.
func (f *Flag) Name() string {
	if i := strings.IndexByte(f.Value, '='); i >= 0 {
		return f.Value[:i]
	}
	return f.Value
}

// IntLit is an integer literal
type IntLit struct {
	Token lexer.Token
	Value int64
}

func (i *IntLit) expressionNode()  {}
func (i *IntLit) Span() lexer.Span { return i.Token.Span }
func (i *IntLit) String() string   { return i.Token.Literal }

// FloatLit is a float literal
type FloatLit struct {
	Token lexer.Token
	Value float64
}

func (f *FloatLit) expressionNode()  {}
func (f *FloatLit) Span() lexer.Span { return f.Token.Span }
func (f *FloatLit) String() string   { return f.Token.Literal }

// StringLit is a quoted string; the token remembers the delimiter and whether
// the closing quote was present
type StringLit struct {
	Token lexer.Token
	Value string
}

func (s *StringLit) expressionNode()  {}
func (s *StringLit) Span() lexer.Span { return s.Token.Span }
func (s *StringLit) String() string   { return s.Value }

// VarPath is a $variable reference with an optional dotted cell path, kept as
// one node: `$nu.os-info.` has Name "nu" and raw path ".os-info."
type VarPath struct {
	Token lexer.Token // full $… token
	Name  string      // root variable name without the sigil
}

func (v *VarPath) expressionNode()  {}
func (v *VarPath) Span() lexer.Span { return v.Token.Span }
func (v *VarPath) String() string   { return v.Token.Literal }

// PathSegments returns the dotted segments after the root name, excluding the
// empty segment left by a trailing dot.
func (v *VarPath) PathSegments() []string {
	raw := strings.TrimPrefix(v.Token.Literal, "$")
	parts := strings.Split(raw, ".")
	if len(parts) <= 1 {
		return nil
	}
	segs := parts[1:]
	if len(segs) > 0 && segs[len(segs)-1] == "" {
		segs = segs[:len(segs)-1]
	}
	return segs
}

// ListLit is a list literal: `[a, b, c]`
type ListLit struct {
	Items []Expression
	Lit   lexer.Span // includes the brackets
}

func (l *ListLit) expressionNode()  {}
func (l *ListLit) Span() lexer.Span { return l.Lit }
func (l *ListLit) String() string   { return "[list]" }

// TableLit is a table literal with a header row and data rows:
// `[[a b]; [1 2]]`
type TableLit struct {
	Columns []Expression
	Rows    [][]Expression
	Lit     lexer.Span
}

func (t *TableLit) expressionNode()  {}
func (t *TableLit) Span() lexer.Span { return t.Lit }
func (t *TableLit) String() string   { return "[table]" }

// RecordField is one key-value entry of a record literal
type RecordField struct {
	Key     string
	KeySpan lexer.Span
	Value   Expression
}

// RecordLit is a record literal: `{ name: 'Tom', age: 44 }`
type RecordLit struct {
	Fields []*RecordField
	Lit    lexer.Span
}

func (r *RecordLit) expressionNode()  {}
func (r *RecordLit) Span() lexer.Span { return r.Lit }
func (r *RecordLit) String() string   { return "{record}" }

// Field returns the value expression for key, or nil.
func (r *RecordLit) Field(key string) Expression {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// BlockLit is a block or closure: `{ … }` or `{|params| … }`
type BlockLit struct {
	Params []string
	Body   *Program
	Lit    lexer.Span // includes the braces
}

func (b *BlockLit) expressionNode()  {}
func (b *BlockLit) Span() lexer.Span { return b.Lit }
func (b *BlockLit) String() string   { return "{block}" }

// Subexpr is a parenthesized statement list: `(ls | length)`
type Subexpr struct {
	Body *Program
	Lit  lexer.Span // includes the parens
}

func (s *Subexpr) expressionNode()  {}
func (s *Subexpr) Span() lexer.Span { return s.Lit }
func (s *Subexpr) String() string   { return "(" + s.Body.String() + ")" }

// CellPath is a literal value followed directly by a dotted path, such as
// `{a: [1 {a: 2}]}.a.1.`
type CellPath struct {
	Head      Expression
	PathToken lexer.Token // the abutting word starting with '.'
}

func (c *CellPath) expressionNode() {}
func (c *CellPath) Span() lexer.Span {
	return lexer.Span{Start: c.Head.Span().Start, End: c.PathToken.Span.End}
}
func (c *CellPath) String() string { return c.Head.String() + c.PathToken.Literal }

// PathSegments returns the dotted segments of the trailing path, excluding
// the empty segment left by a trailing dot.
func (c *CellPath) PathSegments() []string {
	raw := strings.TrimPrefix(c.PathToken.Literal, ".")
	if raw == "" {
		return nil
	}
	segs := strings.Split(raw, ".")
	if len(segs) > 0 && segs[len(segs)-1] == "" {
		segs = segs[:len(segs)-1]
	}
	return segs
}
