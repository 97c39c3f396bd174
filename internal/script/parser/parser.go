// Package parser builds an AST for nush source code.
//
// The parser is tolerant: it accumulates errors instead of stopping, and
// half-typed input such as an unterminated block or a trailing pipe still
// produces a tree. Interactive completion parses the line on every keystroke,
// so the common case is an incomplete program.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nush-sh/nush/internal/script/lexer"
)

// maxDepth bounds literal nesting so pathological input cannot blow the stack
const maxDepth = 64

// Parser parses nush tokens into an AST
type Parser struct {
	l *lexer.Lexer

	curToken  lexer.Token
	peekToken lexer.Token

	errors []string
	depth  int
}

// New creates a new Parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []string{},
	}

	// read two tokens so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns the parse errors collected so far
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	msg := fmt.Sprintf("expected next token to be %v, got %v instead at line %d",
		t, p.peekToken.Type, p.peekToken.Line)
	p.errors = append(p.errors, msg)
}

// ParseProgram parses the whole input and returns the resulting Program. It
// never fails; check Errors for problems.
func (p *Parser) ParseProgram() *Program {
	return p.parseBodyUntil(lexer.EOF)
}

// parseBodyUntil parses statements until the end token or EOF. It is used for
// the top level, block bodies and subexpressions; the end token is left as
// the current token.
func (p *Parser) parseBodyUntil(end lexer.TokenType) *Program {
	prog := &Program{Statements: []Statement{}}

	for !p.curTokenIs(end) && !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.NEWLINE) || p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		// A statement that ran out of input leaves the terminator as the
		// current token; do not step past it. When the statement's own last
		// token is a nested closer, its span covers it and we advance.
		if p.curTokenIs(end) || p.curTokenIs(lexer.EOF) {
			if stmt == nil || stmt.Span().End < p.curToken.Span.End {
				break
			}
		}
		p.nextToken()
	}

	return prog
}

// parseStatement dispatches on the current token. Keywords are ordinary words
// recognized only in statement position, so `def` stays a plain argument in
// `help def`.
func (p *Parser) parseStatement() Statement {
	switch {
	case p.curTokenIs(lexer.AT):
		return p.parseAttributeStmt()
	case p.curTokenIs(lexer.DOLLAR) && p.peekTokenIs(lexer.ASSIGN):
		return p.parseAssignStmt()
	case p.curTokenIs(lexer.WORD):
		switch p.curToken.Literal {
		case "export":
			if p.peekTokenIs(lexer.WORD) {
				switch p.peekToken.Literal {
				case "def", "extern":
					return p.parseDefStmt()
				case "alias":
					return p.parseAliasStmt()
				}
			}
		case "def", "extern":
			return p.parseDefStmt()
		case "alias":
			return p.parseAliasStmt()
		case "let", "const", "mut":
			return p.parseLetStmt()
		}
	}
	return p.parseExprStmt()
}

func (p *Parser) parseAttributeStmt() *AttributeStmt {
	stmt := &AttributeStmt{
		Token: p.curToken,
		Name:  strings.TrimPrefix(p.curToken.Literal, "@"),
		End:   p.curToken.Span.End,
	}

	for !p.peekEndsCall() {
		p.nextToken()
		arg := p.parseExpression()
		if arg == nil {
			continue
		}
		stmt.Args = append(stmt.Args, arg)
		stmt.End = arg.Span().End
	}

	return stmt
}

func (p *Parser) parseDefStmt() *DefStmt {
	stmt := &DefStmt{
		Start: p.curToken.Span.Start,
		End:   p.curToken.Span.End,
	}

	if p.curToken.Literal == "export" {
		stmt.Export = true
		p.nextToken()
	}
	stmt.Keyword = p.curToken.Literal

	// def takes flags of its own, such as --env and --wrapped
	for p.peekTokenIs(lexer.FLAG) {
		p.nextToken()
	}

	if !p.peekTokenIs(lexer.WORD) && !p.peekTokenIs(lexer.STRING) {
		p.peekError(lexer.WORD)
		stmt.End = p.curToken.Span.End
		return stmt
	}
	p.nextToken()
	stmt.Name = p.curToken.Literal
	stmt.NameSpan = p.curToken.Span
	stmt.End = p.curToken.Span.End

	if p.peekTokenIs(lexer.LBRACKET) {
		p.nextToken()
		stmt.Sig = p.parseSignature()
		stmt.End = p.curToken.Span.End
	}

	if stmt.Keyword == "def" && p.peekTokenIs(lexer.LBRACE) {
		p.nextToken()
		lbrace := p.curToken
		p.nextToken()
		if body := p.parseBlockRest(lbrace, nil); body != nil {
			stmt.Body = body
			stmt.End = body.Lit.End
		}
	}

	return stmt
}

// parseSignature parses a bracketed parameter list. The current token is the
// opening bracket on entry and the closing bracket on exit.
func (p *Parser) parseSignature() *SignatureDecl {
	sig := &SignatureDecl{}
	start := p.curToken.Span.Start

	p.nextToken()
	for !p.curTokenIs(lexer.RBRACKET) && !p.curTokenIs(lexer.EOF) {
		switch {
		case p.curTokenIs(lexer.COMMA) || p.curTokenIs(lexer.NEWLINE):
			p.nextToken()
			continue
		case p.curTokenIs(lexer.FLAG):
			sig.Flags = append(sig.Flags, p.parseFlagDecl())
		case p.curTokenIs(lexer.WORD) || p.curTokenIs(lexer.STRING):
			isRest := strings.HasPrefix(p.curToken.Literal, "...")
			param := p.parseParamDecl()
			if isRest {
				sig.Rest = param
			} else {
				sig.Positionals = append(sig.Positionals, param)
			}
		default:
			p.errors = append(p.errors, fmt.Sprintf("unexpected token %v in signature at line %d",
				p.curToken.Type, p.curToken.Line))
		}
		p.nextToken()
	}

	sig.SigSpan = lexer.Span{Start: start, End: p.curToken.Span.End}
	return sig
}

func (p *Parser) parseFlagDecl() *FlagDecl {
	decl := &FlagDecl{DeclSpan: p.curToken.Span}

	lit := p.curToken.Literal
	if strings.HasPrefix(lit, "--") {
		decl.Long = strings.TrimPrefix(lit, "--")
	} else {
		decl.Short = strings.TrimPrefix(lit, "-")
	}

	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		if p.expectPeek(lexer.FLAG) {
			decl.Short = strings.TrimPrefix(p.curToken.Literal, "-")
		}
		if p.peekTokenIs(lexer.RPAREN) {
			p.nextToken()
		}
	}

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		decl.Shape, decl.Completer = p.parseShapeRef()
	}

	decl.DeclSpan.End = p.curToken.Span.End
	return decl
}

func (p *Parser) parseParamDecl() *ParamDecl {
	decl := &ParamDecl{DeclSpan: p.curToken.Span}

	name := strings.TrimPrefix(p.curToken.Literal, "...")
	if strings.HasSuffix(name, "?") {
		decl.Optional = true
		name = strings.TrimSuffix(name, "?")
	}
	decl.Name = name

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		decl.Shape, decl.Completer = p.parseShapeRef()
	}

	decl.DeclSpan.End = p.curToken.Span.End
	return decl
}

// parseShapeRef parses the shape after a colon in a signature, with an
// optional custom completer reference. The completer is either part of the
// word, as in `string@animals`, or a quoted string glued to a trailing @, as
// in `int@"tst sub"`.
func (p *Parser) parseShapeRef() (string, string) {
	if !p.peekTokenIs(lexer.WORD) {
		p.peekError(lexer.WORD)
		return "", ""
	}
	p.nextToken()
	lit := p.curToken.Literal

	if strings.HasSuffix(lit, "@") && p.peekTokenIs(lexer.STRING) {
		p.nextToken()
		return strings.TrimSuffix(lit, "@"), p.curToken.Literal
	}
	if i := strings.IndexByte(lit, '@'); i >= 0 {
		return lit[:i], lit[i+1:]
	}
	return lit, ""
}

func (p *Parser) parseAliasStmt() *AliasStmt {
	stmt := &AliasStmt{
		Start: p.curToken.Span.Start,
		End:   p.curToken.Span.End,
	}

	if p.curToken.Literal == "export" {
		p.nextToken()
	}

	if !p.peekTokenIs(lexer.WORD) && !p.peekTokenIs(lexer.STRING) {
		p.peekError(lexer.WORD)
		return stmt
	}
	p.nextToken()
	stmt.Name = p.curToken.Literal
	stmt.NameSpan = p.curToken.Span
	stmt.End = p.curToken.Span.End

	if !p.expectPeek(lexer.ASSIGN) {
		return stmt
	}
	if p.peekEndsCall() {
		return stmt
	}
	p.nextToken()
	stmt.Expansion = p.parseCall()
	stmt.End = p.curToken.Span.End
	return stmt
}

func (p *Parser) parseLetStmt() *LetStmt {
	stmt := &LetStmt{
		Keyword: p.curToken.Literal,
		Start:   p.curToken.Span.Start,
		End:     p.curToken.Span.End,
	}

	if !p.expectPeek(lexer.WORD) {
		return stmt
	}
	stmt.Name = p.curToken.Literal
	stmt.End = p.curToken.Span.End

	if !p.expectPeek(lexer.ASSIGN) {
		return stmt
	}
	stmt.End = p.curToken.Span.End
	if p.peekEndsCall() {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parsePipeline()
	if s := stmt.Value.Span(); s.End > stmt.End {
		stmt.End = s.End
	}
	return stmt
}

func (p *Parser) parseAssignStmt() *AssignStmt {
	stmt := &AssignStmt{Target: p.parseVarPath()}

	p.nextToken() // the =
	stmt.End = p.curToken.Span.End
	if p.peekEndsCall() {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parsePipeline()
	if s := stmt.Value.Span(); s.End > stmt.End {
		stmt.End = s.End
	}
	return stmt
}

func (p *Parser) parseExprStmt() Statement {
	pl := p.parsePipeline()
	if pl == nil || len(pl.Commands) == 0 {
		return nil
	}
	return &ExprStmt{Pipeline: pl}
}

// parsePipeline parses calls joined by pipes. A missing command around a pipe
// becomes an empty Call, so `tst | ` keeps a slot for the command being
// typed.
func (p *Parser) parsePipeline() *Pipeline {
	pl := &Pipeline{Commands: []*Call{}}

	for {
		if p.curTokenIs(lexer.PIPE) {
			pl.Commands = append(pl.Commands, &Call{})
			p.nextToken()
			for p.curTokenIs(lexer.NEWLINE) {
				p.nextToken()
			}
			continue
		}
		if p.curEndsCall() {
			pl.Commands = append(pl.Commands, &Call{})
			return pl
		}

		pl.Commands = append(pl.Commands, p.parseCall())

		if !p.peekTokenIs(lexer.PIPE) {
			return pl
		}
		p.nextToken() // the pipe
		p.nextToken()
		// a pipe at end of line continues the pipeline on the next one
		for p.curTokenIs(lexer.NEWLINE) {
			p.nextToken()
		}
	}
}

// parseCall parses a run of expressions up to a call boundary. Which leading
// words form the command name is not decided here; that depends on the
// registry and is resolved later.
func (p *Parser) parseCall() *Call {
	call := &Call{Args: []Expression{}}

	for {
		expr := p.parseExpression()
		if expr != nil {
			call.Args = append(call.Args, expr)
		}
		if p.peekEndsCall() {
			return call
		}
		p.nextToken()
	}
}

func (p *Parser) curEndsCall() bool {
	return endsCall(p.curToken.Type)
}

func (p *Parser) peekEndsCall() bool {
	return endsCall(p.peekToken.Type)
}

func endsCall(t lexer.TokenType) bool {
	switch t {
	case lexer.NEWLINE, lexer.SEMICOLON, lexer.EOF, lexer.PIPE,
		lexer.RBRACE, lexer.RPAREN, lexer.RBRACKET:
		return true
	}
	return false
}

func (p *Parser) parseExpression() Expression {
	var expr Expression

	switch p.curToken.Type {
	case lexer.WORD:
		expr = &Word{Token: p.curToken, Value: p.curToken.Literal}
	case lexer.FLAG:
		expr = &Flag{Token: p.curToken, Value: p.curToken.Literal}
	case lexer.INT:
		expr = p.parseIntLit()
	case lexer.FLOAT:
		expr = p.parseFloatLit()
	case lexer.STRING:
		expr = &StringLit{Token: p.curToken, Value: p.curToken.Literal}
	case lexer.DOLLAR:
		expr = p.parseVarPath()
	case lexer.LBRACKET:
		expr = p.parseListOrTable()
	case lexer.LBRACE:
		expr = p.parseBraceLit()
	case lexer.LPAREN:
		expr = p.parseSubexpr()
	default:
		p.errors = append(p.errors, fmt.Sprintf("unexpected token %v at line %d",
			p.curToken.Type, p.curToken.Line))
		return nil
	}

	if expr == nil {
		return nil
	}
	return p.parseCellPathSuffix(expr)
}

func (p *Parser) parseIntLit() Expression {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("could not parse %q as integer at line %d",
			p.curToken.Literal, p.curToken.Line))
		return nil
	}
	return &IntLit{Token: p.curToken, Value: value}
}

func (p *Parser) parseFloatLit() Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("could not parse %q as float at line %d",
			p.curToken.Literal, p.curToken.Line))
		return nil
	}
	return &FloatLit{Token: p.curToken, Value: value}
}

func (p *Parser) parseVarPath() *VarPath {
	name := strings.TrimPrefix(p.curToken.Literal, "$")
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return &VarPath{Token: p.curToken, Name: name}
}

// parseCellPathSuffix attaches a dotted path to a container literal or
// subexpression when the path directly abuts it, as in `{a: 1}.a`. The
// lexer classifies `.1` as a float, so both words and floats qualify.
func (p *Parser) parseCellPathSuffix(expr Expression) Expression {
	switch expr.(type) {
	case *RecordLit, *TableLit, *ListLit, *Subexpr:
	default:
		return expr
	}

	if !p.peekTokenIs(lexer.WORD) && !p.peekTokenIs(lexer.FLOAT) {
		return expr
	}
	if p.peekToken.Span.Start != p.curToken.Span.End {
		return expr
	}
	if !strings.HasPrefix(p.peekToken.Literal, ".") {
		return expr
	}

	p.nextToken()
	return &CellPath{Head: expr, PathToken: p.curToken}
}

// parseBraceLit disambiguates the three meanings of a brace: an empty record
// for {}, a closure when the first token is a pipe, a record when the first
// token is a key followed by a colon, and a block otherwise.
func (p *Parser) parseBraceLit() Expression {
	if p.depth >= maxDepth {
		p.errors = append(p.errors, fmt.Sprintf("nesting too deep at line %d", p.curToken.Line))
		p.skipBalanced(lexer.LBRACE, lexer.RBRACE)
		return nil
	}
	p.depth++
	defer func() { p.depth-- }()

	lbrace := p.curToken
	p.nextToken()
	for p.curTokenIs(lexer.NEWLINE) {
		p.nextToken()
	}

	switch {
	case p.curTokenIs(lexer.RBRACE):
		return &RecordLit{
			Fields: []*RecordField{},
			Lit:    lexer.Span{Start: lbrace.Span.Start, End: p.curToken.Span.End},
		}
	case p.curTokenIs(lexer.PIPE):
		return p.parseClosureRest(lbrace)
	case (p.curTokenIs(lexer.WORD) || p.curTokenIs(lexer.STRING)) && p.peekTokenIs(lexer.COLON):
		return p.parseRecordRest(lbrace)
	default:
		block := p.parseBlockRest(lbrace, nil)
		if block == nil {
			return nil
		}
		return block
	}
}

// parseClosureRest parses the |param, param| list and then the body. The
// current token is the opening pipe on entry.
func (p *Parser) parseClosureRest(lbrace lexer.Token) Expression {
	params := []string{}

	p.nextToken()
	for !p.curTokenIs(lexer.PIPE) && !p.curTokenIs(lexer.EOF) {
		switch p.curToken.Type {
		case lexer.WORD:
			params = append(params, p.curToken.Literal)
		case lexer.DOLLAR:
			params = append(params, strings.TrimPrefix(p.curToken.Literal, "$"))
		case lexer.COMMA:
		default:
			p.errors = append(p.errors, fmt.Sprintf("unexpected token %v in closure parameters at line %d",
				p.curToken.Type, p.curToken.Line))
		}
		p.nextToken()
	}
	if p.curTokenIs(lexer.PIPE) {
		p.nextToken()
	}

	block := p.parseBlockRest(lbrace, params)
	if block == nil {
		return nil
	}
	return block
}

// parseBlockRest parses statements up to the closing brace. The current token
// is the first body token on entry and the closing brace, or EOF for an
// unterminated block, on exit.
func (p *Parser) parseBlockRest(lbrace lexer.Token, params []string) *BlockLit {
	if p.depth >= maxDepth {
		p.errors = append(p.errors, fmt.Sprintf("nesting too deep at line %d", p.curToken.Line))
		p.skipBalanced(lexer.LBRACE, lexer.RBRACE)
		return nil
	}
	p.depth++
	defer func() { p.depth-- }()

	body := p.parseBodyUntil(lexer.RBRACE)
	return &BlockLit{
		Params: params,
		Body:   body,
		Lit:    lexer.Span{Start: lbrace.Span.Start, End: p.curToken.Span.End},
	}
}

// parseRecordRest parses key: value fields up to the closing brace. The
// current token is the first key on entry.
func (p *Parser) parseRecordRest(lbrace lexer.Token) Expression {
	rec := &RecordLit{Fields: []*RecordField{}}

	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.NEWLINE) || p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		if !p.curTokenIs(lexer.WORD) && !p.curTokenIs(lexer.STRING) {
			p.errors = append(p.errors, fmt.Sprintf("expected record key, got %v instead at line %d",
				p.curToken.Type, p.curToken.Line))
			p.nextToken()
			continue
		}

		field := &RecordField{Key: p.curToken.Literal, KeySpan: p.curToken.Span}
		if !p.expectPeek(lexer.COLON) {
			p.nextToken()
			continue
		}
		p.nextToken()
		field.Value = p.parseExpression()
		rec.Fields = append(rec.Fields, field)
		p.nextToken()
	}

	rec.Lit = lexer.Span{Start: lbrace.Span.Start, End: p.curToken.Span.End}
	return rec
}

// parseListOrTable parses a bracket literal. A semicolon after the first item
// switches to table form, where the first item is the header row:
// `[[name age]; [Peter 42]]`.
func (p *Parser) parseListOrTable() Expression {
	if p.depth >= maxDepth {
		p.errors = append(p.errors, fmt.Sprintf("nesting too deep at line %d", p.curToken.Line))
		p.skipBalanced(lexer.LBRACKET, lexer.RBRACKET)
		return nil
	}
	p.depth++
	defer func() { p.depth-- }()

	lbracket := p.curToken
	items := []Expression{}
	isTable := false
	var columns []Expression
	rows := [][]Expression{}

	p.nextToken()
	for !p.curTokenIs(lexer.RBRACKET) && !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.NEWLINE) || p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		if p.curTokenIs(lexer.SEMICOLON) {
			if !isTable && len(items) == 1 {
				if hdr, ok := items[0].(*ListLit); ok {
					isTable = true
					columns = hdr.Items
					items = items[:0]
					p.nextToken()
					continue
				}
			}
			p.errors = append(p.errors, fmt.Sprintf("unexpected token %v at line %d",
				p.curToken.Type, p.curToken.Line))
			p.nextToken()
			continue
		}

		item := p.parseExpression()
		if item != nil {
			if isTable {
				if row, ok := item.(*ListLit); ok {
					rows = append(rows, row.Items)
				} else {
					p.errors = append(p.errors, fmt.Sprintf("expected table row at line %d",
						p.curToken.Line))
				}
			} else {
				items = append(items, item)
			}
		}
		p.nextToken()
	}

	span := lexer.Span{Start: lbracket.Span.Start, End: p.curToken.Span.End}
	if isTable {
		return &TableLit{Columns: columns, Rows: rows, Lit: span}
	}
	return &ListLit{Items: items, Lit: span}
}

// parseSubexpr parses a parenthesized body. Subexpressions hold full
// statement lists, so `(let x = 1; $x)` parses.
func (p *Parser) parseSubexpr() Expression {
	if p.depth >= maxDepth {
		p.errors = append(p.errors, fmt.Sprintf("nesting too deep at line %d", p.curToken.Line))
		p.skipBalanced(lexer.LPAREN, lexer.RPAREN)
		return nil
	}
	p.depth++
	defer func() { p.depth-- }()

	lparen := p.curToken
	p.nextToken()
	body := p.parseBodyUntil(lexer.RPAREN)
	return &Subexpr{
		Body: body,
		Lit:  lexer.Span{Start: lparen.Span.Start, End: p.curToken.Span.End},
	}
}

// skipBalanced consumes tokens until the close matching the construct the
// parser is currently inside, counting nested pairs. Used to bail out of
// over-deep nesting without losing the rest of the input.
func (p *Parser) skipBalanced(open, close lexer.TokenType) {
	depth := 1
	for depth > 0 && !p.curTokenIs(lexer.EOF) {
		p.nextToken()
		if p.curTokenIs(open) {
			depth++
		} else if p.curTokenIs(close) {
			depth--
		}
	}
}
