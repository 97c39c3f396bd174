package completion

import (
	"strings"

	"github.com/nush-sh/nush/internal/registry"
	"github.com/nush-sh/nush/internal/script/lexer"
	"github.com/nush-sh/nush/internal/script/parser"
)

const (
	// maxNestingDepth bounds block/subexpression descent
	maxNestingDepth = 32
	// maxAliasDepth bounds alias chain expansion
	maxAliasDepth = 10
)

// contextKind enumerates the closed set of completion contexts
type contextKind int

const (
	ctxCommandHead contextKind = iota
	ctxSubcommand
	ctxFlag
	ctxPositional
	ctxRestArgs
	ctxFlagValue
	ctxExternalArgs
	ctxVariablePath
	ctxAttribute
	ctxAttributableKeyword
)

var contextKindNames = [...]string{
	ctxCommandHead:         "command-head",
	ctxSubcommand:          "subcommand",
	ctxFlag:                "flag",
	ctxPositional:          "positional",
	ctxRestArgs:            "rest-args",
	ctxFlagValue:           "flag-value",
	ctxExternalArgs:        "external-args",
	ctxVariablePath:        "variable-path",
	ctxAttribute:           "attribute",
	ctxAttributableKeyword: "attributable-keyword",
}

// String implements fmt.Stringer for contextKind.
func (k contextKind) String() string {
	if int(k) >= 0 && int(k) < len(contextKindNames) {
		return contextKindNames[k]
	}
	return "unknown"
}

// completionContext describes what kind of token the cursor sits in. Exactly
// one primary context comes out of each classification, but the resolver may
// return several (e.g. a positional merged with a subcommand) whose provider
// outputs are unioned.
type completionContext struct {
	kind contextKind

	// text is the matching-text: the token's substring from its start up to
	// the cursor, with string delimiters stripped.
	text string
	// span is the replacement range: the whole token, trailing characters
	// included.
	span lexer.Span
	// quote is the string delimiter the user typed, 0 when unquoted.
	quote byte

	cmd       *registry.Command // Flag context: the resolved command
	shape     string            // Positional/RestArgs/FlagValue: declared shape
	completer string            // custom completer reference, "" when absent
	spanTexts []string          // current call's token texts, cursor-truncated
	constHead parser.Expression // VariablePath on a literal head

	// externalOnly marks a command-head context behind the ^ sigil.
	externalOnly bool
}

// resolver walks one parse tree for one completion request
type resolver struct {
	c    *Completer
	line string
	pos  int
}

// resolveProgram finds the statement under the cursor and classifies within
// it. A cursor on a fresh statement position is a command head; one directly
// after an attribute statement expects a definition keyword.
func (r *resolver) resolveProgram(prog *parser.Program, depth int) []completionContext {
	if depth > maxNestingDepth {
		return nil
	}

	var cur, prev, lastBefore, beforeLast parser.Statement
	for _, stmt := range prog.Statements {
		s := stmt.Span()
		if s.Start > r.pos {
			break
		}
		if s.ContainsInclusive(r.pos) {
			prev = lastBefore
			cur = stmt
		}
		if s.End <= r.pos {
			beforeLast = lastBefore
			lastBefore = stmt
		}
	}

	if cur == nil {
		if lastBefore != nil && r.onlyBlanksBetween(lastBefore.Span().End, r.pos) {
			cur = lastBefore
			prev = beforeLast
		} else {
			// Fresh statement position.
			if _, ok := lastBefore.(*parser.AttributeStmt); ok {
				return []completionContext{{
					kind: ctxAttributableKeyword,
					span: lexer.Span{Start: r.pos, End: r.pos},
				}}
			}
			return []completionContext{{
				kind: ctxCommandHead,
				span: lexer.Span{Start: r.pos, End: r.pos},
			}}
		}
	}

	// A bare word statement following an attribute is a definition keyword in
	// the making: `@example` then `export d`.
	if _, ok := prev.(*parser.AttributeStmt); ok {
		if ctx, applies := r.attributableKeywordContext(cur); applies {
			return []completionContext{ctx}
		}
	}

	return r.resolveStatement(cur, depth)
}

func (r *resolver) attributableKeywordContext(stmt parser.Statement) (completionContext, bool) {
	es, ok := stmt.(*parser.ExprStmt)
	if !ok || len(es.Pipeline.Commands) != 1 {
		return completionContext{}, false
	}
	call := es.Pipeline.Commands[0]
	end := r.pos
	for _, arg := range call.Args {
		if _, isWord := arg.(*parser.Word); !isWord {
			return completionContext{}, false
		}
		if arg.Span().Start >= r.pos {
			break
		}
		if e := arg.Span().End; e > end {
			end = e
		}
	}
	start := call.Span().Start
	return completionContext{
		kind: ctxAttributableKeyword,
		text: r.line[start:r.pos],
		span: lexer.Span{Start: start, End: end},
	}, true
}

func (r *resolver) resolveStatement(stmt parser.Statement, depth int) []completionContext {
	switch s := stmt.(type) {
	case *parser.AttributeStmt:
		tok := s.Token
		if tok.Span.ContainsInclusive(r.pos) && r.pos > tok.Span.Start {
			return []completionContext{{
				kind: ctxAttribute,
				text: r.line[tok.Span.Start+1 : r.pos],
				span: lexer.Span{Start: tok.Span.Start + 1, End: tok.Span.End},
			}}
		}
		// Cursor in the attribute's arguments: complete against the attr
		// command's signature.
		if cmd, ok := r.c.registry.LookupCommand("attr " + s.Name); ok {
			return r.resolveArgs(cmd, s.Args, depth)
		}
		return nil

	case *parser.DefStmt:
		if s.Body != nil && r.insideDelimited(s.Body.Lit, '}') {
			return r.resolveProgram(s.Body.Body, depth+1)
		}
		return nil

	case *parser.AliasStmt:
		if s.Expansion != nil && len(s.Expansion.Args) > 0 {
			return r.resolveCall(s.Expansion.Args, depth)
		}
		// `alias ll = ` with nothing typed yet: the expansion head is a
		// command.
		if strings.Contains(r.line[s.Span().Start:r.pos], "=") {
			return []completionContext{{
				kind: ctxCommandHead,
				span: lexer.Span{Start: r.pos, End: r.pos},
			}}
		}
		return nil

	case *parser.LetStmt:
		if s.Value != nil {
			return r.resolvePipeline(s.Value, depth)
		}
		return nil

	case *parser.AssignStmt:
		if s.Target.Span().ContainsInclusive(r.pos) && r.pos > s.Target.Span().Start {
			return []completionContext{r.variableContext(s.Target.Token, nil)}
		}
		if s.Value != nil {
			return r.resolvePipeline(s.Value, depth)
		}
		return nil

	case *parser.ExprStmt:
		return r.resolvePipeline(s.Pipeline, depth)
	}
	return nil
}

func (r *resolver) resolvePipeline(pl *parser.Pipeline, depth int) []completionContext {
	var cur, lastBefore *parser.Call
	for _, call := range pl.Commands {
		if len(call.Args) == 0 {
			continue
		}
		s := call.Span()
		if s.ContainsInclusive(r.pos) {
			cur = call
		} else if s.End < r.pos {
			lastBefore = call
		}
	}

	if cur == nil {
		if lastBefore != nil && !strings.ContainsAny(r.line[lastBefore.Span().End:r.pos], "|;\n") {
			cur = lastBefore
		} else {
			// Cursor on an empty pipeline stage: a command head being typed.
			return []completionContext{{
				kind: ctxCommandHead,
				span: lexer.Span{Start: r.pos, End: r.pos},
			}}
		}
	}

	return r.resolveCall(cur.Args, depth)
}

// resolveCall classifies the cursor within one command call.
func (r *resolver) resolveCall(args []parser.Expression, depth int) []completionContext {
	if len(args) == 0 {
		return nil
	}

	// Descend into any nested block, subexpression or literal that holds the
	// cursor before classifying at this level.
	for _, arg := range args {
		if ctxs, ok := r.descendExpr(arg, depth); ok {
			return ctxs
		}
	}

	curArg, curIdx, insertIdx := r.cursorArg(args)

	// A cursor at the closed edge of a container offers nothing.
	if curArg != nil && isContainer(curArg) {
		return nil
	}

	if vp, ok := curArg.(*parser.VarPath); ok {
		return []completionContext{r.variableContext(vp.Token, nil)}
	}

	text, span, quote := r.tokenInfo(curArg)

	if curIdx == 0 {
		return r.headContexts(text, span, quote, args)
	}

	// Classification operates on the alias-expanded argument list while the
	// replacement span keeps referring to the typed token.
	eff, shift := r.expandAliases(args)

	effIdx := insertIdx + shift
	synthetic := curArg == nil
	if !synthetic {
		effIdx = curIdx + shift
	}

	spanTexts := r.spanTexts(args, synthetic)

	headWords := leadingWords(eff)
	if limit := effIdx; len(headWords) > limit {
		headWords = headWords[:limit]
	}

	if len(headWords) == 0 {
		return nil
	}

	if strings.HasPrefix(headWords[0], "^") {
		return r.externalContexts(args, text, span, quote, spanTexts)
	}

	var cmd *registry.Command
	headLen := 1
	for n := len(headWords); n >= 1; n-- {
		if found, ok := r.c.registry.LookupCommand(strings.Join(headWords[:n], " ")); ok {
			cmd = found
			headLen = n
			break
		}
	}

	if cmd == nil {
		// Wrapper commands complete the wrapped command's world.
		if isWrapperCommand(headWords[0]) && len(args) > 1 {
			return r.resolveCall(args[1:], depth)
		}
		return r.externalContexts(args, text, span, quote, spanTexts)
	}

	return r.classifyArg(cmd, headLen, eff, effIdx, shift, args, curIdx, synthetic,
		text, span, quote, spanTexts)
}

// resolveArgs classifies the cursor within an argument list whose command is
// already known, as for attribute arguments.
func (r *resolver) resolveArgs(cmd *registry.Command, args []parser.Expression, depth int) []completionContext {
	for _, arg := range args {
		if ctxs, ok := r.descendExpr(arg, depth); ok {
			return ctxs
		}
	}
	curArg, curIdx, insertIdx := r.cursorArg(args)
	if curArg != nil && isContainer(curArg) {
		return nil
	}
	if vp, ok := curArg.(*parser.VarPath); ok {
		return []completionContext{r.variableContext(vp.Token, nil)}
	}
	text, span, quote := r.tokenInfo(curArg)
	synthetic := curArg == nil
	idx := insertIdx
	if !synthetic {
		idx = curIdx
	}
	// Prepend a virtual head so indexes line up with classifyArg's view.
	eff := append([]parser.Expression{&parser.Word{Value: cmd.Name}}, args...)
	return r.classifyArg(cmd, 1, eff, idx+1, 1, args, curIdx, synthetic,
		text, span, quote, r.spanTexts(args, synthetic))
}

// classifyArg applies the lexical + structural rule set to the cursor token
// within a resolved command call.
func (r *resolver) classifyArg(
	cmd *registry.Command,
	headLen int,
	eff []parser.Expression,
	effIdx, shift int,
	args []parser.Expression,
	curIdx int,
	synthetic bool,
	text string,
	span lexer.Span,
	quote byte,
	spanTexts []string,
) []completionContext {
	sig := &cmd.Sig

	// Cursor on a dash token: flag names, or a flag value after `=`.
	if quote == 0 && strings.HasPrefix(text, "-") && !isNumberToken(text) {
		if eq := strings.IndexByte(text, '='); eq >= 0 {
			if f := lookupFlag(sig, text[:eq]); f != nil && (f.Shape != "" || f.Completer != "") {
				return []completionContext{{
					kind:      ctxFlagValue,
					text:      text[eq+1:],
					span:      lexer.Span{Start: span.Start + eq + 1, End: span.End},
					cmd:       cmd,
					shape:     f.Shape,
					completer: f.Completer,
					spanTexts: spanTexts,
				}}
			}
			return nil
		}
		return []completionContext{{
			kind: ctxFlag,
			text: text,
			span: span,
			cmd:  cmd,
		}}
	}

	// A token following a value-taking flag completes that flag's value.
	if effIdx-1 >= headLen {
		if pf, ok := eff[effIdx-1].(*parser.Flag); ok && !strings.Contains(pf.Value, "=") {
			if f := lookupFlag(sig, pf.Value); f != nil && (f.Shape != "" || f.Completer != "") {
				return []completionContext{{
					kind:      ctxFlagValue,
					text:      text,
					span:      span,
					quote:     quote,
					cmd:       cmd,
					shape:     f.Shape,
					completer: f.Completer,
					spanTexts: spanTexts,
				}}
			}
		}
	}

	positIdx := positionalIndex(sig, eff, headLen, effIdx)

	var ctxs []completionContext
	if positIdx < len(sig.Positionals) {
		p := sig.Positionals[positIdx]
		ctxs = append(ctxs, completionContext{
			kind:      ctxPositional,
			text:      text,
			span:      span,
			quote:     quote,
			cmd:       cmd,
			shape:     p.Shape,
			completer: p.Completer,
			spanTexts: spanTexts,
		})
	} else if sig.Rest != nil {
		ctxs = append(ctxs, completionContext{
			kind:      ctxRestArgs,
			text:      text,
			span:      span,
			quote:     quote,
			cmd:       cmd,
			shape:     sig.Rest.Shape,
			completer: sig.Rest.Completer,
			spanTexts: spanTexts,
		})
	}

	// A bare word after the head may also extend the command name itself;
	// both providers run and their outputs are unioned. Alias-expanded calls
	// skip this: the typed words no longer line up with registered names.
	if shift == 0 && quote == 0 {
		if ctx, ok := r.subcommandContext(args, curIdx, synthetic, text); ok {
			ctxs = append(ctxs, ctx)
		}
	}

	return ctxs
}

// subcommandContext builds the merged-word context used to match multi-word
// command names. It applies only while everything from the head to the
// cursor is a bare word.
func (r *resolver) subcommandContext(args []parser.Expression, curIdx int, synthetic bool, text string) (completionContext, bool) {
	limit := curIdx
	if synthetic {
		limit = len(args)
	}
	words := []string{}
	end := r.pos
	for n := 0; n < limit; n++ {
		if args[n].Span().Start >= r.pos {
			break
		}
		w, ok := args[n].(*parser.Word)
		if !ok {
			return completionContext{}, false
		}
		words = append(words, w.Value)
	}
	if len(words) == 0 {
		return completionContext{}, false
	}
	if !synthetic {
		end = args[curIdx].Span().End
	}
	matchText := strings.Join(words, " ")
	if synthetic {
		matchText += " "
	} else {
		matchText = strings.Join(append(words, text), " ")
	}
	return completionContext{
		kind: ctxSubcommand,
		text: matchText,
		span: lexer.Span{Start: args[0].Span().Start, End: end},
	}, true
}

func (r *resolver) externalContexts(args []parser.Expression, text string, span lexer.Span, quote byte, spanTexts []string) []completionContext {
	ctxs := []completionContext{{
		kind:      ctxExternalArgs,
		text:      text,
		span:      span,
		quote:     quote,
		spanTexts: spanTexts,
	}}
	// An unresolved head may still be the front of a multi-word command name.
	if quote == 0 {
		curArg, curIdx, _ := r.cursorArg(args)
		if ctx, ok := r.subcommandContext(args, curIdx, curArg == nil, text); ok {
			ctxs = append(ctxs, ctx)
		}
	}
	return ctxs
}

func (r *resolver) headContexts(text string, span lexer.Span, quote byte, args []parser.Expression) []completionContext {
	if quote == 0 && strings.HasPrefix(text, "^") {
		return []completionContext{{
			kind:         ctxCommandHead,
			text:         text[1:],
			span:         lexer.Span{Start: span.Start + 1, End: span.End},
			externalOnly: true,
		}}
	}
	return []completionContext{{
		kind:  ctxCommandHead,
		text:  text,
		span:  span,
		quote: quote,
	}}
}

func (r *resolver) variableContext(tok lexer.Token, constHead parser.Expression) completionContext {
	return completionContext{
		kind:      ctxVariablePath,
		text:      r.line[tok.Span.Start:min(r.pos, tok.Span.End)],
		span:      tok.Span,
		constHead: constHead,
	}
}

// descendExpr recurses into a container expression that holds the cursor.
// The second return reports whether the cursor was inside expr.
func (r *resolver) descendExpr(expr parser.Expression, depth int) ([]completionContext, bool) {
	if depth > maxNestingDepth {
		return nil, false
	}
	switch e := expr.(type) {
	case *parser.BlockLit:
		if r.insideDelimited(e.Lit, '}') {
			return r.resolveProgram(e.Body, depth+1), true
		}
	case *parser.Subexpr:
		if r.insideDelimited(e.Lit, ')') {
			return r.resolveProgram(e.Body, depth+1), true
		}
	case *parser.ListLit:
		for _, item := range e.Items {
			if ctxs, ok := r.descendExpr(item, depth+1); ok {
				return ctxs, true
			}
		}
	case *parser.TableLit:
		for _, row := range e.Rows {
			for _, cell := range row {
				if ctxs, ok := r.descendExpr(cell, depth+1); ok {
					return ctxs, true
				}
			}
		}
	case *parser.RecordLit:
		for _, field := range e.Fields {
			if field.Value == nil {
				continue
			}
			if ctxs, ok := r.descendExpr(field.Value, depth+1); ok {
				return ctxs, true
			}
		}
	case *parser.CellPath:
		if ctxs, ok := r.descendExpr(e.Head, depth+1); ok {
			return ctxs, true
		}
		if e.PathToken.Span.ContainsInclusive(r.pos) && r.pos > e.PathToken.Span.Start {
			ctx := r.variableContext(e.PathToken, e.Head)
			return []completionContext{ctx}, true
		}
	}
	return nil, false
}

// cursorArg locates the argument holding the cursor. When the cursor sits on
// whitespace between arguments, curArg is nil and insertIdx is the index the
// in-progress token would occupy.
func (r *resolver) cursorArg(args []parser.Expression) (curArg parser.Expression, curIdx, insertIdx int) {
	curIdx = -1
	for n, arg := range args {
		s := arg.Span()
		if s.ContainsInclusive(r.pos) {
			curArg = arg
			curIdx = n
		}
		if s.End < r.pos {
			insertIdx = n + 1
		}
	}
	return curArg, curIdx, insertIdx
}

// tokenInfo extracts the matching-text, replacement span and quote of the
// cursor token. A nil arg is the empty in-progress token at the cursor.
func (r *resolver) tokenInfo(arg parser.Expression) (string, lexer.Span, byte) {
	if arg == nil {
		return "", lexer.Span{Start: r.pos, End: r.pos}, 0
	}
	span := arg.Span()
	text := r.line[span.Start:r.pos]
	var quote byte
	if sl, ok := arg.(*parser.StringLit); ok {
		quote = sl.Token.Quote
		text = strings.TrimPrefix(text, string(quote))
		if sl.Token.Closed && r.pos == span.End {
			text = strings.TrimSuffix(text, string(quote))
		}
	}
	return text, span, quote
}

// expandAliases rewrites the call head through the alias table, bounded in
// depth and guarded against cycles. shift is how many extra leading
// arguments the expansion introduced.
func (r *resolver) expandAliases(args []parser.Expression) ([]parser.Expression, int) {
	visited := make(map[string]bool)
	shift := 0
	for n := 0; n < maxAliasDepth; n++ {
		head, ok := args[0].(*parser.Word)
		if !ok || visited[head.Value] {
			break
		}
		expansion, isAlias := r.c.registry.LookupAlias(head.Value)
		if !isAlias || len(expansion.Args) == 0 {
			break
		}
		visited[head.Value] = true
		expanded := make([]parser.Expression, 0, len(expansion.Args)+len(args)-1)
		expanded = append(expanded, expansion.Args...)
		expanded = append(expanded, args[1:]...)
		shift += len(expansion.Args) - 1
		args = expanded
	}
	return args, shift
}

// spanTexts returns the call's token texts truncated at the cursor, the
// argument list a custom or external completer receives. A trailing empty
// string stands for the token being started on whitespace.
func (r *resolver) spanTexts(args []parser.Expression, synthetic bool) []string {
	texts := []string{}
	for _, arg := range args {
		s := arg.Span()
		if s.Start >= r.pos {
			break
		}
		end := s.End
		if end > r.pos {
			end = r.pos
		}
		texts = append(texts, r.line[s.Start:end])
	}
	if synthetic {
		texts = append(texts, "")
	}
	return texts
}

// insideDelimited reports whether the cursor is inside a delimited literal.
// A cursor at the very end counts as inside only when the closing delimiter
// is missing.
func (r *resolver) insideDelimited(span lexer.Span, closer byte) bool {
	if r.pos <= span.Start {
		return false
	}
	if r.pos < span.End {
		return true
	}
	return r.pos == span.End && (span.End == 0 || r.line[span.End-1] != closer)
}

func (r *resolver) onlyBlanksBetween(from, to int) bool {
	if from > to {
		return false
	}
	return strings.Trim(r.line[from:to], " \t") == ""
}

func leadingWords(args []parser.Expression) []string {
	words := []string{}
	for _, arg := range args {
		w, ok := arg.(*parser.Word)
		if !ok {
			break
		}
		words = append(words, w.Value)
	}
	return words
}

func isContainer(expr parser.Expression) bool {
	switch expr.(type) {
	case *parser.BlockLit, *parser.Subexpr, *parser.ListLit, *parser.TableLit, *parser.RecordLit:
		return true
	}
	return false
}

func lookupFlag(sig *registry.Signature, token string) *registry.Flag {
	name := strings.TrimLeft(token, "-")
	long := strings.HasPrefix(token, "--")
	for i := range sig.Flags {
		f := &sig.Flags[i]
		if long && f.Long == name {
			return f
		}
		if !long && f.Short == name {
			return f
		}
	}
	return nil
}

// positionalIndex counts the bare arguments between the head and the cursor,
// skipping flags and the values of value-taking flags.
func positionalIndex(sig *registry.Signature, eff []parser.Expression, headLen, effIdx int) int {
	idx := 0
	skipNext := false
	for n := headLen; n < effIdx && n < len(eff); n++ {
		if skipNext {
			skipNext = false
			continue
		}
		if f, ok := eff[n].(*parser.Flag); ok {
			if df := lookupFlag(sig, f.Name()); df != nil && df.Shape != "" && !strings.Contains(f.Value, "=") {
				skipNext = true
			}
			continue
		}
		idx++
	}
	return idx
}

func isWrapperCommand(name string) bool {
	switch name {
	case "sudo", "doas":
		return true
	}
	return false
}

// isNumberToken reports whether text parses as an int or float literal, so
// a negative number is not mistaken for a flag.
func isNumberToken(text string) bool {
	if len(text) < 2 {
		return false
	}
	digits := 0
	for i := 1; i < len(text); i++ {
		switch {
		case text[i] >= '0' && text[i] <= '9':
			digits++
		case text[i] == '.':
		default:
			return false
		}
	}
	return digits > 0
}
