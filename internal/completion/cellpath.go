package completion

import (
	"sort"
	"strings"

	"github.com/nush-sh/nush/internal/script/interpreter"
)

// completeVariablePath completes $-variable names and cell paths into their
// current values: `$ac` offers the variables in scope, `$actor.n` offers the
// fields of whatever $actor holds at the cursor's depth.
func (c *Completer) completeVariablePath(ctx completionContext, base MatchOptions) []Suggestion {
	text := ctx.text
	if ctx.constHead == nil && !strings.Contains(text, ".") {
		return c.completeVariableNames(ctx, base)
	}
	if c.eval == nil {
		return []Suggestion{}
	}

	var root interpreter.Value
	pathPart := text
	if ctx.constHead != nil {
		v, err := c.eval.EvalConstExpr(ctx.constHead)
		if err != nil {
			return []Suggestion{}
		}
		root = v
		pathPart = strings.TrimPrefix(pathPart, ".")
	} else {
		dot := strings.IndexByte(text, '.')
		name := strings.TrimPrefix(text[:dot], "$")
		v, ok := c.eval.Variable(name)
		if !ok {
			return []Suggestion{}
		}
		root = v
		pathPart = text[dot+1:]
	}

	segs := strings.Split(pathPart, ".")
	partial := segs[len(segs)-1]
	value, ok := interpreter.CellPathGet(root, segs[:len(segs)-1])
	if !ok {
		return []Suggestion{}
	}

	// The replacement span narrows to the segment being typed; the path up to
	// the last dot stays on the line untouched.
	segStart := ctx.span.Start + len(text) - len(partial)
	segSpan := ctx.span
	segSpan.Start = segStart

	m := newMatcher(partial, base)
	for _, field := range fieldsAt(value) {
		m.AddString(field)
	}
	out := []Suggestion{}
	for _, cand := range m.Results() {
		out = append(out, Suggestion{
			Value: quoteValue(cand.value, 0),
			Span:  segSpan,
		})
	}
	return out
}

// completeVariableNames offers the variables in scope, the sigil included in
// each suggestion so the whole token is replaceable.
func (c *Completer) completeVariableNames(ctx completionContext, base MatchOptions) []Suggestion {
	if c.eval == nil {
		return []Suggestion{}
	}
	name := strings.TrimPrefix(ctx.text, "$")
	m := newMatcher(name, base)
	for _, n := range c.eval.VariableNames() {
		m.AddString(n)
	}
	out := []Suggestion{}
	for _, cand := range m.Results() {
		out = append(out, Suggestion{
			Value: "$" + cand.value,
			Span:  ctx.span,
		})
	}
	return out
}

// fieldsAt lists the completable fields of a value: record keys sorted,
// table columns in declaration order, and for a list the union of its
// records' fields in first-seen order.
func fieldsAt(value interpreter.Value) []string {
	switch v := value.(type) {
	case *interpreter.RecordValue:
		keys := append([]string(nil), v.Keys...)
		sort.Strings(keys)
		return keys
	case *interpreter.TableValue:
		return v.Columns
	case *interpreter.ListValue:
		seen := make(map[string]bool)
		fields := []string{}
		for _, item := range v.Items {
			rec, ok := item.(*interpreter.RecordValue)
			if !ok {
				continue
			}
			for _, k := range rec.Keys {
				if !seen[k] {
					seen[k] = true
					fields = append(fields, k)
				}
			}
		}
		return fields
	}
	return nil
}
