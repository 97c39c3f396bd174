package completion

import (
	"go.uber.org/zap"

	"github.com/nush-sh/nush/internal/script/interpreter"
)

// completerResultKind classifies what a custom or external completer
// returned
type completerResultKind int

const (
	resultList completerResultKind = iota
	resultNull
	resultInvalid
)

// completeArgument handles positional, rest and flag-value contexts: a
// declared custom completer first, then the declared shape.
func (c *Completer) completeArgument(ctx completionContext, base MatchOptions) []Suggestion {
	if ctx.completer != "" {
		suggestions, handled := c.completeCustom(ctx, base)
		if handled {
			return suggestions
		}
		// The completer returned null: fall through to the declared shape.
	}
	return c.completeByShape(ctx, base)
}

// completeByShape routes a declared shape to the provider that understands
// it. Shapes without a completion story yield nothing.
func (c *Completer) completeByShape(ctx completionContext, base MatchOptions) []Suggestion {
	switch ctx.shape {
	case "directory":
		return c.completePaths(ctx, base, pathModeDirs)
	case "path", "file", "glob", "any", "":
		// An untyped slot is treated as a path sink.
		return c.completePaths(ctx, base, pathModeAll)
	case "module":
		return c.completeDotNu(ctx, base)
	case "command":
		return c.completeHead(ctx, base)
	default:
		return nil
	}
}

// completeCustom invokes a user-defined completer command with the
// in-progress argument spans. The second return is false only for the
// documented null result, which asks for the shape fallback.
func (c *Completer) completeCustom(ctx completionContext, base MatchOptions) ([]Suggestion, bool) {
	if c.eval == nil {
		return []Suggestion{}, true
	}
	cmd, ok := c.registry.LookupCommand(ctx.completer)
	if !ok || cmd.Body == nil {
		c.logger.Debug("custom completer not found", zap.String("completer", ctx.completer))
		return []Suggestion{}, true
	}

	result, err := c.eval.EvalBlock(cmd.Body, []interpreter.Value{spansValue(ctx.spanTexts)})
	if err != nil {
		c.logger.Debug("custom completer failed", zap.String("completer", ctx.completer), zap.Error(err))
		return []Suggestion{}, true
	}
	return c.completerSuggestions(ctx, base, result)
}

// completerSuggestions applies the shared result contract: a bare list, a
// {completions, options} record, null (shape fallback), or anything else
// (no suggestions).
func (c *Completer) completerSuggestions(ctx completionContext, base MatchOptions, result interpreter.Value) ([]Suggestion, bool) {
	items, overrides, kind := parseCompleterResult(result)
	switch kind {
	case resultNull:
		return nil, false
	case resultInvalid:
		c.logger.Debug("completer returned an unusable value", zap.Stringer("type", result.Type()))
		return []Suggestion{}, true
	}

	m := newMatcher(ctx.text, base.Apply(overrides))
	for _, item := range items {
		m.Add(item)
	}
	out := []Suggestion{}
	for _, cand := range m.Results() {
		out = append(out, Suggestion{
			Value:       cand.value,
			Description: cand.description,
			Span:        ctx.span,
			AppendSpace: true,
		})
	}
	return out, true
}

// parseCompleterResult validates a completer's return value without
// trusting its shape.
func parseCompleterResult(result interpreter.Value) ([]candidate, MatchOverrides, completerResultKind) {
	var overrides MatchOverrides
	switch v := result.(type) {
	case *interpreter.NullValue:
		return nil, overrides, resultNull
	case *interpreter.ListValue:
		return candidatesFromList(v), overrides, resultList
	case *interpreter.RecordValue:
		completions, ok := v.Get("completions")
		if !ok {
			return nil, overrides, resultInvalid
		}
		list, ok := completions.(*interpreter.ListValue)
		if !ok {
			return nil, overrides, resultInvalid
		}
		if options, hasOpts := v.Get("options"); hasOpts {
			if optsRec, isRec := options.(*interpreter.RecordValue); isRec {
				overrides = overridesFromRecord(optsRec)
			}
		}
		return candidatesFromList(list), overrides, resultList
	}
	return nil, overrides, resultInvalid
}

func candidatesFromList(list *interpreter.ListValue) []candidate {
	out := make([]candidate, 0, len(list.Items))
	for _, item := range list.Items {
		switch v := item.(type) {
		case *interpreter.RecordValue:
			// Records may carry {value, description} pairs.
			value, ok := v.Get("value")
			if !ok {
				continue
			}
			cand := candidate{value: value.String()}
			if desc, hasDesc := v.Get("description"); hasDesc {
				cand.description = desc.String()
			}
			out = append(out, cand)
		default:
			out = append(out, candidate{value: item.String()})
		}
	}
	return out
}

// overridesFromRecord picks up the option fields a completer explicitly
// set; everything else inherits the global configuration.
func overridesFromRecord(rec *interpreter.RecordValue) MatchOverrides {
	var ov MatchOverrides
	if v, ok := rec.Get("completion_algorithm"); ok {
		if alg, valid := ParseAlgorithm(v.String()); valid {
			ov.Algorithm = &alg
		}
	}
	if v, ok := rec.Get("case_sensitive"); ok {
		if b, isBool := v.(*interpreter.BoolValue); isBool {
			ov.CaseSensitive = &b.Value
		}
	}
	if v, ok := rec.Get("positional"); ok {
		if b, isBool := v.(*interpreter.BoolValue); isBool {
			ov.Positional = &b.Value
		}
	}
	if v, ok := rec.Get("sort"); ok {
		if b, isBool := v.(*interpreter.BoolValue); isBool {
			mode := SortOff
			if b.Value {
				mode = SortAlphabetical
			}
			ov.Sort = &mode
		}
	}
	return ov
}

func spansValue(spans []string) interpreter.Value {
	items := make([]interpreter.Value, 0, len(spans))
	for _, s := range spans {
		items = append(items, &interpreter.StringValue{Value: s})
	}
	return &interpreter.ListValue{Items: items}
}
