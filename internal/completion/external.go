package completion

import (
	"go.uber.org/zap"

	"github.com/nush-sh/nush/internal/script/interpreter"
)

// completeExternalArgs completes arguments of commands the registry does not
// know. The configured external completer closure receives the typed spans;
// when it is absent or answers null, paths take over. A failing or
// misbehaving completer yields nothing rather than masking the error with
// paths.
func (c *Completer) completeExternalArgs(ctx completionContext, base MatchOptions) []Suggestion {
	closure, configured := c.externalCompleter()
	if !configured {
		return c.completePaths(ctx, base, pathModeAll)
	}

	result, err := c.eval.EvalClosure(closure, []interpreter.Value{spansValue(ctx.spanTexts)})
	if err != nil {
		c.logger.Debug("external completer failed", zap.Error(err))
		return []Suggestion{}
	}

	suggestions, handled := c.completerSuggestions(ctx, base, result)
	if !handled {
		// Null delegates back to path completion.
		return c.completePaths(ctx, base, pathModeAll)
	}
	return capSuggestions(suggestions, c.cfg.Completions.External.MaxResults)
}

// externalCompleterMerge appends the external completer's candidates at the
// command-head position. Only a clean list result merges; null, errors and
// invalid shapes contribute nothing here.
func (c *Completer) externalCompleterMerge(ctx completionContext, base MatchOptions) []Suggestion {
	closure, configured := c.externalCompleter()
	if !configured {
		return nil
	}

	spans := ctx.spanTexts
	if len(spans) == 0 {
		spans = []string{ctx.text}
	}
	result, err := c.eval.EvalClosure(closure, []interpreter.Value{spansValue(spans)})
	if err != nil {
		c.logger.Debug("external completer failed", zap.Error(err))
		return nil
	}

	items, overrides, kind := parseCompleterResult(result)
	if kind != resultList {
		return nil
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
	return capSuggestions(out, c.cfg.Completions.External.MaxResults)
}

func (c *Completer) externalCompleter() (interpreter.Value, bool) {
	ext := c.cfg.Completions.External
	if !ext.Enable || c.eval == nil {
		return nil, false
	}
	closure, ok := ext.Completer.(interpreter.Value)
	if !ok || closure == nil {
		return nil, false
	}
	return closure, true
}

func capSuggestions(in []Suggestion, max int) []Suggestion {
	if max > 0 && len(in) > max {
		return in[:max]
	}
	return in
}
