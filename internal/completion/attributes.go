package completion

// completeAttributes offers the attribute names usable after the @ sigil.
// Builtins seed the set; user-defined attr commands extend it through the
// registry.
func (c *Completer) completeAttributes(ctx completionContext, base MatchOptions) []Suggestion {
	m := newMatcher(ctx.text, base)
	for _, name := range c.registry.AttributeNames() {
		m.AddString(name)
	}
	out := []Suggestion{}
	for _, cand := range m.Results() {
		out = append(out, Suggestion{
			Value:       cand.value,
			Span:        ctx.span,
			AppendSpace: true,
		})
	}
	return out
}
