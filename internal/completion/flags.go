package completion

import "sort"

// completeFlags lists the resolved command's declared flags: long forms
// first, then short forms, each group byte-ordered. Flags already typed on
// the line are not suppressed; the full declared set always shows.
func (c *Completer) completeFlags(ctx completionContext, base MatchOptions) []Suggestion {
	sig := &ctx.cmd.Sig

	type flagCand struct {
		value string
		desc  string
	}
	longs := []flagCand{}
	shorts := []flagCand{}
	for _, f := range sig.Flags {
		if f.Long != "" {
			longs = append(longs, flagCand{"--" + f.Long, f.Description})
		}
		if f.Short != "" {
			shorts = append(shorts, flagCand{"-" + f.Short, f.Description})
		}
	}
	sort.Slice(longs, func(i, j int) bool { return longs[i].value < longs[j].value })
	sort.Slice(shorts, func(i, j int) bool { return shorts[i].value < shorts[j].value })

	m := newMatcher(ctx.text, base)
	for _, f := range append(longs, shorts...) {
		m.Add(candidate{value: f.value, description: f.desc})
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
	return out
}
