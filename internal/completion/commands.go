package completion

import "strings"

// attributableKeywords is the fixed set of definition-introducing keywords
// eligible to follow an attribute.
var attributableKeywords = []string{"def", "export def", "export extern", "extern"}

// completeHead completes the command-head position: internal command and
// alias names merged with executables on the search path. An external whose
// name collides with an internal one is offered behind the ^ sigil; a head
// already behind the sigil completes externals only.
func (c *Completer) completeHead(ctx completionContext, base MatchOptions) []Suggestion {
	out := []Suggestion{}
	internal := make(map[string]bool)

	if !ctx.externalOnly {
		m := newMatcher(ctx.text, base)
		for _, name := range c.registry.CommandNamesWithPrefix(c.trieHint(ctx.text, base)) {
			desc := ""
			if cmd, ok := c.registry.LookupCommand(name); ok {
				desc = cmd.Description
			}
			if m.Add(candidate{value: name, description: desc}) {
				internal[name] = true
			}
		}
		for _, cand := range m.Results() {
			out = append(out, Suggestion{
				Value:       cand.value,
				Description: cand.description,
				Span:        ctx.span,
				AppendSpace: true,
			})
		}
	} else {
		for name := range listNames(c.registry.CommandNamesWithPrefix("")) {
			internal[name] = true
		}
	}

	em := newMatcher(ctx.text, base)
	for _, name := range c.path.FindExecutablesWithPrefix(c.prefixHint(ctx.text, base)) {
		em.Add(candidate{value: name})
	}
	for _, cand := range em.Results() {
		value := cand.value
		if !ctx.externalOnly && internal[value] {
			// Disambiguate from the internal command of the same name.
			value = "^" + value
		}
		out = append(out, Suggestion{
			Value:       value,
			Span:        ctx.span,
			AppendSpace: true,
		})
	}

	if !ctx.externalOnly {
		out = append(out, c.externalCompleterMerge(ctx, base)...)
	}
	return out
}

// completeSubcommands matches the user's typed word sequence against the
// registered multi-word command names, the full declared name being the
// candidate string.
func (c *Completer) completeSubcommands(ctx completionContext, base MatchOptions) []Suggestion {
	m := newMatcher(ctx.text, base)
	for _, name := range c.registry.CommandNamesWithPrefix("") {
		if !strings.Contains(name, " ") {
			continue
		}
		desc := ""
		if cmd, ok := c.registry.LookupCommand(name); ok {
			desc = cmd.Description
		}
		m.Add(candidate{value: name, description: desc})
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

// completeAttributableKeywords offers the definition keywords that may
// follow an attribute.
func (c *Completer) completeAttributableKeywords(ctx completionContext, base MatchOptions) []Suggestion {
	m := newMatcher(ctx.text, base)
	for _, kw := range attributableKeywords {
		m.AddString(kw)
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

// trieHint narrows the registry's prefix-trie visit when the matching
// configuration lines up with a byte-wise prefix walk.
func (c *Completer) trieHint(text string, opts MatchOptions) string {
	if opts.effectiveAlgorithm() == AlgorithmPrefix && opts.CaseSensitive {
		return text
	}
	return ""
}

// prefixHint narrows the PATH scan the same way.
func (c *Completer) prefixHint(text string, opts MatchOptions) string {
	if opts.effectiveAlgorithm() == AlgorithmPrefix && opts.CaseSensitive {
		return text
	}
	return ""
}

func listNames(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
