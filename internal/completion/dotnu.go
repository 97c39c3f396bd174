package completion

import (
	"sort"
	"strings"
)

// completeDotNu completes module references for `use`, `source` and friends:
// directories and .nu files. A bare name searches the working directory plus
// the configured library directories; any path prefix switches to an ordinary
// walk of that location.
func (c *Completer) completeDotNu(ctx completionContext, base MatchOptions) []Suggestion {
	text := ctx.text
	if strings.Contains(text, "/") || strings.HasPrefix(text, "~") || strings.HasPrefix(text, ".") {
		return c.completePaths(ctx, base, pathModeDotNu)
	}

	// First root wins on a name collision, so the working directory shadows
	// the library dirs. The merged set is sorted by name.
	seen := make(map[string]bool)
	merged := []candidate{}
	roots := append([]string{c.cwd()}, c.cfg.LibraryDirs()...)
	for _, root := range roots {
		entries, err := c.fs.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir && !strings.HasSuffix(e.Name, ".nu") {
				continue
			}
			if seen[e.Name] {
				continue
			}
			seen[e.Name] = true
			merged = append(merged, candidate{value: e.Name, isDir: e.IsDir})
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].value < merged[j].value })

	m := newMatcher(text, base)
	for _, cand := range merged {
		m.Add(cand)
	}

	out := []Suggestion{}
	for _, cand := range m.Results() {
		raw := cand.value
		if cand.isDir {
			raw += "/"
		}
		out = append(out, Suggestion{
			Value:       quoteValue(raw, ctx.quote),
			Span:        ctx.span,
			AppendSpace: !cand.isDir,
		})
	}
	return out
}
