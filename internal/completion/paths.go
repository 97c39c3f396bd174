package completion

import (
	"path/filepath"
	"sort"
	"strings"
)

// pathMode selects what a directory walk may emit
type pathMode int

const (
	pathModeAll pathMode = iota
	pathModeDirs
	pathModeDotNu
)

// completePaths completes a filesystem path argument. The typed text is split
// on slashes; every component but the last must resolve to a directory, the
// last is matched against that directory's entries. Suggestions rebuild the
// full path, so the replacement span covers the whole token.
func (c *Completer) completePaths(ctx completionContext, base MatchOptions, mode pathMode) []Suggestion {
	text := ctx.text
	dir := c.cwd()
	prefix := ""
	switch {
	case text == "~" || strings.HasPrefix(text, "~/"):
		dir = c.home
		prefix = "~/"
		text = strings.TrimPrefix(strings.TrimPrefix(text, "~"), "/")
	case strings.HasPrefix(text, "/"):
		dir = "/"
		prefix = "/"
		text = strings.TrimPrefix(text, "/")
	}

	out := []Suggestion{}
	for _, cand := range c.walkPath(dir, prefix, strings.Split(text, "/"), base, mode) {
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

// walkPath descends the typed components and completes the final one in every
// directory reached. An intermediate component pins the walk when it names an
// entry exactly (case-folded exact counts too); otherwise each directory it
// matches becomes a branch.
func (c *Completer) walkPath(dir, prefix string, comps []string, opts MatchOptions, mode pathMode) []candidate {
	for len(comps) > 1 {
		comp := comps[0]
		comps = comps[1:]
		if comp == "" {
			continue
		}
		if isAllDots(comp) {
			// N dots climb N-1 levels; the segment stays in the rebuilt path
			// verbatim.
			for i := 1; i < len(comp); i++ {
				dir = filepath.Join(dir, "..")
			}
			prefix += comp + "/"
			continue
		}

		entries, err := c.fs.ReadDir(dir)
		if err != nil {
			return nil
		}
		var branches []string
		for _, e := range entries {
			if e.IsDir && e.Name == comp {
				branches = []string{e.Name}
				break
			}
		}
		if branches == nil {
			for _, e := range entries {
				if e.IsDir && strings.EqualFold(e.Name, comp) {
					branches = []string{e.Name}
					break
				}
			}
		}
		if branches == nil {
			m := newMatcher(comp, opts)
			for _, e := range orderEntries(entries) {
				if e.IsDir {
					m.Add(candidate{value: e.Name})
				}
			}
			for _, cand := range m.Results() {
				branches = append(branches, cand.value)
			}
		}

		switch len(branches) {
		case 0:
			return nil
		case 1:
			dir = filepath.Join(dir, branches[0])
			prefix += branches[0] + "/"
		default:
			out := []candidate{}
			for _, b := range branches {
				out = append(out, c.walkPath(filepath.Join(dir, b), prefix+b+"/", comps, opts, mode)...)
			}
			return out
		}
	}

	partial := comps[0]
	if len(partial) > 1 && isAllDots(partial) {
		// `..`, `...` etc. complete to themselves as directories.
		return []candidate{{value: prefix + partial, isDir: true}}
	}

	entries, err := c.fs.ReadDir(dir)
	if err != nil {
		return nil
	}
	m := newMatcher(partial, opts)
	for _, e := range orderEntries(entries) {
		switch mode {
		case pathModeDirs:
			if !e.IsDir {
				continue
			}
		case pathModeDotNu:
			if !e.IsDir && !strings.HasSuffix(e.Name, ".nu") {
				continue
			}
		}
		m.Add(candidate{value: e.Name, isDir: e.IsDir})
	}
	out := []candidate{}
	for _, cand := range m.Results() {
		out = append(out, candidate{value: prefix + cand.value, isDir: cand.isDir})
	}
	return out
}

// orderEntries yields visible entries alphabetically, then hidden ones.
func orderEntries(entries []DirEntry) []DirEntry {
	visible := []DirEntry{}
	hidden := []DirEntry{}
	for _, e := range entries {
		if strings.HasPrefix(e.Name, ".") {
			hidden = append(hidden, e)
		} else {
			visible = append(visible, e)
		}
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].Name < visible[j].Name })
	sort.Slice(hidden, func(i, j int) bool { return hidden[i].Name < hidden[j].Name })
	return append(visible, hidden...)
}

func isAllDots(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			return false
		}
	}
	return true
}
