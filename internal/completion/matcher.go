package completion

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/nush-sh/nush/internal/config"
)

// Algorithm selects how matching-text is compared against candidates
type Algorithm int

const (
	// AlgorithmPrefix includes a candidate iff it starts with the matching-text
	AlgorithmPrefix Algorithm = iota
	// AlgorithmFuzzy includes a candidate iff the matching-text occurs as an
	// ordered subsequence
	AlgorithmFuzzy
	// AlgorithmSubstring includes a candidate iff the matching-text occurs
	// anywhere in it
	AlgorithmSubstring
)

// ParseAlgorithm maps a config string to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, bool) {
	switch strings.ToLower(s) {
	case "prefix":
		return AlgorithmPrefix, true
	case "fuzzy":
		return AlgorithmFuzzy, true
	case "substring":
		return AlgorithmSubstring, true
	}
	return AlgorithmPrefix, false
}

// SortMode selects the ordering of matched candidates
type SortMode int

const (
	// SortSmart orders fuzzy matches by quality and keeps emission order
	// otherwise
	SortSmart SortMode = iota
	// SortAlphabetical orders lexically regardless of algorithm
	SortAlphabetical
	// SortOff preserves provider emission order
	SortOff
)

// MatchOptions is the resolved matching configuration for one provider run
type MatchOptions struct {
	Algorithm     Algorithm
	CaseSensitive bool
	Sort          SortMode
	// Positional false turns prefix matching into substring matching.
	Positional bool
}

// DefaultMatchOptions returns the engine defaults: case-insensitive prefix
// matching with smart sort.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{Positional: true}
}

// MatchOptionsFromConfig resolves the global configuration into MatchOptions.
func MatchOptionsFromConfig(cfg *config.Config) MatchOptions {
	opts := DefaultMatchOptions()
	if cfg == nil {
		return opts
	}
	if alg, ok := ParseAlgorithm(cfg.Completions.Algorithm); ok {
		opts.Algorithm = alg
	}
	opts.CaseSensitive = cfg.Completions.CaseSensitive
	switch strings.ToLower(cfg.Completions.Sort) {
	case "alphabetical":
		opts.Sort = SortAlphabetical
	case "none", "off", "false":
		opts.Sort = SortOff
	default:
		opts.Sort = SortSmart
	}
	return opts
}

// MatchOverrides is the per-provider half of the configuration overlay. Only
// fields a completer explicitly sets are applied; the rest inherit the
// global options.
type MatchOverrides struct {
	Algorithm     *Algorithm
	CaseSensitive *bool
	Sort          *SortMode
	Positional    *bool
}

// Apply overlays o with the fields set in ov.
func (o MatchOptions) Apply(ov MatchOverrides) MatchOptions {
	if ov.Algorithm != nil {
		o.Algorithm = *ov.Algorithm
	}
	if ov.CaseSensitive != nil {
		o.CaseSensitive = *ov.CaseSensitive
	}
	if ov.Sort != nil {
		o.Sort = *ov.Sort
	}
	if ov.Positional != nil {
		o.Positional = *ov.Positional
	}
	return o
}

// effectiveAlgorithm folds the positional switch into the algorithm choice:
// non-positional prefix matching means substring matching.
func (o MatchOptions) effectiveAlgorithm() Algorithm {
	if !o.Positional && o.Algorithm == AlgorithmPrefix {
		return AlgorithmSubstring
	}
	return o.Algorithm
}

// candidate is a raw provider result, pre-formatting
type candidate struct {
	value       string
	description string
	isDir       bool
	noSpace     bool
}

type scoredCandidate struct {
	candidate
	rank  int
	order int
}

// matcher filters streamed candidates against the matching-text and ranks
// the survivors. Providers Add in emission order; Results applies the
// configured sort with emission order as the stability baseline.
type matcher struct {
	text  string
	opts  MatchOptions
	items []scoredCandidate
}

func newMatcher(text string, opts MatchOptions) *matcher {
	return &matcher{text: text, opts: opts}
}

// Matches reports whether s passes the inclusion test, without recording it.
func (m *matcher) Matches(s string) bool {
	_, ok := m.score(s)
	return ok
}

func (m *matcher) score(s string) (int, bool) {
	text := m.text
	if text == "" {
		return 0, true
	}
	cand := s
	if !m.opts.CaseSensitive {
		text = strings.ToLower(text)
		cand = strings.ToLower(cand)
	}
	switch m.opts.effectiveAlgorithm() {
	case AlgorithmPrefix:
		return 0, strings.HasPrefix(cand, text)
	case AlgorithmSubstring:
		return 0, strings.Contains(cand, text)
	case AlgorithmFuzzy:
		if !fuzzy.Match(text, cand) {
			return 0, false
		}
		return subsequenceScore(text, cand), true
	}
	return 0, false
}

// subsequenceScore ranks how tightly text occurs in cand as an ordered
// subsequence: the offset of the first matched rune plus the total gap
// between consecutive matches. Contiguous matches near the start score
// lowest, so "acd" prefers "acd bar" over "abcdef" over "foo abcdef".
func subsequenceScore(text, cand string) int {
	runes := []rune(cand)
	score, prev, i := 0, -1, 0
	for _, r := range text {
		for i < len(runes) && runes[i] != r {
			i++
		}
		if i == len(runes) {
			break
		}
		if prev < 0 {
			score += i
		} else {
			score += i - prev - 1
		}
		prev = i
		i++
	}
	return score
}

// Add records cand if it passes the inclusion test and reports whether it
// did.
func (m *matcher) Add(cand candidate) bool {
	rank, ok := m.score(cand.value)
	if !ok {
		return false
	}
	m.items = append(m.items, scoredCandidate{
		candidate: cand,
		rank:      rank,
		order:     len(m.items),
	})
	return true
}

// AddString records a plain string candidate.
func (m *matcher) AddString(value string) bool {
	return m.Add(candidate{value: value})
}

// Results returns the included candidates in their final order.
func (m *matcher) Results() []candidate {
	items := m.items
	switch m.opts.Sort {
	case SortAlphabetical:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].value < items[j].value
		})
	case SortSmart:
		if m.opts.effectiveAlgorithm() == AlgorithmFuzzy {
			sort.SliceStable(items, func(i, j int) bool {
				return items[i].rank < items[j].rank
			})
		}
	}
	out := make([]candidate, 0, len(items))
	for _, item := range items {
		out = append(out, item.candidate)
	}
	return out
}
