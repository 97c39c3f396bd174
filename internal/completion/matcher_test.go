package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func matchedValues(text string, opts MatchOptions, cands ...string) []string {
	m := newMatcher(text, opts)
	for _, c := range cands {
		m.AddString(c)
	}
	out := []string{}
	for _, r := range m.Results() {
		out = append(out, r.value)
	}
	return out
}

func TestPrefixMatchingIsCaseInsensitiveByDefault(t *testing.T) {
	opts := DefaultMatchOptions()
	got := matchedValues("ab", opts, "ABc", "abd", "bab", "xy")
	assert.Equal(t, []string{"ABc", "abd"}, got)
}

func TestCaseSensitiveMatching(t *testing.T) {
	opts := DefaultMatchOptions()
	opts.CaseSensitive = true
	got := matchedValues("ab", opts, "ABc", "abd")
	assert.Equal(t, []string{"abd"}, got)
}

func TestSubstringAlgorithm(t *testing.T) {
	opts := DefaultMatchOptions()
	opts.Algorithm = AlgorithmSubstring
	got := matchedValues("bc", opts, "abcd", "bcd", "xyz")
	assert.Equal(t, []string{"abcd", "bcd"}, got)
}

func TestNonPositionalPrefixBecomesSubstring(t *testing.T) {
	opts := DefaultMatchOptions()
	opts.Positional = false
	got := matchedValues("bc", opts, "abcd", "xyz")
	assert.Equal(t, []string{"abcd"}, got)

	// Other algorithms are unaffected by the positional switch.
	opts.Algorithm = AlgorithmFuzzy
	assert.Equal(t, AlgorithmFuzzy, opts.effectiveAlgorithm())
}

func TestFuzzySortsByMatchQuality(t *testing.T) {
	opts := DefaultMatchOptions()
	opts.Algorithm = AlgorithmFuzzy
	got := matchedValues("ct", opts, "count", "coat", "cat", "dog")
	assert.Equal(t, []string{"cat", "coat", "count"}, got)
}

func TestFuzzyRanksTightnessNotLength(t *testing.T) {
	// A contiguous match at the start beats a shorter candidate whose
	// matched runes are spread out.
	opts := DefaultMatchOptions()
	opts.Algorithm = AlgorithmFuzzy
	got := matchedValues("Acd", opts, "Foo Abcdef", "Abcdef", "Acd Bar")
	assert.Equal(t, []string{"Acd Bar", "Abcdef", "Foo Abcdef"}, got)
}

func TestSubsequenceScore(t *testing.T) {
	assert.Equal(t, 0, subsequenceScore("acd", "acd bar"))
	assert.Equal(t, 1, subsequenceScore("acd", "abcdef"))
	assert.Equal(t, 5, subsequenceScore("acd", "foo abcdef"))
}

func TestSortAlphabetical(t *testing.T) {
	opts := DefaultMatchOptions()
	opts.Sort = SortAlphabetical
	got := matchedValues("", opts, "pear", "apple", "mango")
	assert.Equal(t, []string{"apple", "mango", "pear"}, got)
}

func TestSortOffKeepsEmissionOrder(t *testing.T) {
	opts := DefaultMatchOptions()
	opts.Algorithm = AlgorithmFuzzy
	opts.Sort = SortOff
	got := matchedValues("ct", opts, "count", "cat")
	assert.Equal(t, []string{"count", "cat"}, got)
}

func TestEmptyTextMatchesEverything(t *testing.T) {
	got := matchedValues("", DefaultMatchOptions(), "a", "b")
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestOverridesApplyOnlySetFields(t *testing.T) {
	base := DefaultMatchOptions()
	alg := AlgorithmSubstring
	sens := true

	merged := base.Apply(MatchOverrides{Algorithm: &alg, CaseSensitive: &sens})
	assert.Equal(t, AlgorithmSubstring, merged.Algorithm)
	assert.True(t, merged.CaseSensitive)
	assert.Equal(t, base.Sort, merged.Sort)
	assert.Equal(t, base.Positional, merged.Positional)
}

func TestParseAlgorithm(t *testing.T) {
	alg, ok := ParseAlgorithm("Fuzzy")
	assert.True(t, ok)
	assert.Equal(t, AlgorithmFuzzy, alg)

	_, ok = ParseAlgorithm("nope")
	assert.False(t, ok)
}

func TestMatchOptionsFromConfig(t *testing.T) {
	cfg := configWith("substring", "alphabetical", true)
	opts := MatchOptionsFromConfig(cfg)
	assert.Equal(t, AlgorithmSubstring, opts.Algorithm)
	assert.Equal(t, SortAlphabetical, opts.Sort)
	assert.True(t, opts.CaseSensitive)

	// An unknown algorithm falls back to the default.
	cfg = configWith("bogus", "smart", false)
	opts = MatchOptionsFromConfig(cfg)
	assert.Equal(t, AlgorithmPrefix, opts.Algorithm)
}
