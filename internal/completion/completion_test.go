package completion

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nush-sh/nush/internal/config"
	"github.com/nush-sh/nush/internal/registry"
	"github.com/nush-sh/nush/internal/script/interpreter"
	"github.com/nush-sh/nush/internal/script/lexer"
)

// fakeFS maps absolute directory paths to their entries.
type fakeFS map[string][]DirEntry

func (f fakeFS) ReadDir(path string) ([]DirEntry, error) {
	entries, ok := f[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return entries, nil
}

// fakePath is a fixed executable table.
type fakePath []string

func (f fakePath) FindExecutablesWithPrefix(prefix string) []string {
	out := []string{}
	for _, name := range f {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

type fixture struct {
	cfg    *config.Config
	reg    *registry.Registry
	interp *interpreter.Interpreter
	comp   *Completer
}

// newFixture builds a completer over a fresh session. setup is evaluated
// before completion runs, the way REPL input would be.
func newFixture(t *testing.T, setup string, fs fakeFS, execs fakePath) *fixture {
	t.Helper()

	cfg := config.Default()
	reg := registry.New()
	interp := interpreter.New(interpreter.Options{
		Registry: reg,
		Config:   cfg,
	})
	if setup != "" {
		_, err := interp.EvalSource(setup)
		require.NoError(t, err)
	}

	comp := New(Options{
		Registry:   reg,
		Evaluator:  interp,
		FileSystem: fs,
		PathFinder: execs,
		Config:     cfg,
	})
	comp.cwd = func() string { return "/work" }
	comp.home = "/home/user"

	return &fixture{cfg: cfg, reg: reg, interp: interp, comp: comp}
}

func (f *fixture) completeAtEnd(line string) []Suggestion {
	return f.comp.Complete(line, len(line))
}

func values(sugs []Suggestion) []string {
	out := make([]string, 0, len(sugs))
	for _, s := range sugs {
		out = append(out, s.Value)
	}
	return out
}

func TestFlagCompletion(t *testing.T) {
	f := newFixture(t, `def tst [--mod(-s)] { ls }`, nil, nil)

	sugs := f.completeAtEnd("tst --")
	assert.Equal(t, []string{"--help", "--mod"}, values(sugs))
	for _, s := range sugs {
		assert.Equal(t, lexer.Span{Start: 4, End: 6}, s.Span)
		assert.True(t, s.AppendSpace)
	}

	sugs = f.completeAtEnd("tst -")
	assert.Equal(t, []string{"--help", "--mod", "-h", "-s"}, values(sugs))
}

func TestFlagsNeverSuppressed(t *testing.T) {
	f := newFixture(t, `def tst [--mod(-s)] { ls }`, nil, nil)

	// --mod is already typed earlier on the line; it still shows.
	sugs := f.completeAtEnd("tst --mod --")
	assert.Equal(t, []string{"--help", "--mod"}, values(sugs))
}

func TestFlagValueCustomCompleter(t *testing.T) {
	setup := `def colors [] { [red green blue] }
def pick [--color: string@colors] { ls }`
	f := newFixture(t, setup, nil, nil)

	sugs := f.completeAtEnd("pick --color ")
	assert.Equal(t, []string{"red", "green", "blue"}, values(sugs))

	// The = form narrows the span to the value half of the token.
	line := "pick --color=g"
	sugs = f.comp.Complete(line, len(line))
	require.Len(t, sugs, 1)
	assert.Equal(t, "green", sugs[0].Value)
	assert.Equal(t, lexer.Span{Start: 13, End: 14}, sugs[0].Span)
}

func TestCustomCompleterList(t *testing.T) {
	setup := `def animals [] { [cat dog eel] }
def my-command [animal: string@animals] { ls }`
	f := newFixture(t, setup, nil, nil)

	sugs := f.completeAtEnd("my-command ")
	assert.Equal(t, []string{"cat", "dog", "eel"}, values(sugs))
	assert.Equal(t, lexer.Span{Start: 11, End: 11}, sugs[0].Span)

	sugs = f.completeAtEnd("my-command c")
	assert.Equal(t, []string{"cat"}, values(sugs))
	assert.Equal(t, lexer.Span{Start: 11, End: 12}, sugs[0].Span)
}

func TestCustomCompleterReceivesSpans(t *testing.T) {
	setup := `def from-spans [spans: list] { $spans }
def my-command [...args: string@from-spans] { ls }`
	f := newFixture(t, setup, nil, nil)

	// The completer echoes its spans argument back as candidates: the typed
	// tokens of the call, cursor-truncated, with a trailing "" for the token
	// being started.
	sugs := f.completeAtEnd("my-command one ")
	assert.Equal(t, []string{"my-command", "one", ""}, values(sugs))
}

func TestCustomCompleterRecordWithOptions(t *testing.T) {
	setup := `def fruits [] { { completions: [Abcdef "Foo Abcdef" Bar], options: { completion_algorithm: substring, case_sensitive: true, sort: true } } }
def my-command [fruit: string@fruits] { ls }`
	f := newFixture(t, setup, nil, nil)

	sugs := f.completeAtEnd("my-command A")
	assert.Equal(t, []string{"Abcdef", "Foo Abcdef"}, values(sugs))
}

func TestCustomCompleterNullFallsBackToShape(t *testing.T) {
	setup := `def undecided [] { null }
def my-command [file: path@undecided] { ls }`
	fs := fakeFS{
		"/work": {{Name: "a.txt"}, {Name: "sub", IsDir: true}},
	}
	f := newFixture(t, setup, fs, nil)

	sugs := f.completeAtEnd("my-command ")
	assert.Equal(t, []string{"a.txt", "sub/"}, values(sugs))
}

func TestCustomCompleterInvalidResultYieldsNothing(t *testing.T) {
	setup := `def broken [] { 42 }
def my-command [arg: string@broken] { ls }`
	fs := fakeFS{
		"/work": {{Name: "a.txt"}},
	}
	f := newFixture(t, setup, fs, nil)

	assert.Empty(t, f.completeAtEnd("my-command "))
}

func TestSubcommandCompletion(t *testing.T) {
	f := newFixture(t, "", nil, nil)

	sugs := f.completeAtEnd("overlay u")
	require.Len(t, sugs, 1)
	assert.Equal(t, "overlay use", sugs[0].Value)
	assert.Equal(t, lexer.Span{Start: 0, End: 9}, sugs[0].Span)
}

func TestSubcommandUnionWithUnknownHead(t *testing.T) {
	setup := `export def "str abc" [] { ls }
export def "str xyz" [] { ls }`
	f := newFixture(t, setup, nil, nil)

	sugs := f.completeAtEnd("str a")
	assert.Equal(t, []string{"str abc"}, values(sugs))
	assert.Equal(t, lexer.Span{Start: 0, End: 5}, sugs[0].Span)
}

func TestCommandHeadCompletion(t *testing.T) {
	f := newFixture(t, "", nil, fakePath{"git", "grep"})

	sugs := f.completeAtEnd("ov")
	assert.Equal(t,
		[]string{"overlay", "overlay hide", "overlay list", "overlay new", "overlay use"},
		values(sugs))

	sugs = f.completeAtEnd("g")
	assert.Equal(t, []string{"get", "git", "grep"}, values(sugs))
}

func TestCommandHeadCollisionGetsSigil(t *testing.T) {
	f := newFixture(t, "", nil, fakePath{"ls"})

	sugs := f.completeAtEnd("ls")
	vals := values(sugs)
	assert.Contains(t, vals, "ls")
	assert.Contains(t, vals, "^ls")
}

func TestExternalSigilCompletesExternalsOnly(t *testing.T) {
	f := newFixture(t, "", nil, fakePath{"ls", "lsof"})

	sugs := f.completeAtEnd("^ls")
	assert.Equal(t, []string{"ls", "lsof"}, values(sugs))
	assert.Equal(t, lexer.Span{Start: 1, End: 3}, sugs[0].Span)
}

func TestAliasExpansion(t *testing.T) {
	fs := fakeFS{
		"/work": {{Name: "data.txt"}, {Name: "docs", IsDir: true}, {Name: "readme"}},
	}
	f := newFixture(t, `alias ll = ls`, fs, nil)

	sugs := f.completeAtEnd("ll d")
	assert.Equal(t, []string{"data.txt", "docs/"}, values(sugs))
	assert.Equal(t, lexer.Span{Start: 3, End: 4}, sugs[0].Span)
}

func TestAliasChainExpansion(t *testing.T) {
	fs := fakeFS{
		"/work": {{Name: "data.txt"}},
	}
	setup := `alias ll = ls -l
alias lf = ll -a`
	f := newFixture(t, setup, fs, nil)

	sugs := f.completeAtEnd("lf d")
	assert.Equal(t, []string{"data.txt"}, values(sugs))
}

func TestWrapperCommandCompletesWrapped(t *testing.T) {
	f := newFixture(t, `def tst [--mod(-s)] { ls }`, nil, nil)

	sugs := f.completeAtEnd("sudo tst --")
	assert.Equal(t, []string{"--help", "--mod"}, values(sugs))
}

func TestPathCompletion(t *testing.T) {
	fs := fakeFS{
		"/":          {{Name: "etc", IsDir: true}, {Name: "work", IsDir: true}},
		"/etc":       {{Name: "hosts"}},
		"/work":      {{Name: "data.txt"}, {Name: "docs", IsDir: true}, {Name: "my file.txt"}, {Name: ".hidden"}},
		"/work/docs": {{Name: "notes.md"}},
		"/home/user": {{Name: "me.txt"}},
	}
	f := newFixture(t, "", fs, nil)

	t.Run("relative", func(t *testing.T) {
		sugs := f.completeAtEnd("open d")
		assert.Equal(t, []string{"data.txt", "docs/"}, values(sugs))
		assert.True(t, sugs[0].AppendSpace)
		assert.False(t, sugs[1].AppendSpace)
	})

	t.Run("into subdirectory", func(t *testing.T) {
		sugs := f.completeAtEnd("open docs/")
		assert.Equal(t, []string{"docs/notes.md"}, values(sugs))
	})

	t.Run("case-insensitive intermediate", func(t *testing.T) {
		sugs := f.completeAtEnd("open DOCS/n")
		assert.Equal(t, []string{"docs/notes.md"}, values(sugs))
	})

	t.Run("hidden after dot", func(t *testing.T) {
		sugs := f.completeAtEnd("open .")
		assert.Equal(t, []string{".hidden"}, values(sugs))
	})

	t.Run("metacharacters force quoting", func(t *testing.T) {
		sugs := f.completeAtEnd("open my")
		assert.Equal(t, []string{"`my file.txt`"}, values(sugs))
	})

	t.Run("absolute", func(t *testing.T) {
		sugs := f.completeAtEnd("open /etc/ho")
		assert.Equal(t, []string{"/etc/hosts"}, values(sugs))
	})

	t.Run("tilde", func(t *testing.T) {
		sugs := f.completeAtEnd("open ~/")
		assert.Equal(t, []string{"~/me.txt"}, values(sugs))
	})

	t.Run("parent hop", func(t *testing.T) {
		sugs := f.completeAtEnd("open ../et")
		assert.Equal(t, []string{"../etc/"}, values(sugs))
	})

	t.Run("dots segment completes itself", func(t *testing.T) {
		sugs := f.completeAtEnd("cd ...")
		assert.Equal(t, []string{".../"}, values(sugs))
		assert.False(t, sugs[0].AppendSpace)
	})

	t.Run("directory shape filters files", func(t *testing.T) {
		sugs := f.completeAtEnd("cd d")
		assert.Equal(t, []string{"docs/"}, values(sugs))
	})
}

func TestQuotedPathToken(t *testing.T) {
	fs := fakeFS{
		"/work": {{Name: "my file.txt"}},
	}
	f := newFixture(t, "", fs, nil)

	line := `open "my`
	sugs := f.comp.Complete(line, len(line))
	require.Len(t, sugs, 1)
	assert.Equal(t, `"my file.txt"`, sugs[0].Value)
	assert.Equal(t, lexer.Span{Start: 5, End: 8}, sugs[0].Span)
}

func TestDotNuCompletion(t *testing.T) {
	t.Setenv("NU_LIB_DIRS", "")
	fs := fakeFS{
		"/work":      {{Name: "lib", IsDir: true}, {Name: "main.go"}, {Name: "mod.nu"}},
		"/opt/nulib": {{Name: "helper.nu"}},
	}
	f := newFixture(t, "", fs, nil)
	f.cfg.LibDirs = []string{"/opt/nulib"}

	// The merged candidate set is sorted by name across roots.
	sugs := f.completeAtEnd("use ")
	assert.Equal(t, []string{"helper.nu", "lib/", "mod.nu"}, values(sugs))

	sugs = f.completeAtEnd("use mod")
	assert.Equal(t, []string{"mod.nu"}, values(sugs))

	// An explicit path prefix searches only that location.
	sugs = f.completeAtEnd("use ./m")
	assert.Equal(t, []string{"./mod.nu"}, values(sugs))
}

func TestConstLibDirsFeedModuleCompletion(t *testing.T) {
	t.Setenv("NU_LIB_DIRS", "")
	fs := fakeFS{
		"/work":    {{Name: "main.go"}},
		"/modules": {{Name: "extra.nu"}},
	}
	f := newFixture(t, `const NU_LIB_DIRS = ["/modules"]`, fs, nil)

	sugs := f.completeAtEnd("use ")
	assert.Equal(t, []string{"extra.nu"}, values(sugs))
}

func TestVariableNameCompletion(t *testing.T) {
	f := newFixture(t, `let actor = { name: 'Tom Hardy', age: 44 }`, nil, nil)

	sugs := f.completeAtEnd("$ac")
	assert.Equal(t, []string{"$actor"}, values(sugs))
	assert.Equal(t, lexer.Span{Start: 0, End: 3}, sugs[0].Span)

	sugs = f.completeAtEnd("echo $")
	vals := values(sugs)
	assert.Contains(t, vals, "$actor")
	assert.Contains(t, vals, "$env")
	assert.Contains(t, vals, "$nu")
}

func TestCellPathCompletion(t *testing.T) {
	f := newFixture(t, `let actor = { name: 'Tom Hardy', age: 44 }`, nil, nil)

	sugs := f.completeAtEnd("echo $actor.")
	assert.Equal(t, []string{"age", "name"}, values(sugs))

	line := "echo $actor.n"
	sugs = f.comp.Complete(line, len(line))
	require.Len(t, sugs, 1)
	assert.Equal(t, "name", sugs[0].Value)
	// Only the segment being typed is replaced.
	assert.Equal(t, lexer.Span{Start: 12, End: 13}, sugs[0].Span)
}

func TestCellPathThroughTable(t *testing.T) {
	f := newFixture(t, `let crew = [[name age]; [Peter 42] [Vlad 43]]`, nil, nil)

	sugs := f.completeAtEnd("echo $crew.")
	assert.Equal(t, []string{"name", "age"}, values(sugs))

	// A row projected out of the table is a record; record keys sort.
	sugs = f.completeAtEnd("echo $crew.0.")
	assert.Equal(t, []string{"age", "name"}, values(sugs))
}

func TestCellPathOnRecordLiteral(t *testing.T) {
	f := newFixture(t, "", nil, nil)

	sugs := f.completeAtEnd("{a: 1, b: 2}.")
	assert.Equal(t, []string{"a", "b"}, values(sugs))
}

func TestCellPathFieldQuoting(t *testing.T) {
	f := newFixture(t, `let rec = { "weird key": 1 }`, nil, nil)

	sugs := f.completeAtEnd("echo $rec.")
	assert.Equal(t, []string{"`weird key`"}, values(sugs))
}

func TestEnvAndNuVariables(t *testing.T) {
	f := newFixture(t, "", nil, nil)

	sugs := f.completeAtEnd("echo $env.conf")
	assert.Contains(t, values(sugs), "config")

	sugs = f.completeAtEnd("echo $nu.home")
	assert.Equal(t, []string{"home-path"}, values(sugs))
}

func TestExternalCompleter(t *testing.T) {
	setup := `$env.config.completions.external.completer = {|spans| [one two three]}
$env.config.completions.external.enable = true`
	f := newFixture(t, setup, nil, nil)

	sugs := f.completeAtEnd("unknowncmd t")
	assert.Equal(t, []string{"two", "three"}, values(sugs))
}

func TestExternalCompleterNullFallsBackToPaths(t *testing.T) {
	setup := `$env.config.completions.external.completer = {|spans| null}
$env.config.completions.external.enable = true`
	fs := fakeFS{
		"/work": {{Name: "a.txt"}},
	}
	f := newFixture(t, setup, fs, nil)

	sugs := f.completeAtEnd("unknowncmd ")
	assert.Equal(t, []string{"a.txt"}, values(sugs))
}

func TestExternalCompleterUnconfiguredFallsBackToPaths(t *testing.T) {
	fs := fakeFS{
		"/work": {{Name: "a.txt"}},
	}
	f := newFixture(t, "", fs, nil)

	sugs := f.completeAtEnd("unknowncmd ")
	assert.Equal(t, []string{"a.txt"}, values(sugs))
}

func TestExternalCompleterMaxResults(t *testing.T) {
	setup := `$env.config.completions.external.completer = {|spans| [a b c d e]}
$env.config.completions.external.enable = true
$env.config.completions.external.max_results = 2`
	f := newFixture(t, setup, nil, nil)

	sugs := f.completeAtEnd("unknowncmd ")
	assert.Equal(t, []string{"a", "b"}, values(sugs))
}

func TestExternalCompleterMergesAtHead(t *testing.T) {
	setup := `$env.config.completions.external.completer = {|spans| [gitflow]}
$env.config.completions.external.enable = true`
	f := newFixture(t, setup, nil, fakePath{"git"})

	sugs := f.completeAtEnd("gi")
	assert.Equal(t, []string{"git", "gitflow"}, values(sugs))
}

func TestAttributeCompletion(t *testing.T) {
	f := newFixture(t, "", nil, nil)

	sugs := f.completeAtEnd("@")
	assert.Equal(t, []string{"category", "example", "search-terms"}, values(sugs))

	sugs = f.completeAtEnd("@ca")
	require.Len(t, sugs, 1)
	assert.Equal(t, "category", sugs[0].Value)
	assert.Equal(t, lexer.Span{Start: 1, End: 3}, sugs[0].Span)
}

func TestAttributableKeywordAfterAttribute(t *testing.T) {
	f := newFixture(t, "", nil, nil)

	sugs := f.completeAtEnd("@example\n")
	assert.Equal(t, []string{"def", "export def", "export extern", "extern"}, values(sugs))

	sugs = f.completeAtEnd("@example\nexport d")
	assert.Equal(t, []string{"export def"}, values(sugs))
}

func TestNestedBlockCompletion(t *testing.T) {
	f := newFixture(t, `def tst [--mod(-s)] { ls }`, nil, nil)

	sugs := f.completeAtEnd("somecmd | lines | each { tst -")
	assert.Equal(t, []string{"--help", "--mod", "-h", "-s"}, values(sugs))
}

func TestSubexpressionCompletion(t *testing.T) {
	f := newFixture(t, `def tst [--mod(-s)] { ls }`, nil, nil)

	sugs := f.completeAtEnd("somecmd (tst --")
	assert.Equal(t, []string{"--help", "--mod"}, values(sugs))
}

func TestFreshPositionAfterPipe(t *testing.T) {
	f := newFixture(t, "", nil, nil)

	sugs := f.completeAtEnd("ls | ")
	vals := values(sugs)
	assert.Contains(t, vals, "each")
	assert.Contains(t, vals, "where")
	for _, s := range sugs {
		assert.Equal(t, lexer.Span{Start: 5, End: 5}, s.Span)
	}
}

func TestFuzzyAlgorithm(t *testing.T) {
	setup := `def animals [] { [cat dog eel] }
def my-command [animal: string@animals] { ls }`
	f := newFixture(t, setup, nil, nil)
	f.cfg.Completions.Algorithm = "fuzzy"

	sugs := f.completeAtEnd("my-command ct")
	assert.Equal(t, []string{"cat"}, values(sugs))
}

func TestFuzzyOrderInheritedByCustomCompleter(t *testing.T) {
	setup := `def items [] { ["Foo Abcdef" Abcdef "Acd Bar"] }
def my-command [item: string@items] { ls }`
	f := newFixture(t, setup, nil, nil)
	f.cfg.Completions.Algorithm = "fuzzy"

	sugs := f.completeAtEnd("my-command Acd")
	assert.Equal(t, []string{"Acd Bar", "Abcdef", "Foo Abcdef"}, values(sugs))
}

func TestCursorInMiddleOfToken(t *testing.T) {
	f := newFixture(t, `def tst [--mod(-s)] { ls }`, nil, nil)

	// Cursor after "--m" in "tst --mXYZ": matching-text stops at the cursor,
	// the span still covers the whole token.
	line := "tst --mXYZ"
	sugs := f.comp.Complete(line, 7)
	require.Len(t, sugs, 1)
	assert.Equal(t, "--mod", sugs[0].Value)
	assert.Equal(t, lexer.Span{Start: 4, End: 10}, sugs[0].Span)
}

func TestOutOfRangePositionIsClamped(t *testing.T) {
	f := newFixture(t, "", nil, nil)

	sugs := f.comp.Complete("ov", 99)
	assert.Contains(t, values(sugs), "overlay")

	sugs = f.comp.Complete("ov", -5)
	assert.NotNil(t, sugs)
}

func TestUnreadableDirectoryDegradesToNothing(t *testing.T) {
	f := newFixture(t, "", fakeFS{}, nil)

	assert.Empty(t, f.completeAtEnd("open d"))
}
