package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nush-sh/nush/internal/config"
	"github.com/nush-sh/nush/internal/registry"
	"github.com/nush-sh/nush/internal/script/lexer"
	"github.com/nush-sh/nush/internal/script/parser"
)

type session struct {
	cfg    *config.Config
	reg    *registry.Registry
	interp *Interpreter
}

func newSession(t *testing.T) *session {
	t.Helper()
	cfg := config.Default()
	reg := registry.New()
	return &session{
		cfg: cfg,
		reg: reg,
		interp: New(Options{
			Registry: reg,
			Config:   cfg,
		}),
	}
}

func (s *session) eval(t *testing.T, src string) Value {
	t.Helper()
	v, err := s.interp.EvalSource(src)
	require.NoError(t, err)
	return v
}

func TestDefRegistersCommand(t *testing.T) {
	s := newSession(t)
	s.eval(t, `def tst [--mod(-s): string@animals, pos: int] { ls }`)

	cmd, ok := s.reg.LookupCommand("tst")
	require.True(t, ok)
	require.Len(t, cmd.Sig.Positionals, 1)
	assert.Equal(t, "pos", cmd.Sig.Positionals[0].Name)

	var mod *registry.Flag
	for i := range cmd.Sig.Flags {
		if cmd.Sig.Flags[i].Long == "mod" {
			mod = &cmd.Sig.Flags[i]
		}
	}
	require.NotNil(t, mod)
	assert.Equal(t, "s", mod.Short)
	assert.Equal(t, "string", mod.Shape)
	assert.Equal(t, "animals", mod.Completer)

	// The body inherits the declared positionals as block parameters.
	require.NotNil(t, cmd.Body)
	assert.Equal(t, []string{"pos"}, cmd.Body.Params)
}

func TestMultiwordDefResolvesOnCall(t *testing.T) {
	s := newSession(t)
	s.eval(t, `def "str abc" [] { 42 }`)

	v := s.eval(t, `str abc`)
	n, ok := v.(*IntValue)
	require.True(t, ok)
	assert.Equal(t, int64(42), n.Value)
}

func TestAliasRegistersAndExpands(t *testing.T) {
	s := newSession(t)
	s.eval(t, `def greet [who: string] { $who }
alias hi = greet`)

	_, ok := s.reg.LookupAlias("hi")
	require.True(t, ok)

	v := s.eval(t, `hi world`)
	assert.Equal(t, "world", v.String())
}

func TestLetBindsVariables(t *testing.T) {
	s := newSession(t)
	s.eval(t, `let x = 5`)

	v, ok := s.interp.Variable("x")
	require.True(t, ok)
	n, isInt := v.(*IntValue)
	require.True(t, isInt)
	assert.Equal(t, int64(5), n.Value)

	names := s.interp.VariableNames()
	assert.Contains(t, names, "x")
	assert.Contains(t, names, "env")
	assert.Contains(t, names, "nu")
	assert.Contains(t, names, "in")
}

func TestConstLibDirsReachConfig(t *testing.T) {
	t.Setenv("NU_LIB_DIRS", "")
	s := newSession(t)
	s.eval(t, `const NU_LIB_DIRS = ["/modules" "/extra"]`)

	assert.Equal(t, []string{"/modules", "/extra"}, s.cfg.LibraryDirs())
}

func TestConfigAssignments(t *testing.T) {
	s := newSession(t)
	s.eval(t, `$env.config.completions.algorithm = "fuzzy"
$env.config.completions.case_sensitive = true
$env.config.completions.sort = "alphabetical"
$env.config.completions.external.enable = true
$env.config.completions.external.max_results = 5`)

	assert.Equal(t, "fuzzy", s.cfg.Completions.Algorithm)
	assert.True(t, s.cfg.Completions.CaseSensitive)
	assert.Equal(t, "alphabetical", s.cfg.Completions.Sort)
	assert.True(t, s.cfg.Completions.External.Enable)
	assert.Equal(t, 5, s.cfg.Completions.External.MaxResults)

	// The $env.config record mirrors the typed config.
	env, _ := s.interp.Variable("env")
	v, ok := CellPathGet(env, []string{"config", "completions", "algorithm"})
	require.True(t, ok)
	assert.Equal(t, "fuzzy", v.String())
}

func TestExternalCompleterAssignment(t *testing.T) {
	s := newSession(t)
	s.eval(t, `$env.config.completions.external.completer = {|spans| $spans}`)

	closure, ok := s.cfg.Completions.External.Completer.(*ClosureValue)
	require.True(t, ok)
	assert.Equal(t, []string{"spans"}, closure.Params)

	_, err := s.interp.EvalSource(`$env.config.completions.external.completer = 42`)
	assert.Error(t, err)
}

func TestEnvAssignment(t *testing.T) {
	s := newSession(t)
	s.eval(t, `$env.MY_VAR = "hello"`)

	env, _ := s.interp.Variable("env")
	v, ok := CellPathGet(env, []string{"MY_VAR"})
	require.True(t, ok)
	assert.Equal(t, "hello", v.String())
}

func TestUnknownConfigSettingErrors(t *testing.T) {
	s := newSession(t)
	_, err := s.interp.EvalSource(`$env.config.completions.bogus = 1`)
	assert.Error(t, err)
}

func TestLiteralWords(t *testing.T) {
	s := newSession(t)

	assert.Equal(t, ValueTypeNull, s.eval(t, `echo null`).Type())
	assert.Equal(t, ValueTypeBool, s.eval(t, `echo true`).Type())

	v := s.eval(t, `echo a b`)
	list, ok := v.(*ListValue)
	require.True(t, ok)
	assert.Len(t, list.Items, 2)
}

func TestBareLiteralStatements(t *testing.T) {
	s := newSession(t)

	// A lone keyword is a value, not a command lookup.
	assert.Equal(t, ValueTypeNull, s.eval(t, `null`).Type())

	b, ok := s.eval(t, `false`).(*BoolValue)
	require.True(t, ok)
	assert.False(t, b.Value)

	// Completer bodies rely on this: `{ null }` must yield null.
	s.eval(t, `def gives-null [] { null }`)
	v := s.eval(t, `gives-null`)
	assert.Equal(t, ValueTypeNull, v.Type())
}

func TestEvalBlockBindsArguments(t *testing.T) {
	s := newSession(t)
	s.eval(t, `def first-span [spans: list] { $spans }`)

	cmd, ok := s.reg.LookupCommand("first-span")
	require.True(t, ok)

	arg := &ListValue{Items: []Value{&StringValue{Value: "git"}, &StringValue{Value: "pu"}}}
	v, err := s.interp.EvalBlock(cmd.Body, []Value{arg})
	require.NoError(t, err)
	assert.Equal(t, "[git, pu]", v.String())
}

func TestEvalClosure(t *testing.T) {
	s := newSession(t)
	s.eval(t, `let pick = {|x| $x}`)

	closure, ok := s.interp.Variable("pick")
	require.True(t, ok)

	v, err := s.interp.EvalClosure(closure, []Value{&IntValue{Value: 7}})
	require.NoError(t, err)
	assert.Equal(t, "7", v.String())

	_, err = s.interp.EvalClosure(&IntValue{Value: 1}, nil)
	assert.Error(t, err)
}

func parseExpr(t *testing.T, src string) parser.Expression {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())
	stmt, ok := prog.Statements[0].(*parser.ExprStmt)
	require.True(t, ok)
	return stmt.Pipeline.Commands[0].Args[0]
}

func TestEvalConstExprRejectsSubexpressions(t *testing.T) {
	s := newSession(t)

	_, err := s.interp.EvalConstExpr(parseExpr(t, `(ls)`))
	assert.ErrorContains(t, err, "not a constant expression")

	// Container literals stay evaluable.
	v, err := s.interp.EvalConstExpr(parseExpr(t, `{a: 1}`))
	require.NoError(t, err)
	assert.Equal(t, ValueTypeRecord, v.Type())
}

func TestExternalFallback(t *testing.T) {
	var gotName string
	var gotArgs []string

	cfg := config.Default()
	reg := registry.New()
	interp := New(Options{
		Registry: reg,
		Config:   cfg,
		RunExternal: func(name string, args []string) error {
			gotName = name
			gotArgs = args
			return nil
		},
	})

	_, err := interp.EvalSource(`somebinary --flag value`)
	require.NoError(t, err)
	assert.Equal(t, "somebinary", gotName)
	assert.Equal(t, []string{"--flag", "value"}, gotArgs)

	// The ^ sigil strips before dispatch.
	_, err = interp.EvalSource(`^othertool`)
	require.NoError(t, err)
	assert.Equal(t, "othertool", gotName)
}

func TestUnknownCommandWithoutRunnerErrors(t *testing.T) {
	s := newSession(t)
	_, err := s.interp.EvalSource(`definitely-not-a-command`)
	assert.Error(t, err)
}

func TestRecursionIsBounded(t *testing.T) {
	s := newSession(t)
	s.eval(t, `def loop [] { loop }`)

	_, err := s.interp.EvalSource(`loop`)
	assert.Error(t, err)
}
