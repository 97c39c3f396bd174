// Package interpreter evaluates nush programs.
//
// The evaluator is intentionally small: it exists so that definitions, aliases
// and variable bindings typed at the REPL are reflected in completion, and so
// the completion engine can run user-defined completer closures. Anything it
// cannot evaluate itself is handed to the external runner.
package interpreter

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nush-sh/nush/internal/config"
	"github.com/nush-sh/nush/internal/registry"
	"github.com/nush-sh/nush/internal/script/lexer"
	"github.com/nush-sh/nush/internal/script/parser"
)

// maxCallDepth bounds def and alias recursion
const maxCallDepth = 64

// Options configures a new Interpreter
type Options struct {
	Registry *registry.Registry
	Config   *config.Config
	Logger   *zap.Logger
	Stdout   io.Writer
	Stderr   io.Writer

	// RunExternal executes a command the interpreter does not know. When nil,
	// unknown commands are an error.
	RunExternal func(name string, args []string) error
}

// Interpreter evaluates nush programs against a session environment
type Interpreter struct {
	reg         *registry.Registry
	cfg         *config.Config
	logger      *zap.Logger
	stdout      io.Writer
	stderr      io.Writer
	runExternal func(name string, args []string) error

	env       *Environment
	envRecord *RecordValue
	nuRecord  *RecordValue
	depth     int
}

// New creates an interpreter with a fresh session environment.
func New(opts Options) *Interpreter {
	if opts.Registry == nil {
		opts.Registry = registry.New()
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	i := &Interpreter{
		reg:         opts.Registry,
		cfg:         opts.Config,
		logger:      opts.Logger,
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		runExternal: opts.RunExternal,
		env:         NewEnvironment(),
	}
	i.envRecord = processEnvRecord()
	i.envRecord.Set("config", configRecord(i.cfg))
	i.nuRecord = shellInfoRecord()
	return i
}

// EvalSource parses and evaluates src. Parse errors abort evaluation.
func (i *Interpreter) EvalSource(src string) (Value, error) {
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("parse error: %s", errs[0])
	}
	return i.EvalProgram(prog)
}

// EvalProgram evaluates the statements of prog in order and returns the value
// of the last one.
func (i *Interpreter) EvalProgram(prog *parser.Program) (Value, error) {
	var result Value = &NullValue{}
	for _, stmt := range prog.Statements {
		v, err := i.evalStatement(stmt)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func (i *Interpreter) evalStatement(stmt parser.Statement) (Value, error) {
	switch s := stmt.(type) {
	case *parser.DefStmt:
		return &NullValue{}, i.evalDef(s)
	case *parser.AliasStmt:
		if s.Name != "" && s.Expansion != nil {
			i.reg.RegisterAlias(s.Name, s.Expansion)
		}
		return &NullValue{}, nil
	case *parser.LetStmt:
		return &NullValue{}, i.evalLet(s)
	case *parser.AssignStmt:
		return &NullValue{}, i.evalAssign(s)
	case *parser.AttributeStmt:
		// Attributes annotate the definition that follows; they carry no
		// runtime behavior of their own.
		return &NullValue{}, nil
	case *parser.ExprStmt:
		return i.evalPipeline(s.Pipeline, i.env)
	default:
		return nil, fmt.Errorf("cannot evaluate statement %T", stmt)
	}
}

func (i *Interpreter) evalDef(stmt *parser.DefStmt) error {
	if stmt.Name == "" {
		return fmt.Errorf("%s without a name", stmt.Keyword)
	}
	cmd := &registry.Command{
		Name: stmt.Name,
		Sig:  signatureFromDecl(stmt.Sig),
		Body: stmt.Body,
	}
	// The body block inherits the declared positionals as its parameters, so
	// EvalBlock can bind them when the body runs as a completer callback.
	if stmt.Body != nil && len(stmt.Body.Params) == 0 {
		for _, p := range cmd.Sig.Positionals {
			stmt.Body.Params = append(stmt.Body.Params, p.Name)
		}
	}
	i.reg.Register(cmd)
	return nil
}

func (i *Interpreter) evalLet(stmt *parser.LetStmt) error {
	if stmt.Name == "" {
		return fmt.Errorf("%s without a name", stmt.Keyword)
	}
	var value Value = &NullValue{}
	if stmt.Value != nil {
		v, err := i.evalPipeline(stmt.Value, i.env)
		if err != nil {
			return err
		}
		value = v
	}
	i.env.Set(stmt.Name, value)

	// const NU_LIB_DIRS feeds module-path completion.
	if stmt.Keyword == "const" && stmt.Name == "NU_LIB_DIRS" {
		if list, ok := value.(*ListValue); ok {
			dirs := make([]string, 0, len(list.Items))
			for _, item := range list.Items {
				dirs = append(dirs, item.String())
			}
			i.cfg.SetConstLibDirs(dirs)
		}
	}
	return nil
}

func (i *Interpreter) evalAssign(stmt *parser.AssignStmt) error {
	var value Value = &NullValue{}
	if stmt.Value != nil {
		v, err := i.evalPipeline(stmt.Value, i.env)
		if err != nil {
			return err
		}
		value = v
	}

	segs := stmt.Target.PathSegments()
	if stmt.Target.Name == "env" {
		if len(segs) == 0 {
			return fmt.Errorf("cannot replace $env wholesale")
		}
		if segs[0] == "config" {
			return i.applyConfigAssign(segs[1:], value)
		}
		i.envRecord.Set(segs[0], value)
		return nil
	}

	if len(segs) > 0 {
		return fmt.Errorf("cell path assignment is only supported on $env")
	}
	i.env.Set(stmt.Target.Name, value)
	return nil
}

// applyConfigAssign routes a $env.config.… assignment into the typed session
// config, mirroring it into the $env.config record so completion on the
// config cell path stays accurate.
func (i *Interpreter) applyConfigAssign(segs []string, value Value) error {
	path := strings.Join(segs, ".")
	switch path {
	case "completions.algorithm":
		i.cfg.Completions.Algorithm = value.String()
	case "completions.case_sensitive":
		i.cfg.Completions.CaseSensitive = valueAsBool(value)
	case "completions.sort":
		i.cfg.Completions.Sort = value.String()
	case "completions.external.enable":
		i.cfg.Completions.External.Enable = valueAsBool(value)
	case "completions.external.max_results":
		if n, ok := value.(*IntValue); ok {
			i.cfg.Completions.External.MaxResults = int(n.Value)
		}
	case "completions.external.completer":
		if _, ok := value.(*ClosureValue); ok || value.Type() == ValueTypeNull {
			i.cfg.Completions.External.Completer = value
		} else {
			return fmt.Errorf("external completer must be a closure")
		}
	default:
		return fmt.Errorf("unknown config setting: %s", path)
	}
	i.envRecord.Set("config", configRecord(i.cfg))
	return nil
}

func valueAsBool(v Value) bool {
	switch b := v.(type) {
	case *BoolValue:
		return b.Value
	case *StringValue:
		return b.Value == "true"
	}
	return false
}

func (i *Interpreter) evalPipeline(pl *parser.Pipeline, env *Environment) (Value, error) {
	var input Value = &NullValue{}
	for _, call := range pl.Commands {
		if len(call.Args) == 0 {
			continue
		}
		v, err := i.evalCall(call, input, env)
		if err != nil {
			return nil, err
		}
		input = v
	}
	return input, nil
}

// evalCall evaluates one pipeline stage. A stage whose first argument is not
// a word is an expression stage and yields its own value.
func (i *Interpreter) evalCall(call *parser.Call, input Value, env *Environment) (Value, error) {
	if i.depth >= maxCallDepth {
		return nil, fmt.Errorf("call depth exceeded")
	}

	head, ok := call.Args[0].(*parser.Word)
	if !ok {
		if len(call.Args) == 1 {
			return i.evalExpression(call.Args[0], env)
		}
		return nil, fmt.Errorf("expected a command name, got %s", call.Args[0].String())
	}

	// A lone literal keyword is a value, not a command.
	if len(call.Args) == 1 {
		switch head.Value {
		case "null", "true", "false":
			return i.evalExpression(head, env)
		}
	}

	// Alias heads expand in place, re-resolving against the registry.
	if expansion, isAlias := i.reg.LookupAlias(head.Value); isAlias {
		expanded := &parser.Call{Args: append(append([]parser.Expression{}, expansion.Args...), call.Args[1:]...)}
		i.depth++
		defer func() { i.depth-- }()
		return i.evalCall(expanded, input, env)
	}

	name, rest := i.resolveHead(call.Args)

	switch name {
	case "echo":
		return i.evalEcho(rest, env)
	case "print":
		v, err := i.evalEcho(rest, env)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(i.stdout, v.String())
		return &NullValue{}, nil
	}

	if cmd, found := i.reg.LookupCommand(name); found && cmd.Body != nil {
		return i.evalUserCommand(cmd, rest, input, env)
	}

	if i.runExternal != nil {
		args := make([]string, 0, len(rest))
		for _, a := range rest {
			v, err := i.evalExpression(a, env)
			if err != nil {
				return nil, err
			}
			args = append(args, v.String())
		}
		if err := i.runExternal(name, args); err != nil {
			return nil, err
		}
		return &NullValue{}, nil
	}

	return nil, fmt.Errorf("unknown command: %s", name)
}

// resolveHead consumes the longest run of leading words that names a
// registered command, defaulting to the first word alone.
func (i *Interpreter) resolveHead(args []parser.Expression) (string, []parser.Expression) {
	words := []string{}
	for _, a := range args {
		w, ok := a.(*parser.Word)
		if !ok {
			break
		}
		words = append(words, w.Value)
	}

	for n := len(words); n >= 2; n-- {
		name := strings.Join(words[:n], " ")
		if _, found := i.reg.LookupCommand(name); found {
			return name, args[n:]
		}
	}
	return strings.TrimPrefix(words[0], "^"), args[1:]
}

func (i *Interpreter) evalEcho(args []parser.Expression, env *Environment) (Value, error) {
	values := make([]Value, 0, len(args))
	for _, a := range args {
		v, err := i.evalExpression(a, env)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	switch len(values) {
	case 0:
		return &NullValue{}, nil
	case 1:
		return values[0], nil
	default:
		return &ListValue{Items: values}, nil
	}
}

// evalUserCommand runs a def body with positional parameters bound by name.
// Flags are accepted and skipped; the completion engine is their consumer.
func (i *Interpreter) evalUserCommand(cmd *registry.Command, args []parser.Expression, input Value, env *Environment) (Value, error) {
	i.depth++
	defer func() { i.depth-- }()

	child := NewEnclosedEnvironment(i.env)
	child.Set("in", input)

	positIdx := 0
	var restItems []Value
	for _, a := range args {
		if _, isFlag := a.(*parser.Flag); isFlag {
			continue
		}
		v, err := i.evalExpression(a, env)
		if err != nil {
			return nil, err
		}
		if positIdx < len(cmd.Sig.Positionals) {
			child.Set(cmd.Sig.Positionals[positIdx].Name, v)
			positIdx++
		} else if cmd.Sig.Rest != nil {
			restItems = append(restItems, v)
		}
	}
	if cmd.Sig.Rest != nil {
		child.Set(cmd.Sig.Rest.Name, &ListValue{Items: restItems})
	}

	return i.evalBody(cmd.Body.Body, child)
}

func (i *Interpreter) evalBody(prog *parser.Program, env *Environment) (Value, error) {
	saved := i.env
	i.env = env
	defer func() { i.env = saved }()
	return i.EvalProgram(prog)
}

// EvalBlock evaluates a block with args bound to its declared parameters.
// The completion engine uses it to run def-based custom completers.
func (i *Interpreter) EvalBlock(block *parser.BlockLit, args []Value) (Value, error) {
	if block == nil {
		return nil, fmt.Errorf("nil block")
	}
	child := NewEnclosedEnvironment(i.env)
	for n, param := range block.Params {
		if n < len(args) {
			child.Set(param, args[n])
		} else {
			child.Set(param, &NullValue{})
		}
	}
	return i.evalBody(block.Body, child)
}

// EvalClosure evaluates a closure value with args bound to its parameters.
// The completion engine uses it to run the configured external completer.
func (i *Interpreter) EvalClosure(closure Value, args []Value) (Value, error) {
	c, ok := closure.(*ClosureValue)
	if !ok {
		return nil, fmt.Errorf("expected a closure, got %s", closure.Type())
	}
	env := c.Env
	if env == nil {
		env = i.env
	}
	child := NewEnclosedEnvironment(env)
	for n, param := range c.Params {
		if n < len(args) {
			child.Set(param, args[n])
		} else {
			child.Set(param, &NullValue{})
		}
	}
	return i.evalBody(c.Body, child)
}

// EvalConstExpr evaluates an expression without side effects: literals,
// variable lookups, cell paths and container literals. Subexpressions and
// anything else that would run a command are rejected.
func (i *Interpreter) EvalConstExpr(expr parser.Expression) (Value, error) {
	if !isConstExpr(expr) {
		return nil, fmt.Errorf("not a constant expression: %s", expr.String())
	}
	return i.evalExpression(expr, i.env)
}

func isConstExpr(expr parser.Expression) bool {
	switch e := expr.(type) {
	case *parser.Word, *parser.Flag, *parser.IntLit, *parser.FloatLit,
		*parser.StringLit, *parser.VarPath, *parser.BlockLit:
		return true
	case *parser.CellPath:
		return isConstExpr(e.Head)
	case *parser.ListLit:
		for _, item := range e.Items {
			if !isConstExpr(item) {
				return false
			}
		}
		return true
	case *parser.RecordLit:
		for _, field := range e.Fields {
			if field.Value != nil && !isConstExpr(field.Value) {
				return false
			}
		}
		return true
	case *parser.TableLit:
		for _, col := range e.Columns {
			if !isConstExpr(col) {
				return false
			}
		}
		for _, row := range e.Rows {
			for _, cell := range row {
				if !isConstExpr(cell) {
					return false
				}
			}
		}
		return true
	}
	return false
}

func (i *Interpreter) evalExpression(expr parser.Expression, env *Environment) (Value, error) {
	switch e := expr.(type) {
	case *parser.Word:
		switch e.Value {
		case "null":
			return &NullValue{}, nil
		case "true":
			return &BoolValue{Value: true}, nil
		case "false":
			return &BoolValue{Value: false}, nil
		}
		return &StringValue{Value: e.Value}, nil
	case *parser.Flag:
		return &StringValue{Value: e.Value}, nil
	case *parser.IntLit:
		return &IntValue{Value: e.Value}, nil
	case *parser.FloatLit:
		return &FloatValue{Value: e.Value}, nil
	case *parser.StringLit:
		return &StringValue{Value: e.Value}, nil
	case *parser.VarPath:
		return i.evalVarPath(e, env)
	case *parser.ListLit:
		return i.evalList(e, env)
	case *parser.TableLit:
		return i.evalTable(e, env)
	case *parser.RecordLit:
		return i.evalRecord(e, env)
	case *parser.BlockLit:
		return &ClosureValue{Params: e.Params, Body: e.Body, Env: env}, nil
	case *parser.Subexpr:
		return i.evalBody(e.Body, NewEnclosedEnvironment(env))
	case *parser.CellPath:
		head, err := i.evalExpression(e.Head, env)
		if err != nil {
			return nil, err
		}
		v, ok := CellPathGet(head, e.PathSegments())
		if !ok {
			return nil, fmt.Errorf("cannot find cell path %s", e.PathToken.Literal)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("cannot evaluate expression %T", expr)
	}
}

func (i *Interpreter) evalVarPath(vp *parser.VarPath, env *Environment) (Value, error) {
	root, ok := i.lookupVariable(vp.Name, env)
	if !ok {
		return nil, fmt.Errorf("undefined variable: $%s", vp.Name)
	}
	v, ok := CellPathGet(root, vp.PathSegments())
	if !ok {
		return nil, fmt.Errorf("cannot find cell path %s", vp.Token.Literal)
	}
	return v, nil
}

func (i *Interpreter) lookupVariable(name string, env *Environment) (Value, bool) {
	switch name {
	case "env":
		return i.envRecord, true
	case "nu":
		return i.nuRecord, true
	case "in":
		if v, ok := env.Get("in"); ok {
			return v, true
		}
		return &NullValue{}, true
	}
	return env.Get(name)
}

// Variable resolves a root variable name the way $name would.
func (i *Interpreter) Variable(name string) (Value, bool) {
	return i.lookupVariable(name, i.env)
}

// VariableNames returns every visible root variable name, sorted, including
// the built-in $env, $nu and $in.
func (i *Interpreter) VariableNames() []string {
	names := append(i.env.Names(), "env", "nu", "in")
	sort.Strings(names)
	return names
}

func (i *Interpreter) evalList(lit *parser.ListLit, env *Environment) (Value, error) {
	items := make([]Value, 0, len(lit.Items))
	for _, item := range lit.Items {
		v, err := i.evalExpression(item, env)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return &ListValue{Items: items}, nil
}

func (i *Interpreter) evalTable(lit *parser.TableLit, env *Environment) (Value, error) {
	table := &TableValue{}
	for _, col := range lit.Columns {
		v, err := i.evalExpression(col, env)
		if err != nil {
			return nil, err
		}
		table.Columns = append(table.Columns, v.String())
	}
	for _, row := range lit.Rows {
		cells := make([]Value, 0, len(row))
		for _, cell := range row {
			v, err := i.evalExpression(cell, env)
			if err != nil {
				return nil, err
			}
			cells = append(cells, v)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

func (i *Interpreter) evalRecord(lit *parser.RecordLit, env *Environment) (Value, error) {
	rec := NewRecord()
	for _, field := range lit.Fields {
		if field.Value == nil {
			rec.Set(field.Key, &NullValue{})
			continue
		}
		v, err := i.evalExpression(field.Value, env)
		if err != nil {
			return nil, err
		}
		rec.Set(field.Key, v)
	}
	return rec, nil
}

// signatureFromDecl converts a parsed signature declaration into the registry
// form.
func signatureFromDecl(decl *parser.SignatureDecl) registry.Signature {
	var sig registry.Signature
	if decl == nil {
		return sig
	}
	for _, p := range decl.Positionals {
		sig.Positionals = append(sig.Positionals, registry.PositionalArg{
			Name:      p.Name,
			Shape:     p.Shape,
			Completer: p.Completer,
			Optional:  p.Optional,
		})
	}
	if decl.Rest != nil {
		sig.Rest = &registry.PositionalArg{
			Name:      decl.Rest.Name,
			Shape:     decl.Rest.Shape,
			Completer: decl.Rest.Completer,
		}
	}
	for _, f := range decl.Flags {
		sig.Flags = append(sig.Flags, registry.Flag{
			Long:      f.Long,
			Short:     f.Short,
			Shape:     f.Shape,
			Completer: f.Completer,
		})
	}
	return sig
}

func processEnvRecord() *RecordValue {
	rec := NewRecord()
	environ := os.Environ()
	sort.Strings(environ)
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			rec.Set(k, &StringValue{Value: v})
		}
	}
	return rec
}

func configRecord(cfg *config.Config) *RecordValue {
	external := NewRecord()
	external.Set("enable", &BoolValue{Value: cfg.Completions.External.Enable})
	external.Set("max_results", &IntValue{Value: int64(cfg.Completions.External.MaxResults)})

	completions := NewRecord()
	completions.Set("algorithm", &StringValue{Value: cfg.Completions.Algorithm})
	completions.Set("case_sensitive", &BoolValue{Value: cfg.Completions.CaseSensitive})
	completions.Set("sort", &StringValue{Value: cfg.Completions.Sort})
	completions.Set("external", external)

	rec := NewRecord()
	rec.Set("completions", completions)
	return rec
}

func shellInfoRecord() *RecordValue {
	home, _ := os.UserHomeDir()

	osInfo := NewRecord()
	osInfo.Set("name", &StringValue{Value: runtime.GOOS})
	osInfo.Set("arch", &StringValue{Value: runtime.GOARCH})
	osInfo.Set("family", &StringValue{Value: osFamily()})
	osInfo.Set("kernel_version", &StringValue{Value: ""})

	rec := NewRecord()
	rec.Set("home-path", &StringValue{Value: home})
	rec.Set("os-info", osInfo)
	rec.Set("pid", &IntValue{Value: int64(os.Getpid())})
	rec.Set("startup-time", &StringValue{Value: time.Now().Format(time.RFC3339)})
	rec.Set("temp-path", &StringValue{Value: os.TempDir()})
	return rec
}

func osFamily() string {
	switch runtime.GOOS {
	case "windows":
		return "windows"
	default:
		return "unix"
	}
}
