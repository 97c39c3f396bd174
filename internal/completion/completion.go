// Package completion implements the interactive line-completion engine.
//
// Given the current input buffer and cursor position, Complete classifies the
// token under the cursor, generates candidates from the applicable providers,
// filters and ranks them according to the session configuration, and returns
// ready-to-insert suggestions with byte-exact replacement spans.
//
// Completion never fails: a misbehaving completer, an unreadable directory or
// a half-parsed line all degrade to fewer (or no) suggestions.
package completion

import (
	"os"

	"go.uber.org/zap"

	"github.com/nush-sh/nush/internal/config"
	"github.com/nush-sh/nush/internal/registry"
	"github.com/nush-sh/nush/internal/script/interpreter"
	"github.com/nush-sh/nush/internal/script/lexer"
	"github.com/nush-sh/nush/internal/script/parser"
)

// Suggestion is one completion result, ready to insert
type Suggestion struct {
	// Value is the exact text to insert, quoting included.
	Value string
	// Description rides along for UIs that can show it.
	Description string
	// Span is the byte range of the line the value replaces. It covers the
	// whole token under the cursor, so accepting a suggestion overwrites any
	// trailing characters too.
	Span lexer.Span
	// AppendSpace marks suggestions that complete a whole argument, so the
	// editor can insert a trailing space on acceptance.
	AppendSpace bool
}

// Registry is the command/alias lookup surface the engine reads
type Registry interface {
	LookupCommand(name string) (*registry.Command, bool)
	LookupAlias(name string) (*parser.Call, bool)
	CommandNamesWithPrefix(prefix string) []string
	AttributeNames() []string
}

// Evaluator runs user-supplied completion callbacks and resolves variables
type Evaluator interface {
	EvalBlock(block *parser.BlockLit, args []interpreter.Value) (interpreter.Value, error)
	EvalClosure(closure interpreter.Value, args []interpreter.Value) (interpreter.Value, error)
	EvalConstExpr(expr parser.Expression) (interpreter.Value, error)
	Variable(name string) (interpreter.Value, bool)
	VariableNames() []string
}

// DirEntry is one filesystem directory entry
type DirEntry struct {
	Name  string
	IsDir bool
}

// FileSystem lists directories for path completion
type FileSystem interface {
	ReadDir(path string) ([]DirEntry, error)
}

// PathFinder lists executables on the search path
type PathFinder interface {
	FindExecutablesWithPrefix(prefix string) []string
}

// Completer is the completion engine. It holds read-only handles to the
// session's registry, evaluator and configuration; all per-request state
// lives on the stack.
type Completer struct {
	registry Registry
	eval     Evaluator
	fs       FileSystem
	path     PathFinder
	cfg      *config.Config
	logger   *zap.Logger

	// cwd and home are overridable for tests.
	cwd  func() string
	home string
}

// Options configures a new Completer. Zero-value fields get os-backed
// defaults.
type Options struct {
	Registry   Registry
	Evaluator  Evaluator
	FileSystem FileSystem
	PathFinder PathFinder
	Config     *config.Config
	Logger     *zap.Logger
}

// New creates a completion engine.
func New(opts Options) *Completer {
	if opts.FileSystem == nil {
		opts.FileSystem = osFileSystem{}
	}
	if opts.PathFinder == nil {
		opts.PathFinder = osPathFinder{}
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	home, _ := os.UserHomeDir()
	return &Completer{
		registry: opts.Registry,
		eval:     opts.Evaluator,
		fs:       opts.FileSystem,
		path:     opts.PathFinder,
		cfg:      opts.Config,
		logger:   opts.Logger,
		cwd: func() string {
			wd, err := os.Getwd()
			if err != nil {
				return "."
			}
			return wd
		},
		home: home,
	}
}

// Complete resolves the cursor's context in line and returns ranked
// suggestions. pos is a byte offset; out-of-range positions are clamped.
func (c *Completer) Complete(line string, pos int) []Suggestion {
	if pos < 0 {
		pos = 0
	}
	if pos > len(line) {
		pos = len(line)
	}

	p := parser.New(lexer.New(line))
	prog := p.ParseProgram()
	// Parse errors at or after the cursor are expected on a half-typed line;
	// the tree built so far is still usable.

	r := &resolver{c: c, line: line, pos: pos}
	contexts := r.resolveProgram(prog, 0)
	if len(contexts) == 0 {
		return []Suggestion{}
	}

	base := MatchOptionsFromConfig(c.cfg)
	suggestions := []Suggestion{}
	for _, ctx := range contexts {
		c.logger.Debug("completion context",
			zap.Stringer("kind", ctx.kind),
			zap.String("text", ctx.text))
		suggestions = append(suggestions, c.completeContext(ctx, base)...)
	}
	return dedupeSuggestions(suggestions)
}

// completeContext dispatches a resolved context to its provider.
func (c *Completer) completeContext(ctx completionContext, base MatchOptions) []Suggestion {
	switch ctx.kind {
	case ctxCommandHead:
		return c.completeHead(ctx, base)
	case ctxSubcommand:
		return c.completeSubcommands(ctx, base)
	case ctxFlag:
		return c.completeFlags(ctx, base)
	case ctxPositional, ctxRestArgs, ctxFlagValue:
		return c.completeArgument(ctx, base)
	case ctxExternalArgs:
		return c.completeExternalArgs(ctx, base)
	case ctxVariablePath:
		return c.completeVariablePath(ctx, base)
	case ctxAttribute:
		return c.completeAttributes(ctx, base)
	case ctxAttributableKeyword:
		return c.completeAttributableKeywords(ctx, base)
	default:
		return nil
	}
}

// dedupeSuggestions drops duplicates produced by merged contexts, keeping
// first-emission order.
func dedupeSuggestions(in []Suggestion) []Suggestion {
	type key struct {
		value string
		span  lexer.Span
	}
	seen := make(map[key]bool, len(in))
	out := in[:0]
	for _, s := range in {
		k := key{s.Value, s.Span}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}
