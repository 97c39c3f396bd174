// Package registry holds the commands, aliases and attributes known to a nush
// session. The interpreter writes to it as definitions are evaluated; the
// completion engine reads it on every request.
package registry

import (
	"sort"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/nush-sh/nush/internal/script/parser"
)

// Flag is one flag of a command signature
type Flag struct {
	Long        string // without dashes, "" for short-only flags
	Short       string // single letter without dash, "" when absent
	Shape       string // "" for switches that take no value
	Completer   string // custom completer command name, "" when absent
	Description string
}

// PositionalArg is one positional parameter of a command signature
type PositionalArg struct {
	Name        string
	Shape       string
	Completer   string
	Optional    bool
	Description string
}

// Signature describes the parameters a command accepts. It carries only what
// completion needs: shapes, completer references and flag sets.
type Signature struct {
	Positionals []PositionalArg
	Rest        *PositionalArg
	Flags       []Flag
}

func (s *Signature) hasHelp() bool {
	for _, f := range s.Flags {
		if f.Long == "help" || f.Short == "h" {
			return true
		}
	}
	return false
}

// Command is a command known to the session: a builtin, a def or an extern.
// Multi-word names such as "overlay use" are registered under the full name.
type Command struct {
	Name        string
	Description string
	Sig         Signature
	Body        *parser.BlockLit // nil for builtins and externs
}

// Words returns the space-separated words of the command name.
func (c *Command) Words() []string {
	return strings.Fields(c.Name)
}

// Registry is the session's command table. It is read-only during a
// completion request; mutation happens between requests as the interpreter
// evaluates definitions.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*parser.Call
	names    *patricia.Trie
}

// New creates a registry seeded with the builtin command table.
func New() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*parser.Call),
		names:    patricia.NewTrie(),
	}
	for _, cmd := range builtins() {
		r.Register(cmd)
	}
	return r
}

// Register adds or replaces a command. Every command carries the implicit
// --help flag unless its signature already claims --help or -h.
func (r *Registry) Register(cmd *Command) {
	if !cmd.Sig.hasHelp() {
		cmd.Sig.Flags = append(cmd.Sig.Flags, Flag{
			Long:        "help",
			Short:       "h",
			Description: "Display the help message for this command",
		})
	}
	r.commands[cmd.Name] = cmd
	r.names.Set(patricia.Prefix(cmd.Name), cmd.Name)
}

// RegisterAlias adds or replaces an alias. Alias names complete like command
// names.
func (r *Registry) RegisterAlias(name string, expansion *parser.Call) {
	r.aliases[name] = expansion
	r.names.Set(patricia.Prefix(name), name)
}

// LookupCommand returns the command registered under exactly name.
func (r *Registry) LookupCommand(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// LookupAlias returns the expansion call for an alias.
func (r *Registry) LookupAlias(name string) (*parser.Call, bool) {
	call, ok := r.aliases[name]
	return call, ok
}

// CommandNamesWithPrefix returns all command and alias names starting with
// prefix, sorted. The trie's visit order is not lexical, so collect first and
// sort after.
func (r *Registry) CommandNamesWithPrefix(prefix string) []string {
	names := []string{}
	_ = r.names.VisitSubtree(patricia.Prefix(prefix), func(_ patricia.Prefix, item patricia.Item) error {
		names = append(names, item.(string))
		return nil
	})
	sort.Strings(names)
	return names
}

// AttributeNames returns the names completable after an @ sigil, derived from
// commands registered under "attr NAME".
func (r *Registry) AttributeNames() []string {
	names := []string{}
	for name := range r.commands {
		if rest, ok := strings.CutPrefix(name, "attr "); ok {
			names = append(names, rest)
		}
	}
	sort.Strings(names)
	return names
}
