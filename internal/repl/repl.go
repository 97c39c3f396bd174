// Package repl implements the interactive nush session: a readline loop
// wired to the interpreter and the completion engine.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/nush-sh/nush/internal/completion"
	"github.com/nush-sh/nush/internal/script/interpreter"
)

// Options configures a new Session
type Options struct {
	Interpreter *interpreter.Interpreter
	Completer   *completion.Completer
	Logger      *zap.Logger
	HistoryFile string
	Prompt      string
}

// Session is one interactive nush session
type Session struct {
	interp      *interpreter.Interpreter
	completer   *completion.Completer
	logger      *zap.Logger
	historyFile string
	prompt      string
}

// New creates a session.
func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}
	return &Session{
		interp:      opts.Interpreter,
		completer:   opts.Completer,
		logger:      opts.Logger,
		historyFile: opts.HistoryFile,
		prompt:      opts.Prompt,
	}
}

// Run reads, evaluates and prints until EOF or an exit command.
func (s *Session) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt,
		HistoryFile:     s.historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    &lineCompleter{engine: s.completer},
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		result, err := s.interp.EvalSource(line)
		if err != nil {
			s.logger.Debug("eval failed", zap.String("line", line), zap.Error(err))
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if result != nil && result.Type() != interpreter.ValueTypeNull {
			if out := result.String(); out != "" {
				fmt.Println(out)
			}
		}
	}
}

// RunExternal is the interpreter's escape hatch for commands nush does not
// implement itself.
func RunExternal(name string, args []string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
