// Package main is the entry point for the nush shell.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/nush-sh/nush/internal/completion"
	"github.com/nush-sh/nush/internal/config"
	"github.com/nush-sh/nush/internal/core"
	"github.com/nush-sh/nush/internal/registry"
	"github.com/nush-sh/nush/internal/repl"
	"github.com/nush-sh/nush/internal/script/interpreter"
)

// BUILD_VERSION is injected at build time
var BUILD_VERSION = "dev"

func main() {
	app := &cli.Command{
		Name:    "nush",
		Usage:   "a structured-data shell",
		Version: BUILD_VERSION,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("NUSH_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the config file",
			},
			&cli.StringFlag{
				Name:    "commands",
				Aliases: []string{"c"},
				Usage:   "Evaluate the given source and exit",
			},
		},
		Action: runShell,
		Commands: []*cli.Command{
			{
				Name:  "complete",
				Usage: "Resolve completions for a line and cursor position",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "line",
						Usage:    "The input buffer",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "cursor",
						Value: -1,
						Usage: "Byte offset of the cursor (defaults to end of line)",
					},
				},
				Action: runComplete,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// session wires one interpreter, completer and logger together.
type session struct {
	interp    *interpreter.Interpreter
	completer *completion.Completer
	logger    *zap.Logger
}

func newSession(cmd *cli.Command) (*session, error) {
	logger, err := initializeLogger(cmd.String("log-level"))
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if path := cmd.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDir(core.DataDir())
	}
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	interp := interpreter.New(interpreter.Options{
		Registry:    reg,
		Config:      cfg,
		Logger:      logger,
		RunExternal: repl.RunExternal,
	})
	completer := completion.New(completion.Options{
		Registry:  reg,
		Evaluator: interp,
		Config:    cfg,
		Logger:    logger,
	})

	return &session{interp: interp, completer: completer, logger: logger}, nil
}

func runShell(_ context.Context, cmd *cli.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.logger.Sync()

	s.logger.Info("-------- new nush session --------", zap.Any("args", os.Args))

	// nush -c "echo hello"
	if src := cmd.String("commands"); src != "" {
		return evalAndPrint(s.interp, src)
	}

	// nush script.nu
	if cmd.Args().Len() > 0 {
		for _, path := range cmd.Args().Slice() {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if err := evalAndPrint(s.interp, string(data)); err != nil {
				return err
			}
		}
		return nil
	}

	// nush
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return repl.New(repl.Options{
			Interpreter: s.interp,
			Completer:   s.completer,
			Logger:      s.logger,
			HistoryFile: core.HistoryFile(),
		}).Run()
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}
	return evalAndPrint(s.interp, string(data))
}

func evalAndPrint(interp *interpreter.Interpreter, src string) error {
	result, err := interp.EvalSource(src)
	if err != nil {
		return err
	}
	if result != nil && result.Type() != interpreter.ValueTypeNull {
		if out := result.String(); out != "" {
			fmt.Println(out)
		}
	}
	return nil
}

// runComplete prints one suggestion per line: the replacement span, the value
// to insert, and the description when present.
func runComplete(_ context.Context, cmd *cli.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.logger.Sync()

	line := cmd.String("line")
	cursor := int(cmd.Int("cursor"))
	if cursor < 0 {
		cursor = len(line)
	}

	for _, sug := range s.completer.Complete(line, cursor) {
		if sug.Description != "" {
			fmt.Printf("%d..%d\t%s\t%s\n", sug.Span.Start, sug.Span.End, sug.Value, sug.Description)
		} else {
			fmt.Printf("%d..%d\t%s\n", sug.Span.Start, sug.Span.End, sug.Value)
		}
	}
	return nil
}

func initializeLogger(level string) (*zap.Logger, error) {
	logLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	// Logs go to file only so they never interleave with the prompt. Use
	// `tail -f ~/.nush/nush.log` to watch a live session.
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	return loggerConfig.Build()
}
