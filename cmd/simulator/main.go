// Command simulator publishes and calls guest programs on the reference host.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-programs/runtime"
	"github.com/wippyai/wasm-programs/state"
)

const usage = `Usage: simulator [global flags] <command> [flags]

Commands:
  program create -wasm <file>                       publish a program
  program invoke -id <n> -function <name> [-params <list>] [-value]
                                                    call a program method
  program list                                      list published programs
  key generate                                      create an ed25519 key pair
  -i                                                interactive mode with TUI

Parameters are comma-separated: int:5, text:hello, addr:<64 hex>, program:<n>.
A bare number is an integer.

Global flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// env is what every command runs against.
type env struct {
	rt      *runtime.Runtime
	backend state.Backend
	logger  *zap.Logger
	stdout  io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("simulator", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  = fs.String("config", defaultConfigPath, "Path to TOML config file")
		backend     = fs.String("backend", "", "Storage backend: memory or sqlite")
		database    = fs.String("database", "", "SQLite database path")
		logLevel    = fs.String("log-level", "", "Log level: debug, info, warn, error")
		interactive = fs.Bool("i", false, "Interactive mode with TUI")
	)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := loadConfig(defaultConfig(), *configPath, set["config"])
	if err != nil {
		return err
	}
	if set["backend"] {
		cfg.Backend = *backend
	}
	if set["database"] {
		cfg.Database = *database
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	rest := fs.Args()
	if !*interactive && len(rest) == 0 {
		fs.Usage()
		return errUsage
	}
	// key generate needs no host
	if len(rest) >= 2 && rest[0] == "key" {
		return keyCommand(rest[1:], stdout, stderr)
	}

	logger, err := newLogger(cfg.LogLevel, zapcore.AddSync(stderr))
	if err != nil {
		return err
	}
	defer logger.Sync()

	e, err := openEnv(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer e.close(ctx)
	e.stdout = stdout

	if *interactive {
		return runInteractive(ctx, e)
	}
	return dispatch(ctx, e, rest, stderr)
}

func openEnv(ctx context.Context, cfg config, logger *zap.Logger) (*env, error) {
	var backend state.Backend
	switch cfg.Backend {
	case backendMemory:
		backend = state.NewMemory()
	case backendSQLite:
		db, err := state.OpenSQLite(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		backend = db
	}

	rt, err := runtime.New(ctx, backend,
		runtime.WithLogger(logger),
		runtime.WithConfig(runtime.Config{
			MaxCallDepth:     cfg.MaxCallDepth,
			MemoryLimitPages: cfg.MemoryLimitPages,
		}),
	)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("create runtime: %w", err)
	}
	logger.Debug("simulator ready",
		zap.String("backend", cfg.Backend),
		zap.String("database", cfg.Database))
	return &env{rt: rt, backend: backend, logger: logger}, nil
}

func (e *env) close(ctx context.Context) {
	if err := e.rt.Close(ctx); err != nil {
		e.logger.Warn("close runtime", zap.Error(err))
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Warn("close backend", zap.Error(err))
	}
}

func dispatch(ctx context.Context, e *env, args []string, stderr io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("unknown command %q", args[0])
	}
	group, cmd, rest := args[0], args[1], args[2:]
	switch {
	case group == "program" && cmd == "create":
		return programCreate(ctx, e, rest, stderr)
	case group == "program" && cmd == "invoke":
		return programInvoke(ctx, e, rest, stderr)
	case group == "program" && cmd == "list":
		return programList(ctx, e)
	default:
		return fmt.Errorf("unknown command %q", group+" "+cmd)
	}
}
