// Command mslash runs MSlash scripts.
//
// Usage:
//
//	mslash <file>            Run a script
//	mslash -d <file>         Run with execution tracing on stderr
//	mslash --ast <file>      Print the loaded program as JSON
//	mslash                   Prompt for the script to run
package main

import (
	"mslash/internal/ast"
	"mslash/internal/config"
	"mslash/internal/module"
	"mslash/internal/runtime"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const filenamePrompt = "Enter the name and file extension of the target file (e.g., demo.mslash): "

type args struct {
	File   string `arg:"positional" help:"script to run; prompted for when omitted"`
	Debug  bool   `arg:"-d,--debug" help:"trace statements, calls and steals to stderr"`
	Config string `arg:"--config,env:MSLASH_CONFIG" help:"YAML settings file"`
	AST    bool   `arg:"--ast" help:"print the loaded program as JSON instead of running it"`
}

func (args) Description() string {
	return "mslash runs a line-oriented MSlash script."
}

func main() {
	var a args
	arg.MustParse(&a)
	os.Exit(run(a))
}

func run(a args) int {
	cfg, err := config.Load(a.Config)
	if err != nil {
		printError(err)
		return 1
	}
	if a.Debug {
		cfg.Debug = true
	}

	logger := zap.NewNop()
	if cfg.Debug {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}
	defer logger.Sync() //nolint:errcheck

	console := newLineConsole(cfg)
	defer console.Close()

	path := a.File
	if path == "" {
		line, err := console.prompt(filenamePrompt)
		if err != nil {
			printError(errors.Wrap(err, "read filename"))
			return 1
		}
		path = strings.TrimSpace(line)
		if path == "" {
			printError(errors.New("no file given"))
			return 1
		}
	}

	prog, table, err := module.NewResolver(module.OSLoader{}, logger).LoadFile(path)
	if err != nil {
		printError(err)
		return 1
	}

	if a.AST {
		printJSON(ast.NodeToMap(prog))
		return 0
	}

	interp := runtime.NewInterpreter(os.Stdout,
		runtime.WithConsole(console),
		runtime.WithLogger(logger),
		runtime.WithMaxDepth(cfg.MaxDepth),
	)
	if err := interp.Run(prog, table); err != nil {
		printError(err)
		return 1
	}
	if interp.Halted() {
		logger.Debug("stopped by break", zap.String("file", path))
	}
	return 0
}
