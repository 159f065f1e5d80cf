package runtime

import (
	"io"
	"mslash/internal/ast"
	"mslash/internal/diag"
	"mslash/internal/module"
	"mslash/internal/span"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone   ExecSignal = iota
	SigReturn            // return from the current call
)

// ExecResult carries a control flow signal and an optional value (for return).
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

var resultNone = ExecResult{Signal: SigNone}

// errHalt unwinds every active call and block when `break` runs.
var errHalt = errors.New("halt")

// DefaultMaxDepth bounds nested user-function calls.
const DefaultMaxDepth = 1000

// ============================================================
// Errors
// ============================================================

func evalErr(code string, s span.Span, format string, args ...interface{}) error {
	return diag.Errorf(diag.EvalError, code, s, format, args...)
}

func callErr(code string, s span.Span, format string, args ...interface{}) error {
	return diag.Errorf(diag.CallError, code, s, format, args...)
}

// located attaches s to an error raised without a location.
func located(err error, s span.Span) error {
	var de *diag.Error
	if errors.As(err, &de) && de.Span.IsZero() {
		de.Span = s
	}
	return err
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks a loaded program and executes it.
type Interpreter struct {
	global  *Environment
	env     *Environment
	symbols *module.Table // table of the file whose code is running

	output   io.Writer
	console  Console
	logger   *zap.Logger
	builtins map[string]*BuiltinVal

	depth    int
	maxDepth int
	halted   bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithConsole sets the collaborator used by input and pause.
func WithConsole(c Console) Option {
	return func(i *Interpreter) { i.console = c }
}

// WithLogger enables statement and call tracing at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(i *Interpreter) { i.maxDepth = n }
}

// NewInterpreter creates a new interpreter writing program output to output.
// Without WithConsole, input reads as empty and pause returns immediately.
func NewInterpreter(output io.Writer, opts ...Option) *Interpreter {
	global := NewEnvironment(nil)
	i := &Interpreter{
		global:   global,
		env:      global,
		output:   output,
		logger:   zap.NewNop(),
		builtins: newBuiltins(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.console == nil {
		i.console = NewStreamConsole(strings.NewReader(""), io.Discard)
	}
	return i
}

// Run executes the main program of prog with table as its symbol table.
// A `break` ends the run early without error; see Halted.
func (i *Interpreter) Run(prog *ast.Program, table *module.Table) error {
	i.symbols = table
	i.halted = false
	i.logger.Debug("run start",
		zap.String("file", prog.File),
		zap.Strings("symbols", table.Names()),
		zap.Int("statements", len(prog.Main)))

	_, err := i.execBlock(prog.Main, i.global)
	if errors.Is(err, errHalt) {
		i.halted = true
		i.logger.Debug("run halted by break")
		return nil
	}
	return err
}

// Halted reports whether the last Run was ended by `break`.
func (i *Interpreter) Halted() bool {
	return i.halted
}

// Env returns the top-level environment.
func (i *Interpreter) Env() *Environment {
	return i.global
}
