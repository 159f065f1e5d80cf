// Package diag provides the error taxonomy shared by the loader, the module
// resolver and the interpreter.
package diag

import (
	"fmt"
	"mslash/internal/span"

	"github.com/pkg/errors"
)

// Kind classifies an error by the phase that detects it.
type Kind int

const (
	SyntaxError Kind = iota // malformed source, detected at load time
	ImportError             // steal resolution failures
	EvalError               // expression evaluation failures
	CallError               // function, class and method invocation failures
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case ImportError:
		return "ImportError"
	case EvalError:
		return "EvalError"
	case CallError:
		return "CallError"
	default:
		return "UnknownError"
	}
}

// Stable error codes.
const (
	// SyntaxError
	CodeUnterminatedComment   = "UnterminatedComment"
	CodeUnterminatedString    = "UnterminatedString"
	CodeUnexpectedEnd         = "UnexpectedEnd"
	CodeMismatchedEnd         = "MismatchedEnd"
	CodeUnclosedBlock         = "UnclosedBlock"
	CodeNestedDeclaration     = "NestedDeclaration"
	CodeInvalidClassBody      = "InvalidClassBody"
	CodeReturnOutsideFunction = "ReturnOutsideFunction"
	CodeMisplacedSteal        = "MisplacedSteal"
	CodeUnknownStatement      = "UnknownStatement"
	CodeInvalidExpression     = "InvalidExpression"
	CodeInvalidDeclaration    = "InvalidDeclaration"

	// ImportError
	CodeModuleNotFound = "ModuleNotFound"
	CodeSymbolNotFound = "SymbolNotFound"
	CodeImportCycle    = "ImportCycle"

	// EvalError
	CodeUndefinedVariable = "UndefinedVariable"
	CodeUndefinedField    = "UndefinedField"
	CodeDivisionByZero    = "DivisionByZero"
	CodeTypeMismatch      = "TypeMismatch"
	CodeIndexOutOfRange   = "IndexOutOfRange"
	CodeInvalidArgument   = "InvalidArgument"
	CodeInputFailed       = "InputFailed"

	// CallError
	CodeArityMismatch     = "ArityMismatch"
	CodeUndefinedFunction = "UndefinedFunction"
	CodeUndefinedClass    = "UndefinedClass"
	CodeUndefinedMethod   = "UndefinedMethod"
	CodeNotCallable       = "NotCallable"
	CodeRecursionLimit    = "RecursionLimit"
)

// Error is a located interpreter error.
type Error struct {
	Kind    Kind      `json:"kind"`
	Code    string    `json:"code"`           // stable error code, e.g. "UndefinedVariable"
	Message string    `json:"message"`        // human-readable description
	Span    span.Span `json:"span"`           // source location
	Hint    string    `json:"hint,omitempty"` // optional hint
	Cause   error     `json:"-"`
}

// Error returns a human-readable representation of the error.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s(%s): %s", e.Kind, e.Code, e.Message)
	if !e.Span.IsZero() {
		msg = e.Span.Start.String() + ": " + msg
	}
	if e.Hint != "" {
		msg += " (hint: " + e.Hint + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithHint attaches a hint and returns e.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// Errorf creates an error of the given kind at the given span.
func Errorf(kind Kind, code string, s span.Span, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Span:    s,
	}
}

// Wrap creates an error of the given kind that records cause, with the
// stack at the point of wrapping, as its origin.
func Wrap(kind Kind, code string, s span.Span, cause error, format string, args ...interface{}) *Error {
	e := Errorf(kind, code, s, format, args...)
	e.Cause = errors.WithStack(cause)
	return e
}

// Is reports whether err is an *Error with the given kind and code.
// An empty code matches any code of that kind.
func Is(err error, kind Kind, code string) bool {
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Kind == kind && (code == "" || de.Code == code)
}
