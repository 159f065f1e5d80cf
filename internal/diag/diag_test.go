package diag

import (
	"io"
	"mslash/internal/span"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	at := span.Span{Start: span.Position{File: "a.mslash", Line: 2, Column: 1}}
	err := Wrap(EvalError, CodeInputFailed, at, io.ErrUnexpectedEOF, "reading input: %v", io.ErrUnexpectedEOF)

	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.True(t, Is(err, EvalError, CodeInputFailed))
	assert.True(t, Is(err, EvalError, ""))
	assert.False(t, Is(err, CallError, ""))
	assert.Equal(t, "a.mslash:2:1: EvalError(InputFailed): reading input: unexpected EOF", err.Error())
}

func TestIsFindsWrappedError(t *testing.T) {
	inner := Errorf(SyntaxError, CodeUnclosedBlock, span.Span{}, "open block").WithHint("add 'endif'")
	err := errors.Wrap(inner, "load")

	require.True(t, Is(err, SyntaxError, CodeUnclosedBlock))
	assert.Equal(t, "SyntaxError(UnclosedBlock): open block (hint: add 'endif')", inner.Error())
}
