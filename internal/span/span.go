// Package span provides source position and span types used across the interpreter.
package span

import "fmt"

// Position represents a position in a script file.
type Position struct {
	File   string `json:"file,omitempty"` // script path as given to the loader
	Line   int    `json:"line"`           // 1-based line number
	Column int    `json:"column"`         // 1-based column number, 0 if unknown
}

func (p Position) String() string {
	loc := fmt.Sprintf("%d", p.Line)
	if p.Column > 0 {
		loc = fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	if p.File == "" {
		return loc
	}
	return p.File + ":" + loc
}

// Advance returns the position n columns to the right on the same line.
func (p Position) Advance(n int) Position {
	p.Column += n
	return p
}

// Span represents a range in source code [Start, End).
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (s Span) String() string {
	return s.Start.String()
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool {
	return s.Start.Line == 0
}

// Line returns a span covering a whole source line.
func Line(file string, line int) Span {
	p := Position{File: file, Line: line}
	return Span{Start: p, End: p}
}
