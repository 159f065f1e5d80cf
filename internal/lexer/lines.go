package lexer

import (
	"mslash/internal/diag"
	"mslash/internal/span"
	"strings"
)

// Line is one logical statement line with comments removed and whitespace trimmed.
type Line struct {
	Span span.Span
	Text string
}

// Pos returns the position of the byte at offset within Text.
func (l Line) Pos(offset int) span.Position {
	return l.Span.Start.Advance(offset)
}

// SplitLines turns raw script text into its ordered statement lines.
// Brace-delimited comments are removed; "${" opens an interpolation segment
// that is kept verbatim. Blank and comment-only lines are dropped.
func SplitLines(source, filename string) ([]Line, error) {
	var lines []Line
	for idx, raw := range strings.Split(source, "\n") {
		lineNo := idx + 1
		raw = strings.TrimRight(raw, "\r")

		text, offsets, err := stripComments(raw, span.Position{File: filename, Line: lineNo, Column: 1})
		if err != nil {
			return nil, err
		}

		lead := len(text) - len(strings.TrimLeft(text, " \t"))
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		start := span.Position{File: filename, Line: lineNo, Column: offsets[lead] + 1}
		end := span.Position{File: filename, Line: lineNo, Column: len(raw) + 1}
		lines = append(lines, Line{Span: span.Span{Start: start, End: end}, Text: text})
	}
	return lines, nil
}

// stripComments removes "{...}" comments from one raw line. The returned
// offsets map each byte of the result back to its column in raw (0-based).
func stripComments(raw string, lineStart span.Position) (string, []int, error) {
	var sb strings.Builder
	offsets := make([]int, 0, len(raw))
	keep := func(from, to int) {
		sb.WriteString(raw[from:to])
		for k := from; k < to; k++ {
			offsets = append(offsets, k)
		}
	}

	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch == '$' && i+1 < len(raw) && raw[i+1] == '{' {
			end := matchBrace(raw, i+1)
			if end < 0 {
				// Left for the expression parser to report.
				keep(i, len(raw))
				break
			}
			keep(i, end+1)
			i = end
			continue
		}
		if ch == '{' {
			end := strings.IndexByte(raw[i+1:], '}')
			if end < 0 {
				pos := lineStart.Advance(i)
				return "", nil, diag.Errorf(diag.SyntaxError, diag.CodeUnterminatedComment,
					span.Span{Start: pos, End: pos}, "unterminated comment").
					WithHint("close the comment with '}'")
			}
			i += end + 1
			continue
		}
		keep(i, i+1)
	}
	return sb.String(), offsets, nil
}

// matchBrace returns the index of the '}' matching the '{' at open, or -1.
func matchBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
