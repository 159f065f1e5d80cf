package parser

import (
	"mslash/internal/ast"
	"mslash/internal/diag"
	"mslash/internal/span"
	"strings"
)

// parseString decodes the raw body of a string literal (or a bare say
// message) into a StringLiteral, or a TemplateLiteral when it carries ${...}
// segments. bodyStart is the position of raw[0].
func parseString(raw string, bodyStart span.Position, whole span.Span) (ast.Expr, error) {
	var parts []string
	var exprs []ast.Expr
	var sb strings.Builder

	for i := 0; i < len(raw); i++ {
		ch := raw[i]

		if ch == '\\' && i+1 < len(raw) {
			i++
			sb.WriteString(unescape(raw[i]))
			continue
		}

		if ch == '$' && i+1 < len(raw) && raw[i+1] == '{' {
			end := interpolationEnd(raw, i+1)
			if end < 0 {
				at := bodyStart.Advance(i)
				return nil, diag.Errorf(diag.SyntaxError, diag.CodeUnterminatedString,
					span.Span{Start: at, End: at}, "unterminated '${' in string").
					WithHint("close the interpolation with '}'")
			}
			inner := raw[i+2 : end]
			if strings.TrimSpace(inner) == "" {
				at := bodyStart.Advance(i)
				return nil, diag.Errorf(diag.SyntaxError, diag.CodeInvalidExpression,
					span.Span{Start: at, End: bodyStart.Advance(end + 1)}, "empty interpolation '${}'")
			}
			expr, err := ParseExpr(inner, bodyStart.Advance(i+2))
			if err != nil {
				return nil, err
			}
			parts = append(parts, sb.String())
			exprs = append(exprs, expr)
			sb.Reset()
			i = end
			continue
		}

		sb.WriteByte(ch)
	}

	if len(exprs) == 0 {
		return &ast.StringLiteral{ExprBase: exprBase(whole), Value: sb.String()}, nil
	}
	parts = append(parts, sb.String())
	return &ast.TemplateLiteral{ExprBase: exprBase(whole), Parts: parts, Exprs: exprs}, nil
}

func unescape(ch byte) string {
	switch ch {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\', '"', '\'', '$', '{', '}':
		return string(ch)
	default:
		return "\\" + string(ch)
	}
}

// interpolationEnd returns the index of the '}' closing the '{' at open.
// Braces inside quoted strings are ignored. Returns -1 if unclosed.
func interpolationEnd(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"', '\'':
			quote := s[i]
			for i++; i < len(s) && s[i] != quote; i++ {
				if s[i] == '\\' {
					i++
				}
			}
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
