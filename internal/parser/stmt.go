package parser

import (
	"mslash/internal/ast"
	"mslash/internal/diag"
	"mslash/internal/lexer"
	"strings"
)

// stmtParser parses the remainder of a line after its leading keyword.
// rest is trimmed and begins at byte offset off of the line text.
type stmtParser func(ln lexer.Line, rest string, off int) (ast.Stmt, error)

// simpleStatements dispatches single-line commands by keyword.
var simpleStatements = map[string]stmtParser{
	"var":       parseVar,
	"say":       parseSay,
	"math":      parseMath,
	"input":     parseInput,
	"emptyline": parseEmptyLine,
	"pause":     bare(func(b ast.StmtBase) ast.Stmt { return &ast.PauseStmt{StmtBase: b} }),
	"break":     bare(func(b ast.StmtBase) ast.Stmt { return &ast.BreakStmt{StmtBase: b} }),
	"help":      bare(func(b ast.StmtBase) ast.Stmt { return &ast.HelpStmt{StmtBase: b} }),
	"return":    parseReturn,
}

// splitKeyword splits a line into its leading word and the trimmed rest.
// The word counts as a keyword only if it is followed by whitespace or
// the end of the line; otherwise kw is empty.
func splitKeyword(text string) (kw, rest string, off int) {
	n := 0
	for n < len(text) && (text[n] >= 'a' && text[n] <= 'z') {
		n++
	}
	if n == 0 || (n < len(text) && text[n] != ' ' && text[n] != '\t') {
		return "", text, 0
	}
	rest = strings.TrimLeft(text[n:], " \t")
	return text[:n], rest, len(text) - len(rest)
}

// ParseStatement parses one non-structural statement line.
func ParseStatement(ln lexer.Line) (ast.Stmt, error) {
	kw, rest, off := splitKeyword(ln.Text)
	if parse, ok := simpleStatements[kw]; ok {
		return parse(ln, rest, off)
	}

	if eq := assignIndex(ln.Text); eq >= 0 {
		return parseAssign(ln, ln.Text, 0, eq)
	}

	expr, err := ParseExpr(ln.Text, ln.Span.Start)
	if err != nil {
		return nil, unknownStatement(ln)
	}
	switch expr.(type) {
	case *ast.CallExpr, *ast.NewExpr:
		return &ast.ExprStmt{StmtBase: makeStmtBase(ln.Span), Expr: expr}, nil
	}
	return nil, unknownStatement(ln)
}

func unknownStatement(ln lexer.Line) error {
	word := ln.Text
	if i := strings.IndexAny(word, " \t("); i > 0 {
		word = word[:i]
	}
	return diag.Errorf(diag.SyntaxError, diag.CodeUnknownStatement, ln.Span,
		"unknown statement '%s'", word).
		WithHint("type 'help' for the list of commands")
}

func parseVar(ln lexer.Line, rest string, off int) (ast.Stmt, error) {
	eq := assignIndex(rest)
	if eq < 0 {
		return nil, diag.Errorf(diag.SyntaxError, diag.CodeInvalidDeclaration, ln.Span,
			"expected 'var <name> = <value>'")
	}
	return parseAssign(ln, rest, off, eq)
}

func parseAssign(ln lexer.Line, text string, off, eq int) (ast.Stmt, error) {
	targetSrc := strings.TrimRight(text[:eq], " \t")
	if targetSrc == "" {
		return nil, diag.Errorf(diag.SyntaxError, diag.CodeInvalidDeclaration, ln.Span,
			"missing assignment target")
	}
	target, err := ParseExpr(targetSrc, ln.Pos(off))
	if err != nil {
		return nil, err
	}
	switch target.(type) {
	case *ast.IdentExpr, *ast.MemberExpr, *ast.IndexExpr:
	default:
		return nil, diag.Errorf(diag.SyntaxError, diag.CodeInvalidDeclaration, target.GetSpan(),
			"cannot assign to '%s'", targetSrc)
	}

	valueSrc := text[eq+1:]
	trimmed := strings.TrimLeft(valueSrc, " \t")
	if strings.TrimSpace(trimmed) == "" {
		return nil, diag.Errorf(diag.SyntaxError, diag.CodeInvalidDeclaration, ln.Span,
			"missing value for '%s'", targetSrc)
	}
	value, err := ParseExpr(trimmed, ln.Pos(off+eq+1+len(valueSrc)-len(trimmed)))
	if err != nil {
		return nil, err
	}
	return &ast.AssignStmt{StmtBase: makeStmtBase(ln.Span), Target: target, Value: value}, nil
}

// parseSay accepts an expression, falling back to the text itself (with
// ${...} interpolation) when the argument is not a valid expression.
func parseSay(ln lexer.Line, rest string, off int) (ast.Stmt, error) {
	base := makeStmtBase(ln.Span)
	if rest == "" {
		return &ast.SayStmt{StmtBase: base, Value: &ast.StringLiteral{ExprBase: exprBase(ln.Span)}}, nil
	}
	if expr, err := ParseExpr(rest, ln.Pos(off)); err == nil {
		return &ast.SayStmt{StmtBase: base, Value: expr}, nil
	}
	text, err := parseString(rest, ln.Pos(off), ln.Span)
	if err != nil {
		return nil, err
	}
	return &ast.SayStmt{StmtBase: base, Value: text}, nil
}

func parseMath(ln lexer.Line, rest string, off int) (ast.Stmt, error) {
	if rest == "" {
		return nil, diag.Errorf(diag.SyntaxError, diag.CodeInvalidExpression, ln.Span,
			"'math' needs an expression")
	}
	expr, err := ParseExpr(rest, ln.Pos(off))
	if err != nil {
		return nil, err
	}
	return &ast.MathStmt{StmtBase: makeStmtBase(ln.Span), Value: expr}, nil
}

func parseInput(ln lexer.Line, rest string, off int) (ast.Stmt, error) {
	if !lexer.IsIdent(rest) {
		return nil, diag.Errorf(diag.SyntaxError, diag.CodeInvalidDeclaration, ln.Span,
			"'input' needs a variable name, got '%s'", rest)
	}
	return &ast.InputStmt{StmtBase: makeStmtBase(ln.Span), Name: rest}, nil
}

func parseEmptyLine(ln lexer.Line, rest string, off int) (ast.Stmt, error) {
	stmt := &ast.EmptyLineStmt{StmtBase: makeStmtBase(ln.Span)}
	if rest == "" {
		stmt.Count = &ast.IntLiteral{ExprBase: exprBase(ln.Span), Value: 1}
		return stmt, nil
	}
	count, err := ParseExpr(rest, ln.Pos(off))
	if err != nil {
		return nil, err
	}
	stmt.Count = count
	return stmt, nil
}

func parseReturn(ln lexer.Line, rest string, off int) (ast.Stmt, error) {
	stmt := &ast.ReturnStmt{StmtBase: makeStmtBase(ln.Span)}
	if rest == "" {
		return stmt, nil
	}
	value, err := ParseExpr(rest, ln.Pos(off))
	if err != nil {
		return nil, err
	}
	stmt.Value = value
	return stmt, nil
}

// bare builds a parser for commands that take no argument.
func bare(build func(ast.StmtBase) ast.Stmt) stmtParser {
	return func(ln lexer.Line, rest string, off int) (ast.Stmt, error) {
		if rest != "" {
			kw, _, _ := splitKeyword(ln.Text)
			return nil, diag.Errorf(diag.SyntaxError, diag.CodeInvalidExpression, ln.Span,
				"'%s' takes no argument", kw)
		}
		return build(makeStmtBase(ln.Span)), nil
	}
}

// assignIndex returns the byte index of the top-level '=' in s, or -1.
// Comparison operators and text inside strings or brackets are skipped.
func assignIndex(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '"', '\'':
			for i++; i < len(s) && s[i] != ch; i++ {
				if s[i] == '\\' {
					i++
				}
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(s) && s[i+1] == '=' {
				i++
				continue
			}
			if i > 0 && strings.IndexByte("=!<>", s[i-1]) >= 0 {
				continue
			}
			return i
		}
	}
	return -1
}
