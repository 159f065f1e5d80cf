package parser

import (
	"mslash/internal/ast"
	"mslash/internal/diag"
	"mslash/internal/lexer"
	"mslash/internal/span"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

type blockKind int

const (
	blockFunc blockKind = iota
	blockClass
	blockIf
	blockLoop
)

var blockNames = map[blockKind]string{
	blockFunc:  "func",
	blockClass: "class",
	blockIf:    "if",
	blockLoop:  "loop",
}

var blockEnds = map[string]blockKind{
	"endfunc":  blockFunc,
	"endclass": blockClass,
	"endif":    blockIf,
	"endloop":  blockLoop,
}

var (
	funcHeader  = regexp.MustCompile(`^([\pL_][\pL\pN_]*)\s*\((.*)\)$`)
	stealHeader = regexp.MustCompile(`^([\pL_][\pL\pN_]*)\s+from\s+(.+)$`)
)

// frame is one open block on the loader's stack.
type frame struct {
	kind     blockKind
	start    span.Span
	body     []ast.Stmt
	elseBody []ast.Stmt
	inElse   bool

	fn    *ast.FuncDef
	class *ast.ClassDef
	cond  *ast.IfStmt
	loop  *ast.LoopStmt
}

type loader struct {
	prog  *ast.Program
	stack []*frame
}

// Load splits a script into lines, matches every block, and returns the
// file's declarations and main program. All syntax errors surface here,
// before anything executes.
func Load(source, filename string) (*ast.Program, error) {
	lines, err := lexer.SplitLines(source, filename)
	if err != nil {
		return nil, err
	}

	l := &loader{prog: &ast.Program{File: filename}}
	l.prog.Span = span.Line(filename, 1)
	for _, ln := range lines {
		if err := l.line(ln); err != nil {
			return nil, err
		}
	}

	if top := l.top(); top != nil {
		return nil, diag.Errorf(diag.SyntaxError, diag.CodeUnclosedBlock, top.start,
			"'%s' block opened on line %d is never closed", blockNames[top.kind], top.start.Start.Line).
			WithHint("add 'end" + blockNames[top.kind] + "'")
	}
	return l.prog, nil
}

func (l *loader) top() *frame {
	if len(l.stack) == 0 {
		return nil
	}
	return l.stack[len(l.stack)-1]
}

func (l *loader) push(f *frame) {
	l.stack = append(l.stack, f)
}

func (l *loader) inFunc() bool {
	for _, f := range l.stack {
		if f.kind == blockFunc {
			return true
		}
	}
	return false
}

func (l *loader) line(ln lexer.Line) error {
	kw, rest, off := splitKeyword(ln.Text)

	switch kw {
	case "func":
		return l.openFunc(ln, rest)
	case "class":
		return l.openClass(ln, rest)
	case "if":
		return l.openIf(ln, rest, off)
	case "else":
		return l.elseBranch(ln, rest)
	case "loop":
		return l.openLoop(ln, rest, off)
	case "steal":
		return l.steal(ln, rest)
	case "endfunc", "endclass", "endif", "endloop":
		if rest != "" {
			return diag.Errorf(diag.SyntaxError, diag.CodeInvalidExpression, ln.Span,
				"'%s' takes no argument", kw)
		}
		return l.close(ln, kw)
	}

	stmt, err := ParseStatement(ln)
	if err != nil {
		return err
	}
	if _, ok := stmt.(*ast.ReturnStmt); ok && !l.inFunc() {
		return diag.Errorf(diag.SyntaxError, diag.CodeReturnOutsideFunction, ln.Span,
			"'return' outside of a function")
	}
	return l.emit(stmt)
}

// emit appends a statement to the innermost open block or the main program.
func (l *loader) emit(stmt ast.Stmt) error {
	top := l.top()
	switch {
	case top == nil:
		l.prog.Main = append(l.prog.Main, stmt)
	case top.kind == blockClass:
		return diag.Errorf(diag.SyntaxError, diag.CodeInvalidClassBody, stmt.GetSpan(),
			"class '%s' may only contain method declarations", top.class.Name)
	case top.inElse:
		top.elseBody = append(top.elseBody, stmt)
	default:
		top.body = append(top.body, stmt)
	}
	return nil
}

func (l *loader) openFunc(ln lexer.Line, rest string) error {
	if top := l.top(); top != nil && !(top.kind == blockClass && len(l.stack) == 1) {
		return diag.Errorf(diag.SyntaxError, diag.CodeNestedDeclaration, ln.Span,
			"a function cannot be declared inside a '%s' block", blockNames[top.kind]).
			WithHint("declare functions at the top level or directly inside a class")
	}

	m := funcHeader.FindStringSubmatch(rest)
	if m == nil {
		return diag.Errorf(diag.SyntaxError, diag.CodeInvalidDeclaration, ln.Span,
			"malformed function header '%s'", rest).
			WithHint("expected 'func name(a, b)'")
	}

	var params []string
	if strings.TrimSpace(m[2]) != "" {
		params = lo.Map(strings.Split(m[2], ","), func(p string, _ int) string {
			return strings.TrimSpace(p)
		})
	}
	for _, p := range params {
		if !lexer.IsIdent(p) {
			return diag.Errorf(diag.SyntaxError, diag.CodeInvalidDeclaration, ln.Span,
				"invalid parameter name '%s' in function '%s'", p, m[1])
		}
	}
	if len(lo.Uniq(params)) != len(params) {
		return diag.Errorf(diag.SyntaxError, diag.CodeInvalidDeclaration, ln.Span,
			"duplicate parameter name in function '%s'", m[1])
	}

	fn := &ast.FuncDef{DeclBase: makeDeclBase(ln.Span), Name: m[1], Params: params}
	l.push(&frame{kind: blockFunc, start: ln.Span, fn: fn})
	return nil
}

func (l *loader) openClass(ln lexer.Line, rest string) error {
	if top := l.top(); top != nil {
		return diag.Errorf(diag.SyntaxError, diag.CodeNestedDeclaration, ln.Span,
			"a class cannot be declared inside a '%s' block", blockNames[top.kind])
	}
	if !lexer.IsIdent(rest) {
		return diag.Errorf(diag.SyntaxError, diag.CodeInvalidDeclaration, ln.Span,
			"malformed class header '%s'", rest).
			WithHint("expected 'class Name'")
	}

	class := &ast.ClassDef{DeclBase: makeDeclBase(ln.Span), Name: rest, Methods: map[string]*ast.FuncDef{}}
	l.push(&frame{kind: blockClass, start: ln.Span, class: class})
	return nil
}

func (l *loader) openIf(ln lexer.Line, rest string, off int) error {
	if rest == "" {
		return diag.Errorf(diag.SyntaxError, diag.CodeInvalidExpression, ln.Span, "'if' needs a condition")
	}
	cond, err := ParseExpr(rest, ln.Pos(off))
	if err != nil {
		return err
	}
	stmt := &ast.IfStmt{StmtBase: makeStmtBase(ln.Span), Condition: cond}
	if err := l.emit(stmt); err != nil {
		return err
	}
	l.push(&frame{kind: blockIf, start: ln.Span, cond: stmt})
	return nil
}

func (l *loader) elseBranch(ln lexer.Line, rest string) error {
	if rest != "" {
		return diag.Errorf(diag.SyntaxError, diag.CodeInvalidExpression, ln.Span, "'else' takes no argument")
	}
	top := l.top()
	if top == nil || top.kind != blockIf {
		return diag.Errorf(diag.SyntaxError, diag.CodeUnexpectedEnd, ln.Span, "'else' without a matching 'if'")
	}
	if top.inElse {
		return diag.Errorf(diag.SyntaxError, diag.CodeUnexpectedEnd, ln.Span,
			"second 'else' for the 'if' on line %d", top.start.Start.Line)
	}
	top.inElse = true
	return nil
}

func (l *loader) openLoop(ln lexer.Line, rest string, off int) error {
	if rest == "" {
		return diag.Errorf(diag.SyntaxError, diag.CodeInvalidExpression, ln.Span, "'loop' needs a count")
	}
	count, err := ParseExpr(rest, ln.Pos(off))
	if err != nil {
		return err
	}
	stmt := &ast.LoopStmt{StmtBase: makeStmtBase(ln.Span), Count: count}
	if err := l.emit(stmt); err != nil {
		return err
	}
	l.push(&frame{kind: blockLoop, start: ln.Span, loop: stmt})
	return nil
}

func (l *loader) steal(ln lexer.Line, rest string) error {
	if top := l.top(); top != nil {
		return diag.Errorf(diag.SyntaxError, diag.CodeMisplacedSteal, ln.Span,
			"'steal' inside a '%s' block", blockNames[top.kind]).
			WithHint("move 'steal' to the top level of the file")
	}
	m := stealHeader.FindStringSubmatch(rest)
	if m == nil {
		return diag.Errorf(diag.SyntaxError, diag.CodeInvalidDeclaration, ln.Span,
			"malformed steal '%s'", rest).
			WithHint("expected 'steal name from file.mslash'")
	}
	path := strings.Trim(strings.TrimSpace(m[2]), `"'`)
	l.prog.Decls = append(l.prog.Decls, &ast.StealDecl{DeclBase: makeDeclBase(ln.Span), Symbol: m[1], Path: path})
	return nil
}

func (l *loader) close(ln lexer.Line, kw string) error {
	want := blockEnds[kw]
	top := l.top()
	if top == nil {
		return diag.Errorf(diag.SyntaxError, diag.CodeUnexpectedEnd, ln.Span,
			"'%s' without a matching '%s'", kw, blockNames[want])
	}
	if top.kind != want {
		return diag.Errorf(diag.SyntaxError, diag.CodeMismatchedEnd, ln.Span,
			"'%s' cannot close the '%s' block opened on line %d", kw, blockNames[top.kind], top.start.Start.Line).
			WithHint("expected 'end" + blockNames[top.kind] + "'")
	}
	l.stack = l.stack[:len(l.stack)-1]
	extent := span.Span{Start: top.start.Start, End: ln.Span.End}

	switch top.kind {
	case blockFunc:
		top.fn.Body = top.body
		top.fn.Span = extent
		if parent := l.top(); parent != nil {
			if _, dup := parent.class.Methods[top.fn.Name]; !dup {
				parent.class.Order = append(parent.class.Order, top.fn.Name)
			}
			parent.class.Methods[top.fn.Name] = top.fn
		} else {
			l.prog.Decls = append(l.prog.Decls, top.fn)
		}
	case blockClass:
		top.class.Span = extent
		l.prog.Decls = append(l.prog.Decls, top.class)
	case blockIf:
		top.cond.Then = top.body
		if top.inElse {
			top.cond.Else = mo.Some(top.elseBody)
		}
		top.cond.Span = extent
	case blockLoop:
		top.loop.Body = top.body
		top.loop.Span = extent
	}
	return nil
}
