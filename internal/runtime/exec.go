package runtime

import (
	"fmt"
	"io"
	"mslash/internal/ast"
	"mslash/internal/diag"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ============================================================
// Statement execution
// ============================================================

// execBlock runs stmts in env and restores the previous environment.
// Only calls create scopes; if and loop bodies share their enclosing one.
func (i *Interpreter) execBlock(stmts []ast.Stmt, env *Environment) (ExecResult, error) {
	prev := i.env
	i.env = env
	defer func() { i.env = prev }()

	for _, stmt := range stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.Signal != SigNone {
			return result, nil
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execStmt(stmt ast.Stmt) (ExecResult, error) {
	if ce := i.logger.Check(zap.DebugLevel, "exec"); ce != nil {
		ce.Write(zap.String("stmt", ast.KindOf(stmt)), zap.Stringer("at", stmt.GetSpan().Start))
	}

	switch s := stmt.(type) {
	case *ast.AssignStmt:
		return resultNone, i.execAssign(s)

	case *ast.SayStmt:
		return resultNone, i.printValue(s.Value)

	case *ast.MathStmt:
		return resultNone, i.printValue(s.Value)

	case *ast.InputStmt:
		return resultNone, i.execInput(s)

	case *ast.EmptyLineStmt:
		n, err := i.evalCount(s.Count, "emptyline")
		if err != nil {
			return resultNone, err
		}
		_, err = io.WriteString(i.output, strings.Repeat("\n", n))
		return resultNone, err

	case *ast.PauseStmt:
		if err := i.console.Pause(); err != nil && !errors.Is(err, io.EOF) {
			return resultNone, diag.Wrap(diag.EvalError, diag.CodeInputFailed, s.Span, err, "pause failed: %v", err)
		}
		return resultNone, nil

	case *ast.BreakStmt:
		return resultNone, errHalt

	case *ast.ReturnStmt:
		var val Value = NoneVal{}
		if s.Value != nil {
			v, err := i.evalExpr(s.Value)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		return ExecResult{Signal: SigReturn, Value: val}, nil

	case *ast.HelpStmt:
		_, err := io.WriteString(i.output, helpText)
		return resultNone, err

	case *ast.ExprStmt:
		_, err := i.evalExpr(s.Expr)
		return resultNone, err

	case *ast.IfStmt:
		return i.execIf(s)

	case *ast.LoopStmt:
		return i.execLoop(s)

	default:
		return resultNone, evalErr(diag.CodeInvalidExpression, stmt.GetSpan(), "unhandled statement type: %T", stmt)
	}
}

func (i *Interpreter) printValue(expr ast.Expr) error {
	val, err := i.evalExpr(expr)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(i.output, val.String())
	return err
}

func (i *Interpreter) execAssign(s *ast.AssignStmt) error {
	val, err := i.evalExpr(s.Value)
	if err != nil {
		return err
	}

	switch target := s.Target.(type) {
	case *ast.IdentExpr:
		i.env.Set(target.Name, val)
		return nil

	case *ast.MemberExpr:
		objVal, err := i.evalExpr(target.Object)
		if err != nil {
			return err
		}
		switch obj := objVal.(type) {
		case *ObjectVal:
			obj.Fields[target.Property] = val
			return nil
		case *MapVal:
			obj.Set(StringVal(target.Property), val)
			return nil
		}
		return evalErr(diag.CodeTypeMismatch, target.Span,
			"cannot set field '%s' on a value of type '%s'", target.Property, objVal.TypeName())

	case *ast.IndexExpr:
		objVal, err := i.evalExpr(target.Object)
		if err != nil {
			return err
		}
		idxVal, err := i.evalExpr(target.Index)
		if err != nil {
			return err
		}
		switch obj := objVal.(type) {
		case *ListVal:
			idx, err := listIndex(obj, idxVal, target.Span)
			if err != nil {
				return err
			}
			obj.Elements[idx] = val
			return nil
		case *MapVal:
			if err := checkMapKey(idxVal); err != nil {
				return located(err, target.Index.GetSpan())
			}
			obj.Set(idxVal, val)
			return nil
		}
		return evalErr(diag.CodeTypeMismatch, target.Span,
			"cannot index-assign into a value of type '%s'", objVal.TypeName())

	default:
		return evalErr(diag.CodeInvalidExpression, s.Span, "invalid assignment target")
	}
}

func (i *Interpreter) execInput(s *ast.InputStmt) error {
	line, err := i.console.ReadLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return diag.Wrap(diag.EvalError, diag.CodeInputFailed, s.Span, err, "reading input for '%s': %v", s.Name, err)
	}
	i.env.Set(s.Name, StringVal(line))
	return nil
}

func (i *Interpreter) execIf(s *ast.IfStmt) (ExecResult, error) {
	cond, err := i.evalExpr(s.Condition)
	if err != nil {
		return resultNone, err
	}

	if IsTruthy(cond) {
		return i.execBlock(s.Then, i.env)
	}
	if elseBody, ok := s.Else.Get(); ok {
		return i.execBlock(elseBody, i.env)
	}
	return resultNone, nil
}

func (i *Interpreter) execLoop(s *ast.LoopStmt) (ExecResult, error) {
	n, err := i.evalCount(s.Count, "loop")
	if err != nil {
		return resultNone, err
	}

	for k := 0; k < n; k++ {
		result, err := i.execBlock(s.Body, i.env)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigReturn {
			return result, nil
		}
	}
	return resultNone, nil
}

// evalCount evaluates a repeat count. Floats truncate and negative counts
// mean zero.
func (i *Interpreter) evalCount(expr ast.Expr, what string) (int, error) {
	val, err := i.evalExpr(expr)
	if err != nil {
		return 0, err
	}
	n, ok := ToInt64(val)
	if !ok {
		return 0, evalErr(diag.CodeTypeMismatch, expr.GetSpan(),
			"'%s' needs a number, got '%s'", what, val.TypeName())
	}
	if n < 0 {
		return 0, nil
	}
	return int(n), nil
}
