package runtime

import (
	"math"
	"mslash/internal/ast"
	"mslash/internal/diag"
	"mslash/internal/span"
	"mslash/internal/token"
	"strings"
	"unicode/utf8"
)

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return IntVal(e.Value), nil
	case *ast.FloatLiteral:
		return FloatVal(e.Value), nil
	case *ast.StringLiteral:
		return StringVal(e.Value), nil
	case *ast.BoolLiteral:
		return BoolVal(e.Value), nil
	case *ast.NoneLiteral:
		return NoneVal{}, nil
	case *ast.TemplateLiteral:
		return i.evalTemplateLiteral(e)
	case *ast.ListLiteral:
		return i.evalListLiteral(e)
	case *ast.MapLiteral:
		return i.evalMapLiteral(e)
	case *ast.IdentExpr:
		return i.evalIdent(e)
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.CallExpr:
		return i.evalCall(e)
	case *ast.MemberExpr:
		return i.evalMember(e)
	case *ast.IndexExpr:
		return i.evalIndex(e)
	case *ast.NewExpr:
		return i.evalNew(e)
	default:
		return nil, evalErr(diag.CodeInvalidExpression, expr.GetSpan(), "unhandled expression type: %T", expr)
	}
}

// evalIdent resolves a bare name: variables first, then functions of the
// running file, then built-ins.
func (i *Interpreter) evalIdent(e *ast.IdentExpr) (Value, error) {
	if val, ok := i.env.Get(e.Name); ok {
		return val, nil
	}
	if fn, ok := i.symbols.Func(e.Name); ok {
		return &FuncRef{Fn: fn}, nil
	}
	if b, ok := i.builtins[e.Name]; ok {
		return b, nil
	}
	err := diag.Errorf(diag.EvalError, diag.CodeUndefinedVariable, e.Span, "undefined variable '%s'", e.Name)
	if _, ok := i.symbols.Class(e.Name); ok {
		err.WithHint("'" + e.Name + "' is a class; create an instance with 'new " + e.Name + "(...)'")
	}
	return nil, err
}

func (i *Interpreter) evalTemplateLiteral(e *ast.TemplateLiteral) (Value, error) {
	var sb strings.Builder
	for idx, part := range e.Parts {
		sb.WriteString(part)
		if idx < len(e.Exprs) {
			val, err := i.evalExpr(e.Exprs[idx])
			if err != nil {
				return nil, err
			}
			sb.WriteString(val.String())
		}
	}
	return StringVal(sb.String()), nil
}

func (i *Interpreter) evalListLiteral(e *ast.ListLiteral) (Value, error) {
	elements := make([]Value, 0, len(e.Elements))
	for _, elemExpr := range e.Elements {
		val, err := i.evalExpr(elemExpr)
		if err != nil {
			return nil, err
		}
		elements = append(elements, val)
	}
	return &ListVal{Elements: elements}, nil
}

func (i *Interpreter) evalMapLiteral(e *ast.MapLiteral) (Value, error) {
	m := NewMap()
	for idx, keyExpr := range e.Keys {
		key, err := i.evalExpr(keyExpr)
		if err != nil {
			return nil, err
		}
		if err := checkMapKey(key); err != nil {
			return nil, located(err, keyExpr.GetSpan())
		}
		val, err := i.evalExpr(e.Values[idx])
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
	}
	return m, nil
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := i.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.MINUS:
		switch v := operand.(type) {
		case IntVal:
			return -v, nil
		case FloatVal:
			return -v, nil
		}
		return nil, evalErr(diag.CodeTypeMismatch, e.Span, "bad operand type for unary -: '%s'", operand.TypeName())
	case token.BANG:
		return BoolVal(!IsTruthy(operand)), nil
	default:
		return nil, evalErr(diag.CodeInvalidExpression, e.Span, "unknown unary operator: %s", e.Op)
	}
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	// Short-circuit for logical operators
	if e.Op == token.AND || e.Op == token.OR {
		return i.evalLogical(e)
	}

	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}
	return binaryOp(e.Op, left, right, e.Span)
}

func (i *Interpreter) evalLogical(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op == token.AND && !IsTruthy(left) {
		return BoolVal(false), nil
	}
	if e.Op == token.OR && IsTruthy(left) {
		return BoolVal(true), nil
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}
	return BoolVal(IsTruthy(right)), nil
}

func binaryOp(op token.Kind, left, right Value, s span.Span) (Value, error) {
	switch op {
	case token.EQ:
		return BoolVal(valuesEqual(left, right)), nil
	case token.NEQ:
		return BoolVal(!valuesEqual(left, right)), nil
	case token.LT, token.LTE, token.GT, token.GTE:
		cmp, ok := compareValues(left, right)
		if !ok {
			return nil, operandError(op, left, right, s)
		}
		switch op {
		case token.LT:
			return BoolVal(cmp < 0), nil
		case token.LTE:
			return BoolVal(cmp <= 0), nil
		case token.GT:
			return BoolVal(cmp > 0), nil
		default:
			return BoolVal(cmp >= 0), nil
		}
	}

	// String concatenation (auto-convert if one side is string)
	if op == token.PLUS {
		_, leftIsStr := left.(StringVal)
		_, rightIsStr := right.(StringVal)
		if leftIsStr || rightIsStr {
			return StringVal(left.String() + right.String()), nil
		}
		if l, ok := left.(*ListVal); ok {
			if r, ok := right.(*ListVal); ok {
				elements := make([]Value, 0, len(l.Elements)+len(r.Elements))
				elements = append(append(elements, l.Elements...), r.Elements...)
				return &ListVal{Elements: elements}, nil
			}
		}
	}

	if op == token.STAR {
		if val, ok, err := repeatOp(left, right, s); ok {
			return val, err
		}
	}

	// Numeric operations
	leftF, leftOk := ToFloat64(left)
	rightF, rightOk := ToFloat64(right)
	if !leftOk || !rightOk {
		return nil, operandError(op, left, right, s)
	}

	// Check if both are ints (for integer arithmetic)
	_, leftIsInt := left.(IntVal)
	_, rightIsInt := right.(IntVal)
	bothInt := leftIsInt && rightIsInt

	switch op {
	case token.PLUS:
		if bothInt {
			return left.(IntVal) + right.(IntVal), nil
		}
		return FloatVal(leftF + rightF), nil
	case token.MINUS:
		if bothInt {
			return left.(IntVal) - right.(IntVal), nil
		}
		return FloatVal(leftF - rightF), nil
	case token.STAR:
		if bothInt {
			return left.(IntVal) * right.(IntVal), nil
		}
		return FloatVal(leftF * rightF), nil
	case token.SLASH:
		if rightF == 0 {
			return nil, evalErr(diag.CodeDivisionByZero, s, "division by zero")
		}
		return FloatVal(leftF / rightF), nil
	case token.PERCENT:
		if rightF == 0 {
			return nil, evalErr(diag.CodeDivisionByZero, s, "modulo by zero")
		}
		if bothInt {
			a, b := int64(left.(IntVal)), int64(right.(IntVal))
			r := a % b
			if r != 0 && (r < 0) != (b < 0) {
				r += b
			}
			return IntVal(r), nil
		}
		r := math.Mod(leftF, rightF)
		if r != 0 && (r < 0) != (rightF < 0) {
			r += rightF
		}
		return FloatVal(r), nil
	default:
		return nil, evalErr(diag.CodeInvalidExpression, s, "unknown binary operator: %s", op)
	}
}

// repeatOp handles str*int and list*int in either order. ok is false when
// the operands are not a sequence and an int.
func repeatOp(left, right Value, s span.Span) (Value, bool, error) {
	seq, count := left, right
	if _, isInt := seq.(IntVal); isInt {
		seq, count = right, left
	}
	n, isInt := count.(IntVal)
	if !isInt {
		return nil, false, nil
	}
	if n < 0 {
		n = 0
	}

	switch v := seq.(type) {
	case StringVal:
		if repeatTooLarge(len(v), n) {
			return nil, true, evalErr(diag.CodeInvalidArgument, s, "repeat result too large")
		}
		if v == "" {
			return v, true, nil
		}
		return StringVal(strings.Repeat(string(v), int(n))), true, nil
	case *ListVal:
		if repeatTooLarge(len(v.Elements), n) {
			return nil, true, evalErr(diag.CodeInvalidArgument, s, "repeat result too large")
		}
		if len(v.Elements) == 0 {
			return &ListVal{Elements: []Value{}}, true, nil
		}
		elements := make([]Value, 0, len(v.Elements)*int(n))
		for k := 0; k < int(n); k++ {
			elements = append(elements, v.Elements...)
		}
		return &ListVal{Elements: elements}, true, nil
	}
	return nil, false, nil
}

// maxRepeatLen caps the length of a repeated string or list.
const maxRepeatLen = math.MaxInt32

func repeatTooLarge(size int, n IntVal) bool {
	return n > 0 && int64(size) > maxRepeatLen/int64(n)
}

func operandError(op token.Kind, left, right Value, s span.Span) error {
	return evalErr(diag.CodeTypeMismatch, s,
		"unsupported operand types for %s: '%s' and '%s'", op, left.TypeName(), right.TypeName())
}

func (i *Interpreter) evalMember(e *ast.MemberExpr) (Value, error) {
	objVal, err := i.evalExpr(e.Object)
	if err != nil {
		return nil, err
	}

	switch obj := objVal.(type) {
	case *ObjectVal:
		if val, ok := obj.Fields[e.Property]; ok {
			return val, nil
		}
		err := diag.Errorf(diag.EvalError, diag.CodeUndefinedField, e.Span,
			"'%s' object has no field '%s'", obj.Class.Name(), e.Property)
		if obj.Class.Method(e.Property).IsPresent() {
			err.WithHint("'" + e.Property + "' is a method; call it with '" + e.Property + "(...)'")
		}
		return nil, err
	case *MapVal:
		if val, ok := obj.Get(StringVal(e.Property)); ok {
			return val, nil
		}
		return nil, evalErr(diag.CodeUndefinedField, e.Span, "map has no key '%s'", e.Property)
	}
	return nil, evalErr(diag.CodeTypeMismatch, e.Span,
		"cannot read field '%s' of a value of type '%s'", e.Property, objVal.TypeName())
}

func (i *Interpreter) evalIndex(e *ast.IndexExpr) (Value, error) {
	objVal, err := i.evalExpr(e.Object)
	if err != nil {
		return nil, err
	}
	idxVal, err := i.evalExpr(e.Index)
	if err != nil {
		return nil, err
	}

	switch obj := objVal.(type) {
	case *ListVal:
		idx, err := listIndex(obj, idxVal, e.Span)
		if err != nil {
			return nil, err
		}
		return obj.Elements[idx], nil

	case StringVal:
		n, ok := idxVal.(IntVal)
		if !ok {
			return nil, evalErr(diag.CodeTypeMismatch, e.Index.GetSpan(), "string index must be an int, got '%s'", idxVal.TypeName())
		}
		runes := []rune(string(obj))
		idx := int(n)
		if idx < 0 {
			idx += len(runes)
		}
		if idx < 0 || idx >= len(runes) {
			return nil, evalErr(diag.CodeIndexOutOfRange, e.Span,
				"string index %d out of range (length %d)", int(n), utf8.RuneCountInString(string(obj)))
		}
		return StringVal(runes[idx]), nil

	case *MapVal:
		if err := checkMapKey(idxVal); err != nil {
			return nil, located(err, e.Index.GetSpan())
		}
		if val, ok := obj.Get(idxVal); ok {
			return val, nil
		}
		return nil, evalErr(diag.CodeUndefinedField, e.Span, "map has no key %s", repr(idxVal))
	}
	return nil, evalErr(diag.CodeTypeMismatch, e.Span, "cannot index a value of type '%s'", objVal.TypeName())
}

// listIndex validates idx against list, resolving negative indexes from
// the end.
func listIndex(list *ListVal, idx Value, s span.Span) (int, error) {
	n, ok := idx.(IntVal)
	if !ok {
		return 0, evalErr(diag.CodeTypeMismatch, s, "list index must be an int, got '%s'", idx.TypeName())
	}
	pos := int(n)
	if pos < 0 {
		pos += len(list.Elements)
	}
	if pos < 0 || pos >= len(list.Elements) {
		return 0, evalErr(diag.CodeIndexOutOfRange, s,
			"list index %d out of range (length %d)", int(n), len(list.Elements))
	}
	return pos, nil
}
