package runtime

import (
	"fmt"
	"math"
	"mslash/internal/diag"
	"mslash/internal/span"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// argErr reports a bad argument to a built-in; the caller fills in the span.
func argErr(format string, args ...interface{}) error {
	return diag.Errorf(diag.EvalError, diag.CodeInvalidArgument, span.Span{}, format, args...)
}

func typeErr(format string, args ...interface{}) error {
	return diag.Errorf(diag.EvalError, diag.CodeTypeMismatch, span.Span{}, format, args...)
}

func arityRange(lower, upper int) string {
	switch {
	case upper < 0:
		return fmt.Sprintf("at least %d", lower)
	case lower == upper:
		return strconv.Itoa(lower)
	default:
		return fmt.Sprintf("%d to %d", lower, upper)
	}
}

// newBuiltins returns the allow-listed built-in function table. Nothing
// outside this table is reachable from script expressions.
func newBuiltins() map[string]*BuiltinVal {
	builtins := []*BuiltinVal{
		{Name: "str", MinArgs: 0, MaxArgs: 1, Fn: builtinStr},
		{Name: "int", MinArgs: 0, MaxArgs: 1, Fn: builtinInt},
		{Name: "float", MinArgs: 0, MaxArgs: 1, Fn: builtinFloat},
		{Name: "bool", MinArgs: 0, MaxArgs: 1, Fn: builtinBool},
		{Name: "list", MinArgs: 0, MaxArgs: 1, Fn: builtinList},
		{Name: "dict", MinArgs: 0, MaxArgs: 1, Fn: builtinDict},
		{Name: "len", MinArgs: 1, MaxArgs: 1, Fn: builtinLen},
		{Name: "type", MinArgs: 1, MaxArgs: 1, Fn: builtinType},
		{Name: "abs", MinArgs: 1, MaxArgs: 1, Fn: builtinAbs},
		{Name: "round", MinArgs: 1, MaxArgs: 2, Fn: builtinRound},
		{Name: "range", MinArgs: 1, MaxArgs: 3, Fn: builtinRange},
	}
	return lo.KeyBy(builtins, func(b *BuiltinVal) string { return b.Name })
}

func builtinStr(args []Value) (Value, error) {
	if len(args) == 0 {
		return StringVal(""), nil
	}
	return StringVal(args[0].String()), nil
}

func builtinInt(args []Value) (Value, error) {
	if len(args) == 0 {
		return IntVal(0), nil
	}
	switch v := args[0].(type) {
	case IntVal:
		return v, nil
	case FloatVal:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, argErr("cannot convert %s to int", v)
		}
		return IntVal(int64(f)), nil
	case BoolVal:
		if v {
			return IntVal(1), nil
		}
		return IntVal(0), nil
	case StringVal:
		n, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		if err != nil {
			return nil, argErr("invalid literal for int(): %s", repr(v))
		}
		return IntVal(n), nil
	}
	return nil, typeErr("int() argument must be a string or a number, not '%s'", args[0].TypeName())
}

func builtinFloat(args []Value) (Value, error) {
	if len(args) == 0 {
		return FloatVal(0), nil
	}
	switch v := args[0].(type) {
	case IntVal:
		return FloatVal(float64(v)), nil
	case FloatVal:
		return v, nil
	case BoolVal:
		if v {
			return FloatVal(1), nil
		}
		return FloatVal(0), nil
	case StringVal:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return nil, argErr("could not convert string to float: %s", repr(v))
		}
		return FloatVal(f), nil
	}
	return nil, typeErr("float() argument must be a string or a number, not '%s'", args[0].TypeName())
}

func builtinBool(args []Value) (Value, error) {
	if len(args) == 0 {
		return BoolVal(false), nil
	}
	return BoolVal(IsTruthy(args[0])), nil
}

// builtinList copies a list, splits a string into characters, or lists the
// keys of a map.
func builtinList(args []Value) (Value, error) {
	if len(args) == 0 {
		return &ListVal{Elements: []Value{}}, nil
	}
	switch v := args[0].(type) {
	case *ListVal:
		return &ListVal{Elements: append([]Value{}, v.Elements...)}, nil
	case StringVal:
		return &ListVal{Elements: lo.Map([]rune(string(v)), func(r rune, _ int) Value {
			return StringVal(r)
		})}, nil
	case *MapVal:
		return &ListVal{Elements: append([]Value{}, v.Keys...)}, nil
	}
	return nil, typeErr("'%s' object is not iterable", args[0].TypeName())
}

func builtinDict(args []Value) (Value, error) {
	m := NewMap()
	if len(args) == 0 {
		return m, nil
	}
	src, ok := args[0].(*MapVal)
	if !ok {
		return nil, typeErr("dict() argument must be a map, not '%s'", args[0].TypeName())
	}
	for _, k := range src.Keys {
		m.Set(k, src.Values[k])
	}
	return m, nil
}

func builtinLen(args []Value) (Value, error) {
	switch v := args[0].(type) {
	case StringVal:
		return IntVal(utf8.RuneCountInString(string(v))), nil
	case *ListVal:
		return IntVal(len(v.Elements)), nil
	case *MapVal:
		return IntVal(len(v.Keys)), nil
	}
	return nil, typeErr("object of type '%s' has no len()", args[0].TypeName())
}

func builtinType(args []Value) (Value, error) {
	return StringVal(args[0].TypeName()), nil
}

func builtinAbs(args []Value) (Value, error) {
	switch v := args[0].(type) {
	case IntVal:
		if v < 0 {
			return -v, nil
		}
		return v, nil
	case FloatVal:
		return FloatVal(math.Abs(float64(v))), nil
	}
	return nil, typeErr("bad operand type for abs(): '%s'", args[0].TypeName())
}

// builtinRound rounds half to even. With one argument it returns an int.
func builtinRound(args []Value) (Value, error) {
	f, ok := ToFloat64(args[0])
	if !ok {
		return nil, typeErr("round() needs a number, not '%s'", args[0].TypeName())
	}
	if len(args) == 1 {
		return IntVal(int64(math.RoundToEven(f))), nil
	}
	digits, ok := args[1].(IntVal)
	if !ok {
		return nil, typeErr("round() digits must be an int, not '%s'", args[1].TypeName())
	}
	scale := math.Pow(10, float64(digits))
	return FloatVal(math.RoundToEven(f*scale) / scale), nil
}

// builtinRange accepts (stop), (start, stop) or (start, stop, step).
func builtinRange(args []Value) (Value, error) {
	bounds := make([]int64, len(args))
	for k, a := range args {
		n, ok := a.(IntVal)
		if !ok {
			return nil, typeErr("range() arguments must be ints, not '%s'", a.TypeName())
		}
		bounds[k] = int64(n)
	}

	var start, stop, step int64 = 0, 0, 1
	switch len(bounds) {
	case 1:
		stop = bounds[0]
	case 2:
		start, stop = bounds[0], bounds[1]
	default:
		start, stop, step = bounds[0], bounds[1], bounds[2]
	}
	if step == 0 {
		return nil, argErr("range() step must not be zero")
	}

	elems := []Value{}
	for n := start; (step > 0 && n < stop) || (step < 0 && n > stop); n += step {
		elems = append(elems, IntVal(n))
	}
	return &ListVal{Elements: elems}, nil
}
