package runtime

import (
	"mslash/internal/diag"
	"mslash/internal/span"
	"strings"

	"github.com/samber/lo"
)

func noMethod(typeName, name string) error {
	return diag.Errorf(diag.CallError, diag.CodeUndefinedMethod, span.Span{},
		"value of type '%s' has no method '%s'", typeName, name)
}

func methodArity(name string, args []Value, want int) error {
	if len(args) != want {
		return diag.Errorf(diag.CallError, diag.CodeArityMismatch, span.Span{},
			"%s() expects %d argument(s), got %d", name, want, len(args))
	}
	return nil
}

func stringArg(method string, v Value) (string, error) {
	s, ok := v.(StringVal)
	if !ok {
		return "", typeErr("%s() argument must be a string, not '%s'", method, v.TypeName())
	}
	return string(s), nil
}

// ============================================================
// String methods
// ============================================================

func callStringMethod(s string, name string, args []Value) (Value, error) {
	switch name {
	case "upper", "lower", "trim":
		if err := methodArity(name, args, 0); err != nil {
			return nil, err
		}
		switch name {
		case "upper":
			return StringVal(strings.ToUpper(s)), nil
		case "lower":
			return StringVal(strings.ToLower(s)), nil
		default:
			return StringVal(strings.TrimSpace(s)), nil
		}

	case "split":
		if err := methodArity(name, args, 1); err != nil {
			return nil, err
		}
		sep, err := stringArg(name, args[0])
		if err != nil {
			return nil, err
		}
		var parts []string
		if sep == "" {
			parts = strings.Fields(s)
		} else {
			parts = strings.Split(s, sep)
		}
		return &ListVal{Elements: lo.Map(parts, func(p string, _ int) Value { return StringVal(p) })}, nil

	case "contains", "startswith", "endswith", "find":
		if err := methodArity(name, args, 1); err != nil {
			return nil, err
		}
		sub, err := stringArg(name, args[0])
		if err != nil {
			return nil, err
		}
		switch name {
		case "contains":
			return BoolVal(strings.Contains(s, sub)), nil
		case "startswith":
			return BoolVal(strings.HasPrefix(s, sub)), nil
		case "endswith":
			return BoolVal(strings.HasSuffix(s, sub)), nil
		default:
			idx := strings.Index(s, sub)
			if idx < 0 {
				return IntVal(-1), nil
			}
			return IntVal(len([]rune(s[:idx]))), nil
		}

	case "replace":
		if err := methodArity(name, args, 2); err != nil {
			return nil, err
		}
		old, err := stringArg(name, args[0])
		if err != nil {
			return nil, err
		}
		repl, err := stringArg(name, args[1])
		if err != nil {
			return nil, err
		}
		return StringVal(strings.ReplaceAll(s, old, repl)), nil

	default:
		return nil, noMethod("str", name)
	}
}

// ============================================================
// List methods
// ============================================================

func callListMethod(list *ListVal, name string, args []Value) (Value, error) {
	switch name {
	case "append", "push":
		if err := methodArity(name, args, 1); err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, args[0])
		if name == "push" {
			return IntVal(len(list.Elements)), nil
		}
		return NoneVal{}, nil

	case "pop":
		if err := methodArity(name, args, 0); err != nil {
			return nil, err
		}
		if len(list.Elements) == 0 {
			return nil, diag.Errorf(diag.EvalError, diag.CodeIndexOutOfRange, span.Span{}, "pop from empty list")
		}
		last := list.Elements[len(list.Elements)-1]
		list.Elements = list.Elements[:len(list.Elements)-1]
		return last, nil

	case "contains":
		if err := methodArity(name, args, 1); err != nil {
			return nil, err
		}
		return BoolVal(indexOf(list, args[0]) >= 0), nil

	case "index":
		if err := methodArity(name, args, 1); err != nil {
			return nil, err
		}
		return IntVal(indexOf(list, args[0])), nil

	case "join":
		if err := methodArity(name, args, 1); err != nil {
			return nil, err
		}
		sep, err := stringArg(name, args[0])
		if err != nil {
			return nil, err
		}
		parts := lo.Map(list.Elements, func(v Value, _ int) string { return v.String() })
		return StringVal(strings.Join(parts, sep)), nil

	default:
		return nil, noMethod("list", name)
	}
}

func indexOf(list *ListVal, target Value) int {
	for idx, v := range list.Elements {
		if valuesEqual(v, target) {
			return idx
		}
	}
	return -1
}

// ============================================================
// Map methods
// ============================================================

func callMapMethod(m *MapVal, name string, args []Value) (Value, error) {
	switch name {
	case "keys":
		if err := methodArity(name, args, 0); err != nil {
			return nil, err
		}
		return &ListVal{Elements: append([]Value{}, m.Keys...)}, nil

	case "values":
		if err := methodArity(name, args, 0); err != nil {
			return nil, err
		}
		return &ListVal{Elements: lo.Map(m.Keys, func(k Value, _ int) Value { return m.Values[k] })}, nil

	case "has", "remove":
		if err := methodArity(name, args, 1); err != nil {
			return nil, err
		}
		if err := checkMapKey(args[0]); err != nil {
			return nil, err
		}
		if name == "remove" {
			return BoolVal(m.Delete(args[0])), nil
		}
		_, ok := m.Get(args[0])
		return BoolVal(ok), nil

	case "get":
		if len(args) != 1 && len(args) != 2 {
			return nil, diag.Errorf(diag.CallError, diag.CodeArityMismatch, span.Span{},
				"get() expects 1 to 2 argument(s), got %d", len(args))
		}
		if err := checkMapKey(args[0]); err != nil {
			return nil, err
		}
		if val, ok := m.Get(args[0]); ok {
			return val, nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return NoneVal{}, nil

	default:
		return nil, noMethod("map", name)
	}
}
