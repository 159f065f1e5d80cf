// Package runtime implements the MSlash statement executor, expression
// evaluator and runtime value system.
package runtime

import (
	"fmt"
	"math"
	"mslash/internal/module"
	"strconv"
	"strings"
)

// Value is the interface for all runtime values.
type Value interface {
	TypeName() string
	String() string
}

// ---- Primitive values ----

// IntVal represents an integer value.
type IntVal int64

func (v IntVal) TypeName() string { return "int" }
func (v IntVal) String() string   { return strconv.FormatInt(int64(v), 10) }

// FloatVal represents a floating-point value.
type FloatVal float64

func (v FloatVal) TypeName() string { return "float" }
func (v FloatVal) String() string   { return formatFloat(float64(v)) }

// StringVal represents a string value.
type StringVal string

func (v StringVal) TypeName() string { return "str" }
func (v StringVal) String() string   { return string(v) }

// BoolVal represents a boolean value.
type BoolVal bool

func (v BoolVal) TypeName() string { return "bool" }
func (v BoolVal) String() string   { return strconv.FormatBool(bool(v)) }

// NoneVal represents none.
type NoneVal struct{}

func (v NoneVal) TypeName() string { return "none" }
func (v NoneVal) String() string   { return "none" }

// ---- Containers ----

// ListVal is a mutable list. Lists are shared by reference.
type ListVal struct {
	Elements []Value
}

func (v *ListVal) TypeName() string { return "list" }
func (v *ListVal) String() string {
	parts := make([]string, len(v.Elements))
	for i, elem := range v.Elements {
		parts[i] = repr(elem)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// MapVal is a mutable map with insertion-ordered keys. Keys are primitive
// values; maps are shared by reference.
type MapVal struct {
	Keys   []Value
	Values map[Value]Value
}

// NewMap creates an empty map.
func NewMap() *MapVal {
	return &MapVal{Values: make(map[Value]Value)}
}

func (v *MapVal) TypeName() string { return "map" }
func (v *MapVal) String() string {
	parts := make([]string, len(v.Keys))
	for i, k := range v.Keys {
		parts[i] = repr(k) + ": " + repr(v.Values[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Get looks up key.
func (v *MapVal) Get(key Value) (Value, bool) {
	val, ok := v.Values[mapKey(key)]
	return val, ok
}

// Set binds key, appending it to the key order if it is new.
func (v *MapVal) Set(key, val Value) {
	key = mapKey(key)
	if _, exists := v.Values[key]; !exists {
		v.Keys = append(v.Keys, key)
	}
	v.Values[key] = val
}

// Delete removes key and reports whether it was present.
func (v *MapVal) Delete(key Value) bool {
	key = mapKey(key)
	if _, exists := v.Values[key]; !exists {
		return false
	}
	delete(v.Values, key)
	for i, k := range v.Keys {
		if k == key {
			v.Keys = append(v.Keys[:i], v.Keys[i+1:]...)
			break
		}
	}
	return true
}

// mapKey stores whole floats as ints, so 1 and 1.0 name the same key the
// way 1 == 1.0 holds.
func mapKey(key Value) Value {
	if f, ok := key.(FloatVal); ok && float64(f) == math.Trunc(float64(f)) && math.Abs(float64(f)) < 1<<63 {
		return IntVal(int64(f))
	}
	return key
}

// checkMapKey rejects values that cannot be map keys. NaN is refused
// because it never compares equal to itself.
func checkMapKey(v Value) error {
	switch k := v.(type) {
	case IntVal, StringVal, BoolVal, NoneVal:
		return nil
	case FloatVal:
		if math.IsNaN(float64(k)) {
			return typeErr("nan cannot be used as a map key")
		}
		return nil
	}
	return typeErr("unhashable map key of type '%s'", v.TypeName())
}

// ---- Callable values ----

// FuncRef is a user-defined function used as a value.
type FuncRef struct {
	Fn *module.Function
}

func (v *FuncRef) TypeName() string { return "function" }
func (v *FuncRef) String() string   { return fmt.Sprintf("<function %s>", v.Fn.Name()) }

// BuiltinFn is the Go signature for built-in functions.
type BuiltinFn func(args []Value) (Value, error)

// BuiltinVal represents an allow-listed built-in function.
type BuiltinVal struct {
	Name    string
	MinArgs int
	MaxArgs int
	Fn      BuiltinFn
}

func (v *BuiltinVal) TypeName() string { return "builtin" }
func (v *BuiltinVal) String() string   { return fmt.Sprintf("<builtin %s>", v.Name) }

// ---- OOP values ----

// ObjectVal represents an instance of a class. Objects are shared by
// reference: every alias sees the same field mapping.
type ObjectVal struct {
	Class  *module.Class
	Fields map[string]Value
}

func (v *ObjectVal) TypeName() string { return v.Class.Name() }
func (v *ObjectVal) String() string {
	return fmt.Sprintf("<object %s>", v.Class.Name())
}

// ---- Truthiness ----

// IsTruthy returns the truthiness of a value.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case NoneVal:
		return false
	case BoolVal:
		return bool(val)
	case IntVal:
		return int64(val) != 0
	case FloatVal:
		return float64(val) != 0
	case StringVal:
		return string(val) != ""
	case *ListVal:
		return len(val.Elements) > 0
	case *MapVal:
		return len(val.Keys) > 0
	default:
		return true
	}
}

// ---- Helpers ----

// repr formats a value as it appears inside a container.
func repr(v Value) string {
	if s, ok := v.(StringVal); ok {
		return strconv.Quote(string(s))
	}
	return v.String()
}

// formatFloat prints whole floats with a trailing ".0" and switches to
// exponent notation only for very large or very small magnitudes.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ToFloat64 attempts to convert a numeric value to float64.
func ToFloat64(v Value) (float64, bool) {
	switch val := v.(type) {
	case IntVal:
		return float64(int64(val)), true
	case FloatVal:
		return float64(val), true
	default:
		return 0, false
	}
}

// ToInt64 attempts to convert a numeric value to int64, truncating floats.
func ToInt64(v Value) (int64, bool) {
	switch val := v.(type) {
	case IntVal:
		return int64(val), true
	case FloatVal:
		return int64(float64(val)), true
	default:
		return 0, false
	}
}

// ============================================================
// Value equality and ordering
// ============================================================

func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case IntVal, FloatVal:
		af, _ := ToFloat64(av)
		if bf, ok := ToFloat64(b); ok {
			return af == bf
		}
		return false
	case StringVal:
		if bv, ok := b.(StringVal); ok {
			return string(av) == string(bv)
		}
	case BoolVal:
		if bv, ok := b.(BoolVal); ok {
			return bool(av) == bool(bv)
		}
	case NoneVal:
		_, ok := b.(NoneVal)
		return ok
	case *ListVal:
		bv, ok := b.(*ListVal)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !valuesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *MapVal:
		bv, ok := b.(*MapVal)
		if !ok || len(av.Keys) != len(bv.Keys) {
			return false
		}
		for _, k := range av.Keys {
			other, found := bv.Values[k]
			if !found || !valuesEqual(av.Values[k], other) {
				return false
			}
		}
		return true
	}
	// Reference equality for objects/functions
	return a == b
}

// compareValues orders two numbers or two strings. ok is false for any
// other pairing.
func compareValues(a, b Value) (cmp int, ok bool) {
	af, aOk := ToFloat64(a)
	bf, bOk := ToFloat64(b)
	if aOk && bOk {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	as, aStr := a.(StringVal)
	bs, bStr := b.(StringVal)
	if aStr && bStr {
		return strings.Compare(string(as), string(bs)), true
	}
	return 0, false
}
