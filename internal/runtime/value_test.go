package runtime

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueStrings(t *testing.T) {
	m := NewMap()
	m.Set(StringVal("a"), IntVal(1))
	m.Set(IntVal(2), &ListVal{Elements: []Value{StringVal("x"), NoneVal{}}})

	tests := []struct {
		val      Value
		expected string
	}{
		{IntVal(-4), "-4"},
		{FloatVal(2), "2.0"},
		{FloatVal(0.5), "0.5"},
		{FloatVal(1e20), "1e+20"},
		{FloatVal(0.00001), "1e-05"},
		{FloatVal(math.Inf(1)), "inf"},
		{StringVal("hi"), "hi"},
		{BoolVal(true), "true"},
		{NoneVal{}, "none"},
		{&ListVal{}, "[]"},
		{m, `{"a": 1, 2: ["x", none]}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.val.String())
	}
}

func TestTruthiness(t *testing.T) {
	falsy := []Value{NoneVal{}, BoolVal(false), IntVal(0), FloatVal(0), StringVal(""), &ListVal{}, NewMap()}
	for _, v := range falsy {
		assert.False(t, IsTruthy(v), "%s should be falsy", v.TypeName())
	}
	truthy := []Value{BoolVal(true), IntVal(-1), FloatVal(0.1), StringVal("0"), &ListVal{Elements: []Value{NoneVal{}}}}
	for _, v := range truthy {
		assert.True(t, IsTruthy(v), "%s should be truthy", v.TypeName())
	}
}

func TestMapKeepsInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set(StringVal("b"), IntVal(1))
	m.Set(StringVal("a"), IntVal(2))
	m.Set(StringVal("b"), IntVal(3))

	assert.Equal(t, []Value{StringVal("b"), StringVal("a")}, m.Keys)
	assert.True(t, m.Delete(StringVal("b")))
	assert.False(t, m.Delete(StringVal("b")))
	assert.Equal(t, []Value{StringVal("a")}, m.Keys)

	val, ok := m.Get(StringVal("a"))
	assert.True(t, ok)
	assert.Equal(t, IntVal(2), val)
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(IntVal(3), FloatVal(3)))
	assert.True(t, valuesEqual(&ListVal{Elements: []Value{IntVal(1)}}, &ListVal{Elements: []Value{FloatVal(1)}}))
	assert.False(t, valuesEqual(StringVal("1"), IntVal(1)))
	assert.False(t, valuesEqual(NoneVal{}, BoolVal(false)))
	assert.True(t, valuesEqual(NoneVal{}, NoneVal{}))
}

func TestCompareValues(t *testing.T) {
	cmp, ok := compareValues(IntVal(1), FloatVal(1.5))
	assert.True(t, ok)
	assert.Equal(t, -1, cmp)

	cmp, ok = compareValues(StringVal("b"), StringVal("a"))
	assert.True(t, ok)
	assert.Equal(t, 1, cmp)

	_, ok = compareValues(StringVal("1"), IntVal(1))
	assert.False(t, ok)
}

func TestMapKeysCompareByValue(t *testing.T) {
	m := NewMap()
	m.Set(FloatVal(1), StringVal("a"))
	m.Set(IntVal(1), StringVal("b"))

	assert.Equal(t, []Value{IntVal(1)}, m.Keys)
	val, ok := m.Get(FloatVal(1))
	assert.True(t, ok)
	assert.Equal(t, StringVal("b"), val)
	assert.True(t, m.Delete(FloatVal(1)))

	assert.NoError(t, checkMapKey(FloatVal(1.5)))
	assert.Error(t, checkMapKey(FloatVal(math.NaN())))
	assert.Error(t, checkMapKey(&ListVal{}))
}
