package value_test

import (
	"testing"

	"github.com/edadma/slate-sub000/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt32OverflowPromotesToBigInt(t *testing.T) {
	a := value.Int32(2147483647)
	b := value.Int32(1)

	sum, err := value.Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, value.TagBigInt, sum.Tag())
	assert.Equal(t, "2147483648", value.Display(sum))
}

func TestFloorDivisionAndMod(t *testing.T) {
	a := value.Int32(-7)
	b := value.Int32(3)

	q, err := value.Div(a, b)
	require.NoError(t, err)
	assert.Equal(t, "-3", value.Display(q))

	m, err := value.Mod(a, b)
	require.NoError(t, err)
	assert.Equal(t, "2", value.Display(m))
}

func TestFloorDivisionAndModWithNegativeDivisor(t *testing.T) {
	a := value.Int32(7)
	b := value.Int32(-3)

	q, err := value.Div(a, b)
	require.NoError(t, err)
	assert.Equal(t, "-3", value.Display(q))

	m, err := value.Mod(a, b)
	require.NoError(t, err)
	assert.Equal(t, "-2", value.Display(m))
}

func TestFloatDivisionStaysFloat(t *testing.T) {
	r, err := value.Div(value.Int32(7), value.Float64(2))
	require.NoError(t, err)
	assert.Equal(t, value.TagFloat64, r.Tag())
	assert.Equal(t, 3.5, r.AsFloat64())
}

func TestNaNNeverEqual(t *testing.T) {
	nan := value.Float64(nanValue())
	assert.False(t, value.Equals(nan, nan))
}

func TestNaNComparisonIsUnordered(t *testing.T) {
	nan := value.Float64(nanValue())
	n, err := value.Compare(nan, value.Int32(1))
	require.NoError(t, err)
	assert.True(t, value.IsUnordered(n))
}

func nanValue() float64 {
	var z float64
	return z / z
}

func TestNumericEqualityAcrossTower(t *testing.T) {
	assert.True(t, value.Equals(value.Int32(1), value.Float64(1.0)))
}

func TestHashEqualityInvariant(t *testing.T) {
	a := value.NewString("hello")
	b := value.NewString("hello")
	assert.True(t, value.Equals(a, b))
	assert.Equal(t, value.Hash(a), value.Hash(b))
}

func TestTruthy(t *testing.T) {
	assert.False(t, value.Null.Truthy())
	assert.False(t, value.Undefined.Truthy())
	assert.False(t, value.Bool(false).Truthy())
	assert.True(t, value.Int32(0).Truthy())
	assert.True(t, value.NewString("").Truthy())
}

func TestUndefinedDistinctFromNull(t *testing.T) {
	assert.NotEqual(t, value.Null.Tag(), value.Undefined.Tag())
	assert.False(t, value.Equals(value.Null, value.Undefined))
	assert.True(t, value.Equals(value.Undefined, value.Undefined))
	assert.NotEqual(t, value.Hash(value.Null), value.Hash(value.Undefined))
	assert.Equal(t, "undefined", value.Display(value.Undefined))
}

func TestObjectOwnPropertyBeatsClassMethod(t *testing.T) {
	class := value.ClassOf(value.NewClass("Point", nil))
	class.Methods["x"] = value.NewFunction(stubCallable{"x", 0})

	obj := value.NewObject(class)
	obj.Heap().(*value.ObjectObj).Set("x", value.Int32(42))

	got, ok := value.LookupMethod(obj, "x", func(value.Value) *value.ClassObj { return nil })
	require.True(t, ok)
	assert.Equal(t, value.TagInt32, got.Tag())
	assert.EqualValues(t, 42, got.AsInt32())
}

func TestMethodLookupWalksParentChain(t *testing.T) {
	parent := value.ClassOf(value.NewClass("Animal", nil))
	parent.Methods["speak"] = value.NewFunction(stubCallable{"speak", 0})
	child := value.ClassOf(value.NewClass("Dog", parent))

	obj := value.NewObject(child)
	got, ok := value.LookupMethod(obj, "speak", nil)
	require.True(t, ok)
	assert.Equal(t, value.TagBoundMethod, got.Tag())
}

type stubCallable struct {
	name  string
	arity int
}

func (s stubCallable) Name() string { return s.name }
func (s stubCallable) Arity() int   { return s.arity }
