package bigint_test

import (
	"testing"

	"github.com/edadma/slate-sub000/pkg/bigint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorDivMod(t *testing.T) {
	a := bigint.FromInt64(-7)
	b := bigint.FromInt64(3)

	q := bigint.FloorDiv(a, b)
	m := bigint.FloorMod(a, b)

	assert.Equal(t, "-3", q.String())
	assert.Equal(t, "2", m.String())
}

func TestFloorDivModNegativeDivisor(t *testing.T) {
	a := bigint.FromInt64(7)
	b := bigint.FromInt64(-3)

	q := bigint.FloorDiv(a, b)
	m := bigint.FloorMod(a, b)

	assert.Equal(t, "-3", q.String())
	assert.Equal(t, "-2", m.String())
}

func TestFactorial(t *testing.T) {
	got := bigint.Factorial(20)
	assert.Equal(t, "2432902008176640000", got.String())
}

func TestFactorialZero(t *testing.T) {
	assert.Equal(t, "1", bigint.Factorial(0).String())
}

func TestDecimalStringRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "-1", "2432902008176640000", "-999999999999999999999"} {
		n, ok := bigint.FromString(s, 10)
		require.True(t, ok)
		assert.Equal(t, s, n.String())
	}
}

func TestInt32Overflow(t *testing.T) {
	n := bigint.FromInt64(1 << 40)
	_, ok := n.Int32()
	assert.False(t, ok)
}

func TestFromStringInvalid(t *testing.T) {
	_, ok := bigint.FromString("not a number", 10)
	assert.False(t, ok)
}

func TestSqrt(t *testing.T) {
	cases := map[int64]int64{0: 0, 1: 1, 4: 2, 15: 3, 16: 4, 1000000: 1000}
	for n, want := range cases {
		got := bigint.Sqrt(bigint.FromInt64(n))
		wantStr := bigint.FromInt64(want).String()
		assert.Equal(t, wantStr, got.String())
	}
}

func TestGCDLCM(t *testing.T) {
	g := bigint.GCD(bigint.FromInt64(48), bigint.FromInt64(18))
	assert.Equal(t, "6", g.String())

	l := bigint.LCM(bigint.FromInt64(4), bigint.FromInt64(6))
	assert.Equal(t, "12", l.String())
}

func TestModPow(t *testing.T) {
	got := bigint.ModPow(bigint.FromInt64(4), bigint.FromInt64(13), bigint.FromInt64(497))
	assert.Equal(t, "445", got.String())
}

func TestExtendedGCD(t *testing.T) {
	g, x, y := bigint.ExtendedGCD(bigint.FromInt64(240), bigint.FromInt64(46))
	require.Equal(t, "2", g.String())
	check := bigint.Add(bigint.Mul(bigint.FromInt64(240), x), bigint.Mul(bigint.FromInt64(46), y))
	assert.Equal(t, g.String(), check.String())
}

func TestProbablyPrime(t *testing.T) {
	assert.True(t, bigint.ProbablyPrime(bigint.FromInt64(97), 20))
	assert.False(t, bigint.ProbablyPrime(bigint.FromInt64(100), 20))
	assert.False(t, bigint.ProbablyPrime(bigint.FromInt64(-7), 20))
}

func TestBitwise(t *testing.T) {
	a := bigint.FromInt64(0b1010)
	b := bigint.FromInt64(0b0110)
	assert.Equal(t, "2", bigint.And(a, b).String())
	assert.Equal(t, "14", bigint.Or(a, b).String())
	assert.Equal(t, "12", bigint.Xor(a, b).String())
}
