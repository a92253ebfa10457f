package value

import (
	"math"

	"github.com/edadma/slate-sub000/pkg/bigint"
)

// rung classifies where a numeric Value sits on the promotion lattice:
// Int32 -> BigInt -> Float64 (spec.md §4.1). Float32 does not exist as a
// distinct Slate value; any float-producing operation widens straight to
// Float64.
type rung uint8

const (
	rungInt32 rung = iota
	rungBigInt
	rungFloat64
)

func rungOf(v Value) (rung, bool) {
	switch v.tag {
	case TagInt32:
		return rungInt32, true
	case TagBigInt:
		return rungBigInt, true
	case TagFloat64:
		return rungFloat64, true
	default:
		return 0, false
	}
}

func bigOf(v Value) *bigint.Int {
	switch v.tag {
	case TagInt32:
		return bigint.FromInt32(v.i32)
	case TagBigInt:
		return v.heap.(*BigIntObj).N
	default:
		panic("value: bigOf on non-integer")
	}
}

func floatOf(v Value) float64 {
	switch v.tag {
	case TagInt32:
		return float64(v.i32)
	case TagBigInt:
		return v.heap.(*BigIntObj).N.Float64()
	case TagFloat64:
		return v.f64
	default:
		panic("value: floatOf on non-numeric")
	}
}

// demote returns an Int32 Value if n fits, else a BigInt Value.
func demote(n *bigint.Int) Value {
	if i, ok := n.Int32(); ok {
		return Int32(i)
	}
	return NewBigInt(n)
}

func typeErr(op string, a, b Value) error {
	return NewError(ErrType, "cannot apply %s to %s and %s", op, a.TypeName(), b.TypeName())
}

// commonRung picks the highest rung of a and b, requiring both be numeric.
func commonRung(op string, a, b Value) (rung, error) {
	ra, ok := rungOf(a)
	if !ok {
		return 0, typeErr(op, a, b)
	}
	rb, ok := rungOf(b)
	if !ok {
		return 0, typeErr(op, a, b)
	}
	if ra > rb {
		return ra, nil
	}
	return rb, nil
}

// Add, Sub, Mul implement the numeric tower's arithmetic promotion: native
// int32 arithmetic is attempted first and checked for overflow; on
// overflow (or when either operand is already BigInt/Float64) the
// operation is redone at the next rung up.
func Add(a, b Value) (Value, error) { return arith("plus", a, b, addInt32, bigint.Add, func(x, y float64) float64 { return x + y }) }
func Sub(a, b Value) (Value, error) { return arith("minus", a, b, subInt32, bigint.Sub, func(x, y float64) float64 { return x - y }) }
func Mul(a, b Value) (Value, error) { return arith("times", a, b, mulInt32, bigint.Mul, func(x, y float64) float64 { return x * y }) }

func addInt32(x, y int32) (int32, bool) {
	r := int64(x) + int64(y)
	if r < math.MinInt32 || r > math.MaxInt32 {
		return 0, false
	}
	return int32(r), true
}

func subInt32(x, y int32) (int32, bool) {
	r := int64(x) - int64(y)
	if r < math.MinInt32 || r > math.MaxInt32 {
		return 0, false
	}
	return int32(r), true
}

func mulInt32(x, y int32) (int32, bool) {
	r := int64(x) * int64(y)
	if r < math.MinInt32 || r > math.MaxInt32 {
		return 0, false
	}
	return int32(r), true
}

func arith(op string, a, b Value, intOp func(int32, int32) (int32, bool), bigOp func(*bigint.Int, *bigint.Int) *bigint.Int, fOp func(float64, float64) float64) (Value, error) {
	r, err := commonRung(op, a, b)
	if err != nil {
		return Value{}, err
	}
	switch r {
	case rungInt32:
		if n, ok := intOp(a.i32, b.i32); ok {
			return Int32(n), nil
		}
		return demote(bigOp(bigOf(a), bigOf(b))), nil
	case rungBigInt:
		return demote(bigOp(bigOf(a), bigOf(b))), nil
	default:
		return Float64(fOp(floatOf(a), floatOf(b))), nil
	}
}

// Div implements Slate's "/" operator: floor division when both operands
// are on the integer rungs (Int32/BigInt), true division once either side
// is Float64 (spec.md §4.1, S2).
func Div(a, b Value) (Value, error) {
	r, err := commonRung("divide", a, b)
	if err != nil {
		return Value{}, err
	}
	if r == rungFloat64 {
		return Float64(floatOf(a) / floatOf(b)), nil
	}
	bb := bigOf(b)
	if bb.IsZero() {
		return Value{}, NewError(ErrArithmetic, "division by zero")
	}
	return demote(bigint.FloorDiv(bigOf(a), bb)), nil
}

// Mod implements floor modulo: the result takes the sign of the divisor
// (spec.md §4.1, S2: (-7) mod 3 == 2). Float operands use math.Mod and
// then correct the sign to match floor semantics.
func Mod(a, b Value) (Value, error) {
	r, err := commonRung("mod", a, b)
	if err != nil {
		return Value{}, err
	}
	if r == rungFloat64 {
		x, y := floatOf(a), floatOf(b)
		m := math.Mod(x, y)
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return Float64(m), nil
	}
	bb := bigOf(b)
	if bb.IsZero() {
		return Value{}, NewError(ErrArithmetic, "modulo by zero")
	}
	return demote(bigint.FloorMod(bigOf(a), bb)), nil
}

// Pow implements exponentiation. A BigInt exponent is not supported (open
// question resolved in SPEC_FULL.md §F.2): the exponent must be Int32 or
// Float64.
func Pow(a, b Value) (Value, error) {
	if !a.IsNumber() {
		return Value{}, typeErr("pow", a, b)
	}
	switch b.tag {
	case TagInt32:
		if a.tag == TagFloat64 {
			return Float64(math.Pow(floatOf(a), float64(b.i32))), nil
		}
		if b.i32 < 0 {
			return Float64(math.Pow(floatOf(a), float64(b.i32))), nil
		}
		return demote(intPow(bigOf(a), uint32(b.i32))), nil
	case TagFloat64:
		return Float64(math.Pow(floatOf(a), b.f64)), nil
	default:
		return Value{}, NewError(ErrType, "exponent must be Int or Float, not %s", b.TypeName())
	}
}

// intPow computes base^exp by repeated squaring.
func intPow(base *bigint.Int, exp uint32) *bigint.Int {
	result := bigint.FromInt64(1)
	b := base
	for exp > 0 {
		if exp&1 == 1 {
			result = bigint.Mul(result, b)
		}
		exp >>= 1
		if exp > 0 {
			b = bigint.Mul(b, b)
		}
	}
	return result
}

// Neg implements unary negation across the tower.
func Neg(a Value) (Value, error) {
	switch a.tag {
	case TagInt32:
		if a.i32 == math.MinInt32 {
			return NewBigInt(bigint.FromInt32(a.i32).Neg()), nil
		}
		return Int32(-a.i32), nil
	case TagBigInt:
		return demote(bigOf(a).Neg()), nil
	case TagFloat64:
		return Float64(-a.f64), nil
	default:
		return Value{}, NewError(ErrType, "cannot negate %s", a.TypeName())
	}
}

// unordered is returned by Compare when either operand is NaN: spec.md
// §4.1's IEEE rules make every ordering comparison against NaN false, so
// callers must check IsUnordered rather than treat this as a real rank.
const unordered = 2

// IsUnordered reports whether a Compare result came from a NaN operand,
// in which case < <= > >= must all evaluate to false (only == and != have
// fixed answers for NaN, handled separately by Equals).
func IsUnordered(cmp int) bool { return cmp == unordered }

// Compare implements the three-way numeric comparison backing
// < <= > >=, returning -1, 0, 1, or unordered when either operand is NaN.
func Compare(a, b Value) (int, error) {
	r, err := commonRung("compare", a, b)
	if err != nil {
		return 0, err
	}
	if r == rungFloat64 {
		x, y := floatOf(a), floatOf(b)
		switch {
		case math.IsNaN(x) || math.IsNaN(y):
			return unordered, nil
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return bigint.Cmp(bigOf(a), bigOf(b)), nil
}

func bitwiseOperands(op string, a, b Value) (*bigint.Int, *bigint.Int, error) {
	if a.tag != TagInt32 && a.tag != TagBigInt {
		return nil, nil, typeErr(op, a, b)
	}
	if b.tag != TagInt32 && b.tag != TagBigInt {
		return nil, nil, typeErr(op, a, b)
	}
	return bigOf(a), bigOf(b), nil
}

// And, Or, Xor implement bitwise operators over the integer rungs.
func And(a, b Value) (Value, error) {
	x, y, err := bitwiseOperands("and", a, b)
	if err != nil {
		return Value{}, err
	}
	return demote(bigint.And(x, y)), nil
}

func Or(a, b Value) (Value, error) {
	x, y, err := bitwiseOperands("or", a, b)
	if err != nil {
		return Value{}, err
	}
	return demote(bigint.Or(x, y)), nil
}

func Xor(a, b Value) (Value, error) {
	x, y, err := bitwiseOperands("xor", a, b)
	if err != nil {
		return Value{}, err
	}
	return demote(bigint.Xor(x, y)), nil
}

// BitNot implements the unary bitwise complement.
func BitNot(a Value) (Value, error) {
	if a.tag != TagInt32 && a.tag != TagBigInt {
		return Value{}, NewError(ErrType, "cannot complement %s", a.TypeName())
	}
	return demote(bigint.Not(bigOf(a))), nil
}

// Shl, Shr implement bit shifts; bits must be a non-negative Int32.
func Shl(a, b Value) (Value, error) {
	if a.tag != TagInt32 && a.tag != TagBigInt {
		return Value{}, NewError(ErrType, "cannot shift %s", a.TypeName())
	}
	if b.tag != TagInt32 || b.i32 < 0 {
		return Value{}, NewError(ErrType, "shift amount must be a non-negative Int")
	}
	return demote(bigint.Lsh(bigOf(a), uint(b.i32))), nil
}

func Shr(a, b Value) (Value, error) {
	if a.tag != TagInt32 && a.tag != TagBigInt {
		return Value{}, NewError(ErrType, "cannot shift %s", a.TypeName())
	}
	if b.tag != TagInt32 || b.i32 < 0 {
		return Value{}, NewError(ErrType, "shift amount must be a non-negative Int")
	}
	return demote(bigint.Rsh(bigOf(a), uint(b.i32))), nil
}
