// Package bigint implements Slate's arbitrary-precision signed integer type.
//
// Int is a thin, spec-shaped wrapper around math/big.Int: the runtime core
// (spec.md §4.2) treats arbitrary-precision arithmetic as a dependency
// library whose capabilities are consumed rather than reimplemented. The
// wrapper exists to pin down the exact operation set the value system and
// VM need — construction with overflow-aware conversion back to fixed
// width, floor division/modulo, bitwise ops on magnitude, and the handful
// of number-theoretic helpers (gcd, lcm, isqrt, factorial, modpow, extended
// gcd, primality) the numeric tower calls into.
//
// A zero-magnitude Int is always non-negative: math/big.Int already
// maintains this invariant internally, and every constructor here goes
// through it.
package bigint

import (
	"math/big"
)

// Int is an arbitrary-precision signed integer.
type Int struct {
	v big.Int
}

// New returns a zero-valued Int.
func New() *Int { return &Int{} }

// FromInt64 constructs an Int from a signed 64-bit integer.
func FromInt64(n int64) *Int {
	i := &Int{}
	i.v.SetInt64(n)
	return i
}

// FromUint64 constructs an Int from an unsigned 64-bit integer.
func FromUint64(n uint64) *Int {
	i := &Int{}
	i.v.SetUint64(n)
	return i
}

// FromInt32 constructs an Int from a signed 32-bit integer.
func FromInt32(n int32) *Int {
	return FromInt64(int64(n))
}

// FromString parses a signed integer in the given base (2-36; 0 means
// auto-detect via Go integer-literal prefixes). Returns (nil, false) on a
// malformed string, matching the value-error surface in spec.md §7.
func FromString(s string, base int) (*Int, bool) {
	i := &Int{}
	_, ok := i.v.SetString(s, base)
	if !ok {
		return nil, false
	}
	return i, true
}

// FromBig wraps an existing math/big.Int by value (copying it), so callers
// retain ownership of what they passed in.
func FromBig(b *big.Int) *Int {
	i := &Int{}
	i.v.Set(b)
	return i
}

// Big exposes the underlying math/big.Int for interop with stdlib-shaped
// APIs (e.g. a reader/writer that already speaks math/big). The returned
// pointer aliases the receiver's internal state and must not be mutated.
func (i *Int) Big() *big.Int { return &i.v }

// Clone returns a deep copy.
func (i *Int) Clone() *Int {
	c := &Int{}
	c.v.Set(&i.v)
	return c
}

// String renders the canonical base-10 form.
func (i *Int) String() string { return i.v.String() }

// Text renders in the given base (2-36).
func (i *Int) Text(base int) string { return i.v.Text(base) }

// Int64 converts back to a fixed-width integer, failing (ok=false) if the
// magnitude does not fit — per spec.md §4.2, conversions "fail rather than
// truncate."
func (i *Int) Int64() (val int64, ok bool) {
	if !i.v.IsInt64() {
		return 0, false
	}
	return i.v.Int64(), true
}

// Int32 converts back to a signed 32-bit integer, failing if out of range.
func (i *Int) Int32() (val int32, ok bool) {
	n, ok := i.Int64()
	if !ok || n < -(1<<31) || n > (1<<31-1) {
		return 0, false
	}
	return int32(n), true
}

// Float64 converts with possible precision loss, as IEEE round-to-nearest.
func (i *Int) Float64() float64 {
	f := new(big.Float).SetInt(&i.v)
	r, _ := f.Float64()
	return r
}

// Sign returns -1, 0, or 1.
func (i *Int) Sign() int { return i.v.Sign() }

// IsZero reports whether the value is zero.
func (i *Int) IsZero() bool { return i.v.Sign() == 0 }

// Neg returns -i.
func (i *Int) Neg() *Int {
	r := &Int{}
	r.v.Neg(&i.v)
	return r
}

// Abs returns |i|.
func (i *Int) Abs() *Int {
	r := &Int{}
	r.v.Abs(&i.v)
	return r
}

// Add returns a+b.
func Add(a, b *Int) *Int {
	r := &Int{}
	r.v.Add(&a.v, &b.v)
	return r
}

// Sub returns a-b.
func Sub(a, b *Int) *Int {
	r := &Int{}
	r.v.Sub(&a.v, &b.v)
	return r
}

// Mul returns a*b.
func Mul(a, b *Int) *Int {
	r := &Int{}
	r.v.Mul(&a.v, &b.v)
	return r
}

// floorDivMod computes the quotient and remainder of a/b with floor
// semantics: the quotient rounds toward negative infinity and the
// remainder takes the sign of b. big.Int.DivMod is Euclidean instead (its
// remainder is always in [0, |b|), regardless of b's sign), so for a
// negative divisor its result is corrected by one step: q -= 1, m += b.
func floorDivMod(a, b *Int) (q, m *big.Int) {
	q, m = &big.Int{}, &big.Int{}
	q.DivMod(&a.v, &b.v, m)
	if m.Sign() != 0 && m.Sign() != b.v.Sign() {
		q.Sub(q, big.NewInt(1))
		m.Add(m, &b.v)
	}
	return q, m
}

// FloorDiv returns the quotient of a/b rounded toward negative infinity.
// Panics are never raised; callers must check b.IsZero() first (the VM
// surfaces that as an arithmetic error per spec.md §7).
func FloorDiv(a, b *Int) *Int {
	q, _ := floorDivMod(a, b)
	r := &Int{}
	r.v.Set(q)
	return r
}

// FloorMod returns the remainder of a/b with the sign of b (floor modulo).
func FloorMod(a, b *Int) *Int {
	_, m := floorDivMod(a, b)
	r := &Int{}
	r.v.Set(m)
	return r
}

// And returns the bitwise AND of the two magnitudes' two's-complement form.
func And(a, b *Int) *Int {
	r := &Int{}
	r.v.And(&a.v, &b.v)
	return r
}

// Or returns the bitwise OR.
func Or(a, b *Int) *Int {
	r := &Int{}
	r.v.Or(&a.v, &b.v)
	return r
}

// Xor returns the bitwise XOR.
func Xor(a, b *Int) *Int {
	r := &Int{}
	r.v.Xor(&a.v, &b.v)
	return r
}

// Not returns the bitwise complement (^a, i.e. -a-1).
func Not(a *Int) *Int {
	r := &Int{}
	r.v.Not(&a.v)
	return r
}

// Lsh returns a << bits.
func Lsh(a *Int, bits uint) *Int {
	r := &Int{}
	r.v.Lsh(&a.v, bits)
	return r
}

// Rsh returns a >> bits (arithmetic shift, floor semantics for negatives).
func Rsh(a *Int, bits uint) *Int {
	r := &Int{}
	r.v.Rsh(&a.v, bits)
	return r
}

// Cmp returns -1, 0, or 1 as a<b, a==b, a>b.
func Cmp(a, b *Int) int { return a.v.Cmp(&b.v) }

// GCD returns the (non-negative) greatest common divisor via the Euclidean
// algorithm, delegating to math/big's binary GCD implementation.
func GCD(a, b *Int) *Int {
	r := &Int{}
	aAbs, bAbs := new(big.Int).Abs(&a.v), new(big.Int).Abs(&b.v)
	r.v.GCD(nil, nil, aAbs, bAbs)
	return r
}

// LCM returns the least common multiple via product/GCD.
func LCM(a, b *Int) *Int {
	if a.IsZero() || b.IsZero() {
		return New()
	}
	g := GCD(a, b)
	return Mul(FloorDiv(a, g).Abs(), b.Abs())
}

// Sqrt returns the integer square root (floor(sqrt(n))) via Newton's
// method, bounded by the bit length of n so it always terminates. Panics
// if n is negative; callers must check Sign() first (surfaced as an
// arithmetic/domain error by the VM).
func Sqrt(n *Int) *Int {
	if n.Sign() < 0 {
		panic("bigint: Sqrt of negative number")
	}
	if n.IsZero() {
		return New()
	}
	x := &Int{}
	x.v.Set(&n.v)
	guess := new(big.Int).Rsh(&n.v, uint(n.v.BitLen()/2+1))
	if guess.Sign() == 0 {
		guess.SetInt64(1)
	}
	maxIter := n.v.BitLen() + 8
	for i := 0; i < maxIter; i++ {
		// next = (guess + n/guess) / 2
		q := new(big.Int).Div(&n.v, guess)
		sum := new(big.Int).Add(guess, q)
		next := sum.Rsh(sum, 1)
		if next.Cmp(guess) >= 0 {
			break
		}
		guess = next
	}
	// guess now satisfies guess*guess <= n < (guess+1)*(guess+1); correct by
	// at most one step either way to be safe against Newton overshoot.
	for new(big.Int).Mul(guess, guess).Cmp(&n.v) > 0 {
		guess.Sub(guess, big.NewInt(1))
	}
	next := new(big.Int).Add(guess, big.NewInt(1))
	for new(big.Int).Mul(next, next).Cmp(&n.v) <= 0 {
		guess.Set(next)
		next.Add(next, big.NewInt(1))
	}
	r := &Int{}
	r.v.Set(guess)
	return r
}

// Factorial returns n! for n >= 0.
func Factorial(n uint64) *Int {
	r := &Int{}
	r.v.MulRange(1, int64(n))
	if n == 0 {
		r.v.SetInt64(1)
	}
	return r
}

// ModPow returns base^exp mod m via square-and-multiply (math/big.Int.Exp
// already implements this; we expose it under the name spec.md §4.2 uses).
// exp must be non-negative.
func ModPow(base, exp, m *Int) *Int {
	r := &Int{}
	r.v.Exp(&base.v, &exp.v, &m.v)
	return r
}

// ExtendedGCD returns (g, x, y) such that a*x + b*y = g = gcd(a,b).
func ExtendedGCD(a, b *Int) (g, x, y *Int) {
	g, x, y = &Int{}, &Int{}, &Int{}
	g.v.GCD(&x.v, &y.v, &a.v, &b.v)
	return
}

// ProbablyPrime reports whether n is prime, using certainty rounds of the
// Miller-Rabin test (plus a Baillie-PSW check) via math/big. Unlike the
// source this runtime is modeled on — which advertised "Miller-Rabin" but
// actually ran trial division and discarded the certainty argument — this
// wrapper is honest: certainty rounds are threaded straight through to
// math/big.Int.ProbablyPrime.
func ProbablyPrime(n *Int, certainty int) bool {
	if n.Sign() <= 0 {
		return false
	}
	return n.v.ProbablyPrime(certainty)
}
