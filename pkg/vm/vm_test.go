package vm_test

import (
	"bytes"
	"testing"

	"github.com/edadma/slate-sub000/pkg/bytecode"
	"github.com/edadma/slate-sub000/pkg/compiler"
	"github.com/edadma/slate-sub000/pkg/lexer"
	"github.com/edadma/slate-sub000/pkg/parser"
	"github.com/edadma/slate-sub000/pkg/value"
	"github.com/edadma/slate-sub000/pkg/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, src string) *bytecode.FunctionProto {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors: %v", p.Errors())
	proto, errs := compiler.Compile(prog)
	require.Empty(t, errs, "compile errors: %v", errs)
	return proto
}

// run compiles and executes src on a fresh VM with stdout captured, and
// returns the implicit result plus anything printed.
func run(t *testing.T, src string) (value.Value, string) {
	t.Helper()
	proto := mustCompile(t, src)
	machine := vm.New()
	var out bytes.Buffer
	machine.SetOutput(&out)
	result, err := machine.Execute(proto)
	require.NoError(t, err)
	return result, out.String()
}

func runErr(t *testing.T, src string) error {
	t.Helper()
	proto := mustCompile(t, src)
	machine := vm.New()
	var out bytes.Buffer
	machine.SetOutput(&out)
	_, err := machine.Execute(proto)
	return err
}

func TestArithmeticAndCompare(t *testing.T) {
	result, _ := run(t, "2 + 3 * 4")
	assert.Equal(t, int32(14), result.AsInt32())

	result, _ = run(t, "(1 + 2) == 3")
	assert.True(t, result.AsBool())

	result, _ = run(t, "10 mod 3")
	assert.Equal(t, int32(1), result.AsInt32())
}

func TestClosureCapture(t *testing.T) {
	src := `
let counter = () -> {
  let n = 0
  return () -> { n = n + 1; return n }
}
let c = counter()
c()
c()
c()
`
	result, _ := run(t, src)
	assert.Equal(t, int32(3), result.AsInt32())
}

func TestFunctionCallAndReturn(t *testing.T) {
	src := `
let add = (a, b) -> a + b
add(20, 22)
`
	result, _ := run(t, src)
	assert.Equal(t, int32(42), result.AsInt32())
}

func TestClassConstructionAndMethodDispatch(t *testing.T) {
	src := `
class Point {
  x, y
  init(x, y) { self.x = x; self.y = y }
  plus(other) { return Point(self.x + other.x, self.y + other.y) }
  toString() { return "Point" }
}
let a = Point(1, 2)
let b = Point(3, 4)
let c = a.plus(b)
c.x + c.y
`
	result, _ := run(t, src)
	assert.Equal(t, int32(10), result.AsInt32())
}

func TestInheritanceAndSuper(t *testing.T) {
	src := `
class Animal {
  name
  init(name) { self.name = name }
  speak() { return "..." }
}
class Dog : Animal {
  init(name) { super.init(name) }
  speak() { return "Woof" }
  describe() { return self.name }
}
let d = Dog("Rex")
d.describe()
`
	result, _ := run(t, src)
	require.True(t, result.IsHeap())
	assert.Equal(t, "Rex", value.Display(result))
}

func TestArrayIterationAndHigherOrder(t *testing.T) {
	src := `
let total = 0
for (v in [1, 2, 3, 4, 5]) {
  total = total + v
}
total
`
	result, _ := run(t, src)
	assert.Equal(t, int32(15), result.AsInt32())

	src2 := "[1,2,3,4,5].filter(x -> x mod 2 == 0).map(x -> x * x)"
	result2, _ := run(t, src2)
	assert.Equal(t, "[4, 16]", value.Display(result2))
}

func TestRangeIteration(t *testing.T) {
	src := `
let total = 0
for (v in 1..=5) { total = total + v }
total
`
	result, _ := run(t, src)
	assert.Equal(t, int32(15), result.AsInt32())
}

func TestOperatorOverloadDispatch(t *testing.T) {
	src := `
class Vec {
  x, y
  init(x, y) { self.x = x; self.y = y }
  plus(other) { return Vec(self.x + other.x, self.y + other.y) }
  equals(other) { return self.x == other.x and self.y == other.y }
}
let a = Vec(1, 2)
let b = Vec(3, 4)
let c = a + b
let same = (c == Vec(4, 6))
same
`
	result, _ := run(t, src)
	assert.True(t, result.AsBool())
}

func TestPrintBuiltin(t *testing.T) {
	_, out := run(t, `println("hello")`)
	assert.Equal(t, "hello\n", out)
}

func TestBufferRoundTrip(t *testing.T) {
	src := `
let b = BufferBuilder()
b.appendU32LE(305419896)
let buf = b.finish()
let r = BufferReader(buf)
r.readU32LE()
`
	result, _ := run(t, src)
	assert.Equal(t, int32(305419896), result.AsInt32())
}

func TestDivisionByZeroRaisesArithmeticError(t *testing.T) {
	err := runErr(t, "1 / 0")
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, value.ErrArithmetic, rerr.Kind)
}

func TestUndefinedGlobalRaisesValueError(t *testing.T) {
	err := runErr(t, "doesNotExist")
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, value.ErrValue, rerr.Kind)
}

func TestNaNOrderingComparisonsAreAllFalse(t *testing.T) {
	src := `
let nan = 0.0 / 0.0;
[nan < 1, nan <= 1, nan > 1, nan >= 1, 1 < nan]
`
	result, _ := run(t, src)
	assert.Equal(t, "[false, false, false, false, false]", value.Display(result))
}

func TestMissingPropertyEvaluatesToUndefined(t *testing.T) {
	src := `
class Point {
  x, y
  init(x, y) { self.x = x; self.y = y }
}
let p = Point(1, 2)
p.z
`
	result, _ := run(t, src)
	assert.True(t, result.IsUndefined())
	assert.Equal(t, "undefined", value.Display(result))
}

func TestMissingMethodCallStillRaisesValueError(t *testing.T) {
	err := runErr(t, `
class Point {
  x, y
  init(x, y) { self.x = x; self.y = y }
}
let p = Point(1, 2)
p.bogus()
`)
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, value.ErrValue, rerr.Kind)
}

func TestArgArityMismatchRaisesArityError(t *testing.T) {
	err := runErr(t, `
let add = (a, b) -> a + b
add(1)
`)
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, value.ErrArity, rerr.Kind)
}

func TestArrayIndexOutOfRangeRaisesRangeError(t *testing.T) {
	err := runErr(t, "[1, 2, 3].get(10)")
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, value.ErrRange, rerr.Kind)
}

func TestFloorDivisionAndModWithNegativeDividend(t *testing.T) {
	result, _ := run(t, "(-7) / 3")
	assert.Equal(t, int32(-3), result.AsInt32())

	result, _ = run(t, "(-7) mod 3")
	assert.Equal(t, int32(2), result.AsInt32())
}

func TestIntFactorial(t *testing.T) {
	result, _ := run(t, "Int.factorial(20)")
	assert.Equal(t, "2432902008176640000", value.Display(result))
}

func TestExtractedMethodKeepsReceiverBinding(t *testing.T) {
	src := `
let a = []
let push = a.push
push(1)
a.length()
`
	result, _ := run(t, src)
	assert.Equal(t, int32(1), result.AsInt32())
}

func TestStackTraceCarriesFrameNames(t *testing.T) {
	err := runErr(t, `
let boom = () -> 1 / 0
boom()
`)
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.NotEmpty(t, rerr.StackTrace)
	assert.Equal(t, "boom", rerr.StackTrace[0].Name)
}
