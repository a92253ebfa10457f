package parser_test

import (
	"testing"

	"github.com/edadma/slate-sub000/pkg/ast"
	"github.com/edadma/slate-sub000/pkg/lexer"
	"github.com/edadma/slate-sub000/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors: %v", p.Errors())
	return prog
}

func TestLetStatement(t *testing.T) {
	prog := parseProgram(t, `let x = 5`)
	require.Len(t, prog.Statements, 1)
	let, ok := prog.Statements[0].(*ast.LetStatement)
	require.True(t, ok)
	assert.Equal(t, "x", let.Name)
	lit, ok := let.Value.(*ast.IntLiteral)
	require.True(t, ok)
	assert.EqualValues(t, 5, lit.Value)
}

func TestArrowFunctionDeclaration(t *testing.T) {
	prog := parseProgram(t, `let add = (a, b) -> a + b`)
	fn, ok := prog.Statements[0].(*ast.FunctionDeclaration)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, fn.Params)
	require.NotNil(t, fn.ExprBody)
}

func TestPrecedenceMultiplyBeforeAdd(t *testing.T) {
	prog := parseProgram(t, `1 + 2 * 3`)
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	bin := stmt.Expr.(*ast.BinaryExpr)
	assert.Equal(t, "+", bin.Operator)
	_, leftIsLit := bin.Left.(*ast.IntLiteral)
	assert.True(t, leftIsLit)
	right, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", right.Operator)
}

func TestClassDeclaration(t *testing.T) {
	src := `class Point {
  x, y
  init(x, y) { self.x = x }
  plus(other) { return self }
}`
	prog := parseProgram(t, src)
	class, ok := prog.Statements[0].(*ast.ClassDeclaration)
	require.True(t, ok)
	assert.Equal(t, "Point", class.Name)
	assert.Equal(t, []string{"x", "y"}, class.Fields)
	require.Len(t, class.Methods, 2)
	assert.Equal(t, "init", class.Methods[0].Name)
	assert.Equal(t, "plus", class.Methods[1].Name)
}

func TestForInAndArrayLiteral(t *testing.T) {
	prog := parseProgram(t, `for (v in [1, 2, 3]) { print(v) }`)
	forIn, ok := prog.Statements[0].(*ast.ForInStatement)
	require.True(t, ok)
	assert.Equal(t, "v", forIn.Var)
	arr, ok := forIn.Iterable.(*ast.ArrayLiteral)
	require.True(t, ok)
	assert.Len(t, arr.Elements, 3)
}

func TestRangeLiteral(t *testing.T) {
	prog := parseProgram(t, `let r = 1..10`)
	let := prog.Statements[0].(*ast.LetStatement)
	rng, ok := let.Value.(*ast.RangeLiteral)
	require.True(t, ok)
	assert.False(t, rng.Inclusive)
}

func TestSuperCall(t *testing.T) {
	src := `class Dog : Animal {
  speak() { return super.speak() }
}`
	prog := parseProgram(t, src)
	class := prog.Statements[0].(*ast.ClassDeclaration)
	assert.Equal(t, "Animal", class.SuperClass)
	ret := class.Methods[0].Body.Statements[0].(*ast.ReturnStatement)
	call := ret.Value.(*ast.CallExpr)
	get := call.Callee.(*ast.GetExpr)
	assert.Equal(t, "speak", get.Name)
	_, ok := get.Receiver.(*ast.SuperExpr)
	assert.True(t, ok)
}

func TestMethodChaining(t *testing.T) {
	prog := parseProgram(t, `[1,2,3].filter(x -> x mod 2 == 0).map(x -> x * x)`)
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	outer, ok := stmt.Expr.(*ast.CallExpr)
	require.True(t, ok)
	get, ok := outer.Callee.(*ast.GetExpr)
	require.True(t, ok)
	assert.Equal(t, "map", get.Name)
}
