package compiler_test

import (
	"testing"

	"github.com/edadma/slate-sub000/pkg/bytecode"
	"github.com/edadma/slate-sub000/pkg/compiler"
	"github.com/edadma/slate-sub000/pkg/lexer"
	"github.com/edadma/slate-sub000/pkg/parser"
	"github.com/edadma/slate-sub000/pkg/value"
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

func opsOf(proto *bytecode.FunctionProto) []bytecode.Opcode {
	var ops []bytecode.Opcode
	code := proto.Chunk.Code
	for i := 0; i < len(code); {
		op := bytecode.Opcode(code[i])
		ops = append(ops, op)
		switch op {
		case bytecode.OpConstant, bytecode.OpDefineGlobal, bytecode.OpGetGlobal, bytecode.OpSetGlobal,
			bytecode.OpGetProperty, bytecode.OpSetProperty, bytecode.OpClass, bytecode.OpMethod,
			bytecode.OpGetStatic, bytecode.OpSetStatic, bytecode.OpJump, bytecode.OpJumpIfFalse,
			bytecode.OpJumpIfTrue, bytecode.OpLoop, bytecode.OpMakeArray, bytecode.OpMakeObject,
			bytecode.OpMakeTemplate:
			i += 3
		case bytecode.OpGetLocal, bytecode.OpSetLocal, bytecode.OpGetUpvalue, bytecode.OpSetUpvalue, bytecode.OpCall:
			i += 2
		case bytecode.OpInvoke, bytecode.OpSuperInvoke:
			i += 4
		case bytecode.OpClosure:
			idx := proto.Chunk.ReadU16(i + 1)
			i += 3
			if int(idx) < len(proto.Chunk.Constants) {
				if fo, ok := proto.Chunk.Constants[idx].Heap().(interface{ Proto() *bytecode.FunctionProto }); ok {
					i += 2 * len(fo.Proto().Upvalues)
				}
			}
		default:
			i++
		}
	}
	return ops
}

func TestCompileIntegerLiteral(t *testing.T) {
	proto := mustCompile(t, "42")
	ops := opsOf(proto)
	assert.Equal(t, []bytecode.Opcode{bytecode.OpConstant, bytecode.OpReturn}, ops)
	assert.EqualValues(t, 42, proto.Chunk.Constants[0].AsInt32())
}

func TestCompileBooleanLiterals(t *testing.T) {
	proto := mustCompile(t, "true")
	ops := opsOf(proto)
	assert.Equal(t, []bytecode.Opcode{bytecode.OpTrue, bytecode.OpReturn}, ops)
}

// TestCompileLetAndGlobalRead also covers Compile's trailing-expression
// convention: the final bare `x` isn't popped, so its value becomes the
// script's result instead of being discarded.
func TestCompileLetAndGlobalRead(t *testing.T) {
	proto := mustCompile(t, "let x = 5\nx")
	ops := opsOf(proto)
	assert.Equal(t, []bytecode.Opcode{
		bytecode.OpConstant, bytecode.OpDefineGlobal,
		bytecode.OpGetGlobal, bytecode.OpReturn,
	}, ops)
}

func TestCompileBinaryExpr(t *testing.T) {
	proto := mustCompile(t, "3 + 4")
	ops := opsOf(proto)
	assert.Equal(t, []bytecode.Opcode{
		bytecode.OpConstant, bytecode.OpConstant, bytecode.OpAdd, bytecode.OpReturn,
	}, ops)
}

func TestCompileIfStatement(t *testing.T) {
	proto := mustCompile(t, "if (true) { 1 } else { 2 }")
	ops := opsOf(proto)
	assert.Contains(t, ops, bytecode.OpJumpIfFalse)
	assert.Contains(t, ops, bytecode.OpJump)
}

func TestCompileWhileLoop(t *testing.T) {
	proto := mustCompile(t, "let i = 0\nwhile (i < 3) { i = i + 1 }")
	ops := opsOf(proto)
	assert.Contains(t, ops, bytecode.OpLoop)
	assert.Contains(t, ops, bytecode.OpJumpIfFalse)
}

func TestCompileForIn(t *testing.T) {
	proto := mustCompile(t, "for (v in 1..3) { v }")
	ops := opsOf(proto)
	assert.Contains(t, ops, bytecode.OpIterInit)
	assert.Contains(t, ops, bytecode.OpIterNext)
	assert.Contains(t, ops, bytecode.OpMakeRange)
}

func TestCompileBreak(t *testing.T) {
	proto := mustCompile(t, "while (true) { break }")
	ops := opsOf(proto)
	assert.Contains(t, ops, bytecode.OpJump)
}

func TestCompileFunctionDeclaration(t *testing.T) {
	proto := mustCompile(t, "let add = (a, b) -> a + b\nadd(1, 2)")
	ops := opsOf(proto)
	assert.Contains(t, ops, bytecode.OpClosure)
	assert.Contains(t, ops, bytecode.OpCall)
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	proto := mustCompile(t, "let make = (n) -> (x) -> x + n")
	ops := opsOf(proto)
	assert.Contains(t, ops, bytecode.OpClosure)
}

func TestCompileClassDeclaration(t *testing.T) {
	proto := mustCompile(t, `class Point {
  x, y
  init(x, y) { self.x = x }
}`)
	ops := opsOf(proto)
	assert.Equal(t, bytecode.OpClass, ops[0])
	assert.Contains(t, ops, bytecode.OpMethod)
}

func TestCompileClassWithSuper(t *testing.T) {
	proto := mustCompile(t, `class Dog : Animal {
  speak() { return super.speak() }
}`)
	ops := opsOf(proto)
	assert.Contains(t, ops, bytecode.OpInherit)
	var methodOps []bytecode.Opcode
	for _, k := range proto.Chunk.Constants {
		if fo, ok := k.Heap().(*value.FunctionObj); ok {
			if pf, ok := fo.Fn.(*bytecode.ProtoFunction); ok {
				methodOps = append(methodOps, opsOf(pf.P)...)
			}
		}
	}
	assert.Contains(t, methodOps, bytecode.OpSuperInvoke)
}

func TestCompileMethodCallUsesInvoke(t *testing.T) {
	proto := mustCompile(t, `[1,2,3].map(x -> x * 2)`)
	ops := opsOf(proto)
	assert.Contains(t, ops, bytecode.OpInvoke)
}

func TestCompileErrorOnBreakOutsideLoop(t *testing.T) {
	p := parser.New(lexer.New("break"))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())
	_, errs := compiler.Compile(prog)
	require.NotEmpty(t, errs)
}
