// Package compiler lowers Slate's AST into bytecode chunks for pkg/vm: a
// single-pass walk per function resolving locals, upvalues and globals,
// in the same one-struct-per-compile shape as the teacher's own
// `pkg/compiler/compiler.go`, rebuilt against the new `pkg/ast`/
// `pkg/bytecode` the teacher's grammar never had.
package compiler

import (
	"fmt"

	"github.com/edadma/slate-sub000/pkg/ast"
	"github.com/edadma/slate-sub000/pkg/bytecode"
	"github.com/edadma/slate-sub000/pkg/value"
)

type local struct {
	name string
	// depth of 0 is reserved: locals only exist at depth >= 1. Depth 0
	// identifiers are resolved as globals instead (see resolveLocal).
	depth int
}

type upvalue struct {
	isLocal bool
	index   uint8
}

type loopContext struct {
	// outerDepth is the scope depth in effect before the loop's own
	// scope(s) were opened; break unwinds locals down to this depth.
	outerDepth int
	// continueDepth is the scope depth continue unwinds locals down to
	// before jumping back to continueTarget (loopStart for while; the
	// depth holding just the hidden iterator local for for-in).
	continueDepth  int
	continueTarget int
	breakJumps     []int
}

// Compiler compiles a single function body. Nested function/method/arrow
// bodies get their own Compiler chained through enclosing, mirroring how
// the teacher's VM call frames chain through a parent pointer.
type Compiler struct {
	enclosing *Compiler

	proto *bytecode.FunctionProto

	locals     []local
	maxLocals  int
	scopeDepth int
	upvalues   []upvalue

	// hasSelf is true while compiling a method body (self is reserved as
	// a genuine named local at slot 0, so nested arrows can capture it
	// like any other upvalue).
	hasSelf bool
	// homeClass, when non-empty, names the class whose method is being
	// compiled. It is not emitted into bytecode: the VM's OpMethod handler
	// sets the closure's HomeClass at runtime, which is what lets
	// `super.name` resolve from the method's lexical class rather than the
	// receiver's dynamic class.
	homeClass string

	loops []loopContext

	errors []string
}

// Compile compiles a full program into the implicit top-level script
// function (arity 0, depth-0 locals are globals). A trailing expression
// statement's value becomes the script's result instead of being popped
// (the REPL's "=> value" convention); every other statement, and every
// other trailing statement kind, leaves the script's result as null.
func Compile(program *ast.Program) (*bytecode.FunctionProto, []string) {
	c := &Compiler{proto: bytecode.NewFunctionProto("script", 0)}
	stmts := program.Statements
	for i, stmt := range stmts {
		if i == len(stmts)-1 {
			if last, ok := stmt.(*ast.ExpressionStatement); ok {
				c.compileExpression(last.Expr)
				break
			}
		}
		c.compileStatement(stmt)
	}
	if len(stmts) == 0 {
		c.emitOp(bytecode.OpNull, 0)
	} else if _, ok := stmts[len(stmts)-1].(*ast.ExpressionStatement); !ok {
		c.emitOp(bytecode.OpNull, 0)
	}
	c.emitOp(bytecode.OpReturn, 0)
	c.proto.NumLocals = c.maxLocals
	return c.proto, c.errors
}

func (c *Compiler) errorf(line int, format string, args ...interface{}) {
	c.errors = append(c.errors, fmt.Sprintf("line %d: %s", line, fmt.Sprintf(format, args...)))
}

func (c *Compiler) chunk() *bytecode.Chunk { return c.proto.Chunk }

// ---- emit helpers ----

func (c *Compiler) emitOp(op bytecode.Opcode, line int) int {
	return c.chunk().Write(op, uint16(line))
}

func (c *Compiler) emitByteOperand(b byte, line int) {
	c.chunk().WriteByte(b, uint16(line))
}

func (c *Compiler) emitU16Operand(v uint16, line int) {
	c.chunk().WriteU16(v, uint16(line))
}

// emitConstantOp emits op followed by a u16 constant-pool index operand
// (OpConstant, OpDefineGlobal, OpGetGlobal, OpSetGlobal, OpGetProperty,
// OpSetProperty, OpClass, OpMethod, OpGetStatic, OpSetStatic).
func (c *Compiler) emitConstantOp(op bytecode.Opcode, idx uint16, line int) {
	c.emitOp(op, line)
	c.emitU16Operand(idx, line)
}

// emitByteOp emits op followed by a single byte operand (OpGetLocal,
// OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall).
func (c *Compiler) emitByteOp(op bytecode.Opcode, b byte, line int) {
	c.emitOp(op, line)
	c.emitByteOperand(b, line)
}

// emitJump emits op with a placeholder u16 distance and returns the
// offset of that placeholder for patchJump to fill in later.
func (c *Compiler) emitJump(op bytecode.Opcode, line int) int {
	c.emitOp(op, line)
	off := c.chunk().Len()
	c.emitU16Operand(0xFFFF, line)
	return off
}

// patchJump backfills the jump distance at off so it lands on the next
// instruction to be emitted.
func (c *Compiler) patchJump(off int) {
	dist := c.chunk().Len() - (off + 2)
	c.chunk().PatchU16(off, uint16(dist))
}

// emitLoop emits OpLoop, jumping backward to loopStart.
func (c *Compiler) emitLoop(loopStart int, line int) {
	c.emitOp(bytecode.OpLoop, line)
	dist := c.chunk().Len() + 2 - loopStart
	c.emitU16Operand(uint16(dist), line)
}

func (c *Compiler) stringConstant(s string) uint16 {
	return c.chunk().AddConstant(value.NewString(s))
}

// ---- scope / locals ----

func (c *Compiler) beginScope() { c.scopeDepth++ }

// endScope pops every local declared at the current depth, emitting one
// OpPop per local, then drops back a level.
func (c *Compiler) endScope(line int) {
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth == c.scopeDepth {
		c.emitOp(bytecode.OpPop, line)
		c.locals = c.locals[:len(c.locals)-1]
	}
	c.scopeDepth--
}

// popLocalsAbove emits OpPop for every local declared deeper than depth,
// WITHOUT removing them from c.locals — used to unwind the stack ahead of
// a break/continue jump whose target lies outside the normal scope exit.
func (c *Compiler) popLocalsAbove(depth int, line int) {
	for i := len(c.locals) - 1; i >= 0 && c.locals[i].depth > depth; i-- {
		c.emitOp(bytecode.OpPop, line)
	}
}

func (c *Compiler) addLocal(name string) {
	c.locals = append(c.locals, local{name: name, depth: c.scopeDepth})
	if len(c.locals) > c.maxLocals {
		c.maxLocals = len(c.locals)
	}
}

func (c *Compiler) resolveLocal(name string) (int, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return i, true
		}
	}
	return 0, false
}

// resolveUpvalue walks the enclosing-compiler chain, registering a fresh
// upvalue descriptor on every intermediate compiler on the way back down
// (spec.md §6's `(is_local, index)` descriptor pair).
func (c *Compiler) resolveUpvalue(name string) (int, bool) {
	if c.enclosing == nil {
		return 0, false
	}
	if idx, ok := c.enclosing.resolveLocal(name); ok {
		return int(c.addUpvalue(uint8(idx), true)), true
	}
	if idx, ok := c.enclosing.resolveUpvalue(name); ok {
		return int(c.addUpvalue(uint8(idx), false)), true
	}
	return 0, false
}

func (c *Compiler) addUpvalue(index uint8, isLocal bool) uint8 {
	for i, uv := range c.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return uint8(i)
		}
	}
	c.upvalues = append(c.upvalues, upvalue{isLocal: isLocal, index: index})
	c.proto.Upvalues = append(c.proto.Upvalues, bytecode.UpvalueDesc{IsLocal: isLocal, Index: index})
	return uint8(len(c.upvalues) - 1)
}

// resolveName compiles a read of a bare identifier through the
// local -> upvalue -> global chain, used for plain variable references,
// superclass-name lookups and the like.
func (c *Compiler) resolveName(name string, line int) {
	if idx, ok := c.resolveLocal(name); ok {
		c.emitByteOp(bytecode.OpGetLocal, byte(idx), line)
		return
	}
	if idx, ok := c.resolveUpvalue(name); ok {
		c.emitByteOp(bytecode.OpGetUpvalue, byte(idx), line)
		return
	}
	c.emitConstantOp(bytecode.OpGetGlobal, c.stringConstant(name), line)
}
