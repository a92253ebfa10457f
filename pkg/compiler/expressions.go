package compiler

import (
	"github.com/edadma/slate-sub000/pkg/ast"
	"github.com/edadma/slate-sub000/pkg/bytecode"
	"github.com/edadma/slate-sub000/pkg/value"
)

var binaryOps = map[string]bytecode.Opcode{
	"+": bytecode.OpAdd, "-": bytecode.OpSub, "*": bytecode.OpMul,
	"/": bytecode.OpDiv, "mod": bytecode.OpMod, "**": bytecode.OpPow,
	"==": bytecode.OpEqual, "!=": bytecode.OpNotEqual,
	"<": bytecode.OpLess, "<=": bytecode.OpLessEqual,
	">": bytecode.OpGreater, ">=": bytecode.OpGreaterEqual,
	"&": bytecode.OpBitAnd, "|": bytecode.OpBitOr, "^": bytecode.OpBitXor,
	"<<": bytecode.OpShl, ">>": bytecode.OpShr,
}

func (c *Compiler) compileExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		c.emitConstantOp(bytecode.OpConstant, c.chunk().AddConstant(value.Int32(e.Value)), e.Line())
	case *ast.FloatLiteral:
		c.emitConstantOp(bytecode.OpConstant, c.chunk().AddConstant(value.Float64(e.Value)), e.Line())
	case *ast.StringLiteral:
		c.emitConstantOp(bytecode.OpConstant, c.chunk().AddConstant(value.NewString(e.Value)), e.Line())
	case *ast.BoolLiteral:
		if e.Value {
			c.emitOp(bytecode.OpTrue, e.Line())
		} else {
			c.emitOp(bytecode.OpFalse, e.Line())
		}
	case *ast.NullLiteral:
		c.emitOp(bytecode.OpNull, e.Line())
	case *ast.SelfExpr:
		c.compileSelfExpr(e)
	case *ast.Identifier:
		c.resolveName(e.Name, e.Line())
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			c.compileExpression(el)
		}
		c.emitOp(bytecode.OpMakeArray, e.Line())
		c.emitU16Operand(uint16(len(e.Elements)), e.Line())
	case *ast.ObjectLiteral:
		for _, entry := range e.Entries {
			c.emitConstantOp(bytecode.OpConstant, c.chunk().AddConstant(value.NewString(entry.Key)), e.Line())
			c.compileExpression(entry.Value)
		}
		c.emitOp(bytecode.OpMakeObject, e.Line())
		c.emitU16Operand(uint16(len(e.Entries)), e.Line())
	case *ast.RangeLiteral:
		c.compileExpression(e.From)
		c.compileExpression(e.To)
		if e.Inclusive {
			c.emitOp(bytecode.OpTrue, e.Line())
		} else {
			c.emitOp(bytecode.OpFalse, e.Line())
		}
		c.emitOp(bytecode.OpMakeRange, e.Line())
	case *ast.UnaryExpr:
		c.compileExpression(e.Operand)
		switch e.Operator {
		case "-":
			c.emitOp(bytecode.OpNeg, e.Line())
		case "not":
			c.emitOp(bytecode.OpNot, e.Line())
		case "~":
			c.emitOp(bytecode.OpBitNot, e.Line())
		}
	case *ast.BinaryExpr:
		c.compileExpression(e.Left)
		c.compileExpression(e.Right)
		if op, ok := binaryOps[e.Operator]; ok {
			c.emitOp(op, e.Line())
		} else {
			c.errorf(e.Line(), "compiler: unknown binary operator %q", e.Operator)
		}
	case *ast.LogicalExpr:
		c.compileLogicalExpr(e)
	case *ast.AssignExpr:
		c.compileAssignExpr(e)
	case *ast.CallExpr:
		c.compileCallExpr(e)
	case *ast.GetExpr:
		c.compileGetExpr(e)
	case *ast.IndexExpr:
		c.compileExpression(e.Receiver)
		c.compileExpression(e.Index)
		c.emitOp(bytecode.OpGetIndex, e.Line())
	case *ast.ArrowFunction:
		c.compileClosureValue("<arrow>", e.Params, e.ExprBody, e.BlockBody, e.Line())
	default:
		c.errorf(expr.Line(), "compiler: unhandled expression %T", expr)
	}
}

// compileSelfExpr emits OpGetSelf when compiling directly inside the
// owning method's frame, or an upvalue read when self is captured by a
// nested arrow function closed over that method.
func (c *Compiler) compileSelfExpr(e *ast.SelfExpr) {
	if c.hasSelf {
		c.emitOp(bytecode.OpGetSelf, e.Line())
		return
	}
	if idx, ok := c.resolveUpvalue("self"); ok {
		c.emitByteOp(bytecode.OpGetUpvalue, byte(idx), e.Line())
		return
	}
	c.errorf(e.Line(), "self used outside a method")
}

// compileLogicalExpr short-circuits and/or with jumps instead of calling
// a boolean operator; xor always evaluates both sides (there is nothing
// to short-circuit), so it reuses the bitwise xor opcode directly.
func (c *Compiler) compileLogicalExpr(e *ast.LogicalExpr) {
	line := e.Line()
	if e.Operator == "xor" {
		c.compileExpression(e.Left)
		c.compileExpression(e.Right)
		c.emitOp(bytecode.OpBitXor, line)
		return
	}

	c.compileExpression(e.Left)
	switch e.Operator {
	case "and":
		end := c.emitJump(bytecode.OpJumpIfFalse, line)
		c.emitOp(bytecode.OpPop, line)
		c.compileExpression(e.Right)
		c.patchJump(end)
	case "or":
		elseJump := c.emitJump(bytecode.OpJumpIfFalse, line)
		end := c.emitJump(bytecode.OpJump, line)
		c.patchJump(elseJump)
		c.emitOp(bytecode.OpPop, line)
		c.compileExpression(e.Right)
		c.patchJump(end)
	}
}

// compileAssignExpr leaves the assigned value on the stack (assignment is
// an expression); ExpressionStatement is what discards it with OpPop.
func (c *Compiler) compileAssignExpr(e *ast.AssignExpr) {
	line := e.Line()
	switch target := e.Target.(type) {
	case *ast.Identifier:
		c.compileExpression(e.Value)
		if idx, ok := c.resolveLocal(target.Name); ok {
			c.emitByteOp(bytecode.OpSetLocal, byte(idx), line)
			return
		}
		if idx, ok := c.resolveUpvalue(target.Name); ok {
			c.emitByteOp(bytecode.OpSetUpvalue, byte(idx), line)
			return
		}
		c.emitConstantOp(bytecode.OpSetGlobal, c.stringConstant(target.Name), line)
	case *ast.GetExpr:
		c.compileExpression(target.Receiver)
		c.compileExpression(e.Value)
		c.emitConstantOp(bytecode.OpSetProperty, c.stringConstant(target.Name), line)
	case *ast.IndexExpr:
		c.compileExpression(target.Receiver)
		c.compileExpression(target.Index)
		c.compileExpression(e.Value)
		c.emitOp(bytecode.OpSetIndex, line)
	default:
		c.errorf(line, "compiler: invalid assignment target %T", e.Target)
	}
}

// compileCallExpr compiles `receiver.name(args)` as a single OpInvoke
// (skips materializing an intermediate BoundMethod value), `super.name
// (args)` as OpSuperInvoke, and everything else as a plain value call.
func (c *Compiler) compileCallExpr(e *ast.CallExpr) {
	line := e.Line()
	if get, ok := e.Callee.(*ast.GetExpr); ok {
		if _, isSuper := get.Receiver.(*ast.SuperExpr); isSuper {
			c.compileSelfForSuper(line)
			for _, arg := range e.Args {
				c.compileExpression(arg)
			}
			c.emitConstantOp(bytecode.OpSuperInvoke, c.stringConstant(get.Name), line)
			c.emitByteOperand(byte(len(e.Args)), line)
			return
		}
		c.compileExpression(get.Receiver)
		for _, arg := range e.Args {
			c.compileExpression(arg)
		}
		c.emitConstantOp(bytecode.OpInvoke, c.stringConstant(get.Name), line)
		c.emitByteOperand(byte(len(e.Args)), line)
		return
	}
	c.compileExpression(e.Callee)
	for _, arg := range e.Args {
		c.compileExpression(arg)
	}
	c.emitByteOp(bytecode.OpCall, byte(len(e.Args)), line)
}

func (c *Compiler) compileSelfForSuper(line int) {
	if c.hasSelf {
		c.emitOp(bytecode.OpGetSelf, line)
		return
	}
	if idx, ok := c.resolveUpvalue("self"); ok {
		c.emitByteOp(bytecode.OpGetUpvalue, byte(idx), line)
		return
	}
	c.errorf(line, "super used outside a method")
}

// compileGetExpr compiles plain `.name` property reads; `super.name` as a
// bare expression (not called) still reads the bound method the same way
// a normal property read would, via the receiver (self).
func (c *Compiler) compileGetExpr(e *ast.GetExpr) {
	line := e.Line()
	if _, isSuper := e.Receiver.(*ast.SuperExpr); isSuper {
		c.compileSelfForSuper(line)
		c.emitConstantOp(bytecode.OpGetProperty, c.stringConstant(e.Name), line)
		return
	}
	c.compileExpression(e.Receiver)
	c.emitConstantOp(bytecode.OpGetProperty, c.stringConstant(e.Name), line)
}
