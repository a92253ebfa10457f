package compiler

import (
	"github.com/edadma/slate-sub000/pkg/ast"
	"github.com/edadma/slate-sub000/pkg/bytecode"
	"github.com/edadma/slate-sub000/pkg/value"
)

// compileFunctionDeclaration binds the function's own name before
// compiling its body when declared in a local scope, so a recursive call
// inside the body resolves to that reserved slot via the normal upvalue
// chain; at global scope the name only has to exist by the time the
// function is actually invoked, which OpDefineGlobal already guarantees.
func (c *Compiler) compileFunctionDeclaration(s *ast.FunctionDeclaration) {
	if c.scopeDepth > 0 {
		c.addLocal(s.Name)
	}
	c.compileClosureValue(s.Name, s.Params, s.ExprBody, s.BlockBody, s.Line())
	if c.scopeDepth == 0 {
		c.emitConstantOp(bytecode.OpDefineGlobal, c.stringConstant(s.Name), s.Line())
	}
}

// compileClosureValue compiles params/body into a fresh nested Compiler,
// then emits OpClosure in the enclosing compiler referencing the
// resulting prototype plus one (isLocal, index) byte pair per upvalue it
// captured, matching the layout pkg/bytecode's disassembler expects.
func (c *Compiler) compileClosureValue(name string, params []string, exprBody ast.Expression, blockBody *ast.BlockStatement, line int) {
	nested := c.newFunctionScope(name, params, false)
	nested.compileFunctionBody(exprBody, blockBody, line)
	c.finishClosure(nested, line)
}

// newFunctionScope starts a nested Compiler for a function/method body.
// Scope depth begins at 1 so parameters (and self, for methods) are
// locals from the first instruction; withSelf reserves slot 0 for self.
func (c *Compiler) newFunctionScope(name string, params []string, withSelf bool) *Compiler {
	proto := bytecode.NewFunctionProto(name, len(params))
	nested := &Compiler{enclosing: c, proto: proto, scopeDepth: 1, hasSelf: withSelf}
	if withSelf {
		nested.addLocal("self")
	}
	for _, p := range params {
		nested.addLocal(p)
	}
	return nested
}

func (c *Compiler) compileFunctionBody(exprBody ast.Expression, blockBody *ast.BlockStatement, line int) {
	c.proto.IsExpr = exprBody != nil
	if exprBody != nil {
		c.compileExpression(exprBody)
		c.emitOp(bytecode.OpReturn, line)
	} else {
		for _, st := range blockBody.Statements {
			c.compileStatement(st)
		}
		c.emitOp(bytecode.OpNull, blockBody.Line())
		c.emitOp(bytecode.OpReturn, blockBody.Line())
	}
	c.proto.NumLocals = c.maxLocals
}

// finishClosure emits the OpClosure that binds nested's compiled
// prototype in the enclosing (c) chunk's constant pool, followed by the
// upvalue descriptor bytes OpClosure's runtime handler walks to capture
// each one from c's own locals/upvalues.
func (c *Compiler) finishClosure(nested *Compiler, line int) {
	c.errors = append(c.errors, nested.errors...)
	idx := c.chunk().AddConstant(value.NewFunction(&bytecode.ProtoFunction{P: nested.proto}))
	c.emitConstantOp(bytecode.OpClosure, idx, line)
	for _, uv := range nested.upvalues {
		b := byte(0)
		if uv.isLocal {
			b = 1
		}
		c.emitByteOperand(b, line)
		c.emitByteOperand(uv.index, line)
	}
}
