package compiler

import (
	"github.com/edadma/slate-sub000/pkg/ast"
	"github.com/edadma/slate-sub000/pkg/bytecode"
)

func (c *Compiler) compileStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		c.compileExpression(s.Expr)
		c.emitOp(bytecode.OpPop, s.Line())
	case *ast.LetStatement:
		c.compileLetStatement(s)
	case *ast.FunctionDeclaration:
		c.compileFunctionDeclaration(s)
	case *ast.BlockStatement:
		c.beginScope()
		for _, st := range s.Statements {
			c.compileStatement(st)
		}
		c.endScope(s.Line())
	case *ast.IfStatement:
		c.compileIfStatement(s)
	case *ast.WhileStatement:
		c.compileWhileStatement(s)
	case *ast.ForInStatement:
		c.compileForInStatement(s)
	case *ast.ReturnStatement:
		c.compileReturnStatement(s)
	case *ast.BreakStatement:
		c.compileBreak(s.Line())
	case *ast.ContinueStatement:
		c.compileContinue(s.Line())
	case *ast.ClassDeclaration:
		c.compileClassDeclaration(s)
	default:
		c.errorf(stmt.Line(), "compiler: unhandled statement %T", stmt)
	}
}

func (c *Compiler) compileLetStatement(s *ast.LetStatement) {
	c.compileExpression(s.Value)
	c.defineVariable(s.Name)
}

// defineVariable binds the value already sitting on top of the stack to
// name: a global definition (which pops it) at depth 0, or simply a new
// local slot (the value stays put) inside any nested scope.
func (c *Compiler) defineVariable(name string) {
	if c.scopeDepth == 0 {
		c.emitConstantOp(bytecode.OpDefineGlobal, c.stringConstant(name), 0)
		return
	}
	c.addLocal(name)
}

func (c *Compiler) compileIfStatement(s *ast.IfStatement) {
	line := s.Line()
	c.compileExpression(s.Condition)
	thenJump := c.emitJump(bytecode.OpJumpIfFalse, line)
	c.emitOp(bytecode.OpPop, line)
	c.compileStatement(s.Then)
	elseJump := c.emitJump(bytecode.OpJump, line)
	c.patchJump(thenJump)
	c.emitOp(bytecode.OpPop, line)
	if s.Else != nil {
		c.compileStatement(s.Else)
	}
	c.patchJump(elseJump)
}

func (c *Compiler) compileWhileStatement(s *ast.WhileStatement) {
	line := s.Line()
	outerDepth := c.scopeDepth
	loopStart := c.chunk().Len()
	c.compileExpression(s.Condition)
	exitJump := c.emitJump(bytecode.OpJumpIfFalse, line)
	c.emitOp(bytecode.OpPop, line)

	c.loops = append(c.loops, loopContext{outerDepth: outerDepth, continueDepth: outerDepth, continueTarget: loopStart})
	c.compileStatement(s.Body)
	loop := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]

	c.emitLoop(loopStart, line)
	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop, line)
	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
}

// compileForInStatement drives `for (v in iterable) { body }` off
// OpIterInit/OpIterNext: OpIterNext always pushes two values (the next
// element or Null, then a hasNext bool on top) so both branches leave the
// stack at the same depth, avoiding a dedicated operand on OpIterNext.
func (c *Compiler) compileForInStatement(s *ast.ForInStatement) {
	line := s.Line()
	outerDepth := c.scopeDepth

	c.compileExpression(s.Iterable)
	c.emitOp(bytecode.OpIterInit, line)
	c.beginScope()
	c.addLocal("@iter")
	iterDepth := c.scopeDepth

	loopStart := c.chunk().Len()
	c.emitOp(bytecode.OpIterNext, line)
	exitJump := c.emitJump(bytecode.OpJumpIfFalse, line)
	c.emitOp(bytecode.OpPop, line) // discard the true hasNext bool

	c.beginScope()
	c.addLocal(s.Var) // binds the value OpIterNext just pushed
	c.loops = append(c.loops, loopContext{outerDepth: outerDepth, continueDepth: iterDepth, continueTarget: loopStart})
	for _, st := range s.Body.Statements {
		c.compileStatement(st)
	}
	loop := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	c.endScope(line)

	c.emitLoop(loopStart, line)
	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop, line) // discard the false hasNext bool
	c.emitOp(bytecode.OpPop, line) // discard the Null sentinel
	c.endScope(line)               // discard @iter
	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
}

func (c *Compiler) compileBreak(line int) {
	if len(c.loops) == 0 {
		c.errorf(line, "break outside a loop")
		return
	}
	i := len(c.loops) - 1
	c.popLocalsAbove(c.loops[i].outerDepth, line)
	j := c.emitJump(bytecode.OpJump, line)
	c.loops[i].breakJumps = append(c.loops[i].breakJumps, j)
}

func (c *Compiler) compileContinue(line int) {
	if len(c.loops) == 0 {
		c.errorf(line, "continue outside a loop")
		return
	}
	loop := c.loops[len(c.loops)-1]
	c.popLocalsAbove(loop.continueDepth, line)
	c.emitLoop(loop.continueTarget, line)
}

func (c *Compiler) compileReturnStatement(s *ast.ReturnStatement) {
	line := s.Line()
	if s.Value != nil {
		c.compileExpression(s.Value)
	} else {
		c.emitOp(bytecode.OpNull, line)
	}
	c.emitOp(bytecode.OpReturn, line)
}
