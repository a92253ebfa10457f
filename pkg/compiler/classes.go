package compiler

import (
	"github.com/edadma/slate-sub000/pkg/ast"
	"github.com/edadma/slate-sub000/pkg/bytecode"
	"github.com/edadma/slate-sub000/pkg/value"
)

// compileClassDeclaration pushes a class template via OpClass, binds its
// name immediately (so methods and a superclass expression can both refer
// to the class by name while it is being built), then re-reads the class
// back onto the stack to attach an optional superclass and each method,
// finally popping that extra reference once attachment is done.
func (c *Compiler) compileClassDeclaration(decl *ast.ClassDeclaration) {
	line := decl.Line()

	classVal := value.NewClass(decl.Name, nil)
	value.ClassOf(classVal).Fields = decl.Fields
	idx := c.chunk().AddConstant(classVal)
	c.emitConstantOp(bytecode.OpClass, idx, line)
	c.defineVariable(decl.Name)

	c.resolveName(decl.Name, line)

	if decl.SuperClass != "" {
		c.resolveName(decl.SuperClass, line)
		c.emitOp(bytecode.OpInherit, line)
	}

	for _, m := range decl.Methods {
		c.compileMethod(decl.Name, m)
	}

	c.emitOp(bytecode.OpPop, line)
}

func (c *Compiler) compileMethod(className string, m *ast.MethodDeclaration) {
	line := m.Line()
	nested := c.newFunctionScope(m.Name, m.Params, true)
	nested.homeClass = className
	nested.compileFunctionBody(nil, m.Body, line)
	c.finishClosure(nested, line)

	nameIdx := c.stringConstant(m.Name)
	if m.IsStatic {
		c.emitConstantOp(bytecode.OpSetStatic, nameIdx, line)
	} else {
		c.emitConstantOp(bytecode.OpMethod, nameIdx, line)
	}
}
