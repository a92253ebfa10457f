package bytecode

// UpvalueDesc describes where a closure's captured variable comes from:
// either a slot in the immediately enclosing frame (IsLocal true) or an
// upvalue already captured by that enclosing closure (IsLocal false),
// per spec.md §6 function object layout.
type UpvalueDesc struct {
	IsLocal bool
	Index   uint8
}

// FunctionProto is a compiled function's static shape: its name (empty
// for anonymous arrow functions), arity, whether it is an
// expression-bodied arrow (affects implicit-return compilation only, not
// execution), the chunk of bytecode implementing its body, and the
// upvalue descriptors a closure over it must capture.
type FunctionProto struct {
	Name       string
	Arity      int
	IsExpr     bool
	Chunk      *Chunk
	Upvalues   []UpvalueDesc
	NumLocals  int
}

// NewFunctionProto returns an empty prototype ready for a compiler to
// fill in.
func NewFunctionProto(name string, arity int) *FunctionProto {
	return &FunctionProto{Name: name, Arity: arity, Chunk: New()}
}

// ProtoFunction wraps a FunctionProto as a value.Callable so the compiler
// can drop a compiled function straight into a constant pool; OpClosure's
// VM handler reads it back out via Proto() and builds the real runtime
// closure (capturing upvalues) around it.
type ProtoFunction struct {
	P *FunctionProto
}

func (f *ProtoFunction) Name() string          { return f.P.Name }
func (f *ProtoFunction) Arity() int            { return f.P.Arity }
func (f *ProtoFunction) Proto() *FunctionProto { return f.P }
