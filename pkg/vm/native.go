package vm

import "github.com/edadma/slate-sub000/pkg/value"

// NativeFn adapts a host-implemented Go function to a first-class Slate
// callable (spec.md §6.3: "native callables are registered by name as
// globals"). A negative arity marks a variadic native (print, println):
// callValue skips the exact-count check for those.
type NativeFn struct {
	FnName  string
	FnArity int
	Fn      func(vm *VM, args []value.Value) (value.Value, error)
}

func (n *NativeFn) Name() string  { return n.FnName }
func (n *NativeFn) Arity() int     { return n.FnArity }

// defineNative registers fn as a global callable.
func (vm *VM) defineNative(name string, arity int, fn func(vm *VM, args []value.Value) (value.Value, error)) {
	vm.globals[name] = value.NewFunction(&NativeFn{FnName: name, FnArity: arity, Fn: fn})
}

// defineMethod registers fn as a native instance method on class.
func defineMethod(class *value.ClassObj, name string, arity int, fn func(vm *VM, args []value.Value) (value.Value, error)) {
	class.Methods[name] = value.NewFunction(&NativeFn{FnName: name, FnArity: arity, Fn: fn})
}

// defineStatic registers fn as a native static (class-level) callable,
// reached through `ClassName.name(...)` by OpInvoke's static lookup rather
// than instance method dispatch (spec.md §4.2's factorial, for instance).
func defineStatic(class *value.ClassObj, name string, arity int, fn func(vm *VM, args []value.Value) (value.Value, error)) {
	value.SetStatic(class, name, value.NewFunction(&NativeFn{FnName: name, FnArity: arity, Fn: fn}))
}
