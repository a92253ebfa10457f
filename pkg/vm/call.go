package vm

import "github.com/edadma/slate-sub000/pkg/value"

// callValue resolves and dispatches a call opcode's callee (spec.md
// §4.9 step 1): Native is invoked directly, BoundMethod unwraps and
// prepends its receiver, Class invokes its factory or synthesizes an
// instance, Closure/Function pushes a new call frame. On entry, callee
// and its argc arguments occupy the top argc+1 stack slots.
func (vm *VM) callValue(callee value.Value, argc int) {
	calleeSlot := vm.sp - argc - 1
	switch callee.Tag() {
	case value.TagFunction:
		fn := callee.Heap().(*value.FunctionObj).Fn
		switch c := fn.(type) {
		case *Closure:
			vm.checkArity(c.Name(), c.Arity(), argc)
			vm.pushFrame(c, calleeSlot+1, calleeSlot)
		case *NativeFn:
			vm.callNative(c, argc, calleeSlot)
		default:
			panic(vm.runtimeError(value.ErrType, "value is not callable"))
		}
	case value.TagBoundMethod:
		bm := callee.Heap().(*value.BoundMethodObj)
		vm.callBoundAt(bm.Receiver, bm.Method, argc, calleeSlot)
	case value.TagClass:
		vm.callClass(value.ClassOf(callee), argc, calleeSlot)
	default:
		panic(vm.runtimeError(value.ErrType, "%s is not callable", callee.TypeName()))
	}
}

// invoke implements combined property-get-and-call (spec.md §4.8): the
// receiver sits where the callee would for a plain call, so a hit on a
// callable method runs self-bearing without ever materializing an
// intermediate BoundMethod value. A Class receiver has name looked up
// among its statics first; a static hit is called unbound.
func (vm *VM) invoke(name string, argc int) {
	calleeSlot := vm.sp - argc - 1
	receiver := vm.stack[calleeSlot]
	if receiver.Tag() == value.TagClass {
		if v, ok := value.GetStatic(value.ClassOf(receiver), name); ok {
			vm.dispatchLookupResult(v, receiver, argc, calleeSlot)
			return
		}
	}
	v, ok := value.LookupMethod(receiver, name, vm.classResolver)
	if !ok {
		panic(vm.runtimeError(value.ErrValue, "undefined method %q on %s", name, receiver.TypeName()))
	}
	vm.dispatchLookupResult(v, receiver, argc, calleeSlot)
}

// superInvoke resolves name starting one level above the enclosing
// method's HomeClass, bypassing the receiver's own (more derived) class,
// then calls it bound to self — spec.md §4.5's ascent, restarted above
// the declaring class rather than the dynamic one.
func (vm *VM) superInvoke(f *frame, name string, argc int) {
	calleeSlot := vm.sp - argc - 1
	self := vm.stack[calleeSlot]
	home := f.closure.HomeClass
	if home == nil || home.Parent == nil {
		panic(vm.runtimeError(value.ErrValue, "no superclass for %q", name))
	}
	for c := home.Parent; c != nil; c = c.Parent {
		if m, ok := c.Methods[name]; ok {
			fn := m.Heap().(*value.FunctionObj).Fn
			vm.callBoundAt(self, fn, argc, calleeSlot)
			return
		}
	}
	panic(vm.runtimeError(value.ErrValue, "undefined method %q on superclass of %s", name, home.Name))
}

// dispatchLookupResult handles what LookupMethod handed back: a
// BoundMethod (unwrap, call bound to its receiver), or a plain value
// reached only through a get-then-call path that OpInvoke never takes
// for non-callables (compileCallExpr only emits OpInvoke for
// `recv.name(args)` syntax, so a non-callable result here is a user
// error, not a compiler bug).
func (vm *VM) dispatchLookupResult(v, receiver value.Value, argc, calleeSlot int) {
	if v.Tag() == value.TagBoundMethod {
		bm := v.Heap().(*value.BoundMethodObj)
		vm.callBoundAt(receiver, bm.Method, argc, calleeSlot)
		v.Release()
		return
	}
	if v.Tag() == value.TagFunction {
		// An own property found directly on the object (spec.md §4.5
		// case 1) is returned unbound: call it as a plain function,
		// not self-bearing, even though it was reached via `.name(...)`.
		fn := v.Heap().(*value.FunctionObj).Fn
		old := vm.stack[calleeSlot]
		vm.stack[calleeSlot] = v.Retain()
		old.Release()
		switch c := fn.(type) {
		case *Closure:
			vm.checkArity(c.Name(), c.Arity(), argc)
			vm.pushFrame(c, calleeSlot+1, calleeSlot)
		case *NativeFn:
			vm.callNative(c, argc, calleeSlot)
		default:
			panic(vm.runtimeError(value.ErrType, "value is not callable"))
		}
		return
	}
	panic(vm.runtimeError(value.ErrType, "%s is not callable", v.TypeName()))
}

// callBoundAt runs fn with self bound to receiver, which must already
// occupy stack[calleeSlot] (the normal case: the receiver pushed for an
// invoke/super-invoke was never popped). Calls reached through a value
// materialized elsewhere (a BoundMethod read out of a local, say, then
// invoked via plain OpCall) instead write receiver into that slot.
func (vm *VM) callBoundAt(receiver value.Value, fn value.Callable, argc, calleeSlot int) {
	old := vm.stack[calleeSlot]
	vm.stack[calleeSlot] = receiver.Retain()
	old.Release()
	switch c := fn.(type) {
	case *Closure:
		vm.checkArity(c.Name(), c.Arity(), argc)
		vm.pushFrame(c, calleeSlot, calleeSlot)
	case *NativeFn:
		vm.callNativeBound(c, receiver, argc, calleeSlot)
	default:
		panic(vm.runtimeError(value.ErrType, "value is not callable"))
	}
}

// callClass implements spec.md §4.9's class-call branch: a user-defined
// class with an `init` method gets init run bound to a fresh instance,
// init's own return value discarded in favor of the instance (the
// conventional new/init split lets `init` live as an ordinary method
// rather than a separate factory slot); a class with no init simply
// synthesizes an empty instance, matching the no-factory case literally.
func (vm *VM) callClass(class *value.ClassObj, argc, calleeSlot int) {
	if class == nil {
		panic(vm.runtimeError(value.ErrType, "not a class"))
	}
	if class.Factory != nil {
		vm.callNativeFactory(class, argc, calleeSlot)
		return
	}
	instance := value.NewObject(class)
	initFn, ok := findInit(class)
	if !ok {
		for i := calleeSlot; i < vm.sp; i++ {
			vm.stack[i].Release()
		}
		vm.sp = calleeSlot
		vm.push(instance)
		return
	}
	vm.stack[calleeSlot] = instance
	switch c := initFn.(type) {
	case *Closure:
		vm.checkArity("init", c.Arity(), argc)
		vm.pushFrame(c, calleeSlot, calleeSlot)
		vm.currentFrame().isCtor = true
		vm.currentFrame().ctorResult = instance
	case *NativeFn:
		vm.callNativeBound(c, instance, argc, calleeSlot)
		vm.stack[calleeSlot] = instance.Retain()
	}
}

func findInit(class *value.ClassObj) (value.Callable, bool) {
	for c := class; c != nil; c = c.Parent {
		if m, ok := c.Methods["init"]; ok {
			return m.Heap().(*value.FunctionObj).Fn, true
		}
	}
	return nil, false
}

func (vm *VM) checkArity(name string, want, got int) {
	if want != got {
		panic(vm.runtimeError(value.ErrArity, "%s expects %d argument(s), got %d", name, want, got))
	}
}

func (vm *VM) pushFrame(c *Closure, base, calleeSlot int) {
	if len(vm.frames) >= framesSize {
		panic(vm.runtimeError(value.ErrStackOverflow, "call stack overflow"))
	}
	vm.frames = append(vm.frames, frame{closure: c, base: base, calleeSlot: calleeSlot})
}

func (vm *VM) callNative(n *NativeFn, argc, calleeSlot int) {
	if n.FnArity >= 0 {
		vm.checkArity(n.FnName, n.FnArity, argc)
	}
	args := make([]value.Value, argc)
	copy(args, vm.stack[calleeSlot+1:vm.sp])
	result, err := n.Fn(vm, args)
	for _, a := range args {
		a.Release()
	}
	vm.stack[calleeSlot].Release()
	vm.checkOp(err)
	vm.sp = calleeSlot
	vm.push(result)
}

func (vm *VM) callNativeBound(n *NativeFn, receiver value.Value, argc, calleeSlot int) {
	if n.FnArity >= 0 {
		vm.checkArity(n.FnName, n.FnArity, argc)
	}
	args := make([]value.Value, argc+1)
	args[0] = receiver
	copy(args[1:], vm.stack[calleeSlot+1:vm.sp])
	result, err := n.Fn(vm, args)
	for i := calleeSlot; i < vm.sp; i++ {
		vm.stack[i].Release()
	}
	vm.checkOp(err)
	vm.sp = calleeSlot
	vm.push(result)
}

func (vm *VM) callNativeFactory(class *value.ClassObj, argc, calleeSlot int) {
	n, ok := class.Factory.(*NativeFn)
	if !ok {
		panic(vm.runtimeError(value.ErrInternal, "class %s has a non-native factory", class.Name))
	}
	if n.FnArity >= 0 {
		vm.checkArity(class.Name, n.FnArity, argc)
	}
	args := make([]value.Value, argc)
	copy(args, vm.stack[calleeSlot+1:vm.sp])
	result, err := n.Fn(vm, args)
	for i := calleeSlot; i < vm.sp; i++ {
		vm.stack[i].Release()
	}
	vm.checkOp(err)
	vm.sp = calleeSlot
	vm.push(result)
}
