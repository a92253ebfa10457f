// Package vm implements the bytecode virtual machine: a stack-based
// interpreter executing the chunks pkg/compiler emits.
//
//	Source -> lexer -> parser -> compiler -> bytecode.Chunk -> vm -> result
//
// The VM owns one operand stack, one call-frame stack, one globals map,
// one open-upvalue list and the builtin class registry (spec.md §6.3).
// Execution is single-threaded and runs to completion or to a fatal
// RuntimeError; there is no in-language exception mechanism (spec.md §7).
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/edadma/slate-sub000/pkg/bytecode"
	"github.com/edadma/slate-sub000/pkg/value"
)

const (
	stackSize   = 16384
	framesSize  = 512
)

// frame is one activation record. base is the stack index of local slot
// 0 (self, for a method frame; the first parameter otherwise).
// calleeSlot is the stack index the call site's callee/receiver value
// occupied and where the eventual return value lands; it differs from
// base exactly when the frame was entered via a plain (non-self-bearing)
// call, which reserves one extra slot below the locals for the callee
// value itself (spec.md §4.9 step 3). isCtor/ctorResult implement the
// init-method construction convention (see callClass): the frame's
// actual return value is discarded in favor of the instance being built.
type frame struct {
	closure    *Closure
	ip         int
	base       int
	calleeSlot int
	isCtor     bool
	ctorResult value.Value
}

// VM is the runtime state shared by every frame of a single execution.
type VM struct {
	stack []value.Value
	sp    int

	frames    []frame
	openUps   *Upvalue

	globals map[string]value.Value
	classes map[string]*value.ClassObj

	out io.Writer

	debugger *Debugger
}

// New returns a VM with its builtin class registry populated (spec.md
// §6.3) and stdout wired as the destination for print/println.
func New() *VM {
	vm := &VM{
		stack:   make([]value.Value, stackSize),
		frames:  make([]frame, 0, framesSize),
		globals: make(map[string]value.Value),
		classes: make(map[string]*value.ClassObj),
		out:     os.Stdout,
	}
	vm.registerBuiltins()
	return vm
}

// SetOutput redirects print/println output (tests use this to capture it).
func (vm *VM) SetOutput(w io.Writer) { vm.out = w }

// EnableDebugger attaches a step/breakpoint debugger to this VM.
func (vm *VM) EnableDebugger() *Debugger {
	vm.debugger = NewDebugger(vm)
	return vm.debugger
}

func (vm *VM) push(v value.Value) {
	if vm.sp >= len(vm.stack) {
		panic(vm.runtimeError(value.ErrStackOverflow, "stack overflow"))
	}
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() value.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.sp-1-distance]
}

func (vm *VM) currentFrame() *frame {
	return &vm.frames[len(vm.frames)-1]
}

// Execute runs a compiled top-level function to completion and returns
// whatever its implicit final statement produced.
func (vm *VM) Execute(proto *bytecode.FunctionProto) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(*RuntimeError); ok {
				err = rerr
				return
			}
			panic(r)
		}
	}()

	closure := &Closure{proto: proto}
	vm.frames = append(vm.frames, frame{closure: closure, base: 0, calleeSlot: 0})
	return vm.run(0)
}

// callSync drives a callable to completion from native Go code (array
// methods calling a user callback, operator dispatch falling back to a
// user-defined method) and returns its result. callee and args are
// pushed fresh, so no existing stack slot is disturbed.
func (vm *VM) callSync(callee value.Value, args []value.Value) value.Value {
	depth := len(vm.frames)
	vm.push(callee.Retain())
	for _, a := range args {
		vm.push(a.Retain())
	}
	vm.callValue(callee, len(args))
	if len(vm.frames) > depth {
		result, err := vm.run(depth)
		vm.checkOp(err)
		return result
	}
	return vm.pop()
}

// run is the main fetch-decode-execute loop. It executes until the call
// frame stack depth drops back to targetDepth (0 for the initial
// top-level program; deeper for a callSync reentry), returning the value
// that call's own OpReturn produced. Errors are raised by panicking with
// a *RuntimeError (caught in Execute) so that deeply nested helper calls
// do not have to thread an error return through every opcode case — the
// same shortcut the teacher's own `send`/arithmetic helpers take by
// returning a plain `error` that callers immediately propagate with an
// early return.
func (vm *VM) run(targetDepth int) (value.Value, error) {
	for len(vm.frames) > targetDepth {
		f := vm.currentFrame()
		chunk := f.closure.proto.Chunk

		if vm.debugger != nil && vm.debugger.ShouldPause() {
			if !vm.debugger.InteractivePrompt(chunk) {
				return value.Null, nil
			}
		}

		op := bytecode.Opcode(chunk.Code[f.ip])
		f.ip++

		switch op {
		case bytecode.OpConstant:
			idx := vm.readU16(f)
			vm.push(chunk.Constants[idx].Retain())
		case bytecode.OpNull:
			vm.push(value.Null)
		case bytecode.OpTrue:
			vm.push(value.Bool(true))
		case bytecode.OpFalse:
			vm.push(value.Bool(false))
		case bytecode.OpPop:
			vm.pop().Release()
		case bytecode.OpDup:
			vm.push(vm.peek(0).Retain())

		case bytecode.OpGetLocal:
			slot := int(vm.readByte(f))
			vm.push(vm.stack[f.base+slot].Retain())
		case bytecode.OpSetLocal:
			slot := int(vm.readByte(f))
			old := vm.stack[f.base+slot]
			vm.stack[f.base+slot] = vm.peek(0).Retain()
			old.Release()
		case bytecode.OpGetUpvalue:
			idx := int(vm.readByte(f))
			vm.push(f.closure.upvalues[idx].get().Retain())
		case bytecode.OpSetUpvalue:
			idx := int(vm.readByte(f))
			f.closure.upvalues[idx].set(vm.peek(0))
		case bytecode.OpCloseUpvalue:
			vm.closeUpvalues(vm.sp - 1)
			vm.pop().Release()

		case bytecode.OpDefineGlobal:
			name := vm.readString(f, chunk)
			vm.globals[name] = vm.pop()
		case bytecode.OpGetGlobal:
			name := vm.readString(f, chunk)
			v, ok := vm.globals[name]
			if !ok {
				panic(vm.runtimeError(value.ErrValue, "undefined global %q", name))
			}
			vm.push(v.Retain())
		case bytecode.OpSetGlobal:
			name := vm.readString(f, chunk)
			if _, ok := vm.globals[name]; !ok {
				panic(vm.runtimeError(value.ErrValue, "undefined global %q", name))
			}
			vm.globals[name] = vm.peek(0).Retain()

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod, bytecode.OpPow:
			vm.binaryArith(op)
		case bytecode.OpNeg:
			a := vm.pop()
			if !a.IsNumber() {
				if m, ok := value.LookupMethod(a, "negate", vm.classResolver); ok {
					r := vm.callSync(m, nil)
					m.Release()
					a.Release()
					vm.push(r)
					break
				}
			}
			r, err := value.Neg(a)
			a.Release()
			vm.checkOp(err)
			vm.push(r)
		case bytecode.OpBitAnd, bytecode.OpBitOr, bytecode.OpBitXor, bytecode.OpShl, bytecode.OpShr:
			vm.binaryBitwise(op)
		case bytecode.OpBitNot:
			a := vm.pop()
			r, err := value.BitNot(a)
			a.Release()
			vm.checkOp(err)
			vm.push(r)
		case bytecode.OpEqual:
			b, a := vm.pop(), vm.pop()
			eq := vm.valuesEqual(a, b)
			a.Release()
			b.Release()
			vm.push(value.Bool(eq))
		case bytecode.OpNotEqual:
			b, a := vm.pop(), vm.pop()
			eq := vm.valuesEqual(a, b)
			a.Release()
			b.Release()
			vm.push(value.Bool(!eq))
		case bytecode.OpLess, bytecode.OpLessEqual, bytecode.OpGreater, bytecode.OpGreaterEqual:
			vm.compare(op)
		case bytecode.OpNot:
			a := vm.pop()
			t := a.Truthy()
			a.Release()
			vm.push(value.Bool(!t))

		case bytecode.OpJump:
			dist := vm.readU16(f)
			f.ip += int(dist)
		case bytecode.OpJumpIfFalse:
			dist := vm.readU16(f)
			if !vm.peek(0).Truthy() {
				f.ip += int(dist)
			}
		case bytecode.OpJumpIfTrue:
			dist := vm.readU16(f)
			if vm.peek(0).Truthy() {
				f.ip += int(dist)
			}
		case bytecode.OpLoop:
			dist := vm.readU16(f)
			f.ip -= int(dist)

		case bytecode.OpCall:
			argc := int(vm.readByte(f))
			callee := vm.peek(argc)
			vm.callValue(callee, argc)
		case bytecode.OpInvoke:
			name := vm.readString(f, chunk)
			argc := int(vm.readByte(f))
			vm.invoke(name, argc)
		case bytecode.OpSuperInvoke:
			name := vm.readString(f, chunk)
			argc := int(vm.readByte(f))
			vm.superInvoke(f, name, argc)
		case bytecode.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(f.base)
			for i := f.base; i < vm.sp; i++ {
				vm.stack[i].Release()
			}
			if f.calleeSlot < f.base {
				vm.stack[f.calleeSlot].Release()
			}
			if f.isCtor {
				result.Release()
				result = f.ctorResult
			}
			vm.sp = f.calleeSlot
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == targetDepth {
				return result, nil
			}
			vm.push(result)

		case bytecode.OpMakeArray:
			n := int(vm.readU16(f))
			elems := make([]value.Value, n)
			copy(elems, vm.stack[vm.sp-n:vm.sp])
			vm.sp -= n
			vm.push(value.NewArray(elems))
		case bytecode.OpMakeObject:
			n := int(vm.readU16(f))
			o := value.NewObject(nil)
			obj := o.Heap().(*value.ObjectObj)
			base := vm.sp - 2*n
			for i := 0; i < n; i++ {
				key := vm.stack[base+2*i]
				val := vm.stack[base+2*i+1]
				obj.Set(keyString(key), val)
				key.Release()
				val.Release()
			}
			vm.sp = base
			vm.push(o)
		case bytecode.OpMakeRange:
			inclusive := vm.pop()
			to := vm.pop()
			from := vm.pop()
			r := value.NewRange(from, to, 1, inclusive.Truthy())
			from.Release()
			to.Release()
			vm.push(r)
		case bytecode.OpMakeTemplate:
			n := int(vm.readU16(f))
			var b []byte
			for i := 0; i < n; i++ {
				part := vm.stack[vm.sp-n+i]
				b = append(b, value.Display(part)...)
				part.Release()
			}
			vm.sp -= n
			vm.push(value.NewString(string(b)))

		case bytecode.OpGetProperty:
			name := vm.readString(f, chunk)
			recv := vm.pop()
			v := vm.getProperty(recv, name)
			recv.Release()
			vm.push(v)
		case bytecode.OpSetProperty:
			name := vm.readString(f, chunk)
			val := vm.pop()
			recv := vm.pop()
			vm.setProperty(recv, name, val)
			recv.Release()
			vm.push(val)
		case bytecode.OpGetIndex:
			idx := vm.pop()
			recv := vm.pop()
			v := vm.getIndex(recv, idx)
			idx.Release()
			recv.Release()
			vm.push(v)
		case bytecode.OpSetIndex:
			val := vm.pop()
			idx := vm.pop()
			recv := vm.pop()
			vm.setIndex(recv, idx, val)
			idx.Release()
			recv.Release()
			vm.push(val)

		case bytecode.OpClass:
			idx := vm.readU16(f)
			vm.push(chunk.Constants[idx].Retain())
		case bytecode.OpInherit:
			super := vm.pop()
			sub := value.ClassOf(vm.peek(0))
			parent := value.ClassOf(super)
			if sub == nil || parent == nil {
				panic(vm.runtimeError(value.ErrType, "superclass must be a class"))
			}
			sub.Parent = parent
			super.Release()
		case bytecode.OpMethod:
			name := vm.readString(f, chunk)
			method := vm.pop()
			class := value.ClassOf(vm.peek(0))
			if fn, ok := method.Heap().(*value.FunctionObj); ok {
				if cl, ok := fn.Fn.(*Closure); ok {
					cl.HomeClass = class
				}
			}
			class.Methods[name] = method
		case bytecode.OpSetStatic:
			name := vm.readString(f, chunk)
			v := vm.pop()
			class := value.ClassOf(vm.peek(0))
			value.SetStatic(class, name, v)
			v.Release()
		case bytecode.OpGetStatic:
			name := vm.readString(f, chunk)
			recv := vm.pop()
			class := value.ClassOf(recv)
			v, ok := value.GetStatic(class, name)
			if !ok {
				panic(vm.runtimeError(value.ErrValue, "undefined static property %q", name))
			}
			recv.Release()
			vm.push(v.Retain())

		case bytecode.OpGetSelf:
			vm.push(vm.stack[f.base].Retain())
		case bytecode.OpClosure:
			vm.makeClosure(f, chunk)

		case bytecode.OpIterInit:
			v := vm.pop()
			it := vm.makeIterator(v)
			v.Release()
			vm.push(it)
		case bytecode.OpIterNext:
			vm.iterNext()

		default:
			panic(vm.runtimeError(value.ErrInternal, "unknown opcode %v", op))
		}
	}
	return value.Null, nil
}

func (vm *VM) readByte(f *frame) byte {
	b := f.closure.proto.Chunk.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readU16(f *frame) uint16 {
	v := f.closure.proto.Chunk.ReadU16(f.ip)
	f.ip += 2
	return v
}

func (vm *VM) readString(f *frame, chunk *bytecode.Chunk) string {
	idx := vm.readU16(f)
	return chunk.Constants[idx].Heap().(*value.StringObj).S
}

func keyString(v value.Value) string {
	return v.Heap().(*value.StringObj).S
}

func (vm *VM) checkOp(err error) {
	if err != nil {
		if oe, ok := err.(*value.OpError); ok {
			panic(vm.runtimeError(oe.Kind, "%s", oe.Msg))
		}
		panic(vm.runtimeError(value.ErrInternal, "%s", err.Error()))
	}
}

// arithMethod maps an arithmetic opcode to the method name spec.md §4.6
// sends when the numeric fast path declines (a non-numeric operand).
var arithMethod = map[bytecode.Opcode]string{
	bytecode.OpAdd: "plus",
	bytecode.OpSub: "minus",
	bytecode.OpMul: "times",
	bytecode.OpDiv: "divide",
	bytecode.OpMod: "mod",
	bytecode.OpPow: "pow",
}

func (vm *VM) binaryArith(op bytecode.Opcode) {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() {
		if r, ok := vm.tryDispatch(a, arithMethod[op], b); ok {
			a.Release()
			b.Release()
			vm.push(r)
			return
		}
	}
	var r value.Value
	var err error
	switch op {
	case bytecode.OpAdd:
		r, err = value.Add(a, b)
	case bytecode.OpSub:
		r, err = value.Sub(a, b)
	case bytecode.OpMul:
		r, err = value.Mul(a, b)
	case bytecode.OpDiv:
		r, err = value.Div(a, b)
	case bytecode.OpMod:
		r, err = value.Mod(a, b)
	case bytecode.OpPow:
		r, err = value.Pow(a, b)
	}
	a.Release()
	b.Release()
	vm.checkOp(err)
	vm.push(r)
}

func (vm *VM) binaryBitwise(op bytecode.Opcode) {
	b := vm.pop()
	a := vm.pop()
	var r value.Value
	var err error
	switch op {
	case bytecode.OpBitAnd:
		r, err = value.And(a, b)
	case bytecode.OpBitOr:
		r, err = value.Or(a, b)
	case bytecode.OpBitXor:
		r, err = value.Xor(a, b)
	case bytecode.OpShl:
		r, err = value.Shl(a, b)
	case bytecode.OpShr:
		r, err = value.Shr(a, b)
	}
	a.Release()
	b.Release()
	vm.checkOp(err)
	vm.push(r)
}

func (vm *VM) compare(op bytecode.Opcode) {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() {
		if r, ok := vm.tryDispatch(a, "compare", b); ok {
			n := int(r.AsInt32())
			r.Release()
			a.Release()
			b.Release()
			vm.push(value.Bool(compareResult(op, n)))
			return
		}
	}
	n, err := value.Compare(a, b)
	a.Release()
	b.Release()
	vm.checkOp(err)
	vm.push(value.Bool(compareResult(op, n)))
}

func compareResult(op bytecode.Opcode, n int) bool {
	if value.IsUnordered(n) {
		return false
	}
	switch op {
	case bytecode.OpLess:
		return n < 0
	case bytecode.OpLessEqual:
		return n <= 0
	case bytecode.OpGreater:
		return n > 0
	case bytecode.OpGreaterEqual:
		return n >= 0
	}
	return false
}

// runtimeError builds a RuntimeError carrying a snapshot of the current
// call stack (spec.md §6.4), innermost frame first.
func (vm *VM) runtimeError(kind value.ErrorKind, format string, args ...interface{}) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	trace := make([]StackFrame, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		fr := vm.frames[i]
		trace = append(trace, StackFrame{
			Name:       fr.closure.proto.Name,
			SourceLine: int(lineAt(fr.closure.proto.Chunk, fr.ip)),
		})
	}
	return newRuntimeError(kind, msg, trace)
}

func lineAt(c *bytecode.Chunk, ip int) uint16 {
	if ip > 0 && ip-1 < len(c.Lines) {
		return c.Lines[ip-1]
	}
	return 0
}
