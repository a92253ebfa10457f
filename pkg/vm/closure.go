package vm

import (
	"github.com/edadma/slate-sub000/pkg/bytecode"
	"github.com/edadma/slate-sub000/pkg/value"
)

// Closure pairs a compiled prototype with the upvalues captured when the
// OpClosure instruction that created it ran. HomeClass is set by OpMethod
// for methods so that a self.call inside the body can resolve `super`
// against the class the method was actually declared on, not the
// receiver's dynamic class (spec.md §4.5 ascent starts one level above
// HomeClass for super sends).
type Closure struct {
	proto     *bytecode.FunctionProto
	upvalues  []*Upvalue
	HomeClass *value.ClassObj
}

func (c *Closure) Name() string                   { return c.proto.Name }
func (c *Closure) Arity() int                      { return c.proto.Arity }
func (c *Closure) Proto() *bytecode.FunctionProto { return c.proto }

// Upvalue is a heap cell a closure captures a free variable through. It
// starts open, pointing directly at the live stack slot; closeUpvalues
// copies the slot's value into the cell and detaches it once the
// enclosing frame returns (spec.md §4.10).
type Upvalue struct {
	location *value.Value
	closed   value.Value
	stackIdx int
	next     *Upvalue
}

func (u *Upvalue) get() value.Value {
	return *u.location
}

func (u *Upvalue) set(v value.Value) {
	old := *u.location
	*u.location = v.Retain()
	old.Release()
}

// captureUpvalue returns the existing open upvalue for stack slot idx if
// one is already tracked (so two closures over the same local share one
// cell), or creates and links a fresh one in slot order.
func (vm *VM) captureUpvalue(idx int) *Upvalue {
	var prev *Upvalue
	cur := vm.openUps
	for cur != nil && cur.stackIdx > idx {
		prev = cur
		cur = cur.next
	}
	if cur != nil && cur.stackIdx == idx {
		return cur
	}
	created := &Upvalue{location: &vm.stack[idx], stackIdx: idx, next: cur}
	if prev == nil {
		vm.openUps = created
	} else {
		prev.next = created
	}
	return created
}

// closeUpvalues closes every open upvalue pointing at slot >= from,
// copying each slot's current value into the cell itself and detaching
// it from the stack before the frame that owns that slot goes away.
func (vm *VM) closeUpvalues(from int) {
	for vm.openUps != nil && vm.openUps.stackIdx >= from {
		u := vm.openUps
		u.closed = (*u.location).Retain()
		u.location = &u.closed
		vm.openUps = u.next
		u.next = nil
	}
}

// makeClosure executes OpClosure: reads the prototype out of the
// constant pool, then for each (isLocal, index) descriptor pair either
// captures a slot in the calling frame or shares an upvalue already
// captured by that frame's own closure. The descriptors come from the
// prototype; the matching inline operand bytes are skipped.
func (vm *VM) makeClosure(f *frame, chunk *bytecode.Chunk) {
	idx := vm.readU16(f)
	protoVal := chunk.Constants[idx]
	pf := protoVal.Heap().(*value.FunctionObj).Fn.(interface {
		Proto() *bytecode.FunctionProto
	})
	proto := pf.Proto()

	cl := &Closure{proto: proto, upvalues: make([]*Upvalue, len(proto.Upvalues))}
	for i, d := range proto.Upvalues {
		if d.IsLocal {
			cl.upvalues[i] = vm.captureUpvalue(f.base + int(d.Index))
		} else {
			cl.upvalues[i] = f.closure.upvalues[d.Index]
		}
	}
	f.ip += 2 * len(proto.Upvalues)
	vm.push(value.NewFunction(cl))
}
