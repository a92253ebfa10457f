package vm

import "github.com/edadma/slate-sub000/pkg/value"

// getProperty implements spec.md §4.5's get path for the `.` operator:
// Object/Class receivers go through the property/static tables directly;
// anything else is a method lookup that, on a non-callable hit, returns
// the value as-is (a builtin "length"-style accessor implemented as a
// zero-arg native would instead be invoked via OpInvoke, not here). A
// miss at every level (step 4) returns Undefined rather than raising:
// that fatal-on-miss behavior is reserved for the call form (OpInvoke's
// `invoke`), where calling something that isn't there is a harder error
// than merely reading it.
func (vm *VM) getProperty(recv value.Value, name string) value.Value {
	if recv.Tag() == value.TagClass {
		class := value.ClassOf(recv)
		if v, ok := value.GetStatic(class, name); ok {
			return v.Retain()
		}
		return value.Undefined
	}
	v, ok := value.LookupMethod(recv, name, vm.classResolver)
	if !ok {
		return value.Undefined
	}
	return v
}

// setProperty implements the `.` assignment path. Only Object/instance
// receivers carry mutable own properties; every other receiver kind is
// immutable from the outside (spec.md §4.4 lists no builtin with a
// settable named property).
func (vm *VM) setProperty(recv value.Value, name string, val value.Value) {
	if recv.Tag() == value.TagClass {
		value.SetStatic(value.ClassOf(recv), name, val)
		return
	}
	obj, ok := recv.Heap().(*value.ObjectObj)
	if !ok {
		panic(vm.runtimeError(value.ErrType, "cannot set property %q on %s", name, recv.TypeName()))
	}
	obj.Set(name, val)
}

// getIndex implements `[]` (spec.md §4.6): Array/String/Object have a
// direct native path; any other receiver falls back to a user-defined
// "get" method.
func (vm *VM) getIndex(recv, idx value.Value) value.Value {
	switch a := recv.Heap().(type) {
	case *value.ArrayObj:
		i, err := arrayIndex(len(a.Elems), idx)
		vm.checkOp(err)
		return a.Elems[i].Retain()
	case *value.StringObj:
		r, err := stringIndex(a.S, idx)
		vm.checkOp(err)
		return r
	case *value.ObjectObj:
		key, ok := stringOf(idx)
		if !ok {
			panic(vm.runtimeError(value.ErrType, "object index must be a String"))
		}
		v, ok := a.Get(key)
		if !ok {
			return value.Null
		}
		return v.Retain()
	}
	if r, ok := vm.tryDispatch(recv, "get", idx); ok {
		return r
	}
	panic(vm.runtimeError(value.ErrType, "%s is not indexable", recv.TypeName()))
}

// setIndex implements `[]=`. val is not consumed: the caller retains
// ownership and pushes it back as the assignment expression's result.
func (vm *VM) setIndex(recv, idx, val value.Value) {
	switch a := recv.Heap().(type) {
	case *value.ArrayObj:
		i, err := arrayIndex(len(a.Elems), idx)
		vm.checkOp(err)
		old := a.Elems[i]
		a.Elems[i] = val.Retain()
		old.Release()
		return
	case *value.ObjectObj:
		key, ok := stringOf(idx)
		if !ok {
			panic(vm.runtimeError(value.ErrType, "object index must be a String"))
		}
		a.Set(key, val)
		return
	}
	if m, ok := value.LookupMethod(recv, "set", vm.classResolver); ok {
		r := vm.callSync(m, []value.Value{idx, val})
		m.Release()
		r.Release()
		return
	}
	panic(vm.runtimeError(value.ErrType, "%s does not support index assignment", recv.TypeName()))
}

// arrayIndex resolves idx (an Int) against length, counting negative
// indices from the end (spec.md §4.4's Array indexing convention); an
// index still out of range after that is a RangeError.
func arrayIndex(length int, idx value.Value) (int, error) {
	if !idx.IsInt32() {
		return 0, value.NewError(value.ErrType, "array index must be an Int")
	}
	i := int(idx.AsInt32())
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, value.NewError(value.ErrRange, "array index %d out of range (length %d)", int(idx.AsInt32()), length)
	}
	return i, nil
}

func stringIndex(s string, idx value.Value) (value.Value, error) {
	if !idx.IsInt32() {
		return value.Value{}, value.NewError(value.ErrType, "string index must be an Int")
	}
	runes := []rune(s)
	i := int(idx.AsInt32())
	if i < 0 {
		i += len(runes)
	}
	if i < 0 || i >= len(runes) {
		return value.Value{}, value.NewError(value.ErrRange, "string index %d out of range (length %d)", int(idx.AsInt32()), len(runes))
	}
	return value.NewString(string(runes[i])), nil
}
