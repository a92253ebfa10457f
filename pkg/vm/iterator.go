package vm

import (
	"github.com/edadma/slate-sub000/pkg/value"
)

// makeIterator implements OpIterInit (spec.md §4.11): Array, Range,
// String and Object each have a native iteration order; any other
// receiver falls back to a user-defined "iterator" method that must
// itself return something iterable.
func (vm *VM) makeIterator(v value.Value) value.Value {
	switch o := v.Heap().(type) {
	case *value.ArrayObj:
		elems := make([]value.Value, len(o.Elems))
		for i, e := range o.Elems {
			elems[i] = e.Retain()
		}
		return value.NewIterator(&arrayIterator{elems: elems})
	case *value.RangeObj:
		return value.NewIterator(newRangeIterator(o))
	case *value.StringObj:
		return value.NewIterator(&stringIterator{runes: []rune(o.S)})
	case *value.ObjectObj:
		keys := append([]string(nil), o.Keys()...)
		return value.NewIterator(&objectIterator{obj: o, keys: keys})
	}
	if m, ok := value.LookupMethod(v, "iterator", vm.classResolver); ok {
		r := vm.callSync(m, nil)
		m.Release()
		if r.Tag() == value.TagIterator {
			return r
		}
		return vm.makeIterator(r)
	}
	panic(vm.runtimeError(value.ErrType, "%s is not iterable", v.TypeName()))
}

func (vm *VM) iterNext() {
	it, ok := vm.peek(0).Heap().(*value.IteratorObj)
	if !ok {
		panic(vm.runtimeError(value.ErrInternal, "ITER_NEXT on non-iterator"))
	}
	if !it.Impl.HasNext() {
		vm.push(value.Null)
		vm.push(value.Bool(false))
		return
	}
	v, err := it.Impl.Next()
	vm.checkOp(err)
	vm.push(v)
	vm.push(value.Bool(true))
}

type arrayIterator struct {
	elems []value.Value
	pos   int
}

func (it *arrayIterator) HasNext() bool { return it.pos < len(it.elems) }
func (it *arrayIterator) Next() (value.Value, error) {
	v := it.elems[it.pos]
	it.pos++
	return v, nil
}

type stringIterator struct {
	runes []rune
	pos   int
}

func (it *stringIterator) HasNext() bool { return it.pos < len(it.runes) }
func (it *stringIterator) Next() (value.Value, error) {
	r := it.runes[it.pos]
	it.pos++
	return value.NewString(string(r)), nil
}

type objectIterator struct {
	obj  *value.ObjectObj
	keys []string
	pos  int
}

func (it *objectIterator) HasNext() bool { return it.pos < len(it.keys) }
func (it *objectIterator) Next() (value.Value, error) {
	k := it.keys[it.pos]
	it.pos++
	return value.NewString(k), nil
}

// rangeIterator walks a RangeObj one step at a time using the numeric
// tower's own Add/Compare so BigInt and Float64 ranges iterate exactly
// like Int32 ones (spec.md §4.1/§4.11).
type rangeIterator struct {
	cur       value.Value
	step      value.Value
	to        value.Value
	inclusive bool
	done      bool
}

func newRangeIterator(r *value.RangeObj) *rangeIterator {
	step := value.Int32(1)
	if r.Step < 0 {
		step = value.Int32(-1)
	} else if r.Step != 1 {
		step = value.Int32(int32(r.Step))
	}
	return &rangeIterator{cur: r.From.Retain(), step: step, to: r.To.Retain(), inclusive: r.Inclusive}
}

func (it *rangeIterator) HasNext() bool {
	if it.done {
		return false
	}
	n, err := value.Compare(it.cur, it.to)
	if err != nil || value.IsUnordered(n) {
		return false
	}
	descending, _ := value.Compare(it.step, value.Int32(0))
	if descending < 0 {
		if it.inclusive {
			return n >= 0
		}
		return n > 0
	}
	if it.inclusive {
		return n <= 0
	}
	return n < 0
}

func (it *rangeIterator) Next() (value.Value, error) {
	v := it.cur
	next, err := value.Add(it.cur, it.step)
	if err != nil {
		it.done = true
		return value.Value{}, err
	}
	it.cur = next
	return v, nil
}

// materializeRange drains a RangeObj into an owned element slice, used by
// Array(range) construction (spec.md §4.4).
func materializeRange(r *value.RangeObj) ([]value.Value, error) {
	it := newRangeIterator(r)
	var out []value.Value
	for it.HasNext() {
		v, err := it.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, v.Retain())
	}
	return out, nil
}
