package vm

import (
	"strings"

	"github.com/edadma/slate-sub000/pkg/bigint"
	"github.com/edadma/slate-sub000/pkg/value"
)

// registerIntMethods and registerFloatMethods cover spec.md §4.4's Number
// tower methods common to both rungs plus a couple Int/Float specifics;
// arithmetic itself stays on the OpAdd/etc fast path and never reaches
// these (they only fire via explicit `.plus(x)`-style calls or operator
// dispatch on a non-numeric right operand, which for Int/Float never
// happens since the fast path always wins when the receiver is numeric).
func registerIntMethods(c *value.ClassObj) {
	registerNumberCommon(c)
	defineMethod(c, "toFloat", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Float64(floatOfArg(args[0])), nil
	})
	defineMethod(c, "isEven", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Bool(intModTwo(args[0]) == 0), nil
	})
	defineMethod(c, "isOdd", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Bool(intModTwo(args[0]) != 0), nil
	})
	defineMethod(c, "toRadix", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		radix := int(args[1].AsInt32())
		n := bigOfArg(args[0])
		return value.NewString(n.Text(radix)), nil
	})
	defineStatic(c, "factorial", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		n := args[0].AsInt32()
		if n < 0 {
			return value.Value{}, value.NewError(value.ErrRange, "factorial requires a non-negative argument")
		}
		result := bigint.Factorial(uint64(n))
		if i, ok := result.Int32(); ok {
			return value.Int32(i), nil
		}
		return value.NewBigInt(result), nil
	})
}

func registerFloatMethods(c *value.ClassObj) {
	registerNumberCommon(c)
	defineMethod(c, "toInt", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Int32(int32(args[0].AsFloat64())), nil
	})
	defineMethod(c, "isNaN", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		f := args[0].AsFloat64()
		return value.Bool(f != f), nil
	})
}

func registerNumberCommon(c *value.ClassObj) {
	defineMethod(c, "plus", 1, func(vm *VM, args []value.Value) (value.Value, error) { return value.Add(args[0], args[1]) })
	defineMethod(c, "minus", 1, func(vm *VM, args []value.Value) (value.Value, error) { return value.Sub(args[0], args[1]) })
	defineMethod(c, "times", 1, func(vm *VM, args []value.Value) (value.Value, error) { return value.Mul(args[0], args[1]) })
	defineMethod(c, "divide", 1, func(vm *VM, args []value.Value) (value.Value, error) { return value.Div(args[0], args[1]) })
	defineMethod(c, "mod", 1, func(vm *VM, args []value.Value) (value.Value, error) { return value.Mod(args[0], args[1]) })
	defineMethod(c, "pow", 1, func(vm *VM, args []value.Value) (value.Value, error) { return value.Pow(args[0], args[1]) })
	defineMethod(c, "negate", 0, func(vm *VM, args []value.Value) (value.Value, error) { return value.Neg(args[0]) })
	defineMethod(c, "compare", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		n, err := value.Compare(args[0], args[1])
		if err == nil && value.IsUnordered(n) {
			return value.Value{}, value.NewError(value.ErrValue, "cannot compare NaN")
		}
		return value.Int32(int32(n)), err
	})
	defineMethod(c, "toString", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewString(value.Display(args[0])), nil
	})
	defineMethod(c, "abs", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		n, err := value.Compare(args[0], value.Int32(0))
		if err != nil {
			return value.Value{}, err
		}
		if n < 0 {
			return value.Neg(args[0])
		}
		return args[0].Retain(), nil
	})
}

func floatOfArg(v value.Value) float64 {
	switch v.Tag() {
	case value.TagInt32:
		return float64(v.AsInt32())
	case value.TagBigInt:
		return v.Heap().(*value.BigIntObj).N.Float64()
	default:
		return v.AsFloat64()
	}
}

func bigOfArg(v value.Value) *bigint.Int {
	if v.Tag() == value.TagBigInt {
		return v.Heap().(*value.BigIntObj).N
	}
	return bigint.FromInt32(v.AsInt32())
}

func intModTwo(v value.Value) int64 {
	if v.Tag() == value.TagBigInt {
		r := bigint.FloorMod(v.Heap().(*value.BigIntObj).N, bigint.FromInt64(2))
		n, _ := r.Int64()
		return n
	}
	return int64(v.AsInt32() & 1)
}

func registerBoolMethods(c *value.ClassObj) {
	defineMethod(c, "toString", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewString(value.Display(args[0])), nil
	})
	defineMethod(c, "negate", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Bool(!args[0].Truthy()), nil
	})
}

func registerNullMethods(c *value.ClassObj) {
	defineMethod(c, "toString", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewString("null"), nil
	})
}

// registerStringMethods covers spec.md §4.4's String operation list.
func registerStringMethods(c *value.ClassObj) {
	defineMethod(c, "length", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		s, _ := stringOf(args[0])
		return value.Int32(int32(utf8Len(s))), nil
	})
	defineMethod(c, "isEmpty", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		s, _ := stringOf(args[0])
		return value.Bool(s == ""), nil
	})
	defineMethod(c, "toUpperCase", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		s, _ := stringOf(args[0])
		return value.NewString(strings.ToUpper(s)), nil
	})
	defineMethod(c, "toLowerCase", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		s, _ := stringOf(args[0])
		return value.NewString(strings.ToLower(s)), nil
	})
	defineMethod(c, "trim", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		s, _ := stringOf(args[0])
		return value.NewString(strings.TrimSpace(s)), nil
	})
	defineMethod(c, "startsWith", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		s, _ := stringOf(args[0])
		p, ok := stringOf(args[1])
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "startsWith requires a String argument")
		}
		return value.Bool(strings.HasPrefix(s, p)), nil
	})
	defineMethod(c, "endsWith", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		s, _ := stringOf(args[0])
		p, ok := stringOf(args[1])
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "endsWith requires a String argument")
		}
		return value.Bool(strings.HasSuffix(s, p)), nil
	})
	defineMethod(c, "contains", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		s, _ := stringOf(args[0])
		p, ok := stringOf(args[1])
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "contains requires a String argument")
		}
		return value.Bool(strings.Contains(s, p)), nil
	})
	defineMethod(c, "indexOf", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		s, _ := stringOf(args[0])
		p, ok := stringOf(args[1])
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "indexOf requires a String argument")
		}
		byteIdx := strings.Index(s, p)
		if byteIdx < 0 {
			return value.Int32(-1), nil
		}
		return value.Int32(int32(utf8Len(s[:byteIdx]))), nil
	})
	defineMethod(c, "replace", 2, func(vm *VM, args []value.Value) (value.Value, error) {
		s, _ := stringOf(args[0])
		from, ok1 := stringOf(args[1])
		to, ok2 := stringOf(args[2])
		if !ok1 || !ok2 {
			return value.Value{}, value.NewError(value.ErrType, "replace requires String arguments")
		}
		return value.NewString(strings.Replace(s, from, to, 1)), nil
	})
	defineMethod(c, "split", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		s, _ := stringOf(args[0])
		sep, ok := stringOf(args[1])
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "split requires a String argument")
		}
		parts := strings.Split(s, sep)
		elems := make([]value.Value, len(parts))
		for i, p := range parts {
			elems[i] = value.NewString(p)
		}
		return value.NewArray(elems), nil
	})
	defineMethod(c, "substring", 2, func(vm *VM, args []value.Value) (value.Value, error) {
		s, _ := stringOf(args[0])
		runes := []rune(s)
		start, end := int(args[1].AsInt32()), int(args[2].AsInt32())
		if start < 0 || end > len(runes) || start > end {
			return value.Value{}, value.NewError(value.ErrRange, "substring bounds [%d,%d) out of range for length %d", start, end, len(runes))
		}
		return value.NewString(string(runes[start:end])), nil
	})
	defineMethod(c, "toString", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return args[0].Retain(), nil
	})
	defineMethod(c, "compare", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := stringOf(args[0])
		b, ok := stringOf(args[1])
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "cannot compare String to %s", args[1].TypeName())
		}
		return value.Int32(int32(strings.Compare(a, b))), nil
	})
	defineMethod(c, "get", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		s, _ := stringOf(args[0])
		return stringIndex(s, args[1])
	})
	defineMethod(c, "iterator", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		s, _ := stringOf(args[0])
		return value.NewIterator(&stringIterator{runes: []rune(s)}), nil
	})
}

func registerStringBuilderMethods(c *value.ClassObj) {
	defineMethod(c, "append", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		sb := args[0].Heap().(*value.StringBuilderObj)
		sb.B.WriteString(value.Display(args[1]))
		return args[0].Retain(), nil
	})
	defineMethod(c, "toString", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		sb := args[0].Heap().(*value.StringBuilderObj)
		return value.NewString(sb.B.String()), nil
	})
	defineMethod(c, "length", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		sb := args[0].Heap().(*value.StringBuilderObj)
		return value.Int32(int32(sb.B.Len())), nil
	})
}

// registerArrayMethods covers spec.md §4.4's Array operation list,
// including map/filter which call back into user closures synchronously
// via callSync (spec.md §4.9's native-calls-user-code path).
func registerArrayMethods(c *value.ClassObj) {
	defineMethod(c, "length", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		return value.Int32(int32(len(a.Elems))), nil
	})
	defineMethod(c, "isEmpty", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		return value.Bool(len(a.Elems) == 0), nil
	})
	defineMethod(c, "push", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		a.Elems = append(a.Elems, args[1].Retain())
		return value.Int32(int32(len(a.Elems))), nil
	})
	defineMethod(c, "pop", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		n := len(a.Elems)
		if n == 0 {
			return value.Value{}, value.NewError(value.ErrRange, "pop from empty array")
		}
		v := a.Elems[n-1]
		a.Elems = a.Elems[:n-1]
		return derefOwned(v), nil
	})
	defineMethod(c, "get", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		i, err := arrayIndex(len(a.Elems), args[1])
		if err != nil {
			return value.Value{}, err
		}
		return a.Elems[i].Retain(), nil
	})
	defineMethod(c, "set", 2, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		i, err := arrayIndex(len(a.Elems), args[1])
		if err != nil {
			return value.Value{}, err
		}
		old := a.Elems[i]
		a.Elems[i] = args[2].Retain()
		old.Release()
		return args[0].Retain(), nil
	})
	defineMethod(c, "indexOf", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		for i, e := range a.Elems {
			if value.Equals(e, args[1]) {
				return value.Int32(int32(i)), nil
			}
		}
		return value.Int32(-1), nil
	})
	defineMethod(c, "contains", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		for _, e := range a.Elems {
			if value.Equals(e, args[1]) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})
	defineMethod(c, "reverse", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		for i, j := 0, len(a.Elems)-1; i < j; i, j = i+1, j-1 {
			a.Elems[i], a.Elems[j] = a.Elems[j], a.Elems[i]
		}
		return args[0].Retain(), nil
	})
	defineMethod(c, "copy", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		out := make([]value.Value, len(a.Elems))
		for i, e := range a.Elems {
			out[i] = e.Retain()
		}
		return value.NewArray(out), nil
	})
	defineMethod(c, "slice", 2, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		n := len(a.Elems)
		start, end := clampSliceIndex(int(args[1].AsInt32()), n), clampSliceIndex(int(args[2].AsInt32()), n)
		if start > end {
			start = end
		}
		out := make([]value.Value, end-start)
		for i := start; i < end; i++ {
			out[i-start] = a.Elems[i].Retain()
		}
		return value.NewArray(out), nil
	})
	defineMethod(c, "fill", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		for i := range a.Elems {
			old := a.Elems[i]
			a.Elems[i] = args[1].Retain()
			old.Release()
		}
		return args[0].Retain(), nil
	})
	defineMethod(c, "toString", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewString(value.Display(args[0])), nil
	})
	defineMethod(c, "iterator", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		elems := make([]value.Value, len(a.Elems))
		for i, e := range a.Elems {
			elems[i] = e.Retain()
		}
		return value.NewIterator(&arrayIterator{elems: elems}), nil
	})
	defineMethod(c, "map", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		out := make([]value.Value, len(a.Elems))
		for i, e := range a.Elems {
			out[i] = vm.callSync(args[1], []value.Value{e})
		}
		return value.NewArray(out), nil
	})
	defineMethod(c, "filter", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		var out []value.Value
		for _, e := range a.Elems {
			keep := vm.callSync(args[1], []value.Value{e})
			if keep.Truthy() {
				out = append(out, e.Retain())
			}
			keep.Release()
		}
		return value.NewArray(out), nil
	})
	defineMethod(c, "forEach", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		for _, e := range a.Elems {
			vm.callSync(args[1], []value.Value{e}).Release()
		}
		return value.Null, nil
	})
	defineMethod(c, "reduce", 2, func(vm *VM, args []value.Value) (value.Value, error) {
		a, _ := arrayOf(args[0])
		acc := args[2].Retain()
		for _, e := range a.Elems {
			acc = vm.callSync(args[1], []value.Value{acc, e})
		}
		return acc, nil
	})
}

// derefOwned is a readability helper for the ownership handoff at the end
// of Array.pop: the popped slot's reference transfers directly to the
// caller rather than being released and re-retained.
func derefOwned(v value.Value) value.Value { return v }

func clampSliceIndex(i, length int) int {
	if i < 0 {
		i += length
	}
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}

// registerObjectMethods covers spec.md §4.4's Object operation list.
func registerObjectMethods(c *value.ClassObj) {
	defineMethod(c, "get", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		o := args[0].Heap().(*value.ObjectObj)
		key, ok := stringOf(args[1])
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "object key must be a String")
		}
		v, ok := o.Get(key)
		if !ok {
			return value.Null, nil
		}
		return v.Retain(), nil
	})
	defineMethod(c, "set", 2, func(vm *VM, args []value.Value) (value.Value, error) {
		o := args[0].Heap().(*value.ObjectObj)
		key, ok := stringOf(args[1])
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "object key must be a String")
		}
		o.Set(key, args[2])
		return args[0].Retain(), nil
	})
	defineMethod(c, "has", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		o := args[0].Heap().(*value.ObjectObj)
		key, ok := stringOf(args[1])
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "object key must be a String")
		}
		_, has := o.Get(key)
		return value.Bool(has), nil
	})
	defineMethod(c, "keys", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		o := args[0].Heap().(*value.ObjectObj)
		ks := o.Keys()
		out := make([]value.Value, len(ks))
		for i, k := range ks {
			out[i] = value.NewString(k)
		}
		return value.NewArray(out), nil
	})
	defineMethod(c, "toString", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewString(value.Display(args[0])), nil
	})
	defineMethod(c, "iterator", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		o := args[0].Heap().(*value.ObjectObj)
		return value.NewIterator(&objectIterator{obj: o, keys: append([]string(nil), o.Keys()...)}), nil
	})
}

// registerRangeMethods covers spec.md §4.4's Range accessors.
func registerRangeMethods(c *value.ClassObj) {
	defineMethod(c, "from", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return args[0].Heap().(*value.RangeObj).From.Retain(), nil
	})
	defineMethod(c, "to", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return args[0].Heap().(*value.RangeObj).To.Retain(), nil
	})
	defineMethod(c, "step", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Int32(int32(args[0].Heap().(*value.RangeObj).Step)), nil
	})
	defineMethod(c, "isInclusive", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Bool(args[0].Heap().(*value.RangeObj).Inclusive), nil
	})
	defineMethod(c, "toArray", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		elems, err := materializeRange(args[0].Heap().(*value.RangeObj))
		if err != nil {
			return value.Value{}, err
		}
		return value.NewArray(elems), nil
	})
	defineMethod(c, "iterator", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewIterator(newRangeIterator(args[0].Heap().(*value.RangeObj))), nil
	})
	defineMethod(c, "toString", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewString(value.Display(args[0])), nil
	})
}
