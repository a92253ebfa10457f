package vm

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/edadma/slate-sub000/pkg/bigint"
	"github.com/edadma/slate-sub000/pkg/value"
)

// registerBuiltins populates the VM's globals with the class objects
// spec.md §6.3 requires, each carrying the native instance methods that
// make §4.4's "illustrative" operation lists executable.
func (vm *VM) registerBuiltins() {
	number := vm.defineClass("Number", nil)
	intClass := vm.defineClass("Int", number)
	floatClass := vm.defineClass("Float", number)
	boolClass := vm.defineClass("Boolean", nil)
	nullClass := vm.defineClass("Null", nil)
	stringClass := vm.defineClass("String", nil)
	sbClass := vm.defineClass("StringBuilder", nil)
	arrayClass := vm.defineClass("Array", nil)
	objectClass := vm.defineClass("Object", nil)
	rangeClass := vm.defineClass("Range", nil)
	bufferClass := vm.defineClass("Buffer", nil)
	bbClass := vm.defineClass("BufferBuilder", nil)
	brClass := vm.defineClass("BufferReader", nil)
	dateClass := vm.defineClass("LocalDate", nil)
	timeClass := vm.defineClass("LocalTime", nil)
	dateTimeClass := vm.defineClass("LocalDateTime", nil)
	instantClass := vm.defineClass("Instant", nil)

	registerIntMethods(intClass)
	registerFloatMethods(floatClass)
	registerBoolMethods(boolClass)
	registerNullMethods(nullClass)
	registerStringMethods(stringClass)
	registerStringBuilderMethods(sbClass)
	registerArrayMethods(arrayClass)
	registerObjectMethods(objectClass)
	registerRangeMethods(rangeClass)
	registerBufferMethods(bufferClass)
	registerBufferBuilderMethods(bbClass)
	registerBufferReaderMethods(brClass)
	vm.registerDateTimeClasses(dateClass, timeClass, dateTimeClass, instantClass)

	boolClass.Factory = &NativeFn{FnName: "Boolean", FnArity: 1, Fn: func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Bool(args[0].Truthy()), nil
	}}
	intClass.Factory = &NativeFn{FnName: "Int", FnArity: -1, Fn: factoryInt}
	floatClass.Factory = &NativeFn{FnName: "Float", FnArity: -1, Fn: factoryFloat}
	arrayClass.Factory = &NativeFn{FnName: "Array", FnArity: 1, Fn: factoryArray}
	sbClass.Factory = &NativeFn{FnName: "StringBuilder", FnArity: 0, Fn: func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewStringBuilder(), nil
	}}

	vm.defineNative("print", -1, nativePrint(false))
	vm.defineNative("println", -1, nativePrint(true))
}

// defineClass registers and returns a fresh builtin class, wiring parent
// for Int/Float's shared ascent to Number.
func (vm *VM) defineClass(name string, parent *value.ClassObj) *value.ClassObj {
	v := value.NewClass(name, parent)
	c := value.ClassOf(v)
	vm.globals[name] = v
	vm.classes[name] = c
	return c
}

// classResolver implements value.ClassResolver: it maps a primitive or
// heap-tagged receiver to the builtin class that governs its method
// dispatch (spec.md §4.5, used whenever the receiver isn't itself an
// Object carrying its own governing class).
func (vm *VM) classResolver(v value.Value) *value.ClassObj {
	switch v.Tag() {
	case value.TagInt32, value.TagBigInt:
		return vm.classes["Int"]
	case value.TagFloat64:
		return vm.classes["Float"]
	case value.TagBool:
		return vm.classes["Boolean"]
	case value.TagNull:
		return vm.classes["Null"]
	case value.TagString:
		return vm.classes["String"]
	case value.TagStringBuilder:
		return vm.classes["StringBuilder"]
	case value.TagArray:
		return vm.classes["Array"]
	case value.TagRange:
		return vm.classes["Range"]
	case value.TagBuffer:
		return vm.classes["Buffer"]
	case value.TagBufferBuilder:
		return vm.classes["BufferBuilder"]
	case value.TagBufferReader:
		return vm.classes["BufferReader"]
	case value.TagLocalDate:
		return vm.classes["LocalDate"]
	case value.TagLocalTime:
		return vm.classes["LocalTime"]
	case value.TagLocalDateTime:
		return vm.classes["LocalDateTime"]
	case value.TagInstant:
		return vm.classes["Instant"]
	default:
		return nil
	}
}

func nativePrint(newline bool) func(vm *VM, args []value.Value) (value.Value, error) {
	return func(vm *VM, args []value.Value) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = value.Display(a)
		}
		out := strings.Join(parts, " ")
		if newline {
			out += "\n"
		}
		vm.out.Write([]byte(out))
		return value.Null, nil
	}
}

// tryDispatch looks up name on a and, if found, calls it with b as the
// single argument via the synchronous call path (spec.md §4.6 fallback
// for operands the numeric fast path does not cover).
func (vm *VM) tryDispatch(a value.Value, name string, b value.Value) (value.Value, bool) {
	m, ok := value.LookupMethod(a, name, vm.classResolver)
	if !ok {
		return value.Value{}, false
	}
	result := vm.callSync(m, []value.Value{b})
	m.Release()
	return result, true
}

// valuesEqual implements "==" (spec.md §4.6): an Object instance gets a
// chance to define its own equals before falling back to the structural
// rules in value.Equals.
func (vm *VM) valuesEqual(a, b value.Value) bool {
	if a.Tag() == value.TagObject {
		if m, ok := value.LookupMethod(a, "equals", vm.classResolver); ok {
			r := vm.callSync(m, []value.Value{b})
			m.Release()
			eq := r.Truthy()
			r.Release()
			return eq
		}
	}
	return value.Equals(a, b)
}

func factoryInt(vm *VM, args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Int32(0), nil
	}
	if len(args) == 2 {
		s, ok := stringOf(args[0])
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "Int(string, radix) requires a String")
		}
		radix := int(args[1].AsInt32())
		n, ok := bigint.FromString(s, radix)
		if !ok {
			return value.Value{}, value.NewError(value.ErrValue, "invalid integer literal %q", s)
		}
		if i, ok := n.Int32(); ok {
			return value.Int32(i), nil
		}
		return value.NewBigInt(n), nil
	}
	a := args[0]
	switch a.Tag() {
	case value.TagInt32, value.TagBigInt:
		return a.Retain(), nil
	case value.TagFloat64:
		return value.Int32(int32(a.AsFloat64())), nil
	case value.TagString:
		s, _ := stringOf(a)
		n, ok := bigint.FromString(s, 10)
		if !ok {
			return value.Value{}, value.NewError(value.ErrValue, "invalid integer literal %q", s)
		}
		if i, ok := n.Int32(); ok {
			return value.Int32(i), nil
		}
		return value.NewBigInt(n), nil
	default:
		return value.Value{}, value.NewError(value.ErrType, "cannot convert %s to Int", a.TypeName())
	}
}

func factoryFloat(vm *VM, args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Float64(0), nil
	}
	a := args[0]
	switch a.Tag() {
	case value.TagFloat64:
		return a.Retain(), nil
	case value.TagInt32:
		return value.Float64(float64(a.AsInt32())), nil
	case value.TagBigInt:
		return value.Float64(a.Heap().(*value.BigIntObj).N.Float64()), nil
	case value.TagString:
		s, _ := stringOf(a)
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return value.Value{}, value.NewError(value.ErrValue, "invalid float literal %q", s)
		}
		return value.Float64(f), nil
	default:
		return value.Value{}, value.NewError(value.ErrType, "cannot convert %s to Float", a.TypeName())
	}
}

func factoryArray(vm *VM, args []value.Value) (value.Value, error) {
	r, ok := args[0].Heap().(*value.RangeObj)
	if !ok {
		return value.Value{}, value.NewError(value.ErrType, "Array(range) requires a Range")
	}
	elems, err := materializeRange(r)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewArray(elems), nil
}

func stringOf(v value.Value) (string, bool) {
	s, ok := v.Heap().(*value.StringObj)
	if !ok {
		return "", false
	}
	return s.S, true
}

func arrayOf(v value.Value) (*value.ArrayObj, bool) {
	a, ok := v.Heap().(*value.ArrayObj)
	return a, ok
}

// sortedKeys returns an object's keys sorted, used only by diagnostics;
// normal iteration instead uses ObjectObj.Keys insertion order.
func sortedKeys(o *value.ObjectObj) []string {
	ks := append([]string(nil), o.Keys()...)
	sort.Strings(ks)
	return ks
}

func utf8Len(s string) int { return utf8.RuneCountInString(s) }
