package value

// ClassResolver maps a receiver to the class that governs its instance
// method lookup when the receiver is not itself an Object/instance (a
// primitive Int32, a String, an Array, ...). pkg/vm owns the global class
// registry and supplies this; pkg/value stays ignorant of it so that
// registry can live above both value and bytecode without an import
// cycle.
type ClassResolver func(Value) *ClassObj

// LookupMethod implements spec.md §4.5's property/method resolution:
// own-property lookup first (only meaningful for Object/instance
// receivers), then an ascent of the class -> parent chain looking up the
// instance method table. A callable found via the ascent is wrapped in a
// fresh BoundMethod; a non-callable found via the ascent (an inherited
// default field value, for instance) is returned unbound. Static lookups
// on a Class receiver go through GetStatic first (pkg/vm's getProperty and
// invoke).
func LookupMethod(receiver Value, name string, resolve ClassResolver) (Value, bool) {
	var class *ClassObj
	if receiver.tag == TagObject {
		obj := receiver.heap.(*ObjectObj)
		if v, ok := obj.Get(name); ok {
			return v, true
		}
		class = obj.Class
	}
	if class == nil {
		class = resolve(receiver)
	}
	for c := class; c != nil; c = c.Parent {
		if m, ok := c.Methods[name]; ok {
			if m.tag == TagFunction {
				fn := m.heap.(*FunctionObj).Fn
				return NewBoundMethod(receiver, fn), true
			}
			return m, true
		}
	}
	return Value{}, false
}

// GetStatic looks up a static (class-level) property directly on class's
// static-properties object, with no ascent of the parent chain (spec.md
// §4.5).
func GetStatic(class *ClassObj, name string) (Value, bool) {
	return class.Statics.Get(name)
}

// SetStatic assigns a static property.
func SetStatic(class *ClassObj, name string, v Value) {
	class.Statics.Set(name, v)
}

// OperatorMethod is the desugaring table from surface operators to the
// method names the dispatcher sends (spec.md §4.6). Numeric operands take
// a fast path straight through pkg/value's arithmetic (numeric.go) and
// never reach user-overridable dispatch; this table exists for every other
// receiver kind.
var OperatorMethod = map[string]string{
	"+":   "plus",
	"-":   "minus",
	"*":   "times",
	"/":   "divide",
	"mod": "mod",
	"**":  "pow",
	"==":  "equals",
	"!=":  "equals", // negated by the caller
	"<":   "compare",
	"<=":  "compare",
	">":   "compare",
	">=":  "compare",
	"neg": "negate",
	"[]":  "get",
	"[]=": "set",
}

// IsComparisonOperator reports whether op resolves through compare's
// three-way result rather than being used directly.
func IsComparisonOperator(op string) bool {
	switch op {
	case "<", "<=", ">", ">=":
		return true
	default:
		return false
	}
}
