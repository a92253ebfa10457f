// Package value implements Slate's tagged-union Value representation, its
// reference-counted heap object model, the numeric promotion tower, hashing,
// equality, and prototype-based property/method dispatch.
//
// A Value is a small fixed-size struct: primitive kinds (Null, Boolean,
// Int32, Float64) are stored inline; everything else is a pointer to a
// heap object embedding RefCounted, following the same manual
// retain/release discipline as a Perl SV scalar (see
// other_examples/.../djeday123-perl-compiler pkg/sv/sv.go: a refcnt field
// incremented/decremented around assignment and scope exit). Cycles
// through Array/Object back-references are not collected; that is a
// documented consequence of the model, not a bug to paper over here.
package value

import "fmt"

// Tag identifies a Value's kind.
type Tag uint8

const (
	TagNull Tag = iota
	TagUndefined
	TagBool
	TagInt32
	TagFloat64
	TagBigInt
	TagString
	TagStringBuilder
	TagArray
	TagObject
	TagClass
	TagRange
	TagBuffer
	TagBufferBuilder
	TagBufferReader
	TagIterator
	TagFunction
	TagBoundMethod
	TagLocalDate
	TagLocalTime
	TagLocalDateTime
	TagInstant
)

func (t Tag) String() string {
	switch t {
	case TagNull:
		return "Null"
	case TagUndefined:
		return "Undefined"
	case TagBool:
		return "Boolean"
	case TagInt32:
		return "Int"
	case TagFloat64:
		return "Float"
	case TagBigInt:
		return "Int"
	case TagString:
		return "String"
	case TagStringBuilder:
		return "StringBuilder"
	case TagArray:
		return "Array"
	case TagObject:
		return "Object"
	case TagClass:
		return "Class"
	case TagRange:
		return "Range"
	case TagBuffer:
		return "Buffer"
	case TagBufferBuilder:
		return "BufferBuilder"
	case TagBufferReader:
		return "BufferReader"
	case TagIterator:
		return "Iterator"
	case TagFunction:
		return "Function"
	case TagBoundMethod:
		return "BoundMethod"
	case TagLocalDate:
		return "LocalDate"
	case TagLocalTime:
		return "LocalTime"
	case TagLocalDateTime:
		return "LocalDateTime"
	case TagInstant:
		return "Instant"
	default:
		return "?"
	}
}

// HeapObject is implemented by every reference-counted heap allocation a
// Value can point to.
type HeapObject interface {
	Retain()
	Release() bool
	TypeName() string
}

// RefCounted is embedded by every heap object; see the package doc comment
// for the idiom it follows.
type RefCounted struct {
	count int32
}

// Retain increments the reference count.
func (r *RefCounted) Retain() { r.count++ }

// Release decrements the reference count and reports whether it reached
// zero (the caller is then responsible for releasing anything the object
// itself retained).
func (r *RefCounted) Release() bool {
	r.count--
	return r.count <= 0
}

// RefCount reports the current count (diagnostics/tests only).
func (r *RefCounted) RefCount() int32 { return r.count }

// Value is Slate's universal runtime value.
type Value struct {
	tag  Tag
	i32  int32
	f64  float64
	b    bool
	heap HeapObject
}

// Null is the sole null value.
var Null = Value{tag: TagNull}

// Undefined is the sole undefined value: spec.md §4.5 step 4's result of a
// property lookup that misses at every level, distinct from Null (an
// explicit value a program can assign) and never produced by user syntax.
var Undefined = Value{tag: TagUndefined}

// Bool constructs a Boolean value.
func Bool(b bool) Value { return Value{tag: TagBool, b: b} }

// Int32 constructs a fixed-width integer value.
func Int32(n int32) Value { return Value{tag: TagInt32, i32: n} }

// Float64 constructs a floating-point value.
func Float64(f float64) Value { return Value{tag: TagFloat64, f64: f} }

// FromHeap wraps a heap object that already owns one reference (the
// caller is transferring ownership of that reference into the Value).
func FromHeap(tag Tag, h HeapObject) Value {
	return Value{tag: tag, heap: h}
}

// Tag reports the value's kind.
func (v Value) Tag() Tag { return v.tag }

// IsNull, IsBool, IsInt32, IsFloat64, IsBigInt report the value's kind.
func (v Value) IsNull() bool      { return v.tag == TagNull }
func (v Value) IsUndefined() bool { return v.tag == TagUndefined }
func (v Value) IsBool() bool    { return v.tag == TagBool }
func (v Value) IsInt32() bool   { return v.tag == TagInt32 }
func (v Value) IsFloat64() bool { return v.tag == TagFloat64 }
func (v Value) IsBigInt() bool  { return v.tag == TagBigInt }

// IsNumber reports whether v is anywhere on the numeric tower.
func (v Value) IsNumber() bool {
	return v.tag == TagInt32 || v.tag == TagFloat64 || v.tag == TagBigInt
}

// IsHeap reports whether v is backed by a heap allocation.
func (v Value) IsHeap() bool { return v.heap != nil }

// AsBool returns the boolean payload (only meaningful when IsBool).
func (v Value) AsBool() bool { return v.b }

// AsInt32 returns the Int32 payload.
func (v Value) AsInt32() int32 { return v.i32 }

// AsFloat64 returns the Float64 payload.
func (v Value) AsFloat64() float64 { return v.f64 }

// Heap returns the underlying heap object, or nil for an inline value.
func (v Value) Heap() HeapObject { return v.heap }

// Truthy implements Slate's truthiness rule: null, undefined and false are falsy,
// everything else (including 0, 0.0, and empty string/array) is truthy.
func (v Value) Truthy() bool {
	switch v.tag {
	case TagNull, TagUndefined:
		return false
	case TagBool:
		return v.b
	default:
		return true
	}
}

// Retain increments the reference count of a heap-backed value; a no-op
// for inline values.
func (v Value) Retain() Value {
	if v.heap != nil {
		v.heap.Retain()
	}
	return v
}

// Release decrements the reference count of a heap-backed value; a no-op
// for inline values. Slate relies on Go's GC for actual reclamation once
// the last reference is dropped, mirroring the refcount-as-bookkeeping
// role it plays in the source model rather than performing manual frees.
func (v Value) Release() {
	if v.heap != nil {
		v.heap.Release()
	}
}

// TypeName returns the class name the value presents to user code.
func (v Value) TypeName() string {
	if v.heap != nil {
		return v.heap.TypeName()
	}
	return v.tag.String()
}

// GoString provides a debug-friendly representation distinct from the
// language-level string conversion (that lives in format.go via Display).
func (v Value) GoString() string {
	return fmt.Sprintf("Value{%s %s}", v.tag, Display(v))
}
