package value

import (
	"strings"

	"github.com/edadma/slate-sub000/pkg/bigint"
	"github.com/edadma/slate-sub000/pkg/buffer"
)

// BigIntObj is the heap box for an arbitrary-precision integer.
type BigIntObj struct {
	RefCounted
	N *bigint.Int
}

func (o *BigIntObj) TypeName() string { return "Int" }

// NewBigInt wraps n in a fresh, owned Value.
func NewBigInt(n *bigint.Int) Value {
	return FromHeap(TagBigInt, &BigIntObj{N: n})
}

// StringObj is an immutable UTF-8 string.
type StringObj struct {
	RefCounted
	S string
}

func (o *StringObj) TypeName() string { return "String" }

// NewString wraps s in a fresh, owned Value.
func NewString(s string) Value {
	return FromHeap(TagString, &StringObj{S: s})
}

// StringBuilderObj is a mutable string accumulator.
type StringBuilderObj struct {
	RefCounted
	B strings.Builder
}

func (o *StringBuilderObj) TypeName() string { return "StringBuilder" }

// NewStringBuilder returns a fresh, empty StringBuilder value.
func NewStringBuilder() Value {
	return FromHeap(TagStringBuilder, &StringBuilderObj{})
}

// ArrayObj is a growable, ordered, heterogeneous array of Values. Elements
// are owned: appending retains, removing releases.
type ArrayObj struct {
	RefCounted
	Elems []Value
}

func (o *ArrayObj) TypeName() string { return "Array" }

// NewArray wraps elems (taking ownership of the slice and the references
// it holds) in a fresh Value.
func NewArray(elems []Value) Value {
	return FromHeap(TagArray, &ArrayObj{Elems: elems})
}

// ObjectObj is a prototype-style bag of named properties plus an optional
// governing class, used both for plain object literals and for class
// instances (spec.md §4.5: every value carries an optional back-pointer to
// its governing Class).
type ObjectObj struct {
	RefCounted
	Class *ClassObj
	keys  []string
	props map[string]Value
}

func (o *ObjectObj) TypeName() string {
	if o.Class != nil {
		return o.Class.Name
	}
	return "Object"
}

// NewObject returns an empty object, optionally governed by class.
func NewObject(class *ClassObj) Value {
	return FromHeap(TagObject, &ObjectObj{Class: class, props: map[string]Value{}})
}

// Get returns the own property (not walking any prototype chain) and
// whether it exists.
func (o *ObjectObj) Get(name string) (Value, bool) {
	v, ok := o.props[name]
	return v, ok
}

// Set assigns an own property, retaining val and releasing any value it
// replaces. Order of first insertion is preserved for iteration.
func (o *ObjectObj) Set(name string, val Value) {
	if old, ok := o.props[name]; ok {
		old.Release()
	} else {
		o.keys = append(o.keys, name)
	}
	o.props[name] = val.Retain()
}

// Keys returns property names in insertion order.
func (o *ObjectObj) Keys() []string { return o.keys }

// ClassObj is a class: a name, an optional parent, a set of declared
// instance field names (construction order), an instance method table,
// and a static-properties object consulted directly (no prototype walk)
// for static lookups, per spec.md §4.5.
type ClassObj struct {
	RefCounted
	Name    string
	Parent  *ClassObj
	Fields  []string
	Methods map[string]Value
	Statics *ObjectObj

	// Factory, when set, is invoked instead of the default
	// empty-instance synthesis when this class is called like a
	// function (spec.md §4.4/§4.9) — e.g. Array(range), Int("ff", 16).
	// Builtin classes set this during registration; user-declared
	// classes never do, relying on the init-method convention instead.
	Factory Callable
}

func (o *ClassObj) TypeName() string { return "Class" }

// NewClass returns a fresh class value.
func NewClass(name string, parent *ClassObj) Value {
	c := &ClassObj{
		Name:    name,
		Parent:  parent,
		Methods: map[string]Value{},
		Statics: &ObjectObj{props: map[string]Value{}},
	}
	return FromHeap(TagClass, c)
}

// ClassOf extracts the *ClassObj a Value carries, or nil.
func ClassOf(v Value) *ClassObj {
	if v.tag != TagClass {
		return nil
	}
	c, _ := v.heap.(*ClassObj)
	return c
}

// RangeObj is a numeric range, half-open or inclusive, with an explicit
// step (default 1, or -1 when constructed descending).
type RangeObj struct {
	RefCounted
	From, To Value
	Step     int64
	Inclusive bool
}

func (o *RangeObj) TypeName() string { return "Range" }

// NewRange constructs a range value.
func NewRange(from, to Value, step int64, inclusive bool) Value {
	return FromHeap(TagRange, &RangeObj{From: from.Retain(), To: to.Retain(), Step: step, Inclusive: inclusive})
}

// BufferObj, BufferBuilderObj, BufferReaderObj adapt pkg/buffer's own
// refcounted types to the Value heap-object interface. pkg/buffer's
// refcount and the Value RefCounted here track the same lifetime in
// lockstep: one Value-level Retain/Release always matches one
// buffer-level Retain/Release.
type BufferObj struct {
	RefCounted
	Buf *buffer.Buffer
}

func (o *BufferObj) TypeName() string { return "Buffer" }
func (o *BufferObj) Retain()          { o.RefCounted.Retain(); o.Buf.Retain() }
func (o *BufferObj) Release() bool {
	o.Buf.Release()
	return o.RefCounted.Release()
}

// NewBuffer wraps an owned *buffer.Buffer reference.
func NewBuffer(b *buffer.Buffer) Value {
	return FromHeap(TagBuffer, &BufferObj{Buf: b})
}

type BufferBuilderObj struct {
	RefCounted
	B *buffer.BufferBuilder
}

func (o *BufferBuilderObj) TypeName() string { return "BufferBuilder" }
func (o *BufferBuilderObj) Retain()          { o.RefCounted.Retain(); o.B.Retain() }
func (o *BufferBuilderObj) Release() bool {
	o.B.Release()
	return o.RefCounted.Release()
}

// NewBufferBuilder wraps an owned *buffer.BufferBuilder reference.
func NewBufferBuilder(b *buffer.BufferBuilder) Value {
	return FromHeap(TagBufferBuilder, &BufferBuilderObj{B: b})
}

type BufferReaderObj struct {
	RefCounted
	R *buffer.BufferReader
}

func (o *BufferReaderObj) TypeName() string { return "BufferReader" }
func (o *BufferReaderObj) Retain()          { o.RefCounted.Retain(); o.R.Retain() }
func (o *BufferReaderObj) Release() bool {
	o.R.Release()
	return o.RefCounted.Release()
}

// NewBufferReader wraps an owned *buffer.BufferReader reference.
func NewBufferReader(r *buffer.BufferReader) Value {
	return FromHeap(TagBufferReader, &BufferReaderObj{R: r})
}

// Iterator is satisfied by any heap object that can drive a for-in loop
// (spec.md §4.11): HasNext/Next, no implicit rewind.
type Iterator interface {
	HasNext() bool
	Next() (Value, error)
}

// IteratorObj adapts an Iterator implementation to the Value heap model.
type IteratorObj struct {
	RefCounted
	Impl Iterator
}

func (o *IteratorObj) TypeName() string { return "Iterator" }

// NewIterator wraps impl in a fresh Value.
func NewIterator(impl Iterator) Value {
	return FromHeap(TagIterator, &IteratorObj{Impl: impl})
}

// Callable is implemented by anything a Function/BoundMethod Value can
// invoke: native Go functions and VM closures alike (pkg/vm supplies the
// closure implementation; pkg/value stays ignorant of bytecode to avoid an
// import cycle between the two packages).
type Callable interface {
	Name() string
	Arity() int
}

// FunctionObj wraps a Callable (native or VM closure) as a first-class
// Value.
type FunctionObj struct {
	RefCounted
	Fn Callable
}

func (o *FunctionObj) TypeName() string { return "Function" }

// NewFunction wraps fn in a fresh Value.
func NewFunction(fn Callable) Value {
	return FromHeap(TagFunction, &FunctionObj{Fn: fn})
}

// BoundMethodObj pairs a receiver with a method Callable, synthesized
// fresh at every prototype-chain lookup that resolves to a callable
// (spec.md §4.5): binding is not cached on the class or instance.
type BoundMethodObj struct {
	RefCounted
	Receiver Value
	Method   Callable
}

func (o *BoundMethodObj) TypeName() string { return "BoundMethod" }

// NewBoundMethod retains receiver and wraps (receiver, method) as a Value.
func NewBoundMethod(receiver Value, method Callable) Value {
	return FromHeap(TagBoundMethod, &BoundMethodObj{Receiver: receiver.Retain(), Method: method})
}

// LocalDateObj, LocalTimeObj, LocalDateTimeObj, InstantObj are the
// date/time heap types spec.md §6.3 lists among the host's global classes.
type LocalDateObj struct {
	RefCounted
	Year        int
	Month, Day  int
}

func (o *LocalDateObj) TypeName() string { return "LocalDate" }

func NewLocalDate(y, m, d int) Value {
	return FromHeap(TagLocalDate, &LocalDateObj{Year: y, Month: m, Day: d})
}

type LocalTimeObj struct {
	RefCounted
	Hour, Minute, Second, Nano int
}

func (o *LocalTimeObj) TypeName() string { return "LocalTime" }

func NewLocalTime(h, m, s, ns int) Value {
	return FromHeap(TagLocalTime, &LocalTimeObj{Hour: h, Minute: m, Second: s, Nano: ns})
}

type LocalDateTimeObj struct {
	RefCounted
	Date *LocalDateObj
	Time *LocalTimeObj
}

func (o *LocalDateTimeObj) TypeName() string { return "LocalDateTime" }

func NewLocalDateTime(date *LocalDateObj, time *LocalTimeObj) Value {
	return FromHeap(TagLocalDateTime, &LocalDateTimeObj{Date: date, Time: time})
}

type InstantObj struct {
	RefCounted
	EpochNano int64
}

func (o *InstantObj) TypeName() string { return "Instant" }

func NewInstant(epochNano int64) Value {
	return FromHeap(TagInstant, &InstantObj{EpochNano: epochNano})
}
