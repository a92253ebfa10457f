package vm

import (
	"github.com/edadma/slate-sub000/pkg/buffer"
	"github.com/edadma/slate-sub000/pkg/value"
)

// registerBufferMethods, registerBufferBuilderMethods and
// registerBufferReaderMethods adapt pkg/buffer's byte-buffer API to
// Slate methods, grounding spec.md §8's builder/reader round-trip
// property (append_u32_le through the builder, finish, then
// read_u32_le back out through a reader).
func registerBufferMethods(c *value.ClassObj) {
	c.Factory = &NativeFn{FnName: "Buffer", FnArity: 0, Fn: func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewBuffer(buffer.New(nil)), nil
	}}
	defineMethod(c, "size", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		b := args[0].Heap().(*value.BufferObj)
		return value.Int32(int32(b.Buf.Size())), nil
	})
	defineMethod(c, "slice", 2, func(vm *VM, args []value.Value) (value.Value, error) {
		b := args[0].Heap().(*value.BufferObj)
		s, err := b.Buf.Slice(int(args[1].AsInt32()), int(args[2].AsInt32()))
		if err != nil {
			return value.Value{}, value.NewError(value.ErrRange, "%s", err.Error())
		}
		return value.NewBuffer(s), nil
	})
	defineMethod(c, "hexEncode", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		b := args[0].Heap().(*value.BufferObj)
		return value.NewString(b.Buf.HexEncode()), nil
	})
	defineMethod(c, "equals", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		a := args[0].Heap().(*value.BufferObj)
		other, ok := args[1].Heap().(*value.BufferObj)
		if !ok {
			return value.Bool(false), nil
		}
		return value.Bool(buffer.Equal(a.Buf, other.Buf)), nil
	})
	defineMethod(c, "compare", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		a := args[0].Heap().(*value.BufferObj)
		other, ok := args[1].Heap().(*value.BufferObj)
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "cannot compare Buffer to %s", args[1].TypeName())
		}
		return value.Int32(int32(buffer.Compare(a.Buf, other.Buf))), nil
	})
	defineMethod(c, "concat", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		a := args[0].Heap().(*value.BufferObj)
		other, ok := args[1].Heap().(*value.BufferObj)
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "concat requires a Buffer argument")
		}
		return value.NewBuffer(buffer.Concat(a.Buf, other.Buf)), nil
	})
	defineMethod(c, "toString", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		b := args[0].Heap().(*value.BufferObj)
		return value.NewString(b.Buf.HexEncode()), nil
	})
}

func registerBufferBuilderMethods(c *value.ClassObj) {
	c.Factory = &NativeFn{FnName: "BufferBuilder", FnArity: 0, Fn: func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewBufferBuilder(buffer.NewBuilder()), nil
	}}
	defineMethod(c, "length", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		bb := args[0].Heap().(*value.BufferBuilderObj)
		return value.Int32(int32(bb.B.Len())), nil
	})
	defineMethod(c, "appendU8", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		bb := args[0].Heap().(*value.BufferBuilderObj)
		bb.B.AppendU8(uint8(args[1].AsInt32()))
		return args[0].Retain(), nil
	})
	defineMethod(c, "appendBytes", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		bb := args[0].Heap().(*value.BufferBuilderObj)
		b := args[1].Heap().(*value.BufferObj)
		bb.B.AppendBytes(b.Buf.Bytes())
		return args[0].Retain(), nil
	})
	defineMethod(c, "appendBuffer", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		bb := args[0].Heap().(*value.BufferBuilderObj)
		b := args[1].Heap().(*value.BufferObj)
		bb.B.AppendBuffer(b.Buf)
		return args[0].Retain(), nil
	})
	defineMethod(c, "appendCString", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		bb := args[0].Heap().(*value.BufferBuilderObj)
		s, ok := stringOf(args[1])
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "appendCString requires a String argument")
		}
		bb.B.AppendCString(s)
		return args[0].Retain(), nil
	})
	defineMethod(c, "appendU16LE", 1, appendFixedMethod(func(bb *buffer.BufferBuilder, v uint64) { bb.AppendU16LE(uint16(v)) }))
	defineMethod(c, "appendU16BE", 1, appendFixedMethod(func(bb *buffer.BufferBuilder, v uint64) { bb.AppendU16BE(uint16(v)) }))
	defineMethod(c, "appendU32LE", 1, appendFixedMethod(func(bb *buffer.BufferBuilder, v uint64) { bb.AppendU32LE(uint32(v)) }))
	defineMethod(c, "appendU32BE", 1, appendFixedMethod(func(bb *buffer.BufferBuilder, v uint64) { bb.AppendU32BE(uint32(v)) }))
	defineMethod(c, "appendU64LE", 1, appendFixedMethod(func(bb *buffer.BufferBuilder, v uint64) { bb.AppendU64LE(v) }))
	defineMethod(c, "appendU64BE", 1, appendFixedMethod(func(bb *buffer.BufferBuilder, v uint64) { bb.AppendU64BE(v) }))
	defineMethod(c, "finish", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		bb := args[0].Heap().(*value.BufferBuilderObj)
		return value.NewBuffer(bb.B.Finish()), nil
	})
}

func appendFixedMethod(write func(*buffer.BufferBuilder, uint64)) func(vm *VM, args []value.Value) (value.Value, error) {
	return func(vm *VM, args []value.Value) (value.Value, error) {
		bb := args[0].Heap().(*value.BufferBuilderObj)
		write(bb.B, numericU64(args[1]))
		return args[0].Retain(), nil
	}
}

func numericU64(v value.Value) uint64 {
	if v.Tag() == value.TagBigInt {
		n, _ := v.Heap().(*value.BigIntObj).N.Int64()
		return uint64(n)
	}
	return uint64(v.AsInt32())
}

func registerBufferReaderMethods(c *value.ClassObj) {
	c.Factory = &NativeFn{FnName: "BufferReader", FnArity: 1, Fn: func(vm *VM, args []value.Value) (value.Value, error) {
		b, ok := args[0].Heap().(*value.BufferObj)
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "BufferReader(buffer) requires a Buffer")
		}
		return value.NewBufferReader(buffer.NewReader(b.Buf)), nil
	}}
	defineMethod(c, "position", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		r := args[0].Heap().(*value.BufferReaderObj)
		return value.Int32(int32(r.R.Position())), nil
	})
	defineMethod(c, "remaining", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		r := args[0].Heap().(*value.BufferReaderObj)
		return value.Int32(int32(r.R.Remaining())), nil
	})
	defineMethod(c, "canRead", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		r := args[0].Heap().(*value.BufferReaderObj)
		return value.Bool(r.R.CanRead(int(args[1].AsInt32()))), nil
	})
	defineMethod(c, "seek", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		r := args[0].Heap().(*value.BufferReaderObj)
		if err := r.R.Seek(int(args[1].AsInt32())); err != nil {
			return value.Value{}, value.NewError(value.ErrRange, "%s", err.Error())
		}
		return args[0].Retain(), nil
	})
	defineMethod(c, "readBytes", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		r := args[0].Heap().(*value.BufferReaderObj)
		b, err := r.R.ReadBytes(int(args[1].AsInt32()))
		if err != nil {
			return value.Value{}, value.NewError(value.ErrResource, "%s", err.Error())
		}
		return value.NewBuffer(buffer.New(b)), nil
	})
	defineMethod(c, "readU8", 0, readFixedMethod(func(r *buffer.BufferReader) (uint64, error) {
		v, err := r.ReadU8()
		return uint64(v), err
	}))
	defineMethod(c, "readU16LE", 0, readFixedMethod(func(r *buffer.BufferReader) (uint64, error) {
		v, err := r.ReadU16LE()
		return uint64(v), err
	}))
	defineMethod(c, "readU16BE", 0, readFixedMethod(func(r *buffer.BufferReader) (uint64, error) {
		v, err := r.ReadU16BE()
		return uint64(v), err
	}))
	defineMethod(c, "readU32LE", 0, readFixedMethod(func(r *buffer.BufferReader) (uint64, error) {
		v, err := r.ReadU32LE()
		return uint64(v), err
	}))
	defineMethod(c, "readU32BE", 0, readFixedMethod(func(r *buffer.BufferReader) (uint64, error) {
		v, err := r.ReadU32BE()
		return uint64(v), err
	}))
	defineMethod(c, "readU64LE", 0, readFixedMethod(func(r *buffer.BufferReader) (uint64, error) {
		return r.ReadU64LE()
	}))
	defineMethod(c, "readU64BE", 0, readFixedMethod(func(r *buffer.BufferReader) (uint64, error) {
		return r.ReadU64BE()
	}))
}

func readFixedMethod(read func(*buffer.BufferReader) (uint64, error)) func(vm *VM, args []value.Value) (value.Value, error) {
	return func(vm *VM, args []value.Value) (value.Value, error) {
		r := args[0].Heap().(*value.BufferReaderObj)
		v, err := read(r.R)
		if err != nil {
			return value.Value{}, value.NewError(value.ErrResource, "%s", err.Error())
		}
		if v > 0x7fffffff {
			return value.Float64(float64(v)), nil
		}
		return value.Int32(int32(v)), nil
	}
}
