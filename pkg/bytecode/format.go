package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/edadma/slate-sub000/pkg/value"
)

// magicNumber and formatVersion mirror the teacher's own
// `pkg/bytecode/format.go` ("SMOG" + FormatVersion uint32 = 1): a fixed
// magic so a misdirected file is rejected immediately, and a version
// field so a future format change can detect old files rather than
// silently misparsing them.
const (
	magicNumber   uint32 = 0x534C4154 // "SLAT"
	formatVersion uint32 = 1
)

type constTag byte

const (
	constNull constTag = iota
	constBool
	constInt32
	constFloat64
	constString
)

// Encode writes c to w as a self-contained .sgb chunk: header, constant
// pool, then code+line table. Only the constant kinds a compiled chunk
// can actually contain as literals (Null/Bool/Int32/Float64/String) are
// supported; a nested function prototype constant is out of scope for
// this on-disk form, the same way the teacher's own encoder special-cases
// nested bytecode constants separately from scalar ones.
func Encode(c *Chunk, w io.Writer) error {
	if err := writeU32(w, magicNumber); err != nil {
		return err
	}
	if err := writeU32(w, formatVersion); err != nil {
		return err
	}
	if err := writeConstants(c, w); err != nil {
		return err
	}
	return writeCode(c, w)
}

// Decode reads a chunk previously written by Encode.
func Decode(r io.Reader) (*Chunk, error) {
	magic, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if magic != magicNumber {
		return nil, fmt.Errorf("bytecode: bad magic number %#x", magic)
	}
	version, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, fmt.Errorf("bytecode: unsupported format version %d", version)
	}
	c := New()
	if err := readConstants(c, r); err != nil {
		return nil, err
	}
	if err := readCode(c, r); err != nil {
		return nil, err
	}
	return c, nil
}

func writeConstants(c *Chunk, w io.Writer) error {
	if err := writeU32(w, uint32(len(c.Constants))); err != nil {
		return err
	}
	for _, v := range c.Constants {
		if err := writeConstant(v, w); err != nil {
			return err
		}
	}
	return nil
}

func writeConstant(v value.Value, w io.Writer) error {
	switch v.Tag() {
	case value.TagNull:
		return writeByte(w, byte(constNull))
	case value.TagBool:
		if err := writeByte(w, byte(constBool)); err != nil {
			return err
		}
		b := byte(0)
		if v.AsBool() {
			b = 1
		}
		return writeByte(w, b)
	case value.TagInt32:
		if err := writeByte(w, byte(constInt32)); err != nil {
			return err
		}
		return writeU32(w, uint32(v.AsInt32()))
	case value.TagFloat64:
		if err := writeByte(w, byte(constFloat64)); err != nil {
			return err
		}
		return writeU64(w, math.Float64bits(v.AsFloat64()))
	case value.TagString:
		if err := writeByte(w, byte(constString)); err != nil {
			return err
		}
		return writeString(w, value.Display(v))
	default:
		return fmt.Errorf("bytecode: cannot encode constant of kind %s", v.Tag())
	}
}

func readConstant(r io.Reader) (value.Value, error) {
	tagByte, err := readByte(r)
	if err != nil {
		return value.Value{}, err
	}
	switch constTag(tagByte) {
	case constNull:
		return value.Null, nil
	case constBool:
		b, err := readByte(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(b != 0), nil
	case constInt32:
		n, err := readU32(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int32(int32(n)), nil
	case constFloat64:
		bits, err := readU64(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float64(math.Float64frombits(bits)), nil
	case constString:
		s, err := readString(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewString(s), nil
	default:
		return value.Value{}, fmt.Errorf("bytecode: unknown constant tag %d", tagByte)
	}
}

func readConstants(c *Chunk, r io.Reader) error {
	n, err := readU32(r)
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		v, err := readConstant(r)
		if err != nil {
			return err
		}
		c.Constants = append(c.Constants, v)
	}
	return nil
}

func writeCode(c *Chunk, w io.Writer) error {
	if err := writeU32(w, uint32(len(c.Code))); err != nil {
		return err
	}
	if _, err := w.Write(c.Code); err != nil {
		return err
	}
	for _, line := range c.Lines {
		if err := writeU16(w, line); err != nil {
			return err
		}
	}
	return nil
}

func readCode(c *Chunk, r io.Reader) error {
	n, err := readU32(r)
	if err != nil {
		return err
	}
	c.Code = make([]byte, n)
	if _, err := io.ReadFull(r, c.Code); err != nil {
		return err
	}
	c.Lines = make([]uint16, n)
	for i := uint32(0); i < n; i++ {
		line, err := readU16(r)
		if err != nil {
			return err
		}
		c.Lines[i] = line
	}
	return nil
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(r, buf[:])
	return buf[0], err
}

func writeU16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func writeString(w io.Writer, s string) error {
	if err := writeU32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
