package bytecode

import (
	"encoding/binary"

	"github.com/edadma/slate-sub000/pkg/value"
)

// Chunk is a unit of compiled code: a byte stream of opcodes and their
// operands, a parallel source-line table (one uint16 per byte of code,
// spec.md §4.8), and the constant pool operands index into. Operands are
// little-endian, following the teacher's own `pkg/bytecode/format.go`
// convention.
type Chunk struct {
	Code      []byte
	Lines     []uint16
	Constants []value.Value
}

// New returns an empty chunk.
func New() *Chunk {
	return &Chunk{}
}

// Write appends a single opcode byte at the given source line.
func (c *Chunk) Write(op Opcode, line uint16) int {
	c.Code = append(c.Code, byte(op))
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// WriteByte appends a raw operand byte at the given source line.
func (c *Chunk) WriteByte(b byte, line uint16) int {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// WriteU16 appends a little-endian uint16 operand.
func (c *Chunk) WriteU16(v uint16, line uint16) int {
	start := len(c.Code)
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	c.Code = append(c.Code, buf[:]...)
	c.Lines = append(c.Lines, line, line)
	return start
}

// PatchU16 overwrites the uint16 operand at offset (used for backpatching
// jump targets once the jump's destination is known).
func (c *Chunk) PatchU16(offset int, v uint16) {
	binary.LittleEndian.PutUint16(c.Code[offset:offset+2], v)
}

// ReadU16 decodes the little-endian uint16 operand at offset.
func (c *Chunk) ReadU16(offset int) uint16 {
	return binary.LittleEndian.Uint16(c.Code[offset : offset+2])
}

// AddConstant appends v to the constant pool and returns its index. The
// constant pool owns one reference to v.
func (c *Chunk) AddConstant(v value.Value) uint16 {
	c.Constants = append(c.Constants, v)
	return uint16(len(c.Constants) - 1)
}

// Len reports the number of code bytes emitted so far.
func (c *Chunk) Len() int { return len(c.Code) }
