package bytecode

import (
	"fmt"
	"strings"

	"github.com/edadma/slate-sub000/pkg/value"
)

// Disassemble renders every instruction in c as human-readable text,
// labeled name, in the style of the teacher's `disassemble`/`disasm` CLI
// subcommand (cmd/smog/main.go). Coloring is applied by the caller
// (cmd/slate), not here, so the disassembler stays usable from plain
// tests and logs.
func Disassemble(c *Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = disassembleInstruction(&b, c, offset)
	}
	return b.String()
}

func disassembleInstruction(b *strings.Builder, c *Chunk, offset int) int {
	fmt.Fprintf(b, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(b, "   | ")
	} else {
		fmt.Fprintf(b, "%4d ", c.Lines[offset])
	}

	op := Opcode(c.Code[offset])
	switch op {
	case OpConstant, OpDefineGlobal, OpGetGlobal, OpSetGlobal, OpGetProperty, OpSetProperty, OpClass, OpMethod, OpGetStatic, OpSetStatic:
		return constantInstruction(b, op, c, offset)
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall:
		return byteInstruction(b, op, c, offset)
	case OpJump, OpJumpIfFalse, OpJumpIfTrue:
		return jumpInstruction(b, op, c, offset, 1)
	case OpLoop:
		return jumpInstruction(b, op, c, offset, -1)
	case OpInvoke, OpSuperInvoke:
		return invokeInstruction(b, op, c, offset)
	case OpMakeArray, OpMakeObject, OpMakeTemplate:
		return u16Instruction(b, op, c, offset)
	case OpClosure:
		return closureInstruction(b, c, offset)
	default:
		fmt.Fprintf(b, "%s\n", op)
		return offset + 1
	}
}

func constantInstruction(b *strings.Builder, op Opcode, c *Chunk, offset int) int {
	idx := c.ReadU16(offset + 1)
	fmt.Fprintf(b, "%-16s %4d '%s'\n", op, idx, constantRepr(c, idx))
	return offset + 3
}

func byteInstruction(b *strings.Builder, op Opcode, c *Chunk, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(b, "%-16s %4d\n", op, slot)
	return offset + 2
}

func u16Instruction(b *strings.Builder, op Opcode, c *Chunk, offset int) int {
	n := c.ReadU16(offset + 1)
	fmt.Fprintf(b, "%-16s %4d\n", op, n)
	return offset + 3
}

func jumpInstruction(b *strings.Builder, op Opcode, c *Chunk, offset int, sign int) int {
	dist := c.ReadU16(offset + 1)
	target := offset + 3 + sign*int(dist)
	fmt.Fprintf(b, "%-16s %4d -> %d\n", op, offset, target)
	return offset + 3
}

func invokeInstruction(b *strings.Builder, op Opcode, c *Chunk, offset int) int {
	idx := c.ReadU16(offset + 1)
	argc := c.Code[offset+3]
	fmt.Fprintf(b, "%-16s (%d args) %4d '%s'\n", op, argc, idx, constantRepr(c, idx))
	return offset + 4
}

func closureInstruction(b *strings.Builder, c *Chunk, offset int) int {
	idx := c.ReadU16(offset + 1)
	fmt.Fprintf(b, "%-16s %4d '%s'\n", OpClosure, idx, constantRepr(c, idx))
	offset += 3
	if int(idx) < len(c.Constants) {
		if fn, ok := funcProtoOf(c.Constants[idx]); ok {
			for i := 0; i < len(fn.Upvalues); i++ {
				isLocal := c.Code[offset]
				index := c.Code[offset+1]
				kind := "upvalue"
				if isLocal != 0 {
					kind = "local"
				}
				fmt.Fprintf(b, "%04d      |                     %s %d\n", offset, kind, index)
				offset += 2
			}
		}
	}
	return offset
}

func constantRepr(c *Chunk, idx uint16) string {
	if int(idx) >= len(c.Constants) {
		return "?"
	}
	return value.Display(c.Constants[idx])
}

// funcProtoHolder is satisfied by a value.Callable that also exposes the
// compiled FunctionProto it wraps (pkg/vm's closure implementation does);
// kept local to avoid the bytecode package depending on pkg/vm.
type funcProtoHolder interface {
	Proto() *FunctionProto
}

func funcProtoOf(v value.Value) (*FunctionProto, bool) {
	if v.Tag() != value.TagFunction {
		return nil, false
	}
	fo, ok := v.Heap().(*value.FunctionObj)
	if !ok {
		return nil, false
	}
	holder, ok := fo.Fn.(funcProtoHolder)
	if !ok {
		return nil, false
	}
	return holder.Proto(), true
}
