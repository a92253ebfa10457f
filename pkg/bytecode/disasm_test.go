package bytecode_test

import (
	"strings"
	"testing"

	"github.com/edadma/slate-sub000/pkg/bytecode"
	"github.com/edadma/slate-sub000/pkg/value"
	"github.com/stretchr/testify/assert"
)

func TestDisassembleShowsConstantAndOpcode(t *testing.T) {
	c := bytecode.New()
	idx := c.AddConstant(value.Int32(7))
	c.Write(bytecode.OpConstant, 1)
	c.WriteU16(idx, 1)
	c.Write(bytecode.OpReturn, 1)

	out := bytecode.Disassemble(c, "test")
	assert.True(t, strings.Contains(out, "== test =="))
	assert.True(t, strings.Contains(out, "CONSTANT"))
	assert.True(t, strings.Contains(out, "RETURN"))
	assert.True(t, strings.Contains(out, "'7'"))
}
