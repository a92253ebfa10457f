package bytecode_test

import (
	"bytes"
	"testing"

	"github.com/edadma/slate-sub000/pkg/bytecode"
	"github.com/edadma/slate-sub000/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := bytecode.New()
	idx := c.AddConstant(value.Int32(42))
	c.Write(bytecode.OpConstant, 1)
	c.WriteU16(idx, 1)
	c.Write(bytecode.OpReturn, 1)

	var buf bytes.Buffer
	require.NoError(t, bytecode.Encode(c, &buf))

	decoded, err := bytecode.Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, c.Code, decoded.Code)
	assert.Equal(t, c.Lines, decoded.Lines)
	require.Len(t, decoded.Constants, 1)
	assert.Equal(t, "42", value.Display(decoded.Constants[0]))
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := bytecode.Decode(bytes.NewReader([]byte{0, 0, 0, 0, 1, 0, 0, 0}))
	assert.Error(t, err)
}

func TestEncodeDecodeMixedConstants(t *testing.T) {
	c := bytecode.New()
	c.AddConstant(value.Null)
	c.AddConstant(value.Bool(true))
	c.AddConstant(value.Float64(3.5))
	c.AddConstant(value.NewString("hi"))

	var buf bytes.Buffer
	require.NoError(t, bytecode.Encode(c, &buf))

	decoded, err := bytecode.Decode(&buf)
	require.NoError(t, err)
	require.Len(t, decoded.Constants, 4)
	assert.Equal(t, "null", value.Display(decoded.Constants[0]))
	assert.Equal(t, "true", value.Display(decoded.Constants[1]))
	assert.Equal(t, "3.5", value.Display(decoded.Constants[2]))
	assert.Equal(t, "hi", value.Display(decoded.Constants[3]))
}
