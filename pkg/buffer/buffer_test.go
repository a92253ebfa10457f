package buffer_test

import (
	"testing"

	"github.com/edadma/slate-sub000/pkg/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderReaderRoundTrip(t *testing.T) {
	b := buffer.NewBuilder()
	b.AppendU32LE(0xDEADBEEF)
	b.AppendU8(0x7F)
	buf := b.Finish()
	defer buf.Release()

	require.Equal(t, 5, buf.Size())

	r := buffer.NewReader(buf)
	defer r.Release()

	v, err := r.ReadU32LE()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v)

	u8, err := r.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x7F), u8)

	assert.Equal(t, 0, r.Remaining())
}

func TestReaderUnderflow(t *testing.T) {
	buf := buffer.New([]byte{1, 2})
	defer buf.Release()

	r := buffer.NewReader(buf)
	defer r.Release()

	_, err := r.ReadU32LE()
	assert.Error(t, err)
}

func TestSliceOutOfRange(t *testing.T) {
	buf := buffer.New([]byte{1, 2, 3})
	defer buf.Release()

	_, err := buf.Slice(2, 5)
	assert.Error(t, err)
}

func TestEqualAndCompare(t *testing.T) {
	a := buffer.New([]byte("abc"))
	b := buffer.New([]byte("abc"))
	c := buffer.New([]byte("abd"))
	defer a.Release()
	defer b.Release()
	defer c.Release()

	assert.True(t, buffer.Equal(a, b))
	assert.Equal(t, 0, buffer.Compare(a, b))
	assert.Equal(t, -1, buffer.Compare(a, c))
}

func TestHexRoundTrip(t *testing.T) {
	buf := buffer.New([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	defer buf.Release()

	hex := buf.HexEncode()
	assert.Equal(t, "deadbeef", hex)

	decoded, ok := buffer.HexDecode(hex)
	require.True(t, ok)
	defer decoded.Release()
	assert.True(t, buffer.Equal(buf, decoded))
}

func TestRefCounting(t *testing.T) {
	buf := buffer.New([]byte("x"))
	assert.EqualValues(t, 1, buf.RefCount())
	buf.Retain()
	assert.EqualValues(t, 2, buf.RefCount())
	buf.Release()
	assert.EqualValues(t, 1, buf.RefCount())
}
