package binreader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedWidthReaders(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	v8, n, ok := Uint8(buf, 0)
	require.True(t, ok)
	require.Equal(t, uint8(0x01), v8)
	require.Equal(t, 1, n)

	v16, n, ok := Uint16(buf, 0)
	require.True(t, ok)
	require.Equal(t, uint16(0x0102), v16)
	require.Equal(t, 2, n)

	v32, n, ok := Uint32(buf, 0)
	require.True(t, ok)
	require.Equal(t, uint32(0x01020304), v32)
	require.Equal(t, 4, n)

	v64, n, ok := Uint64(buf, 0)
	require.True(t, ok)
	require.Equal(t, uint64(0x0102030405060708), v64)
	require.Equal(t, 8, n)
}

func TestFixedWidthShortBuffer(t *testing.T) {
	buf := []byte{0x01, 0x02}

	_, _, ok := Uint32(buf, 0)
	require.False(t, ok)

	_, _, ok = Uint64(buf, 0)
	require.False(t, ok)

	_, _, ok = Uint16(buf, 1)
	require.False(t, ok)
}

func TestVarUint32OneByte(t *testing.T) {
	buf := []byte{0x2A} // 42, top bit clear
	v, n, ok := VarUint32(buf, 0)
	require.True(t, ok)
	require.Equal(t, uint32(42), v)
	require.Equal(t, 1, n)
}

func TestVarUint32TwoByte(t *testing.T) {
	// 0x80 | top 6 bits of value, then low byte. Value = 300 = 0x012C
	// encoding: b0 = 0x80 | (300>>8) = 0x81, b1 = 300 & 0xFF = 0x2C
	buf := []byte{0x81, 0x2C}
	v, n, ok := VarUint32(buf, 0)
	require.True(t, ok)
	require.Equal(t, uint32(300), v)
	require.Equal(t, 2, n)
}

func TestVarUint32ShortBuffer(t *testing.T) {
	buf := []byte{0x81} // claims a second byte that isn't there
	_, next, ok := VarUint32(buf, 0)
	require.False(t, ok)
	require.Equal(t, 0, next)
}

func TestVarUint64RoundTrip(t *testing.T) {
	// high=1 (one byte compressed), low=0x00000064
	buf := []byte{0x01, 0x00, 0x00, 0x00, 0x64}
	v, n, ok := VarUint64(buf, 0)
	require.True(t, ok)
	require.Equal(t, uint64(1)<<32|0x64, v)
	require.Equal(t, 5, n)
}

func TestBytesBoundsCheck(t *testing.T) {
	buf := []byte{1, 2, 3}
	_, _, ok := Bytes(buf, 1, 3)
	require.False(t, ok)

	v, next, ok := Bytes(buf, 1, 2)
	require.True(t, ok)
	require.Equal(t, []byte{2, 3}, v)
	require.Equal(t, 3, next)
}
