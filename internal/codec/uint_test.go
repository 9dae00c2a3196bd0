package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/bitproto/internal/bitbuf"
	"github.com/aledsdavies/bitproto/internal/node"
)

func TestEncodeDecodeUint_RoundTrip(t *testing.T) {
	buf := bitbuf.New()
	require.NoError(t, EncodeUint(16, node.BigEndian, "0x1234", buf))
	got, err := DecodeUint(16, node.BigEndian, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "4660", got)
}

func TestEncodeUint_AcceptsBinaryLiteral(t *testing.T) {
	buf := bitbuf.New()
	require.NoError(t, EncodeUint(4, node.BigEndian, "0b1010", buf))
	got, err := DecodeUint(4, node.BigEndian, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "10", got)
}

func TestEncodeUint_RejectsOutOfWidth(t *testing.T) {
	buf := bitbuf.New()
	err := EncodeUint(4, node.BigEndian, "16", buf)
	require.Error(t, err)
}

func TestEncodeUint_RejectsMalformedLiteral(t *testing.T) {
	buf := bitbuf.New()
	err := EncodeUint(8, node.BigEndian, "not-a-number", buf)
	require.Error(t, err)
}

func TestEncodeDecodeInt_RoundTripNegative(t *testing.T) {
	buf := bitbuf.New()
	require.NoError(t, EncodeInt(8, node.BigEndian, "-5", buf))
	got, err := DecodeInt(8, node.BigEndian, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "-5", got)
}

func TestEncodeDecodeInt_RoundTripPositive(t *testing.T) {
	buf := bitbuf.New()
	require.NoError(t, EncodeInt(8, node.BigEndian, "120", buf))
	got, err := DecodeInt(8, node.BigEndian, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "120", got)
}

func TestEncodeInt_RejectsOutOfWidth(t *testing.T) {
	buf := bitbuf.New()
	err := EncodeInt(8, node.BigEndian, "200", buf)
	require.Error(t, err)
}

func TestEncodeDecodeUint_LittleEndianMultiByte(t *testing.T) {
	buf := bitbuf.New()
	require.NoError(t, EncodeUint(32, node.LittleEndian, "1", buf))
	require.Equal(t, []byte{1, 0, 0, 0}, buf.Finalize())
	got, err := DecodeUint(32, node.LittleEndian, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "1", got)
}
