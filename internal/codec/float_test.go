package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/bitproto/internal/bitbuf"
	"github.com/aledsdavies/bitproto/internal/node"
)

func TestEncodeDecodeFloat32_RoundTrip(t *testing.T) {
	buf := bitbuf.New()
	require.NoError(t, EncodeFloat(32, node.BigEndian, "3.5", buf))
	got, err := DecodeFloat(32, node.BigEndian, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "3.5", got)
}

func TestEncodeDecodeFloat64_RoundTrip(t *testing.T) {
	buf := bitbuf.New()
	require.NoError(t, EncodeFloat(64, node.LittleEndian, "-12.25", buf))
	got, err := DecodeFloat(64, node.LittleEndian, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "-12.25", got)
}

func TestEncodeFloat_RejectsInvalidWidth(t *testing.T) {
	buf := bitbuf.New()
	err := EncodeFloat(16, node.BigEndian, "1.0", buf)
	require.Error(t, err)
}

func TestEncodeFloat_RejectsMalformedLiteral(t *testing.T) {
	buf := bitbuf.New()
	err := EncodeFloat(32, node.BigEndian, "nope", buf)
	require.Error(t, err)
}
