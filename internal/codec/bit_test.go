package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/bitproto/internal/bitbuf"
)

func TestEncodeDecodeBit_SingleBitRendersBareDigit(t *testing.T) {
	buf := bitbuf.New()
	require.NoError(t, EncodeBit(1, "1", buf))
	got, err := DecodeBit(1, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "1", got)
}

func TestEncodeDecodeBit_MultiBitRendersBinaryLiteral(t *testing.T) {
	buf := bitbuf.New()
	require.NoError(t, EncodeBit(4, "0b0101", buf))
	got, err := DecodeBit(4, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "0b0101", got)
}

func TestEncodeBit_RejectsOutOfWidth(t *testing.T) {
	buf := bitbuf.New()
	err := EncodeBit(2, "4", buf)
	require.Error(t, err)
}
