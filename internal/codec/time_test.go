package codec

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/bitproto/internal/bitbuf"
	"github.com/aledsdavies/bitproto/internal/node"
)

func TestEncodeDecodeTime_NumericLiteralDelegatesToUint(t *testing.T) {
	buf := bitbuf.New()
	require.NoError(t, EncodeTime(32, node.BigEndian, "1700000000", buf))
	got, err := DecodeTime(32, node.BigEndian, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "1700000000", got)
}

func TestEncodeTime_DatetimeLiteralResolvesToUnixSeconds(t *testing.T) {
	buf := bitbuf.New()
	require.NoError(t, EncodeTime(32, node.BigEndian, "2023-11-14 22:13:20", buf))

	want := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC).Unix()
	got, err := DecodeTime(32, node.BigEndian, buf, 0)
	require.NoError(t, err)
	require.Equal(t, strconv.FormatInt(want, 10), got)
}

func TestEncodeTime_HexLiteral(t *testing.T) {
	buf := bitbuf.New()
	require.NoError(t, EncodeTime(16, node.BigEndian, "0x0010", buf))
	got, err := DecodeTime(16, node.BigEndian, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "16", got)
}

func TestEncodeTime_RejectsUnrecognizedLiteral(t *testing.T) {
	buf := bitbuf.New()
	err := EncodeTime(32, node.BigEndian, "not a time", buf)
	require.Error(t, err)
}
