package valuefmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUint_Decimal(t *testing.T) {
	v, err := ParseUint("42")
	require.NoError(t, err)
	require.Equal(t, uint64(42), v)
}

func TestParseUint_Hex(t *testing.T) {
	v, err := ParseUint("0xFF")
	require.NoError(t, err)
	require.Equal(t, uint64(255), v)
}

func TestParseUint_Binary(t *testing.T) {
	v, err := ParseUint("0b1010")
	require.NoError(t, err)
	require.Equal(t, uint64(10), v)
}

func TestParseUint_RejectsNegative(t *testing.T) {
	_, err := ParseUint("-1")
	require.Error(t, err)
}

func TestParseUint_RejectsEmpty(t *testing.T) {
	_, err := ParseUint("")
	require.Error(t, err)
}

func TestParseInt_NegativeDecimal(t *testing.T) {
	v, err := ParseInt("-17")
	require.NoError(t, err)
	require.Equal(t, int64(-17), v)
}

func TestParseInt_HexLiteralHasNoSign(t *testing.T) {
	v, err := ParseInt("0x10")
	require.NoError(t, err)
	require.Equal(t, int64(16), v)
}

func TestCheckUintWidth_Bounds(t *testing.T) {
	require.NoError(t, CheckUintWidth(255, 8))
	require.Error(t, CheckUintWidth(256, 8))
	require.Error(t, CheckUintWidth(0, 0))
}

func TestCheckIntWidth_Bounds(t *testing.T) {
	require.NoError(t, CheckIntWidth(-128, 8))
	require.NoError(t, CheckIntWidth(127, 8))
	require.Error(t, CheckIntWidth(128, 8))
	require.Error(t, CheckIntWidth(-129, 8))
}

func TestTwosComplement_RoundTrip(t *testing.T) {
	raw := ToTwosComplement(-5, 8)
	require.Equal(t, uint64(0xFB), raw)
	v := FromTwosComplement(raw, 8)
	require.Equal(t, int64(-5), v)
}

func TestTwosComplement_Width64(t *testing.T) {
	raw := ToTwosComplement(-1, 64)
	require.Equal(t, ^uint64(0), raw)
}

func TestParseFormatHexBytes_RoundTrip(t *testing.T) {
	b, err := ParseHexBytes("0xAABBCC")
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0xBB, 0xCC}, b)
	require.Equal(t, "0xaabbcc", FormatHexBytes(b))
}

func TestParseHexBytes_OddDigitsLeftPadded(t *testing.T) {
	b, err := ParseHexBytes("0xABC")
	require.NoError(t, err)
	require.Equal(t, []byte{0x0A, 0xBC}, b)
}

func TestParseHexBytes_SuffixForm(t *testing.T) {
	b, err := ParseHexBytes("FFh")
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF}, b)
}

func TestParseHexBytes_RejectsUnrecognizedForm(t *testing.T) {
	_, err := ParseHexBytes("123")
	require.Error(t, err)
}

func TestParseFormatBCD_RoundTrip(t *testing.T) {
	b, err := FormatBCD(1234, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0x12, 0x34}, b)

	v, err := ParseBCD(b)
	require.NoError(t, err)
	require.Equal(t, uint64(1234), v)
}

func TestFormatBCD_PadsAndRejectsOverflow(t *testing.T) {
	b, err := FormatBCD(5, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x05}, b)

	_, err = FormatBCD(123456, 2)
	require.Error(t, err)
}

func TestParseBCD_RejectsInvalidNibble(t *testing.T) {
	_, err := ParseBCD([]byte{0xAB})
	require.Error(t, err)
}
