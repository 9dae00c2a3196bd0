package builtins

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/bitproto/internal/eval"
)

func TestRegister_InstallsAllFunctions(t *testing.T) {
	reg := eval.NewRegistry()
	Register(reg)
	for _, name := range []string{"length", "lengthBetween", "checksumBetween", "crc16Between", "crc32Between", "blake2bBetween"} {
		_, ok := reg.Lookup(name)
		require.True(t, ok, "expected %s to be registered", name)
	}
}

func TestLength_String(t *testing.T) {
	v, err := lengthFn([]eval.Value{eval.StringOf("hello")})
	require.NoError(t, err)
	require.Equal(t, int64(5), v.Int)
}

func TestLength_Bytes(t *testing.T) {
	v, err := lengthFn([]eval.Value{eval.BytesOf([]byte{1, 2, 3})})
	require.NoError(t, err)
	require.Equal(t, int64(3), v.Int)
}

func TestLength_RejectsUnsupportedKind(t *testing.T) {
	_, err := lengthFn([]eval.Value{eval.IntOf(5)})
	require.Error(t, err)
}

func TestChecksumBetween_AdditiveModulo256(t *testing.T) {
	v, err := checksumBetweenFn([]byte{0xFF, 0x02})
	require.NoError(t, err)
	require.Equal(t, int64(0x01), v.Int)
}

func TestCRC16Between_KnownVector(t *testing.T) {
	v, err := crc16BetweenFn([]byte("123456789"))
	require.NoError(t, err)
	require.Equal(t, int64(0x29B1), v.Int)
}

func TestCRC32Between_KnownVector(t *testing.T) {
	v, err := crc32BetweenFn([]byte("123456789"))
	require.NoError(t, err)
	require.Equal(t, int64(0xCBF43926), v.Int)
}

func TestBlake2bBetween_ProducesThirtyTwoByteDigest(t *testing.T) {
	v, err := blake2bBetweenFn([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, eval.KBytes, v.Kind)
	require.Len(t, v.Bytes, 32)
}

func TestLengthBetween_CountsSpanBytes(t *testing.T) {
	v, err := lengthBetweenFn([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, int64(4), v.Int)
}

func TestRegisteredFunctions_CallableThroughEvaluator(t *testing.T) {
	reg := eval.NewRegistry()
	Register(reg)
	env := eval.NewEnv(reg)
	v, err := eval.Evaluate(`length("abcd")`, env)
	require.NoError(t, err)
	require.Equal(t, int64(4), v.Int)
}
