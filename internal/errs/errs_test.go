package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_FormatsMessageWithoutNodePath(t *testing.T) {
	err := New(FormatError, "width %d is invalid", 12)
	require.Equal(t, "FormatError: width 12 is invalid", err.Error())
	require.Empty(t, err.NodePath)
}

func TestAt_IncludesNodePath(t *testing.T) {
	err := At("body.length", ValueOutOfRange, "value %d out of range", 999)
	require.Contains(t, err.Error(), "(at body.length)")
}

func TestWrap_PreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(IoError, "tail", cause)
	require.ErrorIs(t, err, cause)
}

func TestCyclic_CarriesCyclePath(t *testing.T) {
	err := Cyclic([]string{"a", "b", "a"})
	require.Equal(t, CyclicDependency, err.Kind)
	require.Equal(t, []string{"a", "b", "a"}, err.Cycle)
}

func TestMatchKind(t *testing.T) {
	err := New(MissingNode, "no such node")
	require.True(t, MatchKind(err, MissingNode))
	require.False(t, MatchKind(err, IoError))
	require.False(t, MatchKind(errors.New("plain"), MissingNode))
}
