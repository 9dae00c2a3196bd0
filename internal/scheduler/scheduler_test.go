package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/bitproto/internal/builtins"
	"github.com/aledsdavies/bitproto/internal/eval"
	"github.com/aledsdavies/bitproto/internal/node"
)

func newRegistry() *eval.Registry {
	reg := eval.NewRegistry()
	builtins.Register(reg)
	return reg
}

func TestEncodeDecode_MixedWidths(t *testing.T) {
	a := &node.Node{ID: "flags", Kind: node.KindLeaf, ValueKind: node.ValueBit, LengthBits: 4, Literal: "0b1010"}
	b := &node.Node{ID: "count", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 12, Literal: "2730"}
	body := &node.Node{ID: "body", Kind: node.KindStructural, Children: []*node.Node{a, b}}
	p := &node.Protocol{ID: "proto", Body: body}

	reg := newRegistry()
	sched := New(p, reg, nil)

	data, err := sched.Encode()
	require.NoError(t, err)
	require.Len(t, data, 2)

	decoded := &node.Protocol{ID: "proto", Body: &node.Node{
		ID: "body", Kind: node.KindStructural,
		Children: []*node.Node{
			{ID: "flags", Kind: node.KindLeaf, ValueKind: node.ValueBit, LengthBits: 4},
			{ID: "count", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 12},
		},
	}}
	decSched := New(decoded, reg, nil)
	require.NoError(t, decSched.Decode(data))

	require.Equal(t, "2730", decoded.Body.Children[1].State.DecodedValue)
}

func TestEncodeDecode_EnumRoundTrip(t *testing.T) {
	n := &node.Node{
		ID: "kind", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 8, Literal: "PING",
		Enumerants: []node.Enumerant{{Wire: "1", Display: "PING"}, {Wire: "2", Display: "PONG"}},
	}
	p := &node.Protocol{ID: "proto", Body: &node.Node{ID: "body", Kind: node.KindStructural, Children: []*node.Node{n}}}

	reg := newRegistry()
	data, err := New(p, reg, nil).Encode()
	require.NoError(t, err)
	require.Equal(t, []byte{1}, data)

	decoded := &node.Protocol{ID: "proto", Body: &node.Node{ID: "body", Kind: node.KindStructural, Children: []*node.Node{
		{ID: "kind", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 8,
			Enumerants: []node.Enumerant{{Wire: "1", Display: "PING"}, {Wire: "2", Display: "PONG"}}},
	}}}
	require.NoError(t, New(decoded, reg, nil).Decode(data))
	require.Equal(t, "PING", decoded.Body.Children[0].State.DecodedValue)
}

func TestEncode_ForwardExpressionOrdering(t *testing.T) {
	length := &node.Node{ID: "length", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 8, ForwardExpression: "length(#payload)"}
	payload := &node.Node{ID: "payload", Kind: node.KindLeaf, ValueKind: node.ValueString, LengthBits: 32, Literal: "ping"}
	body := &node.Node{ID: "body", Kind: node.KindStructural, Children: []*node.Node{length, payload}}
	p := &node.Protocol{ID: "proto", Body: body}

	reg := newRegistry()
	data, err := New(p, reg, nil).Encode()
	require.NoError(t, err)
	// payload is a dependency of length's forward expression, so the
	// scheduler's topological order (and hence wire order) places its
	// bytes before length's, even though payload is declared second.
	require.Equal(t, "ping", string(data[0:4]))
	require.Equal(t, byte(4), data[4])
}

func TestEncode_ConditionalDisable(t *testing.T) {
	flag := &node.Node{ID: "flag", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 8, Literal: "0"}
	optional := &node.Node{
		ID: "optional", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 8, Literal: "99",
		ConditionalDependencies: []node.ConditionalDependency{
			{RefNodeID: "flag", Expression: "#flag == 1", MatchAction: node.ActionEnable, NoMatchAction: node.ActionDisable, Priority: 1},
		},
	}
	tail := &node.Node{ID: "tail", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 8, Literal: "7"}
	body := &node.Node{ID: "body", Kind: node.KindStructural, Children: []*node.Node{flag, optional, tail}}
	p := &node.Protocol{ID: "proto", Body: body}

	reg := newRegistry()
	data, err := New(p, reg, nil).Encode()
	require.NoError(t, err)
	require.Equal(t, []byte{0, 7}, data)
	require.False(t, optional.State.Enabled)
}

func TestEncode_FillContainerPadding(t *testing.T) {
	field := &node.Node{ID: "field", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 16, Literal: "1"}
	fill := &node.Node{
		ID: "fill", Kind: node.KindPadding,
		Padding: &node.PaddingConfig{Strategy: node.PadFillContainer, TargetLengthBits: 64, Enabled: true},
	}
	body := &node.Node{ID: "body", Kind: node.KindStructural, Children: []*node.Node{field, fill}}
	p := &node.Protocol{ID: "proto", Body: body}

	reg := newRegistry()
	data, err := New(p, reg, nil).Encode()
	require.NoError(t, err)
	require.Len(t, data, 8)
	require.Equal(t, byte(0), data[0])
	require.Equal(t, byte(1), data[1])
	for _, b := range data[2:] {
		require.Equal(t, byte(0), b)
	}
}

func TestEncode_ForwardExpressionOverHexReportsByteLength(t *testing.T) {
	// Reproduces the specification's worked example: a HEX field's published
	// binding must be its emitted byte count, not the character count of its
	// "0x..." formatted literal (which would report 10, not 4).
	data := &node.Node{ID: "data", Kind: node.KindLeaf, ValueKind: node.ValueHex, LengthBits: 32, Literal: "0xDEADBEEF"}
	length := &node.Node{ID: "length", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 16, ForwardExpression: "length(#data)"}
	body := &node.Node{ID: "body", Kind: node.KindStructural, Children: []*node.Node{data, length}}
	p := &node.Protocol{ID: "proto", Body: body}

	reg := newRegistry()
	out, err := New(p, reg, nil).Encode()
	require.NoError(t, err)

	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, out[0:4])
	require.Equal(t, []byte{0x00, 0x04}, out[4:6])
}

func TestEncode_ChecksumBetweenOverHexSpan(t *testing.T) {
	data := &node.Node{ID: "data", Kind: node.KindLeaf, ValueKind: node.ValueHex, LengthBits: 32, Literal: "0xDEADBEEF"}
	checksum := &node.Node{
		ID: "checksum", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 8,
		ForwardExpression: "checksumBetween(#data, #data)",
	}
	body := &node.Node{ID: "body", Kind: node.KindStructural, Children: []*node.Node{data, checksum}}
	p := &node.Protocol{ID: "proto", Body: body}

	reg := newRegistry()
	out, err := New(p, reg, nil).Encode()
	require.NoError(t, err)

	var want byte
	for _, b := range []byte{0xDE, 0xAD, 0xBE, 0xEF} {
		want += b
	}
	require.Equal(t, want, out[4])
}

func TestEncodeDecode_OptionalLeafWithNoValueContributesZeroBits(t *testing.T) {
	before := &node.Node{ID: "before", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 8, Literal: "1"}
	absent := &node.Node{ID: "absent", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 16, Optional: true}
	after := &node.Node{ID: "after", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 8, Literal: "2"}
	body := &node.Node{ID: "body", Kind: node.KindStructural, Children: []*node.Node{before, absent, after}}
	p := &node.Protocol{ID: "proto", Body: body}

	reg := newRegistry()
	data, err := New(p, reg, nil).Encode()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, data)
	require.False(t, absent.State.Enabled)
	require.Equal(t, 0, absent.State.ActualLengthBits)

	decoded := &node.Protocol{ID: "proto", Body: &node.Node{ID: "body", Kind: node.KindStructural, Children: []*node.Node{
		{ID: "before", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 8},
		{ID: "absent", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 16, Optional: true},
		{ID: "after", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 8},
	}}}
	require.NoError(t, New(decoded, reg, nil).Decode(data))
	require.Equal(t, "1", decoded.Body.Children[0].State.DecodedValue)
	require.Equal(t, "2", decoded.Body.Children[2].State.DecodedValue)
}

func TestEncode_CycleDetected(t *testing.T) {
	a := &node.Node{ID: "a", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 8, ForwardExpression: "#b + 1"}
	b := &node.Node{ID: "b", Kind: node.KindLeaf, ValueKind: node.ValueUint, LengthBits: 8, ForwardExpression: "#a + 1"}
	body := &node.Node{ID: "body", Kind: node.KindStructural, Children: []*node.Node{a, b}}
	p := &node.Protocol{ID: "proto", Body: body}

	reg := newRegistry()
	_, err := New(p, reg, nil).Encode()
	require.Error(t, err)
}
