package bitproto

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/aledsdavies/bitproto/internal/node"
)

// DecodedTree is a diagnostics-bearing snapshot of a protocol's State after
// a Decode call: the value every node resolved to, whether it was enabled,
// and its [start_bit, end_bit) wire position (§4.5), rendered as plain data
// so it can be exported as JSON or CBOR without reaching back into
// internal/node.
type DecodedTree struct {
	Header *DecodedNode `json:"header,omitempty" cbor:"header,omitempty"`
	Body   *DecodedNode `json:"body,omitempty" cbor:"body,omitempty"`
	Tail   *DecodedNode `json:"tail,omitempty" cbor:"tail,omitempty"`
}

// DecodedNode is one node's diagnostic snapshot.
type DecodedNode struct {
	ID        string `json:"id" cbor:"id"`
	Name      string `json:"name,omitempty" cbor:"name,omitempty"`
	Kind      string `json:"kind" cbor:"kind"`
	ValueKind string `json:"value_kind,omitempty" cbor:"value_kind,omitempty"`

	Value string `json:"value,omitempty" cbor:"value,omitempty"`

	Enabled       bool   `json:"enabled" cbor:"enabled"`
	EnabledReason string `json:"enabled_reason,omitempty" cbor:"enabled_reason,omitempty"`

	StartBit int `json:"start_bit" cbor:"start_bit"`
	EndBit   int `json:"end_bit" cbor:"end_bit"`

	Children []*DecodedNode `json:"children,omitempty" cbor:"children,omitempty"`
}

// BuildDecodedTree renders p's current State (populated by a prior Decode,
// or by Encode for diagnostics on what was written) into a DecodedTree.
func BuildDecodedTree(p *node.Protocol) *DecodedTree {
	return &DecodedTree{
		Header: buildDecodedNode(p.Header),
		Body:   buildDecodedNode(p.Body),
		Tail:   buildDecodedNode(p.Tail),
	}
}

func buildDecodedNode(n *node.Node) *DecodedNode {
	if n == nil {
		return nil
	}
	value := n.State.TransformedValue
	if value == "" {
		value = n.State.DecodedValue
	}
	if value == "" {
		value = n.State.Value
	}
	out := &DecodedNode{
		ID:            n.ID,
		Name:          n.Name,
		Kind:          n.Kind.String(),
		Enabled:       n.State.Enabled,
		EnabledReason: n.State.EnabledReason,
		Value:         value,
		StartBit:      n.State.StartBit,
		EndBit:        n.State.EndBit,
	}
	if !n.IsStructural() {
		out.ValueKind = n.ValueKind.String()
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, buildDecodedNode(c))
	}
	return out
}

// MarshalJSON is the default struct-tag-driven encoding; defined explicitly
// so the method exists on *DecodedTree even though it currently just
// delegates, keeping the exported contract stable if the internal shape
// changes independently of its wire tags.
func (t *DecodedTree) MarshalJSON() ([]byte, error) {
	type alias DecodedTree
	data, err := json.Marshal((*alias)(t))
	if err != nil {
		return nil, fmt.Errorf("bitproto: marshal decoded tree to json: %w", err)
	}
	return data, nil
}

// MarshalCBOR produces a deterministic (canonical) CBOR encoding of the
// decoded tree, for compact interchange alongside MarshalJSON.
func (t *DecodedTree) MarshalCBOR() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("bitproto: cbor encoder: %w", err)
	}
	type alias DecodedTree
	data, err := encMode.Marshal((*alias)(t))
	if err != nil {
		return nil, fmt.Errorf("bitproto: marshal decoded tree to cbor: %w", err)
	}
	return data, nil
}
