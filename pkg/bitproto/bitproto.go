// Package bitproto is the external-facing facade over the codec engine's
// internal packages: build a Protocol, Encode it to bytes, Decode bytes
// back into a diagnostics-bearing DecodedTree. Callers never touch
// internal/* directly.
package bitproto

import (
	"github.com/aledsdavies/bitproto/internal/depgraph"
	"github.com/aledsdavies/bitproto/internal/errs"
	"github.com/aledsdavies/bitproto/internal/eval"
	"github.com/aledsdavies/bitproto/internal/groupexpand"
	"github.com/aledsdavies/bitproto/internal/node"
	"github.com/aledsdavies/bitproto/internal/scheduler"
)

// Re-export the error taxonomy so callers never need to import internal/errs.
type (
	ErrorKind  = errs.Kind
	CodecError = errs.CodecError
)

const (
	FormatError      = errs.FormatError
	ValueOutOfRange  = errs.ValueOutOfRange
	EnumMismatch     = errs.EnumMismatch
	ExpressionError  = errs.ExpressionError
	CyclicDependency = errs.CyclicDependency
	MissingNode      = errs.MissingNode
	UnalignedSpan    = errs.UnalignedSpan
	DecodeUnderrun   = errs.DecodeUnderrun
	IoError          = errs.IoError
)

// MatchKind reports whether err is a *CodecError of the given kind.
func MatchKind(err error, kind ErrorKind) bool { return errs.MatchKind(err, kind) }

// Protocol is a loaded protocol definition ready to encode or decode.
// The zero value is not usable; construct one via protojson.Load or by
// populating Tree directly and calling New.
type Protocol struct {
	Tree     *node.Protocol
	Registry *eval.Registry
	Resolver depgraph.CrossProtocolResolver
}

// New wraps a node tree and function registry into a Protocol, running the
// node-group expansion pass once up front so every later Encode/Decode call
// sees an already-flattened tree.
func New(tree *node.Protocol, reg *eval.Registry, resolver depgraph.CrossProtocolResolver) (*Protocol, error) {
	expanded, err := groupexpand.Expand(tree)
	if err != nil {
		return nil, err
	}
	return &Protocol{Tree: expanded, Registry: reg, Resolver: resolver}, nil
}

// Encode resets p's Tree state and serializes the tree to a byte slice,
// taking each node's value from its literal, a conditional default, or its
// forward-expression result.
func (p *Protocol) Encode() ([]byte, error) {
	return scheduler.New(p.Tree, p.Registry, p.Resolver).Encode()
}

// Decode parses data into p's Tree, populating every node's State, and
// returns a diagnostics-bearing snapshot of the result.
func (p *Protocol) Decode(data []byte) (*DecodedTree, error) {
	if err := scheduler.New(p.Tree, p.Registry, p.Resolver).Decode(data); err != nil {
		return nil, err
	}
	return BuildDecodedTree(p.Tree), nil
}
