// Package scheduler implements the encode and decode drivers: walking the
// dependency graph's topological order, invoking conditional resolution,
// padding computation, forward/backward expression evaluation, and the
// per-type codecs, while publishing each node's result to the shared
// variable map the expression evaluator reads from (§4.4).
package scheduler

import (
	"strconv"

	"github.com/aledsdavies/bitproto/internal/bitbuf"
	"github.com/aledsdavies/bitproto/internal/codec"
	"github.com/aledsdavies/bitproto/internal/conditional"
	"github.com/aledsdavies/bitproto/internal/depgraph"
	"github.com/aledsdavies/bitproto/internal/errs"
	"github.com/aledsdavies/bitproto/internal/eval"
	"github.com/aledsdavies/bitproto/internal/node"
	"github.com/aledsdavies/bitproto/internal/padding"
	"github.com/aledsdavies/bitproto/internal/validate"
	"github.com/aledsdavies/bitproto/internal/valuefmt"
)

// Scheduler drives one encode or decode pass over a protocol tree. It is
// not safe for concurrent use; a caller with multiple in-flight operations
// on the same tree builds one Scheduler per call (§5).
type Scheduler struct {
	protocol *node.Protocol
	registry *eval.Registry
	resolver depgraph.CrossProtocolResolver
}

// New builds a Scheduler bound to p. resolver may be nil when cross-protocol
// references are not needed.
func New(p *node.Protocol, reg *eval.Registry, resolver depgraph.CrossProtocolResolver) *Scheduler {
	return &Scheduler{protocol: p, registry: reg, resolver: resolver}
}

// Encode runs the full encode pipeline: validate, build the dependency
// graph, topologically order the nodes, then walk that order writing bits.
func (s *Scheduler) Encode() ([]byte, error) {
	p := s.protocol
	p.Reset()

	if err := (validate.FormatValidator{}).Validate(p); err != nil {
		return nil, err
	}
	byID, err := p.ByID()
	if err != nil {
		return nil, errs.Wrap(errs.FormatError, "", err)
	}
	parentOf := buildParentOf(p)

	g, err := depgraph.Build(p, s.registry, s.resolver)
	if err != nil {
		return nil, err
	}
	order, err := g.TopoOrder()
	if err != nil {
		return nil, err
	}

	buf := bitbuf.New()
	env := eval.NewEnv(s.registry)
	env.RangeReader = &rangeReader{buf: buf, byID: byID}

	for _, id := range order {
		n := byID[id]
		if n.IsStructural() {
			n.State.StartBit = buf.Len()
			n.State.EndBit = buf.Len()
			continue
		}
		if err := s.encodeNode(n, buf, env, parentOf); err != nil {
			return nil, wrapNodeErr(n.ID, err)
		}
	}
	return buf.Finalize(), nil
}

// Decode runs the full decode pipeline against data, populating every
// node's per-call State in place. The topological order is identical to
// Encode's, since it depends only on the tree shape and expressions, not
// on the bytes being read.
func (s *Scheduler) Decode(data []byte) error {
	p := s.protocol
	p.Reset()

	byID, err := p.ByID()
	if err != nil {
		return errs.Wrap(errs.FormatError, "", err)
	}
	parentOf := buildParentOf(p)

	g, err := depgraph.Build(p, s.registry, s.resolver)
	if err != nil {
		return err
	}
	order, err := g.TopoOrder()
	if err != nil {
		return err
	}

	buf := bitbuf.FromBytes(data)
	env := eval.NewEnv(s.registry)
	env.RangeReader = &rangeReader{buf: buf, byID: byID}

	cursor := 0
	for _, id := range order {
		n := byID[id]
		if n.IsStructural() {
			n.State.StartBit = cursor
			n.State.EndBit = cursor
			continue
		}
		if err := s.decodeNode(n, buf, env, parentOf, &cursor); err != nil {
			return wrapNodeErr(n.ID, err)
		}
	}
	return nil
}

// wrapNodeErr passes an already-typed *errs.CodecError through unchanged
// (it already carries the right Kind and node path) and otherwise wraps a
// plain error as a FormatError at path.
func wrapNodeErr(path string, err error) error {
	if ce, ok := err.(*errs.CodecError); ok {
		return ce
	}
	return errs.Wrap(errs.FormatError, path, err)
}

// buildParentOf walks the protocol tree once, recording each node's parent
// so padding strategies can find their enclosing container's other
// children (§4.6) without threading parent pointers through node.Node
// itself.
func buildParentOf(p *node.Protocol) map[string]*node.Node {
	out := make(map[string]*node.Node)
	var walk func(n *node.Node)
	walk = func(n *node.Node) {
		for _, c := range n.Children {
			out[c.ID] = n
			walk(c)
		}
	}
	for _, s := range p.Sections() {
		walk(s)
	}
	return out
}

func siblingIndex(children []*node.Node, n *node.Node) int {
	for i, c := range children {
		if c == n {
			return i
		}
	}
	return -1
}

// encodeNode runs the full per-node encode pipeline (§4.4 steps 1-5).
func (s *Scheduler) encodeNode(n *node.Node, buf *bitbuf.BitBuffer, env *eval.Env, parentOf map[string]*node.Node) error {
	start := buf.Len()

	outcome, err := conditional.Resolve(n, env)
	if err != nil {
		return err
	}
	n.State.Enabled = outcome.Enabled

	if outcome.Skip {
		n.State.StartBit = start
		n.State.EndBit = start
		bindNode(env, n, node.ValueString, "", nil, 0)
		return nil
	}

	value := n.Literal
	if outcome.DefaultValue != "" {
		value = outcome.DefaultValue
	}

	// An Optional leaf with nothing to carry (no literal, no default from a
	// conditional rule, no forward expression to derive one) is absent from
	// the wire per its own field contract (§3): it contributes zero bits
	// rather than failing the codec with an empty-literal error.
	if n.Optional && value == "" && n.ForwardExpression == "" {
		n.State.Enabled = false
		n.State.StartBit = start
		n.State.EndBit = start
		bindNode(env, n, node.ValueString, "", nil, 0)
		return nil
	}
	n.State.Value = value

	if n.Kind == node.KindPadding {
		return s.encodePadding(n, buf, env, parentOf, start)
	}

	if n.ForwardExpression != "" {
		v, err := eval.Evaluate(n.ForwardExpression, env)
		if err != nil {
			return errs.Wrap(errs.ExpressionError, n.ID, err)
		}
		value = v.AsString()
		n.State.ForwardResult = value
	}

	if len(n.Enumerants) > 0 {
		wire, err := (validate.EnumValidator{}).WireFor(n.Enumerants, value)
		if err != nil {
			return errs.Wrap(errs.EnumMismatch, n.ID, err)
		}
		value = wire
	}

	if err := checkRange(n, value); err != nil {
		return err
	}

	width := n.LengthBits
	if n.ValueKind == node.ValueHex {
		w, err := codec.ResolveHexWidthBits(width, value)
		if err != nil {
			return errs.Wrap(errs.FormatError, n.ID, err)
		}
		width = w
	}

	var encErr error
	switch n.ValueKind {
	case node.ValueUint:
		encErr = codec.EncodeUint(width, n.Endian, value, buf)
	case node.ValueInt:
		encErr = codec.EncodeInt(width, n.Endian, value, buf)
	case node.ValueBit:
		encErr = codec.EncodeBit(width, value, buf)
	case node.ValueHex:
		encErr = codec.EncodeHex(width, n.Endian, value, buf)
	case node.ValueFloat:
		encErr = codec.EncodeFloat(width, n.Endian, value, buf)
	case node.ValueString:
		encErr = codec.EncodeString(width, n.Charset, value, buf)
	case node.ValueTime:
		encErr = codec.EncodeTime(width, n.Endian, value, buf)
	default:
		encErr = errs.New(errs.FormatError, "node %q has unknown value kind", n.ID)
	}
	if encErr != nil {
		return errs.Wrap(errs.ValueOutOfRange, n.ID, encErr)
	}

	end := buf.Len()
	n.State.StartBit = start
	n.State.EndBit = end
	n.State.ActualLengthBits = width

	var raw []byte
	if start%8 == 0 && width%8 == 0 {
		raw, _ = buf.ReadByteAligned(start, width/8)
	}
	bindNode(env, n, n.ValueKind, value, raw, width)
	return nil
}

// decodeNode runs the full per-node decode pipeline: conditional
// resolution, length/padding resolution, codec inverse, enum mapping back
// to display text, and optional backward-expression transformation.
func (s *Scheduler) decodeNode(n *node.Node, buf *bitbuf.BitBuffer, env *eval.Env, parentOf map[string]*node.Node, cursor *int) error {
	start := *cursor

	outcome, err := conditional.Resolve(n, env)
	if err != nil {
		return err
	}
	n.State.Enabled = outcome.Enabled

	if outcome.Skip {
		n.State.StartBit = start
		n.State.EndBit = start
		bindNode(env, n, node.ValueString, "", nil, 0)
		return nil
	}

	if n.Kind == node.KindPadding {
		return s.decodePadding(n, buf, env, parentOf, cursor)
	}

	// Mirrors the encode-side rule: an Optional leaf with no literal and no
	// forward expression never occupies wire bits, so decode must not try
	// to read any either.
	if n.Optional && n.Literal == "" && n.ForwardExpression == "" {
		n.State.Enabled = false
		n.State.StartBit = start
		n.State.EndBit = start
		bindNode(env, n, node.ValueString, "", nil, 0)
		return nil
	}

	width := n.LengthBits
	if n.ValueKind == node.ValueHex && width == 0 {
		return errs.New(errs.FormatError, "node %q: HEX fields with length 0 are not decodable without additional length information", n.ID)
	}

	var decoded string
	var decErr error
	switch n.ValueKind {
	case node.ValueUint:
		decoded, decErr = codec.DecodeUint(width, n.Endian, buf, start)
	case node.ValueInt:
		decoded, decErr = codec.DecodeInt(width, n.Endian, buf, start)
	case node.ValueBit:
		decoded, decErr = codec.DecodeBit(width, buf, start)
	case node.ValueHex:
		decoded, decErr = codec.DecodeHex(width, n.Endian, buf, start)
	case node.ValueFloat:
		decoded, decErr = codec.DecodeFloat(width, n.Endian, buf, start)
	case node.ValueString:
		decoded, decErr = codec.DecodeString(width, n.Charset, n.TrimTrailingZeros, buf, start)
	case node.ValueTime:
		decoded, decErr = codec.DecodeTime(width, n.Endian, buf, start)
	default:
		decErr = errs.New(errs.FormatError, "node %q has unknown value kind", n.ID)
	}
	if decErr != nil {
		return errs.Wrap(errs.DecodeUnderrun, n.ID, decErr)
	}

	display := decoded
	if len(n.Enumerants) > 0 {
		d, err := (validate.EnumValidator{}).DisplayFor(n.Enumerants, decoded)
		if err != nil {
			return errs.Wrap(errs.EnumMismatch, n.ID, err)
		}
		display = d
	}
	n.State.DecodedValue = display

	if err := checkRange(n, display); err != nil {
		return err
	}

	*cursor = start + width
	n.State.StartBit = start
	n.State.EndBit = *cursor
	n.State.ActualLengthBits = width

	var raw []byte
	if start%8 == 0 && width%8 == 0 {
		raw, _ = buf.ReadByteAligned(start, width/8)
	}
	bindNode(env, n, n.ValueKind, display, raw, width)

	if n.BackwardExpression != "" {
		env.Bind(n.ID+"_raw", eval.StringOf(display))
		v, err := eval.Evaluate(n.BackwardExpression, env)
		if err != nil {
			return errs.Wrap(errs.ExpressionError, n.ID, err)
		}
		display = v.AsString()
		n.State.TransformedValue = display
		bindNode(env, n, n.ValueKind, display, raw, width)
	}
	return nil
}

func (s *Scheduler) decodePadding(n *node.Node, buf *bitbuf.BitBuffer, env *eval.Env, parentOf map[string]*node.Node, cursor *int) error {
	start := *cursor
	ctx := paddingContext(n, parentOf, start, env)
	length, err := padding.ResolveLength(n, ctx)
	if err != nil {
		return errs.Wrap(errs.FormatError, n.ID, err)
	}
	var raw []byte
	if length > 0 {
		raw, err = buf.ReadByteAligned(start, length/8)
		if err != nil {
			return errs.Wrap(errs.DecodeUnderrun, n.ID, err)
		}
	}
	*cursor = start + length
	n.State.StartBit = start
	n.State.EndBit = *cursor
	n.State.ActualLengthBits = length
	bindNode(env, n, node.ValueHex, valuefmt.FormatHexBytes(raw), raw, length)
	return nil
}

func (s *Scheduler) encodePadding(n *node.Node, buf *bitbuf.BitBuffer, env *eval.Env, parentOf map[string]*node.Node, start int) error {
	ctx := paddingContext(n, parentOf, start, env)
	length, err := padding.ResolveLength(n, ctx)
	if err != nil {
		return errs.Wrap(errs.FormatError, n.ID, err)
	}
	fill, err := padding.FillBytes(n.Padding, length)
	if err != nil {
		return errs.Wrap(errs.UnalignedSpan, n.ID, err)
	}
	if err := buf.AppendByteAligned(fill); err != nil {
		return errs.Wrap(errs.UnalignedSpan, n.ID, err)
	}

	n.State.StartBit = start
	n.State.EndBit = buf.Len()
	n.State.ActualLengthBits = length
	bindNode(env, n, node.ValueHex, valuefmt.FormatHexBytes(fill), fill, length)
	return nil
}

// paddingContext gathers the already-measured sibling and container context
// a padding node's length formula needs (§4.6). Preceding siblings and
// container co-children must already have been encoded by the time a
// padding node is reached, which holds for every declaration order the
// depgraph builder permits because nothing a padding node needs length-wise
// ever depends on the padding node itself.
func paddingContext(n *node.Node, parentOf map[string]*node.Node, cursor int, env *eval.Env) padding.ResolveContext {
	ctx := padding.ResolveContext{CursorBits: cursor, Env: env}
	parent, ok := parentOf[n.ID]
	if !ok {
		return ctx
	}
	idx := siblingIndex(parent.Children, n)
	for i, c := range parent.Children {
		length := c.State.EndBit - c.State.StartBit
		if i < idx {
			ctx.PrecedingSiblingsBits += length
		}
		if c != n {
			ctx.ContainerOtherChildrenBits += length
		}
	}
	return ctx
}

func checkRange(n *node.Node, value string) error {
	if n.RangeSpec == nil {
		return nil
	}
	rv := validate.RangeValidator{}
	if n.ValueKind == node.ValueString {
		if err := rv.CheckStringLength(n.RangeSpec, value); err != nil {
			return errs.Wrap(errs.ValueOutOfRange, n.ID, err)
		}
		return nil
	}
	iv, err := valuefmt.ParseInt(value)
	if err != nil {
		return nil // non-numeric literal (e.g. an enum's wire form); nothing to range-check
	}
	if err := rv.CheckNumeric(n.RangeSpec, iv); err != nil {
		return errs.Wrap(errs.ValueOutOfRange, n.ID, err)
	}
	return nil
}

// bindNode publishes a node's result into the variable map under the three
// keys the expression contract promises: "<id>" (the user-facing value;
// byte-bearing kinds publish the actual emitted bytes so length() and the
// hashing/checksum builtins see true wire size rather than a formatted
// literal's character count, numeric kinds coerce to a numeric Value for
// direct arithmetic use), "<id>_encoded" (hex string of the emitted bytes,
// empty when the node's span wasn't byte-aligned), and "<id>_length".
func bindNode(env *eval.Env, n *node.Node, vk node.ValueKind, value string, raw []byte, lengthBits int) {
	env.Bind(n.ID, valueFor(vk, value, raw))
	env.Bind(n.ID+"_encoded", eval.StringOf(valuefmt.FormatHexBytes(raw)))
	env.Bind(n.ID+"_length", eval.IntOf(int64(lengthBits)))
}

// valueFor resolves the published "<id>" binding. HEX fields bind to the
// raw emitted bytes (when available) so length() and the byte-oriented
// builtins report true wire size rather than the formatted "0x..." literal's
// character count; every other kind keeps publishing its user-facing value,
// coerced to a numeric Value where the kind is numeric.
func valueFor(vk node.ValueKind, s string, raw []byte) eval.Value {
	switch vk {
	case node.ValueHex:
		if raw != nil {
			return eval.BytesOf(raw)
		}
	case node.ValueUint, node.ValueBit, node.ValueTime:
		if v, err := valuefmt.ParseUint(s); err == nil {
			return eval.IntOf(int64(v))
		}
	case node.ValueInt:
		if v, err := valuefmt.ParseInt(s); err == nil {
			return eval.IntOf(v)
		}
	case node.ValueFloat:
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return eval.FloatOf(v)
		}
	}
	return eval.StringOf(s)
}

// rangeReader implements eval.RangeReader by reading the already-written
// span directly out of the bit buffer. This is equivalent to concatenating
// every interval node's published "<id>_encoded" value (§4.7) but avoids
// re-hex-decoding each one; the span's overall byte alignment is still
// enforced exactly as the specification requires.
type rangeReader struct {
	buf  *bitbuf.BitBuffer
	byID map[string]*node.Node
}

func (r *rangeReader) ReadRange(startID, endID string) ([]byte, error) {
	sn, ok := r.byID[startID]
	if !ok {
		return nil, errs.New(errs.MissingNode, "range start %q not found", startID)
	}
	en, ok := r.byID[endID]
	if !ok {
		return nil, errs.New(errs.MissingNode, "range end %q not found", endID)
	}
	lo, hi := sn.State.StartBit, en.State.EndBit
	if lo > hi {
		lo, hi = en.State.StartBit, sn.State.EndBit
	}
	if lo%8 != 0 || hi%8 != 0 {
		return nil, errs.New(errs.UnalignedSpan, "range [%s..%s] is not byte-aligned", startID, endID)
	}
	return r.buf.ReadByteAligned(lo, (hi-lo)/8)
}
