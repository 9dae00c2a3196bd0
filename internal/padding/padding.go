// Package padding implements the four padding-length strategies and fill
// generation described in §4.6. Padding length must be computed at encode
// time against preceding nodes' *actual* encoded lengths, never their
// declared lengths, because conditionals and unsized HEX fields can change
// those — this package takes already-measured bit counts as input rather
// than re-deriving them, leaving that measurement to the scheduler.
package padding

import (
	"fmt"

	"github.com/aledsdavies/bitproto/internal/eval"
	"github.com/aledsdavies/bitproto/internal/node"
)

// ResolveContext carries the already-measured context a padding node needs;
// the scheduler fills this in from the bit buffer and sibling state, since
// only it knows each node's actual (not declared) encoded length.
type ResolveContext struct {
	CursorBits                 int // bit buffer write cursor right now
	PrecedingSiblingsBits      int // sum of preceding enabled siblings' actual lengths (FIXED_LENGTH)
	ContainerOtherChildrenBits int // sum of all other enabled children of the container (FILL_CONTAINER)
	Env                        *eval.Env
}

// ResolveLength computes the padding node's length in bits, enforcing
// min/max clamps. A negative computed length is a fatal error (§4.6).
func ResolveLength(n *node.Node, ctx ResolveContext) (int, error) {
	if n.Padding == nil {
		return 0, fmt.Errorf("padding: node %q has no padding_config", n.ID)
	}
	cfg := n.Padding

	if cfg.EnableCondition != "" {
		enabled, err := evalEnableCondition(cfg.EnableCondition, ctx.Env)
		if err != nil {
			return 0, fmt.Errorf("padding: node %q enable_condition: %w", n.ID, err)
		}
		if !enabled {
			return 0, nil
		}
	} else if !cfg.Enabled {
		return 0, nil
	}

	var length int
	var err error
	switch cfg.Strategy {
	case node.PadFixedLength:
		length = cfg.TargetLengthBits - ctx.PrecedingSiblingsBits
	case node.PadAlignment:
		if cfg.TargetLengthBits <= 0 {
			return 0, fmt.Errorf("padding: node %q ALIGNMENT requires a positive boundary", n.ID)
		}
		rem := ctx.CursorBits % cfg.TargetLengthBits
		if rem == 0 {
			length = 0
		} else {
			length = cfg.TargetLengthBits - rem
		}
	case node.PadDynamic:
		length, err = evalDynamicLength(cfg.LengthExpression, ctx.Env)
		if err != nil {
			return 0, fmt.Errorf("padding: node %q: %w", n.ID, err)
		}
	case node.PadFillContainer:
		length = cfg.TargetLengthBits - ctx.ContainerOtherChildrenBits
	default:
		return 0, fmt.Errorf("padding: node %q has unknown strategy %q", n.ID, cfg.Strategy)
	}

	if length < 0 {
		return 0, fmt.Errorf("padding: node %q computed negative length %d bits", n.ID, length)
	}

	if cfg.MinPaddingBits > 0 && length < cfg.MinPaddingBits {
		length = cfg.MinPaddingBits
	}
	if cfg.MaxPaddingBits > 0 && length > cfg.MaxPaddingBits {
		length = cfg.MaxPaddingBits
	}
	return length, nil
}

func evalEnableCondition(expr string, env *eval.Env) (bool, error) {
	v, err := eval.Evaluate(expr, env)
	if err != nil {
		return false, err
	}
	return v.AsBool()
}

func evalDynamicLength(expr string, env *eval.Env) (int, error) {
	v, err := eval.Evaluate(expr, env)
	if err != nil {
		return 0, err
	}
	i, err := v.AsInt()
	if err != nil {
		return 0, err
	}
	return int(i), nil
}

// FillBytes renders lengthBits worth of padding content from cfg's pattern:
// the pattern repeated to fill the span if RepeatPattern is set, otherwise
// the pattern written once followed by zero bytes. lengthBits must be a
// multiple of 8 — the scheduler is responsible for ensuring padding nodes
// land on byte boundaries, which every strategy above naturally produces
// when containers and fields are themselves byte-sized.
func FillBytes(cfg *node.PaddingConfig, lengthBits int) ([]byte, error) {
	if lengthBits%8 != 0 {
		return nil, fmt.Errorf("padding: length %d bits is not byte-aligned", lengthBits)
	}
	n := lengthBits / 8
	out := make([]byte, n)
	if len(cfg.PaddingValue) == 0 {
		return out, nil
	}
	if cfg.RepeatPattern {
		for i := 0; i < n; i++ {
			out[i] = cfg.PaddingValue[i%len(cfg.PaddingValue)]
		}
		return out, nil
	}
	copy(out, cfg.PaddingValue)
	return out, nil
}
