package validate

import (
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/aledsdavies/bitproto/internal/errs"
	"github.com/aledsdavies/bitproto/internal/node"
)

// FormatValidator runs the pre-flight checks described in §6/§7 of the
// specification before a protocol tree is handed to the scheduler: unique
// ids, legal lengths per kind, well-formed range specs, and (cheaply)
// non-empty forward expressions. It never touches per-encode State.
type FormatValidator struct{}

// Validate runs every pre-flight check and returns the first failure,
// wrapped as an errs.CodecError of kind FormatError.
func (FormatValidator) Validate(p *node.Protocol) error {
	if p.Header == nil && p.Body == nil && p.Tail == nil {
		return errs.New(errs.FormatError, "protocol %q has no header, body, or tail", p.ID)
	}

	if p.Version != "" {
		v := p.Version
		if v[0] != 'v' {
			v = "v" + v
		}
		if !semver.IsValid(v) {
			return errs.New(errs.FormatError, "protocol %q has invalid semver version %q", p.ID, p.Version)
		}
	}

	if _, err := p.ByID(); err != nil {
		return errs.Wrap(errs.FormatError, "", err)
	}

	for _, n := range p.AllNodes() {
		if err := validateNode(n); err != nil {
			return errs.At(n.ID, errs.FormatError, "%s", err)
		}
	}
	return nil
}

func validateNode(n *node.Node) error {
	switch n.Kind {
	case node.KindStructural, node.KindNodeGroup:
		// structural / node-group nodes carry no wire bits of their own
		return nil
	case node.KindPadding:
		return validatePaddingNode(n)
	default:
		return validateLeafNode(n)
	}
}

func validateLeafNode(n *node.Node) error {
	if n.ID == "" {
		return fmt.Errorf("node has no id")
	}

	if n.Literal == "" && n.ForwardExpression == "" && !n.Optional {
		return fmt.Errorf("node %q has no literal value, no forward expression, and is not optional", n.ID)
	}

	switch n.ValueKind {
	case node.ValueUint, node.ValueInt, node.ValueBit:
		if n.LengthBits <= 0 || n.LengthBits > 64 {
			return fmt.Errorf("node %q: length %d illegal for %s (must be 1..=64)", n.ID, n.LengthBits, n.ValueKind)
		}
	case node.ValueHex:
		if n.LengthBits < 0 || n.LengthBits%8 != 0 {
			return fmt.Errorf("node %q: HEX length %d must be 0 or a multiple of 8", n.ID, n.LengthBits)
		}
	case node.ValueFloat:
		if n.LengthBits != 32 && n.LengthBits != 64 {
			return fmt.Errorf("node %q: FLOAT length must be 32 or 64, got %d", n.ID, n.LengthBits)
		}
	case node.ValueString:
		if n.LengthBits <= 0 || n.LengthBits%8 != 0 {
			return fmt.Errorf("node %q: STRING length %d must be a positive multiple of 8", n.ID, n.LengthBits)
		}
	case node.ValueTime:
		if n.LengthBits <= 0 || n.LengthBits > 64 {
			return fmt.Errorf("node %q: TIME length %d illegal (must be 1..=64)", n.ID, n.LengthBits)
		}
	default:
		return fmt.Errorf("node %q: unknown value kind", n.ID)
	}

	if n.RangeSpec != nil {
		if _, err := ParseRangeSpec(n.RangeSpec.Source); err != nil {
			return fmt.Errorf("node %q: %w", n.ID, err)
		}
	}

	seen := map[int]bool{}
	for _, cd := range n.ConditionalDependencies {
		if seen[cd.Priority] {
			return fmt.Errorf("node %q: duplicate conditional-dependency priority %d", n.ID, cd.Priority)
		}
		seen[cd.Priority] = true
		if cd.RefNodeID == "" {
			return fmt.Errorf("node %q: conditional dependency missing ref_node_id", n.ID)
		}
	}

	return nil
}

func validatePaddingNode(n *node.Node) error {
	if n.Padding == nil {
		return fmt.Errorf("node %q: padding node missing padding_config", n.ID)
	}
	switch n.Padding.Strategy {
	case node.PadFixedLength, node.PadAlignment, node.PadDynamic, node.PadFillContainer:
	default:
		return fmt.Errorf("node %q: unknown padding strategy %q", n.ID, n.Padding.Strategy)
	}
	if n.Padding.Strategy == node.PadDynamic && n.Padding.LengthExpression == "" {
		return fmt.Errorf("node %q: DYNAMIC padding requires a length_expression", n.ID)
	}
	if n.Padding.MinPaddingBits > 0 && n.Padding.MaxPaddingBits > 0 && n.Padding.MinPaddingBits > n.Padding.MaxPaddingBits {
		return fmt.Errorf("node %q: padding min %d exceeds max %d", n.ID, n.Padding.MinPaddingBits, n.Padding.MaxPaddingBits)
	}
	return nil
}
