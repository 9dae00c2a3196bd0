// Package groupexpand flattens node groups before the rest of the core ever
// sees the tree. A node group declares one template child and a repetition
// count; expansion replaces the group with that many clones of the template,
// each given a disambiguated id via the group's id-format string (§9).
package groupexpand

import (
	"fmt"

	"github.com/aledsdavies/bitproto/internal/eval"
	"github.com/aledsdavies/bitproto/internal/node"
)

// Expand walks p's tree and replaces every KindNodeGroup node, in place,
// with the flattened repetition of its template child. It mutates p and
// also returns p for convenient chaining.
func Expand(p *node.Protocol) (*node.Protocol, error) {
	var err error
	if p.Header, err = expandNode(p.Header); err != nil {
		return nil, err
	}
	if p.Body, err = expandNode(p.Body); err != nil {
		return nil, err
	}
	if p.Tail, err = expandNode(p.Tail); err != nil {
		return nil, err
	}
	for i, c := range p.ExtraChildren {
		if p.ExtraChildren[i], err = expandNode(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// expandNode recursively expands groups within n's subtree and returns the
// (possibly different, if n itself was a group) replacement node. A nil
// input passes through unchanged.
func expandNode(n *node.Node) (*node.Node, error) {
	if n == nil {
		return nil, nil
	}
	expandedChildren := make([]*node.Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Kind == node.KindNodeGroup {
			reps, err := expandGroup(c)
			if err != nil {
				return nil, err
			}
			expandedChildren = append(expandedChildren, reps...)
			continue
		}
		replaced, err := expandNode(c)
		if err != nil {
			return nil, err
		}
		expandedChildren = append(expandedChildren, replaced)
	}
	n.Children = expandedChildren
	return n, nil
}

// expandGroup resolves g's repetition count and returns Count deep clones of
// its single template child, each with its id (and every descendant id)
// rewritten to the "<original>_<index>" disambiguation scheme driven by
// g.Group.IDFormat, and with nested groups within the template expanded too.
func expandGroup(g *node.Node) ([]*node.Node, error) {
	if g.Group == nil {
		return nil, fmt.Errorf("groupexpand: node %q is a node-group with no group configuration", g.ID)
	}
	if len(g.Children) != 1 {
		return nil, fmt.Errorf("groupexpand: node %q must declare exactly one template child, has %d", g.ID, len(g.Children))
	}
	count, err := resolveCount(g.Group)
	if err != nil {
		return nil, fmt.Errorf("groupexpand: node %q: %w", g.ID, err)
	}
	if count < 0 {
		return nil, fmt.Errorf("groupexpand: node %q resolved to a negative count %d", g.ID, count)
	}

	format := g.Group.IDFormat
	if format == "" {
		format = "%s_%d"
	}

	template := g.Children[0]
	out := make([]*node.Node, 0, count)
	for i := 1; i <= count; i++ {
		clone := cloneWithSuffix(template, format, i)
		expanded, err := expandNode(clone)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}

// resolveCount evaluates the group's repetition count. CountExpression, when
// present, is a constant arithmetic expression with no node references —
// expansion runs before any node has a bound value — so it is evaluated
// against an empty environment.
func resolveCount(cfg *node.GroupConfig) (int, error) {
	if cfg.CountExpression == "" {
		return cfg.Count, nil
	}
	env := eval.NewEnv(eval.NewRegistry())
	v, err := eval.Evaluate(cfg.CountExpression, env)
	if err != nil {
		return 0, fmt.Errorf("count_expression: %w", err)
	}
	n, err := v.AsInt()
	if err != nil {
		return 0, fmt.Errorf("count_expression: %w", err)
	}
	return int(n), nil
}

// cloneWithSuffix deep-copies n (and descendants), rewriting every id that
// is non-empty via fmt.Sprintf(format, id, index). Names are left readable
// by appending the same numeric suffix.
func cloneWithSuffix(n *node.Node, format string, index int) *node.Node {
	clone := *n
	if n.ID != "" {
		clone.ID = fmt.Sprintf(format, n.ID, index)
	}
	if n.Name != "" {
		clone.Name = fmt.Sprintf("%s %d", n.Name, index)
	}

	if n.Padding != nil {
		padCopy := *n.Padding
		clone.Padding = &padCopy
	}
	if n.Group != nil {
		groupCopy := *n.Group
		clone.Group = &groupCopy
	}
	if n.RangeSpec != nil {
		rsCopy := *n.RangeSpec
		rsCopy.Intervals = append([]node.Interval(nil), n.RangeSpec.Intervals...)
		clone.RangeSpec = &rsCopy
	}
	clone.Enumerants = append([]node.Enumerant(nil), n.Enumerants...)
	clone.ConditionalDependencies = append([]node.ConditionalDependency(nil), n.ConditionalDependencies...)

	if len(n.Children) > 0 {
		clone.Children = make([]*node.Node, len(n.Children))
		for i, c := range n.Children {
			clone.Children[i] = cloneWithSuffix(c, format, index)
		}
	} else {
		clone.Children = nil
	}
	clone.State = node.State{}
	return &clone
}
