// Package conditional evaluates a node's ordered conditional-dependency
// rules (§4.9): each rule watches another node's resolved value and, on
// match or no-match, enables, disables, defaults, or clears the owning
// node. Rules run in ascending priority order and a DISABLE short-circuits
// the rest — a node a later, higher-priority rule would have re-enabled
// stays disabled once DISABLE has fired.
package conditional

import (
	"fmt"
	"sort"

	"github.com/aledsdavies/bitproto/internal/eval"
	"github.com/aledsdavies/bitproto/internal/node"
)

// Outcome is the net effect of running a node's conditional-dependency
// rules against the current environment. Per the scheduler loop (§4.4),
// DISABLE and CLEAR_VALUE both cause the node to contribute zero bits —
// they differ only in the enabled/enabled_reason diagnostic recorded for
// the node, not in what gets written to the wire.
type Outcome struct {
	Enabled      bool   // the enabled/enabled_reason diagnostic value
	Skip         bool   // true for DISABLE and CLEAR_VALUE: emit zero bits
	DefaultValue string // set when a SET_DEFAULT rule matched; "" otherwise
}

// Resolve evaluates n's ConditionalDependencies in priority order and
// returns the combined outcome. A node with no conditional dependencies is
// always enabled.
func Resolve(n *node.Node, env *eval.Env) (Outcome, error) {
	out := Outcome{Enabled: true}
	if len(n.ConditionalDependencies) == 0 {
		return out, nil
	}

	rules := make([]node.ConditionalDependency, len(n.ConditionalDependencies))
	copy(rules, n.ConditionalDependencies)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })

	for _, rule := range rules {
		v, err := eval.Evaluate(rule.Expression, env)
		if err != nil {
			return Outcome{}, fmt.Errorf("conditional: node %q rule on %q: %w", n.ID, rule.RefNodeID, err)
		}
		matched, err := v.AsBool()
		if err != nil {
			return Outcome{}, fmt.Errorf("conditional: node %q rule on %q: %w", n.ID, rule.RefNodeID, err)
		}

		action := rule.NoMatchAction
		if matched {
			action = rule.MatchAction
		}

		switch action {
		case node.ActionEnable:
			out.Enabled = true
		case node.ActionDisable:
			out.Enabled = false
			out.Skip = true
			return out, nil
		case node.ActionSetDefault:
			out.Enabled = true
			out.DefaultValue = n.Literal
		case node.ActionClearValue:
			out.Enabled = true
			out.Skip = true
		case "":
			// no action configured for this branch of the rule
		default:
			return Outcome{}, fmt.Errorf("conditional: node %q has unknown action %q", n.ID, action)
		}
	}
	return out, nil
}
