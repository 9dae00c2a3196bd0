package conditional

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/bitproto/internal/eval"
	"github.com/aledsdavies/bitproto/internal/node"
)

func newEnv() *eval.Env {
	return eval.NewEnv(eval.NewRegistry())
}

func TestResolve_NoRules(t *testing.T) {
	n := &node.Node{ID: "x"}
	out, err := Resolve(n, newEnv())
	require.NoError(t, err)
	require.True(t, out.Enabled)
	require.False(t, out.Skip)
}

func TestResolve_Disable(t *testing.T) {
	env := newEnv()
	env.Bind("flag", eval.IntOf(0))
	n := &node.Node{ID: "x", ConditionalDependencies: []node.ConditionalDependency{
		{RefNodeID: "flag", Expression: "#flag == 1", MatchAction: node.ActionEnable, NoMatchAction: node.ActionDisable, Priority: 1},
	}}
	out, err := Resolve(n, env)
	require.NoError(t, err)
	require.False(t, out.Enabled)
	require.True(t, out.Skip)
}

func TestResolve_DisableShortCircuits(t *testing.T) {
	env := newEnv()
	env.Bind("flag", eval.IntOf(0))
	n := &node.Node{ID: "x", ConditionalDependencies: []node.ConditionalDependency{
		{RefNodeID: "flag", Expression: "#flag == 1", MatchAction: node.ActionEnable, NoMatchAction: node.ActionDisable, Priority: 1},
		{RefNodeID: "flag", Expression: "#flag == 0", MatchAction: node.ActionEnable, NoMatchAction: node.ActionDisable, Priority: 2},
	}}
	out, err := Resolve(n, env)
	require.NoError(t, err)
	require.False(t, out.Enabled)
	require.True(t, out.Skip)
}

func TestResolve_SetDefault(t *testing.T) {
	env := newEnv()
	env.Bind("flag", eval.IntOf(1))
	n := &node.Node{ID: "x", Literal: "42", ConditionalDependencies: []node.ConditionalDependency{
		{RefNodeID: "flag", Expression: "#flag == 1", MatchAction: node.ActionSetDefault, NoMatchAction: node.ActionEnable, Priority: 1},
	}}
	out, err := Resolve(n, env)
	require.NoError(t, err)
	require.True(t, out.Enabled)
	require.False(t, out.Skip)
	require.Equal(t, "42", out.DefaultValue)
}

func TestResolve_ClearValue(t *testing.T) {
	env := newEnv()
	env.Bind("flag", eval.IntOf(1))
	n := &node.Node{ID: "x", ConditionalDependencies: []node.ConditionalDependency{
		{RefNodeID: "flag", Expression: "#flag == 1", MatchAction: node.ActionClearValue, NoMatchAction: node.ActionEnable, Priority: 1},
	}}
	out, err := Resolve(n, env)
	require.NoError(t, err)
	require.True(t, out.Enabled)
	require.True(t, out.Skip)
}

func TestResolve_PriorityOrder(t *testing.T) {
	env := newEnv()
	env.Bind("flag", eval.IntOf(1))
	n := &node.Node{ID: "x", ConditionalDependencies: []node.ConditionalDependency{
		{RefNodeID: "flag", Expression: "#flag == 1", MatchAction: node.ActionEnable, NoMatchAction: node.ActionDisable, Priority: 5},
		{RefNodeID: "flag", Expression: "#flag == 1", MatchAction: node.ActionDisable, NoMatchAction: node.ActionEnable, Priority: 1},
	}}
	out, err := Resolve(n, env)
	require.NoError(t, err)
	require.False(t, out.Enabled)
	require.True(t, out.Skip)
}
