// Package depgraph builds the per-call dependency graph described in §4.4:
// forward-expression edges, conditional-dependency edges, and range-span
// edges, then produces a Kahn topological order tie-broken by the tree's
// pre-order position so that a tree with no inter-node dependencies encodes
// in declaration order.
package depgraph

import (
	"fmt"
	"sort"

	"github.com/aledsdavies/bitproto/internal/errs"
	"github.com/aledsdavies/bitproto/internal/eval"
	"github.com/aledsdavies/bitproto/internal/node"
)

// CrossProtocolResolver resolves a scoped "protoId:nodeId" reference to the
// owning Node, for expressions that reach across protocols. The core keeps
// this as an external, read-mostly collaborator (§5); a nil resolver simply
// means scoped references always fail with MissingNode.
type CrossProtocolResolver interface {
	Resolve(protocolID, nodeID string) (*node.Node, bool)
}

// Graph is the dependency graph for one protocol tree, built fresh for each
// encode/decode call (or reused from a read-only cache per §5).
type Graph struct {
	protocolID string
	nodes      []*node.Node          // pre-order, index = tie-break rank
	rank       map[string]int        // node id -> pre-order rank
	byID       map[string]*node.Node // node id -> node
	edges      map[string]map[string]bool
	reverse    map[string]map[string]bool
	rangeEdges map[string][]node.Node // reserved for diagnostics
}

// Build constructs the dependency graph for p. resolver may be nil.
func Build(p *node.Protocol, reg *eval.Registry, resolver CrossProtocolResolver) (*Graph, error) {
	all := p.AllNodes()
	g := &Graph{
		protocolID: p.ID,
		nodes:      all,
		rank:       make(map[string]int, len(all)),
		byID:       make(map[string]*node.Node, len(all)),
		edges:      make(map[string]map[string]bool),
		reverse:    make(map[string]map[string]bool),
	}
	for i, n := range all {
		if n.ID == "" {
			continue
		}
		g.rank[n.ID] = i
		g.byID[n.ID] = n
		g.edges[n.ID] = map[string]bool{}
		g.reverse[n.ID] = map[string]bool{}
	}

	addEdge := func(from, to string) error {
		if from == to {
			return nil
		}
		if _, ok := g.edges[from]; !ok {
			g.edges[from] = map[string]bool{}
			g.reverse[from] = map[string]bool{}
		}
		if _, ok := g.edges[to]; !ok {
			g.edges[to] = map[string]bool{}
			g.reverse[to] = map[string]bool{}
		}
		g.edges[from][to] = true
		g.reverse[to][from] = true
		return nil
	}

	resolveRef := func(ref string) (*node.Node, error) {
		if n, ok := g.byID[ref]; ok {
			return n, nil
		}
		// scoped "protoId:nodeId"
		for i := 0; i < len(ref); i++ {
			if ref[i] == ':' {
				proto, id := ref[:i], ref[i+1:]
				if resolver != nil {
					if n, ok := resolver.Resolve(proto, id); ok {
						return n, nil
					}
				}
				return nil, errs.New(errs.MissingNode, "no such cross-protocol node %q", ref)
			}
		}
		return nil, errs.New(errs.MissingNode, "no such node %q in protocol %q", ref, g.protocolID)
	}

	for _, n := range all {
		if n.ID == "" {
			continue
		}

		if n.ForwardExpression != "" {
			expr, err := eval.Parse(n.ForwardExpression)
			if err != nil {
				return nil, errs.At(n.ID, errs.FormatError, "unparseable forward expression: %v", err)
			}
			refs, ranges := eval.Refs(expr, reg)
			for _, ref := range refs {
				refNode, err := resolveRef(ref)
				if err != nil {
					return nil, err
				}
				if err := addEdge(refNode.ID, n.ID); err != nil {
					return nil, err
				}
			}
			for _, rc := range ranges {
				if err := addRangeEdges(g, addEdge, rc.StartID, rc.EndID, n.ID); err != nil {
					return nil, err
				}
			}
		}

		for _, cd := range n.ConditionalDependencies {
			refNode, err := resolveRef(cd.RefNodeID)
			if err != nil {
				return nil, err
			}
			if err := addEdge(refNode.ID, n.ID); err != nil {
				return nil, err
			}
		}

		if n.Kind == node.KindPadding && n.Padding != nil {
			if n.Padding.Strategy == node.PadDynamic && n.Padding.LengthExpression != "" {
				expr, err := eval.Parse(n.Padding.LengthExpression)
				if err != nil {
					return nil, errs.At(n.ID, errs.FormatError, "unparseable padding length expression: %v", err)
				}
				refs, ranges := eval.Refs(expr, reg)
				for _, ref := range refs {
					refNode, err := resolveRef(ref)
					if err != nil {
						return nil, err
					}
					if err := addEdge(refNode.ID, n.ID); err != nil {
						return nil, err
					}
				}
				for _, rc := range ranges {
					if err := addRangeEdges(g, addEdge, rc.StartID, rc.EndID, n.ID); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	return g, nil
}

// addRangeEdges adds an edge from every node between startRef and endRef
// (inclusive, in pre-order) to the referring node, per §4.4's "range
// function" rule.
func addRangeEdges(g *Graph, addEdge func(from, to string) error, startRef, endRef, referring string) error {
	startNode, ok := g.byID[stripProto(startRef)]
	if !ok {
		return errs.New(errs.MissingNode, "range start %q not found", startRef)
	}
	endNode, ok := g.byID[stripProto(endRef)]
	if !ok {
		return errs.New(errs.MissingNode, "range end %q not found", endRef)
	}
	lo, hi := g.rank[startNode.ID], g.rank[endNode.ID]
	if lo > hi {
		lo, hi = hi, lo
	}
	for i := lo; i <= hi; i++ {
		n := g.nodes[i]
		if n.ID == "" {
			continue
		}
		if err := addEdge(n.ID, referring); err != nil {
			return err
		}
	}
	return nil
}

func stripProto(ref string) string {
	for i := 0; i < len(ref); i++ {
		if ref[i] == ':' {
			return ref[i+1:]
		}
	}
	return ref
}

// TopoOrder returns the node ids of every id-bearing node in the protocol in
// a valid topological order (Kahn's algorithm), ties broken by pre-order
// rank so a tree with no dependencies yields exactly its declaration order.
func (g *Graph) TopoOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.edges))
	for id := range g.edges {
		inDegree[id] = len(g.reverse[id])
	}

	var ready []string
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return g.rank[ready[i]] < g.rank[ready[j]] })

	var order []string
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return g.rank[ready[i]] < g.rank[ready[j]] })
		cur := ready[0]
		ready = ready[1:]
		order = append(order, cur)
		for to := range g.edges[cur] {
			inDegree[to]--
			if inDegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}

	if len(order) != len(g.edges) {
		cycle, err := g.findCycle()
		if err != nil {
			return nil, err
		}
		return nil, errs.Cyclic(cycle)
	}
	return order, nil
}

// findCycle runs a DFS with a recursion stack to locate one cycle, for the
// CyclicDependency diagnostic (§4.4, §7).
func (g *Graph) findCycle() ([]string, error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.edges))
	var stack []string
	var cyclePath []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		stack = append(stack, id)
		neighbors := make([]string, 0, len(g.edges[id]))
		for to := range g.edges[id] {
			neighbors = append(neighbors, to)
		}
		sort.Slice(neighbors, func(i, j int) bool { return g.rank[neighbors[i]] < g.rank[neighbors[j]] })
		for _, to := range neighbors {
			switch color[to] {
			case white:
				if visit(to) {
					return true
				}
			case gray:
				// found the back edge; extract the cycle from the stack
				idx := 0
				for i, v := range stack {
					if v == to {
						idx = i
						break
					}
				}
				cyclePath = append(append([]string{}, stack[idx:]...), to)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	ids := make([]string, 0, len(g.edges))
	for id := range g.edges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return g.rank[ids[i]] < g.rank[ids[j]] })
	for _, id := range ids {
		if color[id] == white {
			if visit(id) {
				return cyclePath, nil
			}
		}
	}
	return nil, fmt.Errorf("depgraph: topological sort failed but no cycle was found (internal error)")
}
