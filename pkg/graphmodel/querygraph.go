package graphmodel

import (
	"fmt"

	"github.com/corvusgraph/qengine/pkg/ast"
)

// Node is a vertex of the query (pattern) graph built from a match clause.
// During execution, scan and expand operators write the stored entity
// currently matched against this pattern node into Bound; pointers to Node
// are the stable handles shared between operators, so two operators holding
// the same *Node always observe the same binding.
type Node struct {
	Alias string
	Label string

	Outgoing []*Edge
	Incoming []*Edge

	// Bound is the stored node currently bound to this pattern node,
	// nil while unbound.
	Bound *StoredNode
}

// InDegree returns the number of pattern edges pointing at this node.
func (n *Node) InDegree() int {
	return len(n.Incoming)
}

// OutDegree returns the number of pattern edges leaving this node.
func (n *Node) OutDegree() int {
	return len(n.Outgoing)
}

// Edge is a directed relationship of the query graph.
type Edge struct {
	Alias   string
	RelType string
	Src     *Node
	Dest    *Node

	// Bound is the stored edge currently bound to this pattern edge,
	// nil while unbound.
	Bound *StoredEdge
}

// QueryGraph is the pattern graph a match clause describes: the nodes and
// relationships the query is looking for, together with the current
// execution bindings. It is built once per plan and outlives every
// optimizer pass.
type QueryGraph struct {
	Nodes []*Node
	Edges []*Edge

	byAlias map[string]*Node
	anonSeq int
}

// BuildQueryGraph translates a match clause into a query graph. Entities
// appear in pattern order: node, link, node, link, node. Nodes sharing an
// alias collapse into a single query-graph node, which is how convergence
// points (in-degree >= 2) arise.
func BuildQueryGraph(match *ast.MatchClause) (*QueryGraph, error) {
	g := &QueryGraph{byAlias: make(map[string]*Node)}
	if match == nil {
		return g, nil
	}

	var prev *Node
	var pendingLink *ast.GraphEntity

	for _, entity := range match.Entities {
		switch entity.Kind {
		case ast.EntityLink:
			if prev == nil {
				return nil, fmt.Errorf("pattern starts with a relationship")
			}
			if pendingLink != nil {
				return nil, fmt.Errorf("two consecutive relationships in pattern")
			}
			pendingLink = entity

		case ast.EntityNode:
			node := g.addNode(entity)
			if pendingLink != nil {
				switch pendingLink.Direction {
				case ast.RightToLeft:
					g.addEdge(pendingLink, node, prev)
				default:
					g.addEdge(pendingLink, prev, node)
				}
				pendingLink = nil
			}
			prev = node

		default:
			return nil, fmt.Errorf("unknown graph entity kind %d", entity.Kind)
		}
	}

	if pendingLink != nil {
		return nil, fmt.Errorf("pattern ends with a dangling relationship")
	}
	return g, nil
}

func (g *QueryGraph) addNode(entity *ast.GraphEntity) *Node {
	alias := entity.Alias
	if alias == "" {
		g.anonSeq++
		alias = fmt.Sprintf("_n%d", g.anonSeq)
	}

	if existing, ok := g.byAlias[alias]; ok {
		if existing.Label == "" {
			existing.Label = entity.Label
		}
		return existing
	}

	node := &Node{Alias: alias, Label: entity.Label}
	g.Nodes = append(g.Nodes, node)
	g.byAlias[alias] = node
	return node
}

func (g *QueryGraph) addEdge(link *ast.GraphEntity, src, dest *Node) *Edge {
	edge := &Edge{
		Alias:   link.Alias,
		RelType: link.Label,
		Src:     src,
		Dest:    dest,
	}
	src.Outgoing = append(src.Outgoing, edge)
	dest.Incoming = append(dest.Incoming, edge)
	g.Edges = append(g.Edges, edge)
	return edge
}

// GetNodeByAlias returns the query-graph node with the given alias, or nil.
func (g *QueryGraph) GetNodeByAlias(alias string) *Node {
	return g.byAlias[alias]
}

// NDegreeNodes returns the nodes whose in-degree equals d, in pattern order.
func (g *QueryGraph) NDegreeNodes(d int) []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.InDegree() == d {
			out = append(out, n)
		}
	}
	return out
}

// ClearBindings drops every execution binding, returning the graph to its
// pre-execution state.
func (g *QueryGraph) ClearBindings() {
	for _, n := range g.Nodes {
		n.Bound = nil
	}
	for _, e := range g.Edges {
		e.Bound = nil
	}
}
