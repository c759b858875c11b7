package operator

import (
	"fmt"

	"github.com/corvusgraph/qengine/pkg/graphmodel"
)

// ExpandAll extends a bound source node along its outgoing edges of the
// pattern's relationship type, emitting one binding per edge: the edge
// itself and the destination node.
type ExpandAll struct {
	storage graphmodel.Storage
	src     *graphmodel.Node
	edge    *graphmodel.Edge
	dest    *graphmodel.Node
	adj     graphmodel.EdgeIterator
}

// NewExpandAll creates an expand over the given pattern edge. src, edge
// and dest are stable handles into the query graph; the operator reads the
// source binding and writes the edge and destination bindings.
func NewExpandAll(storage graphmodel.Storage, src *graphmodel.Node, edge *graphmodel.Edge, dest *graphmodel.Node) (*ExpandAll, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage cannot be nil")
	}
	if src == nil || edge == nil || dest == nil {
		return nil, fmt.Errorf("src, edge and dest handles cannot be nil")
	}
	return &ExpandAll{storage: storage, src: src, edge: edge, dest: dest}, nil
}

func (e *ExpandAll) Type() Type   { return TypeExpandAll }
func (e *ExpandAll) Name() string { return "Expand All" }

func (e *ExpandAll) Modifies() []string {
	mods := make([]string, 0, 2)
	if e.edge.Alias != "" {
		mods = append(mods, e.edge.Alias)
	}
	return append(mods, e.dest.Alias)
}

// Src returns the source pattern-node handle.
func (e *ExpandAll) Src() *graphmodel.Node { return e.src }

// Dest returns the destination pattern-node handle. The expand-merge pass
// compares this handle by identity to find the two expands converging on
// an in-degree-2 pattern node.
func (e *ExpandAll) Dest() *graphmodel.Node { return e.dest }

// Edge returns the pattern-edge handle.
func (e *ExpandAll) Edge() *graphmodel.Edge { return e.edge }

func (e *ExpandAll) Consume(g *graphmodel.QueryGraph) Result {
	if e.adj == nil {
		if e.src.Bound == nil {
			return Refresh
		}
		e.adj = e.storage.Outgoing(e.src.Bound, e.edge.RelType)
	}

	edge, ok := e.adj.Next()
	if !ok {
		// Current source exhausted, a new one must be pulled.
		return Refresh
	}

	e.edge.Bound = edge
	e.dest.Bound = edge.Dest
	return OK
}

// Reset clears the current adjacency iterator so the next consume starts
// from whatever source is bound then.
func (e *ExpandAll) Reset() Result {
	e.adj = nil
	return OK
}

func (e *ExpandAll) Free() {
	e.adj = nil
}

// ExpandInto verifies that two already-bound endpoints are connected by an
// edge of the expected type, rather than generating destinations. The
// expand-merge pass rewrites one of two converging ExpandAll operators
// into an ExpandInto.
type ExpandInto struct {
	storage graphmodel.Storage
	src     *graphmodel.Node
	edge    *graphmodel.Edge
	dest    *graphmodel.Node

	// matched guards against emitting the same endpoint pair twice
	// before the streams advance.
	matched bool
}

// NewExpandInto creates an edge-existence check between two bound pattern
// nodes. The handles are typically inherited from the ExpandAll being
// rewritten.
func NewExpandInto(storage graphmodel.Storage, src *graphmodel.Node, edge *graphmodel.Edge, dest *graphmodel.Node) (*ExpandInto, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage cannot be nil")
	}
	if src == nil || edge == nil || dest == nil {
		return nil, fmt.Errorf("src, edge and dest handles cannot be nil")
	}
	return &ExpandInto{storage: storage, src: src, edge: edge, dest: dest}, nil
}

func (e *ExpandInto) Type() Type   { return TypeExpandInto }
func (e *ExpandInto) Name() string { return "Expand Into" }

func (e *ExpandInto) Modifies() []string {
	if e.edge.Alias != "" {
		return []string{e.edge.Alias}
	}
	return nil
}

// Src returns the source pattern-node handle.
func (e *ExpandInto) Src() *graphmodel.Node { return e.src }

// Dest returns the destination pattern-node handle.
func (e *ExpandInto) Dest() *graphmodel.Node { return e.dest }

func (e *ExpandInto) Consume(g *graphmodel.QueryGraph) Result {
	if e.src.Bound == nil || e.dest.Bound == nil {
		return Refresh
	}
	if e.matched {
		// Already emitted this pair, need the streams to advance.
		return Refresh
	}

	edge, ok := e.storage.EdgeBetween(e.src.Bound, e.dest.Bound, e.edge.RelType)
	if !ok {
		return Refresh
	}

	e.edge.Bound = edge
	e.matched = true
	return OK
}

func (e *ExpandInto) Reset() Result {
	e.matched = false
	return OK
}

func (e *ExpandInto) Free() {}
