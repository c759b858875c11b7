package filter

import (
	"fmt"

	"github.com/corvusgraph/qengine/pkg/ast"
	"github.com/corvusgraph/qengine/pkg/graphmodel"
)

// Evaluate applies the filter tree to the bindings currently held by the
// query graph. Filter pushdown only places a tree where all of its
// referenced aliases are bound, so an unbound alias here is a plan bug.
func Evaluate(root *Node, g *graphmodel.QueryGraph) (bool, error) {
	if root == nil {
		return true, nil
	}

	if root.Kind == Condition {
		left, err := Evaluate(root.Left, g)
		if err != nil {
			return false, err
		}
		if root.Logical == ast.And && !left {
			return false, nil
		}
		if root.Logical == ast.Or && left {
			return true, nil
		}
		return Evaluate(root.Right, g)
	}

	lhs, err := boundProperty(g, root.Alias, root.Property)
	if err != nil {
		return false, err
	}

	rhs := root.Value
	if root.Varying {
		rhs, err = boundProperty(g, root.RAlias, root.RProperty)
		if err != nil {
			return false, err
		}
	}

	// Comparisons against a missing property never match.
	if lhs.IsNull() || rhs.IsNull() {
		return false, nil
	}

	c, err := lhs.Compare(rhs)
	if err != nil {
		return false, err
	}

	switch root.Op {
	case ast.Eq:
		return c == 0, nil
	case ast.Ne:
		return c != 0, nil
	case ast.Gt:
		return c > 0, nil
	case ast.Ge:
		return c >= 0, nil
	case ast.Lt:
		return c < 0, nil
	case ast.Le:
		return c <= 0, nil
	default:
		return false, fmt.Errorf("unknown comparison operator %d", root.Op)
	}
}

func boundProperty(g *graphmodel.QueryGraph, alias, property string) (graphmodel.Value, error) {
	node := g.GetNodeByAlias(alias)
	if node == nil {
		return graphmodel.NullValue(), fmt.Errorf("alias %q is not part of the pattern", alias)
	}
	if node.Bound == nil {
		return graphmodel.NullValue(), fmt.Errorf("alias %q is not bound", alias)
	}
	return node.Bound.Property(property), nil
}
