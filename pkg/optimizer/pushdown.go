package optimizer

import (
	"github.com/corvusgraph/qengine/pkg/filter"
	"github.com/corvusgraph/qengine/pkg/logging"
	"github.com/corvusgraph/qengine/pkg/operator"
	"github.com/corvusgraph/qengine/pkg/plan"
)

// PushFilters walks the DAG bottom-up and, wherever some predicates of the
// filter tree become fully resolvable from the bindings a subtree
// produces, carves the largest such subtree out of the global tree and
// splices a Filter node between the current node and its children.
//
// Every predicate of the original tree ends up in exactly one Filter
// operator, at the lowest DAG position where all of its referenced
// bindings are available. Returns whatever is left of the tree, which is
// nil whenever every predicate found a home.
func PushFilters(root *plan.PlanNode, tree *filter.Node) (*filter.Node, error) {
	if tree == nil {
		return nil, nil
	}

	pd := &pushdown{tree: tree}
	if _, err := pd.visit(root); err != nil {
		return nil, err
	}
	return pd.tree, nil
}

type pushdown struct {
	tree *filter.Node
}

// visit recurses into children first (in reverse index order, so a
// diamond's right-hand stream accumulates its aliases before the left),
// then decides whether a Filter belongs at this node, and finally adds the
// node's own modified bindings to the set it reports upward.
func (pd *pushdown) visit(n *plan.PlanNode) (filter.Bindings, error) {
	if n == nil {
		return nil, nil
	}

	seen := filter.NewBindings()
	for i := len(n.Children) - 1; i >= 0; i-- {
		saw, err := pd.visit(n.Children[i])
		if err != nil {
			return nil, err
		}

		// The whole tree found a home further down; stop early.
		if pd.tree == nil {
			return nil, nil
		}

		for alias := range saw {
			seen.Add(alias)
		}
	}

	if filter.ContainsApplicable(pd.tree, seen) {
		minTree := filter.MinTree(pd.tree, seen)
		pd.tree = filter.RemoveApplicable(pd.tree, seen)

		filterOp, err := operator.NewFilter(minTree)
		if err != nil {
			return nil, err
		}
		n.PushInBetween(plan.NewPlanNode(filterOp))

		optimizerLogger := logging.WithComponent("optimizer")
		optimizerLogger.Debug().
			Str("pass", "filter-pushdown").
			Str("below", n.Op.Name()).
			Str("filter", minTree.String()).
			Msg("inserted filter")
	}

	seen.Add(n.Op.Modifies()...)
	return seen, nil
}
