package optimizer

import (
	"github.com/corvusgraph/qengine/pkg/graphmodel"
	"github.com/corvusgraph/qengine/pkg/logging"
	"github.com/corvusgraph/qengine/pkg/operator"
	"github.com/corvusgraph/qengine/pkg/plan"
)

// MergeExpands rewrites the plan at every pattern convergence: for each
// query-graph node with in-degree exactly 2, the two ExpandAll operators
// generating it are replaced by a single ExpandInto that verifies the edge
// between two independently-bound endpoints, with the second expand's
// chain becoming a child stream of the rewritten node.
func MergeExpands(storage graphmodel.Storage, qg *graphmodel.QueryGraph, root *plan.PlanNode) error {
	for _, n := range qg.NDegreeNodes(2) {
		if err := mergeAt(storage, root, n); err != nil {
			return err
		}
	}
	return nil
}

func mergeAt(storage graphmodel.Storage, root *plan.PlanNode, n *graphmodel.Node) error {
	// Locate both expand operations targeting n, comparing destination
	// handles by identity. The plan has no shared descendants before
	// this pass, so the traversal needs no visited set.
	var a, b *plan.PlanNode

	toVisit := []*plan.PlanNode{root}
	for len(toVisit) > 0 {
		current := toVisit[len(toVisit)-1]
		toVisit = toVisit[:len(toVisit)-1]

		if expand, ok := current.Op.(*operator.ExpandAll); ok && expand.Dest() == n {
			if a == nil {
				a = current
				continue
			}
			b = current
			break
		}

		toVisit = append(toVisit, current.Children...)
	}

	if a == nil || b == nil {
		return nil
	}

	// Replace a's operator with an ExpandInto built from the same
	// handles, then pull b's chain under it.
	expand := a.Op.(*operator.ExpandAll)
	into, err := operator.NewExpandInto(storage, expand.Src(), expand.Edge(), expand.Dest())
	if err != nil {
		return err
	}
	a.ReplaceOperator(into)
	a.AddChild(b)

	// The rewritten node inherits b's other parents.
	parents := make([]*plan.PlanNode, len(b.Parents))
	copy(parents, b.Parents)
	for _, p := range parents {
		if p == a {
			continue
		}
		if !p.ContainsChild(a) {
			p.AddChild(a)
		}
		p.RemoveChild(b)
	}

	optimizerLogger := logging.WithComponent("optimizer")
	optimizerLogger.Debug().
		Str("pass", "expand-merge").
		Str("converged", n.Alias).
		Msg("merged expands into expand-into")
	return nil
}
