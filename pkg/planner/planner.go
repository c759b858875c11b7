// Package planner translates a query AST into the initial operator DAG.
// The planner produces a correct but naive plan: expand chains without
// scan leaves, filters still unplaced. The optimizer passes finish the job.
package planner

import (
	"fmt"

	"github.com/corvusgraph/qengine/pkg/ast"
	"github.com/corvusgraph/qengine/pkg/graphmodel"
	"github.com/corvusgraph/qengine/pkg/logging"
	"github.com/corvusgraph/qengine/pkg/operator"
	"github.com/corvusgraph/qengine/pkg/plan"
)

// Planner builds operator DAGs over a graph store.
type Planner struct {
	storage graphmodel.Storage
}

// New creates a planner over the given store.
func New(storage graphmodel.Storage) (*Planner, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage cannot be nil")
	}
	return &Planner{storage: storage}, nil
}

// Plan translates the query into a DAG rooted at a ProduceResults node,
// returning the root together with the query graph the match clause
// describes. Expand chains come out leafless; entry-point selection
// attaches their scans afterwards.
func (p *Planner) Plan(q *ast.Query) (*plan.PlanNode, *graphmodel.QueryGraph, error) {
	if q == nil {
		return nil, nil, fmt.Errorf("query cannot be nil")
	}
	if q.Match == nil || len(q.Match.Entities) == 0 {
		return nil, nil, fmt.Errorf("query has no match clause")
	}

	qg, err := graphmodel.BuildQueryGraph(q.Match)
	if err != nil {
		return nil, nil, fmt.Errorf("building query graph: %w", err)
	}

	produceResults, err := operator.NewProduceResults(q.Return)
	if err != nil {
		return nil, nil, err
	}
	root := plan.NewPlanNode(produceResults)

	// ops is the pending operator chain, outermost first. Each entry
	// node's walk appends to it and the chain step below links it up.
	ops := []*plan.PlanNode{root}

	if q.Return.ContainsAggregation() {
		agg, err := operator.NewAggregate(q.Return)
		if err != nil {
			return nil, nil, err
		}
		ops = append(ops, plan.NewPlanNode(agg))
	}

	entryNodes := qg.NDegreeNodes(0)
	log := logging.WithComponent("planner")
	log.Debug().Int("entry_nodes", len(entryNodes)).Int("pattern_edges", len(qg.Edges)).Msg("building plan")

	for _, entry := range entryNodes {
		if entry.OutDegree() > 0 {
			expands, err := p.expandChain(entry)
			if err != nil {
				return nil, nil, err
			}
			// Push in reverse so the expand closest to the pattern
			// root is consumed first.
			for i := len(expands) - 1; i >= 0; i-- {
				ops = append(ops, expands[i])
			}
		} else {
			// Hanging pattern node "()", scan it directly.
			scan, err := p.scanFor(entry)
			if err != nil {
				return nil, nil, err
			}
			ops = append(ops, plan.NewPlanNode(scan))
		}

		// Chain the accumulated operators: pop in reversed order, each
		// becoming the sole child of the one popped after it, then
		// reintroduce the projection for the next entry node.
		if len(ops) > 1 {
			prev := ops[len(ops)-1]
			ops = ops[:len(ops)-1]
			for len(ops) != 0 {
				current := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				current.AddChild(prev)
				prev = current
			}
			ops = append(ops, root)
		}
	}

	return root, qg, nil
}

// expandChain walks the chain of outgoing pattern edges from an entry
// node, always taking the first outgoing edge until a node with none is
// reached, and returns one ExpandAll plan node per edge in walk order.
func (p *Planner) expandChain(entry *graphmodel.Node) ([]*plan.PlanNode, error) {
	var expands []*plan.PlanNode
	src := entry

	for src.OutDegree() > 0 {
		edge := src.Outgoing[0]
		dest := edge.Dest

		expand, err := operator.NewExpandAll(p.storage, src, edge, dest)
		if err != nil {
			return nil, err
		}
		expands = append(expands, plan.NewPlanNode(expand))

		src = dest
	}
	return expands, nil
}

// scanFor picks the scan operator for an isolated pattern node: a label
// scan when the node is labeled, a full scan otherwise.
func (p *Planner) scanFor(node *graphmodel.Node) (operator.Operator, error) {
	if node.Label != "" {
		return operator.NewNodeByLabelScan(p.storage, node, node.Label)
	}
	return operator.NewAllNodeScan(p.storage, node)
}
