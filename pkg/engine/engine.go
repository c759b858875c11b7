// Package engine is the public surface of the query execution engine: it
// turns a parsed query AST into an optimized operator DAG and drives the
// DAG to produce a result set.
package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/corvusgraph/qengine/pkg/ast"
	"github.com/corvusgraph/qengine/pkg/errors"
	"github.com/corvusgraph/qengine/pkg/executor"
	"github.com/corvusgraph/qengine/pkg/filter"
	"github.com/corvusgraph/qengine/pkg/graphmodel"
	"github.com/corvusgraph/qengine/pkg/logging"
	"github.com/corvusgraph/qengine/pkg/operator"
	"github.com/corvusgraph/qengine/pkg/optimizer"
	"github.com/corvusgraph/qengine/pkg/plan"
	"github.com/corvusgraph/qengine/pkg/planner"
)

// Config tunes plan construction. The zero value is the default behavior.
type Config struct {
	Optimizer optimizer.Config
}

// ExecutionPlan is a planned, optimized, ready-to-run query. Plans are
// frozen at execution start and single-use; the graph store they read
// from is a long-lived collaborator the plan never owns.
type ExecutionPlan struct {
	// ID identifies the plan in logs. It has no DAG semantics.
	ID uuid.UUID

	// GraphName names the graph the query runs against.
	GraphName string

	// Root is the single ProduceResults node owning the DAG.
	Root *plan.PlanNode

	// Graph is the query (pattern) graph shared by the plan's operators.
	Graph *graphmodel.QueryGraph

	// remaining is what filter pushdown could not place. Always nil for
	// well-formed queries; kept for invariant checks.
	remaining *filter.Node

	storage  graphmodel.Storage
	executed bool
	freed    bool
	log      zerolog.Logger
}

// NewPlan builds an execution plan for the query: planner first, then the
// three optimizer passes (entry-point selection, expand merge, filter
// pushdown). Never fails for a valid AST; a nil or match-less query is
// rejected with a planning error.
func NewPlan(ctx context.Context, storage graphmodel.Storage, graphName string, q *ast.Query, cfg Config) (*ExecutionPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryPlanning, "PLANNING_CANCELED", "Engine.NewPlan")
	}
	if storage == nil {
		return nil, errors.Planning("NIL_STORAGE",
			"cannot plan without a graph store").At("Engine.NewPlan")
	}
	if q == nil {
		return nil, errors.Planning("NIL_QUERY",
			"cannot plan a nil query").At("Engine.NewPlan")
	}
	if q.Match == nil || len(q.Match.Entities) == 0 {
		return nil, errors.Planning("EMPTY_MATCH",
			"query has no match clause").At("Engine.NewPlan")
	}

	id := uuid.New()
	log := logging.WithPlan(id)

	pl, err := planner.New(storage)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryPlanning, "PLANNER_INIT", "Engine.NewPlan")
	}
	root, qg, err := pl.Plan(q)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryPlanning, "PLANNING_FAILED", "Planner.Plan")
	}

	tree, err := filter.Build(q.Where)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryPlanning, "FILTER_BUILD_FAILED", "Planner.Plan")
	}

	if err := optimizer.SelectEntryPoints(storage, root, cfg.Optimizer); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "ENTRY_POINTS_FAILED", "Optimizer.SelectEntryPoints")
	}
	if err := optimizer.MergeExpands(storage, qg, root); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "EXPAND_MERGE_FAILED", "Optimizer.MergeExpands")
	}

	remaining, err := optimizer.PushFilters(root, tree)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "FILTER_PUSHDOWN_FAILED", "Optimizer.PushFilters")
	}

	p := &ExecutionPlan{
		ID:        id,
		GraphName: graphName,
		Root:      root,
		Graph:     qg,
		remaining: remaining,
		storage:   storage,
		log:       log,
	}
	p.wireAggregation()

	log.Debug().Str("graph", graphName).Msg("plan ready")
	return p, nil
}

// wireAggregation connects an Aggregate operator, when the plan has one,
// to the executor's drive of its child stream, and routes the root
// projection through the aggregate's materialized rows.
func (p *ExecutionPlan) wireAggregation() {
	aggNode := findByType(p.Root, operator.TypeAggregate)
	if aggNode == nil {
		return
	}
	agg := aggNode.Op.(*operator.Aggregate)

	if len(aggNode.Children) > 0 {
		input := aggNode.Children[0]
		agg.SetSource(func() operator.Result {
			return executor.ExecuteNode(input, p.Graph)
		})
	} else {
		agg.SetSource(func() operator.Result {
			return operator.Depleted
		})
	}

	if pr, ok := p.Root.Op.(*operator.ProduceResults); ok {
		pr.SetRowProducer(agg)
	}
}

func findByType(n *plan.PlanNode, t operator.Type) *plan.PlanNode {
	if n == nil {
		return nil
	}
	if n.Op.Type() == t {
		return n
	}
	for _, c := range n.Children {
		if found := findByType(c, t); found != nil {
			return found
		}
	}
	return nil
}

// Execute drives the plan to completion and returns the accumulated
// result set. On a stream failure the rows produced so far are returned
// together with the error. Executing an already-executed plan returns the
// same result set again.
func (p *ExecutionPlan) Execute(ctx context.Context) (*operator.ResultSet, error) {
	if p.freed {
		return nil, errors.Execution("PLAN_FREED",
			"cannot execute a freed plan").At("Engine.Execute")
	}
	results := p.Root.Op.(*operator.ProduceResults).Results()
	if p.executed {
		return results, nil
	}
	p.executed = true

	if err := executor.Run(ctx, p.Root, p.Graph); err != nil {
		p.log.Error().Err(err).Msg("execution aborted")
		return results, err
	}

	p.log.Debug().Int("rows", results.Len()).Msg("execution complete")
	return results, nil
}

// Print renders the plan as an indented operator listing, two spaces per
// depth level.
func (p *ExecutionPlan) Print() string {
	return plan.Print(p.Root)
}

// Free tears down the operator DAG post-order from the root. The query
// graph and the original filter tree are collaborators that outlive the
// plan and are not freed here. Safe to call more than once.
func (p *ExecutionPlan) Free() {
	if p.freed {
		return
	}
	p.freed = true
	p.Root.Free()
}
