package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvusgraph/qengine/pkg/ast"
	"github.com/corvusgraph/qengine/pkg/graphmodel"
	"github.com/corvusgraph/qengine/pkg/operator"
	"github.com/corvusgraph/qengine/pkg/plan"
)

// scenarioStore builds the abstract graph from the engine scenarios:
// actors a1, a2 and movie m1, with acted_in edges a1->m1 and a2->m1.
func scenarioStore(t *testing.T) *graphmodel.MemoryStore {
	t.Helper()
	store := graphmodel.NewMemoryStore()

	_, err := store.AddNode("a1", "actor", map[string]graphmodel.Value{
		"name": graphmodel.StringValue("A"),
		"age":  graphmodel.IntValue(42),
	})
	require.NoError(t, err)
	_, err = store.AddNode("a2", "actor", map[string]graphmodel.Value{
		"name": graphmodel.StringValue("B"),
		"age":  graphmodel.IntValue(35),
	})
	require.NoError(t, err)
	_, err = store.AddNode("m1", "movie", nil)
	require.NoError(t, err)

	_, err = store.AddEdge("acted_in", "a1", "m1")
	require.NoError(t, err)
	_, err = store.AddEdge("acted_in", "a2", "m1")
	require.NoError(t, err)
	return store
}

func mustPlan(t *testing.T, store graphmodel.Storage, q *ast.Query) *ExecutionPlan {
	t.Helper()
	p, err := NewPlan(context.Background(), store, "test", q, Config{})
	require.NoError(t, err)
	return p
}

func mustExecute(t *testing.T, p *ExecutionPlan) *operator.ResultSet {
	t.Helper()
	rs, err := p.Execute(context.Background())
	require.NoError(t, err)
	return rs
}

func rowStrings(rs *operator.ResultSet) [][]string {
	out := make([][]string, 0, rs.Len())
	for _, row := range rs.Rows {
		vals := make([]string, len(row))
		for i, v := range row {
			vals[i] = v.String()
		}
		out = append(out, vals)
	}
	return out
}

func labeledNodeQuery() *ast.Query {
	return &ast.Query{
		Match: &ast.MatchClause{Entities: []*ast.GraphEntity{
			ast.NewNodeEntity("x", "actor"),
		}},
		Return: &ast.ReturnClause{Elements: []*ast.ReturnElement{
			{Kind: ast.ReturnNode, Alias: "x"},
		}},
	}
}

func chainQuery() *ast.Query {
	return &ast.Query{
		Match: &ast.MatchClause{Entities: []*ast.GraphEntity{
			ast.NewNodeEntity("x", "actor"),
			ast.NewLinkEntity("", "acted_in", ast.LeftToRight),
			ast.NewNodeEntity("y", "movie"),
		}},
		Return: &ast.ReturnClause{Elements: []*ast.ReturnElement{
			{Kind: ast.ReturnNode, Alias: "y"},
		}},
	}
}

func convergentQuery() *ast.Query {
	return &ast.Query{
		Match: &ast.MatchClause{Entities: []*ast.GraphEntity{
			ast.NewNodeEntity("x", "actor"),
			ast.NewLinkEntity("", "acted_in", ast.LeftToRight),
			ast.NewNodeEntity("y", "movie"),
			ast.NewLinkEntity("", "acted_in", ast.RightToLeft),
			ast.NewNodeEntity("z", "actor"),
		}},
		Return: &ast.ReturnClause{Elements: []*ast.ReturnElement{
			{Kind: ast.ReturnNode, Alias: "x"},
			{Kind: ast.ReturnNode, Alias: "z"},
		}},
	}
}

// MATCH (x:actor) RETURN x
func TestLabelScanScenario(t *testing.T) {
	p := mustPlan(t, scenarioStore(t), labeledNodeQuery())
	defer p.Free()

	assert.Equal(t, "Produce Results\n  Node By Label Scan\n", p.Print())

	rs := mustExecute(t, p)
	assert.Equal(t, [][]string{{"a1"}, {"a2"}}, rowStrings(rs))
}

// MATCH (x:actor)-[:acted_in]->(y:movie) RETURN y
func TestExpandScenario(t *testing.T) {
	p := mustPlan(t, scenarioStore(t), chainQuery())
	defer p.Free()

	assert.Equal(t, "Produce Results\n  Expand All\n    Node By Label Scan\n", p.Print())

	rs := mustExecute(t, p)
	assert.Equal(t, [][]string{{"m1"}, {"m1"}}, rowStrings(rs))
}

// MATCH (x:actor)-[:acted_in]->(y:movie)<-[:acted_in]-(z:actor) RETURN x,z
func TestConvergenceScenario(t *testing.T) {
	p := mustPlan(t, scenarioStore(t), convergentQuery())
	defer p.Free()

	assert.Equal(t,
		"Produce Results\n"+
			"  Expand Into\n"+
			"    Node By Label Scan\n"+
			"    Expand All\n"+
			"      Node By Label Scan\n",
		p.Print())

	rs := mustExecute(t, p)
	require.Equal(t, 4, rs.Len())
	assert.ElementsMatch(t, [][]string{
		{"a1", "a1"}, {"a1", "a2"}, {"a2", "a1"}, {"a2", "a2"},
	}, rowStrings(rs))
}

// MATCH (x:actor) WHERE x.age > 30 RETURN x
func TestFilterScenario(t *testing.T) {
	q := labeledNodeQuery()
	q.Where = &ast.WhereClause{Filters: ast.NewConstantPredicate("x", "age", ast.Gt, 30)}

	p := mustPlan(t, scenarioStore(t), q)
	defer p.Free()

	assert.Equal(t, "Produce Results\n  Filter\n    Node By Label Scan\n", p.Print())

	rs := mustExecute(t, p)
	assert.Equal(t, [][]string{{"a1"}, {"a2"}}, rowStrings(rs))
}

func TestFilterScenarioExcludesRows(t *testing.T) {
	q := labeledNodeQuery()
	q.Where = &ast.WhereClause{Filters: ast.NewConstantPredicate("x", "age", ast.Gt, 40)}

	p := mustPlan(t, scenarioStore(t), q)
	defer p.Free()

	rs := mustExecute(t, p)
	assert.Equal(t, [][]string{{"a1"}}, rowStrings(rs))
}

func TestFilterScenarioNoMatches(t *testing.T) {
	q := labeledNodeQuery()
	q.Where = &ast.WhereClause{Filters: ast.NewConstantPredicate("x", "age", ast.Gt, 100)}

	p := mustPlan(t, scenarioStore(t), q)
	defer p.Free()

	rs := mustExecute(t, p)
	assert.Zero(t, rs.Len())
}

// MATCH (x:actor)-[:acted_in]->(y:movie) RETURN y, COUNT(x)
func TestAggregationScenario(t *testing.T) {
	q := chainQuery()
	q.Return = &ast.ReturnClause{Elements: []*ast.ReturnElement{
		{Kind: ast.ReturnNode, Alias: "y"},
		{Kind: ast.ReturnAggFunc, Alias: "x", Func: "COUNT"},
	}}

	p := mustPlan(t, scenarioStore(t), q)
	defer p.Free()

	assert.Equal(t, "Produce Results\n  Aggregate\n    Expand All\n      Node By Label Scan\n", p.Print())

	rs := mustExecute(t, p)
	assert.Equal(t, []string{"y", "COUNT(x)"}, rs.Columns)
	assert.Equal(t, [][]string{{"m1", "2"}}, rowStrings(rs))
}

// MATCH (x:actor) WHERE x.age > 30 AND x.name = "A" RETURN x — the
// combined tree stays in one Filter operator.
func TestCombinedFilterScenario(t *testing.T) {
	q := labeledNodeQuery()
	q.Where = &ast.WhereClause{Filters: ast.NewCondition(
		ast.NewConstantPredicate("x", "age", ast.Gt, 30),
		ast.And,
		ast.NewConstantPredicate("x", "name", ast.Eq, "A"),
	)}

	p := mustPlan(t, scenarioStore(t), q)
	defer p.Free()

	assert.Equal(t, 1, countType(p.Root, operator.TypeFilter))

	rs := mustExecute(t, p)
	assert.Equal(t, [][]string{{"a1"}}, rowStrings(rs))
}

func TestUnlabeledNodeFullScan(t *testing.T) {
	q := &ast.Query{
		Match: &ast.MatchClause{Entities: []*ast.GraphEntity{
			ast.NewNodeEntity("x", ""),
		}},
		Return: &ast.ReturnClause{Elements: []*ast.ReturnElement{
			{Kind: ast.ReturnNode, Alias: "x"},
		}},
	}

	p := mustPlan(t, scenarioStore(t), q)
	defer p.Free()

	assert.Equal(t, "Produce Results\n  All Node Scan\n", p.Print())

	rs := mustExecute(t, p)
	assert.Equal(t, [][]string{{"a1"}, {"a2"}, {"m1"}}, rowStrings(rs))
}

func TestEmptyStoreYieldsEmptyResult(t *testing.T) {
	p := mustPlan(t, graphmodel.NewMemoryStore(), chainQuery())
	defer p.Free()

	rs := mustExecute(t, p)
	assert.Zero(t, rs.Len())
}

func TestExecutionDeterminism(t *testing.T) {
	store := scenarioStore(t)

	first := mustPlan(t, store, convergentQuery())
	rows1 := rowStrings(mustExecute(t, first))
	first.Free()

	second := mustPlan(t, store, convergentQuery())
	rows2 := rowStrings(mustExecute(t, second))
	second.Free()

	assert.Equal(t, rows1, rows2)
}

func TestExecuteTwiceReturnsSameResults(t *testing.T) {
	p := mustPlan(t, scenarioStore(t), labeledNodeQuery())
	defer p.Free()

	rs1 := mustExecute(t, p)
	rs2 := mustExecute(t, p)
	assert.Same(t, rs1, rs2)
	assert.Equal(t, 2, rs1.Len())
}

func TestPlanInvariants(t *testing.T) {
	store := scenarioStore(t)
	queries := []*ast.Query{labeledNodeQuery(), chainQuery(), convergentQuery()}

	for _, q := range queries {
		p := mustPlan(t, store, q)

		// Single root wrapping ProduceResults.
		assert.Equal(t, operator.TypeProduceResults, p.Root.Op.Type())
		assert.Empty(t, p.Root.Parents)

		// Every leaf is a scan, every edge mutually consistent.
		walkPlan(p.Root, func(n *plan.PlanNode) {
			if len(n.Children) == 0 {
				leafType := n.Op.Type()
				assert.True(t,
					leafType == operator.TypeAllNodeScan || leafType == operator.TypeLabelScan,
					"leaf %s is not a scan", n.Op.Name())
			}
			for _, c := range n.Children {
				found := false
				for _, parent := range c.Parents {
					if parent == n {
						found = true
					}
				}
				assert.True(t, found)
			}
		})
		p.Free()
	}
}

func TestNewPlanValidation(t *testing.T) {
	ctx := context.Background()
	store := scenarioStore(t)

	_, err := NewPlan(ctx, store, "test", nil, Config{})
	assert.Error(t, err)

	_, err = NewPlan(ctx, store, "test", &ast.Query{}, Config{})
	assert.Error(t, err)

	_, err = NewPlan(ctx, nil, "test", labeledNodeQuery(), Config{})
	assert.Error(t, err)
}

func TestExecuteFreedPlanFails(t *testing.T) {
	p := mustPlan(t, scenarioStore(t), labeledNodeQuery())
	p.Free()
	p.Free() // safe to call twice

	_, err := p.Execute(context.Background())
	assert.Error(t, err)
}

func countType(n *plan.PlanNode, t operator.Type) int {
	count := 0
	if n.Op.Type() == t {
		count++
	}
	for _, c := range n.Children {
		count += countType(c, t)
	}
	return count
}

func walkPlan(n *plan.PlanNode, visit func(*plan.PlanNode)) {
	visit(n)
	for _, c := range n.Children {
		walkPlan(c, visit)
	}
}
