// qplan-demo builds a small in-memory graph, plans a few pattern queries
// against it, and prints each optimized plan next to the rows it produces.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/corvusgraph/qengine/pkg/ast"
	"github.com/corvusgraph/qengine/pkg/engine"
	"github.com/corvusgraph/qengine/pkg/graphmodel"
	"github.com/corvusgraph/qengine/pkg/logging"
)

func main() {
	if err := logging.Init(logging.Config{Level: logging.LevelDebug, Pretty: true}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logging.Close()

	store, err := buildSampleGraph()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	queries := []struct {
		title string
		query *ast.Query
	}{
		{
			title: "MATCH (x:actor) RETURN x",
			query: &ast.Query{
				Match: &ast.MatchClause{Entities: []*ast.GraphEntity{
					ast.NewNodeEntity("x", "actor"),
				}},
				Return: &ast.ReturnClause{Elements: []*ast.ReturnElement{
					{Kind: ast.ReturnNode, Alias: "x"},
				}},
			},
		},
		{
			title: "MATCH (x:actor)-[:acted_in]->(y:movie)<-[:acted_in]-(z:actor) RETURN x,z",
			query: &ast.Query{
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
			},
		},
		{
			title: "MATCH (x:actor)-[:acted_in]->(y:movie) RETURN y, COUNT(x)",
			query: &ast.Query{
				Match: &ast.MatchClause{Entities: []*ast.GraphEntity{
					ast.NewNodeEntity("x", "actor"),
					ast.NewLinkEntity("", "acted_in", ast.LeftToRight),
					ast.NewNodeEntity("y", "movie"),
				}},
				Return: &ast.ReturnClause{Elements: []*ast.ReturnElement{
					{Kind: ast.ReturnNode, Alias: "y"},
					{Kind: ast.ReturnAggFunc, Alias: "x", Func: "COUNT", As: "appearances"},
				}},
			},
		},
		{
			title: "MATCH (x:actor) WHERE x.age > 30 RETURN x",
			query: &ast.Query{
				Match: &ast.MatchClause{Entities: []*ast.GraphEntity{
					ast.NewNodeEntity("x", "actor"),
				}},
				Where: &ast.WhereClause{
					Filters: ast.NewConstantPredicate("x", "age", ast.Gt, 30),
				},
				Return: &ast.ReturnClause{Elements: []*ast.ReturnElement{
					{Kind: ast.ReturnNode, Alias: "x"},
				}},
			},
		},
	}

	ctx := context.Background()
	for _, q := range queries {
		fmt.Printf("== %s\n", q.title)

		p, err := engine.NewPlan(ctx, store, "demo", q.query, engine.Config{})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		fmt.Println(p.Print())

		results, err := p.Execute(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(results)

		p.Free()
	}
}

func buildSampleGraph() (*graphmodel.MemoryStore, error) {
	store := graphmodel.NewMemoryStore()

	nodes := []struct {
		id    string
		label string
		props map[string]graphmodel.Value
	}{
		{"a1", "actor", map[string]graphmodel.Value{"name": graphmodel.StringValue("Alice"), "age": graphmodel.IntValue(42)}},
		{"a2", "actor", map[string]graphmodel.Value{"name": graphmodel.StringValue("Bob"), "age": graphmodel.IntValue(28)}},
		{"m1", "movie", map[string]graphmodel.Value{"title": graphmodel.StringValue("Night Shift")}},
	}
	for _, n := range nodes {
		if _, err := store.AddNode(n.id, n.label, n.props); err != nil {
			return nil, err
		}
	}

	edges := [][2]string{{"a1", "m1"}, {"a2", "m1"}}
	for _, e := range edges {
		if _, err := store.AddEdge("acted_in", e[0], e[1]); err != nil {
			return nil, err
		}
	}
	return store, nil
}
