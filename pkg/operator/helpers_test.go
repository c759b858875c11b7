package operator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusgraph/qengine/pkg/ast"
	"github.com/corvusgraph/qengine/pkg/graphmodel"
)

// testStore builds the abstract scenario graph: actors a1, a2, movie m1,
// edges a1->m1 and a2->m1 of type acted_in.
func testStore(t *testing.T) *graphmodel.MemoryStore {
	t.Helper()
	store := graphmodel.NewMemoryStore()

	_, err := store.AddNode("a1", "actor", map[string]graphmodel.Value{
		"name": graphmodel.StringValue("Alice"),
		"age":  graphmodel.IntValue(42),
	})
	require.NoError(t, err)
	_, err = store.AddNode("a2", "actor", map[string]graphmodel.Value{
		"name": graphmodel.StringValue("Bob"),
		"age":  graphmodel.IntValue(28),
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

// chainGraph builds the pattern (x:actor)-[:acted_in]->(y:movie).
func chainGraph(t *testing.T) *graphmodel.QueryGraph {
	t.Helper()
	g, err := graphmodel.BuildQueryGraph(&ast.MatchClause{Entities: []*ast.GraphEntity{
		ast.NewNodeEntity("x", "actor"),
		ast.NewLinkEntity("", "acted_in", ast.LeftToRight),
		ast.NewNodeEntity("y", "movie"),
	}})
	require.NoError(t, err)
	return g
}
