package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandAllEmitsPerOutgoingEdge(t *testing.T) {
	store := testStore(t)
	g := chainGraph(t)
	x, y := g.GetNodeByAlias("x"), g.GetNodeByAlias("y")

	expand, err := NewExpandAll(store, x, g.Edges[0], y)
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, expand.Modifies())

	// Unbound source: nothing to expand yet.
	assert.Equal(t, Refresh, expand.Consume(g))

	x.Bound = store.GetNode("a1")
	require.Equal(t, OK, expand.Consume(g))
	assert.Equal(t, "m1", y.Bound.ID)
	assert.NotNil(t, g.Edges[0].Bound)

	// a1 has a single outgoing edge, the next consume asks for a new source.
	assert.Equal(t, Refresh, expand.Consume(g))
}

func TestExpandAllResetPicksUpNewSource(t *testing.T) {
	store := testStore(t)
	g := chainGraph(t)
	x, y := g.GetNodeByAlias("x"), g.GetNodeByAlias("y")

	expand, err := NewExpandAll(store, x, g.Edges[0], y)
	require.NoError(t, err)

	x.Bound = store.GetNode("a1")
	require.Equal(t, OK, expand.Consume(g))

	x.Bound = store.GetNode("a2")
	require.Equal(t, OK, expand.Reset())
	require.Equal(t, OK, expand.Consume(g))
	assert.Equal(t, "m1", y.Bound.ID)
}

func TestExpandAllModifiesIncludesNamedEdge(t *testing.T) {
	store := testStore(t)
	g := chainGraph(t)
	g.Edges[0].Alias = "r"

	expand, err := NewExpandAll(store, g.GetNodeByAlias("x"), g.Edges[0], g.GetNodeByAlias("y"))
	require.NoError(t, err)
	assert.Equal(t, []string{"r", "y"}, expand.Modifies())
}

func TestExpandIntoVerifiesEdge(t *testing.T) {
	store := testStore(t)
	g := chainGraph(t)
	x, y := g.GetNodeByAlias("x"), g.GetNodeByAlias("y")

	into, err := NewExpandInto(store, x, g.Edges[0], y)
	require.NoError(t, err)
	assert.Equal(t, TypeExpandInto, into.Type())
	assert.Empty(t, into.Modifies())

	// Unbound endpoints.
	assert.Equal(t, Refresh, into.Consume(g))

	x.Bound = store.GetNode("a1")
	y.Bound = store.GetNode("m1")
	require.Equal(t, OK, into.Consume(g))
	assert.NotNil(t, g.Edges[0].Bound)

	// Same pair again: already emitted, streams must advance first.
	assert.Equal(t, Refresh, into.Consume(g))

	// After a reset with a non-connected pair, no match.
	require.Equal(t, OK, into.Reset())
	y.Bound = store.GetNode("a2")
	assert.Equal(t, Refresh, into.Consume(g))
}

func TestExpandIntoResetRearms(t *testing.T) {
	store := testStore(t)
	g := chainGraph(t)
	x, y := g.GetNodeByAlias("x"), g.GetNodeByAlias("y")

	into, err := NewExpandInto(store, x, g.Edges[0], y)
	require.NoError(t, err)

	x.Bound = store.GetNode("a1")
	y.Bound = store.GetNode("m1")
	require.Equal(t, OK, into.Consume(g))

	require.Equal(t, OK, into.Reset())
	x.Bound = store.GetNode("a2")
	require.Equal(t, OK, into.Consume(g))
}

func TestExpandConstructorValidation(t *testing.T) {
	store := testStore(t)
	g := chainGraph(t)

	_, err := NewExpandAll(nil, g.GetNodeByAlias("x"), g.Edges[0], g.GetNodeByAlias("y"))
	assert.Error(t, err)
	_, err = NewExpandAll(store, nil, g.Edges[0], g.GetNodeByAlias("y"))
	assert.Error(t, err)
	_, err = NewExpandInto(store, g.GetNodeByAlias("x"), nil, g.GetNodeByAlias("y"))
	assert.Error(t, err)
}
