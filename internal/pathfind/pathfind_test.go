package pathfind

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/roundabout/internal/roadgraph"
	"github.com/vk/roundabout/internal/sensor"
)

func cycle(t *testing.T) *roadgraph.Graph {
	t.Helper()
	g := roadgraph.New()
	for _, n := range []string{"A", "B", "C", "D"} {
		g.AddNode(n)
	}
	require.NoError(t, g.AddEdge("A", "B", 1))
	require.NoError(t, g.AddEdge("B", "C", 1))
	require.NoError(t, g.AddEdge("C", "D", 1))
	require.NoError(t, g.AddEdge("D", "A", 1))
	return g
}

func TestFind_Cycle(t *testing.T) {
	g := cycle(t)

	penalized, err := Find(g, "A", "C", Penalized)
	require.NoError(t, err)
	assert.Len(t, penalized.Route, 3)
	assert.Equal(t, 2+1*roadgraph.NodePenalty, penalized.Cost)

	plain, err := Find(g, "A", "C", Plain)
	require.NoError(t, err)
	assert.Len(t, plain.Route, 3)
	assert.Equal(t, 2.0, plain.Cost)

	// Equal-cost alternatives resolve in discovery order.
	if diff := cmp.Diff(roadgraph.Route{"A", "B", "C"}, plain.Route); diff != "" {
		t.Errorf("route mismatch (-want +got):\n%s", diff)
	}
}

func TestFind_DisabledEdgeForcesDetour(t *testing.T) {
	g := cycle(t)
	require.NoError(t, g.UpdateEdge("A", "B", 1, false, true))

	for _, scorer := range []Scorer{Plain, Penalized} {
		route, err := FindRoute(g, "A", "C", scorer)
		require.NoError(t, err)
		assert.Equal(t, roadgraph.Route{"A", "D", "C"}, route, scorer.String())
	}
}

func TestFind_ObstructionIsAvoidedWhenCheaper(t *testing.T) {
	g := cycle(t)
	require.NoError(t, g.UpdateEdge("B", "C", 1, true, false))

	res, err := Find(g, "A", "C", Plain)
	require.NoError(t, err)
	assert.Equal(t, roadgraph.Route{"A", "D", "C"}, res.Route)
	assert.Equal(t, 2.0, res.Cost)
}

func TestFind_PenaltyPrefersFewerTurns(t *testing.T) {
	g := roadgraph.New()
	for _, n := range []string{"S", "M1", "M2", "M3", "T"} {
		g.AddNode(n)
	}
	// Long direct road versus a short road through three roundabouts.
	require.NoError(t, g.AddEdge("S", "T", 6))
	require.NoError(t, g.AddEdge("S", "M1", 1))
	require.NoError(t, g.AddEdge("M1", "M2", 1))
	require.NoError(t, g.AddEdge("M2", "M3", 1))
	require.NoError(t, g.AddEdge("M3", "T", 1))

	plain, err := FindRoute(g, "S", "T", Plain)
	require.NoError(t, err)
	assert.Equal(t, roadgraph.Route{"S", "M1", "M2", "M3", "T"}, plain)

	penalized, err := FindRoute(g, "S", "T", Penalized)
	require.NoError(t, err)
	assert.Equal(t, roadgraph.Route{"S", "T"}, penalized)
}

func TestFind_Unreachable(t *testing.T) {
	g := cycle(t)
	g.AddNode("ISLAND")

	res, err := Find(g, "A", "ISLAND", Penalized)
	require.NoError(t, err)
	assert.False(t, res.Reachable())
	assert.Empty(t, res.Route)

	require.NoError(t, g.ToggleNode("C"))
	route, err := FindRoute(g, "A", "C", Plain)
	require.NoError(t, err)
	assert.Empty(t, route)
}

func TestFind_UnknownNode(t *testing.T) {
	g := cycle(t)
	_, err := Find(g, "A", "nowhere", Plain)
	assert.ErrorIs(t, err, roadgraph.ErrUnknownNode)
	_, err = Find(g, "nowhere", "A", Plain)
	assert.ErrorIs(t, err, roadgraph.ErrUnknownNode)
}

func TestFind_SameNode(t *testing.T) {
	g := cycle(t)
	route, err := FindRoute(g, "B", "B", Penalized)
	require.NoError(t, err)
	assert.Equal(t, roadgraph.Route{"B"}, route)
}

func TestParseScorer(t *testing.T) {
	s, err := ParseScorer("plain")
	require.NoError(t, err)
	assert.Equal(t, Plain, s)

	s, err = ParseScorer("")
	require.NoError(t, err)
	assert.Equal(t, Penalized, s)

	_, err = ParseScorer("astar")
	assert.Error(t, err)
}

func TestListener_RaisesPathFound(t *testing.T) {
	g := cycle(t)
	l := NewListener(Plain)
	agg := sensor.NewAggregator(l)

	require.NoError(t, l.FindPath(context.Background(), g, "A", "C"))

	route, err := agg.WaitForPathFound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, roadgraph.Route{"A", "B", "C"}, route)
}
