package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/roundabout/internal/roadgraph"
)

// Line builds the graph START - A - B with unit weights.
func Line(t *testing.T) *roadgraph.Graph {
	t.Helper()
	g := roadgraph.New()
	for _, n := range []string{"START", "A", "B"} {
		g.AddNode(n)
	}
	require.NoError(t, g.AddEdge("START", "A", 1))
	require.NoError(t, g.AddEdge("A", "B", 1))
	return g
}
