package netconfig

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/roundabout/internal/pathfind"
	"github.com/vk/roundabout/internal/roadgraph"
	"github.com/vk/roundabout/internal/testutil"
)

func load(t *testing.T, src string) (*Network, error) {
	t.Helper()
	return NewLoader().LoadBytes(context.Background(), "test.hcl", []byte(testutil.Unindent(src)))
}

func TestDefault(t *testing.T) {
	net, err := Default(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "START", net.Start)
	assert.Equal(t, []string{"START", "W", "X", "Y", "Z", "A", "B", "C"}, net.Graph.Nodes())
	assert.Len(t, net.Graph.Links(), 15)
	assert.Len(t, net.Layout, 8)

	e, err := net.Graph.Edge("Y", "A")
	require.NoError(t, err)
	assert.Equal(t, 1.5, e.Weight)

	assert.Equal(t, roadgraph.DefaultRandomConfig().PObstacle, net.Random.PObstacle)
	assert.Equal(t, []string{"START"}, net.Random.Protected)
	assert.Equal(t, "oversight", net.Drive.Mode)

	// Every roundabout can be reached from the start field.
	for _, n := range net.Graph.Nodes() {
		route, err := pathfind.FindRoute(net.Graph, net.Start, n, pathfind.Penalized)
		require.NoError(t, err)
		assert.NotEmpty(t, route, n)
	}
}

func TestDefault_ReturnsIndependentGraphs(t *testing.T) {
	a, err := Default(context.Background())
	require.NoError(t, err)
	b, err := Default(context.Background())
	require.NoError(t, err)

	require.NoError(t, a.Graph.SetEdgeDisabled("A", "B", true))
	e, err := b.Graph.Edge("A", "B")
	require.NoError(t, err)
	assert.False(t, e.Disabled)
}

func TestLoad_FlagsAndExpressions(t *testing.T) {
	net, err := load(t, `
		start = "S"

		node "S" {}
		node "M" { disabled = true }
		node "T" { exits = ["M", "S"] }

		edge "S" "M" { weight = node_penalty / 2 }
		edge "M" "T" {
		  weight     = 1
		  obstructed = true
		}
		edge "S" "T" {
		  weight   = 3
		  disabled = true
		}
		node "U" {}
		edge "T" "U" {}

		drive {
		  mode         = "roadsense"
		  settle_delay = "250ms"
		}
	`)
	require.NoError(t, err)

	e, err := net.Graph.Edge("M", "S")
	require.NoError(t, err)
	assert.Equal(t, roadgraph.NodePenalty/2, e.Weight)

	e, err = net.Graph.Edge("T", "M")
	require.NoError(t, err)
	assert.True(t, e.Obstructed)

	e, err = net.Graph.Edge("S", "T")
	require.NoError(t, err)
	assert.True(t, e.Disabled)

	e, err = net.Graph.Edge("U", "T")
	require.NoError(t, err)
	assert.Equal(t, 1.0, e.Weight, "weight defaults to 1")

	assert.True(t, net.Graph.NodeDisabled("M"))
	assert.Equal(t, []string{"M", "S"}, net.Layout["T"])
	assert.Equal(t, Drive{Mode: "roadsense", SettleDelay: 250 * time.Millisecond}, net.Drive)
}

func TestLoad_Randomizer(t *testing.T) {
	net, err := load(t, `
		start = "S"
		node "S" {}
		randomizer {
		  p_obstacle = 0
		  max_weight = 5
		}
	`)
	require.NoError(t, err)

	want := roadgraph.DefaultRandomConfig()
	want.PObstacle = 0
	want.MaxWeight = 5
	want.Protected = []string{"S"}
	if diff := cmp.Diff(want, net.Random); diff != "" {
		t.Errorf("randomizer mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name        string
		src         string
		errContains string
	}{
		{
			name:        "unknown node in edge",
			src:         `start = "S"` + "\n" + `node "S" {}` + "\n" + `edge "S" "Q" { weight = 1 }`,
			errContains: `edge "S" "Q"`,
		},
		{
			name:        "missing start",
			src:         `node "S" {}`,
			errContains: "no start node",
		},
		{
			name:        "unknown start",
			src:         `start = "Q"` + "\n" + `node "S" {}`,
			errContains: `start "Q"`,
		},
		{
			name:        "duplicate edge",
			src:         `start = "S"` + "\n" + `node "S" {}` + "\n" + `node "T" {}` + "\n" + `edge "S" "T" { weight = 1 }` + "\n" + `edge "T" "S" { weight = 2 }`,
			errContains: "already exists",
		},
		{
			name:        "negative weight",
			src:         `start = "S"` + "\n" + `node "S" {}` + "\n" + `node "T" {}` + "\n" + `edge "S" "T" { weight = -1 }`,
			errContains: "negative",
		},
		{
			name:        "exit is not a neighbour",
			src:         `start = "S"` + "\n" + `node "S" { exits = ["T"] }` + "\n" + `node "T" {}`,
			errContains: "not a neighbour",
		},
		{
			name:        "duplicate node",
			src:         `start = "S"` + "\n" + `node "S" {}` + "\n" + `node "S" {}`,
			errContains: "more than once",
		},
		{
			name:        "unknown attribute",
			src:         `start = "S"` + "\n" + `speed_limit = 3` + "\n" + `node "S" {}`,
			errContains: "speed_limit",
		},
		{
			name:        "bad settle delay",
			src:         `start = "S"` + "\n" + `node "S" {}` + "\n" + `drive { settle_delay = "soon" }`,
			errContains: "settle_delay",
		},
		{
			name:        "bad probability",
			src:         `start = "S"` + "\n" + `node "S" {}` + "\n" + `randomizer { p_obstacle = 2 }`,
			errContains: "p_obstacle",
		},
		{
			name:        "syntax",
			src:         `start = `,
			errContains: "failed to parse",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, tc.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(testutil.Unindent(src)), 0o644))
	}
	write("nodes.hcl", `
		start = "S"
		node "S" {}
		node "T" {}
	`)
	// Edges may join nodes declared in another file.
	write("roads/edges.hcl", `
		edge "S" "T" { weight = 2 }
	`)
	write("README.md", "not a network file")

	net, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	e, err := net.Graph.Edge("T", "S")
	require.NoError(t, err)
	assert.Equal(t, 2.0, e.Weight)

	_, err = NewLoader().Load(context.Background(), filepath.Join(dir, "README.md"))
	require.ErrorIs(t, err, ErrNoFiles)

	_, err = NewLoader().Load(context.Background(), filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestWrite_ReloadsToSameNetwork(t *testing.T) {
	net, err := Default(context.Background())
	require.NoError(t, err)
	require.NoError(t, net.Graph.UpdateEdge("A", "B", 2.25, true, false))
	require.NoError(t, net.Graph.SetEdgeDisabled("X", "Y", true))
	require.NoError(t, net.Graph.SetNodeDisabled("C", true))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, net))
	assert.Contains(t, buf.String(), `edge "A" "B"`)

	again, err := NewLoader().LoadBytes(context.Background(), "export.hcl", buf.Bytes())
	require.NoError(t, err, buf.String())

	assert.Equal(t, net.Start, again.Start)
	assert.Equal(t, net.Graph.Nodes(), again.Graph.Nodes())
	assert.Equal(t, net.Graph.DisabledNodes(), again.Graph.DisabledNodes())
	if diff := cmp.Diff(net.Graph.Links(), again.Graph.Links()); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(net.Layout, again.Layout); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, net.Random, again.Random)
	assert.Equal(t, net.Drive, again.Drive)
}
