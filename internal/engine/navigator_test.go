package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/roundabout/internal/broadcast"
	"github.com/vk/roundabout/internal/ctxlog"
	"github.com/vk/roundabout/internal/engine"
	"github.com/vk/roundabout/internal/roadgraph"
	"github.com/vk/roundabout/internal/testutil"
)

func line(t *testing.T) *roadgraph.Graph {
	t.Helper()
	return testutil.Line(t)
}

// harness wires a navigator with a recorder and an auto-confirming sensor.
type harness struct {
	nav    *engine.Navigator
	rec    *testutil.Recorder
	sensor *testutil.AutoSensor
	logs   *testutil.SafeBuffer
}

func newHarness(t *testing.T, g *roadgraph.Graph, mode engine.Mode) *harness {
	t.Helper()
	nav, err := engine.New(g, engine.Config{Start: "START", Mode: mode})
	require.NoError(t, err)
	h := &harness{nav: nav, rec: &testutil.Recorder{}, sensor: &testutil.AutoSensor{}, logs: &testutil.SafeBuffer{}}
	nav.Listeners().Add(h.rec)
	nav.Listeners().Add(h.sensor)
	nav.Sensors().AddSensor(h.sensor)
	return h
}

func (h *harness) ctx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctxlog.WithLogger(ctx, testutil.NewLogger(h.logs))
}

func TestDrive_Oversight_CallOrder(t *testing.T) {
	h := newHarness(t, line(t), engine.ModeOversight)

	require.NoError(t, h.nav.Drive(h.ctx(t), "B"))

	want := []string{
		"select-target(B)",
		"start()",
		"scan-graph()",
		"find-path(START,B)",
		"navigate-to-point(START)",
		"navigated-to-point()",
		"take-exit(-,START,A)",
		"exit-taken()",
		"navigate-to-point(A)",
		"navigated-to-point()",
		"take-exit(START,A,B)",
		"exit-taken()",
		"navigate-to-point(B)",
		"navigated-to-point()",
		"arrive-at-destination()",
	}
	if diff := cmp.Diff(want, h.rec.Events()); diff != "" {
		t.Errorf("listener calls mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, h.nav.Locked())

	st := h.nav.Status()
	assert.Equal(t, engine.Arrived, st.State)
	assert.Equal(t, roadgraph.Route{"START", "A", "B"}, st.Route)
	assert.Equal(t, "B", st.Target)
	assert.Contains(t, h.logs.String(), "Drive session arrived.")
}

func TestDrive_Oversight_UsesKnownClosures(t *testing.T) {
	g := line(t)
	g.AddNode("C")
	require.NoError(t, g.AddEdge("START", "C", 1))
	require.NoError(t, g.AddEdge("C", "B", 1))
	require.NoError(t, g.SetEdgeDisabled("A", "B", true))
	h := newHarness(t, g, engine.ModeOversight)

	require.NoError(t, h.nav.Drive(h.ctx(t), "B"))
	assert.Equal(t, roadgraph.Route{"START", "C", "B"}, h.nav.Status().Route)
	assert.Zero(t, h.rec.Count(broadcast.EventNextEdgeBlocked))
	assert.Zero(t, h.rec.Count(broadcast.EventFoundPath))
}

func TestDrive_Oversight_SingleNodeRoute(t *testing.T) {
	h := newHarness(t, line(t), engine.ModeOversight)

	require.NoError(t, h.nav.Drive(h.ctx(t), "START"))
	assert.Equal(t, []string{
		"navigate-to-point(START)",
		"navigated-to-point()",
		"arrive-at-destination()",
	}, h.rec.Without(broadcast.EventSelectTarget, broadcast.EventStart, broadcast.EventScanGraph, broadcast.EventFindPath))
}

func TestDrive_Oversight_Unreachable(t *testing.T) {
	g := line(t)
	g.AddNode("ISLAND")
	h := newHarness(t, g, engine.ModeOversight)

	err := h.nav.Drive(h.ctx(t), "ISLAND")
	require.ErrorIs(t, err, engine.ErrUnreachable)
	assert.Zero(t, h.rec.Count(broadcast.EventNavigateToPoint))
	assert.False(t, h.nav.Locked())
	assert.Equal(t, engine.Failed, h.nav.Status().State)
}

func TestDrive_Roadsense_EdgeBlockedUnreachable(t *testing.T) {
	g := line(t)
	require.NoError(t, g.SetEdgeDisabled("A", "B", true))
	h := newHarness(t, g, engine.ModeRoadsense)

	err := h.nav.Drive(h.ctx(t), "B")
	require.ErrorIs(t, err, engine.ErrUnreachable)

	events := h.rec.Events()
	assert.Contains(t, events, "next-edge-blocked(A,B)")
	assert.Contains(t, events, "find-path(A,B)")
	assert.NotContains(t, events, "navigate-to-point(B)")
	assert.Equal(t, 2, h.rec.Count(broadcast.EventFindPath))

	// The canonical graph is only read.
	e, err := g.Edge("A", "B")
	require.NoError(t, err)
	assert.True(t, e.Disabled)
	assert.False(t, h.nav.Locked())
}

func TestDrive_Roadsense_Detour(t *testing.T) {
	g := line(t)
	g.AddNode("C")
	require.NoError(t, g.AddEdge("A", "C", 1))
	require.NoError(t, g.AddEdge("C", "B", 1))
	require.NoError(t, g.UpdateEdge("C", "B", 1, true, false))
	require.NoError(t, g.SetEdgeDisabled("A", "B", true))
	h := newHarness(t, g, engine.ModeRoadsense)

	require.NoError(t, h.nav.Drive(h.ctx(t), "B"))

	want := []string{
		"select-target(B)",
		"start()",
		"scan-graph()",
		"find-path(START,B)",
		"found-path(START,A,B)",
		"navigate-to-point(START)",
		"navigated-to-point()",
		"take-exit(-,START,A)",
		"exit-taken()",
		"navigate-to-point(A)",
		"navigated-to-point()",
		"next-edge-blocked(A,B)",
		"find-path(A,B)",
		"found-path(A,C,B)",
		"take-exit(START,A,C)",
		"exit-taken()",
		"navigate-to-point(C)",
		"navigated-to-point()",
		"take-exit(A,C,B)",
		"exit-taken()",
		"navigate-to-point(B)",
		"navigated-to-point()",
		"arrive-at-destination()",
	}
	if diff := cmp.Diff(want, h.rec.Events()); diff != "" {
		t.Errorf("listener calls mismatch (-want +got):\n%s", diff)
	}

	st := h.nav.Status()
	assert.Equal(t, roadgraph.Route{"A", "C", "B"}, st.Route)
	assert.Equal(t, roadgraph.Route{"START"}, st.Fragments)
	assert.Equal(t, roadgraph.Route{"START", "A", "C", "B"}, st.FullRoute)
	// Driven fragment included: 3 roads, two turns at A and C.
	assert.Equal(t, 3.0, st.Distance)
	assert.Equal(t, 3.5, st.Duration)
	assert.Equal(t, 1, st.Obstacles)
}

func TestDrive_Roadsense_NodeBlocked(t *testing.T) {
	g := roadgraph.New()
	for _, n := range []string{"START", "A", "B", "C"} {
		g.AddNode(n)
	}
	require.NoError(t, g.AddEdge("START", "A", 1))
	require.NoError(t, g.AddEdge("A", "B", 1))
	require.NoError(t, g.AddEdge("START", "C", 2))
	require.NoError(t, g.AddEdge("C", "B", 2))
	require.NoError(t, g.SetNodeDisabled("A", true))
	h := newHarness(t, g, engine.ModeRoadsense)

	require.NoError(t, h.nav.Drive(h.ctx(t), "B"))

	events := h.rec.Events()
	assert.Contains(t, events, "next-node-blocked(A)")
	assert.NotContains(t, events, "navigate-to-point(A)")
	// Still at the start field, so the exit is entered from the field again.
	assert.Contains(t, events, "take-exit(-,START,C)")
	assert.Equal(t, roadgraph.Route{"START", "C", "B"}, h.nav.Status().FullRoute)
}

func TestGoTo_Busy(t *testing.T) {
	h := newHarness(t, line(t), engine.ModeOversight)
	h.sensor.MaxNavigations = 1
	ctx := h.ctx(t)

	s, err := h.nav.GoTo(ctx, "B")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return h.nav.Status().State == engine.Navigating && h.rec.Count(broadcast.EventNavigateToPoint) == 2
	}, time.Second, time.Millisecond)
	before := h.nav.Status()

	_, err = h.nav.GoTo(ctx, "A")
	require.ErrorIs(t, err, engine.ErrBusy)
	require.ErrorIs(t, h.nav.Drive(ctx, "A"), engine.ErrBusy)
	require.ErrorIs(t, h.nav.SetMode(engine.ModeRoadsense), engine.ErrBusy)

	after := h.nav.Status()
	assert.Equal(t, before.Session, after.Session)
	assert.Equal(t, "B", after.Target)
	assert.True(t, after.Locked)

	// Confirm the pending navigation by hand and let the session finish.
	h.sensor.SetMaxNavigations(0)
	h.sensor.RaiseTargetReached()
	require.NoError(t, s.Wait(ctx))
	assert.False(t, h.nav.Locked())
}

func TestDrive_DoubleSignalCoalesces(t *testing.T) {
	h := newHarness(t, line(t), engine.ModeOversight)
	h.sensor.Repeat = 2
	h.sensor.MaxNavigations = 1

	// The first navigation is confirmed twice. The second confirmation is
	// absorbed, so the next navigation waits until the deadline.
	ctx, cancel := context.WithTimeout(h.ctx(t), 100*time.Millisecond)
	defer cancel()

	err := h.nav.Drive(ctx, "B")
	require.ErrorIs(t, err, engine.ErrStalled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, h.rec.Count(broadcast.EventNavigatedToPoint))
	assert.False(t, h.nav.Locked())
}

func TestDrive_ListenerFailureReleasesLock(t *testing.T) {
	h := newHarness(t, line(t), engine.ModeOversight)
	boom := errors.New("renderer crashed")
	h.rec.Fail = map[broadcast.Event]error{broadcast.EventTakeExit: boom}

	err := h.nav.Drive(h.ctx(t), "B")
	require.ErrorIs(t, err, boom)
	assert.False(t, h.nav.Locked())
	assert.Zero(t, h.rec.Count(broadcast.EventExitTaken))

	// The navigator accepts a new drive afterwards.
	h.rec.Fail = nil
	require.NoError(t, h.nav.Drive(h.ctx(t), "B"))
}

func TestDrive_ForwardsObstacles(t *testing.T) {
	h := newHarness(t, line(t), engine.ModeOversight)
	h.sensor.ObstacleAt = "A"

	require.NoError(t, h.nav.Drive(h.ctx(t), "B"))
	assert.Equal(t, 1, h.rec.Count(broadcast.EventCloseToObstacle))
	assert.Equal(t, 1, h.rec.Count(broadcast.EventObstacleCleared))
}

func TestDrive_UnknownTarget(t *testing.T) {
	h := newHarness(t, line(t), engine.ModeOversight)
	err := h.nav.Drive(h.ctx(t), "Q")
	require.ErrorIs(t, err, roadgraph.ErrUnknownNode)
	assert.Empty(t, h.rec.Events())
}

func TestNew_Validation(t *testing.T) {
	_, err := engine.New(line(t), engine.Config{Start: "nowhere"})
	require.ErrorIs(t, err, roadgraph.ErrUnknownNode)

	_, err = engine.New(line(t), engine.Config{Start: "START", Mode: "autopilot"})
	require.Error(t, err)

	_, err = engine.New(line(t), engine.Config{Start: "START", SettleDelay: -time.Second})
	require.Error(t, err)

	nav, err := engine.New(line(t), engine.Config{Start: "START"})
	require.NoError(t, err)
	assert.Equal(t, engine.ModeOversight, nav.Mode())
	require.NoError(t, nav.SetMode(engine.ModeRoadsense))
	assert.Equal(t, engine.ModeRoadsense, nav.Mode())
}

func TestSettleDelay_RespectsDeadline(t *testing.T) {
	nav, err := engine.New(line(t), engine.Config{Start: "START", SettleDelay: time.Hour})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, nav.Drive(ctx, "B"), engine.ErrStalled)
}

type moduleFunc func(n *engine.Navigator)

func (f moduleFunc) Register(n *engine.Navigator) { f(n) }

func TestUse_RegistersModules(t *testing.T) {
	nav, err := engine.New(line(t), engine.Config{Start: "START"})
	require.NoError(t, err)
	before := nav.Listeners().Len()

	rec := &testutil.Recorder{}
	nav.Use(moduleFunc(func(n *engine.Navigator) { n.Listeners().Add(rec) }))
	assert.Equal(t, before+1, nav.Listeners().Len())

	require.NoError(t, nav.EmergencyStop(context.Background()))
	assert.Equal(t, []string{"emergency-stop()"}, rec.Events())
}
