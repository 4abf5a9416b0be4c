package sensor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/roundabout/internal/gate"
	"github.com/vk/roundabout/internal/roadgraph"
)

func shortCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	t.Cleanup(cancel)
	return ctx
}

func TestAggregator_SignalBeforeWait(t *testing.T) {
	var src Emitter
	agg := NewAggregator(&src)

	src.RaiseTargetReached()
	assert.Equal(t, gate.Happened, agg.Pending(TargetReached))
	require.NoError(t, agg.WaitForTargetReached(context.Background()))
	assert.Equal(t, gate.Empty, agg.Pending(TargetReached))
}

func TestAggregator_WaitBeforeSignal(t *testing.T) {
	var src Emitter
	agg := NewAggregator(&src)

	done := make(chan error, 1)
	go func() { done <- agg.WaitForTurnCompleted(context.Background()) }()
	require.Eventually(t, func() bool { return agg.Pending(TurnCompleted) == gate.Waiting }, time.Second, time.Millisecond)

	src.RaiseTurnCompleted()
	require.NoError(t, <-done)
}

func TestAggregator_KindsAreIndependent(t *testing.T) {
	var src Emitter
	agg := NewAggregator(&src)

	src.RaiseTurnCompleted()
	err := agg.WaitForTargetReached(shortCtx(t))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, agg.WaitForTurnCompleted(context.Background()))
}

func TestAggregator_ReEmitsBeforeResolving(t *testing.T) {
	var src Emitter
	agg := NewAggregator(&src)

	var stateAtReEmit gate.State
	agg.Subscribe(Obstacle, func(Signal) {
		stateAtReEmit = agg.Pending(Obstacle)
	})

	src.RaiseObstacle()
	assert.Equal(t, gate.Empty, stateAtReEmit)
	assert.Equal(t, gate.Happened, agg.Pending(Obstacle))
	require.NoError(t, agg.WaitForObstacle(context.Background()))
}

func TestAggregator_ManySources(t *testing.T) {
	var a, b Emitter
	agg := NewAggregator(&a)
	agg.AddSensor(&b)
	assert.Equal(t, 2, agg.Sensors())

	b.RaiseObstacleCleared()
	require.NoError(t, agg.WaitForObstacleCleared(context.Background()))
	a.RaiseObstacleCleared()
	require.NoError(t, agg.WaitForObstacleCleared(context.Background()))
}

func TestAggregator_RemoveSensor(t *testing.T) {
	var src Emitter
	agg := NewAggregator()
	h := agg.AddSensor(&src)

	require.True(t, agg.RemoveSensor(h))
	require.False(t, agg.RemoveSensor(h))

	src.RaiseTargetReached()
	assert.Equal(t, gate.Empty, agg.Pending(TargetReached))
	assert.Empty(t, src.subs)
}

func TestAggregator_PathFoundCarriesRoute(t *testing.T) {
	var src Emitter
	agg := NewAggregator(&src)

	var seen roadgraph.Route
	agg.Subscribe(PathFound, func(sig Signal) { seen = sig.Route })

	src.RaisePathFound(roadgraph.Route{"START", "X", "A"})
	src.RaisePathFound(roadgraph.Route{"START", "W", "A"})

	route, err := agg.WaitForPathFound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, roadgraph.Route{"START", "W", "A"}, route)
	assert.Equal(t, route, seen)
}

func TestAggregator_Reset(t *testing.T) {
	var src Emitter
	agg := NewAggregator(&src)
	src.RaiseTargetReached()
	src.RaisePathFound(roadgraph.Route{"A"})

	agg.Reset()
	assert.Equal(t, gate.Empty, agg.Pending(TargetReached))
	assert.Equal(t, gate.Empty, agg.Pending(PathFound))
}

func TestAggregator_Nested(t *testing.T) {
	var src Emitter
	inner := NewAggregator(&src)
	outer := NewAggregator(inner)

	src.RaiseTurnCompleted()
	require.NoError(t, outer.WaitForTurnCompleted(context.Background()))
}

func TestEmitter_Unsubscribe(t *testing.T) {
	var e Emitter
	calls := 0
	h := e.Subscribe(TargetReached, func(Signal) { calls++ })
	e.RaiseTargetReached()
	require.True(t, e.Unsubscribe(h))
	e.RaiseTargetReached()
	assert.Equal(t, 1, calls)
}
