// Package consolelog logs every drive event through the context logger.
package consolelog

import (
	"context"
	"strings"

	"github.com/vk/roundabout/internal/broadcast"
	"github.com/vk/roundabout/internal/ctxlog"
	"github.com/vk/roundabout/internal/engine"
	"github.com/vk/roundabout/internal/roadgraph"
	"github.com/vk/roundabout/internal/roundabout"
)

// Module implements engine.Module and broadcast.Listener.
type Module struct {
	Layout roundabout.Layout
}

var _ broadcast.Listener = (*Module)(nil)

// Register adds the logger to the navigator's listeners.
func (m *Module) Register(n *engine.Navigator) {
	n.Listeners().Add(m)
}

func (m *Module) info(ctx context.Context, msg string, args ...any) error {
	ctxlog.FromContext(ctx).Info(msg, args...)
	return nil
}

func (m *Module) NavigateToPoint(ctx context.Context, point string) error {
	return m.info(ctx, "Navigating to point.", "point", point)
}

func (m *Module) TakeExit(ctx context.Context, from, on, to string) error {
	return m.info(ctx, "Taking exit.", "from", from, "on", on, "to", to, "instruction", m.Layout.Describe(from, on, to))
}

func (m *Module) SelectTarget(ctx context.Context, target string) error {
	return m.info(ctx, "Target selected.", "target", target)
}

func (m *Module) Start(ctx context.Context) error { return m.info(ctx, "Starting.") }

func (m *Module) EmergencyStop(ctx context.Context) error {
	ctxlog.FromContext(ctx).Warn("Emergency stop.")
	return nil
}

func (m *Module) ScanGraph(ctx context.Context) error { return m.info(ctx, "Scanning graph.") }

func (m *Module) FindPath(ctx context.Context, _ *roadgraph.Graph, from, to string) error {
	return m.info(ctx, "Finding path.", "from", from, "to", to)
}

func (m *Module) FoundPath(ctx context.Context, route roadgraph.Route) error {
	return m.info(ctx, "Path found.", "route", strings.Join(route, " -> "))
}

func (m *Module) ArriveAtDestination(ctx context.Context) error {
	return m.info(ctx, "Arrived at destination.")
}

func (m *Module) CloseToObstacle(ctx context.Context) error {
	ctxlog.FromContext(ctx).Warn("Close to obstacle.")
	return nil
}

func (m *Module) ObstacleCleared(ctx context.Context) error {
	return m.info(ctx, "Obstacle cleared.")
}

func (m *Module) ExitTaken(ctx context.Context) error { return m.info(ctx, "Exit taken.") }

func (m *Module) NavigatedToPoint(ctx context.Context) error {
	return m.info(ctx, "Navigated to point.")
}

func (m *Module) NextNodeBlocked(ctx context.Context, node string) error {
	ctxlog.FromContext(ctx).Warn("Next roundabout is blocked.", "node", node)
	return nil
}

func (m *Module) NextEdgeBlocked(ctx context.Context, a, b string) error {
	ctxlog.FromContext(ctx).Warn("Next road is blocked.", "from", a, "to", b)
	return nil
}
