package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/roundabout/internal/ctxlog"
	"github.com/vk/roundabout/internal/roadgraph"
	"github.com/vk/roundabout/internal/sensor"
)

// drive holds the per-session step helpers shared by both modes.
type drive struct {
	n      *Navigator
	target string
}

// stalled maps an expired wait onto ErrStalled.
func stalled(kind sensor.Kind, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: no %s signal: %w", ErrStalled, kind, err)
	}
	return err
}

// prepare announces the target and lets listeners inspect the graph.
func (d *drive) prepare(ctx context.Context) error {
	l := d.n.listeners
	if err := l.SelectTarget(ctx, d.target); err != nil {
		return err
	}
	d.n.setState(TargetSelected)
	if err := l.Start(ctx); err != nil {
		return err
	}
	d.n.setState(Started)
	if err := l.ScanGraph(ctx); err != nil {
		return err
	}
	d.n.setState(GraphScanned)

	if delay := d.n.cfg.SettleDelay; delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return stalled(sensor.PathFound, ctx.Err())
		}
	}
	return nil
}

// requestRoute asks the pathfinder for a route over g and waits for it. An
// empty route fails with ErrUnreachable. With announce set the route is also
// broadcast as found-path.
func (d *drive) requestRoute(ctx context.Context, g *roadgraph.Graph, from string, announce bool) (roadgraph.Route, error) {
	d.n.setState(RouteRequested)
	if err := d.n.listeners.FindPath(ctx, g, from, d.target); err != nil {
		return nil, err
	}
	route, err := d.n.sensors.WaitForPathFound(ctx)
	if err != nil {
		return nil, stalled(sensor.PathFound, err)
	}
	if len(route) == 0 {
		return nil, fmt.Errorf("no route from %s to %s: %w", from, d.target, ErrUnreachable)
	}
	ctxlog.FromContext(ctx).Info("Route planned.", "from", from, "route", route)
	d.n.setRoute(route)
	d.n.setState(RouteFound)

	if announce {
		if err := d.n.listeners.FoundPath(ctx, route); err != nil {
			return nil, err
		}
	}
	return route, nil
}

// navigateTo drives to a roundabout and waits until the sensors confirm it.
func (d *drive) navigateTo(ctx context.Context, point string) error {
	d.n.setState(Navigating)
	if err := d.n.listeners.NavigateToPoint(ctx, point); err != nil {
		return err
	}
	if err := d.n.sensors.WaitForTargetReached(ctx); err != nil {
		return stalled(sensor.TargetReached, err)
	}
	return d.n.listeners.NavigatedToPoint(ctx)
}

// takeExit leaves roundabout on towards to, having entered from from. An
// empty from means entering from the starting field.
func (d *drive) takeExit(ctx context.Context, from, on, to string) error {
	d.n.setState(Turning)
	if err := d.n.listeners.TakeExit(ctx, from, on, to); err != nil {
		return err
	}
	if err := d.n.sensors.WaitForTurnCompleted(ctx); err != nil {
		return stalled(sensor.TurnCompleted, err)
	}
	return d.n.listeners.ExitTaken(ctx)
}

func (d *drive) arrive(ctx context.Context) error {
	return d.n.listeners.ArriveAtDestination(ctx)
}
