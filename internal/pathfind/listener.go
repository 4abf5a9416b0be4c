package pathfind

import (
	"context"

	"github.com/vk/roundabout/internal/broadcast"
	"github.com/vk/roundabout/internal/ctxlog"
	"github.com/vk/roundabout/internal/roadgraph"
	"github.com/vk/roundabout/internal/sensor"
)

// Listener answers find-path broadcasts. It computes the route and reports it
// through its own sensor as a path-found event, which the drive engine waits on.
type Listener struct {
	broadcast.Nop
	sensor.Emitter

	Scorer Scorer
}

// NewListener creates a pathfinding listener using scorer.
func NewListener(scorer Scorer) *Listener {
	return &Listener{Scorer: scorer}
}

func (l *Listener) NavigateToPoint(context.Context, string) error        { return nil }
func (l *Listener) TakeExit(context.Context, string, string, string) error { return nil }

// FindPath computes the route and raises path-found. An unreachable target
// is reported as an empty route.
func (l *Listener) FindPath(ctx context.Context, g *roadgraph.Graph, from, to string) error {
	logger := ctxlog.FromContext(ctx)
	res, err := Find(g, from, to, l.Scorer)
	if err != nil {
		return err
	}
	logger.Debug("Route computed.", "from", from, "to", to, "scorer", l.Scorer, "route", res.Route, "cost", res.Cost)
	l.RaisePathFound(res.Route)
	return nil
}
