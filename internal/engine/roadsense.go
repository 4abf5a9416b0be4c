package engine

import (
	"context"
	"fmt"

	"github.com/vk/roundabout/internal/ctxlog"
	"github.com/vk/roundabout/internal/roadgraph"
)

// roadsense drives on a belief graph that starts without any closures. Before
// each hop the canonical graph is consulted; a closure ahead is learned into
// the belief and the rest of the route is replanned from where the vehicle
// stands.
func (d *drive) roadsense(ctx context.Context) error {
	if err := d.prepare(ctx); err != nil {
		return err
	}
	actual := d.n.graph
	belief := actual.Copy()
	// Each replan learns at least one new closure, so this bounds the loop.
	budget := len(belief.Nodes()) + len(belief.Links())

	route, err := d.requestRoute(ctx, belief, d.n.cfg.Start, true)
	if err != nil {
		return err
	}
	if err := d.navigateTo(ctx, route[0]); err != nil {
		return err
	}

	prev, pos := "", 0
	for pos < len(route)-1 {
		on, next := route[pos], route[pos+1]
		blocked, err := d.lookAhead(ctx, actual, belief, on, next)
		if err != nil {
			return err
		}
		if blocked {
			if budget == 0 {
				return fmt.Errorf("gave up replanning at %s: %w", on, ErrUnreachable)
			}
			budget--
			d.n.addFragment(route[:pos])
			if route, err = d.requestRoute(ctx, belief, on, true); err != nil {
				return err
			}
			pos = 0
			continue
		}

		if err := d.takeExit(ctx, prev, on, next); err != nil {
			return err
		}
		if err := d.navigateTo(ctx, next); err != nil {
			return err
		}
		prev = on
		pos++
	}
	return d.arrive(ctx)
}

// lookAhead checks the hop on->next against the canonical graph. A closed
// roundabout takes precedence over a closed road.
func (d *drive) lookAhead(ctx context.Context, actual, belief *roadgraph.Graph, on, next string) (bool, error) {
	logger := ctxlog.FromContext(ctx)
	if actual.NodeDisabled(next) {
		logger.Info("Roundabout ahead is closed.", "node", next)
		if err := belief.SetNodeDisabled(next, true); err != nil {
			return false, err
		}
		return true, d.n.listeners.NextNodeBlocked(ctx, next)
	}

	edge, err := actual.Edge(on, next)
	if err != nil {
		return false, err
	}
	if edge.Disabled {
		logger.Info("Road ahead is closed.", "from", on, "to", next)
		if err := belief.SetEdgeDisabled(on, next, true); err != nil {
			return false, err
		}
		return true, d.n.listeners.NextEdgeBlocked(ctx, on, next)
	}
	return false, nil
}
