package broadcast

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/roundabout/internal/ctxlog"
	"github.com/vk/roundabout/internal/roadgraph"
	"golang.org/x/sync/errgroup"
)

// Handle identifies one registration in a Registry.
type Handle uuid.UUID

// String returns the handle in canonical UUID form.
func (h Handle) String() string { return uuid.UUID(h).String() }

type entry struct {
	handle   Handle
	listener Listener
}

// Registry is an ordered, thread-safe collection of listeners.
//
// Listeners may be added or removed at any time. A call works on the snapshot
// taken when it started, so removing a listener does not affect a broadcast
// that is already in flight.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Add registers a listener and returns the handle that revokes it. The same
// listener may be registered more than once; each registration is distinct.
func (r *Registry) Add(l Listener) Handle {
	h := Handle(uuid.New())
	r.mu.Lock()
	r.entries = append(r.entries, entry{handle: h, listener: l})
	r.mu.Unlock()
	return h
}

// Remove revokes a registration. It reports whether the handle was known.
func (r *Registry) Remove(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.handle == h {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) snapshot() []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Call invokes fn for every registered listener concurrently and waits for
// all of them. The first failure cancels the context handed to the remaining
// handlers and is returned once every handler has finished.
func (r *Registry) Call(ctx context.Context, ev Event, fn func(ctx context.Context, l Listener) error) error {
	entries := r.snapshot()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Broadcasting event.", "event", ev, "listeners", len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		g.Go(func() error {
			if err := fn(gctx, e.listener); err != nil {
				return fmt.Errorf("listener %s failed on %s: %w", e.handle, ev, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Broadcast failed.", "event", ev, "error", err)
		return err
	}
	return nil
}

// NavigateToPoint broadcasts navigate-to-point to every listener.
func (r *Registry) NavigateToPoint(ctx context.Context, point string) error {
	return r.Call(ctx, EventNavigateToPoint, func(ctx context.Context, l Listener) error {
		return l.NavigateToPoint(ctx, point)
	})
}

// TakeExit broadcasts take-exit to every listener. from is empty when the
// vehicle leaves its start field.
func (r *Registry) TakeExit(ctx context.Context, from, on, to string) error {
	return r.Call(ctx, EventTakeExit, func(ctx context.Context, l Listener) error {
		return l.TakeExit(ctx, from, on, to)
	})
}

// SelectTarget broadcasts select-target to every listener.
func (r *Registry) SelectTarget(ctx context.Context, target string) error {
	return r.Call(ctx, EventSelectTarget, func(ctx context.Context, l Listener) error {
		return l.SelectTarget(ctx, target)
	})
}

// Start broadcasts start to every listener.
func (r *Registry) Start(ctx context.Context) error {
	return r.Call(ctx, EventStart, func(ctx context.Context, l Listener) error {
		return l.Start(ctx)
	})
}

// EmergencyStop broadcasts emergency-stop to every listener.
func (r *Registry) EmergencyStop(ctx context.Context) error {
	return r.Call(ctx, EventEmergencyStop, func(ctx context.Context, l Listener) error {
		return l.EmergencyStop(ctx)
	})
}

// ScanGraph broadcasts scan-graph to every listener.
func (r *Registry) ScanGraph(ctx context.Context) error {
	return r.Call(ctx, EventScanGraph, func(ctx context.Context, l Listener) error {
		return l.ScanGraph(ctx)
	})
}

// FindPath asks every listener for a route from from to to on graph.
func (r *Registry) FindPath(ctx context.Context, graph *roadgraph.Graph, from, to string) error {
	return r.Call(ctx, EventFindPath, func(ctx context.Context, l Listener) error {
		return l.FindPath(ctx, graph, from, to)
	})
}

// FoundPath broadcasts found-path to every listener.
func (r *Registry) FoundPath(ctx context.Context, route roadgraph.Route) error {
	return r.Call(ctx, EventFoundPath, func(ctx context.Context, l Listener) error {
		return l.FoundPath(ctx, route)
	})
}

// ArriveAtDestination broadcasts arrive-at-destination to every listener.
func (r *Registry) ArriveAtDestination(ctx context.Context) error {
	return r.Call(ctx, EventArriveAtDestination, func(ctx context.Context, l Listener) error {
		return l.ArriveAtDestination(ctx)
	})
}

// CloseToObstacle broadcasts close-to-obstacle to every listener.
func (r *Registry) CloseToObstacle(ctx context.Context) error {
	return r.Call(ctx, EventCloseToObstacle, func(ctx context.Context, l Listener) error {
		return l.CloseToObstacle(ctx)
	})
}

// ObstacleCleared broadcasts obstacle-cleared to every listener.
func (r *Registry) ObstacleCleared(ctx context.Context) error {
	return r.Call(ctx, EventObstacleCleared, func(ctx context.Context, l Listener) error {
		return l.ObstacleCleared(ctx)
	})
}

// ExitTaken broadcasts exit-taken to every listener.
func (r *Registry) ExitTaken(ctx context.Context) error {
	return r.Call(ctx, EventExitTaken, func(ctx context.Context, l Listener) error {
		return l.ExitTaken(ctx)
	})
}

// NavigatedToPoint broadcasts navigated-to-point to every listener.
func (r *Registry) NavigatedToPoint(ctx context.Context) error {
	return r.Call(ctx, EventNavigatedToPoint, func(ctx context.Context, l Listener) error {
		return l.NavigatedToPoint(ctx)
	})
}

// NextNodeBlocked broadcasts next-node-blocked to every listener.
func (r *Registry) NextNodeBlocked(ctx context.Context, node string) error {
	return r.Call(ctx, EventNextNodeBlocked, func(ctx context.Context, l Listener) error {
		return l.NextNodeBlocked(ctx, node)
	})
}

// NextEdgeBlocked broadcasts next-edge-blocked to every listener.
func (r *Registry) NextEdgeBlocked(ctx context.Context, a, b string) error {
	return r.Call(ctx, EventNextEdgeBlocked, func(ctx context.Context, l Listener) error {
		return l.NextEdgeBlocked(ctx, a, b)
	})
}
