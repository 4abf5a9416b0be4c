package sensor

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/roundabout/internal/gate"
	"github.com/vk/roundabout/internal/roadgraph"
)

type attachment struct {
	handle Handle
	source Source
	subs   []Handle
}

// Aggregator merges any number of sensors. Every raw signal is first
// re-emitted to the aggregator's own subscribers and then resolves the gate
// of its kind, so a signal raised before the matching WaitFor is not lost.
type Aggregator struct {
	out Emitter

	mu       sync.Mutex
	attached []attachment
	route    roadgraph.Route

	gates map[Kind]*gate.Gate
}

// NewAggregator creates an aggregator attached to the given sensors.
func NewAggregator(sources ...Source) *Aggregator {
	a := &Aggregator{gates: make(map[Kind]*gate.Gate, len(Kinds))}
	for _, k := range Kinds {
		a.gates[k] = &gate.Gate{}
	}
	for _, src := range sources {
		a.AddSensor(src)
	}
	return a
}

// AddSensor attaches a sensor and returns the handle that detaches it.
func (a *Aggregator) AddSensor(src Source) Handle {
	att := attachment{handle: Handle(uuid.New()), source: src}
	for _, k := range Kinds {
		att.subs = append(att.subs, src.Subscribe(k, a.relay))
	}

	a.mu.Lock()
	a.attached = append(a.attached, att)
	a.mu.Unlock()
	return att.handle
}

// RemoveSensor detaches a sensor. It reports whether the handle was known.
func (a *Aggregator) RemoveSensor(h Handle) bool {
	a.mu.Lock()
	i := slices.IndexFunc(a.attached, func(att attachment) bool { return att.handle == h })
	if i < 0 {
		a.mu.Unlock()
		return false
	}
	att := a.attached[i]
	a.attached = append(a.attached[:i:i], a.attached[i+1:]...)
	a.mu.Unlock()

	for _, sub := range att.subs {
		att.source.Unsubscribe(sub)
	}
	return true
}

// Sensors returns the number of attached sensors.
func (a *Aggregator) Sensors() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.attached)
}

func (a *Aggregator) relay(sig Signal) {
	if sig.Kind == PathFound {
		a.mu.Lock()
		a.route = slices.Clone(sig.Route)
		a.mu.Unlock()
	}
	a.out.Emit(sig)
	a.gates[sig.Kind].Signal()
}

// Subscribe registers fn for re-emitted signals of kind. The aggregator
// itself therefore satisfies Source and can be nested.
func (a *Aggregator) Subscribe(kind Kind, fn func(Signal)) Handle {
	return a.out.Subscribe(kind, fn)
}

// Unsubscribe revokes a Subscribe registration.
func (a *Aggregator) Unsubscribe(h Handle) bool {
	return a.out.Unsubscribe(h)
}

// WaitFor blocks until an event of the given kind has happened since the
// previous WaitFor of that kind.
func (a *Aggregator) WaitFor(ctx context.Context, kind Kind) error {
	g, ok := a.gates[kind]
	if !ok {
		return fmt.Errorf("wait for %s: unknown event kind", kind)
	}
	if err := g.Wait(ctx); err != nil {
		return fmt.Errorf("wait for %s: %w", kind, err)
	}
	return nil
}

func (a *Aggregator) WaitForObstacle(ctx context.Context) error {
	return a.WaitFor(ctx, Obstacle)
}

func (a *Aggregator) WaitForObstacleCleared(ctx context.Context) error {
	return a.WaitFor(ctx, ObstacleCleared)
}

func (a *Aggregator) WaitForTargetReached(ctx context.Context) error {
	return a.WaitFor(ctx, TargetReached)
}

func (a *Aggregator) WaitForTurnCompleted(ctx context.Context) error {
	return a.WaitFor(ctx, TurnCompleted)
}

// WaitForPathFound waits for a path-found event and returns the most recently
// reported route.
func (a *Aggregator) WaitForPathFound(ctx context.Context) (roadgraph.Route, error) {
	if err := a.WaitFor(ctx, PathFound); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.route), nil
}

// Pending reports the gate state of a kind.
func (a *Aggregator) Pending(kind Kind) gate.State {
	return a.gates[kind].State()
}

// Reset discards signals left over from a previous session.
func (a *Aggregator) Reset() {
	for _, g := range a.gates {
		g.Reset()
	}
	a.mu.Lock()
	a.route = nil
	a.mu.Unlock()
}
