// Package sensor defines the sensor capability the drive engine waits on and
// the Aggregator that merges many sensors behind one set of event gates.
package sensor

import (
	"sync"

	"github.com/google/uuid"
	"github.com/vk/roundabout/internal/roadgraph"
)

// Kind is a sensor event kind.
type Kind int

const (
	Obstacle Kind = iota
	ObstacleCleared
	TargetReached
	TurnCompleted
	PathFound
)

// Kinds lists every event kind.
var Kinds = []Kind{Obstacle, ObstacleCleared, TargetReached, TurnCompleted, PathFound}

func (k Kind) String() string {
	switch k {
	case Obstacle:
		return "obstacle"
	case ObstacleCleared:
		return "obstacle-cleared"
	case TargetReached:
		return "target-reached"
	case TurnCompleted:
		return "turn-completed"
	case PathFound:
		return "path-found"
	default:
		return "unknown"
	}
}

// Signal is one raised sensor event. Route is only set for PathFound.
type Signal struct {
	Kind  Kind
	Route roadgraph.Route
}

// Handle identifies a subscription or an attached sensor.
type Handle uuid.UUID

// String returns the handle in canonical UUID form.
func (h Handle) String() string { return uuid.UUID(h).String() }

// Source is the sensor capability: callers subscribe to event kinds and
// revoke subscriptions through the returned handle.
type Source interface {
	Subscribe(kind Kind, fn func(Signal)) Handle
	Unsubscribe(h Handle) bool
}

type subscription struct {
	handle Handle
	kind   Kind
	fn     func(Signal)
}

// Emitter is a ready-made Source. Sensors embed it and call its raise
// methods; callbacks run synchronously on the raising goroutine.
type Emitter struct {
	mu   sync.RWMutex
	subs []subscription
}

// Subscribe implements Source.
func (e *Emitter) Subscribe(kind Kind, fn func(Signal)) Handle {
	h := Handle(uuid.New())
	e.mu.Lock()
	e.subs = append(e.subs, subscription{handle: h, kind: kind, fn: fn})
	e.mu.Unlock()
	return h
}

// Unsubscribe implements Source.
func (e *Emitter) Unsubscribe(h Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.subs {
		if s.handle == h {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Emit delivers sig to every subscriber of its kind.
func (e *Emitter) Emit(sig Signal) {
	e.mu.RLock()
	var targets []func(Signal)
	for _, s := range e.subs {
		if s.kind == sig.Kind {
			targets = append(targets, s.fn)
		}
	}
	e.mu.RUnlock()

	for _, fn := range targets {
		fn(sig)
	}
}

// The Raise methods are named so that a type can embed both an Emitter and
// broadcast.Nop without the event handlers and the raisers colliding.

func (e *Emitter) RaiseObstacle()        { e.Emit(Signal{Kind: Obstacle}) }
func (e *Emitter) RaiseObstacleCleared() { e.Emit(Signal{Kind: ObstacleCleared}) }
func (e *Emitter) RaiseTargetReached()   { e.Emit(Signal{Kind: TargetReached}) }
func (e *Emitter) RaiseTurnCompleted()   { e.Emit(Signal{Kind: TurnCompleted}) }

// RaisePathFound raises a path-found event carrying route.
func (e *Emitter) RaisePathFound(route roadgraph.Route) {
	e.Emit(Signal{Kind: PathFound, Route: route})
}
