// Package gate provides a one-shot wait/signal primitive for edge-triggered
// events that may fire before anyone is waiting for them.
//
// A Gate is in one of three states:
//
//	Empty     --Signal-->  Happened
//	Empty     --Wait---->  Waiting
//	Waiting   --Signal-->  Empty     (the waiter is released)
//	Happened  --Signal-->  Happened  (signals coalesce, they are not queued)
//	Happened  --Wait---->  Empty     (returns immediately)
//
// A gate holds at most one waiter; it is meant to be owned by a single
// consumer per event kind.
package gate

import (
	"context"
	"errors"
	"sync"
)

// ErrWaiterPresent is returned by Wait when another goroutine is already
// waiting on the same gate.
var ErrWaiterPresent = errors.New("gate already has a waiter")

// State is the observable state of a Gate.
type State int

const (
	Empty State = iota
	Waiting
	Happened
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Waiting:
		return "waiting"
	case Happened:
		return "happened"
	default:
		return "unknown"
	}
}

// Gate is a one-shot event gate. The zero value is an Empty gate.
type Gate struct {
	mu       sync.Mutex
	happened bool
	waiter   chan struct{}
}

// Signal records that the event happened, waking the waiter if there is one.
func (g *Gate) Signal() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.waiter != nil {
		close(g.waiter)
		g.waiter = nil
		return
	}
	g.happened = true
}

// Wait blocks until the event has happened, consuming it. If the event was
// already signalled, Wait returns immediately.
//
// Wait returns ctx.Err() if the context ends first. A signal that arrives
// concurrently with the cancellation is still reported as delivered.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	if g.happened {
		g.happened = false
		g.mu.Unlock()
		return nil
	}
	if g.waiter != nil {
		g.mu.Unlock()
		return ErrWaiterPresent
	}
	ch := make(chan struct{})
	g.waiter = ch
	g.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.waiter != ch {
			// Signal closed our channel between ctx.Done and the lock.
			return nil
		}
		g.waiter = nil
		return ctx.Err()
	}
}

// State returns the current state of the gate.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case g.waiter != nil:
		return Waiting
	case g.happened:
		return Happened
	default:
		return Empty
	}
}

// Reset discards a pending signal. It does not release a waiter.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.happened = false
	g.mu.Unlock()
}
