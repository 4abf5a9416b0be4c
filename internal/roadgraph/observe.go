package roadgraph

import (
	"sync"

	"github.com/google/uuid"
)

// Handle identifies a registered change observer.
type Handle uuid.UUID

// String returns the handle in canonical UUID form.
func (h Handle) String() string { return uuid.UUID(h).String() }

type observer struct {
	handle Handle
	fn     func()
}

// observers is a small registry of "graph changed" callbacks. Callbacks run
// after the graph lock has been released so they may read the graph.
type observers struct {
	mu   sync.Mutex
	list []observer
}

func (o *observers) add(fn func()) Handle {
	h := Handle(uuid.New())
	o.mu.Lock()
	o.list = append(o.list, observer{handle: h, fn: fn})
	o.mu.Unlock()
	return h
}

func (o *observers) remove(h Handle) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, ob := range o.list {
		if ob.handle == h {
			o.list = append(o.list[:i:i], o.list[i+1:]...)
			return true
		}
	}
	return false
}

func (o *observers) notify() {
	o.mu.Lock()
	snapshot := make([]observer, len(o.list))
	copy(snapshot, o.list)
	o.mu.Unlock()

	for _, ob := range snapshot {
		ob.fn()
	}
}

// OnChange registers fn to be called after every mutation that changes edge
// or node state. Topology additions during construction do not notify.
func (g *Graph) OnChange(fn func()) Handle {
	return g.observers.add(fn)
}

// RemoveObserver revokes a registration made with OnChange.
func (g *Graph) RemoveObserver(h Handle) bool {
	return g.observers.remove(h)
}
