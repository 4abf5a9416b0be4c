package roadgraph

import (
	"fmt"
	"slices"
	"sync"
)

// Route is an ordered sequence of node names, origin first.
type Route []string

// Origin returns the first node of the route, or "" for an empty route.
func (r Route) Origin() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// Destination returns the last node of the route, or "" for an empty route.
func (r Route) Destination() string {
	if len(r) == 0 {
		return ""
	}
	return r[len(r)-1]
}

// Edge is one directional adjacency record.
type Edge struct {
	To         string
	Weight     float64
	Obstructed bool
	Disabled   bool
}

// EffectiveWeight returns the routing cost of the record.
func (e Edge) EffectiveWeight() float64 {
	switch {
	case e.Disabled:
		return inf
	case e.Obstructed:
		return e.Weight + ObstaclePenalty
	default:
		return e.Weight
	}
}

// Link describes an undirected edge by both of its endpoints.
type Link struct {
	A, B       string
	Weight     float64
	Obstructed bool
	Disabled   bool
}

// Graph is a thread-safe undirected road network.
//
// The zero value is not usable; create graphs with New.
type Graph struct {
	mu       sync.RWMutex
	order    []string
	adj      map[string][]*Edge
	disabled map[string]struct{}

	observers observers
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		adj:      make(map[string][]*Edge),
		disabled: make(map[string]struct{}),
	}
}

// AddNode adds a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addNodeLocked(name)
}

func (g *Graph) addNodeLocked(name string) {
	if _, ok := g.adj[name]; ok {
		return
	}
	g.adj[name] = nil
	g.order = append(g.order, name)
}

// HasNode reports whether name is part of the graph.
func (g *Graph) HasNode(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.adj[name]
	return ok
}

// Nodes returns all node names in insertion order.
func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.order)
}

// AddEdge connects a and b with an enabled, unobstructed road.
func (g *Graph) AddEdge(a, b string, weight float64) error {
	if weight < 0 {
		return fmt.Errorf("add edge %s-%s: %w", a, b, ErrNegativeWeight)
	}
	if a == b {
		return fmt.Errorf("add edge %s-%s: %w", a, b, ErrSelfLoop)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireNodesLocked(a, b); err != nil {
		return fmt.Errorf("add edge %s-%s: %w", a, b, err)
	}
	if g.recordLocked(a, b) != nil {
		return fmt.Errorf("add edge %s-%s: %w", a, b, ErrEdgeExists)
	}

	g.adj[a] = append(g.adj[a], &Edge{To: b, Weight: weight})
	g.adj[b] = append(g.adj[b], &Edge{To: a, Weight: weight})
	return nil
}

// Edge returns the a->b record.
func (g *Graph) Edge(a, b string) (Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if err := g.requireNodesLocked(a, b); err != nil {
		return Edge{}, fmt.Errorf("edge %s-%s: %w", a, b, err)
	}
	rec := g.recordLocked(a, b)
	if rec == nil {
		return Edge{}, fmt.Errorf("edge %s-%s: %w", a, b, ErrUnknownEdge)
	}
	return *rec, nil
}

// Neighbours returns the raw adjacency records of a node in insertion order.
func (g *Graph) Neighbours(name string) ([]Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	recs, ok := g.adj[name]
	if !ok {
		return nil, fmt.Errorf("neighbours of %s: %w", name, ErrUnknownNode)
	}
	out := make([]Edge, len(recs))
	for i, rec := range recs {
		out[i] = *rec
	}
	return out, nil
}

// Links returns every undirected edge once, ordered by the first endpoint's
// insertion order and then by adjacency order.
func (g *Graph) Links() []Link {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var links []Link
	seen := make(map[[2]string]struct{})
	for _, a := range g.order {
		for _, rec := range g.adj[a] {
			key := pairKey(a, rec.To)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			links = append(links, Link{A: a, B: rec.To, Weight: rec.Weight, Obstructed: rec.Obstructed, Disabled: rec.Disabled})
		}
	}
	return links
}

// UpdateEdge overwrites both directional records of the a-b edge.
func (g *Graph) UpdateEdge(a, b string, weight float64, obstructed, disabled bool) error {
	if weight < 0 {
		return fmt.Errorf("update edge %s-%s: %w", a, b, ErrNegativeWeight)
	}

	g.mu.Lock()
	err := g.setEdgeLocked(a, b, func(e *Edge) {
		e.Weight = weight
		e.Obstructed = obstructed
		e.Disabled = disabled
	})
	g.mu.Unlock()

	if err != nil {
		return fmt.Errorf("update edge %s-%s: %w", a, b, err)
	}
	g.observers.notify()
	return nil
}

// SetEdgeDisabled changes only the disabled flag of the a-b edge.
func (g *Graph) SetEdgeDisabled(a, b string, disabled bool) error {
	g.mu.Lock()
	err := g.setEdgeLocked(a, b, func(e *Edge) { e.Disabled = disabled })
	g.mu.Unlock()

	if err != nil {
		return fmt.Errorf("set edge %s-%s disabled: %w", a, b, err)
	}
	g.observers.notify()
	return nil
}

// SetEdgeObstructed changes only the obstructed flag of the a-b edge.
func (g *Graph) SetEdgeObstructed(a, b string, obstructed bool) error {
	g.mu.Lock()
	err := g.setEdgeLocked(a, b, func(e *Edge) { e.Obstructed = obstructed })
	g.mu.Unlock()

	if err != nil {
		return fmt.Errorf("set edge %s-%s obstructed: %w", a, b, err)
	}
	g.observers.notify()
	return nil
}

// ToggleNode flips the disabled state of a node.
func (g *Graph) ToggleNode(name string) error {
	g.mu.Lock()
	if _, ok := g.adj[name]; !ok {
		g.mu.Unlock()
		return fmt.Errorf("toggle node %s: %w", name, ErrUnknownNode)
	}
	if _, off := g.disabled[name]; off {
		delete(g.disabled, name)
	} else {
		g.disabled[name] = struct{}{}
	}
	g.mu.Unlock()

	g.observers.notify()
	return nil
}

// SetNodeDisabled sets the disabled state of a node.
func (g *Graph) SetNodeDisabled(name string, disabled bool) error {
	g.mu.Lock()
	if _, ok := g.adj[name]; !ok {
		g.mu.Unlock()
		return fmt.Errorf("set node %s disabled: %w", name, ErrUnknownNode)
	}
	if disabled {
		g.disabled[name] = struct{}{}
	} else {
		delete(g.disabled, name)
	}
	g.mu.Unlock()

	g.observers.notify()
	return nil
}

// NodeDisabled reports whether the node is in the disabled set.
func (g *Graph) NodeDisabled(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, off := g.disabled[name]
	return off
}

// DisabledNodes returns the disabled node names in insertion order.
func (g *Graph) DisabledNodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []string
	for _, name := range g.order {
		if _, off := g.disabled[name]; off {
			out = append(out, name)
		}
	}
	return out
}

// setEdgeLocked applies fn to both directional records.
func (g *Graph) setEdgeLocked(a, b string, fn func(*Edge)) error {
	if err := g.requireNodesLocked(a, b); err != nil {
		return err
	}
	forward := g.recordLocked(a, b)
	backward := g.recordLocked(b, a)
	if forward == nil || backward == nil {
		return ErrUnknownEdge
	}
	fn(forward)
	fn(backward)
	return nil
}

func (g *Graph) requireNodesLocked(names ...string) error {
	for _, name := range names {
		if _, ok := g.adj[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownNode, name)
		}
	}
	return nil
}

func (g *Graph) recordLocked(from, to string) *Edge {
	for _, rec := range g.adj[from] {
		if rec.To == to {
			return rec
		}
	}
	return nil
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
