package roadgraph

import "maps"

// Clone returns an independent graph with identical topology, weights, flags
// and disabled nodes. Observers are not carried over.
func (g *Graph) Clone() *Graph {
	return g.snapshot(false)
}

// Copy returns an independent graph with identical topology and weights but
// every obstruction, edge disable and node disable cleared. It represents the
// world as perceived before any sensing has happened.
func (g *Graph) Copy() *Graph {
	return g.snapshot(true)
}

func (g *Graph) snapshot(clean bool) *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := New()
	for _, name := range g.order {
		out.addNodeLocked(name)
		recs := make([]*Edge, len(g.adj[name]))
		for i, rec := range g.adj[name] {
			cp := *rec
			if clean {
				cp.Obstructed = false
				cp.Disabled = false
			}
			recs[i] = &cp
		}
		out.adj[name] = recs
	}
	if !clean {
		out.disabled = maps.Clone(g.disabled)
	}
	return out
}
