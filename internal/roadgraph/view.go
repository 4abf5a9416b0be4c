package roadgraph

import "math"

var inf = math.Inf(1)

// View is the effective routing view of a graph. Disabled nodes and their
// incident edges are absent and every record carries its effective weight.
type View struct {
	// Order lists the enabled nodes in insertion order.
	Order []string
	// Adjacency maps each enabled node to its enabled-endpoint records.
	Adjacency map[string][]Edge
}

// Has reports whether the node is part of the view.
func (v View) Has(name string) bool {
	_, ok := v.Adjacency[name]
	return ok
}

// Effective builds the routing view of the graph.
func (g *Graph) Effective() View {
	g.mu.RLock()
	defer g.mu.RUnlock()

	view := View{Adjacency: make(map[string][]Edge, len(g.adj))}
	for _, name := range g.order {
		if _, off := g.disabled[name]; off {
			continue
		}
		view.Order = append(view.Order, name)

		recs := make([]Edge, 0, len(g.adj[name]))
		for _, rec := range g.adj[name] {
			if _, off := g.disabled[rec.To]; off {
				continue
			}
			eff := *rec
			eff.Weight = rec.EffectiveWeight()
			recs = append(recs, eff)
		}
		view.Adjacency[name] = recs
	}
	return view
}
