// Package pathfind computes minimum-cost routes over the effective view of a
// road graph.
//
// Two scorers are available. Plain uses the effective edge weight only.
// Penalized additionally charges roadgraph.NodePenalty whenever a relaxation
// enters a node that is neither the origin nor the destination, which steers
// the search away from routes that cross many roundabouts. The penalty is an
// edge surcharge, not a heuristic, so the result is optimal with respect to
// the surcharged weights rather than physical distance.
package pathfind

import (
	"fmt"
	"math"
	"slices"

	"github.com/vk/roundabout/internal/roadgraph"
)

// Scorer selects how relaxation costs are computed.
type Scorer int

const (
	Penalized Scorer = iota
	Plain
)

func (s Scorer) String() string {
	if s == Plain {
		return "plain"
	}
	return "penalized"
}

// ParseScorer converts a scorer name into a Scorer.
func ParseScorer(name string) (Scorer, error) {
	switch name {
	case "penalized", "":
		return Penalized, nil
	case "plain":
		return Plain, nil
	default:
		return 0, fmt.Errorf("unknown scorer %q: must be 'plain' or 'penalized'", name)
	}
}

// Result is a route and the cost the search assigned to it.
type Result struct {
	Route roadgraph.Route
	Cost  float64
}

// Reachable reports whether a route was found.
func (r Result) Reachable() bool {
	return len(r.Route) > 0
}

// FindRoute returns the cheapest route from from to to, or an empty route if
// to cannot be reached.
func FindRoute(g *roadgraph.Graph, from, to string, scorer Scorer) (roadgraph.Route, error) {
	res, err := Find(g, from, to, scorer)
	if err != nil {
		return nil, err
	}
	return res.Route, nil
}

// Find runs Dijkstra's algorithm on the effective view of g.
//
// Both endpoints must exist in g; an endpoint that exists but is disabled is
// simply unreachable. Ties are resolved in discovery order: a node keeps the
// first predecessor that reached it with the lowest cost.
func Find(g *roadgraph.Graph, from, to string, scorer Scorer) (Result, error) {
	if !g.HasNode(from) {
		return Result{}, fmt.Errorf("find route %s->%s: %w: %q", from, to, roadgraph.ErrUnknownNode, from)
	}
	if !g.HasNode(to) {
		return Result{}, fmt.Errorf("find route %s->%s: %w: %q", from, to, roadgraph.ErrUnknownNode, to)
	}

	view := g.Effective()
	if !view.Has(from) || !view.Has(to) {
		return Result{}, nil
	}
	if from == to {
		return Result{Route: roadgraph.Route{from}}, nil
	}

	dist := make(map[string]float64, len(view.Order))
	prev := make(map[string]string, len(view.Order))
	for _, n := range view.Order {
		dist[n] = math.Inf(1)
	}
	dist[from] = 0

	done := make(map[string]bool, len(view.Order))
	q := &queue{}
	q.push(from, 0)

	for q.Len() > 0 {
		cur := q.pop()
		if done[cur.node] {
			continue
		}
		done[cur.node] = true
		if cur.node == to {
			break
		}

		for _, rec := range view.Adjacency[cur.node] {
			if done[rec.To] {
				continue
			}
			candidate := dist[cur.node] + rec.Weight
			if scorer == Penalized && rec.To != from && rec.To != to {
				candidate += roadgraph.NodePenalty
			}
			if candidate < dist[rec.To] {
				dist[rec.To] = candidate
				prev[rec.To] = cur.node
				q.push(rec.To, candidate)
			}
		}
	}

	if math.IsInf(dist[to], 1) {
		return Result{}, nil
	}

	var route roadgraph.Route
	for n := to; ; n = prev[n] {
		route = append(route, n)
		if n == from {
			break
		}
	}
	slices.Reverse(route)
	return Result{Route: route, Cost: dist[to]}, nil
}
