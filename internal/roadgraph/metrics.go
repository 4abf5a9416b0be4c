package roadgraph

import (
	"fmt"
	"math"
)

// PhysicalDistance sums the raw weights along the route, rounded to two
// decimals. Routes shorter than two nodes have distance 0.
func (g *Graph) PhysicalDistance(route Route) (float64, error) {
	if len(route) < 2 {
		return 0, nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	sum := 0.0
	for i := 0; i < len(route)-1; i++ {
		rec, err := g.hopLocked(route[i], route[i+1])
		if err != nil {
			return 0, fmt.Errorf("physical distance: %w", err)
		}
		sum += rec.Weight
	}
	return Round2(sum), nil
}

// ScoredDistance is the physical distance plus ScoredNodePenalty for every
// node that is neither the first nor the last of the route.
func (g *Graph) ScoredDistance(route Route) (float64, error) {
	if len(route) < 2 {
		return 0, nil
	}

	physical, err := g.PhysicalDistance(route)
	if err != nil {
		return 0, err
	}
	return Round2(physical + float64(len(route)-2)*ScoredNodePenalty), nil
}

// ObstaclesInPath counts the obstructed edges the route traverses.
func (g *Graph) ObstaclesInPath(route Route) (int, error) {
	if len(route) < 2 {
		return 0, nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	count := 0
	for i := 0; i < len(route)-1; i++ {
		rec, err := g.hopLocked(route[i], route[i+1])
		if err != nil {
			return 0, fmt.Errorf("obstacles in path: %w", err)
		}
		if rec.Obstructed {
			count++
		}
	}
	return count, nil
}

// EstimatedDuration converts the scored distance of a route into seconds at
// Speed, rounded to two decimals.
func (g *Graph) EstimatedDuration(route Route) (float64, error) {
	scored, err := g.ScoredDistance(route)
	if err != nil {
		return 0, err
	}
	return Round2(scored / Speed), nil
}

func (g *Graph) hopLocked(a, b string) (*Edge, error) {
	if err := g.requireNodesLocked(a, b); err != nil {
		return nil, err
	}
	rec := g.recordLocked(a, b)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s-%s", ErrUnknownEdge, a, b)
	}
	return rec, nil
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
