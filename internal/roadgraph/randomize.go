package roadgraph

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// RandomConfig controls Randomize.
type RandomConfig struct {
	MinWeight     float64
	MaxWeight     float64
	PEdgeDisabled float64
	PObstacle     float64
	PNodeDisabled float64
	// Protected nodes are never disabled, typically the start field.
	Protected []string
}

// DefaultRandomConfig mirrors the defaults of the road-network editor.
func DefaultRandomConfig() RandomConfig {
	return RandomConfig{
		MinWeight:     1,
		MaxWeight:     3,
		PEdgeDisabled: 0.2,
		PObstacle:     0.2,
		PNodeDisabled: 0.2,
	}
}

// Validate checks ranges and probabilities.
func (c RandomConfig) Validate() error {
	if c.MinWeight < 0 || c.MaxWeight < c.MinWeight {
		return fmt.Errorf("invalid weight range [%g, %g]", c.MinWeight, c.MaxWeight)
	}
	for name, p := range map[string]float64{
		"p_edge_disabled": c.PEdgeDisabled,
		"p_obstacle":      c.PObstacle,
		"p_node_disabled": c.PNodeDisabled,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %g", name, p)
		}
	}
	return nil
}

// Randomize redraws every edge and node state.
//
// Disabled nodes are cleared first so repeated calls do not depend on earlier
// draws. Each undirected edge is drawn once and mirrored to its reverse
// record; weights are rounded to two decimals. Observers are notified once.
func (g *Graph) Randomize(cfg RandomConfig, rng *rand.Rand) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("randomize: %w", err)
	}

	g.mu.Lock()
	clear(g.disabled)

	processed := make(map[[2]string]struct{})
	for _, a := range g.order {
		for _, rec := range g.adj[a] {
			key := pairKey(a, rec.To)
			if _, done := processed[key]; done {
				continue
			}
			processed[key] = struct{}{}

			weight := Round2(cfg.MinWeight + rng.Float64()*(cfg.MaxWeight-cfg.MinWeight))
			disabled := rng.Float64() < cfg.PEdgeDisabled
			obstructed := rng.Float64() < cfg.PObstacle

			rec.Weight, rec.Disabled, rec.Obstructed = weight, disabled, obstructed
			if back := g.recordLocked(rec.To, a); back != nil {
				back.Weight, back.Disabled, back.Obstructed = weight, disabled, obstructed
			}
		}
	}

	for _, name := range g.order {
		if slices.Contains(cfg.Protected, name) {
			continue
		}
		if rng.Float64() < cfg.PNodeDisabled {
			g.disabled[name] = struct{}{}
		}
	}
	g.mu.Unlock()

	g.observers.notify()
	return nil
}
