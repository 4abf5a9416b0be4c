package engine

import (
	"slices"

	"github.com/vk/roundabout/internal/roadgraph"
)

// Status is a point-in-time view of the navigator for telemetry.
type Status struct {
	Locked  bool   `json:"locked"`
	Mode    Mode   `json:"mode"`
	State   State  `json:"state"`
	Session string `json:"session,omitempty"`
	Target  string `json:"target,omitempty"`

	// Route is the route currently being driven; after a replan it starts
	// where the vehicle was when the closure was found.
	Route roadgraph.Route `json:"route,omitempty"`
	// Fragments holds the parts of abandoned routes already driven.
	Fragments roadgraph.Route `json:"fragments,omitempty"`
	// FullRoute is Fragments followed by Route.
	FullRoute roadgraph.Route `json:"full_route,omitempty"`

	// Metrics over FullRoute.
	Obstacles int     `json:"obstacles"`
	Distance  float64 `json:"distance"`
	Duration  float64 `json:"duration_seconds"`
}

// Status reports the current session and the metrics of the full route,
// driven fragments included, measured on the canonical graph. Distance is
// physical; Duration includes the turn penalties. Metrics that cannot be computed, for instance because a
// road was removed, are left at zero.
func (n *Navigator) Status() Status {
	n.mu.Lock()
	st := Status{
		Locked:    n.locked,
		Mode:      n.mode,
		State:     n.state,
		Route:     slices.Clone(n.route),
		Fragments: slices.Clone(n.fragments),
	}
	if n.session != nil {
		st.Session = n.session.ID.String()
		st.Target = n.session.Target
		st.Mode = n.session.Mode
	}
	n.mu.Unlock()

	st.FullRoute = append(slices.Clone(st.Fragments), st.Route...)
	if len(st.FullRoute) == 0 {
		return st
	}
	if v, err := n.graph.PhysicalDistance(st.FullRoute); err == nil {
		st.Distance = v
	}
	if v, err := n.graph.EstimatedDuration(st.FullRoute); err == nil {
		st.Duration = v
	}
	if v, err := n.graph.ObstaclesInPath(st.FullRoute); err == nil {
		st.Obstacles = v
	}
	return st
}
