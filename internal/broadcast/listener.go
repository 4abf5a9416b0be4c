// Package broadcast fans drive events out to a dynamic set of listeners and
// joins on all of them before returning.
package broadcast

import (
	"context"

	"github.com/vk/roundabout/internal/roadgraph"
)

// Driver is the part of the listener capability every listener must provide.
type Driver interface {
	// NavigateToPoint asks the vehicle to drive to the given node.
	NavigateToPoint(ctx context.Context, point string) error
	// TakeExit asks the vehicle to cross roundabout on, coming from from and
	// leaving towards to. An empty from means the vehicle enters from its
	// start field rather than from a road.
	TakeExit(ctx context.Context, from, on, to string) error
}

// Listener is the full listener capability. Embed Nop to get no-op defaults
// for everything except the Driver methods.
type Listener interface {
	Driver

	SelectTarget(ctx context.Context, target string) error
	Start(ctx context.Context) error
	EmergencyStop(ctx context.Context) error
	ScanGraph(ctx context.Context) error
	FindPath(ctx context.Context, graph *roadgraph.Graph, from, to string) error
	FoundPath(ctx context.Context, route roadgraph.Route) error
	ArriveAtDestination(ctx context.Context) error
	CloseToObstacle(ctx context.Context) error
	ObstacleCleared(ctx context.Context) error
	ExitTaken(ctx context.Context) error
	NavigatedToPoint(ctx context.Context) error
	NextNodeBlocked(ctx context.Context, node string) error
	NextEdgeBlocked(ctx context.Context, a, b string) error
}

// Nop implements the optional half of Listener with no-op handlers.
type Nop struct{}

// The Nop handlers accept every event and do nothing. Listeners embed Nop
// and override the events they care about.

func (Nop) SelectTarget(context.Context, string) error { return nil }
func (Nop) Start(context.Context) error                { return nil }
func (Nop) EmergencyStop(context.Context) error        { return nil }
func (Nop) ScanGraph(context.Context) error            { return nil }
func (Nop) FindPath(context.Context, *roadgraph.Graph, string, string) error {
	return nil
}
func (Nop) FoundPath(context.Context, roadgraph.Route) error { return nil }
func (Nop) ArriveAtDestination(context.Context) error        { return nil }
func (Nop) CloseToObstacle(context.Context) error            { return nil }
func (Nop) ObstacleCleared(context.Context) error            { return nil }
func (Nop) ExitTaken(context.Context) error                  { return nil }
func (Nop) NavigatedToPoint(context.Context) error           { return nil }
func (Nop) NextNodeBlocked(context.Context, string) error    { return nil }
func (Nop) NextEdgeBlocked(context.Context, string, string) error {
	return nil
}

// Event names a listener handler.
type Event string

const (
	EventNavigateToPoint     Event = "navigate-to-point"
	EventTakeExit            Event = "take-exit"
	EventSelectTarget        Event = "select-target"
	EventStart               Event = "start"
	EventEmergencyStop       Event = "emergency-stop"
	EventScanGraph           Event = "scan-graph"
	EventFindPath            Event = "find-path"
	EventFoundPath           Event = "found-path"
	EventArriveAtDestination Event = "arrive-at-destination"
	EventCloseToObstacle     Event = "close-to-obstacle"
	EventObstacleCleared     Event = "obstacle-cleared"
	EventExitTaken           Event = "exit-taken"
	EventNavigatedToPoint    Event = "navigated-to-point"
	EventNextNodeBlocked     Event = "next-node-blocked"
	EventNextEdgeBlocked     Event = "next-edge-blocked"
)
