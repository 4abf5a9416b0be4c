// Package sequence renders a drive as a Mermaid sequence diagram.
package sequence

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/vk/roundabout/internal/broadcast"
	"github.com/vk/roundabout/internal/engine"
	"github.com/vk/roundabout/internal/roadgraph"
	"github.com/vk/roundabout/internal/roundabout"
)

const header = `sequenceDiagram
    actor User
    participant Car
    participant Engine as Simulator
    participant ImageRecognition as Image Recognition
    participant Pathfinding
    participant snsLine as Line Sensor
    participant snsDist as Distance Sensor
`

// Diagram implements engine.Module and broadcast.Listener. Selecting a new
// target starts a fresh diagram.
type Diagram struct {
	Layout roundabout.Layout
	// OnSync, when set, receives the full diagram after every change. It is
	// called with the diagram's lock held and must not call back into it.
	OnSync func(code string)

	mu   sync.Mutex
	code strings.Builder
}

var _ broadcast.Listener = (*Diagram)(nil)

// New returns an empty diagram.
func New(layout roundabout.Layout) *Diagram {
	d := &Diagram{Layout: layout}
	d.Reset()
	return d
}

// Register adds the diagram to the navigator's listeners.
func (d *Diagram) Register(n *engine.Navigator) {
	n.Listeners().Add(d)
}

// Reset discards every message and keeps the participants.
func (d *Diagram) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.code.Reset()
	d.code.WriteString(header)
	d.syncLocked()
}

// String returns the Mermaid source.
func (d *Diagram) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.code.Len() == 0 {
		return header
	}
	return d.code.String()
}

// WriteTo writes the Mermaid source to w.
func (d *Diagram) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.String())
	return int64(n), err
}

func (d *Diagram) add(lines ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.code.Len() == 0 {
		d.code.WriteString(header)
	}
	for _, l := range lines {
		d.code.WriteString("    ")
		d.code.WriteString(l)
		d.code.WriteByte('\n')
	}
	d.syncLocked()
	return nil
}

func (d *Diagram) syncLocked() {
	if d.OnSync != nil {
		d.OnSync(d.code.String())
	}
}

func (d *Diagram) SelectTarget(_ context.Context, target string) error {
	d.Reset()
	return d.add(
		"User->>+Car: Select target "+target,
		"Car->>-Engine: Select target "+target,
	)
}

func (d *Diagram) Start(context.Context) error {
	return d.add("User->>+Car: Start", "Car->>-Engine: Start")
}

func (d *Diagram) EmergencyStop(context.Context) error {
	return d.add("User->>Car: Emergency stop", "Car-xEngine: Emergency stop")
}

func (d *Diagram) ScanGraph(context.Context) error {
	return d.add("Engine->>+ImageRecognition: Scan graph", "ImageRecognition-->>-Engine: Graph scanned")
}

func (d *Diagram) FindPath(context.Context, *roadgraph.Graph, string, string) error {
	return d.add("Engine->>+Pathfinding: Find path")
}

func (d *Diagram) FoundPath(context.Context, roadgraph.Route) error {
	return d.add("Pathfinding-->>-Engine: Path found")
}

func (d *Diagram) NavigateToPoint(_ context.Context, point string) error {
	return d.add("Engine->>+Car: Navigate to " + point)
}

func (d *Diagram) TakeExit(_ context.Context, from, on, to string) error {
	exit, err := d.Layout.Exit(from, on, to)
	if err != nil {
		return d.add("Engine->>+Car: Take exit to " + to)
	}
	return d.add(fmt.Sprintf("Engine->>+Car: Take exit %d", exit))
}

func (d *Diagram) ArriveAtDestination(context.Context) error {
	return d.add("Engine->>+Car: Arrive at destination", "Car-->>-User: Visual feedback")
}

func (d *Diagram) ExitTaken(context.Context) error {
	return d.add("Car-->>-Engine: Exit taken")
}

func (d *Diagram) NavigatedToPoint(context.Context) error {
	return d.add("Car-->>-Engine: Arrived")
}

func (d *Diagram) CloseToObstacle(context.Context) error {
	return d.add("Car->>+ObstacleClearer: Report obstacle")
}

func (d *Diagram) ObstacleCleared(context.Context) error {
	return d.add("ObstacleClearer-->>-Car: Obstacle cleared")
}

func (d *Diagram) NextEdgeBlocked(context.Context, string, string) error {
	return d.add("snsLine-)Engine: Edge not found")
}

func (d *Diagram) NextNodeBlocked(context.Context, string) error {
	return d.add("snsDist-)Engine: Node blocked")
}
