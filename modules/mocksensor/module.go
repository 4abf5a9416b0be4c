// Package mocksensor simulates the vehicle for headless drives. It listens to
// drive instructions and confirms them after the physical travel, turn and
// obstacle-clearing times, scaled by TimeScale.
package mocksensor

import (
	"context"
	"sync"
	"time"

	"github.com/vk/roundabout/internal/broadcast"
	"github.com/vk/roundabout/internal/ctxlog"
	"github.com/vk/roundabout/internal/engine"
	"github.com/vk/roundabout/internal/roadgraph"
	"github.com/vk/roundabout/internal/sensor"
)

// Sensor implements engine.Module, broadcast.Listener and sensor.Source.
type Sensor struct {
	broadcast.Nop
	sensor.Emitter

	// TimeScale multiplies every simulated duration; zero confirms at once.
	TimeScale float64
	// World, when set, is the road network the vehicle really drives on.
	// Travel times follow its weights and an obstructed road raises an
	// obstacle on the way.
	World *roadgraph.Graph

	mu     sync.Mutex
	at     string
	timers []*time.Timer
}

var (
	_ broadcast.Listener = (*Sensor)(nil)
	_ sensor.Source      = (*Sensor)(nil)
)

// New creates a sensor driving on world.
func New(world *roadgraph.Graph, timeScale float64) *Sensor {
	return &Sensor{World: world, TimeScale: timeScale}
}

// Register adds the sensor as both a listener and a sensor.
func (s *Sensor) Register(n *engine.Navigator) {
	n.Listeners().Add(s)
	n.Sensors().AddSensor(s)
}

func (s *Sensor) scaled(seconds float64) time.Duration {
	return time.Duration(seconds * s.TimeScale * float64(time.Second))
}

// after runs fn once the scaled delay has passed. Handlers must return
// before the broadcast completes, so confirmations are never raised from the
// handler's goroutine.
func (s *Sensor) after(seconds float64, fn func()) {
	t := time.AfterFunc(s.scaled(seconds), fn)
	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()
}

// Stop cancels every pending confirmation.
func (s *Sensor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Sensor) stopLocked() {
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

// Position returns the last point the sensor was sent to.
func (s *Sensor) Position() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.at
}

// SelectTarget puts the vehicle back on its start field and cancels the
// confirmations still pending from a previous drive.
func (s *Sensor) SelectTarget(context.Context, string) error {
	s.mu.Lock()
	s.at = ""
	s.stopLocked()
	s.mu.Unlock()
	return nil
}

// NavigateToPoint drives to point. Without a known road from the current
// position the vehicle is assumed to be there already.
func (s *Sensor) NavigateToPoint(ctx context.Context, point string) error {
	s.mu.Lock()
	from := s.at
	s.at = point
	s.mu.Unlock()

	var travel float64
	obstructed := false
	if s.World != nil && from != "" && from != point {
		if e, err := s.World.Edge(from, point); err == nil {
			travel = e.Weight / roadgraph.Speed
			obstructed = e.Obstructed
		}
	}

	if !obstructed {
		s.after(travel, s.RaiseTargetReached)
		return nil
	}
	ctxlog.FromContext(ctx).Debug("Simulated road is obstructed.", "from", from, "to", point)
	s.after(travel/2, s.RaiseObstacle)
	s.after(travel+roadgraph.ObstacleClearSeconds, s.RaiseTargetReached)
	return nil
}

func (s *Sensor) TakeExit(context.Context, string, string, string) error {
	s.after(roadgraph.TurnSeconds, s.RaiseTurnCompleted)
	return nil
}

// CloseToObstacle reports the obstacle cleared once the vehicle got past it.
func (s *Sensor) CloseToObstacle(context.Context) error {
	s.after(roadgraph.ObstacleClearSeconds, s.RaiseObstacleCleared)
	return nil
}
