package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vk/roundabout/internal/broadcast"
	"github.com/vk/roundabout/internal/roadgraph"
	"github.com/vk/roundabout/internal/sensor"
)

// Recorder is a listener that records every event it receives, formatted as
// "event(arg,arg)". An empty take-exit origin is recorded as "-".
type Recorder struct {
	mu     sync.Mutex
	events []string

	// Fail makes the named events return the mapped error. It must be set
	// before the recorder is registered.
	Fail map[broadcast.Event]error
}

var _ broadcast.Listener = (*Recorder)(nil)

func (r *Recorder) record(ev broadcast.Event, args ...string) error {
	r.mu.Lock()
	r.events = append(r.events, fmt.Sprintf("%s(%s)", ev, strings.Join(args, ",")))
	r.mu.Unlock()
	return r.Fail[ev]
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Count returns how many times ev was received.
func (r *Recorder) Count(ev broadcast.Event) int {
	prefix := string(ev) + "("
	n := 0
	for _, e := range r.Events() {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

// Without returns the recorded events minus the given kinds.
func (r *Recorder) Without(evs ...broadcast.Event) []string {
	var out []string
next:
	for _, e := range r.Events() {
		for _, ev := range evs {
			if strings.HasPrefix(e, string(ev)+"(") {
				continue next
			}
		}
		out = append(out, e)
	}
	return out
}

func (r *Recorder) NavigateToPoint(_ context.Context, point string) error {
	return r.record(broadcast.EventNavigateToPoint, point)
}

func (r *Recorder) TakeExit(_ context.Context, from, on, to string) error {
	if from == "" {
		from = "-"
	}
	return r.record(broadcast.EventTakeExit, from, on, to)
}

func (r *Recorder) SelectTarget(_ context.Context, target string) error {
	return r.record(broadcast.EventSelectTarget, target)
}

func (r *Recorder) Start(context.Context) error { return r.record(broadcast.EventStart) }

func (r *Recorder) EmergencyStop(context.Context) error {
	return r.record(broadcast.EventEmergencyStop)
}

func (r *Recorder) ScanGraph(context.Context) error { return r.record(broadcast.EventScanGraph) }

func (r *Recorder) FindPath(_ context.Context, _ *roadgraph.Graph, from, to string) error {
	return r.record(broadcast.EventFindPath, from, to)
}

func (r *Recorder) FoundPath(_ context.Context, route roadgraph.Route) error {
	return r.record(broadcast.EventFoundPath, route...)
}

func (r *Recorder) ArriveAtDestination(context.Context) error {
	return r.record(broadcast.EventArriveAtDestination)
}

func (r *Recorder) CloseToObstacle(context.Context) error {
	return r.record(broadcast.EventCloseToObstacle)
}

func (r *Recorder) ObstacleCleared(context.Context) error {
	return r.record(broadcast.EventObstacleCleared)
}

func (r *Recorder) ExitTaken(context.Context) error { return r.record(broadcast.EventExitTaken) }

func (r *Recorder) NavigatedToPoint(context.Context) error {
	return r.record(broadcast.EventNavigatedToPoint)
}

func (r *Recorder) NextNodeBlocked(_ context.Context, node string) error {
	return r.record(broadcast.EventNextNodeBlocked, node)
}

func (r *Recorder) NextEdgeBlocked(_ context.Context, a, b string) error {
	return r.record(broadcast.EventNextEdgeBlocked, a, b)
}

// AutoSensor is a listener and sensor that confirms every navigation and
// turn from inside the broadcast, before the engine starts waiting.
type AutoSensor struct {
	broadcast.Nop
	sensor.Emitter

	mu          sync.Mutex
	navigations int

	// MaxNavigations stops confirming navigations after that many; zero
	// confirms all of them.
	MaxNavigations int
	// Repeat raises every confirmation that many times; zero means once.
	Repeat int
	// ObstacleAt raises an obstacle and its clearance when navigating there.
	ObstacleAt string
}

// SetMaxNavigations changes MaxNavigations while the sensor is in use.
func (s *AutoSensor) SetMaxNavigations(n int) {
	s.mu.Lock()
	s.MaxNavigations = n
	s.mu.Unlock()
}

func (s *AutoSensor) times() int {
	return max(s.Repeat, 1)
}

func (s *AutoSensor) NavigateToPoint(_ context.Context, point string) error {
	s.mu.Lock()
	s.navigations++
	silent := s.MaxNavigations > 0 && s.navigations > s.MaxNavigations
	s.mu.Unlock()

	if point == s.ObstacleAt && point != "" {
		s.RaiseObstacle()
		s.RaiseObstacleCleared()
	}
	if silent {
		return nil
	}
	for range s.times() {
		s.RaiseTargetReached()
	}
	return nil
}

func (s *AutoSensor) TakeExit(context.Context, string, string, string) error {
	for range s.times() {
		s.RaiseTurnCompleted()
	}
	return nil
}
