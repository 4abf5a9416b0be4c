package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/vk/roundabout/internal/broadcast"
	"github.com/vk/roundabout/internal/ctxlog"
	"github.com/vk/roundabout/internal/pathfind"
	"github.com/vk/roundabout/internal/roadgraph"
	"github.com/vk/roundabout/internal/sensor"
)

// Config holds the navigator settings.
type Config struct {
	// Start is the node every drive begins at.
	Start string
	Mode  Mode
	// SettleDelay is slept after scan-graph so listeners can catch up before
	// the route is requested.
	SettleDelay time.Duration
	Scorer      pathfind.Scorer
}

// Module is implemented by pluggable listeners and sensors. Register attaches
// whatever the module provides to the navigator.
type Module interface {
	Register(n *Navigator)
}

// Navigator owns the road graph, the listener registry and the sensor
// aggregator, and runs drive sessions against them.
type Navigator struct {
	cfg       Config
	graph     *roadgraph.Graph
	listeners *broadcast.Registry
	sensors   *sensor.Aggregator

	mu        sync.Mutex
	locked    bool
	mode      Mode
	session   *Session
	state     State
	route     roadgraph.Route
	fragments roadgraph.Route
}

// New creates a navigator over g. The built-in pathfinder is registered as
// both a listener and a sensor.
func New(g *roadgraph.Graph, cfg Config) (*Navigator, error) {
	if !g.HasNode(cfg.Start) {
		return nil, fmt.Errorf("start node %q: %w", cfg.Start, roadgraph.ErrUnknownNode)
	}
	mode, err := ParseMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}
	if cfg.SettleDelay < 0 {
		return nil, fmt.Errorf("settle delay cannot be negative, got %s", cfg.SettleDelay)
	}
	cfg.Mode = mode

	n := &Navigator{
		cfg:       cfg,
		graph:     g,
		listeners: broadcast.New(),
		sensors:   sensor.NewAggregator(),
		mode:      mode,
	}
	finder := pathfind.NewListener(cfg.Scorer)
	n.listeners.Add(finder)
	n.sensors.AddSensor(finder)
	return n, nil
}

// Use registers modules in order.
func (n *Navigator) Use(modules ...Module) {
	for _, m := range modules {
		m.Register(n)
	}
}

func (n *Navigator) Listeners() *broadcast.Registry { return n.listeners }
func (n *Navigator) Sensors() *sensor.Aggregator    { return n.sensors }
func (n *Navigator) Graph() *roadgraph.Graph        { return n.graph }
func (n *Navigator) Start() string                  { return n.cfg.Start }

// Locked reports whether a drive is in progress.
func (n *Navigator) Locked() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.locked
}

// Mode returns the mode the next session will use.
func (n *Navigator) Mode() Mode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mode
}

// SetMode switches the drive protocol. It is refused while a drive runs.
func (n *Navigator) SetMode(m Mode) error {
	m, err := ParseMode(string(m))
	if err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.locked {
		return ErrBusy
	}
	n.mode = m
	return nil
}

// EmergencyStop broadcasts the emergency-stop event. Stopping the vehicle is
// up to the listeners; a running session is not interrupted.
func (n *Navigator) EmergencyStop(ctx context.Context) error {
	ctxlog.FromContext(ctx).Warn("Emergency stop requested.")
	return n.listeners.EmergencyStop(ctx)
}

// GoTo starts a drive to target and returns immediately. The navigator stays
// locked until the returned session is done. ctx bounds the whole session.
func (n *Navigator) GoTo(ctx context.Context, target string) (*Session, error) {
	if !n.graph.HasNode(target) {
		return nil, fmt.Errorf("target %q: %w", target, roadgraph.ErrUnknownNode)
	}

	n.mu.Lock()
	if n.locked {
		n.mu.Unlock()
		return nil, ErrBusy
	}
	s := newSession(target, n.mode)
	n.locked = true
	n.session = s
	n.state = Idle
	n.route = nil
	n.fragments = nil
	n.mu.Unlock()

	go n.run(ctx, s)
	return s, nil
}

// Drive runs a session to completion.
func (n *Navigator) Drive(ctx context.Context, target string) error {
	s, err := n.GoTo(ctx, target)
	if err != nil {
		return err
	}
	<-s.Done()
	return s.Err()
}

func (n *Navigator) run(ctx context.Context, s *Session) {
	ctx = ctxlog.With(ctx, "session", s.ID.String(), "target", s.Target, "mode", s.Mode)
	logger := ctxlog.FromContext(ctx)
	logger.Info("Drive session started.")
	began := time.Now()

	n.sensors.Reset()
	stopForwarding := n.forwardObstacles(ctx)

	d := &drive{n: n, target: s.Target}
	var err error
	switch s.Mode {
	case ModeRoadsense:
		err = d.roadsense(ctx)
	default:
		err = d.oversight(ctx)
	}
	stopForwarding()

	n.mu.Lock()
	n.locked = false
	if err != nil {
		n.state = Failed
	} else {
		n.state = Arrived
	}
	s.err = err
	n.mu.Unlock()
	close(s.done)

	if err != nil {
		logger.Error("Drive session failed.", "error", err, "duration", time.Since(began))
		return
	}
	logger.Info("Drive session arrived.", "duration", time.Since(began))
}

// forwardObstacles relays obstacle sensor events to the listeners for the
// lifetime of a session. The returned func detaches the relay and waits for
// in-flight broadcasts.
func (n *Navigator) forwardObstacles(ctx context.Context) func() {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		stopped bool
	)
	relay := func(name string, fn func(context.Context) error) func(sensor.Signal) {
		return func(sensor.Signal) {
			mu.Lock()
			if stopped {
				mu.Unlock()
				return
			}
			wg.Add(1)
			mu.Unlock()
			go func() {
				defer wg.Done()
				if err := fn(ctx); err != nil {
					ctxlog.FromContext(ctx).Warn("Obstacle notification failed.", "event", name, "error", err)
				}
			}()
		}
	}
	h1 := n.sensors.Subscribe(sensor.Obstacle, relay("close-to-obstacle", n.listeners.CloseToObstacle))
	h2 := n.sensors.Subscribe(sensor.ObstacleCleared, relay("obstacle-cleared", n.listeners.ObstacleCleared))
	return func() {
		n.sensors.Unsubscribe(h1)
		n.sensors.Unsubscribe(h2)
		mu.Lock()
		stopped = true
		mu.Unlock()
		wg.Wait()
	}
}

func (n *Navigator) setState(s State) {
	n.mu.Lock()
	n.state = s
	n.mu.Unlock()
}

func (n *Navigator) setRoute(r roadgraph.Route) {
	n.mu.Lock()
	n.route = slices.Clone(r)
	n.mu.Unlock()
}

func (n *Navigator) addFragment(r roadgraph.Route) {
	n.mu.Lock()
	n.fragments = append(n.fragments, r...)
	n.mu.Unlock()
}
