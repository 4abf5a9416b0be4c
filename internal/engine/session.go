package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Mode selects the drive protocol.
type Mode string

const (
	// ModeOversight plans once with full knowledge of the graph.
	ModeOversight Mode = "oversight"
	// ModeRoadsense discovers closures while driving and replans.
	ModeRoadsense Mode = "roadsense"
)

// ParseMode validates a mode name.
func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case ModeOversight, "":
		return ModeOversight, nil
	case ModeRoadsense:
		return ModeRoadsense, nil
	default:
		return "", fmt.Errorf("unknown drive mode %q: must be 'oversight' or 'roadsense'", name)
	}
}

// State is the position of a session in the drive protocol.
type State int

const (
	Idle State = iota
	TargetSelected
	Started
	GraphScanned
	RouteRequested
	RouteFound
	Navigating
	Turning
	Arrived
	Failed
)

var stateNames = map[State]string{
	Idle:           "idle",
	TargetSelected: "target-selected",
	Started:        "started",
	GraphScanned:   "graph-scanned",
	RouteRequested: "route-requested",
	RouteFound:     "route-found",
	Navigating:     "navigating",
	Turning:        "turning",
	Arrived:        "arrived",
	Failed:         "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the state by name in JSON status documents.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Session is one drive from target selection to arrival or failure.
type Session struct {
	ID     uuid.UUID
	Target string
	Mode   Mode

	done chan struct{}
	err  error
}

func newSession(target string, mode Mode) *Session {
	return &Session{
		ID:     uuid.New(),
		Target: target,
		Mode:   mode,
		done:   make(chan struct{}),
	}
}

// Done is closed when the session has ended.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the outcome of a finished session; nil means arrived.
// It must only be called after Done is closed.
func (s *Session) Err() error {
	return s.err
}

// Wait blocks until the session ends or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
