// Package textlog keeps a human-readable, timestamped log of a drive.
package textlog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/vk/roundabout/internal/broadcast"
	"github.com/vk/roundabout/internal/engine"
	"github.com/vk/roundabout/internal/roadgraph"
)

// Module records one line per driving event. Events without a line are
// ignored through the embedded Nop.
type Module struct {
	broadcast.Nop

	// Out, when set, receives every line as it is logged.
	Out io.Writer
	// Now defaults to time.Now.
	Now func() time.Time

	mu    sync.Mutex
	lines []string
}

// Register adds the log to the navigator's listeners.
func (m *Module) Register(n *engine.Navigator) {
	n.Listeners().Add(m)
}

func (m *Module) log(format string, args ...any) error {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	line := now().Format(time.TimeOnly) + ": " + fmt.Sprintf(format, args...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
	if m.Out != nil {
		if _, err := io.WriteString(m.Out, line+"\n"); err != nil {
			return fmt.Errorf("write text log: %w", err)
		}
	}
	return nil
}

// Lines returns a copy of the logged lines.
func (m *Module) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

// String returns the log as newline-terminated text.
func (m *Module) String() string {
	var b strings.Builder
	for _, l := range m.Lines() {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// Clear empties the log.
func (m *Module) Clear() {
	m.mu.Lock()
	m.lines = nil
	m.mu.Unlock()
}

func (m *Module) NavigateToPoint(_ context.Context, point string) error {
	return m.log("Navigating to %s", point)
}

func (m *Module) NavigatedToPoint(context.Context) error { return m.log("Navigated to point") }

func (m *Module) TakeExit(_ context.Context, from, on, to string) error {
	if from == "" {
		from = "start field"
	}
	return m.log("Taking exit from %s on %s to %s", from, on, to)
}

func (m *Module) ExitTaken(context.Context) error { return m.log("Exit taken") }

func (m *Module) SelectTarget(_ context.Context, target string) error {
	return m.log("Selecting target %s", target)
}

func (m *Module) Start(context.Context) error         { return m.log("Starting") }
func (m *Module) EmergencyStop(context.Context) error { return m.log("Emergency stop") }
func (m *Module) ScanGraph(context.Context) error     { return m.log("Scanning graph") }

func (m *Module) FindPath(context.Context, *roadgraph.Graph, string, string) error {
	return m.log("Finding path")
}

func (m *Module) ArriveAtDestination(context.Context) error {
	return m.log("Arrived at destination")
}
