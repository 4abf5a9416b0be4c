// Package roundabout numbers the exits of each roundabout in the network so
// a take-exit instruction can be phrased the way a driver would follow it.
package roundabout

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNoRoundabout is returned for nodes without an exit layout.
	ErrNoRoundabout = errors.New("no roundabout layout")
	// ErrNoExit is returned when a neighbour is not one of the exits.
	ErrNoExit = errors.New("not an exit of roundabout")
)

// Layout maps each roundabout to its exits in driving order.
type Layout map[string][]string

// Exits returns the exits of a roundabout.
func (l Layout) Exits(on string) ([]string, bool) {
	exits, ok := l[on]
	return exits, ok
}

// Exit returns how many exits to pass when crossing roundabout on from the
// road coming from from towards to. When from is empty the vehicle enters
// from its start field and the result is the absolute index of to.
func (l Layout) Exit(from, on, to string) (int, error) {
	exits, ok := l[on]
	if !ok || len(exits) == 0 {
		return 0, fmt.Errorf("exit on %s: %w", on, ErrNoRoundabout)
	}

	out := slices.Index(exits, to)
	if out < 0 {
		return 0, fmt.Errorf("exit %s on %s: %w", to, on, ErrNoExit)
	}
	if from == "" {
		return out, nil
	}

	in := slices.Index(exits, from)
	if in < 0 {
		return 0, fmt.Errorf("entry %s on %s: %w", from, on, ErrNoExit)
	}
	n := len(exits)
	return ((out-in)%n + n) % n, nil
}

// Describe phrases a take-exit instruction, falling back to the destination
// when the roundabout has no usable layout.
func (l Layout) Describe(from, on, to string) string {
	exit, err := l.Exit(from, on, to)
	if err != nil {
		return fmt.Sprintf("exit towards %s on %s", to, on)
	}
	return fmt.Sprintf("exit %d on %s towards %s", exit, on, to)
}
