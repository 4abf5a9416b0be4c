// Package engine runs drive sessions: it selects a target, asks the
// pathfinder for a route and then drives it one roundabout at a time,
// broadcasting every intent to the registered listeners and waiting for the
// sensors to confirm each step.
//
// # Session protocol
//
//	select-target -> start -> scan-graph -> (settle) -> find-path
//	    -> navigate-to-point(route[0])              wait target-reached
//	    -> take-exit("", route[0], route[1])        wait turn-completed
//	    -> navigate-to-point(route[i])              wait target-reached
//	    -> take-exit(route[i-1], route[i], route[i+1]) wait turn-completed
//	    ...
//	    -> navigate-to-point(last)                  wait target-reached
//	    -> arrive-at-destination
//
// Every broadcast is followed by the matching "done" broadcast
// (navigated-to-point, exit-taken) once the sensor confirmation arrived.
//
// # Modes
//
// ModeOversight plans once on a snapshot of the canonical graph that includes
// every known obstruction and closure.
//
// ModeRoadsense starts from a clean copy of the graph, the vehicle's belief,
// and checks the canonical graph before every hop. A closed road or
// roundabout ahead is written into the belief, announced with
// next-edge-blocked or next-node-blocked, and the remaining route is
// replanned from the current roundabout.
//
// # Concurrency
//
// A Navigator runs at most one session at a time; GoTo and Drive fail with
// ErrBusy while a session holds the lock. Sensors may raise events at any
// time, including before the session reaches the matching wait. The engine
// has no timeout of its own; callers bound a session through its context and
// an expired deadline during a wait ends the session with ErrStalled.
package engine
