package engine

import "errors"

var (
	// ErrBusy is returned when a drive is requested while another one runs.
	ErrBusy = errors.New("navigator is busy: a drive is already in progress")
	// ErrUnreachable ends a session whose target cannot be routed to.
	ErrUnreachable = errors.New("target is unreachable")
	// ErrStalled ends a session whose sensor confirmation never arrived
	// before the caller's deadline.
	ErrStalled = errors.New("drive stalled waiting for sensor")
)
