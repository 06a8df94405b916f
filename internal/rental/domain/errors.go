package rental

import "errors"

var (
	// ErrNoDuration is returned when a session is started without a duration tier.
	ErrNoDuration = errors.New("rental: no duration selected")
	// ErrAlreadyRunning is returned when starting a timer that is already running.
	ErrAlreadyRunning = errors.New("rental: timer already running")
	// ErrNotRunning is returned when pausing a timer that is not running.
	ErrNotRunning = errors.New("rental: timer not running")
	// ErrNoActiveSession is returned when an operation requires an active session.
	ErrNoActiveSession = errors.New("rental: no active session")
	// ErrSessionActive is returned when an operation requires an idle station.
	ErrSessionActive = errors.New("rental: session in progress")
	// ErrNothingToSettle is returned when finalize finds no unsettled session.
	ErrNothingToSettle = errors.New("rental: nothing to settle")
	// ErrSameStation is returned when transferring a station onto itself.
	ErrSameStation = errors.New("rental: transfer to same station")
	// ErrDestinationBusy is returned when the transfer destination has activity
	// and the caller did not confirm the overwrite.
	ErrDestinationBusy = errors.New("rental: destination station busy")
)
