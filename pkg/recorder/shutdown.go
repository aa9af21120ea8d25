package recorder

import "sync/atomic"

// ShutdownFlag is the process-wide close request. Only the signal handler
// calls Request; only the event loop calls Requested, once per tick.
type ShutdownFlag struct {
	requested atomic.Bool
}

// Request asks the recorder to stop. It only ever moves false to true.
func (f *ShutdownFlag) Request() {
	f.requested.Store(true)
}

// Requested reports whether a stop was requested.
func (f *ShutdownFlag) Requested() bool {
	return f.requested.Load()
}
