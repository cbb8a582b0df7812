package executor

import "sync/atomic"

// StopFlag is the shared cancellation flag spec's §5 calls for: the
// scheduler checks it before starting each job, the executor checks it at
// every page boundary and stage boundary. Observing it returns (nil, nil)
// from Sanitize, never an error.
type StopFlag struct {
	requested atomic.Bool
}

// NewStopFlag returns a fresh, unset flag.
func NewStopFlag() *StopFlag {
	return &StopFlag{}
}

// Request sets the flag. Safe to call from any goroutine, any number of
// times.
func (f *StopFlag) Request() {
	f.requested.Store(true)
}

// Requested reports whether Request has been called.
func (f *StopFlag) Requested() bool {
	return f.requested.Load()
}
