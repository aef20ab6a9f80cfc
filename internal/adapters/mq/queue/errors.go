package queue

import "errors"

// Sentinel errors for event sinks.
var (
	// ErrSinkClosed is returned by Emit after a terminal event, after
	// Finish or after the consumer went away.
	ErrSinkClosed = errors.New("event sink closed")
)
