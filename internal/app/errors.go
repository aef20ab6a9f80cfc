package service

import "errors"

// Sentinel errors returned by Run.
var (
	// ErrValidation reports unusable input, detected before any remote call.
	ErrValidation = errors.New("validation error")
	// ErrInvalidTransition reports a pipeline step taken out of order.
	ErrInvalidTransition = errors.New("invalid pipeline transition")
)
