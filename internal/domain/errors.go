package domain

import "errors"

var (
	// Lookup errors
	ErrDataUnavailable = errors.New("user data is unavailable")

	// Debounce errors
	ErrSuperseded      = errors.New("request superseded by a newer one")
	ErrShuttingDown    = errors.New("service is shutting down")
	ErrIdentityMissing = errors.New("IP address not found in request")

	// Source errors
	ErrInvalidRecord = errors.New("invalid user record")
)
