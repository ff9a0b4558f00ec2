package homework

import "errors"

var (
	// ErrShape reports an API payload that does not look like a homework status response.
	ErrShape = errors.New("unexpected response shape")
	// ErrMissingKey reports a homework entry without a name or status.
	ErrMissingKey = errors.New("homework key missing")
	// ErrUnknownStatus reports a status outside the known set.
	ErrUnknownStatus = errors.New("unknown homework status")
)
