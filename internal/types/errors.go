package types

import "errors"

// Domain specific errors shared by repositories, services and handlers.
var (
	ErrNotFound = errors.New("requested item not found")
	ErrConflict = errors.New("item already exists or conflict")

	// ErrCityNotVerified means the geocoding lookup found no place with the given name.
	ErrCityNotVerified = errors.New("city could not be verified")
	// ErrVerificationUnavailable is only returned by the strict verification client.
	ErrVerificationUnavailable = errors.New("city verification service unavailable")
)
