package domain

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")

	// Relay errors. Adapters wrap these with %w so callers can branch with errors.Is.
	ErrAuth     = errors.New("avito token exchange failed")
	ErrFetch    = errors.New("avito chat listing failed")
	ErrDelivery = errors.New("telegram delivery failed")
	ErrCommand  = errors.New("operator command failed")
)
