package domain

import "errors"

var (
	// ErrAddressNotFound means no geocoder could place the requested address.
	// It is distinct from a valid answer with zero storm events.
	ErrAddressNotFound = errors.New("address not found")

	// ErrInvalidRequest means the request lacks a usable location or area.
	ErrInvalidRequest = errors.New("invalid request")
)
