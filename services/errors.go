package services

import "errors"

// Sentinel errors returned by services. Controllers map these onto HTTP
// status codes; anything else is treated as an internal error.
var (
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotFound is returned when a requested entity has no record yet.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidInput is returned for out-of-range or malformed fields.
	ErrInvalidInput = errors.New("invalid input")
)
