package firmware

import "errors"

var (
	// ErrNotFound indicates no firmware exists for the requested
	// (type, version) pair.
	ErrNotFound = errors.New("firmware not found")

	// ErrExists indicates a create collided with an existing
	// (type, version) pair.
	ErrExists = errors.New("firmware already present")

	// ErrInvalidHex indicates the uploaded file is not a valid Intel HEX
	// document.
	ErrInvalidHex = errors.New("invalid intel hex")
)
