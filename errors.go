package points

import "errors"

var (
	// ErrInvalidArgument is returned for arguments outside their domain:
	// negative sizes, far distances not beyond near distances, indices out
	// of range, nil points or frame states.
	ErrInvalidArgument = errors.New("points: invalid argument")

	// ErrDestroyed is returned when a collection has been destroyed or a
	// point has been removed from its collection.
	ErrDestroyed = errors.New("points: object destroyed")
)
