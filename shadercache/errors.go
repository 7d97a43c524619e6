package shadercache

import "errors"

var (
	// ErrUnknownProgram is returned when a program does not belong to the
	// cache, or has already been destroyed.
	ErrUnknownProgram = errors.New("shadercache: unknown program")

	// ErrDestroyed is returned by every operation on a destroyed cache.
	ErrDestroyed = errors.New("shadercache: cache destroyed")

	// ErrInvalidSource is returned when a shader source has unbalanced
	// preprocessor directives.
	ErrInvalidSource = errors.New("shadercache: invalid shader source")
)
