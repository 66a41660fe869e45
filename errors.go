package paintcore

import "errors"

// Failure kinds returned by the command interpreter and its
// collaborators. Handlers wrap these with fmt.Errorf("...: %w", ...),
// so callers match them with errors.Is.
var (
	// ErrInvalidArgument is returned for out-of-range dimensions, empty
	// effective rectangles and unknown or inapplicable blend modes.
	ErrInvalidArgument = errors.New("paintcore: invalid argument")

	// ErrNotFound is returned when a layer or sublayer id does not resolve.
	ErrNotFound = errors.New("paintcore: not found")

	// ErrAlreadyExists is returned when creating a layer with an id that
	// is already taken.
	ErrAlreadyExists = errors.New("paintcore: already exists")

	// ErrDecode is returned when a compressed payload or image file is
	// rejected by the codec, including output size mismatches.
	ErrDecode = errors.New("paintcore: decode error")

	// ErrIO is returned when an underlying input or output stream fails.
	ErrIO = errors.New("paintcore: i/o error")

	// ErrResourceExhausted is returned when the rasterizer pool would
	// grow beyond its configured maximum.
	ErrResourceExhausted = errors.New("paintcore: resource exhausted")

	// ErrUnknownMessage is returned by the interpreter for an unhandled
	// message type.
	ErrUnknownMessage = errors.New("paintcore: unknown message")
)
