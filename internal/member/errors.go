package member

import "errors"

var (
	// ErrReadOnly is returned when writing an attribute that has no setter.
	ErrReadOnly = errors.New("member: attribute is read-only")

	// ErrSignatureMismatch is returned when arguments do not fit a signature,
	// or when an event is connected to a slot with a different signature.
	ErrSignatureMismatch = errors.New("member: signature mismatch")

	// ErrNotBound is returned when a descriptor has no implementation for
	// the requested operation on an object.
	ErrNotBound = errors.New("member: no implementation bound")
)
