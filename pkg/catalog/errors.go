package catalog

import "errors"

var (
	// ErrDuplicateName is returned when two points share a name.
	ErrDuplicateName = errors.New("duplicate point name")
	// ErrInvalidPoint marks a point rejected during validation.
	ErrInvalidPoint = errors.New("invalid point")
	// ErrUnsupportedFormat is returned for catalog files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)
