package pathseg

import (
	"errors"
	"fmt"
)

// ErrInsufficientPath is returned when a route has fewer than two corners.
var ErrInsufficientPath = errors.New("pathseg: at least two corners required")

// InsufficientPathError carries the corner count of a rejected route.
type InsufficientPathError struct {
	Corners int
}

// Error implements the error interface.
func (e *InsufficientPathError) Error() string {
	return fmt.Sprintf("pathseg: route has %d corner(s), need at least 2", e.Corners)
}

// Unwrap lets errors.Is match ErrInsufficientPath.
func (e *InsufficientPathError) Unwrap() error {
	return ErrInsufficientPath
}
