package navigation

import (
	"errors"
	"fmt"

	"github.com/A-smalluser/Scene-Nav/pkg/pathquery"
	"github.com/A-smalluser/Scene-Nav/pkg/pathseg"
	"github.com/A-smalluser/Scene-Nav/pkg/speech"
)

// Error kinds reported by the engine. None of them stop the tick loop.
var (
	// ErrPathInsufficient: the route had fewer than two corners.
	ErrPathInsufficient = pathseg.ErrInsufficientPath

	// ErrPathIncomplete: the path service returned a partial or invalid route.
	ErrPathIncomplete = errors.New("navigation: no complete route")

	// ErrAgentUnavailable: no navigation agent could plan the route.
	ErrAgentUnavailable = pathquery.ErrAgentUnavailable

	// ErrSpeechUnavailable: instructions are displayed but not spoken.
	ErrSpeechUnavailable = speech.ErrSpeechUnavailable
)

// PathIncompleteError carries the status of a rejected route.
type PathIncompleteError struct {
	Status pathquery.Status
}

// Error implements the error interface.
func (e *PathIncompleteError) Error() string {
	return fmt.Sprintf("navigation: route status %s", e.Status)
}

// Unwrap lets errors.Is match ErrPathIncomplete.
func (e *PathIncompleteError) Unwrap() error {
	return ErrPathIncomplete
}
