package guidance

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
	"github.com/A-smalluser/Scene-Nav/pkg/pathseg"
	"github.com/A-smalluser/Scene-Nav/pkg/waypoint"
)

// State is where a session stands in the guidance cycle.
type State int

const (
	// StateIdle means no segment has been announced yet.
	StateIdle State = iota
	// StateAwaitingTurn waits for the walker to face the active segment.
	StateAwaitingTurn
	// StateWalking waits for the walker to reach the active segment's end.
	StateWalking
	// StateArrived is terminal.
	StateArrived
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingTurn:
		return "awaiting_turn"
	case StateWalking:
		return "walking"
	case StateArrived:
		return "arrived"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for c := StateIdle; c <= StateArrived; c++ {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("guidance: unknown session state %q", b)
}

// Session is one accepted route being walked. It is replaced wholesale on
// re-route or a new request, never patched.
type Session struct {
	ID        string
	Target    geom.Vec
	Segments  []pathseg.Segment
	StartedAt time.Time

	Index int
	State State

	// DeviationWarned suppresses repeated deviation triggers until it is
	// cleared by reaching a waypoint or by recovery cooldown expiry.
	DeviationWarned    bool
	LastDeviationCheck time.Time

	// Markers are the waypoint handles this session owns.
	Markers []waypoint.Handle
}

// NewSession creates an idle session over segments heading for target.
func NewSession(segments []pathseg.Segment, target geom.Vec, now time.Time) *Session {
	return &Session{
		ID:                 uuid.NewString(),
		Target:             target,
		Segments:           segments,
		StartedAt:          now,
		LastDeviationCheck: now,
	}
}

// Current returns the active segment, if any.
func (s *Session) Current() (pathseg.Segment, bool) {
	if s == nil || s.Index < 0 || s.Index >= len(s.Segments) {
		return pathseg.Segment{}, false
	}
	return s.Segments[s.Index], true
}

// Done reports whether the walker has arrived.
func (s *Session) Done() bool {
	return s != nil && s.State == StateArrived
}
