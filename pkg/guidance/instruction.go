package guidance

import (
	"fmt"
	"time"
)

// Kind classifies an instruction.
type Kind int

const (
	KindTurn Kind = iota
	KindWalk
	KindArrival
	KindDeviation
	KindNoRoute
)

func (k Kind) String() string {
	switch k {
	case KindTurn:
		return "turn"
	case KindWalk:
		return "walk"
	case KindArrival:
		return "arrival"
	case KindDeviation:
		return "deviation"
	case KindNoRoute:
		return "no_route"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind name in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name written by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	for c := KindTurn; c <= KindNoRoute; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("guidance: unknown instruction kind %q", b)
}

// Instruction is one announcement for the walker.
type Instruction struct {
	Kind    Kind      `json:"kind"`
	Text    string    `json:"text"`
	Segment int       `json:"segment"` // -1 when not tied to a segment
	At      time.Time `json:"at"`
}
