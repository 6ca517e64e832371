// Package guidance drives a walker through route segments, announcing a turn
// when they must change direction and a walk once they face the right way.
package guidance

import (
	"time"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
	"github.com/A-smalluser/Scene-Nav/pkg/pathseg"
	"github.com/A-smalluser/Scene-Nav/pkg/pose"
)

// Config holds the guidance thresholds.
type Config struct {
	StepLength            float64 // metres per announced step
	DirectionThresholdDeg float64 // facing error accepted to finish a turn
	ReachDistance         float64 // planar metres to count a waypoint reached
}

// DefaultConfig returns the standard walking thresholds.
func DefaultConfig() Config {
	return Config{
		StepLength:            pathseg.DefaultStepLength,
		DirectionThresholdDeg: 10,
		ReachDistance:         0.25,
	}
}

// Machine evaluates sessions. It holds no session state itself.
type Machine struct {
	cfg Config
}

// NewMachine creates a machine with cfg.
func NewMachine(cfg Config) *Machine {
	return &Machine{cfg: cfg}
}

// Start announces the first segment. A nil or empty session is left alone.
func (m *Machine) Start(s *Session, now time.Time) []Instruction {
	if s == nil || len(s.Segments) == 0 {
		return nil
	}
	s.Index = 0
	s.LastDeviationCheck = now
	return []Instruction{m.enter(s, now)}
}

// Tick evaluates p against the active segment and returns any announcements.
func (m *Machine) Tick(s *Session, p pose.Pose, now time.Time) []Instruction {
	seg, ok := s.Current()
	if !ok {
		return nil
	}

	switch s.State {
	case StateAwaitingTurn:
		if !p.HasHeading() {
			return nil
		}
		if geom.Angle(p.Heading, seg.Direction()) > m.cfg.DirectionThresholdDeg {
			return nil
		}
		s.State = StateWalking
		return []Instruction{{
			Kind:    KindWalk,
			Text:    seg.WalkInstruction(m.cfg.StepLength),
			Segment: s.Index,
			At:      now,
		}}

	case StateWalking:
		if geom.PlanarDistance(p.Position, seg.End) >= m.cfg.ReachDistance {
			return nil
		}
		s.DeviationWarned = false
		s.Index++
		if s.Index == len(s.Segments) {
			s.State = StateArrived
			return []Instruction{{
				Kind:    KindArrival,
				Text:    pathseg.ArrivalText,
				Segment: -1,
				At:      now,
			}}
		}
		return []Instruction{m.enter(s, now)}
	}
	return nil
}

// enter makes s.Index the active segment and returns its announcement.
func (m *Machine) enter(s *Session, now time.Time) Instruction {
	seg := s.Segments[s.Index]
	in := Instruction{Text: seg.Instruction, Segment: s.Index, At: now}
	if seg.IsStraight {
		s.State = StateWalking
		in.Kind = KindWalk
	} else {
		s.State = StateAwaitingTurn
		in.Kind = KindTurn
	}
	return in
}
