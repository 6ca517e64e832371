// Package deviation detects when a walker drifts sideways off the segment
// they are walking.
package deviation

import (
	"time"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
	"github.com/A-smalluser/Scene-Nav/pkg/guidance"
	"github.com/A-smalluser/Scene-Nav/pkg/pose"
)

// Config holds the monitor thresholds.
type Config struct {
	Interval     time.Duration // minimum time between checks
	MaxDeviation float64       // planar metres tolerated off the segment
}

// DefaultConfig checks every 2 seconds against a 0.5 m corridor.
func DefaultConfig() Config {
	return Config{
		Interval:     2 * time.Second,
		MaxDeviation: 0.5,
	}
}

// Result describes one call to Check.
type Result struct {
	Checked   bool    // the interval had elapsed and the check ran
	Distance  float64 // planar distance to the active segment, if measured
	Triggered bool    // the walker is off track and was not yet warned
}

// Monitor is a rate-limited off-track check. Its only state is kept on the
// session so a replacement session starts clean.
type Monitor struct {
	cfg Config
}

// NewMonitor creates a monitor with cfg.
func NewMonitor(cfg Config) *Monitor {
	return &Monitor{cfg: cfg}
}

// Check measures p against the session's active segment. It only runs while
// the session is walking, and at most once per Interval regardless of how
// often it is called. A trigger marks the session warned.
func (m *Monitor) Check(s *guidance.Session, p pose.Pose, now time.Time) Result {
	if s == nil || s.State != guidance.StateWalking {
		return Result{}
	}
	seg, ok := s.Current()
	if !ok {
		return Result{}
	}
	if now.Sub(s.LastDeviationCheck) < m.cfg.Interval {
		return Result{}
	}
	s.LastDeviationCheck = now

	if s.DeviationWarned {
		return Result{Checked: true}
	}

	d := geom.PlanarDistanceToSegment(p.Position, seg.Start, seg.End)
	res := Result{Checked: true, Distance: d}
	if d > m.cfg.MaxDeviation {
		s.DeviationWarned = true
		res.Triggered = true
	}
	return res
}
