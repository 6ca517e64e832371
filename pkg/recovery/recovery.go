// Package recovery sequences the response to an off-track walker: announce,
// wait a grace period for self-correction, re-plan, then hold off further
// deviation warnings for a cooldown.
//
// The coordinator is clock-driven. It stores absolute deadlines and reports
// what is due when polled, so the caller's loop never blocks on a delay.
package recovery

import (
	"fmt"
	"time"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
)

// Phase is the coordinator's sub-state.
type Phase int

const (
	PhaseNormal Phase = iota
	PhaseAlerting
	PhaseRerouting
	PhaseCoolingDown
)

func (p Phase) String() string {
	switch p {
	case PhaseNormal:
		return "normal"
	case PhaseAlerting:
		return "alerting"
	case PhaseRerouting:
		return "rerouting"
	case PhaseCoolingDown:
		return "cooling_down"
	default:
		return "unknown"
	}
}

// MarshalText renders the phase name in JSON.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name written by MarshalText.
func (p *Phase) UnmarshalText(b []byte) error {
	for c := PhaseNormal; c <= PhaseCoolingDown; c++ {
		if c.String() == string(b) {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("recovery: unknown phase %q", b)
}

// Action is work the caller must perform after Due.
type Action int

const (
	// ActionNone means nothing is due.
	ActionNone Action = iota
	// ActionReroute means the grace period ended: clear markers and query a
	// fresh path to Target.
	ActionReroute
	// ActionClearWarning means the cooldown ended and the active session's
	// deviation warning may be cleared.
	ActionClearWarning
)

// Config holds the recovery delays.
type Config struct {
	GracePeriod time.Duration
	Cooldown    time.Duration
}

// DefaultConfig waits 6 s before re-planning and 10 s before re-arming.
func DefaultConfig() Config {
	return Config{
		GracePeriod: 6 * time.Second,
		Cooldown:    10 * time.Second,
	}
}

// Coordinator tracks one recovery at a time. It is not safe for concurrent
// use; the engine drives it from its tick.
type Coordinator struct {
	cfg      Config
	phase    Phase
	target   geom.Vec
	deadline time.Time
}

// New creates an idle coordinator.
func New(cfg Config) *Coordinator {
	return &Coordinator{cfg: cfg}
}

// Begin starts a recovery toward target. It returns false, changing nothing,
// while an earlier recovery is still alerting or re-routing. A recovery begun
// during cooldown replaces the cooldown; the cooldown is never extended.
func (c *Coordinator) Begin(target geom.Vec, now time.Time) bool {
	if c.phase == PhaseAlerting || c.phase == PhaseRerouting {
		return false
	}
	c.phase = PhaseAlerting
	c.target = target
	c.deadline = now.Add(c.cfg.GracePeriod)
	return true
}

// Due advances deadline-driven transitions and reports the resulting action.
func (c *Coordinator) Due(now time.Time) Action {
	if c.deadline.IsZero() || now.Before(c.deadline) {
		return ActionNone
	}
	switch c.phase {
	case PhaseAlerting:
		c.phase = PhaseRerouting
		c.deadline = time.Time{}
		return ActionReroute
	case PhaseCoolingDown:
		c.reset()
		return ActionClearWarning
	}
	return ActionNone
}

// Rerouted records a successful re-plan and starts the cooldown.
func (c *Coordinator) Rerouted(now time.Time) {
	if c.phase != PhaseRerouting {
		return
	}
	c.phase = PhaseCoolingDown
	c.deadline = now.Add(c.cfg.Cooldown)
}

// Abort gives up on the current recovery so a later deviation can retry.
func (c *Coordinator) Abort() {
	c.reset()
}

// Cancel drops any pending deadline. It is used when an explicit request
// supersedes the recovery.
func (c *Coordinator) Cancel() {
	c.reset()
}

func (c *Coordinator) reset() {
	c.phase = PhaseNormal
	c.deadline = time.Time{}
}

// Phase returns the current sub-state.
func (c *Coordinator) Phase() Phase { return c.phase }

// Target returns the destination of the current recovery.
func (c *Coordinator) Target() geom.Vec { return c.target }

// Deadline returns the pending deadline, or the zero time.
func (c *Coordinator) Deadline() time.Time { return c.deadline }
