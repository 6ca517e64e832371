package navigation

import (
	"time"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
	"github.com/A-smalluser/Scene-Nav/pkg/guidance"
	"github.com/A-smalluser/Scene-Nav/pkg/pathseg"
	"github.com/A-smalluser/Scene-Nav/pkg/recovery"
)

// RouteSegment is the read-only view of one segment.
type RouteSegment struct {
	Start       geom.Vec `json:"start"`
	End         geom.Vec `json:"end"`
	Distance    float64  `json:"distance"`
	TurnAngle   float64  `json:"turn_angle"`
	Instruction string   `json:"instruction"`
}

// Snapshot is an immutable copy of engine state taken at the end of a tick.
type Snapshot struct {
	Active           bool                  `json:"active"`
	SessionID        string                `json:"session_id,omitempty"`
	State            guidance.State        `json:"state"`
	Segment          int                   `json:"segment"`
	Segments         int                   `json:"segments"`
	DeviationWarned  bool                  `json:"deviation_warned"`
	Target           geom.Vec              `json:"target"`
	Recovery         recovery.Phase        `json:"recovery"`
	RecoveryDeadline time.Time             `json:"recovery_deadline,omitempty"`
	Pending          bool                  `json:"pending"`
	Markers          int                   `json:"markers"`
	LastInstruction  *guidance.Instruction `json:"last_instruction,omitempty"`
	LastError        string                `json:"last_error,omitempty"`
	Route            []RouteSegment        `json:"route,omitempty"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// Snapshot returns the state published by the most recent tick. It is safe to
// call from any goroutine.
func (e *Engine) Snapshot() Snapshot {
	return *e.snapshot.Load()
}

func (e *Engine) publish(now time.Time) {
	snap := &Snapshot{
		Recovery:         e.recovery.Phase(),
		RecoveryDeadline: e.recovery.Deadline(),
		Pending:          e.pending,
		UpdatedAt:        now,
	}
	if e.last != nil {
		in := *e.last
		snap.LastInstruction = &in
	}
	if e.lastErr != nil {
		snap.LastError = e.lastErr.Error()
	}
	if s := e.active.Load(); s != nil {
		snap.Active = true
		snap.SessionID = s.ID
		snap.State = s.State
		snap.Segment = s.Index
		snap.Segments = len(s.Segments)
		snap.DeviationWarned = s.DeviationWarned
		snap.Target = s.Target
		snap.Markers = len(s.Markers)
		snap.Route = routeView(s.Segments)
	}
	e.snapshot.Store(snap)
}

func routeView(segs []pathseg.Segment) []RouteSegment {
	out := make([]RouteSegment, len(segs))
	for i, s := range segs {
		out[i] = RouteSegment{
			Start:       s.Start,
			End:         s.End,
			Distance:    s.Distance,
			TurnAngle:   s.TurnAngle,
			Instruction: s.Instruction,
		}
	}
	return out
}
