package guidance_test

import (
	"testing"
	"time"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
	"github.com/A-smalluser/Scene-Nav/pkg/guidance"
	"github.com/A-smalluser/Scene-Nav/pkg/pathseg"
	"github.com/A-smalluser/Scene-Nav/pkg/pose"
)

var t0 = time.Date(2024, 11, 19, 9, 0, 0, 0, time.UTC)

func newSession(t *testing.T, corners []geom.Vec, heading geom.Vec) *guidance.Session {
	t.Helper()
	segs, err := pathseg.Build(corners, heading)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return guidance.NewSession(segs, corners[len(corners)-1], t0)
}

func texts(ins []guidance.Instruction) []string {
	out := make([]string, len(ins))
	for i, in := range ins {
		out[i] = in.Text
	}
	return out
}

func TestStartStraightAnnouncesWalk(t *testing.T) {
	m := guidance.NewMachine(guidance.DefaultConfig())
	s := newSession(t, []geom.Vec{{}, {Z: 5}}, geom.Vec{Z: 1})

	out := m.Start(s, t0)
	if len(out) != 1 || out[0].Kind != guidance.KindWalk || out[0].Text != "go straight, 10 steps" {
		t.Fatalf("unexpected start output %+v", out)
	}
	if s.State != guidance.StateWalking || s.Index != 0 {
		t.Errorf("state=%v index=%d", s.State, s.Index)
	}
}

func TestStartTurnAwaitsOrientation(t *testing.T) {
	m := guidance.NewMachine(guidance.DefaultConfig())
	s := newSession(t, []geom.Vec{{}, {X: 4}}, geom.Vec{Z: 1})

	out := m.Start(s, t0)
	if len(out) != 1 || out[0].Kind != guidance.KindTurn || out[0].Text != "turn right 90.0 degrees" {
		t.Fatalf("unexpected start output %+v", out)
	}
	if s.State != guidance.StateAwaitingTurn {
		t.Fatalf("expected awaiting turn, got %v", s.State)
	}

	t.Run("still facing the old way", func(t *testing.T) {
		out := m.Tick(s, pose.New(geom.Vec{}, geom.Vec{Z: 1}), t0.Add(time.Second))
		if len(out) != 0 || s.State != guidance.StateAwaitingTurn {
			t.Errorf("should keep waiting, got %v in %v", texts(out), s.State)
		}
	})

	t.Run("walking does not count while awaiting turn", func(t *testing.T) {
		out := m.Tick(s, pose.New(geom.Vec{X: 4}, geom.Vec{Z: 1}), t0.Add(2*time.Second))
		if len(out) != 0 || s.Index != 0 {
			t.Errorf("should not advance while awaiting turn, got %v", texts(out))
		}
	})

	t.Run("facing within tolerance", func(t *testing.T) {
		// About 8° off the segment direction.
		out := m.Tick(s, pose.New(geom.Vec{}, geom.Vec{X: 1, Z: 0.14}), t0.Add(3*time.Second))
		if len(out) != 1 || out[0].Kind != guidance.KindWalk || out[0].Text != "go straight, 8 steps" {
			t.Fatalf("expected walk instruction, got %+v", out)
		}
		if s.State != guidance.StateWalking {
			t.Errorf("expected walking, got %v", s.State)
		}
	})
}

func TestFullRouteArrivesOnce(t *testing.T) {
	m := guidance.NewMachine(guidance.DefaultConfig())
	corners := []geom.Vec{{}, {Z: 5}, {X: 5, Z: 5}, {X: 5, Z: 8}}
	s := newSession(t, corners, geom.Vec{Z: 1})

	var all []guidance.Instruction
	now := t0
	step := func(p pose.Pose) {
		now = now.Add(100 * time.Millisecond)
		all = append(all, m.Tick(s, p, now)...)
	}

	all = append(all, m.Start(s, now)...)
	step(pose.New(geom.Vec{Z: 4.9}, geom.Vec{Z: 1}))          // reach corner 1
	step(pose.New(geom.Vec{Z: 5}, geom.Vec{X: 1}))            // face +X
	step(pose.New(geom.Vec{X: 4.85, Z: 5.1}, geom.Vec{X: 1})) // reach corner 2
	step(pose.New(geom.Vec{X: 5, Z: 5}, geom.Vec{Z: 1}))      // face +Z
	step(pose.New(geom.Vec{X: 5, Z: 8}, geom.Vec{Z: 1}))      // arrive
	step(pose.New(geom.Vec{X: 5, Z: 8}, geom.Vec{Z: 1}))      // nothing more

	want := []string{
		"go straight, 10 steps",
		"turn right 90.0 degrees",
		"go straight, 10 steps",
		"turn left 90.0 degrees",
		"go straight, 6 steps",
		"destination reached",
	}
	got := texts(all)
	if len(got) != len(want) {
		t.Fatalf("got %d instructions %q, want %q", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instruction %d = %q, want %q", i, got[i], want[i])
		}
	}

	arrivals := 0
	for _, in := range all {
		if in.Kind == guidance.KindArrival {
			arrivals++
		}
	}
	if arrivals != 1 {
		t.Errorf("expected exactly one arrival, got %d", arrivals)
	}
	if !s.Done() || s.Index != len(s.Segments) {
		t.Errorf("expected arrived at index %d, got %v at %d", len(s.Segments), s.State, s.Index)
	}
}

func TestReachingWaypointClearsWarning(t *testing.T) {
	m := guidance.NewMachine(guidance.DefaultConfig())
	s := newSession(t, []geom.Vec{{}, {Z: 1}, {Z: 2}}, geom.Vec{Z: 1})
	m.Start(s, t0)
	s.DeviationWarned = true

	m.Tick(s, pose.New(geom.Vec{Z: 1}, geom.Vec{Z: 1}), t0.Add(time.Second))
	if s.DeviationWarned {
		t.Error("warning should clear on waypoint advance")
	}
	if s.Index != 1 {
		t.Errorf("expected index 1, got %d", s.Index)
	}
}

func TestStartEmptySessionIsNoop(t *testing.T) {
	m := guidance.NewMachine(guidance.DefaultConfig())
	s := guidance.NewSession(nil, geom.Vec{}, t0)
	if out := m.Start(s, t0); out != nil {
		t.Errorf("expected no output, got %v", out)
	}
	if s.State != guidance.StateIdle {
		t.Errorf("expected idle, got %v", s.State)
	}
	if out := m.Start(nil, t0); out != nil {
		t.Errorf("expected no output for nil session, got %v", out)
	}
}
