package deviation_test

import (
	"testing"
	"time"

	"github.com/A-smalluser/Scene-Nav/pkg/deviation"
	"github.com/A-smalluser/Scene-Nav/pkg/geom"
	"github.com/A-smalluser/Scene-Nav/pkg/guidance"
	"github.com/A-smalluser/Scene-Nav/pkg/pathseg"
	"github.com/A-smalluser/Scene-Nav/pkg/pose"
)

var t0 = time.Date(2024, 11, 19, 9, 0, 0, 0, time.UTC)

func walkingSession(t *testing.T) *guidance.Session {
	t.Helper()
	segs, err := pathseg.Build([]geom.Vec{{}, {Z: 5}}, geom.Vec{Z: 1})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	s := guidance.NewSession(segs, geom.Vec{Z: 5}, t0)
	guidance.NewMachine(guidance.DefaultConfig()).Start(s, t0)
	if s.State != guidance.StateWalking {
		t.Fatalf("expected walking session, got %v", s.State)
	}
	return s
}

func TestSingleTriggerPerWindow(t *testing.T) {
	m := deviation.NewMonitor(deviation.DefaultConfig())
	s := walkingSession(t)
	off := pose.New(geom.Vec{X: 1, Z: 2}, geom.Vec{Z: 1})

	if res := m.Check(s, off, t0.Add(1999*time.Millisecond)); res.Checked {
		t.Fatal("check ran before the interval elapsed")
	}

	res := m.Check(s, off, t0.Add(2*time.Second))
	if !res.Triggered || res.Distance != 1 {
		t.Fatalf("expected trigger at 1 m, got %+v", res)
	}
	if !s.DeviationWarned {
		t.Error("session should be marked warned")
	}

	if res := m.Check(s, off, t0.Add(3*time.Second)); res.Checked || res.Triggered {
		t.Errorf("second sample in the same window should not run, got %+v", res)
	}

	if res := m.Check(s, off, t0.Add(4*time.Second)); !res.Checked || res.Triggered {
		t.Errorf("warned session should not retrigger, got %+v", res)
	}
}

func TestRateIndependentOfPolling(t *testing.T) {
	m := deviation.NewMonitor(deviation.DefaultConfig())
	s := walkingSession(t)
	off := pose.New(geom.Vec{X: 2, Z: 2}, geom.Vec{Z: 1})

	checks := 0
	for ms := 0; ms <= 10000; ms += 16 {
		if m.Check(s, off, t0.Add(time.Duration(ms)*time.Millisecond)).Checked {
			checks++
		}
		s.DeviationWarned = false
	}
	if checks != 5 {
		t.Errorf("expected 5 checks in 10 s, got %d", checks)
	}
}

func TestWithinCorridor(t *testing.T) {
	m := deviation.NewMonitor(deviation.DefaultConfig())
	s := walkingSession(t)

	res := m.Check(s, pose.New(geom.Vec{X: 0.4, Y: 1.7, Z: 3}, geom.Vec{Z: 1}), t0.Add(2*time.Second))
	if !res.Checked || res.Triggered {
		t.Errorf("0.4 m should be inside the corridor, got %+v", res)
	}
}

func TestBeyondSegmentEndUsesEndpoint(t *testing.T) {
	m := deviation.NewMonitor(deviation.DefaultConfig())
	s := walkingSession(t)

	// On the line through the segment but 0.6 m past its end.
	res := m.Check(s, pose.New(geom.Vec{Z: 5.6}, geom.Vec{Z: 1}), t0.Add(2*time.Second))
	if !res.Triggered {
		t.Errorf("expected trigger past the end, got %+v", res)
	}
}

func TestInactiveWhileTurning(t *testing.T) {
	m := deviation.NewMonitor(deviation.DefaultConfig())
	segs, _ := pathseg.Build([]geom.Vec{{}, {X: 5}}, geom.Vec{Z: 1})
	s := guidance.NewSession(segs, geom.Vec{X: 5}, t0)
	guidance.NewMachine(guidance.DefaultConfig()).Start(s, t0)

	res := m.Check(s, pose.New(geom.Vec{Z: 3}, geom.Vec{Z: 1}), t0.Add(10*time.Second))
	if res.Checked {
		t.Errorf("monitor must not run while awaiting a turn, got %+v", res)
	}
	if res := m.Check(nil, pose.Pose{}, t0); res.Checked {
		t.Error("nil session should not be checked")
	}
}
