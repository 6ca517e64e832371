package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
	"github.com/A-smalluser/Scene-Nav/pkg/navigation"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSimulateCorner(t *testing.T) {
	data, err := os.ReadFile("testdata/corner.json")
	if err != nil {
		t.Fatal(err)
	}
	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		t.Fatal(err)
	}

	got, err := simulate(sc, navigation.DefaultConfig(), quiet)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	want := []Line{
		{At: "0s", Kind: "walk", Text: "go straight, 10 steps", Segment: 0},
		{At: "2s", Kind: "turn", Text: "turn right 90.0 degrees", Segment: 1},
		{At: "2.5s", Kind: "walk", Text: "go straight, 10 steps", Segment: 1},
		{At: "5s", Kind: "arrival", Text: "destination reached", Segment: -1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
}

func TestSimulateDeviation(t *testing.T) {
	north := geom.Vec{Z: 1}
	sc := Scenario{
		Request: navigation.NavigateRequest{Target: geom.Vec{Z: 5}, Heading: north},
		Track: []Sample{
			{At: "0s", Forward: north},
			{At: "2s", Position: geom.Vec{X: 1, Z: 2}, Forward: north},
			{At: "3s", Position: geom.Vec{X: 1, Z: 2}, Forward: north},
		},
	}

	got, err := simulate(sc, navigation.DefaultConfig(), quiet)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(got) != 2 || got[1].Kind != "deviation" || got[1].At != "2s" {
		t.Errorf("expected one deviation at 2s, got %+v", got)
	}
}

func TestSimulateRejectsBadTrack(t *testing.T) {
	tests := map[string][]Sample{
		"empty":     nil,
		"bad time":  {{At: "soon"}},
		"backwards": {{At: "2s"}, {At: "1s"}},
	}
	for name, track := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := simulate(Scenario{Track: track}, navigation.DefaultConfig(), quiet); err == nil {
				t.Error("expected error")
			}
		})
	}
}
