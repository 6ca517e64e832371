// Command pathsim replays a scripted walk through the guidance engine and
// prints every instruction it would announce.
//
// The scenario is read from a file argument (or stdin):
//
//	{
//	  "via":     [{"X": 0, "Y": 0, "Z": 5}],
//	  "request": {"target": {"X": 5, "Y": 0, "Z": 5}, "heading": {"X": 0, "Y": 0, "Z": 1}},
//	  "track":   [{"at": "0s", "position": {...}, "forward": {...}}, ...]
//	}
//
// Routes come from a static service: start, the via corners, then the target.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/A-smalluser/Scene-Nav/internal/log"
	"github.com/A-smalluser/Scene-Nav/pkg/geom"
	"github.com/A-smalluser/Scene-Nav/pkg/navigation"
	"github.com/A-smalluser/Scene-Nav/pkg/pathquery"
	"github.com/A-smalluser/Scene-Nav/pkg/pose"
)

// Scenario is one scripted walk.
type Scenario struct {
	Via     []geom.Vec                 `json:"via"`
	Request navigation.NavigateRequest `json:"request"`
	Track   []Sample                   `json:"track"`
}

// Sample is a pose observed at an offset from the start of the walk.
type Sample struct {
	At       string   `json:"at"`
	Position geom.Vec `json:"position"`
	Forward  geom.Vec `json:"forward"`
}

// Line is one printed instruction.
type Line struct {
	At      string `json:"at"`
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	Segment int    `json:"segment"`
}

var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func main() {
	level := flag.String("log", "error", "Log level written to stderr")
	flag.Parse()

	var (
		data []byte
		err  error
	)
	if flag.NArg() > 0 {
		data, err = os.ReadFile(flag.Arg(0))
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading scenario: %v\n", err)
		os.Exit(1)
	}

	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing scenario: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, *level, false)
	lines, err := simulate(sc, navigation.DefaultConfig(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulation error: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, l := range lines {
		if err := enc.Encode(l); err != nil {
			fmt.Fprintf(os.Stderr, "error writing output: %v\n", err)
			os.Exit(1)
		}
	}
}

// simulate issues the request before the first sample and ticks the engine
// once per sample, in order.
func simulate(sc Scenario, cfg navigation.Config, logger *slog.Logger) ([]Line, error) {
	if len(sc.Track) == 0 {
		return nil, errors.New("scenario has an empty track")
	}

	engine := navigation.New(cfg, pathquery.Static{Via: sc.Via},
		navigation.WithExecutor(navigation.Inline),
		navigation.WithLogger(logger),
	)
	engine.RequestNavigate(sc.Request)

	var lines []Line
	var last time.Duration
	for i, s := range sc.Track {
		at, err := time.ParseDuration(s.At)
		if err != nil {
			return nil, fmt.Errorf("track[%d]: %w", i, err)
		}
		if at < last {
			return nil, fmt.Errorf("track[%d]: time %s goes backwards", i, s.At)
		}
		last = at

		for _, in := range engine.Tick(pose.New(s.Position, s.Forward), epoch.Add(at)) {
			lines = append(lines, Line{
				At:      at.String(),
				Kind:    in.Kind.String(),
				Text:    in.Text,
				Segment: in.Segment,
			})
		}
	}
	return lines, nil
}
