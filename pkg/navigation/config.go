package navigation

import (
	"time"

	"github.com/A-smalluser/Scene-Nav/pkg/deviation"
	"github.com/A-smalluser/Scene-Nav/pkg/guidance"
	"github.com/A-smalluser/Scene-Nav/pkg/pathseg"
	"github.com/A-smalluser/Scene-Nav/pkg/recovery"
)

// Config holds all tunable parameters for guidance.
type Config struct {
	// Segmentation and announcements
	StepLength     float64 // metres per announced step
	StraightMaxDeg float64 // |turn| at or below this is walked straight

	// Guidance
	DirectionThresholdDeg float64 // facing error accepted to finish a turn
	ReachDistance         float64 // planar metres to reach a waypoint

	// Deviation
	MaxDeviation  float64       // planar metres tolerated off the segment
	CheckInterval time.Duration // minimum time between deviation checks

	// Recovery
	GracePeriod time.Duration // wait after deviation before re-planning
	Cooldown    time.Duration // wait after re-planning before re-arming

	// Requests
	TargetStandoff float64       // metres to back off from a gazed surface
	QueryTimeout   time.Duration // bound on one path query

	// Loop
	TickInterval time.Duration
}

// DefaultConfig returns the standard walking configuration.
func DefaultConfig() Config {
	return Config{
		StepLength:     pathseg.DefaultStepLength,
		StraightMaxDeg: pathseg.DefaultStraightMaxDeg,

		DirectionThresholdDeg: 10,
		ReachDistance:         0.25,

		MaxDeviation:  0.5,
		CheckInterval: 2 * time.Second,

		GracePeriod: 6 * time.Second,
		Cooldown:    10 * time.Second,

		TargetStandoff: 1.0,
		QueryTimeout:   5 * time.Second,

		TickInterval: 100 * time.Millisecond,
	}
}

// queryTimeout is QueryTimeout, or the default when it is not positive.
func (c Config) queryTimeout() time.Duration {
	if c.QueryTimeout <= 0 {
		return DefaultConfig().QueryTimeout
	}
	return c.QueryTimeout
}

func (c Config) segmentOptions() pathseg.Options {
	return pathseg.Options{StepLength: c.StepLength, StraightMaxDeg: c.StraightMaxDeg}
}

func (c Config) guidance() guidance.Config {
	return guidance.Config{
		StepLength:            c.StepLength,
		DirectionThresholdDeg: c.DirectionThresholdDeg,
		ReachDistance:         c.ReachDistance,
	}
}

func (c Config) deviation() deviation.Config {
	return deviation.Config{Interval: c.CheckInterval, MaxDeviation: c.MaxDeviation}
}

func (c Config) recovery() recovery.Config {
	return recovery.Config{GracePeriod: c.GracePeriod, Cooldown: c.Cooldown}
}
