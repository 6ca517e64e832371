package pathseg

import (
	"fmt"
	"math"
)

// Fixed announcements that do not depend on a segment.
const (
	ArrivalText   = "destination reached"
	DeviationText = "deviation detected, replanning"
	NoRouteText   = "no route found"
)

// Steps converts a walking distance into a step count of at least one.
func Steps(distance, stepLength float64) int {
	if stepLength <= 0 {
		stepLength = DefaultStepLength
	}
	return max(1, int(math.Floor(distance/stepLength)))
}

// WalkText is the instruction for walking a straight distance.
func WalkText(distance, stepLength float64) string {
	return fmt.Sprintf("go straight, %d steps", Steps(distance, stepLength))
}

// TurnText is the instruction for turning in place. Positive angles turn right.
func TurnText(turnAngle float64) string {
	side := "left"
	if turnAngle > 0 {
		side = "right"
	}
	return fmt.Sprintf("turn %s %.1f degrees", side, math.Abs(turnAngle))
}
