// Package pathseg turns a route polyline into annotated walking segments.
//
// Each segment records its planar length and the signed turn the walker has
// to make relative to the direction they were facing before it: the initial
// heading for the first segment, the previous segment's direction after that.
package pathseg

import (
	"math"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultStepLength     = 0.5  // metres per step
	DefaultStraightMaxDeg = 15.0 // |turn| at or below this is "straight"
)

// Segment is the stretch between two consecutive corners.
// Segments are derived once and never mutated.
type Segment struct {
	Start       geom.Vec `json:"start"`
	End         geom.Vec `json:"end"`
	Distance    float64  `json:"distance"`
	TurnAngle   float64  `json:"turn_angle"`
	IsStraight  bool     `json:"is_straight"`
	Instruction string   `json:"instruction"`
}

// Direction is the unit horizontal direction from Start to End.
func (s Segment) Direction() geom.Vec {
	return geom.HorizontalDir(r3.Sub(s.End, s.Start))
}

// WalkInstruction is the straight-walk announcement for this segment.
func (s Segment) WalkInstruction(stepLength float64) string {
	return WalkText(s.Distance, stepLength)
}

// Options tune segmentation.
type Options struct {
	StepLength     float64
	StraightMaxDeg float64
}

func (o Options) withDefaults() Options {
	if o.StepLength <= 0 {
		o.StepLength = DefaultStepLength
	}
	if o.StraightMaxDeg <= 0 {
		o.StraightMaxDeg = DefaultStraightMaxDeg
	}
	return o
}

// Build segments corners using the default options.
func Build(corners []geom.Vec, heading geom.Vec) ([]Segment, error) {
	return BuildWithOptions(corners, heading, Options{})
}

// BuildWithOptions returns len(corners)-1 segments, or an
// *InsufficientPathError if fewer than two corners are given.
func BuildWithOptions(corners []geom.Vec, heading geom.Vec, opts Options) ([]Segment, error) {
	if len(corners) < 2 {
		return nil, &InsufficientPathError{Corners: len(corners)}
	}
	opts = opts.withDefaults()

	reference := geom.HorizontalDir(heading)
	segments := make([]Segment, 0, len(corners)-1)
	for i := 0; i < len(corners)-1; i++ {
		start, end := corners[i], corners[i+1]
		delta := geom.Horizontal(r3.Sub(end, start))
		dir := geom.HorizontalDir(delta)

		angle := geom.SignedAngle(reference, dir)
		seg := Segment{
			Start:      start,
			End:        end,
			Distance:   r3.Norm(delta),
			TurnAngle:  angle,
			IsStraight: math.Abs(angle) <= opts.StraightMaxDeg,
		}
		if seg.IsStraight {
			seg.Instruction = WalkText(seg.Distance, opts.StepLength)
		} else {
			seg.Instruction = TurnText(angle)
		}
		segments = append(segments, seg)
		reference = dir
	}
	return segments, nil
}

// TotalDistance is the planar length of the whole route.
func TotalDistance(segments []Segment) float64 {
	var total float64
	for _, s := range segments {
		total += s.Distance
	}
	return total
}
