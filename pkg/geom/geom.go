// Package geom provides the small amount of vector math the guidance engine
// needs: horizontal projection, planar distances and angles about the
// vertical axis.
//
// World coordinates are Y-up. All angles are in degrees.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a point or direction in world space.
type Vec = r3.Vec

// Up is the vertical axis used as the sign reference for turn angles.
var Up = Vec{Y: 1}

// epsilon below which a vector is treated as zero length.
const epsilon = 1e-9

// Horizontal drops the vertical component of v.
func Horizontal(v Vec) Vec {
	v.Y = 0
	return v
}

// HorizontalDir returns v projected to the horizontal plane and normalized.
// A vector with no horizontal extent yields the zero vector.
func HorizontalDir(v Vec) Vec {
	h := Horizontal(v)
	n := r3.Norm(h)
	if n < epsilon {
		return Vec{}
	}
	return r3.Scale(1/n, h)
}

// PlanarDistance is the distance between a and b ignoring height.
func PlanarDistance(a, b Vec) float64 {
	return r3.Norm(Horizontal(r3.Sub(b, a)))
}

// IsZero reports whether v is (numerically) the zero vector.
func IsZero(v Vec) bool {
	return r3.Norm(v) < epsilon
}

// Angle returns the unsigned angle between a and b in [0, 180].
// Degenerate inputs yield 0.
func Angle(a, b Vec) float64 {
	na, nb := r3.Norm(a), r3.Norm(b)
	if na < epsilon || nb < epsilon {
		return 0
	}
	cos := r3.Dot(a, b) / (na * nb)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// SignedAngle returns the angle from one direction to another about Up,
// normalized to (-180, 180]. Positive values are clockwise when seen from
// above, i.e. a right turn. Degenerate inputs yield 0.
func SignedAngle(from, to Vec) float64 {
	if IsZero(from) || IsZero(to) {
		return 0
	}
	sin := r3.Dot(Up, r3.Cross(from, to))
	cos := r3.Dot(from, to)
	return NormalizeDegrees(math.Atan2(sin, cos) * 180 / math.Pi)
}

// NormalizeDegrees maps any angle into (-180, 180].
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	}
	if deg <= -180 {
		deg += 360
	}
	return deg
}

// DistanceToSegment returns the distance from p to the segment [a, b],
// clamped to the nearer endpoint when the projection of p falls outside it.
func DistanceToSegment(p, a, b Vec) float64 {
	line := r3.Sub(b, a)
	length := r3.Norm(line)
	if length < epsilon {
		return r3.Norm(r3.Sub(p, a))
	}
	dir := r3.Scale(1/length, line)
	t := r3.Dot(r3.Sub(p, a), dir)
	switch {
	case t <= 0:
		return r3.Norm(r3.Sub(p, a))
	case t >= length:
		return r3.Norm(r3.Sub(p, b))
	}
	foot := r3.Add(a, r3.Scale(t, dir))
	return r3.Norm(r3.Sub(p, foot))
}

// PlanarDistanceToSegment is DistanceToSegment evaluated in the horizontal
// plane.
func PlanarDistanceToSegment(p, a, b Vec) float64 {
	return DistanceToSegment(Horizontal(p), Horizontal(a), Horizontal(b))
}

// Offset moves p by dist along dir. A zero dir leaves p unchanged.
func Offset(p, dir Vec, dist float64) Vec {
	n := r3.Norm(dir)
	if n < epsilon {
		return p
	}
	return r3.Add(p, r3.Scale(dist/n, dir))
}

// Finite reports whether every component of v is a finite number.
func Finite(v Vec) bool {
	for _, c := range [...]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
