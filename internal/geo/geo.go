// Package geo holds the planar compass geometry shared by the decision core.
//
// Headings and bearings are compass degrees: 0 points up (+Y), angles grow
// clockwise. A unit step along heading h is therefore (sin h, cos h), with
// sine on the X axis.
package geo

import (
	"math"

	"github.com/carver-bot/carver/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// NormalizeBearing maps an angle in degrees into (-180, 180].
func NormalizeBearing(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}

// NormalizeHeading maps an angle in degrees into [0, 360).
func NormalizeHeading(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// NormalizeRadians maps an angle in radians into (-pi, pi].
func NormalizeRadians(rad float64) float64 {
	a := math.Mod(rad, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Direction returns the unit step along a compass heading given in degrees.
func Direction(headingDeg float64) geom.XY {
	r := Radians(headingDeg)
	return geom.XY{X: math.Sin(r), Y: math.Cos(r)}
}

// Project moves dist units from origin along a compass heading.
func Project(origin geom.XY, headingDeg, dist float64) geom.XY {
	return origin.Add(Direction(headingDeg).Scale(dist))
}

// Distance is the Euclidean distance between two points.
func Distance(a, b geom.XY) float64 {
	d := b.Sub(a)
	return math.Hypot(d.X, d.Y)
}

// AbsoluteBearing is the compass heading from one point to another, in [0, 360).
// Coincident points yield 0.
func AbsoluteBearing(from, to geom.XY) float64 {
	d := to.Sub(from)
	if d.X == 0 && d.Y == 0 {
		return 0
	}
	return NormalizeHeading(Degrees(math.Atan2(d.X, d.Y)))
}

// WallDistance is the distance from p to the nearest arena edge.
// It is negative when p lies outside the arena.
func WallDistance(a core.Arena, p geom.XY) float64 {
	return math.Min(math.Min(p.X, p.Y), math.Min(a.Width-p.X, a.Height-p.Y))
}

// Inside reports whether p lies within the arena shrunk by margin on every side.
func Inside(a core.Arena, p geom.XY, margin float64) bool {
	return p.X >= margin && p.Y >= margin &&
		p.X <= a.Width-margin && p.Y <= a.Height-margin
}

// Clamp pulls p into the arena shrunk by margin on every side.
func Clamp(a core.Arena, p geom.XY, margin float64) geom.XY {
	return geom.XY{
		X: math.Max(margin, math.Min(a.Width-margin, p.X)),
		Y: math.Max(margin, math.Min(a.Height-margin, p.Y)),
	}
}
