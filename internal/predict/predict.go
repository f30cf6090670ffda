// Package predict projects a target estimate forward in time.
package predict

import (
	"math"

	"github.com/carver-bot/carver/internal/geo"
	"github.com/carver-bot/carver/internal/target"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Linear assumes the target keeps its heading and speed.
func Linear(s target.State, t float64) geom.XY {
	return geo.Project(s.Position, s.Heading, s.Velocity*t)
}

// Circular assumes the target keeps turning at its angular rate on a circle
// of radius v/w. With no usable rate it falls back to Linear. The derivative
// at t=0 is v·(sin h, cos h), so the arc leaves along the current heading.
func Circular(s target.State, t float64) geom.XY {
	w := s.AngularVelocity
	if !s.Complete || w == 0 {
		return Linear(s, t)
	}
	r := s.Velocity / w
	h := geo.Radians(s.Heading)
	return s.Position.Add(geom.XY{
		X: r * (math.Cos(h) - math.Cos(h+w*t)),
		Y: r * (math.Sin(h+w*t) - math.Sin(h)),
	})
}

// Position projects with the branch matching the target's classification.
func Position(s target.State, t float64) geom.XY {
	if s.Motion == target.Circular {
		return Circular(s, t)
	}
	return Linear(s, t)
}
