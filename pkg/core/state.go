// pkg/core/state.go
package core

import geom "github.com/peterstace/simplefeatures/geom"

// Arena is the battlefield rectangle. The origin is the bottom-left corner,
// Y grows upwards.
type Arena struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Known reports whether the host supplied arena bounds.
func (a Arena) Known() bool {
	return a.Width > 0 && a.Height > 0
}

// OwnState is the host's view of the agent at the start of a tick.
// All angles are compass degrees: 0 is up, increasing clockwise.
type OwnState struct {
	Tick              int64   `json:"tick"`
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	Heading           float64 `json:"heading"`
	Energy            float64 `json:"energy"`
	GunHeading        float64 `json:"gunHeading"`
	GunHeat           float64 `json:"gunHeat"`
	RadarHeading      float64 `json:"radarHeading"`
	DistanceRemaining float64 `json:"distanceRemaining"`
	Arena             Arena   `json:"arena"`
	Opponents         int     `json:"opponents"`
}

// Position returns the agent's location as a planar point.
func (s OwnState) Position() geom.XY {
	return geom.XY{X: s.X, Y: s.Y}
}
