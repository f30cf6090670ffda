// Package target tracks the locked opponent and the last attacker.
package target

import (
	"math"

	"github.com/carver-bot/carver/internal/geo"
	"github.com/carver-bot/carver/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// CircularThreshold is the angular rate, in radians per tick, above which a
// target is considered to be moving on a circle.
const CircularThreshold = 0.1

// Legal firepower range; energy drops outside it are not shots.
const (
	MinShotPower = 0.1
	MaxShotPower = 3.0
)

// Motion classifies how a target is moving.
type Motion int

const (
	Linear Motion = iota
	Circular
)

func (m Motion) String() string {
	if m == Circular {
		return "circular"
	}
	return "linear"
}

// State is the motion estimate for one opponent. An empty Name means no
// target is locked and every other field is zero.
type State struct {
	Name            string
	Bearing         float64 // relative to own heading
	AbsBearing      float64
	Distance        float64
	Energy          float64
	PrevEnergy      float64
	Heading         float64
	Velocity        float64
	Position        geom.XY
	Tick            int64
	AngularVelocity float64 // radians per tick
	TurnRadius      float64
	Motion          Motion
	Complete        bool // at least two observations
}

// None reports whether no target is locked.
func (s State) None() bool {
	return s.Name == ""
}

// Estimator turns raw sightings into a State.
type Estimator struct {
	state     State
	fired     bool
	firePower float64
}

// NewEstimator returns an estimator with no target locked.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// State returns a copy of the current estimate.
func (e *Estimator) State() State {
	return e.state
}

// None reports whether no target is locked.
func (e *Estimator) None() bool {
	return e.state.None()
}

// Reset clears the estimate back to the no-target sentinel.
func (e *Estimator) Reset() {
	*e = Estimator{}
}

// Update folds a sighting into the estimate. A sighting of a different
// identity replaces the estimate and starts a fresh history.
func (e *Estimator) Update(sg core.Sighting, own core.OwnState) State {
	s := &e.state
	first := s.Name != sg.Name
	if first {
		e.Reset()
	}

	prevHeading, prevTick := s.Heading, s.Tick

	s.Name = sg.Name
	s.Bearing = sg.Bearing
	s.AbsBearing = geo.NormalizeHeading(own.Heading + sg.Bearing)
	s.Distance = sg.Distance
	s.Position = geo.Project(own.Position(), s.AbsBearing, sg.Distance)
	s.Heading = sg.Heading
	s.Velocity = sg.Velocity
	s.Tick = sg.Tick

	if first {
		s.PrevEnergy = sg.Energy
		s.Energy = sg.Energy
		s.Motion = Linear
		return *s
	}

	s.PrevEnergy = s.Energy
	s.Energy = sg.Energy
	drop := s.PrevEnergy - s.Energy
	if drop >= MinShotPower && drop <= MaxShotPower {
		e.fired, e.firePower = true, drop
	}

	if dt := sg.Tick - prevTick; dt > 0 {
		turn := geo.Radians(geo.NormalizeBearing(sg.Heading - prevHeading))
		s.AngularVelocity = turn / float64(dt)
		s.Complete = true
	}

	s.Motion = classify(s.Complete, s.AngularVelocity)
	s.TurnRadius = 0
	if s.Motion == Circular {
		s.TurnRadius = s.Velocity / s.AngularVelocity
	}
	return *s
}

// classify is Linear on the threshold itself and whenever history is short.
func classify(complete bool, omega float64) Motion {
	if complete && math.Abs(omega) > CircularThreshold {
		return Circular
	}
	return Linear
}

// ConsumeFire reports whether a sighting since the last call showed an
// energy drop that looks like a shot, and clears the flag.
func (e *Estimator) ConsumeFire() (float64, bool) {
	fired, power := e.fired, e.firePower
	e.fired, e.firePower = false, 0
	return power, fired
}

// FirePending reports whether an inferred shot has not been consumed yet.
func (e *Estimator) FirePending() bool {
	return e.fired
}
