// Package gun aims the weapon at the predicted intercept and decides when to
// fire.
package gun

import (
	"math"

	"github.com/carver-bot/carver/internal/geo"
	"github.com/carver-bot/carver/internal/predict"
	"github.com/carver-bot/carver/internal/target"
	"github.com/carver-bot/carver/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

const (
	// maxIterations bounds the intercept fixed-point search.
	maxIterations = 10
	// convergence is the flight-time change, in ticks, that ends the search early.
	convergence = 0.01
	// halfSize keeps predicted points where a tank can physically be.
	halfSize = 18
)

// Config for FireControl.
type Config struct {
	Power        PowerPolicy
	AlignDegrees float64 // fire only when the remaining turn is below this
}

// DefaultConfig returns the stock fire-control settings.
func DefaultConfig() Config {
	return Config{Power: DefaultPowerPolicy(), AlignDegrees: 10}
}

// Solution is a resolved firing solution.
type Solution struct {
	Power      float64
	Speed      float64
	FlightTime float64
	Intercept  geom.XY
	Turn       float64 // weapon turn in degrees, normalized
	Fire       bool
}

// FireControl computes firing solutions. It keeps no state between ticks.
type FireControl struct {
	cfg Config
}

// New creates a FireControl.
func New(cfg Config) *FireControl {
	if cfg.AlignDegrees <= 0 {
		cfg.AlignDegrees = DefaultConfig().AlignDegrees
	}
	return &FireControl{cfg: cfg}
}

// Solve resolves the intercept for a locked target. ok is false when no
// target is locked.
func (f *FireControl) Solve(s target.State, own core.OwnState, melee bool) (Solution, bool) {
	if s.None() {
		return Solution{}, false
	}

	power := f.cfg.Power.Power(s.Distance, own.Energy, melee)
	speed := Speed(power)
	self := own.Position()

	flight := s.Distance / speed
	aim := f.project(s, own, flight)
	for range maxIterations {
		next := geo.Distance(self, aim) / speed
		done := math.Abs(next-flight) < convergence
		flight = next
		aim = f.project(s, own, flight)
		if done {
			break
		}
	}

	turn := geo.NormalizeBearing(geo.AbsoluteBearing(self, aim) - own.GunHeading)
	return Solution{
		Power:      power,
		Speed:      speed,
		FlightTime: flight,
		Intercept:  aim,
		Turn:       turn,
		Fire:       own.GunHeat == 0 && math.Abs(turn) < f.cfg.AlignDegrees,
	}, true
}

func (f *FireControl) project(s target.State, own core.OwnState, flight float64) geom.XY {
	p := predict.Position(s, flight)
	if own.Arena.Known() {
		p = geo.Clamp(own.Arena, p, halfSize)
	}
	return p
}

// Aim returns the weapon commands for this tick. With no target locked it
// returns nil.
func (f *FireControl) Aim(s target.State, own core.OwnState, melee bool) []core.Command {
	sol, ok := f.Solve(s, own, melee)
	if !ok {
		return nil
	}
	cmds := []core.Command{{Kind: core.TurnWeapon, Value: sol.Turn}}
	if sol.Fire {
		cmds = append(cmds, core.Command{Kind: core.Fire, Value: sol.Power})
	}
	return cmds
}

// Ram points the weapon at an opponent touching the agent and fires at full
// power when the weapon is cool.
func (f *FireControl) Ram(ev core.Collision, own core.OwnState) []core.Command {
	turn := geo.NormalizeBearing(own.Heading + ev.Bearing - own.GunHeading)
	cmds := []core.Command{{Kind: core.TurnWeapon, Value: turn}}
	if own.GunHeat == 0 {
		cmds = append(cmds, core.Command{Kind: core.Fire, Value: f.cfg.Power.Limit()})
	}
	return cmds
}
