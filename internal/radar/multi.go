package radar

import (
	"math"

	"github.com/carver-bot/carver/internal/geo"
	"github.com/carver-bot/carver/internal/target"
	"github.com/carver-bot/carver/pkg/core"
)

const (
	sweepWidth    = 100.0 // beam width while searching
	maxWidth      = 10.0  // cap while the weapon cools
	minWidth      = 4.0   // floor once the weapon is ready
	hitWidening   = 5.0
	hotGun        = 2.0 // gun heat above which the beam widens
	multiMaxExtra = 50.0
	// finishing lets a weak opponent steal the lock from up to twice as far.
	finishingEnergy = 40.0
	finishingRange  = 2.0
)

// MultiOpponent prefers the closest or weakest opponent and adapts its beam
// width to the weapon's readiness.
type MultiOpponent struct {
	width float64
}

// NewMultiOpponent creates the multi-opponent policy.
func NewMultiOpponent() *MultiOpponent {
	return &MultiOpponent{width: sweepWidth}
}

func (p *MultiOpponent) Mode() Mode     { return ModeMulti }
func (p *MultiOpponent) Width() float64 { return p.width }

func (p *MultiOpponent) Start() core.Command {
	p.width = sweepWidth
	return sweep()
}

func (p *MultiOpponent) OnHit() {
	p.width += hitWidening
}

func (p *MultiOpponent) ShouldTrack(sg core.Sighting, locked target.State) bool {
	return locked.None() ||
		sg.Name == locked.Name ||
		sg.Distance < locked.Distance ||
		(sg.Energy < finishingEnergy && sg.Distance < locked.Distance*finishingRange)
}

func (p *MultiOpponent) WasTracking(name string, locked target.State) bool {
	return !locked.None() && name == locked.Name
}

func (p *MultiOpponent) Step(locked target.State, attacker target.Impact, own core.OwnState) core.Command {
	if locked.None() {
		if !attacker.None() {
			turn := geo.NormalizeBearing(attacker.AbsBearing - own.RadarHeading)
			return core.Command{Kind: core.TurnSensor, Value: turn}
		}
		p.width = sweepWidth
		return sweep()
	}

	if own.GunHeat > hotGun {
		p.width = math.Min(p.width+1, maxWidth)
	} else if p.width > minWidth {
		p.width--
	}

	extra := math.Min(p.width+halfAngle(p.width, locked.Distance), multiMaxExtra)
	return core.Command{Kind: core.TurnSensor, Value: overshoot(bearingTo(locked, own), extra)}
}
