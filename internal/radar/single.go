package radar

import (
	"math"

	"github.com/carver-bot/carver/internal/target"
	"github.com/carver-bot/carver/pkg/core"
)

const (
	singleWidth    = 1.0
	singleMaxExtra = 45.0
)

// SingleOpponent holds a narrow beam on one opponent and only switches to a
// new one when it is closer by the hysteresis margin.
type SingleOpponent struct {
	cfg Config
}

// NewSingleOpponent creates the single-opponent policy.
func NewSingleOpponent(cfg Config) *SingleOpponent {
	return &SingleOpponent{cfg: cfg}
}

func (p *SingleOpponent) Mode() Mode          { return ModeSingle }
func (p *SingleOpponent) Start() core.Command { return sweep() }
func (p *SingleOpponent) OnHit()              {}
func (p *SingleOpponent) Width() float64      { return singleWidth }

func (p *SingleOpponent) ShouldTrack(sg core.Sighting, locked target.State) bool {
	return locked.None() ||
		sg.Name == locked.Name ||
		sg.Distance < locked.Distance-p.cfg.Hysteresis
}

func (p *SingleOpponent) WasTracking(name string, locked target.State) bool {
	return !locked.None() && name == locked.Name
}

func (p *SingleOpponent) Step(locked target.State, _ target.Impact, own core.OwnState) core.Command {
	if locked.None() {
		return sweep()
	}
	extra := math.Min(halfAngle(singleWidth, locked.Distance), singleMaxExtra)
	return core.Command{Kind: core.TurnSensor, Value: overshoot(bearingTo(locked, own), extra)}
}
