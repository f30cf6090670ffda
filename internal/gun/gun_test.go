package gun

import (
	"math"
	"testing"

	"github.com/carver-bot/carver/internal/geo"
	"github.com/carver-bot/carver/internal/target"
	"github.com/carver-bot/carver/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerPolicy(t *testing.T) {
	p := DefaultPowerPolicy()

	tests := []struct {
		name     string
		distance float64
		energy   float64
		melee    bool
		want     float64
	}{
		{"close target capped at max", 100, 100, false, 3},
		{"distance scaled", 250, 100, false, 2},
		{"far target", 1000, 100, false, 0.5},
		{"very far target floored", 10000, 100, false, MinPower},
		{"low energy single opponent", 100, 15, false, 1.2},
		{"low energy threshold inclusive", 100, 20, false, 1.2},
		{"low energy melee uses max", 400, 15, true, 3},
		{"melee with energy is distance scaled", 250, 100, true, 2},
		{"zero distance", 0, 100, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, p.Power(tt.distance, tt.energy, tt.melee), 1e-9)
		})
	}
}

func TestPowerPolicy_MeleeFixedLowEnergy(t *testing.T) {
	p := DefaultPowerPolicy()
	p.MeleeLowEnergy = LowEnergyFixed

	assert.InDelta(t, 1.2, p.Power(400, 15, true), 1e-9)
}

func TestSpeed(t *testing.T) {
	assert.Equal(t, 20.0, Speed(0))
	assert.Equal(t, 11.0, Speed(3))
	assert.InDelta(t, 16.4, Speed(1.2), 1e-9)
}

func ownAt(x, y float64) core.OwnState {
	return core.OwnState{X: x, Y: y, Energy: 100, Arena: core.Arena{Width: 800, Height: 600}}
}

func TestSolve_NoTarget(t *testing.T) {
	f := New(DefaultConfig())

	_, ok := f.Solve(target.State{}, ownAt(400, 300), false)
	assert.False(t, ok)
	assert.Nil(t, f.Aim(target.State{}, ownAt(400, 300), false))
}

func TestSolve_StationaryTarget(t *testing.T) {
	f := New(DefaultConfig())
	own := ownAt(400, 300)
	own.GunHeading = 80
	s := target.State{Name: "X", Distance: 200, Position: geom.XY{X: 600, Y: 300}}

	sol, ok := f.Solve(s, own, false)

	require.True(t, ok)
	assert.InDelta(t, 2.5, sol.Power, 1e-9)
	assert.InDelta(t, 600, sol.Intercept.X, 1e-9)
	assert.InDelta(t, 300, sol.Intercept.Y, 1e-9)
	assert.InDelta(t, 10, sol.Turn, 1e-9)
	assert.False(t, sol.Fire, "turn of exactly the threshold does not fire")
}

func TestSolve_LeadsMovingTarget(t *testing.T) {
	f := New(DefaultConfig())
	own := ownAt(100, 300)
	own.GunHeading = 90
	// crossing upwards at 8 units per tick, 400 away
	s := target.State{Name: "X", Distance: 400, Position: geom.XY{X: 500, Y: 200}, Heading: 0, Velocity: 8}

	sol, ok := f.Solve(s, own, false)
	require.True(t, ok)

	// intercept is a fixed point: flight time matches the distance to it
	assert.InDelta(t, geo.Distance(own.Position(), sol.Intercept)/sol.Speed, sol.FlightTime, 0.05)
	assert.Greater(t, sol.Intercept.Y, 200.0)
	assert.Less(t, sol.Turn, 0.0, "leads upwards of the current bearing")
}

func TestSolve_ClampsIntoArena(t *testing.T) {
	f := New(DefaultConfig())
	own := ownAt(400, 300)
	s := target.State{Name: "X", Distance: 300, Position: geom.XY{X: 700, Y: 300}, Heading: 90, Velocity: 8}

	sol, ok := f.Solve(s, own, false)
	require.True(t, ok)

	assert.LessOrEqual(t, sol.Intercept.X, 800.0-halfSize)
}

func TestSolve_CircularTargetConverges(t *testing.T) {
	f := New(DefaultConfig())
	own := core.OwnState{X: 400, Y: 300, Energy: 100}
	w := 0.2
	s := target.State{
		Name: "X", Distance: 250, Position: geom.XY{X: 400, Y: 550},
		Heading: 90, Velocity: 8, AngularVelocity: w, TurnRadius: 8 / w,
		Motion: target.Circular, Complete: true,
	}

	sol, ok := f.Solve(s, own, false)
	require.True(t, ok)

	assert.False(t, math.IsNaN(sol.Intercept.X))
	assert.InDelta(t, geo.Distance(own.Position(), sol.Intercept)/sol.Speed, sol.FlightTime, 0.5)
}

func TestAim_FiresWhenAlignedAndCool(t *testing.T) {
	f := New(DefaultConfig())
	own := ownAt(400, 300)
	own.GunHeading = 92
	s := target.State{Name: "X", Distance: 200, Position: geom.XY{X: 600, Y: 300}}

	cmds := f.Aim(s, own, false)

	require.Len(t, cmds, 2)
	assert.Equal(t, core.TurnWeapon, cmds[0].Kind)
	assert.InDelta(t, -2, cmds[0].Value, 1e-9)
	assert.Equal(t, core.Command{Kind: core.Fire, Value: 2.5}, cmds[1])
}

func TestAim_HoldsFireWhileHot(t *testing.T) {
	f := New(DefaultConfig())
	own := ownAt(400, 300)
	own.GunHeading = 90
	own.GunHeat = 0.4
	s := target.State{Name: "X", Distance: 200, Position: geom.XY{X: 600, Y: 300}}

	cmds := f.Aim(s, own, false)

	require.Len(t, cmds, 1)
	assert.Equal(t, core.TurnWeapon, cmds[0].Kind)
}

func TestAim_LowEnergyTier(t *testing.T) {
	f := New(DefaultConfig())
	own := ownAt(400, 300)
	own.Energy = 15
	own.GunHeading = 90
	s := target.State{Name: "X", Distance: 100, Position: geom.XY{X: 500, Y: 300}}

	cmds := f.Aim(s, own, false)

	require.Len(t, cmds, 2)
	assert.InDelta(t, 1.2, cmds[1].Value, 1e-9)
}

func TestRam(t *testing.T) {
	f := New(DefaultConfig())
	own := ownAt(400, 300)
	own.Heading = 90
	own.GunHeading = 0

	cmds := f.Ram(core.Collision{Name: "X", Bearing: -45}, own)

	require.Len(t, cmds, 2)
	assert.InDelta(t, 45, cmds[0].Value, 1e-9)
	assert.Equal(t, core.Command{Kind: core.Fire, Value: 3}, cmds[1])

	own.GunHeat = 1
	assert.Len(t, f.Ram(core.Collision{Name: "X", Bearing: -45}, own), 1)
}
