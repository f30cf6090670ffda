package radar

import (
	"math"
	"testing"

	"github.com/carver-bot/carver/internal/target"
	"github.com/carver-bot/carver/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var own = core.OwnState{X: 400, Y: 300}

func lockedAt(name string, distance float64, p geom.XY) target.State {
	return target.State{Name: name, Distance: distance, Position: p, Energy: 100}
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, Sweeping, StateOf(target.State{}))
	assert.Equal(t, Tracking, StateOf(target.State{Name: "X"}))
}

func TestSingleOpponent_ShouldTrack(t *testing.T) {
	p := NewSingleOpponent(DefaultConfig())
	locked := lockedAt("X", 300, geom.XY{})

	tests := []struct {
		name   string
		sg     core.Sighting
		locked target.State
		want   bool
	}{
		{"no lock", core.Sighting{Name: "Y", Distance: 900}, target.State{}, true},
		{"same identity further away", core.Sighting{Name: "X", Distance: 800}, locked, true},
		{"closer by less than margin", core.Sighting{Name: "Y", Distance: 240}, locked, false},
		{"closer by exactly margin", core.Sighting{Name: "Y", Distance: 230}, locked, false},
		{"closer by more than margin", core.Sighting{Name: "Y", Distance: 229}, locked, true},
		{"further away", core.Sighting{Name: "Y", Distance: 350}, locked, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ShouldTrack(tt.sg, tt.locked))
		})
	}
}

func TestSingleOpponent_Step(t *testing.T) {
	p := NewSingleOpponent(DefaultConfig())

	assert.Equal(t, core.Command{Kind: core.TurnSensor, Value: Sweep}, p.Start())
	assert.Equal(t, core.Command{Kind: core.TurnSensor, Value: Sweep}, p.Step(target.State{}, target.Impact{}, own))

	// target due east, radar facing north: turn right and overshoot a little
	cmd := p.Step(lockedAt("X", 100, geom.XY{X: 500, Y: 300}), target.Impact{}, own)
	assert.Equal(t, core.TurnSensor, cmd.Kind)
	assert.InDelta(t, 90+math.Atan(0.01)*180/math.Pi, cmd.Value, 1e-9)

	// target due west: overshoot to the left
	cmd = p.Step(lockedAt("X", 100, geom.XY{X: 300, Y: 300}), target.Impact{}, own)
	assert.Less(t, cmd.Value, -90.0)
}

func TestWasTracking(t *testing.T) {
	for _, p := range []Policy{NewSingleOpponent(DefaultConfig()), NewMultiOpponent()} {
		t.Run(string(p.Mode()), func(t *testing.T) {
			locked := lockedAt("X", 100, geom.XY{})
			assert.True(t, p.WasTracking("X", locked))
			assert.False(t, p.WasTracking("Y", locked))
			assert.False(t, p.WasTracking("", target.State{}))
		})
	}
}

func TestMultiOpponent_ShouldTrack(t *testing.T) {
	p := NewMultiOpponent()
	locked := lockedAt("X", 300, geom.XY{})

	tests := []struct {
		name string
		sg   core.Sighting
		want bool
	}{
		{"strictly closer", core.Sighting{Name: "Y", Distance: 299, Energy: 100}, true},
		{"equal distance", core.Sighting{Name: "Y", Distance: 300, Energy: 100}, false},
		{"weak and within twice the distance", core.Sighting{Name: "Y", Distance: 550, Energy: 39}, true},
		{"weak but too far", core.Sighting{Name: "Y", Distance: 600, Energy: 10}, false},
		{"healthy and further", core.Sighting{Name: "Y", Distance: 400, Energy: 40}, false},
		{"current target", core.Sighting{Name: "X", Distance: 900, Energy: 100}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ShouldTrack(tt.sg, locked))
		})
	}
	assert.True(t, p.ShouldTrack(core.Sighting{Name: "Y", Distance: 1000}, target.State{}))
}

func TestMultiOpponent_BeamWidth(t *testing.T) {
	p := NewMultiOpponent()
	p.Start()
	require.Equal(t, 100.0, p.Width())

	locked := lockedAt("X", 200, geom.XY{X: 400, Y: 500})
	hot := own
	hot.GunHeat = 2.5

	p.Step(locked, target.Impact{}, hot)
	assert.Equal(t, 10.0, p.Width(), "capped while cooling")

	for range 20 {
		p.Step(locked, target.Impact{}, own)
	}
	assert.Equal(t, 4.0, p.Width(), "narrows to the floor once ready")

	p.OnHit()
	assert.Equal(t, 9.0, p.Width())

	p.Step(locked, target.Impact{}, hot)
	assert.Equal(t, 10.0, p.Width())

	p.Step(target.State{}, target.Impact{}, own)
	assert.Equal(t, 100.0, p.Width(), "resets on losing the lock")
}

func TestMultiOpponent_OvershootCapped(t *testing.T) {
	p := NewMultiOpponent()

	// width 99 after one ready tick, so the extra scan hits the cap
	cmd := p.Step(lockedAt("X", 200, geom.XY{X: 500, Y: 300}), target.Impact{}, own)

	assert.InDelta(t, 90+50, cmd.Value, 1e-9)
}

func TestMultiOpponent_RedirectsToAttacker(t *testing.T) {
	p := NewMultiOpponent()
	var attacker target.Impact
	attacker.Record(core.Impact{Name: "Y", Bearing: -120}, 0)
	facing := own
	facing.RadarHeading = 200

	cmd := p.Step(target.State{}, attacker, facing)
	assert.InDelta(t, 40, cmd.Value, 1e-9)

	// with a lock the attacker is ignored
	cmd = p.Step(lockedAt("X", 200, geom.XY{X: 400, Y: 500}), attacker, own)
	assert.Greater(t, cmd.Value, 0.0)
}
