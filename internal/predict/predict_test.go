package predict

import (
	"math"
	"testing"

	"github.com/carver-bot/carver/internal/geo"
	"github.com/carver-bot/carver/internal/target"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestStationaryTargetStaysPut(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := target.State{
			Name:            "X",
			Position:        geom.XY{X: rapid.Float64Range(0, 1000).Draw(t, "x"), Y: rapid.Float64Range(0, 1000).Draw(t, "y")},
			Heading:         rapid.Float64Range(0, 360).Draw(t, "heading"),
			AngularVelocity: rapid.Float64Range(-1, 1).Draw(t, "omega"),
			Complete:        rapid.Bool().Draw(t, "complete"),
		}
		flight := rapid.Float64Range(0, 200).Draw(t, "flight")

		for name, got := range map[string]geom.XY{"linear": Linear(s, flight), "circular": Circular(s, flight)} {
			if math.Abs(got.X-s.Position.X) > 1e-9 || math.Abs(got.Y-s.Position.Y) > 1e-9 {
				t.Fatalf("%s moved a stationary target from %v to %v", name, s.Position, got)
			}
		}
	})
}

func TestLinear(t *testing.T) {
	s := target.State{Position: geom.XY{X: 100, Y: 100}, Heading: 90, Velocity: 8}

	got := Linear(s, 10)

	assert.InDelta(t, 180, got.X, 1e-9)
	assert.InDelta(t, 100, got.Y, 1e-9)
}

func TestCircular_QuarterTurn(t *testing.T) {
	// heading north, turning clockwise a quarter circle over 10 ticks
	w := math.Pi / 20
	s := target.State{Position: geom.XY{X: 0, Y: 0}, Heading: 0, Velocity: 8, AngularVelocity: w, Complete: true}
	r := 8 / w

	got := Circular(s, 10)

	assert.InDelta(t, r, got.X, 1e-9)
	assert.InDelta(t, r, got.Y, 1e-9)
}

func TestCircular_StartsAlongHeading(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := rapid.Float64Range(0, 360).Draw(t, "heading")
		v := rapid.Float64Range(-8, 8).Draw(t, "velocity")
		w := rapid.Float64Range(0.01, 0.17).Draw(t, "rate")
		if rapid.Bool().Draw(t, "counterclockwise") {
			w = -w
		}
		s := target.State{Position: geom.XY{X: 400, Y: 300}, Heading: h, Velocity: v, AngularVelocity: w, Complete: true}

		const dt = 1e-6
		got := Circular(s, dt)
		rad := geo.Radians(h)
		if dx := (got.X - 400) / dt; math.Abs(dx-v*math.Sin(rad)) > 1e-4 {
			t.Fatalf("dx/dt = %v, want %v", dx, v*math.Sin(rad))
		}
		if dy := (got.Y - 300) / dt; math.Abs(dy-v*math.Cos(rad)) > 1e-4 {
			t.Fatalf("dy/dt = %v, want %v", dy, v*math.Cos(rad))
		}
	})
}

func TestCircular_FullCircleReturnsToStart(t *testing.T) {
	w := 2 * math.Pi / 36
	s := target.State{Position: geom.XY{X: 250, Y: 250}, Heading: 123, Velocity: 6, AngularVelocity: -w, Complete: true}

	got := Circular(s, 36)

	assert.InDelta(t, 250, got.X, 1e-9)
	assert.InDelta(t, 250, got.Y, 1e-9)
}

func TestCircular_ApproachesLinearForSmallRate(t *testing.T) {
	s := target.State{Position: geom.XY{X: 0, Y: 0}, Heading: 30, Velocity: 8, AngularVelocity: 1e-7, Complete: true}

	c := Circular(s, 20)
	l := Linear(s, 20)

	assert.InDelta(t, l.X, c.X, 1e-3)
	assert.InDelta(t, l.Y, c.Y, 1e-3)
}

func TestCircular_IncompleteFallsBackToLinear(t *testing.T) {
	s := target.State{Position: geom.XY{X: 0, Y: 0}, Heading: 0, Velocity: 8, AngularVelocity: 0.5}

	assert.Equal(t, Linear(s, 5), Circular(s, 5))
}

func TestPosition_DispatchesOnMotion(t *testing.T) {
	s := target.State{Position: geom.XY{X: 0, Y: 0}, Heading: 0, Velocity: 8, AngularVelocity: 0.5, Complete: true}

	s.Motion = target.Linear
	assert.Equal(t, Linear(s, 5), Position(s, 5))

	s.Motion = target.Circular
	assert.Equal(t, Circular(s, 5), Position(s, 5))
	assert.Greater(t, geo.Distance(Linear(s, 5), Circular(s, 5)), 1.0)
}
