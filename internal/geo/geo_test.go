package geo

import (
	"math"
	"testing"

	"github.com/carver-bot/carver/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNormalizeBearing(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"positive in range", 90, 90},
		{"exactly 180", 180, 180},
		{"exactly -180 wraps to 180", -180, 180},
		{"just past 180", 190, -170},
		{"full turn", 360, 0},
		{"many turns", 3610, 10},
		{"negative many turns", -725, -5},
		{"540", 540, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NormalizeBearing(tt.in), 1e-9)
		})
	}
}

func TestNormalizeBearing_RangeAndIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		theta := rapid.Float64Range(-1e6, 1e6).Draw(t, "theta")

		n := NormalizeBearing(theta)
		if n <= -180 || n > 180 {
			t.Fatalf("NormalizeBearing(%v) = %v, outside (-180, 180]", theta, n)
		}
		if again := NormalizeBearing(n); again != n {
			t.Fatalf("not idempotent: %v -> %v -> %v", theta, n, again)
		}
	})
}

func TestNormalizeHeading_Range(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		theta := rapid.Float64Range(-1e6, 1e6).Draw(t, "theta")

		n := NormalizeHeading(theta)
		if n < 0 || n >= 360 {
			t.Fatalf("NormalizeHeading(%v) = %v, outside [0, 360)", theta, n)
		}
	})
}

func TestNormalizeRadians(t *testing.T) {
	assert.InDelta(t, math.Pi, NormalizeRadians(-math.Pi), 1e-12)
	assert.InDelta(t, -math.Pi/2, NormalizeRadians(3*math.Pi/2), 1e-12)
	assert.InDelta(t, 0.5, NormalizeRadians(0.5+4*math.Pi), 1e-9)
}

func TestProject_CompassAxes(t *testing.T) {
	origin := geom.XY{X: 100, Y: 100}

	up := Project(origin, 0, 10)
	assert.InDelta(t, 100, up.X, 1e-9)
	assert.InDelta(t, 110, up.Y, 1e-9)

	right := Project(origin, 90, 10)
	assert.InDelta(t, 110, right.X, 1e-9)
	assert.InDelta(t, 100, right.Y, 1e-9)

	down := Project(origin, 180, 10)
	assert.InDelta(t, 90, down.Y, 1e-9)
}

func TestAbsoluteBearing(t *testing.T) {
	o := geom.XY{X: 0, Y: 0}

	assert.InDelta(t, 0, AbsoluteBearing(o, geom.XY{X: 0, Y: 5}), 1e-9)
	assert.InDelta(t, 90, AbsoluteBearing(o, geom.XY{X: 5, Y: 0}), 1e-9)
	assert.InDelta(t, 180, AbsoluteBearing(o, geom.XY{X: 0, Y: -5}), 1e-9)
	assert.InDelta(t, 270, AbsoluteBearing(o, geom.XY{X: -5, Y: 0}), 1e-9)
	assert.InDelta(t, 45, AbsoluteBearing(o, geom.XY{X: 5, Y: 5}), 1e-9)
	assert.Equal(t, 0.0, AbsoluteBearing(o, o))
}

func TestAbsoluteBearing_InvertsProject(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		heading := rapid.Float64Range(0, 359.999).Draw(t, "heading")
		dist := rapid.Float64Range(1, 1000).Draw(t, "dist")
		origin := geom.XY{X: 400, Y: 300}

		p := Project(origin, heading, dist)
		got := AbsoluteBearing(origin, p)
		if math.Abs(NormalizeBearing(got-heading)) > 1e-6 {
			t.Fatalf("bearing %v does not match heading %v", got, heading)
		}
		if math.Abs(Distance(origin, p)-dist) > 1e-6 {
			t.Fatalf("distance %v does not match %v", Distance(origin, p), dist)
		}
	})
}

func TestArenaHelpers(t *testing.T) {
	arena := core.Arena{Width: 800, Height: 600}

	assert.Equal(t, 20.0, WallDistance(arena, geom.XY{X: 20, Y: 300}))
	assert.Equal(t, 10.0, WallDistance(arena, geom.XY{X: 400, Y: 590}))
	assert.Less(t, WallDistance(arena, geom.XY{X: -5, Y: 300}), 0.0)

	assert.True(t, Inside(arena, geom.XY{X: 400, Y: 300}, 18))
	assert.False(t, Inside(arena, geom.XY{X: 10, Y: 300}, 18))

	c := Clamp(arena, geom.XY{X: 900, Y: -40}, 18)
	assert.Equal(t, geom.XY{X: 782, Y: 18}, c)
}
