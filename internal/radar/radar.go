// Package radar decides which opponent to lock and how to steer the sensor.
package radar

import (
	"math"

	"github.com/carver-bot/carver/internal/geo"
	"github.com/carver-bot/carver/internal/target"
	"github.com/carver-bot/carver/pkg/core"
)

// Sweep is the sensor turn issued while searching: ten full circles.
const Sweep = 3600

// Mode names the scan policy.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

// State of the acquisition state machine.
type State int

const (
	Sweeping State = iota
	Tracking
)

func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "sweeping"
}

// Config tunes the scan policies.
type Config struct {
	Hysteresis float64 // distance a new sighting must improve on the lock by
}

// DefaultConfig returns the stock radar settings.
func DefaultConfig() Config {
	return Config{Hysteresis: 70}
}

// Policy is a scan policy selected once per episode.
type Policy interface {
	Mode() Mode
	// Start returns the sensor command issued at episode start.
	Start() core.Command
	// ShouldTrack reports whether a sighting should update the lock.
	ShouldTrack(sg core.Sighting, locked target.State) bool
	// WasTracking reports whether a destroyed opponent was the lock.
	WasTracking(name string, locked target.State) bool
	// OnHit reacts to the agent taking a hit.
	OnHit()
	// Step returns the sensor command for this tick.
	Step(locked target.State, attacker target.Impact, own core.OwnState) core.Command
	// Width is the current beam width.
	Width() float64
}

// StateOf reports the acquisition state for a lock.
func StateOf(locked target.State) State {
	if locked.None() {
		return Sweeping
	}
	return Tracking
}

func sweep() core.Command {
	return core.Command{Kind: core.TurnSensor, Value: Sweep}
}

// bearingTo is the sensor turn that faces the locked target.
func bearingTo(locked target.State, own core.OwnState) float64 {
	abs := geo.AbsoluteBearing(own.Position(), locked.Position)
	return geo.NormalizeBearing(abs - own.RadarHeading)
}

// overshoot extends a turn by extra in the direction it is already going.
func overshoot(turn, extra float64) float64 {
	if turn >= 0 {
		return turn + extra
	}
	return turn - extra
}

// halfAngle is the angle, in degrees, that width units subtend at distance.
func halfAngle(width, distance float64) float64 {
	if distance <= 0 {
		return 90
	}
	return geo.Degrees(math.Atan(width / distance))
}
