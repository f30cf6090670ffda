package target

import (
	"github.com/carver-bot/carver/internal/geo"
	"github.com/carver-bot/carver/pkg/core"
)

// Impact remembers the last projectile that hit the agent.
type Impact struct {
	Name       string
	Bearing    float64
	AbsBearing float64
	Power      float64
	Heading    float64
	Velocity   float64
}

// None reports whether no impact is recorded.
func (i Impact) None() bool {
	return i.Name == ""
}

// Record stores an impact. ownHeading resolves the relative bearing.
func (i *Impact) Record(ev core.Impact, ownHeading float64) {
	*i = Impact{
		Name:       ev.Name,
		Bearing:    ev.Bearing,
		AbsBearing: geo.NormalizeHeading(ownHeading + ev.Bearing),
		Power:      ev.Power,
		Heading:    ev.Heading,
		Velocity:   ev.Velocity,
	}
}

// Reset clears every field.
func (i *Impact) Reset() {
	*i = Impact{}
}
