// pkg/core/events.go
package core

// Event is a sensor notification delivered by the host between ticks.
type Event interface {
	event()
}

// Sighting is a radar contact with an opponent.
// Bearing is relative to the agent's own heading.
type Sighting struct {
	Name     string
	Bearing  float64
	Distance float64
	Energy   float64
	Heading  float64
	Velocity float64
	Tick     int64
}

// Impact reports that a projectile hit the agent.
type Impact struct {
	Name     string // shooter
	Bearing  float64
	Power    float64
	Heading  float64
	Velocity float64
}

// OpponentDestroyed reports that an opponent left the arena.
type OpponentDestroyed struct {
	Name string
}

// SelfDestroyed ends the episode with a loss.
type SelfDestroyed struct{}

// Victory ends the episode with a win.
type Victory struct{}

// Collision reports that the agent rammed or was rammed by an opponent.
type Collision struct {
	Name    string
	Bearing float64
}

// WallHit reports that the agent drove into the arena boundary.
type WallHit struct {
	Bearing float64
}

func (Sighting) event()          {}
func (Impact) event()            {}
func (OpponentDestroyed) event() {}
func (SelfDestroyed) event()     {}
func (Victory) event()           {}
func (Collision) event()         {}
func (WallHit) event()           {}
