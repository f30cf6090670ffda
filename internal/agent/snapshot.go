package agent

import (
	"github.com/carver-bot/carver/internal/episode"
	"github.com/carver-bot/carver/internal/radar"
)

// Snapshot is a point-in-time view of the agent for status queries.
type Snapshot struct {
	Running   bool            `json:"running"`
	Episode   episode.Episode `json:"episode"`
	Mode      radar.Mode      `json:"mode"`
	Radar     string          `json:"radar"`
	Lock      string          `json:"lock,omitempty"`
	Distance  float64         `json:"distance,omitempty"`
	Motion    string          `json:"motion,omitempty"`
	BeamWidth float64         `json:"beamWidth"`
	Planner   string          `json:"planner"`
	Attacker  string          `json:"attacker,omitempty"`
	OwnEnergy float64         `json:"ownEnergy"`
	Memory    bool            `json:"memory"` // strategy memory was consulted
}

// Snapshot returns the current view of the agent.
func (a *Agent) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	ep, running := a.deps.Episodes.Current()
	locked := a.estimator.State()
	s := Snapshot{
		Running:   running,
		Episode:   ep,
		Mode:      a.radar.Mode(),
		Radar:     radar.StateOf(locked).String(),
		BeamWidth: a.radar.Width(),
		Planner:   a.planner.Name(),
		Attacker:  a.impact.Name,
		OwnEnergy: a.own.Energy,
		Memory:    a.chosen,
	}
	if !locked.None() {
		s.Lock = locked.Name
		s.Distance = locked.Distance
		s.Motion = locked.Motion.String()
	}
	return s
}
