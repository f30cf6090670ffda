package movement

import (
	"github.com/carver-bot/carver/internal/geo"
	"github.com/carver-bot/carver/pkg/core"
)

const (
	stepLength      = 25.0
	sagWallDistance = 23.0
	sagBackOff      = 100.0
)

// StopAndGo squares off against the opponent and toggles between creeping
// and standing still every time the opponent fires.
type StopAndGo struct {
	r      *Reaction
	moving bool
}

// NewStopAndGo creates a StopAndGo sharing reaction state r. It starts still.
func NewStopAndGo(r *Reaction) *StopAndGo {
	return &StopAndGo{r: r}
}

func (s *StopAndGo) Name() string { return "stop-and-go" }

// Moving reports whether the pattern is in its moving phase.
func (s *StopAndGo) Moving() bool { return s.moving }

func (s *StopAndGo) Plan(in Input) []core.Command {
	if in.Target.None() {
		return nil
	}
	own := in.Own

	if in.Fired {
		s.moving = !s.moving
	}

	near := own.Arena.Known() && geo.WallDistance(own.Arena, own.Position()) < sagWallDistance
	if s.r.WallBand(near) {
		s.r.Flip()
	}

	abs := geo.AbsoluteBearing(own.Position(), in.Target.Position)
	goal := WallSmooth(own.Arena, own.Position(), abs+s.r.MoveNeg*90, -s.r.MoveNeg)
	if near {
		return backOff(own, goal, -s.r.MoveNeg*s.r.BackDir, sagBackOff, sagWallDistance)
	}
	turn, sign := steer(own, goal)

	dist := 0.0
	if s.moving {
		dist = sign * stepLength
	}
	return []core.Command{turnBody(turn), moveForward(dist)}
}
