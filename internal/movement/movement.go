// Package movement turns the chosen evasive pattern into body commands.
package movement

import (
	"math"

	"github.com/carver-bot/carver/internal/geo"
	"github.com/carver-bot/carver/internal/target"
	"github.com/carver-bot/carver/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

const (
	// wallMargin keeps the body clear of the boundary.
	wallMargin = 18
	// stick is how far ahead wall smoothing probes.
	stick = 120
	// smoothStep and maxSmoothSteps bound the wall-smoothing search.
	smoothStep     = 5
	maxSmoothSteps = 20
)

// Input is everything a planner sees in one tick.
type Input struct {
	Own    core.OwnState
	Target target.State
	// Fired is set when the opponent's energy drop showed a shot this tick.
	Fired bool
}

// Planner produces body commands for one tick.
type Planner interface {
	Name() string
	Plan(in Input) []core.Command
}

// WallSmooth rotates goal by fixed steps in direction rot until a point stick
// units along it stays inside the arena. It gives up after a fixed number of
// steps and returns the last candidate.
func WallSmooth(a core.Arena, p geom.XY, goal, rot float64) float64 {
	if !a.Known() {
		return geo.NormalizeHeading(goal)
	}
	for i := 0; i < maxSmoothSteps && !geo.Inside(a, geo.Project(p, goal, stick), wallMargin); i++ {
		goal += rot * smoothStep
	}
	return geo.NormalizeHeading(goal)
}

// escape returns the heading nearest goal, searching in direction rot, along
// which a move of dist ends at least clearance from every wall. When no
// heading qualifies it returns the bearing to the arena centre.
func escape(a core.Arena, p geom.XY, goal, rot, dist, clearance float64) float64 {
	for i := 0; i < 360/smoothStep; i++ {
		h := goal + rot*float64(i*smoothStep)
		if geo.WallDistance(a, geo.Project(p, h, dist)) >= clearance {
			return geo.NormalizeHeading(h)
		}
	}
	return geo.AbsoluteBearing(p, geom.XY{X: a.Width / 2, Y: a.Height / 2})
}

// backOff moves dist units out of a wall band of width band. The search
// for a clear heading starts at goal and turns in direction rot.
func backOff(own core.OwnState, goal, rot, dist, band float64) []core.Command {
	turn, sign := steer(own, escape(own.Arena, own.Position(), goal, rot, dist, band))
	return []core.Command{turnBody(turn), moveForward(sign * dist)}
}

// steer turns the body toward heading goal, driving backwards when that is
// the shorter turn. It returns the body turn and the sign to apply to
// forward motion.
func steer(own core.OwnState, goal float64) (float64, float64) {
	turn := geo.NormalizeBearing(goal - own.Heading)
	if math.Abs(turn) > 90 {
		return geo.NormalizeBearing(turn + 180), -1
	}
	return turn, 1
}

func turnBody(deg float64) core.Command {
	return core.Command{Kind: core.TurnBody, Value: deg}
}

func moveForward(dist float64) core.Command {
	return core.Command{Kind: core.MoveForward, Value: dist}
}
