package movement

import (
	"github.com/carver-bot/carver/internal/geo"
	"github.com/carver-bot/carver/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// DefaultRoute is the patrol polygon, laid out against the bottom-left corner.
const DefaultRoute = "[[60,60],[60,260],[160,160],[260,60]]"

// arrival is how close a waypoint must be before moving on to the next.
const arrival = 25.0

// Patrol drives a closed waypoint loop in the arena corner nearest to the
// agent. It ignores opponents.
type Patrol struct {
	base  []geom.XY
	route []geom.XY
	next  int
}

// NewPatrol creates a Patrol over route. The route is mirrored on Start.
func NewPatrol(route []geom.XY) *Patrol {
	return &Patrol{base: route, route: route}
}

func (p *Patrol) Name() string { return "patrol" }

// Start anchors the route to the corner nearest own position.
func (p *Patrol) Start(own core.OwnState) {
	p.route = p.base
	if own.Arena.Known() {
		p.route = geo.MirrorRoute(p.base, own.Arena.Width, own.Arena.Height, own.Position())
	}
	p.next = 0
}

// Waypoint returns the waypoint currently steered for.
func (p *Patrol) Waypoint() geom.XY {
	return p.route[p.next]
}

func (p *Patrol) Plan(in Input) []core.Command {
	if len(p.route) == 0 {
		return nil
	}
	pos := in.Own.Position()
	if geo.Distance(pos, p.route[p.next]) < arrival {
		p.next = (p.next + 1) % len(p.route)
	}
	wp := p.route[p.next]

	turn, sign := steer(in.Own, geo.AbsoluteBearing(pos, wp))
	return []core.Command{turnBody(turn), moveForward(sign * geo.Distance(pos, wp))}
}
