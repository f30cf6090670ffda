package movement

import (
	"math"

	"github.com/carver-bot/carver/internal/geo"
	"github.com/carver-bot/carver/pkg/core"
)

const (
	preferredDistance = 400.0
	maxBias           = 25.0
	flipChance        = 0.1
	oscWallDistance   = 20.0
	oscBackOff        = 150.0
)

// Oscillator circles the opponent, reversing at random and bursting on
// inferred shots.
type Oscillator struct {
	r *Reaction
}

// NewOscillator creates an Oscillator sharing reaction state r.
func NewOscillator(r *Reaction) *Oscillator {
	return &Oscillator{r: r}
}

func (o *Oscillator) Name() string { return "oscillate" }

// goal is perpendicular to the opponent, leaning in when far and out when close.
func (o *Oscillator) goal(in Input) float64 {
	abs := geo.AbsoluteBearing(in.Own.Position(), in.Target.Position)
	bias := math.Max(-maxBias, math.Min(maxBias, (in.Target.Distance-preferredDistance)/10))
	g := abs + o.r.MoveNeg*(90-bias)
	return WallSmooth(in.Own.Arena, in.Own.Position(), g, -o.r.MoveNeg)
}

func (o *Oscillator) Plan(in Input) []core.Command {
	if in.Target.None() {
		return nil
	}
	own := in.Own

	if own.Arena.Known() {
		near := geo.WallDistance(own.Arena, own.Position()) < oscWallDistance
		if o.r.WallBand(near) {
			o.r.Flip()
		}
		if near {
			return backOff(own, o.goal(in), -o.r.MoveNeg*o.r.BackDir, oscBackOff, oscWallDistance)
		}
	}

	var dist float64
	switch {
	case in.Fired:
		amount := ((own.X+own.Y)/2 + 700) / 2
		burst := (o.r.Float64()*amount - 0.5*amount) * o.r.HitFactor
		if burst < 0 {
			o.r.Flip()
		}
		dist = math.Abs(burst)
	case own.DistanceRemaining == 0:
		if o.r.Float64() < flipChance {
			o.r.Flip()
		}
		dist = (0.5 + o.r.Float64()) * in.Target.Distance * 0.6
	default:
		dist = math.Abs(own.DistanceRemaining)
	}

	turn, sign := steer(own, o.goal(in))
	return []core.Command{turnBody(turn), moveForward(sign * dist)}
}
