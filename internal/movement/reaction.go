package movement

import "math/rand/v2"

// Reaction is the movement state that survives pattern switches: the lateral
// direction, the rotation used when searching for a wall back-off heading and
// the hit reaction multiplier.
type Reaction struct {
	MoveNeg   float64
	BackDir   float64
	HitFactor float64

	nearWall bool
	rng      *rand.Rand
}

// NewReaction returns the start-of-episode reaction state.
func NewReaction(rng *rand.Rand) *Reaction {
	return &Reaction{MoveNeg: 1, BackDir: 1, HitFactor: 1, rng: rng}
}

// magnitude draws a fresh multiplier in [1, 1.2).
func (r *Reaction) magnitude() float64 {
	return (r.rng.Float64() + 5) / 5
}

// OnImpact flips the lateral direction and redraws the multiplier with the
// new direction's sign.
func (r *Reaction) OnImpact() {
	r.MoveNeg = -r.MoveNeg
	r.HitFactor = r.magnitude() * r.MoveNeg
}

// OnWall flips the back-off direction and the sign of the multiplier.
func (r *Reaction) OnWall() {
	sign := 1.0
	if r.HitFactor > 0 {
		sign = -1
	}
	r.HitFactor = sign * r.magnitude()
	r.BackDir = -r.BackDir
}

// Flip reverses the lateral direction.
func (r *Reaction) Flip() {
	r.MoveNeg = -r.MoveNeg
}

// WallBand records whether the agent is inside a wall band and reports true
// only on the tick it enters.
func (r *Reaction) WallBand(near bool) bool {
	entered := near && !r.nearWall
	r.nearWall = near
	return entered
}

// Float64 draws from the shared random source.
func (r *Reaction) Float64() float64 {
	return r.rng.Float64()
}
