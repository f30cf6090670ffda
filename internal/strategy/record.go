// Package strategy keeps per-opponent memory of which evasive pattern works.
package strategy

// Strategy is one of the two single-opponent movement patterns.
type Strategy int

const (
	Oscillate Strategy = iota
	StopAndGo
)

func (s Strategy) String() string {
	if s == StopAndGo {
		return "stop-and-go"
	}
	return "oscillate"
}

const (
	// lossesPerPhase is how many exploration losses each pattern absorbs.
	lossesPerPhase = 3
	// winsToSettle wins under Oscillate end exploration.
	winsToSettle = 3
)

// Record is the memory kept for one opponent identity.
type Record struct {
	Opponent  string
	Strategy  Strategy
	Exploring bool
	Losses    int        // losses counted while exploring
	Scores    [2]float64 // net score per Strategy
	Wins      int        // wins under Oscillate while exploring
}

// NewRecord returns the memory for a first encounter.
func NewRecord(opponent string) Record {
	return Record{Opponent: opponent, Strategy: Oscillate, Exploring: true}
}

// Choose re-evaluates the pattern at an episode checkpoint. Once both
// patterns have absorbed their losses the better-scoring one is kept for
// good; ties keep Oscillate.
func (r *Record) Choose() Strategy {
	if !r.Exploring {
		return r.Strategy
	}
	switch {
	case r.Losses >= 2*lossesPerPhase:
		r.Exploring = false
		r.Strategy = Oscillate
		if r.Scores[StopAndGo] > r.Scores[Oscillate] {
			r.Strategy = StopAndGo
		}
	case r.Losses >= lossesPerPhase:
		r.Strategy = StopAndGo
	default:
		r.Strategy = Oscillate
	}
	return r.Strategy
}

// RecordLoss scores a loss against the pattern in use.
func (r *Record) RecordLoss(opponentEnergy float64) {
	r.Scores[r.Strategy] -= opponentEnergy
	if r.Exploring && r.Wins < winsToSettle {
		r.Losses++
	}
	r.Choose()
}

// RecordWin scores a win for the pattern in use.
func (r *Record) RecordWin(ownEnergy float64) {
	r.Scores[r.Strategy] += ownEnergy
	if r.Exploring && r.Strategy == Oscillate {
		r.Wins++
		if r.Wins >= winsToSettle {
			r.Exploring = false
		}
	}
}
