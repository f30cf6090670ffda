package strategy

import "log/slog"

// Store holds Records keyed by opponent identity. Get creates the record on
// first use; both calls must be atomic per identity.
type Store interface {
	Get(opponent string) (Record, error)
	Update(opponent string, fn func(*Record)) error
}

// Selector picks and scores patterns through a Store.
type Selector struct {
	store  Store
	logger *slog.Logger
}

// NewSelector creates a Selector.
func NewSelector(store Store, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{store: store, logger: logger}
}

// Choose returns the pattern to use against opponent this episode. Store
// failures fall back to Oscillate.
func (s *Selector) Choose(opponent string) Strategy {
	var chosen Strategy
	err := s.store.Update(opponent, func(r *Record) {
		was := r.Exploring
		chosen = r.Choose()
		if was && !r.Exploring {
			s.logger.Debug("strategy committed", "opponent", opponent, "strategy", chosen.String(),
				"oscillate", r.Scores[Oscillate], "stopAndGo", r.Scores[StopAndGo])
		}
	})
	if err != nil {
		s.logger.Warn("strategy store unavailable", "opponent", opponent, "error", err)
		return Oscillate
	}
	return chosen
}

// Lost records a lost episode.
func (s *Selector) Lost(opponent string, opponentEnergy float64) {
	if err := s.store.Update(opponent, func(r *Record) { r.RecordLoss(opponentEnergy) }); err != nil {
		s.logger.Warn("failed to record loss", "opponent", opponent, "error", err)
	}
}

// Won records a won episode.
func (s *Selector) Won(opponent string, ownEnergy float64) {
	if err := s.store.Update(opponent, func(r *Record) { r.RecordWin(ownEnergy) }); err != nil {
		s.logger.Warn("failed to record win", "opponent", opponent, "error", err)
	}
}

// Lookup returns the record for opponent.
func (s *Selector) Lookup(opponent string) (Record, error) {
	return s.store.Get(opponent)
}
