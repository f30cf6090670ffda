// Package episode tracks the engagement in progress for one agent session.
package episode

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome of a finished episode.
type Outcome string

const (
	Running Outcome = ""
	Won     Outcome = "won"
	Lost    Outcome = "lost"
)

// Episode is one engagement from spawn to death or victory.
type Episode struct {
	ID        uuid.UUID `json:"id"`
	Round     int       `json:"round"`
	Mode      string    `json:"mode"`
	Opponent  string    `json:"opponent,omitempty"` // locked opponent, the duel partner in single-opponent mode
	Strategy  string    `json:"strategy"`
	Opponents int       `json:"opponents"`
	Started   time.Time `json:"started"`
	Ticks     int64     `json:"ticks"`
	Shots     int       `json:"shots"`
}

// Summary is the record kept of a finished episode.
type Summary struct {
	Episode
	Outcome        Outcome   `json:"outcome"`
	OwnEnergy      float64   `json:"ownEnergy"`
	OpponentEnergy float64   `json:"opponentEnergy"`
	Ended          time.Time `json:"ended"`
}

// Context holds the current episode.
type Context struct {
	mu      sync.RWMutex
	round   int
	current *Episode
}

// NewContext creates a Context with no episode running.
func NewContext() *Context {
	return &Context{}
}

// Begin starts a new episode and returns a copy of it.
func (c *Context) Begin(mode string, opponents int) Episode {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.round++
	c.current = &Episode{
		ID:        uuid.New(),
		Round:     c.round,
		Mode:      mode,
		Opponents: opponents,
		Started:   time.Now(),
	}
	return *c.current
}

// Current returns the running episode, if any.
func (c *Context) Current() (Episode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return Episode{}, false
	}
	return *c.current, true
}

// Update mutates the running episode. It is a no-op between episodes.
func (c *Context) Update(fn func(*Episode)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		fn(c.current)
	}
}

// End closes the running episode and returns its summary. ok is false when
// no episode was running.
func (c *Context) End(outcome Outcome, ownEnergy, opponentEnergy float64) (Summary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Summary{}, false
	}
	s := Summary{
		Episode:        *c.current,
		Outcome:        outcome,
		OwnEnergy:      ownEnergy,
		OpponentEnergy: opponentEnergy,
		Ended:          time.Now(),
	}
	c.current = nil
	return s, true
}

// Round returns the number of episodes begun so far.
func (c *Context) Round() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.round
}
