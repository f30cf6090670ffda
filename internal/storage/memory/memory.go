// Package memory implements the storage.Backend interface in process memory.
// Nothing survives a restart.
package memory

import (
	"sync"

	"github.com/carver-bot/carver/internal/episode"
	"github.com/carver-bot/carver/internal/strategy"
)

// Backend keeps strategy records and episode history in maps and slices
type Backend struct {
	records  map[string]*strategy.Record // keyed by opponent name
	episodes []episode.Summary

	mu sync.RWMutex
}

// New creates a new memory backend
func New() *Backend {
	return &Backend{
		records: make(map[string]*strategy.Record),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// record returns the stored record, creating it on first use. Caller holds the write lock.
func (b *Backend) record(opponent string) *strategy.Record {
	r, ok := b.records[opponent]
	if !ok {
		fresh := strategy.NewRecord(opponent)
		r = &fresh
		b.records[opponent] = r
	}
	return r
}

// Get returns a copy of the record for opponent
func (b *Backend) Get(opponent string) (strategy.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.record(opponent), nil
}

// Update applies fn to the record for opponent under the write lock
func (b *Backend) Update(opponent string, fn func(*strategy.Record)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.record(opponent))
	return nil
}

// RecordEpisode appends a finished episode
func (b *Backend) RecordEpisode(s *episode.Summary) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.episodes = append(b.episodes, *s)
	return nil
}

// Episodes returns up to limit of the most recent episodes against opponent,
// newest first. An empty opponent matches all; limit <= 0 means no limit.
func (b *Backend) Episodes(opponent string, limit int) ([]episode.Summary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []episode.Summary
	for i := len(b.episodes) - 1; i >= 0; i-- {
		if opponent != "" && b.episodes[i].Opponent != opponent {
			continue
		}
		out = append(out, b.episodes[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
