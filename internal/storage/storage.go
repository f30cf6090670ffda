// Package storage persists strategy memory and finished episodes.
package storage

import (
	"errors"

	"github.com/carver-bot/carver/internal/episode"
	"github.com/carver-bot/carver/internal/strategy"
)

//go:generate go tool mockgen -destination=./mocks/backend_mock.go -package=mocks . Backend

// ErrUnknownBackend is returned by NewBackend for an unsupported storage type.
var ErrUnknownBackend = errors.New("unknown storage type")

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Strategy memory, keyed by opponent identity
	strategy.Store

	// Episode history
	RecordEpisode(s *episode.Summary) error
}

// History is an optional interface for backends that can list past episodes.
type History interface {
	Episodes(opponent string, limit int) ([]episode.Summary, error)
}
