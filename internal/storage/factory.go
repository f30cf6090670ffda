package storage

import (
	"fmt"

	"github.com/carver-bot/carver/internal/config"
	"github.com/carver-bot/carver/internal/logging"
	"github.com/carver-bot/carver/internal/storage/memory"
	sqlitestorage "github.com/carver-bot/carver/internal/storage/sqlite"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, version string, logManager *logging.SlogManager) (Backend, error) {
	switch cfg.Type {
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			Path:         cfg.SQLite.Path,
			DumpPath:     cfg.SQLite.DumpPath,
			DumpInterval: cfg.SQLite.DumpInterval,
			Version:      version,
		}, logManager)
	case "memory", "":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Type)
	}
}
