// Package gormstorage implements the storage.Backend interface on top of a
// GORM connection. Each operation runs in its own transaction.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/carver-bot/carver/internal/database"
	"github.com/carver-bot/carver/internal/episode"
	"github.com/carver-bot/carver/internal/logging"
	"github.com/carver-bot/carver/internal/model"
	"github.com/carver-bot/carver/internal/model/convert"
	"github.com/carver-bot/carver/internal/strategy"
	"gorm.io/gorm"
)

// ErrNoDatabase is returned when the backend has no connection.
var ErrNoDatabase = errors.New("database not available")

// Dependencies holds everything the backend needs
type Dependencies struct {
	DB         *gorm.DB
	LogManager *logging.SlogManager
	Version    string
}

// Backend stores strategy records and episode results through GORM.
type Backend struct {
	deps Dependencies

	// serialises read-modify-write cycles; SQLite allows one writer anyway
	mu sync.Mutex
}

// New creates a new GORM backend
func New(deps Dependencies) *Backend {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Backend{deps: deps}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return ErrNoDatabase
	}
	if err := database.Migrate(b.deps.DB, b.deps.Version); err != nil {
		return err
	}
	b.deps.LogManager.Logger().Debug("storage schema ready", "version", b.deps.Version)
	return nil
}

// Close releases the connection pool.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}

// load fetches the row for opponent, inserting a fresh one on first use.
func load(tx *gorm.DB, opponent string) (model.StrategyRecord, error) {
	var row model.StrategyRecord
	err := tx.Where("opponent_name = ?", opponent).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = convert.RecordToGorm(strategy.NewRecord(opponent))
		if err := tx.Create(&row).Error; err != nil {
			return row, fmt.Errorf("failed to create strategy record: %w", err)
		}
		return row, nil
	}
	if err != nil {
		return row, fmt.Errorf("failed to load strategy record: %w", err)
	}
	return row, nil
}

// Get returns the record for opponent.
func (b *Backend) Get(opponent string) (strategy.Record, error) {
	if b.deps.DB == nil {
		return strategy.Record{}, ErrNoDatabase
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var rec strategy.Record
	err := b.deps.DB.Transaction(func(tx *gorm.DB) error {
		row, err := load(tx, opponent)
		if err != nil {
			return err
		}
		rec = convert.GormToRecord(row)
		return nil
	})
	return rec, err
}

// Update applies fn to the record for opponent and saves the result.
func (b *Backend) Update(opponent string, fn func(*strategy.Record)) error {
	if b.deps.DB == nil {
		return ErrNoDatabase
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.deps.DB.Transaction(func(tx *gorm.DB) error {
		row, err := load(tx, opponent)
		if err != nil {
			return err
		}
		rec := convert.GormToRecord(row)
		fn(&rec)

		next := convert.RecordToGorm(rec)
		next.ID = row.ID
		next.CreatedAt = row.CreatedAt
		next.OpponentName = opponent
		if err := tx.Save(&next).Error; err != nil {
			return fmt.Errorf("failed to save strategy record: %w", err)
		}
		return nil
	})
}

// RecordEpisode inserts a finished episode.
func (b *Backend) RecordEpisode(s *episode.Summary) error {
	if b.deps.DB == nil {
		return ErrNoDatabase
	}
	row := convert.SummaryToGorm(*s)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record episode: %w", err)
	}
	return nil
}

// Episodes returns up to limit of the most recent episodes against opponent,
// newest first. An empty opponent matches all; limit <= 0 means no limit.
func (b *Backend) Episodes(opponent string, limit int) ([]episode.Summary, error) {
	if b.deps.DB == nil {
		return nil, ErrNoDatabase
	}
	q := b.deps.DB.Model(&model.EpisodeResult{}).Order("id DESC")
	if opponent != "" {
		q = q.Where("opponent_name = ?", opponent)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []model.EpisodeResult
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}

	out := make([]episode.Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, convert.GormToSummary(r))
	}
	return out, nil
}
