// Package sqlitestorage implements the storage.Backend interface using a
// SQLite database, in memory by default, with periodic disk dumps via
// VACUUM INTO. It wraps the GORM backend via composition.
package sqlitestorage

import (
	"fmt"
	"sync"
	"time"

	"github.com/carver-bot/carver/internal/database"
	"github.com/carver-bot/carver/internal/logging"
	gormstorage "github.com/carver-bot/carver/internal/storage/gorm"

	"gorm.io/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	Path         string // empty for an in-memory database
	DumpInterval time.Duration
	DumpPath     string // Path for periodic VACUUM INTO dumps
	Version      string
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      Config
	log      *logging.SlogManager
	stopChan chan struct{}
	stopOnce sync.Once
	done     sync.WaitGroup
}

// New creates a new SQLite storage backend.
func New(cfg Config, logManager *logging.SlogManager) (*Backend, error) {
	db, err := database.GetSqliteDB(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite DB: %w", err)
	}
	if logManager == nil {
		logManager = logging.NewSlogManager()
	}

	gormBackend := gormstorage.New(gormstorage.Dependencies{
		DB:         db,
		LogManager: logManager,
		Version:    cfg.Version,
	})

	return &Backend{
		Backend:  gormBackend,
		db:       db,
		cfg:      cfg,
		log:      logManager,
		stopChan: make(chan struct{}),
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.done.Add(1)
		go b.dumpLoop()
	}

	return nil
}

// Close stops the dump goroutine, writes a last dump and closes the
// embedded GORM backend.
func (b *Backend) Close() error {
	b.stopOnce.Do(func() { close(b.stopChan) })
	b.done.Wait()
	if b.cfg.DumpPath != "" {
		b.Dump()
	}
	return b.Backend.Close()
}

// Dump writes a point-in-time snapshot to DumpPath.
func (b *Backend) Dump() {
	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
		b.log.WriteLog("sqlite:dump", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
		return
	}
	b.log.WriteLog("sqlite:dump", fmt.Sprintf("Dumped to disk in %s", time.Since(start)), "DEBUG")
}

// dumpLoop periodically dumps the SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer b.done.Done()
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			b.Dump()
		}
	}
}
