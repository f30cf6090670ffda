// Package monitor publishes the status of one agent session.
package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/carver-bot/carver/internal/agent"
	"github.com/carver-bot/carver/internal/episode"
	"github.com/carver-bot/carver/internal/logging"
	"github.com/carver-bot/carver/internal/storage"
)

// recentEpisodes is how many finished episodes a status report carries.
const recentEpisodes = 5

// SnapshotSource is anything that can describe the agent state.
type SnapshotSource interface {
	Snapshot() agent.Snapshot
}

// WriterStats exposes the background writer's queue.
type WriterStats interface {
	QueueLength() int
	Dropped() int64
	GetLastWriteDuration() time.Duration
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Agent      SnapshotSource
	History    storage.History // optional
	Pending    func() int      // events waiting for the next tick, optional
	Writer     WriterStats     // optional
	LogManager *logging.SlogManager
	Session    string
	StatusDir  string // status file is written only when set
	Interval   time.Duration
}

// Status is one status report.
type Status struct {
	Time    time.Time         `json:"time"`
	Session string            `json:"session"`
	Agent   agent.Snapshot    `json:"agent"`
	Pending int               `json:"pending"`
	Writes  *WriteStatus      `json:"writes,omitempty"`
	Recent  []episode.Summary `json:"recent,omitempty"`
}

// WriteStatus describes the background writer.
type WriteStatus struct {
	Queued      int     `json:"queued"`
	Dropped     int64   `json:"dropped"`
	LastWriteMs float64 `json:"lastWriteMs"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// StatusPath is the file the monitor writes, empty when disabled.
func (s *Service) StatusPath() string {
	if s.deps.StatusDir == "" {
		return ""
	}
	return filepath.Join(s.deps.StatusDir, "status-"+s.deps.Session+".json")
}

// GetStatus returns the current status. A failing history lookup leaves
// Recent empty.
func (s *Service) GetStatus() Status {
	st := Status{
		Time:    time.Now(),
		Session: s.deps.Session,
		Agent:   s.deps.Agent.Snapshot(),
	}
	if s.deps.Pending != nil {
		st.Pending = s.deps.Pending()
	}
	if s.deps.Writer != nil {
		st.Writes = &WriteStatus{
			Queued:      s.deps.Writer.QueueLength(),
			Dropped:     s.deps.Writer.Dropped(),
			LastWriteMs: float64(s.deps.Writer.GetLastWriteDuration().Microseconds()) / 1000,
		}
	}
	if s.deps.History != nil {
		recent, err := s.deps.History.Episodes("", recentEpisodes)
		if err != nil {
			s.deps.LogManager.WriteLog("getStatus", fmt.Sprintf(`Failed to read episode history: %v`, err), "WARN")
		}
		st.Recent = recent
	}
	return st
}

// GetStatusJSON returns the current status encoded as JSON.
func (s *Service) GetStatusJSON() (string, error) {
	out, err := json.Marshal(s.GetStatus())
	if err != nil {
		return "", fmt.Errorf("failed to encode status: %w", err)
	}
	return string(out), nil
}

// WriteStatus writes the current status file.
func (s *Service) WriteStatus() error {
	path := s.StatusPath()
	if path == "" {
		return nil
	}
	out, err := json.MarshalIndent(s.GetStatus(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write status file: %w", err)
	}
	return nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if s.deps.StatusDir != "" {
		if err := os.MkdirAll(s.deps.StatusDir, 0755); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to create status directory: %w", err)
		}
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "function", "startStatusMonitor", "session", s.deps.Session)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := s.WriteStatus(); err != nil {
					logger.Error("Error writing status file", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and removes its status file.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()

	<-done
	if path := s.StatusPath(); path != "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.deps.LogManager.WriteLog("stopStatusMonitor", fmt.Sprintf(`Failed to remove status file: %v`, err), "WARN")
		}
	}
}
