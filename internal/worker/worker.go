// Package worker moves episode persistence and telemetry off the tick path.
//
// The agent hands finished episodes and shot points to a Manager, which
// queues them and lets a single goroutine write them to the storage
// backend and the telemetry sink in arrival order.
package worker

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carver-bot/carver/internal/channel"
	"github.com/carver-bot/carver/internal/episode"
	"github.com/carver-bot/carver/internal/logging"
)

// DefaultQueueSize is used when Dependencies.QueueSize is not set.
const DefaultQueueSize = 256

var (
	// ErrQueueFull is returned when a write cannot be queued without blocking.
	ErrQueueFull = errors.New("write queue full")
	// ErrClosed is returned for writes after Close.
	ErrClosed = errors.New("writer closed")
)

// Recorder persists finished episodes.
type Recorder interface {
	RecordEpisode(s *episode.Summary) error
}

// Sink receives telemetry points.
type Sink interface {
	WriteEpisode(s episode.Summary) error
	WriteShot(opponent string, power, distance float64, at time.Time) error
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Recorder   Recorder
	Sink       Sink // optional
	LogManager *logging.SlogManager
	QueueSize  int
}

type jobKind int

const (
	recordEpisode jobKind = iota
	episodePoint
	shotPoint
)

type job struct {
	kind     jobKind
	summary  episode.Summary
	opponent string
	power    float64
	distance float64
	at       time.Time
}

// Manager owns the write queue and its writer goroutine.
type Manager struct {
	deps Dependencies
	jobs channel.Channel[job]

	mu      sync.RWMutex
	started bool
	closed  bool
	done    chan struct{}

	lastWrite atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies) *Manager {
	if deps.QueueSize <= 0 {
		deps.QueueSize = DefaultQueueSize
	}
	return &Manager{
		deps: deps,
		jobs: channel.New[job](deps.QueueSize),
		done: make(chan struct{}),
	}
}

func (m *Manager) logger() *slog.Logger {
	if m.deps.LogManager == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.deps.LogManager.Logger()
}

// Start launches the writer goroutine. Calling it twice is a no-op.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.closed {
		return
	}
	m.started = true
	go m.run()
}

func (m *Manager) run() {
	defer close(m.done)
	for j := range m.jobs.Receive() {
		start := time.Now()
		if err := m.write(j); err != nil {
			m.failed.Add(1)
			m.logger().Warn("write failed", "kind", j.kind.String(), "error", err)
		}
		m.lastWrite.Store(int64(time.Since(start)))
	}
}

func (m *Manager) write(j job) error {
	switch j.kind {
	case recordEpisode:
		return m.deps.Recorder.RecordEpisode(&j.summary)
	case episodePoint:
		return m.deps.Sink.WriteEpisode(j.summary)
	case shotPoint:
		return m.deps.Sink.WriteShot(j.opponent, j.power, j.distance, j.at)
	}
	return nil
}

func (k jobKind) String() string {
	switch k {
	case recordEpisode:
		return "episode"
	case episodePoint:
		return "episode-point"
	case shotPoint:
		return "shot-point"
	}
	return "unknown"
}

func (m *Manager) enqueue(j job) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	if !m.jobs.TrySend(j) {
		m.dropped.Add(1)
		return ErrQueueFull
	}
	return nil
}

// RecordEpisode queues a copy of s for the recorder.
func (m *Manager) RecordEpisode(s *episode.Summary) error {
	if s == nil {
		return nil
	}
	return m.enqueue(job{kind: recordEpisode, summary: *s})
}

// WriteEpisode queues an episode point for the sink. Without a sink it does
// nothing.
func (m *Manager) WriteEpisode(s episode.Summary) error {
	if m.deps.Sink == nil {
		return nil
	}
	return m.enqueue(job{kind: episodePoint, summary: s})
}

// WriteShot queues a shot point for the sink. Without a sink it does nothing.
func (m *Manager) WriteShot(opponent string, power, distance float64, at time.Time) error {
	if m.deps.Sink == nil {
		return nil
	}
	return m.enqueue(job{kind: shotPoint, opponent: opponent, power: power, distance: distance, at: at})
}

// QueueLength is the number of writes waiting.
func (m *Manager) QueueLength() int {
	return m.jobs.Len()
}

// Dropped counts writes refused because the queue was full.
func (m *Manager) Dropped() int64 {
	return m.dropped.Load()
}

// Failed counts writes the recorder or sink rejected.
func (m *Manager) Failed() int64 {
	return m.failed.Load()
}

// GetLastWriteDuration returns how long the most recent write took.
func (m *Manager) GetLastWriteDuration() time.Duration {
	return time.Duration(m.lastWrite.Load())
}

// Close stops accepting writes and waits for the queue to drain. Writes
// queued on a Manager that was never started are discarded.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	started := m.started
	m.jobs.Close()
	m.mu.Unlock()

	if started {
		<-m.done
	}
}
